package handlers

import (
	"stitchery/internal/middleware"
	"stitchery/internal/services"

	"github.com/gofiber/fiber/v2"
)

// StitchableHandler serves the derived stitchable views.
type StitchableHandler struct {
	service *services.StitchableService
}

// NewStitchableHandler creates a new StitchableHandler.
func NewStitchableHandler(service *services.StitchableService) *StitchableHandler {
	return &StitchableHandler{
		service: service,
	}
}

// RegisterRoutes registers the stitchable routes with the Fiber app.
func (h *StitchableHandler) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/stitchable")
	routes.Get("/", h.HandleStitchable)
	routes.Get("/report", h.HandleReport)
}

// PatternStatusResponse is one row of GET /stitchable/report.
type PatternStatusResponse struct {
	Pattern    PatternResponse `json:"pattern"`
	Missing    []string        `json:"missing"`
	Stitchable bool            `json:"stitchable"`
}

// HandleStitchable lists the patterns the user can stitch with current floss.
func (h *StitchableHandler) HandleStitchable(c *fiber.Ctx) error {
	patterns, err := h.service.Stitchable(middleware.CurrentUserID(c))
	if err != nil {
		return errorResponse(c, "Could not compute stitchable patterns", err)
	}
	return c.JSON(newPatternResponses(patterns))
}

// HandleReport lists every pattern with the codes still missing for it.
func (h *StitchableHandler) HandleReport(c *fiber.Ctx) error {
	report, err := h.service.Evaluate(middleware.CurrentUserID(c))
	if err != nil {
		return errorResponse(c, "Could not compute stitchable report", err)
	}

	out := make([]PatternStatusResponse, 0, len(report))
	for i := range report {
		out = append(out, PatternStatusResponse{
			Pattern:    newPatternResponse(&report[i].Pattern),
			Missing:    report[i].Missing,
			Stitchable: report[i].Stitchable,
		})
	}
	return c.JSON(out)
}
