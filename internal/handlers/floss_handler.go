package handlers

import (
	"fmt"
	"log"
	"net/url"

	"stitchery/internal/middleware"
	"stitchery/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FlossHandler handles HTTP requests for the floss inventory.
type FlossHandler struct {
	service  *services.FlossService
	validate *validator.Validate
}

// NewFlossHandler creates a new FlossHandler.
func NewFlossHandler(service *services.FlossService) *FlossHandler {
	return &FlossHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the floss routes with the Fiber app.
func (h *FlossHandler) RegisterRoutes(router fiber.Router) {
	flossRoutes := router.Group("/floss")
	flossRoutes.Get("/", h.HandleListFloss)
	flossRoutes.Post("/", h.HandleAddFloss)
	flossRoutes.Patch("/:code", h.HandleApplyDelta)
	flossRoutes.Delete("/:code", h.HandleRemoveFloss)
}

// AddFlossRequest is the body of POST /floss. A missing length means one skein.
type AddFlossRequest struct {
	Code   string   `json:"code" validate:"required,max=32"`
	Length *float64 `json:"length"`
}

// DeltaRequest is the body of PATCH /floss/:code.
type DeltaRequest struct {
	Delta *float64 `json:"delta" validate:"required"`
}

// HandleListFloss returns the current user's inventory.
func (h *FlossHandler) HandleListFloss(c *fiber.Ctx) error {
	flosses, err := h.service.ListFloss(middleware.CurrentUserID(c))
	if err != nil {
		return errorResponse(c, "Could not retrieve floss", err)
	}
	return c.JSON(flosses)
}

// HandleAddFloss adds a code to the inventory.
func (h *FlossHandler) HandleAddFloss(c *fiber.Ctx) error {
	var req AddFlossRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing floss request body: %v", err)
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	floss, err := h.service.AddFloss(middleware.CurrentUserID(c), req.Code, req.Length)
	if err != nil {
		return errorResponse(c, "Could not add floss", err)
	}
	return c.Status(fiber.StatusCreated).JSON(floss)
}

// HandleApplyDelta adds a signed amount to a code's remaining length.
func (h *FlossHandler) HandleApplyDelta(c *fiber.Ctx) error {
	code := flossCodeParam(c)
	var req DeltaRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing delta request body: %v", err)
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationResponse(c, err)
	}

	floss, err := h.service.ApplyDelta(middleware.CurrentUserID(c), code, *req.Delta)
	if err != nil {
		return errorResponse(c, fmt.Sprintf("Could not update floss %s", code), err)
	}
	return c.JSON(floss)
}

// HandleRemoveFloss removes a code from the inventory.
func (h *FlossHandler) HandleRemoveFloss(c *fiber.Ctx) error {
	code := flossCodeParam(c)
	if err := h.service.RemoveFloss(middleware.CurrentUserID(c), code); err != nil {
		return errorResponse(c, fmt.Sprintf("Could not remove floss %s", code), err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Floss %s removed successfully", code),
	})
}

func flossCodeParam(c *fiber.Ctx) string {
	code := c.Params("code")
	if unescaped, err := url.PathUnescape(code); err == nil {
		return unescaped
	}
	return code
}
