package handlers

import (
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"stitchery/internal/middleware"
	"stitchery/internal/models"
	"stitchery/internal/services"
	"stitchery/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// Multipart fields accepted for the pattern file, in order of preference.
var patternFileFields = []string{"file", "image", "pdf"}

// PatternHandler handles HTTP requests for patterns.
type PatternHandler struct {
	service *services.PatternService
}

// NewPatternHandler creates a new PatternHandler.
func NewPatternHandler(service *services.PatternService) *PatternHandler {
	return &PatternHandler{
		service: service,
	}
}

// RegisterRoutes registers the pattern routes with the Fiber app.
func (h *PatternHandler) RegisterRoutes(router fiber.Router) {
	patternRoutes := router.Group("/patterns")
	patternRoutes.Get("/", h.HandleListPatterns)
	patternRoutes.Post("/", h.HandleUploadPattern)
	patternRoutes.Get("/:id", h.HandleGetPattern)
	patternRoutes.Get("/:id/file", h.HandleGetPatternFile)
	patternRoutes.Delete("/:id", h.HandleDeletePattern)
}

// PatternResponse is the JSON form of a pattern.
type PatternResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	FlossCodes    []string  `json:"floss_codes"`
	ImageFilename string    `json:"image_filename,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func newPatternResponse(p *models.Pattern) PatternResponse {
	codes, err := p.RequiredCodes()
	if err != nil {
		log.Printf("Rendering pattern without floss codes: %v", err)
		codes = []string{}
	}
	return PatternResponse{
		ID:            p.ID,
		Name:          p.Name,
		FlossCodes:    codes,
		ImageFilename: p.ImageFilename,
		CreatedAt:     p.CreatedAt,
	}
}

func newPatternResponses(patterns []models.Pattern) []PatternResponse {
	out := make([]PatternResponse, 0, len(patterns))
	for i := range patterns {
		out = append(out, newPatternResponse(&patterns[i]))
	}
	return out
}

// HandleListPatterns returns the current user's patterns.
func (h *PatternHandler) HandleListPatterns(c *fiber.Ctx) error {
	patterns, err := h.service.ListPatterns(middleware.CurrentUserID(c))
	if err != nil {
		return errorResponse(c, "Could not retrieve patterns", err)
	}
	return c.JSON(newPatternResponses(patterns))
}

// HandleGetPattern returns one pattern.
func (h *PatternHandler) HandleGetPattern(c *fiber.Ctx) error {
	id := c.Params("id")
	pattern, err := h.service.GetPattern(middleware.CurrentUserID(c), id)
	if err != nil {
		return errorResponse(c, fmt.Sprintf("Pattern with ID %s not found", id), err)
	}
	return c.JSON(newPatternResponse(pattern))
}

// HandleUploadPattern accepts a multipart form with name, floss_data and the
// pattern file.
func (h *PatternHandler) HandleUploadPattern(c *fiber.Ctx) error {
	input := services.UploadInput{
		Name:      c.FormValue("name"),
		FlossData: c.FormValue("floss_data"),
	}

	fh := patternFile(c)
	if fh != nil {
		file, err := fh.Open()
		if err != nil {
			return errorResponse(c, "Could not read uploaded file", err)
		}
		defer file.Close()
		input.Filename = fh.Filename
		input.Content = file
		input.Size = fh.Size
		input.ContentType = fh.Header.Get("Content-Type")
	}

	pattern, err := h.service.UploadPattern(c.UserContext(), middleware.CurrentUserID(c), input)
	if err != nil {
		return errorResponse(c, "Pattern upload failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(newPatternResponse(pattern))
}

// HandleGetPatternFile streams the stored image or PDF.
func (h *PatternHandler) HandleGetPatternFile(c *fiber.Ctx) error {
	id := c.Params("id")
	rc, name, err := h.service.OpenPatternFile(c.UserContext(), middleware.CurrentUserID(c), id)
	if err != nil {
		return errorResponse(c, fmt.Sprintf("File of pattern %s not found", id), err)
	}

	// fasthttp closes rc once the body has been written
	c.Set(fiber.HeaderContentType, storage.ContentType(name))
	return c.SendStream(rc)
}

// HandleDeletePattern deletes one of the current user's patterns.
func (h *PatternHandler) HandleDeletePattern(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeletePattern(c.UserContext(), middleware.CurrentUserID(c), id); err != nil {
		return errorResponse(c, fmt.Sprintf("Pattern with ID %s not found", id), err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Pattern %s deleted successfully", id),
	})
}

func patternFile(c *fiber.Ctx) *multipart.FileHeader {
	for _, field := range patternFileFields {
		if fh, err := c.FormFile(field); err == nil && fh != nil {
			return fh
		}
	}
	return nil
}
