package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-gallery/internal/api/dto"
	"github.com/spec-kit/project-gallery/internal/api/validate"
	"github.com/spec-kit/project-gallery/internal/service"
)

// PublicSubmissionsHandler serves the unauthenticated storefront endpoints.
type PublicSubmissionsHandler struct {
	listing     *service.ListingService
	submissions *service.SubmissionService
	validator   *validate.Validator
}

// NewPublicSubmissionsHandler constructs handler.
func NewPublicSubmissionsHandler(listing *service.ListingService, submissions *service.SubmissionService, validator *validate.Validator) *PublicSubmissionsHandler {
	return &PublicSubmissionsHandler{listing: listing, submissions: submissions, validator: validator}
}

// ListApproved GET /api/public/submissions.
func (h *PublicSubmissionsHandler) ListApproved(c *fiber.Ctx) error {
	page, err := h.listing.List(c.UserContext(), listingParams(c))
	if err != nil {
		return err
	}

	items := make([]dto.PublicSubmissionResponse, 0, len(page.Submissions))
	for _, sub := range page.Submissions {
		items = append(items, dto.NewPublicSubmissionResponse(sub))
	}
	return c.JSON(dto.PublicListResponse{
		Submissions: items,
		Total:       page.Total,
		Page:        page.Page,
		PerPage:     page.PerPage,
		TotalPages:  page.TotalPages,
	})
}

// Submit POST /api/public/submissions?shop=. New submissions always start pending.
func (h *PublicSubmissionsHandler) Submit(c *fiber.Ctx) error {
	return createSubmission(c, h.submissions, h.validator, c.Query("shop"))
}
