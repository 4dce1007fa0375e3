package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-gallery/internal/api/dto"
	"github.com/spec-kit/project-gallery/internal/api/validate"
	"github.com/spec-kit/project-gallery/internal/auth"
	"github.com/spec-kit/project-gallery/internal/domain"
	"github.com/spec-kit/project-gallery/internal/service"
	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

// SubmissionsHandler serves the embedded admin moderation endpoints.
type SubmissionsHandler struct {
	service   *service.SubmissionService
	validator *validate.Validator
}

// NewSubmissionsHandler constructs handler.
func NewSubmissionsHandler(submissionService *service.SubmissionService, validator *validate.Validator) *SubmissionsHandler {
	return &SubmissionsHandler{service: submissionService, validator: validator}
}

// ListSubmissions GET /api/submissions.
func (h *SubmissionsHandler) ListSubmissions(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	params := listingParams(c)
	page, err := h.service.ListForAdmin(c.UserContext(), principal.Shop, params)
	if err != nil {
		return err
	}

	items := make([]dto.SubmissionResponse, 0, len(page.Submissions))
	for i := range page.Submissions {
		items = append(items, dto.NewSubmissionResponse(&page.Submissions[i]))
	}
	return c.JSON(dto.AdminListResponse{
		Submissions:   items,
		Total:         page.Total,
		Page:          page.Page,
		PerPage:       page.PerPage,
		TotalPages:    page.TotalPages,
		Query:         page.Spec.Filter.Search,
		Status:        page.Spec.StatusLabel(),
		SortKey:       string(page.Spec.Sort.Key),
		SortDirection: string(page.Spec.Sort.Direction),
	})
}

// CreateSubmission POST /api/submissions.
func (h *SubmissionsHandler) CreateSubmission(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	return createSubmission(c, h.service, h.validator, principal.Shop)
}

// GetSubmission GET /api/submissions/:id.
func (h *SubmissionsHandler) GetSubmission(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	sub, err := h.service.Get(c.UserContext(), principal.Shop, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"submission": dto.NewSubmissionResponse(sub)})
}

// UpdateStatus PUT /api/submissions/:id.
func (h *SubmissionsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload", nil)
	}
	if err := h.validator.Struct(req); err != nil {
		return err
	}

	ctx := service.WithActor(c.UserContext(), principal.UserID)
	sub, err := h.service.UpdateStatus(ctx, principal.Shop, c.Params("id"), req.Status, req.RejectionReason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"submission": dto.NewSubmissionResponse(sub)})
}

// GetHistory GET /api/submissions/:id/history.
func (h *SubmissionsHandler) GetHistory(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	entries, err := h.service.History(c.UserContext(), principal.Shop, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.HistoryEntryResponse{
			ID:              entry.ID,
			ChangedBy:       entry.ChangedBy,
			OldStatus:       string(entry.OldStatus),
			NewStatus:       string(entry.NewStatus),
			RejectionReason: entry.RejectionReason,
			CreatedAt:       entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"history": items})
}

// DeleteSubmission DELETE /api/submissions/:id.
func (h *SubmissionsHandler) DeleteSubmission(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("session required")
	}
	if err := h.service.Delete(c.UserContext(), principal.Shop, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func createSubmission(c *fiber.Ctx, svc *service.SubmissionService, validator *validate.Validator, shop string) error {
	var req dto.CreateSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload", nil)
	}
	req.Normalize()
	if err := validator.Struct(req); err != nil {
		return err
	}

	sub, err := svc.Create(c.UserContext(), shop, createInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"submission": dto.NewSubmissionResponse(sub)})
}

func createInput(req dto.CreateSubmissionRequest) service.SubmissionCreateInput {
	imageURLs := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		imageURLs = append(imageURLs, img.URL)
	}
	options := make([]domain.SelectedOption, 0, len(req.Product.SelectedOptions))
	for _, opt := range req.Product.SelectedOptions {
		options = append(options, domain.SelectedOption{Name: opt.Name, Value: opt.Value})
	}

	return service.SubmissionCreateInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		SocialMediaHandle: req.SocialMediaHandle,
		ProjectName:       req.ProjectName,
		PatternName:       req.PatternName,
		DesignerName:      req.DesignerName,
		PatternLink:       req.PatternLink,
		ProjectDetails:    req.ProjectDetails,
		Categories:        req.Categories,
		DisplayPreference: req.NameDisplay,
		Product: service.ProductInput{
			ExternalID:      req.Product.ShopifyID,
			Title:           req.Product.Title,
			Handle:          req.Product.Handle,
			ImageURL:        req.Product.ImageURL,
			Price:           string(req.Product.Price),
			Currency:        req.Product.Currency,
			VariantID:       req.Product.VariantID,
			VariantTitle:    req.Product.VariantTitle,
			SelectedOptions: options,
		},
		ImageURLs: imageURLs,
	}
}
