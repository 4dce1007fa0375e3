package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-gallery/internal/api/dto"
	"github.com/spec-kit/project-gallery/internal/service"
	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

// UploadHandler receives storefront photo uploads.
type UploadHandler struct {
	service *service.UploadService
}

// NewUploadHandler constructs handler.
func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{service: uploadService}
}

// Upload POST /api/upload. Expects multipart field "img" and optional "desc".
// Failures are reported as {"success": false, "error": message}.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("img")
	if err != nil {
		return uploadFailure(c, apperrors.NewMissingField("img"))
	}

	file, err := header.Open()
	if err != nil {
		return uploadFailure(c, apperrors.NewInternalError(err))
	}
	defer file.Close()

	result, err := h.service.Upload(c.UserContext(), service.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Size:        header.Size,
		Body:        file,
		Description: c.FormValue("desc"),
	})
	if err != nil {
		return uploadFailure(c, err)
	}

	return c.JSON(dto.UploadResponse{
		Success: true,
		Data: &dto.UploadData{
			ImageURL:    result.ImageURL,
			Description: result.Description,
		},
	})
}

func uploadFailure(c *fiber.Ctx, err error) error {
	domainErr := apperrors.ToDomainError(err)
	message := domainErr.Message
	if domainErr.Code == "INTERNAL_ERROR" {
		message = "Failed to upload file"
	}
	return c.Status(domainErr.HTTPStatus).JSON(dto.UploadResponse{Success: false, Error: message})
}
