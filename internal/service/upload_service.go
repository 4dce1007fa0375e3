package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/project-gallery/internal/storage"
	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

// UploadInput is one image file received from the storefront form.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
	Description string
}

// UploadResult is where the stored image can be fetched from.
type UploadResult struct {
	Key         string
	ImageURL    string
	Description string
}

// UploadService stores project photos in object storage.
type UploadService struct {
	uploader storage.Uploader
	maxBytes int64
	logger   *zap.Logger
}

// NewUploadService constructs the service. A nil uploader makes every upload fail with 503.
func NewUploadService(uploader storage.Uploader, maxBytes int64, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{uploader: uploader, maxBytes: maxBytes, logger: logger}
}

// Upload checks that the file is an image within the size limit and stores it.
func (s *UploadService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if s.uploader == nil {
		return nil, apperrors.NewServiceUnavailable("Image storage is not configured", nil)
	}
	if input.Body == nil || input.Size <= 0 {
		return nil, apperrors.NewMissingField("img")
	}
	if s.maxBytes > 0 && input.Size > s.maxBytes {
		return nil, apperrors.NewInvalidField("img",
			fmt.Sprintf("File too large: limit is %d bytes", s.maxBytes))
	}

	contentType, err := detectImageType(input.Body, input.ContentType)
	if err != nil {
		return nil, err
	}

	key, err := storage.Hashed(ctx, s.uploader, input.Body, input.Size, input.Filename, contentType)
	if err != nil {
		s.logger.Error("image upload failed",
			zap.String("filename", input.Filename),
			zap.Int64("size", input.Size),
			zap.Error(err))
		return nil, apperrors.NewUpstreamError("Failed to upload file", err)
	}

	return &UploadResult{
		Key:         key,
		ImageURL:    s.uploader.PublicURL(key),
		Description: strings.TrimSpace(input.Description),
	}, nil
}

// detectImageType sniffs the first bytes. A declared image type is trusted only when
// the sniffer cannot tell (formats it does not know, like HEIC).
func detectImageType(body io.ReadSeeker, declared string) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", apperrors.NewInternalError(err)
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", apperrors.NewInternalError(err)
	}

	sniffed := http.DetectContentType(head[:n])
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed, nil
	}
	declared = strings.ToLower(strings.TrimSpace(declared))
	if sniffed == "application/octet-stream" && strings.HasPrefix(declared, "image/") {
		return declared, nil
	}
	return "", apperrors.NewInvalidField("img", "Only image uploads are allowed")
}
