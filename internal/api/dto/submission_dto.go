package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/project-gallery/internal/domain"
)

// Decimal is a price that clients may send as a JSON string or number.
type Decimal string

// UnmarshalJSON accepts "12.50", 12.5 and null.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Decimal(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("price must be a string or number: %w", err)
	}
	*d = Decimal(n.String())
	return nil
}

// SelectedOptionPayload is one variant option.
type SelectedOptionPayload struct {
	Name  string `json:"name" validate:"required,max=255"`
	Value string `json:"value" validate:"max=255"`
}

// ProductPayload is the product reference attached to a new submission.
type ProductPayload struct {
	ShopifyID       string                  `json:"shopifyId" validate:"required,max=255"`
	ID              string                  `json:"id,omitempty" validate:"-"`
	Title           string                  `json:"title" validate:"max=500"`
	Handle          string                  `json:"handle" validate:"max=255"`
	ImageURL        string                  `json:"imageUrl" validate:"omitempty,url"`
	Price           Decimal                 `json:"price" validate:"price"`
	Currency        string                  `json:"currency" validate:"max=8"`
	VariantID       string                  `json:"variantId" validate:"max=255"`
	VariantTitle    string                  `json:"variantTitle" validate:"max=500"`
	SelectedOptions []SelectedOptionPayload `json:"selectedOptions" validate:"max=20,dive"`
}

// ImagePayload is an already hosted image.
type ImagePayload struct {
	URL string `json:"url" validate:"required,url"`
}

// CreateSubmissionRequest payload. Fields are validated in declaration order.
type CreateSubmissionRequest struct {
	FirstName         string          `json:"firstName" validate:"required,max=100"`
	LastName          string          `json:"lastName" validate:"required,max=100"`
	Email             string          `json:"email" validate:"required,max=254"`
	SocialMediaHandle string          `json:"socialMediaHandle" validate:"max=100"`
	ProjectName       string          `json:"projectName" validate:"required,max=200"`
	PatternName       string          `json:"patternName" validate:"required,max=200"`
	DesignerName      string          `json:"designerName" validate:"required,max=200"`
	PatternLink       string          `json:"patternLink" validate:"required,max=2048"`
	ProjectDetails    string          `json:"projectDetails" validate:"max=5000"`
	Categories        []string        `json:"categories" validate:"max=20,dive,max=64"`
	NameDisplay       string          `json:"nameDisplay" validate:"required"`
	Product           *ProductPayload `json:"product" validate:"required"`
	Images            []ImagePayload  `json:"images" validate:"max=10,dive"`
}

// Normalize folds aliases into their canonical fields before validation.
func (r *CreateSubmissionRequest) Normalize() {
	if r.Product != nil && strings.TrimSpace(r.Product.ShopifyID) == "" {
		r.Product.ShopifyID = r.Product.ID
	}
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status          string  `json:"status" validate:"required"`
	RejectionReason *string `json:"rejectionReason" validate:"omitempty,max=1000"`
}

// SelectedOptionResponse is one variant option.
type SelectedOptionResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductResponse is a product snapshot.
type ProductResponse struct {
	ID              string                   `json:"id"`
	ShopifyID       string                   `json:"shopifyId"`
	Title           string                   `json:"title"`
	Handle          string                   `json:"handle"`
	ImageURL        string                   `json:"imageUrl"`
	Price           string                   `json:"price"`
	Currency        string                   `json:"currency"`
	VariantID       string                   `json:"variantId"`
	VariantTitle    string                   `json:"variantTitle"`
	SelectedOptions []SelectedOptionResponse `json:"selectedOptions"`
}

// ImageResponse is one project photo.
type ImageResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubmissionResponse is the admin view with every personal field.
type SubmissionResponse struct {
	ID                string           `json:"id"`
	Shop              string           `json:"shop"`
	Status            string           `json:"status"`
	FirstName         string           `json:"firstName"`
	LastName          string           `json:"lastName"`
	Email             string           `json:"email"`
	SocialMediaHandle string           `json:"socialMediaHandle"`
	ProjectName       string           `json:"projectName"`
	PatternName       string           `json:"patternName"`
	DesignerName      string           `json:"designerName"`
	PatternLink       string           `json:"patternLink"`
	ProjectDetails    string           `json:"projectDetails"`
	Categories        []string         `json:"categories"`
	NameDisplay       string           `json:"nameDisplay"`
	SubmittedAt       time.Time        `json:"submittedAt"`
	ApprovedAt        *time.Time       `json:"approvedAt"`
	RejectedAt        *time.Time       `json:"rejectedAt"`
	RejectionReason   *string          `json:"rejectionReason"`
	UpdatedAt         time.Time        `json:"updatedAt"`
	Product           *ProductResponse `json:"product"`
	Images            []ImageResponse  `json:"images"`
}

// HistoryEntryResponse is one moderation audit entry.
type HistoryEntryResponse struct {
	ID              string    `json:"id"`
	ChangedBy       *string   `json:"changedBy"`
	OldStatus       string    `json:"oldStatus"`
	NewStatus       string    `json:"newStatus"`
	RejectionReason *string   `json:"rejectionReason"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PublicSubmissionResponse is the storefront view. It has no raw personal fields.
type PublicSubmissionResponse struct {
	ID             string           `json:"id"`
	DisplayName    string           `json:"displayName"`
	ProjectName    string           `json:"projectName"`
	PatternName    string           `json:"patternName"`
	DesignerName   string           `json:"designerName"`
	PatternLink    string           `json:"patternLink"`
	ProjectDetails string           `json:"projectDetails"`
	Categories     []string         `json:"categories"`
	SubmittedAt    time.Time        `json:"submittedAt"`
	ApprovedAt     *time.Time       `json:"approvedAt"`
	Product        *ProductResponse `json:"product"`
	Images         []ImageResponse  `json:"images"`
}

// PublicListResponse is one page of the public gallery.
type PublicListResponse struct {
	Submissions []PublicSubmissionResponse `json:"submissions"`
	Total       int                        `json:"total"`
	Page        int                        `json:"page"`
	PerPage     int                        `json:"perPage"`
	TotalPages  int                        `json:"totalPages"`
}

// AdminListResponse is one page of the admin list with the applied query echoed back.
type AdminListResponse struct {
	Submissions   []SubmissionResponse `json:"submissions"`
	Total         int                  `json:"total"`
	Page          int                  `json:"page"`
	PerPage       int                  `json:"perPage"`
	TotalPages    int                  `json:"totalPages"`
	Query         string               `json:"query"`
	Status        string               `json:"status"`
	SortKey       string               `json:"sortKey"`
	SortDirection string               `json:"sortDirection"`
}

// NewSubmissionResponse maps the aggregate for admin callers.
func NewSubmissionResponse(sub *domain.Submission) SubmissionResponse {
	categories := sub.Categories
	if categories == nil {
		categories = []string{}
	}
	return SubmissionResponse{
		ID:                sub.ID,
		Shop:              sub.Shop,
		Status:            string(sub.Status),
		FirstName:         sub.FirstName,
		LastName:          sub.LastName,
		Email:             sub.Email,
		SocialMediaHandle: sub.SocialMediaHandle,
		ProjectName:       sub.ProjectName,
		PatternName:       sub.PatternName,
		DesignerName:      sub.DesignerName,
		PatternLink:       sub.PatternLink,
		ProjectDetails:    sub.ProjectDetails,
		Categories:        categories,
		NameDisplay:       string(sub.DisplayPreference),
		SubmittedAt:       sub.SubmittedAt,
		ApprovedAt:        sub.ApprovedAt,
		RejectedAt:        sub.RejectedAt,
		RejectionReason:   sub.RejectionReason,
		UpdatedAt:         sub.UpdatedAt,
		Product:           newProductResponse(sub.Product),
		Images:            newImageResponses(sub.Images),
	}
}

// NewPublicSubmissionResponse maps the storefront view.
func NewPublicSubmissionResponse(sub domain.PublicSubmission) PublicSubmissionResponse {
	categories := sub.Categories
	if categories == nil {
		categories = []string{}
	}
	return PublicSubmissionResponse{
		ID:             sub.ID,
		DisplayName:    sub.DisplayName,
		ProjectName:    sub.ProjectName,
		PatternName:    sub.PatternName,
		DesignerName:   sub.DesignerName,
		PatternLink:    sub.PatternLink,
		ProjectDetails: sub.ProjectDetails,
		Categories:     categories,
		SubmittedAt:    sub.SubmittedAt,
		ApprovedAt:     sub.ApprovedAt,
		Product:        newProductResponse(sub.Product),
		Images:         newImageResponses(sub.Images),
	}
}

func newProductResponse(p *domain.ProductSnapshot) *ProductResponse {
	if p == nil {
		return nil
	}
	options := make([]SelectedOptionResponse, 0, len(p.SelectedOptions))
	for _, opt := range p.SelectedOptions {
		options = append(options, SelectedOptionResponse{Name: opt.Name, Value: opt.Value})
	}
	return &ProductResponse{
		ID:              p.ID,
		ShopifyID:       p.ExternalID,
		Title:           p.Title,
		Handle:          p.Handle,
		ImageURL:        p.ImageURL,
		Price:           p.Price,
		Currency:        p.Currency,
		VariantID:       p.VariantID,
		VariantTitle:    p.VariantTitle,
		SelectedOptions: options,
	}
}

func newImageResponses(images []domain.Image) []ImageResponse {
	out := make([]ImageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, ImageResponse{
			ID:        img.ID,
			URL:       img.URL,
			Filename:  img.Filename,
			Size:      img.SizeBytes,
			MimeType:  img.MimeType,
			CreatedAt: img.CreatedAt,
		})
	}
	return out
}
