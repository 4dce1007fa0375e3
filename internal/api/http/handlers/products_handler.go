package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/project-gallery/internal/api/dto"
	"github.com/spec-kit/project-gallery/internal/shopify"
	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

// ProductSearcher finds storefront products by free text.
type ProductSearcher interface {
	SearchProducts(ctx context.Context, term string) ([]shopify.Product, error)
}

// ProductsHandler backs the admin product picker.
type ProductsHandler struct {
	searcher ProductSearcher
}

// NewProductsHandler constructs handler.
func NewProductsHandler(searcher ProductSearcher) *ProductsHandler {
	return &ProductsHandler{searcher: searcher}
}

// Search GET /api/products/search?q=.
func (h *ProductsHandler) Search(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("q"))
	if term == "" {
		return apperrors.NewMissingField("q")
	}

	products, err := h.searcher.SearchProducts(c.UserContext(), term)
	if err != nil {
		if errors.Is(err, shopify.ErrNotConfigured) {
			return apperrors.NewServiceUnavailable("Product search is not configured", err)
		}
		return apperrors.NewUpstreamError("Failed to search products", err)
	}

	items := make([]dto.ProductSearchResult, 0, len(products))
	for _, p := range products {
		variants := make([]dto.VariantResponse, 0, len(p.Variants))
		for _, v := range p.Variants {
			options := make([]dto.SelectedOptionResponse, 0, len(v.SelectedOptions))
			for _, opt := range v.SelectedOptions {
				options = append(options, dto.SelectedOptionResponse{Name: opt.Name, Value: opt.Value})
			}
			variants = append(variants, dto.VariantResponse{
				ID:              v.ID,
				Title:           v.Title,
				Price:           v.Price,
				Currency:        v.Currency,
				SelectedOptions: options,
			})
		}
		items = append(items, dto.ProductSearchResult{
			ID:       p.ID,
			Title:    p.Title,
			Handle:   p.Handle,
			ImageURL: p.ImageURL,
			Variants: variants,
		})
	}
	return c.JSON(fiber.Map{"products": items})
}
