// Package shopify queries the Storefront GraphQL API for products that a
// submission can reference.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/spec-kit/project-gallery/internal/config"
	"github.com/spec-kit/project-gallery/internal/domain"
	"github.com/spec-kit/project-gallery/internal/observability"
)

// ErrNotConfigured is returned when no storefront endpoint is set.
var ErrNotConfigured = errors.New("storefront API not configured")

const searchProductsQuery = `query searchProducts($query: String!, $first: Int!) {
  products(first: $first, query: $query) {
    edges {
      node {
        id
        title
        handle
        featuredImage { url }
        variants(first: 10) {
          edges {
            node {
              id
              title
              price { amount currencyCode }
              selectedOptions { name value }
            }
          }
        }
      }
    }
  }
}`

// Product is a storefront product with its variants.
type Product struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Handle   string    `json:"handle"`
	ImageURL string    `json:"imageUrl"`
	Variants []Variant `json:"variants"`
}

// Variant is one purchasable option of a product.
type Variant struct {
	ID              string                  `json:"id"`
	Title           string                  `json:"title"`
	Price           string                  `json:"price"`
	Currency        string                  `json:"currency"`
	SelectedOptions []domain.SelectedOption `json:"selectedOptions"`
}

// Snapshot freezes the product and, when present, the variant with variantID.
func (p Product) Snapshot(variantID string) domain.ProductSnapshot {
	snap := domain.ProductSnapshot{
		ExternalID: p.ID,
		Title:      p.Title,
		Handle:     p.Handle,
		ImageURL:   p.ImageURL,
	}
	for _, v := range p.Variants {
		if variantID == "" || v.ID == variantID {
			snap.VariantID = v.ID
			snap.VariantTitle = v.Title
			snap.Price = v.Price
			snap.Currency = v.Currency
			snap.SelectedOptions = v.SelectedOptions
			break
		}
	}
	return snap
}

// StorefrontClient talks to one shop's Storefront API.
type StorefrontClient struct {
	endpoint string
	token    string
	limit    int
	http     *retryablehttp.Client
}

// NewStorefrontClient builds a client with retries on transient failures.
func NewStorefrontClient(cfg config.ShopifyConfig, logger *zap.Logger) *StorefrontClient {
	httpClient := retryablehttp.NewClient()
	httpClient.HTTPClient.Timeout = 10 * time.Second
	httpClient.RetryMax = 3
	httpClient.RetryWaitMin = 200 * time.Millisecond
	httpClient.RetryWaitMax = 2 * time.Second
	httpClient.Logger = observability.NewRetryLogger(logger)

	limit := cfg.SearchLimit
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return &StorefrontClient{
		endpoint: cfg.StorefrontURL,
		token:    cfg.StorefrontToken,
		limit:    limit,
		http:     httpClient,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type searchResponse struct {
	Data struct {
		Products struct {
			Edges []struct {
				Node struct {
					ID            string `json:"id"`
					Title         string `json:"title"`
					Handle        string `json:"handle"`
					FeaturedImage *struct {
						URL string `json:"url"`
					} `json:"featuredImage"`
					Variants struct {
						Edges []struct {
							Node struct {
								ID    string `json:"id"`
								Title string `json:"title"`
								Price struct {
									Amount       string `json:"amount"`
									CurrencyCode string `json:"currencyCode"`
								} `json:"price"`
								SelectedOptions []domain.SelectedOption `json:"selectedOptions"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"variants"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// SearchProducts returns the products matching term, in storefront relevance order.
func (c *StorefrontClient) SearchProducts(ctx context.Context, term string) ([]Product, error) {
	if c == nil || c.endpoint == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(graphQLRequest{
		Query:     searchProductsQuery,
		Variables: map[string]any{"query": strings.TrimSpace(term), "first": c.limit},
	})
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storefront request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("storefront returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode storefront response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("storefront error: %s", decoded.Errors[0].Message)
	}

	products := make([]Product, 0, len(decoded.Data.Products.Edges))
	for _, edge := range decoded.Data.Products.Edges {
		node := edge.Node
		product := Product{
			ID:       node.ID,
			Title:    node.Title,
			Handle:   node.Handle,
			Variants: make([]Variant, 0, len(node.Variants.Edges)),
		}
		if node.FeaturedImage != nil {
			product.ImageURL = node.FeaturedImage.URL
		}
		for _, ve := range node.Variants.Edges {
			product.Variants = append(product.Variants, Variant{
				ID:              ve.Node.ID,
				Title:           ve.Node.Title,
				Price:           ve.Node.Price.Amount,
				Currency:        ve.Node.Price.CurrencyCode,
				SelectedOptions: ve.Node.SelectedOptions,
			})
		}
		products = append(products, product)
	}
	return products, nil
}
