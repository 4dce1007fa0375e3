package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/spec-kit/project-gallery/internal/api/dto"
	"github.com/spec-kit/project-gallery/internal/observability"
)

// HTTPFetcher reads the public listing endpoint.
type HTTPFetcher struct {
	baseURL string
	client  *retryablehttp.Client
}

// NewHTTPFetcher creates a fetcher for the API at baseURL.
func NewHTTPFetcher(baseURL string, logger *zap.Logger) *HTTPFetcher {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = 10 * time.Second
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.Logger = observability.NewRetryLogger(logger)
	return &HTTPFetcher{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Fetch requests one page of approved projects.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (*Page, error) {
	values := url.Values{}
	values.Set("shop", req.Shop)
	values.Set("page", strconv.Itoa(req.Page))
	values.Set("perPage", strconv.Itoa(req.PerPage))
	if req.Category != "" {
		values.Set("category", req.Category)
	}
	if req.Sort != "" {
		values.Set("sort", req.Sort)
	}
	if req.Search != "" {
		values.Set("search", req.Search)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet,
		f.baseURL+"/api/public/submissions?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch gallery page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return nil, fmt.Errorf("gallery listing returned %d: %s", resp.StatusCode, failure.Error)
	}

	var body dto.PublicListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode gallery page: %w", err)
	}

	projects := make([]Project, 0, len(body.Submissions))
	for _, sub := range body.Submissions {
		projects = append(projects, projectFromResponse(sub))
	}
	return &Page{
		Projects:   projects,
		Total:      body.Total,
		Page:       body.Page,
		PerPage:    body.PerPage,
		TotalPages: body.TotalPages,
	}, nil
}

func projectFromResponse(sub dto.PublicSubmissionResponse) Project {
	images := make([]Image, 0, len(sub.Images))
	for _, img := range sub.Images {
		images = append(images, Image{URL: img.URL, Filename: img.Filename})
	}
	var product *Product
	if sub.Product != nil {
		product = &Product{
			ShopifyID: sub.Product.ShopifyID,
			Title:     sub.Product.Title,
			Handle:    sub.Product.Handle,
			ImageURL:  sub.Product.ImageURL,
			Price:     sub.Product.Price,
			Currency:  sub.Product.Currency,
		}
	}
	return Project{
		ID:             sub.ID,
		DisplayName:    sub.DisplayName,
		ProjectName:    sub.ProjectName,
		PatternName:    sub.PatternName,
		DesignerName:   sub.DesignerName,
		PatternLink:    sub.PatternLink,
		ProjectDetails: sub.ProjectDetails,
		Categories:     sub.Categories,
		Product:        product,
		Images:         images,
	}
}
