package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/project-gallery/internal/cache"
	"github.com/spec-kit/project-gallery/internal/displayname"
	"github.com/spec-kit/project-gallery/internal/domain"
	"github.com/spec-kit/project-gallery/internal/query"
	"github.com/spec-kit/project-gallery/internal/repository"
	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

// ListingPage is one page of the public gallery.
type ListingPage struct {
	Submissions []domain.PublicSubmission
	Total       int
	Page        int
	PerPage     int
	TotalPages  int
}

// ListingCache is the slice of the tiered cache the listing service needs.
type ListingCache interface {
	Get(ctx context.Context, shop, key string) (ListingPage, bool)
	Generation(shop string) uint64
	SetIfCurrent(ctx context.Context, shop, key string, gen uint64, page ListingPage) bool
	InvalidateShop(ctx context.Context, shop string)
}

var _ ListingCache = (*cache.Tiered[ListingPage])(nil)

// ListingService serves approved submissions to the storefront.
type ListingService struct {
	submissions repository.SubmissionRepository
	cache       ListingCache
	builder     query.Builder
	logger      *zap.Logger
}

// ListingDependencies bundles collaborators for the listing service.
type ListingDependencies struct {
	SubmissionRepo repository.SubmissionRepository
	Cache          ListingCache
	DefaultPerPage int
	MaxPerPage     int
	Logger         *zap.Logger
}

// NewListingService constructs the service. Cache may be nil.
func NewListingService(deps ListingDependencies) *ListingService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingService{
		submissions: deps.SubmissionRepo,
		cache:       deps.Cache,
		builder:     query.NewPublicBuilder(deps.DefaultPerPage, deps.MaxPerPage),
		logger:      logger,
	}
}

// List returns a page of approved submissions for params.Shop. Whatever status the
// caller asks for is replaced by approved.
func (s *ListingService) List(ctx context.Context, params query.Params) (*ListingPage, error) {
	shop := strings.TrimSpace(params.Shop)
	if shop == "" {
		return nil, apperrors.NewMissingField("shop")
	}
	params.Status = ""

	spec, err := s.builder.Build(params)
	if err != nil {
		return nil, err
	}
	spec = spec.WithStatus(domain.SubmissionStatusApproved)

	key := spec.CacheKey()
	var gen uint64
	if s.cache != nil {
		if page, ok := s.cache.Get(ctx, shop, key); ok {
			return &page, nil
		}
		gen = s.cache.Generation(shop)
	}

	items, total, err := s.submissions.List(ctx, spec)
	if err != nil {
		s.logger.Error("public listing failed", zap.String("shop", shop), zap.Error(err))
		return nil, apperrors.NewServiceUnavailable("Failed to fetch submissions", err)
	}

	page := ListingPage{
		Submissions: displayname.PublicAll(items),
		Total:       total,
		Page:        spec.Page,
		PerPage:     spec.PerPage,
		TotalPages:  query.TotalPages(total, spec.PerPage),
	}
	if s.cache != nil {
		s.cache.SetIfCurrent(ctx, shop, key, gen, page)
	}
	return &page, nil
}
