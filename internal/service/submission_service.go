package service

import (
	"context"
	"errors"
	"mime"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/project-gallery/internal/domain"
	"github.com/spec-kit/project-gallery/internal/events"
	"github.com/spec-kit/project-gallery/internal/moderation"
	"github.com/spec-kit/project-gallery/internal/observability"
	"github.com/spec-kit/project-gallery/internal/query"
	"github.com/spec-kit/project-gallery/internal/repository"
	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SubmissionService coordinates submission intake and moderation.
type SubmissionService struct {
	submissions repository.SubmissionRepository
	history     repository.SubmissionHistoryRepository
	dispatcher  events.Dispatcher
	builder     query.Builder
	logger      *zap.Logger
	now         func() time.Time
}

// SubmissionDependencies bundles collaborators for the submission service.
type SubmissionDependencies struct {
	SubmissionRepo repository.SubmissionRepository
	HistoryRepo    repository.SubmissionHistoryRepository
	Dispatcher     events.Dispatcher
	AdminPageSize  int
	Logger         *zap.Logger
	Clock          func() time.Time
}

// SubmissionCreateInput describes a new submission.
type SubmissionCreateInput struct {
	FirstName         string
	LastName          string
	Email             string
	SocialMediaHandle string
	ProjectName       string
	PatternName       string
	DesignerName      string
	PatternLink       string
	ProjectDetails    string
	Categories        []string
	DisplayPreference string
	Product           ProductInput
	ImageURLs         []string
}

// ProductInput is the product reference attached to a submission.
type ProductInput struct {
	ExternalID      string
	Title           string
	Handle          string
	ImageURL        string
	Price           string
	Currency        string
	VariantID       string
	VariantTitle    string
	SelectedOptions []domain.SelectedOption
}

// AdminPage is one page of the admin list with the normalized query echoed back.
type AdminPage struct {
	Submissions []domain.Submission
	Total       int
	Page        int
	PerPage     int
	TotalPages  int
	Spec        query.Spec
}

// NewSubmissionService constructs the service.
func NewSubmissionService(deps SubmissionDependencies) *SubmissionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	pageSize := deps.AdminPageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	return &SubmissionService{
		submissions: deps.SubmissionRepo,
		history:     deps.HistoryRepo,
		dispatcher:  deps.Dispatcher,
		builder:     query.NewAdminBuilder(pageSize),
		logger:      logger,
		now:         clock,
	}
}

// Create validates input and stores a pending submission for shop.
func (s *SubmissionService) Create(ctx context.Context, shop string, input SubmissionCreateInput) (*domain.Submission, error) {
	sub, err := s.buildSubmission(shop, input)
	if err != nil {
		return nil, err
	}

	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, s.storeError("create submission", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventSubmissionCreated,
		SubmissionID: sub.ID,
		Shop:         sub.Shop,
		Payload: events.SubmissionCreatedPayload{
			ProjectName: sub.ProjectName,
			Status:      sub.Status,
			ImageCount:  len(sub.Images),
		},
	})
	return sub, nil
}

func (s *SubmissionService) buildSubmission(shop string, input SubmissionCreateInput) (*domain.Submission, error) {
	shop = strings.TrimSpace(shop)
	if shop == "" {
		return nil, apperrors.NewMissingField("shop")
	}

	required := []struct {
		field string
		value string
	}{
		{"firstName", input.FirstName},
		{"lastName", input.LastName},
		{"email", input.Email},
		{"projectName", input.ProjectName},
		{"patternName", input.PatternName},
		{"designerName", input.DesignerName},
		{"patternLink", input.PatternLink},
		{"nameDisplay", input.DisplayPreference},
		{"product.shopifyId", input.Product.ExternalID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, apperrors.NewMissingField(r.field)
		}
	}

	email := strings.TrimSpace(input.Email)
	if !emailPattern.MatchString(email) {
		return nil, apperrors.NewInvalidField("email", "Invalid email format")
	}

	price := strings.TrimSpace(input.Product.Price)
	if !domain.ValidPrice(price) {
		return nil, apperrors.NewInvalidField("product.price", domain.PriceMessage)
	}

	pref, ok := domain.ParseDisplayPreference(input.DisplayPreference)
	if !ok {
		return nil, apperrors.NewInvalidField("nameDisplay", "Invalid nameDisplay: "+input.DisplayPreference)
	}

	images := make([]domain.Image, 0, len(input.ImageURLs))
	for _, raw := range input.ImageURLs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		images = append(images, ImageFromURL(raw))
	}

	return &domain.Submission{
		Shop:              shop,
		Status:            domain.SubmissionStatusPending,
		FirstName:         strings.TrimSpace(input.FirstName),
		LastName:          strings.TrimSpace(input.LastName),
		Email:             email,
		SocialMediaHandle: strings.TrimSpace(input.SocialMediaHandle),
		ProjectName:       strings.TrimSpace(input.ProjectName),
		PatternName:       strings.TrimSpace(input.PatternName),
		DesignerName:      strings.TrimSpace(input.DesignerName),
		PatternLink:       strings.TrimSpace(input.PatternLink),
		ProjectDetails:    strings.TrimSpace(input.ProjectDetails),
		Categories:        domain.NormalizeCategories(input.Categories),
		DisplayPreference: pref,
		Product: &domain.ProductSnapshot{
			ExternalID:      strings.TrimSpace(input.Product.ExternalID),
			Title:           input.Product.Title,
			Handle:          input.Product.Handle,
			ImageURL:        input.Product.ImageURL,
			Price:           price,
			Currency:        input.Product.Currency,
			VariantID:       input.Product.VariantID,
			VariantTitle:    input.Product.VariantTitle,
			SelectedOptions: input.Product.SelectedOptions,
		},
		Images: images,
	}, nil
}

// ImageFromURL builds image metadata for an already hosted file. The file name is the
// last path segment and the type is inferred from its extension.
func ImageFromURL(raw string) domain.Image {
	filename := ""
	if parsed, err := url.Parse(raw); err == nil {
		filename = path.Base(parsed.Path)
	}
	if filename == "" || filename == "." || filename == "/" {
		filename = "image.jpg"
	}

	mimeType := mime.TypeByExtension(strings.ToLower(path.Ext(filename)))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}

	return domain.Image{
		URL:      raw,
		Filename: filename,
		MimeType: mimeType,
	}
}

// ListForAdmin returns one page of the shop's submissions in any status.
func (s *SubmissionService) ListForAdmin(ctx context.Context, shop string, params query.Params) (*AdminPage, error) {
	params.Shop = shop
	if strings.TrimSpace(params.Status) == "" {
		params.Status = query.All
	}
	spec, err := s.builder.Build(params)
	if err != nil {
		return nil, err
	}

	items, total, err := s.submissions.List(ctx, spec)
	if err != nil {
		return nil, s.storeError("list submissions", err)
	}

	return &AdminPage{
		Submissions: items,
		Total:       total,
		Page:        spec.Page,
		PerPage:     spec.PerPage,
		TotalPages:  query.TotalPages(total, spec.PerPage),
		Spec:        spec,
	}, nil
}

// Get returns one submission of shop.
func (s *SubmissionService) Get(ctx context.Context, shop, id string) (*domain.Submission, error) {
	sub, err := s.submissions.GetByID(ctx, id, &shop)
	if err != nil {
		return nil, s.storeError("get submission", err)
	}
	return sub, nil
}

// UpdateStatus moves a submission to the target status.
func (s *SubmissionService) UpdateStatus(ctx context.Context, shop, id, status string, reason *string) (*domain.Submission, error) {
	change, err := moderation.Transition(status, reason, s.now())
	if err != nil {
		return nil, err
	}

	current, err := s.submissions.GetByID(ctx, id, &shop)
	if err != nil {
		return nil, s.storeError("get submission", err)
	}
	if err := moderation.Check(current.Status, change); err != nil {
		return nil, err
	}

	updated, err := s.submissions.UpdateStatus(ctx, id, &shop, change)
	if err != nil {
		return nil, s.storeError("update submission status", err)
	}
	observability.RecordTransition(string(current.Status), string(updated.Status))
	s.recordHistory(ctx, updated.ID, current.Status, updated.Status, change.RejectionReason)

	s.publishEvent(ctx, events.Event{
		Type:         events.EventSubmissionStatusChanged,
		SubmissionID: updated.ID,
		Shop:         updated.Shop,
		Payload: events.SubmissionStatusChangedPayload{
			OldStatus:       current.Status,
			NewStatus:       updated.Status,
			RejectionReason: change.RejectionReason,
		},
	})
	return updated, nil
}

// History returns the moderation audit trail of one submission of shop, oldest first.
func (s *SubmissionService) History(ctx context.Context, shop, id string) ([]domain.SubmissionHistory, error) {
	if _, err := s.Get(ctx, shop, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.SubmissionHistory{}, nil
	}
	entries, err := s.history.ListBySubmission(ctx, id, 100)
	if err != nil {
		return nil, s.storeError("list submission history", err)
	}
	return entries, nil
}

// recordHistory appends an audit entry. The status change is already committed, so a
// failure here is logged rather than returned.
func (s *SubmissionService) recordHistory(ctx context.Context, id string, from, to domain.SubmissionStatus, reason *string) {
	if s.history == nil {
		return
	}
	entry := &domain.SubmissionHistory{
		SubmissionID:    id,
		ChangedBy:       actorFrom(ctx),
		OldStatus:       from,
		NewStatus:       to,
		RejectionReason: reason,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record submission history", zap.String("submission_id", id), zap.Error(err))
	}
}

// Delete removes a submission with its product snapshot and images.
func (s *SubmissionService) Delete(ctx context.Context, shop, id string) error {
	current, err := s.submissions.GetByID(ctx, id, &shop)
	if err != nil {
		return s.storeError("get submission", err)
	}
	if err := s.submissions.Delete(ctx, id, &shop); err != nil {
		return s.storeError("delete submission", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventSubmissionDeleted,
		SubmissionID: current.ID,
		Shop:         current.Shop,
		Payload:      events.SubmissionDeletedPayload{Status: current.Status},
	})
	return nil
}

// storeError maps a missing row to 404 and hides anything else behind a generic 500.
func (s *SubmissionService) storeError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("Submission", nil)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Error("submission store failed", zap.String("op", op), zap.Error(err))
	return apperrors.NewUpstreamError("Failed to process submission", err)
}

func (s *SubmissionService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	// The change is committed; subscribers such as cache invalidation must still run if
	// the client has gone away.
	if err := s.dispatcher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
