package service

import (
	"context"
	"sync"

	"github.com/spec-kit/project-gallery/internal/domain"
	"github.com/spec-kit/project-gallery/internal/events"
	"github.com/spec-kit/project-gallery/internal/moderation"
	"github.com/spec-kit/project-gallery/internal/query"
)

type mockSubmissionRepo struct {
	createFn       func(ctx context.Context, sub *domain.Submission) error
	getByIDFn      func(ctx context.Context, id string, shop *string) (*domain.Submission, error)
	listFn         func(ctx context.Context, spec query.Spec) ([]domain.Submission, int, error)
	updateStatusFn func(ctx context.Context, id string, shop *string, change moderation.Change) (*domain.Submission, error)
	deleteFn       func(ctx context.Context, id string, shop *string) error
}

func (m *mockSubmissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	if m.createFn != nil {
		return m.createFn(ctx, sub)
	}
	sub.ID = "generated-id"
	return nil
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, id string, shop *string) (*domain.Submission, error) {
	return m.getByIDFn(ctx, id, shop)
}

func (m *mockSubmissionRepo) List(ctx context.Context, spec query.Spec) ([]domain.Submission, int, error) {
	return m.listFn(ctx, spec)
}

func (m *mockSubmissionRepo) UpdateStatus(ctx context.Context, id string, shop *string, change moderation.Change) (*domain.Submission, error) {
	return m.updateStatusFn(ctx, id, shop, change)
}

func (m *mockSubmissionRepo) Delete(ctx context.Context, id string, shop *string) error {
	return m.deleteFn(ctx, id, shop)
}

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

type mapListingCache struct {
	pages       map[string]ListingPage
	gens        map[string]uint64
	invalidated []string
}

func newMapListingCache() *mapListingCache {
	return &mapListingCache{pages: map[string]ListingPage{}, gens: map[string]uint64{}}
}

func (c *mapListingCache) Get(_ context.Context, shop, key string) (ListingPage, bool) {
	page, ok := c.pages[shop+"|"+key]
	return page, ok
}

func (c *mapListingCache) Generation(shop string) uint64 {
	return c.gens[shop]
}

func (c *mapListingCache) SetIfCurrent(_ context.Context, shop, key string, gen uint64, page ListingPage) bool {
	if c.gens[shop] != gen {
		return false
	}
	c.pages[shop+"|"+key] = page
	return true
}

func (c *mapListingCache) InvalidateShop(_ context.Context, shop string) {
	c.invalidated = append(c.invalidated, shop)
	c.gens[shop]++
	for k := range c.pages {
		if len(k) > len(shop) && k[:len(shop)+1] == shop+"|" {
			delete(c.pages, k)
		}
	}
}

type memoryHistoryRepo struct {
	entries []domain.SubmissionHistory
	fail    error
}

func (m *memoryHistoryRepo) Create(_ context.Context, entry *domain.SubmissionHistory) error {
	if m.fail != nil {
		return m.fail
	}
	entry.ID = "hist-" + entry.SubmissionID
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryHistoryRepo) ListBySubmission(_ context.Context, submissionID string, _ int) ([]domain.SubmissionHistory, error) {
	out := []domain.SubmissionHistory{}
	for _, entry := range m.entries {
		if entry.SubmissionID == submissionID {
			out = append(out, entry)
		}
	}
	return out, nil
}
