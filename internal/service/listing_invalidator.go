package service

import (
	"context"

	"github.com/spec-kit/project-gallery/internal/events"
)

// ListingInvalidator drops a shop's cached gallery pages whenever one of its
// submissions changes.
type ListingInvalidator struct {
	dispatcher events.Dispatcher
	cache      ListingCache
}

// NewListingInvalidator creates the subscriber.
func NewListingInvalidator(dispatcher events.Dispatcher, cache ListingCache) *ListingInvalidator {
	return &ListingInvalidator{dispatcher: dispatcher, cache: cache}
}

// RegisterHandlers subscribes to events.
func (l *ListingInvalidator) RegisterHandlers() {
	if l.dispatcher == nil || l.cache == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventSubmissionCreated,
		events.EventSubmissionStatusChanged,
		events.EventSubmissionDeleted,
	} {
		l.dispatcher.Subscribe(eventType, l.handle)
	}
}

func (l *ListingInvalidator) handle(ctx context.Context, event events.Event) error {
	if event.Shop != "" {
		l.cache.InvalidateShop(ctx, event.Shop)
	}
	return nil
}
