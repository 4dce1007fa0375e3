package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/spec-kit/project-gallery/internal/config"
	"github.com/spec-kit/project-gallery/internal/events"
	"github.com/spec-kit/project-gallery/internal/observability"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
	client *retryablehttp.Client
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = 5 * time.Second
	client.RetryMax = 3
	client.RetryWaitMin = 250 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = observability.NewRetryLogger(logger)

	return &NotificationService{
		logger: logger,
		cfg:    cfg,
		client: client,
	}
}

// EventTypes lists the events the service reacts to.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventSubmissionCreated,
		events.EventSubmissionStatusChanged,
		events.EventSubmissionDeleted,
	}
}

// Handle routes one event to its notification.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventSubmissionCreated:
		return n.handleSubmissionCreated(ctx, event)
	case events.EventSubmissionStatusChanged:
		return n.handleSubmissionStatusChanged(ctx, event)
	case events.EventSubmissionDeleted:
		return n.handleSubmissionDeleted(ctx, event)
	default:
		return nil
	}
}

func (n *NotificationService) handleSubmissionCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("SubmissionCreated",
		zap.String("submission_id", event.SubmissionID),
		zap.String("shop", event.Shop),
		zap.Any("payload", event.Payload))
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) handleSubmissionStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("SubmissionStatusChanged",
		zap.String("submission_id", event.SubmissionID),
		zap.String("shop", event.Shop),
		zap.Any("payload", event.Payload))
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) handleSubmissionDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("SubmissionDeleted",
		zap.String("submission_id", event.SubmissionID),
		zap.String("shop", event.Shop))
	return n.sendWebhook(ctx, event)
}

// sendWebhook POSTs the event as JSON. It is a no-op without a configured URL.
func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode webhook event: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Gallery-Event", string(event.Type))

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	n.logger.Debug("webhook delivered",
		zap.String("event_type", string(event.Type)),
		zap.String("submission_id", event.SubmissionID))
	return nil
}
