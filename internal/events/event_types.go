package events

import (
	"time"

	"github.com/spec-kit/project-gallery/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSubmissionCreated       EventType = "submission_created"
	EventSubmissionStatusChanged EventType = "submission_status_changed"
	EventSubmissionDeleted       EventType = "submission_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	SubmissionID string    `json:"submission_id"`
	Shop         string    `json:"shop"`
	Timestamp    time.Time `json:"timestamp"`
	Payload      any       `json:"payload,omitempty"`
}

// SubmissionCreatedPayload payload.
type SubmissionCreatedPayload struct {
	ProjectName string                  `json:"project_name"`
	Status      domain.SubmissionStatus `json:"status"`
	ImageCount  int                     `json:"image_count"`
}

// SubmissionStatusChangedPayload payload.
type SubmissionStatusChangedPayload struct {
	OldStatus       domain.SubmissionStatus `json:"old_status"`
	NewStatus       domain.SubmissionStatus `json:"new_status"`
	RejectionReason *string                 `json:"rejection_reason,omitempty"`
}

// SubmissionDeletedPayload payload.
type SubmissionDeletedPayload struct {
	Status domain.SubmissionStatus `json:"status"`
}
