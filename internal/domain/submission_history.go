package domain

import "time"

// SubmissionHistory is an immutable audit entry for one moderation decision.
type SubmissionHistory struct {
	ID              string
	SubmissionID    string
	ChangedBy       *string
	OldStatus       SubmissionStatus
	NewStatus       SubmissionStatus
	RejectionReason *string
	CreatedAt       time.Time
}
