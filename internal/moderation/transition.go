// Package moderation holds the submission status lifecycle.
//
// Every status is reachable from every other status. A transition never erases the
// timestamps of earlier transitions; it only stamps the columns that belong to the
// target status.
package moderation

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/project-gallery/internal/domain"
	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

// Change is the set of columns one transition writes, together, in a single update.
// Nil timestamp fields are left untouched by the store.
type Change struct {
	Status     domain.SubmissionStatus
	ApprovedAt *time.Time
	RejectedAt *time.Time
	// SetRejectionReason is true when the reason column must be written (even to NULL).
	SetRejectionReason bool
	RejectionReason    *string
}

var allowedTransitions = map[domain.SubmissionStatus][]domain.SubmissionStatus{
	domain.SubmissionStatusPending:  {domain.SubmissionStatusPending, domain.SubmissionStatusApproved, domain.SubmissionStatusRejected},
	domain.SubmissionStatusApproved: {domain.SubmissionStatusPending, domain.SubmissionStatusApproved, domain.SubmissionStatusRejected},
	domain.SubmissionStatusRejected: {domain.SubmissionStatusPending, domain.SubmissionStatusApproved, domain.SubmissionStatusRejected},
}

// IsValidTransition reports whether current may move to next.
func IsValidTransition(current, next domain.SubmissionStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Transition validates the requested target status and computes the change to write.
// A rejection reason is stored verbatim; blank reasons are stored as NULL.
func Transition(target string, reason *string, now time.Time) (Change, error) {
	if strings.TrimSpace(target) == "" {
		return Change{}, apperrors.NewMissingField("status")
	}
	status, ok := domain.ParseSubmissionStatus(target)
	if !ok {
		return Change{}, apperrors.NewInvalidField("status", fmt.Sprintf("Invalid status: %s", target))
	}

	change := Change{Status: status}
	stamp := now.UTC()
	switch status {
	case domain.SubmissionStatusApproved:
		change.ApprovedAt = &stamp
	case domain.SubmissionStatusRejected:
		change.RejectedAt = &stamp
		change.SetRejectionReason = true
		if reason != nil && strings.TrimSpace(*reason) != "" {
			verbatim := *reason
			change.RejectionReason = &verbatim
		}
	}
	return change, nil
}

// Check returns an error when the submission's current status cannot move to the change.
func Check(current domain.SubmissionStatus, change Change) error {
	if !IsValidTransition(current, change.Status) {
		return apperrors.NewInvalidField("status",
			fmt.Sprintf("Cannot move submission from %s to %s", current, change.Status))
	}
	return nil
}

// Apply writes the change onto an in-memory submission.
func Apply(sub *domain.Submission, change Change) {
	sub.Status = change.Status
	if change.ApprovedAt != nil {
		approvedAt := *change.ApprovedAt
		sub.ApprovedAt = &approvedAt
	}
	if change.RejectedAt != nil {
		rejectedAt := *change.RejectedAt
		sub.RejectedAt = &rejectedAt
	}
	if change.SetRejectionReason {
		sub.RejectionReason = change.RejectionReason
	}
}
