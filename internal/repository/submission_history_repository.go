package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/project-gallery/internal/domain"
)

// SubmissionHistoryRepository stores moderation audit entries.
type SubmissionHistoryRepository interface {
	Create(ctx context.Context, entry *domain.SubmissionHistory) error
	ListBySubmission(ctx context.Context, submissionID string, limit int) ([]domain.SubmissionHistory, error)
}

type submissionHistoryRepository struct {
	db DBTX
}

// NewSubmissionHistoryRepository builds repository.
func NewSubmissionHistoryRepository(db DBTX) SubmissionHistoryRepository {
	return &submissionHistoryRepository{db: db}
}

func (r *submissionHistoryRepository) Create(ctx context.Context, entry *domain.SubmissionHistory) error {
	const query = `
        INSERT INTO submission_history (submission_id, changed_by, old_status, new_status, rejection_reason)
        VALUES ($1::uuid,$2,$3,$4,$5)
        RETURNING id::text, created_at`
	return r.db.QueryRow(ctx, query,
		entry.SubmissionID,
		entry.ChangedBy,
		string(entry.OldStatus),
		string(entry.NewStatus),
		entry.RejectionReason,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *submissionHistoryRepository) ListBySubmission(ctx context.Context, submissionID string, limit int) ([]domain.SubmissionHistory, error) {
	if _, err := uuid.Parse(submissionID); err != nil {
		return []domain.SubmissionHistory{}, nil
	}
	if limit <= 0 {
		limit = 100
	}
	const query = `
        SELECT id::text, submission_id::text, changed_by, old_status, new_status, rejection_reason, created_at
        FROM submission_history WHERE submission_id=$1::uuid
        ORDER BY created_at ASC, id ASC
        LIMIT $2`
	rows, err := r.db.Query(ctx, query, submissionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.SubmissionHistory{}
	for rows.Next() {
		var entry domain.SubmissionHistory
		var oldStatus, newStatus string
		if err := rows.Scan(
			&entry.ID,
			&entry.SubmissionID,
			&entry.ChangedBy,
			&oldStatus,
			&newStatus,
			&entry.RejectionReason,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.OldStatus = domain.SubmissionStatus(oldStatus)
		entry.NewStatus = domain.SubmissionStatus(newStatus)
		result = append(result, entry)
	}
	return result, rows.Err()
}
