package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/project-gallery/internal/domain"
	"github.com/spec-kit/project-gallery/internal/moderation"
	"github.com/spec-kit/project-gallery/internal/query"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SubmissionRepository persists submissions with their product snapshot and images.
// Lookups that find nothing return pgx.ErrNoRows. A non-nil shop scopes every
// lookup and mutation to that tenant.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	GetByID(ctx context.Context, id string, shop *string) (*domain.Submission, error)
	List(ctx context.Context, spec query.Spec) ([]domain.Submission, int, error)
	UpdateStatus(ctx context.Context, id string, shop *string, change moderation.Change) (*domain.Submission, error)
	Delete(ctx context.Context, id string, shop *string) error
}

type submissionRepository struct {
	db DBTX
}

// NewSubmissionRepository instantiates repository.
func NewSubmissionRepository(db DBTX) SubmissionRepository {
	return &submissionRepository{db: db}
}

const submissionColumns = `
        s.id::text, s.shop, s.status, s.first_name, s.last_name, s.email, s.social_media_handle,
        s.project_name, s.pattern_name, s.designer_name, s.pattern_link, s.project_details,
        s.categories, s.display_preference, s.submitted_at, s.approved_at, s.rejected_at,
        s.rejection_reason, s.updated_at,
        p.id::text, p.external_id, p.title, p.handle, p.image_url, p.price::text, p.currency,
        p.variant_id, p.variant_title, p.selected_options`

const submissionFrom = `
        FROM submissions s
        LEFT JOIN submission_products p ON p.submission_id = s.id`

func (r *submissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	if sub.Status == "" {
		sub.Status = domain.SubmissionStatusPending
	}
	if sub.Categories == nil {
		sub.Categories = []string{}
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
        INSERT INTO submissions (shop, status, first_name, last_name, email, social_media_handle,
            project_name, pattern_name, designer_name, pattern_link, project_details,
            categories, display_preference, approved_at, rejected_at, rejection_reason)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id::text, submitted_at, updated_at`,
			sub.Shop,
			string(sub.Status),
			sub.FirstName,
			sub.LastName,
			sub.Email,
			sub.SocialMediaHandle,
			sub.ProjectName,
			sub.PatternName,
			sub.DesignerName,
			sub.PatternLink,
			sub.ProjectDetails,
			sub.Categories,
			string(sub.DisplayPreference),
			sub.ApprovedAt,
			sub.RejectedAt,
			sub.RejectionReason,
		).Scan(&sub.ID, &sub.SubmittedAt, &sub.UpdatedAt); err != nil {
			return fmt.Errorf("insert submission: %w", err)
		}

		if sub.Product != nil {
			if err := insertProduct(ctx, tx, sub.ID, sub.Product); err != nil {
				return err
			}
		}

		for i := range sub.Images {
			if err := insertImage(ctx, tx, sub.ID, i, &sub.Images[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertProduct(ctx context.Context, tx pgx.Tx, submissionID string, product *domain.ProductSnapshot) error {
	options := product.SelectedOptions
	if options == nil {
		options = []domain.SelectedOption{}
	}
	rawOptions, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("encode selected options: %w", err)
	}
	price := product.Price
	if price == "" {
		price = "0"
	}

	const q = `
        INSERT INTO submission_products (submission_id, external_id, title, handle, image_url, price,
            currency, variant_id, variant_title, selected_options)
        VALUES ($1,$2,$3,$4,$5,$6::numeric,$7,$8,$9,$10::jsonb)
        RETURNING id::text, price::text`
	if err := tx.QueryRow(ctx, q,
		submissionID,
		product.ExternalID,
		product.Title,
		product.Handle,
		product.ImageURL,
		price,
		product.Currency,
		product.VariantID,
		product.VariantTitle,
		string(rawOptions),
	).Scan(&product.ID, &product.Price); err != nil {
		return fmt.Errorf("insert product snapshot: %w", err)
	}
	product.SubmissionID = submissionID
	return nil
}

func insertImage(ctx context.Context, tx pgx.Tx, submissionID string, position int, image *domain.Image) error {
	const q = `
        INSERT INTO submission_images (submission_id, url, filename, size_bytes, mime_type, position)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id::text, created_at`
	if err := tx.QueryRow(ctx, q,
		submissionID,
		image.URL,
		image.Filename,
		image.SizeBytes,
		image.MimeType,
		position,
	).Scan(&image.ID, &image.CreatedAt); err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	image.SubmissionID = submissionID
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string, shop *string) (*domain.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pgx.ErrNoRows
	}

	args := []any{id}
	where := "WHERE s.id = $1"
	if shop != nil {
		args = append(args, *shop)
		where += " AND s.shop = $2"
	}

	q := fmt.Sprintf(`SELECT %s %s %s`, submissionColumns, submissionFrom, where)
	sub, err := scanSubmission(r.db.QueryRow(ctx, q, args...))
	if err != nil {
		return nil, err
	}

	subs := []domain.Submission{sub}
	if err := r.attachImages(ctx, subs); err != nil {
		return nil, err
	}
	return &subs[0], nil
}

func (r *submissionRepository) List(ctx context.Context, spec query.Spec) ([]domain.Submission, int, error) {
	where, args := buildSubmissionWhere(spec.Filter, 1)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s %s`, submissionFrom, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}
	if total == 0 || spec.Offset >= total {
		return []domain.Submission{}, total, nil
	}

	argNum := len(args) + 1
	dataQuery := fmt.Sprintf(`SELECT %s %s %s %s LIMIT $%d OFFSET $%d`,
		submissionColumns, submissionFrom, where, buildOrderBy(spec.Sort), argNum, argNum+1)
	args = append(args, spec.Limit, spec.Offset)

	rows, err := r.db.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Submission, 0, spec.Limit)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate submissions: %w", err)
	}

	if err := r.attachImages(ctx, result); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

// UpdateStatus writes the status with its timestamp and reason columns in one statement.
func (r *submissionRepository) UpdateStatus(ctx context.Context, id string, shop *string, change moderation.Change) (*domain.Submission, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pgx.ErrNoRows
	}

	args := []any{
		string(change.Status),
		change.ApprovedAt,
		change.RejectedAt,
		change.SetRejectionReason,
		change.RejectionReason,
		id,
	}
	q := `
        UPDATE submissions SET
            status = $1,
            approved_at = COALESCE($2::timestamptz, approved_at),
            rejected_at = COALESCE($3::timestamptz, rejected_at),
            rejection_reason = CASE WHEN $4::boolean THEN $5::text ELSE rejection_reason END,
            updated_at = NOW()
        WHERE id = $6`
	if shop != nil {
		args = append(args, *shop)
		q += " AND shop = $7"
	}

	cmd, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("update submission status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id, shop)
}

func (r *submissionRepository) Delete(ctx context.Context, id string, shop *string) error {
	if _, err := uuid.Parse(id); err != nil {
		return pgx.ErrNoRows
	}

	args := []any{id}
	q := `DELETE FROM submissions WHERE id = $1`
	if shop != nil {
		args = append(args, *shop)
		q += " AND shop = $2"
	}

	cmd, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// attachImages loads the images of every submission in one round trip.
func (r *submissionRepository) attachImages(ctx context.Context, subs []domain.Submission) error {
	if len(subs) == 0 {
		return nil
	}

	ids := make([]string, len(subs))
	index := make(map[string]int, len(subs))
	for i := range subs {
		ids[i] = subs[i].ID
		index[subs[i].ID] = i
		subs[i].Images = []domain.Image{}
	}

	const q = `
        SELECT id::text, submission_id::text, url, filename, size_bytes, mime_type, created_at
        FROM submission_images
        WHERE submission_id = ANY($1::uuid[])
        ORDER BY submission_id, position, created_at`
	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		return fmt.Errorf("load images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var image domain.Image
		if err := rows.Scan(
			&image.ID,
			&image.SubmissionID,
			&image.URL,
			&image.Filename,
			&image.SizeBytes,
			&image.MimeType,
			&image.CreatedAt,
		); err != nil {
			return fmt.Errorf("scan image: %w", err)
		}
		if i, ok := index[image.SubmissionID]; ok {
			subs[i].Images = append(subs[i].Images, image)
		}
	}
	return rows.Err()
}

type productColumns struct {
	ID              *string
	ExternalID      *string
	Title           *string
	Handle          *string
	ImageURL        *string
	Price           *string
	Currency        *string
	VariantID       *string
	VariantTitle    *string
	SelectedOptions []byte
}

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var (
		sub        domain.Submission
		status     string
		preference string
		product    productColumns
	)
	if err := row.Scan(
		&sub.ID,
		&sub.Shop,
		&status,
		&sub.FirstName,
		&sub.LastName,
		&sub.Email,
		&sub.SocialMediaHandle,
		&sub.ProjectName,
		&sub.PatternName,
		&sub.DesignerName,
		&sub.PatternLink,
		&sub.ProjectDetails,
		&sub.Categories,
		&preference,
		&sub.SubmittedAt,
		&sub.ApprovedAt,
		&sub.RejectedAt,
		&sub.RejectionReason,
		&sub.UpdatedAt,
		&product.ID,
		&product.ExternalID,
		&product.Title,
		&product.Handle,
		&product.ImageURL,
		&product.Price,
		&product.Currency,
		&product.VariantID,
		&product.VariantTitle,
		&product.SelectedOptions,
	); err != nil {
		return domain.Submission{}, err
	}

	sub.Status = domain.SubmissionStatus(status)
	sub.DisplayPreference = domain.DisplayPreference(preference)
	if sub.Categories == nil {
		sub.Categories = []string{}
	}

	if product.ID != nil {
		snapshot := &domain.ProductSnapshot{
			ID:           *product.ID,
			SubmissionID: sub.ID,
			ExternalID:   deref(product.ExternalID),
			Title:        deref(product.Title),
			Handle:       deref(product.Handle),
			ImageURL:     deref(product.ImageURL),
			Price:        deref(product.Price),
			Currency:     deref(product.Currency),
			VariantID:    deref(product.VariantID),
			VariantTitle: deref(product.VariantTitle),
		}
		if len(product.SelectedOptions) > 0 {
			if err := json.Unmarshal(product.SelectedOptions, &snapshot.SelectedOptions); err != nil {
				return domain.Submission{}, fmt.Errorf("decode selected options: %w", err)
			}
		}
		sub.Product = snapshot
	}
	return sub, nil
}

// buildSubmissionWhere renders the filter as a WHERE clause with positional args
// numbered from startArg. Values never appear in the SQL text.
func buildSubmissionWhere(filter query.Filter, startArg int) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	argNum := startArg

	if filter.Shop != nil {
		conditions = append(conditions, fmt.Sprintf("s.shop = $%d", argNum))
		args = append(args, *filter.Shop)
		argNum++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", argNum))
		args = append(args, string(*filter.Status))
		argNum++
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(s.categories)", argNum))
		args = append(args, filter.Category)
		argNum++
	}
	if filter.Search != "" {
		p := fmt.Sprintf("$%d", argNum)
		columns := []string{"s.project_name", "p.title"}
		if filter.SearchPersonal {
			columns = append(columns, "s.first_name", "s.last_name", "s.email")
		}
		matches := make([]string, len(columns))
		for i, column := range columns {
			matches[i] = fmt.Sprintf("%s ILIKE %s", column, p)
		}
		conditions = append(conditions, "("+strings.Join(matches, " OR ")+")")
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

var sortColumns = map[query.SortKey]string{
	query.SortBySubmittedAt: "s.submitted_at",
	query.SortByApprovedAt:  "s.approved_at",
	query.SortByProjectName: "s.project_name",
}

// buildOrderBy only ever emits allow-listed columns. Ties fall back to id.
func buildOrderBy(sort query.Sort) string {
	column, ok := sortColumns[sort.Key]
	if !ok {
		column = "s.submitted_at"
	}
	direction := "DESC"
	if sort.Direction == query.Asc {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s NULLS LAST, s.id ASC", column, direction)
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
