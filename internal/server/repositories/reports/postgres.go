package reports

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/seedclassifier/internal/dbx"
	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a report and fills in ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, report *models.Report) (*models.Report, error) {
	query := `
		INSERT INTO reports (filename, content_type, image_s3_url, status, submitter_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if report.Status == "" {
		report.Status = models.ReportPending
	}
	err := r.db.QueryRowContext(ctx, query,
		report.Filename, report.ContentType, report.Location, string(report.Status), report.SubmitterID).
		Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return report, nil
}

// SetResult records the analysis outcome. A nil response stores NULL.
func (r *PostgresRepository) SetResult(ctx context.Context, id int64, status models.ReportStatus, response json.RawMessage) error {
	query := `
		UPDATE reports SET status = $2, model_response = $3, updated_at = now()
		WHERE id = $1
	`
	var body sql.NullString
	if len(response) > 0 {
		body = sql.NullString{String: string(response), Valid: true}
	}
	res, err := r.db.ExecContext(ctx, query, id, string(status), body)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res)
}

const selectReport = `
		SELECT id, filename, content_type, image_s3_url, status, model_response, submitter_id, created_at, updated_at
		FROM reports
`

// ListBySubmitter returns the newest reports of one user, at most limit rows.
func (r *PostgresRepository) ListBySubmitter(ctx context.Context, submitterID int64, limit int) ([]models.Report, error) {
	query := selectReport + `
		WHERE submitter_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	return r.list(ctx, query, submitterID, limit)
}

// ListRecent returns the newest reports of every submitter.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]models.Report, error) {
	query := selectReport + `
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

// ListPending returns the oldest reports still waiting for analysis.
func (r *PostgresRepository) ListPending(ctx context.Context, limit int) ([]models.Report, error) {
	query := selectReport + `
		WHERE status = 'pending'
		ORDER BY id
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Report, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Report
	for rows.Next() {
		var (
			item      models.Report
			status    string
			response  []byte
			submitter sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &item.Filename, &item.ContentType, &item.Location, &status,
			&response, &submitter, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		item.Status = models.ReportStatus(status)
		if len(response) > 0 {
			item.ModelResponse = json.RawMessage(response)
		}
		item.SubmitterID = submitter.Int64
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
