package pending

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/seedclassifier/internal/client/models"
	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/dmitrijs2005/seedclassifier/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, u *models.PendingUpload) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO pending_uploads (id, source_uri, display_name, kind, position, created_at)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM pending_uploads), ?)
		RETURNING position`

	err := r.db.QueryRowContext(ctx, query, u.ID, u.SourceURI, u.DisplayName, string(u.Kind), u.CreatedAt.UnixMilli()).
		Scan(&u.Position)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("failed to add pending upload: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, source_uri, display_name, kind, position, created_at FROM pending_uploads`

type scanner interface {
	Scan(dest ...any) error
}

func scanUpload(s scanner) (models.PendingUpload, error) {
	var (
		u       models.PendingUpload
		kind    string
		created int64
	)
	if err := s.Scan(&u.ID, &u.SourceURI, &u.DisplayName, &kind, &u.Position, &created); err != nil {
		return u, err
	}
	u.Kind = models.Kind(kind)
	u.CreatedAt = time.UnixMilli(created).UTC()
	return u, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.PendingUpload, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending uploads: %w", err)
	}
	defer rows.Close()

	var result []models.PendingUpload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending upload: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending uploads: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Rename(ctx context.Context, id, displayName string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE pending_uploads SET display_name = ? WHERE id = ?`, displayName, id)
	if err != nil {
		return fmt.Errorf("failed to rename pending upload %s: %w", id, err)
	}
	return dbx.ExpectOneRow(res)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_uploads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending upload %s: %w", id, err)
	}
	return dbx.ExpectOneRow(res)
}

func (r *SQLiteRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_uploads WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete pending uploads: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_uploads`); err != nil {
		return fmt.Errorf("failed to clear pending uploads: %w", err)
	}
	return nil
}
