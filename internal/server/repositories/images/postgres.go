package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/dmitrijs2005/seedclassifier/internal/dbx"
	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
)

// PostgresRepository implements image storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the image and fills in ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, image *models.Image) (*models.Image, error) {
	query := `
		INSERT INTO images (base64_image, filename, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, image.Data, image.Filename, image.AuthorID).
		Scan(&image.ID, &image.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return image, nil
}

// Get returns the image with the given id, or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Image, error) {
	query := `
		SELECT id, base64_image, filename, author_id, created_at FROM images
		WHERE id = $1
	`
	var image models.Image
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&image.ID, &image.Data, &image.Filename, &image.AuthorID, &image.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &image, nil
}
