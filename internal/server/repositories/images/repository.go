package images

import (
	"context"

	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
)

// Repository stores uploads for the database storage backend.
type Repository interface {
	Create(ctx context.Context, image *models.Image) (*models.Image, error)
	Get(ctx context.Context, id int64) (*models.Image, error)
}
