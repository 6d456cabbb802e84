// Package pending persists the ordered list of uploads awaiting submission.
//
// Items keep the order they were added in. Position is assigned by the
// repository and never reused while the row exists.
package pending

import (
	"context"

	"github.com/dmitrijs2005/seedclassifier/internal/client/models"
)

type Repository interface {
	// Add appends u to the end of the list and fills u.Position.
	Add(ctx context.Context, u *models.PendingUpload) error

	// List returns all items ordered by position.
	List(ctx context.Context) ([]models.PendingUpload, error)

	Rename(ctx context.Context, id, displayName string) error
	Delete(ctx context.Context, id string) error

	// DeleteMany removes the given IDs and reports how many rows went away.
	// Unknown IDs are ignored.
	DeleteMany(ctx context.Context, ids []string) (int64, error)

	Clear(ctx context.Context) error
}
