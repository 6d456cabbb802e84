package reports

import (
	"context"
	"encoding/json"

	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
)

// Repository persists upload reports and their analysis results.
type Repository interface {
	Create(ctx context.Context, report *models.Report) (*models.Report, error)
	SetResult(ctx context.Context, id int64, status models.ReportStatus, response json.RawMessage) error
	ListBySubmitter(ctx context.Context, submitterID int64, limit int) ([]models.Report, error)
	ListRecent(ctx context.Context, limit int) ([]models.Report, error)
	ListPending(ctx context.Context, limit int) ([]models.Report, error)
}
