package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/dmitrijs2005/seedclassifier/internal/logging"
	"github.com/dmitrijs2005/seedclassifier/internal/server/inference"
	"github.com/dmitrijs2005/seedclassifier/internal/server/metrics"
	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
	"github.com/dmitrijs2005/seedclassifier/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/seedclassifier/internal/server/storage"
)

// DefaultReportLimit bounds GET /reports/.
const DefaultReportLimit = 50

// Upload is one received image.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Enqueuer accepts forwarding jobs without blocking.
type Enqueuer interface {
	Enqueue(job inference.Job) bool
}

// ImageService stores uploads, records their reports and schedules analysis.
type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.Store
	forwarder   Enqueuer
	logger      logging.Logger
}

func NewImageService(db *sql.DB, m repomanager.RepositoryManager, store storage.Store, fwd Enqueuer, logger logging.Logger) *ImageService {
	return &ImageService{
		db:          db,
		repomanager: m,
		store:       store,
		forwarder:   fwd,
		logger:      logger.With("module", "images"),
	}
}

// Upload persists the image, creates a pending report owned by user and
// hands the image to the forwarder. A full forwarding queue does not fail
// the upload.
func (s *ImageService) Upload(ctx context.Context, user *Principal, up Upload) (*models.Report, error) {
	if user == nil {
		return nil, common.ErrorUnauthorized
	}
	filename := strings.TrimSpace(up.Filename)
	if filename == "" {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: file name is empty", common.ErrorWrongFormat)
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	location, err := s.store.Put(ctx, user.ID, storage.Object{Filename: filename, ContentType: contentType, Data: up.Data})
	if err != nil {
		metrics.Uploads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("store image: %w", err)
	}

	report, err := s.repomanager.Reports(s.db).Create(ctx, &models.Report{
		Filename:    filename,
		ContentType: contentType,
		Location:    location,
		Status:      models.ReportPending,
		SubmitterID: user.ID,
	})
	if err != nil {
		metrics.Uploads.WithLabelValues("error").Inc()
		s.logger.Error(ctx, "report not recorded, stored image orphaned", "location", location, "error", err)
		return nil, fmt.Errorf("create report: %w", err)
	}

	metrics.Uploads.WithLabelValues("accepted").Inc()
	s.logger.Info(ctx, "image accepted", "report_id", report.ID, "user", user.Login, "file", filename, "bytes", len(up.Data))

	if !s.forwarder.Enqueue(inference.Job{
		ReportID:    report.ID,
		Filename:    filename,
		ContentType: contentType,
		Location:    location,
		Data:        up.Data,
	}) {
		s.logger.Warn(ctx, "forwarding queue full, report stays pending", "report_id", report.ID)
	}

	return report, nil
}

// Reports returns the newest reports visible to user: every report for
// roles holding read:reports, the user's own uploads for uploaders.
func (s *ImageService) Reports(ctx context.Context, user *Principal, limit int) ([]models.Report, error) {
	if user == nil {
		return nil, common.ErrorUnauthorized
	}
	if limit <= 0 || limit > DefaultReportLimit {
		limit = DefaultReportLimit
	}

	repo := s.repomanager.Reports(s.db)
	switch {
	case user.Role.Can(models.PermReadReports):
		return repo.ListRecent(ctx, limit)
	case user.Role.Can(models.PermUploadImages):
		return repo.ListBySubmitter(ctx, user.ID, limit)
	default:
		return nil, common.ErrorForbidden
	}
}
