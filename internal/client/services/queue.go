package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/seedclassifier/internal/client/models"
	"github.com/dmitrijs2005/seedclassifier/internal/client/repositories/pending"
	"github.com/dmitrijs2005/seedclassifier/internal/client/submit"
	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/dmitrijs2005/seedclassifier/internal/filex"
	"github.com/dmitrijs2005/seedclassifier/internal/logging"
	"github.com/google/uuid"
)

// Runner drives one submission run. *submit.Engine implements it.
type Runner interface {
	Run(ctx context.Context, items []models.PendingUpload) (submit.Outcome, error)
}

// ReportLister fetches server-side reports.
type ReportLister interface {
	Reports(ctx context.Context, creds submit.Credentials) ([]models.Report, error)
}

// QueueService manages the pending-upload list and hands it to the engine.
type QueueService struct {
	db      *sql.DB
	runner  Runner
	creds   submit.CredentialProvider
	reports ReportLister
	logger  logging.Logger
}

func NewQueueService(db *sql.DB, runner Runner, creds submit.CredentialProvider, reports ReportLister, logger logging.Logger) *QueueService {
	return &QueueService{db: db, runner: runner, creds: creds, reports: reports, logger: logger}
}

func (s *QueueService) repo() pending.Repository {
	return pending.NewSQLiteRepository(s.db)
}

// Add appends a local file to the list. An empty displayName defaults to
// the file's base name without extension.
func (s *QueueService) Add(ctx context.Context, sourceURI, displayName string) (*models.PendingUpload, error) {
	f, err := filex.Open(sourceURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	_ = f.Close()

	if strings.TrimSpace(displayName) == "" {
		p, _ := filex.LocalPath(sourceURI)
		base := filepath.Base(p)
		displayName = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if _, err := submit.FileName(displayName, sourceURI); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	u := &models.PendingUpload{
		ID:          uuid.NewString(),
		SourceURI:   sourceURI,
		DisplayName: displayName,
		Kind:        models.KindFromPath(sourceURI),
	}
	if err := s.repo().Add(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *QueueService) List(ctx context.Context) ([]models.PendingUpload, error) {
	return s.repo().List(ctx)
}

func (s *QueueService) Rename(ctx context.Context, id, displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		return fmt.Errorf("%w: display name is empty", common.ErrorValidation)
	}
	return s.repo().Rename(ctx, id, displayName)
}

func (s *QueueService) Delete(ctx context.Context, id string) error {
	return s.repo().Delete(ctx, id)
}

func (s *QueueService) Clear(ctx context.Context) error {
	return s.repo().Clear(ctx)
}

// Submit runs the engine over the current list and removes exactly the
// delivered items, even when the run ends early. Items added or renamed
// while the run was in flight stay in the list.
func (s *QueueService) Submit(ctx context.Context) (submit.Outcome, error) {
	items, err := s.repo().List(ctx)
	if err != nil {
		return submit.Outcome{}, err
	}

	out, runErr := s.runner.Run(ctx, items)

	if len(out.Delivered) > 0 {
		// the run context may already be canceled; delivered items still go
		n, err := s.repo().DeleteMany(context.WithoutCancel(ctx), out.Delivered)
		if err != nil {
			return out, errors.Join(runErr, fmt.Errorf("remove delivered items: %w", err))
		}
		s.logger.Debug(ctx, "delivered items removed", "count", n)
	}

	return out, runErr
}

// Reports lists the current user's reports from the server.
func (s *QueueService) Reports(ctx context.Context) ([]models.Report, error) {
	creds, err := s.creds.Credentials(ctx)
	if err != nil {
		return nil, err
	}
	return s.reports.Reports(ctx, creds)
}
