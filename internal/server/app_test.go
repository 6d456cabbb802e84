package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/seedclassifier/internal/logging"
	"github.com/dmitrijs2005/seedclassifier/internal/server/config"
	"github.com/dmitrijs2005/seedclassifier/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeManager struct {
	repomanager.RepositoryManager
	migrateErr error
	migrated   bool
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.migrateErr
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.StorageBackend = config.StorageDB
	c.ForwardWorkers = 2
	return c
}

func TestNewApp_MigrationError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rm := &fakeManager{RepositoryManager: repomanager.NewPostgresRepositoryManager(), migrateErr: errors.New("boom")}

	_, err = newApp(context.Background(), testConfig(), logging.NewNopLogger(), db, rm)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations error")
}

func TestNewApp_ValidateRejectsBadConfig(t *testing.T) {
	c := testConfig()
	c.StorageBackend = "ftp"

	_, err := NewApp(context.Background(), c)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	rm := &fakeManager{RepositoryManager: repomanager.NewPostgresRepositoryManager()}
	app, err := newApp(context.Background(), testConfig(), logging.NewNopLogger(), db, rm)
	require.NoError(t, err)
	assert.True(t, rm.migrated)

	mock.ExpectQuery(`FROM reports\s+WHERE status = 'pending'`).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "content_type", "image_s3_url", "status",
			"model_response", "submitter_id", "created_at", "updated_at"}))
	mock.ExpectClose()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
