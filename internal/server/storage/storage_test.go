package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/seedclassifier/internal/server/config"
	"github.com/dmitrijs2005/seedclassifier/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanFilename(t *testing.T) {
	tests := map[string]string{
		"seed.jpg":         "seed.jpg",
		"dir/seed.jpg":     "seed.jpg",
		`C:\pics\seed.jpg`: "seed.jpg",
		"../../etc/passwd": "passwd",
		"":                 "upload.bin",
		"/":                "upload.bin",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanFilename(in), in)
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var cfg config.Config
	cfg.LoadDefaults()

	st, err := New(context.Background(), &cfg, db, repomanager.NewPostgresRepositoryManager())
	require.NoError(t, err)
	assert.IsType(t, &DBStore{}, st)

	cfg.StorageBackend = "tape"
	_, err = New(context.Background(), &cfg, db, repomanager.NewPostgresRepositoryManager())
	assert.Error(t, err)
}
