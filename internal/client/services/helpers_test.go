package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/seedclassifier/internal/client/client"
	"github.com/dmitrijs2005/seedclassifier/internal/client/submit"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	require.NoError(t, err)
	return v
}

// ---- fake remote ----

type fakeRemote struct {
	HealthErr error
	CheckErr  error
	LastCheck submit.Credentials
}

func (f *fakeRemote) Health(context.Context) error { return f.HealthErr }

func (f *fakeRemote) Check(_ context.Context, creds submit.Credentials) error {
	f.LastCheck = creds
	return f.CheckErr
}
