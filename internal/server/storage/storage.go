// Package storage keeps uploaded images either in PostgreSQL (as data URLs)
// or in S3-compatible object storage, and reads them back for re-forwarding.
//
// Every stored object is addressed by a location string:
//
//	db://images/<id>
//	s3://<bucket>/<key>
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dmitrijs2005/seedclassifier/internal/server/config"
	"github.com/dmitrijs2005/seedclassifier/internal/server/repositories/repomanager"
)

// ErrBadLocation is returned by Get for a location the store does not own.
var ErrBadLocation = errors.New("bad storage location")

// Object is an upload as stored.
type Object struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Store persists uploads.
type Store interface {
	Put(ctx context.Context, authorID int64, obj Object) (string, error)
	Get(ctx context.Context, location string) (*Object, error)
}

// New returns the store selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config, db *sql.DB, rm repomanager.RepositoryManager) (Store, error) {
	switch cfg.StorageBackend {
	case config.StorageDB:
		return NewDBStore(db, rm), nil
	case config.StorageS3:
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// cleanFilename reduces a client-supplied name to a safe last path element.
func cleanFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == "" {
		return "upload.bin"
	}
	return name
}
