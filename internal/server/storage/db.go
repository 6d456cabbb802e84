package storage

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
	"github.com/dmitrijs2005/seedclassifier/internal/server/repositories/repomanager"
)

const dbPrefix = "db://images/"

// DBStore keeps images in the images table as base64 data URLs.
type DBStore struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewDBStore(db *sql.DB, rm repomanager.RepositoryManager) *DBStore {
	return &DBStore{db: db, rm: rm}
}

func (s *DBStore) Put(ctx context.Context, authorID int64, obj Object) (string, error) {
	img, err := s.rm.Images(s.db).Create(ctx, &models.Image{
		Data:     DataURL(obj.ContentType, obj.Data),
		Filename: cleanFilename(obj.Filename),
		AuthorID: authorID,
	})
	if err != nil {
		return "", err
	}
	return dbPrefix + strconv.FormatInt(img.ID, 10), nil
}

func (s *DBStore) Get(ctx context.Context, location string) (*Object, error) {
	raw, ok := strings.CutPrefix(location, dbPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadLocation, location)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadLocation, location)
	}

	img, err := s.rm.Images(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}

	contentType, data, err := ParseDataURL(img.Data)
	if err != nil {
		return nil, err
	}
	return &Object{Filename: img.Filename, ContentType: contentType, Data: data}, nil
}

// DataURL encodes data as "data:<contentType>;base64,<payload>".
func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURL is the inverse of DataURL.
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data url")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("data url without payload")
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("data url is not base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data url: %w", err)
	}
	return contentType, data, nil
}
