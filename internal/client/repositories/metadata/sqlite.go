package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/seedclassifier/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes keys; absent keys are ignored.
func (r *SQLiteRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := `DELETE FROM metadata WHERE key IN (?` + strings.Repeat(",?", len(keys)-1) + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete %s: %w", strings.Join(keys, ","), err)
	}
	return nil
}

// SaveCredentials stores both halves of the pair. Run it inside a
// transaction when the pair must change atomically.
func (r *SQLiteRepository) SaveCredentials(ctx context.Context, login string, password []byte) error {
	if err := r.Set(ctx, KeyLogin, []byte(login)); err != nil {
		return err
	}
	return r.Set(ctx, KeyPassword, password)
}

// LoadCredentials returns ErrNoCredentials unless a non-empty login is stored.
func (r *SQLiteRepository) LoadCredentials(ctx context.Context) (string, []byte, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM metadata WHERE key IN (?, ?)`, KeyLogin, KeyPassword)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read credentials: %w", err)
	}
	defer rows.Close()

	var (
		login    string
		password []byte
	)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return "", nil, fmt.Errorf("failed to scan credentials: %w", err)
		}
		if key == KeyLogin {
			login = string(value)
		} else {
			password = value
		}
	}
	if err := rows.Err(); err != nil {
		return "", nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	if login == "" {
		return "", nil, ErrNoCredentials
	}
	if password == nil {
		password = []byte{}
	}
	return login, password, nil
}

func (r *SQLiteRepository) ForgetCredentials(ctx context.Context) error {
	return r.Delete(ctx, KeyLogin, KeyPassword)
}
