package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/dmitrijs2005/seedclassifier/internal/dbx"
	"github.com/dmitrijs2005/seedclassifier/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (login, password_hash, name, role, creator_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	var name sql.NullString
	if user.Name != "" {
		name = sql.NullString{String: user.Name, Valid: true}
	}
	var creator sql.NullInt64
	if user.CreatorID != nil {
		creator = sql.NullInt64{Int64: *user.CreatorID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Login, user.PasswordHash, name, string(user.Role), creator).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const selectUser = `SELECT id, login, password_hash, name, role, creator_id, created_at, updated_at FROM users`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		u       models.User
		name    sql.NullString
		role    string
		creator sql.NullInt64
	)
	if err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &name, &role, &creator, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Name = name.String
	u.Role = models.Role(role)
	if creator.Valid {
		id := creator.Int64
		u.CreatorID = &id
	}
	return &u, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	query := selectUser + `
		 WHERE login = $1
		 `

	user, err := scanUser(r.db.QueryRowContext(ctx, query, login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.User, error) {
	query := selectUser + `
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) SetPassword(ctx context.Context, login, passwordHash string) error {
	query :=
		`UPDATE users SET password_hash = $2, updated_at = now()
		 WHERE login = $1
		 `

	res, err := r.db.ExecContext(ctx, query, login, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return dbx.ExpectOneRow(res)
}
