package users

import (
	"context"
	"database/sql"
	"errors"

	"call-recording/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
)

var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
  id            BIGSERIAL PRIMARY KEY,
  username      TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  email         TEXT NOT NULL DEFAULT '',
  full_name     TEXT NOT NULL DEFAULT '',
  role          TEXT NOT NULL,
  disabled      BOOLEAN NOT NULL DEFAULT FALSE,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
}

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
}

const userColumns = `id, username, password_hash, email, full_name, role, disabled, created_at`

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Create(ctx context.Context, u User) (User, error) {
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO users (username, password_hash, email, full_name, role, disabled)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at
`
		return tx.QueryRowContext(ctx, q, u.Username, u.PasswordHash, u.Email, u.FullName, u.Role, u.Disabled).
			Scan(&u.ID, &u.CreatedAt)
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return User{}, ErrUsernameTaken
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepo) getOne(ctx context.Context, q string, arg any) (User, error) {
	var u User
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, q, arg).Scan(
			&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FullName, &u.Role, &u.Disabled, &u.CreatedAt,
		)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
