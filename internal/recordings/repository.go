package recordings

import (
	"context"
	"database/sql"
	"errors"

	"call-recording/pkg/utils"
)

var Schema = []string{
	`CREATE TABLE IF NOT EXISTS recordings (
  id            BIGSERIAL PRIMARY KEY,
  duration      INTEGER CHECK (duration IS NULL OR duration >= 0),
  caller_id     TEXT,
  status        TEXT NOT NULL,
  recording_url TEXT NOT NULL DEFAULT '',
  user_id       BIGINT,
  user_role     TEXT,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS recordings_caller_id_idx ON recordings (caller_id)`,
}

// Repository persists Recording rows.
type Repository interface {
	Create(ctx context.Context, r Recording) (Recording, error)
	ListAll(ctx context.Context) ([]Recording, error)
	Search(ctx context.Context, substring string, page, limit int) ([]Recording, int, error)
}

const recordingColumns = `id, created_at, duration, caller_id, status, recording_url, user_id, user_role`

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Create(ctx context.Context, rec Recording) (Recording, error) {
	if rec.Status == "" {
		return Recording{}, errors.New("recordings: status required")
	}
	err := utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO recordings (duration, caller_id, status, recording_url, user_id, user_role)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at
`
		return tx.QueryRowContext(ctx, q,
			nullInt(rec.Duration),
			nullString(rec.CallerID),
			rec.Status,
			rec.RecordingURL,
			nullInt64(rec.UserID),
			nullString(rec.UserRole),
		).Scan(&rec.ID, &rec.Date)
	})
	if err != nil {
		return Recording{}, err
	}
	return rec, nil
}

func (r *PostgresRepo) ListAll(ctx context.Context) ([]Recording, error) {
	var out []Recording
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		out, err = queryRecordings(ctx, tx, `SELECT `+recordingColumns+` FROM recordings ORDER BY id`)
		return err
	})
	return out, err
}

func (r *PostgresRepo) Search(ctx context.Context, substring string, page, limit int) ([]Recording, int, error) {
	var (
		out   []Recording
		total int
	)
	pattern := utils.LikePattern(substring)
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sql.Tx) error {
		const countQ = `SELECT COUNT(*) FROM recordings WHERE COALESCE(caller_id, '') LIKE $1 ESCAPE '\'`
		if err := tx.QueryRowContext(ctx, countQ, pattern).Scan(&total); err != nil {
			return err
		}
		q := `SELECT ` + recordingColumns + ` FROM recordings
WHERE COALESCE(caller_id, '') LIKE $1 ESCAPE '\'
ORDER BY id
LIMIT $2 OFFSET $3`
		var err error
		out, err = queryRecordings(ctx, tx, q, pattern, limit, utils.Offset(page, limit))
		return err
	})
	return out, total, err
}

func queryRecordings(ctx context.Context, tx *sql.Tx, q string, args ...any) ([]Recording, error) {
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Recording, 0)
	for rows.Next() {
		var (
			rec            Recording
			duration       sql.NullInt32
			callerID, role sql.NullString
			userID         sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.Date, &duration, &callerID, &rec.Status, &rec.RecordingURL, &userID, &role); err != nil {
			return nil, err
		}
		if duration.Valid {
			d := int(duration.Int32)
			rec.Duration = &d
		}
		if callerID.Valid {
			rec.CallerID = &callerID.String
		}
		if role.Valid {
			rec.UserRole = &role.String
		}
		if userID.Valid {
			rec.UserID = &userID.Int64
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt32 {
	if i == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*i), Valid: true}
}

func nullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}
