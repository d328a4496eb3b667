package calls

import (
	"context"
	"database/sql"
	"errors"

	"call-recording/pkg/utils"
)

var Schema = []string{
	`CREATE TABLE IF NOT EXISTS call_states (
  id            BIGSERIAL PRIMARY KEY,
  uuid          TEXT NOT NULL UNIQUE,
  phase         TEXT NOT NULL DEFAULT 'active',
  status        TEXT NOT NULL,
  transcript    TEXT,
  translation   TEXT,
  caller_id     TEXT,
  duration      INTEGER CHECK (duration IS NULL OR duration >= 0),
  recording_url TEXT,
  user_id       BIGINT,
  user_role     TEXT,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
}

const callStateColumns = `id, uuid, phase, status, transcript, translation, caller_id, duration, recording_url, user_id, user_role, created_at`

// PostgresStore is the database/sql Store. Each method runs in its own
// transaction via utils.WithTx.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

func (s *PostgresStore) Exists(ctx context.Context, uuid string) (bool, error) {
	var ok bool
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sql.Tx) error {
		const q = `SELECT EXISTS (SELECT 1 FROM call_states WHERE uuid = $1)`
		return tx.QueryRowContext(ctx, q, uuid).Scan(&ok)
	})
	return ok, err
}

func (s *PostgresStore) Create(ctx context.Context, uuid string, status ProviderStatus) (bool, error) {
	if uuid == "" {
		return false, ErrInvalidArgument
	}
	var created bool
	err := utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
INSERT INTO call_states (uuid, phase, status)
VALUES ($1, $2, $3)
ON CONFLICT (uuid) DO NOTHING
`
		res, err := tx.ExecContext(ctx, q, uuid, string(PhaseActive), string(status))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		created = n == 1
		return nil
	})
	return created, err
}

func (s *PostgresStore) Get(ctx context.Context, uuid string) (CallState, bool, error) {
	var (
		cs    CallState
		found bool
	)
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sql.Tx) error {
		q := `SELECT ` + callStateColumns + ` FROM call_states WHERE uuid = $1`
		var err error
		cs, err = scanCallState(tx.QueryRowContext(ctx, q, uuid))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return cs, found, err
}

func (s *PostgresStore) UpdateResults(ctx context.Context, uuid string, u ResultUpdate) (bool, error) {
	var updated bool
	err := utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
UPDATE call_states
SET transcript  = COALESCE($2, transcript),
    translation = COALESCE($3, translation)
WHERE uuid = $1
`
		res, err := tx.ExecContext(ctx, q, uuid, nullString(u.Transcript), nullString(u.Translation))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		updated = n > 0
		return nil
	})
	return updated, err
}

// Delete removes the row. Concurrent clears of the same uuid race on the
// row lock; only the one that sees RowsAffected == 1 reports true. A stored
// row is always in PhaseActive since clearing deletes it.
func (s *PostgresStore) Delete(ctx context.Context, uuid string) (bool, error) {
	var deleted bool
	err := utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const q = `DELETE FROM call_states WHERE uuid = $1`
		res, err := tx.ExecContext(ctx, q, uuid)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n == 1
		return nil
	})
	return deleted, err
}

func (s *PostgresStore) List(ctx context.Context) ([]CallState, error) {
	var out []CallState
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sql.Tx) error {
		q := `SELECT ` + callStateColumns + ` FROM call_states ORDER BY id`
		var err error
		out, err = queryCallStates(ctx, tx, q)
		return err
	})
	return out, err
}

func (s *PostgresStore) Search(ctx context.Context, substring string, page, limit int) ([]CallState, int, error) {
	var (
		out   []CallState
		total int
	)
	pattern := utils.LikePattern(substring)
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx *sql.Tx) error {
		const countQ = `SELECT COUNT(*) FROM call_states WHERE COALESCE(caller_id, '') LIKE $1 ESCAPE '\'`
		if err := tx.QueryRowContext(ctx, countQ, pattern).Scan(&total); err != nil {
			return err
		}
		q := `SELECT ` + callStateColumns + ` FROM call_states
WHERE COALESCE(caller_id, '') LIKE $1 ESCAPE '\'
ORDER BY id
LIMIT $2 OFFSET $3`
		var err error
		out, err = queryCallStates(ctx, tx, q, pattern, limit, utils.Offset(page, limit))
		return err
	})
	return out, total, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCallState(row rowScanner) (CallState, error) {
	var (
		cs                                           CallState
		transcript, translation, callerID, url, role sql.NullString
		duration                                     sql.NullInt32
		userID                                       sql.NullInt64
	)
	if err := row.Scan(
		&cs.ID,
		&cs.UUID,
		&cs.Phase,
		&cs.Status,
		&transcript,
		&translation,
		&callerID,
		&duration,
		&url,
		&userID,
		&role,
		&cs.CreatedAt,
	); err != nil {
		return CallState{}, err
	}
	cs.Transcript = stringPtr(transcript)
	cs.Translation = stringPtr(translation)
	cs.CallerID = stringPtr(callerID)
	cs.RecordingURL = stringPtr(url)
	cs.UserRole = stringPtr(role)
	if duration.Valid {
		d := int(duration.Int32)
		cs.Duration = &d
	}
	if userID.Valid {
		id := userID.Int64
		cs.UserID = &id
	}
	return cs, nil
}

func queryCallStates(ctx context.Context, tx *sql.Tx, q string, args ...any) ([]CallState, error) {
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallState, 0)
	for rows.Next() {
		cs, err := scanCallState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
