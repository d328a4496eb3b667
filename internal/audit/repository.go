package audit

import (
	"context"
	"database/sql"
)

// Schema for the audit table. No UPDATE or DELETE is ever issued against it.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS call_audit_events (
  id         TEXT PRIMARY KEY,
  call_uuid  TEXT NOT NULL,
  type       TEXT NOT NULL,
  message    TEXT NOT NULL DEFAULT '',
  metadata   TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS call_audit_events_call_uuid_idx ON call_audit_events (call_uuid, created_at)`,
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO call_audit_events (id, call_uuid, type, message, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.CallUUID, e.Type, e.Message, e.Metadata, e.CreatedAt)
	return err
}

func (r *PostgresRepo) ListByCall(ctx context.Context, callUUID string) ([]Event, error) {
	const q = `
SELECT id, call_uuid, type, message, metadata, created_at
FROM call_audit_events
WHERE call_uuid = $1
ORDER BY created_at, id
`
	rows, err := r.db.QueryContext(ctx, q, callUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Event, 0)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.CallUUID, &e.Type, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
