package statesync

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresStore keeps sessions in the sessions table
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a store backed by the database
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load returns the stored session
func (p *PostgresStore) Load(ctx context.Context, instanceID string) (*Session, error) {
	const query = `
SELECT data
FROM sessions
WHERE instance_id = $1`

	var b []byte
	if err := p.db.QueryRowContext(ctx, query, instanceID).Scan(&b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSession
		}

		return nil, err
	}

	return DecodeSession(b)
}

// Save upserts the session
// A stored record with a later version is left alone.
func (p *PostgresStore) Save(ctx context.Context, session *Session) error {
	b, err := session.Encode()
	if err != nil {
		return err
	}

	const query = `
INSERT INTO sessions (instance_id, data, updated)
VALUES ($1, $2, NOW())
ON CONFLICT (instance_id) DO UPDATE
SET data = EXCLUDED.data,
    updated = EXCLUDED.updated
WHERE COALESCE((sessions.data->>'version')::BIGINT, 0) <= $3`

	_, err = p.db.ExecContext(ctx, query, session.InstanceID, string(b), session.Version)
	return err
}

// Delete removes the session
func (p *PostgresStore) Delete(ctx context.Context, instanceID string) error {
	const query = `DELETE FROM sessions WHERE instance_id = $1`
	_, err := p.db.ExecContext(ctx, query, instanceID)
	return err
}
