package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS verdict_sessions (
	session_id      UUID PRIMARY KEY,
	name            TEXT NOT NULL DEFAULT '',
	exclude_unrated BOOLEAN NOT NULL DEFAULT FALSE,
	snapshot        JSONB NOT NULL,
	revision        BIGINT NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS verdict_session_events (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	session_id UUID NOT NULL REFERENCES verdict_sessions(session_id) ON DELETE CASCADE,
	event      TEXT NOT NULL,
	revision   BIGINT NOT NULL DEFAULT 0,
	payload    JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);

CREATE INDEX IF NOT EXISTS verdict_session_events_session_idx
	ON verdict_session_events (session_id, created_at);
`

// EnsureSchema creates the session tables when they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const sessionColumns = `session_id, name, exclude_unrated, snapshot, revision, created_at, updated_at`

func (s *PostgresStore) SaveSession(ctx context.Context, sess *Session) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	snapshotJSON, err := json.Marshal(sess.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO verdict_sessions (session_id, name, exclude_unrated, snapshot, revision)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			name = EXCLUDED.name,
			exclude_unrated = EXCLUDED.exclude_unrated,
			snapshot = EXCLUDED.snapshot,
			revision = EXCLUDED.revision,
			updated_at = now()
		RETURNING created_at, updated_at`,
		sess.ID, sess.Name, sess.ExcludeUnrated, snapshotJSON, sess.Revision,
	).Scan(&sess.CreatedAt, &sess.UpdatedAt)
}

func (s *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM verdict_sessions WHERE session_id = $1`, id)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *PostgresStore) ListSessions(ctx context.Context, filter SessionFilter) ([]*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM verdict_sessions WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Name != "" {
		n++
		query += fmt.Sprintf(" AND name = $%d", n)
		args = append(args, filter.Name)
	}

	query += " ORDER BY updated_at DESC, session_id ASC"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM verdict_sessions WHERE session_id = $1`, id)
	return err
}

func (s *PostgresStore) CreateSessionEvent(ctx context.Context, e *SessionEvent) error {
	payloadJSON, _ := json.Marshal(e.Payload)
	return s.pool.QueryRow(ctx, `
		INSERT INTO verdict_session_events (session_id, event, revision, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.SessionID, e.Event, e.Revision, payloadJSON,
	).Scan(&e.ID, &e.CreatedAt)
}

func (s *PostgresStore) GetSessionEvents(ctx context.Context, sessionID uuid.UUID, limit int) ([]*SessionEvent, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, event, revision, payload, created_at FROM (
			SELECT id, session_id, event, revision, payload, created_at
			FROM verdict_session_events WHERE session_id = $1
			ORDER BY created_at DESC LIMIT $2
		) recent ORDER BY created_at ASC`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*SessionEvent
	for rows.Next() {
		e := &SessionEvent{}
		var payloadJSON []byte
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Event, &e.Revision, &payloadJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		if payloadJSON != nil {
			_ = json.Unmarshal(payloadJSON, &e.Payload)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *PostgresStore) GetStats(ctx context.Context) (*SessionStats, error) {
	stats := &SessionStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM verdict_sessions),
			(SELECT COUNT(*) FROM verdict_session_events)`,
	).Scan(&stats.TotalSessions, &stats.TotalEvents)
	return stats, err
}

func scanSession(row pgx.Row) (*Session, error) {
	sess := &Session{}
	var snapshotJSON []byte
	if err := row.Scan(
		&sess.ID, &sess.Name, &sess.ExcludeUnrated, &snapshotJSON, &sess.Revision,
		&sess.CreatedAt, &sess.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshotJSON, &sess.Snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", sess.ID, err)
	}
	return sess, nil
}
