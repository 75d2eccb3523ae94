package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrClosed is returned when appending to a closed session.
var ErrClosed = errors.New("journal session closed")

// DefaultLimit caps List when Query.Limit is zero.
const DefaultLimit = 50

// Entry is one recorded event.
type Entry struct {
	ID      int64     `yaml:"id"`
	Session string    `yaml:"session"`
	Seq     int64     `yaml:"seq"`
	Type    string    `yaml:"type"`
	Payload string    `yaml:"payload,omitempty"`
	At      time.Time `yaml:"at"`
}

// SessionInfo describes one run of the lights.
type SessionInfo struct {
	ID        string        `yaml:"id"`
	StartedAt time.Time     `yaml:"started_at"`
	StartMode string        `yaml:"start_mode"`
	Cycle     time.Duration `yaml:"cycle"`
	Events    int64         `yaml:"events"`
}

// Session appends events under one session id with increasing sequence
// numbers. A Session is not safe for concurrent use; the Recorder owns it.
type Session struct {
	db     *DB
	id     string
	seq    int64
	closed bool
}

// StartSession registers a new session and returns it.
func (db *DB) StartSession(ctx context.Context, startMode string, cycle time.Duration, at time.Time) (*Session, error) {
	id := uuid.NewString()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, start_mode, cycle_ms) VALUES (?, ?, ?, ?)`,
		id, at.UnixMilli(), startMode, cycle.Milliseconds(),
	)
	if err != nil {
		return nil, fmt.Errorf("starting journal session: %w", err)
	}
	return &Session{db: db, id: id}, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Append records an event.
func (s *Session) Append(ctx context.Context, eventType, payload string, at time.Time) error {
	if s.closed {
		return ErrClosed
	}
	s.seq++
	_, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO events (session, seq, type, payload, at) VALUES (?, ?, ?, ?, ?)`,
		s.id, s.seq, eventType, payload, at.UnixMilli(),
	)
	if err != nil {
		s.seq--
		return fmt.Errorf("appending event: %w", err)
	}
	return nil
}

// Close stops further appends.
func (s *Session) Close() { s.closed = true }

// Query filters List.
type Query struct {
	Session string // empty for every session
	Type    string // empty for every type
	Limit   int    // zero for DefaultLimit
}

// List returns the most recent entries matching q, oldest first.
func (db *DB) List(ctx context.Context, q Query) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if q.Session != "" {
		where = append(where, "session = ?")
		args = append(args, q.Session)
	}
	if q.Type != "" {
		where = append(where, "type = ?")
		args = append(args, q.Type)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `SELECT id, session, seq, type, payload, at FROM events`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			at int64
		)
		if err := rows.Scan(&e.ID, &e.Session, &e.Seq, &e.Type, &e.Payload, &at); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.At = time.UnixMilli(at).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}

	// Reverse to chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Sessions returns every session with its event count, newest first.
func (db *DB) Sessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT s.id, s.started_at, s.start_mode, s.cycle_ms,
			(SELECT COUNT(*) FROM events e WHERE e.session = s.id)
		FROM sessions s
		ORDER BY s.started_at DESC, s.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []SessionInfo
	for rows.Next() {
		var (
			s         SessionInfo
			startedAt int64
			cycleMs   int64
		)
		if err := rows.Scan(&s.ID, &startedAt, &s.StartMode, &cycleMs, &s.Events); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.StartedAt = time.UnixMilli(startedAt).UTC()
		s.Cycle = time.Duration(cycleMs) * time.Millisecond
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}
