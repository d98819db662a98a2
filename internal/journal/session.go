package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/storefront/internal/storefront"
)

// Session summarizes one journaled run.
type Session struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	EventCount int    `json:"event_count"`
}

// Record is one journaled event.
type Record struct {
	SessionID string `json:"session_id"`
	storefront.Event
}

// Filter narrows ReadEvents. Empty fields match everything.
type Filter struct {
	SessionID string
	Instance  string
	Kind      storefront.EventKind
}

// StartSession registers a new session with a fresh UUIDv7 id.
func (j *Journal) StartSession(ctx context.Context, label string) (string, error) {
	id := NewSessionID()
	if err := j.StartSessionWithID(ctx, id, label); err != nil {
		return "", err
	}
	return id, nil
}

// StartSessionWithID registers a session under a caller-chosen id.
// Registering an existing id is a no-op.
func (j *Journal) StartSessionWithID(ctx context.Context, id, label string) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO sessions (id, label) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, label)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

// Append writes one event. Re-appending the same (session, seq) is
// silently ignored.
func (j *Journal) Append(ctx context.Context, sessionID string, ev storefront.Event) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO events (session_id, seq, kind, instance, category, key)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		sessionID,
		ev.Seq,
		string(ev.Kind),
		ev.Instance,
		ev.Category,
		ev.Key,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Sessions lists sessions in creation order with their event counts.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.id, s.label, COUNT(e.seq)
		FROM sessions s
		LEFT JOIN events e ON e.session_id = s.id
		GROUP BY s.ordinal, s.id, s.label
		ORDER BY s.ordinal ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Label, &s.EventCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// LatestSession returns the most recently created session id, or "" if
// the journal is empty.
func (j *Journal) LatestSession(ctx context.Context) (string, error) {
	var id string
	err := j.db.QueryRowContext(ctx, `
		SELECT id FROM sessions ORDER BY ordinal DESC LIMIT 1
	`).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("query latest session: %w", err)
	}
	return id, nil
}

// ReadEvents returns matching events ordered by session creation, then seq.
// Returns an empty slice (not nil) when nothing matches.
func (j *Journal) ReadEvents(ctx context.Context, f Filter) ([]Record, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT e.session_id, e.seq, e.kind, e.instance, e.category, e.key
		FROM events e
		JOIN sessions s ON s.id = e.session_id
		WHERE (? = '' OR e.session_id = ?)
		  AND (? = '' OR e.instance = ?)
		  AND (? = '' OR e.kind = ?)
		ORDER BY s.ordinal ASC, e.seq ASC
	`,
		f.SessionID, f.SessionID,
		f.Instance, f.Instance,
		string(f.Kind), string(f.Kind),
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var r Record
		var kind string
		if err := rows.Scan(&r.SessionID, &r.Seq, &kind, &r.Instance, &r.Category, &r.Key); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		r.Kind = storefront.EventKind(kind)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return records, nil
}

// Recorder appends every event it receives to one session. Hook handlers
// cannot return errors, so the first write failure is kept and later
// events are dropped.
type Recorder struct {
	j       *Journal
	ctx     context.Context
	session string

	mu    sync.Mutex
	count int
	err   error
}

// NewRecorder returns a recorder for an existing session.
func (j *Journal) NewRecorder(ctx context.Context, sessionID string) *Recorder {
	return &Recorder{j: j, ctx: ctx, session: sessionID}
}

// Handle implements storefront.Handler.
func (r *Recorder) Handle(ev storefront.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	if err := r.j.Append(r.ctx, r.session, ev); err != nil {
		r.err = err
		return
	}
	r.count++
}

// SessionID returns the session the recorder writes to.
func (r *Recorder) SessionID() string {
	return r.session
}

// Count returns the number of events written.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Err returns the first write error, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
