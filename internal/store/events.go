package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/specialistvlad/blockgraph/internal/events"
)

// Record is one stored event.
type Record struct {
	Seq   int64
	Event *events.Event
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AppendEvent stores e at the end of its workspace's log and returns its
// sequence number.
func (db *DB) AppendEvent(ctx context.Context, e *events.Event) (int64, error) {
	return appendEvent(ctx, db.conn, e)
}

// AppendEvents stores a batch in one transaction.
func (db *DB) AppendEvents(ctx context.Context, batch []*events.Event) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, e := range batch {
			if _, err := appendEvent(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

func appendEvent(ctx context.Context, x execer, e *events.Event) (int64, error) {
	if e.WorkspaceID == "" {
		return 0, fmt.Errorf("event %s has no workspace id", e.Type())
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("encoding %s event: %w", e.Type(), err)
	}
	res, err := x.ExecContext(ctx,
		`INSERT INTO events (workspace_id, group_id, type, payload, ts) VALUES (?, ?, ?, ?, ?)`,
		e.WorkspaceID, e.Group, string(e.Type()), string(payload), time.Now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting event: %w", err)
	}
	return res.LastInsertId()
}

// Events returns the log of a workspace in sequence order.
func (db *DB) Events(ctx context.Context, workspaceID string) ([]Record, error) {
	return db.EventsSince(ctx, workspaceID, 0)
}

// EventsSince returns the events of a workspace after seq.
func (db *DB) EventsSince(ctx context.Context, workspaceID string, seq int64) ([]Record, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT seq, payload FROM events WHERE workspace_id = ? AND seq > ? ORDER BY seq`,
		workspaceID, seq,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			payload string
		)
		if err := rows.Scan(&r.Seq, &payload); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if r.Event, err = events.FromJSON([]byte(payload), workspaceID); err != nil {
			return nil, fmt.Errorf("decoding event %d: %w", r.Seq, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Workspaces lists the ids of every workspace with a stored event.
func (db *DB) Workspaces(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT workspace_id FROM events ORDER BY workspace_id`)
	if err != nil {
		return nil, fmt.Errorf("querying workspaces: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning workspace id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
