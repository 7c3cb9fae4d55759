package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/specialistvlad/blockgraph/internal/digest"
	"github.com/specialistvlad/blockgraph/internal/state"
)

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// Snapshot is a stored workspace document.
type Snapshot struct {
	Digest      string
	WorkspaceID string
	Doc         *state.Workspace
	SavedAt     time.Time
}

// SaveSnapshot stores doc under the digest of its canonical JSON and
// returns the digest. Saving an identical document again only refreshes its
// timestamp.
func (db *DB) SaveSnapshot(ctx context.Context, workspaceID string, doc *state.Workspace) (string, error) {
	data, err := digest.CanonicalJSON(doc)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	sum := digest.Bytes(data)
	blob := encoder.EncodeAll(data, nil)
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO snapshots (digest, workspace_id, size, blob, ts) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (digest) DO UPDATE SET workspace_id = excluded.workspace_id, ts = excluded.ts`,
		sum, workspaceID, len(data), blob, time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting snapshot: %w", err)
	}
	return sum, nil
}

// LoadSnapshot returns the snapshot with the given digest.
func (db *DB) LoadSnapshot(ctx context.Context, sum string) (*Snapshot, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT digest, workspace_id, blob, ts FROM snapshots WHERE digest = ?`, sum)
	return scanSnapshot(row)
}

// LatestSnapshot returns the most recently saved snapshot of a workspace.
func (db *DB) LatestSnapshot(ctx context.Context, workspaceID string) (*Snapshot, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT digest, workspace_id, blob, ts FROM snapshots
		 WHERE workspace_id = ? ORDER BY ts DESC, rowid DESC LIMIT 1`, workspaceID)
	return scanSnapshot(row)
}

func scanSnapshot(row *sql.Row) (*Snapshot, error) {
	var (
		s    Snapshot
		blob []byte
		ts   int64
	)
	err := row.Scan(&s.Digest, &s.WorkspaceID, &blob, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	data, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot %s: %w", s.Digest, err)
	}
	if digest.Bytes(data) != s.Digest {
		return nil, fmt.Errorf("%w: %s", ErrCorruptSnapshot, s.Digest)
	}
	s.Doc = new(state.Workspace)
	if err := json.Unmarshal(data, s.Doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", s.Digest, err)
	}
	s.SavedAt = time.Unix(0, ts)
	return &s, nil
}
