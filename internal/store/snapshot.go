package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Snapshot kinds.
const (
	KindSession = "session" // serialized assessment state
	KindReport  = "report"  // serialized score report
)

// Snapshot is one stored blob. Data is an opaque JSON string owned by
// the caller; corruption at read time is surfaced so callers can treat
// it as "no snapshot".
type Snapshot struct {
	ID          int64
	CandidateID string
	Kind        string
	TakenAt     time.Time
	Data        string
}

// SnapshotRepo manages candidate-scoped snapshot blobs.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, candidateID, kind, data string) error

	// Latest returns the most recent snapshot of the given kind for the
	// candidate, or nil if none exists.
	Latest(ctx context.Context, candidateID, kind string) (*Snapshot, error)

	// Prune deletes all but the keep most recent snapshots per
	// candidate and kind.
	Prune(ctx context.Context, candidateID, kind string, keep int) error

	// Clear removes every snapshot for the candidate.
	Clear(ctx context.Context, candidateID string) error
}

// SnapshotRepo returns the repository backed by this store.
func (s *Store) SnapshotRepo() SnapshotRepo {
	return &snapshotRepo{db: s.db}
}

type snapshotRepo struct {
	db *sql.DB
}

func (r *snapshotRepo) Save(ctx context.Context, candidateID, kind, data string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (candidate_id, kind, taken_at, data) VALUES (?, ?, ?, ?)`,
		candidateID, kind, time.Now().UTC(), data,
	)
	if err != nil {
		return &PersistenceError{Op: "save snapshot", Err: err}
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context, candidateID, kind string) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, candidate_id, kind, taken_at, data FROM snapshots
		 WHERE candidate_id = ? AND kind = ?
		 ORDER BY taken_at DESC, id DESC LIMIT 1`,
		candidateID, kind,
	)

	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.CandidateID, &snap.Kind, &snap.TakenAt, &snap.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "query latest snapshot", Err: err}
	}
	return &snap, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, candidateID, kind string, keep int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM snapshots
		 WHERE candidate_id = ? AND kind = ? AND id NOT IN (
			SELECT id FROM snapshots
			WHERE candidate_id = ? AND kind = ?
			ORDER BY taken_at DESC, id DESC LIMIT ?
		 )`,
		candidateID, kind, candidateID, kind, keep,
	)
	if err != nil {
		return &PersistenceError{Op: "prune snapshots", Err: err}
	}
	return nil
}

func (r *snapshotRepo) Clear(ctx context.Context, candidateID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE candidate_id = ?`, candidateID,
	)
	if err != nil {
		return &PersistenceError{Op: "clear snapshots", Err: err}
	}
	return nil
}

// PersistenceError wraps a storage failure. Callers log it and move
// on; persistence is never allowed to block navigation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
