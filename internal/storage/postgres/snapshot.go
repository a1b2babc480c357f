package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/pogodata/internal/source"
)

// ErrSnapshotNotFound is returned when no stored snapshot matches.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// StoredSnapshot is one persisted catalog generation. Data is the encoded
// resource bundle; it is empty in listings.
type StoredSnapshot struct {
	ID        uuid.UUID
	Digest    string
	BuiltAt   time.Time
	SavedAt   time.Time
	SizeBytes int
	Data      []byte
}

// SnapshotRepository stores encoded snapshots keyed by content digest.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save stores data unless a snapshot with the same content already exists.
//
// Precondition: data must be non-empty.
// Postcondition: Returns the stored row and whether it was inserted. For
// identical content the existing row is returned with inserted false.
func (r *SnapshotRepository) Save(ctx context.Context, id uuid.UUID, builtAt time.Time, data []byte) (StoredSnapshot, bool, error) {
	if len(data) == 0 {
		return StoredSnapshot{}, false, errors.New("refusing to store an empty snapshot")
	}
	digest := source.Digest(data)

	var s StoredSnapshot
	err := r.db.QueryRow(ctx,
		`INSERT INTO catalog_snapshots (id, digest, built_at, size_bytes, data)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (digest) DO NOTHING
		 RETURNING id, digest, built_at, saved_at, size_bytes`,
		id, digest, builtAt, len(data), data,
	).Scan(&s.ID, &s.Digest, &s.BuiltAt, &s.SavedAt, &s.SizeBytes)
	if err == nil {
		s.Data = data
		return s, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return StoredSnapshot{}, false, fmt.Errorf("inserting snapshot: %w", err)
	}

	existing, err := r.one(ctx, `WHERE digest = $1`, digest)
	if err != nil {
		return StoredSnapshot{}, false, err
	}
	return existing, false, nil
}

// Latest returns the most recently saved snapshot.
//
// Postcondition: Returns ErrSnapshotNotFound when the table is empty.
func (r *SnapshotRepository) Latest(ctx context.Context) (StoredSnapshot, error) {
	return r.one(ctx, `ORDER BY saved_at DESC, built_at DESC LIMIT 1`)
}

// Get returns the snapshot with the given id.
//
// Postcondition: Returns ErrSnapshotNotFound when no row has id.
func (r *SnapshotRepository) Get(ctx context.Context, id uuid.UUID) (StoredSnapshot, error) {
	return r.one(ctx, `WHERE id = $1`, id)
}

func (r *SnapshotRepository) one(ctx context.Context, clause string, args ...any) (StoredSnapshot, error) {
	var s StoredSnapshot
	err := r.db.QueryRow(ctx,
		`SELECT id, digest, built_at, saved_at, size_bytes, data
		 FROM catalog_snapshots `+clause,
		args...,
	).Scan(&s.ID, &s.Digest, &s.BuiltAt, &s.SavedAt, &s.SizeBytes, &s.Data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StoredSnapshot{}, ErrSnapshotNotFound
		}
		return StoredSnapshot{}, fmt.Errorf("querying snapshot: %w", err)
	}
	return s, nil
}

// List returns up to limit snapshots without their data, newest first.
//
// Precondition: limit must be > 0.
func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]StoredSnapshot, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, digest, built_at, saved_at, size_bytes
		 FROM catalog_snapshots
		 ORDER BY saved_at DESC, built_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []StoredSnapshot
	for rows.Next() {
		var s StoredSnapshot
		if err := rows.Scan(&s.ID, &s.Digest, &s.BuiltAt, &s.SavedAt, &s.SizeBytes); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return out, nil
}

// Prune deletes every snapshot but the keep most recent.
//
// Precondition: keep must be >= 1.
// Postcondition: Returns the number of deleted rows.
func (r *SnapshotRepository) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep must be at least 1, got %d", keep)
	}
	tag, err := r.db.Exec(ctx,
		`DELETE FROM catalog_snapshots
		 WHERE id NOT IN (
		     SELECT id FROM catalog_snapshots
		     ORDER BY saved_at DESC, built_at DESC
		     LIMIT $1
		 )`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
