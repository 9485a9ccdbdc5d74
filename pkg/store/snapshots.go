package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// SnapshotStore keeps one snapshot per company and year.
type SnapshotStore struct {
	db  *DB
	now func() time.Time
}

func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db, now: time.Now}
}

// Save inserts or replaces the snapshot for its SIREN and year.
func (s *SnapshotStore) Save(ctx context.Context, c *entreprise.Caracteristiques) error {
	if c.Entreprise.Siren == "" {
		return fmt.Errorf("save snapshot: %w", entreprise.ErrInvalidSiren)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	query := s.db.rebind(`INSERT INTO snapshots (siren, annee, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (siren, annee) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`)
	_, err = s.db.ExecContext(ctx, query, c.Entreprise.Siren, c.Annee, string(data), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Get returns the snapshot of siren for annee, or ErrNotFound.
func (s *SnapshotStore) Get(ctx context.Context, siren string, annee int) (*entreprise.Caracteristiques, error) {
	row := s.db.QueryRowContext(ctx, s.db.rebind(`SELECT data FROM snapshots WHERE siren = ? AND annee = ?`), siren, annee)
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: snapshot %s/%d", ErrNotFound, siren, annee)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

// Latest returns the most recent snapshot of siren.
func (s *SnapshotStore) Latest(ctx context.Context, siren string) (*entreprise.Caracteristiques, error) {
	row := s.db.QueryRowContext(ctx,
		s.db.rebind(`SELECT data FROM snapshots WHERE siren = ? ORDER BY annee DESC LIMIT 1`), siren)
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: snapshot %s", ErrNotFound, siren)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

// List returns every snapshot of annee ordered by SIREN. A zero annee lists all years.
func (s *SnapshotStore) List(ctx context.Context, annee int) ([]*entreprise.Caracteristiques, error) {
	query := `SELECT data FROM snapshots ORDER BY siren, annee`
	args := []any{}
	if annee != 0 {
		query = `SELECT data FROM snapshots WHERE annee = ? ORDER BY siren`
		args = append(args, annee)
	}
	rows, err := s.db.QueryContext(ctx, s.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entreprise.Caracteristiques
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		c, err := decodeSnapshot(data)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func decodeSnapshot(data string) (*entreprise.Caracteristiques, error) {
	var c entreprise.Caracteristiques
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &c, nil
}
