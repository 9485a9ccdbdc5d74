package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/betagouv/portail-rse-sub001/pkg/egapro"
	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
)

// BDESEStore implements reglementation.BDESEProgress. Habilitated users
// share the company's official BDESE; other users keep a personal one.
type BDESEStore struct {
	db *DB
}

func NewBDESEStore(db *DB) *BDESEStore {
	return &BDESEStore{db: db}
}

var _ reglementation.BDESEProgress = (*BDESEStore)(nil)

func owner(actor reglementation.Actor) string {
	if actor.Habilitated {
		return ""
	}
	return actor.UserID
}

// Lookup returns the BDESE of siren for annee, or nil when none was started.
// Anonymous actors never have one.
func (s *BDESEStore) Lookup(ctx context.Context, siren string, annee int, typ reglementation.BDESEType, actor reglementation.Actor) (*reglementation.BDESEState, error) {
	if actor.Kind == reglementation.ActorAnonymous {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		s.db.rebind(`SELECT complete FROM bdese WHERE siren = ? AND annee = ? AND type = ? AND user_id = ?`),
		siren, annee, int(typ), owner(actor))
	var complete bool
	if err := row.Scan(&complete); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bdese: %w", err)
	}
	return &reglementation.BDESEState{Complete: complete}, nil
}

// Mark creates the BDESE if needed and sets its completion.
func (s *BDESEStore) Mark(ctx context.Context, siren string, annee int, typ reglementation.BDESEType, actor reglementation.Actor, complete bool) error {
	if actor.Kind == reglementation.ActorAnonymous {
		return fmt.Errorf("mark bdese: anonymous actor")
	}
	_, err := s.db.ExecContext(ctx, s.db.rebind(`INSERT INTO bdese (siren, annee, type, user_id, complete) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (siren, annee, user_id) DO UPDATE SET type = excluded.type, complete = excluded.complete`),
		siren, annee, int(typ), owner(actor), complete)
	if err != nil {
		return fmt.Errorf("failed to mark bdese: %w", err)
	}
	return nil
}

// Prefill attaches the EgaPro indicators to an existing BDESE. It returns
// ErrNotFound when Mark was never called for that owner.
func (s *BDESEStore) Prefill(ctx context.Context, siren string, annee int, actor reglementation.Actor, ind egapro.Indicateurs) error {
	data, err := json.Marshal(ind)
	if err != nil {
		return fmt.Errorf("encode indicateurs: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		s.db.rebind(`UPDATE bdese SET indicateurs = ? WHERE siren = ? AND annee = ? AND user_id = ?`),
		string(data), siren, annee, owner(actor))
	if err != nil {
		return fmt.Errorf("failed to prefill bdese: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: bdese %s/%d", ErrNotFound, siren, annee)
	}
	return nil
}

// Prefilled returns the stored EgaPro indicators, or nil when the BDESE
// does not exist or was never prefilled.
func (s *BDESEStore) Prefilled(ctx context.Context, siren string, annee int, actor reglementation.Actor) (*egapro.Indicateurs, error) {
	row := s.db.QueryRowContext(ctx,
		s.db.rebind(`SELECT indicateurs FROM bdese WHERE siren = ? AND annee = ? AND user_id = ?`),
		siren, annee, owner(actor))
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bdese indicateurs: %w", err)
	}
	if data == "" {
		return nil, nil
	}
	var ind egapro.Indicateurs
	if err := json.Unmarshal([]byte(data), &ind); err != nil {
		return nil, fmt.Errorf("decode indicateurs: %w", err)
	}
	return &ind, nil
}
