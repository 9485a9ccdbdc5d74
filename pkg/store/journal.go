package store

import (
	"context"
	"fmt"
	"time"

	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
)

// Evaluation is one aggregated run over a snapshot.
type Evaluation struct {
	ReportID    string
	Siren       string
	Annee       int
	Ruleset     string
	Digest      string
	EvaluatedAt time.Time
	Results     []reglementation.Result
}

// JournalEntry is one journaled rule status.
type JournalEntry struct {
	ReportID          string
	Siren             string
	Annee             int
	Reglementation    string
	Code              reglementation.Code
	ProchaineEcheance string
	Ruleset           string
	Digest            string
	EvaluatedAt       time.Time
}

// Journal appends evaluation outcomes. Entries are never updated.
type Journal struct {
	db *DB
}

func NewJournal(db *DB) *Journal {
	return &Journal{db: db}
}

// Record writes every result of e in one transaction.
func (j *Journal) Record(ctx context.Context, e Evaluation) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := j.db.rebind(`INSERT INTO evaluations
		(report_id, siren, annee, reglementation, status, prochaine_echeance, ruleset, digest, evaluated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	at := e.EvaluatedAt.UTC().Format(time.RFC3339Nano)
	for _, r := range e.Results {
		_, err := tx.ExecContext(ctx, query,
			e.ReportID, e.Siren, e.Annee, r.Rule.ID, int(r.Status.Code), r.Status.ProchaineEcheance, e.Ruleset, e.Digest, at)
		if err != nil {
			return fmt.Errorf("failed to journal %s: %w", r.Rule.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit journal: %w", err)
	}
	return nil
}

// History returns the journaled statuses of siren, most recent first.
func (j *Journal) History(ctx context.Context, siren string, limit int) ([]JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx, j.db.rebind(`
		SELECT report_id, siren, annee, reglementation, status, prochaine_echeance, ruleset, digest, evaluated_at
		FROM evaluations
		WHERE siren = ?
		ORDER BY evaluated_at DESC, reglementation
		LIMIT ?`), siren, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []JournalEntry
	for rows.Next() {
		var (
			e    JournalEntry
			code int
			at   string
		)
		if err := rows.Scan(&e.ReportID, &e.Siren, &e.Annee, &e.Reglementation, &code, &e.ProchaineEcheance, &e.Ruleset, &e.Digest, &at); err != nil {
			return nil, err
		}
		e.Code = reglementation.Code(code)
		if e.EvaluatedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("journal timestamp: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
