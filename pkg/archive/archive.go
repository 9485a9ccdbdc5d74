package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/betagouv/portail-rse-sub001/pkg/report"
)

// Archiver stores reports as JSON blobs.
type Archiver struct {
	store  Store
	logger *slog.Logger
}

func NewArchiver(store Store) *Archiver {
	return &Archiver{
		store:  store,
		logger: slog.Default().With("component", "archive"),
	}
}

// Save writes r and returns the blob hash.
func (a *Archiver) Save(ctx context.Context, r *report.Report) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("archive: marshal report: %w", err)
	}
	hash, err := a.store.Put(ctx, data)
	if err != nil {
		return "", fmt.Errorf("archive report %s: %w", r.ID, err)
	}
	a.logger.InfoContext(ctx, "report archived", "report_id", r.ID, "siren", r.Siren, "hash", hash)
	return hash, nil
}

// Load reads the report under hash and checks both the blob hash and the
// report digest.
func (a *Archiver) Load(ctx context.Context, hash string) (*report.Report, error) {
	data, err := a.store.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	if got := Hash(data); got != hash {
		return nil, fmt.Errorf("%w: blob %s hashes to %s", ErrInvalidHash, hash, got)
	}
	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("archive: decode report: %w", err)
	}
	if err := r.Verify(); err != nil {
		return nil, err
	}
	return &r, nil
}
