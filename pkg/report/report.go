// Package report builds the evaluation report of one snapshot: the
// aggregated statuses, their partition and a content digest over the
// RFC 8785 canonical form.
package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"
	"golang.org/x/text/unicode/norm"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
)

// ErrDigestMismatch is returned by Verify when the content was altered.
var ErrDigestMismatch = errors.New("report: digest mismatch")

// Report is the archived outcome of EvaluateAll over one snapshot.
type Report struct {
	ID           string                  `json:"id"`
	GeneratedAt  time.Time               `json:"generated_at"`
	Ruleset      string                  `json:"ruleset"`
	Siren        string                  `json:"siren"`
	Denomination string                  `json:"denomination,omitempty"`
	Annee        int                     `json:"annee"`
	Today        string                  `json:"today"`
	Results      []reglementation.Result `json:"reglementations"`
	Counts       map[string]int          `json:"counts"`
	Digest       string                  `json:"digest"`
}

// content is the digested part of a report. ID and GeneratedAt are left
// out so that two runs over the same inputs share a digest.
type content struct {
	Ruleset string                  `json:"ruleset"`
	Siren   string                  `json:"siren"`
	Annee   int                     `json:"annee"`
	Today   string                  `json:"today"`
	Results []reglementation.Result `json:"reglementations"`
}

// Build evaluates c and wraps the results in a Report. keep may be nil.
func Build(ctx context.Context, c *entreprise.Caracteristiques, env reglementation.Env, keep reglementation.Filter, now time.Time) (*Report, error) {
	results := reglementation.EvaluateSome(ctx, c, env, keep)
	for i := range results {
		results[i].Status.Detail = norm.NFC.String(results[i].Status.Detail)
	}

	counts := map[string]int{}
	for code, n := range reglementation.Partition(results).Count() {
		if n > 0 {
			counts[code.String()] = n
		}
	}

	r := &Report{
		ID:           uuid.NewString(),
		GeneratedAt:  now.UTC(),
		Ruleset:      reglementation.RulesetVersion,
		Siren:        c.Entreprise.Siren,
		Denomination: c.Entreprise.Denomination,
		Annee:        c.Annee,
		Today:        env.Today.Format(time.DateOnly),
		Results:      results,
		Counts:       counts,
	}
	digest, err := r.computeDigest()
	if err != nil {
		return nil, err
	}
	r.Digest = digest
	return r, nil
}

// Canonical returns the RFC 8785 form of the digested content.
func (r *Report) Canonical() ([]byte, error) {
	raw, err := json.Marshal(content{
		Ruleset: r.Ruleset,
		Siren:   r.Siren,
		Annee:   r.Annee,
		Today:   r.Today,
		Results: r.Results,
	})
	if err != nil {
		return nil, fmt.Errorf("report: marshal: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("report: canonicalize: %w", err)
	}
	return out, nil
}

func (r *Report) computeDigest() (string, error) {
	b, err := r.Canonical()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the digest.
func (r *Report) Verify() error {
	d, err := r.computeDigest()
	if err != nil {
		return err
	}
	if d != r.Digest {
		return fmt.Errorf("%w: have %s, want %s", ErrDigestMismatch, r.Digest, d)
	}
	return nil
}

// Buckets regroups the results by status for presentation.
func (r *Report) Buckets() reglementation.Buckets {
	return reglementation.Partition(r.Results)
}
