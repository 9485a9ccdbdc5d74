package reglementation

import (
	"context"
	"fmt"
	"strings"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// Rule is one obligation. The set of rules is closed: the unexported branch
// method keeps implementations inside this package.
type Rule interface {
	Info() Info

	// IsSufficientlyQualified reports whether every field the rule reads is known.
	IsSufficientlyQualified(c *entreprise.Caracteristiques) bool

	// MetCriteria returns the satisfied criteria phrases in detail order.
	MetCriteria(c *entreprise.Caracteristiques) []string

	// IsSubject reports whether the obligation applies. It fails with
	// ErrInsufficientQualification on an unqualified snapshot.
	IsSubject(c *entreprise.Caracteristiques) (bool, error)

	branch(ctx context.Context, c *entreprise.Caracteristiques, env Env) Status
}

// CalculateStatus evaluates r against c. Unqualified snapshots are
// Incalculable for every rule; the rule-specific branch only ever sees a
// qualified snapshot.
func CalculateStatus(ctx context.Context, r Rule, c *entreprise.Caracteristiques, env Env) Status {
	if !r.IsSufficientlyQualified(c) {
		return incalculable(c, env)
	}
	return r.branch(ctx, c, env)
}

func incalculable(c *entreprise.Caracteristiques, env Env) Status {
	return Status{
		Code:   Incalculable,
		Detail: "Les informations sont insuffisantes pour déterminer si l'entreprise est soumise à cette réglementation.",
		PrimaryAction: &Action{
			URL:   env.Links.Qualification(c.Entreprise.Siren),
			Title: "Compléter le profil de l'entreprise",
		},
	}
}

func requireQualified(r Rule, c *entreprise.Caracteristiques) error {
	if r.IsSufficientlyQualified(c) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInsufficientQualification, r.Info().ID)
}

// subject runs IsSubject from inside a branch. The gate makes the error path
// unreachable; it still degrades to Incalculable instead of panicking.
func subject(r Rule, c *entreprise.Caracteristiques, env Env) (bool, *Status) {
	ok, err := r.IsSubject(c)
	if err != nil {
		env.logger().Error("rule branch reached without qualification", "rule", r.Info().ID, "error", err)
		s := incalculable(c, env)
		return false, &s
	}
	return ok, nil
}

// ── Phrase joiners ───────────────────────────────────────────

// joinVirgule joins criteria with ", ".
func joinVirgule(criteres []string) string { return strings.Join(criteres, ", ") }

// joinEt joins criteria with " et ".
func joinEt(criteres []string) string { return strings.Join(criteres, " et ") }

// joinEnumeration joins with ", " and " et " before the last criterion.
func joinEnumeration(criteres []string) string {
	switch len(criteres) {
	case 0:
		return ""
	case 1:
		return criteres[0]
	}
	return strings.Join(criteres[:len(criteres)-1], ", ") + " et " + criteres[len(criteres)-1]
}

const nonSoumisDetail = "Vous n'êtes pas soumis à cette réglementation."

func soumisDetail(justification string) string {
	return fmt.Sprintf("Vous êtes soumis à cette réglementation car %s.", justification)
}
