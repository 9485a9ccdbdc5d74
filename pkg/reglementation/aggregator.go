package reglementation

import (
	"context"
	"fmt"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// RulesetVersion identifies the thresholds and wording implemented here.
// Profiles pin it with a semver constraint.
const RulesetVersion = "2.3.0"

// registered is the presentation order of EvaluateAll. DPEF is deliberately absent.
var registered = []Rule{
	VSME,
	CSRD,
	BDESE,
	IndexEgaPro,
	DispositifAlerte,
	BGES,
	AuditEnergetique,
	DispositifAnticorruption,
	PlanVigilance,
}

// all additionally holds rules that can be looked up but are not aggregated.
var all = append(append([]Rule{}, registered...), DPEF)

// Rules returns the aggregated rules in registration order.
func Rules() []Rule {
	return append([]Rule(nil), registered...)
}

// Lookup returns the rule with the given ID, including unregistered ones.
func Lookup(id string) (Rule, error) {
	for _, r := range all {
		if r.Info().ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRule, id)
}

// Result pairs a rule with its status.
type Result struct {
	Rule   Info   `json:"reglementation"`
	Status Status `json:"status"`
}

// Filter restricts EvaluateAll to some rules. A nil Filter keeps them all.
type Filter func(Info) bool

// EvaluateAll runs every registered rule against c, in registration order.
func EvaluateAll(ctx context.Context, c *entreprise.Caracteristiques, env Env) []Result {
	return EvaluateSome(ctx, c, env, nil)
}

// EvaluateSome is EvaluateAll restricted to rules accepted by keep.
func EvaluateSome(ctx context.Context, c *entreprise.Caracteristiques, env Env, keep Filter) []Result {
	results := make([]Result, 0, len(registered))
	for _, r := range registered {
		info := r.Info()
		if keep != nil && !keep(info) {
			continue
		}
		results = append(results, Result{Rule: info, Status: CalculateStatus(ctx, r, c, env)})
	}
	return results
}

// Buckets groups results by status code for presentation.
type Buckets struct {
	AActualiser  []Result `json:"a_actualiser"`
	EnCours      []Result `json:"en_cours"`
	AJour        []Result `json:"a_jour"`
	Soumis       []Result `json:"soumis"`
	NonSoumis    []Result `json:"non_soumis"`
	Recommande   []Result `json:"recommande"`
	Incalculable []Result `json:"incalculable"`
}

// Partition groups results without recomputing them. Order within a bucket
// follows the input order.
func Partition(results []Result) Buckets {
	var b Buckets
	for _, r := range results {
		switch r.Status.Code {
		case AActualiser:
			b.AActualiser = append(b.AActualiser, r)
		case EnCours:
			b.EnCours = append(b.EnCours, r)
		case AJour:
			b.AJour = append(b.AJour, r)
		case Soumis:
			b.Soumis = append(b.Soumis, r)
		case NonSoumis:
			b.NonSoumis = append(b.NonSoumis, r)
		case Recommande:
			b.Recommande = append(b.Recommande, r)
		case Incalculable:
			b.Incalculable = append(b.Incalculable, r)
		}
	}
	return b
}

// Count returns the number of results per code.
func (b Buckets) Count() map[Code]int {
	return map[Code]int{
		AActualiser:  len(b.AActualiser),
		EnCours:      len(b.EnCours),
		AJour:        len(b.AJour),
		Soumis:       len(b.Soumis),
		NonSoumis:    len(b.NonSoumis),
		Recommande:   len(b.Recommande),
		Incalculable: len(b.Incalculable),
	}
}
