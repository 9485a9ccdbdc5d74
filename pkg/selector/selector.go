// Package selector filters snapshots with CEL expressions, for batch runs
// such as `annee == 2024 && effectif in ["500-4999", "10000+"]`.
//
// Variables:
//
//	snapshot   the snapshot as its JSON document (map)
//	entreprise snapshot.entreprise
//	siren      string
//	annee      int
//	effectif   string, "" when unknown
//	dans_eee   bool
//	categorie  legal-form label, "" when unknown or other
//
// Absent optional fields are missing map keys: guard them with has().
package selector

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

var ErrInvalidExpression = errors.New("selector: invalid expression")

// Selector compiles and caches CEL programs. It is safe for concurrent use.
type Selector struct {
	env      *cel.Env
	mu       sync.RWMutex
	prgCache map[string]cel.Program
}

func New() (*Selector, error) {
	env, err := cel.NewEnv(
		cel.Variable("snapshot", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("entreprise", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("siren", cel.StringType),
		cel.Variable("annee", cel.IntType),
		cel.Variable("effectif", cel.StringType),
		cel.Variable("dans_eee", cel.BoolType),
		cel.Variable("categorie", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Selector{env: env, prgCache: make(map[string]cel.Program)}, nil
}

// Compile checks expr and caches its program. The expression must be boolean.
func (s *Selector) Compile(expr string) error {
	_, err := s.program(expr)
	return err
}

func (s *Selector) program(expr string) (cel.Program, error) {
	s.mu.RLock()
	prg, hit := s.prgCache[expr]
	s.mu.RUnlock()
	if hit {
		return prg, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prg, hit = s.prgCache[expr]; hit {
		return prg, nil
	}
	ast, issues := s.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("%w: %q is %s, not bool", ErrInvalidExpression, expr, ast.OutputType())
	}
	prg, err := s.env.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(10000),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	s.prgCache[expr] = prg
	return prg, nil
}

// Match evaluates expr against c. An empty expression matches everything.
func (s *Selector) Match(expr string, c *entreprise.Caracteristiques) (bool, error) {
	if expr == "" {
		return true, nil
	}
	prg, err := s.program(expr)
	if err != nil {
		return false, err
	}
	input, err := activation(c)
	if err != nil {
		return false, err
	}
	out, _, err := prg.Eval(input)
	if err != nil {
		return false, fmt.Errorf("eval %s: %w", c.Entreprise.Siren, err)
	}
	val, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %s: result not bool", c.Entreprise.Siren)
	}
	return val, nil
}

// Filter keeps the snapshots matching expr, in input order.
func (s *Selector) Filter(expr string, in []*entreprise.Caracteristiques) ([]*entreprise.Caracteristiques, error) {
	if expr != "" {
		if err := s.Compile(expr); err != nil {
			return nil, err
		}
	}
	var out []*entreprise.Caracteristiques
	for _, c := range in {
		ok, err := s.Match(expr, c)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func activation(c *entreprise.Caracteristiques) (map[string]any, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("selector: marshal snapshot: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("selector: unmarshal snapshot: %w", err)
	}
	doc = integers(doc).(map[string]any)
	ent, _ := doc["entreprise"].(map[string]any)
	if ent == nil {
		ent = map[string]any{}
	}
	return map[string]any{
		"snapshot":   doc,
		"entreprise": ent,
		"siren":      c.Entreprise.Siren,
		"annee":      int64(c.Annee),
		"effectif":   string(c.Effectif),
		"dans_eee":   c.Entreprise.EstDansEEE(),
		"categorie":  c.Entreprise.CategorieJuridique().Label(),
	}, nil
}

// integers turns integral JSON numbers into int64 so that they compare
// with CEL int literals.
func integers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = integers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = integers(e)
		}
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	default:
		return v
	}
}
