package reglementation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ActorKind tells how the person looking at the result relates to the company.
type ActorKind int

const (
	// ActorAttached is a signed-in user attached to the company. It is the
	// zero value: callers that do not know better get the full wording.
	ActorAttached ActorKind = iota
	ActorAnonymous
	// ActorUnattached is signed in but not attached to the company.
	ActorUnattached
)

func (k ActorKind) String() string {
	switch k {
	case ActorAnonymous:
		return "anonymous"
	case ActorUnattached:
		return "unattached"
	default:
		return "attached"
	}
}

// Actor is the caller on whose behalf a snapshot is evaluated.
type Actor struct {
	Kind   ActorKind
	UserID string
	// Habilitated users see the company's official records rather than
	// their personal drafts.
	Habilitated bool
}

// FreshnessOracle answers whether a company published its declaration for a
// year on the external registry. Implementations fail with an error wrapping
// ErrOracleUnavailable.
type FreshnessOracle interface {
	HasPublishedDeclaration(ctx context.Context, siren string, year int) (bool, error)
}

// BDESEType is the flavour of BDESE a company must keep.
type BDESEType int

const (
	BDESEAvecAccord BDESEType = iota + 1
	BDESEInferieur300
	BDESEInferieur500
	BDESESuperieur500
)

// BDESEState is the progress of a company's BDESE for one year.
type BDESEState struct {
	Complete bool
}

// BDESEProgress looks up a BDESE. It returns nil, nil when none exists.
type BDESEProgress interface {
	Lookup(ctx context.Context, siren string, year int, typ BDESEType, actor Actor) (*BDESEState, error)
}

// Links builds the internal URLs carried by actions. An empty BaseURL yields
// site-relative paths.
type Links struct {
	BaseURL string
}

func (l Links) path(format string, args ...any) string {
	return strings.TrimRight(l.BaseURL, "/") + fmt.Sprintf(format, args...)
}

// Qualification is the company profile page.
func (l Links) Qualification(siren string) string { return l.path("/entreprises/%s", siren) }

// Login is the login page returning to the company's obligations.
func (l Links) Login(siren string) string {
	return l.path("/connexion?next=/reglementations/%s", siren)
}

func (l Links) CSRD(siren string) string { return l.path("/csrd/%s/etape-1", siren) }

// VSMEIndicateurs is the VSME indicator categories of one reporting year.
func (l Links) VSMEIndicateurs(siren string, annee int) string {
	return l.path("/indicateurs/%s/%d", siren, annee)
}

func (l Links) VSMEIntroduction(siren string) string { return l.path("/vsme/%s/introduction/", siren) }

func (l Links) BDESEStep(siren string, annee, step int) string {
	return l.path("/bdese/%s/%d/%d", siren, annee, step)
}

func (l Links) BDESEPDF(siren string, annee int) string { return l.path("/bdese/%s/%d/pdf", siren, annee) }

func (l Links) BDESEToggle(siren string, annee int) string {
	return l.path("/bdese/%s/%d/actualiser-desactualiser", siren, annee)
}

// Env carries the per-call inputs of an evaluation. Rules never read the
// wall clock or global state.
type Env struct {
	Today  time.Time
	Actor  Actor
	Oracle FreshnessOracle
	BDESE  BDESEProgress
	Links  Links
	Logger *slog.Logger
}

func (e Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default().With("component", "reglementation")
}
