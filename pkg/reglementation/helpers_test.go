package reglementation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

const (
	codeSA            = 5505
	codeSACooperative = 5551
	codeSAS           = 5710
	codeSCA           = 5310
	codeSE            = 5800
	codeAutre         = 9240 // congrégation
	codePaysPortugal  = 99139
	codePaysCanada    = 99401
)

var today = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

// qualifiee mirrors a freshly qualified, small, standalone SA in France.
func qualifiee() *entreprise.Caracteristiques {
	cloture := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	return &entreprise.Caracteristiques{
		Entreprise: entreprise.Entreprise{
			Siren:                    "000000001",
			Denomination:             "Entreprise SAS",
			AppartientGroupe:         entreprise.Bool(false),
			EstSocieteMere:           entreprise.Bool(false),
			SocieteMereEnFrance:      entreprise.Bool(false),
			ComptesConsolides:        entreprise.Bool(false),
			EstCotee:                 entreprise.Bool(false),
			EstInteretPublic:         entreprise.Bool(false),
			CategorieJuridiqueSirene: entreprise.Int(codeSA),
		},
		Annee:                    2024,
		DateClotureExercice:      &cloture,
		Effectif:                 entreprise.EffectifMoinsDe10,
		EffectifPermanent:        entreprise.EffectifMoinsDe10,
		EffectifOutreMer:         entreprise.EffectifOutreMerMoinsDe250,
		TrancheChiffreAffaires:   entreprise.CAMoinsDe900k,
		TrancheBilan:             entreprise.BilanMoinsDe450k,
		SystemeManagementEnergie: entreprise.Bool(false),
		BDESEAccord:              entreprise.Bool(false),
	}
}

// enGroupe turns c into a member of a group with the given headcounts.
func enGroupe(c *entreprise.Caracteristiques, mere, mereEnFrance bool, groupe, groupeFrance entreprise.Effectif) {
	c.Entreprise.AppartientGroupe = entreprise.Bool(true)
	c.Entreprise.EstSocieteMere = entreprise.Bool(mere)
	c.Entreprise.SocieteMereEnFrance = entreprise.Bool(mereEnFrance)
	c.EffectifGroupe = groupe
	c.EffectifGroupeFrance = groupeFrance
	c.EffectifGroupePermanent = entreprise.EffectifMoinsDe50
}

// consolide gives c consolidated accounts.
func consolide(c *entreprise.Caracteristiques, ca entreprise.TrancheChiffreAffaires, bilan entreprise.TrancheBilan) {
	c.Entreprise.ComptesConsolides = entreprise.Bool(true)
	c.TrancheChiffreAffairesConsolide = ca
	c.TrancheBilanConsolide = bilan
}

func testEnv() Env {
	return Env{Today: today, Oracle: &fakeOracle{}}
}

type fakeOracle struct {
	mu        sync.Mutex
	published bool
	err       error
	calls     []int
}

func (f *fakeOracle) HasPublishedDeclaration(_ context.Context, _ string, year int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, year)
	return f.published, f.err
}

type fakeBDESE struct {
	state *BDESEState
	err   error
	typ   BDESEType
	actor Actor
}

func (f *fakeBDESE) Lookup(_ context.Context, _ string, _ int, typ BDESEType, actor Actor) (*BDESEState, error) {
	f.typ = typ
	f.actor = actor
	return f.state, f.err
}

var errBoom = errors.New("boom")
