package reglementation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// ── Index EgaPro ─────────────────────────────────────────────

func TestIndexEgaProNonSoumis(t *testing.T) {
	for _, eff := range []entreprise.Effectif{entreprise.EffectifMoinsDe10, entreprise.EffectifEntre10Et49} {
		c := qualifiee()
		c.Effectif = eff
		oracle := &fakeOracle{}
		env := testEnv()
		env.Oracle = oracle

		s := CalculateStatus(context.Background(), IndexEgaPro, c, env)
		assert.Equal(t, NonSoumis, s.Code)
		assert.Equal(t, "Vous n'êtes pas soumis à cette norme.", s.Detail)
		require.NotNil(t, s.PrimaryAction)
		assert.Equal(t, "https://egapro.travail.gouv.fr/index-egapro/recherche", s.PrimaryAction.URL)
		assert.True(t, s.PrimaryAction.External)
		assert.Empty(t, oracle.calls, "the registry is only asked for subject companies")
	}
}

func TestIndexEgaProPublished(t *testing.T) {
	c := qualifiee()
	c.Effectif = entreprise.EffectifEntre50Et249
	oracle := &fakeOracle{published: true}
	env := testEnv()
	env.Oracle = oracle

	s := CalculateStatus(context.Background(), IndexEgaPro, c, env)
	assert.Equal(t, AJour, s.Code)
	assert.Equal(t, "Vous êtes soumis à cette norme car votre effectif est supérieur à 50 salariés. "+
		"Vous avez publié votre index 2024 d'après les données disponibles sur la plateforme Egapro.", s.Detail)
	assert.Equal(t, "01/03/2026", s.ProchaineEcheance)
	require.NotNil(t, s.PrimaryAction)
	assert.Equal(t, "Publier mon index sur la plateforme nationale", s.PrimaryAction.Title)
	assert.Equal(t, []int{2024}, oracle.calls)
}

func TestIndexEgaProNotYetPublished(t *testing.T) {
	c := qualifiee()
	c.Effectif = entreprise.EffectifEntre500Et4999

	s := CalculateStatus(context.Background(), IndexEgaPro, c, testEnv())
	assert.Equal(t, AActualiser, s.Code)
	assert.Equal(t, "Vous êtes soumis à cette norme car votre effectif est supérieur à 50 salariés. "+
		"Vous n'avez pas encore publié votre index 2024 sur la plateforme Egapro. "+
		"Vous devez calculer et publier votre index chaque année au plus tard le 1er mars.", s.Detail)
	assert.Equal(t, "01/03/2025", s.ProchaineEcheance)
}

func TestIndexEgaProOracleFailure(t *testing.T) {
	c := qualifiee()
	c.Effectif = entreprise.EffectifEntre250Et299

	for name, oracle := range map[string]FreshnessOracle{
		"error":      &fakeOracle{err: errBoom},
		"no oracle":  nil,
		"sentinel":   &fakeOracle{err: fmt.Errorf("%w: timeout", ErrOracleUnavailable)},
		"stale true": &fakeOracle{published: true, err: errBoom},
	} {
		t.Run(name, func(t *testing.T) {
			env := testEnv()
			env.Oracle = oracle

			s := CalculateStatus(context.Background(), IndexEgaPro, c, env)
			assert.Equal(t, Soumis, s.Code)
			assert.Empty(t, s.ProchaineEcheance)
			assert.Contains(t, s.Detail, "Suite à un problème technique")
			assert.Contains(t, s.Detail, "au plus tard le 1er mars.")
			require.NotNil(t, s.PrimaryAction)
			assert.Equal(t, "https://egapro.travail.gouv.fr/", s.PrimaryAction.URL)
		})
	}
}

func TestIndexEgaProPublishedWrapsUnavailable(t *testing.T) {
	env := testEnv()
	env.Oracle = &fakeOracle{err: errBoom}
	_, err := indexEgaPro{}.published(context.Background(), "000000001", 2024, env)
	require.ErrorIs(t, err, ErrOracleUnavailable)
	assert.Contains(t, err.Error(), "boom")
}

func TestEgaProDeadlines(t *testing.T) {
	jan := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2025, DerniereAnneeAPublier(jan))
	assert.Equal(t, "01/03/2026", ProchaineEcheanceEgaPro(jan, false).Format(echeanceLayout))
	assert.Equal(t, "01/03/2027", ProchaineEcheanceEgaPro(jan, true).Format(echeanceLayout))
}

// ── Dispositif d'alerte ──────────────────────────────────────

func TestDispositifAlerte(t *testing.T) {
	cases := []struct {
		effectif entreprise.Effectif
		code     Code
	}{
		{entreprise.EffectifMoinsDe10, NonSoumis},
		{entreprise.EffectifEntre10Et49, NonSoumis},
		{entreprise.EffectifEntre50Et249, Soumis},
		{entreprise.Effectif10000EtPlus, Soumis},
	}
	for _, tc := range cases {
		t.Run(string(tc.effectif), func(t *testing.T) {
			c := qualifiee()
			c.Effectif = tc.effectif
			s := CalculateStatus(context.Background(), DispositifAlerte, c, testEnv())
			assert.Equal(t, tc.code, s.Code)
			assert.Nil(t, s.PrimaryAction)
			if tc.code == Soumis {
				assert.Equal(t, "Vous êtes soumis à cette réglementation car votre effectif est supérieur à 50 salariés.", s.Detail)
			} else {
				assert.Equal(t, "Vous n'êtes pas soumis à cette réglementation.", s.Detail)
			}
		})
	}
}

// ── BDESE ────────────────────────────────────────────────────

func TestTypeBDESE(t *testing.T) {
	cases := []struct {
		effectif entreprise.Effectif
		accord   bool
		want     BDESEType
	}{
		{entreprise.EffectifEntre50Et249, false, BDESEInferieur300},
		{entreprise.EffectifEntre250Et299, false, BDESEInferieur300},
		{entreprise.EffectifEntre300Et499, false, BDESEInferieur500},
		{entreprise.EffectifEntre500Et4999, false, BDESESuperieur500},
		{entreprise.Effectif10000EtPlus, false, BDESESuperieur500},
		{entreprise.EffectifEntre50Et249, true, BDESEAvecAccord},
	}
	for _, tc := range cases {
		c := qualifiee()
		c.Effectif = tc.effectif
		c.BDESEAccord = entreprise.Bool(tc.accord)
		assert.Equal(t, tc.want, TypeBDESE(c), tc.effectif)
	}
}

func TestBDESENonSoumis(t *testing.T) {
	s := CalculateStatus(context.Background(), BDESE, qualifiee(), testEnv())
	assert.Equal(t, NonSoumis, s.Code)
	require.NotNil(t, s.PrimaryAction)
	assert.Equal(t, "Tester une BDESE", s.PrimaryAction.Title)
	assert.Equal(t, "/bdese/000000001/2024/1", s.PrimaryAction.URL)
}

func TestBDESEStates(t *testing.T) {
	base := "Vous êtes soumis à cette réglementation car votre effectif est supérieur à 50 salariés."
	cases := []struct {
		name      string
		progress  *fakeBDESE
		code      Code
		detail    string
		primary   Action
		secondary []Action
	}{
		{
			name:     "none",
			progress: &fakeBDESE{},
			code:     AActualiser,
			detail:   base + " Nous allons vous aider à la remplir.",
			primary:  Action{URL: "/bdese/000000001/2024/0", Title: "Actualiser ma BDESE"},
		},
		{
			name:     "lookup failure",
			progress: &fakeBDESE{state: &BDESEState{Complete: true}, err: errBoom},
			code:     AActualiser,
			detail:   base + " Nous allons vous aider à la remplir.",
			primary:  Action{URL: "/bdese/000000001/2024/0", Title: "Actualiser ma BDESE"},
		},
		{
			name:     "started",
			progress: &fakeBDESE{state: &BDESEState{}},
			code:     EnCours,
			detail:   base + " Vous avez démarré le remplissage de votre BDESE 2024 sur la plateforme.",
			primary:  Action{URL: "/bdese/000000001/2024/1", Title: "Reprendre l'actualisation de ma BDESE"},
			secondary: []Action{
				{URL: "/bdese/000000001/2024/pdf", Title: "Télécharger le pdf 2024 (brouillon)", External: true},
			},
		},
		{
			name:     "complete",
			progress: &fakeBDESE{state: &BDESEState{Complete: true}},
			code:     AJour,
			detail:   base + " Vous avez actualisé votre BDESE 2024 sur la plateforme.",
			primary:  Action{URL: "/bdese/000000001/2024/pdf", Title: "Télécharger le pdf 2024", External: true},
			secondary: []Action{
				{URL: "/bdese/000000001/2024/1", Title: "Modifier ma BDESE"},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := qualifiee()
			c.Effectif = entreprise.EffectifEntre300Et499
			env := testEnv()
			env.BDESE = tc.progress
			env.Actor = Actor{UserID: "42", Habilitated: true}

			s := CalculateStatus(context.Background(), BDESE, c, env)
			assert.Equal(t, tc.code, s.Code)
			assert.Equal(t, tc.detail, s.Detail)
			require.NotNil(t, s.PrimaryAction)
			assert.Equal(t, tc.primary, *s.PrimaryAction)
			assert.Equal(t, tc.secondary, s.SecondaryActions)
			assert.Equal(t, BDESEInferieur500, tc.progress.typ)
			assert.Equal(t, "42", tc.progress.actor.UserID)
		})
	}
}

func TestBDESEWithoutCapability(t *testing.T) {
	c := qualifiee()
	c.Effectif = entreprise.EffectifEntre50Et249
	s := CalculateStatus(context.Background(), BDESE, c, testEnv())
	assert.Equal(t, AActualiser, s.Code)
}

func TestBDESEAccord(t *testing.T) {
	c := qualifiee()
	c.Effectif = entreprise.EffectifEntre50Et249
	c.BDESEAccord = entreprise.Bool(true)
	detail := "Vous êtes soumis à cette réglementation car votre effectif est supérieur à 50 salariés. " +
		"Vous avez un accord d'entreprise spécifique. Veuillez vous y référer."

	env := testEnv()
	env.Links = Links{BaseURL: "https://portail-rse.example/"}
	env.BDESE = &fakeBDESE{}
	s := CalculateStatus(context.Background(), BDESE, c, env)
	assert.Equal(t, AActualiser, s.Code)
	assert.Equal(t, detail, s.Detail)
	assert.Equal(t, Action{
		URL:   "https://portail-rse.example/bdese/000000001/2024/actualiser-desactualiser",
		Title: "Marquer ma BDESE 2024 comme actualisée",
	}, *s.PrimaryAction)

	env.BDESE = &fakeBDESE{state: &BDESEState{Complete: true}}
	s = CalculateStatus(context.Background(), BDESE, c, env)
	assert.Equal(t, AJour, s.Code)
	assert.Equal(t, detail, s.Detail)
	assert.Equal(t, "Marquer ma BDESE 2024 comme non actualisée", s.PrimaryAction.Title)
	assert.Empty(t, s.SecondaryActions)
}

// ── VSME ─────────────────────────────────────────────────────

func TestVSMEIsRecommended(t *testing.T) {
	for _, c := range []*entreprise.Caracteristiques{qualifiee(), {Entreprise: entreprise.Entreprise{Siren: "000000001"}}} {
		s := CalculateStatus(context.Background(), VSME, c, testEnv())
		assert.Equal(t, Recommande, s.Code)
		assert.Equal(t, Action{URL: "/indicateurs/000000001/2024", Title: "Remplir mes indicateurs VSME"}, *s.PrimaryAction)
		assert.Equal(t, []Action{{URL: "/vsme/000000001/introduction/", Title: "Découvrir la démarche VSME"}}, s.SecondaryActions)
	}
}

func TestVSMEIndicateursFollowPreviousYear(t *testing.T) {
	env := testEnv()
	env.Today = time.Date(2027, time.January, 2, 0, 0, 0, 0, time.UTC)
	env.Links = Links{BaseURL: "https://portail-rse.example/"}

	s := CalculateStatus(context.Background(), VSME, qualifiee(), env)
	assert.Equal(t, "https://portail-rse.example/indicateurs/000000001/2026", s.PrimaryAction.URL)
}
