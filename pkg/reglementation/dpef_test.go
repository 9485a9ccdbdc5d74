package reglementation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

func TestDPEFIsNotAggregated(t *testing.T) {
	for _, r := range Rules() {
		assert.NotEqual(t, "dpef", r.Info().ID)
	}
	r, err := Lookup("dpef")
	require.NoError(t, err)
	assert.Equal(t, "Déclaration de Performance Extra-Financière", r.Info().Title)
}

func TestDPEFGeneral(t *testing.T) {
	cases := []struct {
		name     string
		setup    func(c *entreprise.Caracteristiques)
		criteres []string
		soumis   bool
	}{
		{
			name: "SA cotée",
			setup: func(c *entreprise.Caracteristiques) {
				c.Entreprise.EstCotee = entreprise.Bool(true)
				c.EffectifPermanent = entreprise.EffectifEntre500Et4999
				c.TrancheBilan = entreprise.BilanEntre25MEt43M
			},
			criteres: []string{
				"votre entreprise est une Société Anonyme",
				"votre société est cotée sur un marché réglementé",
				"votre effectif permanent est supérieur à 500 salariés",
				"votre bilan est supérieur à 20M€",
			},
			soumis: true,
		},
		{
			name: "SA non cotée",
			setup: func(c *entreprise.Caracteristiques) {
				c.EffectifPermanent = entreprise.EffectifEntre500Et4999
				c.TrancheBilan = entreprise.BilanEntre25MEt43M
				c.TrancheChiffreAffaires = entreprise.CA100MEtPlus
			},
			criteres: []string{
				"votre entreprise est une Société Anonyme",
				"votre effectif permanent est supérieur à 500 salariés",
				"votre chiffre d'affaires est supérieur à 100M€",
			},
			soumis: true,
		},
		{
			name: "SA non cotée sous les seuils",
			setup: func(c *entreprise.Caracteristiques) {
				c.EffectifPermanent = entreprise.EffectifEntre500Et4999
				c.TrancheBilan = entreprise.BilanEntre43MEt100M
				c.TrancheChiffreAffaires = entreprise.CAEntre50MEt100M
			},
			criteres: []string{
				"votre entreprise est une Société Anonyme",
				"votre effectif permanent est supérieur à 500 salariés",
			},
		},
		{
			name: "SAS",
			setup: func(c *entreprise.Caracteristiques) {
				c.Entreprise.CategorieJuridiqueSirene = entreprise.Int(codeSAS)
				c.EffectifPermanent = entreprise.Effectif10000EtPlus
				c.TrancheBilan = entreprise.Bilan100MEtPlus
			},
			criteres: []string{
				"votre effectif permanent est supérieur à 500 salariés",
				"votre bilan est supérieur à 100M€",
			},
		},
		{
			name: "groupe consolidé",
			setup: func(c *entreprise.Caracteristiques) {
				enGroupe(c, true, true, entreprise.Effectif10000EtPlus, entreprise.Effectif10000EtPlus)
				consolide(c, entreprise.CAMoinsDe60M, entreprise.Bilan100MEtPlus)
				c.EffectifGroupePermanent = entreprise.EffectifEntre5000Et9999
			},
			criteres: []string{
				"votre entreprise est une Société Anonyme",
				"l'effectif permanent du groupe est supérieur à 500 salariés",
				"votre bilan consolidé est supérieur à 100M€",
			},
			soumis: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := qualifiee()
			tc.setup(c)
			require.True(t, DPEF.IsSufficientlyQualified(c))
			assert.Equal(t, tc.criteres, DPEF.MetCriteria(c))

			s := CalculateStatus(context.Background(), DPEF, c, testEnv())
			if tc.soumis {
				assert.Equal(t, Soumis, s.Code)
				assert.Equal(t, "Vous êtes soumis à cette réglementation car "+joinEnumeration(tc.criteres)+".", s.Detail)
			} else {
				assert.Equal(t, NonSoumis, s.Code)
			}
			assert.Nil(t, s.PrimaryAction)
		})
	}
}

func TestDPEFMutuelle(t *testing.T) {
	c := qualifiee()
	c.Entreprise.CategorieJuridiqueSirene = entreprise.Int(entreprise.CodeMutuelle)
	c.EffectifPermanent = entreprise.EffectifEntre500Et4999
	c.TrancheChiffreAffaires = entreprise.CA100MEtPlus

	soumis, err := DPEF.IsSubject(c)
	require.NoError(t, err)
	assert.True(t, soumis)
	assert.Equal(t, []string{
		"votre entreprise est une Mutuelle",
		"votre effectif permanent est supérieur à 500 salariés",
		"votre chiffre d'affaires est supérieur à 100M€",
	}, DPEF.MetCriteria(c))

	c.TrancheChiffreAffaires = entreprise.CAEntre50MEt100M
	soumis, err = DPEF.IsSubject(c)
	require.NoError(t, err)
	assert.False(t, soumis)
}

func TestDPEFInstitutionPrevoyance(t *testing.T) {
	c := qualifiee()
	c.Entreprise.CategorieJuridiqueSirene = entreprise.Int(entreprise.CodeInstitutionPrevoyance)
	c.Entreprise.EstCotee = entreprise.Bool(true)
	c.EffectifPermanent = entreprise.EffectifEntre500Et4999
	c.TrancheBilan = entreprise.Bilan100MEtPlus

	soumis, err := DPEF.IsSubject(c)
	require.NoError(t, err)
	assert.True(t, soumis)
	assert.Equal(t, []string{
		"votre entreprise est une Institution de Prévoyance",
		"votre effectif permanent est supérieur à 500 salariés",
		"votre bilan est supérieur à 20M€",
	}, DPEF.MetCriteria(c))
}

func TestDPEFQualification(t *testing.T) {
	c := qualifiee()
	c.EffectifPermanent = entreprise.EffectifInconnu
	assert.False(t, DPEF.IsSufficientlyQualified(c))

	c = qualifiee()
	enGroupe(c, true, true, entreprise.Effectif10000EtPlus, entreprise.Effectif10000EtPlus)
	consolide(c, entreprise.CAMoinsDe60M, entreprise.BilanMoinsDe30M)
	c.EffectifGroupePermanent = entreprise.EffectifInconnu
	assert.False(t, DPEF.IsSufficientlyQualified(c))
}
