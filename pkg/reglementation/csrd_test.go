package reglementation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

const csrdFin = " Vous devez publier le Rapport de Durabilité en même temps que le rapport de gestion."

// grandeEntreprise has a large balance sheet and turnover but few employees.
func grandeEntreprise() *entreprise.Caracteristiques {
	c := qualifiee()
	c.TrancheBilan = entreprise.BilanEntre43MEt100M
	c.TrancheChiffreAffaires = entreprise.CAEntre50MEt100M
	return c
}

func TestCSRDGrandeEntrepriseNonCotee(t *testing.T) {
	c := grandeEntreprise()

	assert.Equal(t, 2025, CSRDPremierExercice(c))
	s := CalculateStatus(context.Background(), CSRD, c, testEnv())
	assert.Equal(t, Soumis, s.Code)
	assert.Equal(t, "Vous êtes soumis à cette réglementation à partir de 2026 sur les données de l'exercice comptable 2025 "+
		"car votre bilan est supérieur à 25M€ et votre chiffre d'affaires est supérieur à 50M€."+csrdFin, s.Detail)
	assert.Equal(t, "2026", s.ProchaineEcheance)
	assert.Equal(t, Action{URL: "/csrd/000000001/etape-1", Title: "Accéder à l'espace Rapport de Durabilité"}, *s.PrimaryAction)
}

func TestCSRDCoteeDePlusDe500(t *testing.T) {
	c := grandeEntreprise()
	c.Entreprise.EstCotee = entreprise.Bool(true)
	c.Effectif = entreprise.EffectifEntre500Et4999

	assert.Equal(t, 2024, CSRDPremierExercice(c))
	s := CalculateStatus(context.Background(), CSRD, c, testEnv())
	assert.Equal(t, "Vous êtes soumis à cette réglementation à partir de 2025 sur les données de l'exercice comptable 2024 "+
		"car votre société est cotée sur un marché réglementé, votre effectif est supérieur à 500 salariés, "+
		"votre bilan est supérieur à 25M€ et votre chiffre d'affaires est supérieur à 50M€."+csrdFin, s.Detail)
	assert.Equal(t, "2025", s.ProchaineEcheance)
}

func TestCSRDPMECotee(t *testing.T) {
	c := qualifiee()
	c.Entreprise.EstCotee = entreprise.Bool(true)
	c.Effectif = entreprise.EffectifEntre50Et249
	c.TrancheBilan = entreprise.BilanEntre450kEt25M
	c.TrancheChiffreAffaires = entreprise.CAEntre900kEt50M

	assert.Equal(t, 2026, CSRDPremierExercice(c))
	assert.Equal(t, []string{
		"votre société est cotée sur un marché réglementé",
		"votre effectif est supérieur à 10 salariés",
		"votre bilan est supérieur à 450k€",
		"votre chiffre d'affaires est supérieur à 900k€",
	}, CSRD.MetCriteria(c))
	assert.Equal(t, "2027", CalculateStatus(context.Background(), CSRD, c, testEnv()).ProchaineEcheance)
}

func TestCSRDMicroEntreprise(t *testing.T) {
	c := qualifiee()
	c.Entreprise.EstCotee = entreprise.Bool(true)

	soumis, err := CSRD.IsSubject(c)
	require.NoError(t, err)
	assert.False(t, soumis)

	s := CalculateStatus(context.Background(), CSRD, c, testEnv())
	assert.Equal(t, NonSoumis, s.Code)
	assert.Equal(t, "Vous n'êtes pas soumis à cette réglementation.", s.Detail)
	require.NotNil(t, s.PrimaryAction, "the CSRD space stays reachable")
	assert.Empty(t, s.ProchaineEcheance)
}

func TestCSRDCategorieJuridique(t *testing.T) {
	c := grandeEntreprise()
	c.Entreprise.CategorieJuridiqueSirene = entreprise.Int(codeAutre)
	assert.Zero(t, CSRDPremierExercice(c))

	c.Entreprise.EstInteretPublic = entreprise.Bool(true)
	c.Effectif = entreprise.EffectifEntre250Et299
	assert.Equal(t, 2025, CSRDPremierExercice(c), "public-interest entities are in scope whatever their form")

	for _, code := range []*int{nil, entreprise.Int(0)} {
		c = grandeEntreprise()
		c.Entreprise.CategorieJuridiqueSirene = code
		assert.Equal(t, 2025, CSRDPremierExercice(c))
	}
}

func TestCSRDHorsEEE(t *testing.T) {
	c := qualifiee()
	c.Entreprise.CodePaysEtrangerSirene = entreprise.Int(codePaysCanada)
	c.TrancheChiffreAffaires = entreprise.CA100MEtPlus

	assert.Equal(t, 2028, CSRDPremierExercice(c))
	s := CalculateStatus(context.Background(), CSRD, c, testEnv())
	assert.Equal(t, Soumis, s.Code)
	assert.Equal(t, "Vous êtes soumis à cette réglementation à partir de 2029 sur les données de l'exercice comptable 2028 si "+
		conditionsHorsEEE+"."+csrdFin, s.Detail)

	c = grandeEntreprise()
	c.Entreprise.CodePaysEtrangerSirene = entreprise.Int(codePaysCanada)
	assert.Equal(t, 2025, CSRDPremierExercice(c))
	assert.Equal(t, "votre siège social est hors EEE", CSRD.MetCriteria(c)[0])

	c = grandeEntreprise()
	c.Entreprise.CodePaysEtrangerSirene = entreprise.Int(codePaysPortugal)
	assert.Equal(t, 2025, CSRDPremierExercice(c))
	assert.NotContains(t, CSRD.MetCriteria(c), "votre siège social est hors EEE")
}

func TestCSRDFilialeDeGrandGroupe(t *testing.T) {
	c := grandeEntreprise()
	enGroupe(c, false, true, entreprise.EffectifEntre500Et4999, entreprise.EffectifEntre500Et4999)
	consolide(c, entreprise.CA100MEtPlus, entreprise.Bilan100MEtPlus)

	require.True(t, CSRD.IsSufficientlyQualified(c))
	assert.Equal(t, 2025, CSRDPremierExercice(c))
	s := CalculateStatus(context.Background(), CSRD, c, testEnv())
	assert.Equal(t, "Vous êtes soumis à cette réglementation à partir de 2026 sur les données de l'exercice comptable 2025 "+
		"car le bilan du groupe est supérieur à 30M€ et le chiffre d'affaires du groupe est supérieur à 60M€. "+
		"Vous pouvez déléguer cette obligation à votre société-mère."+csrdFin, s.Detail)
}

func TestCSRDSocieteMereCotee(t *testing.T) {
	c := qualifiee()
	c.Entreprise.EstCotee = entreprise.Bool(true)
	enGroupe(c, true, true, entreprise.EffectifEntre500Et4999, entreprise.EffectifEntre500Et4999)
	consolide(c, entreprise.CA100MEtPlus, entreprise.Bilan100MEtPlus)

	assert.Equal(t, 2024, CSRDPremierExercice(c))
	assert.Equal(t, []string{
		"votre société est cotée sur un marché réglementé",
		"votre société est la société mère d'un groupe",
		"l'effectif du groupe est supérieur à 500 salariés",
		"le bilan du groupe est supérieur à 30M€",
		"le chiffre d'affaires du groupe est supérieur à 60M€",
	}, CSRD.MetCriteria(c))
	assert.False(t, estDelegable(c))
}

func TestCSRDGroupQualification(t *testing.T) {
	c := grandeEntreprise()
	enGroupe(c, false, true, entreprise.EffectifEntre500Et4999, entreprise.EffectifEntre500Et4999)
	c.Entreprise.ComptesConsolides = entreprise.Bool(true)
	assert.False(t, CSRD.IsSufficientlyQualified(c))

	c.Entreprise.ComptesConsolides = nil
	assert.False(t, CSRD.IsSufficientlyQualified(c))

	c = grandeEntreprise()
	c.Entreprise.EstCotee = nil
	assert.False(t, CSRD.IsSufficientlyQualified(c))

	c = grandeEntreprise()
	c.DateClotureExercice = nil
	c.Entreprise.EstInteretPublic = nil
	assert.True(t, CSRD.IsSufficientlyQualified(c))
}

func TestCSRDExerciceDecale(t *testing.T) {
	cases := []struct {
		cloture     time.Time
		publication int
		exercice    string
	}{
		{time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC), 2026, "2025-2026"},
		{time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), 2026, "2025-2026"},
		{time.Date(2024, time.August, 31, 0, 0, 0, 0, time.UTC), 2027, "2025-2026"},
		{time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), 2026, "2025"},
	}
	for _, tc := range cases {
		t.Run(tc.cloture.Format(time.DateOnly), func(t *testing.T) {
			c := grandeEntreprise()
			c.DateClotureExercice = &tc.cloture
			assert.Equal(t, tc.publication, CSRDPremiereAnneePublication(2025, c))

			s := CalculateStatus(context.Background(), CSRD, c, testEnv())
			assert.Contains(t, s.Detail, "sur les données de l'exercice comptable "+tc.exercice+" car")
		})
	}
}

func TestCSRDPublicationSansDateDeCloture(t *testing.T) {
	c := grandeEntreprise()
	c.DateClotureExercice = nil
	assert.Equal(t, 2026, CSRDPremiereAnneePublication(2025, c))
	assert.Equal(t, 2025, CSRDPremiereAnneePublication(2024, c))
}

func TestDateArithmetic(t *testing.T) {
	leap := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), withYear(leap, 2025))
	assert.Equal(t, leap, withYear(leap, 2024))

	aug := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2027, time.February, 28, 0, 0, 0, 0, time.UTC), addMonths(aug, 6))
	assert.Equal(t, time.Date(2027, time.August, 31, 0, 0, 0, 0, time.UTC), addMonths(aug, 12))
	assert.Equal(t, 29, daysIn(time.February, 2028))
}
