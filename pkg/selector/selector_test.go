package selector

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

func snapshots() []*entreprise.Caracteristiques {
	return []*entreprise.Caracteristiques{
		{
			Entreprise: entreprise.Entreprise{
				Siren:                    "000000001",
				EstCotee:                 entreprise.Bool(true),
				CategorieJuridiqueSirene: entreprise.Int(5710),
			},
			Annee:    2024,
			Effectif: entreprise.Effectif10000EtPlus,
		},
		{
			Entreprise: entreprise.Entreprise{
				Siren:                  "000000002",
				CodePaysEtrangerSirene: entreprise.Int(99401),
			},
			Annee:    2023,
			Effectif: entreprise.EffectifEntre10Et49,
		},
		{
			Entreprise: entreprise.Entreprise{Siren: "000000003"},
			Annee:      2024,
		},
	}
}

func sirens(cs []*entreprise.Caracteristiques) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.Entreprise.Siren)
	}
	return out
}

func TestFilter(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	tests := []struct {
		expr string
		want []string
	}{
		{"", []string{"000000001", "000000002", "000000003"}},
		{"annee == 2024", []string{"000000001", "000000003"}},
		{`effectif in ["500-4999", "5000-9999", "10000+"]`, []string{"000000001"}},
		{`effectif == ""`, []string{"000000003"}},
		{"!dans_eee", []string{"000000002"}},
		{`categorie == "Société par Actions Simplifiées"`, []string{"000000001"}},
		{`has(entreprise.est_cotee) && entreprise.est_cotee`, []string{"000000001"}},
		{`has(entreprise.code_pays_etranger_sirene) && entreprise.code_pays_etranger_sirene == 99401`, []string{"000000002"}},
		{`snapshot.annee < 2024`, []string{"000000002"}},
		{`siren.startsWith("00000000") && siren.endsWith("3")`, []string{"000000003"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := s.Filter(tt.expr, snapshots())
			require.NoError(t, err)
			assert.Equal(t, tt.want, sirens(got))
		})
	}
}

func TestInvalidExpression(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	for _, expr := range []string{"annee ==", "annee + 1", "inconnu == 1", `effectif == 3`} {
		_, err := s.Filter(expr, snapshots())
		assert.ErrorIs(t, err, ErrInvalidExpression, expr)
	}
}

func TestMissingKeyIsAnEvaluationError(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	_, err = s.Match("entreprise.est_cotee", snapshots()[2])
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidExpression)
	assert.Contains(t, err.Error(), "000000003")
}

func TestProgramCache(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, c := range snapshots() {
				_, err := s.Match("annee >= 2024", c)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	assert.Len(t, s.prgCache, 1)
}
