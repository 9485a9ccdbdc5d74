package intake

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

const complet = `{
  "entreprise": {
    "siren": "000000001",
    "denomination": "Coopérative du Nord",
    "appartient_groupe": true,
    "est_societe_mere": false,
    "societe_mere_en_france": true,
    "comptes_consolides": false,
    "est_cotee": false,
    "categorie_juridique_sirene": 5560,
    "code_pays_etranger_sirene": null
  },
  "annee": 2024,
  "date_cloture_exercice": "2024-06-30",
  "effectif": "500-4999",
  "effectif_outre_mer": "0-249",
  "effectif_groupe": "5000-9999",
  "effectif_groupe_france": "500-4999",
  "tranche_chiffre_affaires": "50M-100M",
  "tranche_bilan": "43M-100M",
  "systeme_management_energie": null
}`

func TestDecode(t *testing.T) {
	c, err := Decode([]byte(complet))
	require.NoError(t, err)

	assert.Equal(t, "000000001", c.Entreprise.Siren)
	assert.Equal(t, "Coopérative du Nord", c.Entreprise.Denomination)
	assert.True(t, entreprise.IsTrue(c.Entreprise.AppartientGroupe))
	require.NotNil(t, c.Entreprise.EstSocieteMere)
	assert.False(t, *c.Entreprise.EstSocieteMere)
	require.NotNil(t, c.Entreprise.CategorieJuridiqueSirene)
	assert.Equal(t, 5560, *c.Entreprise.CategorieJuridiqueSirene)
	assert.Nil(t, c.Entreprise.CodePaysEtrangerSirene)
	assert.Nil(t, c.Entreprise.EstInteretPublic)

	assert.Equal(t, 2024, c.Annee)
	require.NotNil(t, c.DateClotureExercice)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), *c.DateClotureExercice)
	assert.Equal(t, entreprise.EffectifEntre500Et4999, c.Effectif)
	assert.Equal(t, entreprise.EffectifInconnu, c.EffectifPermanent)
	assert.Equal(t, entreprise.BilanEntre43MEt100M, c.TrancheBilan)
	assert.Nil(t, c.SystemeManagementEnergie)
}

func TestDecodeRFC3339Date(t *testing.T) {
	c, err := Decode([]byte(`{"entreprise":{"siren":"000000001"},"annee":2024,"date_cloture_exercice":"2024-03-31T00:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, time.March, c.DateClotureExercice.Month())
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"missing annee", `{"entreprise":{"siren":"000000001"}}`},
		{"missing siren", `{"entreprise":{},"annee":2024}`},
		{"short siren", `{"entreprise":{"siren":"12345"},"annee":2024}`},
		{"unknown field", `{"entreprise":{"siren":"000000001"},"annee":2024,"chiffre_affaires":12}`},
		{"group band on company", `{"entreprise":{"siren":"000000001"},"annee":2024,"effectif":"0-49"}`},
		{"company band on group", `{"entreprise":{"siren":"000000001"},"annee":2024,"effectif_groupe":"10-49"}`},
		{"consolidated band on company", `{"entreprise":{"siren":"000000001"},"annee":2024,"tranche_bilan":"0-30M"}`},
		{"boolean as string", `{"entreprise":{"siren":"000000001","est_cotee":"oui"},"annee":2024}`},
		{"bad date", `{"entreprise":{"siren":"000000001"},"annee":2024,"date_cloture_exercice":"30/06/2024"}`},
		{"impossible date", `{"entreprise":{"siren":"000000001"},"annee":2024,"date_cloture_exercice":"2024-02-30"}`},
		{"annee out of range", `{"entreprise":{"siren":"000000001"},"annee":1789}`},
		{"country code", `{"entreprise":{"siren":"000000001","code_pays_etranger_sirene":12},"annee":2024}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}
}

func TestDecodeAll(t *testing.T) {
	a := `{"entreprise":{"siren":"000000001"},"annee":2024,"effectif":"10-49"}`
	b := `{"entreprise":{"siren":"000000002"},"annee":2024,"effectif":"10000+"}`

	t.Run("array", func(t *testing.T) {
		got, err := DecodeAll(strings.NewReader("  [" + a + "," + b + "]"))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "000000002", got[1].Entreprise.Siren)
	})

	t.Run("ndjson", func(t *testing.T) {
		got, err := DecodeAll(strings.NewReader(a + "\n" + b + "\n"))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, entreprise.Effectif10000EtPlus, got[1].Effectif)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := DecodeAll(strings.NewReader("\n"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("names the bad document", func(t *testing.T) {
		_, err := DecodeAll(strings.NewReader(a + "\n" + `{"entreprise":{"siren":"1"},"annee":2024}`))
		require.ErrorIs(t, err, ErrInvalidSnapshot)
		assert.Contains(t, err.Error(), "document 2")
	})
}
