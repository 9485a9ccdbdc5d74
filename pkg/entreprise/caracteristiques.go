package entreprise

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidBand is returned when a band field carries a value outside its enumeration.
	ErrInvalidBand = errors.New("entreprise: invalid band")
	// ErrInvalidSiren is returned when the SIREN is not nine digits.
	ErrInvalidSiren = errors.New("entreprise: invalid siren")
)

// Entreprise is the owning company of a snapshot.
type Entreprise struct {
	Siren        string `json:"siren"`
	Denomination string `json:"denomination,omitempty"`

	AppartientGroupe    *bool `json:"appartient_groupe,omitempty"`
	EstSocieteMere      *bool `json:"est_societe_mere,omitempty"`
	SocieteMereEnFrance *bool `json:"societe_mere_en_france,omitempty"`
	ComptesConsolides   *bool `json:"comptes_consolides,omitempty"`
	EstCotee            *bool `json:"est_cotee,omitempty"`
	EstInteretPublic    *bool `json:"est_interet_public,omitempty"`

	CategorieJuridiqueSirene *int `json:"categorie_juridique_sirene,omitempty"`
	CodePaysEtrangerSirene   *int `json:"code_pays_etranger_sirene,omitempty"`
}

// CategorieJuridique returns the legal form, or CategorieAutre when unknown.
func (e Entreprise) CategorieJuridique() CategorieJuridique {
	c, _ := ConvertitCategorieJuridique(e.CategorieJuridiqueSirene)
	return c
}

// EstDansEEE reports whether the head office is in the EEE.
func (e Entreprise) EstDansEEE() bool { return EstDansEEE(e.CodePaysEtrangerSirene) }

// Caracteristiques is the yearly characteristics snapshot of one company.
// Rules read it and never write to it.
type Caracteristiques struct {
	Entreprise          Entreprise `json:"entreprise"`
	Annee               int        `json:"annee"`
	DateClotureExercice *time.Time `json:"date_cloture_exercice,omitempty"`

	Effectif                Effectif         `json:"effectif,omitempty"`
	EffectifPermanent       Effectif         `json:"effectif_permanent,omitempty"`
	EffectifOutreMer        EffectifOutreMer `json:"effectif_outre_mer,omitempty"`
	EffectifGroupe          Effectif         `json:"effectif_groupe,omitempty"`
	EffectifGroupeFrance    Effectif         `json:"effectif_groupe_france,omitempty"`
	EffectifGroupePermanent Effectif         `json:"effectif_groupe_permanent,omitempty"`

	TrancheChiffreAffaires          TrancheChiffreAffaires `json:"tranche_chiffre_affaires,omitempty"`
	TrancheChiffreAffairesConsolide TrancheChiffreAffaires `json:"tranche_chiffre_affaires_consolide,omitempty"`
	TrancheBilan                    TrancheBilan           `json:"tranche_bilan,omitempty"`
	TrancheBilanConsolide           TrancheBilan           `json:"tranche_bilan_consolide,omitempty"`

	SystemeManagementEnergie *bool `json:"systeme_management_energie,omitempty"`
	BDESEAccord              *bool `json:"bdese_accord,omitempty"`
}

// Validate checks that every set band belongs to its enumeration and that
// the SIREN, when present, has nine digits. Unknown values are valid.
func (c *Caracteristiques) Validate() error {
	if s := c.Entreprise.Siren; s != "" && !isSiren(s) {
		return fmt.Errorf("%w: %q", ErrInvalidSiren, s)
	}
	checks := []error{
		checkBand("effectif", c.Effectif, EffectifInconnu, EffectifBands),
		checkBand("effectif_permanent", c.EffectifPermanent, EffectifInconnu, EffectifBands),
		checkBand("effectif_outre_mer", c.EffectifOutreMer, EffectifOutreMerInconnu, EffectifOutreMerBands),
		checkBand("effectif_groupe", c.EffectifGroupe, EffectifInconnu, EffectifGroupeBands),
		checkBand("effectif_groupe_france", c.EffectifGroupeFrance, EffectifInconnu, EffectifGroupeBands),
		checkBand("effectif_groupe_permanent", c.EffectifGroupePermanent, EffectifInconnu, EffectifGroupeBands),
		checkBand("tranche_chiffre_affaires", c.TrancheChiffreAffaires, CAInconnu, CABands),
		checkBand("tranche_chiffre_affaires_consolide", c.TrancheChiffreAffairesConsolide, CAInconnu, CAConsolideBands),
		checkBand("tranche_bilan", c.TrancheBilan, BilanInconnu, BilanBands),
		checkBand("tranche_bilan_consolide", c.TrancheBilanConsolide, BilanInconnu, BilanConsolideBands),
	}
	return errors.Join(checks...)
}

func isSiren(s string) bool {
	if len(s) != 9 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ExerciceComptableEstAnneeCivile reports whether the fiscal year closes on
// 31 December. An unknown closing date is treated as the calendar year.
func (c *Caracteristiques) ExerciceComptableEstAnneeCivile() bool {
	if c.DateClotureExercice == nil {
		return true
	}
	return c.DateClotureExercice.Month() == time.December && c.DateClotureExercice.Day() == 31
}

// GroupeEstQualifie reports whether the group attributes are complete enough
// for rules that look at the group.
func (c *Caracteristiques) GroupeEstQualifie() bool {
	e := c.Entreprise
	if e.AppartientGroupe == nil {
		return false
	}
	if !*e.AppartientGroupe {
		return true
	}
	consolidesQualifies := !IsTrue(e.ComptesConsolides) ||
		(c.TrancheChiffreAffairesConsolide.Known() && c.TrancheBilanConsolide.Known())
	return c.EffectifGroupe.Known() &&
		c.EffectifGroupeFrance.Known() &&
		e.EstSocieteMere != nil &&
		e.SocieteMereEnFrance != nil &&
		e.ComptesConsolides != nil &&
		consolidesQualifies
}

// IsTrue reports whether b is set and true.
func IsTrue(b *bool) bool { return b != nil && *b }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
