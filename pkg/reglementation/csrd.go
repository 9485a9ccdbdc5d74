package reglementation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// CSRD is the sustainability report required by the Corporate
// Sustainability Reporting Directive, phased in from 2024 to 2028.
var CSRD Rule = csrd{}

type csrd struct{}

const conditionsHorsEEE = "votre société dont le siège social est hors EEE revêt une forme juridique comparable aux sociétés par actions " +
	"ou aux sociétés à responsabilité limitée, comptabilise un chiffre d'affaires net dans l'Espace économique européen qui excède " +
	"150 millions d'euros à la date de clôture des deux derniers exercices consécutifs, ne contrôle ni n'est contrôlée par une autre " +
	"société et dispose d'une succursale en France dont le chiffre d'affaires net excède 40 millions d'euros"

func (csrd) Info() Info {
	return Info{
		ID:          "csrd",
		Title:       "Rapport de Durabilité - CSRD",
		MoreInfoURL: "https://portail-rse.beta.gouv.fr/fiches-reglementaires/rapport-de-durabilite-csrd/",
		Tag:         "tag-durabilite",
		Summary:     "Publier un rapport de durabilité.",
		Zone:        ZoneEurope,
	}
}

func (csrd) IsSufficientlyQualified(c *entreprise.Caracteristiques) bool {
	return c.Entreprise.EstCotee != nil &&
		c.Effectif.Known() &&
		c.TrancheBilan.Known() &&
		c.TrancheChiffreAffaires.Known() &&
		groupeQualifie(c, func() bool {
			cc := c.Entreprise.ComptesConsolides
			return cc != nil && (!*cc ||
				(c.EffectifGroupe.Known() &&
					c.TrancheBilanConsolide.Known() &&
					c.TrancheChiffreAffairesConsolide.Known()))
		})
}

// ── Size classes ─────────────────────────────────────────────

func estGrandeEntreprise(c *entreprise.Caracteristiques) bool {
	n := 0
	if c.TrancheBilan.In(bilan25MEtPlus...) {
		n++
	}
	if c.TrancheChiffreAffaires.In(ca50MEtPlus...) {
		n++
	}
	if c.Effectif.In(effectif250EtPlus...) {
		n++
	}
	return n >= 2
}

func estMicroEntreprise(c *entreprise.Caracteristiques) bool {
	n := 0
	if c.TrancheBilan == entreprise.BilanMoinsDe450k {
		n++
	}
	if c.TrancheChiffreAffaires == entreprise.CAMoinsDe900k {
		n++
	}
	if c.Effectif == entreprise.EffectifMoinsDe10 {
		n++
	}
	return n >= 2
}

func estPME(c *entreprise.Caracteristiques) bool {
	return !estMicroEntreprise(c) && !estGrandeEntreprise(c)
}

func estGrandGroupe(c *entreprise.Caracteristiques) bool {
	if !entreprise.IsTrue(c.Entreprise.AppartientGroupe) {
		return false
	}
	n := 0
	if c.TrancheBilanConsolide.In(bilanConsolide30MEtPlus...) {
		n++
	}
	if c.TrancheChiffreAffairesConsolide.In(caConsolide60MEtPlus...) {
		n++
	}
	if c.EffectifGroupe.In(effectifGroupe250EtPlus...) {
		n++
	}
	return n >= 2
}

// critereCategorieJuridique reports whether the legal form is in scope. An
// unknown legal form does not exclude the company.
func (csrd) critereCategorieJuridique(c *entreprise.Caracteristiques) bool {
	p := c.Entreprise.CategorieJuridiqueSirene
	if p == nil || *p == 0 {
		return true
	}
	code := *p
	return code == 3120 ||
		(code >= 5100 && code <= 6199) ||
		(code >= 6300 && code <= 6499) ||
		(code >= 8100 && code <= 8299)
}

// CSRDPremierExercice returns the calendar year from which the first fiscal
// year in scope opens, or 0 when the company is not subject.
func CSRDPremierExercice(c *entreprise.Caracteristiques) int {
	return csrd{}.premierExercice(c)
}

func (r csrd) premierExercice(c *entreprise.Caracteristiques) int {
	e := c.Entreprise
	cotee := entreprise.IsTrue(e.EstCotee)
	interetPublic := entreprise.IsTrue(e.EstInteretPublic)
	grande := estGrandeEntreprise(c)

	if !r.critereCategorieJuridique(c) && !interetPublic {
		return 0
	}
	pick := func(cond bool) int {
		if cond {
			return 2024
		}
		return 2025
	}

	if estGrandGroupe(c) {
		if entreprise.IsTrue(e.EstSocieteMere) {
			return pick((cotee || interetPublic) && c.EffectifGroupe.In(effectif500EtPlus...))
		}
		if grande {
			return pick(cotee && c.Effectif.In(effectif500EtPlus...))
		}
		if cotee && estPME(c) {
			return pick(c.EffectifGroupe.In(effectif500EtPlus...))
		}
		return 0
	}

	if !e.EstDansEEE() {
		if grande {
			return 2025
		}
		if c.TrancheChiffreAffaires == entreprise.CA100MEtPlus {
			return 2028
		}
		return 0
	}

	switch {
	case cotee:
		if grande {
			return pick(c.Effectif.In(effectif500EtPlus...))
		}
		if estPME(c) {
			return 2026
		}
	case interetPublic:
		if grande {
			return pick(c.Effectif.In(effectif500EtPlus...))
		}
	case grande:
		return 2025
	}
	return 0
}

func (r csrd) MetCriteria(c *entreprise.Caracteristiques) []string {
	e := c.Entreprise
	var criteres []string
	if !e.EstDansEEE() && !entreprise.IsTrue(e.AppartientGroupe) {
		criteres = append(criteres, "votre siège social est hors EEE")
	} else {
		if entreprise.IsTrue(e.EstCotee) {
			criteres = append(criteres, "votre société est cotée sur un marché réglementé")
		}
		if entreprise.IsTrue(e.EstInteretPublic) {
			criteres = append(criteres, "votre société est d'intérêt public")
		}
		if entreprise.IsTrue(e.EstSocieteMere) && estGrandGroupe(c) {
			criteres = append(criteres, "votre société est la société mère d'un groupe")
		}
	}
	for _, critere := range []string{r.critereEffectif(c), r.critereBilan(c), r.critereCA(c)} {
		if critere != "" {
			criteres = append(criteres, critere)
		}
	}
	return criteres
}

func (csrd) critereEffectif(c *entreprise.Caracteristiques) string {
	e := c.Entreprise
	grande := estGrandeEntreprise(c)
	grandGroupe := estGrandGroupe(c)

	if entreprise.IsTrue(e.EstCotee) || entreprise.IsTrue(e.EstInteretPublic) {
		if grande {
			switch {
			case c.Effectif.In(effectif500EtPlus...):
				return "votre effectif est supérieur à 500 salariés"
			case c.Effectif.In(entreprise.EffectifEntre250Et299, entreprise.EffectifEntre300Et499):
				return "votre effectif est supérieur à 250 salariés"
			}
		}
		if grandGroupe {
			switch {
			case c.EffectifGroupe.In(effectif500EtPlus...):
				return "l'effectif du groupe est supérieur à 500 salariés"
			case c.EffectifGroupe == entreprise.EffectifEntre250Et499:
				return "l'effectif du groupe est supérieur à 250 salariés"
			}
		}
		if estPME(c) && c.Effectif != entreprise.EffectifMoinsDe10 {
			return "votre effectif est supérieur à 10 salariés"
		}
		return ""
	}

	if grande && c.Effectif.In(effectif250EtPlus...) {
		return "votre effectif est supérieur à 250 salariés"
	}
	if entreprise.IsTrue(e.EstSocieteMere) && grandGroupe && c.EffectifGroupe.In(effectifGroupe250EtPlus...) {
		return "l'effectif du groupe est supérieur à 250 salariés"
	}
	return ""
}

func (csrd) critereBilan(c *entreprise.Caracteristiques) string {
	if estGrandGroupe(c) && c.TrancheBilanConsolide.In(bilanConsolide30MEtPlus...) {
		return "le bilan du groupe est supérieur à 30M€"
	}
	switch {
	case c.TrancheBilan.In(bilan25MEtPlus...):
		if estGrandeEntreprise(c) {
			return "votre bilan est supérieur à 25M€"
		}
		if estPME(c) {
			return "votre bilan est supérieur à 450k€"
		}
	case c.TrancheBilan == entreprise.BilanEntre450kEt25M:
		if estPME(c) {
			return "votre bilan est supérieur à 450k€"
		}
	}
	return ""
}

func (csrd) critereCA(c *entreprise.Caracteristiques) string {
	if estGrandGroupe(c) && c.TrancheChiffreAffairesConsolide.In(caConsolide60MEtPlus...) {
		return "le chiffre d'affaires du groupe est supérieur à 60M€"
	}
	switch {
	case c.TrancheChiffreAffaires.In(ca50MEtPlus...):
		if estGrandeEntreprise(c) {
			return "votre chiffre d'affaires est supérieur à 50M€"
		}
		if estPME(c) {
			return "votre chiffre d'affaires est supérieur à 900k€"
		}
	case c.TrancheChiffreAffaires == entreprise.CAEntre900kEt50M:
		if estPME(c) {
			return "votre chiffre d'affaires est supérieur à 900k€"
		}
	}
	return ""
}

// estDelegable reports whether a subsidiary may delegate the report to its parent.
func estDelegable(c *entreprise.Caracteristiques) bool {
	e := c.Entreprise
	if entreprise.IsTrue(e.EstSocieteMere) {
		return false
	}
	if estGrandeEntreprise(c) && entreprise.IsTrue(e.EstCotee) {
		return false
	}
	return estGrandGroupe(c)
}

func (r csrd) IsSubject(c *entreprise.Caracteristiques) (bool, error) {
	if err := requireQualified(r, c); err != nil {
		return false, err
	}
	return r.premierExercice(c) != 0, nil
}

// CSRDPremiereAnneePublication shifts the first in-scope exercise to the
// year its report is published, six months after the fiscal year closes.
// An unknown closing date is read as 31 December.
func CSRDPremiereAnneePublication(annee int, c *entreprise.Caracteristiques) int {
	cloture := time.Date(annee-1, time.December, 31, 0, 0, 0, 0, time.UTC)
	if d := c.DateClotureExercice; d != nil {
		cloture = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	ouverture := cloture.AddDate(0, 0, 1)
	ouverture = withYear(ouverture, annee)
	clotureExercice := addMonths(ouverture, 12).AddDate(0, 0, -1)
	return addMonths(clotureExercice, 6).Year()
}

// withYear replaces the year, moving 29 February to the 28th when needed.
func withYear(t time.Time, year int) time.Time {
	day := t.Day()
	if last := daysIn(t.Month(), year); day > last {
		day = last
	}
	return time.Date(year, t.Month(), day, 0, 0, 0, 0, time.UTC)
}

// addMonths adds n months, clamping to the last day of the target month.
func addMonths(t time.Time, n int) time.Time {
	m := int(t.Month()) - 1 + n
	year := t.Year() + m/12
	month := time.Month(m%12 + 1)
	day := t.Day()
	if last := daysIn(month, year); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (r csrd) branch(_ context.Context, c *entreprise.Caracteristiques, env Env) Status {
	if _, fail := subject(r, c, env); fail != nil {
		return *fail
	}
	action := &Action{URL: env.Links.CSRD(c.Entreprise.Siren), Title: "Accéder à l'espace Rapport de Durabilité"}

	annee := r.premierExercice(c)
	if annee == 0 {
		return Status{Code: NonSoumis, Detail: nonSoumisDetail, PrimaryAction: action}
	}

	publication := CSRDPremiereAnneePublication(annee, c)
	exercice := strconv.Itoa(annee)
	if !c.ExerciceComptableEstAnneeCivile() {
		exercice = fmt.Sprintf("%d-%d", annee, annee+1)
	}
	detail := fmt.Sprintf("Vous êtes soumis à cette réglementation à partir de %d sur les données de l'exercice comptable %s", publication, exercice)
	if annee == 2028 {
		detail += " si " + conditionsHorsEEE + "."
	} else {
		detail += " car " + joinEnumeration(r.MetCriteria(c)) + "."
		if estDelegable(c) {
			detail += " Vous pouvez déléguer cette obligation à votre société-mère."
		}
	}
	detail += " Vous devez publier le Rapport de Durabilité en même temps que le rapport de gestion."

	return Status{
		Code:              Soumis,
		Detail:            detail,
		ProchaineEcheance: strconv.Itoa(publication),
		PrimaryAction:     action,
	}
}
