package reglementation

import (
	"context"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// DispositifAnticorruption is the Sapin 2 anti-corruption programme.
var DispositifAnticorruption Rule = dispositifAnticorruption{}

type dispositifAnticorruption struct{}

func (dispositifAnticorruption) Info() Info {
	return Info{
		ID:    "dispositif-anticorruption",
		Title: "Dispositif anti-corruption",
		Description: `La loi du 9 décembre 2016 (dite "loi Sapin 2") impose aux entreprises d'au moins 500 salariés la mise en place ` +
			`de mesures préventives anticorruption : cartographie des risques, procédures d’évaluation de la situation des clients, ` +
			`fournisseurs, information et sanctions des salariés.`,
		Tag:  "tag-gouvernance",
		Zone: ZoneFrance,
	}
}

func (dispositifAnticorruption) IsSufficientlyQualified(c *entreprise.Caracteristiques) bool {
	return c.Effectif.Known() &&
		c.TrancheChiffreAffaires.Known() &&
		groupeQualifie(c, func() bool {
			e := c.Entreprise
			return c.EffectifGroupe.Known() &&
				e.SocieteMereEnFrance != nil &&
				e.ComptesConsolides != nil &&
				(!*e.ComptesConsolides || c.TrancheChiffreAffairesConsolide.Known())
		})
}

// MetCriteria checks headcount then turnover. Each falls back on the group
// value only when the company value misses. A group headed abroad never
// counts.
func (dispositifAnticorruption) MetCriteria(c *entreprise.Caracteristiques) []string {
	var criteres []string
	if c.Effectif.In(effectif500EtPlus...) {
		criteres = append(criteres, "votre effectif est supérieur à 500 salariés")
	} else if entreprise.IsTrue(c.Entreprise.SocieteMereEnFrance) && c.EffectifGroupe.In(effectif500EtPlus...) {
		criteres = append(criteres, "l'effectif du groupe est supérieur à 500 salariés")
	}

	if c.TrancheChiffreAffaires == entreprise.CA100MEtPlus {
		criteres = append(criteres, "votre chiffre d'affaires est supérieur à 100 millions d'euros")
	} else if c.TrancheChiffreAffairesConsolide == entreprise.CA100MEtPlus {
		criteres = append(criteres, "votre chiffre d'affaires consolidé est supérieur à 100 millions d'euros")
	}
	return criteres
}

func (r dispositifAnticorruption) IsSubject(c *entreprise.Caracteristiques) (bool, error) {
	if err := requireQualified(r, c); err != nil {
		return false, err
	}
	return len(r.MetCriteria(c)) == 2, nil
}

func (r dispositifAnticorruption) branch(_ context.Context, c *entreprise.Caracteristiques, env Env) Status {
	soumis, fail := subject(r, c, env)
	if fail != nil {
		return *fail
	}
	if soumis {
		return Status{Code: Soumis, Detail: soumisDetail(joinEt(r.MetCriteria(c)))}
	}
	return Status{Code: NonSoumis, Detail: nonSoumisDetail}
}
