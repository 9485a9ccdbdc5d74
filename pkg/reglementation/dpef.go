package reglementation

import (
	"context"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// DPEF is the extra-financial performance statement.
//
// DPEF is not registered in the aggregator: its user-facing status is
// pending product confirmation. The branch reports Soumis or NonSoumis from
// the criteria alone, without actions.
var DPEF Rule = dpef{}

type dpef struct{}

const (
	critereEffectifPermanent       = "votre effectif permanent est supérieur à 500 salariés"
	critereEffectifGroupePermanent = "l'effectif permanent du groupe est supérieur à 500 salariés"
)

// The bands start at 25M€ and 50M€; the 20M€ and 40M€ listed thresholds
// are read on the first band above them.
var (
	dpefBilanCotee = bilan25MEtPlus
	dpefCACotee    = ca50MEtPlus
)

func (dpef) Info() Info {
	return Info{
		ID:    "dpef",
		Title: "Déclaration de Performance Extra-Financière",
		Description: `La Déclaration de Performance Extra-Financière (dite "DPEF") est un document par l'intermédiaire duquel ` +
			`une entreprise détaille les implications sociales, environnementales et sociétales de sa performance et de ses activités, ` +
			`ainsi que son mode de gouvernance.`,
		MoreInfoURL: "https://portail-rse.beta.gouv.fr/fiches-reglementaires/declaration-de-performance-extra-financiere/",
		Tag:         "tag-durabilite",
		Summary:     "Établir une déclaration de performance extra-financière contenant des informations sociales, environnementales et sociétales.",
		Zone:        ZoneFrance,
	}
}

func (dpef) IsSufficientlyQualified(c *entreprise.Caracteristiques) bool {
	return c.Entreprise.EstCotee != nil &&
		c.EffectifPermanent.Known() &&
		c.TrancheBilan.Known() &&
		c.TrancheChiffreAffaires.Known() &&
		groupeQualifie(c, func() bool {
			cc := c.Entreprise.ComptesConsolides
			return cc != nil && (!*cc ||
				(c.EffectifGroupePermanent.Known() &&
					c.TrancheBilanConsolide.Known() &&
					c.TrancheChiffreAffairesConsolide.Known()))
		})
}

func (dpef) critereEffectif(c *entreprise.Caracteristiques) string {
	if c.EffectifPermanent.In(effectif500EtPlus...) {
		return critereEffectifPermanent
	}
	if entreprise.IsTrue(c.Entreprise.ComptesConsolides) && c.EffectifGroupePermanent.In(effectif500EtPlus...) {
		return critereEffectifGroupePermanent
	}
	return ""
}

// ── General path ─────────────────────────────────────────────

func (dpef) critereCategorieJuridiqueGeneral(c *entreprise.Caracteristiques) string {
	switch cat := c.Entreprise.CategorieJuridique(); cat {
	case entreprise.CategorieSA, entreprise.CategorieSCA, entreprise.CategorieSE:
		return "votre entreprise est une " + cat.Label()
	}
	return ""
}

func (dpef) critereBilanGeneral(c *entreprise.Caracteristiques) string {
	switch {
	case entreprise.IsTrue(c.Entreprise.EstCotee):
		if c.TrancheBilan.In(dpefBilanCotee...) {
			return "votre bilan est supérieur à 20M€"
		} else if c.TrancheBilanConsolide.In(dpefBilanCotee...) {
			return "votre bilan consolidé est supérieur à 20M€"
		}
	case c.TrancheBilan == entreprise.Bilan100MEtPlus:
		return "votre bilan est supérieur à 100M€"
	case c.TrancheBilanConsolide == entreprise.Bilan100MEtPlus:
		return "votre bilan consolidé est supérieur à 100M€"
	}
	return ""
}

func (dpef) critereCAGeneral(c *entreprise.Caracteristiques) string {
	if entreprise.IsTrue(c.Entreprise.EstCotee) {
		if c.TrancheChiffreAffaires.In(dpefCACotee...) {
			return "votre chiffre d'affaires est supérieur à 40M€"
		} else if c.TrancheChiffreAffairesConsolide.In(dpefCACotee...) {
			return "votre chiffre d'affaires consolidé est supérieur à 40M€"
		}
	}
	if c.TrancheChiffreAffaires == entreprise.CA100MEtPlus {
		return "votre chiffre d'affaires est supérieur à 100M€"
	} else if c.TrancheChiffreAffairesConsolide == entreprise.CA100MEtPlus {
		return "votre chiffre d'affaires consolidé est supérieur à 100M€"
	}
	return ""
}

func (r dpef) criteresGeneral(c *entreprise.Caracteristiques) []string {
	var criteres []string
	add := func(critere string) {
		if critere != "" {
			criteres = append(criteres, critere)
		}
	}
	add(r.critereCategorieJuridiqueGeneral(c))
	if entreprise.IsTrue(c.Entreprise.EstCotee) {
		add("votre société est cotée sur un marché réglementé")
	}
	add(r.critereEffectif(c))
	add(r.critereBilanGeneral(c))
	add(r.critereCAGeneral(c))
	return criteres
}

func (r dpef) estSoumisGeneral(c *entreprise.Caracteristiques) bool {
	return r.critereCategorieJuridiqueGeneral(c) != "" &&
		r.critereEffectif(c) != "" &&
		(r.critereBilanGeneral(c) != "" || r.critereCAGeneral(c) != "")
}

// ── Prévoyance and mutuelle paths ────────────────────────────

func (dpef) critereBilan100M(c *entreprise.Caracteristiques) string {
	if c.TrancheBilan == entreprise.Bilan100MEtPlus {
		return "votre bilan est supérieur à 100M€"
	} else if c.TrancheBilanConsolide == entreprise.Bilan100MEtPlus {
		return "votre bilan consolidé est supérieur à 100M€"
	}
	return ""
}

func (dpef) critereCA100M(c *entreprise.Caracteristiques) string {
	if c.TrancheChiffreAffaires == entreprise.CA100MEtPlus {
		return "votre chiffre d'affaires est supérieur à 100M€"
	} else if c.TrancheChiffreAffairesConsolide == entreprise.CA100MEtPlus {
		return "votre chiffre d'affaires consolidé est supérieur à 100M€"
	}
	return ""
}

func (r dpef) estSoumisCategorie(c *entreprise.Caracteristiques, cat entreprise.CategorieJuridique) bool {
	return c.Entreprise.CategorieJuridique() == cat &&
		r.critereEffectif(c) != "" &&
		(r.critereBilan100M(c) != "" || r.critereCA100M(c) != "")
}

// criteresPrevoyance reports the general bilan and turnover phrases while
// submission uses the 100M€ thresholds.
func (r dpef) criteresPrevoyance(c *entreprise.Caracteristiques) []string {
	criteres := []string{"votre entreprise est une " + entreprise.CategorieInstitutionPrevoyance.Label()}
	for _, critere := range []string{r.critereEffectif(c), r.critereBilanGeneral(c), r.critereCAGeneral(c)} {
		if critere != "" {
			criteres = append(criteres, critere)
		}
	}
	return criteres
}

func (r dpef) criteresMutuelle(c *entreprise.Caracteristiques) []string {
	criteres := []string{"votre entreprise est une " + entreprise.CategorieMutuelle.Label()}
	for _, critere := range []string{r.critereEffectif(c), r.critereBilan100M(c), r.critereCA100M(c)} {
		if critere != "" {
			criteres = append(criteres, critere)
		}
	}
	return criteres
}

func (r dpef) MetCriteria(c *entreprise.Caracteristiques) []string {
	switch {
	case r.estSoumisCategorie(c, entreprise.CategorieInstitutionPrevoyance):
		return r.criteresPrevoyance(c)
	case r.estSoumisCategorie(c, entreprise.CategorieMutuelle):
		return r.criteresMutuelle(c)
	}
	return r.criteresGeneral(c)
}

func (r dpef) IsSubject(c *entreprise.Caracteristiques) (bool, error) {
	if err := requireQualified(r, c); err != nil {
		return false, err
	}
	return r.estSoumisCategorie(c, entreprise.CategorieInstitutionPrevoyance) ||
		r.estSoumisCategorie(c, entreprise.CategorieMutuelle) ||
		r.estSoumisGeneral(c), nil
}

func (r dpef) branch(_ context.Context, c *entreprise.Caracteristiques, env Env) Status {
	soumis, fail := subject(r, c, env)
	if fail != nil {
		return *fail
	}
	if soumis {
		return Status{Code: Soumis, Detail: soumisDetail(joinEnumeration(r.MetCriteria(c)))}
	}
	return Status{Code: NonSoumis, Detail: nonSoumisDetail}
}
