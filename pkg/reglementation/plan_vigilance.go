package reglementation

import (
	"context"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// PlanVigilance is the duty-of-vigilance plan of large stock companies.
var PlanVigilance Rule = planVigilance{}

type planVigilance struct{}

func (planVigilance) Info() Info {
	return Info{
		ID:          "plan-vigilance",
		Title:       "Plan de vigilance",
		MoreInfoURL: "https://portail-rse.beta.gouv.fr/fiches-reglementaires/plan-de-vigilance/",
		Tag:         "tag-gouvernance",
		Summary:     "Établir un plan de vigilance pour prévenir des risques d’atteintes aux droits humains et à l’environnement liés à l'activité des sociétés mères et entreprises donneuses d'ordre.",
		Zone:        ZoneFrance,
	}
}

func (planVigilance) IsSufficientlyQualified(c *entreprise.Caracteristiques) bool {
	return c.Effectif.Known() &&
		groupeQualifie(c, func() bool {
			e := c.Entreprise
			return e.EstSocieteMere != nil &&
				e.SocieteMereEnFrance != nil &&
				c.EffectifGroupe.Known() &&
				c.EffectifGroupeFrance.Known()
		})
}

func (planVigilance) critereCategorieJuridique(c *entreprise.Caracteristiques) string {
	code := c.Entreprise.CategorieJuridiqueSirene
	if entreprise.EstUneSACooperative(code) {
		return "votre entreprise est une " + entreprise.CategorieSA.Label()
	}
	switch cat, _ := entreprise.ConvertitCategorieJuridique(code); cat {
	case entreprise.CategorieSA, entreprise.CategorieSAS, entreprise.CategorieSCA, entreprise.CategorieSE:
		return "votre entreprise est une " + cat.Label()
	}
	return ""
}

// critereEffectif only looks at the group when the company is a parent
// headquartered in France.
func (planVigilance) critereEffectif(c *entreprise.Caracteristiques) string {
	e := c.Entreprise
	mereFrancaise := entreprise.IsTrue(e.EstSocieteMere) && entreprise.IsTrue(e.SocieteMereEnFrance)
	switch {
	case c.Effectif.In(effectif5000EtPlus...):
		return "votre effectif est supérieur à 5 000 salariés"
	case mereFrancaise && c.EffectifGroupeFrance.In(effectif5000EtPlus...):
		return "l'effectif du groupe France est supérieur à 5 000 salariés"
	case mereFrancaise && c.EffectifGroupe == entreprise.Effectif10000EtPlus:
		return "l'effectif du groupe international est supérieur à 10 000 salariés"
	}
	return ""
}

func (r planVigilance) MetCriteria(c *entreprise.Caracteristiques) []string {
	var criteres []string
	if critere := r.critereCategorieJuridique(c); critere != "" {
		criteres = append(criteres, critere)
	}
	if critere := r.critereEffectif(c); critere != "" {
		criteres = append(criteres, critere)
	}
	return criteres
}

func (r planVigilance) IsSubject(c *entreprise.Caracteristiques) (bool, error) {
	if err := requireQualified(r, c); err != nil {
		return false, err
	}
	return len(r.MetCriteria(c)) >= 2, nil
}

func (r planVigilance) branch(_ context.Context, c *entreprise.Caracteristiques, env Env) Status {
	soumis, fail := subject(r, c, env)
	if fail != nil {
		return *fail
	}
	if !soumis {
		return Status{Code: NonSoumis, Detail: nonSoumisDetail}
	}
	return Status{
		Code: Soumis,
		Detail: soumisDetail(joinEt(r.MetCriteria(c))) +
			" Vous devez établir un plan de vigilance si vous employez, à la clôture de deux exercices consécutifs, au moins 5 000 salariés, " +
			"en votre sein ou dans vos filiales directes ou indirectes françaises, ou 10 000 salariés, en incluant vos filiales directes ou indirectes étrangères.",
	}
}
