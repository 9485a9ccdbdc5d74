package reglementation

import (
	"context"
	"fmt"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// BGES is the greenhouse-gas inventory and transition plan (BEGES).
var BGES Rule = bges{}

type bges struct{}

var (
	bgesConsulterAction = Action{
		URL:      "https://bilans-ges.ademe.fr/bilans",
		Title:    "Consulter les bilans GES sur la plateforme nationale",
		External: true,
	}
	bgesPublierAction = Action{
		URL:      "https://bilans-ges.ademe.fr/bilans/comment-publier",
		Title:    "Publier mon bilan GES sur la plateforme nationale",
		External: true,
	}
)

func (bges) Info() Info {
	return Info{
		ID:          "bges",
		Title:       "BEGES et Plan de Transition",
		MoreInfoURL: "https://portail-rse.beta.gouv.fr/fiches-reglementaires/bilan-eges-et-plan-de-transition/",
		Tag:         "tag-environnement",
		Summary:     "Mesurer ses émissions de gaz à effet de serre directes et adopter un plan de transition en conséquence.",
		Zone:        ZoneFrance,
	}
}

func (bges) IsSufficientlyQualified(c *entreprise.Caracteristiques) bool {
	return c.Effectif.Known() && c.EffectifOutreMer.Known()
}

func (bges) MetCriteria(c *entreprise.Caracteristiques) []string {
	var criteres []string
	if c.Effectif.In(effectif500EtPlus...) {
		criteres = append(criteres, "votre effectif est supérieur à 500 salariés")
	}
	if c.EffectifOutreMer == entreprise.EffectifOutreMer250EtPlus {
		criteres = append(criteres, "votre effectif outre-mer est supérieur à 250 salariés")
	}
	return criteres
}

func (r bges) IsSubject(c *entreprise.Caracteristiques) (bool, error) {
	if err := requireQualified(r, c); err != nil {
		return false, err
	}
	return len(r.MetCriteria(c)) > 0, nil
}

func (r bges) branch(_ context.Context, c *entreprise.Caracteristiques, env Env) Status {
	soumis, fail := subject(r, c, env)
	if fail != nil {
		return *fail
	}

	switch env.Actor.Kind {
	case ActorAnonymous:
		return anonymousStatus(soumis, c.Entreprise.Siren, env.Links)
	case ActorUnattached:
		return unattachedStatus(soumis)
	}

	if soumis {
		publier := bgesPublierAction
		return Status{
			Code:          Soumis,
			Detail:        soumisDetail(joinVirgule(r.MetCriteria(c))),
			PrimaryAction: &publier,
		}
	}
	consulter := bgesConsulterAction
	return Status{Code: NonSoumis, Detail: nonSoumisDetail, PrimaryAction: &consulter}
}

// anonymousStatus invites a visitor to log in without disclosing criteria.
func anonymousStatus(soumis bool, siren string, links Links) Status {
	if !soumis {
		return Status{Code: NonSoumis, Detail: nonSoumisDetail}
	}
	login := links.Login(siren)
	return Status{
		Code:          Soumis,
		Detail:        fmt.Sprintf(`<a href="%s">Vous êtes soumis à cette réglementation. Connectez-vous pour en savoir plus.</a>`, login),
		PrimaryAction: &Action{URL: login, Title: "Se connecter"},
	}
}

// unattachedStatus speaks about the company in the third person.
func unattachedStatus(soumis bool) Status {
	if soumis {
		return Status{Code: Soumis, Detail: "L'entreprise est soumise à cette réglementation."}
	}
	return Status{Code: NonSoumis, Detail: "L'entreprise n'est pas soumise à cette réglementation."}
}
