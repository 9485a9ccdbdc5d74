package reglementation

import (
	"context"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// DispositifAlerte is the internal whistleblowing channel.
var DispositifAlerte Rule = dispositifAlerte{}

type dispositifAlerte struct{}

func (dispositifAlerte) Info() Info {
	return Info{
		ID:          "dispositif-alerte",
		Title:       "Dispositif d’alerte",
		MoreInfoURL: "https://portail-rse.beta.gouv.fr/fiches-reglementaires/dispositif-dalerte/",
		Tag:         "tag-gouvernance",
		Summary:     "Avoir une procédure interne de recueil et de traitement de ces signalements.",
		Zone:        ZoneFrance,
	}
}

func (dispositifAlerte) IsSufficientlyQualified(c *entreprise.Caracteristiques) bool {
	return c.Effectif.Known()
}

func (dispositifAlerte) MetCriteria(c *entreprise.Caracteristiques) []string {
	if c.Effectif.In(effectifMoinsDe50...) {
		return nil
	}
	return []string{"votre effectif est supérieur à 50 salariés"}
}

func (r dispositifAlerte) IsSubject(c *entreprise.Caracteristiques) (bool, error) {
	if err := requireQualified(r, c); err != nil {
		return false, err
	}
	return len(r.MetCriteria(c)) > 0, nil
}

func (r dispositifAlerte) branch(_ context.Context, c *entreprise.Caracteristiques, env Env) Status {
	soumis, fail := subject(r, c, env)
	if fail != nil {
		return *fail
	}
	if soumis {
		return Status{Code: Soumis, Detail: soumisDetail(joinVirgule(r.MetCriteria(c)))}
	}
	return Status{Code: NonSoumis, Detail: nonSoumisDetail}
}
