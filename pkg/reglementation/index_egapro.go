package reglementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// IndexEgaPro is the professional-equality index, checked against the
// EgaPro registry through the FreshnessOracle.
var IndexEgaPro Rule = indexEgaPro{}

type indexEgaPro struct{}

const echeanceLayout = "02/01/2006"

func (indexEgaPro) Info() Info {
	return Info{
		ID:          "index-egapro",
		Title:       "Index de l’égalité professionnelle",
		MoreInfoURL: "https://portail-rse.beta.gouv.fr/fiches-reglementaires/index-egalite-professionnelle/",
		Tag:         "tag-social",
		Summary:     "Mesurer les écarts de rémunération entre les femmes et les hommes au sein de son entreprise.",
		Zone:        ZoneFrance,
	}
}

func (indexEgaPro) IsSufficientlyQualified(c *entreprise.Caracteristiques) bool {
	return c.Effectif.Known()
}

func (indexEgaPro) MetCriteria(c *entreprise.Caracteristiques) []string {
	if c.Effectif.In(effectifMoinsDe50...) {
		return nil
	}
	return []string{"votre effectif est supérieur à 50 salariés"}
}

func (r indexEgaPro) IsSubject(c *entreprise.Caracteristiques) (bool, error) {
	if err := requireQualified(r, c); err != nil {
		return false, err
	}
	return len(r.MetCriteria(c)) > 0, nil
}

// DerniereAnneeAPublier is the last year whose index must be published.
func DerniereAnneeAPublier(today time.Time) int { return today.Year() - 1 }

// ProchaineEcheanceEgaPro is the next 1st of March deadline.
func ProchaineEcheanceEgaPro(today time.Time, publie bool) time.Time {
	annee := today.Year()
	if publie {
		annee++
	}
	return time.Date(annee, time.March, 1, 0, 0, 0, 0, time.UTC)
}

func (r indexEgaPro) branch(ctx context.Context, c *entreprise.Caracteristiques, env Env) Status {
	soumis, fail := subject(r, c, env)
	if fail != nil {
		return *fail
	}
	if !soumis {
		return Status{
			Code:   NonSoumis,
			Detail: "Vous n'êtes pas soumis à cette norme.",
			PrimaryAction: &Action{
				URL:      "https://egapro.travail.gouv.fr/index-egapro/recherche",
				Title:    "Consulter les index sur la plateforme nationale",
				External: true,
			},
		}
	}

	publier := &Action{
		URL:      "https://egapro.travail.gouv.fr/",
		Title:    "Publier mon index sur la plateforme nationale",
		External: true,
	}
	justification := fmt.Sprintf("Vous êtes soumis à cette norme car %s.", joinVirgule(r.MetCriteria(c)))
	annee := DerniereAnneeAPublier(env.Today)

	publie, err := r.published(ctx, c.Entreprise.Siren, annee, env)
	if err != nil {
		env.logger().WarnContext(ctx, "egapro freshness check failed",
			"siren", c.Entreprise.Siren,
			"annee", annee,
			"error", err,
		)
		return Status{
			Code: Soumis,
			Detail: justification + " Suite à un problème technique, les informations concernant votre dernière publication " +
				"n'ont pas pu être récupérées sur la plateforme EgaPro. Vous devez calculer et publier votre index chaque année au plus tard le 1er mars.",
			PrimaryAction: publier,
		}
	}

	s := Status{
		ProchaineEcheance: ProchaineEcheanceEgaPro(env.Today, publie).Format(echeanceLayout),
		PrimaryAction:     publier,
	}
	if publie {
		s.Code = AJour
		s.Detail = justification + fmt.Sprintf(" Vous avez publié votre index %d d'après les données disponibles sur la plateforme Egapro.", annee)
	} else {
		s.Code = AActualiser
		s.Detail = justification + fmt.Sprintf(" Vous n'avez pas encore publié votre index %d sur la plateforme Egapro. "+
			"Vous devez calculer et publier votre index chaque année au plus tard le 1er mars.", annee)
	}
	return s
}

// published asks the oracle. A missing oracle counts as unavailable.
func (indexEgaPro) published(ctx context.Context, siren string, annee int, env Env) (bool, error) {
	if env.Oracle == nil {
		return false, fmt.Errorf("%w: no oracle configured", ErrOracleUnavailable)
	}
	ok, err := env.Oracle.HasPublishedDeclaration(ctx, siren, annee)
	if err != nil && !errors.Is(err, ErrOracleUnavailable) {
		err = fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	return ok, err
}
