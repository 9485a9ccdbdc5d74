package reglementation

import (
	"context"
	"fmt"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// BDESE is the economic, social and environmental database shared with the
// works council. Its progress comes from the BDESEProgress capability.
var BDESE Rule = bdese{}

type bdese struct{}

const bdeseCritere = "votre effectif est supérieur à 50 salariés"

func (bdese) Info() Info {
	return Info{
		ID:          "bdese",
		Title:       "Base de données économiques, sociales et environnementales (BDESE)",
		MoreInfoURL: "https://portail-rse.beta.gouv.fr/fiches-reglementaires/base-de-donnees-economiques-sociales-et-environnementales/",
		Tag:         "tag-social",
		Summary:     "Constituer une base de données économiques, sociales et environnementale sà transmettre à son CSE.",
		Zone:        ZoneFrance,
	}
}

func (bdese) IsSufficientlyQualified(c *entreprise.Caracteristiques) bool {
	return c.Effectif.Known()
}

func (bdese) MetCriteria(c *entreprise.Caracteristiques) []string {
	if c.Effectif.In(effectifMoinsDe50...) {
		return nil
	}
	return []string{bdeseCritere}
}

func (r bdese) IsSubject(c *entreprise.Caracteristiques) (bool, error) {
	if err := requireQualified(r, c); err != nil {
		return false, err
	}
	return len(r.MetCriteria(c)) > 0, nil
}

// TypeBDESE returns the BDESE a subject company keeps. An agreement
// overrides the headcount-based content.
func TypeBDESE(c *entreprise.Caracteristiques) BDESEType {
	switch {
	case entreprise.IsTrue(c.BDESEAccord):
		return BDESEAvecAccord
	case c.Effectif.In(entreprise.EffectifEntre50Et249, entreprise.EffectifEntre250Et299):
		return BDESEInferieur300
	case c.Effectif == entreprise.EffectifEntre300Et499:
		return BDESEInferieur500
	}
	return BDESESuperieur500
}

func (r bdese) branch(ctx context.Context, c *entreprise.Caracteristiques, env Env) Status {
	soumis, fail := subject(r, c, env)
	if fail != nil {
		return *fail
	}
	siren := c.Entreprise.Siren
	annee := env.Today.Year() - 1

	if !soumis {
		return Status{
			Code:          NonSoumis,
			Detail:        nonSoumisDetail,
			PrimaryAction: &Action{URL: env.Links.BDESEStep(siren, annee, 1), Title: "Tester une BDESE"},
		}
	}

	typ := TypeBDESE(c)
	state := r.lookup(ctx, siren, annee, typ, env)

	if typ == BDESEAvecAccord {
		s := Status{
			Code:   AActualiser,
			Detail: soumisDetail(joinVirgule(r.MetCriteria(c))) + " Vous avez un accord d'entreprise spécifique. Veuillez vous y référer.",
		}
		title := fmt.Sprintf("Marquer ma BDESE %d comme actualisée", annee)
		if state != nil && state.Complete {
			s.Code = AJour
			title = fmt.Sprintf("Marquer ma BDESE %d comme non actualisée", annee)
		}
		s.PrimaryAction = &Action{URL: env.Links.BDESEToggle(siren, annee), Title: title}
		return s
	}

	if state == nil {
		return Status{
			Code:          AActualiser,
			Detail:        soumisDetail(bdeseCritere) + " Nous allons vous aider à la remplir.",
			PrimaryAction: &Action{URL: env.Links.BDESEStep(siren, annee, 0), Title: "Actualiser ma BDESE"},
		}
	}
	if state.Complete {
		return Status{
			Code:          AJour,
			Detail:        soumisDetail(bdeseCritere) + fmt.Sprintf(" Vous avez actualisé votre BDESE %d sur la plateforme.", annee),
			PrimaryAction: &Action{URL: env.Links.BDESEPDF(siren, annee), Title: fmt.Sprintf("Télécharger le pdf %d", annee), External: true},
			SecondaryActions: []Action{
				{URL: env.Links.BDESEStep(siren, annee, 1), Title: "Modifier ma BDESE"},
			},
		}
	}
	return Status{
		Code:          EnCours,
		Detail:        soumisDetail(bdeseCritere) + fmt.Sprintf(" Vous avez démarré le remplissage de votre BDESE %d sur la plateforme.", annee),
		PrimaryAction: &Action{URL: env.Links.BDESEStep(siren, annee, 1), Title: "Reprendre l'actualisation de ma BDESE"},
		SecondaryActions: []Action{
			{URL: env.Links.BDESEPDF(siren, annee), Title: fmt.Sprintf("Télécharger le pdf %d (brouillon)", annee), External: true},
		},
	}
}

// lookup treats a missing capability or a failing one as "no BDESE yet".
func (bdese) lookup(ctx context.Context, siren string, annee int, typ BDESEType, env Env) *BDESEState {
	if env.BDESE == nil {
		return nil
	}
	state, err := env.BDESE.Lookup(ctx, siren, annee, typ, env.Actor)
	if err != nil {
		env.logger().WarnContext(ctx, "bdese lookup failed", "siren", siren, "annee", annee, "error", err)
		return nil
	}
	return state
}
