package reglementation

import (
	"context"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// VSME is the voluntary European sustainability standard for SMEs. It is
// always recommended, never mandatory.
var VSME Rule = vsme{}

type vsme struct{}

func (vsme) Info() Info {
	return Info{
		ID:          "vsme",
		Title:       "Standard volontaire européen - VSME",
		MoreInfoURL: "https://portail-rse.beta.gouv.fr/fiches-reglementaires/norme-volontaire-de-durabilite-vsme/",
		Tag:         "tag-durabilite",
		Zone:        ZoneEurope,
	}
}

func (vsme) IsSufficientlyQualified(*entreprise.Caracteristiques) bool { return true }

func (vsme) MetCriteria(*entreprise.Caracteristiques) []string { return nil }

func (vsme) IsSubject(*entreprise.Caracteristiques) (bool, error) { return false, nil }

func (vsme) branch(_ context.Context, c *entreprise.Caracteristiques, env Env) Status {
	siren := c.Entreprise.Siren
	annee := env.Today.Year() - 1
	return Status{
		Code:          Recommande,
		Detail:        "Cette norme est volontaire et recommandée pour les entreprises qui souhaitent mieux structurer leurs informations de durabilité.",
		PrimaryAction: &Action{URL: env.Links.VSMEIndicateurs(siren, annee), Title: "Remplir mes indicateurs VSME"},
		SecondaryActions: []Action{
			{URL: env.Links.VSMEIntroduction(siren), Title: "Découvrir la démarche VSME"},
		},
	}
}
