package reglementation

import (
	"context"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
)

// AuditEnergetique is the energy audit of large companies.
var AuditEnergetique Rule = auditEnergetique{}

type auditEnergetique struct{}

func (auditEnergetique) Info() Info {
	return Info{
		ID:    "audit-energetique",
		Title: "Audit énergétique",
		Description: "Le code de l'énergie prévoit la réalisation d’un audit énergétique pour les grandes entreprises de plus de 250 salariés, " +
			"afin qu’elles mettent en place une stratégie d’efficacité énergétique de leurs activités. " +
			"L’audit énergétique permet de repérer les gisements d’économies d’énergie chez les plus gros consommateurs professionnels (tertiaires et industriels). " +
			"L’audit doit dater de moins de 4 ans.",
		Tag:  "tag-environnement",
		Zone: ZoneFrance,
	}
}

func (auditEnergetique) IsSufficientlyQualified(c *entreprise.Caracteristiques) bool {
	return c.Effectif.Known() &&
		c.TrancheChiffreAffaires.Known() &&
		c.TrancheBilan.Known() &&
		c.SystemeManagementEnergie != nil &&
		groupeQualifie(c, func() bool {
			cc := c.Entreprise.ComptesConsolides
			return cc != nil && (!*cc || c.TrancheBilanConsolide.Known())
		})
}

func (auditEnergetique) MetCriteria(c *entreprise.Caracteristiques) []string {
	var criteres []string
	if c.Effectif.In(effectif250EtPlus...) {
		criteres = append(criteres, "votre effectif est supérieur à 250 salariés")
	}
	if c.TrancheChiffreAffaires.In(ca50MEtPlus...) {
		if c.TrancheBilan.In(bilan43MEtPlus...) {
			criteres = append(criteres, "votre bilan est supérieur à 43M€ et votre chiffre d'affaires est supérieur à 50M€")
		} else if c.TrancheBilanConsolide.In(bilan43MEtPlus...) {
			criteres = append(criteres, "votre bilan consolidé est supérieur à 43M€ et votre chiffre d'affaires est supérieur à 50M€")
		}
	}
	return criteres
}

func (r auditEnergetique) IsSubject(c *entreprise.Caracteristiques) (bool, error) {
	if err := requireQualified(r, c); err != nil {
		return false, err
	}
	return !entreprise.IsTrue(c.SystemeManagementEnergie) && len(r.MetCriteria(c)) > 0, nil
}

func (r auditEnergetique) branch(_ context.Context, c *entreprise.Caracteristiques, env Env) Status {
	soumis, fail := subject(r, c, env)
	if fail != nil {
		return *fail
	}
	if soumis {
		return Status{
			Code: Soumis,
			Detail: soumisDetail(joinVirgule(r.MetCriteria(c))) +
				" Vous devez réaliser un audit énergétique si vous remplissez l'une des conditions suivantes lors des deux derniers exercices comptables : " +
				"soit votre effectif est supérieur à 250 salariés, soit votre bilan (ou bilan consolidé) est supérieur à 43M€ et votre chiffre d'affaires est supérieur à 50M€.",
			PrimaryAction: &Action{URL: "https://audit-energie.ademe.fr/", Title: "Publier mon audit", External: true},
		}
	}
	detail := "Vous n'êtes pas soumis à cette réglementation"
	if entreprise.IsTrue(c.SystemeManagementEnergie) {
		detail += " si le système de management de l'énergie est certifié par un organisme de certification accrédité " +
			"par un organisme d'accréditation signataire de l'accord de reconnaissance multilatéral établi par la coordination " +
			"européenne des organismes d'accréditation et que ce système prévoit un audit énergétique satisfaisant aux critères " +
			"mentionnés à l'article L. 233-1."
	} else {
		detail += "."
	}
	return Status{Code: NonSoumis, Detail: detail}
}
