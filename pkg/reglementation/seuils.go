package reglementation

import "github.com/betagouv/portail-rse-sub001/pkg/entreprise"

// Band sets shared by several rules.
var (
	effectifMoinsDe50 = []entreprise.Effectif{
		entreprise.EffectifMoinsDe10,
		entreprise.EffectifEntre10Et49,
	}
	effectif250EtPlus = []entreprise.Effectif{
		entreprise.EffectifEntre250Et299,
		entreprise.EffectifEntre300Et499,
		entreprise.EffectifEntre500Et4999,
		entreprise.EffectifEntre5000Et9999,
		entreprise.Effectif10000EtPlus,
	}
	// valid for company and group headcounts alike
	effectif500EtPlus = []entreprise.Effectif{
		entreprise.EffectifEntre500Et4999,
		entreprise.EffectifEntre5000Et9999,
		entreprise.Effectif10000EtPlus,
	}
	effectif5000EtPlus = []entreprise.Effectif{
		entreprise.EffectifEntre5000Et9999,
		entreprise.Effectif10000EtPlus,
	}
	effectifGroupe250EtPlus = []entreprise.Effectif{
		entreprise.EffectifEntre250Et499,
		entreprise.EffectifEntre500Et4999,
		entreprise.EffectifEntre5000Et9999,
		entreprise.Effectif10000EtPlus,
	}

	ca50MEtPlus = []entreprise.TrancheChiffreAffaires{
		entreprise.CAEntre50MEt100M,
		entreprise.CA100MEtPlus,
	}
	caConsolide60MEtPlus = []entreprise.TrancheChiffreAffaires{
		entreprise.CAEntre60MEt100M,
		entreprise.CA100MEtPlus,
	}

	bilan25MEtPlus = []entreprise.TrancheBilan{
		entreprise.BilanEntre25MEt43M,
		entreprise.BilanEntre43MEt100M,
		entreprise.Bilan100MEtPlus,
	}
	bilan43MEtPlus = []entreprise.TrancheBilan{
		entreprise.BilanEntre43MEt100M,
		entreprise.Bilan100MEtPlus,
	}
	bilanConsolide30MEtPlus = []entreprise.TrancheBilan{
		entreprise.BilanEntre30MEt43M,
		entreprise.BilanEntre43MEt100M,
		entreprise.Bilan100MEtPlus,
	}
)

// groupeQualifie reports whether grouped companies carry the given group fields.
func groupeQualifie(c *entreprise.Caracteristiques, siGroupe func() bool) bool {
	g := c.Entreprise.AppartientGroupe
	if g == nil {
		return false
	}
	return !*g || siGroupe()
}
