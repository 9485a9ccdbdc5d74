package entreprise

// SIRENE foreign-country codes of the European Economic Area. France has no
// code: a company headquartered in France carries a nil country code.
var paysEEE = map[int]string{
	99109: "Allemagne",
	99110: "Autriche",
	99131: "Belgique",
	99111: "Bulgarie",
	99254: "Chypre",
	99119: "Croatie",
	99101: "Danemark",
	99134: "Espagne",
	99106: "Estonie",
	99105: "Finlande",
	99126: "Grèce",
	99112: "Hongrie",
	99136: "Irlande",
	99102: "Islande",
	99127: "Italie",
	99107: "Lettonie",
	99113: "Liechtenstein",
	99108: "Lituanie",
	99137: "Luxembourg",
	99144: "Malte",
	99103: "Norvège",
	99135: "Pays-Bas",
	99122: "Pologne",
	99139: "Portugal",
	99116: "République tchèque",
	99114: "Roumanie",
	99117: "Slovaquie",
	99145: "Slovénie",
	99104: "Suède",
}

// EstDansEEE reports whether a SIRENE country code lies in the EEE.
func EstDansEEE(code *int) bool {
	if code == nil {
		return true
	}
	_, ok := paysEEE[*code]
	return ok
}

// NomPays returns the country name for a SIRENE code, "France" for nil and
// "" for countries outside the EEE.
func NomPays(code *int) string {
	if code == nil {
		return "France"
	}
	return paysEEE[*code]
}
