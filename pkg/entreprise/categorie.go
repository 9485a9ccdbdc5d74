package entreprise

// CategorieJuridique is the legal form derived from a SIRENE legal-category code.
type CategorieJuridique int

const (
	CategorieAutre CategorieJuridique = iota
	CategorieSA
	CategorieSCA
	CategorieSAS
	CategorieSE
	CategorieCoopProduction
	CategorieCoopAgricole
	CategorieAssuranceMutuelle
	CategorieMutuelle
	CategorieInstitutionPrevoyance
)

var categorieLabels = map[CategorieJuridique]string{
	CategorieAutre:                 "",
	CategorieSA:                    "Société Anonyme",
	CategorieSCA:                   "Société en Commandite par Actions",
	CategorieSAS:                   "Société par Actions Simplifiées",
	CategorieSE:                    "Société Européenne",
	CategorieCoopProduction:        "Société Coopérative de Production",
	CategorieCoopAgricole:          "Société Coopérative Agricole",
	CategorieAssuranceMutuelle:     "Société d'assurance à forme mutuelle",
	CategorieMutuelle:              "Mutuelle",
	CategorieInstitutionPrevoyance: "Institution de Prévoyance",
}

// Label returns the French name used in criteria phrases. Autre has none.
func (c CategorieJuridique) Label() string {
	return categorieLabels[c]
}

const (
	CodeMutuelle                = 8210
	CodeInstitutionPrevoyance   = 8510
	CodeAssuranceMutuelle       = 6411
	CodeSocieteEuropeenne       = 5800
	codeCoopAgricoleCooperative = 6317
	codeCoopAgricoleUnion       = 6318
)

func between(code, lo, hi int) bool { return code >= lo && code <= hi }

func oneOf(code int, set ...int) bool {
	for _, s := range set {
		if code == s {
			return true
		}
	}
	return false
}

// ConvertitCategorieJuridique maps a SIRENE legal-category code to a
// CategorieJuridique. It reports false when the code is unknown: nil or 0.
func ConvertitCategorieJuridique(code *int) (CategorieJuridique, bool) {
	if code == nil || *code == 0 {
		return CategorieAutre, false
	}
	c := *code
	switch {
	case between(c, 5308, 5385):
		return CategorieSCA, true
	case between(c, 5443, 5460), between(c, 5551, 5560), between(c, 5651, 5660),
		oneOf(c, 5543, 5547, 5643, 5647):
		return CategorieCoopProduction, true
	case between(c, 5505, 5515), between(c, 5522, 5542), between(c, 5599, 5642),
		between(c, 5670, 5699), oneOf(c, 5546, 5646, 5648):
		return CategorieSA, true
	case between(c, 5710, 5785):
		return CategorieSAS, true
	case c == CodeSocieteEuropeenne:
		return CategorieSE, true
	case oneOf(c, codeCoopAgricoleCooperative, codeCoopAgricoleUnion):
		return CategorieCoopAgricole, true
	case c == CodeAssuranceMutuelle:
		return CategorieAssuranceMutuelle, true
	case c == CodeMutuelle:
		return CategorieMutuelle, true
	case c == CodeInstitutionPrevoyance:
		return CategorieInstitutionPrevoyance, true
	}
	return CategorieAutre, true
}

// EstUneSACooperative reports whether the code designates a cooperative
// société anonyme, which counts as an SA for the vigilance duty.
func EstUneSACooperative(code *int) bool {
	if code == nil {
		return false
	}
	c := *code
	return between(c, 5551, 5560) || between(c, 5651, 5660) || oneOf(c, 5543, 5547, 5643, 5647)
}
