// Package entreprise models the yearly characteristics of a company that the
// réglementation rules read: headcount, turnover and balance-sheet bands,
// group structure, listing status and legal form.
//
// Bands are closed string enumerations. The empty value means "unknown" and
// is a first-class state: rules treat it through their qualification gate,
// never by comparing raw numbers.
package entreprise

import "fmt"

// ── Headcount ────────────────────────────────────────────────

// Effectif is a headcount band.
type Effectif string

const (
	EffectifInconnu         Effectif = ""
	EffectifMoinsDe10       Effectif = "0-9"
	EffectifEntre10Et49     Effectif = "10-49"
	EffectifMoinsDe50       Effectif = "0-49" // group headcounts only
	EffectifEntre50Et249    Effectif = "50-249"
	EffectifEntre250Et299   Effectif = "250-299"
	EffectifEntre300Et499   Effectif = "300-499"
	EffectifEntre250Et499   Effectif = "250-499" // group headcounts only
	EffectifEntre500Et4999  Effectif = "500-4999"
	EffectifEntre5000Et9999 Effectif = "5000-9999"
	Effectif10000EtPlus     Effectif = "10000+"
)

// EffectifBands lists the company headcount bands in ascending order.
var EffectifBands = []Effectif{
	EffectifMoinsDe10,
	EffectifEntre10Et49,
	EffectifEntre50Et249,
	EffectifEntre250Et299,
	EffectifEntre300Et499,
	EffectifEntre500Et4999,
	EffectifEntre5000Et9999,
	Effectif10000EtPlus,
}

// EffectifGroupeBands lists the group headcount bands in ascending order.
var EffectifGroupeBands = []Effectif{
	EffectifMoinsDe50,
	EffectifEntre50Et249,
	EffectifEntre250Et499,
	EffectifEntre500Et4999,
	EffectifEntre5000Et9999,
	Effectif10000EtPlus,
}

// Known reports whether the band is set.
func (e Effectif) Known() bool { return e != EffectifInconnu }

// In reports whether e is one of bands.
func (e Effectif) In(bands ...Effectif) bool {
	for _, b := range bands {
		if e == b {
			return true
		}
	}
	return false
}

// EffectifOutreMer is the overseas-territories headcount band.
type EffectifOutreMer string

const (
	EffectifOutreMerInconnu    EffectifOutreMer = ""
	EffectifOutreMerMoinsDe250 EffectifOutreMer = "0-249"
	EffectifOutreMer250EtPlus  EffectifOutreMer = "250+"
)

// EffectifOutreMerBands lists the overseas headcount bands in ascending order.
var EffectifOutreMerBands = []EffectifOutreMer{EffectifOutreMerMoinsDe250, EffectifOutreMer250EtPlus}

func (e EffectifOutreMer) Known() bool { return e != EffectifOutreMerInconnu }

// ── Turnover ─────────────────────────────────────────────────

// TrancheChiffreAffaires is a turnover band, standalone or consolidated.
type TrancheChiffreAffaires string

const (
	CAInconnu        TrancheChiffreAffaires = ""
	CAMoinsDe900k    TrancheChiffreAffaires = "0-900k"
	CAEntre900kEt50M TrancheChiffreAffaires = "900k-50M"
	CAEntre50MEt100M TrancheChiffreAffaires = "50M-100M"
	CAMoinsDe60M     TrancheChiffreAffaires = "0-60M"    // consolidated only
	CAEntre60MEt100M TrancheChiffreAffaires = "60M-100M" // consolidated only
	CA100MEtPlus     TrancheChiffreAffaires = "100M+"
)

// CABands lists the standalone turnover bands in ascending order.
var CABands = []TrancheChiffreAffaires{CAMoinsDe900k, CAEntre900kEt50M, CAEntre50MEt100M, CA100MEtPlus}

// CAConsolideBands lists the consolidated turnover bands in ascending order.
var CAConsolideBands = []TrancheChiffreAffaires{CAMoinsDe60M, CAEntre60MEt100M, CA100MEtPlus}

func (t TrancheChiffreAffaires) Known() bool { return t != CAInconnu }

// In reports whether t is one of bands.
func (t TrancheChiffreAffaires) In(bands ...TrancheChiffreAffaires) bool {
	for _, b := range bands {
		if t == b {
			return true
		}
	}
	return false
}

// ── Balance sheet ────────────────────────────────────────────

// TrancheBilan is a balance-sheet band, standalone or consolidated.
type TrancheBilan string

const (
	BilanInconnu        TrancheBilan = ""
	BilanMoinsDe450k    TrancheBilan = "0-450k"
	BilanEntre450kEt25M TrancheBilan = "450k-25M"
	BilanEntre25MEt43M  TrancheBilan = "25M-43M"
	BilanMoinsDe30M     TrancheBilan = "0-30M"   // consolidated only
	BilanEntre30MEt43M  TrancheBilan = "30M-43M" // consolidated only
	BilanEntre43MEt100M TrancheBilan = "43M-100M"
	Bilan100MEtPlus     TrancheBilan = "100M+"
)

// BilanBands lists the standalone balance-sheet bands in ascending order.
var BilanBands = []TrancheBilan{BilanMoinsDe450k, BilanEntre450kEt25M, BilanEntre25MEt43M, BilanEntre43MEt100M, Bilan100MEtPlus}

// BilanConsolideBands lists the consolidated balance-sheet bands in ascending order.
var BilanConsolideBands = []TrancheBilan{BilanMoinsDe30M, BilanEntre30MEt43M, BilanEntre43MEt100M, Bilan100MEtPlus}

func (t TrancheBilan) Known() bool { return t != BilanInconnu }

// In reports whether t is one of bands.
func (t TrancheBilan) In(bands ...TrancheBilan) bool {
	for _, b := range bands {
		if t == b {
			return true
		}
	}
	return false
}

// ── Validation ───────────────────────────────────────────────

func checkBand[T comparable](field string, v T, unknown T, allowed []T) error {
	if v == unknown {
		return nil
	}
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s=%v", ErrInvalidBand, field, v)
}
