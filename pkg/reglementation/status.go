// Package reglementation evaluates which French and European CSR obligations
// apply to a company for one fiscal year, and what the user should do next.
//
// Every obligation implements Rule. Callers go through CalculateStatus, which
// applies the shared qualification gate before any rule-specific branch runs.
package reglementation

import (
	"encoding/json"
	"fmt"
)

// Code is the state of one obligation for one snapshot.
type Code int

const (
	Incalculable Code = -1
	AActualiser  Code = 1
	EnCours      Code = 2
	AJour        Code = 3
	Soumis       Code = 4
	NonSoumis    Code = 5
	Recommande   Code = 6
)

var codeLabels = map[Code]string{
	Incalculable: "incalculable",
	AActualiser:  "à actualiser",
	EnCours:      "en cours",
	AJour:        "à jour",
	Soumis:       "soumis",
	NonSoumis:    "non soumis",
	Recommande:   "recommandé",
}

// Codes lists every code in presentation order.
var Codes = []Code{AActualiser, EnCours, AJour, Soumis, NonSoumis, Recommande, Incalculable}

func (c Code) String() string {
	if l, ok := codeLabels[c]; ok {
		return l
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// MarshalJSON encodes the French label.
func (c Code) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the French label.
func (c *Code) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for code, label := range codeLabels {
		if label == s {
			*c = code
			return nil
		}
	}
	return fmt.Errorf("reglementation: unknown status %q", s)
}

// Action points the user to where they should go next.
type Action struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	External bool   `json:"external"`
}

// Status is the result of evaluating one rule against one snapshot.
type Status struct {
	Code              Code     `json:"status"`
	Detail            string   `json:"status_detail"`
	ProchaineEcheance string   `json:"prochaine_echeance,omitempty"`
	PrimaryAction     *Action  `json:"primary_action,omitempty"`
	SecondaryActions  []Action `json:"secondary_actions,omitempty"`
}

// Zone is the legislative origin of an obligation.
type Zone string

const (
	ZoneFrance Zone = "france"
	ZoneEurope Zone = "europe"
)

// Info is the static description of a rule.
type Info struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	MoreInfoURL string `json:"more_info_url"`
	Tag         string `json:"tag,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Zone        Zone   `json:"zone"`
}
