package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
)

// ErrRulesetMismatch is returned when a profile pins a ruleset the binary
// does not carry.
var ErrRulesetMismatch = errors.New("config: ruleset version mismatch")

// Profile tunes an evaluation run. Every field is optional.
type Profile struct {
	Name string `yaml:"name"`
	// Today replaces the clock, as YYYY-MM-DD.
	Today string `yaml:"today,omitempty"`
	// Disabled lists rule IDs left out of the evaluation.
	Disabled []string `yaml:"disabled,omitempty"`
	// Ruleset is a semver constraint on reglementation.RulesetVersion.
	Ruleset string `yaml:"ruleset,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`

	today time.Time
}

// LoadProfile reads and checks the YAML profile at path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes a profile. Unknown keys are rejected.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}

	if p.Today != "" {
		t, err := time.Parse(time.DateOnly, p.Today)
		if err != nil {
			return nil, fmt.Errorf("profile %q: today: %w", p.Name, err)
		}
		p.today = t
	}
	for _, id := range p.Disabled {
		if _, err := reglementation.Lookup(id); err != nil {
			return nil, fmt.Errorf("profile %q: disabled: %w", p.Name, err)
		}
	}
	if err := CheckRuleset(p.Ruleset); err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return &p, nil
}

// CheckRuleset checks constraint against the compiled-in ruleset version.
// An empty constraint accepts any version.
func CheckRuleset(constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("ruleset constraint %q: %w", constraint, err)
	}
	v := semver.MustParse(reglementation.RulesetVersion)
	if !c.Check(v) {
		return fmt.Errorf("%w: have %s, profile wants %s", ErrRulesetMismatch, v, constraint)
	}
	return nil
}

// TodayOr returns the pinned date, or now when none is set.
func (p *Profile) TodayOr(now time.Time) time.Time {
	if p == nil || p.today.IsZero() {
		return now
	}
	return p.today
}

// Filter keeps the rules not disabled by the profile. It is nil when the
// profile disables nothing.
func (p *Profile) Filter() reglementation.Filter {
	if p == nil || len(p.Disabled) == 0 {
		return nil
	}
	off := make(map[string]bool, len(p.Disabled))
	for _, id := range p.Disabled {
		off[id] = true
	}
	return func(i reglementation.Info) bool { return !off[i.ID] }
}
