package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
)

func runRulesCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("rules", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	jsonOutput := cmd.Bool("json", false, "Output as JSON")
	if err := cmd.Parse(args); err != nil {
		return 2
	}

	rules := reglementation.Rules()
	if *jsonOutput {
		infos := make([]reglementation.Info, len(rules))
		for i, r := range rules {
			infos[i] = r.Info()
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			return 1
		}
		return 0
	}

	for _, r := range rules {
		info := r.Info()
		_, _ = fmt.Fprintf(stdout, "%-28s %-7s %s\n", info.ID, info.Zone, info.Title)
	}
	return 0
}
