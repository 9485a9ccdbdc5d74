package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
	"github.com/betagouv/portail-rse-sub001/pkg/intake"
	"github.com/betagouv/portail-rse-sub001/pkg/observability"
	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
	"github.com/betagouv/portail-rse-sub001/pkg/selector"
)

// runBatchCmd implements `reglementations batch`. Snapshots come from a
// file or from the store, are filtered by a CEL expression and evaluated
// on a bounded pool. Output is sorted by company name in French order.
func runBatchCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("batch", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		input       string
		annee       int
		filter      string
		workers     int
		today       string
		profilePath string
		save        bool
		archiveIt   bool
		jsonOutput  bool
	)
	cmd.StringVar(&input, "input", "", "JSON array or NDJSON of snapshots, - for stdin (default: the store)")
	cmd.IntVar(&annee, "annee", 0, "Year of the stored snapshots (default: all)")
	cmd.StringVar(&filter, "filter", "", "CEL expression selecting snapshots")
	cmd.IntVar(&workers, "workers", 4, "Concurrent evaluations")
	cmd.StringVar(&today, "today", "", "Evaluation date, YYYY-MM-DD")
	cmd.StringVar(&profilePath, "profile", "", "YAML evaluation profile")
	cmd.BoolVar(&save, "save", false, "Store the snapshots and journal the statuses")
	cmd.BoolVar(&archiveIt, "archive", false, "Archive every report")
	cmd.BoolVar(&jsonOutput, "json", false, "Output one JSON report per line")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if workers < 1 {
		_, _ = fmt.Fprintln(stderr, "Error: --workers must be at least 1")
		return 2
	}

	sel, err := selector.New()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if filter != "" {
		if err := sel.Compile(filter); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	}

	ctx := context.Background()
	a, err := newApp(ctx, profilePath, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer a.close(ctx)

	when, err := a.today(today)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	var all []*entreprise.Caracteristiques
	if input != "" {
		data, err := readInput(input)
		if err == nil {
			all, err = intake.DecodeAll(bytes.NewReader(data))
		}
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	} else if all, err = a.snapshots.List(ctx, annee); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	selected, err := sel.Filter(filter, all)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, finish := a.obs.TrackOperation(ctx, "batch", observability.AttrRuleset.String(reglementation.RulesetVersion))
	outcomes := make([]outcome, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range selected {
		g.Go(func() error {
			out, err := a.evaluate(gctx, c, a.env(when, reglementation.Actor{}), evalOptions{save: save, archive: archiveIt})
			if err != nil {
				return fmt.Errorf("%s/%d: %w", c.Entreprise.Siren, c.Annee, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	err = g.Wait()
	finish(err)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	sortOutcomes(outcomes)
	a.logger.InfoContext(ctx, "batch evaluated", "read", len(all), "evaluated", len(outcomes))

	if jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetEscapeHTML(false)
		for _, o := range outcomes {
			if err := enc.Encode(o); err != nil {
				return 1
			}
		}
		return 0
	}
	for _, o := range outcomes {
		r := o.Report
		_, _ = fmt.Fprintf(stdout, "%s  %d  %-32s  %s\n", r.Siren, r.Annee, r.Denomination, summary(r.Counts))
	}
	_, _ = fmt.Fprintf(stdout, "%d entreprise(s) évaluée(s)\n", len(outcomes))
	return 0
}

// sortOutcomes orders by denomination with French collation, then SIREN
// and year.
func sortOutcomes(outcomes []outcome) {
	col := collate.New(language.French, collate.IgnoreCase)
	sort.SliceStable(outcomes, func(i, j int) bool {
		ri, rj := outcomes[i].Report, outcomes[j].Report
		if c := col.CompareString(ri.Denomination, rj.Denomination); c != 0 {
			return c < 0
		}
		if ri.Siren != rj.Siren {
			return ri.Siren < rj.Siren
		}
		return ri.Annee < rj.Annee
	})
}

func summary(counts map[string]int) string {
	var parts []string
	for _, code := range reglementation.Codes {
		if n := counts[code.String()]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", code, n))
		}
	}
	return strings.Join(parts, " ")
}
