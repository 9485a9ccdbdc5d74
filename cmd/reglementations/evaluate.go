package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/betagouv/portail-rse-sub001/pkg/entreprise"
	"github.com/betagouv/portail-rse-sub001/pkg/intake"
	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
	"github.com/betagouv/portail-rse-sub001/pkg/report"
)

// runEvaluateCmd implements `reglementations evaluate`.
func runEvaluateCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		snapshotPath string
		siren        string
		annee        int
		token        string
		anonymous    bool
		today        string
		profilePath  string
		save         bool
		archiveIt    bool
		jsonOutput   bool
	)
	cmd.StringVar(&snapshotPath, "snapshot", "", "Snapshot JSON file, - for stdin")
	cmd.StringVar(&siren, "siren", "", "Evaluate the stored snapshot of this company")
	cmd.IntVar(&annee, "annee", 0, "Year of the stored snapshot (default: latest)")
	cmd.StringVar(&token, "token", "", "Session token of the viewer")
	cmd.BoolVar(&anonymous, "anonymous", false, "Evaluate for a signed-out visitor")
	cmd.StringVar(&today, "today", "", "Evaluation date, YYYY-MM-DD")
	cmd.StringVar(&profilePath, "profile", "", "YAML evaluation profile")
	cmd.BoolVar(&save, "save", false, "Store the snapshot and journal the statuses")
	cmd.BoolVar(&archiveIt, "archive", false, "Archive the report")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the report as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if (snapshotPath == "") == (siren == "") {
		_, _ = fmt.Fprintln(stderr, "Error: exactly one of --snapshot or --siren is required")
		return 2
	}

	ctx := context.Background()
	a, err := newApp(ctx, profilePath, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer a.close(ctx)

	c, err := loadOne(ctx, a, snapshotPath, siren, annee)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	when, err := a.today(today)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	who, err := a.actorFor(token, c.Entreprise.Siren, anonymous)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	out, err := a.evaluate(ctx, c, a.env(when, who), evalOptions{save: save, archive: archiveIt})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(out); err != nil {
			return 1
		}
		return 0
	}
	printReport(stdout, out.Report)
	if out.ArchiveHash != "" {
		_, _ = fmt.Fprintf(stdout, "\nArchivé : %s\n", out.ArchiveHash)
	}
	return 0
}

func loadOne(ctx context.Context, a *app, path, siren string, annee int) (*entreprise.Caracteristiques, error) {
	if siren != "" {
		if annee != 0 {
			return a.snapshots.Get(ctx, siren, annee)
		}
		return a.snapshots.Latest(ctx, siren)
	}
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return intake.Decode(data)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// printReport renders r grouped by status, most urgent first.
func printReport(w io.Writer, r *report.Report) {
	name := r.Siren
	if r.Denomination != "" {
		name = fmt.Sprintf("%s (%s)", r.Denomination, r.Siren)
	}
	_, _ = fmt.Fprintf(w, "%s, année %d, évalué le %s\n", name, r.Annee, r.Today)

	byCode := map[reglementation.Code][]reglementation.Result{}
	for _, res := range r.Results {
		byCode[res.Status.Code] = append(byCode[res.Status.Code], res)
	}
	for _, code := range reglementation.Codes {
		group := byCode[code]
		if len(group) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(w, "\n%s\n", strings.ToUpper(code.String()))
		for _, res := range group {
			_, _ = fmt.Fprintf(w, "  %s\n", res.Rule.Title)
			_, _ = fmt.Fprintf(w, "    %s\n", res.Status.Detail)
			if res.Status.ProchaineEcheance != "" {
				_, _ = fmt.Fprintf(w, "    Prochaine échéance : %s\n", res.Status.ProchaineEcheance)
			}
			if act := res.Status.PrimaryAction; act != nil {
				_, _ = fmt.Fprintf(w, "    > %s : %s\n", act.Title, act.URL)
			}
		}
	}
	_, _ = fmt.Fprintf(w, "\nEmpreinte : %s\n", r.Digest)
}
