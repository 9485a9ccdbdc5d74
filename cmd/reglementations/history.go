package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/betagouv/portail-rse-sub001/pkg/egapro"
	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
)

// runHistoryCmd prints the journal of one company.
func runHistoryCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("history", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	siren := cmd.String("siren", "", "Company SIREN (REQUIRED)")
	limit := cmd.Int("limit", 50, "Maximum number of entries")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if *siren == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --siren is required")
		return 2
	}

	ctx := context.Background()
	a, err := newApp(ctx, "", stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer a.close(ctx)

	entries, err := a.journal.History(ctx, *siren, *limit)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintf(stdout, "Aucune évaluation pour %s\n", *siren)
		return 0
	}
	for _, e := range entries {
		_, _ = fmt.Fprintf(stdout, "%s  %d  %-28s %-14s %s\n",
			e.EvaluatedAt.Format(time.DateTime), e.Annee, e.Reglementation, e.Code, e.ProchaineEcheance)
	}
	return 0
}

// runVerifyCmd loads an archived report and checks its hash and digest.
func runVerifyCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	hash := cmd.String("hash", "", "Archive hash, sha256:<hex> (REQUIRED)")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if *hash == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --hash is required")
		return 2
	}

	ctx := context.Background()
	a, err := newApp(ctx, "", stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer a.close(ctx)

	r, err := a.archiver.Load(ctx, *hash)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Verification failed: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "OK %s %s/%d ruleset %s digest %s\n", r.ID, r.Siren, r.Annee, r.Ruleset, r.Digest)
	return 0
}

// runBDESECmd records the progress of a company's BDESE for the viewer.
func runBDESECmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("bdese", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	siren := cmd.String("siren", "", "Company SIREN (REQUIRED)")
	annee := cmd.Int("annee", 0, "Year (REQUIRED)")
	token := cmd.String("token", "", "Session token of the user")
	complete := cmd.Bool("complete", false, "Mark the BDESE as complete")
	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if *siren == "" || *annee == 0 {
		_, _ = fmt.Fprintln(stderr, "Error: --siren and --annee are required")
		return 2
	}

	ctx := context.Background()
	a, err := newApp(ctx, "", stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer a.close(ctx)

	c, err := a.snapshots.Get(ctx, *siren, *annee)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	who, err := a.actorFor(*token, *siren, false)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	typ := reglementation.TypeBDESE(c)
	if err := a.bdese.Mark(ctx, *siren, *annee, typ, who, *complete); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	state := "en cours"
	if *complete {
		state = "complète"
	}
	_, _ = fmt.Fprintf(stdout, "BDESE %s %d : %s\n", *siren, *annee, state)

	ind, err := a.declarations.Indicateurs(ctx, *siren, *annee)
	if err != nil {
		a.logger.WarnContext(ctx, "egapro indicators unavailable", "siren", *siren, "annee", *annee, "error", err)
		_, _ = fmt.Fprintln(stdout, "Indicateurs EgaPro : indisponibles")
		return 0
	}
	if err := a.bdese.Prefill(ctx, *siren, *annee, who, ind); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	printIndicateurs(stdout, ind)
	return 0
}

// printIndicateurs renders the EgaPro data prefilled in the BDESE.
func printIndicateurs(w io.Writer, ind egapro.Indicateurs) {
	if ind.NombreFemmesPlusHautesRemunerations == nil && ind.ObjectifsProgression == "" {
		_, _ = fmt.Fprintln(w, "Indicateurs EgaPro : aucun indicateur déclaré")
		return
	}
	_, _ = fmt.Fprintln(w, "Indicateurs EgaPro :")
	if n := ind.NombreFemmesPlusHautesRemunerations; n != nil {
		_, _ = fmt.Fprintf(w, "  Femmes parmi les 10 plus hautes rémunérations : %d\n", *n)
	}
	if ind.ObjectifsProgression != "" {
		_, _ = fmt.Fprintln(w, "  Objectifs de progression :")
		for _, line := range strings.Split(ind.ObjectifsProgression, "\n") {
			_, _ = fmt.Fprintf(w, "    %s\n", line)
		}
	}
}
