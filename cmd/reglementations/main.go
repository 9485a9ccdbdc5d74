package main

import (
	"fmt"
	"io"
	"os"

	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint for testing.
//
// Exit codes:
//
//	0 = success
//	1 = the command ran and failed
//	2 = usage or setup error
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	switch args[1] {
	case "evaluate":
		return runEvaluateCmd(args[2:], stdout, stderr)
	case "batch":
		return runBatchCmd(args[2:], stdout, stderr)
	case "rules":
		return runRulesCmd(args[2:], stdout, stderr)
	case "history":
		return runHistoryCmd(args[2:], stdout, stderr)
	case "verify":
		return runVerifyCmd(args[2:], stdout, stderr)
	case "bdese":
		return runBDESECmd(args[2:], stdout, stderr)
	case "version", "--version":
		_, _ = fmt.Fprintf(stdout, "reglementations ruleset %s\n", reglementation.RulesetVersion)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage: reglementations <command> [flags]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Commands:")
	printCommand(w, "evaluate", "Evaluate one snapshot (--snapshot FILE | --siren S [--annee N])")
	printCommand(w, "batch", "Evaluate many snapshots (--input FILE | --annee N) [--filter CEL]")
	printCommand(w, "rules", "List the registered rules")
	printCommand(w, "history", "Show the journaled statuses of a company (--siren S)")
	printCommand(w, "verify", "Check an archived report (--hash sha256:...)")
	printCommand(w, "bdese", "Record BDESE progress (--siren S --annee N [--complete])")
	printCommand(w, "version", "Show the ruleset version")
	printCommand(w, "help", "Show this help")
}

func printCommand(w io.Writer, name, desc string) {
	_, _ = fmt.Fprintf(w, "  %-10s %s\n", name, desc)
}
