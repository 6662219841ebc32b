// Command mmlc reads one file, runs it through the front-end, and
// prints the diagnostics it accumulated. It is scaffolding for
// exercising the two public entry points, not a deliverable CLI (spec
// §1 places dev-loop tooling out of scope): no flags beyond a single
// path argument.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/minnieml-lang/mml/internal/compiler"
	"github.com/minnieml-lang/mml/internal/config"
	"github.com/minnieml-lang/mml/internal/errors"
)

var (
	red = color.New(color.FgRed).SprintFunc()
	dim = color.New(color.Faint).SprintFunc()
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: mmlc <file.mml>")
		os.Exit(2)
	}

	path := os.Args[1]
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}

	m, parseReports := compiler.Parse(string(src), path)
	st := compiler.Analyze(m, config.AnalyzerConfig{})

	for _, r := range parseReports {
		printReport(r)
	}
	for _, r := range st.Errors {
		printReport(r)
	}

	if !st.CanEmitCode {
		os.Exit(1)
	}
}

// printReport renders one Report. CompilerWarning has no variants yet
// (spec §7: "Warning is reserved"), so every Report accumulated today
// is an error.
func printReport(r *errors.Report) {
	spanText := "synthetic span"
	if r.Span != nil && r.Span.Valid() {
		spanText = r.Span.String()
	}
	fmt.Printf("%s: %s %s\n", red("error"), r.Message, dim(fmt.Sprintf("[%s %s]", r.Code, spanText)))
}
