// Package compiler provides the two public entry points (spec §6.1):
// parse turns source text into a best-effort Module; analyze threads
// that Module through the full semantic pipeline and accumulates the
// result in a CompilerState. Both are pure, total functions over their
// inputs — there is no global mutable registry and no module-level
// cross-talk (spec §5).
package compiler

import (
	"time"

	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/config"
	"github.com/minnieml-lang/mml/internal/errors"
	"github.com/minnieml-lang/mml/internal/parser"
	"github.com/minnieml-lang/mml/internal/sema"
	"github.com/minnieml-lang/mml/internal/stdlib"
)

// SourceInfo carries the raw text a Module was parsed from, mirroring
// CompilerState.source_info (spec §6.1).
type SourceInfo struct {
	Path string
	Text string
}

// Counter is one (name, value) pair in CompilerState.counters. A slice
// of plain structs rather than a map keeps the sequence ordered, the
// same ordered-pair shape Timing uses (SPEC_FULL.md's Per-phase
// timing/counters section).
type Counter struct {
	Name  string
	Value int
}

// Timing is one (phase_name, elapsed_ns) pair in CompilerState.timings.
type Timing struct {
	Phase     string
	ElapsedNs int64
}

// CompilerState is the sole mutable artifact threaded through the
// pipeline (spec §6.1, §5). It is returned by value; nothing else is
// shared across phases.
type CompilerState struct {
	Module      *ast.Module
	SourceInfo  SourceInfo
	Config      config.AnalyzerConfig
	Errors      []*errors.Report
	Warnings    []*errors.Report
	Timings     []Timing
	Counters    []Counter
	EntryPoint  string
	CanEmitCode bool
}

// Parse is the first public entry point (spec §6.1): total, never
// fails outright. Malformed input comes back as error nodes inside the
// Module plus diagnostics in the second return value.
func Parse(source, moduleName string) (*ast.Module, []*errors.Report) {
	return parser.Parse(source, moduleName)
}

// phaseFatal reports whether a diagnostic with this code flips
// CanEmitCode to false. Every diagnostic outside the ownership family
// is fatal (spec §7); an OWN### diagnostic is fatal only when
// AnalyzerConfig.StrictOwnershipEnabled reports true, since the
// ownership family is the only one SPEC_FULL.md's config makes
// conditionally non-fatal.
func phaseFatal(code string, cfg config.AnalyzerConfig) bool {
	if len(code) >= 3 && code[:3] == "OWN" {
		return cfg.StrictOwnershipEnabled()
	}
	return true
}

// Analyze is the second public entry point (spec §6.1): runs the
// semantic pipeline over an already-parsed Module and returns the
// accumulated CompilerState. Every phase is total — none of them panic
// on malformed input — and phases run in the dependency order spec §2
// lays out, skipping whichever names appear in config.SkipPhases.
func Analyze(m *ast.Module, cfg config.AnalyzerConfig) CompilerState {
	st := CompilerState{
		Module:      m,
		Config:      cfg,
		CanEmitCode: true,
	}

	injected := len(m.Members)
	stdlib.Inject(m)
	st.Counters = append(st.Counters, Counter{"members.injected", len(m.Members) - injected})

	type phase struct {
		name string
		run  func() []*errors.Report
	}

	phases := []phase{
		{"duplicate_names", func() []*errors.Report { return sema.CheckDuplicateNames(m) }},
		{"duplicate_params", func() []*errors.Report { return sema.CheckDuplicateParams(m) }},
		{"id_assign", func() []*errors.Report { sema.AssignIDs(m); return nil }},
		{"type_resolve", func() []*errors.Report { return sema.ResolveTypes(m) }},
		{"ref_resolve", func() []*errors.Report { return sema.ResolveRefs(m) }},
		{"rewrite", func() []*errors.Report { return sema.RewriteExpressions(m) }},
		{"simplify", func() []*errors.Report { return sema.SimplifyExpressions(m) }},
		{"typecheck", func() []*errors.Report { return sema.CheckTypes(m) }},
		{"memory_functions", func() []*errors.Report {
			before := len(m.Members)
			reports := sema.GenerateMemoryFunctions(m)
			st.Counters = append(st.Counters, Counter{"members.memory_functions", len(m.Members) - before})
			return reports
		}},
		{"reindex", func() []*errors.Report { sema.ReindexResolvables(m); return nil }},
		{"tailrec", func() []*errors.Report { sema.DetectTailRecursion(m); return nil }},
		{"ownership", func() []*errors.Report {
			reports := sema.AnalyzeOwnership(m)
			st.Counters = append(st.Counters, Counter{"frees.inserted", countFrees(m)})
			return reports
		}},
	}

	for _, p := range phases {
		if cfg.SkipsPhase(p.name) {
			continue
		}
		start := time.Now()
		reports := p.run()
		st.Timings = append(st.Timings, Timing{p.name, time.Since(start).Nanoseconds()})
		for _, r := range reports {
			st.Errors = append(st.Errors, r)
			if phaseFatal(r.Code, cfg) {
				st.CanEmitCode = false
			}
		}
	}

	st.Counters = append(st.Counters, Counter{"refs.resolved", countResolvedRefs(m)})

	if cfg.EntryPoint != "" {
		bnd := findBndByName(m, cfg.EntryPoint)
		if bnd == nil || !isNullaryCallable(bnd) {
			r := errors.InvalidEntryPoint("entry point "+cfg.EntryPoint+" is missing or not a nullary callable", m.NodeSpan)
			st.Errors = append(st.Errors, r)
			st.CanEmitCode = false
		}
		st.EntryPoint = cfg.EntryPoint
	}

	return st
}

func findBndByName(m *ast.Module, name string) *ast.Bnd {
	for _, mem := range m.Members {
		if bnd, ok := mem.(*ast.Bnd); ok && bnd.Name == name {
			return bnd
		}
	}
	return nil
}

func isNullaryCallable(bnd *ast.Bnd) bool {
	return bnd.Meta != nil && bnd.Meta.Origin == ast.Function && bnd.Meta.Arity == ast.Nullary
}

func countResolvedRefs(m *ast.Module) int {
	count := 0
	var walkTerm func(ast.Term)
	walkExpr := func(e *ast.Expr) {
		if e == nil {
			return
		}
		for _, t := range e.Terms {
			walkTerm(t)
		}
	}
	walkTerm = func(t ast.Term) {
		switch n := t.(type) {
		case *ast.Ref:
			if n.HasResolved {
				count++
			}
		case *ast.App:
			walkTerm(n.Fn)
			walkTerm(n.Arg)
		case *ast.Cond:
			walkExpr(n.Guard)
			walkExpr(n.Then)
			walkExpr(n.Else)
		case *ast.LocalLet:
			walkExpr(n.Value)
			walkExpr(n.Body)
		case *ast.TermGroup:
			walkExpr(n.Inner)
		case *ast.Lambda:
			walkExpr(n.Body)
		}
	}
	for _, mem := range m.Members {
		if bnd, ok := mem.(*ast.Bnd); ok {
			walkExpr(bnd.Value)
		}
	}
	return count
}

func countFrees(m *ast.Module) int {
	count := 0
	var walkExpr func(*ast.Expr)
	walkExpr = func(e *ast.Expr) {
		if e == nil {
			return
		}
		for _, t := range e.Terms {
			if let, ok := t.(*ast.LocalLet); ok {
				if app, ok := let.Value.Terms[0].(*ast.App); ok {
					if ref, ok := app.Fn.(*ast.Ref); ok && len(ref.Name) > 7 && ref.Name[:7] == "__free_" {
						count++
					}
				}
				walkExpr(let.Value)
				walkExpr(let.Body)
			}
		}
	}
	for _, mem := range m.Members {
		if bnd, ok := mem.(*ast.Bnd); ok {
			if lambda, ok := firstLambdaOf(bnd); ok {
				walkExpr(lambda.Body)
			}
		}
	}
	return count
}

func firstLambdaOf(bnd *ast.Bnd) (*ast.Lambda, bool) {
	if bnd.Value == nil || len(bnd.Value.Terms) == 0 {
		return nil, false
	}
	lambda, ok := bnd.Value.Terms[0].(*ast.Lambda)
	return lambda, ok
}
