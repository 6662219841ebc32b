// Package sema is the staged semantic pipeline that runs over a parsed
// Module after stdlib.Inject: duplicate detection, ID assignment, type
// resolution, reference resolution, precedence climbing,
// simplification, type checking, memory-helper synthesis, resolvables
// rebuild, tail-recursion tagging, and ownership analysis (spec §2,
// §4.4-§4.14). Every phase is a plain function over *ast.Module; each
// one that can reject a program returns accumulated *errors.Report
// values rather than failing fast, matching the "errors as values"
// contract in spec §3.6/§7, while AssignIDs, ReindexResolvables and
// DetectTailRecursion have nothing to report and return nothing.
package sema

import (
	"fmt"

	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/errors"
	"github.com/minnieml-lang/mml/internal/span"
)

// dupKey groups callables by (origin, originalName, arity) and
// everything else by (kind, name), per spec §4.4. Unary and binary `-`
// share an originalName but differ in arity, so they key apart.
type dupKey struct {
	kind string
	name string
	arity ast.Arity
}

// CheckDuplicateNames replaces any member that collides on dupKey with
// an earlier one with a DuplicateMember wrapper, first-seen wins, and
// returns one DuplicateName diagnostic per collision naming both
// spans (spec §4.4).
func CheckDuplicateNames(m *ast.Module) []*errors.Report {
	var reports []*errors.Report
	seen := make(map[dupKey]ast.Member)

	for i, mem := range m.Members {
		key, ok := keyOf(mem)
		if !ok {
			continue
		}
		if original, collided := seen[key]; collided {
			offending := []span.Span{original.Span(), mem.Span()}
			reports = append(reports, errors.DuplicateName(key.name, offending, mem.Span()))
			m.Members[i] = &ast.DuplicateMember{Original: mem, NodeSpan: mem.Span()}
			continue
		}
		seen[key] = mem
	}

	return reports
}

func keyOf(mem ast.Member) (dupKey, bool) {
	switch n := mem.(type) {
	case *ast.Bnd:
		if n.Meta != nil && n.Meta.Origin != ast.NotCallable {
			return dupKey{kind: fmt.Sprintf("callable/%v", n.Meta.Origin), name: n.Meta.OriginalName, arity: n.Meta.Arity}, true
		}
		return dupKey{kind: "value", name: n.Name}, true
	case *ast.TypeDef:
		return dupKey{kind: "type", name: n.Name}, true
	case *ast.TypeAlias:
		return dupKey{kind: "type", name: n.Name}, true
	case *ast.TypeStruct:
		return dupKey{kind: "type", name: n.Name}, true
	default:
		return dupKey{}, false
	}
}

// CheckDuplicateParams wraps a Lambda whose parameter names repeat in
// an InvalidMember (spec §4.4's parameter-name duplication rule).
func CheckDuplicateParams(m *ast.Module) []*errors.Report {
	var reports []*errors.Report
	for i, mem := range m.Members {
		bnd, ok := mem.(*ast.Bnd)
		if !ok || bnd.Value == nil || len(bnd.Value.Terms) == 0 {
			continue
		}
		lambda, ok := bnd.Value.Terms[0].(*ast.Lambda)
		if !ok {
			continue
		}
		seenNames := make(map[string]bool, len(lambda.Params))
		for _, p := range lambda.Params {
			if p.Name == "_" {
				continue
			}
			if seenNames[p.Name] {
				reason := fmt.Sprintf("parameter %q repeated in %s", p.Name, bnd.Name)
				reports = append(reports, errors.New(errors.NAM003, "names", reason, mem.Span()))
				m.Members[i] = &ast.InvalidMember{Reason: reason, Original: mem, NodeSpan: mem.Span()}
				break
			}
			seenNames[p.Name] = true
		}
	}
	return reports
}
