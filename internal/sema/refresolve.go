package sema

import (
	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/errors"
)

// moduleScope indexes module members (including the injected stdlib)
// for name lookup during reference resolution (spec §4.7 step 2):
// callables by their originalName, everything else by Name.
type moduleScope struct {
	byOriginalName map[string][]ast.Resolvable
	byName         map[string][]ast.Resolvable
}

func buildModuleScope(m *ast.Module) *moduleScope {
	s := &moduleScope{byOriginalName: map[string][]ast.Resolvable{}, byName: map[string][]ast.Resolvable{}}
	for _, mem := range m.Members {
		bnd, ok := mem.(*ast.Bnd)
		if !ok {
			continue
		}
		if bnd.Meta != nil && bnd.Meta.Origin != ast.NotCallable && bnd.Meta.OriginalName != "" {
			s.byOriginalName[bnd.Meta.OriginalName] = append(s.byOriginalName[bnd.Meta.OriginalName], bnd)
		}
		s.byName[bnd.Name] = append(s.byName[bnd.Name], bnd)
	}
	return s
}

func (s *moduleScope) lookup(name string) []ast.Resolvable {
	if candidates, ok := s.byOriginalName[name]; ok && len(candidates) > 0 {
		return candidates
	}
	return s.byName[name]
}

// paramScope is the set of parameter names visible in the innermost
// enclosing Lambda (spec §4.7 step 1).
type paramScope map[string]*ast.FnParam

// ResolveRefs resolves every Ref reachable from a module's members
// against, in order, the innermost Lambda's parameters then module
// scope (spec §4.7). A qualified reference (`a.b`) is left for the
// type checker to finish once the base expression's type is known
// (step 4); only its base name is resolved here.
func ResolveRefs(m *ast.Module) []*errors.Report {
	scope := buildModuleScope(m)
	var reports []*errors.Report
	for _, mem := range m.Members {
		bnd, ok := mem.(*ast.Bnd)
		if !ok || bnd.Value == nil {
			continue
		}
		reports = append(reports, resolveExprRefs(bnd.Value, scope, nil)...)
	}
	return reports
}

func resolveExprRefs(e *ast.Expr, scope *moduleScope, params paramScope) []*errors.Report {
	if e == nil {
		return nil
	}
	var reports []*errors.Report
	for i, t := range e.Terms {
		resolved, errs := resolveTermRefs(t, scope, params)
		e.Terms[i] = resolved
		reports = append(reports, errs...)
	}
	return reports
}

func resolveTermRefs(t ast.Term, scope *moduleScope, params paramScope) (ast.Term, []*errors.Report) {
	switch n := t.(type) {
	case *ast.Ref:
		return resolveRef(n, scope, params)
	case *ast.Lambda:
		inner := make(paramScope, len(params)+len(n.Params))
		for k, v := range params {
			inner[k] = v
		}
		for _, p := range n.Params {
			inner[p.Name] = p
		}
		errs := resolveExprRefs(n.Body, scope, inner)
		return n, errs
	case *ast.App:
		fn, errs1 := resolveTermRefs(n.Fn, scope, params)
		arg, errs2 := resolveTermRefs(n.Arg, scope, params)
		n.Fn, n.Arg = fn, arg
		return n, append(errs1, errs2...)
	case *ast.Cond:
		errs := resolveExprRefs(n.Guard, scope, params)
		errs = append(errs, resolveExprRefs(n.Then, scope, params)...)
		errs = append(errs, resolveExprRefs(n.Else, scope, params)...)
		return n, errs
	case *ast.TermGroup:
		return n, resolveExprRefs(n.Inner, scope, params)
	case *ast.Tuple:
		var reports []*errors.Report
		for _, el := range n.Elements {
			reports = append(reports, resolveExprRefs(el, scope, params)...)
		}
		return n, reports
	case *ast.Expr:
		return n, resolveExprRefs(n, scope, params)
	default:
		return t, nil
	}
}

// resolveRef implements spec §4.7 steps 1-3. A qualified reference only
// resolves its base name here; the `.field` part waits for type
// checking (step 4).
func resolveRef(r *ast.Ref, scope *moduleScope, params paramScope) (ast.Term, []*errors.Report) {
	if p, ok := params[r.Name]; ok {
		r.ResolvedID = p.ResolvableID()
		r.HasResolved = true
		r.CandidateIDs = []ast.ID{p.ResolvableID()}
		return r, nil
	}

	candidates := scope.lookup(r.Name)
	for _, c := range candidates {
		r.CandidateIDs = append(r.CandidateIDs, c.ResolvableID())
	}

	switch len(candidates) {
	case 0:
		return &ast.InvalidExpression{Reason: "undefined reference", Original: r, NodeSpan: r.NodeSpan},
			[]*errors.Report{errors.UndefinedRef(r.Name, r.NodeSpan)}
	case 1:
		r.ResolvedID = candidates[0].ResolvableID()
		r.HasResolved = true
		return r, nil
	default:
		// Ambiguous: ResolvedID stays unset and CandidateIDs keeps every
		// match. RewriteExpressions settles an operator Ref by arity; any
		// other ambiguous Ref stays unresolved, gets no type from
		// CheckTypes, and is not reported by any phase.
		return r, nil
	}
}
