package sema

import "github.com/minnieml-lang/mml/internal/ast"

// DetectTailRecursion walks every Lambda's body and sets
// IsTailRecursive when its own binding appears as a fully-applied
// self-call in tail position (spec §4.13): the last term of a
// sequence, either branch of a Cond, or the tail of a LocalLet chain
// synthesized by an earlier phase. This is a hint for codegen (to emit
// a loop CFG instead of a call) and never changes semantics, so it
// returns nothing — there is nothing to fail.
func DetectTailRecursion(m *ast.Module) {
	for _, mem := range m.Members {
		bnd, ok := mem.(*ast.Bnd)
		if !ok || bnd.Value == nil || len(bnd.Value.Terms) == 0 {
			continue
		}
		lambda, ok := bnd.Value.Terms[0].(*ast.Lambda)
		if !ok {
			continue
		}
		lambda.IsTailRecursive = tailCallsSelf(bnd.ID, len(lambda.Params), lambda.Body)
	}
}

func tailCallsSelf(selfID ast.ID, arity int, e *ast.Expr) bool {
	if e == nil || len(e.Terms) == 0 {
		return false
	}
	return tailTermCallsSelf(selfID, arity, e.Terms[0])
}

func tailTermCallsSelf(selfID ast.ID, arity int, t ast.Term) bool {
	switch n := t.(type) {
	case *ast.Cond:
		return tailCallsSelf(selfID, arity, n.Then) || tailCallsSelf(selfID, arity, n.Else)
	case *ast.LocalLet:
		return tailCallsSelf(selfID, arity, n.Body)
	case *ast.TermGroup:
		return tailCallsSelf(selfID, arity, n.Inner)
	case *ast.App:
		return isSaturatingSelfCall(selfID, arity, n)
	default:
		return false
	}
}

// isSaturatingSelfCall reports whether app is a curried application
// of exactly `arity` arguments whose ultimate callee is a Ref resolved
// to selfID — a partial self-application (too few args) returns a
// closure, not a tail call, so it doesn't count.
func isSaturatingSelfCall(selfID ast.ID, arity int, app *ast.App) bool {
	depth := 0
	var fn ast.Term = app
	for {
		a, ok := fn.(*ast.App)
		if !ok {
			break
		}
		depth++
		fn = a.Fn
	}
	ref, ok := fn.(*ast.Ref)
	return ok && ref.HasResolved && ref.ResolvedID == selfID && depth == arity
}
