package sema

import (
	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/errors"
)

// SimplifyExpressions collapses the wrapper nodes ExpressionRewriter
// leaves behind once every flat term sequence has climbed down to a
// single tree (spec §4.9): `Expr([t])` becomes `t`, and
// `TermGroup(Expr([t]))` becomes `t`, recursively. A member's own body
// and each Conditional branch keep their outermost Expr (those fields
// are typed `*Expr`, not `Term`, so there's nothing to collapse them
// into) — only Expr/TermGroup nodes nested inside a term tree actually
// disappear.
func SimplifyExpressions(m *ast.Module) []*errors.Report {
	for _, mem := range m.Members {
		bnd, ok := mem.(*ast.Bnd)
		if !ok || bnd.Value == nil {
			continue
		}
		simplifyExprTerms(bnd.Value)
	}
	return nil
}

func simplifyExprTerms(e *ast.Expr) {
	if e == nil {
		return
	}
	for i, t := range e.Terms {
		e.Terms[i] = simplifyTerm(t)
	}
}

func simplifyTerm(t ast.Term) ast.Term {
	switch n := t.(type) {
	case *ast.Expr:
		simplifyExprTerms(n)
		return collapseSingleton(n)
	case *ast.TermGroup:
		simplifyExprTerms(n.Inner)
		return collapseSingleton(n.Inner)
	case *ast.App:
		n.Fn = simplifyTerm(n.Fn)
		n.Arg = simplifyTerm(n.Arg)
		return n
	case *ast.Lambda:
		simplifyExprTerms(n.Body)
		return n
	case *ast.Cond:
		simplifyExprTerms(n.Guard)
		simplifyExprTerms(n.Then)
		simplifyExprTerms(n.Else)
		return n
	case *ast.Tuple:
		for _, el := range n.Elements {
			simplifyExprTerms(el)
		}
		return n
	default:
		return t
	}
}

// collapseSingleton replaces a single-term Expr with that term,
// carrying the Expr's own ascription onto it if the term has nowhere
// else to record one yet. An Expr with zero or more than one term
// (an unresolved dangling-terms case upstream) is left as is.
func collapseSingleton(e *ast.Expr) ast.Term {
	if e == nil || len(e.Terms) != 1 {
		return e
	}
	inner := e.Terms[0]
	transferTypeAsc(inner, e.TypeAsc)
	return inner
}

func transferTypeAsc(t ast.Term, asc ast.Type) {
	if asc == nil {
		return
	}
	switch n := t.(type) {
	case *ast.Ref:
		if n.TypeAsc == nil {
			n.TypeAsc = asc
		}
	case *ast.Lambda:
		if n.TypeAsc == nil {
			n.TypeAsc = asc
		}
	}
}
