package sema

import (
	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/errors"
	"github.com/minnieml-lang/mml/internal/span"
)

// RewriteExpressions turns every flat term sequence the parser produced
// into a curried App tree, using precedence climbing over the operator
// metadata RefResolver already attached (spec §4.8). It must run after
// RefResolver (operator Refs need CandidateIDs/ResolvedID to know their
// precedence) and before Simplifier (which collapses the single-element
// Expr this leaves behind).
func RewriteExpressions(m *ast.Module) []*errors.Report {
	var reports []*errors.Report
	reports = append(reports, checkPrecedenceConsistency(m)...)

	for _, mem := range m.Members {
		bnd, ok := mem.(*ast.Bnd)
		if !ok || bnd.Value == nil {
			continue
		}
		reports = append(reports, rewriteExpr(bnd.Value, m.Resolvables)...)
	}
	return reports
}

// checkPrecedenceConsistency flags a module where two distinct binary
// operators share a precedence level but declare different
// associativity — climbing such a mix has no single well-defined
// answer (spec §4.8 point 4: "mixing left- and right-associative
// operators at identical precedence is a DanglingTerms error").
func checkPrecedenceConsistency(m *ast.Module) []*errors.Report {
	byPrecedence := map[int]ast.Associativity{}
	seen := map[int]bool{}
	var reports []*errors.Report
	for _, mem := range m.Members {
		bnd, ok := mem.(*ast.Bnd)
		if !ok || bnd.Meta == nil || bnd.Meta.Origin != ast.Operator || bnd.Meta.Arity != ast.Binary {
			continue
		}
		prec := bnd.Meta.Precedence
		if !seen[prec] {
			byPrecedence[prec] = bnd.Meta.Associativity
			seen[prec] = true
			continue
		}
		if byPrecedence[prec] != bnd.Meta.Associativity {
			reports = append(reports, errors.DanglingTerms(
				"operators at the same precedence level must share one associativity", bnd.Span()))
		}
	}
	return reports
}

func rewriteExpr(e *ast.Expr, idx *ast.ResolvablesIndex) []*errors.Report {
	if e == nil {
		return nil
	}
	var reports []*errors.Report
	for _, t := range e.Terms {
		reports = append(reports, rewriteNestedExprs(t, idx)...)
	}

	c := &climber{terms: e.Terms, idx: idx}
	result := c.run()
	e.Terms = result
	return append(reports, c.reports...)
}

// rewriteNestedExprs recurses into any Expr reachable from t, so a
// TermGroup/Tuple/Cond/Lambda's inner flat sequences are rewritten
// before this level's own climbing runs.
func rewriteNestedExprs(t ast.Term, idx *ast.ResolvablesIndex) []*errors.Report {
	switch n := t.(type) {
	case *ast.Lambda:
		return rewriteExpr(n.Body, idx)
	case *ast.Cond:
		var reports []*errors.Report
		reports = append(reports, rewriteExpr(n.Guard, idx)...)
		reports = append(reports, rewriteExpr(n.Then, idx)...)
		reports = append(reports, rewriteExpr(n.Else, idx)...)
		return reports
	case *ast.TermGroup:
		return rewriteExpr(n.Inner, idx)
	case *ast.Tuple:
		var reports []*errors.Report
		for _, el := range n.Elements {
			reports = append(reports, rewriteExpr(el, idx)...)
		}
		return reports
	default:
		return nil
	}
}

// climber walks a flat term slice left to right, implementing the
// state machine from spec §4.8: {Await operand} -> {Consuming
// prefixes} -> {Have operand} -> {Await operator} -> (binary -> Await
// operand) | (postfix -> Have operand) | end.
type climber struct {
	terms   []ast.Term
	pos     int
	idx     *ast.ResolvablesIndex
	reports []*errors.Report
}

// run consumes as much of the term slice as one expression's
// precedence climb covers and returns the rewritten slice: either a
// single tree, or a tree followed by leftover terms flagged as
// DanglingTerms (spec §4.8 point 5).
func (c *climber) run() []ast.Term {
	if len(c.terms) == 0 {
		return c.terms
	}

	lhs, ok := c.parsePrimaryWithPrefix()
	if !ok {
		return c.terms
	}
	result := c.parseBinaryRHS(lhs, 0)

	if c.pos >= len(c.terms) {
		return []ast.Term{result}
	}
	sp := c.terms[c.pos].Span()
	c.reports = append(c.reports, errors.DanglingTerms("unconsumed terms after expression", sp))
	out := []ast.Term{result}
	out = append(out, c.terms[c.pos:]...)
	return out
}

// parsePrimaryWithPrefix consumes a run of right-associative prefix
// operators, then one operand, wrapping it in nested Apps innermost
// prefix first (spec §4.8 step 3: "Consume a prefix stack, then a
// primary operand").
func (c *climber) parsePrimaryWithPrefix() (ast.Term, bool) {
	var prefixes []*ast.Ref
	for c.pos < len(c.terms) {
		ref, ok := c.terms[c.pos].(*ast.Ref)
		if !ok {
			break
		}
		meta, ok := c.operatorMeta(ref, ast.Unary)
		if !ok || meta.Associativity != ast.AssocRight {
			break
		}
		prefixes = append(prefixes, ref)
		c.pos++
	}

	if c.pos >= len(c.terms) {
		c.reports = append(c.reports, errors.DanglingTerms("prefix operator with no operand", lastSpan(c.terms)))
		return nil, false
	}

	primary := c.terms[c.pos]
	c.pos++

	for i := len(prefixes) - 1; i >= 0; i-- {
		primary = &ast.App{Fn: prefixes[i], Arg: primary, NodeSpan: prefixes[i].Span()}
	}
	return primary, true
}

// parseBinaryRHS implements the precedence-climbing loop: postfix
// unary operators apply immediately; binary operators recurse on the
// right with a raised minimum precedence for left associativity;
// anything else adjacent is juxtaposition — application, modeled as a
// virtual left-associative operator at FunctionPrecedence (spec §4.8
// steps 2-3).
func (c *climber) parseBinaryRHS(lhs ast.Term, minPrec int) ast.Term {
	for c.pos < len(c.terms) {
		if ref, meta, ok := c.peekOperator(ast.Unary, ast.AssocLeft); ok {
			if meta.Precedence < minPrec {
				return lhs
			}
			c.pos++
			lhs = &ast.App{Fn: ref, Arg: lhs, NodeSpan: ref.Span()}
			continue
		}

		if ref, meta, ok := c.peekBinaryOperator(); ok {
			if meta.Precedence < minPrec {
				return lhs
			}
			c.pos++
			nextMin := meta.Precedence
			if meta.Associativity == ast.AssocLeft {
				nextMin = meta.Precedence + 1
			}
			rhs, ok := c.parsePrimaryWithPrefix()
			if !ok {
				c.reports = append(c.reports, errors.DanglingTerms("binary operator with no right operand", ref.Span()))
				return lhs
			}
			rhs = c.parseBinaryRHS(rhs, nextMin)
			lhs = &ast.App{Fn: &ast.App{Fn: ref, Arg: lhs, NodeSpan: ref.Span()}, Arg: rhs, NodeSpan: ref.Span()}
			continue
		}

		if !c.isOperator(c.pos) {
			if ast.FunctionPrecedence < minPrec {
				return lhs
			}
			arg, ok := c.parsePrimaryWithPrefix()
			if !ok {
				return lhs
			}
			arg = c.parseBinaryRHS(arg, ast.FunctionPrecedence+1)
			lhs = &ast.App{Fn: lhs, Arg: arg, NodeSpan: lhs.Span()}
			continue
		}

		return lhs
	}
	return lhs
}

// isOperator reports whether the term at pos is a Ref the module
// resolved to some operator Bnd, at any arity.
func (c *climber) isOperator(pos int) bool {
	ref, ok := c.terms[pos].(*ast.Ref)
	if !ok {
		return false
	}
	return len(c.operatorMetas(ref)) > 0
}

func (c *climber) peekOperator(arity ast.Arity, assoc ast.Associativity) (*ast.Ref, *ast.BindingMeta, bool) {
	if c.pos >= len(c.terms) {
		return nil, nil, false
	}
	ref, ok := c.terms[c.pos].(*ast.Ref)
	if !ok {
		return nil, nil, false
	}
	meta, ok := c.operatorMeta(ref, arity)
	if !ok || meta.Associativity != assoc {
		return nil, nil, false
	}
	return ref, meta, true
}

func (c *climber) peekBinaryOperator() (*ast.Ref, *ast.BindingMeta, bool) {
	if c.pos >= len(c.terms) {
		return nil, nil, false
	}
	ref, ok := c.terms[c.pos].(*ast.Ref)
	if !ok {
		return nil, nil, false
	}
	meta, ok := c.operatorMeta(ref, ast.Binary)
	if !ok {
		return nil, nil, false
	}
	return ref, meta, true
}

// operatorCandidate pairs a resolution candidate's ID with its Bnd's
// operator metadata, so picking one by arity can also lock the Ref's
// resolution to it.
type operatorCandidate struct {
	id   ast.ID
	meta *ast.BindingMeta
}

// operatorMeta picks the BindingMeta matching wantArity among a Ref's
// resolution candidates — this is how unary and binary `-` overloads
// at the same name disambiguate once their position relative to an
// operand is known (spec §4.8 step 1) — and locks the Ref's
// ResolvedID and Name to that candidate's ID and mangled name, so later
// phases (TypeChecker) see an unambiguous resolution instead of the
// overload set RefResolver left behind.
func (c *climber) operatorMeta(ref *ast.Ref, wantArity ast.Arity) (*ast.BindingMeta, bool) {
	for _, cand := range c.operatorCandidates(ref) {
		if cand.meta.Arity == wantArity {
			ref.ResolvedID = cand.id
			ref.HasResolved = true
			ref.Name = cand.meta.MangledName
			return cand.meta, true
		}
	}
	return nil, false
}

func (c *climber) operatorMetas(ref *ast.Ref) []*ast.BindingMeta {
	cands := c.operatorCandidates(ref)
	metas := make([]*ast.BindingMeta, len(cands))
	for i, cand := range cands {
		metas[i] = cand.meta
	}
	return metas
}

func (c *climber) operatorCandidates(ref *ast.Ref) []operatorCandidate {
	if c.idx == nil {
		return nil
	}
	ids := ref.CandidateIDs
	if len(ids) == 0 && ref.HasResolved {
		ids = []ast.ID{ref.ResolvedID}
	}
	var cands []operatorCandidate
	for _, id := range ids {
		r, ok := c.idx.Lookup(ast.ValueSpace, id)
		if !ok {
			continue
		}
		bnd, ok := r.(*ast.Bnd)
		if !ok || bnd.Meta == nil || bnd.Meta.Origin != ast.Operator {
			continue
		}
		cands = append(cands, operatorCandidate{id: id, meta: bnd.Meta})
	}
	return cands
}

func lastSpan(terms []ast.Term) span.Span {
	if len(terms) == 0 {
		return span.Span{}
	}
	return terms[len(terms)-1].Span()
}
