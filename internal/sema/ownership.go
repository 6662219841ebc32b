package sema

import (
	"fmt"

	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/errors"
	"github.com/minnieml-lang/mml/internal/span"
)

// ownState is the affine ownership state of one tracked binding (spec
// §4.14). Only heap-typed bindings are tracked: a non-heap value has
// no allocation to move, borrow, or free, so it never enters scope.
type ownState int

const (
	stOwned ownState = iota
	stMoved
	stBorrowed
	stLiteral
)

type ownBinding struct {
	name  string
	state ownState
	typ   string // struct name, for the __free_/__clone_ it resolves to
	span  span.Span
}

type ownScope map[ast.ID]*ownBinding

func (s ownScope) clone() ownScope {
	out := make(ownScope, len(s))
	for id, b := range s {
		cp := *b
		out[id] = &cp
	}
	return out
}

type ownershipAnalyzer struct {
	m       *ast.Module
	structs map[ast.ID]*ast.TypeStruct
	heap    map[ast.ID]bool
	alloc   map[ast.ID]bool
	reports []*errors.Report
	witness int
}

// AnalyzeOwnership runs the affine ownership pass (spec §4.14) over
// every user-written callable. It tracks which heap-typed parameter is
// Owned, Moved, or Borrowed; rejects a consuming use of an
// already-moved binding and a second consuming use of the same
// binding; rejects partial application of a callable that declares
// any consuming parameter; reconciles a conditional whose branches
// disagree on Owned vs Literal via a synthesized witness boolean (any
// other disagreement is reported;) flags a borrowed parameter
// escaping through return and promotes a literal return value to a
// clone where the declared return type is heap; and frees whatever
// parameter is still Owned at the end of its scope, in reverse
// declaration order, by threading `__free_<T>` calls through
// `ast.LocalLet` the same way MemoryFunctionGenerator threads its own
// sequencing. This runs after GenerateMemoryFunctions/
// ReindexResolvables so every `__free_`/`__clone_` it calls by name
// already exists and is indexed.
func AnalyzeOwnership(m *ast.Module) []*errors.Report {
	structs, _ := collectStructs(m)
	heap := heapStructSet(structs)
	a := &ownershipAnalyzer{
		m:       m,
		structs: structs,
		heap:    heap,
		alloc:   allocatingBndSet(m, heap),
	}

	for _, mem := range m.Members {
		bnd, ok := mem.(*ast.Bnd)
		if !ok || bnd.Meta == nil {
			continue
		}
		if bnd.Meta.Origin != ast.Function && bnd.Meta.Origin != ast.Operator {
			continue
		}
		if bnd.Source == ast.OriginSynth {
			continue
		}
		lambda, ok := firstLambda(bnd)
		if !ok {
			continue
		}
		a.analyzeLambda(lambda)
	}
	return a.reports
}

// allocatingBndSet is the module-local fixed point of "calling this
// binding always yields an Owned result" (spec §4.14 rule 1): seeded
// by every native implementation tagged Alloc and every struct
// constructor for a heap struct, then closed under "the tail call of
// my own body resolves to something already in the set".
func allocatingBndSet(m *ast.Module, heap map[ast.ID]bool) map[ast.ID]bool {
	byID := make(map[ast.ID]*ast.Bnd)
	for _, mem := range m.Members {
		if b, ok := mem.(*ast.Bnd); ok {
			byID[b.ID] = b
		}
	}

	alloc := make(map[ast.ID]bool)
	for id, b := range byID {
		lambda, ok := firstLambda(b)
		if !ok {
			continue
		}
		switch n := ownTailTerm(lambda.Body).(type) {
		case *ast.NativeImpl:
			if n.MemEffectKind == ast.Alloc {
				alloc[id] = true
			}
		case *ast.DataConstructor:
			if heap[n.Struct] {
				alloc[id] = true
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for id, b := range byID {
			if alloc[id] {
				continue
			}
			lambda, ok := firstLambda(b)
			if !ok {
				continue
			}
			app, ok := ownTailTerm(lambda.Body).(*ast.App)
			if !ok {
				continue
			}
			if callee, ok := ultimateCallee(app); ok && alloc[callee] {
				alloc[id] = true
				changed = true
			}
		}
	}
	return alloc
}

// ownTailTerm unwraps TermGroup/LocalLet wrappers to the leaf term
// that actually produces a body's value; it deliberately does not
// unwrap Cond, since the two branches of a conditional body can
// disagree on allocation and this is only used for the simple,
// unconditional case.
func ownTailTerm(e *ast.Expr) ast.Term {
	if e == nil || len(e.Terms) == 0 {
		return nil
	}
	switch n := e.Terms[0].(type) {
	case *ast.TermGroup:
		return ownTailTerm(n.Inner)
	case *ast.LocalLet:
		return ownTailTerm(n.Body)
	default:
		return n
	}
}

func ultimateCallee(app *ast.App) (ast.ID, bool) {
	var fn ast.Term = app
	for {
		a, ok := fn.(*ast.App)
		if !ok {
			break
		}
		fn = a.Fn
	}
	ref, ok := fn.(*ast.Ref)
	if !ok || !ref.HasResolved {
		return "", false
	}
	return ref.ResolvedID, true
}

func (a *ownershipAnalyzer) heapTypeName(t ast.Type) (string, bool) {
	ref, ok := t.(*ast.TypeRef)
	if !ok || !ref.HasResolved || !a.heap[ref.ResolvedID] {
		return "", false
	}
	if st, ok := a.structs[ref.ResolvedID]; ok {
		return st.Name, true
	}
	return ref.Name, true
}

func (a *ownershipAnalyzer) freeBndID(typeName string) ast.ID {
	if bnd := findBndByName(a.m, "__free_"+typeName); bnd != nil {
		return bnd.ID
	}
	return ""
}

func (a *ownershipAnalyzer) cloneBndID(typeName string) ast.ID {
	if bnd := findBndByName(a.m, "__clone_"+typeName); bnd != nil {
		return bnd.ID
	}
	return ""
}

func (a *ownershipAnalyzer) analyzeLambda(lambda *ast.Lambda) {
	scope := make(ownScope)
	var order []ast.ID
	for _, p := range lambda.Params {
		typeName, isHeap := a.heapTypeName(p.TypeAsc)
		if !isHeap {
			continue
		}
		state := stBorrowed
		if p.Consuming {
			state = stOwned
		}
		scope[p.ID] = &ownBinding{name: p.Name, state: state, typ: typeName, span: p.Span()}
		order = append(order, p.ID)
	}

	newBody, tailKind := a.rewriteExpr(scope, lambda.Body)
	newBody = a.finishReturn(lambda, newBody, tailKind)

	for i := len(order) - 1; i >= 0; i-- {
		b := scope[order[i]]
		if b.state != stOwned {
			continue
		}
		newBody = a.wrapFree(order[i], b, newBody)
	}

	lambda.Body = newBody
}

// wrapFree prepends `let _ = __free_<T> x; body` (spec §4.14 rule 8),
// reusing ast.LocalLet the way MemoryFunctionGenerator sequences its
// own free calls.
func (a *ownershipAnalyzer) wrapFree(paramID ast.ID, b *ownBinding, body *ast.Expr) *ast.Expr {
	freeRef := &ast.Ref{Name: "__free_" + b.typ, HasResolved: true, ResolvedID: a.freeBndID(b.typ), NodeSpan: span.Invalid}
	paramRef := &ast.Ref{Name: b.name, HasResolved: true, ResolvedID: paramID, NodeSpan: span.Invalid}
	call := &ast.App{Fn: freeRef, Arg: paramRef, NodeSpan: span.Invalid}
	return &ast.Expr{
		Terms: []ast.Term{&ast.LocalLet{
			Name:     "_",
			Value:    &ast.Expr{Terms: []ast.Term{call}, NodeSpan: span.Invalid},
			Body:     body,
			NodeSpan: span.Invalid,
		}},
		NodeSpan: span.Invalid,
	}
}

// finishReturn implements rule 7: a borrowed parameter returned bare
// escapes its scope and is rejected; a Static (literal) value handed
// back where the declared return type is heap is promoted to an
// owned allocation via __clone_T so the caller has something it can
// legitimately free.
func (a *ownershipAnalyzer) finishReturn(lambda *ast.Lambda, body *ast.Expr, kind ownState) *ast.Expr {
	retType, retIsHeap := a.heapTypeName(lambda.TypeAsc)
	if !retIsHeap {
		return body
	}
	switch kind {
	case stBorrowed:
		if body != nil && len(body.Terms) > 0 {
			if ref, ok := body.Terms[0].(*ast.Ref); ok {
				a.reports = append(a.reports, errors.BorrowEscapeViaReturn(ref.Name, ref.NodeSpan))
			}
		}
		return body
	case stLiteral:
		if body == nil || len(body.Terms) == 0 {
			return body
		}
		cloneRef := &ast.Ref{Name: "__clone_" + retType, HasResolved: true, ResolvedID: a.cloneBndID(retType), NodeSpan: body.NodeSpan}
		wrapped := &ast.App{Fn: cloneRef, Arg: body.Terms[0], NodeSpan: body.NodeSpan}
		return &ast.Expr{Terms: []ast.Term{wrapped}, NodeSpan: body.NodeSpan}
	default:
		return body
	}
}

func (a *ownershipAnalyzer) rewriteExpr(scope ownScope, e *ast.Expr) (*ast.Expr, ownState) {
	if e == nil || len(e.Terms) == 0 {
		return e, stLiteral
	}
	newTerm, kind := a.rewriteTerm(scope, e.Terms[0])
	return &ast.Expr{Terms: []ast.Term{newTerm}, TypeAsc: e.TypeAsc, TypeSpec: e.TypeSpec, NodeSpan: e.NodeSpan}, kind
}

func (a *ownershipAnalyzer) rewriteTerm(scope ownScope, t ast.Term) (ast.Term, ownState) {
	switch n := t.(type) {
	case *ast.Ref:
		return a.rewriteRef(scope, n)
	case *ast.App:
		return a.rewriteApp(scope, n)
	case *ast.Cond:
		return a.rewriteCond(scope, n)
	case *ast.TermGroup:
		newInner, kind := a.rewriteExpr(scope, n.Inner)
		return &ast.TermGroup{Inner: newInner, NodeSpan: n.NodeSpan}, kind
	case *ast.LocalLet:
		newValue, _ := a.rewriteExpr(scope, n.Value)
		newBody, kind := a.rewriteExpr(scope, n.Body)
		return &ast.LocalLet{Name: n.Name, Value: newValue, Body: newBody, NodeSpan: n.NodeSpan}, kind
	case *ast.LiteralString:
		return n, stLiteral
	default:
		return n, stLiteral
	}
}

func (a *ownershipAnalyzer) rewriteRef(scope ownScope, r *ast.Ref) (ast.Term, ownState) {
	if !r.HasResolved {
		return r, stLiteral
	}
	b, tracked := scope[r.ResolvedID]
	if !tracked {
		if a.alloc[r.ResolvedID] {
			return r, stOwned
		}
		return r, stBorrowed
	}
	if b.state == stMoved {
		a.reports = append(a.reports, errors.UseAfterMove(r.Name, r.NodeSpan))
	}
	return r, b.state
}

// rewriteApp walks one curried call spine: flattens it back into
// (callee, ordered args), matches each argument against the callee's
// declared parameters to find consuming slots, and rejects an
// undersaturated call to a callable that declares any consuming
// parameter (spec §4.14 rule 5).
func (a *ownershipAnalyzer) rewriteApp(scope ownScope, app *ast.App) (ast.Term, ownState) {
	fnTerm, args := flattenApp(app)

	var calleeParams []*ast.FnParam
	var calleeID ast.ID
	if ref, ok := fnTerm.(*ast.Ref); ok && ref.HasResolved {
		calleeID = ref.ResolvedID
		if res, ok := a.m.Resolvables.Lookup(ast.ValueSpace, ref.ResolvedID); ok {
			if bnd, ok := res.(*ast.Bnd); ok {
				if lambda, ok := firstLambda(bnd); ok {
					calleeParams = lambda.Params
				}
			}
		}
	}

	hasConsuming := false
	for _, p := range calleeParams {
		if p.Consuming {
			hasConsuming = true
			break
		}
	}
	if hasConsuming && len(args) < len(calleeParams) {
		a.reports = append(a.reports, errors.PartialApplicationWithConsuming(fnName(fnTerm), app.NodeSpan))
	}

	newArgs := make([]ast.Term, len(args))
	for i, arg := range args {
		consuming := i < len(calleeParams) && calleeParams[i].Consuming
		newArgs[i] = a.rewriteArg(scope, arg, consuming)
	}

	newFn, _ := a.rewriteTerm(scope, fnTerm)
	result := rebuildApp(newFn, newArgs, app.NodeSpan)

	if a.alloc[calleeID] {
		return result, stOwned
	}
	return result, stBorrowed
}

// rewriteArg handles one argument of a call: a bare reference to a
// tracked binding landing in a consuming slot moves that binding
// (spec §4.14 rule 2), reporting ConsumingParamNotLastUse if it had
// already been moved once (a second consuming use proves the first
// wasn't the last one) rather than the plainer UseAfterMove a
// non-consuming read gets.
func (a *ownershipAnalyzer) rewriteArg(scope ownScope, arg ast.Term, consuming bool) ast.Term {
	if ref, ok := arg.(*ast.Ref); ok && consuming && ref.HasResolved {
		if b, tracked := scope[ref.ResolvedID]; tracked {
			if b.state == stMoved {
				a.reports = append(a.reports, errors.ConsumingParamNotLastUse(ref.Name, ref.NodeSpan))
			} else {
				b.state = stMoved
			}
			return ref
		}
	}
	newArg, _ := a.rewriteTerm(scope, arg)
	return newArg
}

func flattenApp(app *ast.App) (ast.Term, []ast.Term) {
	var args []ast.Term
	var cur ast.Term = app
	for {
		next, ok := cur.(*ast.App)
		if !ok {
			break
		}
		args = append(args, next.Arg)
		cur = next.Fn
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return cur, args
}

func rebuildApp(fn ast.Term, args []ast.Term, sp span.Span) ast.Term {
	result := fn
	for _, arg := range args {
		result = &ast.App{Fn: result, Arg: arg, NodeSpan: sp}
	}
	return result
}

func fnName(t ast.Term) string {
	if ref, ok := t.(*ast.Ref); ok {
		return ref.Name
	}
	return "<callee>"
}

// rewriteCond implements rule 4: each branch is analyzed in its own
// scope copy since only one of them actually runs, and the two copies
// are merged back conservatively (a binding moved on either path is
// treated as moved from here on). When the branches' own result
// disagrees Owned vs Literal, a witness boolean is synthesized,
// initialized by the same guard, and the conditional's merged result
// is treated as Owned; any other disagreement can't be reconciled and
// is reported.
func (a *ownershipAnalyzer) rewriteCond(scope ownScope, n *ast.Cond) (ast.Term, ownState) {
	newGuard, _ := a.rewriteExpr(scope, n.Guard)

	thenScope := scope.clone()
	elseScope := scope.clone()
	newThen, thenKind := a.rewriteExpr(thenScope, n.Then)
	newElse, elseKind := a.rewriteExpr(elseScope, n.Else)
	mergeScopeInto(scope, thenScope, elseScope)

	cond := &ast.Cond{Guard: newGuard, Then: newThen, Else: newElse, TypeSpec: n.TypeSpec, NodeSpan: n.NodeSpan}

	if thenKind == elseKind {
		return cond, thenKind
	}
	if isOwnedLiteralPair(thenKind, elseKind) {
		a.witness++
		witness := &ast.LocalLet{
			Name:     fmt.Sprintf("__owns_%d", a.witness),
			Value:    newGuard,
			Body:     &ast.Expr{Terms: []ast.Term{cond}, NodeSpan: n.NodeSpan},
			NodeSpan: n.NodeSpan,
		}
		return witness, stOwned
	}
	a.reports = append(a.reports, errors.ConditionalOwnershipMismatch(n.NodeSpan))
	return cond, stOwned
}

func isOwnedLiteralPair(x, y ownState) bool {
	return (x == stOwned && y == stLiteral) || (x == stLiteral && y == stOwned)
}

func mergeScopeInto(dst, thenScope, elseScope ownScope) {
	for id, b := range dst {
		if thenScope[id].state == stMoved || elseScope[id].state == stMoved {
			b.state = stMoved
		}
	}
}
