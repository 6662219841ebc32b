package sema

import (
	"strings"

	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/errors"
	"github.com/minnieml-lang/mml/internal/span"
)

// CheckTypes runs the bidirectional, monomorphic TypeChecker (spec
// §4.10): Stage 1 requires every function/operator parameter to carry
// a declared ascription and every operator a declared return type (a
// function's missing return type is inferred in Stage 2, which reports
// it instead when the function is self-recursive), Stage 2
// walks each body in check mode against its declared type or synth
// mode when none is declared, comparing by nominal nominal-or-
// structural equality depending on what TypeResolver left behind.
func CheckTypes(m *ast.Module) []*errors.Report {
	c := &typeChecker{idx: m.Resolvables}
	var reports []*errors.Report
	reports = append(reports, c.checkDeclaredAscriptions(m)...)

	for _, mem := range m.Members {
		bnd, ok := mem.(*ast.Bnd)
		if !ok || bnd.Value == nil {
			continue
		}
		reports = append(reports, c.checkBnd(bnd)...)
	}
	return reports
}

type typeChecker struct {
	idx *ast.ResolvablesIndex
}

// checkDeclaredAscriptions is Stage 1: every parameter of a function
// or operator must carry an explicit type (spec §4.10 Stage 1); return
// types are tolerated as missing here and picked up by synthesis in
// Stage 2, except operators, which this language always requires an
// explicit result type for.
func (c *typeChecker) checkDeclaredAscriptions(m *ast.Module) []*errors.Report {
	var reports []*errors.Report
	for _, mem := range m.Members {
		bnd, ok := mem.(*ast.Bnd)
		if !ok || bnd.Meta == nil || bnd.Value == nil || len(bnd.Value.Terms) == 0 {
			continue
		}
		if bnd.Meta.Origin != ast.Function && bnd.Meta.Origin != ast.Operator {
			continue
		}
		lambda, ok := bnd.Value.Terms[0].(*ast.Lambda)
		if !ok {
			continue
		}
		for _, p := range lambda.Params {
			if p.TypeAsc != nil {
				continue
			}
			if bnd.Meta.Origin == ast.Operator {
				reports = append(reports, errors.MissingOperatorParameterType(bnd.Meta.OriginalName, p.Span()))
			} else {
				reports = append(reports, errors.MissingParameterType(p.Name, p.Span()))
			}
		}
		if bnd.Meta.Origin == ast.Operator && lambda.TypeAsc == nil {
			reports = append(reports, errors.MissingOperatorReturnType(bnd.Meta.OriginalName, bnd.Span()))
		}
	}
	return reports
}

// checkBnd is Stage 2 for one module member: a callable's body checks
// against its declared return type, or synthesizes one that gets
// written back onto the Lambda when none was declared (spec §4.10
// Stage 2). A self-recursive function with no declared and no
// inferable return type can never synthesize one, since the body's
// own type depends on itself — that's reported rather than looped on.
func (c *typeChecker) checkBnd(bnd *ast.Bnd) []*errors.Report {
	if len(bnd.Value.Terms) == 0 {
		return nil
	}
	lambda, isLambda := bnd.Value.Terms[0].(*ast.Lambda)
	if !isLambda {
		t, reports := c.checkExpr(bnd.Value, bnd.TypeAsc)
		bnd.TypeSpec = t
		return reports
	}

	bodyType, reports := c.checkExpr(lambda.Body, lambda.TypeAsc)
	if lambda.TypeAsc == nil {
		if bodyType != nil {
			lambda.TypeAsc = bodyType
		} else if isSelfRecursive(bnd, lambda) {
			name := bnd.Name
			if bnd.Meta != nil {
				name = bnd.Meta.OriginalName
			}
			reports = append(reports, errors.RecursiveFunctionMissingReturnType(name, bnd.Span()))
		}
	}
	bnd.TypeSpec = functionTypeOf(lambda)
	return reports
}

func isSelfRecursive(bnd *ast.Bnd, lambda *ast.Lambda) bool {
	found := false
	walkRefs(lambda.Body, func(r *ast.Ref) {
		if r.HasResolved && r.ResolvedID == bnd.ID {
			found = true
		}
	})
	return found
}

func walkRefs(e *ast.Expr, visit func(*ast.Ref)) {
	if e == nil {
		return
	}
	for _, t := range e.Terms {
		walkRefsTerm(t, visit)
	}
}

func walkRefsTerm(t ast.Term, visit func(*ast.Ref)) {
	switch n := t.(type) {
	case *ast.Ref:
		visit(n)
	case *ast.App:
		walkRefsTerm(n.Fn, visit)
		walkRefsTerm(n.Arg, visit)
	case *ast.Lambda:
		walkRefs(n.Body, visit)
	case *ast.Cond:
		walkRefs(n.Guard, visit)
		walkRefs(n.Then, visit)
		walkRefs(n.Else, visit)
	case *ast.TermGroup:
		walkRefs(n.Inner, visit)
	case *ast.Tuple:
		for _, el := range n.Elements {
			walkRefs(el, visit)
		}
	case *ast.Expr:
		walkRefs(n, visit)
	}
}

// functionTypeOf curries a Lambda's parameter and return ascriptions
// into a TypeFn chain; nil if any piece is still missing (already
// reported by checkDeclaredAscriptions / the recursive-return check).
// A Nullary lambda still yields a TypeFn from Unit, never its bare
// return type, so a lone Ref to such a callable is a function value
// (spec §4.2/§9 "Nullary callables"); the explicit `()` written in the
// source reaches it as an ordinary juxtaposed argument and applies it.
func functionTypeOf(lambda *ast.Lambda) ast.Type {
	if lambda.TypeAsc == nil {
		return nil
	}
	t := lambda.TypeAsc
	if len(lambda.Params) == 0 {
		return &ast.TypeFn{Param: unitType(), Result: t, NodeSpan: lambda.NodeSpan}
	}
	for i := len(lambda.Params) - 1; i >= 0; i-- {
		p := lambda.Params[i]
		if p.TypeAsc == nil {
			return nil
		}
		t = &ast.TypeFn{Param: p.TypeAsc, Result: t, NodeSpan: lambda.NodeSpan}
	}
	return t
}

func (c *typeChecker) checkExpr(e *ast.Expr, expected ast.Type) (ast.Type, []*errors.Report) {
	if e == nil || len(e.Terms) == 0 {
		return nil, nil
	}
	t, reports := c.checkTerm(e.Terms[0], expected)
	e.TypeSpec = t
	return t, reports
}

func (c *typeChecker) checkTerm(t ast.Term, expected ast.Type) (ast.Type, []*errors.Report) {
	switch n := t.(type) {
	case *ast.LiteralInt:
		return c.checkAgainst(intType(), expected, n.NodeSpan)
	case *ast.LiteralFloat:
		return c.checkAgainst(floatType(), expected, n.NodeSpan)
	case *ast.LiteralString:
		return c.checkAgainst(stringType(), expected, n.NodeSpan)
	case *ast.LiteralBool:
		return c.checkAgainst(boolType(), expected, n.NodeSpan)
	case *ast.LiteralUnit:
		return c.checkAgainst(unitType(), expected, n.NodeSpan)
	case *ast.Hole:
		if expected == nil {
			return nil, []*errors.Report{errors.UntypedHoleInBinding(n.NodeSpan)}
		}
		n.TypeSpec = expected
		return expected, nil
	case *ast.Ref:
		return c.checkRef(n, expected)
	case *ast.App:
		return c.checkApp(n, expected)
	case *ast.Cond:
		return c.checkCond(n, expected)
	case *ast.TermGroup:
		return c.checkExpr(n.Inner, expected)
	case *ast.Tuple:
		return c.checkTuple(n, expected)
	case *ast.Lambda:
		_, reports := c.checkExpr(n.Body, n.TypeAsc)
		return functionTypeOf(n), reports
	case *ast.NativeImpl, *ast.DataConstructor, *ast.DataDestructor:
		return expected, nil
	default:
		// InvalidExpression / TermError / Placeholder: already reported
		// upstream, nothing further to check.
		return nil, nil
	}
}

func (c *typeChecker) checkAgainst(actual, expected ast.Type, sp span.Span) (ast.Type, []*errors.Report) {
	if expected == nil {
		return actual, nil
	}
	if !typesCompatible(actual, expected) {
		return actual, []*errors.Report{errors.TypeMismatch(typeName(expected), typeName(actual), sp)}
	}
	return expected, nil
}

func (c *typeChecker) checkRef(r *ast.Ref, expected ast.Type) (ast.Type, []*errors.Report) {
	if !r.HasResolved {
		return nil, nil
	}
	res, ok := c.idx.Lookup(ast.ValueSpace, r.ResolvedID)
	if !ok {
		return nil, nil
	}
	baseType := c.resolvableType(res)

	if r.Qualifier != "" {
		return c.checkSelection(r, baseType, expected)
	}
	r.TypeSpec = baseType

	if expected == nil || baseType == nil {
		return baseType, nil
	}

	// A bare reference to a nullary callable is a function value in its
	// own right (spec §4.8/§9 "Nullary callables"); it only becomes an
	// undersaturated application when the surrounding context expects
	// the *result* of invoking it rather than the callable itself, i.e.
	// when the Ref isn't in bare value position.
	if bnd, ok := res.(*ast.Bnd); ok && bnd.Meta != nil && bnd.Meta.Arity == ast.Nullary {
		if fn, ok := baseType.(*ast.TypeFn); ok && !typesCompatible(baseType, expected) && typesCompatible(fn.Result, expected) {
			return baseType, []*errors.Report{errors.UndersaturatedApplication(1, 0, r.NodeSpan)}
		}
	}

	if !typesCompatible(baseType, expected) {
		return baseType, []*errors.Report{errors.TypeMismatch(typeName(expected), typeName(baseType), r.NodeSpan)}
	}
	return baseType, nil
}

// resolvableType reads the value-space type of whatever a Ref resolved
// to: a callable Bnd's curried function type, a plain Bnd's declared or
// synthesized type, or a lambda parameter's/struct field's declared
// type — the three Resolvable kinds Rebuild registers in ValueSpace.
func (c *typeChecker) resolvableType(res ast.Resolvable) ast.Type {
	switch n := res.(type) {
	case *ast.Bnd:
		if n.Meta != nil && n.Meta.Origin != ast.NotCallable {
			if lambda, ok := firstLambda(n); ok {
				return functionTypeOf(lambda)
			}
			return nil
		}
		if n.TypeSpec != nil {
			return n.TypeSpec
		}
		return n.TypeAsc
	case *ast.FnParam:
		if n.TypeSpec != nil {
			return n.TypeSpec
		}
		return n.TypeAsc
	case *ast.Field:
		if n.TypeSpec != nil {
			return n.TypeSpec
		}
		return n.TypeAsc
	default:
		return nil
	}
}

// checkSelection resolves `base.field` now that the base's type is
// known (spec §4.7 step 4, §4.10 "Selection"): the base must resolve to
// a struct type, already collapsed through any alias chain by
// TypeResolver, and the qualifier must name one of its fields.
func (c *typeChecker) checkSelection(r *ast.Ref, baseType ast.Type, expected ast.Type) (ast.Type, []*errors.Report) {
	st, ok := c.structTypeOf(baseType)
	if !ok {
		return nil, []*errors.Report{errors.InvalidSelection(typeName(baseType), r.NodeSpan)}
	}
	for _, f := range st.Fields {
		if f.Name != r.Qualifier {
			continue
		}
		t := f.TypeSpec
		if t == nil {
			t = f.TypeAsc
		}
		r.TypeSpec = t
		if expected != nil && t != nil && !typesCompatible(t, expected) {
			return t, []*errors.Report{errors.TypeMismatch(typeName(expected), typeName(t), r.NodeSpan)}
		}
		return t, nil
	}
	return nil, []*errors.Report{errors.UnknownField(st.Name, r.Qualifier, r.NodeSpan)}
}

// structTypeOf follows a value's type to its declaring TypeStruct.
// TypeResolver already collapses TypeAlias chains into a TypeRef
// pointing straight at the canonical declaration, so a single index
// lookup suffices here.
func (c *typeChecker) structTypeOf(t ast.Type) (*ast.TypeStruct, bool) {
	t = unwrapGroup(t)
	if st, ok := t.(*ast.TypeStruct); ok {
		return st, true
	}
	ref, ok := t.(*ast.TypeRef)
	if !ok || !ref.HasResolved {
		return nil, false
	}
	res, ok := c.idx.Lookup(ast.TypeSpace, ref.ResolvedID)
	if !ok {
		return nil, false
	}
	st, ok := res.(*ast.TypeStruct)
	return st, ok
}

func firstLambda(bnd *ast.Bnd) (*ast.Lambda, bool) {
	if bnd.Value == nil || len(bnd.Value.Terms) == 0 {
		return nil, false
	}
	lambda, ok := bnd.Value.Terms[0].(*ast.Lambda)
	return lambda, ok
}

// checkApp walks one level of a curried application spine: synthesize
// the callee's type, check the argument against its parameter type,
// and yield the result type (spec §4.10 Stage 2 App rule). A callee
// type that isn't a TypeFn is one of two distinct spec errors rather
// than one generic failure: applying an extra argument to an already
// fully-saturated callable is OversaturatedApplication; applying to
// anything else (a literal, a struct value, ...) is InvalidApplication.
func (c *typeChecker) checkApp(n *ast.App, expected ast.Type) (ast.Type, []*errors.Report) {
	fnType, reports := c.checkTerm(n.Fn, nil)
	if fnType == nil {
		return nil, reports
	}
	fnType = unwrapGroup(fnType)
	fn, ok := fnType.(*ast.TypeFn)
	if !ok {
		if declared, applied, isCallable := c.spineArity(n); isCallable {
			return nil, append(reports, errors.OversaturatedApplication(declared, applied, n.NodeSpan))
		}
		return nil, append(reports, errors.InvalidApplication(typeName(fnType), "argument", n.NodeSpan))
	}

	_, argReports := c.checkTerm(n.Arg, fn.Param)
	reports = append(reports, argReports...)

	result := fn.Result
	if expected != nil && result != nil && !typesCompatible(result, expected) {
		reports = append(reports, errors.TypeMismatch(typeName(expected), typeName(result), n.NodeSpan))
	}
	return result, reports
}

// spineArity walks a curried App spine down to its root Ref, reporting
// the callee's declared arity (the number of TypeFn hops in its full
// curried type) against how many arguments the spine actually applies.
// isCallable is false when the root isn't a resolved reference to a
// callable Bnd at all, which means the non-TypeFn callee is a genuinely
// non-function value rather than an over-applied function.
func (c *typeChecker) spineArity(n *ast.App) (declared, applied int, isCallable bool) {
	var cur ast.Term = n
	for {
		app, ok := cur.(*ast.App)
		if !ok {
			break
		}
		applied++
		cur = app.Fn
	}
	ref, ok := cur.(*ast.Ref)
	if !ok || !ref.HasResolved {
		return 0, applied, false
	}
	res, ok := c.idx.Lookup(ast.ValueSpace, ref.ResolvedID)
	if !ok {
		return 0, applied, false
	}
	bnd, ok := res.(*ast.Bnd)
	if !ok || bnd.Meta == nil || bnd.Meta.Origin == ast.NotCallable {
		return 0, applied, false
	}
	lambda, ok := firstLambda(bnd)
	if !ok {
		return 0, applied, false
	}
	return declaredArity(functionTypeOf(lambda)), applied, true
}

// declaredArity counts the TypeFn hops in a curried function type.
func declaredArity(t ast.Type) int {
	n := 0
	for {
		fn, ok := unwrapGroup(t).(*ast.TypeFn)
		if !ok {
			return n
		}
		n++
		t = fn.Result
	}
}

func (c *typeChecker) checkCond(n *ast.Cond, expected ast.Type) (ast.Type, []*errors.Report) {
	_, guardReports := c.checkExpr(n.Guard, boolType())
	thenType, thenReports := c.checkExpr(n.Then, expected)
	elseType, elseReports := c.checkExpr(n.Else, expected)

	reports := append(guardReports, thenReports...)
	reports = append(reports, elseReports...)

	var result ast.Type
	switch {
	case thenType != nil && elseType != nil:
		if !typesCompatible(thenType, elseType) {
			reports = append(reports, errors.ConditionalBranchTypeMismatch(typeName(thenType), typeName(elseType), n.NodeSpan))
		} else {
			result = thenType
		}
	case thenType != nil:
		result = thenType
	case elseType != nil:
		result = elseType
	default:
		reports = append(reports, errors.ConditionalBranchTypeUnknown(n.NodeSpan))
	}
	n.TypeSpec = result
	return result, reports
}

func (c *typeChecker) checkTuple(n *ast.Tuple, expected ast.Type) (ast.Type, []*errors.Report) {
	expectedTuple, _ := unwrapGroup(expected).(*ast.TypeTuple)
	elements := make([]ast.Type, len(n.Elements))
	var reports []*errors.Report
	for i, el := range n.Elements {
		var elExpected ast.Type
		if expectedTuple != nil && i < len(expectedTuple.Elements) {
			elExpected = expectedTuple.Elements[i]
		}
		t, errs := c.checkExpr(el, elExpected)
		elements[i] = t
		reports = append(reports, errs...)
	}
	return &ast.TypeTuple{Elements: elements, NodeSpan: n.NodeSpan}, reports
}

func unwrapGroup(t ast.Type) ast.Type {
	for {
		g, ok := t.(*ast.TypeGroup)
		if !ok {
			return t
		}
		t = g.Inner
	}
}

func intType() ast.Type    { return &ast.TypeRef{Name: "Int64"} }
func floatType() ast.Type  { return &ast.TypeRef{Name: "Float"} }
func stringType() ast.Type { return &ast.TypeRef{Name: "String"} }
func boolType() ast.Type   { return &ast.TypeRef{Name: "Bool"} }
func unitType() ast.Type   { return &ast.TypeRef{Name: "Unit"} }

// typesCompatible is nominal where TypeResolver has given both sides a
// resolved identity, and falls back to structural/name comparison
// otherwise (spec §4.10: "nominal type equality by ResolvedID" for
// resolved references, with native/tuple/function shapes compared
// structurally since they never carry one).
func typesCompatible(a, b ast.Type) bool {
	a, b = unwrapGroup(a), unwrapGroup(b)
	if a == nil || b == nil {
		return true
	}
	if _, invalid := a.(*ast.InvalidType); invalid {
		return true
	}
	if _, invalid := b.(*ast.InvalidType); invalid {
		return true
	}

	switch an := a.(type) {
	case *ast.TypeRef:
		bn, ok := b.(*ast.TypeRef)
		if !ok {
			return false
		}
		if an.HasResolved && bn.HasResolved {
			return an.ResolvedID == bn.ResolvedID
		}
		return an.Name == bn.Name
	case *ast.NativePrimitive:
		bn, ok := b.(*ast.NativePrimitive)
		return ok && an.LLVMType == bn.LLVMType
	case *ast.TypeFn:
		bn, ok := b.(*ast.TypeFn)
		return ok && typesCompatible(an.Param, bn.Param) && typesCompatible(an.Result, bn.Result)
	case *ast.TypeTuple:
		bn, ok := b.(*ast.TypeTuple)
		if !ok || len(an.Elements) != len(bn.Elements) {
			return false
		}
		for i := range an.Elements {
			if !typesCompatible(an.Elements[i], bn.Elements[i]) {
				return false
			}
		}
		return true
	case *ast.TypeStruct:
		bn, ok := b.(*ast.TypeStruct)
		return ok && an.Name == bn.Name
	case *ast.TypeUnit:
		_, ok := b.(*ast.TypeUnit)
		return ok
	default:
		return typeName(a) == typeName(b)
	}
}

// typeName renders a Type for diagnostic messages (spec §7's
// TypeMismatch carries both sides as strings).
func typeName(t ast.Type) string {
	t = unwrapGroup(t)
	switch n := t.(type) {
	case nil:
		return "?"
	case *ast.TypeRef:
		return n.Name
	case *ast.NativePrimitive:
		return "@native[" + n.LLVMType + "]"
	case *ast.NativePointer:
		return "@native[ptr " + n.PointeeLLVMType + "]"
	case *ast.TypeFn:
		return "(" + typeName(n.Param) + " -> " + typeName(n.Result) + ")"
	case *ast.TypeTuple:
		parts := make([]string, len(n.Elements))
		for i, e := range n.Elements {
			parts[i] = typeName(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *ast.TypeStruct:
		return n.Name
	case *ast.TypeUnit:
		return "Unit"
	case *ast.InvalidType:
		return "invalid"
	default:
		return "?"
	}
}
