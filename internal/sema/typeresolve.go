package sema

import (
	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/errors"
	"github.com/minnieml-lang/mml/internal/span"
)

// typeDefScope maps a type name to its declaring member, built once per
// module by ResolveTypes's collect sub-pass (spec §4.6 step 1).
type typeDefScope map[string]ast.Member

// ResolveTypes runs the three TypeResolver sub-passes in order: collect
// every type declaration by name, resolve references inside
// declaration bodies (collapsing alias chains and detecting cycles),
// then resolve every TypeRef reachable from a member's signature or
// expression ascriptions (spec §4.6).
func ResolveTypes(m *ast.Module) []*errors.Report {
	scope := collectTypeDefs(m)
	var reports []*errors.Report

	reports = append(reports, resolveWithinDefinitions(m, scope)...)
	reports = append(reports, resolveWithinMembers(m, scope)...)
	return reports
}

func collectTypeDefs(m *ast.Module) typeDefScope {
	scope := make(typeDefScope)
	for _, mem := range m.Members {
		switch n := mem.(type) {
		case *ast.TypeDef:
			scope[n.Name] = n
		case *ast.TypeAlias:
			scope[n.Name] = n
		case *ast.TypeStruct:
			scope[n.Name] = n
		}
	}
	return scope
}

// resolveWithinDefinitions walks every type declaration's own body
// (struct field types, alias targets) and resolves the TypeRefs inside
// against scope, collapsing TypeAlias chains to their canonical form
// and rejecting cycles (spec §4.6 step 2).
func resolveWithinDefinitions(m *ast.Module, scope typeDefScope) []*errors.Report {
	var reports []*errors.Report
	for _, mem := range m.Members {
		switch n := mem.(type) {
		case *ast.TypeStruct:
			for _, f := range n.Fields {
				resolved, errs := resolveTypeExpr(f.TypeAsc, scope, nil)
				f.TypeAsc = resolved
				reports = append(reports, errs...)
			}
		case *ast.TypeAlias:
			canonical, errs := resolveAliasChain(n.Name, scope, nil)
			n.TypeSpec = canonical
			reports = append(reports, errs...)
		}
	}
	return reports
}

// resolveAliasChain follows TypeAlias -> TypeAlias -> ... to the first
// non-alias type, detecting cycles via the visited-name set.
func resolveAliasChain(name string, scope typeDefScope, visited []string) (ast.Type, []*errors.Report) {
	def, ok := scope[name]
	cycleSpan := span.Invalid
	if ok {
		cycleSpan = def.Span()
	}
	for _, v := range visited {
		if v == name {
			return &ast.InvalidType{Reason: "alias cycle at " + name, NodeSpan: cycleSpan},
				[]*errors.Report{errors.UnresolvableType(cycleSpan)}
		}
	}
	if !ok {
		return &ast.InvalidType{Reason: "undefined type " + name}, nil
	}
	visited = append(visited, name)
	switch n := def.(type) {
	case *ast.TypeAlias:
		if ref, isRef := n.Target.(*ast.TypeRef); isRef && ref.Qualifier == "" {
			if _, again := scope[ref.Name]; again {
				return resolveAliasChain(ref.Name, scope, visited)
			}
		}
		resolved, errs := resolveTypeExpr(n.Target, scope, visited)
		return resolved, errs
	default:
		return &ast.TypeRef{Name: name, HasResolved: true, ResolvedID: resolvableIDOf(def)}, nil
	}
}

func resolvableIDOf(mem ast.Member) ast.ID {
	if r, ok := mem.(ast.Resolvable); ok {
		return r.ResolvableID()
	}
	return ""
}

// resolveWithinMembers walks every function signature, parameter,
// return type ascription, and expression type ascription reachable
// from module members, substituting each TypeRef for its resolved form
// (spec §4.6 step 3).
func resolveWithinMembers(m *ast.Module, scope typeDefScope) []*errors.Report {
	var reports []*errors.Report
	for _, mem := range m.Members {
		bnd, ok := mem.(*ast.Bnd)
		if !ok {
			continue
		}
		resolved, errs := resolveTypeExpr(bnd.TypeAsc, scope, nil)
		bnd.TypeAsc = resolved
		reports = append(reports, errs...)

		if bnd.Value == nil {
			continue
		}
		reports = append(reports, resolveExprTypes(bnd.Value, scope)...)
	}
	return reports
}

func resolveExprTypes(e *ast.Expr, scope typeDefScope) []*errors.Report {
	if e == nil {
		return nil
	}
	var reports []*errors.Report
	resolved, errs := resolveTypeExpr(e.TypeAsc, scope, nil)
	e.TypeAsc = resolved
	reports = append(reports, errs...)

	for _, t := range e.Terms {
		reports = append(reports, resolveTermTypes(t, scope)...)
	}
	return reports
}

func resolveTermTypes(t ast.Term, scope typeDefScope) []*errors.Report {
	var reports []*errors.Report
	switch n := t.(type) {
	case *ast.Lambda:
		for _, p := range n.Params {
			resolved, errs := resolveTypeExpr(p.TypeAsc, scope, nil)
			p.TypeAsc = resolved
			reports = append(reports, errs...)
		}
		resolved, errs := resolveTypeExpr(n.TypeAsc, scope, nil)
		n.TypeAsc = resolved
		reports = append(reports, errs...)
		reports = append(reports, resolveExprTypes(n.Body, scope)...)
	case *ast.App:
		reports = append(reports, resolveTermTypes(n.Fn, scope)...)
		reports = append(reports, resolveTermTypes(n.Arg, scope)...)
	case *ast.Cond:
		reports = append(reports, resolveExprTypes(n.Guard, scope)...)
		reports = append(reports, resolveExprTypes(n.Then, scope)...)
		reports = append(reports, resolveExprTypes(n.Else, scope)...)
	case *ast.TermGroup:
		reports = append(reports, resolveExprTypes(n.Inner, scope)...)
	case *ast.Tuple:
		for _, el := range n.Elements {
			reports = append(reports, resolveExprTypes(el, scope)...)
		}
	case *ast.Ref:
		resolved, errs := resolveTypeExpr(n.TypeAsc, scope, nil)
		n.TypeAsc = resolved
		reports = append(reports, errs...)
	}
	return reports
}

// resolveTypeExpr resolves one type expression in place, recursing
// into compound shapes (TypeFn, TypeTuple, NativeStruct, ...) and
// substituting any TypeRef it finds for the resolved form. Native
// struct fields are resolved recursively, per spec §4.6.
func resolveTypeExpr(t ast.Type, scope typeDefScope, visited []string) (ast.Type, []*errors.Report) {
	if t == nil {
		return nil, nil
	}
	switch n := t.(type) {
	case *ast.TypeRef:
		def, ok := scope[n.Name]
		if !ok {
			return &ast.InvalidType{Reason: "undefined type " + n.Name, Original: n, NodeSpan: n.NodeSpan},
				[]*errors.Report{errors.UndefinedTypeRef(n.Name, n.NodeSpan)}
		}
		if alias, isAlias := def.(*ast.TypeAlias); isAlias {
			if alias.TypeSpec != nil {
				return alias.TypeSpec, nil
			}
			return resolveAliasChain(n.Name, scope, visited)
		}
		n.ResolvedID = resolvableIDOf(def)
		n.HasResolved = true
		return n, nil
	case *ast.NativeStruct:
		var reports []*errors.Report
		for k, f := range n.FieldMap {
			resolved, errs := resolveTypeExpr(f, scope, visited)
			n.FieldMap[k] = resolved
			reports = append(reports, errs...)
		}
		return n, reports
	case *ast.TypeFn:
		param, errs1 := resolveTypeExpr(n.Param, scope, visited)
		result, errs2 := resolveTypeExpr(n.Result, scope, visited)
		n.Param, n.Result = param, result
		return n, append(errs1, errs2...)
	case *ast.TypeTuple:
		var reports []*errors.Report
		for i, el := range n.Elements {
			resolved, errs := resolveTypeExpr(el, scope, visited)
			n.Elements[i] = resolved
			reports = append(reports, errs...)
		}
		return n, reports
	case *ast.TypeGroup:
		inner, errs := resolveTypeExpr(n.Inner, scope, visited)
		n.Inner = inner
		return n, errs
	default:
		return t, nil
	}
}
