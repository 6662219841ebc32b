package parser

import (
	"github.com/minnieml-lang/mml/internal/ast"
)

// synthesizeConstructor builds the __mk_<Struct> Bnd for a parsed
// TypeStruct (spec §4.11). Its ID is left empty: IdAssigner mints it
// like any other Resolvable, and a later linking step fills in the
// DataConstructor body's Struct ID once the TypeStruct itself has one.
func synthesizeConstructor(ts *ast.TypeStruct) *ast.Bnd {
	name := "__mk_" + ts.Name
	params := make([]*ast.FnParam, len(ts.Fields))
	for i, f := range ts.Fields {
		params[i] = &ast.FnParam{
			Name:     f.Name,
			TypeAsc:  f.TypeAsc,
			Source:   ast.OriginSynth,
			NodeSpan: f.NodeSpan,
		}
	}

	arity := ast.Nullary
	switch len(params) {
	case 1:
		arity = ast.Unary
	case 2:
		arity = ast.Binary
	default:
		if len(params) > 2 {
			arity = ast.Nary
		}
	}

	body := &ast.Expr{
		Terms:    []ast.Term{&ast.DataConstructor{NodeSpan: ts.NodeSpan}},
		NodeSpan: ts.NodeSpan,
	}
	lambda := &ast.Lambda{
		Params:   params,
		Body:     body,
		TypeAsc:  &ast.TypeRef{Name: ts.Name, NodeSpan: ts.NodeSpan},
		NodeSpan: ts.NodeSpan,
	}

	return &ast.Bnd{
		Name:       name,
		Value:      &ast.Expr{Terms: []ast.Term{lambda}, NodeSpan: ts.NodeSpan},
		Source:     ast.OriginSynth,
		Visibility: ts.Visibility,
		Meta: &ast.BindingMeta{
			Origin:       ast.Constructor,
			Arity:        arity,
			ArityN:       len(params),
			OriginalName: ts.Name,
			MangledName:  name,
		},
		NodeSpan: ts.NodeSpan,
	}
}
