// Package stdlib synthesizes the fixed prelude every module receives
// before any semantic phase runs (spec §4.3): the native primitive
// types, the canonical operator precedence ladder, and the handful of
// builtin runtime functions every program can call without an import.
package stdlib

import (
	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/parser"
	"github.com/minnieml-lang/mml/internal/span"
)

// synthNamespace is the reserved ID prefix for every member this
// package injects (spec §3.5 Invariant C).
const synthNamespace = "stdlib"

// Inject prepends the prelude to m.Members in place. It must run
// before DuplicateNameChecker and every later semantic phase, since
// RefResolver's module scope search and operator precedence climbing
// both depend on these members already being present (spec §4.3,
// §4.7 step 2).
func Inject(m *ast.Module) {
	prelude := make([]ast.Member, 0, 32)
	prelude = append(prelude, nativeTypes()...)
	prelude = append(prelude, aliases()...)
	prelude = append(prelude, operators()...)
	prelude = append(prelude, builtins()...)
	m.Members = append(prelude, m.Members...)
}

func synthID(tag string) ast.ID { return ast.NewSynthID(synthNamespace, tag) }

func typeRef(name string) ast.Type { return &ast.TypeRef{Name: name, NodeSpan: span.Invalid} }

func typeDef(name, llvm string) *ast.TypeDef {
	return &ast.TypeDef{
		ID:         synthID("type." + name),
		Name:       name,
		Underlying: &ast.NativePrimitive{LLVMType: llvm, NodeSpan: span.Invalid},
		Source:     ast.OriginSynth,
		Visibility: ast.Public,
		NodeSpan:   span.Invalid,
	}
}

// nativeTypes is the fixed set of @native scalar defs plus the one
// heap struct (String) every program needs for string-returning
// builtins (spec §4.3).
func nativeTypes() []ast.Member {
	charPtr := &ast.TypeDef{
		ID:         synthID("type.CharPtr"),
		Name:       "CharPtr",
		Underlying: &ast.NativePointer{PointeeLLVMType: "i8", NodeSpan: span.Invalid},
		Source:     ast.OriginSynth,
		Visibility: ast.Public,
		NodeSpan:   span.Invalid,
	}
	str := &ast.TypeStruct{
		ID:   synthID("type.String"),
		Name: "String",
		Fields: []*ast.Field{
			{ID: synthID("field.String.length"), Name: "length", TypeAsc: typeRef("SizeT"), NodeSpan: span.Invalid},
			{ID: synthID("field.String.data"), Name: "data", TypeAsc: typeRef("CharPtr"), NodeSpan: span.Invalid},
		},
		Source:     ast.OriginSynth,
		Visibility: ast.Public,
		NodeSpan:   span.Invalid,
	}
	return []ast.Member{
		typeDef("Int64", "i64"),
		typeDef("Int32", "i32"),
		typeDef("Int16", "i16"),
		typeDef("Int8", "i8"),
		typeDef("Float", "float"),
		typeDef("Double", "double"),
		typeDef("Bool", "i1"),
		typeDef("Char", "i8"),
		typeDef("Unit", "void"),
		typeDef("SizeT", "i64"),
		charPtr,
		str,
	}
}

func aliasMember(name, target string) *ast.TypeAlias {
	return &ast.TypeAlias{
		ID:         synthID("alias." + name),
		Name:       name,
		Target:     typeRef(target),
		Source:     ast.OriginSynth,
		Visibility: ast.Public,
		NodeSpan:   span.Invalid,
	}
}

// aliases collapses the three convenience names onto their underlying
// native defs; TypeResolver's structural-collapse pass resolves these
// like any user-written alias (spec §4.3, §4.6).
func aliases() []ast.Member {
	return []ast.Member{
		aliasMember("Int", "Int64"),
		aliasMember("Byte", "Int8"),
		aliasMember("Word", "Int8"),
	}
}

// opSpec is one row of the required precedence ladder (spec §4.3).
type opSpec struct {
	name       string
	paramTypes []string
	ret        string
	precedence int
	assoc      ast.Associativity
	template   string
}

// operatorSpecs is the exact, required precedence ladder. Unary and
// binary `+`/`-` deliberately share a surface name: DuplicateNameChecker
// groups by (origin, originalName, arity), and their arities differ
// (spec §4.4's "permitted overload").
func operatorSpecs() []opSpec {
	return []opSpec{
		{"*", []string{"Int", "Int"}, "Int", 80, ast.AssocLeft, "mul"},
		{"/", []string{"Int", "Int"}, "Int", 80, ast.AssocLeft, "sdiv"},
		{"%", []string{"Int", "Int"}, "Int", 80, ast.AssocLeft, "srem"},
		{"+", []string{"Int", "Int"}, "Int", 60, ast.AssocLeft, "add"},
		{"-", []string{"Int", "Int"}, "Int", 60, ast.AssocLeft, "sub"},
		{"+", []string{"Int"}, "Int", 95, ast.AssocRight, "prefix"},
		{"-", []string{"Int"}, "Int", 95, ast.AssocRight, "prefix"},
		{"==", []string{"Int", "Int"}, "Bool", 50, ast.AssocLeft, "icmp eq"},
		{"!=", []string{"Int", "Int"}, "Bool", 50, ast.AssocLeft, "icmp ne"},
		{"<", []string{"Int", "Int"}, "Bool", 50, ast.AssocLeft, "icmp slt"},
		{">", []string{"Int", "Int"}, "Bool", 50, ast.AssocLeft, "icmp sgt"},
		{"<=", []string{"Int", "Int"}, "Bool", 50, ast.AssocLeft, "icmp sle"},
		{">=", []string{"Int", "Int"}, "Bool", 50, ast.AssocLeft, "icmp sge"},
		{"and", []string{"Bool", "Bool"}, "Bool", 40, ast.AssocLeft, "and"},
		{"or", []string{"Bool", "Bool"}, "Bool", 30, ast.AssocLeft, "or"},
		{"not", []string{"Bool"}, "Bool", 95, ast.AssocRight, "xor 1"},
	}
}

var paramLetters = []string{"a", "b"}

func operators() []ast.Member {
	specs := operatorSpecs()
	members := make([]ast.Member, 0, len(specs))
	for _, s := range specs {
		members = append(members, operatorBnd(s))
	}
	return members
}

// operatorBnd builds one stdlib operator: a Bnd whose mangled name,
// precedence and associativity exactly mirror what a user `op`
// declaration would produce (spec §3.2, §4.3), so the expression
// rewriter never needs to special-case a builtin operator.
func operatorBnd(s opSpec) *ast.Bnd {
	arityN := len(s.paramTypes)
	mangled := parser.MangleOperatorName(s.name, arityN)

	params := make([]*ast.FnParam, arityN)
	for i, typeName := range s.paramTypes {
		params[i] = &ast.FnParam{
			ID:       synthID("param." + mangled + "." + paramLetters[i]),
			Name:     paramLetters[i],
			TypeAsc:  typeRef(typeName),
			Source:   ast.OriginSynth,
			NodeSpan: span.Invalid,
		}
	}

	arity := ast.Unary
	if arityN == 2 {
		arity = ast.Binary
	}

	body := &ast.Expr{Terms: []ast.Term{&ast.NativeImpl{MemEffectKind: ast.NoAlloc, Template: s.template, NodeSpan: span.Invalid}}, NodeSpan: span.Invalid}
	lambda := &ast.Lambda{Params: params, Body: body, TypeAsc: typeRef(s.ret), NodeSpan: span.Invalid}

	return &ast.Bnd{
		ID:         synthID("bnd." + mangled),
		Name:       mangled,
		Value:      &ast.Expr{Terms: []ast.Term{lambda}, NodeSpan: span.Invalid},
		Source:     ast.OriginSynth,
		Visibility: ast.Public,
		Meta: &ast.BindingMeta{
			Origin:        ast.Operator,
			Arity:         arity,
			ArityN:        arityN,
			Precedence:    s.precedence,
			Associativity: s.assoc,
			OriginalName:  s.name,
			MangledName:   mangled,
		},
		NodeSpan: span.Invalid,
	}
}

type paramSpec struct {
	name     string
	typeName string
}

// builtinSpec is one of the seven fixed runtime functions (spec §4.3).
// Functions returning a heap-allocated String carry mem_effect=Alloc,
// which OwnershipAnalyzer later treats as producing an Owned result
// (spec §4.14 rule 1).
type builtinSpec struct {
	name      string
	params    []paramSpec
	ret       string
	memEffect ast.MemEffect
}

func builtinSpecs() []builtinSpec {
	return []builtinSpec{
		{"print", []paramSpec{{"s", "String"}}, "Unit", ast.NoAlloc},
		{"println", []paramSpec{{"s", "String"}}, "Unit", ast.NoAlloc},
		{"mml_sys_flush", nil, "Unit", ast.NoAlloc},
		{"readline", nil, "String", ast.Alloc},
		{"concat", []paramSpec{{"a", "String"}, {"b", "String"}}, "String", ast.Alloc},
		{"to_string", []paramSpec{{"n", "Int"}}, "String", ast.Alloc},
		{"str_to_int", []paramSpec{{"s", "String"}}, "Int", ast.NoAlloc},
	}
}

func builtins() []ast.Member {
	specs := builtinSpecs()
	members := make([]ast.Member, 0, len(specs))
	for _, s := range specs {
		members = append(members, builtinBnd(s))
	}
	return members
}

func builtinBnd(s builtinSpec) *ast.Bnd {
	params := make([]*ast.FnParam, len(s.params))
	for i, p := range s.params {
		params[i] = &ast.FnParam{
			ID:       synthID("param." + s.name + "." + p.name),
			Name:     p.name,
			TypeAsc:  typeRef(p.typeName),
			Source:   ast.OriginSynth,
			NodeSpan: span.Invalid,
		}
	}

	arity := ast.Nullary
	switch len(params) {
	case 1:
		arity = ast.Unary
	case 2:
		arity = ast.Binary
	}

	body := &ast.Expr{Terms: []ast.Term{&ast.NativeImpl{MemEffectKind: s.memEffect, Template: s.name, NodeSpan: span.Invalid}}, NodeSpan: span.Invalid}
	lambda := &ast.Lambda{Params: params, Body: body, TypeAsc: typeRef(s.ret), NodeSpan: span.Invalid}

	return &ast.Bnd{
		ID:         synthID("bnd." + s.name),
		Name:       s.name,
		Value:      &ast.Expr{Terms: []ast.Term{lambda}, NodeSpan: span.Invalid},
		Source:     ast.OriginSynth,
		Visibility: ast.Public,
		Meta: &ast.BindingMeta{
			Origin:       ast.Function,
			Arity:        arity,
			ArityN:       len(params),
			OriginalName: s.name,
			MangledName:  s.name,
		},
		NodeSpan: span.Invalid,
	}
}
