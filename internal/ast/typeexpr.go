package ast

import "github.com/minnieml-lang/mml/internal/span"

// Type is the closed tagged variant for type expressions (spec §3.4):
// TypeRef | NativePrimitive | NativePointer | NativeStruct | TypeFn |
// TypeTuple | TypeStruct | TypeApplication | TypeOpenRecord | Union |
// Intersection | TypeGroup | TypeVariable | TypeScheme | TypeUnit |
// TypeRefinement | InvalidType.
//
// TypeStruct is shared with the Member algebra: a struct declaration is
// simultaneously a Member (the declaration site) and a Type (any
// occurrence referencing it after TypeResolver substitutes the
// reference for the TypeRef that named it).
type Type interface {
	Node
	typeNode()
}

// TypeRef names a type by identifier before resolution substitutes in
// the resolved Type (spec §3.4, §4.6).
type TypeRef struct {
	Name         string
	Qualifier    string
	ResolvedID   ID
	HasResolved  bool
	CandidateIDs []ID
	NodeSpan     span.Span
}

func (t *TypeRef) Span() span.Span { return t.NodeSpan }
func (t *TypeRef) typeNode()       {}

// NativePrimitive is an @native scalar type, carrying its LLVM
// representation (spec §3.4, §4.11), e.g. Int -> i64.
type NativePrimitive struct {
	LLVMType string
	NodeSpan span.Span
}

func (n *NativePrimitive) Span() span.Span { return n.NodeSpan }
func (n *NativePrimitive) typeNode()       {}

// NativePointer is an @native pointer type.
type NativePointer struct {
	PointeeLLVMType string
	NodeSpan        span.Span
}

func (n *NativePointer) Span() span.Span { return n.NodeSpan }
func (n *NativePointer) typeNode()       {}

// NativeStruct is an @native struct literal shape; FieldOrder is
// significant for LLVM layout (spec §4.11).
type NativeStruct struct {
	FieldOrder []string
	FieldMap   map[string]Type
	NodeSpan   span.Span
}

func (n *NativeStruct) Span() span.Span { return n.NodeSpan }
func (n *NativeStruct) typeNode()       {}

// TypeFn is a function type, curried one parameter at a time to match
// Lambda/App (spec §3.4).
type TypeFn struct {
	Param    Type
	Result   Type
	NodeSpan span.Span
}

func (t *TypeFn) Span() span.Span { return t.NodeSpan }
func (t *TypeFn) typeNode()       {}

// TypeTuple is the type of a Tuple term.
type TypeTuple struct {
	Elements []Type
	NodeSpan span.Span
}

func (t *TypeTuple) Span() span.Span { return t.NodeSpan }
func (t *TypeTuple) typeNode()       {}

// TypeApplication applies a type constructor to arguments; the AST
// carries this shape for forward compatibility with generics but the
// monomorphic TypeChecker rejects any TypeApplication it has to solve
// (spec §1 Non-goals, §3.4).
type TypeApplication struct {
	Constructor Type
	Args        []Type
	NodeSpan    span.Span
}

func (t *TypeApplication) Span() span.Span { return t.NodeSpan }
func (t *TypeApplication) typeNode()       {}

// TypeOpenRecord is a structurally-typed open record `{ name: Type, ... }`
// as used for stdlib shape constraints (spec §3.4).
type TypeOpenRecord struct {
	Fields   map[string]Type
	NodeSpan span.Span
}

func (t *TypeOpenRecord) Span() span.Span { return t.NodeSpan }
func (t *TypeOpenRecord) typeNode()       {}

// Union is `A | B | ...`.
type Union struct {
	Members  []Type
	NodeSpan span.Span
}

func (u *Union) Span() span.Span { return u.NodeSpan }
func (u *Union) typeNode()       {}

// Intersection is `A & B & ...`.
type Intersection struct {
	Members  []Type
	NodeSpan span.Span
}

func (i *Intersection) Span() span.Span { return i.NodeSpan }
func (i *Intersection) typeNode()       {}

// TypeGroup is a parenthesized type expression, kept distinct so
// printers/diagnostics can reproduce the source grouping.
type TypeGroup struct {
	Inner    Type
	NodeSpan span.Span
}

func (t *TypeGroup) Span() span.Span { return t.NodeSpan }
func (t *TypeGroup) typeNode()       {}

// TypeVariable is an unbound type variable; reserved in the AST for
// generics but never solved by this TypeChecker (spec §1 Non-goals).
type TypeVariable struct {
	Name     string
	NodeSpan span.Span
}

func (t *TypeVariable) Span() span.Span { return t.NodeSpan }
func (t *TypeVariable) typeNode()       {}

// TypeScheme is a quantified type, `forall a. ...`; reserved, unused by
// the monomorphic checker (spec §1 Non-goals).
type TypeScheme struct {
	Vars     []string
	Body     Type
	NodeSpan span.Span
}

func (t *TypeScheme) Span() span.Span { return t.NodeSpan }
func (t *TypeScheme) typeNode()       {}

// TypeUnit is the type of (), the sole value of that type.
type TypeUnit struct {
	NodeSpan span.Span
}

func (t *TypeUnit) Span() span.Span { return t.NodeSpan }
func (t *TypeUnit) typeNode()       {}

// TypeRefinement attaches a predicate to a base type, `{ x: Int | x > 0 }`
// style; the predicate is carried but never discharged by this
// TypeChecker (spec §3.4, §1 Non-goals).
type TypeRefinement struct {
	Base      Type
	Predicate *Expr
	NodeSpan  span.Span
}

func (t *TypeRefinement) Span() span.Span { return t.NodeSpan }
func (t *TypeRefinement) typeNode()       {}

// InvalidType wraps a type expression a phase rejected, keeping the
// original around for diagnostics (spec §3.6, §7).
type InvalidType struct {
	Reason   string
	Original Type
	NodeSpan span.Span
}

func (t *InvalidType) Span() span.Span { return t.NodeSpan }
func (t *InvalidType) typeNode()       {}
