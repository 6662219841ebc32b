// Package ast is the MinnieML AST algebra: closed tagged variants for
// modules, declarations, expressions, and types, plus the stable-ID /
// ResolvablesIndex soft-reference mechanism that lets later phases
// rewrite nodes without dangling pointers (spec §3, §3.5, §9).
package ast

import "github.com/minnieml-lang/mml/internal/span"

// Node is implemented by every AST node.
type Node interface {
	Span() span.Span
}

// Origin distinguishes source-derived nodes from compiler-synthesized
// ones (spec §3.7, §8 property 2).
type Origin int

const (
	// OriginUser marks a node parsed directly from source text.
	OriginUser Origin = iota
	// OriginSynth marks a node injected or synthesized by a semantic
	// phase (stdlib prelude, memory helpers, witness booleans, ...).
	OriginSynth
)

// ID is a stable, module-unique identifier for a Resolvable node (spec
// §3.5, Invariant B). Synthetic members carry IDs under the "stdlib::"
// (prelude) or "memfuncs::" (memory helpers) prefix (Invariant C).
type ID string

// Resolvable is any node that owns a stable ID and can be the target of
// a Ref or TypeRef (spec §3.5).
type Resolvable interface {
	Node
	ResolvableID() ID
	SetResolvableID(ID)
	ResolvableKind() string
}

// Module is the root of one compiled source file (spec §3.2).
type Module struct {
	Name       string
	Visibility Visibility
	Members    []Member // order is significant; never reordered by phases
	DocComment string
	SourcePath string
	Resolvables *ResolvablesIndex
	NodeSpan   span.Span
}

func (m *Module) Span() span.Span { return m.NodeSpan }

// Visibility is the exported/private flag carried by every declaration.
type Visibility int

const (
	Public Visibility = iota
	Private
)

// Member is the closed tagged variant for top-level declarations (spec
// §3.2): Bnd | TypeDef | TypeAlias | TypeStruct | DuplicateMember |
// InvalidMember | ParsingMemberError | ParsingIdError.
type Member interface {
	Node
	memberNode()
}

// Bnd is the single unified form for value bindings, functions, and
// operators (spec §3.2).
type Bnd struct {
	ID         ID
	Name       string // mangled name; see BindingMeta.OriginalName for surface spelling
	Value      *Expr  // sole term, for callables, is a *Lambda
	TypeAsc    Type   // declared ascription, optional
	TypeSpec   Type   // computed type, filled by TypeChecker
	Meta       *BindingMeta
	DocComment string
	Visibility Visibility
	Source     Origin
	NodeSpan   span.Span
}

func (b *Bnd) Span() span.Span          { return b.NodeSpan }
func (b *Bnd) memberNode()              {}
func (b *Bnd) ResolvableID() ID         { return b.ID }
func (b *Bnd) SetResolvableID(id ID)    { b.ID = id }
func (b *Bnd) ResolvableKind() string   { return "Bnd" }

// BindingOrigin classifies what kind of callable (if any) a Bnd is.
type BindingOrigin int

const (
	NotCallable BindingOrigin = iota
	Function
	Operator
	Constructor
	Destructor
)

// Arity describes how many parameters a callable Bnd declares.
type Arity int

const (
	Nullary Arity = iota
	Unary
	Binary
	Nary // N > 2; see ArityN
)

// Associativity is the tie-break rule used by the expression rewriter
// for operators sharing a precedence level.
type Associativity int

const (
	AssocNone Associativity = iota
	AssocLeft
	AssocRight
)

// FunctionPrecedence is the sentinel precedence used by the expression
// rewriter for juxtaposition (function application), strictly greater
// than any user operator precedence (spec §4.3, §4.8).
const FunctionPrecedence = 101

// BindingMeta is per-callable metadata (spec §3.2).
type BindingMeta struct {
	Origin        BindingOrigin
	Arity         Arity
	ArityN        int // populated when Arity == Nary
	Precedence    int
	Associativity Associativity
	OriginalName  string // surface spelling, e.g. "-"
	MangledName   string // e.g. "op.minus.1"
}

// Lambda is the callable body form: a sequence of parameters plus a
// body expression (spec §3.2).
type Lambda struct {
	Params          []*FnParam
	Body            *Expr
	TypeAsc         Type
	TypeSpec        Type
	IsTailRecursive bool
	NodeSpan        span.Span
}

func (l *Lambda) Span() span.Span { return l.NodeSpan }
func (l *Lambda) termNode()        {}

// FnParam is one lambda parameter.
type FnParam struct {
	ID         ID
	Name       string
	TypeAsc    Type
	TypeSpec   Type
	Consuming  bool // declared with `~`
	Source     Origin
	NodeSpan   span.Span
}

func (p *FnParam) Span() span.Span        { return p.NodeSpan }
func (p *FnParam) ResolvableID() ID       { return p.ID }
func (p *FnParam) SetResolvableID(id ID)  { p.ID = id }
func (p *FnParam) ResolvableKind() string { return "FnParam" }

// TypeDef names a new nominal type, almost always an @native
// declaration (spec §3.2). Two TypeDefs with identical underlying LLVM
// representation are distinct; compatibility is by identity.
type TypeDef struct {
	ID         ID
	Name       string
	Underlying Type // always a NativePrimitive | NativePointer | NativeStruct
	DocComment string
	Visibility Visibility
	Source     Origin
	NodeSpan   span.Span
}

func (t *TypeDef) Span() span.Span         { return t.NodeSpan }
func (t *TypeDef) memberNode()             {}
func (t *TypeDef) ResolvableID() ID        { return t.ID }
func (t *TypeDef) SetResolvableID(id ID)   { t.ID = id }
func (t *TypeDef) ResolvableKind() string  { return "TypeDef" }

// TypeAlias names an existing type expression; after TypeResolver its
// TypeSpec holds the canonical (alias-chain-collapsed) form (spec
// §3.2, §4.6).
type TypeAlias struct {
	ID         ID
	Name       string
	Target     Type // as written
	TypeSpec   Type // canonical form, filled by TypeResolver
	DocComment string
	Visibility Visibility
	Source     Origin
	NodeSpan   span.Span
}

func (t *TypeAlias) Span() span.Span        { return t.NodeSpan }
func (t *TypeAlias) memberNode()             {}
func (t *TypeAlias) ResolvableID() ID        { return t.ID }
func (t *TypeAlias) SetResolvableID(id ID)   { t.ID = id }
func (t *TypeAlias) ResolvableKind() string  { return "TypeAlias" }

// TypeStruct is a user struct with ordered named fields; the
// declaration and each field are separately Resolvable (spec §3.2).
type TypeStruct struct {
	ID         ID
	Name       string
	Fields     []*Field
	DocComment string
	Visibility Visibility
	Source     Origin
	NodeSpan   span.Span
}

func (t *TypeStruct) Span() span.Span        { return t.NodeSpan }
func (t *TypeStruct) memberNode()             {}
func (t *TypeStruct) typeNode()               {}
func (t *TypeStruct) ResolvableID() ID        { return t.ID }
func (t *TypeStruct) SetResolvableID(id ID)   { t.ID = id }
func (t *TypeStruct) ResolvableKind() string  { return "TypeStruct" }

// Field is one struct field.
type Field struct {
	ID       ID
	Name     string
	TypeAsc  Type
	TypeSpec Type
	NodeSpan span.Span
}

func (f *Field) Span() span.Span        { return f.NodeSpan }
func (f *Field) ResolvableID() ID        { return f.ID }
func (f *Field) SetResolvableID(id ID)   { f.ID = id }
func (f *Field) ResolvableKind() string  { return "Field" }

// DuplicateMember wraps a member that lost a (name, kind, arity)
// collision to an earlier declaration (spec §4.4).
type DuplicateMember struct {
	Original Member
	NodeSpan span.Span
}

func (d *DuplicateMember) Span() span.Span { return d.NodeSpan }
func (d *DuplicateMember) memberNode()     {}

// InvalidMember wraps a member a phase could not make sense of (e.g.
// duplicate parameter names within one lambda, spec §4.4).
type InvalidMember struct {
	Reason   string
	Original Member
	NodeSpan span.Span
}

func (i *InvalidMember) Span() span.Span { return i.NodeSpan }
func (i *InvalidMember) memberNode()     {}

// ParsingMemberError is emitted by the parser for a malformed member;
// parsing resumes at the next plausible member boundary (spec §4.2).
type ParsingMemberError struct {
	FailedCode string
	Message    string
	NodeSpan   span.Span
}

func (p *ParsingMemberError) Span() span.Span { return p.NodeSpan }
func (p *ParsingMemberError) memberNode()     {}

// ParsingIdError is emitted for an invalid identifier lexeme (e.g.
// "123invalid"), preserving the offending text (spec §4.2).
type ParsingIdError struct {
	InvalidID string
	Message   string
	NodeSpan  span.Span
}

func (p *ParsingIdError) Span() span.Span { return p.NodeSpan }
func (p *ParsingIdError) memberNode()     {}
