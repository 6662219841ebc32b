package ast

import "github.com/minnieml-lang/mml/internal/span"

// Term is the closed tagged variant for expression terms (spec §3.3):
// Ref | App | Lambda | Cond | TermGroup | Tuple | Expr | LiteralInt |
// LiteralFloat | LiteralString | LiteralBool | LiteralUnit |
// Placeholder | Hole | DataConstructor | DataDestructor | NativeImpl |
// InvalidExpression | TermError.
type Term interface {
	Node
	termNode()
}

// Expr holds an ordered sequence of terms. Before ExpressionRewriter
// runs this is a flat juxtaposition (e.g. `a + b * c` is five Refs: three
// operands interleaved with two operators); afterwards it is usually a single App or
// Ref tree. Expr is itself a Term so it can nest (spec §3.3).
type Expr struct {
	Terms    []Term
	TypeAsc  Type
	TypeSpec Type
	NodeSpan span.Span
}

func (e *Expr) Span() span.Span { return e.NodeSpan }
func (e *Expr) termNode()       {}

// Ref is a reference to a value by name, resolved against lexical
// scopes by RefResolver (spec §3.3, §4.7).
type Ref struct {
	Name         string
	Qualifier    string // non-empty for `a.b` selection, resolved during type checking
	ResolvedID   ID
	HasResolved  bool
	CandidateIDs []ID // resolution trace, retained for diagnostics/LSP
	TypeAsc      Type
	TypeSpec     Type
	NodeSpan     span.Span
}

func (r *Ref) Span() span.Span { return r.NodeSpan }
func (r *Ref) termNode()       {}

// App is a single-argument application; multi-argument calls are
// nested curried Apps (spec §3.3, §9 "Curried App"). Fn is syntactically
// restricted to Ref | App | Lambda.
type App struct {
	Fn       Term
	Arg      Term
	NodeSpan span.Span
}

func (a *App) Span() span.Span { return a.NodeSpan }
func (a *App) termNode()       {}

// Cond is `if c then a else b`.
type Cond struct {
	Guard    *Expr
	Then     *Expr
	Else     *Expr
	TypeSpec Type
	NodeSpan span.Span
}

func (c *Cond) Span() span.Span { return c.NodeSpan }
func (c *Cond) termNode()       {}

// TermGroup is a parenthesized sub-expression with exactly one element
// (spec §4.2: "a one-element parenthesization is a TermGroup, not a
// tuple").
type TermGroup struct {
	Inner    *Expr
	NodeSpan span.Span
}

func (g *TermGroup) Span() span.Span { return g.NodeSpan }
func (g *TermGroup) termNode()       {}

// Tuple is `(e1, e2, ...)` with at least two elements.
type Tuple struct {
	Elements []*Expr
	NodeSpan span.Span
}

func (t *Tuple) Span() span.Span { return t.NodeSpan }
func (t *Tuple) termNode()       {}

// LiteralKind tags a Literal* node's payload type.
type LiteralKind int

const (
	KindInt LiteralKind = iota
	KindFloat
	KindString
	KindBool
	KindUnit
)

// LiteralInt is an integer literal, `[0-9]+`.
type LiteralInt struct {
	Value    string // preserved verbatim; codegen parses the base-10 digits
	NodeSpan span.Span
}

func (l *LiteralInt) Span() span.Span { return l.NodeSpan }
func (l *LiteralInt) termNode()       {}

// LiteralFloat is a float literal, `[0-9]+\.[0-9]+ | \.[0-9]+`.
type LiteralFloat struct {
	Value    string
	NodeSpan span.Span
}

func (l *LiteralFloat) Span() span.Span { return l.NodeSpan }
func (l *LiteralFloat) termNode()       {}

// LiteralString is a string literal. No escape decoding happens at
// parse time (spec §4.1); the raw text between quotes, including
// embedded newlines, is preserved verbatim.
type LiteralString struct {
	Value    string
	NodeSpan span.Span
}

func (l *LiteralString) Span() span.Span { return l.NodeSpan }
func (l *LiteralString) termNode()       {}

// LiteralBool is `true` or `false`.
type LiteralBool struct {
	Value    bool
	NodeSpan span.Span
}

func (l *LiteralBool) Span() span.Span { return l.NodeSpan }
func (l *LiteralBool) termNode()       {}

// LiteralUnit is `()`.
type LiteralUnit struct {
	NodeSpan span.Span
}

func (l *LiteralUnit) Span() span.Span { return l.NodeSpan }
func (l *LiteralUnit) termNode()       {}

// Placeholder is `_` used where a name is syntactically required but
// semantically unused.
type Placeholder struct {
	NodeSpan span.Span
}

func (p *Placeholder) Span() span.Span { return p.NodeSpan }
func (p *Placeholder) termNode()       {}

// Hole is `???`; it requires an expected type from its context (spec
// §4.10).
type Hole struct {
	TypeSpec Type
	NodeSpan span.Span
}

func (h *Hole) Span() span.Span { return h.NodeSpan }
func (h *Hole) termNode()       {}

// LocalLet is a synthesized sequencing step, `let name = value; body`,
// used to chain more than one effectful call inside a single
// synthesized Lambda body (spec §4.11 multi-field free/clone bodies,
// §4.14 step 8 free insertion). The parser never produces one — MML
// source-level function bodies are a single expression — so this
// exists purely as a rewrite target for later phases, mirroring the
// teacher's own Core IR `Let` shape. A discarded step (no binding
// needed, called only for effect) uses Name "_".
type LocalLet struct {
	Name     string
	Value    *Expr
	Body     *Expr
	NodeSpan span.Span
}

func (l *LocalLet) Span() span.Span { return l.NodeSpan }
func (l *LocalLet) termNode()       {}

// DataConstructor is the body sentinel for a synthesized
// `__mk_<Struct>` lambda; it tells codegen to emit struct assembly
// (spec §3.3, §4.11).
type DataConstructor struct {
	Struct   ID
	NodeSpan span.Span
}

func (d *DataConstructor) Span() span.Span { return d.NodeSpan }
func (d *DataConstructor) termNode()       {}

// DataDestructor is the body sentinel for a synthesized
// `__free_<Struct>` lambda.
type DataDestructor struct {
	Struct   ID
	NodeSpan span.Span
}

func (d *DataDestructor) Span() span.Span { return d.NodeSpan }
func (d *DataDestructor) termNode()       {}

// MemEffect classifies whether a native implementation allocates.
type MemEffect int

const (
	NoAlloc MemEffect = iota
	Alloc
	Static
)

// NativeImpl is the body marker for @native declarations (spec §3.3).
type NativeImpl struct {
	MemEffectKind MemEffect
	Template      string
	NodeSpan      span.Span
}

func (n *NativeImpl) Span() span.Span { return n.NodeSpan }
func (n *NativeImpl) termNode()       {}

// InvalidExpression wraps a term a phase could not resolve or type
// (spec §3.6, §7); the pipeline stays total by continuing past it.
type InvalidExpression struct {
	Reason   string
	Original Term
	NodeSpan span.Span
}

func (i *InvalidExpression) Span() span.Span { return i.NodeSpan }
func (i *InvalidExpression) termNode()       {}

// TermError is a parser-level placeholder for a term that failed to
// parse.
type TermError struct {
	Message  string
	NodeSpan span.Span
}

func (t *TermError) Span() span.Span { return t.NodeSpan }
func (t *TermError) termNode()       {}
