package ast

import "github.com/minnieml-lang/mml/internal/sid"

// ResolvablesIndex is the soft-reference table backing every Ref and
// TypeRef in a Module (spec §3.5). IDs are computed once by IdAssigner
// and never reused, so phases can carry a Ref's ResolvedID across
// rewrites without holding a language-level pointer into a tree that
// gets replaced wholesale.
//
// Value-space (Bnd, FnParam, Field) and type-space (TypeDef, TypeAlias,
// TypeStruct) are kept in separate maps because a Bnd and a TypeDef are
// permitted to share a surface name (spec §3.5, §4.4: duplicate
// detection runs per-namespace).
type ResolvablesIndex struct {
	values map[ID]Resolvable
	types  map[ID]Resolvable
}

// NewResolvablesIndex returns an empty index.
func NewResolvablesIndex() *ResolvablesIndex {
	return &ResolvablesIndex{
		values: make(map[ID]Resolvable),
		types:  make(map[ID]Resolvable),
	}
}

// Namespace selects which of the two ID spaces a Resolvable kind lives
// in (spec §3.5).
type Namespace int

const (
	ValueSpace Namespace = iota
	TypeSpace
)

func namespaceOf(kind string) Namespace {
	switch kind {
	case "TypeDef", "TypeAlias", "TypeStruct":
		return TypeSpace
	default:
		return ValueSpace
	}
}

func (idx *ResolvablesIndex) space(ns Namespace) map[ID]Resolvable {
	if ns == TypeSpace {
		return idx.types
	}
	return idx.values
}

// NewStableID derives a fresh, stable ID for a node at the given
// source position and tree path (spec §3.5, Invariant B: an ID, once
// minted for a given source occurrence, never changes value across
// phases even as the node itself is replaced).
func NewStableID(sourcePath string, start, end int, kind string, childPath []int) ID {
	return ID(sid.NewSID(sourcePath, start, end, kind, childPath))
}

// NewSynthID builds the reserved-prefix ID carried by compiler-injected
// Resolvables (spec §3.5 Invariant C: "Synthetic injected members carry
// IDs with a reserved prefix, e.g. stdlib::..."). Unlike NewStableID
// this never hashes a source span — a synthesized node has none — so
// the prefix plus a caller-chosen unique tag is the whole identity.
func NewSynthID(prefix, tag string) ID {
	return ID(prefix + "::" + tag)
}

// Insert registers r under its own ResolvableID, upholding Invariant C
// (uniqueness): inserting a second Resolvable under an ID already
// present in the same namespace is a programming error in the phase
// calling Insert, since IdAssigner mints IDs before any Insert happens.
func (idx *ResolvablesIndex) Insert(r Resolvable) {
	ns := namespaceOf(r.ResolvableKind())
	idx.space(ns)[r.ResolvableID()] = r
}

// Lookup finds a Resolvable by ID in the given namespace.
func (idx *ResolvablesIndex) Lookup(ns Namespace, id ID) (Resolvable, bool) {
	r, ok := idx.space(ns)[id]
	return r, ok
}

// Remove deletes an entry, used when a phase discards a node (e.g. a
// DuplicateMember's losing Bnd is dropped from the index it was
// provisionally inserted into).
func (idx *ResolvablesIndex) Remove(ns Namespace, id ID) {
	delete(idx.space(ns), id)
}

// Len reports how many entries are tracked in a namespace, mainly for
// tests asserting Invariant A (freshness: every Resolvable reachable
// from Module.Members has exactly one entry).
func (idx *ResolvablesIndex) Len(ns Namespace) int {
	return len(idx.space(ns))
}

// Rebuild walks m.Members and replaces the index contents with exactly
// the Resolvables currently reachable from the tree (spec §3.5,
// Invariant A). AssignIDs builds the index this way, and
// ReindexResolvables rebuilds it after MemoryFunctionGenerator has
// appended its Bnds; neither patches the index incrementally, which
// would be easy to get wrong as nodes are spliced in and out.
func Rebuild(m *Module) *ResolvablesIndex {
	idx := NewResolvablesIndex()
	for _, mem := range m.Members {
		indexMember(idx, mem)
	}
	return idx
}

func indexMember(idx *ResolvablesIndex, mem Member) {
	switch n := mem.(type) {
	case *Bnd:
		idx.Insert(n)
		if n.Value != nil {
			indexExpr(idx, n.Value)
		}
	case *TypeDef:
		idx.Insert(n)
	case *TypeAlias:
		idx.Insert(n)
	case *TypeStruct:
		idx.Insert(n)
		for _, f := range n.Fields {
			idx.Insert(f)
		}
	}
}

func indexExpr(idx *ResolvablesIndex, e *Expr) {
	if e == nil {
		return
	}
	for _, t := range e.Terms {
		indexTerm(idx, t)
	}
}

func indexTerm(idx *ResolvablesIndex, t Term) {
	switch n := t.(type) {
	case *Lambda:
		for _, p := range n.Params {
			idx.Insert(p)
		}
		indexExpr(idx, n.Body)
	case *App:
		indexTerm(idx, n.Fn)
		indexTerm(idx, n.Arg)
	case *Cond:
		indexExpr(idx, n.Guard)
		indexExpr(idx, n.Then)
		indexExpr(idx, n.Else)
	case *TermGroup:
		indexExpr(idx, n.Inner)
	case *Tuple:
		for _, el := range n.Elements {
			indexExpr(idx, el)
		}
	case *LocalLet:
		indexExpr(idx, n.Value)
		indexExpr(idx, n.Body)
	case *Expr:
		indexExpr(idx, n)
	}
}
