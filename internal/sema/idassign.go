package sema

import "github.com/minnieml-lang/mml/internal/ast"

// AssignIDs performs a deterministic pre-order walk over m.Members,
// minting a fresh stable ID for every Resolvable that doesn't already
// have one (stdlib members already carry their `stdlib::`-prefixed IDs
// and are left untouched), then populates m.Resolvables from the
// result (spec §4.5). Idempotent: a second run finds every ID already
// set and assigns nothing new.
func AssignIDs(m *ast.Module) {
	for i, mem := range m.Members {
		assignMember(m.SourcePath, mem, []int{i})
	}
	m.Resolvables = ast.Rebuild(m)
	linkConstructors(m)
}

// linkConstructors fills in DataConstructor.Struct for every
// __mk_<Struct> synthesized at parse time, now that the struct itself
// has a stable ID (spec §4.11). The constructor Bnd and its TypeStruct
// are matched by name, the same way RefResolver matches a Ref to its
// module-scope declaration.
func linkConstructors(m *ast.Module) {
	structIDs := make(map[string]ast.ID)
	for _, mem := range m.Members {
		if ts, ok := mem.(*ast.TypeStruct); ok {
			structIDs[ts.Name] = ts.ID
		}
	}
	for _, mem := range m.Members {
		bnd, ok := mem.(*ast.Bnd)
		if !ok || bnd.Meta == nil || bnd.Meta.Origin != ast.Constructor {
			continue
		}
		id, ok := structIDs[bnd.Meta.OriginalName]
		if !ok || bnd.Value == nil || len(bnd.Value.Terms) == 0 {
			continue
		}
		lambda, ok := bnd.Value.Terms[0].(*ast.Lambda)
		if !ok || lambda.Body == nil || len(lambda.Body.Terms) == 0 {
			continue
		}
		if ctor, ok := lambda.Body.Terms[0].(*ast.DataConstructor); ok {
			ctor.Struct = id
		}
	}
}

// offsetOf derives the (start, end) integer pair NewStableID hashes
// over. Spans are line/col pairs, not byte offsets, so this folds each
// point into one comparable int; it only needs to be stable and
// distinct per source position, not a true byte offset.
func offsetOf(p ast.Node) (int, int) {
	sp := p.Span()
	return offset(sp.Start.Line, sp.Start.Col), offset(sp.End.Line, sp.End.Col)
}

func offset(line, col int) int { return line*100000 + col }

func assignIfEmpty(r ast.Resolvable, sourcePath string, path []int) {
	if r.ResolvableID() != "" {
		return
	}
	start, end := offsetOf(r)
	r.SetResolvableID(ast.NewStableID(sourcePath, start, end, r.ResolvableKind(), path))
}

func assignMember(sourcePath string, mem ast.Member, path []int) {
	switch n := mem.(type) {
	case *ast.Bnd:
		assignIfEmpty(n, sourcePath, path)
		if n.Value != nil {
			assignExpr(sourcePath, n.Value, append(path, 0))
		}
	case *ast.TypeDef:
		assignIfEmpty(n, sourcePath, path)
	case *ast.TypeAlias:
		assignIfEmpty(n, sourcePath, path)
	case *ast.TypeStruct:
		assignIfEmpty(n, sourcePath, path)
		for i, f := range n.Fields {
			assignIfEmpty(f, sourcePath, append(path, i))
		}
	}
}

func assignExpr(sourcePath string, e *ast.Expr, path []int) {
	if e == nil {
		return
	}
	for i, t := range e.Terms {
		assignTerm(sourcePath, t, append(path, i))
	}
}

func assignTerm(sourcePath string, t ast.Term, path []int) {
	switch n := t.(type) {
	case *ast.Lambda:
		for i, p := range n.Params {
			assignIfEmpty(p, sourcePath, append(path, i))
		}
		assignExpr(sourcePath, n.Body, append(path, len(n.Params)))
	case *ast.App:
		assignTerm(sourcePath, n.Fn, append(path, 0))
		assignTerm(sourcePath, n.Arg, append(path, 1))
	case *ast.Cond:
		assignExpr(sourcePath, n.Guard, append(path, 0))
		assignExpr(sourcePath, n.Then, append(path, 1))
		assignExpr(sourcePath, n.Else, append(path, 2))
	case *ast.TermGroup:
		assignExpr(sourcePath, n.Inner, append(path, 0))
	case *ast.Tuple:
		for i, el := range n.Elements {
			assignExpr(sourcePath, el, append(path, i))
		}
	case *ast.Expr:
		assignExpr(sourcePath, n, path)
	}
}
