package sema

import "github.com/minnieml-lang/mml/internal/ast"

// ReindexResolvables rebuilds m.Resolvables from the current member
// list (spec §4.12). It runs after MemoryFunctionGenerator has spliced
// in new Bnds and before TailRecursionDetector/OwnershipAnalyzer, both
// of which read the index to resolve a Ref back to its Bnd.
// MemoryFunctionGenerator appends its Bnds without touching the index,
// so this phase rebuilds it wholesale with ast.Rebuild rather than
// patching it; there is nothing else to do.
func ReindexResolvables(m *ast.Module) {
	m.Resolvables = ast.Rebuild(m)
}
