package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/parser"
	"github.com/minnieml-lang/mml/internal/stdlib"
)

func pipelineThroughSimplifier(t *testing.T, src string) *ast.Bnd {
	t.Helper()
	m, errs := parser.Parse(src, "m")
	require.Empty(t, errs)
	stdlib.Inject(m)
	AssignIDs(m)
	require.Empty(t, CheckDuplicateNames(m))
	require.Empty(t, ResolveRefs(m))
	require.Empty(t, RewriteExpressions(m))
	require.Empty(t, SimplifyExpressions(m))

	var result *ast.Bnd
	for _, mem := range m.Members {
		if bnd, ok := mem.(*ast.Bnd); ok && bnd.Name == "result" {
			result = bnd
		}
	}
	require.NotNil(t, result)
	return result
}

func TestSimplifyCollapsesParenthesizedLiteral(t *testing.T) {
	bnd := pipelineThroughSimplifier(t, `let result = (1);`)
	require.Len(t, bnd.Value.Terms, 1)
	_, isLiteral := bnd.Value.Terms[0].(*ast.LiteralInt)
	assert.True(t, isLiteral, "TermGroup(Expr([lit])) should collapse to the literal")
}

func TestSimplifyCollapsesNestedParens(t *testing.T) {
	bnd := pipelineThroughSimplifier(t, `let result = ((1));`)
	require.Len(t, bnd.Value.Terms, 1)
	_, isLiteral := bnd.Value.Terms[0].(*ast.LiteralInt)
	assert.True(t, isLiteral, "doubly-nested parens should collapse all the way down")
}

func TestSimplifyKeepsConditionalBranchWrappers(t *testing.T) {
	bnd := pipelineThroughSimplifier(t, `let result = if true then 1 else 2;`)
	cond, ok := bnd.Value.Terms[0].(*ast.Cond)
	require.True(t, ok)
	require.NotNil(t, cond.Guard)
	require.NotNil(t, cond.Then)
	require.NotNil(t, cond.Else)
	_, isLiteral := cond.Then.Terms[0].(*ast.LiteralInt)
	assert.True(t, isLiteral)
}

func TestSimplifyCollapsesInsideApplicationArgument(t *testing.T) {
	bnd := pipelineThroughSimplifier(t, `let f = 1; let result = f (1);`)
	top, ok := bnd.Value.Terms[0].(*ast.App)
	require.True(t, ok)
	_, isLiteral := top.Arg.(*ast.LiteralInt)
	assert.True(t, isLiteral, "a parenthesized argument should collapse to the bare literal")
}
