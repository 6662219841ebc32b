package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/errors"
	"github.com/minnieml-lang/mml/internal/parser"
	"github.com/minnieml-lang/mml/internal/stdlib"
)

func runToOwnership(t *testing.T, src string) (*ast.Module, []*errors.Report) {
	t.Helper()
	m, errs := parser.Parse(src, "m")
	require.Empty(t, errs)
	stdlib.Inject(m)
	AssignIDs(m)
	require.Empty(t, CheckDuplicateNames(m))
	require.Empty(t, ResolveRefs(m))
	require.Empty(t, ResolveTypes(m))
	require.Empty(t, RewriteExpressions(m))
	require.Empty(t, SimplifyExpressions(m))
	require.Empty(t, CheckTypes(m))
	require.Empty(t, GenerateMemoryFunctions(m))
	ReindexResolvables(m)
	DetectTailRecursion(m)
	return m, AnalyzeOwnership(m)
}

func hasCode(reports []*errors.Report, code string) bool {
	for _, r := range reports {
		if r.Code == code {
			return true
		}
	}
	return false
}

func TestOwnershipFreesConsumingParamAtScopeEnd(t *testing.T) {
	m, reports := runToOwnership(t, `fn consume(~s: String): Unit = println s;`)
	assert.Empty(t, reports)

	bnd := findBndByName(m, "consume")
	require.NotNil(t, bnd)
	lambda := bnd.Value.Terms[0].(*ast.Lambda)
	let, ok := lambda.Body.Terms[0].(*ast.LocalLet)
	require.True(t, ok, "an owned parameter never moved must be freed at scope end")
	call := let.Value.Terms[0].(*ast.App)
	callee := call.Fn.(*ast.Ref)
	assert.Equal(t, "__free_String", callee.Name)
	arg := call.Arg.(*ast.Ref)
	assert.Equal(t, "s", arg.Name)
}

func TestOwnershipMovedParamIsNotFreedAgain(t *testing.T) {
	m, reports := runToOwnership(t, `
fn eat(~s: String): Unit = @native;
fn forward(~s: String): Unit = eat s;
`)
	assert.Empty(t, reports)

	bnd := findBndByName(m, "forward")
	require.NotNil(t, bnd)
	lambda := bnd.Value.Terms[0].(*ast.Lambda)
	_, isLet := lambda.Body.Terms[0].(*ast.LocalLet)
	assert.False(t, isLet, "s was moved into eat, so no free should be inserted")
}

func TestOwnershipConsumingParamTwiceReportsNotLastUse(t *testing.T) {
	_, reports := runToOwnership(t, `
fn combine(~a: String, ~b: String): Unit = @native;
fn dup(~s: String): Unit = combine s s;
`)
	assert.True(t, hasCode(reports, errors.OWN002))
}

func TestOwnershipReadAfterMoveReportsUseAfterMove(t *testing.T) {
	_, reports := runToOwnership(t, `
fn mix(~a: String, b: String): Unit = @native;
fn dup(~s: String): Unit = mix s s;
`)
	assert.True(t, hasCode(reports, errors.OWN001))
}

func TestOwnershipPartialApplicationWithConsumingIsRejected(t *testing.T) {
	_, reports := runToOwnership(t, `
fn combine(~a: String, ~b: String): Unit = @native;
fn partial(~s: String): String -> Unit = combine s;
`)
	assert.True(t, hasCode(reports, errors.OWN003))
}

func TestOwnershipBorrowEscapeOnBareReturn(t *testing.T) {
	_, reports := runToOwnership(t, `fn identity(s: String): String = s;`)
	assert.True(t, hasCode(reports, errors.OWN005))
}

func TestOwnershipPromotesLiteralReturnToClone(t *testing.T) {
	m, reports := runToOwnership(t, `fn make(): String = "hi";`)
	assert.Empty(t, reports)

	bnd := findBndByName(m, "make")
	require.NotNil(t, bnd)
	lambda := bnd.Value.Terms[0].(*ast.Lambda)
	app, ok := lambda.Body.Terms[0].(*ast.App)
	require.True(t, ok, "a literal returned as a heap type must be cloned into an owned value")
	callee := app.Fn.(*ast.Ref)
	assert.Equal(t, "__clone_String", callee.Name)
}

func TestOwnershipReconcilesOwnedVsLiteralBranchesWithWitness(t *testing.T) {
	m, reports := runToOwnership(t, `fn pick(flag: Bool): String = if flag then readline () else "literal";`)
	assert.Empty(t, reports)

	bnd := findBndByName(m, "pick")
	require.NotNil(t, bnd)
	lambda := bnd.Value.Terms[0].(*ast.Lambda)
	witness, ok := lambda.Body.Terms[0].(*ast.LocalLet)
	require.True(t, ok, "branches disagreeing Owned vs Literal reconcile through a witness boolean")
	_, ok = witness.Body.Terms[0].(*ast.Cond)
	assert.True(t, ok)
}

func TestOwnershipReportsMismatchForIrreconcilableBranches(t *testing.T) {
	_, reports := runToOwnership(t, `fn pick(flag: Bool, s: String): String = if flag then readline () else s;`)
	assert.True(t, hasCode(reports, errors.OWN004))
}
