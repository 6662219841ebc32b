package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/errors"
	"github.com/minnieml-lang/mml/internal/parser"
	"github.com/minnieml-lang/mml/internal/span"
	"github.com/minnieml-lang/mml/internal/stdlib"
)

// runToTypeCheck runs every phase through TypeChecker and returns the
// module plus whatever diagnostics TypeChecker itself produced (the
// stages before it are asserted clean so a test failure always points
// at type checking).
func runToTypeCheck(t *testing.T, src string) (*ast.Module, []*errors.Report) {
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
	return m, CheckTypes(m)
}

func findBnd(m *ast.Module, name string) *ast.Bnd {
	for _, mem := range m.Members {
		if bnd, ok := mem.(*ast.Bnd); ok && bnd.Name == name {
			return bnd
		}
	}
	return nil
}

func TestTypeCheckLetWithMatchingAscriptionPasses(t *testing.T) {
	_, reports := runToTypeCheck(t, `let result: Int = 1;`)
	assert.Empty(t, reports)
}

func TestTypeCheckLetWithMismatchedAscriptionFails(t *testing.T) {
	_, reports := runToTypeCheck(t, `let result: Bool = 1;`)
	require.NotEmpty(t, reports)
}

func TestTypeCheckFunctionMissingParamTypeFails(t *testing.T) {
	_, reports := runToTypeCheck(t, `fn f(a): Int = a;`)
	require.NotEmpty(t, reports)
}

func TestTypeCheckFunctionInfersReturnTypeFromBody(t *testing.T) {
	m, reports := runToTypeCheck(t, `fn f(a: Int) = a;`)
	require.Empty(t, reports)
	bnd := findBnd(m, "f")
	require.NotNil(t, bnd)
	lambda := bnd.Value.Terms[0].(*ast.Lambda)
	require.NotNil(t, lambda.TypeAsc)
	assert.Equal(t, "Int64", typeName(lambda.TypeAsc))
}

func TestTypeCheckSelfRecursiveFunctionRequiresReturnType(t *testing.T) {
	_, reports := runToTypeCheck(t, `fn f(a: Int) = f a;`)
	require.NotEmpty(t, reports)
}

func TestTypeCheckApplicationArgumentMismatchFails(t *testing.T) {
	_, reports := runToTypeCheck(t, `fn f(a: Int): Int = a; let result = f true;`)
	require.NotEmpty(t, reports)
}

func TestTypeCheckApplicationWellTypedPasses(t *testing.T) {
	_, reports := runToTypeCheck(t, `fn f(a: Int): Int = a; let result: Int = f 1;`)
	assert.Empty(t, reports)
}

func TestTypeCheckConditionalBranchMismatchFails(t *testing.T) {
	_, reports := runToTypeCheck(t, `let result = if true then 1 else false;`)
	require.NotEmpty(t, reports)
}

func TestTypeCheckConditionalMatchingBranchesPasses(t *testing.T) {
	_, reports := runToTypeCheck(t, `let result = if true then 1 else 2;`)
	assert.Empty(t, reports)
}

func TestTypeCheckStructConstructorApplicationPasses(t *testing.T) {
	_, reports := runToTypeCheck(t, `struct Point { x: Int, y: Int }; let result: Point = __mk_Point 1 2;`)
	assert.Empty(t, reports)
}

func hasCode(reports []*errors.Report, code string) bool {
	for _, r := range reports {
		if r.Code == code {
			return true
		}
	}
	return false
}

func TestTypeCheckOversaturatedApplicationFails(t *testing.T) {
	_, reports := runToTypeCheck(t, `fn f(a: Int): Int = a; let result = f 1 2;`)
	require.True(t, hasCode(reports, errors.OversaturatedApplication(0, 0, span.Invalid).Code))
}

func TestTypeCheckInvalidApplicationOfNonFunctionFails(t *testing.T) {
	_, reports := runToTypeCheck(t, `let x = 1; let result = x 1;`)
	require.True(t, hasCode(reports, errors.InvalidApplication("", "", span.Invalid).Code))
}

func TestTypeCheckSelectionOnStructFieldPasses(t *testing.T) {
	_, reports := runToTypeCheck(t, `struct Point { x: Int, y: Int }; fn getX(p: Point): Int = p.x;`)
	assert.Empty(t, reports)
}

func TestTypeCheckSelectionOnNonStructFails(t *testing.T) {
	_, reports := runToTypeCheck(t, `fn getX(p: Int): Int = p.x;`)
	require.True(t, hasCode(reports, errors.InvalidSelection("", span.Invalid).Code))
}

func TestTypeCheckSelectionOfUnknownFieldFails(t *testing.T) {
	_, reports := runToTypeCheck(t, `struct Point { x: Int, y: Int }; fn getZ(p: Point): Int = p.z;`)
	require.True(t, hasCode(reports, errors.UnknownField("", "", span.Invalid).Code))
}
