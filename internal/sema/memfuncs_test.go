package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnieml-lang/mml/internal/ast"
	"github.com/minnieml-lang/mml/internal/parser"
	"github.com/minnieml-lang/mml/internal/stdlib"
)

func runToMemFuncs(t *testing.T, src string) *ast.Module {
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
	return m
}

func TestMemFuncsGeneratesFreeAndCloneForStdlibString(t *testing.T) {
	m := runToMemFuncs(t, `let result: Int = 1;`)
	assert.NotNil(t, findBndByName(m, "__free_String"))
	assert.NotNil(t, findBndByName(m, "__clone_String"))
}

func TestMemFuncsGeneratesForStructContainingHeapField(t *testing.T) {
	m := runToMemFuncs(t, `struct Greeting { text: String, count: Int };`)

	free := findBndByName(m, "__free_Greeting")
	require.NotNil(t, free)
	lambda := free.Value.Terms[0].(*ast.Lambda)
	assert.True(t, lambda.Params[0].Consuming)
	app, ok := lambda.Body.Terms[0].(*ast.App)
	require.True(t, ok, "single heap field should need no LocalLet sequencing")
	callee := app.Fn.(*ast.Ref)
	assert.Equal(t, "__free_String", callee.Name)

	clone := findBndByName(m, "__clone_Greeting")
	require.NotNil(t, clone)
}

func TestMemFuncsSkipsStructWithNoHeapFields(t *testing.T) {
	m := runToMemFuncs(t, `struct Point { x: Int, y: Int };`)
	assert.Nil(t, findBndByName(m, "__free_Point"))
	assert.Nil(t, findBndByName(m, "__clone_Point"))
}

func TestMemFuncsSequencesMultipleHeapFieldsWithLocalLet(t *testing.T) {
	m := runToMemFuncs(t, `struct Pair { a: String, b: String };`)
	free := findBndByName(m, "__free_Pair")
	require.NotNil(t, free)
	lambda := free.Value.Terms[0].(*ast.Lambda)
	_, ok := lambda.Body.Terms[0].(*ast.LocalLet)
	assert.True(t, ok, "two heap fields should chain through a LocalLet")
}

func TestMemFuncsTransitiveHeapStruct(t *testing.T) {
	m := runToMemFuncs(t, `struct Inner { s: String }; struct Outer { inner: Inner };`)
	assert.NotNil(t, findBndByName(m, "__free_Inner"))
	assert.NotNil(t, findBndByName(m, "__free_Outer"), "Outer contains Inner, which contains a heap field")
}
