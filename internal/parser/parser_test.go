package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnieml-lang/mml/internal/ast"
)

func TestParseLetFlatExpression(t *testing.T) {
	// spec E1: flat term sequence, no precedence applied by the parser.
	m, errs := Parse(`let c = a + b * 3;`, "m")
	require.Empty(t, errs)
	require.Len(t, m.Members, 1)

	bnd, ok := m.Members[0].(*ast.Bnd)
	require.True(t, ok)
	assert.Equal(t, "c", bnd.Name)
	require.Len(t, bnd.Value.Terms, 5)

	ref0, ok := bnd.Value.Terms[0].(*ast.Ref)
	require.True(t, ok)
	assert.Equal(t, "a", ref0.Name)
	ref1, ok := bnd.Value.Terms[1].(*ast.Ref)
	require.True(t, ok)
	assert.Equal(t, "+", ref1.Name)
}

func TestParseOperatorDeclarationMetaAndMangling(t *testing.T) {
	m, errs := Parse(`op -(a: Int): Int 95 right = ???;`, "m")
	require.Empty(t, errs)
	require.Len(t, m.Members, 1)

	bnd := m.Members[0].(*ast.Bnd)
	assert.Equal(t, MangleOperatorName("-", 1), bnd.Name)
	require.NotNil(t, bnd.Meta)
	assert.Equal(t, ast.Operator, bnd.Meta.Origin)
	assert.Equal(t, ast.Unary, bnd.Meta.Arity)
	assert.Equal(t, 95, bnd.Meta.Precedence)
	assert.Equal(t, ast.AssocRight, bnd.Meta.Associativity)
	assert.Equal(t, "-", bnd.Meta.OriginalName)
}

func TestParseUnaryAndBinaryMinusCoexist(t *testing.T) {
	// spec E2
	m, errs := Parse(`op -(a: Int): Int 95 right = ???; op -(a: Int, b: Int): Int 60 left = ???;`, "m")
	require.Empty(t, errs)
	require.Len(t, m.Members, 2)

	unary := m.Members[0].(*ast.Bnd)
	binary := m.Members[1].(*ast.Bnd)
	assert.NotEqual(t, unary.Name, binary.Name, "unary and binary '-' must mangle to distinct names")
}

func TestParseStructMember(t *testing.T) {
	m, errs := Parse(`struct Point { x: Int, y: Int };`, "m")
	require.Empty(t, errs)
	require.Len(t, m.Members, 2)

	st := m.Members[0].(*ast.TypeStruct)
	assert.Equal(t, "Point", st.Name)
	require.Len(t, st.Fields, 2)
	assert.Equal(t, "x", st.Fields[0].Name)

	ctor := m.Members[1].(*ast.Bnd)
	assert.Equal(t, "__mk_Point", ctor.Name)
	require.NotNil(t, ctor.Meta)
	assert.Equal(t, ast.Constructor, ctor.Meta.Origin)
	assert.Equal(t, ast.Binary, ctor.Meta.Arity)
}

func TestParseEmptyStructIsMemberError(t *testing.T) {
	m, errs := Parse(`struct Empty { };`, "m")
	require.NotEmpty(t, errs)
	require.Len(t, m.Members, 1)
	_, ok := m.Members[0].(*ast.ParsingMemberError)
	assert.True(t, ok)
}

func TestParseRecoversFromMissingSemicolon(t *testing.T) {
	// spec E7
	m, errs := Parse("let ooopsie = \"missing semicolon\"\n\nlet finally: String = \"done\";", "m")
	require.NotEmpty(t, errs)
	require.Len(t, m.Members, 2)

	_, ok := m.Members[0].(*ast.ParsingMemberError)
	assert.True(t, ok)

	bnd, ok := m.Members[1].(*ast.Bnd)
	require.True(t, ok)
	assert.Equal(t, "finally", bnd.Name)
}

func TestParseConditional(t *testing.T) {
	m, errs := Parse(`let x = if true then 1 else 2;`, "m")
	require.Empty(t, errs)
	bnd := m.Members[0].(*ast.Bnd)
	require.Len(t, bnd.Value.Terms, 1)
	cond, ok := bnd.Value.Terms[0].(*ast.Cond)
	require.True(t, ok)
	assert.NotNil(t, cond.Guard)
	assert.NotNil(t, cond.Then)
	assert.NotNil(t, cond.Else)
}

func TestParseNativeFunctionBody(t *testing.T) {
	m, errs := Parse(`fn consume(~s: String): Unit = @native;`, "m")
	require.Empty(t, errs)
	bnd := m.Members[0].(*ast.Bnd)
	lambda := bnd.Value.Terms[0].(*ast.Lambda)
	require.Len(t, lambda.Params, 1)
	assert.True(t, lambda.Params[0].Consuming)
	_, ok := lambda.Body.Terms[0].(*ast.NativeImpl)
	assert.True(t, ok)
}

func TestParseTermGroupVsTuple(t *testing.T) {
	m, errs := Parse(`let a = (1); let b = (1, 2);`, "m")
	require.Empty(t, errs)

	bndA := m.Members[0].(*ast.Bnd)
	_, isGroup := bndA.Value.Terms[0].(*ast.TermGroup)
	assert.True(t, isGroup)

	bndB := m.Members[1].(*ast.Bnd)
	_, isTuple := bndB.Value.Terms[0].(*ast.Tuple)
	assert.True(t, isTuple)
}

func TestParseQualifiedReference(t *testing.T) {
	m, errs := Parse(`let x = p.field;`, "m")
	require.Empty(t, errs)
	bnd := m.Members[0].(*ast.Bnd)
	ref := bnd.Value.Terms[0].(*ast.Ref)
	assert.Equal(t, "p", ref.Name)
	assert.Equal(t, "field", ref.Qualifier)
}

func TestUnclosedBlockCommentFailsModule(t *testing.T) {
	_, errs := Parse("#- never closed\nlet x = 1;", "m")
	require.NotEmpty(t, errs)
}
