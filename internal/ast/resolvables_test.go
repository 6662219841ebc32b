package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnieml-lang/mml/internal/span"
)

func TestResolvablesIndexInsertAndLookup(t *testing.T) {
	idx := NewResolvablesIndex()
	bnd := &Bnd{ID: "v1", Name: "x", NodeSpan: span.Of(1, 1, 1, 5)}
	idx.Insert(bnd)

	got, ok := idx.Lookup(ValueSpace, "v1")
	require.True(t, ok)
	assert.Same(t, bnd, got)

	_, ok = idx.Lookup(TypeSpace, "v1")
	assert.False(t, ok, "a value-space ID must not resolve in type-space")
}

func TestResolvablesIndexSeparatesNamespaces(t *testing.T) {
	idx := NewResolvablesIndex()
	idx.Insert(&Bnd{ID: "shared", Name: "Point", NodeSpan: span.Invalid})
	idx.Insert(&TypeStruct{ID: "shared", Name: "Point", NodeSpan: span.Invalid})

	assert.Equal(t, 1, idx.Len(ValueSpace))
	assert.Equal(t, 1, idx.Len(TypeSpace))
}

func TestRebuildWalksNestedLambdaParams(t *testing.T) {
	param := &FnParam{ID: "p1", Name: "a", NodeSpan: span.Invalid}
	fn := &Bnd{
		ID:   "b1",
		Name: "identity",
		Value: &Expr{
			Terms: []Term{
				&Lambda{
					Params: []*FnParam{param},
					Body: &Expr{
						Terms: []Term{&Ref{Name: "a"}},
					},
				},
			},
		},
	}
	module := &Module{Name: "m", Members: []Member{fn}}

	idx := Rebuild(module)

	_, ok := idx.Lookup(ValueSpace, "b1")
	require.True(t, ok)
	_, ok = idx.Lookup(ValueSpace, "p1")
	require.True(t, ok, "lambda params must be reachable after Rebuild")
}

func TestRebuildDropsStaleEntries(t *testing.T) {
	module := &Module{Name: "m", Members: []Member{
		&Bnd{ID: "b1", Name: "kept"},
	}}
	idx := Rebuild(module)
	require.Equal(t, 1, idx.Len(ValueSpace))

	module.Members = []Member{}
	idx = Rebuild(module)
	assert.Equal(t, 0, idx.Len(ValueSpace), "removed members must not survive a rebuild")
}
