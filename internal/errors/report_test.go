package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnieml-lang/mml/internal/span"
)

func TestReportToJSONIncludesCodeAndSchema(t *testing.T) {
	r := New(NAM001, "names", "undefined reference \"foo\"", span.Of(3, 1, 3, 10)).
		WithData(map[string]any{"name": "foo"}).
		WithFix("rename one of the two declarations", 0.7)

	out, err := r.ToJSON(true)
	require.NoError(t, err)
	assert.Contains(t, out, `"code":"NAM001"`)
	assert.Contains(t, out, `"schema":"mml.error/v1"`)
}

func TestWrapReportAndAsReportRoundTrip(t *testing.T) {
	r := New(OWN001, "ownership", "use after move", span.Invalid)
	err := WrapReport(r)

	got, ok := AsReport(err)
	require.True(t, ok)
	assert.Equal(t, r, got)
}

func TestAsReportRejectsPlainErrors(t *testing.T) {
	_, ok := AsReport(assert.AnError)
	assert.False(t, ok)
}
