package parser

import (
	"fmt"
	"strings"
)

// operatorWords gives each symbolic operator rune a readable word so
// mangled names stay legible (spec §9: "Operator names are mangled
// into Bnd.name... while BindingMeta.originalName preserves the
// surface spelling").
var operatorWords = map[rune]string{
	'=': "eq", '!': "bang", '#': "hash", '$': "dollar", '%': "percent",
	'^': "caret", '&': "amp", '*': "star", '+': "plus", '<': "lt",
	'>': "gt", '?': "query", '/': "slash", '\\': "bslash", '|': "pipe",
	'~': "tilde", '-': "minus",
}

// MangleOperatorName produces the namespace-safe Bnd.Name for an
// operator, distinguishing unary from binary so `-` can be declared
// twice (spec §4.4's "permitted overload"). Exported so the stdlib
// injector mangles its own operator names the same way user-declared
// operators are mangled, keeping both in one namespace.
func MangleOperatorName(original string, arity int) string {
	var sb strings.Builder
	sb.WriteString("op.")
	for _, r := range original {
		if w, ok := operatorWords[r]; ok {
			sb.WriteString(w)
			continue
		}
		if isAlphaOperatorRune(r) {
			sb.WriteRune(r)
			continue
		}
		fmt.Fprintf(&sb, "x%x", r)
	}
	fmt.Fprintf(&sb, ".%d", arity)
	return sb.String()
}

func isAlphaOperatorRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
