// Package span implements the source location model shared by every
// later phase: a 1-based line/column point and a half-open range over
// the source text built from two such points.
package span

import "fmt"

// Point is a 1-based, user-facing source location.
type Point struct {
	Line int
	Col  int
}

// Valid reports whether both coordinates are at least 1.
func (p Point) Valid() bool { return p.Line >= 1 && p.Col >= 1 }

func (p Point) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Less orders points by line then column, for sorting diagnostics.
func (p Point) Less(o Point) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Col < o.Col
}

// Span is a half-open range [Start, End) over the source text. End is
// the first column not part of the token it describes.
type Span struct {
	Start Point
	End   Point
}

// Valid reports whether all four coordinates are at least 1. Invalid
// spans mark synthetic nodes that have no corresponding source text.
func (s Span) Valid() bool { return s.Start.Valid() && s.End.Valid() }

func (s Span) String() string { return fmt.Sprintf("%s-%s", s.Start, s.End) }

// Invalid is the zero-value span used for synthesized nodes.
var Invalid = Span{}

// Of builds a span from four raw coordinates, a small convenience used
// throughout the lexer and parser.
func Of(startLine, startCol, endLine, endCol int) Span {
	return Span{Start: Point{Line: startLine, Col: startCol}, End: Point{Line: endLine, Col: endCol}}
}
