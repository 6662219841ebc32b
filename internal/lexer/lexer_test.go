package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `let x = 5 + 10;
fn add(a: Int, b: Int): Int = a + b;
if x > 10 then "big" else "small";
struct Point { x: Int, y: Int };
@native[t=i64]
???
_
~s
and or not
true false ()
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{LET, "let"},
		{IDENT, "x"},
		{ASSIGN, "="},
		{INT, "5"},
		{OPIDENT, "+"},
		{INT, "10"},
		{SEMI, ";"},

		{FN, "fn"},
		{IDENT, "add"},
		{LPAREN, "("},
		{IDENT, "a"},
		{COLON, ":"},
		{TYIDENT, "Int"},
		{COMMA, ","},
		{IDENT, "b"},
		{COLON, ":"},
		{TYIDENT, "Int"},
		{RPAREN, ")"},
		{COLON, ":"},
		{TYIDENT, "Int"},
		{ASSIGN, "="},
		{IDENT, "a"},
		{OPIDENT, "+"},
		{IDENT, "b"},
		{SEMI, ";"},

		{IF, "if"},
		{IDENT, "x"},
		{OPIDENT, ">"},
		{INT, "10"},
		{THEN, "then"},
		{STRING, "big"},
		{ELSE, "else"},
		{STRING, "small"},
		{SEMI, ";"},

		{STRUCT, "struct"},
		{TYIDENT, "Point"},
		{LBRACE, "{"},
		{IDENT, "x"},
		{COLON, ":"},
		{TYIDENT, "Int"},
		{COMMA, ","},
		{IDENT, "y"},
		{COLON, ":"},
		{TYIDENT, "Int"},
		{RBRACE, "}"},
		{SEMI, ";"},

		{NATIVE, "@native"},
		{LBRACKET, "["},
		{IDENT, "t"},
		{ASSIGN, "="},
		{IDENT, "i64"},
		{RBRACKET, "]"},

		{HOLE, "???"},
		{PLACEHOLDER, "_"},
		{TILDE, "~"},
		{IDENT, "s"},

		{OPIDENT, "and"},
		{OPIDENT, "or"},
		{OPIDENT, "not"},

		{TRUE, "true"},
		{FALSE, "false"},
		{UNIT, "()"},

		{EOF, ""},
	}

	l := New(input)
	for i, want := range tests {
		tok := l.NextToken()
		if tok.Type != want.expectedType {
			t.Fatalf("test[%d] - wrong type. want=%s, got=%s (literal %q)", i, want.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != want.expectedLiteral {
			t.Fatalf("test[%d] - wrong literal. want=%q, got=%q", i, want.expectedLiteral, tok.Literal)
		}
	}
}

func TestLineComment(t *testing.T) {
	l := New("let x = 1; # trailing comment\nlet y = 2;")
	var kinds []TokenType
	for {
		tok := l.NextToken()
		kinds = append(kinds, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	if len(kinds) != 11 {
		t.Fatalf("expected 11 tokens (incl EOF), got %d: %v", len(kinds), kinds)
	}
}

func TestNestedBlockDocComment(t *testing.T) {
	l := New("#- outer #- inner -# still outer -#\nlet x = 1;")
	doc, ok := l.TakePendingDoc()
	if ok {
		t.Fatalf("doc should not be pending before first token is requested, got %q", doc)
	}
	tok := l.NextToken()
	if tok.Type != LET {
		t.Fatalf("expected LET, got %s", tok.Type)
	}
	doc, ok = l.TakePendingDoc()
	if !ok {
		t.Fatal("expected a pending doc comment attached to the let")
	}
	if doc != "outer #- inner -# still outer" {
		t.Fatalf("unexpected doc text: %q", doc)
	}
}

func TestUnclosedBlockCommentFailsModule(t *testing.T) {
	l := New("#- never closed\nlet x = 1;")
	l.NextToken()
	if !l.UnclosedComment() {
		t.Fatal("expected UnclosedComment() to report true")
	}
}

func TestUnaryVsBinaryMinusLexAsSameOperator(t *testing.T) {
	// Arity disambiguation is a parser/semantic concern (spec §4.4); the
	// lexer just produces one OPIDENT token for "-" regardless of position.
	l := New("-1 - 1")
	var lits []string
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		lits = append(lits, tok.Literal)
	}
	want := []string{"-", "1", "-", "1"}
	if len(lits) != len(want) {
		t.Fatalf("want %v, got %v", want, lits)
	}
	for i := range want {
		if lits[i] != want[i] {
			t.Fatalf("want %v, got %v", want, lits)
		}
	}
}
