package token

import "fmt"

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT  TokenType = "IDENT"
	NUMBER TokenType = "NUMBER"
	STRING TokenType = "STRING" // "..."
	CHAR   TokenType = "CHAR"   // '...'

	DIRECTIVE TokenType = "DIRECTIVE" // # line, up to end of line

	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"
	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"
	SEMI     TokenType = ";"
	COMMA    TokenType = ","
	COLON    TokenType = ":"
	ASTERISK TokenType = "*"
	AMP      TokenType = "&"
	DOT      TokenType = "."
	ARROW    TokenType = "->"
	ASSIGN   TokenType = "="
	OTHER    TokenType = "OTHER" // any other operator character
)

type Token struct {
	Type   TokenType
	Lexeme string
	Offset int // byte offset of the first character
	Line   int
	Column int
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Lexeme)
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

// Is reports whether the token is the identifier kw, compared without case.
func (t Token) Is(kw string) bool {
	if t.Type != IDENT || len(t.Lexeme) != len(kw) {
		return false
	}
	for i := 0; i < len(kw); i++ {
		a, b := t.Lexeme[i], kw[i]
		if 'a' <= a && a <= 'z' {
			a -= 'a' - 'A'
		}
		if 'a' <= b && b <= 'z' {
			b -= 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}
