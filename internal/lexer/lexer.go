// Package lexer splits host-language source, and the embedded statements
// in it, into tokens that keep their byte offsets so the parser can copy
// untouched text to the output verbatim.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/esqlpp/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number

	// sql switches quoting and comment rules to those of embedded
	// statements: '...' is a string with '' as the escaped quote, and
	// "--" starts a comment.
	sql bool
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// SetSQL selects statement rules for the tokens read from now on.
func (l *Lexer) SetSQL(on bool) {
	l.sql = on
}

// InSQL reports whether statement rules are active.
func (l *Lexer) InSQL() bool {
	return l.sql
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// PeekToken returns the next token without consuming it.
func (l *Lexer) PeekToken() token.Token {
	saved := *l
	tok := l.NextToken()
	*l = saved
	return tok
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	start, line, col := l.position, l.line, l.column
	mk := func(tt token.TokenType) token.Token {
		return token.Token{Type: tt, Lexeme: l.input[start:l.position], Offset: start, Line: line, Column: col}
	}

	if l.atEOF() {
		return token.Token{Type: token.EOF, Offset: len(l.input), Line: line, Column: col}
	}

	switch l.ch {
	case '{':
		l.readChar()
		return mk(token.LBRACE)
	case '}':
		l.readChar()
		return mk(token.RBRACE)
	case '(':
		l.readChar()
		return mk(token.LPAREN)
	case ')':
		l.readChar()
		return mk(token.RPAREN)
	case '[':
		l.readChar()
		return mk(token.LBRACKET)
	case ']':
		l.readChar()
		return mk(token.RBRACKET)
	case ';':
		l.readChar()
		return mk(token.SEMI)
	case ',':
		l.readChar()
		return mk(token.COMMA)
	case ':':
		l.readChar()
		return mk(token.COLON)
	case '*':
		l.readChar()
		return mk(token.ASTERISK)
	case '&':
		l.readChar()
		return mk(token.AMP)
	case '=':
		l.readChar()
		return mk(token.ASSIGN)
	case '-':
		l.readChar()
		if l.ch == '>' {
			l.readChar()
			return mk(token.ARROW)
		}
		return mk(token.OTHER)
	case '.':
		if isDigit(l.peekChar()) {
			l.readNumber()
			return mk(token.NUMBER)
		}
		l.readChar()
		if l.ch == '.' && l.peekChar() == '.' {
			l.readChar()
			l.readChar()
			return mk(token.OTHER)
		}
		return mk(token.DOT)
	case '"':
		if !l.readQuoted('"', true) {
			return mk(token.ILLEGAL)
		}
		return mk(token.STRING)
	case '\'':
		if l.sql {
			if !l.readQuoted('\'', false) {
				return mk(token.ILLEGAL)
			}
			return mk(token.STRING)
		}
		if !l.readQuoted('\'', true) {
			return mk(token.ILLEGAL)
		}
		return mk(token.CHAR)
	case '#':
		if l.sql {
			l.readChar()
			return mk(token.OTHER)
		}
		l.readDirective()
		return mk(token.DIRECTIVE)
	}

	switch {
	case isLetter(l.ch):
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return mk(token.IDENT)
	case isDigit(l.ch):
		l.readNumber()
		return mk(token.NUMBER)
	}

	l.readChar()
	return mk(token.OTHER)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEOF() {
		switch {
		case unicode.IsSpace(l.ch):
			l.readChar()
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for !l.atEOF() && !(l.ch == '*' && l.peekChar() == '/') {
				l.readChar()
			}
			if !l.atEOF() {
				l.readChar()
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '/',
			l.sql && l.ch == '-' && l.peekChar() == '-':
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

// readQuoted consumes a literal delimited by quote. With backslash set a
// backslash escapes the next character; otherwise a doubled quote stands
// for one. It reports false for a literal left open at end of input.
func (l *Lexer) readQuoted(quote rune, backslash bool) bool {
	l.readChar()
	for {
		if l.atEOF() {
			return false
		}
		switch {
		case backslash && l.ch == '\\':
			l.readChar()
			if l.atEOF() {
				return false
			}
			l.readChar()
		case l.ch == quote:
			l.readChar()
			if !backslash && l.ch == quote {
				l.readChar()
				continue
			}
			return true
		default:
			l.readChar()
		}
	}
}

// readDirective consumes a preprocessor line, including continuations.
func (l *Lexer) readDirective() {
	for !l.atEOF() && l.ch != '\n' {
		if l.ch == '\\' && l.peekChar() == '\n' {
			l.readChar()
		}
		l.readChar()
	}
}

func (l *Lexer) readNumber() {
	for isDigit(l.ch) || isLetter(l.ch) || l.ch == '.' {
		if (l.ch == 'e' || l.ch == 'E' || l.ch == 'p' || l.ch == 'P') &&
			(l.peekChar() == '+' || l.peekChar() == '-') {
			l.readChar()
		}
		l.readChar()
	}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

// Tokenize returns every token of input up to and including EOF.
func Tokenize(input string) []token.Token {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}
