package parser

import "github.com/funvibe/esqlpp/internal/token"

// stream walks the tokens of one collected statement or declaration. Past
// the last token it yields an EOF token positioned at the terminator.
type stream struct {
	toks []token.Token
	pos  int
	end  token.Token

	curToken  token.Token
	peekToken token.Token
}

func newStream(toks []token.Token, terminator token.Token) *stream {
	s := &stream{
		toks: toks,
		end: token.Token{
			Type:   token.EOF,
			Offset: terminator.Offset,
			Line:   terminator.Line,
			Column: terminator.Column,
		},
	}
	s.seek(0)
	return s
}

func (s *stream) at(i int) token.Token {
	if i < len(s.toks) {
		return s.toks[i]
	}
	return s.end
}

func (s *stream) seek(i int) {
	s.pos = i
	s.curToken = s.at(i)
	s.peekToken = s.at(i + 1)
}

func (s *stream) nextToken() {
	s.seek(s.pos + 1)
}

func (s *stream) atEnd() bool {
	return s.pos >= len(s.toks)
}

func (s *stream) curTokenIs(t token.TokenType) bool {
	return s.curToken.Type == t
}

func (s *stream) peekTokenIs(t token.TokenType) bool {
	return s.peekToken.Type == t
}

// accept consumes the keyword kw if it is next.
func (s *stream) accept(kw string) bool {
	if s.curToken.Is(kw) {
		s.nextToken()
		return true
	}
	return false
}

// acceptType consumes a token of type t if it is next.
func (s *stream) acceptType(t token.TokenType) bool {
	if s.curTokenIs(t) {
		s.nextToken()
		return true
	}
	return false
}

// find returns the index of the first position at or after s.pos where
// the keywords kws follow one another, or -1.
func (s *stream) find(kws ...string) int {
	for i := s.pos; i+len(kws) <= len(s.toks); i++ {
		match := true
		for j, kw := range kws {
			if !s.toks[i+j].Is(kw) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// skipBalanced advances until one of stops appears outside any brackets,
// or an unmatched closing bracket, returning the first and last tokens
// skipped.
func (s *stream) skipBalanced(stops ...token.TokenType) (first, last token.Token, ok bool) {
	depth := 0
	for !s.atEnd() {
		if depth == 0 {
			for _, t := range stops {
				if s.curTokenIs(t) {
					return first, last, ok
				}
			}
		}
		switch s.curToken.Type {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			if depth == 0 {
				return first, last, ok
			}
			depth--
		}
		if !ok {
			first = s.curToken
			ok = true
		}
		last = s.curToken
		s.nextToken()
	}
	return first, last, ok
}
