package parser

import (
	"strings"

	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/hostvar"
	"github.com/funvibe/esqlpp/internal/token"
)

// parseHostVariable parses the part of a host reference after ":":
//
//	var := "*" var | "&" var | primary { "." f | "->" f | "[" expr "]" }
//	primary := name | "(" var ")"
//
// A variable that fails to bind is still consumed and yields nil.
func (p *Parser) parseHostVariable(s *stream) *hostvar.HostVariable {
	switch {
	case s.curTokenIs(token.ASTERISK):
		s.nextToken()
		return p.binder.DerefPointer(p.parseHostVariable(s), false)

	case s.curTokenIs(token.AMP):
		s.nextToken()
		return p.binder.TakeAddress(p.parseHostVariable(s))
	}

	var v *hostvar.HostVariable
	switch {
	case s.curTokenIs(token.LPAREN):
		s.nextToken()
		v = p.parseHostVariable(s)
		if !s.acceptType(token.RPAREN) {
			p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "host variable")
			return nil
		}
		if v != nil {
			v.Wrap()
		}

	case s.curTokenIs(token.IDENT):
		v = p.binder.Bind(s.curToken.Lexeme)
		s.nextToken()

	default:
		p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "host variable")
		return nil
	}

	for {
		switch {
		case s.curTokenIs(token.DOT), s.curTokenIs(token.ARROW):
			indirect := s.curTokenIs(token.ARROW)
			s.nextToken()
			if !s.curTokenIs(token.IDENT) {
				p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "host variable")
				return nil
			}
			v = p.binder.DerefField(v, s.curToken.Lexeme, indirect)
			s.nextToken()

		case s.curTokenIs(token.LBRACKET):
			open := s.curToken
			s.nextToken()
			_, last, ok := s.skipBalanced(token.RBRACKET)
			if !s.curTokenIs(token.RBRACKET) {
				p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "subscript")
				return nil
			}
			index := ""
			if ok {
				index = strings.TrimSpace(p.src[open.End():last.End()])
			}
			s.nextToken()
			v = p.binder.DerefIndex(v, index)

		default:
			return v
		}
	}
}

// parseIndicator parses an optional "[INDICATOR] :ind" after a variable.
func (p *Parser) parseIndicator(s *stream) (ind *hostvar.HostVariable, present bool) {
	switch {
	case s.curToken.Is("INDICATOR") && s.peekTokenIs(token.COLON):
		s.nextToken()
		s.nextToken()
	case s.curTokenIs(token.COLON):
		s.nextToken()
	default:
		return nil, false
	}
	return p.parseHostVariable(s), true
}

// parseHostReference parses ":var [[INDICATOR] :ind]" and adds it to the
// active list. It returns the last reference added and how many were added.
func (p *Parser) parseHostReference(s *stream, structsAllowed bool) (*hostvar.HostRef, int) {
	if !s.acceptType(token.COLON) {
		p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "host variable list")
		return nil, 0
	}
	v := p.parseHostVariable(s)
	ind, present := p.parseIndicator(s)
	if present && ind == nil {
		return nil, 0
	}
	return p.binder.BindReference(v, ind, structsAllowed)
}

// parsePlainReference parses a single ":var" that may not carry an
// indicator: a statement text, a descriptor, an object.
func (p *Parser) parsePlainReference(s *stream) *hostvar.HostRef {
	if !s.acceptType(token.COLON) {
		p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "host variable")
		return nil
	}
	v := p.parseHostVariable(s)
	if _, present := p.parseIndicator(s); present {
		if v != nil {
			p.reporter.Report(diagnostics.ErrH013, v.Expr())
		}
		return nil
	}
	ref, _ := p.binder.BindReference(v, nil, false)
	return ref
}

// parseQuasiString parses a character string operand: a host variable or
// a literal. With names set a bare identifier is taken literally too.
func (p *Parser) parseQuasiString(s *stream, names bool) *hostvar.HostRef {
	var ref *hostvar.HostRef
	switch {
	case s.curTokenIs(token.COLON):
		ref = p.parsePlainReference(s)
	case s.curTokenIs(token.STRING):
		ref = p.binder.AddHostString(s.curToken.Lexeme)
		s.nextToken()
	case names && s.curTokenIs(token.IDENT):
		ref = p.binder.AddHostString(`"` + s.curToken.Lexeme + `"`)
		s.nextToken()
	default:
		p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "string operand")
		return nil
	}
	return p.binder.CheckType(ref, hostvar.StringKinds, hostvar.WantCharString)
}

// parseDescriptor parses ":d" naming a CUBRIDDA descriptor.
func (p *Parser) parseDescriptor(s *stream) *hostvar.HostRef {
	return p.binder.CheckType(p.parsePlainReference(s), hostvar.DescriptorKinds, hostvar.WantDescriptor)
}

// parseObject parses ":o" naming a DB_OBJECT pointer.
func (p *Parser) parseObject(s *stream) *hostvar.HostRef {
	return p.binder.CheckType(p.parsePlainReference(s), hostvar.ObjectKinds, hostvar.WantObject)
}

// parseRefList parses "DESCRIPTOR :d" or a comma-separated list of host
// references into the list for dir.
func (p *Parser) parseRefList(s *stream, dir hostvar.Direction) {
	p.binder.Gatherer.StartGathering(dir)
	if s.accept("DESCRIPTOR") {
		if p.parseDescriptor(s) != nil {
			p.binder.Gatherer.CollapseToDescriptor()
		}
		return
	}
	for {
		p.parseHostReference(s, true)
		if !s.acceptType(token.COMMA) {
			break
		}
	}
	p.binder.CheckList()
}
