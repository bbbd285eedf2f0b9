package parser

import (
	"strings"

	"github.com/funvibe/esqlpp/internal/declare"
	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/hostvar"
	"github.com/funvibe/esqlpp/internal/token"
	"github.com/funvibe/esqlpp/internal/whenever"
)

// translateStatement dispatches on the statement's leading keywords. It
// reports whether a runtime block was written.
func (p *Parser) translateStatement(s *stream) bool {
	repeat := s.accept("REPEAT")

	switch {
	case s.curToken.Is("BEGIN") && s.peekToken.Is("DECLARE"):
		p.parseDeclareSection(s, true)
		return false
	case s.curToken.Is("END") && s.peekToken.Is("DECLARE"):
		p.parseDeclareSection(s, false)
		return false
	case s.curToken.Is("INCLUDE"):
		return p.parseInclude(s)
	case s.curToken.Is("WHENEVER"):
		p.parseWhenever(s)
		return false
	case s.curToken.Is("CONNECT"):
		return p.parseConnect(s)
	case s.curToken.Is("DISCONNECT"):
		return p.parseSimple(s, p.tr.Disconnect)
	case s.curToken.Is("COMMIT"):
		return p.parseSimple(s, p.tr.Commit)
	case s.curToken.Is("ROLLBACK"):
		return p.parseSimple(s, p.tr.Rollback)
	case s.curToken.Is("DECLARE"):
		p.parseDeclare(s)
		return false
	case s.curToken.Is("OPEN"):
		return p.parseOpen(s)
	case s.curToken.Is("FETCH") && s.peekToken.Is("OBJECT"):
		return p.parseFetchObject(s)
	case s.curToken.Is("FETCH"):
		return p.parseFetch(s)
	case s.curToken.Is("CLOSE"):
		return p.parseClose(s)
	case s.curToken.Is("PREPARE"):
		return p.parsePrepare(s)
	case s.curToken.Is("DESCRIBE") && s.peekToken.Is("OBJECT"):
		return p.parseDescribeObject(s)
	case s.curToken.Is("DESCRIBE"):
		return p.parseDescribe(s)
	case s.curToken.Is("EXECUTE") && s.peekToken.Is("IMMEDIATE"):
		return p.parseExecuteImmediate(s)
	case s.curToken.Is("EXECUTE"):
		return p.parseExecute(s)
	case s.curToken.Is("UPDATE") && s.peekToken.Is("OBJECT"):
		return p.parseUpdateObject(s, repeat)
	case s.curToken.Is("UPDATE"), s.curToken.Is("DELETE"):
		if at := s.find("WHERE", "CURRENT", "OF"); at >= 0 {
			return p.parsePositioned(s, at, repeat)
		}
	}
	return p.parseStatic(s, repeat)
}

// expectEnd reports anything left over after a fully parsed statement.
func (p *Parser) expectEnd(s *stream, what string) bool {
	if s.atEnd() {
		return true
	}
	p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), what)
	return false
}

func (p *Parser) expectKeyword(s *stream, kw, what string) bool {
	if s.accept(kw) {
		return true
	}
	p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), what)
	return false
}

func (p *Parser) expectName(s *stream, what string) (string, bool) {
	if !s.curTokenIs(token.IDENT) {
		p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), what)
		return "", false
	}
	name := s.curToken.Lexeme
	s.nextToken()
	return name, true
}

func (p *Parser) parseDeclareSection(s *stream, begin bool) {
	s.nextToken()
	if !p.expectKeyword(s, "DECLARE", "declare section") ||
		!p.expectKeyword(s, "SECTION", "declare section") ||
		!p.expectEnd(s, "declare section") {
		return
	}
	if begin == p.inDeclare {
		p.reporter.Report(diagnostics.ErrS001, "DECLARE SECTION", "declare section")
		return
	}
	p.inDeclare = begin
}

func (p *Parser) parseInclude(s *stream) bool {
	s.nextToken()
	if !p.expectKeyword(s, "SQLCA", "INCLUDE") || !p.expectEnd(s, "INCLUDE") {
		return false
	}
	p.tr.IncludeSQLCA()
	return false
}

func (p *Parser) parseWhenever(s *stream) {
	s.nextToken()

	var cond whenever.Condition
	switch {
	case s.accept("SQLWARNING"):
		cond = whenever.Warning
	case s.accept("SQLERROR"):
		cond = whenever.Error
	case s.curToken.Is("NOT") && s.peekToken.Is("FOUND"):
		s.nextToken()
		s.nextToken()
		cond = whenever.NotFound
	default:
		p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "WHENEVER")
		return
	}

	var action whenever.Action
	switch {
	case s.accept("CONTINUE"):
		action = whenever.Continue
	case s.accept("STOP"):
		action = whenever.Stop
	case s.accept("GOTO"):
		action = whenever.Goto
	case s.curToken.Is("GO") && s.peekToken.Is("TO"):
		s.nextToken()
		s.nextToken()
		action = whenever.Goto
	case s.accept("CALL"):
		action = whenever.Call
	default:
		p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "WHENEVER")
		return
	}

	name := ""
	if action == whenever.Goto || action == whenever.Call {
		s.acceptType(token.COLON)
		var ok bool
		if name, ok = p.expectName(s, "WHENEVER"); !ok {
			return
		}
	}
	if !p.expectEnd(s, "WHENEVER") {
		return
	}
	p.scopes.RegisterWhenever(cond, action, name)
}

func (p *Parser) parseConnect(s *stream) bool {
	s.nextToken()
	if !p.expectKeyword(s, "TO", "CONNECT") {
		return false
	}
	db := p.parseQuasiString(s, true)

	var user, password *hostvar.HostRef
	if s.accept("USER") {
		user = p.parseQuasiString(s, true)
		if s.curToken.Is("IDENTIFIED") && s.peekToken.Is("BY") {
			s.nextToken()
			s.nextToken()
			password = p.parseQuasiString(s, true)
		}
	}
	if !p.expectEnd(s, "CONNECT") || db == nil {
		return false
	}
	p.tr.Connect(db, user, password)
	return true
}

// parseSimple handles statements with no operands and an optional WORK.
func (p *Parser) parseSimple(s *stream, emit func()) bool {
	what := strings.ToUpper(s.curToken.Lexeme)
	s.nextToken()
	s.accept("WORK")
	if !p.expectEnd(s, what) {
		return false
	}
	emit()
	return true
}

// parseDeclare handles DECLARE c CURSOR FOR ... and DECLARE s STATEMENT.
func (p *Parser) parseDeclare(s *stream) {
	s.nextToken()
	name, ok := p.expectName(s, "DECLARE")
	if !ok {
		return
	}
	if s.accept("STATEMENT") {
		if p.expectEnd(s, "DECLARE") {
			p.scopes.NewStatement(name)
		}
		return
	}
	if !p.expectKeyword(s, "CURSOR", "DECLARE") || !p.expectKeyword(s, "FOR", "DECLARE CURSOR") {
		return
	}

	if s.curTokenIs(token.IDENT) && s.peekTokenIs(token.EOF) {
		p.scopes.NewCursor(name, "", p.scopes.NewStatement(s.curToken.Lexeme), nil)
		return
	}

	text := p.scanText(s, len(s.toks))
	g := p.binder.Gatherer
	g.StartGathering(hostvar.Input)
	p.binder.CheckList()
	p.scopes.NewCursor(name, text, nil, g.TakeAndDetach())
}

func (p *Parser) lookupCursor(s *stream, what string) *declare.Cursor {
	name, ok := p.expectName(s, what)
	if !ok {
		return nil
	}
	return p.scopes.LookupCursor(name)
}

func (p *Parser) parseOpen(s *stream) bool {
	s.nextToken()
	c := p.lookupCursor(s, "OPEN")

	readOnly, using := false, false
	for !s.atEnd() {
		switch {
		case s.curToken.Is("FOR") && s.peekToken.Is("READ"):
			s.nextToken()
			s.nextToken()
			if !p.expectKeyword(s, "ONLY", "OPEN") {
				return false
			}
			readOnly = true
		case s.accept("USING"):
			using = true
			p.parseRefList(s, hostvar.Input)
		default:
			p.expectEnd(s, "OPEN")
			return false
		}
	}
	if c == nil {
		return false
	}

	if c.IsStatic() {
		if using {
			p.reporter.Report(diagnostics.ErrS003, c.Name)
			return false
		}
		p.tr.OpenCursor(c.ID, c.Static, -1, readOnly, c.Refs)
		return true
	}
	p.tr.OpenCursor(c.ID, "", c.Dynamic.ID, readOnly, p.binder.Gatherer.Input())
	return true
}

func (p *Parser) parseFetch(s *stream) bool {
	s.nextToken()
	s.accept("NEXT")
	s.accept("FROM")
	c := p.lookupCursor(s, "FETCH")

	if s.accept("INTO") || s.accept("USING") {
		p.parseRefList(s, hostvar.Output)
	}
	if !p.expectEnd(s, "FETCH") || c == nil {
		return false
	}
	p.tr.FetchCursor(c.ID, p.binder.Gatherer.Output())
	return true
}

func (p *Parser) parseClose(s *stream) bool {
	s.nextToken()
	c := p.lookupCursor(s, "CLOSE")
	if !p.expectEnd(s, "CLOSE") || c == nil {
		return false
	}
	p.tr.CloseCursor(c.ID)
	return true
}

func (p *Parser) parsePrepare(s *stream) bool {
	s.nextToken()
	name, ok := p.expectName(s, "PREPARE")
	if !ok || !p.expectKeyword(s, "FROM", "PREPARE") {
		return false
	}
	ref := p.parseQuasiString(s, false)
	if !p.expectEnd(s, "PREPARE") || ref == nil {
		return false
	}
	p.tr.Prepare(p.scopes.NewStatement(name).ID, ref)
	return true
}

// parseDescriptorClause parses "INTO [DESCRIPTOR] :d".
func (p *Parser) parseDescriptorClause(s *stream, what string) *hostvar.HostRef {
	if !p.expectKeyword(s, "INTO", what) {
		return nil
	}
	s.accept("DESCRIPTOR")
	return p.parseDescriptor(s)
}

func (p *Parser) parseDescribe(s *stream) bool {
	s.nextToken()
	name, ok := p.expectName(s, "DESCRIBE")
	if !ok {
		return false
	}
	desc := p.parseDescriptorClause(s, "DESCRIBE")
	if !p.expectEnd(s, "DESCRIBE") || desc == nil {
		return false
	}
	p.tr.Describe(p.scopes.NewStatement(name).ID, desc.Expr())
	return true
}

func (p *Parser) parseExecuteImmediate(s *stream) bool {
	s.nextToken()
	s.nextToken()
	ref := p.parseQuasiString(s, false)
	if !p.expectEnd(s, "EXECUTE IMMEDIATE") || ref == nil {
		return false
	}
	p.tr.ExecuteImmediate(ref)
	return true
}

func (p *Parser) parseExecute(s *stream) bool {
	s.nextToken()
	name, ok := p.expectName(s, "EXECUTE")
	if !ok {
		return false
	}
	if s.accept("USING") {
		p.parseRefList(s, hostvar.Input)
	}
	if s.accept("INTO") {
		p.parseRefList(s, hostvar.Output)
	}
	if !p.expectEnd(s, "EXECUTE") {
		return false
	}
	g := p.binder.Gatherer
	p.tr.Execute(p.scopes.NewStatement(name).ID, g.Input(), g.Output())
	return true
}

// parseObjectHead parses "OBJECT :o ON a, b, ..." after the verb.
func (p *Parser) parseObjectHead(s *stream, what string) (*hostvar.HostRef, []string, bool) {
	s.nextToken()
	s.nextToken()
	p.binder.Gatherer.StartGathering(hostvar.Input)
	obj := p.parseObject(s)
	if !p.expectKeyword(s, "ON", what) {
		return nil, nil, false
	}
	var attrs []string
	for {
		name, ok := p.expectName(s, what)
		if !ok {
			return nil, nil, false
		}
		attrs = append(attrs, name)
		if !s.acceptType(token.COMMA) {
			break
		}
	}
	return obj, attrs, obj != nil
}

func (p *Parser) parseDescribeObject(s *stream) bool {
	obj, attrs, ok := p.parseObjectHead(s, "DESCRIBE OBJECT")
	if !ok {
		return false
	}
	desc := p.parseDescriptorClause(s, "DESCRIBE OBJECT")
	if !p.expectEnd(s, "DESCRIBE OBJECT") || desc == nil {
		return false
	}
	p.tr.ObjectDescribe(obj, attrs, desc.Expr())
	return true
}

func (p *Parser) parseFetchObject(s *stream) bool {
	obj, attrs, ok := p.parseObjectHead(s, "FETCH OBJECT")
	if !ok {
		return false
	}
	if s.accept("INTO") || s.accept("USING") {
		p.parseRefList(s, hostvar.Output)
	}
	if !p.expectEnd(s, "FETCH OBJECT") {
		return false
	}
	p.tr.ObjectFetch(obj, attrs, p.binder.Gatherer.Output())
	return true
}

// parseUpdateObject handles UPDATE OBJECT :o SET ...; the object is the
// first input reference and the text is the SET clause without SET.
func (p *Parser) parseUpdateObject(s *stream, repeat bool) bool {
	s.nextToken()
	s.nextToken()
	p.binder.Gatherer.StartGathering(hostvar.Input)
	obj := p.parseObject(s)
	if !p.expectKeyword(s, "SET", "UPDATE OBJECT") {
		return false
	}
	text := p.scanText(s, len(s.toks))
	if obj == nil {
		return false
	}
	p.binder.Gatherer.StartGathering(hostvar.Input)
	p.tr.ObjectUpdate(text, repeat, p.binder.Gatherer.Input())
	return true
}

// parsePositioned handles UPDATE and DELETE on the current row of a
// cursor; at is the position of WHERE CURRENT OF.
func (p *Parser) parsePositioned(s *stream, at int, repeat bool) bool {
	isDelete := s.curToken.Is("DELETE")
	text := p.scanText(s, at)

	s.seek(at + 3)
	c := p.lookupCursor(s, "WHERE CURRENT OF")
	if !p.expectEnd(s, "WHERE CURRENT OF") || c == nil {
		return false
	}
	if isDelete {
		p.tr.DeleteCursor(c.ID)
		return true
	}
	p.binder.Gatherer.StartGathering(hostvar.Input)
	p.binder.CheckList()
	p.tr.UpdateCursor(c.ID, text, repeat, p.binder.Gatherer.Input())
	return true
}

// parseStatic passes any other statement to the runtime as text.
func (p *Parser) parseStatic(s *stream, repeat bool) bool {
	text := p.scanText(s, len(s.toks))
	g := p.binder.Gatherer
	for _, dir := range []hostvar.Direction{hostvar.Input, hostvar.Output} {
		g.StartGathering(dir)
		p.binder.CheckList()
	}
	p.tr.Static(text, repeat, g.Input(), g.Output())
	return true
}

// scanText rebuilds statement text from the tokens before position stop,
// binding each host reference and leaving one "?" marker per reference
// in its place. References following INTO are outputs; all others are
// inputs.
func (p *Parser) scanText(s *stream, stop int) string {
	var sb strings.Builder
	g := p.binder.Gatherer
	g.StartGathering(hostvar.Input)

	prevEnd := -1
	into := false
	space := func(tok token.Token) {
		if prevEnd >= 0 && tok.Offset > prevEnd && sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
			sb.WriteByte(' ')
		}
	}

	for s.pos < stop && !s.atEnd() {
		tok := s.curToken
		if tok.Is("INTO") && s.peekTokenIs(token.COLON) {
			into = true
			g.StartGathering(hostvar.Output)
		}

		if tok.Type == token.COLON {
			space(tok)
			_, n := p.parseHostReference(s, true)
			sb.WriteString("? ")
			for i := 1; i < n; i++ {
				sb.WriteString(", ? ")
			}
			prevEnd = s.at(s.pos - 1).End()
			if into && !s.curTokenIs(token.COMMA) {
				into = false
				g.StartGathering(hostvar.Input)
			}
			continue
		}

		space(tok)
		sb.WriteString(tok.Lexeme)
		prevEnd = tok.End()
		s.nextToken()
	}
	g.StartGathering(hostvar.Input)
	return strings.TrimSpace(sb.String())
}
