package parser

import (
	"strings"

	"github.com/funvibe/esqlpp/internal/declare"
	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/prettyprinter"
	"github.com/funvibe/esqlpp/internal/token"
	"github.com/funvibe/esqlpp/internal/typesystem"
)

var storageWords = map[string]declare.StorageWord{
	"typedef":  declare.Typedef,
	"extern":   declare.Extern,
	"static":   declare.Static,
	"register": declare.Register,
	"auto":     declare.Auto,
}

var nounWords = map[string]declare.NounWord{
	"void":   declare.Void,
	"char":   declare.Char,
	"int":    declare.Int,
	"float":  declare.Float,
	"double": declare.Double,
}

var adjectiveWords = map[string]declare.Adjective{
	"long":     declare.Long,
	"short":    declare.Short,
	"signed":   declare.Signed,
	"unsigned": declare.Unsigned,
	"const":    declare.Const,
	"volatile": declare.Volatile,
}

// parseDeclaration handles one declaration inside a declare section. The
// declaration is echoed as written unless it involves a pseudo-type, in
// which case it is printed back as plain C.
func (p *Parser) parseDeclaration() {
	start := p.curToken
	if start.Type == token.DIRECTIVE {
		p.nextToken()
		return
	}
	p.reporter.SetPosition(start)

	var toks []token.Token
	depth := 0
	for {
		if p.curTokenIs(token.EOF) {
			return
		}
		if p.atExecSQL() {
			p.reporter.Report(diagnostics.ErrS001, describe(p.curToken), "declaration")
			return
		}
		tok := p.curToken
		p.nextToken()
		switch tok.Type {
		case token.DIRECTIVE:
			continue
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
		if tok.Type == token.SEMI && depth <= 0 {
			if len(toks) > 0 {
				p.finishDeclaration(start, newStream(toks, tok), tok)
			}
			return
		}
		toks = append(toks, tok)
	}
}

func (p *Parser) finishDeclaration(start token.Token, s *stream, semi token.Token) {
	p.pseudoSeen = false
	syms, spec, ok := p.parseDeclarationBody(s)
	if !ok {
		return
	}
	p.scopes.AddSymbols(syms)

	reprint := p.pseudoSeen
	for _, sym := range syms {
		reprint = reprint || prettyprinter.NeedsReprint(sym)
	}
	if !reprint {
		return
	}

	p.flush(start.Offset)
	if len(syms) == 0 {
		prettyprinter.PrintSpecs(p.out, spec)
		p.out.Write([]byte("; "))
	} else {
		shareStructBody(syms)
		p.printer.PrintDecls(p.out, syms)
	}
	p.echoed = semi.End()
	p.resync(start.Line, semi.Line)
}

// shareStructBody makes every declarator after the first refer to a
// tagged struct by name, so that its body is printed once.
func shareStructBody(syms []*typesystem.Symbol) {
	for _, sym := range syms[1:] {
		spec := sym.Type.Spec()
		if spec != nil && spec.Noun == typesystem.NounStruct && spec.Struct != nil && !spec.Struct.IsAnonymous() {
			spec.ByName = true
		}
	}
}

// parseDeclarationBody parses specifiers and declarators and applies the
// type to every declared symbol.
func (p *Parser) parseDeclarationBody(s *stream) ([]*typesystem.Symbol, typesystem.Chain, bool) {
	defer p.scopes.SetTypeAliasVisibility(true)
	p.specs.Reset()
	if !p.parseSpecifiers(s) {
		p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "declaration")
		return nil, nil, false
	}
	spec := p.specs.Current()

	syms, inits, ok := p.parseInitDeclarators(s, false)
	if !ok {
		return nil, nil, false
	}
	if !p.expectEnd(s, "declaration") {
		return nil, nil, false
	}

	p.specs.AddSpecToDeclarators(spec, syms)
	for i, sym := range syms {
		if inits[i] == "" {
			continue
		}
		declare.AddInitializer(sym)
		if !sym.Type.IsPseudo() {
			sym.Initializer = " = " + inits[i]
		}
	}
	return syms, spec, true
}

// parseInitDeclarators parses "declarator [= init | : width], ...". It
// returns the initializer text of each symbol, "" when absent.
func (p *Parser) parseInitDeclarators(s *stream, member bool) ([]*typesystem.Symbol, []string, bool) {
	var syms []*typesystem.Symbol
	var inits []string
	for !s.atEnd() && !s.curTokenIs(token.SEMI) {
		var sym *typesystem.Symbol
		if member && s.curTokenIs(token.COLON) {
			sym = typesystem.NewSymbol("", p.scopes.Level)
		} else if sym = p.parseDeclarator(s, false); sym == nil {
			return nil, nil, false
		}

		init := ""
		switch {
		case member && s.acceptType(token.COLON):
			s.skipBalanced(token.COMMA, token.SEMI)
		case !member && s.acceptType(token.ASSIGN):
			first, last, ok := s.skipBalanced(token.COMMA)
			if !ok {
				p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "initializer")
				return nil, nil, false
			}
			init = strings.TrimSpace(p.src[first.Offset:last.End()])
		}
		if sym.Name != "" || len(sym.Type) > 0 {
			syms = append(syms, sym)
			inits = append(inits, init)
		}

		if !s.acceptType(token.COMMA) {
			break
		}
	}
	return syms, inits, true
}

// parseSpecifiers consumes storage classes, qualifiers and the type. It
// reports whether anything was consumed.
//
// Once a type has been seen, typedef names are hidden so that a declarator
// may redeclare one ("typedef int T; ... { float T; }").
func (p *Parser) parseSpecifiers(s *stream) bool {
	p.scopes.SetTypeAliasVisibility(true)
	seen, typeSeen := false, false
	defer func() {
		if typeSeen {
			p.scopes.SetTypeAliasVisibility(false)
		}
	}()
	for s.curTokenIs(token.IDENT) {
		if typeSeen {
			p.scopes.SetTypeAliasVisibility(false)
		}
		tok := s.curToken
		if sc, ok := storageWords[tok.Lexeme]; ok {
			p.specs.AddStorageClass(sc)
		} else if adj, ok := adjectiveWords[tok.Lexeme]; ok {
			p.specs.AddAdjective(adj)
			typeSeen = typeSeen || (adj != declare.Const && adj != declare.Volatile)
		} else if noun, ok := nounWords[tok.Lexeme]; ok {
			p.specs.AddNoun(noun)
			typeSeen = true
		} else if tok.Lexeme == "struct" || tok.Lexeme == "union" {
			p.specs.AddStructSpec(p.parseStructSpecifier(s))
			seen, typeSeen = true, true
			continue
		} else if tok.Lexeme == "enum" {
			p.parseEnumSpecifier(s)
			p.specs.AddNoun(declare.Int)
			p.specs.AddAdjective(declare.EnumInt)
			seen, typeSeen = true, true
			continue
		} else if p.scopes.ClassifyIdentifier(tok.Lexeme) == declare.TypeName {
			p.specs.AddTypeAlias(p.scopes.Lookup(tok.Lexeme).Type)
			typeSeen = true
		} else if typeSeen {
			break
		} else if tok.Is("VARCHAR") {
			p.specs.AddNoun(declare.Varchar)
			p.pseudoSeen, typeSeen = true, true
		} else if tok.Is("VARBIT") {
			p.specs.AddNoun(declare.Varbit)
			p.pseudoSeen, typeSeen = true, true
		} else if tok.Is("BIT") {
			if s.peekToken.Is("VARYING") {
				s.nextToken()
				p.specs.AddNoun(declare.Varbit)
			} else {
				p.specs.AddNoun(declare.Bit)
			}
			p.pseudoSeen, typeSeen = true, true
		} else {
			break
		}
		seen = true
		s.nextToken()
	}
	return seen
}

// parseStructSpecifier parses "struct|union [tag] [{ members }]".
func (p *Parser) parseStructSpecifier(s *stream) *typesystem.StructDef {
	union := s.curToken.Lexeme == "union"
	s.nextToken()

	tag := ""
	if s.curTokenIs(token.IDENT) {
		tag = s.curToken.Lexeme
		s.nextToken()
	}

	if !s.curTokenIs(token.LBRACE) {
		if tag == "" {
			p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "struct specifier")
			return nil
		}
		def := p.scopes.LookupStruct(tag)
		if def == nil {
			def = typesystem.NewStructDef(tag, union)
			p.scopes.AddStruct(def)
		}
		def.ByName = true
		return def
	}

	var def *typesystem.StructDef
	if tag != "" {
		if old := p.scopes.LookupStruct(tag); old != nil && old.Level == p.scopes.Level && old.Fields == nil {
			def = old
		}
	} else {
		tag = p.scopes.AnonymousTag()
	}
	if def == nil {
		def = typesystem.NewStructDef(tag, union)
		p.scopes.AddStruct(def)
	}

	s.nextToken()
	def.Fields = p.parseMembers(s)
	if !s.acceptType(token.RBRACE) {
		p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "struct specifier")
	}
	return def
}

// parseMembers parses member declarations up to the closing brace.
func (p *Parser) parseMembers(s *stream) []*typesystem.Symbol {
	p.specs.PushScope()
	defer p.specs.PopScope()

	fields := []*typesystem.Symbol{}
	for !s.atEnd() && !s.curTokenIs(token.RBRACE) {
		p.specs.Reset()
		p.specs.DisallowStorageClasses()
		if !p.parseSpecifiers(s) {
			p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "struct member")
			s.skipBalanced(token.SEMI)
			s.acceptType(token.SEMI)
			continue
		}
		spec := p.specs.Current()
		syms, _, ok := p.parseInitDeclarators(s, true)
		if !ok {
			s.skipBalanced(token.SEMI)
		}
		if !s.acceptType(token.SEMI) {
			p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "struct member")
			s.skipBalanced(token.SEMI)
			s.acceptType(token.SEMI)
			continue
		}
		p.specs.AddSpecToDeclarators(spec, syms)
		fields = append(fields, syms...)
	}
	return fields
}

// parseEnumSpecifier parses "enum [tag] [{ A [= v], ... }]" and enters the
// constants.
func (p *Parser) parseEnumSpecifier(s *stream) {
	s.nextToken()
	s.acceptType(token.IDENT)
	if !s.acceptType(token.LBRACE) {
		return
	}
	for s.curTokenIs(token.IDENT) {
		p.scopes.DoEnum(typesystem.NewSymbol(s.curToken.Lexeme, p.scopes.Level))
		s.nextToken()
		if s.acceptType(token.ASSIGN) {
			s.skipBalanced(token.COMMA)
		}
		if !s.acceptType(token.COMMA) {
			break
		}
	}
	if !s.acceptType(token.RBRACE) {
		p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "enum specifier")
	}
}

// parseDeclarator parses pointers, a name or parenthesized declarator, and
// array and function suffixes. The result carries only declarator nodes,
// outermost first; the caller adds the specifier. An abstract declarator
// may omit the name.
func (p *Parser) parseDeclarator(s *stream, abstract bool) *typesystem.Symbol {
	pointers := 0
	for s.acceptType(token.ASTERISK) {
		pointers++
		for s.curToken.Lexeme == "const" || s.curToken.Lexeme == "volatile" {
			s.nextToken()
		}
	}

	var sym *typesystem.Symbol
	switch {
	case s.curTokenIs(token.LPAREN) && p.isGrouping(s, abstract):
		s.nextToken()
		if sym = p.parseDeclarator(s, abstract); sym == nil {
			return nil
		}
		if !s.acceptType(token.RPAREN) {
			p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "declarator")
			return nil
		}
	case s.curTokenIs(token.IDENT):
		sym = typesystem.NewSymbol(s.curToken.Lexeme, p.scopes.Level)
		s.nextToken()
	case abstract:
		sym = typesystem.NewSymbol("", p.scopes.Level)
	default:
		p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "declarator")
		return nil
	}

	for {
		switch {
		case s.curTokenIs(token.LBRACKET):
			open := s.curToken
			s.nextToken()
			_, last, ok := s.skipBalanced(token.RBRACKET)
			if !s.acceptType(token.RBRACKET) {
				p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "array declarator")
				return nil
			}
			length := ""
			if ok {
				length = strings.TrimSpace(p.src[open.End():last.End()])
			}
			sym.AddDeclarator(typesystem.NewArray(length))

		case s.curTokenIs(token.LPAREN):
			params, ok := p.parseParameters(s)
			if !ok {
				return nil
			}
			sym.AddDeclarator(typesystem.NewFunction(params))

		default:
			for i := 0; i < pointers; i++ {
				sym.AddDeclarator(typesystem.NewPointer())
			}
			return sym
		}
	}
}

// isGrouping tells "(*name)" from a parameter list.
func (p *Parser) isGrouping(s *stream, abstract bool) bool {
	next := s.peekToken
	switch next.Type {
	case token.ASTERISK, token.LPAREN, token.LBRACKET:
		return true
	case token.IDENT:
		return !abstract || !p.startsType(next)
	}
	return false
}

// startsType reports whether tok can begin a declaration specifier.
func (p *Parser) startsType(tok token.Token) bool {
	if _, ok := storageWords[tok.Lexeme]; ok {
		return true
	}
	if _, ok := adjectiveWords[tok.Lexeme]; ok {
		return true
	}
	if _, ok := nounWords[tok.Lexeme]; ok {
		return true
	}
	switch tok.Lexeme {
	case "struct", "union", "enum":
		return true
	}
	return p.scopes.ClassifyIdentifier(tok.Lexeme) == declare.TypeName
}

// parseParameters parses "( [param {, param} [, ...]] )".
func (p *Parser) parseParameters(s *stream) ([]*typesystem.Symbol, bool) {
	s.nextToken()
	var params []*typesystem.Symbol
	for !s.curTokenIs(token.RPAREN) {
		if s.curToken.Lexeme == "..." {
			s.nextToken()
		} else {
			p.specs.PushScope()
			if !p.parseSpecifiers(s) {
				p.specs.PopScope()
				p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "parameter list")
				return nil, false
			}
			spec := p.specs.Current()
			param := p.parseDeclarator(s, true)
			if param == nil {
				p.specs.PopScope()
				return nil, false
			}
			p.specs.AddSpecToDeclarators(spec, []*typesystem.Symbol{param})
			p.specs.PopScope()
			params = append(params, param)
		}
		if !s.acceptType(token.COMMA) {
			break
		}
	}
	if !s.acceptType(token.RPAREN) {
		p.reporter.Report(diagnostics.ErrS001, describe(s.curToken), "parameter list")
		return nil, false
	}
	return params, true
}
