// Package parser copies host-language source to the output, replacing
// embedded statements with runtime calls and declare sections with plain
// declarations.
package parser

import (
	"fmt"
	"io"

	"github.com/funvibe/esqlpp/internal/config"
	"github.com/funvibe/esqlpp/internal/declare"
	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/hostvar"
	"github.com/funvibe/esqlpp/internal/lexer"
	"github.com/funvibe/esqlpp/internal/prettyprinter"
	"github.com/funvibe/esqlpp/internal/token"
	"github.com/funvibe/esqlpp/internal/translate"
	"github.com/funvibe/esqlpp/internal/typesystem"
)

type Parser struct {
	l   *lexer.Lexer
	src string
	out io.Writer
	// echoed is the offset up to which source has been written out.
	echoed int

	curToken token.Token

	opts     *config.Options
	reporter *diagnostics.Reporter
	scopes   *declare.Scopes
	specs    *declare.SpecBuilder
	binder   *hostvar.Binder
	tr       *translate.Translator
	printer  *prettyprinter.DeclPrinter

	inDeclare bool
	// pseudoSeen is set while parsing a declaration that names a
	// pseudo-type keyword, which makes the declaration need reprinting.
	pseudoSeen bool
}

// New returns a parser over src writing to out. file names the input in
// #line markers and diagnostics.
func New(src, file string, opts *config.Options, r *diagnostics.Reporter, out io.Writer) *Parser {
	if opts == nil {
		opts = config.Default()
	}
	if r == nil {
		r = diagnostics.NewReporter(file)
	}

	tr := translate.New(out, opts, r, file)
	scopes := declare.NewScopes(r, tr)
	binder := hostvar.NewBinder(r, opts, scopes)
	binder.RegisterBuiltins(scopes)
	scopes.Gatherer = binder.Gatherer
	if opts.DumpScopeInfo {
		scopes.Dump = out
	}

	p := &Parser{
		l:        lexer.New(src),
		src:      src,
		out:      out,
		opts:     opts,
		reporter: r,
		scopes:   scopes,
		specs: declare.NewSpecBuilder(r, typesystem.PseudoNames{
			Length: opts.LengthFieldName(),
			Array:  opts.ArrayFieldName(),
		}),
		binder:  binder,
		tr:      tr,
		printer: prettyprinter.NewDeclPrinter(false, opts.DisableVarcharLength),
	}
	p.nextToken()
	return p
}

// Records lists the statements translated so far.
func (p *Parser) Records() []translate.Record {
	return p.tr.Records
}

// Scopes exposes the scope manager, mainly for inspection in tests.
func (p *Parser) Scopes() *declare.Scopes {
	return p.scopes
}

func (p *Parser) nextToken() {
	p.curToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) atExecSQL() bool {
	return p.curToken.Is("EXEC") && p.l.PeekToken().Is("SQL")
}

// flush writes the source not yet copied, up to offset.
func (p *Parser) flush(offset int) {
	if offset > len(p.src) {
		offset = len(p.src)
	}
	if offset > p.echoed {
		io.WriteString(p.out, p.src[p.echoed:offset])
		p.echoed = offset
	}
}

// resync restarts line numbering after text that spanned from line from to
// line to was replaced by text on a single line.
func (p *Parser) resync(from, to int) {
	if to <= from || p.opts.SuppressLineDirectives {
		return
	}
	io.WriteString(p.out, "\n")
	p.tr.Line = to
	p.tr.LineDirective()
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of statement"
	case token.ILLEGAL:
		return "unterminated literal"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

// Translate processes the whole input.
func (p *Parser) Translate() {
	p.tr.Banner()

	for !p.curTokenIs(token.EOF) {
		switch {
		case p.atExecSQL():
			p.parseExecSQL()
		case p.inDeclare:
			p.parseDeclaration()
		case p.curTokenIs(token.LBRACE):
			p.scopes.PushNameScope()
			p.nextToken()
		case p.curTokenIs(token.RBRACE):
			p.closeScope()
			p.nextToken()
		default:
			p.nextToken()
		}
	}

	if p.inDeclare {
		p.reporter.SetPosition(p.curToken)
		p.reporter.Report(diagnostics.ErrS001, "end of file", "declare section")
	}
	p.flush(len(p.src))
	p.scopes.Finish()
}

func (p *Parser) closeScope() {
	if p.scopes.Level == 0 {
		p.reporter.SetPosition(p.curToken)
		p.reporter.Report(diagnostics.ErrS006)
		return
	}
	if p.scopes.Dump == nil {
		p.scopes.PopNameScope()
		return
	}
	p.flush(p.curToken.Offset)
	p.scopes.PopNameScope()
	p.tr.Line = p.curToken.Line
	p.tr.LineDirective()
}

// parseExecSQL collects one embedded statement up to its semicolon and
// translates it in place of its text.
func (p *Parser) parseExecSQL() {
	start := p.curToken
	p.flush(start.Offset)
	p.reporter.SetPosition(start)

	p.l.SetSQL(true)
	p.nextToken() // SQL
	p.nextToken()

	var toks []token.Token
	for !p.curTokenIs(token.SEMI) {
		if p.curTokenIs(token.EOF) {
			p.l.SetSQL(false)
			p.reporter.Report(diagnostics.ErrS005)
			return
		}
		toks = append(toks, p.curToken)
		p.nextToken()
	}
	semi := p.curToken
	p.l.SetSQL(false)
	p.nextToken()

	p.echoed = semi.End()
	p.tr.Line = semi.Line

	s := newStream(toks, semi)
	if p.translateStatement(s) {
		p.tr.LineDirective()
	} else {
		p.resync(start.Line, semi.Line)
	}
	p.binder.Gatherer.ClearAll()
}
