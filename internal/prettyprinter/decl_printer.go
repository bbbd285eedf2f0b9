// Package prettyprinter renders declarations back into C source text.
package prettyprinter

import (
	"fmt"
	"io"
	"strings"

	"github.com/funvibe/esqlpp/internal/typesystem"
)

// DeclPrinter renders symbols as C declarations. With Preechoed set, the
// storage class and qualifiers are left out because the caller has already
// copied them to the output.
type DeclPrinter struct {
	Preechoed            bool
	DisableVarcharLength bool
}

func NewDeclPrinter(preechoed, disableVarcharLength bool) *DeclPrinter {
	return &DeclPrinter{Preechoed: preechoed, DisableVarcharLength: disableVarcharLength}
}

// Decl renders one declaration without the terminating semicolon.
func (p *DeclPrinter) Decl(sym *typesystem.Symbol) string {
	out := p.link(sym.Type, sym.Name, typesystem.Array)
	if !p.Preechoed && sym.Type.Alias() == sym {
		out = "typedef " + out
	}
	return out
}

// PrintDecls writes every symbol as "decl; ". Pseudo-type variables get
// their length initializer unless that is disabled; other symbols keep the
// initializer they were declared with.
func (p *DeclPrinter) PrintDecls(w io.Writer, syms []*typesystem.Symbol) {
	for _, sym := range syms {
		io.WriteString(w, p.Decl(sym))
		switch {
		case sym.Type.IsPseudo():
			if sym.Type.Alias() != sym && !p.DisableVarcharLength {
				io.WriteString(w, sym.Initializer)
			}
		case sym.HasInitializer:
			io.WriteString(w, sym.Initializer)
		}
		io.WriteString(w, "; ")
	}
}

// PrintSpecs writes the type of chain alone, as in a cast.
func PrintSpecs(w io.Writer, chain typesystem.Chain) {
	p := &DeclPrinter{Preechoed: true}
	io.WriteString(w, p.link(chain, "", typesystem.Array))
}

// NeedsReprint reports whether a declaration of sym has to be replaced by
// printed text rather than echoed as written: pseudo-types are not C.
func NeedsReprint(sym *typesystem.Symbol) bool {
	if !sym.Type.IsPseudo() {
		return false
	}
	return typesystem.OriginOf(sym.Type[0]).FromAlias == nil || sym.Type.Alias() == sym
}

// link renders chain around the declarator text buf. context is the kind
// of the enclosing declarator.
func (p *DeclPrinter) link(chain typesystem.Chain, buf string, context typesystem.DeclKind) string {
	if len(chain) == 0 {
		return buf
	}
	n := chain[0]
	if o := typesystem.OriginOf(n); o.FromAlias != nil && o.Alias == nil {
		return p.qualifiers(chain.Spec()) + o.FromAlias.Name + " " + buf
	}

	switch x := n.(type) {
	case *typesystem.Specifier:
		return p.qualifiers(x) + p.specifier(x) + " " + buf

	case *typesystem.Declarator:
		switch x.Kind {
		case typesystem.Pointer:
			return p.link(chain.Next(), "*"+buf, typesystem.Pointer)

		case typesystem.Array:
			if context == typesystem.Pointer {
				buf = "(" + buf + ")"
			}
			return p.link(chain.Next(), buf+"["+x.Length+"]", typesystem.Array)

		case typesystem.Function:
			if context == typesystem.Pointer {
				buf = "(" + buf + ")"
			}
			args := make([]string, len(x.Params))
			for i, param := range x.Params {
				args[i] = p.Decl(param)
			}
			return p.link(chain.Next(), buf+"("+strings.Join(args, ", ")+")", typesystem.Function)
		}
	}
	return "invalid " + buf
}

func (p *DeclPrinter) specifier(s *typesystem.Specifier) string {
	switch s.Noun {
	case typesystem.NounStruct, typesystem.NounVarchar, typesystem.NounBit, typesystem.NounVarbit:
		def := s.Struct
		if def == nil {
			return s.TypeName()
		}
		var sb strings.Builder
		sb.WriteString(def.Keyword)
		if !def.IsAnonymous() {
			sb.WriteString(" " + def.Tag)
		}
		if def.Fields != nil && !s.ByName {
			sb.WriteString(" { ")
			for _, f := range def.Fields {
				fmt.Fprintf(&sb, "%s; ", p.Decl(f))
			}
			sb.WriteString("}")
		}
		return sb.String()
	case typesystem.NounLabel:
		return "invalid"
	}
	return s.TypeName()
}

func (p *DeclPrinter) qualifiers(s *typesystem.Specifier) string {
	if p.Preechoed || s == nil {
		return ""
	}
	var sb strings.Builder
	for _, q := range []struct {
		on   bool
		word string
	}{
		{s.Auto, "auto"},
		{s.Register, "register"},
		{s.Const, "const"},
		{s.Volatile, "volatile"},
		{s.Static, "static"},
		{s.Extern, "extern"},
	} {
		if q.on {
			sb.WriteString(q.word + " ")
		}
	}
	return sb.String()
}
