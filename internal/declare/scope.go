package declare

import (
	"fmt"
	"io"

	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/hostvar"
	"github.com/funvibe/esqlpp/internal/symbols"
	"github.com/funvibe/esqlpp/internal/typesystem"
	"github.com/funvibe/esqlpp/internal/whenever"
)

// LexerMode tells the front end whether typedef names are recognized.
type LexerMode int

const (
	ModeTypeNames LexerMode = iota
	ModeIdentifiers
)

// IdentClass is how the front end should treat an identifier.
type IdentClass int

const (
	Identifier IdentClass = iota
	TypeName
	EnumConstant
)

type nameScope struct {
	symbols  []*typesystem.Symbol
	structs  []*typesystem.StructDef
	cursors  []*Cursor
	whenever whenever.Table
	// typeNames is the type-alias visibility of the scope.
	typeNames bool
}

// Scopes is the nested scope manager for one compilation unit.
type Scopes struct {
	Reporter *diagnostics.Reporter
	Level    int
	Mode     LexerMode

	// Dump, when set, receives a description of every scope as it closes.
	Dump io.Writer
	// Gatherer releases the reference lists owned by cursors.
	Gatherer *hostvar.Gatherer

	stack      []*nameScope
	syms       *symbols.Store[*typesystem.Symbol]
	tags       *symbols.Store[*typesystem.StructDef]
	cursors    *symbols.Store[*Cursor]
	statements *symbols.Store[*Statement]
	notifier   whenever.Notifier

	nextCursor    int
	nextStatement int
	anonymous     int
}

// NewScopes returns a manager with the outermost scope open. n is told
// about every WHENEVER change and may be nil.
func NewScopes(r *diagnostics.Reporter, n whenever.Notifier) *Scopes {
	s := &Scopes{
		Reporter:   r,
		Level:      -1,
		syms:       symbols.NewStore(func(s *typesystem.Symbol) string { return s.Name }),
		tags:       symbols.NewStore(func(d *typesystem.StructDef) string { return d.Tag }),
		cursors:    symbols.NewStore(func(c *Cursor) string { return c.Name }),
		statements: symbols.NewStore(func(st *Statement) string { return st.Name }),
		notifier:   n,
	}
	s.PushNameScope()
	return s
}

// SetNotifier replaces the WHENEVER listener.
func (s *Scopes) SetNotifier(n whenever.Notifier) {
	s.notifier = n
}

func (s *Scopes) current() *nameScope {
	return s.stack[len(s.stack)-1]
}

func (s *Scopes) parent() *nameScope {
	if len(s.stack) < 2 {
		return nil
	}
	return s.stack[len(s.stack)-2]
}

// PushNameScope opens a nested scope, e.g. at "{".
func (s *Scopes) PushNameScope() {
	sc := &nameScope{}
	if p := len(s.stack); p > 0 {
		sc.whenever = whenever.InitScope(&s.stack[p-1].whenever)
	} else {
		sc.whenever = whenever.InitScope(nil)
	}
	s.stack = append(s.stack, sc)
	s.Level++
	s.SetTypeAliasVisibility(true)
}

// PopNameScope closes the innermost scope and forgets what it declared.
// The outermost scope can be popped too, at the end of the unit.
func (s *Scopes) PopNameScope() {
	if len(s.stack) == 0 {
		return
	}
	if s.Dump != nil {
		s.DumpScope(s.Dump)
	}

	sc := s.current()
	for _, sym := range sc.symbols {
		s.syms.Remove(sym)
	}
	for _, def := range sc.structs {
		s.tags.Remove(def)
	}
	for _, c := range sc.cursors {
		s.cursors.Remove(c)
		if s.Gatherer != nil {
			s.Gatherer.Free(c.Refs)
		}
		c.Refs = nil
	}

	var restored *whenever.Table
	if p := s.parent(); p != nil {
		restored = &p.whenever
	}
	whenever.FinishScope(&sc.whenever, restored, s.notifier)

	s.stack = s.stack[:len(s.stack)-1]
	s.Level--

	if p := len(s.stack); p == 0 || s.stack[p-1].typeNames {
		s.Mode = ModeTypeNames
	} else {
		s.Mode = ModeIdentifiers
	}
}

// Finish closes every open scope.
func (s *Scopes) Finish() {
	for len(s.stack) > 0 {
		s.PopNameScope()
	}
}

// SetTypeAliasVisibility controls whether typedef names classify as type
// names in the current scope.
func (s *Scopes) SetTypeAliasVisibility(visible bool) {
	s.current().typeNames = visible
	if visible {
		s.Mode = ModeTypeNames
	} else {
		s.Mode = ModeIdentifiers
	}
}

// ClassifyIdentifier decides whether name is a type name, an enumeration
// constant or an ordinary identifier at this point.
func (s *Scopes) ClassifyIdentifier(name string) IdentClass {
	sym := s.Lookup(name)
	if sym == nil || len(sym.Type) == 0 {
		return Identifier
	}
	if sym.Type.Alias() == sym && s.Mode == ModeTypeNames {
		return TypeName
	}
	if spec, ok := sym.Type[0].(*typesystem.Specifier); ok && spec.Class == typesystem.ClassConstant {
		return EnumConstant
	}
	return Identifier
}

// Lookup returns the visible symbol called name, or nil.
func (s *Scopes) Lookup(name string) *typesystem.Symbol {
	sym, _ := s.syms.Find(name)
	return sym
}

// SymbolNames lists every visible symbol name.
func (s *Scopes) SymbolNames() []string {
	return s.syms.Names()
}

// AddSymbols enters syms into the current scope. A redeclaration at the
// same level is accepted only when the types match and one side is extern.
func (s *Scopes) AddSymbols(syms []*typesystem.Symbol) {
	sc := s.current()
	for _, sym := range syms {
		if sym == nil || sym.Name == "" {
			continue
		}
		old, found := s.syms.Find(sym.Name)
		if !found || old.Level != sym.Level {
			s.syms.Add(sym)
			sc.symbols = append(sc.symbols, sym)
			continue
		}

		oldSpec, newSpec := old.Type.Spec(), sym.Type.Spec()
		if oldSpec != nil && newSpec != nil && old.Type.Equal(sym.Type, false) && (oldSpec.Extern || newSpec.Extern) {
			if !newSpec.Extern {
				oldSpec.Class = newSpec.Class
				oldSpec.Static = newSpec.Static
				oldSpec.Extern = false
			}
			continue
		}
		s.Reporter.Report(diagnostics.ErrD006, sym.Name)
	}
}

// AddStruct records def in the current scope.
func (s *Scopes) AddStruct(def *typesystem.StructDef) {
	if def == nil {
		return
	}
	def.Level = s.Level
	s.tags.Add(def)
	s.current().structs = append(s.current().structs, def)
}

// LookupStruct returns the visible struct or union tagged tag, or nil.
func (s *Scopes) LookupStruct(tag string) *typesystem.StructDef {
	def, _ := s.tags.Find(tag)
	return def
}

// AnonymousTag returns a fresh tag for an untagged struct or union.
func (s *Scopes) AnonymousTag() string {
	s.anonymous++
	return fmt.Sprintf("$%d", s.anonymous)
}

// DoEnum enters an enumeration constant.
func (s *Scopes) DoEnum(sym *typesystem.Symbol) {
	if sym == nil || sym.Name == "" {
		return
	}
	if len(sym.Type) > 0 {
		s.Reporter.Report(diagnostics.ErrD006, sym.Name)
		return
	}
	spec := typesystem.NewSpecifier()
	spec.Class = typesystem.ClassConstant
	sym.Type = typesystem.Chain{spec}
	sym.Level = s.Level
	s.AddSymbols([]*typesystem.Symbol{sym})
}

// AddInitializer marks sym as initialized. An array with an initializer
// takes its size from it, so the length text is dropped.
func AddInitializer(sym *typesystem.Symbol) {
	sym.HasInitializer = true
	if d, ok := sym.Type.Head().(*typesystem.Declarator); ok && d.Kind == typesystem.Array {
		d.Length = ""
	}
}

// Whenever returns the table of the current scope.
func (s *Scopes) Whenever() whenever.Table {
	return s.current().whenever
}

// RegisterWhenever changes the current scope's action for cond.
func (s *Scopes) RegisterWhenever(cond whenever.Condition, action whenever.Action, name string) {
	s.current().whenever.Set(cond, action, name)
	if s.notifier != nil {
		s.notifier.SetWhenever(cond, action, name)
	}
}

// DumpScope describes the current scope as a C comment.
func (s *Scopes) DumpScope(w io.Writer) {
	sc := s.current()
	fmt.Fprintf(w, "\n/*\n * Exiting scope level %d\n", s.Level)
	if len(sc.symbols) > 0 {
		fmt.Fprintf(w, " *\n * Symbols:\n")
		for _, sym := range sc.symbols {
			fmt.Fprintf(w, " *   %s\n", sym.Type.Declare(sym.Name))
		}
	}
	if len(sc.structs) > 0 {
		fmt.Fprintf(w, " *\n * Structs:\n")
		for _, def := range sc.structs {
			fmt.Fprintf(w, " *   %s (%d fields)\n", def.Describe(), len(def.Fields))
		}
	}
	if len(sc.cursors) > 0 {
		fmt.Fprintf(w, " *\n * Cursors:\n")
		for _, c := range sc.cursors {
			fmt.Fprintf(w, " *   %s (cid %d)\n", c.Name, c.ID)
		}
	}
	fmt.Fprintf(w, " */\n")
}
