// Package declare builds declared types from specifier keywords and keeps
// the nested scopes those declarations live in.
package declare

import (
	"fmt"

	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/typesystem"
)

// StorageWord is a storage class keyword.
type StorageWord int

const (
	Typedef StorageWord = iota
	Extern
	Static
	Register
	Auto
)

// NounWord is a base type keyword.
type NounWord int

const (
	Void NounWord = iota
	Char
	Int
	Float
	Double
	Varchar
	Bit
	Varbit
)

// Adjective is a type modifier keyword. EnumInt is the implicit "int" of
// an enum declaration.
type Adjective int

const (
	Long Adjective = iota
	Short
	Signed
	Unsigned
	Const
	Volatile
	EnumInt
)

// maxLongs is the number of "long" keywords before a third is rejected,
// counted from zero.
const maxLongs = 1

type specState struct {
	nounSeen     bool
	longsSeen    int
	shortsSeen   int
	signedSeen   bool
	storageSeen  bool
	typedefSeen  bool
	scAllowed    bool
	volatileSeen bool
	constSeen    bool

	chain typesystem.Chain
}

func newSpecState() *specState {
	return &specState{scAllowed: true, chain: typesystem.Chain{typesystem.NewSpecifier()}}
}

// spec is the terminal specifier of the chain under construction.
func (p *specState) spec() *typesystem.Specifier {
	return p.chain.Spec()
}

// SpecBuilder accumulates specifier keywords into a type chain. Builders
// nest because struct member lists appear inside outer declarations.
type SpecBuilder struct {
	reporter *diagnostics.Reporter
	names    typesystem.PseudoNames
	stack    []*specState
}

func NewSpecBuilder(r *diagnostics.Reporter, names typesystem.PseudoNames) *SpecBuilder {
	b := &SpecBuilder{reporter: r, names: names}
	b.PushScope()
	return b
}

func (b *SpecBuilder) cur() *specState {
	return b.stack[len(b.stack)-1]
}

// PushScope starts a nested specifier, e.g. for a struct member.
func (b *SpecBuilder) PushScope() {
	b.stack = append(b.stack, newSpecState())
}

// PopScope returns to the enclosing specifier. The outermost one stays.
func (b *SpecBuilder) PopScope() {
	if len(b.stack) > 1 {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

// Depth is the number of open specifier scopes.
func (b *SpecBuilder) Depth() int {
	return len(b.stack)
}

// Reset starts a fresh specifier in the current scope.
func (b *SpecBuilder) Reset() {
	b.stack[len(b.stack)-1] = newSpecState()
}

// Current returns the chain built so far.
func (b *SpecBuilder) Current() typesystem.Chain {
	return b.cur().chain
}

// DisallowStorageClasses rejects storage classes in the current specifier,
// as inside struct member lists.
func (b *SpecBuilder) DisallowStorageClasses() {
	b.cur().scAllowed = false
}

func (b *SpecBuilder) typeCombo() {
	b.reporter.Report(diagnostics.ErrD003)
}

func (b *SpecBuilder) modifierCombo() {
	b.reporter.Report(diagnostics.ErrD004)
}

// AddStorageClass records a storage class keyword.
func (b *SpecBuilder) AddStorageClass(sc StorageWord) {
	p := b.cur()
	if !p.scAllowed {
		b.reporter.Report(diagnostics.ErrD002)
		return
	}
	if p.storageSeen {
		b.reporter.Report(diagnostics.ErrD001)
		return
	}
	p.storageSeen = sc != Typedef
	p.typedefSeen = sc == Typedef

	s := p.spec()
	switch sc {
	case Typedef:
		s.Class = typesystem.ClassTypedef
	case Extern:
		s.Extern = true
	case Static:
		s.Static = true
	case Register:
		s.Register = true
	case Auto:
		s.Auto = true
	}
}

// AddStructSpec makes def the type noun.
func (b *SpecBuilder) AddStructSpec(def *typesystem.StructDef) {
	if def == nil {
		return
	}
	p := b.cur()
	if p.nounSeen {
		b.typeCombo()
		return
	}
	if p.longsSeen > 0 || p.shortsSeen > 0 || p.signedSeen {
		b.modifierCombo()
		return
	}

	s := p.spec()
	s.Noun = typesystem.NounStruct
	s.Struct = def
	s.ByName = def.ByName
	s.Const = p.constSeen
	s.Volatile = p.volatileSeen
	p.nounSeen = true
	p.longsSeen = 1
	p.shortsSeen = 1
	p.signedSeen = true

	def.ByName = false
}

// AddNoun records a base type keyword.
func (b *SpecBuilder) AddNoun(noun NounWord) {
	p := b.cur()
	if p.nounSeen {
		b.typeCombo()
		return
	}

	s := p.spec()
	switch noun {
	case Void:
		if p.longsSeen > 0 || p.shortsSeen > 0 || p.signedSeen {
			b.modifierCombo()
			return
		}
		p.longsSeen = 1
		p.shortsSeen = 1
		p.signedSeen = true
		s.Noun = typesystem.NounVoid

	case Char:
		if p.longsSeen > 0 || p.shortsSeen > 0 {
			b.typeCombo()
			return
		}
		p.longsSeen = 1
		s.Noun = typesystem.NounChar

	case Int:
		s.Noun = typesystem.NounInt
		s.Long = p.longsSeen > 0
		s.Short = p.shortsSeen > 0

	case Float:
		if p.signedSeen {
			b.modifierCombo()
			return
		}
		s.Noun = typesystem.NounFloat
		s.Long = p.longsSeen > 0 && s.Long

	case Double:
		if p.signedSeen || (p.longsSeen > 0 && !s.Long) || p.shortsSeen > 0 {
			b.modifierCombo()
			return
		}
		p.longsSeen = 1
		s.Noun = typesystem.NounFloat
		s.Long = true

	case Varchar, Bit, Varbit:
		if p.longsSeen > 0 || p.shortsSeen > 0 || p.signedSeen {
			b.modifierCombo()
			return
		}
		switch noun {
		case Varchar:
			s.Noun = typesystem.NounVarchar
		case Bit:
			s.Noun = typesystem.NounBit
		default:
			s.Noun = typesystem.NounVarbit
		}
		s.Struct = nil
	}

	s.Volatile = p.volatileSeen
	s.Const = p.constSeen
	p.nounSeen = true
}

// AddAdjective records a modifier keyword.
func (b *SpecBuilder) AddAdjective(adj Adjective) {
	p := b.cur()
	s := p.spec()

	switch adj {
	case EnumInt:
		if !p.nounSeen || s.Noun != typesystem.NounInt {
			b.modifierCombo()
			return
		}
		s.Long = false
		s.Short = false

	case Short:
		if p.shortsSeen > 1 || p.longsSeen > 0 {
			b.modifierCombo()
			return
		}
		if p.nounSeen && s.Noun != typesystem.NounInt && s.Noun != typesystem.NounFloat {
			b.modifierCombo()
			return
		}
		p.shortsSeen++
		s.Short = true
		s.Long = false

	case Long:
		if p.longsSeen > maxLongs || p.shortsSeen > 0 {
			b.modifierCombo()
			return
		}
		if p.nounSeen && s.Noun != typesystem.NounInt && s.Noun != typesystem.NounFloat {
			b.modifierCombo()
			return
		}
		p.longsSeen++
		s.Long = true
		s.Short = false

	case Signed, Unsigned:
		if p.signedSeen {
			b.modifierCombo()
			return
		}
		if p.nounSeen && s.Noun != typesystem.NounInt && s.Noun != typesystem.NounChar {
			b.modifierCombo()
			return
		}
		p.signedSeen = true
		s.Unsigned = adj == Unsigned

	case Const:
		if p.volatileSeen {
			b.modifierCombo()
			return
		}
		p.constSeen = true
		if p.nounSeen {
			s.Const = true
		}

	case Volatile:
		if p.volatileSeen {
			b.modifierCombo()
			return
		}
		p.volatileSeen = true
		if p.nounSeen {
			s.Volatile = true
		}
	}
}

// AddTypeAlias makes the chain of a typedef name the current type.
func (b *SpecBuilder) AddTypeAlias(alias typesystem.Chain) {
	p := b.cur()
	if p.nounSeen {
		b.typeCombo()
		return
	}
	if p.longsSeen > 0 || p.shortsSeen > 0 || p.signedSeen {
		b.modifierCombo()
		return
	}

	old := p.spec()
	chain := alias.Clone()
	q := chain.Spec()
	if old.Class != typesystem.ClassAuto {
		q.Class = old.Class
	}
	q.Static = old.Static
	q.Extern = old.Extern
	q.Register = old.Register
	q.Auto = old.Auto
	q.Const = p.constSeen
	q.Volatile = p.volatileSeen

	p.chain = chain
	p.nounSeen = true
	p.longsSeen = 1
	p.shortsSeen = 1
	p.signedSeen = true
}

// AddSpecToDeclarators appends a clone of spec to every symbol's chain.
// An undefined pseudo-type takes its length from the symbol's innermost
// array declarator, which it consumes. Typedef symbols become the alias
// owner of their chain.
func (b *SpecBuilder) AddSpecToDeclarators(spec typesystem.Chain, syms []*typesystem.Symbol) {
	for _, sym := range syms {
		clone := spec.Clone()
		if len(clone) == 0 {
			continue
		}

		if head, ok := clone[0].(*typesystem.Specifier); ok && head.Noun.IsPseudo() && head.Struct == nil {
			b.synthesizePseudo(head, sym)
		}

		sym.Type = append(sym.Type, clone...)

		if tail := sym.Type.Spec(); tail != nil && tail.IsTypedef() {
			tail.ResetClass()
			o := typesystem.OriginOf(sym.Type[0])
			o.Alias = sym
			o.FromAlias = sym
		}
	}
}

func (b *SpecBuilder) synthesizePseudo(head *typesystem.Specifier, sym *typesystem.Symbol) {
	n := len(sym.Type)
	var last *typesystem.Declarator
	if n > 0 {
		last, _ = sym.Type[n-1].(*typesystem.Declarator)
	}
	if last == nil || last.Kind != typesystem.Array || last.Length == "" {
		b.reporter.Report(diagnostics.ErrD005, head.Noun.String())
		return
	}

	head.Struct = typesystem.NewPseudoDef(head.Noun, last.Length, b.names)
	sym.Type = sym.Type[:n-1]
	if head.IsTypedef() {
		return
	}
	if head.Noun == typesystem.NounVarchar {
		sym.Initializer = fmt.Sprintf(" = { %s, \"\" }", last.Length)
	} else {
		sym.Initializer = fmt.Sprintf(" = { ((%s)+7)/8, \"\" }", last.Length)
	}
}
