package typesystem

import (
	"fmt"
	"strings"
)

// Symbol is a declared name together with its type.
type Symbol struct {
	Name  string
	Level int
	Type  Chain

	// Initializer holds the text appended after the declarator when it is
	// printed: ` = { 20, "" }` for a pseudo-type, otherwise the initializer
	// as written.
	Initializer    string
	HasInitializer bool
}

func NewSymbol(name string, level int) *Symbol {
	return &Symbol{Name: name, Level: level}
}

// AddDeclarator appends d at the inner end of the symbol's chain.
func (s *Symbol) AddDeclarator(d *Declarator) {
	s.Type = append(s.Type, d)
}

// StructDef describes a struct, union or synthesized pseudo-type struct.
type StructDef struct {
	Tag     string
	IsUnion bool
	// Keyword is "struct" or "union" as written in source.
	Keyword string
	// Fields in declaration order. Nil while only forward-declared.
	Fields []*Symbol
	Level  int
	// ByName is set while the definition is only known through its tag.
	ByName bool
}

func NewStructDef(tag string, union bool) *StructDef {
	kw := "struct"
	if union {
		kw = "union"
	}
	return &StructDef{Tag: tag, IsUnion: union, Keyword: kw}
}

// IsAnonymous reports whether the tag was generated for an untagged struct.
func (d *StructDef) IsAnonymous() bool {
	return d.Tag == "" || strings.HasPrefix(d.Tag, "$")
}

// Describe returns "struct tag" or just the keyword for anonymous structs.
func (d *StructDef) Describe() string {
	if d.IsAnonymous() {
		return d.Keyword
	}
	return d.Keyword + " " + d.Tag
}

// Field looks up a field by name.
func (d *StructDef) Field(name string) *Symbol {
	for _, f := range d.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldNames lists fields in declaration order.
func (d *StructDef) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// PseudoNames are the field names of synthesized pseudo-type structs.
type PseudoNames struct {
	Length string
	Array  string
}

// NewPseudoDef synthesizes the struct behind VARCHAR, BIT and VARBIT:
//
//	VARCHAR x[N]  ->  struct { int length; char array[N+1]; }
//	BIT x[N]      ->  struct { int length; char array[((N)+7)/8]; }
func NewPseudoDef(noun Noun, length string, names PseudoNames) *StructDef {
	lenSym := NewSymbol(names.Length, 0)
	lenSym.Type = Chain{NewSpecifier()}
	lenSym.Type.Spec().Class = ClassFixed

	size := fmt.Sprintf("%s+1", length)
	if noun != NounVarchar {
		size = fmt.Sprintf("((%s)+7)/8", length)
	}
	arrSym := NewSymbol(names.Array, 0)
	charSpec := NewSpecifier()
	charSpec.Noun = NounChar
	charSpec.Class = ClassFixed
	arrSym.Type = Chain{NewArray(size), charSpec}

	return &StructDef{
		Keyword: "struct",
		Fields:  []*Symbol{lenSym, arrSym},
	}
}
