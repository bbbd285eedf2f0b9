package typesystem

// Noun is the base type carried by a Specifier.
type Noun int

const (
	NounInt Noun = iota // default noun of a fresh specifier
	NounChar
	NounVoid
	NounFloat
	NounStruct
	NounVarchar
	NounBit
	NounVarbit
	NounLabel
)

var nounNames = map[Noun]string{
	NounInt:     "int",
	NounChar:    "char",
	NounVoid:    "void",
	NounFloat:   "float",
	NounStruct:  "struct",
	NounVarchar: "VARCHAR",
	NounBit:     "BIT",
	NounVarbit:  "VARBIT",
	NounLabel:   "label",
}

func (n Noun) String() string {
	if s, ok := nounNames[n]; ok {
		return s
	}
	return "invalid"
}

// IsPseudo reports whether the noun is one of the length-prefixed string
// types that are modelled as synthesized structs.
func (n Noun) IsPseudo() bool {
	return n == NounVarchar || n == NounBit || n == NounVarbit
}

// StorageClass of a Specifier. Extern, static, register and auto are
// tracked as separate flags.
type StorageClass int

const (
	ClassAuto StorageClass = iota
	ClassFixed
	ClassRegister
	ClassTypedef
	ClassConstant
)

// Origin links a node back to the typedef it came from. Alias is set only
// on the head node of the typedef symbol's own chain; FromAlias survives
// cloning so that declarations can be printed with the typedef name.
type Origin struct {
	Alias     *Symbol
	FromAlias *Symbol
}

// Node is one element of a type chain: a *Specifier or a *Declarator.
type Node interface {
	origin() *Origin
	clone() Node
}

// Specifier is the terminal node of every chain.
type Specifier struct {
	Origin

	Noun  Noun
	Class StorageClass

	Long     bool
	Short    bool
	Unsigned bool
	Const    bool
	Volatile bool
	Extern   bool
	Static   bool
	Register bool
	Auto     bool

	// Struct is set for NounStruct and, once synthesized, for pseudo nouns.
	Struct *StructDef
	// ByName marks a struct referenced by tag only ("struct s x;").
	ByName bool
	// Value of a constant (enumerator). Always 0, only the class matters.
	Value int
}

// NewSpecifier returns a specifier in the state a fresh declaration starts in.
func NewSpecifier() *Specifier {
	return &Specifier{Noun: NounInt, Class: ClassAuto}
}

func (s *Specifier) origin() *Origin { return &s.Origin }

func (s *Specifier) clone() Node {
	c := *s
	c.Alias = nil
	return &c
}

// ResetClass clears storage class and qualifiers, leaving the type proper.
func (s *Specifier) ResetClass() {
	s.Class = ClassFixed
	s.Static = false
	s.Extern = false
	s.Const = false
	s.Volatile = false
}

// IsTypedef reports whether the specifier was declared with "typedef".
func (s *Specifier) IsTypedef() bool {
	return s.Class == ClassTypedef
}

// DeclKind selects the declarator variant.
type DeclKind int

const (
	Pointer DeclKind = iota
	Array
	Function
)

// Declarator is a pointer, array or function layer above the specifier.
type Declarator struct {
	Origin

	Kind DeclKind
	// Length is the array size text as written; "" when absent.
	Length string
	// Params of a function declarator.
	Params []*Symbol
}

func NewPointer() *Declarator {
	return &Declarator{Kind: Pointer}
}

func NewArray(length string) *Declarator {
	return &Declarator{Kind: Array, Length: length}
}

func NewFunction(params []*Symbol) *Declarator {
	return &Declarator{Kind: Function, Params: params}
}

func (d *Declarator) origin() *Origin { return &d.Origin }

func (d *Declarator) clone() Node {
	c := *d
	c.Alias = nil
	return &c
}

// OriginOf exposes the typedef links of any node.
func OriginOf(n Node) *Origin {
	return n.origin()
}
