package typesystem

// Chain is a declared type read outer-to-inner: for "char *argv[]" it is
// [Array, Pointer, Specifier(char)]. A complete chain ends in exactly one
// Specifier; while a declarator is being parsed the specifier is missing.
type Chain []Node

// Clone deep-copies every node. StructDefs and function parameter
// symbols are shared. FromAlias links are kept and Alias links dropped, so
// the clone can be mutated and discarded freely.
func (c Chain) Clone() Chain {
	if c == nil {
		return nil
	}
	out := make(Chain, len(c))
	for i, n := range c {
		out[i] = n.clone()
	}
	return out
}

// Head returns the outermost node, or nil for an empty chain.
func (c Chain) Head() Node {
	if len(c) == 0 {
		return nil
	}
	return c[0]
}

// Tail returns the innermost node, or nil for an empty chain.
func (c Chain) Tail() Node {
	if len(c) == 0 {
		return nil
	}
	return c[len(c)-1]
}

// Spec returns the terminal specifier, or nil if the chain is not complete.
func (c Chain) Spec() *Specifier {
	s, _ := c.Tail().(*Specifier)
	return s
}

// Next drops the outer node.
func (c Chain) Next() Chain {
	if len(c) == 0 {
		return nil
	}
	return c[1:]
}

func (c Chain) headDecl() *Declarator {
	d, _ := c.Head().(*Declarator)
	return d
}

func (c Chain) headSpec() *Specifier {
	s, _ := c.Head().(*Specifier)
	return s
}

// IsSpecifier reports whether the outermost node is the specifier.
func (c Chain) IsSpecifier() bool {
	return c.headSpec() != nil
}

func (c Chain) IsPointer() bool {
	d := c.headDecl()
	return d != nil && d.Kind == Pointer
}

func (c Chain) IsArray() bool {
	d := c.headDecl()
	return d != nil && d.Kind == Array
}

func (c Chain) IsFunction() bool {
	d := c.headDecl()
	return d != nil && d.Kind == Function
}

// IsPtrType reports pointer-or-array, the layers "*" and "[]" may strip.
func (c Chain) IsPtrType() bool {
	return c.IsPointer() || c.IsArray()
}

func (c Chain) IsChar() bool {
	s := c.headSpec()
	return s != nil && s.Noun == NounChar
}

func (c Chain) IsInt() bool {
	s := c.headSpec()
	return s != nil && s.Noun == NounInt
}

// IsStruct is true for struct and union specifiers.
func (c Chain) IsStruct() bool {
	s := c.headSpec()
	return s != nil && s.Noun == NounStruct
}

func (c Chain) IsPseudo() bool {
	s := c.headSpec()
	return s != nil && s.Noun.IsPseudo()
}

// IsTypedef reports whether this chain's terminal specifier is a typedef.
func (c Chain) IsTypedef() bool {
	s := c.Spec()
	return s != nil && s.IsTypedef()
}

// Alias returns the typedef symbol that owns this chain, if any.
func (c Chain) Alias() *Symbol {
	if h := c.Head(); h != nil {
		return h.origin().Alias
	}
	return nil
}

// StructDef returns the definition for a struct or pseudo specifier head.
func (c Chain) StructDef() *StructDef {
	if s := c.headSpec(); s != nil {
		return s.Struct
	}
	return nil
}

// Equal compares two chains structurally. Storage classes and array
// lengths are ignored. In relaxed mode a pointer and an array are
// interchangeable at the outermost layer only.
func (c Chain) Equal(other Chain, relaxed bool) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if !nodesEqual(c[i], other[i], relaxed && i == 0) {
			return false
		}
	}
	return true
}

func nodesEqual(a, b Node, relaxed bool) bool {
	switch x := a.(type) {
	case *Specifier:
		y, ok := b.(*Specifier)
		if !ok {
			return false
		}
		return specsEqual(x, y)
	case *Declarator:
		y, ok := b.(*Declarator)
		if !ok {
			return false
		}
		if x.Kind != y.Kind {
			return relaxed && x.Kind != Function && y.Kind != Function
		}
		if x.Kind == Function {
			if len(x.Params) != len(y.Params) {
				return false
			}
			for i := range x.Params {
				if !x.Params[i].Type.Equal(y.Params[i].Type, false) {
					return false
				}
			}
		}
		return true
	}
	return false
}

func specsEqual(x, y *Specifier) bool {
	if x.Noun != y.Noun {
		return false
	}
	switch x.Noun {
	case NounStruct:
		return x.Struct == y.Struct
	case NounInt:
		return x.Long == y.Long && x.Short == y.Short && x.Unsigned == y.Unsigned
	case NounChar:
		return x.Unsigned == y.Unsigned
	case NounFloat:
		return x.Long == y.Long
	}
	return true
}
