package typesystem

import "strings"

// String renders the chain as a C abstract declarator, e.g. "int *[10]".
func (c Chain) String() string {
	return strings.TrimSpace(c.Declare(""))
}

// Declare renders "name" declared with this chain, without storage class
// or struct bodies: Chain{Array(3), Pointer, char}.Declare("v") is
// "char *v[3]".
func (c Chain) Declare(name string) string {
	buf := name
	context := Array
	for _, n := range c {
		if o := n.origin(); o.FromAlias != nil && o.Alias == nil {
			return o.FromAlias.Name + " " + buf
		}
		switch x := n.(type) {
		case *Specifier:
			return x.TypeName() + " " + buf
		case *Declarator:
			switch x.Kind {
			case Pointer:
				buf = "*" + buf
			case Array:
				if context == Pointer {
					buf = "(" + buf + ")"
				}
				buf += "[" + x.Length + "]"
			case Function:
				if context == Pointer {
					buf = "(" + buf + ")"
				}
				params := make([]string, len(x.Params))
				for j, p := range x.Params {
					params[j] = p.Type.String()
				}
				buf += "(" + strings.Join(params, ", ") + ")"
			}
			context = x.Kind
		}
	}
	return buf
}

// TypeName is the specifier without storage class, e.g. "unsigned long int".
func (s *Specifier) TypeName() string {
	var parts []string
	switch s.Noun {
	case NounInt:
		if s.Unsigned {
			parts = append(parts, "unsigned")
		}
		if s.Long {
			parts = append(parts, "long")
		}
		if s.Short {
			parts = append(parts, "short")
		}
		parts = append(parts, "int")
	case NounChar:
		if s.Unsigned {
			parts = append(parts, "unsigned")
		}
		parts = append(parts, "char")
	case NounFloat:
		if s.Long {
			parts = append(parts, "double")
		} else {
			parts = append(parts, "float")
		}
	case NounStruct:
		if s.Struct != nil {
			parts = append(parts, s.Struct.Describe())
		} else {
			parts = append(parts, "struct")
		}
	default:
		parts = append(parts, s.Noun.String())
	}
	return strings.Join(parts, " ")
}
