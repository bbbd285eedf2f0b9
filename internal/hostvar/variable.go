package hostvar

import (
	"strings"

	"github.com/funvibe/esqlpp/internal/typesystem"
)

// HostVariable is a location in the host program, described by its own
// copy of a type chain and the C expression that reaches it.
type HostVariable struct {
	Type typesystem.Chain
	expr string
}

// NewHostVariable starts a variable at a declared symbol.
func NewHostVariable(sym *typesystem.Symbol) *HostVariable {
	return &HostVariable{Type: sym.Type.Clone(), expr: sym.Name}
}

// Expr is the C rvalue expression for the variable.
func (v *HostVariable) Expr() string {
	return v.expr
}

// Wrap parenthesizes the whole expression, as for ":(*p).x".
func (v *HostVariable) Wrap() {
	v.expr = "(" + v.expr + ")"
}

// postfixBase returns the expression ready for a postfix operator.
func (v *HostVariable) postfixBase() string {
	if strings.HasPrefix(v.expr, "*") || strings.HasPrefix(v.expr, "&") {
		return "(" + v.expr + ")"
	}
	return v.expr
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// addrExpr is the address the runtime reads or writes: the value itself
// for char strings, the byte array for pseudo-types, &(expr) otherwise.
func (v *HostVariable) addrExpr(arrayName string) string {
	switch {
	case v.Type.IsPtrType() && v.Type.Next().IsChar():
		return v.expr
	case v.Type.IsPseudo():
		return "(" + v.expr + ")." + arrayName
	}
	return "&(" + v.expr + ")"
}
