// Package hostvar binds host-program variables named in embedded
// statements to runtime marshalling kinds.
package hostvar

import (
	"github.com/funvibe/esqlpp/internal/config"
	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/typesystem"
)

// SymbolScope resolves identifiers visible at the current point.
type SymbolScope interface {
	Lookup(name string) *typesystem.Symbol
	SymbolNames() []string
}

// Binder applies dereference operators to host variables, classifies them
// and gathers the resulting references for the current statement.
type Binder struct {
	Reporter *diagnostics.Reporter
	Gatherer *Gatherer

	scope    SymbolScope
	opts     *config.Options
	names    typesystem.PseudoNames
	builtins []builtin
	// stringDummy is the char[] symbol string constants are bound through.
	stringDummy *typesystem.Symbol
}

func NewBinder(r *diagnostics.Reporter, opts *config.Options, scope SymbolScope) *Binder {
	if opts == nil {
		opts = config.Default()
	}
	dummy := typesystem.NewSymbol("", 0)
	char := typesystem.NewSpecifier()
	char.Noun = typesystem.NounChar
	char.Class = typesystem.ClassFixed
	dummy.Type = typesystem.Chain{typesystem.NewArray(""), char}

	return &Binder{
		Reporter: r,
		Gatherer: NewGatherer(),
		scope:    scope,
		opts:     opts,
		names: typesystem.PseudoNames{
			Length: opts.LengthFieldName(),
			Array:  opts.ArrayFieldName(),
		},
		builtins:    builtinTable(),
		stringDummy: dummy,
	}
}

func (b *Binder) report(code diagnostics.ErrorCode, args ...interface{}) *diagnostics.DiagnosticError {
	return b.Reporter.Report(code, args...)
}

// Bind starts a host variable at the visible symbol called name.
func (b *Binder) Bind(name string) *HostVariable {
	sym := b.scope.Lookup(name)
	if sym == nil || len(sym.Type) == 0 {
		err := b.report(diagnostics.ErrH011, name)
		if hint := diagnostics.Suggest(name, b.scope.SymbolNames()); hint != "" {
			err.WithHint(hint)
		}
		return nil
	}
	return NewHostVariable(sym)
}

// DerefPointer strips a pointer or array layer. Through "*" the expression
// gets a "*" prefix; through a subscript the caller appends the index, see
// DerefIndex. Returns nil after reporting if v is not a pointer.
func (b *Binder) DerefPointer(v *HostVariable, viaSubscript bool) *HostVariable {
	if v == nil {
		return nil
	}
	if !v.Type.IsPtrType() {
		op := "*"
		if viaSubscript {
			op = "[]"
		}
		b.report(diagnostics.ErrH002, v.expr, op)
		return nil
	}
	v.Type = v.Type.Next()
	if !viaSubscript {
		v.expr = "*" + v.expr
	}
	return v
}

// DerefIndex applies "[index]".
func (b *Binder) DerefIndex(v *HostVariable, index string) *HostVariable {
	if v == nil {
		return nil
	}
	base := v.postfixBase()
	if b.DerefPointer(v, true) == nil {
		return nil
	}
	v.expr = base + "[" + index + "]"
	return v
}

// DerefField applies ".field", or "->field" when indirect.
func (b *Binder) DerefField(v *HostVariable, field string, indirect bool) *HostVariable {
	if v == nil {
		return nil
	}
	if indirect {
		if !v.Type.IsPtrType() {
			b.report(diagnostics.ErrH003, v.expr)
			return nil
		}
		v.Type = v.Type.Next()
	}

	def := v.Type.StructDef()
	if (!v.Type.IsStruct() && !v.Type.IsPseudo()) || def == nil {
		if indirect {
			b.report(diagnostics.ErrH005, v.expr)
		} else {
			b.report(diagnostics.ErrH004, v.expr)
		}
		return nil
	}

	fdef := def.Field(field)
	if fdef == nil {
		err := b.report(diagnostics.ErrH006, def.Describe(), field)
		if hint := diagnostics.Suggest(field, def.FieldNames()); hint != "" {
			err.WithHint(hint)
		}
		return nil
	}

	op := "."
	if indirect {
		op = "->"
	}
	v.expr = v.postfixBase() + op + field
	v.Type = fdef.Type.Clone()
	return v
}

// TakeAddress applies "&".
func (b *Binder) TakeAddress(v *HostVariable) *HostVariable {
	if v == nil {
		return nil
	}
	v.Type = append(typesystem.Chain{typesystem.NewPointer()}, v.Type...)
	if isIdentifier(v.expr) {
		v.expr = "&" + v.expr
	} else {
		v.expr = "&(" + v.expr + ")"
	}
	return v
}

// kindOf classifies without reporting.
func (b *Binder) kindOf(v *HostVariable, structsAllowed bool) Kind {
	t := v.Type
	if t.IsSpecifier() {
		spec := t.Spec()
		switch spec.Noun {
		case typesystem.NounInt:
			if spec.Unsigned {
				return KindBad
			}
			switch {
			case spec.Long:
				return KindLong
			case spec.Short:
				return KindShort
			}
			return KindInteger
		case typesystem.NounFloat:
			if spec.Long {
				return KindDouble
			}
			return KindFloat
		case typesystem.NounStruct:
			if spec.Struct == nil || spec.Struct.IsUnion {
				return KindBad
			}
			if k, ok := b.builtinKind(t, false); ok {
				return k
			}
			if structsAllowed {
				return KindStruct
			}
		case typesystem.NounVarchar:
			return KindVarchar
		case typesystem.NounBit:
			return KindBit
		case typesystem.NounVarbit:
			return KindVarbit
		}
		return KindBad
	}

	switch {
	case t.IsPointer():
		if t.Next().IsChar() {
			return KindCharPointer
		}
		if k, ok := b.builtinKind(t.Next(), true); ok {
			return k
		}
	case t.IsArray():
		if t.Next().IsChar() {
			return KindCharArray
		}
	}
	return KindBad
}

// Classify maps v's current type to a marshalling kind. Unacceptable types
// are reported and yield KindBad.
func (b *Binder) Classify(v *HostVariable, structsAllowed bool) Kind {
	if v == nil {
		return KindBad
	}
	k := b.kindOf(v, structsAllowed)
	if k == KindBad {
		b.report(diagnostics.ErrH001, v.Type.String(), v.expr)
	}
	return k
}

func (b *Binder) newRef(v, ind *HostVariable, k Kind) *HostRef {
	return &HostRef{Var: v, Ind: ind, kind: k, b: b}
}

// BindReference classifies v and appends it to the active list. A struct
// is expanded into one reference per field, in declaration order. It
// returns the last reference added and how many were added; on any error
// it returns nil and 0 and nothing stays on the list.
func (b *Binder) BindReference(v, ind *HostVariable, structsAllowed bool) (*HostRef, int) {
	if v == nil {
		return nil, 0
	}
	if ind != nil && b.kindOf(ind, false) != KindShort {
		b.report(diagnostics.ErrH007, ind.expr)
		return nil, 0
	}

	k := b.Classify(v, structsAllowed)
	switch k {
	case KindBad:
		return nil, 0
	case KindStruct:
		if ind != nil {
			b.report(diagnostics.ErrH008)
			return nil, 0
		}
		return b.bindFields(v)
	}

	ref := b.newRef(v, ind, k)
	b.Gatherer.Push(ref)
	return ref, 1
}

func (b *Binder) bindFields(v *HostVariable) (*HostRef, int) {
	def := v.Type.StructDef()
	if len(def.Fields) == 0 {
		b.report(diagnostics.ErrH009, v.expr)
		return nil, 0
	}

	list := b.Gatherer.Active()
	start := list.Len()
	errors := 0
	var last *HostRef
	for _, f := range def.Fields {
		fv := NewHostVariable(f)
		fv.expr = "(" + v.expr + ")." + f.Name
		ref, _ := b.BindReference(fv, nil, false)
		if ref == nil {
			errors++
			continue
		}
		last = ref
	}

	if errors > 0 {
		list.truncate(start)
		return nil, 0
	}
	return last, len(def.Fields)
}

// AddHostString binds a C or SQL string literal as a string constant.
func (b *Binder) AddHostString(literal string) *HostRef {
	v := NewHostVariable(b.stringDummy)
	v.expr = TranslateString(literal, false)
	ref, _ := b.BindReference(v, nil, false)
	if ref != nil {
		ref.kind = KindStringConst
	}
	return ref
}

// CheckType returns ref if its kind is in set, otherwise reports that the
// variable must be what and returns nil.
func (b *Binder) CheckType(ref *HostRef, set KindSet, what string) *HostRef {
	if ref == nil {
		return nil
	}
	if set.Has(ref.Kind()) {
		return ref
	}
	b.report(diagnostics.ErrH010, ref.Expr(), what)
	return nil
}

// CheckList reports every reference on the active list that cannot be
// passed as a plain host variable.
func (b *Binder) CheckList() {
	for _, ref := range b.Gatherer.lists[b.Gatherer.active].Refs() {
		if !ref.Kind().IsVariable() {
			b.report(diagnostics.ErrH001, ref.Var.Type.String(), ref.Expr())
		}
	}
}
