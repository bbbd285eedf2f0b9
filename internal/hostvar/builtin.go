package hostvar

import (
	"github.com/funvibe/esqlpp/internal/typesystem"
)

// builtin is a runtime record type that programs declare without a
// definition, entered as "typedef struct X X;".
type builtin struct {
	name string
	kind Kind
	// viaPointer is set when objects of this type are only handled through
	// a pointer.
	viaPointer bool
	sym        *typesystem.Symbol
}

func builtinTable() []builtin {
	return []builtin{
		{name: "CUBRIDDA", kind: KindSQLDA, viaPointer: true},
		{name: "DB_VALUE", kind: KindDBValue},
		{name: "DB_OBJECT", kind: KindObjectID, viaPointer: true},
		{name: "DB_DATE", kind: KindDate},
		{name: "DB_TIME", kind: KindTime},
		{name: "DB_UTIME", kind: KindTimestamp},
		{name: "DB_TIMESTAMP", kind: KindTimestamp},
		{name: "DB_MONETARY", kind: KindMonetary},
		{name: "DB_SET", kind: KindBasicSet, viaPointer: true},
		{name: "DB_MULTISET", kind: KindMultiset, viaPointer: true},
		{name: "DB_SEQ", kind: KindSequence, viaPointer: true},
		{name: "DB_COLLECTION", kind: KindCollection, viaPointer: true},
	}
}

// Registrar receives the builtin declarations at the outermost level.
type Registrar interface {
	AddStruct(def *typesystem.StructDef)
	AddSymbols(syms []*typesystem.Symbol)
}

// typedefSymbol builds "typedef <spec> name;" the way a declaration would.
func typedefSymbol(name string, spec *typesystem.Specifier) *typesystem.Symbol {
	sym := typesystem.NewSymbol(name, 0)
	spec.ResetClass()
	spec.Alias = sym
	spec.FromAlias = sym
	sym.Type = typesystem.Chain{spec}
	return sym
}

// RegisterBuiltins enters the runtime record types and DB_INDICATOR.
func (b *Binder) RegisterBuiltins(reg Registrar) {
	short := typesystem.NewSpecifier()
	short.Short = true
	reg.AddSymbols([]*typesystem.Symbol{typedefSymbol("DB_INDICATOR", short)})

	for i := range b.builtins {
		bt := &b.builtins[i]
		def := typesystem.NewStructDef(bt.name, false)
		spec := typesystem.NewSpecifier()
		spec.Noun = typesystem.NounStruct
		spec.Struct = def
		bt.sym = typedefSymbol(bt.name, spec)
		reg.AddStruct(def)
		reg.AddSymbols([]*typesystem.Symbol{bt.sym})
	}
}

func (b *Binder) builtinKind(t typesystem.Chain, viaPointer bool) (Kind, bool) {
	for _, bt := range b.builtins {
		if bt.sym == nil || bt.viaPointer != viaPointer {
			continue
		}
		if t.Equal(bt.sym.Type, true) {
			return bt.kind, true
		}
	}
	return KindBad, false
}
