package hostvar

import (
	"sort"
	"testing"

	"github.com/funvibe/esqlpp/internal/config"
	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/typesystem"
)

type testScope struct {
	syms    map[string]*typesystem.Symbol
	structs []*typesystem.StructDef
}

func newTestScope() *testScope {
	return &testScope{syms: make(map[string]*typesystem.Symbol)}
}

func (s *testScope) Lookup(name string) *typesystem.Symbol { return s.syms[name] }

func (s *testScope) SymbolNames() []string {
	var names []string
	for n := range s.syms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *testScope) AddStruct(def *typesystem.StructDef) { s.structs = append(s.structs, def) }

func (s *testScope) AddSymbols(syms []*typesystem.Symbol) {
	for _, sym := range syms {
		s.syms[sym.Name] = sym
	}
}

func spec(noun typesystem.Noun) *typesystem.Specifier {
	s := typesystem.NewSpecifier()
	s.Noun = noun
	s.Class = typesystem.ClassFixed
	return s
}

func declare(scope *testScope, name string, nodes ...typesystem.Node) *typesystem.Symbol {
	sym := typesystem.NewSymbol(name, 1)
	sym.Type = typesystem.Chain(nodes)
	if scope != nil {
		scope.AddSymbols([]*typesystem.Symbol{sym})
	}
	return sym
}

func newTestBinder() (*Binder, *testScope) {
	scope := newTestScope()
	b := NewBinder(diagnostics.NewReporter("test.ec"), config.Default(), scope)
	b.RegisterBuiltins(scope)
	return b, scope
}

func pointStruct(fields ...string) *typesystem.StructDef {
	def := typesystem.NewStructDef("point", false)
	def.Fields = []*typesystem.Symbol{}
	for _, f := range fields {
		def.Fields = append(def.Fields, declare(nil, f, spec(typesystem.NounInt)))
	}
	return def
}

func structSpec(def *typesystem.StructDef) *typesystem.Specifier {
	s := spec(typesystem.NounStruct)
	s.Struct = def
	return s
}

func TestDerefPointerThenAddress(t *testing.T) {
	b, scope := newTestBinder()
	declare(scope, "a", spec(typesystem.NounInt))
	declare(scope, "p", typesystem.NewPointer(), spec(typesystem.NounInt))

	v := b.DerefPointer(b.Bind("p"), false)
	if v == nil {
		t.Fatalf("deref failed: %v", b.Reporter.Errors)
	}
	if got := v.Expr(); got != "*p" {
		t.Errorf("got %q, want %q", got, "*p")
	}
	if got := v.Type.String(); got != "int" {
		t.Errorf("got %q, want %q", got, "int")
	}

	v = b.TakeAddress(v)
	if got := v.Expr(); got != "&(*p)" {
		t.Errorf("got %q, want %q", got, "&(*p)")
	}
	if got := v.Type.String(); got != "int *" {
		t.Errorf("got %q, want %q", got, "int *")
	}

	if b.DerefPointer(b.Bind("a"), false) != nil {
		t.Error("dereferencing an int must fail")
	}
	if !b.Reporter.HasCode(diagnostics.ErrH002) {
		t.Error("expected a cannot-dereference diagnostic")
	}
}

func TestDerefIndexAndField(t *testing.T) {
	b, scope := newTestBinder()
	def := pointStruct("x", "y")
	declare(scope, "pts", typesystem.NewArray("4"), structSpec(def))
	declare(scope, "pp", typesystem.NewPointer(), structSpec(def))

	v := b.DerefField(b.DerefIndex(b.Bind("pts"), "i"), "y", false)
	if v == nil {
		t.Fatalf("deref failed: %v", b.Reporter.Errors)
	}
	if got := v.Expr(); got != "pts[i].y" {
		t.Errorf("got %q, want %q", got, "pts[i].y")
	}

	v = b.DerefField(b.Bind("pp"), "x", true)
	if got := v.Expr(); got != "pp->x" {
		t.Errorf("got %q, want %q", got, "pp->x")
	}

	v = b.DerefField(b.DerefPointer(b.Bind("pp"), false), "x", false)
	if got := v.Expr(); got != "(*pp).x" {
		t.Errorf("got %q, want %q", got, "(*pp).x")
	}
}

func TestDerefFieldErrors(t *testing.T) {
	b, scope := newTestBinder()
	def := pointStruct("x", "y")
	declare(scope, "pt", structSpec(def))
	declare(scope, "n", spec(typesystem.NounInt))

	tests := []struct {
		name     string
		var_     string
		field    string
		indirect bool
		code     diagnostics.ErrorCode
	}{
		{"unknown field", "pt", "xx", false, diagnostics.ErrH006},
		{"arrow on struct", "pt", "x", true, diagnostics.ErrH003},
		{"dot on int", "n", "x", false, diagnostics.ErrH004},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.Reporter.Errors = nil
			if v := b.DerefField(b.Bind(tt.var_), tt.field, tt.indirect); v != nil {
				t.Fatalf("expected failure, got %q", v.Expr())
			}
			if len(b.Reporter.Errors) != 1 || b.Reporter.Errors[0].Code != tt.code {
				t.Fatalf("got %v, want one %s", b.Reporter.Errors, tt.code)
			}
		})
	}

	b.Reporter.Errors = nil
	b.DerefField(b.Bind("pt"), "xx", false)
	if got := b.Reporter.Errors[0].Hint; got != "x" {
		t.Errorf("hint = %q, want %q", got, "x")
	}
}

func TestBindUndeclared(t *testing.T) {
	b, scope := newTestBinder()
	declare(scope, "counter", spec(typesystem.NounInt))

	if b.Bind("countr") != nil {
		t.Fatal("expected nil for an undeclared name")
	}
	err := b.Reporter.Errors[0]
	if err.Code != diagnostics.ErrH011 || err.Hint != "counter" {
		t.Errorf("got %s hint %q, want H011 hint counter", err.Code, err.Hint)
	}
}

func TestClassify(t *testing.T) {
	b, scope := newTestBinder()

	long := spec(typesystem.NounInt)
	long.Long = true
	short := spec(typesystem.NounInt)
	short.Short = true
	unsigned := spec(typesystem.NounInt)
	unsigned.Unsigned = true
	double := spec(typesystem.NounFloat)
	double.Long = true
	union := typesystem.NewStructDef("u", true)
	union.Fields = pointStruct("x").Fields

	alias := func(name string) typesystem.Node {
		return scope.syms[name].Type.Clone()[0]
	}

	tests := []struct {
		name  string
		nodes []typesystem.Node
		want  Kind
	}{
		{"int", []typesystem.Node{spec(typesystem.NounInt)}, KindInteger},
		{"long", []typesystem.Node{long}, KindLong},
		{"short", []typesystem.Node{short}, KindShort},
		{"unsigned", []typesystem.Node{unsigned}, KindBad},
		{"float", []typesystem.Node{spec(typesystem.NounFloat)}, KindFloat},
		{"double", []typesystem.Node{double}, KindDouble},
		{"char", []typesystem.Node{spec(typesystem.NounChar)}, KindBad},
		{"char pointer", []typesystem.Node{typesystem.NewPointer(), spec(typesystem.NounChar)}, KindCharPointer},
		{"char array", []typesystem.Node{typesystem.NewArray("8"), spec(typesystem.NounChar)}, KindCharArray},
		{"int pointer", []typesystem.Node{typesystem.NewPointer(), spec(typesystem.NounInt)}, KindBad},
		{"union", []typesystem.Node{structSpec(union)}, KindBad},
		{"user struct", []typesystem.Node{structSpec(pointStruct("x"))}, KindStruct},
		{"varchar", []typesystem.Node{spec(typesystem.NounVarchar)}, KindVarchar},
		{"bit", []typesystem.Node{spec(typesystem.NounBit)}, KindBit},
		{"varbit", []typesystem.Node{spec(typesystem.NounVarbit)}, KindVarbit},
		{"DB_VALUE", []typesystem.Node{alias("DB_VALUE")}, KindDBValue},
		{"DB_DATE", []typesystem.Node{alias("DB_DATE")}, KindDate},
		{"DB_OBJECT pointer", []typesystem.Node{typesystem.NewPointer(), alias("DB_OBJECT")}, KindObjectID},
		{"DB_OBJECT direct", []typesystem.Node{alias("DB_OBJECT")}, KindStruct},
		{"CUBRIDDA pointer", []typesystem.Node{typesystem.NewPointer(), alias("CUBRIDDA")}, KindSQLDA},
		{"DB_VALUE pointer", []typesystem.Node{typesystem.NewPointer(), alias("DB_VALUE")}, KindBad},
		{"DB_SEQ pointer", []typesystem.Node{typesystem.NewPointer(), alias("DB_SEQ")}, KindSequence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewHostVariable(declare(nil, "v", tt.nodes...))
			if got := b.Classify(v, true); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBindStructExpandsFields(t *testing.T) {
	b, scope := newTestBinder()
	declare(scope, "pt", structSpec(pointStruct("x", "y", "z")))

	ref, n := b.BindReference(b.Bind("pt"), nil, true)
	if ref == nil || n != 3 {
		t.Fatalf("got %v, %d refs; errors %v", ref, n, b.Reporter.Errors)
	}
	refs := b.Gatherer.Input().Refs()
	want := []string{"(pt).x", "(pt).y", "(pt).z"}
	if len(refs) != len(want) {
		t.Fatalf("got %d refs, want %d", len(refs), len(want))
	}
	for i, r := range refs {
		if got := r.Expr(); got != want[i] {
			t.Errorf("ref %d: got %q, want %q", i, got, want[i])
		}
		if r.Kind() != KindInteger {
			t.Errorf("ref %d: kind %s, want INTEGER", i, r.Kind())
		}
	}
}

func TestBindStructErrors(t *testing.T) {
	b, scope := newTestBinder()
	empty := typesystem.NewStructDef("empty", false)
	declare(scope, "e", structSpec(empty))
	declare(scope, "pt", structSpec(pointStruct("x", "y")))
	declare(scope, "ind", spec(typesystem.NounInt))
	declare(scope, "sind", typesystem.Chain{scope.syms["DB_INDICATOR"].Type.Clone()[0]}...)

	nested := typesystem.NewStructDef("outer", false)
	nested.Fields = []*typesystem.Symbol{
		declare(nil, "a", spec(typesystem.NounInt)),
		declare(nil, "inner", structSpec(pointStruct("x"))),
	}
	declare(scope, "o", structSpec(nested))

	tests := []struct {
		name string
		v    string
		ind  string
		code diagnostics.ErrorCode
	}{
		{"no fields", "e", "", diagnostics.ErrH009},
		{"struct with indicator", "pt", "sind", diagnostics.ErrH008},
		{"non-short indicator", "pt", "ind", diagnostics.ErrH007},
		{"nested struct field", "o", "", diagnostics.ErrH001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.Reporter.Errors = nil
			b.Gatherer.ClearAll()
			var ind *HostVariable
			if tt.ind != "" {
				ind = b.Bind(tt.ind)
			}
			ref, n := b.BindReference(b.Bind(tt.v), ind, true)
			if ref != nil || n != 0 {
				t.Errorf("got %d refs, want none", n)
			}
			if b.Gatherer.Input().Len() != 0 {
				t.Errorf("partial refs left on the list: %d", b.Gatherer.Input().Len())
			}
			if !b.Reporter.HasCode(tt.code) {
				t.Errorf("got %v, want %s", b.Reporter.Errors, tt.code)
			}
		})
	}
}

func TestIndicatorMustBeShort(t *testing.T) {
	b, scope := newTestBinder()
	declare(scope, "n", spec(typesystem.NounInt))
	declare(scope, "ind", spec(typesystem.NounInt))
	declare(scope, "sind", scope.syms["DB_INDICATOR"].Type.Clone()...)

	if ref, _ := b.BindReference(b.Bind("n"), b.Bind("ind"), false); ref != nil {
		t.Error("an int indicator must be rejected")
	}
	ref, n := b.BindReference(b.Bind("n"), b.Bind("sind"), false)
	if ref == nil || n != 1 {
		t.Fatalf("short indicator rejected: %v", b.Reporter.Errors)
	}
	if got := ref.IndAddrExpr(); got != "&(sind)" {
		t.Errorf("got %q, want %q", got, "&(sind)")
	}
}

func TestRefFragments(t *testing.T) {
	b, scope := newTestBinder()
	names := typesystem.PseudoNames{Length: "length", Array: "array"}
	vc := spec(typesystem.NounVarchar)
	vc.Struct = typesystem.NewPseudoDef(typesystem.NounVarchar, "20", names)
	declare(scope, "vc", vc)
	declare(scope, "buf", typesystem.NewArray("10"), spec(typesystem.NounChar))
	declare(scope, "s", typesystem.NewPointer(), spec(typesystem.NounChar))
	declare(scope, "d", spec(typesystem.NounFloat))

	tests := []struct {
		name                        string
		v                           string
		prec, in, out, addr, indAdr string
	}{
		{"varchar", "vc", "sizeof((vc).array)-1", "(vc).length", "sizeof((vc).array)", "(vc).array", "NULL"},
		{"char array", "buf", "sizeof(buf)-1", "sizeof(buf)", "sizeof(buf)", "buf", "NULL"},
		{"char pointer", "s", "0", "strlen(s)", "strlen(s)+1", "s", "NULL"},
		{"float", "d", "0", "sizeof(float)", "sizeof(float)", "&(d)", "NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, _ := b.BindReference(b.Bind(tt.v), nil, false)
			if ref == nil {
				t.Fatalf("bind failed: %v", b.Reporter.Errors)
			}
			checks := []struct{ what, got, want string }{
				{"precision", ref.Precision(), tt.prec},
				{"input size", ref.InputSize(), tt.in},
				{"output size", ref.OutputSize(), tt.out},
				{"address", ref.AddrExpr(), tt.addr},
				{"indicator address", ref.IndAddrExpr(), tt.indAdr},
			}
			for _, c := range checks {
				if c.got != c.want {
					t.Errorf("%s: got %q, want %q", c.what, c.got, c.want)
				}
			}
		})
	}

	opts := config.Default()
	opts.InternalIndicator = true
	b2 := NewBinder(diagnostics.NewReporter(""), opts, scope)
	ref, _ := b2.BindReference(b2.Bind("d"), nil, false)
	if got := ref.IndAddrExpr(); got != "&uci_null_ind" {
		t.Errorf("got %q, want %q", got, "&uci_null_ind")
	}
}

func TestVarchar2FieldNames(t *testing.T) {
	opts := config.Default()
	opts.Varchar2Style = true
	scope := newTestScope()
	b := NewBinder(diagnostics.NewReporter(""), opts, scope)

	vc := spec(typesystem.NounVarchar)
	vc.Struct = typesystem.NewPseudoDef(typesystem.NounVarchar, "8", typesystem.PseudoNames{Length: "len", Array: "arr"})
	declare(scope, "v", vc)

	ref, _ := b.BindReference(b.Bind("v"), nil, false)
	if got := ref.InputSize(); got != "(v).len" {
		t.Errorf("got %q, want %q", got, "(v).len")
	}
	if got := ref.AddrExpr(); got != "(v).arr" {
		t.Errorf("got %q, want %q", got, "(v).arr")
	}

	length := b.DerefField(b.Bind("v"), "len", false)
	if got := b.Classify(length, false); got != KindInteger {
		t.Errorf("got %s, want INTEGER", got)
	}
}

func TestAddHostStringAndCheckType(t *testing.T) {
	b, scope := newTestBinder()
	declare(scope, "n", spec(typesystem.NounInt))

	ref := b.AddHostString("'demodb'")
	if ref == nil {
		t.Fatalf("AddHostString failed: %v", b.Reporter.Errors)
	}
	if ref.Kind() != KindStringConst {
		t.Errorf("got %s, want STRING_CONST", ref.Kind())
	}
	if got := ref.Expr(); got != `"demodb"` {
		t.Errorf("got %q, want %q", got, `"demodb"`)
	}
	if b.CheckType(ref, StringKinds, WantCharString) == nil {
		t.Error("string constant must satisfy the string check")
	}

	nref, _ := b.BindReference(b.Bind("n"), nil, false)
	if b.CheckType(nref, StringKinds, WantCharString) != nil {
		t.Error("an int must fail the string check")
	}
	want := `host variable "n" must be a character string`
	if got := b.Reporter.Errors[len(b.Reporter.Errors)-1].Message; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCheckList(t *testing.T) {
	b, scope := newTestBinder()
	declare(scope, "da", typesystem.NewPointer(), scope.syms["CUBRIDDA"].Type.Clone()[0])
	declare(scope, "n", spec(typesystem.NounInt))

	b.BindReference(b.Bind("n"), nil, true)
	b.CheckList()
	if b.Reporter.Count() != 0 {
		t.Fatalf("unexpected errors: %v", b.Reporter.Errors)
	}
	b.BindReference(b.Bind("da"), nil, true)
	b.CheckList()
	if !b.Reporter.HasCode(diagnostics.ErrH001) {
		t.Error("a descriptor in a host variable list must be reported")
	}
}

func TestTranslateString(t *testing.T) {
	tests := []struct {
		in       string
		inString bool
		want     string
	}{
		{`'abc'`, false, `"abc"`},
		{`'it''s'`, false, `"it's"`},
		{`'it''s'`, true, `'it''s'`},
		{`'say "hi"'`, false, `"say \"hi\""`},
		{`"abc"`, false, `"abc"`},
		{`"abc"`, true, `\"abc\"`},
		{`"a\"b"`, false, `"a\\\"b"`},
	}
	for _, tt := range tests {
		if got := TranslateString(tt.in, tt.inString); got != tt.want {
			t.Errorf("TranslateString(%q, %v) = %q, want %q", tt.in, tt.inString, got, tt.want)
		}
	}
}
