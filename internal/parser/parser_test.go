package parser_test

import (
	"strings"
	"testing"

	"github.com/funvibe/esqlpp/internal/config"
	"github.com/funvibe/esqlpp/internal/parser"
	"github.com/funvibe/esqlpp/internal/pipeline"
	"github.com/funvibe/esqlpp/internal/translate"
)

// run translates input as file t.ec. Without opts, #line markers are
// suppressed so that the output is easy to compare.
func run(t *testing.T, input string, opts *config.Options) *pipeline.PipelineContext {
	t.Helper()
	if opts == nil {
		opts = config.Default()
		opts.SuppressLineDirectives = true
	}
	ctx := pipeline.NewFileContext("t.ec", input, opts)
	pp := &parser.ParserProcessor{}
	return pp.Process(ctx)
}

func runClean(t *testing.T, input string, opts *config.Options) *pipeline.PipelineContext {
	t.Helper()
	ctx := run(t, input, opts)
	if len(ctx.Errors) > 0 {
		var msgs []string
		for _, err := range ctx.Errors {
			msgs = append(msgs, err.Error())
		}
		t.Fatalf("translation failed with errors:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
	return ctx
}

func kinds(records []translate.Record) []translate.StatementKind {
	var out []translate.StatementKind
	for _, r := range records {
		out = append(out, r.Kind)
	}
	return out
}

func expectKinds(t *testing.T, records []translate.Record, want ...translate.StatementKind) {
	t.Helper()
	got := kinds(records)
	if len(got) != len(want) {
		t.Fatalf("got kinds %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

const hostDecls = `EXEC SQL BEGIN DECLARE SECTION;
int id;
char name[20];
char *stmt;
EXEC SQL END DECLARE SECTION;
`

func TestEchoPlainSource(t *testing.T) {
	input := "int main(void)\n{\n\treturn 0;\n}\n"
	ctx := runClean(t, input, nil)

	out := ctx.Output.String()
	if !strings.HasSuffix(out, input) {
		t.Errorf("source not echoed:\n%s", out)
	}
	if !strings.Contains(out, `#include "cubrid_esql.h"`) {
		t.Errorf("missing runtime include:\n%s", out)
	}
	if len(ctx.Records) != 0 {
		t.Errorf("got %d records, want 0", len(ctx.Records))
	}
}

func TestDeclareSectionReprint(t *testing.T) {
	input := `EXEC SQL BEGIN DECLARE SECTION;
VARCHAR name[20];
int id;
EXEC SQL END DECLARE SECTION;
`
	tests := []struct {
		name  string
		setup func(o *config.Options)
		want  string
	}{
		{
			name:  "default",
			setup: func(o *config.Options) {},
			want:  `struct { int length; char array[20+1]; } name = { 20, "" }; `,
		},
		{
			name:  "varchar2_style",
			setup: func(o *config.Options) { o.Varchar2Style = true },
			want:  `struct { int len; char arr[20+1]; } name = { 20, "" }; `,
		},
		{
			name:  "no_length",
			setup: func(o *config.Options) { o.DisableVarcharLength = true },
			want:  `struct { int length; char array[20+1]; } name; `,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := config.Default()
			opts.SuppressLineDirectives = true
			tt.setup(opts)

			out := runClean(t, input, opts).Output.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("output does not contain %q:\n%s", tt.want, out)
			}
			if strings.Contains(out, "VARCHAR") || strings.Contains(out, "EXEC SQL") {
				t.Errorf("embedded text left in output:\n%s", out)
			}
			if !strings.Contains(out, "\nint id;\n") {
				t.Errorf("plain declaration not echoed:\n%s", out)
			}
		})
	}
}

func TestDeclareSectionKeepsInitializer(t *testing.T) {
	input := `EXEC SQL BEGIN DECLARE SECTION;
int n = 3, m;
VARCHAR a[5], b[8];
EXEC SQL END DECLARE SECTION;
`
	out := runClean(t, input, nil).Output.String()
	if !strings.Contains(out, "int n = 3, m;") {
		t.Errorf("declaration without pseudo-types was rewritten:\n%s", out)
	}
	want := `struct { int length; char array[5+1]; } a = { 5, "" }; struct { int length; char array[8+1]; } b = { 8, "" }; `
	if !strings.Contains(out, want) {
		t.Errorf("output does not contain %q:\n%s", want, out)
	}
}

func TestStaticStatement(t *testing.T) {
	input := hostDecls + "EXEC SQL SELECT name INTO :name FROM t WHERE id = :id;\n"
	ctx := runClean(t, input, nil)

	expectKinds(t, ctx.Records, translate.KindStatic)
	rec := ctx.Records[0]
	if want := "SELECT name INTO ? FROM t WHERE id = ?"; rec.Text != want {
		t.Errorf("got %q, want %q", rec.Text, want)
	}
	if rec.Serial != -1 {
		t.Errorf("serial = %d, want -1", rec.Serial)
	}
	if rec.Line != 6 {
		t.Errorf("line = %d, want 6", rec.Line)
	}

	out := ctx.Output.String()
	for _, want := range []string{
		`uci_static(-1, "SELECT name INTO ? FROM t WHERE id = ?", 38, 1);`,
		"DB_TYPE_INTEGER",
		"uci_get_value(-1, ",
		"uci_end();",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestRepeatedStatementsGetSerials(t *testing.T) {
	input := "EXEC SQL REPEAT DELETE FROM t;\nEXEC SQL REPEAT DELETE FROM u;\nEXEC SQL DELETE FROM v;\n"
	ctx := runClean(t, input, nil)

	want := []int{0, 1, -1}
	for i, rec := range ctx.Records {
		if rec.Serial != want[i] {
			t.Errorf("record %d: serial %d, want %d", i, rec.Serial, want[i])
		}
	}
	if got := ctx.Records[2].Text; got != "DELETE FROM v" {
		t.Errorf("got %q, want %q", got, "DELETE FROM v")
	}
}

func TestStructHostVariable(t *testing.T) {
	input := `EXEC SQL BEGIN DECLARE SECTION;
struct emp { int id; char name[20]; } e;
EXEC SQL END DECLARE SECTION;
EXEC SQL INSERT INTO t VALUES (:e);
`
	ctx := runClean(t, input, nil)
	expectKinds(t, ctx.Records, translate.KindStatic)
	if want := "INSERT INTO t VALUES (? , ? )"; ctx.Records[0].Text != want {
		t.Errorf("got %q, want %q", ctx.Records[0].Text, want)
	}
	if !strings.Contains(ctx.Output.String(), "struct emp { int id; char name[20]; } e;") {
		t.Errorf("struct declaration not echoed:\n%s", ctx.Output.String())
	}
}

func TestCursorLifecycle(t *testing.T) {
	input := hostDecls + `EXEC SQL DECLARE c CURSOR FOR SELECT name FROM t WHERE id = :id;
EXEC SQL OPEN c;
EXEC SQL FETCH c INTO :name;
EXEC SQL CLOSE c;
`
	ctx := runClean(t, input, nil)
	expectKinds(t, ctx.Records,
		translate.KindOpenCursor, translate.KindFetchCursor, translate.KindCloseCursor)

	if want := "SELECT name FROM t WHERE id = ?"; ctx.Records[0].Text != want {
		t.Errorf("got %q, want %q", ctx.Records[0].Text, want)
	}
	if strings.Contains(ctx.Output.String(), "DECLARE c CURSOR") {
		t.Errorf("cursor declaration left in output:\n%s", ctx.Output.String())
	}
}

func TestFetchIntoDereferencedVarchar(t *testing.T) {
	input := `EXEC SQL BEGIN DECLARE SECTION;
VARCHAR arr[3][10];
EXEC SQL END DECLARE SECTION;
EXEC SQL DECLARE c CURSOR FOR SELECT name FROM t;
EXEC SQL FETCH c INTO :*arr;
`
	ctx := runClean(t, input, nil)
	out := ctx.Output.String()
	for _, want := range []string{
		"(void *)((*arr).array)",
		"(int)(sizeof((*arr).array))",
		"&(*arr).length",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestDynamicStatements(t *testing.T) {
	input := hostDecls + `EXEC SQL PREPARE s FROM :stmt;
EXEC SQL DECLARE c CURSOR FOR s;
EXEC SQL OPEN c USING :id;
EXEC SQL EXECUTE s USING :id INTO :name;
EXEC SQL EXECUTE IMMEDIATE :stmt;
`
	ctx := runClean(t, input, nil)
	expectKinds(t, ctx.Records,
		translate.KindPrepare, translate.KindOpenCursor, translate.KindExecute, translate.KindExecuteImmediate)
}

func TestObjectStatements(t *testing.T) {
	input := `EXEC SQL BEGIN DECLARE SECTION;
DB_OBJECT *obj;
CUBRIDDA *da;
char name[20];
EXEC SQL END DECLARE SECTION;
EXEC SQL DESCRIBE OBJECT :obj ON name, age INTO :da;
EXEC SQL FETCH OBJECT :obj ON name INTO :name;
`
	ctx := runClean(t, input, nil)
	expectKinds(t, ctx.Records, translate.KindObjectDescribe, translate.KindObjectFetch)
}

func TestConnectAndTransactions(t *testing.T) {
	input := `EXEC SQL CONNECT TO demodb USER dba;
EXEC SQL COMMIT WORK;
EXEC SQL ROLLBACK;
EXEC SQL DISCONNECT;
`
	ctx := runClean(t, input, nil)
	expectKinds(t, ctx.Records,
		translate.KindConnect, translate.KindCommit, translate.KindRollback, translate.KindDisconnect)

	out := ctx.Output.String()
	if !strings.Contains(out, `uci_connect("demodb", "dba", (char *)0);`) {
		t.Errorf("unexpected connect call:\n%s", out)
	}
}

func TestWheneverRestoredAtScopeEnd(t *testing.T) {
	input := `void f(void)
{
EXEC SQL WHENEVER SQLERROR STOP;
EXEC SQL COMMIT;
}
EXEC SQL ROLLBACK;
`
	out := runClean(t, input, nil).Output.String()

	commit := strings.Index(out, "uci_commit()")
	rollback := strings.Index(out, "uci_rollback()")
	if commit < 0 || rollback < commit {
		t.Fatalf("statements missing or out of order:\n%s", out)
	}
	if !strings.Contains(out[commit:rollback], "if(sqlca.sqlcode < 0) uci_stop();") {
		t.Errorf("WHENEVER action not emitted inside the function:\n%s", out)
	}
	if strings.Contains(out[rollback:], "uci_stop") {
		t.Errorf("WHENEVER action leaked out of its scope:\n%s", out)
	}
}

func TestLineDirectives(t *testing.T) {
	opts := config.Default()

	out := runClean(t, "EXEC SQL COMMIT;\nint x;\n", opts).Output.String()
	if !strings.Contains(out, "#line 1 \"t.ec\"\n") {
		t.Errorf("missing #line marker:\n%s", out)
	}
	if !strings.HasSuffix(out, "\nint x;\n") {
		t.Errorf("trailing source not echoed:\n%s", out)
	}

	out = runClean(t, "EXEC SQL WHENEVER\n  SQLERROR CONTINUE;\nint y;\n", opts).Output.String()
	if !strings.Contains(out, "#line 2 \"t.ec\"\n\nint y;") {
		t.Errorf("line numbering not restored after a multi-line statement:\n%s", out)
	}
}

func TestSuppressLineDirectives(t *testing.T) {
	out := runClean(t, "EXEC SQL COMMIT;\n", nil).Output.String()
	if strings.Contains(out, "#line") {
		t.Errorf("unexpected #line marker:\n%s", out)
	}
}

func TestNestedScopesShadowHostVariables(t *testing.T) {
	input := `EXEC SQL BEGIN DECLARE SECTION;
int id;
EXEC SQL END DECLARE SECTION;
void f(void)
{
EXEC SQL BEGIN DECLARE SECTION;
char id[8];
EXEC SQL END DECLARE SECTION;
EXEC SQL DELETE FROM t WHERE code = :id;
}
EXEC SQL DELETE FROM t WHERE n = :id;
`
	ctx := runClean(t, input, nil)
	out := ctx.Output.String()

	first := strings.Index(out, "DB_TYPE_CHAR")
	second := strings.Index(out, "DB_TYPE_INTEGER")
	if first < 0 || second < first {
		t.Errorf("inner declaration did not shadow the outer one:\n%s", out)
	}
}

func TestTypedefNameRedeclaredInInnerScope(t *testing.T) {
	input := `EXEC SQL BEGIN DECLARE SECTION;
typedef int T;
EXEC SQL END DECLARE SECTION;
void f(void)
{
EXEC SQL BEGIN DECLARE SECTION;
float T, *p;
EXEC SQL END DECLARE SECTION;
EXEC SQL DELETE FROM t WHERE x = :T;
}
EXEC SQL BEGIN DECLARE SECTION;
T b;
EXEC SQL END DECLARE SECTION;
EXEC SQL DELETE FROM t WHERE y = :b;
`
	ctx := runClean(t, input, nil)
	out := ctx.Output.String()

	inner := strings.Index(out, "DB_TYPE_FLOAT")
	outer := strings.Index(out, "DB_TYPE_INTEGER")
	if inner < 0 || outer < inner {
		t.Errorf("typedef name not redeclared as a variable, or not restored after the scope:\n%s", out)
	}
}
