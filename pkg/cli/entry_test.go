package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/esqlpp/internal/config"
	"github.com/funvibe/esqlpp/internal/manifest"
	"github.com/funvibe/esqlpp/internal/translate"
)

const sample = `EXEC SQL BEGIN DECLARE SECTION;
int id;
VARCHAR name[20];
EXEC SQL END DECLARE SECTION;
int main(void)
{
	EXEC SQL SELECT name INTO :name FROM t WHERE id = :id;
	return 0;
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, inv *invocation, o *config.Options)
	}{
		{
			name: "grouped_short_flags",
			args: []string{"-ls2", "a.ec"},
			check: func(t *testing.T, inv *invocation, o *config.Options) {
				if !o.SuppressLineDirectives || !o.DumpScopeInfo || !o.Varchar2Style {
					t.Errorf("flags not applied: %+v", o)
				}
				if len(inv.inputs) != 1 || inv.inputs[0] != "a.ec" {
					t.Errorf("got inputs %v, want [a.ec]", inv.inputs)
				}
			},
		},
		{
			name: "short_value_forms",
			args: []string{"-o", "out.c", "-hmy.h"},
			check: func(t *testing.T, inv *invocation, o *config.Options) {
				if o.OutputFile != "out.c" {
					t.Errorf("got %q, want %q", o.OutputFile, "out.c")
				}
				if o.IncludeFile != "my.h" {
					t.Errorf("got %q, want %q", o.IncludeFile, "my.h")
				}
			},
		},
		{
			name: "long_forms",
			args: []string{"--output-file=x.c", "--include-file", "y.h", "--unsafe-null", "--internal-indicator", "--manifest", "m.db"},
			check: func(t *testing.T, inv *invocation, o *config.Options) {
				if o.OutputFile != "x.c" || o.IncludeFile != "y.h" || o.Manifest != "m.db" {
					t.Errorf("value flags not applied: %+v", o)
				}
				if !o.UnsafeNull || !o.InternalIndicator {
					t.Errorf("bool flags not applied: %+v", o)
				}
			},
		},
		{
			name: "trace_and_varchar_length",
			args: []string{"-t", "-d", "-m"},
			check: func(t *testing.T, inv *invocation, o *config.Options) {
				if !o.EnableUciTrace || !o.DisableVarcharLength {
					t.Errorf("flags not applied: %+v", o)
				}
			},
		},
		{
			name: "version",
			args: []string{"-v"},
			check: func(t *testing.T, inv *invocation, o *config.Options) {
				if !inv.version {
					t.Errorf("version not set")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := parseArgs(tt.args)
			if err != nil {
				t.Fatalf("parseArgs(%v): %v", tt.args, err)
			}
			o := config.Default()
			for _, set := range inv.overrides {
				set(o)
			}
			tt.check(t, inv, o)
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-x"},
		{"--no-such-flag"},
		{"-o"},
		{"--manifest"},
		{"--unsafe-null=yes"},
	} {
		if _, err := parseArgs(args); err == nil {
			t.Errorf("parseArgs(%v): expected an error", args)
		}
	}
}

func TestRunWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "prog.ec", sample)

	var stdout, stderr bytes.Buffer
	if code := Run([]string{"-l", input}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}

	data, err := os.ReadFile(filepath.Join(dir, "prog.c"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "EXEC SQL") || strings.Contains(out, "VARCHAR") {
		t.Errorf("embedded text left in output:\n%s", out)
	}
	if !strings.Contains(out, "uci_static(") {
		t.Errorf("statement not translated:\n%s", out)
	}
	if strings.Contains(out, "#line") {
		t.Errorf("-l did not suppress #line markers:\n%s", out)
	}
}

func TestRunStdinToStdout(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, strings.NewReader("EXEC SQL COMMIT;\n"), &stdout, &stderr)
	if code != 1 {
		t.Fatalf("missing config file: exit code %d, want 1", code)
	}

	stdout.Reset()
	stderr.Reset()
	dir := t.TempDir()
	cfg := writeFile(t, dir, "esqlpp.yaml", "include_file: my_runtime.h\n")
	code = Run([]string{"--config", cfg}, strings.NewReader("EXEC SQL COMMIT;\n"), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), `#include "my_runtime.h"`) {
		t.Errorf("options file not applied:\n%s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "uci_commit()") {
		t.Errorf("statement not translated:\n%s", stdout.String())
	}
}

func TestRunReportsErrorsWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "bad.ec", "EXEC SQL OPEN nosuch;\nEXEC SQL CLOSE other;\n")

	var stdout, stderr bytes.Buffer
	code := Run([]string{input}, strings.NewReader(""), &stdout, &stderr)
	if code != 2 {
		t.Errorf("exit code %d, want 2", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.c")); !os.IsNotExist(err) {
		t.Errorf("output written despite errors (stat err %v)", err)
	}
	if !strings.Contains(stderr.String(), `cursor "nosuch" undefined`) {
		t.Errorf("diagnostic not printed:\n%s", stderr.String())
	}
	if !strings.HasPrefix(stderr.String(), "error: ") {
		t.Errorf("got %q, want plain error prefix", stderr.String())
	}
}

func TestRunRecordsManifest(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "prog.ec", sample)
	db := filepath.Join(dir, "manifest.db")

	var stdout, stderr bytes.Buffer
	if code := Run([]string{"--manifest", db, input}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("exit code %d, stderr:\n%s", code, stderr.String())
	}

	store, err := manifest.Open(context.Background(), db)
	if err != nil {
		t.Fatalf("opening manifest: %v", err)
	}
	defer store.Close()

	stmts, err := store.Statements(context.Background(), translate.UnitID(input).String())
	if err != nil {
		t.Fatalf("reading statements: %v", err)
	}
	if len(stmts) != 1 || stmts[0].Text != "SELECT name INTO ? FROM t WHERE id = ?" {
		t.Errorf("got %+v, want the one SELECT", stmts)
	}
}

func TestRunVersionAndHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := Run([]string{"--version"}, nil, &stdout, &stderr); code != 0 {
		t.Errorf("exit code %d, want 0", code)
	}
	if got := strings.TrimSpace(stdout.String()); got != config.Version {
		t.Errorf("got %q, want %q", got, config.Version)
	}

	stdout.Reset()
	if code := Run([]string{"--help"}, nil, &stdout, &stderr); code != 0 {
		t.Errorf("exit code %d, want 0", code)
	}
	if !strings.HasPrefix(stdout.String(), "Usage: esqlpp") {
		t.Errorf("got %q, want usage", stdout.String())
	}
}

func TestRunRejectsOutputFileWithManyInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.ec", "int a;\n")
	b := writeFile(t, dir, "b.ec", "int b;\n")

	var stdout, stderr bytes.Buffer
	if code := Run([]string{"-o", filepath.Join(dir, "x.c"), a, b}, nil, &stdout, &stderr); code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
}
