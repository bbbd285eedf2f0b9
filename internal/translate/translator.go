// Package translate emits the runtime calls that replace embedded
// statements in the generated C source.
package translate

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/funvibe/esqlpp/internal/config"
	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/whenever"
)

// StatementKind names the runtime operation a record describes.
type StatementKind string

const (
	KindConnect          StatementKind = "connect"
	KindDisconnect       StatementKind = "disconnect"
	KindCommit           StatementKind = "commit"
	KindRollback         StatementKind = "rollback"
	KindStatic           StatementKind = "static"
	KindOpenCursor       StatementKind = "open"
	KindFetchCursor      StatementKind = "fetch"
	KindUpdateCursor     StatementKind = "update_cursor"
	KindDeleteCursor     StatementKind = "delete_cursor"
	KindCloseCursor      StatementKind = "close"
	KindPrepare          StatementKind = "prepare"
	KindDescribe         StatementKind = "describe"
	KindExecute          StatementKind = "execute"
	KindExecuteImmediate StatementKind = "execute_immediate"
	KindObjectDescribe   StatementKind = "object_describe"
	KindObjectFetch      StatementKind = "object_fetch"
	KindObjectUpdate     StatementKind = "object_update"
)

// Record is one emitted statement block.
type Record struct {
	Kind   StatementKind
	Line   int
	Serial int
	Text   string
}

// Translator writes runtime call blocks to an output stream. It keeps its
// own copy of the effective WHENEVER actions, updated through SetWhenever.
type Translator struct {
	Reporter *diagnostics.Reporter
	// Line is the input line the next #line marker refers to.
	Line int
	// Records lists every statement block emitted so far.
	Records []Record

	w      io.Writer
	opts   *config.Options
	file   string
	nl     string
	serial int

	onWarning  whenever.Entry
	onError    whenever.Entry
	onNotFound whenever.Entry
}

// New returns a translator writing to w. file is the input name used in
// #line markers and may be empty for standard input.
func New(w io.Writer, opts *config.Options, r *diagnostics.Reporter, file string) *Translator {
	if opts == nil {
		opts = config.Default()
	}
	return &Translator{
		Reporter: r,
		Line:     1,
		w:        w,
		opts:     opts,
		file:     file,
		nl:       opts.LineTerminator,
	}
}

// SetOutput redirects emission.
func (t *Translator) SetOutput(w io.Writer) {
	t.w = w
}

// SetLineTerminator changes the text that ends each emitted call.
func (t *Translator) SetLineTerminator(nl string) {
	t.nl = nl
}

// UnitID is the stable identifier of a translation unit, derived from its
// path so that reruns over the same file agree.
func UnitID(path string) uuid.UUID {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path)))
}

func (t *Translator) printf(format string, args ...interface{}) {
	fmt.Fprintf(t.w, format, args...)
}

// LineDirective writes a #line marker for the current line unless markers
// are suppressed.
func (t *Translator) LineDirective() {
	if t.opts.SuppressLineDirectives {
		return
	}
	if t.file != "" {
		t.printf("#line %d \"%s\"\n", t.Line, t.file)
	} else {
		t.printf("#line %d\n", t.Line)
	}
}

// Banner writes the head of the generated file.
func (t *Translator) Banner() {
	name := t.file
	if name == "" {
		name = "<stdin>"
	}
	t.printf("/* esqlpp: unit %s from %s */\n", UnitID(name), name)
	t.printf("#include \"%s\"\n", t.opts.IncludeFile)
	t.LineDirective()
}

// IncludeSQLCA writes the include that EXEC SQL INCLUDE SQLCA stands for.
func (t *Translator) IncludeSQLCA() {
	t.printf("#include \"%s\"%s", t.opts.IncludeFile, t.nl)
	t.LineDirective()
}

func (t *Translator) record(kind StatementKind, serial int, text string) {
	t.Records = append(t.Records, Record{Kind: kind, Line: t.Line, Serial: serial, Text: text})
}

func (t *Translator) nextSerial(repeat bool) int {
	if !repeat {
		return -1
	}
	n := t.serial
	t.serial++
	return n
}

func (t *Translator) trace(format string, args ...interface{}) {
	if !t.opts.EnableUciTrace {
		return
	}
	t.printf("fprintf(stderr, "+format+"); %s", append(args, t.nl)...)
}

func (t *Translator) start(leadingBrace bool) {
	if leadingBrace {
		t.printf("{ ")
	}
	t.printf("uci_start((void *)&%s, __FILE__, __LINE__, 0x%04x); %s",
		config.FileIDVarName, t.opts.UciOpt(), t.nl)
	t.LineDirective()
}

func (t *Translator) end() {
	t.printf("  uci_end();%s", t.nl)
	t.LineDirective()
	t.emitWhenever()
	t.printf("}%s", t.nl)
}

// call writes one indented runtime call followed by a #line marker.
func (t *Translator) call(format string, args ...interface{}) {
	t.printf("  "+format+";%s", append(args, t.nl)...)
	t.LineDirective()
}

// SetWhenever records the action taken after each following statement.
// Stopping on NOT FOUND is not supported by the runtime and is ignored.
func (t *Translator) SetWhenever(cond whenever.Condition, action whenever.Action, name string) {
	var e *whenever.Entry
	switch cond {
	case whenever.Warning:
		e = &t.onWarning
	case whenever.Error:
		e = &t.onError
	case whenever.NotFound:
		if action == whenever.Stop {
			return
		}
		e = &t.onNotFound
	default:
		return
	}
	*e = whenever.Entry{Action: action, Name: name}
}

// Whenever returns the action currently emitted for cond.
func (t *Translator) Whenever(cond whenever.Condition) whenever.Entry {
	switch cond {
	case whenever.Warning:
		return t.onWarning
	case whenever.Error:
		return t.onError
	}
	return t.onNotFound
}

// emitWhenever checks not-found first, then errors, then warnings.
func (t *Translator) emitWhenever() {
	checks := []struct {
		entry whenever.Entry
		test  string
	}{
		{t.onNotFound, fmt.Sprintf("sqlca.sqlcode == %s", config.NotFoundMacroName)},
		{t.onError, "sqlca.sqlcode < 0"},
		{t.onWarning, fmt.Sprintf("sqlca.sqlwarn.sqlwarn0 == %s", config.WarnCharMacroName)},
	}
	for _, c := range checks {
		if c.entry.Action == whenever.Continue {
			continue
		}
		t.printf("  if(%s) ", c.test)
		switch c.entry.Action {
		case whenever.Stop:
			if t.opts.EnableUciTrace {
				t.printf(`{ fprintf(stderr, "uci_stop()\n"); uci_stop(); }%s`, t.nl)
			} else {
				t.printf("uci_stop();%s", t.nl)
			}
		case whenever.Goto:
			t.printf("goto %s;%s", c.entry.Name, t.nl)
		case whenever.Call:
			t.printf("%s();%s", c.entry.Name, t.nl)
		}
		t.LineDirective()
	}
}
