package translate

import (
	"strings"

	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/hostvar"
)

// quasiString returns the buffer and length expressions of a reference
// used as a string: a database name, a prepared statement text.
func (t *Translator) quasiString(ref *hostvar.HostRef, where string) (buf, size string) {
	switch ref.Kind() {
	case hostvar.KindVarchar:
		return ref.AddrExpr(), ref.InputSize()
	case hostvar.KindCharArray, hostvar.KindCharPointer, hostvar.KindStringConst:
		return ref.Expr(), ref.InputSize()
	}
	t.Reporter.Report(diagnostics.ErrT001, where)
	return "NULL", "0"
}

func (t *Translator) putList(in *hostvar.RefList) {
	if in.Len() > 0 {
		for _, ref := range in.Refs() {
			t.putValue(ref)
		}
	} else if desc := in.Descriptor(); desc != "" {
		t.call("uci_put_descriptor(%s)", desc)
	}
}

// outCount is the output count passed to uci_static, -1 without outputs.
func outCount(out *hostvar.RefList) int {
	if out.Len() <= 0 {
		return -1
	}
	return out.Len()
}

// Connect emits uci_connect. user and password may be nil.
func (t *Translator) Connect(db, user, password *hostvar.HostRef) {
	t.record(KindConnect, -1, "")
	t.start(true)

	dbBuf, _ := t.quasiString(db, "connect")
	args := []string{dbBuf, "(char *)0", "(char *)0"}
	if user != nil {
		args[1], _ = t.quasiString(user, "connect")
		if password != nil {
			args[2], _ = t.quasiString(password, "connect")
		}
	}
	if t.opts.EnableUciTrace {
		traceArgs := []string{args[0], `"(char *)0"`, `"(char *)0"`}
		if user != nil {
			traceArgs[1] = args[1]
			if password != nil {
				traceArgs[2] = args[2]
			}
		}
		t.trace(`"uci_connect(%%s, %%s, %%s)\n", %s`, strings.Join(traceArgs, ", "))
	}

	if user == nil {
		t.call("uci_connect(%s, (char *)0, (char *)0)", args[0])
	} else {
		t.call("uci_connect(%s)", strings.Join(args, ", "))
	}
	t.end()
}

// Disconnect emits uci_disconnect.
func (t *Translator) Disconnect() {
	t.record(KindDisconnect, -1, "")
	t.start(true)
	t.call("uci_disconnect()")
	t.end()
}

// Commit emits uci_commit.
func (t *Translator) Commit() {
	t.record(KindCommit, -1, "")
	t.start(true)
	t.trace(`"uci_commit()\n"`)
	t.call("uci_commit()")
	t.end()
}

// Rollback emits uci_rollback.
func (t *Translator) Rollback() {
	t.record(KindRollback, -1, "")
	t.start(true)
	t.trace(`"uci_rollback()\n"`)
	t.call("uci_rollback()")
	t.end()
}

// Static executes literal statement text. Host references in the text have
// been replaced with markers; in supplies their values and out receives
// results. Either list may be a descriptor list or nil.
func (t *Translator) Static(text string, repeat bool, in, out *hostvar.RefList) {
	escaped, _ := EscapeString(text)
	serial := t.nextSerial(repeat)
	t.record(KindStatic, serial, text)

	t.start(true)
	t.putList(in)

	if t.opts.EnableUciTrace {
		t.printf(`fprintf(stderr, "uci_static(%%d, \"%%s\", %%ld, %%d)\n", %d, "`, serial)
		t.printLiteral(escaped)
		t.printf(`", %d, %d); %s`, len(text), outCount(out), t.nl)
	}
	t.printf(`  uci_static(%d, "`, serial)
	t.printLiteral(escaped)
	t.printf(`", %d, %d);%s`, len(text), outCount(out), t.nl)
	t.LineDirective()

	if out.Len() > 0 {
		for _, ref := range out.Refs() {
			t.getValue(-1, ref)
		}
	} else if desc := out.Descriptor(); desc != "" {
		t.call("uci_get_descriptor(-1, %s)", desc)
	}
	t.end()
}

// OpenCursor opens cursor cid. A static cursor passes its text and stmtNo
// -1; a cursor over a prepared statement passes stmtNo and no text.
func (t *Translator) OpenCursor(cid int, text string, stmtNo int, readOnly bool, in *hostvar.RefList) {
	dynamic := stmtNo >= 0
	escaped, _ := EscapeString(text)
	t.record(KindOpenCursor, cid, text)

	t.start(true)
	t.putList(in)

	ro := 0
	if readOnly {
		ro = 1
	}
	length := len(text)
	if dynamic {
		length = 0
	}
	if t.opts.EnableUciTrace {
		t.printf(`fprintf(stderr,"uci_open_cs(%%d, \"%%s\", %%ld, %%d, %%d)\n", %d, `, cid)
		if dynamic {
			t.printf(`"(char *)0", `)
		} else {
			t.printf(`"`)
			t.printLiteral(escaped)
			t.printf(`", `)
		}
		t.printf("%d, %d, %d); %s", length, stmtNo, ro, t.nl)
	}
	t.printf("  uci_open_cs(%d, ", cid)
	if dynamic {
		t.printf("(char *)0, ")
	} else {
		t.printf(`"`)
		t.printLiteral(escaped)
		t.printf(`", `)
	}
	t.printf("%d, %d, %d);%s", length, stmtNo, ro, t.nl)
	t.LineDirective()
	t.end()
}

// FetchCursor fetches the next row of cid into out.
func (t *Translator) FetchCursor(cid int, out *hostvar.RefList) {
	t.record(KindFetchCursor, cid, "")
	t.start(true)

	n, desc := out.Len(), out.Descriptor()
	switch {
	case n > 0:
		t.trace(`"uci_fetch_cs(%d, %d)\n"`, cid, n)
		t.call("uci_fetch_cs(%d, %d)", cid, n)
		for _, ref := range out.Refs() {
			t.getValue(cid, ref)
		}
	case desc != "":
		t.trace(`"uci_fetch_cs(%d, %%s)\n", "(%s)->sqldesc"`, cid, desc)
		t.call("uci_fetch_cs(%d, (%s)->sqldesc)", cid, desc)
		t.call("uci_get_descriptor(%d, %s)", cid, desc)
	default:
		t.trace(`"uci_fetch_cs(%%d, -1)\n", %d`, cid)
		t.call("uci_fetch_cs(%d, -1)", cid)
	}
	t.end()
}

// UpdateCursor updates the current row of cid. text is the statement
// without its WHERE CURRENT OF clause.
func (t *Translator) UpdateCursor(cid int, text string, repeat bool, in *hostvar.RefList) {
	escaped, _ := EscapeString(text)
	serial := t.nextSerial(repeat)
	t.record(KindUpdateCursor, serial, text)

	t.start(true)
	t.call("uci_psh_curr_csr_oid(%d)", cid)
	for _, ref := range in.Refs() {
		t.putValue(ref)
	}

	if t.opts.EnableUciTrace {
		t.printf(`fprintf(stderr, "uci_static(%%d, \"%%s\", %%ld, 0)\n", %d, "`, serial)
		t.printLiteral(escaped)
		t.printf(`", %d); %s`, len(text), t.nl)
	}
	t.printf(`  uci_static(%d,"`, serial)
	t.printLiteral(escaped)
	t.printf(`", %d, 0);%s`, len(text), t.nl)
	t.LineDirective()
	t.end()
}

// DeleteCursor deletes the current row of cid.
func (t *Translator) DeleteCursor(cid int) {
	t.record(KindDeleteCursor, cid, "")
	t.start(true)
	t.trace(`"uci_delete_cs(%d)\n"`, cid)
	t.call("uci_delete_cs(%d)", cid)
	t.end()
}

// CloseCursor closes cid.
func (t *Translator) CloseCursor(cid int) {
	t.record(KindCloseCursor, cid, "")
	t.start(true)
	t.trace(`"uci_close_cs(%d)\n"`, cid)
	t.call("uci_close_cs(%d)", cid)
	t.end()
}

// Prepare prepares the statement text held by ref as statement sid.
func (t *Translator) Prepare(sid int, ref *hostvar.HostRef) {
	t.record(KindPrepare, sid, ref.Expr())
	t.start(true)
	buf, size := t.quasiString(ref, "prepare")
	t.trace(`"uci_prepare(%%d, \"%%s\", %%d)\n", %d, %s, %s`, sid, buf, size)
	t.call("uci_prepare(%d, %s, %s)", sid, buf, size)
	t.end()
}

// Describe describes the result columns of sid into desc.
func (t *Translator) Describe(sid int, desc string) {
	t.record(KindDescribe, sid, desc)
	t.start(true)
	t.call("uci_describe(%d, %s)", sid, desc)
	t.end()
}

// Execute runs prepared statement sid.
func (t *Translator) Execute(sid int, in, out *hostvar.RefList) {
	t.record(KindExecute, sid, "")
	t.start(true)
	t.putList(in)

	n, desc := out.Len(), out.Descriptor()
	switch {
	case n > 0:
		t.trace(`"uci_execute(%d, %d)\n"`, sid, n)
		t.call("uci_execute(%d, %d)", sid, n)
		for _, ref := range out.Refs() {
			t.getValue(-1, ref)
		}
	case desc != "":
		t.trace(`"uci_execute(%d, %%s)\n", "(%s)->sqldesc"`, sid, desc)
		t.call("uci_execute(%d, (%s)->sqldesc)", sid, desc)
		t.call("uci_get_descriptor(-1, %s)", desc)
	default:
		t.trace(`"uci_execute(%d, -1)\n"`, sid)
		t.call("uci_execute(%d, -1)", sid)
	}
	t.end()
}

// ExecuteImmediate runs the statement text held by ref.
func (t *Translator) ExecuteImmediate(ref *hostvar.HostRef) {
	t.record(KindExecuteImmediate, -1, ref.Expr())
	t.start(true)
	buf, size := t.quasiString(ref, "execute immediate")
	t.trace(`"uci_execute_immediate(\"%%s\", %%d)\n", %s, %s`, buf, size)
	t.call("uci_execute_immediate(%s, %s)", buf, size)
	t.end()
}

// attrNames opens the block and declares the attribute name array that
// the object operations pass.
func (t *Translator) attrNames(attrs []string) {
	t.printf("{%s", t.nl)
	t.LineDirective()
	if len(attrs) == 0 {
		return
	}
	quoted := make([]string, len(attrs))
	for i, a := range attrs {
		quoted[i] = `"` + a + `"`
	}
	t.printf("  static const char *uci_attr_names[%d] = {%s};%s", len(attrs), strings.Join(quoted, ","), t.nl)
	t.LineDirective()
}

func attrArray(attrs []string) string {
	if len(attrs) == 0 {
		return "NULL"
	}
	return "uci_attr_names"
}

// ObjectDescribe describes attributes of the object referenced by obj
// into desc.
func (t *Translator) ObjectDescribe(obj *hostvar.HostRef, attrs []string, desc string) {
	t.record(KindObjectDescribe, -1, strings.Join(attrs, ","))
	t.attrNames(attrs)
	t.start(false)
	t.call("uci_object_describe(%s, %d, %s, %s)", obj.Expr(), len(attrs), attrArray(attrs), desc)
	t.end()
}

// ObjectFetch reads attributes of the object referenced by obj.
func (t *Translator) ObjectFetch(obj *hostvar.HostRef, attrs []string, out *hostvar.RefList) {
	t.record(KindObjectFetch, -1, strings.Join(attrs, ","))
	t.attrNames(attrs)
	t.start(false)

	expr, names := obj.Expr(), attrArray(attrs)
	n, desc := out.Len(), out.Descriptor()
	switch {
	case n > 0:
		t.trace(`"uci_object_fetch(%%s, %%d, uci_attr_names, %%d)\n", "%s", %d, %d`, expr, len(attrs), n)
		t.call("uci_object_fetch(%s, %d, %s, %d)", expr, len(attrs), names, n)
		for _, ref := range out.Refs() {
			t.getValue(-1, ref)
		}
	case desc != "":
		t.trace(`"uci_object_fetch(%%s, %%d, uci_attr_names, %%s)\n", "%s", %d, "(%s)->sqldesc"`, expr, len(attrs), desc)
		t.call("uci_object_fetch(%s, %d, %s, (%s)->sqldesc)", expr, len(attrs), names, desc)
		t.call("uci_get_descriptor(-1, %s)", desc)
	default:
		t.trace(`"uci_object_fetch(%%s, %%d, uci_attr_names, -1)\n", "%s", %d`, expr, len(attrs))
		t.call("uci_object_fetch(%s, %d, %s, -1)", expr, len(attrs), names)
	}
	t.end()
}

// ObjectUpdate applies a SET clause, given without the SET keyword, to the
// object pushed by the statement's first input reference.
func (t *Translator) ObjectUpdate(text string, repeat bool, in *hostvar.RefList) {
	escaped, _ := EscapeString(text)
	serial := t.nextSerial(repeat)
	t.record(KindObjectUpdate, serial, text)

	t.start(true)
	for _, ref := range in.Refs() {
		t.putValue(ref)
	}
	if t.opts.EnableUciTrace {
		t.printf(`fprintf(stderr, "uci_static(%%d, \"%%s\", %%ld, 0)\n", %d, "`, serial)
		t.printLiteral(escaped)
		t.printf(`", %d); %s`, len(text), t.nl)
	}
	t.printf(`  uci_static(%d,"`, serial)
	t.printLiteral(escaped)
	t.printf(`",%d, 0);%s`, len(text), t.nl)
	t.LineDirective()
	t.end()
}
