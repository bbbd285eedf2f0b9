package whenever

import (
	"testing"
)

type recorder struct {
	table Table
	calls int
}

func (r *recorder) SetWhenever(cond Condition, action Action, name string) {
	r.table.Set(cond, action, name)
	r.calls++
}

func TestInitScopeCopiesByValue(t *testing.T) {
	parent := Default()
	parent.Set(Error, Goto, "fail")

	child := InitScope(&parent)
	child.Set(Error, Stop, "")

	if got := parent.Get(Error); got.Action != Goto || got.Name != "fail" {
		t.Errorf("parent entry changed to %+v", got)
	}
	if got := InitScope(nil); got != Default() {
		t.Errorf("InitScope(nil) = %+v, want default", got)
	}
}

func TestNestedScopeRestoresOuterAction(t *testing.T) {
	tr := &recorder{}

	outer := InitScope(nil)
	outer.Set(Error, Goto, "L")
	tr.SetWhenever(Error, Goto, "L")

	inner := InitScope(&outer)
	inner.Set(Error, Stop, "")
	tr.SetWhenever(Error, Stop, "")

	FinishScope(&inner, &outer, tr)

	if got := tr.table.Get(Error); got.Action != Goto || got.Name != "L" {
		t.Errorf("effective error action = %v %q, want GOTO L", got.Action, got.Name)
	}
	if got := outer.Get(Error); got.Name != "L" {
		t.Errorf("outer scope label cleared: %+v", got)
	}
}

func TestFinishScopeSharedNameKept(t *testing.T) {
	tr := &recorder{}
	outer := InitScope(nil)
	outer.Set(NotFound, Call, "done")

	inner := InitScope(&outer)
	FinishScope(&inner, &outer, tr)

	if inner.Get(NotFound).Name != "done" {
		t.Error("a name shared with the restored table must not be cleared")
	}
	if tr.calls != 0 {
		t.Errorf("unchanged entries notified %d times", tr.calls)
	}
}

func TestFinishOutermostScopeResetsToDefault(t *testing.T) {
	tr := &recorder{}
	tr.SetWhenever(Warning, Call, "warn")
	tr.calls = 0

	top := InitScope(nil)
	top.Set(Warning, Call, "warn")
	FinishScope(&top, nil, tr)

	if got := tr.table.Get(Warning); got.Action != Continue {
		t.Errorf("warning action = %v, want CONTINUE", got.Action)
	}
	if top.Get(Warning).Name != "" {
		t.Error("name owned only by the closed scope should be released")
	}
	if tr.calls != 1 {
		t.Errorf("notified %d times, want 1", tr.calls)
	}
}
