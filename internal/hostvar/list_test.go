package hostvar

import (
	"testing"

	"github.com/funvibe/esqlpp/internal/typesystem"
)

func TestGathererDirections(t *testing.T) {
	b, scope := newTestBinder()
	for _, n := range []string{"a", "b", "c"} {
		declare(scope, n, spec(typesystem.NounInt))
	}

	b.BindReference(b.Bind("a"), nil, false)
	b.Gatherer.StartGathering(Output)
	b.BindReference(b.Bind("b"), nil, false)
	b.BindReference(b.Bind("c"), nil, false)

	if got := b.Gatherer.Input().Len(); got != 1 {
		t.Errorf("input refs = %d, want 1", got)
	}
	if got := b.Gatherer.Output().Len(); got != 2 {
		t.Errorf("output refs = %d, want 2", got)
	}

	b.Gatherer.ClearAll()
	if b.Gatherer.Input() != nil || b.Gatherer.Output() != nil {
		t.Error("ClearAll must drop both lists")
	}
	if b.Gatherer.Gathering() != Input {
		t.Error("ClearAll must reset gathering to input")
	}
}

func TestListGrowsAndIsReused(t *testing.T) {
	g := NewGatherer()
	for i := 0; i < 9; i++ {
		g.Push(&HostRef{})
	}
	l := g.Active()
	if l.Len() != 9 {
		t.Fatalf("Len() = %d, want 9", l.Len())
	}
	if c := cap(l.owned); c%growBy != 0 {
		t.Errorf("capacity %d is not a multiple of %d", c, growBy)
	}

	g.ClearAll()
	if g.Active() != l {
		t.Error("a cleared list should be reused from the pool")
	}
	if l.Len() != 0 {
		t.Errorf("reused list has %d refs", l.Len())
	}
}

func TestCollapseToDescriptor(t *testing.T) {
	b, scope := newTestBinder()
	declare(scope, "sqlda", typesystem.NewPointer(), scope.syms["CUBRIDDA"].Type.Clone()[0])
	declare(scope, "n", spec(typesystem.NounInt))

	ref, _ := b.BindReference(b.Bind("sqlda"), nil, false)
	if b.CheckType(ref, DescriptorKinds, WantDescriptor) == nil {
		t.Fatalf("descriptor check failed: %v", b.Reporter.Errors)
	}
	name, ok := b.Gatherer.CollapseToDescriptor()
	if !ok || name != "sqlda" {
		t.Fatalf("got %q, %v", name, ok)
	}
	l := b.Gatherer.Input()
	if l.Len() != 0 || l.Descriptor() != "sqlda" {
		t.Errorf("got %d refs, descriptor %q", l.Len(), l.Descriptor())
	}
	if len(l.owned) != 1 {
		t.Error("collapsed ref must stay owned until the list is released")
	}

	b.Gatherer.ClearAll()
	b.BindReference(b.Bind("n"), nil, false)
	b.BindReference(b.Bind("n"), nil, false)
	if _, ok := b.Gatherer.CollapseToDescriptor(); ok {
		t.Error("collapse needs exactly one ref")
	}
}

func TestTakeAndDetach(t *testing.T) {
	g := NewGatherer()
	g.Push(&HostRef{})
	taken := g.Take()
	if taken.Len() != 1 || g.Input() != nil {
		t.Fatal("Take must hand over the active list")
	}

	g.Push(&HostRef{})
	detached := g.TakeAndDetach()
	if detached == nil || detached.Len() != 1 {
		t.Fatal("TakeAndDetach lost the list")
	}

	g.ClearAll()
	if taken.Len() != 0 {
		t.Error("a taken list is still released by ClearAll")
	}
	if detached.Len() != 1 {
		t.Error("a detached list must survive ClearAll")
	}
	g.Free(detached)
	if detached.Len() != 0 {
		t.Error("Free must release the detached list")
	}
}

func TestNilListAccessors(t *testing.T) {
	var l *RefList
	if l.Len() != 0 || l.Refs() != nil || l.Descriptor() != "" {
		t.Error("nil list must read as empty")
	}
}
