package hostvar

// growBy is the number of slots a list grows by when full.
const growBy = 4

// RefList is an ordered list of host references, or a single external
// descriptor standing in for them.
type RefList struct {
	refs []*HostRef
	// owned keeps every ref that was pushed so a collapsed list still
	// releases its refs.
	owned []*HostRef
	desc  string
}

// Refs returns the visible references. A nil list has none.
func (l *RefList) Refs() []*HostRef {
	if l == nil {
		return nil
	}
	return l.refs
}

// Len is the number of visible references.
func (l *RefList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.refs)
}

// Descriptor is the descriptor expression, or "" when refs are used.
func (l *RefList) Descriptor() string {
	if l == nil {
		return ""
	}
	return l.desc
}

func (l *RefList) push(ref *HostRef) {
	if len(l.owned) == cap(l.owned) {
		grown := make([]*HostRef, len(l.owned), cap(l.owned)+growBy)
		copy(grown, l.owned)
		l.owned = grown
	}
	l.owned = append(l.owned, ref)
	l.refs = l.owned
}

// truncate drops refs pushed after the list held n refs.
func (l *RefList) truncate(n int) {
	for i := n; i < len(l.owned); i++ {
		l.owned[i] = nil
	}
	l.owned = l.owned[:n]
	l.refs = l.owned
}

func (l *RefList) clear() {
	l.truncate(0)
	l.desc = ""
}

// Direction selects which list new references are gathered into.
type Direction int

const (
	Input Direction = iota
	Output
)

// Gatherer owns the input and output lists of the statement being
// translated. Lists it hands out with Take stay managed and are recycled by
// ClearAll; TakeAndDetach hands over ownership instead.
type Gatherer struct {
	lists  [2]*RefList
	active Direction

	managed []*RefList
	free    []*RefList
}

func NewGatherer() *Gatherer {
	return &Gatherer{}
}

// StartGathering switches the list that Push appends to.
func (g *Gatherer) StartGathering(d Direction) {
	g.active = d
}

// Gathering returns the active direction.
func (g *Gatherer) Gathering() Direction {
	return g.active
}

func (g *Gatherer) newList() *RefList {
	var l *RefList
	if n := len(g.free); n > 0 {
		l = g.free[n-1]
		g.free = g.free[:n-1]
	} else {
		l = &RefList{}
	}
	g.managed = append(g.managed, l)
	return l
}

// Active returns the list being gathered, creating it on first use.
func (g *Gatherer) Active() *RefList {
	if g.lists[g.active] == nil {
		g.lists[g.active] = g.newList()
	}
	return g.lists[g.active]
}

// Push appends ref to the active list.
func (g *Gatherer) Push(ref *HostRef) {
	g.Active().push(ref)
}

// CollapseToDescriptor turns a one-ref active list into a descriptor list
// named by that ref's expression.
func (g *Gatherer) CollapseToDescriptor() (string, bool) {
	l := g.lists[g.active]
	if l == nil || len(l.refs) != 1 {
		return "", false
	}
	l.desc = l.refs[0].Expr()
	l.refs = nil
	return l.desc, true
}

// Input returns the input list of the current statement, possibly nil.
func (g *Gatherer) Input() *RefList {
	return g.lists[Input]
}

// Output returns the output list of the current statement, possibly nil.
func (g *Gatherer) Output() *RefList {
	return g.lists[Output]
}

// Take hands back the active list and starts a new one. The list is still
// released by the next ClearAll.
func (g *Gatherer) Take() *RefList {
	l := g.lists[g.active]
	g.lists[g.active] = nil
	return l
}

// TakeAndDetach is Take, but the caller becomes the owner of the list and
// must release it with Free.
func (g *Gatherer) TakeAndDetach() *RefList {
	l := g.Take()
	if l == nil {
		return nil
	}
	for i, m := range g.managed {
		if m == l {
			g.managed = append(g.managed[:i], g.managed[i+1:]...)
			return l
		}
	}
	return nil
}

// ClearAll releases every managed list and resets gathering to input.
func (g *Gatherer) ClearAll() {
	for _, l := range g.managed {
		l.clear()
		g.free = append(g.free, l)
	}
	g.managed = g.managed[:0]
	g.lists = [2]*RefList{}
	g.active = Input
}

// Free releases a list obtained from TakeAndDetach.
func (g *Gatherer) Free(l *RefList) {
	if l == nil {
		return
	}
	l.clear()
	g.free = append(g.free, l)
}
