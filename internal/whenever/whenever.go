// Package whenever models the per-scope WHENEVER table: the action taken
// after a statement raises a warning, an error, or finds no rows.
package whenever

// Condition is what a statement's outcome is checked against.
type Condition int

const (
	Warning Condition = iota
	Error
	NotFound
)

func (c Condition) String() string {
	switch c {
	case Warning:
		return "SQLWARNING"
	case Error:
		return "SQLERROR"
	case NotFound:
		return "NOT FOUND"
	}
	return "?"
}

// Action is what the generated code does when its condition holds.
type Action int

const (
	Continue Action = iota
	Stop
	Goto
	Call
)

func (a Action) String() string {
	switch a {
	case Continue:
		return "CONTINUE"
	case Stop:
		return "STOP"
	case Goto:
		return "GOTO"
	case Call:
		return "CALL"
	}
	return "?"
}

// Entry is one condition's action. Name is the label for Goto and the
// function for Call.
type Entry struct {
	Action Action
	Name   string
}

// Table is indexed by Condition and copied by value into nested scopes.
type Table [3]Entry

// Notifier receives the effective action for a condition, normally the
// translator that emits the checks after each statement.
type Notifier interface {
	SetWhenever(cond Condition, action Action, name string)
}

// Default is the table in effect outside any scope: continue on everything.
func Default() Table {
	return Table{}
}

// InitScope returns the table a new scope starts with.
func InitScope(parent *Table) Table {
	if parent == nil {
		return Default()
	}
	return *parent
}

// Set records an action for cond.
func (t *Table) Set(cond Condition, action Action, name string) {
	t[cond] = Entry{Action: action, Name: name}
}

// Get returns the entry for cond.
func (t *Table) Get(cond Condition) Entry {
	return t[cond]
}

// FinishScope closes the scope that owned old. restored is the table of the
// scope being returned to, or nil when the outermost scope closed. Names
// that old does not share with restored are released, and every condition
// whose entry changes is reported to n.
func FinishScope(old, restored *Table, n Notifier) {
	next := Default()
	if restored != nil {
		next = *restored
	}

	for cond := range old {
		changed := old[cond] != next[cond]
		if old[cond].Name != next[cond].Name {
			old[cond].Name = ""
		}
		if changed && n != nil {
			n.SetWhenever(Condition(cond), next[cond].Action, next[cond].Name)
		}
	}
}
