package declare

import (
	"github.com/funvibe/esqlpp/internal/diagnostics"
	"github.com/funvibe/esqlpp/internal/hostvar"
)

// Statement is a prepared statement name and its serial id.
type Statement struct {
	Name string
	ID   int
}

// Cursor is a declared cursor. A static cursor carries its statement text
// and input references; a dynamic one refers to a prepared statement.
type Cursor struct {
	Name    string
	ID      int
	Level   int
	Static  string
	Dynamic *Statement
	Refs    *hostvar.RefList
}

// IsStatic reports whether the cursor was declared over literal text.
func (c *Cursor) IsStatic() bool {
	return c.Dynamic == nil
}

// NewCursor declares a cursor in the current scope. A cursor of the same
// name at the same level is reported and nil is returned.
func (s *Scopes) NewCursor(name, static string, dynamic *Statement, refs *hostvar.RefList) *Cursor {
	if old, ok := s.cursors.Find(name); ok && old.Level == s.Level {
		s.Reporter.Report(diagnostics.ErrS004, name)
		if s.Gatherer != nil {
			s.Gatherer.Free(refs)
		}
		return nil
	}
	c := &Cursor{
		Name:    name,
		ID:      s.nextCursor,
		Level:   s.Level,
		Static:  static,
		Dynamic: dynamic,
		Refs:    refs,
	}
	s.nextCursor++
	s.cursors.Add(c)
	s.current().cursors = append(s.current().cursors, c)
	return c
}

// LookupCursor returns the visible cursor called name. An unknown cursor is
// reported with the closest known name as a hint.
func (s *Scopes) LookupCursor(name string) *Cursor {
	if c, ok := s.cursors.Find(name); ok {
		return c
	}
	err := s.Reporter.Report(diagnostics.ErrS002, name)
	if hint := diagnostics.Suggest(name, s.cursors.Names()); hint != "" {
		err.WithHint(hint)
	}
	return nil
}

// NewStatement returns the statement called name, creating it with the
// next serial id the first time it is seen.
func (s *Scopes) NewStatement(name string) *Statement {
	if st, ok := s.statements.Find(name); ok {
		return st
	}
	st := &Statement{Name: name, ID: s.nextStatement}
	s.nextStatement++
	s.statements.Add(st)
	return st
}

// Statements lists the known statement names.
func (s *Scopes) Statements() []string {
	return s.statements.Names()
}
