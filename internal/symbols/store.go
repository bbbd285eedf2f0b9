package symbols

import "sort"

// Store maps a name to the stack of entries declared under it. The most
// recently added entry shadows the others until it is removed. The same
// store type holds identifiers, struct tags and cursors.
type Store[T comparable] struct {
	entries map[string][]T
	nameOf  func(T) string
}

// NewStore returns an empty store that keys entries by nameOf.
func NewStore[T comparable](nameOf func(T) string) *Store[T] {
	return &Store[T]{
		entries: make(map[string][]T),
		nameOf:  nameOf,
	}
}

// Add pushes v on top of any entry with the same name.
func (s *Store[T]) Add(v T) {
	name := s.nameOf(v)
	s.entries[name] = append(s.entries[name], v)
}

// Find returns the visible entry for name.
func (s *Store[T]) Find(name string) (T, bool) {
	stack := s.entries[name]
	if len(stack) == 0 {
		var zero T
		return zero, false
	}
	return stack[len(stack)-1], true
}

// Remove takes v out of the store wherever it sits in its name's stack.
// It reports whether v was present.
func (s *Store[T]) Remove(v T) bool {
	name := s.nameOf(v)
	stack := s.entries[name]
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] != v {
			continue
		}
		stack = append(stack[:i], stack[i+1:]...)
		if len(stack) == 0 {
			delete(s.entries, name)
		} else {
			s.entries[name] = stack
		}
		return true
	}
	return false
}

// Names returns every visible name in sorted order.
func (s *Store[T]) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of visible names.
func (s *Store[T]) Len() int {
	return len(s.entries)
}
