// Package memory implements a key-value store whose keys compare
// case-insensitively under an IRC casemapping, while the casing a key
// was first inserted with is kept for display.
package memory

import (
	"errors"
	"fmt"

	"github.com/dalnet/sedbot/internal/identifier"
)

// ErrMissingKey is returned by Pop and Delete when the folded key is
// not present.
var ErrMissingKey = errors.New("missing key")

type entry[V any] struct {
	display string // casing of the first insert since the last delete
	value   V
}

// Memory is an ordered mapping keyed by folded identifiers. Callers may
// pass keys as plain strings or as identifier.Identifier via String();
// either way the key folds under the Memory's own mode. Not safe for
// concurrent use; owners serialize access.
type Memory[V any] struct {
	mode    identifier.Casemapping
	entries map[string]entry[V]
	order   []string // folded keys in insertion order
}

// New returns an empty Memory folding keys under mode.
func New[V any](mode identifier.Casemapping) *Memory[V] {
	return &Memory[V]{
		mode:    mode,
		entries: make(map[string]entry[V]),
	}
}

// Casemapping returns the mode keys fold under.
func (m *Memory[V]) Casemapping() identifier.Casemapping {
	return m.mode
}

// Set stores value under key. Overwriting an existing folded key keeps
// the stored display casing; a fresh insert (including re-insert after
// Delete) establishes the casing as given.
func (m *Memory[V]) Set(key string, value V) {
	folded := m.mode.Fold(key)
	if e, ok := m.entries[folded]; ok {
		e.value = value
		m.entries[folded] = e
		return
	}
	m.entries[folded] = entry[V]{display: key, value: value}
	m.order = append(m.order, folded)
}

// Get returns the stored value and whether the key was present.
func (m *Memory[V]) Get(key string) (V, bool) {
	e, ok := m.entries[m.mode.Fold(key)]
	return e.value, ok
}

// GetOr returns the stored value, or def if the key is absent.
func (m *Memory[V]) GetOr(key string, def V) V {
	if e, ok := m.entries[m.mode.Fold(key)]; ok {
		return e.value
	}
	return def
}

// Pop removes the key and returns its value, or ErrMissingKey.
func (m *Memory[V]) Pop(key string) (V, error) {
	folded := m.mode.Fold(key)
	e, ok := m.entries[folded]
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	m.remove(folded)
	return e.value, nil
}

// PopOr removes the key and returns its value, or returns def without
// error if the key is absent.
func (m *Memory[V]) PopOr(key string, def V) V {
	folded := m.mode.Fold(key)
	e, ok := m.entries[folded]
	if !ok {
		return def
	}
	m.remove(folded)
	return e.value
}

// Delete removes the key, or returns ErrMissingKey.
func (m *Memory[V]) Delete(key string) error {
	folded := m.mode.Fold(key)
	if _, ok := m.entries[folded]; !ok {
		return fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	m.remove(folded)
	return nil
}

// Contains reports whether the folded key is present. The empty string
// is an ordinary (absent unless set) key, never an error.
func (m *Memory[V]) Contains(key string) bool {
	_, ok := m.entries[m.mode.Fold(key)]
	return ok
}

// Len returns the number of distinct folded keys.
func (m *Memory[V]) Len() int {
	return len(m.entries)
}

// Keys returns the stored display casings in insertion order.
func (m *Memory[V]) Keys() []string {
	keys := make([]string, 0, len(m.order))
	for _, folded := range m.order {
		keys = append(keys, m.entries[folded].display)
	}
	return keys
}

// ForEach calls fn for each entry in insertion order with the display
// casing of the key. fn must not mutate the Memory.
func (m *Memory[V]) ForEach(fn func(key string, value V)) {
	for _, folded := range m.order {
		e := m.entries[folded]
		fn(e.display, e.value)
	}
}

// Copy returns a new Memory with the same contents and mode, sharing no
// structure with the original. Values themselves are copied shallowly.
func (m *Memory[V]) Copy() *Memory[V] {
	c := &Memory[V]{
		mode:    m.mode,
		entries: make(map[string]entry[V], len(m.entries)),
		order:   make([]string, len(m.order)),
	}
	for folded, e := range m.entries {
		c.entries[folded] = e
	}
	copy(c.order, m.order)
	return c
}

func (m *Memory[V]) remove(folded string) {
	delete(m.entries, folded)
	for i, k := range m.order {
		if k == folded {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
