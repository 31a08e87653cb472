package keys

import (
	"fmt"
	"sort"
)

// Binding is what a hyper key emits: a target key plus the modifiers to hold
// while emitting it.
type Binding struct {
	Target    Code
	Modifiers Flags
}

// Identity returns the binding that emits c unchanged.
func Identity(c Code) Binding {
	return Binding{Target: c}
}

func (b Binding) String() string {
	if b.Modifiers == 0 {
		return Name(b.Target)
	}
	return fmt.Sprintf("%s+%s", b.Modifiers, Name(b.Target))
}

// Table maps trigger keys to bindings. It is built once and never modified.
type Table struct {
	m map[Code]Binding
}

// NewTable copies m into a new Table.
func NewTable(m map[Code]Binding) *Table {
	t := &Table{m: make(map[Code]Binding, len(m))}
	for k, v := range m {
		t.m[k] = v
	}
	return t
}

// Lookup returns the binding for c, if any.
func (t *Table) Lookup(c Code) (Binding, bool) {
	if t == nil {
		return Binding{}, false
	}
	b, ok := t.m[c]
	return b, ok
}

// Resolve returns the binding for c, falling back to the identity binding.
func (t *Table) Resolve(c Code) Binding {
	if b, ok := t.Lookup(c); ok {
		return b
	}
	return Identity(c)
}

// Len returns the number of bindings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.m)
}

// Entry is one row of a Table snapshot.
type Entry struct {
	Key     Code
	Binding Binding
}

// Entries returns the bindings sorted by key name.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, 0, len(t.m))
	for k, b := range t.m {
		out = append(out, Entry{Key: k, Binding: b})
	}
	sort.Slice(out, func(i, j int) bool {
		return Name(out[i].Key) < Name(out[j].Key)
	})
	return out
}

// Held tracks which modifier keys are physically down.
type Held struct {
	codes map[Code]struct{}
}

// NewHeld returns an empty set.
func NewHeld() *Held {
	return &Held{codes: make(map[Code]struct{})}
}

// Press records c as down.
func (h *Held) Press(c Code) {
	h.codes[c] = struct{}{}
}

// Release records c as up.
func (h *Held) Release(c Code) {
	delete(h.codes, c)
}

// Contains reports whether c is down.
func (h *Held) Contains(c Code) bool {
	_, ok := h.codes[c]
	return ok
}

// Len returns the number of keys held.
func (h *Held) Len() int {
	return len(h.codes)
}

// Flags returns the modifier bits of every held key.
func (h *Held) Flags() Flags {
	var f Flags
	for c := range h.codes {
		f |= FlagsFor(c)
	}
	return f
}
