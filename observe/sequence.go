package observe

import (
	"fmt"
	"slices"
	"strings"
)

// Sequence owns a list of values. Once observed, its seven mutators (Push,
// Pop, Shift, Unshift, Splice, Sort, Reverse) observe any inserted values and
// notify the sequence's Dep exactly once per call.
//
// Writing an index directly with Set is NOT observed: the new value is stored
// as-is and nobody is notified. Use Splice(i, 1, v) for a tracked replacement.
type Sequence struct {
	items []any
	ob    *observer
}

// NewSequence builds an unobserved sequence. Plain maps and slices among
// items are converted to Records and Sequences.
func NewSequence(items ...any) *Sequence {
	s := &Sequence{items: make([]any, len(items))}
	for i, item := range items {
		s.items[i] = FromValue(item)
	}
	return s
}

func (s *Sequence) Observed() bool {
	return s.ob != nil
}

// Dep returns the sequence's Dep, or nil if it has not been observed.
func (s *Sequence) Dep() *Dep {
	if s.ob == nil {
		return nil
	}
	return s.ob.dep
}

func (s *Sequence) Len() int {
	s.depend()
	return len(s.items)
}

// Get returns the item at i, or nil when i is out of range.
func (s *Sequence) Get(i int) any {
	s.depend()
	if i < 0 || i >= len(s.items) {
		return nil
	}
	return s.items[i]
}

// Items returns a copy of the underlying list.
func (s *Sequence) Items() []any {
	s.depend()
	items := make([]any, len(s.items))
	copy(items, s.items)
	return items
}

// Set overwrites the item at i without observing v or notifying anyone, and
// reports whether i was in range.
func (s *Sequence) Set(i int, v any) bool {
	if i < 0 || i >= len(s.items) {
		return false
	}
	s.items[i] = v
	return true
}

// Push appends items and returns the new length.
func (s *Sequence) Push(items ...any) int {
	inserted := s.convert(items)
	s.items = append(s.items, inserted...)
	n := len(s.items)
	s.mutated(inserted)
	return n
}

// Pop removes and returns the last item, or nil when empty.
func (s *Sequence) Pop() any {
	var removed any
	if n := len(s.items); n > 0 {
		removed = s.items[n-1]
		s.items[n-1] = nil
		s.items = s.items[:n-1]
	}
	s.mutated(nil)
	return removed
}

// Shift removes and returns the first item, or nil when empty.
func (s *Sequence) Shift() any {
	var removed any
	if len(s.items) > 0 {
		removed = s.items[0]
		s.items = slices.Delete(s.items, 0, 1)
	}
	s.mutated(nil)
	return removed
}

// Unshift prepends items and returns the new length.
func (s *Sequence) Unshift(items ...any) int {
	inserted := s.convert(items)
	s.items = slices.Insert(s.items, 0, inserted...)
	n := len(s.items)
	s.mutated(inserted)
	return n
}

// Splice removes deleteCount items starting at start, inserts items in their
// place and returns the removed items. A negative start counts back from the
// end; start and deleteCount are clamped to the sequence bounds.
func (s *Sequence) Splice(start, deleteCount int, items ...any) []any {
	n := len(s.items)
	switch {
	case start < 0:
		start = max(n+start, 0)
	case start > n:
		start = n
	}
	deleteCount = min(max(deleteCount, 0), n-start)

	removed := make([]any, deleteCount)
	copy(removed, s.items[start:start+deleteCount])

	inserted := s.convert(items)
	s.items = slices.Replace(s.items, start, start+deleteCount, inserted...)
	s.mutated(inserted)
	return removed
}

// Sort sorts the sequence in place with a stable sort and returns it. cmp
// follows the slices.SortFunc contract; a nil cmp compares the items' string
// forms.
func (s *Sequence) Sort(cmp func(a, b any) int) *Sequence {
	if cmp == nil {
		cmp = compareStrings
	}
	slices.SortStableFunc(s.items, cmp)
	s.mutated(nil)
	return s
}

// Reverse reverses the sequence in place and returns it.
func (s *Sequence) Reverse() *Sequence {
	slices.Reverse(s.items)
	s.mutated(nil)
	return s
}

func (s *Sequence) convert(items []any) []any {
	converted := make([]any, len(items))
	for i, item := range items {
		converted[i] = FromValue(item)
	}
	return converted
}

// mutated runs after every mutator: observe what was inserted, then notify.
func (s *Sequence) mutated(inserted []any) {
	if s.ob == nil {
		return
	}
	s.ob.sys.observeItems(inserted)
	s.ob.dep.Notify()
}

func (s *Sequence) depend() {
	if s.ob != nil && s.ob.sys.activeSub != nil {
		dependValue(s, nil)
	}
}

func compareStrings(a, b any) int {
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
