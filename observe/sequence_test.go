package observe_test

import (
	"testing"

	"github.com/delaneyj/reactivestore/observe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func watchCalls(t *testing.T, sys *observe.System, store any, path string) *int {
	calls := new(int)
	_, err := sys.Watch(store, path, func(value, oldValue any) error {
		*calls++
		return nil
	})
	require.NoError(t, err)
	return calls
}

// should notify on push but not on direct index writes
func TestSequencePushAndIndexWrite(t *testing.T) {
	sys := newSystem(t)
	store := observeMap(t, sys, map[string]any{"list": []any{1, 2}})
	calls := watchCalls(t, sys, store, "list")

	list := store.Get("list").(*observe.Sequence)
	assert.Equal(t, 3, list.Push(3))
	assert.Equal(t, 1, *calls)

	assert.True(t, list.Set(0, 99))
	assert.Equal(t, 1, *calls)
	assert.Equal(t, []any{99, 2, 3}, list.Items())

	assert.False(t, list.Set(5, 1))
}

// should observe pushed elements
func TestSequencePushObservesElements(t *testing.T) {
	sys := newSystem(t)
	store := observeMap(t, sys, map[string]any{"list": []any{}})
	listCalls := watchCalls(t, sys, store, "list")

	list := store.Get("list").(*observe.Sequence)
	list.Push(map[string]any{"name": "a"})
	assert.Equal(t, 1, *listCalls)

	item, ok := list.Get(0).(*observe.Record)
	require.True(t, ok)
	assert.True(t, item.Observed())

	nameCalls := watchCalls(t, sys, store, "list.0.name")
	item.Set("name", "b")
	assert.Equal(t, 1, *nameCalls)
}

// should notify exactly once per mutator call and return native results
func TestSequenceMutators(t *testing.T) {
	sys := newSystem(t)
	store := observeMap(t, sys, map[string]any{"list": []any{3, 1, 2}})
	calls := watchCalls(t, sys, store, "list")
	list := store.Get("list").(*observe.Sequence)

	assert.Equal(t, 4, list.Push(4))
	assert.Equal(t, 1, *calls)

	assert.Equal(t, 4, list.Pop())
	assert.Equal(t, 2, *calls)

	assert.Equal(t, 3, list.Shift())
	assert.Equal(t, 3, *calls)

	assert.Equal(t, 3, list.Unshift(0))
	assert.Equal(t, 4, *calls)
	assert.Equal(t, []any{0, 1, 2}, list.Items())

	assert.Equal(t, []any{1}, list.Splice(1, 1, "x", "y"))
	assert.Equal(t, 5, *calls)
	assert.Equal(t, []any{0, "x", "y", 2}, list.Items())

	assert.Equal(t, []any{2}, list.Splice(-1, 5))
	assert.Equal(t, 6, *calls)

	assert.Same(t, list, list.Reverse())
	assert.Equal(t, 7, *calls)
	assert.Equal(t, []any{"y", "x", 0}, list.Items())

	assert.Same(t, list, list.Sort(nil))
	assert.Equal(t, 8, *calls)
	assert.Equal(t, []any{0, "x", "y"}, list.Items())
}

// should notify even when the mutator has nothing to do
func TestSequenceEmptyMutators(t *testing.T) {
	sys := newSystem(t)
	store := observeMap(t, sys, map[string]any{"list": []any{}})
	calls := watchCalls(t, sys, store, "list")
	list := store.Get("list").(*observe.Sequence)

	assert.Nil(t, list.Pop())
	assert.Nil(t, list.Shift())
	assert.Equal(t, []any{}, list.Splice(0, 3))
	assert.Equal(t, 3, *calls)
	assert.Equal(t, 0, list.Len())
}

// should sort with a comparator
func TestSequenceSortComparator(t *testing.T) {
	sys := newSystem(t)
	list := sys.Observe([]any{10, 9, 1}).(*observe.Sequence)

	list.Sort(nil)
	assert.Equal(t, []any{1, 10, 9}, list.Items())

	list.Sort(func(a, b any) int {
		return a.(int) - b.(int)
	})
	assert.Equal(t, []any{1, 9, 10}, list.Items())
}

// should observe records inserted by splice and unshift
func TestSequenceInsertedRecordsObserved(t *testing.T) {
	sys := newSystem(t)
	list := sys.Observe([]any{}).(*observe.Sequence)

	list.Unshift(map[string]any{"a": 1})
	list.Splice(1, 0, map[string]any{"b": 2}, []any{3})

	for i := 0; i < 2; i++ {
		rec, ok := list.Get(i).(*observe.Record)
		require.True(t, ok)
		assert.True(t, rec.Observed())
	}
	nested, ok := list.Get(2).(*observe.Sequence)
	require.True(t, ok)
	assert.True(t, nested.Observed())
}

// should notify watchers of the outer list when a nested list mutates
func TestNestedSequence(t *testing.T) {
	sys := newSystem(t)
	store := observeMap(t, sys, map[string]any{"grid": []any{[]any{1}, []any{2}}})
	calls := watchCalls(t, sys, store, "grid")

	grid := store.Get("grid").(*observe.Sequence)
	row := grid.Get(1).(*observe.Sequence)
	row.Push(5)
	assert.Equal(t, 1, *calls)
}

// should track a sequence used as the root
func TestRootSequence(t *testing.T) {
	sys := newSystem(t)
	list := sys.Observe([]any{1}).(*observe.Sequence)

	w, err := sys.Watch(list, "", nil)
	require.NoError(t, err)
	assert.Same(t, list, w.Value())

	first := watchCalls(t, sys, list, "0")
	list.Push(2)
	assert.Equal(t, 1, *first)
}

// should mutate unobserved sequences without notifying
func TestUnobservedSequence(t *testing.T) {
	list := observe.NewSequence(1, 2)
	assert.False(t, list.Observed())
	assert.Nil(t, list.Dep())

	list.Push(3)
	list.Reverse()
	assert.Equal(t, []any{3, 2, 1}, list.Items())
}
