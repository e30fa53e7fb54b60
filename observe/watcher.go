package observe

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// UpdateFunc receives the freshly read value and the value read on the
// previous pass.
type UpdateFunc func(value, oldValue any) error

// Getter is a dependency read. Every observed field it reads while it runs
// becomes a dependency of the watcher.
type Getter func() (any, error)

// Watcher re-reads its dependencies and calls its UpdateFunc whenever one of
// the Deps it registered with notifies.
//
// Every pass re-registers the watcher, so dependencies picked up by a new
// branch are added. Dependencies from branches no longer taken are kept.
type Watcher struct {
	sys    *System
	id     uint64
	expr   string
	getter Getter
	fn     UpdateFunc
	value  any

	// deps linked in the running pass, and every dep ever linked
	newDepIDs mapset.Set[uint64]
	depIDs    mapset.Set[uint64]
}

var ErrForeignSystem = errors.New("store is observed by another system")

// Watch creates a watcher that reads the dotted path from store. The read
// runs once immediately; fn is only called on later updates. The store must
// not have been observed by a different System.
func (sys *System) Watch(store any, path string, fn UpdateFunc) (*Watcher, error) {
	if ob := observerOf(store); ob != nil && ob.sys != sys {
		return nil, fmt.Errorf("watch: %w", ErrForeignSystem)
	}
	segments, err := sys.parsePath(path, true)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	getter := func() (any, error) {
		return resolve(store, segments), nil
	}
	return sys.newWatcher(path, getter, fn)
}

func observerOf(v any) *observer {
	switch v := v.(type) {
	case *Record:
		return v.ob
	case *Sequence:
		return v.ob
	}
	return nil
}

// WatchFunc creates a watcher whose dependency read is an arbitrary getter.
func (sys *System) WatchFunc(getter Getter, fn UpdateFunc) (*Watcher, error) {
	return sys.newWatcher("", getter, fn)
}

func (sys *System) newWatcher(expr string, getter Getter, fn UpdateFunc) (*Watcher, error) {
	w := &Watcher{
		sys:       sys,
		id:        sys.newWatcherID(),
		expr:      expr,
		getter:    getter,
		fn:        fn,
		newDepIDs: mapset.NewThreadUnsafeSet[uint64](),
		depIDs:    mapset.NewThreadUnsafeSet[uint64](),
	}

	value, err := w.get()
	if err != nil {
		return nil, fmt.Errorf("error while running the watcher: %w", err)
	}
	w.value = value
	return w, nil
}

func (w *Watcher) ID() uint64 {
	return w.id
}

// Value returns what the last pass read.
func (w *Watcher) Value() any {
	return w.value
}

// Deps returns how many Deps the watcher is registered with.
func (w *Watcher) Deps() int {
	return w.depIDs.Cardinality()
}

func (w *Watcher) String() string {
	if w.expr != "" {
		return w.expr
	}
	return fmt.Sprintf("watcher#%d", w.id)
}

// Update re-runs the dependency read with the watcher active, then calls the
// UpdateFunc outside of tracking.
func (w *Watcher) Update() error {
	value, err := w.get()
	if err != nil {
		return fmt.Errorf("watcher %s: %w", w, err)
	}
	oldValue := w.value
	w.value = value

	if w.fn == nil {
		return nil
	}
	if err := w.fn(value, oldValue); err != nil {
		return fmt.Errorf("watcher %s: %w", w, err)
	}
	return nil
}

func (w *Watcher) get() (any, error) {
	w.newDepIDs.Clear()

	var value any
	err := w.sys.track(w, func() (err error) {
		value, err = w.getter()
		return err
	})
	return value, err
}

func (w *Watcher) addDep(d *Dep) {
	id := d.ID()
	if !w.newDepIDs.Add(id) {
		return
	}
	if w.depIDs.Contains(id) {
		return
	}
	w.depIDs.Add(id)
	d.AddSub(w)
}
