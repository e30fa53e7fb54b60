package observe

import (
	"reflect"
)

// observer tags a Record or Sequence once it has been observed. Its dep is
// notified on structural changes of the value itself (keys added or removed,
// sequence mutators) as opposed to writes to a single field.
type observer struct {
	sys *System
	dep *Dep
}

type field struct {
	value any
	dep   *Dep
}

// Record is an ordered set of named slots. Once observed, Get registers the
// active subscriber with the slot's Dep and Set notifies it.
type Record struct {
	keys   []string
	fields map[string]*field
	ob     *observer

	// field deps of deleted keys, picked up again when the key comes back
	detached map[string]*Dep
}

func NewRecord() *Record {
	return &Record{
		fields: map[string]*field{},
	}
}

// Observed reports whether the record has been through Observe.
func (r *Record) Observed() bool {
	return r.ob != nil
}

// Get returns the value stored under key, or nil.
func (r *Record) Get(key string) any {
	f, ok := r.fields[key]
	if !ok {
		// a later Set of this key notifies the record's own dep
		if r.ob != nil {
			r.ob.dep.Depend()
		}
		return nil
	}
	if f.dep != nil && r.ob.sys.activeSub != nil {
		f.dep.Depend()
		dependValue(f.value, nil)
	}
	return f.value
}

func (r *Record) Has(key string) bool {
	r.depend()
	_, ok := r.fields[key]
	return ok
}

func (r *Record) Len() int {
	r.depend()
	return len(r.keys)
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	r.depend()
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Set stores v under key. Plain maps and slices are converted to Records and
// Sequences first. On an observed record the new value is observed before it
// is stored, then the field's Dep is notified. Writing an equal value is a
// no-op. Adding a key that did not exist notifies the record's own Dep, and
// the field Dep the key had before it was deleted.
func (r *Record) Set(key string, v any) {
	v = FromValue(v)

	f, ok := r.fields[key]
	if !ok {
		f = r.put(key, v)
		if r.ob != nil {
			r.ob.sys.observe(v)
			if d, ok := r.detached[key]; ok {
				delete(r.detached, key)
				f.dep = d
			} else {
				f.dep = newDep(r.ob.sys)
			}
			notifyDeps(r.ob.sys, r.ob.dep, f.dep)
		}
		return
	}

	if same(f.value, v) {
		return
	}
	if r.ob != nil {
		r.ob.sys.observe(v)
	}
	f.value = v
	if f.dep != nil {
		f.dep.Notify()
	}
}

// Delete removes key and reports whether it was present. Subscribers of the
// record and of the deleted field are notified once each. The field's Dep
// outlives the key, so subscribers that read it keep hearing about it if the
// key is set again.
func (r *Record) Delete(key string) bool {
	f, ok := r.fields[key]
	if !ok {
		return false
	}
	delete(r.fields, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	if r.ob == nil {
		return true
	}
	if f.dep != nil {
		if r.detached == nil {
			r.detached = map[string]*Dep{}
		}
		r.detached[key] = f.dep
	}
	notifyDeps(r.ob.sys, r.ob.dep, f.dep)
	return true
}

// FieldDep returns the Dep of an observed field, or nil.
func (r *Record) FieldDep(key string) *Dep {
	f, ok := r.fields[key]
	if !ok {
		return nil
	}
	return f.dep
}

// Dep returns the record's own Dep, or nil if it has not been observed.
func (r *Record) Dep() *Dep {
	if r.ob == nil {
		return nil
	}
	return r.ob.dep
}

func (r *Record) put(key string, v any) *field {
	f := &field{value: v}
	r.keys = append(r.keys, key)
	r.fields[key] = f
	return f
}

func (r *Record) depend() {
	if r.ob != nil {
		r.ob.dep.Depend()
	}
}

// Observe makes v observable in place and returns it. Plain maps and slices
// are converted first, and the converted value is returned. Values that are
// neither records nor sequences are returned unchanged. Observing a value a
// second time is a no-op.
//
// A value belongs to the System that observed it first. Only that System's
// watchers are tracked when they read it; Watch refuses a store bound to a
// different System with ErrForeignSystem.
func (sys *System) Observe(v any) any {
	v = FromValue(v)
	sys.observe(v)
	return v
}

func (sys *System) observe(v any) {
	switch v := v.(type) {
	case *Record:
		if v.ob != nil {
			return
		}
		// tag first so cycles stop here
		v.ob = &observer{sys: sys, dep: newDep(sys)}
		for _, key := range v.keys {
			f := v.fields[key]
			sys.observe(f.value)
			f.dep = newDep(sys)
		}
	case *Sequence:
		if v.ob != nil {
			return
		}
		v.ob = &observer{sys: sys, dep: newDep(sys)}
		sys.observeItems(v.items)
	}
}

func (sys *System) observeItems(items []any) {
	for _, item := range items {
		sys.observe(item)
	}
}

// dependValue registers the active subscriber with the own Dep of a Record or
// Sequence that was just read through a field, and with the Deps of the
// values a Sequence directly holds.
func dependValue(v any, seen map[*Sequence]struct{}) {
	switch v := v.(type) {
	case *Record:
		if v.ob != nil {
			v.ob.dep.Depend()
		}
	case *Sequence:
		if v.ob == nil {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		if seen == nil {
			seen = map[*Sequence]struct{}{}
		}
		seen[v] = struct{}{}
		v.ob.dep.Depend()
		for _, item := range v.items {
			dependValue(item, seen)
		}
	}
}

// same is the write trap's equality: identity for records and sequences,
// == for comparable values of the same type.
func same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() || !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}
