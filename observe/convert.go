package observe

import (
	"fmt"
	"reflect"
	"sort"
)

type plainKey struct {
	ptr uintptr
	n   int
}

// FromValue converts plain Go data into Records and Sequences:
// map[string]any and map[any]any become Records with sorted keys, []any
// becomes a Sequence, and everything else (including existing Records and
// Sequences) is returned as-is. Maps that contain themselves convert to
// Records that contain themselves.
func FromValue(v any) any {
	switch v.(type) {
	case map[string]any, map[any]any, []any:
		return fromValue(v, map[plainKey]any{})
	}
	return v
}

func fromValue(v any, seen map[plainKey]any) any {
	switch x := v.(type) {
	case map[string]any:
		key := plainKey{ptr: reflect.ValueOf(x).Pointer(), n: -1}
		if r, ok := seen[key]; ok {
			return r
		}
		r := NewRecord()
		seen[key] = r
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r.put(k, fromValue(x[k], seen))
		}
		return r

	case map[any]any:
		key := plainKey{ptr: reflect.ValueOf(x).Pointer(), n: -1}
		if r, ok := seen[key]; ok {
			return r
		}
		r := NewRecord()
		seen[key] = r
		byName := make(map[string]any, len(x))
		origin := make(map[string]any, len(x))
		for k, item := range x {
			name := fmt.Sprint(k)
			if prev, dup := origin[name]; dup && !preferKey(k, prev) {
				continue
			}
			origin[name] = k
			byName[name] = item
		}
		keys := make([]string, 0, len(byName))
		for name := range byName {
			keys = append(keys, name)
		}
		sort.Strings(keys)
		for _, k := range keys {
			r.put(k, fromValue(byName[k], seen))
		}
		return r

	case []any:
		if len(x) == 0 {
			return &Sequence{}
		}
		key := plainKey{ptr: reflect.ValueOf(x).Pointer(), n: len(x)}
		if s, ok := seen[key]; ok {
			return s
		}
		// slices are only matched along the current path: distinct slices
		// can share a backing array
		s := &Sequence{items: make([]any, len(x))}
		seen[key] = s
		for i, item := range x {
			s.items[i] = fromValue(item, seen)
		}
		delete(seen, key)
		return s
	}
	return v
}

// preferKey decides which of two map keys that print the same name keeps its
// value. A string key wins; otherwise the smaller type name does.
func preferKey(k, prev any) bool {
	_, kStr := k.(string)
	_, prevStr := prev.(string)
	if kStr != prevStr {
		return kStr
	}
	return fmt.Sprintf("%T", k) < fmt.Sprintf("%T", prev)
}

// ToValue converts Records and Sequences back into map[string]any and []any
// without registering any dependency. Shared and cyclic references are
// preserved.
func ToValue(v any) any {
	return toValue(v, map[any]any{})
}

func toValue(v any, seen map[any]any) any {
	switch x := v.(type) {
	case *Record:
		if m, ok := seen[x]; ok {
			return m
		}
		m := make(map[string]any, len(x.keys))
		seen[x] = m
		for _, k := range x.keys {
			m[k] = toValue(x.fields[k].value, seen)
		}
		return m

	case *Sequence:
		if s, ok := seen[x]; ok {
			return s
		}
		s := make([]any, len(x.items))
		seen[x] = s
		for i, item := range x.items {
			s[i] = toValue(item, seen)
		}
		return s
	}
	return v
}
