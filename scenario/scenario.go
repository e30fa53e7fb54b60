// Package scenario drives an observed store from a YAML document: it builds
// the store, creates one watcher per declared binding and applies a list of
// writes, recording every recompute that happens along the way.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/delaneyj/reactivestore/observe"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownOp   = errors.New("unknown op")
	ErrNotRecord   = errors.New("not a record")
	ErrNotSequence = errors.New("not a sequence")
)

type Op string

const (
	OpSet     Op = "set"
	OpDelete  Op = "delete"
	OpIndex   Op = "index"
	OpPush    Op = "push"
	OpPop     Op = "pop"
	OpShift   Op = "shift"
	OpUnshift Op = "unshift"
	OpSplice  Op = "splice"
	OpSort    Op = "sort"
	OpReverse Op = "reverse"
)

func (o Op) valid() bool {
	switch o {
	case OpSet, OpDelete, OpIndex, OpPush, OpPop, OpShift, OpUnshift, OpSplice, OpSort, OpReverse:
		return true
	}
	return false
}

type Document struct {
	Data  map[string]any `yaml:"data"`
	Watch []string       `yaml:"watch"`
	Steps []Step         `yaml:"steps"`
}

// Step is one write. Path names the field for set, and the record or
// sequence to operate on for every other op.
type Step struct {
	Op     Op     `yaml:"op"`
	Path   string `yaml:"path"`
	Key    string `yaml:"key,omitempty"`
	Value  any    `yaml:"value,omitempty"`
	Values []any  `yaml:"values,omitempty"`
	Start  int    `yaml:"start,omitempty"`
	Delete int    `yaml:"delete,omitempty"`
	Index  int    `yaml:"index,omitempty"`
}

func (s Step) String() string {
	return fmt.Sprintf("%s %s", s.Op, s.Path)
}

func Load(r io.Reader) (*Document, error) {
	doc := &Document{}
	if err := yaml.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if doc.Data == nil {
		doc.Data = map[string]any{}
	}
	return doc, nil
}

func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Event records one watcher recompute. Step is -1 for events that happened
// while the watchers were being created.
type Event struct {
	Step     int
	Watcher  string
	Value    any
	OldValue any
}

type Result struct {
	Store    *observe.Record
	Watchers []*observe.Watcher
	Events   []Event
	// Errors holds watcher failures reported while notifying.
	Errors []error
}

// Final returns the store as plain data.
func (r *Result) Final() map[string]any {
	return observe.ToValue(r.Store).(map[string]any)
}

// Replay builds the store described by doc and applies its steps in order.
// A step that cannot be applied stops the replay; the partial result is
// returned with the error.
func Replay(doc *Document) (*Result, error) {
	res := &Result{}
	sys := observe.CreateSystem(func(from observe.Subscriber, err error) {
		res.Errors = append(res.Errors, err)
	})

	store, ok := sys.Observe(doc.Data).(*observe.Record)
	if !ok {
		return nil, fmt.Errorf("data: %w", ErrNotRecord)
	}
	res.Store = store

	step := -1
	for _, path := range doc.Watch {
		path := path
		w, err := sys.Watch(store, path, func(value, oldValue any) error {
			res.Events = append(res.Events, Event{
				Step:     step,
				Watcher:  path,
				Value:    observe.ToValue(value),
				OldValue: observe.ToValue(oldValue),
			})
			return nil
		})
		if err != nil {
			return res, err
		}
		res.Watchers = append(res.Watchers, w)
	}

	for i, s := range doc.Steps {
		step = i
		if err := apply(sys, store, s); err != nil {
			return res, fmt.Errorf("step %d (%s): %w", i, s, err)
		}
	}
	return res, nil
}

func apply(sys *observe.System, store *observe.Record, s Step) error {
	if !s.Op.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownOp, s.Op)
	}

	switch s.Op {
	case OpSet:
		parent, key := splitPath(s.Path)
		rec, err := record(sys, store, parent)
		if err != nil {
			return err
		}
		rec.Set(key, s.Value)
		return nil

	case OpDelete:
		rec, err := record(sys, store, s.Path)
		if err != nil {
			return err
		}
		rec.Delete(s.Key)
		return nil
	}

	seq, err := sequence(sys, store, s.Path)
	if err != nil {
		return err
	}
	switch s.Op {
	case OpIndex:
		seq.Set(s.Index, s.Value)
	case OpPush:
		seq.Push(s.Values...)
	case OpPop:
		seq.Pop()
	case OpShift:
		seq.Shift()
	case OpUnshift:
		seq.Unshift(s.Values...)
	case OpSplice:
		seq.Splice(s.Start, s.Delete, s.Values...)
	case OpSort:
		seq.Sort(nil)
	case OpReverse:
		seq.Reverse()
	}
	return nil
}

func splitPath(path string) (parent, key string) {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

func record(sys *observe.System, store *observe.Record, path string) (*observe.Record, error) {
	v, err := sys.Get(store, path)
	if err != nil {
		return nil, err
	}
	rec, ok := v.(*observe.Record)
	if !ok {
		return nil, fmt.Errorf("%q: %w", path, ErrNotRecord)
	}
	return rec, nil
}

func sequence(sys *observe.System, store *observe.Record, path string) (*observe.Sequence, error) {
	v, err := sys.Get(store, path)
	if err != nil {
		return nil, err
	}
	seq, ok := v.(*observe.Sequence)
	if !ok {
		return nil, fmt.Errorf("%q: %w", path, ErrNotSequence)
	}
	return seq, nil
}
