package observe

import (
	"errors"

	mapset "github.com/deckarep/golang-set/v2"
)

// Subscriber is anything that can be registered with a Dep and recomputed
// when the Dep notifies.
type Subscriber interface {
	// addDep is called while the subscriber is active and a Dep it reads
	// from asks to be depended on. The subscriber decides whether the link
	// is new and calls Dep.AddSub if so.
	addDep(d *Dep)
	Update() error
}

// Dep is the subscriber list of one observed field, or of one observed
// Record/Sequence as a whole.
type Dep struct {
	sys  *System
	id   uint64
	subs []Subscriber
}

func newDep(sys *System) *Dep {
	return &Dep{
		sys: sys,
		id:  sys.newDepID(),
	}
}

func (d *Dep) ID() uint64 {
	return d.id
}

// Depend registers the active subscriber, if any.
func (d *Dep) Depend() {
	if sub := d.sys.activeSub; sub != nil {
		sub.addDep(d)
	}
}

func (d *Dep) AddSub(sub Subscriber) {
	if sub == nil {
		return
	}
	d.subs = append(d.subs, sub)
}

// Subs returns a copy of the subscriber list in registration order.
func (d *Dep) Subs() []Subscriber {
	subs := make([]Subscriber, len(d.subs))
	copy(subs, d.subs)
	return subs
}

// Notify recomputes every subscriber registered at the time of the call.
// A failing subscriber is reported to the System's error handler and does
// not stop the rest.
func (d *Dep) Notify() error {
	return d.sys.runSubs(d.Subs())
}

// notifyDeps notifies several deps as one change: a subscriber registered
// with more than one of them is recomputed once. Nil deps are skipped.
func notifyDeps(sys *System, deps ...*Dep) error {
	seen := mapset.NewThreadUnsafeSet[Subscriber]()
	var subs []Subscriber
	for _, d := range deps {
		if d == nil {
			continue
		}
		for _, sub := range d.subs {
			if seen.Add(sub) {
				subs = append(subs, sub)
			}
		}
	}
	return sys.runSubs(subs)
}

func (sys *System) runSubs(subs []Subscriber) error {
	var errs []error
	for _, sub := range subs {
		if err := sub.Update(); err != nil {
			sys.reportError(sub, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
