package observe

import "log"

// OnErrorFunc receives every error a subscriber returns while it is being
// recomputed by a notify.
type OnErrorFunc func(from Subscriber, err error)

// System owns the tracking state shared by every value it observes: the
// active subscriber slot, the pause stack and the id counters. A System is
// single-threaded; reads and writes on its values must not race.
type System struct {
	activeSub  Subscriber
	pauseStack []Subscriber

	nextDepID     uint64
	nextWatcherID uint64

	paths   pathCache
	onError OnErrorFunc
}

// CreateSystem returns an empty System. A nil onError logs recompute
// failures with the standard logger.
func CreateSystem(onError OnErrorFunc) *System {
	if onError == nil {
		onError = logError
	}
	return &System{
		onError: onError,
		paths:   pathCache{},
	}
}

// Active returns the subscriber currently tracking reads, or nil.
func (sys *System) Active() Subscriber {
	return sys.activeSub
}

// track makes sub the active subscriber for the duration of fn. The previous
// subscriber is restored on every exit path so nested tracking composes.
func (sys *System) track(sub Subscriber, fn func() error) error {
	prevSub := sys.activeSub
	sys.activeSub = sub
	defer func() {
		sys.activeSub = prevSub
	}()
	return fn()
}

func (sys *System) PauseTracking() {
	sys.pauseStack = append(sys.pauseStack, sys.activeSub)
	sys.activeSub = nil
}

func (sys *System) ResumeTracking() {
	lastIdx := len(sys.pauseStack) - 1
	sys.activeSub = sys.pauseStack[lastIdx]
	sys.pauseStack = sys.pauseStack[:lastIdx]
}

// Untrack runs fn with tracking paused, so reads inside it do not subscribe.
func (sys *System) Untrack(fn func()) {
	sys.PauseTracking()
	defer sys.ResumeTracking()
	fn()
}

func (sys *System) reportError(from Subscriber, err error) {
	sys.onError(from, err)
}

func logError(from Subscriber, err error) {
	log.Printf("observe: recompute of %v failed: %v", from, err)
}

func (sys *System) newDepID() uint64 {
	sys.nextDepID++
	return sys.nextDepID
}

func (sys *System) newWatcherID() uint64 {
	sys.nextWatcherID++
	return sys.nextWatcherID
}
