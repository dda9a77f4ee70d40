package toon

import "sync"

// UnavailableThreshold is the number of consecutive failures that is still
// absorbed; the next one marks the device unavailable.
const UnavailableThreshold = 3

// Availability is the reachability state of a device.
type Availability int

const (
	Available Availability = iota
	Unavailable
)

func (a Availability) String() string {
	if a == Unavailable {
		return "unavailable"
	}
	return "available"
}

// Transition describes a state change produced by the tracker.
type Transition struct {
	From, To Availability
	Reason   string
}

// Tracker turns operation outcomes into debounced availability transitions.
// It is safe for concurrent use; every outcome is applied under one mutex so
// no failure is lost between concurrent fetches.
type Tracker struct {
	mu     sync.Mutex
	state  Availability
	streak uint
}

// NewTracker returns a tracker in the Available state with an empty streak.
func NewTracker() *Tracker {
	return &Tracker{state: Available}
}

// RestoreTracker returns a tracker starting from a persisted state.
func RestoreTracker(available bool) *Tracker {
	t := NewTracker()
	if !available {
		t.state = Unavailable
	}
	return t
}

// Success resets the streak. It returns a transition only when the device was
// unavailable.
func (t *Tracker) Success() (Transition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.streak = 0
	if t.state == Available {
		return Transition{}, false
	}
	t.state = Available
	return Transition{From: Unavailable, To: Available}, true
}

// Failure records a failed operation. Without force, failures are absorbed
// until the streak exceeds UnavailableThreshold. With force the device goes
// unavailable at once. A transition is returned only on an actual change.
func (t *Tracker) Failure(force bool, reason string) (Transition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.streak++
	if t.state == Unavailable {
		return Transition{}, false
	}
	if !force && t.streak <= UnavailableThreshold {
		return Transition{}, false
	}
	t.state = Unavailable
	return Transition{From: Available, To: Unavailable, Reason: reason}, true
}

// State returns the current availability and failure streak.
func (t *Tracker) State() (Availability, uint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state, t.streak
}
