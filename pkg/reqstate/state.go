// Package reqstate models the lifecycle of an asynchronous request as a
// tagged variant: Idle, Pending, Succeeded or Failed. Exactly one phase
// holds at any observation point; owners swap whole State values under
// their own lock so readers never see a partial transition.
package reqstate

// Phase identifies which variant a State currently holds.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is an immutable snapshot of a request lifecycle. Value is only
// meaningful in PhaseSucceeded, Err only in PhaseFailed.
type State[T any] struct {
	phase Phase
	value T
	err   error
}

// Idle returns the zero lifecycle state.
func Idle[T any]() State[T] {
	return State[T]{phase: PhaseIdle}
}

// Pending marks a request as dispatched but unresolved.
func Pending[T any]() State[T] {
	return State[T]{phase: PhasePending}
}

// Succeeded installs a resolved value, clearing any prior error.
func Succeeded[T any](value T) State[T] {
	return State[T]{phase: PhaseSucceeded, value: value}
}

// Failed installs a resolution error, clearing any prior value.
func Failed[T any](err error) State[T] {
	return State[T]{phase: PhaseFailed, err: err}
}

// Phase reports the variant currently held.
func (s State[T]) Phase() Phase { return s.phase }

func (s State[T]) IsIdle() bool      { return s.phase == PhaseIdle }
func (s State[T]) IsPending() bool   { return s.phase == PhasePending }
func (s State[T]) IsSucceeded() bool { return s.phase == PhaseSucceeded }
func (s State[T]) IsFailed() bool    { return s.phase == PhaseFailed }

// Value returns the resolved value and whether one is present.
func (s State[T]) Value() (T, bool) {
	if s.phase != PhaseSucceeded {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Err returns the resolution error, nil unless the state is Failed.
func (s State[T]) Err() error {
	if s.phase != PhaseFailed {
		return nil
	}
	return s.err
}
