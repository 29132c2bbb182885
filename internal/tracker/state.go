package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/2beens/exercisetracker/internal/exercises"
)

var (
	ErrInvalidState = errors.New("invalid session state")
	ErrClosed       = errors.New("session controller closed")
)

type State int

const (
	StateIdle State = iota
	StateCameraOn
	StateTracking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCameraOn:
		return "camera_on"
	case StateTracking:
		return "tracking"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StateError is returned for an operation that is not allowed in the
// current state.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.State)
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// Status is a snapshot of the controller.
type Status struct {
	State      State                 `json:"state"`
	Generation uint64                `json:"generation,omitempty"`
	Exercise   *exercises.Descriptor `json:"exercise,omitempty"`
	StartedAt  *time.Time            `json:"startedAt,omitempty"`
	LastError  string                `json:"lastError,omitempty"`

	FramesIssued    uint64 `json:"framesIssued"`
	FramesSucceeded uint64 `json:"framesSucceeded"`
	FramesFailed    uint64 `json:"framesFailed"`
	CapturesSkipped uint64 `json:"capturesSkipped"`
}

type TransitionKind string

const (
	TransitionSessionStarted   TransitionKind = "session_started"
	TransitionExerciseSelected TransitionKind = "exercise_selected"
	TransitionCountersReset    TransitionKind = "counters_reset"
	TransitionSessionStopped   TransitionKind = "session_stopped"
)

type Transition struct {
	Kind       TransitionKind
	Generation uint64
	Exercise   string
	At         time.Time
}

// TransitionListener is notified synchronously, with the controller locked.
// It must not block and must not call back into the controller.
type TransitionListener interface {
	OnTransition(t Transition)
}

type TransitionListenerFunc func(t Transition)

func (f TransitionListenerFunc) OnTransition(t Transition) {
	f(t)
}
