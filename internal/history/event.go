package history

import (
	"strconv"
	"time"

	"github.com/2beens/exercisetracker/internal/tracker"
)

// Event is a single session lifecycle entry as stored in the session_event table.
type Event struct {
	ID         int               `json:"id"`
	Type       EventType         `json:"type"`
	Generation uint64            `json:"generation"`
	Exercise   string            `json:"exercise,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Data       map[string]string `json:"data"`
}

// EventType can be one of:
//   - session_started
//   - exercise_selected
//   - counters_reset
//   - session_stopped
type EventType string

const (
	EventTypeSessionStarted   EventType = "session_started"
	EventTypeExerciseSelected EventType = "exercise_selected"
	EventTypeCountersReset    EventType = "counters_reset"
	EventTypeSessionStopped   EventType = "session_stopped"
)

func (et EventType) String() string {
	return string(et)
}

func (et EventType) IsValid() bool {
	switch et {
	case EventTypeSessionStarted,
		EventTypeExerciseSelected,
		EventTypeCountersReset,
		EventTypeSessionStopped:
		return true
	default:
		return false
	}
}

func NewEventFromTransition(t tracker.Transition) Event {
	return Event{
		Type:       EventType(t.Kind),
		Generation: t.Generation,
		Exercise:   t.Exercise,
		Timestamp:  t.At,
		Data: map[string]string{
			"generation": strconv.FormatUint(t.Generation, 10),
		},
	}
}
