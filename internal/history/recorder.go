package history

import (
	"context"
	"time"

	"github.com/2beens/exercisetracker/internal/telemetry/metrics"
	"github.com/2beens/exercisetracker/internal/tracker"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultRecorderBuffer = 64
	flushTimeout          = 5 * time.Second
)

// Recorder persists controller transitions. OnTransition never blocks: when the
// buffer is full the event is dropped.
type Recorder struct {
	repo    eventsWriter
	events  chan Event
	metrics *metrics.Manager
}

func NewRecorder(repo eventsWriter, bufferSize int, metricsManager *metrics.Manager) *Recorder {
	if bufferSize <= 0 {
		bufferSize = DefaultRecorderBuffer
	}
	return &Recorder{
		repo:    repo,
		events:  make(chan Event, bufferSize),
		metrics: metricsManager,
	}
}

func (r *Recorder) OnTransition(t tracker.Transition) {
	event := NewEventFromTransition(t)
	select {
	case r.events <- event:
	default:
		r.metrics.CounterHistoryDropped.Inc()
		log.Warnf("history recorder buffer full, dropping %s event (generation %d)", event.Type, event.Generation)
	}
}

// Run stores buffered events until ctx is done, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case event := <-r.events:
			r.store(ctx, event)
		case <-ctx.Done():
			r.flush(context.WithoutCancel(ctx))
			return
		}
	}
}

func (r *Recorder) flush(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	for {
		select {
		case event := <-r.events:
			r.store(ctx, event)
		default:
			return
		}
	}
}

func (r *Recorder) store(ctx context.Context, event Event) {
	stored, err := r.repo.Add(ctx, event)
	if err != nil {
		log.Errorf("store %s event (generation %d): %s", event.Type, event.Generation, err)
		return
	}
	log.Debugf("stored history event %d: %s", stored.ID, stored.Type)
}
