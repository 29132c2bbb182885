package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2beens/exercisetracker/internal/camera"
	"github.com/2beens/exercisetracker/internal/exercises"
	"github.com/2beens/exercisetracker/internal/inference"
	"github.com/2beens/exercisetracker/internal/results"
	"github.com/2beens/exercisetracker/internal/telemetry/metrics"
	"github.com/2beens/exercisetracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	cameraUnavailableMsg = "camera access denied or not available"
	resetFailedMsgPrefix = "error resetting counters: "

	// Stop waits for a publish in progress, so sinks get a bounded context.
	DefaultPublishTimeout = 2 * time.Second
)

// FrameTask is one frame on its way to the inference service.
type FrameTask struct {
	Image      string
	Exercise   string
	Tick       uint64
	Generation uint64
	IssuedAt   time.Time
}

type session struct {
	generation uint64
	handle     *camera.Handle
	scheduler  *Scheduler
	exercise   *exercises.Descriptor
	startedAt  time.Time

	issued    atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	skipped   atomic.Uint64
}

type ControllerParams struct {
	Camera    mediaResource
	Sampler   frameSampler
	Inference inferenceClient
	Sink      results.Sink
	Listener  TransitionListener
	Metrics   *metrics.Manager
	Period    time.Duration
	NewTicker TickerFactory
	// zero means DefaultPublishTimeout
	PublishTimeout time.Duration
}

// Controller owns the tracking session: the camera handle, the capture
// scheduler and the selected exercise. Every session gets a new generation,
// and results of frames sent in an older generation are dropped.
type Controller struct {
	camera    mediaResource
	sampler   frameSampler
	inference inferenceClient
	sink      results.Sink
	listener  TransitionListener
	metrics   *metrics.Manager
	period    time.Duration
	newTicker TickerFactory

	publishTimeout time.Duration

	mu        sync.Mutex
	session   *session
	lastError string
	closed    bool

	generations atomic.Uint64
	// generation of the running session, 0 when idle
	current atomic.Uint64
	// held for reading while an outcome is checked and published
	gate sync.RWMutex

	inFlight   sync.WaitGroup
	sendCtx    context.Context
	cancelSend context.CancelFunc
}

func NewController(params ControllerParams) *Controller {
	sendCtx, cancelSend := context.WithCancel(context.Background())

	publishTimeout := params.PublishTimeout
	if publishTimeout <= 0 {
		publishTimeout = DefaultPublishTimeout
	}

	return &Controller{
		camera:     params.Camera,
		sampler:    params.Sampler,
		inference:  params.Inference,
		sink:       params.Sink,
		listener:   params.Listener,
		metrics:    params.Metrics,
		period:     params.Period,
		newTicker:  params.NewTicker,
		sendCtx:    sendCtx,
		cancelSend: cancelSend,

		publishTimeout: publishTimeout,
	}
}

// Start acquires the camera. Tracking begins with SelectExercise.
func (c *Controller) Start(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.session != nil {
		return &StateError{Op: "start", State: c.stateLocked()}
	}

	handle, err := c.camera.Acquire(ctx)
	if err != nil {
		c.lastError = cameraUnavailableMsg
		log.Errorf("start session: acquire camera: %s", err)
		return fmt.Errorf("start session: %w", err)
	}

	s := &session{
		generation: c.generations.Add(1),
		handle:     handle,
		startedAt:  time.Now(),
	}
	s.scheduler = NewScheduler(c.period, c.newTicker, func(label string, tick uint64, at time.Time) {
		c.onTick(s, label, tick, at)
	})

	c.session = s
	c.current.Store(s.generation)
	c.lastError = ""
	c.metrics.GaugeActiveSessions.Inc()

	span.SetAttributes(attribute.Int64("generation", int64(s.generation)))
	log.Infof("session %d started", s.generation)

	c.notify(Transition{
		Kind:       TransitionSessionStarted,
		Generation: s.generation,
		At:         s.startedAt,
	})

	return nil
}

// SelectExercise sets the exercise sent along with every frame. The first
// selection starts the capture timer, later ones only swap the exercise.
func (c *Controller) SelectExercise(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return &StateError{Op: "select exercise", State: StateIdle}
	}

	desc, err := exercises.Lookup(id)
	if err != nil {
		return err
	}

	s.exercise = &desc
	if s.scheduler.Begin(desc.ID) {
		log.Infof("session %d: tracking %s", s.generation, desc.ID)
	} else {
		log.Infof("session %d: switched to %s", s.generation, desc.ID)
	}

	c.notify(Transition{
		Kind:       TransitionExerciseSelected,
		Generation: s.generation,
		Exercise:   desc.ID,
		At:         time.Now(),
	})

	return nil
}

// ResetCounters asks the inference service to reset its repetition counters.
// The call is made without holding the controller.
func (c *Controller) ResetCounters(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "tracker.resetCounters")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	c.mu.Lock()
	s := c.session
	c.mu.Unlock()

	if s == nil {
		return &StateError{Op: "reset counters", State: StateIdle}
	}

	err = c.inference.ResetCounters(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.session == s
	if current {
		if err != nil {
			c.lastError = resetErrorMessage(err)
		} else {
			c.lastError = ""
		}
	}

	if err != nil {
		log.Warnf("session %d: reset counters: %s", s.generation, err)
		return fmt.Errorf("reset counters: %w", err)
	}

	// the session was stopped while the request was out
	if !current {
		log.Debugf("session %d: counters reset after stop", s.generation)
		return nil
	}

	exercise := ""
	if s.exercise != nil {
		exercise = s.exercise.ID
	}
	c.notify(Transition{
		Kind:       TransitionCountersReset,
		Generation: s.generation,
		Exercise:   exercise,
		At:         time.Now(),
	})

	return nil
}

// Stop ends the session: no capture runs after Stop returns, the camera is
// released and results still on the way are discarded. Stopping an idle
// controller does nothing.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stopLocked()
}

func (c *Controller) stopLocked() error {
	s := c.session
	if s == nil {
		return nil
	}

	c.gate.Lock()
	c.current.Store(0)
	c.gate.Unlock()

	s.scheduler.End()
	releaseErr := c.camera.Release(s.handle)

	c.session = nil
	c.metrics.GaugeActiveSessions.Dec()

	log.Infof(
		"session %d stopped, frames: %d issued, %d ok, %d failed, %d skipped",
		s.generation, s.issued.Load(), s.succeeded.Load(), s.failed.Load(), s.skipped.Load(),
	)

	c.notify(Transition{
		Kind:       TransitionSessionStopped,
		Generation: s.generation,
		At:         time.Now(),
	})

	if releaseErr != nil {
		return fmt.Errorf("stop session: %w", releaseErr)
	}
	return nil
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:     c.stateLocked(),
		LastError: c.lastError,
	}

	s := c.session
	if s == nil {
		return st
	}

	startedAt := s.startedAt
	st.Generation = s.generation
	st.StartedAt = &startedAt
	if s.exercise != nil {
		desc := *s.exercise
		st.Exercise = &desc
	}
	st.FramesIssued = s.issued.Load()
	st.FramesSucceeded = s.succeeded.Load()
	st.FramesFailed = s.failed.Load()
	st.CapturesSkipped = s.skipped.Load()

	return st
}

// WaitInFlight waits for frames already handed to the inference service.
// Only meaningful once the session is stopped.
func (c *Controller) WaitInFlight(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the session and waits for in flight frames until ctx is done,
// after which they are canceled. The controller can not be started again.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	stopErr := c.stopLocked()
	c.mu.Unlock()

	waitErr := c.WaitInFlight(ctx)
	if waitErr != nil {
		log.Warnf("close controller: in flight frames canceled: %s", waitErr)
		c.cancelSend()
		c.inFlight.Wait()
	}
	c.cancelSend()

	return errors.Join(stopErr, waitErr)
}

func (c *Controller) stateLocked() State {
	switch {
	case c.session == nil:
		return StateIdle
	case c.session.exercise == nil:
		return StateCameraOn
	default:
		return StateTracking
	}
}

func (c *Controller) notify(t Transition) {
	if c.listener != nil {
		c.listener.OnTransition(t)
	}
}

// onTick runs on the scheduler goroutine. It must not take c.mu, Stop holds
// it while waiting for the scheduler to end.
func (c *Controller) onTick(s *session, label string, tick uint64, at time.Time) {
	c.metrics.CounterTicks.Inc()

	if c.current.Load() != s.generation {
		return
	}

	frame, err := c.sampler.Capture(s.handle)
	if errors.Is(err, camera.ErrNotReady) {
		s.skipped.Add(1)
		c.metrics.CounterSkippedCaptures.Inc()
		log.Debugf("session %d tick %d: no frame ready", s.generation, tick)
		return
	}
	if err != nil {
		s.failed.Add(1)
		c.metrics.CounterSendFailures.WithLabelValues("capture").Inc()
		log.Errorf("session %d tick %d: capture: %s", s.generation, tick, err)
		c.publish(results.Outcome{
			Generation: s.generation,
			Exercise:   label,
			Tick:       tick,
			IssuedAt:   at,
			Error:      err.Error(),
		})
		return
	}

	task := FrameTask{
		Image:      frame.DataURL,
		Exercise:   label,
		Tick:       tick,
		Generation: s.generation,
		IssuedAt:   at,
	}
	s.issued.Add(1)

	c.inFlight.Add(1)
	go c.transmit(s, task)
}

func (c *Controller) transmit(s *session, task FrameTask) {
	defer c.inFlight.Done()

	ctx, span := tracing.GlobalTracer.Start(c.sendCtx, "tracker.transmit")
	span.SetAttributes(
		attribute.Int64("generation", int64(task.Generation)),
		attribute.Int64("tick", int64(task.Tick)),
		attribute.String("exercise", task.Exercise),
	)

	start := time.Now()
	res, err := c.inference.SendFrame(ctx, task.Image, task.Exercise)
	c.metrics.HistogramInferenceDuration.Observe(time.Since(start).Seconds())
	tracing.EndSpanWithErrCheck(span, err)

	outcome := results.Outcome{
		Generation: task.Generation,
		Exercise:   task.Exercise,
		Tick:       task.Tick,
		IssuedAt:   task.IssuedAt,
	}

	if err != nil {
		s.failed.Add(1)
		c.metrics.CounterSendFailures.WithLabelValues(failureKind(err)).Inc()
		log.Warnf("session %d tick %d: send frame: %s", task.Generation, task.Tick, err)
		outcome.Error = err.Error()
	} else {
		s.succeeded.Add(1)
		c.metrics.CounterFramesSent.Inc()
		outcome.Result = res.Raw
	}

	c.publish(outcome)
}

// publish holds the gate so Stop can not complete between the generation
// check and the sink write; the write itself is bounded by publishTimeout.
func (c *Controller) publish(outcome results.Outcome) {
	c.gate.RLock()
	defer c.gate.RUnlock()

	if c.current.Load() != outcome.Generation {
		c.metrics.CounterStaleOutcomes.Inc()
		log.Debugf("discarding outcome of session %d tick %d", outcome.Generation, outcome.Tick)
		return
	}

	if c.sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.publishTimeout)
	defer cancel()
	if err := c.sink.Publish(ctx, outcome); err != nil {
		log.Errorf("publish outcome of session %d tick %d: %s", outcome.Generation, outcome.Tick, err)
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, inference.ErrNetwork):
		return "network"
	case errors.Is(err, inference.ErrService):
		return "service"
	default:
		return "other"
	}
}

func resetErrorMessage(err error) string {
	var serviceErr *inference.ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Message
	}
	return resetFailedMsgPrefix + err.Error()
}
