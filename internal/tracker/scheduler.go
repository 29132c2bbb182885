package tracker

import (
	"sync"
	"time"
)

const DefaultCapturePeriod = time.Second

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(period time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t *timeTicker) C() <-chan time.Time {
	return t.t.C
}

func (t *timeTicker) Stop() {
	t.t.Stop()
}

func NewTimeTicker(period time.Duration) Ticker {
	return &timeTicker{t: time.NewTicker(period)}
}

// TickFunc gets the label current at tick time and the tick number, counted
// from 1 for every Begin.
type TickFunc func(label string, tick uint64, at time.Time)

// Scheduler runs at most one periodic capture timer.
type Scheduler struct {
	period    time.Duration
	newTicker TickerFactory
	onTick    TickFunc

	mu    sync.Mutex
	label string
	stop  chan struct{}
	done  chan struct{}
}

func NewScheduler(period time.Duration, newTicker TickerFactory, onTick TickFunc) *Scheduler {
	if period <= 0 {
		period = DefaultCapturePeriod
	}
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	return &Scheduler{
		period:    period,
		newTicker: newTicker,
		onTick:    onTick,
	}
}

// Begin starts the timer with the given label. If the timer is already
// running only the label is replaced, and false is returned.
func (s *Scheduler) Begin(label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.label = label
	if s.stop != nil {
		return false
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop, s.done = stop, done

	go s.loop(s.newTicker(s.period), stop, done)

	return true
}

// End stops the timer. When it returns, no tick is running and none will run.
func (s *Scheduler) End() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.label = ""
	s.mu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	<-done
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *Scheduler) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

func (s *Scheduler) loop(ticker Ticker, stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	var tick uint64
	for {
		select {
		case <-stop:
			return
		case at := <-ticker.C():
			s.mu.Lock()
			if s.stop != stop {
				s.mu.Unlock()
				return
			}
			label := s.label
			s.mu.Unlock()

			tick++
			s.onTick(label, tick, at)
		}
	}
}
