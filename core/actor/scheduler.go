package actor

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Scheduler runs drain loops. Schedule hands work to an execution context and
// returns a channel that is closed once the work has been accepted; it does
// not wait for work to finish. Each call must run work exactly once, start to
// end on a single goroutine.
type Scheduler interface {
	Schedule(work func()) <-chan struct{}
}

// Blocker is implemented by schedulers with a limited set of workers. A
// handler that awaits another actor calls Block before it waits and the
// returned func once the wait is over; in between the scheduler must keep
// running other work that would otherwise queue behind the waiting worker.
type Blocker interface {
	Block() (unblock func())
}

var accepted = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Accepted returns an already closed submission signal, for schedulers that
// accept work synchronously.
func Accepted() <-chan struct{} { return accepted }

// InlineScheduler runs work on the submitting goroutine before Schedule
// returns. Handlers that await other inline actors nest on the same stack.
type InlineScheduler struct{}

func (InlineScheduler) Schedule(work func()) <-chan struct{} {
	work()
	return accepted
}

// GoScheduler starts a goroutine per activation, optionally limiting how many
// run at once.
type GoScheduler struct {
	log      *slog.Logger
	inflight atomic.Int32
	sem      chan struct{}

	wg sync.WaitGroup

	id      string
	metrics ActorMetrics
}

// NewScheduler creates a goroutine scheduler that runs at most max activations
// concurrently. If max <= 0, concurrency is unlimited. Work waiting for a slot
// has already been accepted.
func NewScheduler(max int) *GoScheduler {
	return NewSchedulerWithMetrics(max, "", NopActorMetrics())
}

// NewSchedulerWithMetrics creates a scheduler with metrics support.
func NewSchedulerWithMetrics(max int, id string, metrics ActorMetrics) *GoScheduler {
	var sem chan struct{}
	if max > 0 {
		sem = make(chan struct{}, max)
	}
	if metrics == nil {
		metrics = NopActorMetrics()
	}
	return &GoScheduler{
		sem:     sem,
		log:     slog.Default(),
		id:      id,
		metrics: metrics,
	}
}

func (s *GoScheduler) Schedule(work func()) <-chan struct{} {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if s.sem != nil {
			s.sem <- struct{}{}
			defer func() { <-s.sem }()
		}

		count := s.inflight.Add(1)
		s.metrics.SchedulerInflight(s.id, int(count))
		defer func() {
			count := s.inflight.Add(-1)
			s.metrics.SchedulerInflight(s.id, int(count))
		}()

		s.runTask(work)
	}()
	return accepted
}

func (s *GoScheduler) runTask(work func()) {
	defer s.metrics.SchedulerTaskDuration().ObserveDuration()

	defer func() {
		if r := recover(); r != nil {
			s.metrics.SchedulerTaskCompleted(false)
			// log the panic but don't re-panic
			s.log.Error("scheduled task panicked", slog.Any("recovered", r))
		}
	}()

	work()
	s.metrics.SchedulerTaskCompleted(true)
}

// Block lends the slot of the calling activation to other work until unblock
// is called; unblock waits for a free slot again. Without a bound it is a
// no-op.
func (s *GoScheduler) Block() func() {
	if s.sem == nil {
		return func() {}
	}
	select {
	case <-s.sem:
	default:
		// caller holds no slot
		return func() {}
	}
	return sync.OnceFunc(func() { s.sem <- struct{}{} })
}

// Inflight returns the number of running activations.
func (s *GoScheduler) Inflight() int { return int(s.inflight.Load()) }

// Wait blocks until all accepted work has finished.
func (s *GoScheduler) Wait() {
	s.wg.Wait()
}

var (
	_ Scheduler = InlineScheduler{}
	_ Scheduler = (*GoScheduler)(nil)
	_ Blocker   = (*GoScheduler)(nil)
)
