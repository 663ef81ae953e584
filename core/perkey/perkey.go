// Package perkey provides a scheduler that pins work to a fixed set of worker
// goroutines ("lanes"). Work for a given key always runs on the same lane,
// sequentially and in submission order, while different lanes run in parallel.
//
// Typical use-case: giving actors a dedicated execution context. Each actor
// schedules its drain loop on the lane of its name:
//
//	lanes := perkey.New(perkey.WithLanes(8))
//	a, err := actor.New(ctrl, actor.Options{Scheduler: lanes.For("calculator")})
//
// A handler that awaits another actor blocks its lane worker. The actor
// package reports this through [Lane.Block], and the lane starts a helper
// goroutine that keeps taking queued work until the wait is over, so an
// awaited actor pinned to the same lane still runs.
package perkey

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/gdmec07150948/NetX/core/actor"
	"github.com/gdmec07150948/NetX/internal/hrw"
)

// Option configures a Scheduler.
type Option func(*config)

type config struct {
	bufferSize int
	lanes      int
	seed       string
	log        *slog.Logger
}

// WithBufferSize sets the task buffer size per lane (default: 64).
func WithBufferSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

// WithLanes sets the number of lanes (default: GOMAXPROCS).
func WithLanes(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.lanes = n
		}
	}
}

// WithSeed changes the key to lane assignment.
func WithSeed(seed string) Option {
	return func(c *config) { c.seed = seed }
}

func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// Scheduler owns the lanes.
type Scheduler struct {
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup // tracks in-flight handoffs
	lanes  []chan func()
	seed   string
	log    *slog.Logger
}

// New creates a Scheduler and starts its lanes.
func New(opts ...Option) *Scheduler {
	cfg := &config{
		bufferSize: 64,
		lanes:      runtime.GOMAXPROCS(0),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	s := &Scheduler{
		lanes: make([]chan func(), cfg.lanes),
		seed:  cfg.seed,
		log:   cfg.log,
	}
	for i := range s.lanes {
		s.lanes[i] = make(chan func(), cfg.bufferSize)
		go s.runLane(i, s.lanes[i])
	}
	return s
}

// Lanes returns the number of lanes.
func (s *Scheduler) Lanes() int { return len(s.lanes) }

// LaneOf returns the lane index key is pinned to.
func (s *Scheduler) LaneOf(key string) int { return hrw.Best(key, len(s.lanes), s.seed) }

// For returns an actor.Scheduler that runs all work on key's lane.
func (s *Scheduler) For(key string) Lane {
	return Lane{s: s, idx: s.LaneOf(key)}
}

// Do runs fn on key's lane and blocks until it finishes.
func (s *Scheduler) Do(key string, fn func() error) error {
	return s.DoContext(context.Background(), key, fn)
}

// DoContext is like Do but respects context cancellation. If the context is
// cancelled after fn was handed to the lane, fn still runs.
func (s *Scheduler) DoContext(ctx context.Context, key string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	work := func() { done <- fn() }

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrSchedulerClosed
	}
	s.wg.Add(1)
	s.mu.RUnlock()

	select {
	case s.lanes[s.LaneOf(key)] <- work:
		s.wg.Done()
	case <-ctx.Done():
		s.wg.Done()
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new work. It waits for in-flight handoffs before
// closing the lanes; already queued work is still run. Work scheduled
// through a Lane after Close runs on a fresh goroutine so no actor is left
// without its drain loop.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	// Wait for all in-flight handoffs to finish.
	// This prevents sends to closed channels.
	s.wg.Wait()

	for _, ch := range s.lanes {
		close(ch)
	}
}

func (s *Scheduler) runLane(idx int, tasks <-chan func()) {
	for work := range tasks {
		s.run(idx, work)
	}
}

func (s *Scheduler) run(idx int, work func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("lane task panicked", slog.Int("lane", idx), slog.Any("recovered", r))
		}
	}()
	work()
}

// Lane schedules work on one lane of a Scheduler.
type Lane struct {
	s   *Scheduler
	idx int
}

// Index is the lane number.
func (l Lane) Index() int { return l.idx }

// Schedule queues work on the lane. The returned channel is closed once the
// lane buffer took the work, which is immediate unless the buffer is full.
func (l Lane) Schedule(work func()) <-chan struct{} {
	s := l.s
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		s.log.Warn("lane scheduler closed, running work on a new goroutine", slog.Int("lane", l.idx))
		go s.run(l.idx, work)
		return actor.Accepted()
	}
	s.wg.Add(1)
	s.mu.RUnlock()

	select {
	case s.lanes[l.idx] <- work:
		s.wg.Done()
		return actor.Accepted()
	default:
	}

	sig := make(chan struct{})
	go func() {
		defer s.wg.Done()
		s.lanes[l.idx] <- work
		close(sig)
	}()
	return sig
}

// Block starts a helper that runs the lane's queued work while the calling
// worker waits. The helper stops after its current task once unblock is
// called, or when the lane is closed.
func (l Lane) Block() (unblock func()) {
	tasks := l.s.lanes[l.idx]
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			select {
			case work, ok := <-tasks:
				if !ok {
					return
				}
				l.s.run(l.idx, work)
			case <-stop:
				return
			}
		}
	}()
	return sync.OnceFunc(func() { close(stop) })
}

var (
	_ actor.Scheduler = Lane{}
	_ actor.Blocker   = Lane{}
)

// ----- Errors -----

// ErrSchedulerClosed is returned when Do is called on a closed scheduler.
var ErrSchedulerClosed = &SchedulerError{"scheduler is closed"}

// SchedulerError is a simple error implementation.
type SchedulerError struct {
	msg string
}

func (e *SchedulerError) Error() string { return e.msg }
