package actor

import "sync/atomic"

// Status is the activation state of an actor.
type Status int32

const (
	// StatusIdle means no drain loop owns the mailbox.
	StatusIdle Status = iota
	// StatusOpen means exactly one drain loop owns the mailbox.
	StatusOpen
	// StatusDisposed is terminal.
	StatusDisposed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusOpen:
		return "open"
	case StatusDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// gate is the activation state machine. Every transition is a compare-and-swap
// on a single integer:
//
//	Idle -> Open       open, any submitter
//	Open -> Idle       release, only the draining goroutine
//	Idle|Open -> Disposed  dispose, first caller wins
type gate struct {
	v atomic.Int32
}

func (g *gate) load() Status { return Status(g.v.Load()) }

func (g *gate) open() bool { return g.v.CompareAndSwap(int32(StatusIdle), int32(StatusOpen)) }

func (g *gate) release() bool { return g.v.CompareAndSwap(int32(StatusOpen), int32(StatusIdle)) }

// dispose reports whether this call performed the transition.
func (g *gate) dispose() bool {
	for {
		cur := g.v.Load()
		if Status(cur) == StatusDisposed {
			return false
		}
		if g.v.CompareAndSwap(cur, int32(StatusDisposed)) {
			return true
		}
	}
}
