package actor

import (
	"slices"
	"time"
)

// Envelope is one queued message. Everything but the timestamps and the
// outcome is fixed at submission; those are written by the drain loop before
// completion observers run.
type Envelope struct {
	id   int64
	cmd  int32
	args []any

	pushTime     time.Time
	completeTime time.Time

	value any
	err   error

	result *Future[any]
}

func newEnvelope(id int64, cmd int32, args []any) *Envelope {
	return &Envelope{
		id:       id,
		cmd:      cmd,
		args:     slices.Clone(args),
		pushTime: time.Now(),
		result:   NewFuture[any](),
	}
}

// ID is the caller assigned correlation id.
func (e *Envelope) ID() int64 { return e.id }

// Cmd is the command tag.
func (e *Envelope) Cmd() int32 { return e.cmd }

// Args returns the argument sequence. It must not be modified.
func (e *Envelope) Args() []any { return e.args }

func (e *Envelope) PushTime() time.Time     { return e.pushTime }
func (e *Envelope) CompleteTime() time.Time { return e.completeTime }

// Outcome is what the message is about to be resolved with. Only meaningful
// inside a completion observer.
func (e *Envelope) Outcome() (any, error) { return e.value, e.err }
