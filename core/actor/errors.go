package actor

import (
	"errors"
	"fmt"
)

var (
	// Submission errors, reported synchronously before the mailbox is touched.
	ErrDisposed  = errors.New("actor: disposed")
	ErrQueueFull = errors.New("actor: queue full")

	// ErrSelfRequest is returned when a handler awaits a message on its own actor.
	ErrSelfRequest = errors.New("actor: await on own actor from inside dispatch")

	// Dispatch errors, delivered through the completion handle.
	ErrReturnMode = errors.New("actor: unsupported return mode")
	ErrArgType    = errors.New("actor: argument type mismatch")
	ErrResultType = errors.New("actor: result type mismatch")

	// Construction errors.
	ErrInvalidCommand  = errors.New("actor: invalid command")
	ErrNilController   = errors.New("actor: controller is nil")
	ErrControllerBound = errors.New("actor: controller already bound to an actor")
)

// PanicError is the fault delivered when a controller operation panics.
type PanicError struct {
	Recovered any
	Stack     []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("actor: handler panicked: %v", e.Recovered) }

// Unwrap exposes a recovered error value.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Recovered.(error); ok {
		return err
	}
	return nil
}
