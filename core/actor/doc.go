// Package actor serializes access to a controller object behind a lock-free
// mailbox.
//
// A controller embeds [Base] and lists its tagged operations:
//
//	type Calculator struct {
//	    actor.Base
//	    total int
//	}
//
//	func (c *Calculator) Commands() []actor.Command {
//	    return []actor.Command{
//	        actor.Func2(10000, func(ctx context.Context, a, b int) (int, error) {
//	            return a + b, nil
//	        }).Named("Add"),
//	        actor.Action1(10001, func(ctx context.Context, n int) { c.total += n }),
//	    }
//	}
//
//	a, err := actor.New(&Calculator{}, actor.Options{MaxQueueDepth: 1024})
//
// # Submitting Messages
//
// Messages carry a caller chosen correlation id, a command tag and positional
// arguments. There are three entry points:
//
//   - [Actor.Action] enqueues and returns once the drain loop was requested
//   - [Actor.AsyncAction] waits for dispatch and reports faults
//   - [Actor.AsyncFunc] waits for dispatch and returns the result value
//
// [Call] is the typed variant of AsyncFunc.
//
// Unknown tags and argument count mismatches are not faults: they resolve to
// an [*ErrorResult] carrying the correlation id.
//
// # Activation
//
// An actor is Idle, Open or Disposed. The first submitter that moves it from
// Idle to Open hands the drain loop to the [Scheduler]; every other submitter
// only enqueues. At most one drain loop runs at a time, so controller state
// needs no locking. Disposed is terminal.
//
// # Observers
//
// Observers registered with [Options.Observers] or [Actor.OnCompleted] run on
// the drain goroutine after every dispatch, before the caller is resumed.
package actor
