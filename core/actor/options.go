package actor

import (
	"context"
	"log/slog"
)

// OnPanic is called on the drain goroutine when a controller operation panics.
type OnPanic func(recovered any, stack []byte, env *Envelope)

// Options configures an actor. Zero fields take defaults.
type Options struct {
	// Name identifies the actor in logs and metrics. Defaults to the
	// controller's type name.
	Name string
	// MaxQueueDepth bounds the mailbox. Submissions that find this many
	// messages queued fail with ErrQueueFull. 0 means unbounded.
	MaxQueueDepth int
	// Scheduler runs the drain loop. Defaults to an unbounded GoScheduler.
	Scheduler Scheduler
	// Context is the parent of the context handed to controller operations.
	// It is cancelled when the actor is disposed.
	Context context.Context
	Logger  *slog.Logger
	Metrics ActorMetrics
	OnPanic OnPanic
	// Observers are registered before the first message is accepted.
	Observers []Observer
	// Peers resolves tags served by other actors, see [Base.Peer].
	Peers Lookup
}

// merge fills zero fields of o from fallback.
func (o Options) merge(fallback Options) Options {
	if o.Name == "" {
		o.Name = fallback.Name
	}
	if o.MaxQueueDepth == 0 {
		o.MaxQueueDepth = fallback.MaxQueueDepth
	}
	if o.Scheduler == nil {
		o.Scheduler = fallback.Scheduler
	}
	if o.Context == nil {
		o.Context = fallback.Context
	}
	if o.Logger == nil {
		o.Logger = fallback.Logger
	}
	if o.Metrics == nil {
		o.Metrics = fallback.Metrics
	}
	if o.OnPanic == nil {
		o.OnPanic = fallback.OnPanic
	}
	if o.Peers == nil {
		o.Peers = fallback.Peers
	}
	o.Observers = append(append([]Observer(nil), o.Observers...), fallback.Observers...)
	return o
}
