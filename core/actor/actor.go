package actor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/gdmec07150948/NetX/internal/mailbox"
	"github.com/gdmec07150948/NetX/internal/reflector"
)

// Actor serializes access to one controller. Messages are dispatched one at a
// time, in the order they were accepted, by a single drain loop that the
// first successful submitter activates.
type Actor struct {
	id   string
	name string
	log  *slog.Logger

	ctx         context.Context
	cancel      context.CancelFunc
	dispatchCtx context.Context

	ctrl     Controller
	base     *Base
	registry *registry

	mailbox  *mailbox.Queue[*Envelope]
	maxDepth int
	gate     gate

	sched   Scheduler
	metrics ActorMetrics
	onPanic OnPanic

	obsMu     sync.Mutex
	observers atomic.Pointer[[]Observer]
}

// New builds an actor around c. The command registry is built from
// c.Commands(); invalid registrations are logged and skipped.
func New(c Controller, opts Options) (*Actor, error) {
	if c == nil {
		return nil, ErrNilController
	}
	b := c.controllerBase()
	if b == nil {
		return nil, fmt.Errorf("%w: embedded Base is nil", ErrNilController)
	}
	if b.self != nil {
		return nil, ErrControllerBound
	}

	if p, ok := c.(OptionsProvider); ok {
		opts = opts.merge(p.ActorOptions())
	}
	if opts.Name == "" {
		opts.Name = reflector.TypeInfoOf(c).Short
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopActorMetrics()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewSchedulerWithMetrics(0, opts.Name, opts.Metrics)
	}
	if opts.MaxQueueDepth < 0 {
		opts.MaxQueueDepth = 0
	}

	id := gonanoid.Must()
	log := opts.Logger.With(slog.String("actor", opts.Name), slog.String("actor_id", id))
	if opts.OnPanic == nil {
		opts.OnPanic = func(recovered any, stack []byte, env *Envelope) {
			log.Error("actor handler panicked",
				slog.Any("recovered", recovered),
				slog.String("stack", string(stack)),
				slog.Int64("id", env.ID()),
				slog.Int("cmd", int(env.Cmd())),
			)
		}
	}

	a := &Actor{
		id:       id,
		name:     opts.Name,
		log:      log,
		ctrl:     c,
		base:     b,
		registry: buildRegistry(log, c.Commands()),
		mailbox:  mailbox.New[*Envelope](),
		maxDepth: opts.MaxQueueDepth,
		sched:    opts.Scheduler,
		metrics:  opts.Metrics,
		onPanic:  opts.OnPanic,
	}
	a.ctx, a.cancel = context.WithCancel(opts.Context)
	a.dispatchCtx = withDispatch(a.ctx, a)

	observers := append([]Observer(nil), opts.Observers...)
	a.observers.Store(&observers)

	b.self = a
	b.peers = opts.Peers

	return a, nil
}

func (a *Actor) ID() string             { return a.id }
func (a *Actor) Name() string           { return a.name }
func (a *Actor) Status() Status         { return a.gate.load() }
func (a *Actor) QueueLen() int          { return a.mailbox.Len() }
func (a *Actor) MaxQueueDepth() int     { return a.maxDepth }
func (a *Actor) Controller() Controller { return a.ctrl }

// Commands lists the registered commands ordered by tag.
func (a *Actor) Commands() []Descriptor { return a.registry.list() }

// Serves reports whether the actor has a command registered for tag.
func (a *Actor) Serves(tag int32) bool {
	_, ok := a.registry.lookup(tag)
	return ok
}

// OnCompleted registers an observer for every subsequently dispatched message.
func (a *Actor) OnCompleted(o Observer) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	next := append(append([]Observer(nil), *a.observers.Load()...), o)
	a.observers.Store(&next)
}

// ---- submission ----

// Action submits a message and returns once activation of the drain loop has
// been requested. It does not wait for the message to be dispatched. Errors
// raised while activating are logged, not returned.
func (a *Actor) Action(ctx context.Context, id int64, cmd int32, args ...any) error {
	if _, err := a.push(id, cmd, args); err != nil {
		return err
	}
	if err := a.run(ctx); err != nil {
		a.log.Error("failed to activate actor", slog.Int64("id", id), slog.Int("cmd", int(cmd)), slog.Any("error", err))
	}
	return nil
}

// AsyncAction submits a message and waits for it to be dispatched. The
// resolved value is discarded; a faulted dispatch is returned as an error.
func (a *Actor) AsyncAction(ctx context.Context, id int64, cmd int32, args ...any) error {
	_, err := a.AsyncFunc(ctx, id, cmd, args...)
	return err
}

// AsyncFunc submits a message and waits for its result. Unknown commands and
// argument count mismatches resolve to an *ErrorResult value with a nil
// error. Cancelling ctx stops the wait, not the message. Called from a
// handler, the handler's worker is handed back to its [Blocker] scheduler for
// the duration of the wait.
func (a *Actor) AsyncFunc(ctx context.Context, id int64, cmd int32, args ...any) (any, error) {
	caller, nested := FromContext(ctx)
	if nested && caller == a {
		return nil, ErrSelfRequest
	}
	env, err := a.push(id, cmd, args)
	if err != nil {
		return nil, err
	}
	if nested {
		// the caller's worker sits idle until the result is in
		defer caller.blockWorker()()
	}
	if err := a.run(ctx); err != nil {
		return nil, err
	}
	// fast path: inline schedulers resolve before run returns
	if v, err, ok := env.result.Poll(); ok {
		return v, err
	}
	return env.result.Wait(ctx)
}

// Call is AsyncFunc with a typed result. A resolved *ErrorResult is returned
// as the error.
func Call[T any](ctx context.Context, a *Actor, id int64, cmd int32, args ...any) (T, error) {
	var zero T
	v, err := a.AsyncFunc(ctx, id, cmd, args...)
	if err != nil {
		return zero, err
	}
	if er, ok := AsErrorResult(v); ok {
		return zero, er
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: result is %T, want %s", ErrResultType, v, typeName[T]())
	}
	return out, nil
}

func (a *Actor) push(id int64, cmd int32, args []any) (*Envelope, error) {
	if a.gate.load() == StatusDisposed {
		a.metrics.MessageRejected(a.name, RejectDisposed)
		return nil, ErrDisposed
	}
	env := newEnvelope(id, cmd, args)
	if !a.mailbox.TryPush(env, a.maxDepth) {
		a.metrics.MessageRejected(a.name, RejectQueueFull)
		return nil, fmt.Errorf("%w: max depth %d", ErrQueueFull, a.maxDepth)
	}
	a.metrics.MailboxDepth(a.name, a.mailbox.Len())
	if a.gate.load() == StatusDisposed {
		// raced Dispose: its sweep may already be over
		a.discard()
	}
	return env, nil
}

// run requests activation. Losing the Idle->Open race is fine: the loop that
// won will see the message, or re-opens after releasing (see drain).
func (a *Actor) run(ctx context.Context) error {
	if a.gate.load() == StatusDisposed {
		return ErrDisposed
	}
	if !a.gate.open() {
		return nil
	}
	select {
	case <-a.sched.Schedule(a.drain):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Actor) blockWorker() func() {
	if b, ok := a.sched.(Blocker); ok && a.gate.load() == StatusOpen {
		return b.Block()
	}
	return func() {}
}

// ---- drain loop ----

func (a *Actor) drain() {
	for {
		for a.gate.load() != StatusDisposed {
			env, ok := a.mailbox.Pop()
			if !ok {
				break
			}
			a.metrics.MailboxDepth(a.name, a.mailbox.Len())
			a.process(env)
		}

		if !a.gate.release() {
			// disposed while draining
			a.discard()
			return
		}
		// A submitter that lost the open race just before release relies on
		// us; take the mailbox back if anything is left.
		if a.mailbox.Len() == 0 || !a.gate.open() {
			return
		}
	}
}

func (a *Actor) process(env *Envelope) {
	timer := a.metrics.MessageDuration(a.name, env.cmd)
	v, err := a.dispatch(env)
	timer.ObserveDuration()

	_, isErrResult := AsErrorResult(v)
	a.metrics.MessageProcessed(a.name, err == nil && !isErrResult)

	env.completeTime = time.Now()
	env.value, env.err = v, err
	for _, o := range *a.observers.Load() {
		a.observe(o, env)
	}

	env.result.complete(v, err)
}

func (a *Actor) dispatch(env *Envelope) (res any, err error) {
	d, ok := a.registry.lookup(env.cmd)
	if !ok {
		if a.gate.load() == StatusDisposed {
			// popped just before Dispose cleared the registry
			return nil, ErrDisposed
		}
		return errorResult(env.id, "unknown command: cmd=%d", env.cmd), nil
	}
	if d.Arity != len(env.args) {
		return errorResult(env.id, "argument count mismatch: cmd=%d want=%d got=%d", env.cmd, d.Arity, len(env.args)), nil
	}

	// single writer: dispatch is serialized by the gate
	a.base.orderTime = env.pushTime

	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			a.metrics.MessagePanic(a.name)
			a.onPanic(r, stack, env)
			res, err = nil, &PanicError{Recovered: r, Stack: stack}
		}
	}()

	switch d.Shape {
	case ShapeNone:
		_, err = d.invoke(a.dispatchCtx, env.args)
		return nil, err
	case ShapeTask:
		_, err = d.invoke(a.dispatchCtx, env.args)
		if err != nil {
			a.log.Debug("command failed", slog.String("name", d.Name), slog.Int64("id", env.id), slog.Any("error", err))
		}
		return nil, err
	case ShapeValue:
		res, err = d.invoke(a.dispatchCtx, env.args)
		if err != nil {
			a.log.Debug("command failed", slog.String("name", d.Name), slog.Int64("id", env.id), slog.Any("error", err))
			return nil, err
		}
		return res, nil
	default:
		a.log.Error("command has no usable return mode", slog.String("name", d.Name), slog.String("shape", d.Shape.String()))
		return nil, fmt.Errorf("%w: cmd=%d shape=%s", ErrReturnMode, env.cmd, d.Shape)
	}
}

func (a *Actor) observe(o Observer, env *Envelope) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("completion observer panicked", slog.Any("recovered", r), slog.Int64("id", env.id))
		}
	}()
	o(a.ctrl, env)
}

// ---- disposal ----

// Dispose moves the actor to its terminal state. The first call clears the
// registry, cancels the handler context and fails every queued message with
// ErrDisposed. A message being dispatched still completes. Later calls are
// no-ops.
func (a *Actor) Dispose() {
	if !a.gate.dispose() {
		return
	}
	a.registry.clear()
	a.cancel()
	a.discard()
	a.log.Debug("actor disposed")
}

func (a *Actor) discard() {
	for {
		env, ok := a.mailbox.Pop()
		if !ok {
			break
		}
		env.result.complete(nil, ErrDisposed)
	}
	a.metrics.MailboxDepth(a.name, a.mailbox.Len())
}
