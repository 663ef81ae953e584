package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/singleflight"

	"github.com/gdmec07150948/NetX/core/actor"
	"github.com/gdmec07150948/NetX/core/perkey"
	"github.com/gdmec07150948/NetX/internal/reflector"
)

var (
	ErrNoActor       = errors.New("hub: no actor serves command")
	ErrDisposed      = errors.New("hub: disposed")
	ErrInvalidConfig = errors.New("hub: invalid config")
)

// Factory builds the controller of a keyed actor.
type Factory func(key string) (actor.Controller, error)

// Options configures a Hub. Zero values get defaults.
type Options struct {
	Context context.Context
	Log     *slog.Logger
	Config  Config
	Metrics actor.ActorMetrics
	// Observers are attached to every actor the hub creates.
	Observers []actor.Observer
}

// Hub owns a set of actors. Actors added with Register are routed by the
// command tags they serve; actors created with Spawn are addressed by key.
type Hub struct {
	ctx       context.Context
	cancelCtx context.CancelFunc
	log       *slog.Logger
	cfg       Config
	metrics   actor.ActorMetrics

	sched actor.Scheduler
	lanes *perkey.Scheduler

	mu        sync.RWMutex
	actors    []*actor.Actor
	routes    map[int32]*actor.Actor
	keyed     map[string]*actor.Actor
	observers []actor.Observer

	spawn    singleflight.Group
	disposed atomic.Bool
}

// New validates the config and creates an empty hub.
func New(opts Options) (*Hub, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = actor.NopActorMetrics()
	}

	h := &Hub{
		log:       opts.Log,
		cfg:       opts.Config,
		metrics:   opts.Metrics,
		routes:    map[int32]*actor.Actor{},
		keyed:     map[string]*actor.Actor{},
		observers: slices.Clone(opts.Observers),
	}
	h.ctx, h.cancelCtx = context.WithCancel(opts.Context)

	sc := opts.Config.Scheduler
	switch sc.Kind {
	case SchedulerInline:
		h.sched = actor.InlineScheduler{}
	case SchedulerLanes:
		h.lanes = perkey.New(
			perkey.WithLanes(sc.Lanes),
			perkey.WithBufferSize(sc.LaneBuffer),
			perkey.WithSeed(sc.Seed),
			perkey.WithLogger(h.log),
		)
	default:
		h.sched = actor.NewSchedulerWithMetrics(sc.MaxConcurrent, "hub", h.metrics)
	}

	h.log.Debug("hub created", slog.Any("config", opts.Config))
	return h, nil
}

func (h *Hub) scheduler(name string) actor.Scheduler {
	if h.lanes != nil {
		return h.lanes.For(name)
	}
	return h.sched
}

// options fills the hub defaults for an actor named name. Explicit options
// win, then the per-actor config, then the controller's own options, then
// the hub wide depth.
func (h *Hub) options(c actor.Controller, name string, opts actor.Options) actor.Options {
	opts.Name = name
	if opts.Context == nil {
		opts.Context = h.ctx
	}
	if opts.Logger == nil {
		opts.Logger = h.log
	}
	if opts.Metrics == nil {
		opts.Metrics = h.metrics
	}
	if opts.Scheduler == nil {
		opts.Scheduler = h.scheduler(name)
	}
	if opts.Peers == nil {
		opts.Peers = h
	}
	if opts.MaxQueueDepth == 0 {
		if ac, ok := h.cfg.Actors[name]; ok {
			opts.MaxQueueDepth = ac.MaxQueueDepth
		} else if p, ok := c.(actor.OptionsProvider); !ok || p.ActorOptions().MaxQueueDepth == 0 {
			opts.MaxQueueDepth = h.cfg.MaxQueueDepth
		}
	}
	h.mu.RLock()
	opts.Observers = append(slices.Clone(h.observers), opts.Observers...)
	h.mu.RUnlock()
	return opts
}

func actorName(c actor.Controller, opts actor.Options) string {
	if opts.Name != "" {
		return opts.Name
	}
	if p, ok := c.(actor.OptionsProvider); ok {
		if n := p.ActorOptions().Name; n != "" {
			return n
		}
	}
	return reflector.TypeInfoOf(c).Short
}

// Register builds an actor for c and routes every tag it serves to it. A tag
// already routed to another actor is taken over by the new one.
func (h *Hub) Register(c actor.Controller, opts actor.Options) (*actor.Actor, error) {
	if h.disposed.Load() {
		return nil, ErrDisposed
	}
	if c == nil {
		return nil, actor.ErrNilController
	}
	a, err := actor.New(c, h.options(c, actorName(c, opts), opts))
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	if h.disposed.Load() {
		h.mu.Unlock()
		a.Dispose()
		return nil, ErrDisposed
	}
	h.actors = append(h.actors, a)
	for _, d := range a.Commands() {
		if prev, ok := h.routes[d.Tag]; ok {
			h.log.Warn("command tag served by more than one actor, last registration wins",
				slog.Int("cmd", int(d.Tag)), slog.String("previous", prev.Name()), slog.String("actor", a.Name()))
		}
		h.routes[d.Tag] = a
	}
	h.mu.Unlock()

	h.log.Debug("actor registered", slog.String("actor", a.Name()), slog.Int("commands", len(a.Commands())))
	return a, nil
}

// Get returns the actor serving tag.
func (h *Hub) Get(tag int32) (*actor.Actor, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.routes[tag]
	return a, ok
}

// Actors lists the routed actors in registration order.
func (h *Hub) Actors() []*actor.Actor {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.actors)
}

func (h *Hub) route(cmd int32) (*actor.Actor, error) {
	if h.disposed.Load() {
		return nil, ErrDisposed
	}
	a, ok := h.Get(cmd)
	if !ok {
		return nil, fmt.Errorf("%w: cmd=%d", ErrNoActor, cmd)
	}
	return a, nil
}

// Action routes cmd to its actor, see [actor.Actor.Action].
func (h *Hub) Action(ctx context.Context, id int64, cmd int32, args ...any) error {
	a, err := h.route(cmd)
	if err != nil {
		return err
	}
	return a.Action(ctx, id, cmd, args...)
}

// AsyncAction routes cmd to its actor, see [actor.Actor.AsyncAction].
func (h *Hub) AsyncAction(ctx context.Context, id int64, cmd int32, args ...any) error {
	a, err := h.route(cmd)
	if err != nil {
		return err
	}
	return a.AsyncAction(ctx, id, cmd, args...)
}

// AsyncFunc routes cmd to its actor, see [actor.Actor.AsyncFunc].
func (h *Hub) AsyncFunc(ctx context.Context, id int64, cmd int32, args ...any) (any, error) {
	a, err := h.route(cmd)
	if err != nil {
		return nil, err
	}
	return a.AsyncFunc(ctx, id, cmd, args...)
}

// Call routes cmd and awaits a typed result, see [actor.Call].
func Call[T any](ctx context.Context, h *Hub, id int64, cmd int32, args ...any) (T, error) {
	a, err := h.route(cmd)
	if err != nil {
		var zero T
		return zero, err
	}
	return actor.Call[T](ctx, a, id, cmd, args...)
}

// Spawn returns the actor for key, creating it with factory on first use.
// Concurrent calls for the same key share one creation. An empty key spawns
// a fresh actor under a generated key.
func (h *Hub) Spawn(key string, factory Factory) (*actor.Actor, error) {
	if h.disposed.Load() {
		return nil, ErrDisposed
	}
	if key == "" {
		key = gonanoid.Must(10)
	}
	if a, ok := h.Keyed(key); ok {
		return a, nil
	}

	v, err, _ := h.spawn.Do(key, func() (any, error) {
		if a, ok := h.Keyed(key); ok {
			return a, nil
		}
		c, err := factory(key)
		if err != nil {
			return nil, fmt.Errorf("hub: spawn %q: %w", key, err)
		}
		if c == nil {
			return nil, fmt.Errorf("hub: spawn %q: %w", key, actor.ErrNilController)
		}
		a, err := actor.New(c, h.options(c, key, actor.Options{}))
		if err != nil {
			return nil, err
		}

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.disposed.Load() {
			a.Dispose()
			return nil, ErrDisposed
		}
		h.keyed[key] = a
		h.log.Debug("keyed actor spawned", slog.String("key", key))
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*actor.Actor), nil
}

// Keyed returns the spawned actor for key.
func (h *Hub) Keyed(key string) (*actor.Actor, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.keyed[key]
	return a, ok
}

// Release disposes the keyed actor for key and forgets it.
func (h *Hub) Release(key string) bool {
	h.mu.Lock()
	a, ok := h.keyed[key]
	delete(h.keyed, key)
	h.mu.Unlock()
	if ok {
		a.Dispose()
	}
	return ok
}

// OnCompleted attaches o to every current and future actor of the hub.
func (h *Hub) OnCompleted(o actor.Observer) {
	h.mu.Lock()
	h.observers = append(h.observers, o)
	current := append(slices.Clone(h.actors), mapValues(h.keyed)...)
	h.mu.Unlock()

	for _, a := range current {
		a.OnCompleted(o)
	}
}

// Dispose disposes every actor, stops the lanes and cancels the hub context.
// Later calls are no-ops.
func (h *Hub) Dispose() {
	if !h.disposed.CompareAndSwap(false, true) {
		return
	}

	h.mu.Lock()
	all := append(slices.Clone(h.actors), mapValues(h.keyed)...)
	h.actors = nil
	h.routes = map[int32]*actor.Actor{}
	h.keyed = map[string]*actor.Actor{}
	h.mu.Unlock()

	for _, a := range all {
		a.Dispose()
	}
	if h.lanes != nil {
		h.lanes.Close()
	}
	h.cancelCtx()
	h.log.Info("hub disposed", slog.Int("actors", len(all)))
}

func mapValues(m map[string]*actor.Actor) []*actor.Actor {
	out := make([]*actor.Actor, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	return out
}

var _ actor.Lookup = (*Hub)(nil)
