package hub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdmec07150948/NetX/core/actor"
)

const (
	cmdAdd     int32 = 10000
	cmdDeposit int32 = 20000
	cmdBalance int32 = 20001
	cmdBonus   int32 = 20002
)

type calculator struct{ actor.Base }

func (c *calculator) Commands() []actor.Command {
	return []actor.Command{
		actor.Func2(cmdAdd, func(_ context.Context, a, b int) (int, error) { return a + b, nil }).Named("Add"),
	}
}

type bank struct {
	actor.Base
	Balance int `json:"balance"`
}

func (b *bank) Commands() []actor.Command {
	return []actor.Command{
		actor.Action1(cmdDeposit, func(_ context.Context, n int) { b.Balance += n }),
		actor.Func0(cmdBalance, func(context.Context) (int, error) { return b.Balance, nil }),
		actor.Exec0(cmdBonus, b.bonus),
	}
}

// bonus asks the calculator actor for the new balance.
func (b *bank) bonus(ctx context.Context) error {
	calc, ok := b.Peer(cmdAdd)
	if !ok {
		return errors.New("no calculator")
	}
	v, err := actor.Call[int](ctx, calc, 0, cmdAdd, b.Balance, 100)
	if err != nil {
		return err
	}
	b.Balance = v
	return nil
}

func (b *bank) ActorOptions() actor.Options { return actor.Options{Name: "bank", MaxQueueDepth: 5} }

func newHub(t *testing.T, cfg Config) *Hub {
	t.Helper()
	h, err := New(Options{Context: t.Context(), Config: cfg})
	require.NoError(t, err)
	t.Cleanup(h.Dispose)
	return h
}

func TestHub_routing(t *testing.T) {
	for _, kind := range []SchedulerKind{SchedulerGo, SchedulerInline, SchedulerLanes} {
		t.Run(string(kind), func(t *testing.T) {
			h := newHub(t, Config{Scheduler: SchedulerConfig{Kind: kind, Lanes: 2}})

			calc, err := h.Register(&calculator{}, actor.Options{})
			require.NoError(t, err)
			b, err := h.Register(&bank{}, actor.Options{})
			require.NoError(t, err)

			got, ok := h.Get(cmdAdd)
			require.True(t, ok)
			require.Same(t, calc, got)
			got, ok = h.Get(cmdBalance)
			require.True(t, ok)
			require.Same(t, b, got)

			sum, err := Call[int](t.Context(), h, 1, cmdAdd, 2, 3)
			require.NoError(t, err)
			require.Equal(t, 5, sum)

			require.NoError(t, h.Action(t.Context(), 2, cmdDeposit, 10))
			require.NoError(t, h.AsyncAction(t.Context(), 3, cmdDeposit, 5))
			bal, err := h.AsyncFunc(t.Context(), 4, cmdBalance)
			require.NoError(t, err)
			require.Equal(t, 15, bal)

			require.Equal(t, []*actor.Actor{calc, b}, h.Actors())
		})
	}
}

func TestHub_unknown_tag(t *testing.T) {
	h := newHub(t, Config{})
	calc, err := h.Register(&calculator{}, actor.Options{})
	require.NoError(t, err)

	require.ErrorIs(t, h.Action(t.Context(), 1, 9999), ErrNoActor)
	require.ErrorIs(t, h.AsyncAction(t.Context(), 1, 9999), ErrNoActor)
	_, err = h.AsyncFunc(t.Context(), 1, 9999)
	require.ErrorIs(t, err, ErrNoActor)
	_, err = Call[int](t.Context(), h, 1, 9999)
	require.ErrorIs(t, err, ErrNoActor)

	require.Equal(t, 0, calc.QueueLen())
	require.Equal(t, actor.StatusIdle, calc.Status())
}

func TestHub_peers(t *testing.T) {
	h := newHub(t, Config{})
	_, err := h.Register(&calculator{}, actor.Options{})
	require.NoError(t, err)
	_, err = h.Register(&bank{}, actor.Options{})
	require.NoError(t, err)

	require.NoError(t, h.AsyncAction(t.Context(), 1, cmdDeposit, 1))
	require.NoError(t, h.AsyncAction(t.Context(), 2, cmdBonus))
	bal, err := Call[int](t.Context(), h, 3, cmdBalance)
	require.NoError(t, err)
	require.Equal(t, 101, bal)
}

func TestHub_peer_await_shared_worker(t *testing.T) {
	configs := map[string]SchedulerConfig{
		"one-lane":       {Kind: SchedulerLanes, Lanes: 1},
		"one-lane-tiny":  {Kind: SchedulerLanes, Lanes: 1, LaneBuffer: 1},
		"max-concurrent": {Kind: SchedulerGo, MaxConcurrent: 1},
	}
	for name, sc := range configs {
		t.Run(name, func(t *testing.T) {
			h := newHub(t, Config{Scheduler: sc})
			_, err := h.Register(&calculator{}, actor.Options{})
			require.NoError(t, err)
			_, err = h.Register(&bank{}, actor.Options{})
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
			defer cancel()

			// bank's handler awaits calculator, which only has bank's worker to run on
			require.NoError(t, h.AsyncAction(ctx, 1, cmdDeposit, 1))
			require.NoError(t, h.AsyncAction(ctx, 2, cmdBonus))
			require.NoError(t, h.AsyncAction(ctx, 3, cmdBonus))

			bal, err := Call[int](ctx, h, 4, cmdBalance)
			require.NoError(t, err)
			require.Equal(t, 201, bal)
		})
	}
}

func TestHub_queue_depth(t *testing.T) {
	h := newHub(t, Config{
		MaxQueueDepth: 100,
		Actors:        map[string]ActorConfig{"calculator": {MaxQueueDepth: 7}},
	})

	calc, err := h.Register(&calculator{}, actor.Options{})
	require.NoError(t, err)
	require.Equal(t, "calculator", calc.Name())
	require.Equal(t, 7, calc.MaxQueueDepth())

	// the controller's own depth beats the hub default
	b, err := h.Register(&bank{}, actor.Options{})
	require.NoError(t, err)
	require.Equal(t, 5, b.MaxQueueDepth())

	// explicit options beat everything
	other, err := h.Register(&calculator{}, actor.Options{Name: "calculator", MaxQueueDepth: 3})
	require.NoError(t, err)
	require.Equal(t, 3, other.MaxQueueDepth())

	plain, err := h.Register(&calculator{}, actor.Options{Name: "plain"})
	require.NoError(t, err)
	require.Equal(t, 100, plain.MaxQueueDepth())
}

func TestHub_observers(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int64
		late atomic.Int32
	)
	h, err := New(Options{
		Context: t.Context(),
		Observers: []actor.Observer{func(_ actor.Controller, env *actor.Envelope) {
			mu.Lock()
			seen = append(seen, env.ID())
			mu.Unlock()
		}},
	})
	require.NoError(t, err)
	t.Cleanup(h.Dispose)

	_, err = h.Register(&calculator{}, actor.Options{})
	require.NoError(t, err)
	_, err = h.AsyncFunc(t.Context(), 1, cmdAdd, 1, 1)
	require.NoError(t, err)

	h.OnCompleted(func(actor.Controller, *actor.Envelope) { late.Add(1) })
	_, err = h.Register(&bank{}, actor.Options{})
	require.NoError(t, err)

	_, err = h.AsyncFunc(t.Context(), 2, cmdAdd, 1, 1)
	require.NoError(t, err)
	require.NoError(t, h.AsyncAction(t.Context(), 3, cmdDeposit, 1))

	mu.Lock()
	require.Equal(t, []int64{1, 2, 3}, seen)
	mu.Unlock()
	require.Equal(t, int32(2), late.Load())
}

func TestHub_spawn(t *testing.T) {
	h := newHub(t, Config{})

	var created atomic.Int32
	factory := func(key string) (actor.Controller, error) {
		created.Add(1)
		time.Sleep(5 * time.Millisecond)
		return &bank{}, nil
	}

	var wg sync.WaitGroup
	actors := make([]*actor.Actor, 20)
	for i := range actors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := h.Spawn("acct-1", factory)
			assert.NoError(t, err)
			actors[i] = a
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), created.Load())
	for _, a := range actors {
		require.Same(t, actors[0], a)
	}
	require.Equal(t, "acct-1", actors[0].Name())

	// keyed actors are not routed by tag
	_, ok := h.Get(cmdBalance)
	require.False(t, ok)

	require.NoError(t, actors[0].AsyncAction(t.Context(), 1, cmdDeposit, 3))

	anon, err := h.Spawn("", factory)
	require.NoError(t, err)
	require.NotSame(t, actors[0], anon)
	require.NotEmpty(t, anon.Name())

	require.True(t, h.Release("acct-1"))
	require.False(t, h.Release("acct-1"))
	require.Equal(t, actor.StatusDisposed, actors[0].Status())
	_, ok = h.Keyed("acct-1")
	require.False(t, ok)
}

func TestHub_spawn_factory_error(t *testing.T) {
	h := newHub(t, Config{})
	boom := errors.New("boom")

	_, err := h.Spawn("k", func(string) (actor.Controller, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	_, err = h.Spawn("k", func(string) (actor.Controller, error) { return nil, nil })
	require.ErrorIs(t, err, actor.ErrNilController)

	_, ok := h.Keyed("k")
	require.False(t, ok)
}

func TestHub_dispose(t *testing.T) {
	h := newHub(t, Config{Scheduler: SchedulerConfig{Kind: SchedulerLanes, Lanes: 1}})

	calc, err := h.Register(&calculator{}, actor.Options{})
	require.NoError(t, err)
	keyed, err := h.Spawn("k", func(string) (actor.Controller, error) { return &bank{}, nil })
	require.NoError(t, err)

	h.Dispose()
	h.Dispose()

	require.Equal(t, actor.StatusDisposed, calc.Status())
	require.Equal(t, actor.StatusDisposed, keyed.Status())

	require.ErrorIs(t, h.Action(t.Context(), 1, cmdAdd, 1, 2), ErrDisposed)
	_, err = h.Register(&calculator{}, actor.Options{})
	require.ErrorIs(t, err, ErrDisposed)
	_, err = h.Spawn("x", func(string) (actor.Controller, error) { return &bank{}, nil })
	require.ErrorIs(t, err, ErrDisposed)

	// direct submissions to a disposed actor fail too
	require.ErrorIs(t, calc.Action(t.Context(), 1, cmdAdd, 1, 2), actor.ErrDisposed)
}

func TestHub_register_errors(t *testing.T) {
	h := newHub(t, Config{})
	_, err := h.Register(nil, actor.Options{})
	require.ErrorIs(t, err, actor.ErrNilController)

	c := &calculator{}
	_, err = h.Register(c, actor.Options{})
	require.NoError(t, err)
	_, err = h.Register(c, actor.Options{})
	require.ErrorIs(t, err, actor.ErrControllerBound)
}

func TestNew_invalid_config(t *testing.T) {
	_, err := New(Options{Config: Config{Scheduler: SchedulerConfig{Kind: "threads"}}})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
