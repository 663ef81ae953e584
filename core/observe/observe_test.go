package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gdmec07150948/NetX/core/actor"
	"github.com/gdmec07150948/NetX/ports/kv"
)

const (
	cmdDeposit int32 = 20000
	cmdFail    int32 = 20001
)

type account struct {
	actor.Base
	Owner   string `json:"owner"`
	Balance int    `json:"balance"`
}

func (a *account) Commands() []actor.Command {
	return []actor.Command{
		actor.Action1(cmdDeposit, func(_ context.Context, n int) { a.Balance += n }),
		actor.Exec0(cmdFail, func(context.Context) error { return errors.New("insufficient funds") }),
	}
}

func newAccount(t *testing.T, c *account, observers ...actor.Observer) *actor.Actor {
	t.Helper()
	a, err := actor.New(c, actor.Options{Name: "acct", Context: t.Context(), Observers: observers})
	require.NoError(t, err)
	t.Cleanup(a.Dispose)
	return a
}

func TestRecordOf(t *testing.T) {
	var got []Record
	a := newAccount(t, &account{}, func(c actor.Controller, env *actor.Envelope) {
		got = append(got, RecordOf(c, env))
	})

	require.NoError(t, a.AsyncAction(t.Context(), 1, cmdDeposit, 5))
	_ = a.AsyncAction(t.Context(), 2, cmdFail)
	_, _ = a.AsyncFunc(t.Context(), 3, 9999)

	require.Len(t, got, 3)
	require.Equal(t, "acct", got[0].Actor)
	require.Equal(t, a.ID(), got[0].ActorID)
	require.Equal(t, cmdDeposit, got[0].Cmd)
	require.False(t, got[0].Failed())
	require.GreaterOrEqual(t, got[0].Latency, time.Duration(0))

	require.Equal(t, "insufficient funds", got[1].Error)
	require.True(t, got[1].Failed())

	require.NotNil(t, got[2].Result)
	require.Equal(t, int64(3), got[2].Result.ID)
	require.True(t, got[2].Failed())
}

func TestSnapshot(t *testing.T) {
	store := kv.NewMemStore()
	c := &account{Owner: "ada"}
	a := newAccount(t, c, Snapshot(store, SnapshotOptions{}))

	require.NoError(t, a.AsyncAction(t.Context(), 1, cmdDeposit, 5))
	require.NoError(t, a.AsyncAction(t.Context(), 2, cmdDeposit, 7))

	e, err := store.Get(t.Context(), "actor.acct")
	require.NoError(t, err)
	require.JSONEq(t, `{"owner":"ada","balance":12}`, string(e.Data))
	require.Equal(t, int64(2), e.Meta["id"])
	require.Equal(t, cmdDeposit, e.Meta["cmd"])

	restored := &account{}
	require.NoError(t, Restore(t.Context(), store, "", "acct", restored))
	require.Equal(t, 12, restored.Balance)
	require.Equal(t, "ada", restored.Owner)

	// the restored controller can be bound to a fresh actor
	b := newAccount(t, restored)
	require.NoError(t, b.AsyncAction(t.Context(), 3, cmdDeposit, 1))
	require.Equal(t, 13, restored.Balance)

	require.ErrorIs(t, Restore(t.Context(), store, "", "nobody", &account{}), kv.ErrNotFound)
}

func TestSnapshot_filter(t *testing.T) {
	store := kv.NewMemStore()
	a := newAccount(t, &account{}, Snapshot(store, SnapshotOptions{
		Prefix: "bank.",
		Filter: func(env *actor.Envelope) bool { _, err := env.Outcome(); return err == nil },
	}))

	_ = a.AsyncAction(t.Context(), 1, cmdFail)
	_, err := store.Get(t.Context(), "bank.acct")
	require.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, a.AsyncAction(t.Context(), 2, cmdDeposit, 1))
	keys, err := store.Keys(t.Context(), "bank.")
	require.NoError(t, err)
	require.Equal(t, []string{"bank.acct"}, keys)
}

func TestPublish(t *testing.T) {
	var (
		mu       sync.Mutex
		subjects []string
		records  []Record
	)
	pub := PublisherFunc(func(_ context.Context, subject string, data []byte) error {
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		subjects = append(subjects, subject)
		records = append(records, r)
		return nil
	})

	var logs bytes.Buffer
	failing := PublisherFunc(func(context.Context, string, []byte) error { return errors.New("offline") })
	a := newAccount(t, &account{},
		Publish(pub, PublishOptions{}),
		Publish(failing, PublishOptions{Subject: "x", Log: slog.New(slog.NewTextHandler(&logs, nil))}),
	)

	require.NoError(t, a.AsyncAction(t.Context(), 1, cmdDeposit, 5))
	_ = a.AsyncAction(t.Context(), 2, cmdFail)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"netx.completed.acct", "netx.completed.acct"}, subjects)
	require.Equal(t, int64(1), records[0].ID)
	require.Equal(t, "insufficient funds", records[1].Error)
	require.Contains(t, logs.String(), "failed to publish record")
}

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	a := newAccount(t, &account{}, Log(log, slog.LevelDebug))
	require.NoError(t, a.AsyncAction(t.Context(), 1, cmdDeposit, 5))
	require.Empty(t, buf.String(), "debug lines are filtered")

	_ = a.AsyncAction(t.Context(), 2, cmdFail)
	out := buf.String()
	require.True(t, strings.Contains(out, "level=WARN"), out)
	require.Contains(t, out, "error=\"insufficient funds\"")
}
