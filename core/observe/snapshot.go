package observe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdmec07150948/NetX/core/actor"
	"github.com/gdmec07150948/NetX/ports/kv"
)

type SnapshotOptions struct {
	// Prefix is prepended to the actor name to form the key. Default "actor.".
	Prefix string
	TTL    time.Duration
	// Timeout bounds each store write. Default 5s.
	Timeout time.Duration
	// Filter skips messages it returns false for. A nil filter snapshots
	// after every message.
	Filter func(env *actor.Envelope) bool
	Log    *slog.Logger
}

func (o SnapshotOptions) withDefaults() SnapshotOptions {
	if o.Prefix == "" {
		o.Prefix = "actor."
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	return o
}

// SnapshotKey is the key the snapshot of actor name is stored under.
func SnapshotKey(prefix, name string) string {
	if prefix == "" {
		prefix = "actor."
	}
	return prefix + name
}

// Snapshot stores the JSON encoding of the controller in store after each
// dispatched message, with the message record as meta. It runs on the drain
// goroutine, so the encoded state is consistent. Write failures are logged.
func Snapshot(store kv.Store, opts SnapshotOptions) actor.Observer {
	opts = opts.withDefaults()
	return func(c actor.Controller, env *actor.Envelope) {
		if opts.Filter != nil && !opts.Filter(env) {
			return
		}
		r := RecordOf(c, env)
		data, err := json.Marshal(c)
		if err != nil {
			opts.Log.Error("failed to encode controller state", slog.String("actor", r.Actor), slog.Any("error", err))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		defer cancel()
		key := SnapshotKey(opts.Prefix, r.Actor)
		if err := store.Put(ctx, key, kv.Entry{Data: data, Meta: r.meta()}, kv.PutOptions{TTL: opts.TTL}); err != nil {
			opts.Log.Error("failed to store snapshot", slog.String("key", key), slog.Any("error", err))
		}
	}
}

// Restore loads the last snapshot of actor name into into. Call it before
// the controller is bound to an actor. A missing snapshot returns
// kv.ErrNotFound and leaves into untouched.
func Restore(ctx context.Context, store kv.Store, prefix, name string, into actor.Controller) error {
	e, err := store.Get(ctx, SnapshotKey(prefix, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(e.Data, into); err != nil {
		return fmt.Errorf("observe: restore %q: %w", name, err)
	}
	return nil
}
