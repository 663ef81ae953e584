package observe

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gdmec07150948/NetX/core/actor"
)

// Publisher sends an encoded record to subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

type PublishOptions struct {
	// Subject prefix, the actor name is appended. Default "netx.completed".
	Subject string
	Timeout time.Duration
	Log     *slog.Logger
}

// Publish emits the JSON [Record] of every dispatched message to
// <Subject>.<actor name>. Publish failures are logged.
func Publish(p Publisher, opts PublishOptions) actor.Observer {
	if opts.Subject == "" {
		opts.Subject = "netx.completed"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return func(c actor.Controller, env *actor.Envelope) {
		r := RecordOf(c, env)
		data, err := json.Marshal(r)
		if err != nil {
			opts.Log.Error("failed to encode record", slog.Any("error", err))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		defer cancel()
		subject := opts.Subject + "." + r.Actor
		if err := p.Publish(ctx, subject, data); err != nil {
			opts.Log.Error("failed to publish record", slog.String("subject", subject), slog.Any("error", err))
		}
	}
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, subject string, data []byte) error

func (f PublisherFunc) Publish(ctx context.Context, subject string, data []byte) error {
	return f(ctx, subject, data)
}
