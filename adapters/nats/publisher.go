package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/gdmec07150948/NetX/core/observe"
)

type PublisherConfig struct {
	Connect Connector
	Log     *slog.Logger
	// Stream captures the feed. Default "NETX_COMPLETED".
	Stream string
	// Subjects of the stream. Default "netx.completed.>".
	Subjects []string
	// MaxAge drops records older than this. 0 keeps them.
	MaxAge time.Duration
}

// Publisher writes completion records into a JetStream stream.
type Publisher struct {
	js     jetstream.JetStream
	stream jetstream.Stream
	close  closeFunc
	log    *slog.Logger
}

func NewPublisher(ctx context.Context, cfg PublisherConfig) (*Publisher, error) {
	if cfg.Stream == "" {
		cfg.Stream = "NETX_COMPLETED"
	}
	if len(cfg.Subjects) == 0 {
		cfg.Subjects = []string{"netx.completed.>"}
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}

	nc, closeNc, err := doConnect()
	if err != nil {
		return nil, err
	}
	js, err := jetstream.New(nc)
	if err != nil {
		closeNc()
		return nil, err
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: cfg.Subjects,
		Storage:  jetstream.FileStorage,
		MaxAge:   cfg.MaxAge,
	})
	if err != nil {
		closeNc()
		return nil, fmt.Errorf("nats publisher: ensure stream %q: %w", cfg.Stream, err)
	}

	return &Publisher{
		js:     js,
		stream: stream,
		close:  closeNc,
		log:    cfg.Log.With(slog.String("stream", cfg.Stream)),
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, subject string, data []byte) error {
	ack, err := p.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("nats publisher: publish %q: %w", subject, err)
	}
	p.log.Debug("record published", slog.String("subject", subject), slog.Uint64("seq", ack.Sequence))
	return nil
}

// Stream returns the stream backing the feed.
func (p *Publisher) Stream() jetstream.Stream { return p.stream }

func (p *Publisher) Close() { p.close() }

var _ observe.Publisher = (*Publisher)(nil)
