package nats

import (
	"log/slog"
	"os"
	"sync"

	natsgo "github.com/nats-io/nats.go"
)

type closeFunc = func()

// Connector opens a NATS connection. The returned close func releases it.
type Connector func() (nc *natsgo.Conn, close closeFunc, err error)

type ConnectOptions struct {
	// Name is announced to the server. Default "netx".
	Name string
	// MaxReconnects before the connection gives up. Default 3.
	MaxReconnects int
	Log           *slog.Logger
}

// Connect returns a Connector dialing url.
func Connect(url string, opts ConnectOptions) Connector {
	if opts.Name == "" {
		opts.Name = "netx"
	}
	if opts.MaxReconnects == 0 {
		opts.MaxReconnects = 3
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	log := opts.Log.With(slog.String("nats", url))

	return func() (*natsgo.Conn, closeFunc, error) {
		nc, err := natsgo.Connect(
			url,
			natsgo.Name(opts.Name),
			natsgo.MaxReconnects(opts.MaxReconnects),
			natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
				if err != nil {
					log.Warn("nats disconnected", slog.Any("error", err))
				}
			}),
			natsgo.ReconnectHandler(func(*natsgo.Conn) {
				log.Info("nats reconnected")
			}),
		)
		if err != nil {
			return nil, nil, err
		}
		return nc, nc.Close, nil
	}
}

func ConnectURL(natsURL string) Connector {
	return Connect(natsURL, ConnectOptions{})
}

// ConnectDefault dials $NATS_URL, or the local default server.
func ConnectDefault() Connector {
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		return ConnectURL(natsURL)
	}
	return ConnectURL(natsgo.DefaultURL)
}

// ReuseConnection shares one connection between all callers of the returned
// Connector. The connection is closed when the last lease is released and
// redialed on the next call.
func ReuseConnection(connect Connector) Connector {
	s := &sharedConn{connect: connect}
	return s.lease
}

type sharedConn struct {
	connect Connector

	mu     sync.Mutex
	nc     *natsgo.Conn
	close  closeFunc
	leases int
}

func (s *sharedConn) lease() (*natsgo.Conn, closeFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nc == nil {
		nc, closeNc, err := s.connect()
		if err != nil {
			return nil, nil, err
		}
		s.nc, s.close = nc, closeNc
	}
	s.leases++

	var once sync.Once
	return s.nc, func() { once.Do(s.release) }, nil
}

func (s *sharedConn) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leases--
	if s.leases == 0 && s.nc != nil {
		s.close()
		s.nc, s.close = nil, nil
	}
}
