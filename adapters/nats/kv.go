package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/gdmec07150948/NetX/ports/kv"
)

// ErrKeyTTL is returned for puts with a per-key TTL; configure KvConfig.TTL
// for the whole bucket instead.
var ErrKeyTTL = errors.New("nats kv: per-key ttl not supported")

type KvConfig struct {
	Connect Connector
	// Bucket name. Default "netx_snapshots".
	Bucket string
	// TTL expires every entry of the bucket. 0 keeps entries.
	TTL      time.Duration
	MaxBytes int64
	// Memory selects memory storage instead of file storage.
	Memory bool
}

// KvStore is a kv.Store over a JetStream key/value bucket. Entries are
// stored as JSON, so numeric meta values come back as float64.
type KvStore struct {
	kv    jetstream.KeyValue
	close closeFunc
}

func NewKvStore(ctx context.Context, cfg KvConfig) (*KvStore, error) {
	if cfg.Bucket == "" {
		cfg.Bucket = "netx_snapshots"
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 8 * 1024 * 1024
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

	storage := jetstream.FileStorage
	if cfg.Memory {
		storage = jetstream.MemoryStorage
	}
	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:   cfg.Bucket,
		Storage:  storage,
		TTL:      cfg.TTL,
		MaxBytes: cfg.MaxBytes,
	})
	if err != nil {
		closeNc()
		return nil, fmt.Errorf("nats kv: create bucket %q: %w", cfg.Bucket, err)
	}

	return &KvStore{kv: bucket, close: closeNc}, nil
}

func (k *KvStore) Put(ctx context.Context, key string, entry kv.Entry, opts kv.PutOptions) error {
	if opts.TTL > 0 {
		return ErrKeyTTL
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err := k.kv.Put(ctx, key, data); err != nil {
		if errors.Is(err, jetstream.ErrInvalidKey) {
			return fmt.Errorf("%w: %q", kv.ErrInvalidKey, key)
		}
		return fmt.Errorf("nats kv: put %q: %w", key, err)
	}
	return nil
}

func (k *KvStore) Get(ctx context.Context, key string) (kv.Entry, error) {
	v, err := k.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return kv.Entry{}, kv.ErrNotFound
		}
		return kv.Entry{}, fmt.Errorf("nats kv: get %q: %w", key, err)
	}
	var e kv.Entry
	if err := json.Unmarshal(v.Value(), &e); err != nil {
		return kv.Entry{}, fmt.Errorf("nats kv: decode %q: %w", key, err)
	}
	return e, nil
}

func (k *KvStore) Delete(ctx context.Context, key string) error {
	if err := k.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("nats kv: delete %q: %w", key, err)
	}
	return nil
}

func (k *KvStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	lister, err := k.kv.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("nats kv: list keys: %w", err)
	}
	defer func() { _ = lister.Stop() }()

	var keys []string
	for key := range lister.Keys() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (k *KvStore) Close() { k.close() }

var _ kv.Store = (*KvStore)(nil)
