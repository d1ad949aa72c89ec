package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/pathrec/recorder"
)

const keyPrefix = "snapshot/"

// codec is sonic in encoding/json compatible mode (sorted map keys).
var codec = sonic.ConfigStd

// BadgerConfig configures OpenBadger.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM; used by tests.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// Logger receives badger's internal logs. Nil silences them.
	Logger *slog.Logger
}

// DefaultBadgerConfig returns a durable on-disk configuration at path.
func DefaultBadgerConfig(path string) BadgerConfig {
	return BadgerConfig{Path: path, SyncWrites: true}
}

// InMemoryBadgerConfig returns a configuration without disk I/O.
func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts slog.Logger to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// BadgerStore keeps snapshots in badger. Safe for concurrent use.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens (creating if needed) the database described by cfg.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("store: path is required for a persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("store: create %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}

	return &BadgerStore{db: db, logger: logger}, nil
}

func (s *BadgerStore) begin(ctx context.Context, op, key string) (context.Context, trace.Span, error) {
	ctx, span := tracer.Start(ctx, "store.badger."+op,
		trace.WithAttributes(attribute.String("store.key", key)),
	)
	if err := ctx.Err(); err != nil {
		return ctx, span, err
	}
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ctx, span, ErrClosed
	}

	return ctx, span, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}

// Save encodes snap and stores it under key, replacing any previous value.
func (s *BadgerStore) Save(ctx context.Context, key string, snap recorder.Snapshot) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, span, err := s.begin(ctx, "save", key)
	defer span.End()
	if err != nil {
		return fail(span, err)
	}

	data, err := codec.Marshal(&snap)
	if err != nil {
		return fail(span, fmt.Errorf("store: encode %q: %w", key, err))
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), data)
	})
	if err != nil {
		return fail(span, fmt.Errorf("store: save %q: %w", key, err))
	}
	span.SetAttributes(attribute.Int("store.bytes", len(data)))
	s.logger.Debug("snapshot saved", slog.String("key", key), slog.Int("bytes", len(data)))

	return nil
}

// Load decodes the snapshot stored under key.
func (s *BadgerStore) Load(ctx context.Context, key string) (recorder.Snapshot, error) {
	var snap recorder.Snapshot
	if err := checkKey(key); err != nil {
		return snap, err
	}
	_, span, err := s.begin(ctx, "load", key)
	defer span.End()
	if err != nil {
		return snap, fail(span, err)
	}

	var data []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return snap, fmt.Errorf("%w: %q", ErrSnapshotNotFound, key)
	}
	if err != nil {
		return snap, fail(span, fmt.Errorf("store: load %q: %w", key, err))
	}
	if err = codec.Unmarshal(data, &snap); err != nil {
		return recorder.Snapshot{}, fail(span, fmt.Errorf("store: decode %q: %w", key, err))
	}
	normalize(&snap)

	return snap, nil
}

// Delete removes key. Deleting a missing key returns ErrSnapshotNotFound.
func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, span, err := s.begin(ctx, "delete", key)
	defer span.End()
	if err != nil {
		return fail(span, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		k := []byte(keyPrefix + key)
		if _, err := txn.Get(k); err != nil {
			return err
		}
		return txn.Delete(k)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %q", ErrSnapshotNotFound, key)
	}
	if err != nil {
		return fail(span, fmt.Errorf("store: delete %q: %w", key, err))
	}

	return nil
}

// Keys lists stored keys in lexicographic order.
func (s *BadgerStore) Keys(ctx context.Context) ([]string, error) {
	_, span, err := s.begin(ctx, "keys", "")
	defer span.End()
	if err != nil {
		return nil, fail(span, err)
	}

	var keys []string
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(keyPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fail(span, fmt.Errorf("store: keys: %w", err))
	}

	return keys, nil
}

// Close closes the database. Further calls return ErrClosed.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	return s.db.Close()
}
