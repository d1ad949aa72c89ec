// Package store persists recorder snapshots under string keys.
//
// Two backends share the Store contract: BadgerStore keeps JSON-encoded
// snapshots in an embedded badger database, FileStore writes one YAML file
// per key into a directory. Both return ErrSnapshotNotFound for missing
// keys and reject empty or path-like keys before touching storage.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/katalvlaran/pathrec/recorder"
)

var (
	// ErrSnapshotNotFound is returned when no snapshot is stored under a key.
	ErrSnapshotNotFound = errors.New("store: snapshot not found")

	// ErrEmptyKey is returned for an empty key.
	ErrEmptyKey = errors.New("store: key is empty")

	// ErrInvalidKey is returned for keys containing path separators or "..".
	ErrInvalidKey = errors.New("store: invalid key")

	// ErrClosed is returned by a BadgerStore after Close.
	ErrClosed = errors.New("store: closed")
)

var tracer = otel.Tracer("pathrec.store")

// Store saves, loads and deletes snapshots.
type Store interface {
	Save(ctx context.Context, key string, s recorder.Snapshot) error
	Load(ctx context.Context, key string) (recorder.Snapshot, error)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

func checkKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return nil
}

// normalize maps an empty decoded estimate back to "no estimate".
func normalize(s *recorder.Snapshot) {
	if len(s.GlobalEstimate) == 0 {
		s.GlobalEstimate = nil
	}
	if s.NodeIndex == nil {
		s.NodeIndex = map[string]int{}
	}
}
