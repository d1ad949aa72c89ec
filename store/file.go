package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/pathrec/recorder"
)

const fileExt = ".yaml"

// FileStore writes one YAML document per key into a directory.
// Writes go through a temp file and rename.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", dir, err)
	}

	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

func (s *FileStore) begin(ctx context.Context, op, key string) (trace.Span, error) {
	_, span := tracer.Start(ctx, "store.file."+op,
		trace.WithAttributes(attribute.String("store.key", key)),
	)

	return span, ctx.Err()
}

// Save writes snap to <dir>/<key>.yaml.
func (s *FileStore) Save(ctx context.Context, key string, snap recorder.Snapshot) error {
	if err := checkKey(key); err != nil {
		return err
	}
	span, err := s.begin(ctx, "save", key)
	defer span.End()
	if err != nil {
		return fail(span, err)
	}

	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fail(span, fmt.Errorf("store: encode %q: %w", key, err))
	}
	tmp, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return fail(span, fmt.Errorf("store: save %q: %w", key, err))
	}
	defer os.Remove(tmp.Name())
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fail(span, fmt.Errorf("store: save %q: %w", key, err))
	}
	if err = tmp.Close(); err != nil {
		return fail(span, fmt.Errorf("store: save %q: %w", key, err))
	}
	if err = os.Rename(tmp.Name(), s.path(key)); err != nil {
		return fail(span, fmt.Errorf("store: save %q: %w", key, err))
	}

	return nil
}

// Load reads <dir>/<key>.yaml.
func (s *FileStore) Load(ctx context.Context, key string) (recorder.Snapshot, error) {
	var snap recorder.Snapshot
	if err := checkKey(key); err != nil {
		return snap, err
	}
	span, err := s.begin(ctx, "load", key)
	defer span.End()
	if err != nil {
		return snap, fail(span, err)
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return snap, fmt.Errorf("%w: %q", ErrSnapshotNotFound, key)
	}
	if err != nil {
		return snap, fail(span, fmt.Errorf("store: load %q: %w", key, err))
	}
	if err = yaml.Unmarshal(data, &snap); err != nil {
		return recorder.Snapshot{}, fail(span, fmt.Errorf("store: decode %q: %w", key, err))
	}
	normalize(&snap)

	return snap, nil
}

// Delete removes <dir>/<key>.yaml.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	span, err := s.begin(ctx, "delete", key)
	defer span.End()
	if err != nil {
		return fail(span, err)
	}
	err = os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrSnapshotNotFound, key)
	}
	if err != nil {
		return fail(span, fmt.Errorf("store: delete %q: %w", key, err))
	}

	return nil
}

// Keys lists stored keys in lexicographic order.
func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	span, err := s.begin(ctx, "keys", "")
	defer span.End()
	if err != nil {
		return nil, fail(span, err)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fail(span, fmt.Errorf("store: keys: %w", err))
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(keys)

	return keys, nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
