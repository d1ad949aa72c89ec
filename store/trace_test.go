package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/katalvlaran/pathrec/store"
)

// spans collects every span the package ends. The global provider can be
// installed once per process, so the recorder is shared.
var spans = tracetest.NewSpanRecorder()

func TestMain(m *testing.M) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	otel.SetTracerProvider(tp)
	code := m.Run()
	_ = tp.Shutdown(context.Background())
	os.Exit(code)
}

// spansSince returns the spans ended after the first n.
func spansSince(n int) []sdktrace.ReadOnlySpan {
	return spans.Ended()[n:]
}

func spanKey(sp sdktrace.ReadOnlySpan) string {
	for _, kv := range sp.Attributes() {
		if kv.Key == attribute.Key("store.key") {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestFileStore_Spans(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	mark := len(spans.Ended())
	require.NoError(t, s.Save(ctx, "traced", sampleSnapshot()))
	_, err = s.Load(ctx, "traced")
	require.NoError(t, err)
	_, err = s.Keys(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "traced"))

	ended := spansSince(mark)
	require.Len(t, ended, 4)
	var names []string
	for _, sp := range ended {
		names = append(names, sp.Name())
		assert.Equal(t, codes.Unset, sp.Status().Code, sp.Name())
	}
	assert.Equal(t, []string{"store.file.save", "store.file.load", "store.file.keys", "store.file.delete"}, names)
	assert.Equal(t, "traced", spanKey(ended[1]))
	assert.Equal(t, "traced", spanKey(ended[3]))

	// a miss is not a span error
	mark = len(spans.Ended())
	_, err = s.Load(ctx, "traced")
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
	ended = spansSince(mark)
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Unset, ended[0].Status().Code)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	mark = len(spans.Ended())
	_, err = s.Keys(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Load(cancelled, "traced")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Delete(cancelled, "traced"), context.Canceled)

	ended = spansSince(mark)
	require.Len(t, ended, 3)
	for _, sp := range ended {
		assert.Equal(t, codes.Error, sp.Status().Code, sp.Name())
		assert.NotEmpty(t, sp.Events(), "error recorded on %s", sp.Name())
	}
}
