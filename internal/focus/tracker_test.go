package focus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingman-panel/wingman/internal/platform"
)

type result struct {
	snap platform.Snapshot
	err  error
}

// scriptedBackend replays results and then repeats the last one.
type scriptedBackend struct {
	mu      sync.Mutex
	results []result
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) ActiveWindow(context.Context) (platform.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.results[0]
	if len(b.results) > 1 {
		b.results = b.results[1:]
	}
	return r.snap, r.err
}

func (b *scriptedBackend) Displays(context.Context) ([]platform.Display, error) { return nil, nil }

func TestTrackerTick(t *testing.T) {
	b := &scriptedBackend{results: []result{
		{snap: snap("curl", rectA)},
		{err: platform.ErrBackendUnavailable},
		{snap: snap("curl", rectA)},
		{snap: snap("curl", rectA)},
	}}
	tr := NewTracker(b, 0, 0, zerolog.Nop())
	assert.Equal(t, DefaultPollInterval, tr.Interval())

	ctx := context.Background()
	out := tr.Tick(ctx)
	assert.True(t, out.AppChanged)
	assert.True(t, tr.Tick(ctx).Empty())
	assert.True(t, tr.Tick(ctx).Empty())

	out = tr.Tick(ctx)
	require.NotNil(t, out.Settled)
	assert.Equal(t, "curl", out.Settled.AppName)
	assert.Equal(t, "curl", tr.State().App())
}

func TestTrackerSetThreshold(t *testing.T) {
	b := &scriptedBackend{results: []result{{snap: snap("curl", rectA)}}}
	tr := NewTracker(b, time.Millisecond, 5, zerolog.Nop())
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		tr.Tick(ctx)
	}
	require.Equal(t, 4, tr.State().Debounce.Repeat)

	tr.SetThreshold(2)
	assert.Equal(t, 2, tr.State().Debounce.Repeat)
	assert.NotNil(t, tr.Tick(ctx).Settled)
}

func TestTrackerRun(t *testing.T) {
	b := &scriptedBackend{results: []result{{snap: snap("curl", rectA)}}}
	tr := NewTracker(b, time.Millisecond, 3, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	var outs []Output
	done := make(chan error, 1)
	go func() {
		done <- tr.Run(ctx, func(o Output) {
			outs = append(outs, o)
			if o.Settled != nil {
				cancel()
			}
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("tracker did not settle")
	}
	require.Len(t, outs, 2)
	assert.True(t, outs[0].AppChanged)
	assert.Equal(t, rectA, outs[1].Settled.Geometry)
}
