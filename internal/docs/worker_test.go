package docs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingLookup blocks lookups for "slow" until their context ends.
type blockingLookup struct {
	started chan string
}

func (b *blockingLookup) Get(ctx context.Context, app string) Result {
	b.started <- app
	if app == "slow" {
		<-ctx.Done()
		return Result{Text: "stale", Source: SourceMan}
	}
	return Result{Text: "doc for " + app, Source: SourceHelp}
}

func (b *blockingLookup) Online(_ context.Context, app string) Result {
	b.started <- app
	return Result{Text: "web " + app, Source: SourceOnline}
}

func startWorker(t *testing.T) (*Worker, *blockingLookup) {
	t.Helper()
	lookup := &blockingLookup{started: make(chan string, 8)}
	w := NewWorker(lookup)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w, lookup
}

func receive(t *testing.T, w *Worker) Delivery {
	t.Helper()
	select {
	case d := <-w.Results():
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery")
		return Delivery{}
	}
}

func TestWorkerDelivers(t *testing.T) {
	w, _ := startWorker(t)

	id := w.Request("curl", false)
	d := receive(t, w)
	assert.Equal(t, id, d.ID)
	assert.Equal(t, "curl", d.App)
	assert.Equal(t, Result{Text: "doc for curl", Source: SourceHelp}, d.Result)
	assert.True(t, w.IsCurrent(d))
}

func TestWorkerOnline(t *testing.T) {
	w, _ := startWorker(t)

	w.Request("curl", true)
	d := receive(t, w)
	assert.Equal(t, SourceOnline, d.Result.Source)
}

func TestWorkerSupersedesInFlight(t *testing.T) {
	w, lookup := startWorker(t)

	w.Request("slow", false)
	require.Equal(t, "slow", <-lookup.started)

	id := w.Request("fast", false)
	d := receive(t, w)
	assert.Equal(t, id, d.ID)
	assert.Equal(t, "fast", d.App)

	select {
	case extra := <-w.Results():
		t.Fatalf("superseded lookup was delivered: %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWorkerStaleDeliveryDetected(t *testing.T) {
	w, _ := startWorker(t)

	w.Request("curl", false)
	d := receive(t, w)
	w.Request("wget", false)
	assert.False(t, w.IsCurrent(d))
	assert.Equal(t, "wget", receive(t, w).App)
}
