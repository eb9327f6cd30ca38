package docs

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Lookup is the part of Resolver the worker drives.
type Lookup interface {
	Get(ctx context.Context, app string) Result
	Online(ctx context.Context, app string) Result
}

// Request is one queued lookup.
type Request struct {
	ID     ulid.ULID
	App    string
	Online bool
}

// Delivery carries a finished lookup back to the requester.
type Delivery struct {
	ID     ulid.ULID `json:"id"`
	App    string    `json:"app"`
	Result Result    `json:"result"`
}

// Worker runs lookups on a single background goroutine. A new request
// supersedes the pending and in-flight ones: the in-flight lookup is
// cancelled and its result dropped.
type Worker struct {
	lookup   Lookup
	requests chan Request
	out      chan Delivery

	mu     sync.Mutex
	latest ulid.ULID
	cancel context.CancelFunc
}

// NewWorker creates a worker around lookup. Call Run to start it.
func NewWorker(lookup Lookup) *Worker {
	return &Worker{
		lookup:   lookup,
		requests: make(chan Request, 1),
		out:      make(chan Delivery, 1),
	}
}

// Results is the channel finished lookups are delivered on.
func (w *Worker) Results() <-chan Delivery { return w.out }

// Latest returns the ID of the most recent request.
func (w *Worker) Latest() ulid.ULID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest
}

// IsCurrent reports whether d answers the most recent request.
func (w *Worker) IsCurrent(d Delivery) bool {
	return d.ID == w.Latest()
}

// Request queues a lookup for app and returns its ID.
func (w *Worker) Request(app string, online bool) ulid.ULID {
	w.mu.Lock()
	defer w.mu.Unlock()

	req := Request{ID: ulid.Make(), App: app, Online: online}
	w.latest = req.ID
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}

	// Replace any request Run has not picked up yet. Sends only happen
	// under mu, so after the drain there is room.
	select {
	case <-w.requests:
	default:
	}
	w.requests <- req
	return req.ID
}

// Run processes requests until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-w.requests:
			d, ok := w.process(ctx, req)
			if !ok {
				continue
			}
			select {
			case w.out <- d:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, req Request) (Delivery, bool) {
	lookupCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.mu.Lock()
	if req.ID != w.latest {
		w.mu.Unlock()
		return Delivery{}, false
	}
	w.cancel = cancel
	w.mu.Unlock()

	var res Result
	if req.Online {
		res = w.lookup.Online(lookupCtx, req.App)
	} else {
		res = w.lookup.Get(lookupCtx, req.App)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if req.ID != w.latest {
		return Delivery{}, false
	}
	w.cancel = nil
	return Delivery{ID: req.ID, App: req.App, Result: res}, true
}
