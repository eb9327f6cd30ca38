package panel

import (
	"sync"
	"time"

	"github.com/wingman-panel/wingman/internal/dock"
	"github.com/wingman-panel/wingman/internal/docs"
	"github.com/wingman-panel/wingman/internal/platform"
)

// EventKind names a surface command.
type EventKind string

const (
	EventApp           EventKind = "app"
	EventDocumentation EventKind = "documentation"
	EventMove          EventKind = "move"
	EventVisible       EventKind = "visible"
)

// Event is one surface command as streamed to external renderers.
type Event struct {
	Kind    EventKind      `json:"kind"`
	Time    time.Time      `json:"time"`
	App     string         `json:"app,omitempty"`
	Text    string         `json:"text,omitempty"`
	Source  docs.Source    `json:"source,omitempty"`
	Rect    *platform.Rect `json:"rect,omitempty"`
	Side    dock.Side      `json:"side,omitempty"`
	Visible *bool          `json:"visible,omitempty"`
}

// subscriberBuffer is how far a slow subscriber may fall behind before its
// backlog is collapsed to the latest event of each kind.
const subscriberBuffer = 32

// subscriber is one WATCH stream. Events that do not fit in out wait in
// pending, which holds at most one event per kind, and a pump goroutine
// feeds them to out as the reader catches up.
type subscriber struct {
	out      chan Event
	pending  []Event
	inflight bool
	wake     chan struct{}
	done     chan struct{}
}

// Hub is a Surface that broadcasts each command to subscribers. New
// subscribers first receive the current state so they can render at once.
type Hub struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	app    *Event
	doc    *Event
	move   *Event
	vis    *Event
	now    func() time.Time
	closed bool
}

var _ Surface = (*Hub)(nil)

// NewHub creates an empty hub. The panel starts visible.
func NewHub() *Hub {
	visible := true
	h := &Hub{subs: make(map[*subscriber]struct{}), now: time.Now}
	h.vis = &Event{Kind: EventVisible, Time: h.now(), Visible: &visible}
	return h
}

// Subscribe returns a channel of events and a function that ends the
// subscription. The channel is closed when the subscription ends.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	sub := &subscriber{
		out:  make(chan Event, subscriberBuffer),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	for _, ev := range []*Event{h.vis, h.app, h.move, h.doc} {
		if ev != nil {
			sub.out <- *ev
		}
	}
	if h.closed {
		close(sub.out)
		h.mu.Unlock()
		return sub.out, func() {}
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go h.pump(sub)

	var once sync.Once
	return sub.out, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.remove(sub)
		})
	}
}

// remove ends sub. The pump closes its channel on the way out. Callers hold
// h.mu.
func (h *Hub) remove(sub *subscriber) {
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.done)
	}
}

// pump moves pending events into sub.out until the subscription ends.
func (h *Hub) pump(sub *subscriber) {
	defer close(sub.out)
	for {
		select {
		case <-sub.done:
			return
		case <-sub.wake:
		}

		for {
			h.mu.Lock()
			if len(sub.pending) == 0 {
				h.mu.Unlock()
				break
			}
			ev := sub.pending[0]
			sub.pending = sub.pending[1:]
			sub.inflight = true
			h.mu.Unlock()

			select {
			case sub.out <- ev:
			case <-sub.done:
				return
			}

			h.mu.Lock()
			sub.inflight = false
			h.mu.Unlock()
		}
	}
}

// offer hands ev to sub without blocking. Callers hold h.mu.
func (sub *subscriber) offer(ev Event) {
	if len(sub.pending) == 0 && !sub.inflight {
		select {
		case sub.out <- ev:
			return
		default:
		}
	}

	// Keep only the newest event of each kind, in publish order.
	kept := sub.pending[:0]
	for _, p := range sub.pending {
		if p.Kind != ev.Kind {
			kept = append(kept, p)
		}
	}
	sub.pending = append(kept, ev)

	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for sub := range h.subs {
		h.remove(sub)
	}
}

func (h *Hub) SetAppName(name string) {
	h.publish(&h.app, Event{Kind: EventApp, App: name})
}

func (h *Hub) SetDocumentation(text string, source docs.Source) {
	h.publish(&h.doc, Event{Kind: EventDocumentation, Text: text, Source: source})
}

func (h *Hub) Move(rect platform.Rect, side dock.Side) {
	h.publish(&h.move, Event{Kind: EventMove, Rect: &rect, Side: side})
}

func (h *Hub) SetVisible(visible bool) {
	h.publish(&h.vis, Event{Kind: EventVisible, Visible: &visible})
}

// publish records ev as the latest of its kind and fans it out. A slow
// subscriber never loses the newest event of a kind.
func (h *Hub) publish(slot **Event, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ev.Time = h.now()
	*slot = &ev
	for sub := range h.subs {
		sub.offer(ev)
	}
}
