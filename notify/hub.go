package notify

import (
	"sync"

	"github.com/hupe1980/inboxmesh/core"
	"github.com/hupe1980/inboxmesh/logging"
)

// DefaultQueueSize is the per-subscriber notification buffer used when no
// override is supplied.
const DefaultQueueSize = 64

// Options configures a Hub.
type Options struct {
	// QueueSize bounds each subscriber's notification queue. When a queue is
	// full the oldest undelivered notification is dropped in favor of the
	// newest; observers catch up by re-reading the artifact.
	QueueSize int

	// Logger receives delivery diagnostics. Defaults to NoOp.
	Logger logging.Logger
}

// Hub fans out notifications to every registered subscriber. Delivery is
// best-effort and non-blocking with respect to the publisher: a slow or
// unresponsive observer never delays the mutation that produced the
// notification.
type Hub struct {
	mu        sync.RWMutex
	subs      map[string]*Subscription
	queueSize int
	logger    logging.Logger
	closed    bool
}

// New constructs an empty Hub.
func New(optFns ...func(o *Options)) *Hub {
	opts := Options{
		QueueSize: DefaultQueueSize,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	return &Hub{
		subs:      make(map[string]*Subscription),
		queueSize: opts.QueueSize,
		logger:    opts.Logger,
	}
}

// Subscription is a registered observer's handle. Consume notifications from
// Notifications(); the channel is closed on Unsubscribe and on Hub.Close.
type Subscription struct {
	id string
	ch chan core.Notification
}

// ID returns the opaque subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Notifications returns the receive side of the subscriber's queue.
func (s *Subscription) Notifications() <-chan core.Notification { return s.ch }

// Subscribe registers a new observer and returns its handle.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		id: core.NewID(),
		ch: make(chan core.Notification, h.queueSize),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub
	}
	h.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes the observer and closes its channel. Unknown handles
// are ignored.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	registered, ok := h.subs[sub.id]
	if ok {
		delete(h.subs, sub.id)
	}
	h.mu.Unlock()
	if ok {
		close(registered.ch)
	}
}

// Publish delivers the notification to every subscriber. A full queue sheds
// its oldest entry to make room; if the queue is still full the notification
// is dropped for that subscriber and counted.
func (h *Hub) Publish(n core.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	dropped := 0
	for _, sub := range h.subs {
		select {
		case sub.ch <- n:
			continue
		default:
		}
		// Queue full: shed the oldest entry, then retry once.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- n:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		h.logger.Warn("notification dropped", "artifact_id", n.ArtifactID, "action", string(n.Action), "dropped", dropped)
	}
}

// Len returns the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close removes all subscribers and closes their channels. Publish becomes a
// no-op afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}
