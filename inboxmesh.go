// Package inboxmesh provides a high-level façade over the artifact store and
// its collaborators (snapshots, notifications, drafting & delivery) enabling
// rapid construction of email-assistant backends. Most applications interact
// with this package by:
//  1. Creating an InboxMesh via New() (optionally overriding defaults)
//  2. Calling Open() to load persisted state and start auto-saving
//  3. Mutating artifacts through the store methods and observing changes
//     through Subscribe()
//
// The façade delegates state ownership to store.Store while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a snapshot path, an SMTP
// mailer and a structured logger.
package inboxmesh

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/inboxmesh/core"
	"github.com/hupe1980/inboxmesh/drafter"
	"github.com/hupe1980/inboxmesh/logging"
	"github.com/hupe1980/inboxmesh/mailer"
	"github.com/hupe1980/inboxmesh/notify"
	"github.com/hupe1980/inboxmesh/snapshot"
	"github.com/hupe1980/inboxmesh/store"
)

// Options configures the InboxMesh instance.
type Options struct {
	// SnapshotPath enables file persistence at the given path. Empty keeps
	// all state in memory.
	SnapshotPath string

	// AutoSaveInterval sets the period of the background snapshot loop.
	// Values <= 0 disable the loop.
	AutoSaveInterval time.Duration

	// QueueSize bounds each subscriber's notification queue.
	QueueSize int

	// Generator proposes reply content for AutoDraft. Defaults to the
	// deterministic template generator.
	Generator drafter.Generator

	// Mailer performs outbound delivery for Send. Nil means Send only
	// records the state change.
	Mailer mailer.Mailer

	// From is the envelope sender used for outbound delivery.
	From string

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// InboxMesh is the high-level façade aggregating the store and its
// collaborators.
type InboxMesh struct {
	opts  Options
	store *store.Store
}

// New creates a new InboxMesh instance with optional overrides.
func New(optFns ...func(o *Options)) *InboxMesh {
	opts := Options{
		AutoSaveInterval: store.DefaultAutoSaveInterval,
		QueueSize:        notify.DefaultQueueSize,
		Generator:        drafter.TemplateGenerator{},
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	var snapshots core.SnapshotStore
	if opts.SnapshotPath != "" {
		snapshots = snapshot.NewFileStore(opts.SnapshotPath, func(o *snapshot.Options) {
			o.Logger = opts.Logger
		})
	}

	st := store.New(func(o *store.Options) {
		o.SnapshotStore = snapshots
		o.AutoSaveInterval = opts.AutoSaveInterval
		o.QueueSize = opts.QueueSize
		o.Logger = opts.Logger
	})

	return &InboxMesh{opts: opts, store: st}
}

// Store exposes the underlying artifact store for direct use.
func (m *InboxMesh) Store() *store.Store { return m.store }

// Open loads persisted state and starts the auto-save loop.
func (m *InboxMesh) Open() error { return m.store.Open() }

// Close stops auto-saving, writes a final snapshot and releases subscribers.
func (m *InboxMesh) Close() error { return m.store.Close() }

// Subscribe registers an observer for mutation notifications.
func (m *InboxMesh) Subscribe() *notify.Subscription { return m.store.Subscribe() }

// Unsubscribe removes an observer and closes its channel.
func (m *InboxMesh) Unsubscribe(sub *notify.Subscription) { m.store.Unsubscribe(sub) }

// AutoDraft proposes and stores reply drafts for every high-priority,
// still-actionable email in the artifact using the configured generator.
func (m *InboxMesh) AutoDraft(ctx context.Context, artifactID string) ([]core.Draft, error) {
	return drafter.AutoDraft(ctx, m.store, m.opts.Generator, artifactID)
}

// Send transitions the draft to sent, archives the referenced email and, if a
// mailer is configured, performs outbound delivery. The store mutation is
// authoritative; a delivery failure is returned alongside the already-sent
// draft.
func (m *InboxMesh) Send(ctx context.Context, artifactID, draftID string) (core.Draft, error) {
	draft, err := m.store.SendDraft(artifactID, draftID)
	if err != nil {
		return core.Draft{}, err
	}
	if m.opts.Mailer != nil {
		if err := m.opts.Mailer.Send(ctx, m.opts.From, draft); err != nil {
			return draft, fmt.Errorf("outbound delivery: %w", err)
		}
	}
	return draft, nil
}
