package store

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/inboxmesh/core"
	"github.com/hupe1980/inboxmesh/logging"
	"github.com/hupe1980/inboxmesh/notify"
)

// DefaultAutoSaveInterval is the period between background snapshots when no
// override is supplied.
const DefaultAutoSaveInterval = 30 * time.Second

// Options configures a Store instance using the functional options pattern.
type Options struct {
	// SnapshotStore persists whole-store snapshots. Nil disables persistence
	// entirely (useful for tests and ephemeral setups).
	SnapshotStore core.SnapshotStore

	// AutoSaveInterval sets the period of the background snapshot loop.
	// Values <= 0 disable the loop; explicit saves via SaveNow and the final
	// save on Close still work.
	AutoSaveInterval time.Duration

	// QueueSize bounds each subscriber's notification queue.
	QueueSize int

	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger

	// Clock overrides the time source. Defaults to time.Now; tests inject a
	// deterministic clock to exercise timestamp monotonicity.
	Clock func() time.Time
}

// entry pairs one artifact with its own exclusive lock so operations on
// different artifacts proceed in parallel while operations on the same
// artifact serialize.
//
// notifyMu is acquired before the state lock is released so notifications are
// published in exactly the order mutations were accepted, without holding the
// state lock during delivery.
type entry struct {
	mu       sync.RWMutex
	notifyMu sync.Mutex
	artifact *core.Artifact
	deleted  bool
}

// Store is the sole mutable owner of all artifacts. Every operation hands out
// clones, never live references, so callers cannot bypass its invariants.
//
// Lifecycle: construct with New, call Open to load any existing snapshot and
// start the auto-save loop, and Close to stop the loop, write a final
// snapshot and release subscribers. The store is passed by reference to
// whichever layer needs it; there is no package-level instance.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	hub       *notify.Hub
	snapshots core.SnapshotStore
	logger    logging.Logger
	now       func() time.Time
	seq       atomic.Uint64
	interval  time.Duration

	lifecycleMu sync.Mutex
	saver       *autoSaver
	opened      bool
	closed      bool
}

// New constructs a Store. The store is empty until Open is called.
func New(optFns ...func(o *Options)) *Store {
	opts := Options{
		AutoSaveInterval: DefaultAutoSaveInterval,
		QueueSize:        notify.DefaultQueueSize,
		Logger:           logging.NoOpLogger{},
		Clock:            time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Store{
		entries:   make(map[string]*entry),
		hub:       notify.New(func(o *notify.Options) { o.QueueSize = opts.QueueSize; o.Logger = opts.Logger }),
		snapshots: opts.SnapshotStore,
		logger:    opts.Logger,
		now:       opts.Clock,
		interval:  opts.AutoSaveInterval,
	}
}

// Open loads the latest snapshot (if a snapshot store is configured) and
// starts the auto-save loop. It must be called exactly once before use.
func (s *Store) Open() error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if s.opened {
		return fmt.Errorf("store already open")
	}
	if s.snapshots != nil {
		artifacts, err := s.snapshots.Load()
		if err != nil {
			return err
		}
		for _, a := range artifacts {
			if err := a.Validate(); err != nil {
				return &core.PersistenceError{Op: "load", Err: fmt.Errorf("artifact %q: %w", a.ID, err)}
			}
			s.entries[a.ID] = &entry{artifact: a.Clone()}
		}
		if s.interval > 0 {
			s.startAutoSave(s.interval)
		}
		s.logger.Info("store opened", "artifacts", len(artifacts))
	}
	s.opened = true
	return nil
}

// Close stops the auto-save loop, writes a final snapshot and closes all
// subscriptions. The snapshot error (if any) is reported, but shutdown always
// completes: in-memory consumers are released regardless. Close is idempotent.
func (s *Store) Close() error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.stopAutoSaveLocked()
	err := s.saveSnapshot()
	s.hub.Close()
	s.logger.Info("store closed")
	return err
}

// Subscribe registers an observer for mutation notifications.
func (s *Store) Subscribe() *notify.Subscription { return s.hub.Subscribe() }

// Unsubscribe removes an observer and closes its channel.
func (s *Store) Unsubscribe(sub *notify.Subscription) { s.hub.Unsubscribe(sub) }

// GetArtifact returns an immutable point-in-time copy of the artifact.
func (s *Store) GetArtifact(id string) (*core.Artifact, error) {
	e := s.lookup(id)
	if e == nil {
		return nil, &core.NotFoundError{Kind: "artifact", ID: id}
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.deleted {
		return nil, &core.NotFoundError{Kind: "artifact", ID: id}
	}
	return e.artifact.Clone(), nil
}

// ListArtifacts returns summaries of all artifacts ordered by creation time
// ascending (artifact id breaks ties) for a stable display order.
func (s *Store) ListArtifacts() []core.Summary {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	summaries := make([]core.Summary, 0, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		if !e.deleted {
			summaries = append(summaries, e.artifact.Summary())
		}
		e.mu.RUnlock()
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries
}

// Snapshot returns a consistent read snapshot of every artifact, acquiring
// each artifact's lock in sorted id order. The result contains clones only.
func (s *Store) Snapshot() []*core.Artifact {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entries))
	byID := make(map[string]*entry, len(s.entries))
	for id, e := range s.entries {
		ids = append(ids, id)
		byID[id] = e
	}
	s.mu.RUnlock()

	sort.Strings(ids)
	artifacts := make([]*core.Artifact, 0, len(ids))
	for _, id := range ids {
		e := byID[id]
		e.mu.RLock()
		if !e.deleted {
			artifacts = append(artifacts, e.artifact.Clone())
		}
		e.mu.RUnlock()
	}
	return artifacts
}

// SaveNow synchronously writes a snapshot through the configured snapshot
// store. It is a no-op without one.
func (s *Store) SaveNow() error {
	return s.saveSnapshot()
}

// lookup fetches the entry for an artifact id, or nil.
func (s *Store) lookup(id string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}

// touch refreshes the artifact's UpdatedAt, keeping it monotonically
// non-decreasing even if the wall clock steps backwards.
func (s *Store) touch(a *core.Artifact) {
	if now := s.now(); now.After(a.UpdatedAt) {
		a.UpdatedAt = now
	}
}

// publish hands a notification to the hub while holding the entry's notify
// lock, which the caller must have acquired before releasing the state lock.
func (s *Store) publish(n core.Notification) {
	s.hub.Publish(n)
	s.logger.Debug("mutation published", "artifact_id", n.ArtifactID, "action", string(n.Action), "seq", n.Seq)
}
