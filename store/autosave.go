package store

import (
	"time"
)

// autoSaver drives the periodic snapshot loop. It is owned by the store's
// lifecycle: started from Open, stopped from Close. The loop never blocks
// foreground operations; each tick takes a consistent read snapshot and hands
// it to the snapshot store.
type autoSaver struct {
	stop chan struct{}
	done chan struct{}
}

// startAutoSave launches the background loop. Caller holds lifecycleMu.
func (s *Store) startAutoSave(interval time.Duration) {
	as := &autoSaver{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.saver = as
	go func() {
		defer close(as.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-as.stop:
				return
			case <-ticker.C:
				// A failed save is logged and retried on the next tick; it
				// never crashes the process, and in-memory state stays
				// authoritative for interactive callers.
				if err := s.saveSnapshot(); err != nil {
					s.logger.Error("periodic snapshot failed, retrying next tick", "error", err.Error())
				}
			}
		}
	}()
	s.logger.Info("auto-save started", "interval", interval.String())
}

// stopAutoSaveLocked cancels the loop and waits for it to drain. Caller holds
// lifecycleMu. The atomic-write contract of the snapshot store guarantees no
// half-written snapshot is left behind even if a save was in flight.
func (s *Store) stopAutoSaveLocked() {
	if s.saver == nil {
		return
	}
	close(s.saver.stop)
	<-s.saver.done
	s.saver = nil
}

// saveSnapshot writes one whole-store snapshot through the configured
// snapshot store, or does nothing when persistence is disabled.
func (s *Store) saveSnapshot() error {
	if s.snapshots == nil {
		return nil
	}
	start := time.Now()
	artifacts := s.Snapshot()
	err := s.snapshots.Save(artifacts)
	if err == nil {
		s.logger.Debug("snapshot written", "artifacts", len(artifacts), "duration", time.Since(start).String())
	}
	return err
}
