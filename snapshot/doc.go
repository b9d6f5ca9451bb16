// Package snapshot contains concrete implementations of core.SnapshotStore.
//
// The canonical SnapshotStore interface lives in the core package to keep
// domain contracts central. Implementations here provide durable whole-store
// persistence; callers should depend on the interface so alternative backends
// can be substituted in tests or production.
package snapshot
