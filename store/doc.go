// Package store implements the artifact store: the sole mutable owner of all
// artifacts and the only component permitted to change artifact state.
//
// Concurrency discipline: each artifact is guarded by its own exclusive lock,
// so operations targeting different artifacts proceed in parallel while
// operations targeting the same artifact serialize. Mutations are atomic from
// the caller's perspective; reads return point-in-time clones and never
// observe a partially-applied mutation. No operation performs network or disk
// I/O while holding an artifact lock: snapshot I/O runs on a separately
// acquired read snapshot and notification delivery happens after the state
// lock is released.
//
// The store owns the subscription hub and the auto-save loop; both follow its
// Open/Close lifecycle.
package store
