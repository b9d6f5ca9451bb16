// Package notify implements the subscription hub: fan-out delivery of store
// mutation notifications over one bounded channel per subscriber.
//
// Delivery semantics:
//   - Per artifact, notifications arrive in the order mutations were accepted
//   - Publishing never blocks on a slow observer; a full queue drops its
//     oldest entry in favor of the newest (catch-up consistency is achieved
//     by re-reading the artifact, not by replaying every intermediate event)
//   - A failing observer is isolated; nothing propagates back into the store
package notify
