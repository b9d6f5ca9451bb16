// Package core provides the foundational domain types and contracts used by
// InboxMesh. It defines:
//
//   - Record types (Email, Draft, Artifact) with their invariants
//   - The status state machine validating Email and Draft lifecycle changes
//   - Typed error values (NotFoundError, ValidationError, InvalidTransitionError,
//     PersistenceError) with sentinel targets for errors.Is
//   - Notification records emitted after accepted mutations
//   - Pluggable contracts for snapshot persistence and draft generation
//
// The package intentionally keeps implementation concerns (the concurrent
// store, file persistence, delivery plumbing) out of scope, exposing small
// interfaces so backends can be swapped without touching calling code.
package core
