package core

// SnapshotStore persists whole-store snapshots. Implementations must write
// atomically so a crash mid-save never corrupts the previously durable
// snapshot, and should be thread-safe. Short method names (Save/Load) mirror
// other store interfaces for consistency.
type SnapshotStore interface {
	// Save durably writes the complete artifact set, replacing any prior
	// snapshot.
	Save(artifacts []*Artifact) error
	// Load reconstructs the artifact set from the latest snapshot, returning
	// an empty slice when no snapshot exists and a *PersistenceError on
	// malformed data.
	Load() ([]*Artifact, error)
}
