package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hupe1980/inboxmesh/core"
	"github.com/hupe1980/inboxmesh/logging"
)

// FormatVersion tags the on-disk envelope so future loaders can detect and
// migrate older snapshots.
const FormatVersion = 1

// envelope is the self-describing on-disk representation of a whole-store
// snapshot. Field names and status vocabularies inside Artifacts are part of
// the compatibility surface.
type envelope struct {
	Version   int              `json:"version"`
	SavedAt   time.Time        `json:"savedAt"`
	Artifacts []*core.Artifact `json:"artifacts"`
}

// Options configures a FileStore.
type Options struct {
	// Logger receives save/load diagnostics. Defaults to NoOp.
	Logger logging.Logger
}

// FileStore persists whole-store snapshots to a single JSON file. Writes are
// atomic: the snapshot is written to a temporary file in the same directory
// and renamed over the canonical path, so a crash mid-write never corrupts
// the previously durable snapshot.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger logging.Logger
}

// Interface compliance (compile-time assertion)
var _ core.SnapshotStore = (*FileStore)(nil)

// NewFileStore creates a snapshot store writing to the given path.
func NewFileStore(path string, optFns ...func(o *Options)) *FileStore {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &FileStore{path: path, logger: opts.Logger}
}

// Path returns the canonical snapshot location.
func (f *FileStore) Path() string { return f.path }

// Save atomically replaces the snapshot file with the given artifact set.
func (f *FileStore) Save(artifacts []*core.Artifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	env := envelope{
		Version:   FormatVersion,
		SavedAt:   time.Now().UTC(),
		Artifacts: artifacts,
	}
	if env.Artifacts == nil {
		env.Artifacts = []*core.Artifact{}
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return &core.PersistenceError{Op: "save", Err: err}
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &core.PersistenceError{Op: "save", Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return &core.PersistenceError{Op: "save", Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &core.PersistenceError{Op: "save", Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &core.PersistenceError{Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &core.PersistenceError{Op: "save", Err: err}
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return &core.PersistenceError{Op: "save", Err: err}
	}

	f.logger.Debug("snapshot saved", "path", f.path, "artifacts", len(artifacts))
	return nil
}

// Load reads the latest snapshot. A missing file yields an empty set; any
// other failure, an unknown format version or invariant-violating content is
// reported as a *core.PersistenceError.
func (f *FileStore) Load() ([]*core.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*core.Artifact{}, nil
		}
		return nil, &core.PersistenceError{Op: "load", Err: err}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &core.PersistenceError{Op: "load", Err: err}
	}
	if env.Version < 1 || env.Version > FormatVersion {
		return nil, &core.PersistenceError{Op: "load", Err: fmt.Errorf("unsupported snapshot version %d", env.Version)}
	}
	for _, art := range env.Artifacts {
		if err := art.Validate(); err != nil {
			return nil, &core.PersistenceError{Op: "load", Err: fmt.Errorf("artifact %q: %w", art.ID, err)}
		}
	}

	f.logger.Debug("snapshot loaded", "path", f.path, "artifacts", len(env.Artifacts))
	return env.Artifacts, nil
}
