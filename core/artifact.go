package core

import (
	"fmt"
	"slices"
	"time"
)

// ArtifactType tags the shape and purpose of an artifact. The set is closed;
// CreateArtifact rejects unknown types.
type ArtifactType string

const (
	// ArtifactTypeEmailList bundles a batch of emails with their drafts.
	ArtifactTypeEmailList ArtifactType = "email-list"
	// ArtifactTypeEmailDraft holds a single standalone draft composition.
	ArtifactTypeEmailDraft ArtifactType = "email-draft"
	// ArtifactTypeCalendarEvents holds a calendar excerpt for display.
	ArtifactTypeCalendarEvents ArtifactType = "calendar-events"
	// ArtifactTypeTaskList holds an extracted task list.
	ArtifactTypeTaskList ArtifactType = "task-list"
	// ArtifactTypeDocument holds a generated document.
	ArtifactTypeDocument ArtifactType = "document"
)

// Valid reports whether t is one of the known artifact types.
func (t ArtifactType) Valid() bool {
	switch t {
	case ArtifactTypeEmailList, ArtifactTypeEmailDraft, ArtifactTypeCalendarEvents,
		ArtifactTypeTaskList, ArtifactTypeDocument:
		return true
	}
	return false
}

// Artifact is a versioned, named bundle of emails, drafts and completion
// markers. It is the unit of persistence and subscription.
//
// Invariants (hold after every accepted store operation):
//   - Email ids are unique within the artifact; draft ids are unique within
//     the artifact
//   - Every draft's EmailID names an email present in the artifact
//   - UpdatedAt is monotonically non-decreasing and refreshed on every
//     accepted mutation
//   - HandledEmailIDs is a subset of the email ids currently present
type Artifact struct {
	ID              string            `json:"id"`
	Type            ArtifactType      `json:"type"`
	Title           string            `json:"title"`
	Emails          []Email           `json:"emails"`
	Drafts          map[string]Draft  `json:"drafts"`
	HandledEmailIDs []string          `json:"handledEmailIds"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
	Visible         bool              `json:"visible"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the artifact safe for independent mutation.
// The store hands out clones exclusively so callers can never bypass its
// invariants.
func (a *Artifact) Clone() *Artifact {
	cp := *a
	cp.Emails = make([]Email, len(a.Emails))
	for i, e := range a.Emails {
		cp.Emails[i] = e.Clone()
	}
	cp.Drafts = make(map[string]Draft, len(a.Drafts))
	for id, d := range a.Drafts {
		cp.Drafts[id] = d
	}
	cp.HandledEmailIDs = make([]string, len(a.HandledEmailIDs))
	copy(cp.HandledEmailIDs, a.HandledEmailIDs)
	if a.Metadata != nil {
		cp.Metadata = make(map[string]string, len(a.Metadata))
		for k, v := range a.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

// EmailIndex returns the position of the email with the given id, or -1.
func (a *Artifact) EmailIndex(emailID string) int {
	for i, e := range a.Emails {
		if e.ID == emailID {
			return i
		}
	}
	return -1
}

// Handled reports whether the email id has been marked complete.
func (a *Artifact) Handled(emailID string) bool {
	return slices.Contains(a.HandledEmailIDs, emailID)
}

// Summary is a display-oriented digest of an artifact used by list endpoints.
type Summary struct {
	ID             string       `json:"id"`
	Type           ArtifactType `json:"type"`
	Title          string       `json:"title"`
	EmailCount     int          `json:"emailCount"`
	DraftCount     int          `json:"draftCount"`
	HandledCount   int          `json:"handledCount"`
	UnhandledCount int          `json:"unhandledCount"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	Visible        bool         `json:"visible"`
}

// Summary computes the artifact's digest.
func (a *Artifact) Summary() Summary {
	return Summary{
		ID:             a.ID,
		Type:           a.Type,
		Title:          a.Title,
		EmailCount:     len(a.Emails),
		DraftCount:     len(a.Drafts),
		HandledCount:   len(a.HandledEmailIDs),
		UnhandledCount: len(a.Emails) - len(a.HandledEmailIDs),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Visible:        a.Visible,
	}
}

// Validate checks the artifact's structural invariants: a known type, unique
// email and draft ids, valid statuses, draft references resolving to present
// emails, and handled ids forming a subset of the email ids. Used when
// reconstructing state from a snapshot and by tests.
func (a *Artifact) Validate() error {
	if a.ID == "" {
		return &ValidationError{Field: "id", Reason: "empty"}
	}
	if !a.Type.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown artifact type %q", a.Type)}
	}
	emailIDs := make(map[string]bool, len(a.Emails))
	for _, e := range a.Emails {
		if emailIDs[e.ID] {
			return &ValidationError{Field: "emails", Reason: fmt.Sprintf("duplicate email id %q", e.ID)}
		}
		if !e.Status.Valid() {
			return &ValidationError{Field: "emails", Reason: fmt.Sprintf("email %q has unknown status %q", e.ID, e.Status)}
		}
		emailIDs[e.ID] = true
	}
	for id, d := range a.Drafts {
		if d.ID != id {
			return &ValidationError{Field: "drafts", Reason: fmt.Sprintf("draft key %q does not match draft id %q", id, d.ID)}
		}
		if !d.Status.Valid() {
			return &ValidationError{Field: "drafts", Reason: fmt.Sprintf("draft %q has unknown status %q", id, d.Status)}
		}
		if !emailIDs[d.EmailID] {
			return &ValidationError{Field: "drafts", Reason: fmt.Sprintf("draft %q references missing email %q", id, d.EmailID)}
		}
	}
	seen := make(map[string]bool, len(a.HandledEmailIDs))
	for _, id := range a.HandledEmailIDs {
		if seen[id] {
			return &ValidationError{Field: "handledEmailIds", Reason: fmt.Sprintf("duplicate id %q", id)}
		}
		if !emailIDs[id] {
			return &ValidationError{Field: "handledEmailIds", Reason: fmt.Sprintf("unknown email id %q", id)}
		}
		seen[id] = true
	}
	return nil
}

// ArtifactUpdate is a partial update applied to artifact-level fields.
// Nil fields are left unchanged.
type ArtifactUpdate struct {
	Title    *string
	Visible  *bool
	Metadata map[string]string
}
