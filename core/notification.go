package core

import "time"

// Action names the kind of mutation that produced a notification.
type Action string

const (
	// ActionCreated signals a freshly created artifact.
	ActionCreated Action = "created"
	// ActionUpdated signals artifact-level field changes.
	ActionUpdated Action = "updated"
	// ActionDraftCreated signals a new draft inside an artifact.
	ActionDraftCreated Action = "draft_created"
	// ActionDraftUpdated signals draft content or status changes.
	ActionDraftUpdated Action = "draft_updated"
	// ActionDraftSent signals a draft transitioned to sent.
	ActionDraftSent Action = "draft_sent"
	// ActionEmailHandled signals an email marked complete.
	ActionEmailHandled Action = "email_handled"
	// ActionDeleted signals artifact removal.
	ActionDeleted Action = "deleted"
)

// Notification is delivered to every registered observer after each accepted
// mutation. Artifact carries a clone of the new state for efficiency and is
// nil after deletion; observers that fall behind re-read via GetArtifact
// rather than replaying intermediate events.
type Notification struct {
	ArtifactID string    `json:"artifactId"`
	Action     Action    `json:"action"`
	Artifact   *Artifact `json:"artifact,omitempty"`
	Seq        uint64    `json:"seq"`
	Timestamp  time.Time `json:"timestamp"`
}
