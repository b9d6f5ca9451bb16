package core

import "time"

// DraftStatus describes where a draft reply sits in its lifecycle.
// "sent" is terminal.
type DraftStatus string

const (
	// DraftStatusDraft marks a reply still being written.
	DraftStatusDraft DraftStatus = "draft"
	// DraftStatusReady marks a reply reviewed and approved for sending.
	DraftStatusReady DraftStatus = "ready"
	// DraftStatusSent marks a reply that has been handed to delivery.
	DraftStatusSent DraftStatus = "sent"
)

// Valid reports whether s is one of the known draft statuses.
func (s DraftStatus) Valid() bool {
	switch s {
	case DraftStatusDraft, DraftStatusReady, DraftStatusSent:
		return true
	}
	return false
}

// Draft is a reply under preparation for one Email. Its EmailID must name an
// Email present in the same Artifact; a Draft is never deleted independently,
// only together with its owning Artifact.
type Draft struct {
	ID        string      `json:"id"`
	EmailID   string      `json:"emailId"`
	To        string      `json:"to"`
	Subject   string      `json:"subject"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Status    DraftStatus `json:"status"`
}

// DraftUpdate is a partial update applied to a Draft. Nil fields are left
// unchanged; status changes are routed through the state machine by the store.
type DraftUpdate struct {
	To      *string
	Subject *string
	Content *string
	Status  *DraftStatus
}
