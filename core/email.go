package core

import "time"

// EmailStatus describes where an email sits in its handling lifecycle.
// The vocabulary is part of the snapshot compatibility surface and must not
// be renamed.
type EmailStatus string

const (
	// EmailStatusUnread marks a message that has not been looked at yet.
	EmailStatusUnread EmailStatus = "unread"
	// EmailStatusRead marks a message that has been reviewed.
	EmailStatusRead EmailStatus = "read"
	// EmailStatusDrafted marks a message with a reply under preparation.
	EmailStatusDrafted EmailStatus = "drafted"
	// EmailStatusSent marks a message whose reply has gone out.
	EmailStatusSent EmailStatus = "sent"
	// EmailStatusArchived marks a message removed from active handling.
	EmailStatusArchived EmailStatus = "archived"
)

// Valid reports whether s is one of the known email statuses.
func (s EmailStatus) Valid() bool {
	switch s {
	case EmailStatusUnread, EmailStatusRead, EmailStatusDrafted, EmailStatusSent, EmailStatusArchived:
		return true
	}
	return false
}

// Email is a message under management. It is owned by exactly one Artifact's
// email collection and referenced, never owned, by Drafts via EmailID.
type Email struct {
	ID       string      `json:"id"`
	Sender   string      `json:"sender"`
	Subject  string      `json:"subject"`
	Content  string      `json:"content"`
	Date     time.Time   `json:"date"`
	Status   EmailStatus `json:"status"`
	Priority int         `json:"priority"`
	Tags     []string    `json:"tags,omitempty"`
	ThreadID string      `json:"threadId,omitempty"`
}

// Clone returns a deep copy safe for independent mutation.
func (e Email) Clone() Email {
	cp := e
	if e.Tags != nil {
		cp.Tags = make([]string, len(e.Tags))
		copy(cp.Tags, e.Tags)
	}
	return cp
}
