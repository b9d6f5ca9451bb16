package core

import "github.com/google/uuid"

// NewID generates a new unique identifier for artifacts, emails and drafts.
func NewID() string {
	return uuid.New().String()
}
