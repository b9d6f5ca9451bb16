package testutil

import (
	"fmt"
	"time"

	"github.com/hupe1980/inboxmesh/core"
)

// ArtifactBuilder helps construct artifacts with fluent chaining for tests.
// Example:
//
//	art := NewArtifactBuilder("a1").Email(Unread("e1")).Draft("d1", "e1").Build()
type ArtifactBuilder struct {
	id      string
	typ     core.ArtifactType
	title   string
	emails  []core.Email
	drafts  map[string]core.Draft
	handled []string
	created time.Time
}

// NewArtifactBuilder creates a builder for an email-list artifact with the
// given id. Use chainable methods then call Build.
func NewArtifactBuilder(id string) *ArtifactBuilder {
	return &ArtifactBuilder{
		id:      id,
		typ:     core.ArtifactTypeEmailList,
		title:   "Test Artifact",
		drafts:  map[string]core.Draft{},
		created: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

// Type overrides the artifact type (chainable).
func (b *ArtifactBuilder) Type(t core.ArtifactType) *ArtifactBuilder {
	b.typ = t
	return b
}

// Title overrides the artifact title (chainable).
func (b *ArtifactBuilder) Title(t string) *ArtifactBuilder {
	b.title = t
	return b
}

// Email appends an email to the artifact (chainable).
func (b *ArtifactBuilder) Email(e core.Email) *ArtifactBuilder {
	b.emails = append(b.emails, e)
	return b
}

// Draft adds a draft referencing the given email id (chainable).
func (b *ArtifactBuilder) Draft(id, emailID string) *ArtifactBuilder {
	b.drafts[id] = core.Draft{
		ID:        id,
		EmailID:   emailID,
		To:        "someone@example.com",
		Subject:   "Re: test",
		Content:   "draft body",
		CreatedAt: b.created,
		UpdatedAt: b.created,
		Status:    core.DraftStatusDraft,
	}
	return b
}

// Handled marks email ids as complete (chainable).
func (b *ArtifactBuilder) Handled(emailIDs ...string) *ArtifactBuilder {
	b.handled = append(b.handled, emailIDs...)
	return b
}

// Build returns a *core.Artifact with the accumulated contents.
func (b *ArtifactBuilder) Build() *core.Artifact {
	emails := make([]core.Email, len(b.emails))
	copy(emails, b.emails)
	handled := make([]string, len(b.handled))
	copy(handled, b.handled)
	drafts := make(map[string]core.Draft, len(b.drafts))
	for k, v := range b.drafts {
		drafts[k] = v
	}
	return &core.Artifact{
		ID:              b.id,
		Type:            b.typ,
		Title:           b.title,
		Emails:          emails,
		Drafts:          drafts,
		HandledEmailIDs: handled,
		CreatedAt:       b.created,
		UpdatedAt:       b.created,
		Visible:         true,
	}
}

// Unread returns an unread email fixture with deterministic fields derived
// from the id.
func Unread(id string) core.Email {
	return core.Email{
		ID:       id,
		Sender:   fmt.Sprintf("%s@example.com", id),
		Subject:  fmt.Sprintf("Subject %s", id),
		Content:  fmt.Sprintf("Body %s", id),
		Date:     time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
		Status:   core.EmailStatusUnread,
		Priority: 5,
	}
}
