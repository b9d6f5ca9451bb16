package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactCloneIsolation(t *testing.T) {
	now := time.Now().UTC()
	art := &Artifact{
		ID:    "a1",
		Type:  ArtifactTypeEmailList,
		Title: "inbox",
		Emails: []Email{
			{ID: "e1", Sender: "a@example.com", Status: EmailStatusUnread, Tags: []string{"urgent"}},
		},
		Drafts: map[string]Draft{
			"d1": {ID: "d1", EmailID: "e1", Status: DraftStatusDraft},
		},
		HandledEmailIDs: []string{"e1"},
		CreatedAt:       now,
		UpdatedAt:       now,
		Visible:         true,
		Metadata:        map[string]string{"source": "gmail"},
	}

	cp := art.Clone()
	cp.Title = "changed"
	cp.Emails[0].Status = EmailStatusArchived
	cp.Emails[0].Tags[0] = "later"
	cp.Drafts["d2"] = Draft{ID: "d2", EmailID: "e1"}
	cp.HandledEmailIDs[0] = "other"
	cp.Metadata["source"] = "imap"

	assert.Equal(t, "inbox", art.Title)
	assert.Equal(t, EmailStatusUnread, art.Emails[0].Status)
	assert.Equal(t, "urgent", art.Emails[0].Tags[0])
	assert.Len(t, art.Drafts, 1)
	assert.Equal(t, []string{"e1"}, art.HandledEmailIDs)
	assert.Equal(t, "gmail", art.Metadata["source"])
}

func TestArtifactSummary(t *testing.T) {
	art := &Artifact{
		ID:    "a1",
		Type:  ArtifactTypeEmailList,
		Title: "inbox",
		Emails: []Email{
			{ID: "e1"}, {ID: "e2"}, {ID: "e3"},
		},
		Drafts:          map[string]Draft{"d1": {ID: "d1", EmailID: "e1"}},
		HandledEmailIDs: []string{"e2"},
		Visible:         true,
	}
	s := art.Summary()
	assert.Equal(t, 3, s.EmailCount)
	assert.Equal(t, 1, s.DraftCount)
	assert.Equal(t, 1, s.HandledCount)
	assert.Equal(t, 2, s.UnhandledCount)
	assert.True(t, s.Visible)
}

func TestArtifactTypeValid(t *testing.T) {
	for _, typ := range []ArtifactType{
		ArtifactTypeEmailList, ArtifactTypeEmailDraft, ArtifactTypeCalendarEvents,
		ArtifactTypeTaskList, ArtifactTypeDocument,
	} {
		assert.True(t, typ.Valid(), string(typ))
	}
	assert.False(t, ArtifactType("spreadsheet").Valid())
}

func TestErrorSentinels(t *testing.T) {
	require.True(t, errors.Is(&NotFoundError{Kind: "artifact", ID: "x"}, ErrNotFound))
	require.True(t, errors.Is(&ValidationError{Field: "to", Reason: "empty"}, ErrValidation))
	require.True(t, errors.Is(&InvalidTransitionError{Entity: "draft", From: "sent", To: "draft"}, ErrInvalidTransition))

	pe := &PersistenceError{Op: "save", Err: errors.New("disk full")}
	require.True(t, errors.Is(pe, ErrPersistence))
	assert.Contains(t, pe.Error(), "disk full")
}
