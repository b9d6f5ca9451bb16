package drafter_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/inboxmesh/core"
	"github.com/hupe1980/inboxmesh/drafter"
	"github.com/hupe1980/inboxmesh/internal/testutil"
	"github.com/hupe1980/inboxmesh/store"
)

func TestReplySubject(t *testing.T) {
	assert.Equal(t, "Re: Q4 numbers", drafter.ReplySubject("Q4 numbers"))
	assert.Equal(t, "Re: Q4 numbers", drafter.ReplySubject("Re: Q4 numbers"))
	assert.Equal(t, "RE: Q4 numbers", drafter.ReplySubject("RE: Q4 numbers"))
}

func TestTemplateGenerator(t *testing.T) {
	email := testutil.Unread("e1")
	p, err := drafter.TemplateGenerator{}.DraftReply(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, email.Sender, p.To)
	assert.Equal(t, "Re: "+email.Subject, p.Subject)
	assert.Contains(t, p.Content, email.Subject)
}

func TestAutoDraftHonorsPriorityThreshold(t *testing.T) {
	s := store.New(func(o *store.Options) { o.AutoSaveInterval = 0 })
	require.NoError(t, s.Open())
	defer s.Close()

	low := testutil.Unread("low")
	low.Priority = 3
	high := testutil.Unread("high")
	high.Priority = 9
	handled := testutil.Unread("handled")
	handled.Priority = 9
	archived := testutil.Unread("archived")
	archived.Priority = 9
	archived.Status = core.EmailStatusArchived

	art, err := s.CreateArtifact(core.ArtifactTypeEmailList, "Inbox", []core.Email{low, high, handled, archived}, nil)
	require.NoError(t, err)
	require.NoError(t, s.MarkEmailComplete(art.ID, "handled"))

	drafts, err := drafter.AutoDraft(context.Background(), s, drafter.TemplateGenerator{}, art.ID)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "high", drafts[0].EmailID)

	got, err := s.GetArtifact(art.ID)
	require.NoError(t, err)
	assert.Len(t, got.Drafts, 1)
}

func TestAutoDraftUnknownArtifact(t *testing.T) {
	s := store.New(func(o *store.Options) { o.AutoSaveInterval = 0 })
	require.NoError(t, s.Open())
	defer s.Close()

	_, err := drafter.AutoDraft(context.Background(), s, drafter.TemplateGenerator{}, "missing")
	require.Error(t, err)
}
