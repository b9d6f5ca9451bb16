package inboxmesh_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/inboxmesh"
	"github.com/hupe1980/inboxmesh/core"
)

func TestFacadeLifecycleWithPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	mesh := inboxmesh.New(func(o *inboxmesh.Options) {
		o.SnapshotPath = path
		o.AutoSaveInterval = 0
	})
	require.NoError(t, mesh.Open())

	art, err := mesh.Store().CreateArtifact(core.ArtifactTypeEmailList, "Inbox", []core.Email{
		{ID: "e1", Sender: "alice@example.com", Subject: "Budget", Priority: 9},
	}, nil)
	require.NoError(t, err)

	drafts, err := mesh.AutoDraft(context.Background(), art.ID)
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	sent, err := mesh.Send(context.Background(), art.ID, drafts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, core.DraftStatusSent, sent.Status)

	require.NoError(t, mesh.Close())

	// A fresh instance over the same path sees the sent draft and the
	// archived email.
	reopened := inboxmesh.New(func(o *inboxmesh.Options) {
		o.SnapshotPath = path
		o.AutoSaveInterval = 0
	})
	require.NoError(t, reopened.Open())
	defer reopened.Close()

	got, err := reopened.Store().GetArtifact(art.ID)
	require.NoError(t, err)
	assert.Equal(t, core.EmailStatusArchived, got.Emails[0].Status)
	assert.Equal(t, core.DraftStatusSent, got.Drafts[drafts[0].ID].Status)
}

func TestFacadeSubscribe(t *testing.T) {
	mesh := inboxmesh.New(func(o *inboxmesh.Options) { o.AutoSaveInterval = 0 })
	require.NoError(t, mesh.Open())
	defer mesh.Close()

	sub := mesh.Subscribe()
	defer mesh.Unsubscribe(sub)

	art, err := mesh.Store().CreateArtifact(core.ArtifactTypeEmailList, "Inbox", nil, nil)
	require.NoError(t, err)

	n := <-sub.Notifications()
	assert.Equal(t, art.ID, n.ArtifactID)
	assert.Equal(t, core.ActionCreated, n.Action)
}
