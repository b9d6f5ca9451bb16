package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/inboxmesh/core"
	"github.com/hupe1980/inboxmesh/server"
	"github.com/hupe1980/inboxmesh/store"
)

func newTestServer(t *testing.T, optFns ...func(o *server.Options)) (*server.Server, *store.Store) {
	t.Helper()
	st := store.New(func(o *store.Options) { o.AutoSaveInterval = 0 })
	require.NoError(t, st.Open())
	t.Cleanup(func() { st.Close() })
	return server.New(st, optFns...), st
}

func doJSON(t *testing.T, srv *server.Server, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCreateAndGetArtifact(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/artifacts", map[string]any{
		"type":  "email-list",
		"title": "Inbox triage",
		"emails": []map[string]any{
			{"id": "e1", "sender": "alice@example.com", "subject": "Hello", "priority": 5},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[core.Artifact](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, core.EmailStatusUnread, created.Emails[0].Status)

	resp = doJSON(t, srv, http.MethodGet, "/api/artifacts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[core.Artifact](t, resp)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Inbox triage", got.Title)
}

func TestGetArtifactNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, srv, http.MethodGet, "/api/artifacts/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateArtifactRejectsUnknownType(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, srv, http.MethodPost, "/api/artifacts", map[string]any{
		"type":  "shopping-list",
		"title": "Nope",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListArtifacts(t *testing.T) {
	srv, st := newTestServer(t)
	_, err := st.CreateArtifact(core.ArtifactTypeEmailList, "One", nil, nil)
	require.NoError(t, err)
	_, err = st.CreateArtifact(core.ArtifactTypeEmailList, "Two", nil, nil)
	require.NoError(t, err)

	resp := doJSON(t, srv, http.MethodGet, "/api/artifacts", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summaries := decode[[]core.Summary](t, resp)
	require.Len(t, summaries, 2)
}

func TestUpdateAndDeleteArtifact(t *testing.T) {
	srv, st := newTestServer(t)
	art, err := st.CreateArtifact(core.ArtifactTypeEmailList, "Before", nil, nil)
	require.NoError(t, err)

	resp := doJSON(t, srv, http.MethodPatch, "/api/artifacts/"+art.ID, map[string]any{"title": "After"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[core.Artifact](t, resp)
	assert.Equal(t, "After", updated.Title)

	resp = doJSON(t, srv, http.MethodDelete, "/api/artifacts/"+art.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodDelete, "/api/artifacts/"+art.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDraftLifecycleOverHTTP(t *testing.T) {
	srv, st := newTestServer(t)
	art, err := st.CreateArtifact(core.ArtifactTypeEmailList, "Inbox", []core.Email{
		{ID: "e1", Sender: "alice@example.com", Subject: "Hello"},
	}, nil)
	require.NoError(t, err)

	resp := doJSON(t, srv, http.MethodPost, "/api/artifacts/"+art.ID+"/drafts", map[string]any{
		"emailId": "e1",
		"to":      "alice@example.com",
		"subject": "Re: Hello",
		"content": "Hi Alice,",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	draft := decode[core.Draft](t, resp)
	assert.Equal(t, core.DraftStatusDraft, draft.Status)

	base := fmt.Sprintf("/api/artifacts/%s/drafts/%s", art.ID, draft.ID)

	resp = doJSON(t, srv, http.MethodPatch, base, map[string]any{"status": "ready"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[core.Draft](t, resp)
	assert.Equal(t, core.DraftStatusReady, updated.Status)

	resp = doJSON(t, srv, http.MethodPost, base+"/send", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sent := decode[struct {
		Draft     core.Draft `json:"draft"`
		Delivered bool       `json:"delivered"`
	}](t, resp)
	assert.Equal(t, core.DraftStatusSent, sent.Draft.Status)
	assert.False(t, sent.Delivered)

	// Second send conflicts: sent is terminal.
	resp = doJSON(t, srv, http.MethodPost, base+"/send", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	got, err := st.GetArtifact(art.ID)
	require.NoError(t, err)
	assert.Equal(t, core.EmailStatusArchived, got.Emails[0].Status)
}

func TestSendDraftReportsDeliveryFailure(t *testing.T) {
	srv, st := newTestServer(t, func(o *server.Options) {
		o.Mailer = failingMailer{}
		o.From = "bot@example.com"
	})
	art, err := st.CreateArtifact(core.ArtifactTypeEmailList, "Inbox", []core.Email{
		{ID: "e1", Sender: "alice@example.com", Subject: "Hello"},
	}, nil)
	require.NoError(t, err)
	draft, err := st.CreateDraft(art.ID, "e1", "alice@example.com", "Re: Hello", "Hi")
	require.NoError(t, err)

	resp := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/artifacts/%s/drafts/%s/send", art.ID, draft.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[struct {
		Delivered     bool   `json:"delivered"`
		DeliveryError string `json:"deliveryError"`
	}](t, resp)
	assert.False(t, result.Delivered)
	assert.Contains(t, result.DeliveryError, "relay unavailable")
}

func TestMarkEmailComplete(t *testing.T) {
	srv, st := newTestServer(t)
	art, err := st.CreateArtifact(core.ArtifactTypeEmailList, "Inbox", []core.Email{
		{ID: "e1", Sender: "alice@example.com", Subject: "Hello"},
	}, nil)
	require.NoError(t, err)

	resp := doJSON(t, srv, http.MethodPost, "/api/artifacts/"+art.ID+"/emails/e1/complete", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, "/api/artifacts/"+art.ID+"/emails/missing/complete", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	got, err := st.GetArtifact(art.ID)
	require.NoError(t, err)
	assert.True(t, got.Handled("e1"))
}

type failingMailer struct{}

func (failingMailer) Send(context.Context, string, core.Draft) error {
	return fmt.Errorf("relay unavailable")
}
