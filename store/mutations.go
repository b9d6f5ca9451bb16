package store

import (
	"errors"
	"fmt"

	"github.com/hupe1980/inboxmesh/core"
)

// errNoChange signals an idempotent no-op from a mutation closure: the
// artifact is left untouched and no notification is published.
var errNoChange = errors.New("no change")

// mutate runs fn against the artifact under its exclusive lock. On success it
// refreshes UpdatedAt, clones the new state and publishes a notification
// after the state lock is released, preserving per-artifact ordering via the
// entry's notify lock. The returned clone is shared with the notification;
// operations that expose state to callers copy again.
func (s *Store) mutate(artifactID string, fn func(a *core.Artifact) (core.Action, error)) (*core.Artifact, error) {
	e := s.lookup(artifactID)
	if e == nil {
		return nil, &core.NotFoundError{Kind: "artifact", ID: artifactID}
	}
	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return nil, &core.NotFoundError{Kind: "artifact", ID: artifactID}
	}
	action, err := fn(e.artifact)
	if err != nil {
		if errors.Is(err, errNoChange) {
			clone := e.artifact.Clone()
			e.mu.Unlock()
			return clone, nil
		}
		e.mu.Unlock()
		return nil, err
	}
	s.touch(e.artifact)
	clone := e.artifact.Clone()
	n := core.Notification{
		ArtifactID: artifactID,
		Action:     action,
		Artifact:   clone,
		Seq:        s.seq.Add(1),
		Timestamp:  s.now(),
	}
	e.notifyMu.Lock()
	e.mu.Unlock()
	s.publish(n)
	e.notifyMu.Unlock()
	return clone, nil
}

// CreateArtifact stores a new artifact bundling the given emails. Emails with
// an empty status default to unread; duplicate email ids are rejected.
func (s *Store) CreateArtifact(typ core.ArtifactType, title string, emails []core.Email, metadata map[string]string) (*core.Artifact, error) {
	if !typ.Valid() {
		return nil, &core.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown artifact type %q", typ)}
	}
	seen := make(map[string]bool, len(emails))
	cloned := make([]core.Email, len(emails))
	for i, e := range emails {
		if e.ID == "" {
			return nil, &core.ValidationError{Field: "emails", Reason: "email id is empty"}
		}
		if seen[e.ID] {
			return nil, &core.ValidationError{Field: "emails", Reason: fmt.Sprintf("duplicate email id %q", e.ID)}
		}
		seen[e.ID] = true
		cp := e.Clone()
		if cp.Status == "" {
			cp.Status = core.EmailStatusUnread
		}
		if !cp.Status.Valid() {
			return nil, &core.ValidationError{Field: "emails", Reason: fmt.Sprintf("email %q has unknown status %q", e.ID, e.Status)}
		}
		cloned[i] = cp
	}

	now := s.now()
	art := &core.Artifact{
		ID:              core.NewID(),
		Type:            typ,
		Title:           title,
		Emails:          cloned,
		Drafts:          make(map[string]core.Draft),
		HandledEmailIDs: []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
		Visible:         true,
	}
	if metadata != nil {
		art.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			art.Metadata[k] = v
		}
	}

	e := &entry{artifact: art}
	s.mu.Lock()
	s.entries[art.ID] = e
	n := core.Notification{
		ArtifactID: art.ID,
		Action:     core.ActionCreated,
		Artifact:   art.Clone(),
		Seq:        s.seq.Add(1),
		Timestamp:  now,
	}
	e.notifyMu.Lock()
	s.mu.Unlock()
	s.publish(n)
	e.notifyMu.Unlock()

	return art.Clone(), nil
}

// UpdateArtifact applies a partial update to artifact-level fields (title,
// visibility, metadata merge).
func (s *Store) UpdateArtifact(id string, upd core.ArtifactUpdate) (*core.Artifact, error) {
	if upd.Title == nil && upd.Visible == nil && upd.Metadata == nil {
		return nil, &core.ValidationError{Field: "fields", Reason: "no fields to update"}
	}
	clone, err := s.mutate(id, func(a *core.Artifact) (core.Action, error) {
		if upd.Title != nil {
			if *upd.Title == "" {
				return "", &core.ValidationError{Field: "title", Reason: "empty"}
			}
			a.Title = *upd.Title
		}
		if upd.Visible != nil {
			a.Visible = *upd.Visible
		}
		if upd.Metadata != nil {
			if a.Metadata == nil {
				a.Metadata = make(map[string]string, len(upd.Metadata))
			}
			for k, v := range upd.Metadata {
				a.Metadata[k] = v
			}
		}
		return core.ActionUpdated, nil
	})
	if err != nil {
		return nil, err
	}
	return clone.Clone(), nil
}

// DeleteArtifact removes the artifact and its drafts. A second call for the
// same id reports NotFound.
func (s *Store) DeleteArtifact(id string) error {
	s.mu.Lock()
	e := s.entries[id]
	if e == nil {
		s.mu.Unlock()
		return &core.NotFoundError{Kind: "artifact", ID: id}
	}
	e.mu.Lock()
	e.deleted = true
	delete(s.entries, id)
	n := core.Notification{
		ArtifactID: id,
		Action:     core.ActionDeleted,
		Seq:        s.seq.Add(1),
		Timestamp:  s.now(),
	}
	e.notifyMu.Lock()
	e.mu.Unlock()
	s.mu.Unlock()
	s.publish(n)
	e.notifyMu.Unlock()
	return nil
}

// CreateDraft adds a reply draft referencing an email in the artifact. The
// draft starts in status "draft".
func (s *Store) CreateDraft(artifactID, emailID, to, subject, content string) (core.Draft, error) {
	if to == "" {
		return core.Draft{}, &core.ValidationError{Field: "to", Reason: "empty"}
	}
	if subject == "" {
		return core.Draft{}, &core.ValidationError{Field: "subject", Reason: "empty"}
	}
	var draft core.Draft
	_, err := s.mutate(artifactID, func(a *core.Artifact) (core.Action, error) {
		if a.EmailIndex(emailID) < 0 {
			return "", &core.NotFoundError{Kind: "email", ID: emailID}
		}
		now := s.now()
		draft = core.Draft{
			ID:        core.NewID(),
			EmailID:   emailID,
			To:        to,
			Subject:   subject,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
			Status:    core.DraftStatusDraft,
		}
		a.Drafts[draft.ID] = draft
		return core.ActionDraftCreated, nil
	})
	if err != nil {
		return core.Draft{}, err
	}
	return draft, nil
}

// UpdateDraft applies a partial update to a draft. Status changes are routed
// through the state machine; setting the current status again is a no-op for
// that field.
func (s *Store) UpdateDraft(artifactID, draftID string, upd core.DraftUpdate) (core.Draft, error) {
	if upd.To == nil && upd.Subject == nil && upd.Content == nil && upd.Status == nil {
		return core.Draft{}, &core.ValidationError{Field: "fields", Reason: "no fields to update"}
	}
	var draft core.Draft
	_, err := s.mutate(artifactID, func(a *core.Artifact) (core.Action, error) {
		d, ok := a.Drafts[draftID]
		if !ok {
			return "", &core.NotFoundError{Kind: "draft", ID: draftID}
		}
		if upd.Status != nil && *upd.Status != d.Status {
			if !upd.Status.Valid() {
				return "", &core.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown draft status %q", *upd.Status)}
			}
			if err := core.ValidateDraftTransition(d.Status, *upd.Status); err != nil {
				return "", err
			}
			d.Status = *upd.Status
		}
		if upd.To != nil {
			if *upd.To == "" {
				return "", &core.ValidationError{Field: "to", Reason: "empty"}
			}
			d.To = *upd.To
		}
		if upd.Subject != nil {
			if *upd.Subject == "" {
				return "", &core.ValidationError{Field: "subject", Reason: "empty"}
			}
			d.Subject = *upd.Subject
		}
		if upd.Content != nil {
			d.Content = *upd.Content
		}
		if now := s.now(); now.After(d.UpdatedAt) {
			d.UpdatedAt = now
		}
		a.Drafts[draftID] = d
		draft = d
		return core.ActionDraftUpdated, nil
	})
	if err != nil {
		return core.Draft{}, err
	}
	return draft, nil
}

// SendDraft atomically transitions the draft to sent and the referenced
// email per the send policy (archived). The actual outbound delivery is
// performed by a mail-send collaborator sequenced around this call by the
// caller; the store performs no network I/O.
func (s *Store) SendDraft(artifactID, draftID string) (core.Draft, error) {
	var draft core.Draft
	_, err := s.mutate(artifactID, func(a *core.Artifact) (core.Action, error) {
		d, ok := a.Drafts[draftID]
		if !ok {
			return "", &core.NotFoundError{Kind: "draft", ID: draftID}
		}
		if err := core.ValidateDraftTransition(d.Status, core.DraftStatusSent); err != nil {
			return "", err
		}
		idx := a.EmailIndex(d.EmailID)
		if idx < 0 {
			return "", &core.NotFoundError{Kind: "email", ID: d.EmailID}
		}
		if a.Emails[idx].Status != core.EmailStatusAfterSend {
			if err := core.ValidateEmailTransition(a.Emails[idx].Status, core.EmailStatusAfterSend); err != nil {
				return "", err
			}
			a.Emails[idx].Status = core.EmailStatusAfterSend
		}
		d.Status = core.DraftStatusSent
		if now := s.now(); now.After(d.UpdatedAt) {
			d.UpdatedAt = now
		}
		a.Drafts[draftID] = d
		draft = d
		return core.ActionDraftSent, nil
	})
	if err != nil {
		return core.Draft{}, err
	}
	return draft, nil
}

// MarkEmailComplete records the email as handled. Repeated calls are no-ops:
// state, UpdatedAt and subscribers are all left untouched.
func (s *Store) MarkEmailComplete(artifactID, emailID string) error {
	_, err := s.mutate(artifactID, func(a *core.Artifact) (core.Action, error) {
		if a.EmailIndex(emailID) < 0 {
			return "", &core.NotFoundError{Kind: "email", ID: emailID}
		}
		if a.Handled(emailID) {
			return "", errNoChange
		}
		a.HandledEmailIDs = append(a.HandledEmailIDs, emailID)
		return core.ActionEmailHandled, nil
	})
	return err
}
