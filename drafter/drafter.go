// Package drafter defines the draft-content generator collaborator: given an
// email under management, a Generator proposes reply content. The artifact
// store never calls a Generator itself; callers invoke one and feed the
// proposal into the store, keeping network I/O out of the store entirely.
package drafter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/inboxmesh/core"
)

// MinAutoDraftPriority is the threshold above which AutoDraft proposes a
// reply. Lower-priority mail is surfaced without a canned response.
const MinAutoDraftPriority = 7

// Proposal is generated reply content ready to be stored as a draft.
type Proposal struct {
	To      string
	Subject string
	Content string
}

// Generator proposes a reply for one email.
type Generator interface {
	DraftReply(ctx context.Context, email core.Email) (Proposal, error)
}

// Store is the subset of the artifact store AutoDraft needs.
type Store interface {
	GetArtifact(id string) (*core.Artifact, error)
	CreateDraft(artifactID, emailID, to, subject, content string) (core.Draft, error)
}

// AutoDraft proposes and stores a reply draft for every email in the
// artifact at or above MinAutoDraftPriority that is still actionable (not
// archived, not already handled). It returns the created drafts.
func AutoDraft(ctx context.Context, st Store, gen Generator, artifactID string) ([]core.Draft, error) {
	art, err := st.GetArtifact(artifactID)
	if err != nil {
		return nil, err
	}
	var drafts []core.Draft
	for _, email := range art.Emails {
		if email.Priority < MinAutoDraftPriority {
			continue
		}
		if email.Status == core.EmailStatusArchived || email.Status == core.EmailStatusSent {
			continue
		}
		if art.Handled(email.ID) {
			continue
		}
		proposal, err := gen.DraftReply(ctx, email)
		if err != nil {
			return drafts, fmt.Errorf("draft reply for email %q: %w", email.ID, err)
		}
		d, err := st.CreateDraft(artifactID, email.ID, proposal.To, proposal.Subject, proposal.Content)
		if err != nil {
			return drafts, err
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// ReplySubject prefixes the subject with "Re: " unless it already carries one.
func ReplySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// Prompt renders the instruction given to model-backed generators.
func Prompt(email core.Email) string {
	var b strings.Builder
	b.WriteString("Write a concise, professional reply to the following email. ")
	b.WriteString("Return only the reply body, no subject line and no signature placeholders.\n\n")
	fmt.Fprintf(&b, "From: %s\n", email.Sender)
	fmt.Fprintf(&b, "Subject: %s\n\n", email.Subject)
	b.WriteString(email.Content)
	return b.String()
}

// TemplateGenerator is a deterministic Generator producing a short
// acknowledgement. Useful for tests and setups without model credentials.
type TemplateGenerator struct{}

// DraftReply implements Generator.
func (TemplateGenerator) DraftReply(_ context.Context, email core.Email) (Proposal, error) {
	return Proposal{
		To:      email.Sender,
		Subject: ReplySubject(email.Subject),
		Content: fmt.Sprintf("Thank you for your email regarding %s. I'll review this and get back to you shortly.", email.Subject),
	}, nil
}
