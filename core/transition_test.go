package core

import (
	"errors"
	"testing"
)

func TestValidateEmailTransition(t *testing.T) {
	tests := []struct {
		from, to EmailStatus
		ok       bool
	}{
		{EmailStatusUnread, EmailStatusRead, true},
		{EmailStatusRead, EmailStatusDrafted, true},
		{EmailStatusDrafted, EmailStatusSent, true},
		{EmailStatusUnread, EmailStatusArchived, true},
		{EmailStatusRead, EmailStatusArchived, true},
		{EmailStatusDrafted, EmailStatusArchived, true},
		{EmailStatusSent, EmailStatusArchived, true},
		{EmailStatusArchived, EmailStatusArchived, true},
		{EmailStatusUnread, EmailStatusDrafted, false},
		{EmailStatusUnread, EmailStatusSent, false},
		{EmailStatusRead, EmailStatusUnread, false},
		{EmailStatusRead, EmailStatusSent, false},
		{EmailStatusDrafted, EmailStatusRead, false},
		{EmailStatusSent, EmailStatusUnread, false},
		{EmailStatusSent, EmailStatusRead, false},
		{EmailStatusSent, EmailStatusDrafted, false},
		{EmailStatusArchived, EmailStatusUnread, false},
		{EmailStatusUnread, EmailStatusUnread, false},
	}
	for _, tt := range tests {
		err := ValidateEmailTransition(tt.from, tt.to)
		if tt.ok && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tt.from, tt.to, err)
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("%s -> %s: expected error, got nil", tt.from, tt.to)
				continue
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s -> %s: error does not match ErrInvalidTransition: %v", tt.from, tt.to, err)
			}
			var ite *InvalidTransitionError
			if !errors.As(err, &ite) {
				t.Errorf("%s -> %s: error is not *InvalidTransitionError", tt.from, tt.to)
				continue
			}
			if ite.From != string(tt.from) || ite.To != string(tt.to) {
				t.Errorf("%s -> %s: error reports %q -> %q", tt.from, tt.to, ite.From, ite.To)
			}
		}
	}
}

func TestValidateDraftTransition(t *testing.T) {
	tests := []struct {
		from, to DraftStatus
		ok       bool
	}{
		{DraftStatusDraft, DraftStatusReady, true},
		{DraftStatusReady, DraftStatusSent, true},
		{DraftStatusDraft, DraftStatusSent, true},
		{DraftStatusReady, DraftStatusDraft, false},
		{DraftStatusSent, DraftStatusDraft, false},
		{DraftStatusSent, DraftStatusReady, false},
		{DraftStatusSent, DraftStatusSent, false},
		{DraftStatusDraft, DraftStatusDraft, false},
	}
	for _, tt := range tests {
		err := ValidateDraftTransition(tt.from, tt.to)
		if tt.ok && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tt.from, tt.to, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("%s -> %s: expected error, got nil", tt.from, tt.to)
		}
	}
}

func TestEmailStatusAfterSendIsAlwaysReachable(t *testing.T) {
	// The send policy must be legal from every status a referenced email can
	// hold at send time.
	for _, from := range []EmailStatus{EmailStatusUnread, EmailStatusRead, EmailStatusDrafted, EmailStatusSent} {
		if err := ValidateEmailTransition(from, EmailStatusAfterSend); err != nil {
			t.Errorf("send policy unreachable from %s: %v", from, err)
		}
	}
}
