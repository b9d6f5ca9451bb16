package core

// The status state machine. Pure validation logic: no I/O, no shared state.
// The store consults it before applying any status field change; it never
// mutates state itself.

// EmailStatusAfterSend is the policy applied to the referenced email when a
// draft is sent. Archiving is chosen over "sent" because archiving is legal
// from every status, so sending a reply to an unread or read email cannot
// fail on the email side; "sent" stays the draft's terminal status.
const EmailStatusAfterSend = EmailStatusArchived

// emailTransitions lists the permitted email status edges. Archiving is
// handled separately: any status may move to archived.
var emailTransitions = map[EmailStatus]map[EmailStatus]bool{
	EmailStatusUnread:  {EmailStatusRead: true},
	EmailStatusRead:    {EmailStatusDrafted: true},
	EmailStatusDrafted: {EmailStatusSent: true},
}

// draftTransitions lists the permitted draft status edges. A direct
// draft -> sent edge permits sending an unreviewed draft; sent is terminal.
var draftTransitions = map[DraftStatus]map[DraftStatus]bool{
	DraftStatusDraft: {DraftStatusReady: true, DraftStatusSent: true},
	DraftStatusReady: {DraftStatusSent: true},
}

// ValidateEmailTransition returns nil when an email may move from one status
// to another, or an *InvalidTransitionError carrying both statuses.
func ValidateEmailTransition(from, to EmailStatus) error {
	if to == EmailStatusArchived {
		return nil
	}
	if emailTransitions[from][to] {
		return nil
	}
	return &InvalidTransitionError{Entity: "email", From: string(from), To: string(to)}
}

// ValidateDraftTransition returns nil when a draft may move from one status
// to another, or an *InvalidTransitionError carrying both statuses.
func ValidateDraftTransition(from, to DraftStatus) error {
	if draftTransitions[from][to] {
		return nil
	}
	return &InvalidTransitionError{Entity: "draft", From: string(from), To: string(to)}
}
