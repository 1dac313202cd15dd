package domain

import "github.com/google/uuid"

// PanelKind tags the client's single side panel. Thread and profile views are
// mutually exclusive by construction: opening one replaces the other.
type PanelKind int

const (
	PanelClosed PanelKind = iota
	PanelThread
	PanelProfile
)

type PanelState struct {
	kind PanelKind
	id   uuid.UUID
}

func ClosedPanel() PanelState {
	return PanelState{kind: PanelClosed}
}

func ThreadPanel(rootMessageID uuid.UUID) PanelState {
	return PanelState{kind: PanelThread, id: rootMessageID}
}

func ProfilePanel(memberID uuid.UUID) PanelState {
	return PanelState{kind: PanelProfile, id: memberID}
}

func (p PanelState) Kind() PanelKind {
	return p.kind
}

// ThreadRoot returns the open thread's root message id, if a thread is open.
func (p PanelState) ThreadRoot() (uuid.UUID, bool) {
	if p.kind != PanelThread {
		return uuid.Nil, false
	}
	return p.id, true
}

// ProfileMember returns the viewed member id, if a profile is open.
func (p PanelState) ProfileMember() (uuid.UUID, bool) {
	if p.kind != PanelProfile {
		return uuid.Nil, false
	}
	return p.id, true
}
