package models

import "time"

// DragMode tells whether a gesture moves a class or resizes it from the bottom handle.
type DragMode string

const (
	DragModeMove   DragMode = "move"
	DragModeResize DragMode = "resize"
)

// DragEventType enumerates the messages consumed by the drag reducer.
type DragEventType string

const (
	DragStarted DragEventType = "drag_started"
	DragMoved   DragEventType = "drag_moved"
	DragEnded   DragEventType = "drag_ended"
)

// DragEvent is one pointer message. DX and DY are cumulative pixel deltas since DragStarted.
type DragEvent struct {
	Type    DragEventType `json:"type" validate:"required,oneof=drag_started drag_moved drag_ended"`
	ClassID string        `json:"classId"`
	Mode    DragMode      `json:"mode" validate:"omitempty,oneof=move resize"`
	DX      int           `json:"dx"`
	DY      int           `json:"dy"`
}

// DragPhase is the state of the gesture state machine.
type DragPhase string

const (
	PhaseIdle                DragPhase = "idle"
	PhaseDragging            DragPhase = "dragging"
	PhasePendingConfirmation DragPhase = "pending_confirmation"
)

// ClassProposal is the set of fields a gesture proposes to change.
type ClassProposal struct {
	Day       string `json:"day"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// PendingChange is an optimistically applied edit awaiting confirm or cancel.
type PendingChange struct {
	ClassID          string        `json:"classId"`
	OriginalSnapshot Class         `json:"originalSnapshot"`
	ProposedUpdates  ClassProposal `json:"proposedUpdates"`
	CreatedAt        time.Time     `json:"createdAt"`
}

// DragResult is what the reducer reports back after each event.
type DragResult struct {
	Phase   DragPhase      `json:"phase"`
	ClassID string         `json:"classId,omitempty"`
	Preview *ClassProposal `json:"preview,omitempty"`
	Pending *PendingChange `json:"pending,omitempty"`
	// Click is set when a gesture ended below the move threshold.
	Click bool `json:"click,omitempty"`
}
