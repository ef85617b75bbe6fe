package tool

import (
	"github.com/UnknownOlympus/shooter/internal/geometry"
	"github.com/UnknownOlympus/shooter/internal/models"
)

// Phase is the active tool state.
type Phase int

// Tool phases. Exactly one holds at a time.
const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhasePicking
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhasePicking:
		return "picking"
	default:
		return "unknown"
	}
}

// State is the tool state. Center and LastPointer are set while dragging;
// Target, TargetLayer and Saved while picking a new center.
type State struct {
	Phase       Phase
	Center      geometry.Point
	LastPointer geometry.Point
	Target      int64
	TargetLayer string
	Saved       geometry.SectorSpec
}

// Modifiers tracks held modifier keys.
type Modifiers struct {
	Ctrl  bool
	Shift bool
}

// SnapLabel describes the active snap step for the overlay.
func (m Modifiers) SnapLabel() string {
	switch {
	case m.Ctrl && m.Shift:
		return " (10°)"
	case m.Ctrl:
		return " (5°)"
	default:
		return ""
	}
}

// PromptPurpose says what a pending prompt answer is used for.
type PromptPurpose int

// Prompt purposes.
const (
	PromptSectorID PromptPurpose = iota + 1
	PromptSiteID
	PromptRename
)

func (p PromptPurpose) String() string {
	switch p {
	case PromptSectorID:
		return "sector_id"
	case PromptSiteID:
		return "site_id"
	case PromptRename:
		return "rename"
	default:
		return "unknown"
	}
}

// PendingPrompt is a suspended transition waiting for operator text.
type PendingPrompt struct {
	Purpose PromptPurpose
	Title   string
	Label   string
	Default string

	Center   geometry.Point // Center is the drag center or the clicked site position.
	Release  geometry.Point // Release is where the drag ended.
	Distance float64        // Distance is the measured drag length in meters.
	Mods     Modifiers      // Mods are the modifiers held at release.
	Feature  models.Feature // Feature is the rename target.
}

// Snapshot is everything a transition reads and writes.
type Snapshot struct {
	State   State
	Mods    Modifiers
	Pending *PendingPrompt

	overlayAt    Pixel
	overlayShown bool
}

// Idle reports whether nothing is in progress.
func (s Snapshot) Idle() bool {
	return s.State.Phase == PhaseIdle && s.Pending == nil
}

// reset drops every transient field but keeps the modifier flags.
func (s Snapshot) reset() Snapshot {
	return Snapshot{Mods: s.Mods}
}
