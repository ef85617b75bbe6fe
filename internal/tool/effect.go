package tool

import (
	"fmt"

	"github.com/UnknownOlympus/shooter/internal/geometry"
	"github.com/UnknownOlympus/shooter/internal/models"
)

// EffectKind tags a side effect produced by a transition.
type EffectKind int

// Side effects executed by the session.
const (
	EffectShowPreview EffectKind = iota + 1
	EffectClearPreview
	EffectShowOverlay
	EffectClearOverlay
	EffectStatus
	EffectPrompt
	EffectInsert
	EffectUpdate
	EffectRemove
	EffectContextMenu
	EffectDiscard
	EffectFailure
)

func (k EffectKind) String() string {
	names := map[EffectKind]string{
		EffectShowPreview:  "show_preview",
		EffectClearPreview: "clear_preview",
		EffectShowOverlay:  "show_overlay",
		EffectClearOverlay: "clear_overlay",
		EffectStatus:       "status",
		EffectPrompt:       "prompt",
		EffectInsert:       "insert",
		EffectUpdate:       "update",
		EffectRemove:       "remove",
		EffectContextMenu:  "context_menu",
		EffectDiscard:      "discard",
		EffectFailure:      "failure",
	}
	if name, ok := names[k]; ok {
		return name
	}

	return "unknown"
}

// Discard reasons.
const (
	DiscardShortDrag = "short_drag"
	DiscardCancelled = "prompt_cancelled"
	DiscardEscape    = "escape"
)

// Effect is a tagged side effect. Only the fields relevant to Kind are set.
//
//   - ShowPreview: Line, and Wedge when a new wedge is available (nil keeps the old one)
//   - ShowOverlay: Overlay
//   - Status: Message (empty clears)
//   - Prompt: Prompt
//   - Insert: Layer, Wedge, Attributes
//   - Update: FeatureID, Wedge (nil keeps geometry), Delta, Message (action name)
//   - Remove: FeatureID
//   - ContextMenu: Pixel
//   - Discard: Message (reason)
//   - Failure: Err
type Effect struct {
	Kind       EffectKind
	Line       []geometry.Point
	Wedge      geometry.Ring
	Overlay    Overlay
	Prompt     *PendingPrompt
	Layer      string
	Attributes models.SectorAttributes
	FeatureID  int64
	Delta      models.AttributeDelta
	Pixel      Pixel
	Message    string
	Err        error
}

// Overlay is the floating bearing / distance readout.
type Overlay struct {
	At       geometry.Point
	Bearing  float64
	Distance float64
	Snap     string
}

// Text renders the overlay as two lines.
func (o Overlay) Text() string {
	return fmt.Sprintf("AZ: %.1f°%s\nR: %.1f m", o.Bearing, o.Snap, o.Distance)
}

func clearEffects() []Effect {
	return []Effect{{Kind: EffectClearPreview}, {Kind: EffectClearOverlay}}
}
