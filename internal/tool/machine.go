package tool

import (
	"strconv"
	"strings"

	"github.com/UnknownOlympus/shooter/internal/config"
	"github.com/UnknownOlympus/shooter/internal/geometry"
	"github.com/UnknownOlympus/shooter/internal/models"
)

// Variant selects the authoring gesture.
type Variant int

// Tool variants.
const (
	VariantSector Variant = iota + 1 // drag to author one sector
	VariantSite                      // click to author a 3-sector site
)

func (v Variant) String() string {
	switch v {
	case VariantSector:
		return "sector"
	case VariantSite:
		return "site"
	default:
		return "unknown"
	}
}

// Gesture thresholds.
const (
	MinDragMeters      = 5.0 // shorter drags are cancelled on release
	MinPreviewMeters   = 1.0 // shorter drags show the line only
	OverlayThresholdPx = 3   // overlay updates need this much pointer travel
)

// Prompt texts.
const (
	sectorPromptTitle = "Input Sector ID"
	sectorPromptLabel = "Input Dummy ID for this sector:"
	sitePromptTitle   = "Input Site ID"
	sitePromptLabel   = "Input Dummy ID / Site ID:"
	newSectorLabel    = "New Sector"
	pickStatus        = "Click new center on map..."
)

// SiteBearings are the boresights of the three sectors of a site.
var SiteBearings = [3]float64{0, 120, 240}

// Machine computes tool transitions. It holds only read-only collaborators,
// so every method is a function of its arguments.
type Machine struct {
	variant  Variant
	settings config.Settings
	engine   *geometry.Engine
	measurer geometry.Measurer
}

// NewMachine creates a transition machine for a tool variant.
func NewMachine(variant Variant, settings config.Settings, engine *geometry.Engine, measurer geometry.Measurer) *Machine {
	return &Machine{variant: variant, settings: settings, engine: engine, measurer: measurer}
}

// Variant returns the tool variant.
func (m *Machine) Variant() Variant {
	return m.variant
}

// Press handles a pointer press.
func (m *Machine) Press(s Snapshot, ev Event) (Snapshot, []Effect) {
	if s.Pending != nil || ev.Button != ButtonLeft {
		return s, nil
	}
	if s.State.Phase == PhasePicking {
		return m.resolvePick(s, ev.Map)
	}

	switch m.variant {
	case VariantSector:
		if s.State.Phase == PhaseDragging {
			return s, nil
		}
		next := s.reset()
		next.State = State{Phase: PhaseDragging, Center: ev.Map, LastPointer: ev.Map}

		return next, []Effect{{Kind: EffectClearPreview}}
	case VariantSite:
		pending := &PendingPrompt{
			Purpose: PromptSiteID,
			Title:   sitePromptTitle,
			Label:   sitePromptLabel,
			Center:  ev.Map,
		}
		s.Pending = pending

		return s, []Effect{{Kind: EffectPrompt, Prompt: pending}}
	default:
		return s, nil
	}
}

// Move handles pointer motion. Only a sector drag reacts to it.
func (m *Machine) Move(s Snapshot, ev Event) (Snapshot, []Effect) {
	if s.Pending != nil || s.State.Phase != PhaseDragging {
		return s, nil
	}
	s.State.LastPointer = ev.Map
	center := s.State.Center

	bearing := geometry.SnapBearing(geometry.CalcBearing(center, ev.Map), s.Mods.Ctrl, s.Mods.Shift)
	dist, err := m.measurer.Measure(center, ev.Map)
	if err != nil {
		return s, []Effect{{Kind: EffectFailure, Err: err}}
	}

	preview := Effect{Kind: EffectShowPreview, Line: []geometry.Point{center, ev.Map}}
	if dist > MinPreviewMeters {
		spec := geometry.SectorSpec{
			Center:       center,
			Azimuth:      bearing,
			RadiusM:      dist,
			BeamwidthDeg: geometry.PreviewBeamwidth,
		}
		if preview.Wedge, err = m.engine.BuildWedge(spec, geometry.DefaultSegments); err != nil {
			return s, []Effect{{Kind: EffectFailure, Err: err}}
		}
	}
	effects := []Effect{preview}

	if !s.overlayShown || ev.Pixel.ManhattanDistance(s.overlayAt) >= OverlayThresholdPx {
		s.overlayAt, s.overlayShown = ev.Pixel, true
		effects = append(effects, Effect{
			Kind:    EffectShowOverlay,
			Overlay: Overlay{At: ev.Map, Bearing: bearing, Distance: dist, Snap: s.Mods.SnapLabel()},
		})
	}

	return s, effects
}

// Release handles a pointer release.
func (m *Machine) Release(s Snapshot, ev Event) (Snapshot, []Effect) {
	if s.Pending != nil {
		return s, nil
	}

	if ev.Button == ButtonRight {
		if s.State.Phase == PhasePicking {
			return s, nil
		}
		return s, []Effect{{Kind: EffectContextMenu, Pixel: ev.Pixel}}
	}

	if ev.Button != ButtonLeft || m.variant != VariantSector || s.State.Phase != PhaseDragging {
		return s, nil
	}

	s.State.LastPointer = ev.Map
	center := s.State.Center
	dist, err := m.measurer.Measure(center, ev.Map)
	if err != nil {
		return s.reset(), append(clearEffects(), Effect{Kind: EffectFailure, Err: err})
	}
	if dist < MinDragMeters {
		return s.reset(), append(clearEffects(), Effect{Kind: EffectDiscard, Message: DiscardShortDrag})
	}

	pending := &PendingPrompt{
		Purpose:  PromptSectorID,
		Title:    sectorPromptTitle,
		Label:    sectorPromptLabel,
		Center:   center,
		Release:  ev.Map,
		Distance: dist,
		Mods:     s.Mods,
	}
	s.Pending = pending

	return s, []Effect{{Kind: EffectPrompt, Prompt: pending}}
}

// KeyDown handles a key press. Escape discards everything transient.
func (m *Machine) KeyDown(s Snapshot, key Key) (Snapshot, []Effect) {
	switch key {
	case KeyEscape:
		busy := !s.Idle()
		effects := append(clearEffects(), Effect{Kind: EffectStatus})
		if busy {
			effects = append(effects, Effect{Kind: EffectDiscard, Message: DiscardEscape})
		}
		return s.reset(), effects
	case KeyControl:
		s.Mods.Ctrl = true
	case KeyShift:
		s.Mods.Shift = true
	case KeyOther:
	}

	return s, nil
}

// KeyUp handles a key release.
func (m *Machine) KeyUp(s Snapshot, key Key) (Snapshot, []Effect) {
	switch key {
	case KeyControl:
		s.Mods.Ctrl = false
	case KeyShift:
		s.Mods.Shift = false
	case KeyEscape, KeyOther:
	}

	return s, nil
}

// ResumePrompt continues a suspended transition with the operator's answer.
func (m *Machine) ResumePrompt(s Snapshot, text string, ok bool) (Snapshot, []Effect) {
	if s.Pending == nil {
		return s, nil
	}
	pending := *s.Pending
	s.Pending = nil

	text = strings.TrimSpace(text)
	if !ok || text == "" {
		if pending.Purpose == PromptRename {
			return s, nil
		}
		return s.reset(), append(clearEffects(), Effect{Kind: EffectDiscard, Message: DiscardCancelled})
	}

	switch pending.Purpose {
	case PromptSectorID:
		return m.commitSector(s, pending, text)
	case PromptSiteID:
		return m.commitSite(s, pending, text)
	case PromptRename:
		return s, []Effect{{
			Kind:      EffectUpdate,
			FeatureID: pending.Feature.ID,
			Delta:     models.AttributeDelta{SectorLabel: models.Ptr(text)},
			Message:   string(ActionRename),
		}}
	default:
		return s.reset(), nil
	}
}

// BeginMoveCenter enters the pick mode for an existing feature. Any drag in
// progress is dropped.
func (m *Machine) BeginMoveCenter(s Snapshot, target models.Feature) (Snapshot, []Effect) {
	next := s.reset()
	next.State = State{
		Phase:       PhasePicking,
		Target:      target.ID,
		TargetLayer: target.Layer,
		Saved:       target.Attributes.Spec(),
	}

	return next, append(clearEffects(), Effect{Kind: EffectStatus, Message: pickStatus})
}

// resolvePick rebuilds the picked feature around the new center with its
// azimuth, radius and beamwidth untouched.
func (m *Machine) resolvePick(s Snapshot, at geometry.Point) (Snapshot, []Effect) {
	spec := s.State.Saved
	spec.Center = at
	id := s.State.Target
	next := s.reset()
	effects := []Effect{{Kind: EffectStatus}}

	ring, err := m.engine.BuildWedge(spec, geometry.DefaultSegments)
	if err != nil {
		return next, append(effects, Effect{Kind: EffectFailure, Err: err})
	}

	return next, append(effects, Effect{
		Kind:      EffectUpdate,
		FeatureID: id,
		Wedge:     ring,
		Delta:     models.AttributeDelta{CenterLat: models.Ptr(at.Y), CenterLon: models.Ptr(at.X)},
		Message:   string(ActionMove),
	})
}

func (m *Machine) commitSector(s Snapshot, p PendingPrompt, dummyID string) (Snapshot, []Effect) {
	bearing := geometry.SnapBearing(geometry.CalcBearing(p.Center, p.Release), p.Mods.Ctrl, p.Mods.Shift)
	radius := m.settings.DefaultRadius
	if m.settings.UseDragRadius {
		radius = p.Distance
	}

	attrs := m.attributes(newSectorLabel, dummyID, p.Center, bearing, radius)
	next := s.reset()

	ring, err := m.engine.BuildWedge(attrs.Spec(), geometry.DefaultSegments)
	if err != nil {
		return next, append(clearEffects(), Effect{Kind: EffectFailure, Err: err})
	}

	return next, append(clearEffects(), Effect{
		Kind:       EffectInsert,
		Layer:      models.LayerSector,
		Wedge:      ring,
		Attributes: attrs,
	})
}

func (m *Machine) commitSite(s Snapshot, p PendingPrompt, siteID string) (Snapshot, []Effect) {
	next := s.reset()
	effects := make([]Effect, 0, len(SiteBearings))

	for idx, bearing := range SiteBearings {
		attrs := m.attributes(siteSectorLabel(idx+1), siteID, p.Center, bearing, m.settings.DefaultSiteRadius)
		ring, err := m.engine.BuildWedge(attrs.Spec(), geometry.DefaultSegments)
		if err != nil {
			return next, []Effect{{Kind: EffectFailure, Err: err}}
		}
		effects = append(effects, Effect{
			Kind:       EffectInsert,
			Layer:      models.LayerSite,
			Wedge:      ring,
			Attributes: attrs,
		})
	}

	return next, effects
}

func (m *Machine) attributes(label, dummyID string, center geometry.Point, bearing, radius float64) models.SectorAttributes {
	return models.SectorAttributes{
		SectorLabel:      label,
		DummyID:          dummyID,
		Azimuth:          bearing,
		RadiusMeters:     radius,
		BeamwidthDegrees: m.settings.DefaultBeamwidth,
		CenterLat:        center.Y,
		CenterLon:        center.X,
		LineColor:        m.settings.DefaultLineColor,
		LineWidthPx:      m.settings.DefaultLineWidth,
		ShowLabel:        true,
	}
}

func siteSectorLabel(n int) string {
	return "Sector " + strconv.Itoa(n)
}
