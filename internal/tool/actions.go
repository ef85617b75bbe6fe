package tool

import (
	"errors"
	"fmt"
	"math"

	"github.com/UnknownOlympus/shooter/internal/config"
	"github.com/UnknownOlympus/shooter/internal/geometry"
	"github.com/UnknownOlympus/shooter/internal/models"
)

// Action is a context menu entry.
type Action string

// Context menu actions.
const (
	ActionEdit        Action = "edit"
	ActionMove        Action = "move"
	ActionCoord       Action = "coord"
	ActionYellow      Action = "yellow"
	ActionWhite       Action = "white"
	ActionRename      Action = "rename"
	ActionToggleLabel Action = "toggle_label"
	ActionDelete      Action = "delete"
	ActionSettings    Action = "settings"
)

// Steps used by the edit dialog.
const (
	editAzimuthStep   = 5
	editRadiusStep    = 10
	editBeamwidthStep = 5
)

// ErrUnknownAction is reported for menu choices the tool does not know.
var ErrUnknownAction = errors.New("unknown context action")

// MenuChoice is what the operator picked from the context menu, together
// with the values entered in the dialog behind it.
type MenuChoice struct {
	Action    Action
	Azimuth   float64 // edit
	Radius    float64 // edit
	Beamwidth float64 // edit
	Lon       float64 // coord
	Lat       float64 // coord
}

// Apply runs a context menu action against a resolved feature.
func (m *Machine) Apply(s Snapshot, choice MenuChoice, f models.Feature) (Snapshot, []Effect) {
	switch choice.Action {
	case ActionEdit:
		return s, m.editSector(f, choice.Azimuth, choice.Radius, choice.Beamwidth)
	case ActionMove:
		return m.BeginMoveCenter(s, f)
	case ActionCoord:
		return s, m.editCenter(f, choice.Lon, choice.Lat)
	case ActionYellow, ActionWhite:
		color := models.ColorYellow
		if choice.Action == ActionWhite {
			color = models.ColorWhite
		}
		return s, []Effect{update(f.ID, nil, models.AttributeDelta{LineColor: models.Ptr(color)}, choice.Action)}
	case ActionRename:
		if s.Pending != nil {
			return s, nil
		}
		pending := &PendingPrompt{
			Purpose: PromptRename,
			Title:   "Rename",
			Label:   "Name:",
			Default: f.Attributes.SectorLabel,
			Feature: f,
		}
		s.Pending = pending
		return s, []Effect{{Kind: EffectPrompt, Prompt: pending}}
	case ActionToggleLabel:
		delta := models.AttributeDelta{ShowLabel: models.Ptr(!f.Attributes.ShowLabel)}
		return s, []Effect{update(f.ID, nil, delta, choice.Action)}
	case ActionDelete:
		return s, []Effect{{Kind: EffectRemove, FeatureID: f.ID, Message: string(choice.Action)}}
	case ActionSettings:
		// the settings dialog belongs to the host
		return s, nil
	default:
		return s, []Effect{{Kind: EffectFailure, Err: fmt.Errorf("%w: %q", ErrUnknownAction, choice.Action)}}
	}
}

// editSector rebuilds a feature with new azimuth, radius and beamwidth. Values
// are snapped to the dialog steps and clamped to its ranges.
func (m *Machine) editSector(f models.Feature, azimuth, radius, beamwidth float64) []Effect {
	azimuth = clamp(geometry.SnapToStep(azimuth, editAzimuthStep), 0, 360)
	radius = clamp(geometry.SnapToStep(radius, editRadiusStep), config.MinRadius, config.MaxRadius)
	beamwidth = clamp(geometry.SnapToStep(beamwidth, editBeamwidthStep), config.MinBeamwidth, config.MaxBeamwidth)

	spec := f.Attributes.Spec()
	spec.Azimuth, spec.RadiusM, spec.BeamwidthDeg = azimuth, radius, beamwidth

	ring, err := m.engine.BuildWedge(spec, geometry.DefaultSegments)
	if err != nil {
		return []Effect{{Kind: EffectFailure, Err: err}}
	}

	delta := models.AttributeDelta{
		Azimuth:          models.Ptr(azimuth),
		RadiusMeters:     models.Ptr(radius),
		BeamwidthDegrees: models.Ptr(beamwidth),
	}

	return []Effect{update(f.ID, ring, delta, ActionEdit)}
}

// editCenter moves a feature to explicit coordinates. Geographic systems are
// clamped to valid longitude and latitude.
func (m *Machine) editCenter(f models.Feature, lon, lat float64) []Effect {
	if m.engine.CRS().Geographic {
		lon = clamp(lon, -180, 180)
		lat = clamp(lat, -90, 90)
	}

	spec := f.Attributes.Spec()
	spec.Center = geometry.Pt(lon, lat)

	ring, err := m.engine.BuildWedge(spec, geometry.DefaultSegments)
	if err != nil {
		return []Effect{{Kind: EffectFailure, Err: err}}
	}

	delta := models.AttributeDelta{CenterLat: models.Ptr(lat), CenterLon: models.Ptr(lon)}

	return []Effect{update(f.ID, ring, delta, ActionCoord)}
}

func update(id int64, ring geometry.Ring, delta models.AttributeDelta, action Action) Effect {
	return Effect{Kind: EffectUpdate, FeatureID: id, Wedge: ring, Delta: delta, Message: string(action)}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
