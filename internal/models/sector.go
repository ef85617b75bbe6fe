package models

import "github.com/UnknownOlympus/shooter/internal/geometry"

// Layer names used by the authoring tools.
const (
	LayerSector = "SHOOTER_ADD_SECTOR"
	LayerSite   = "SHOOTER_ADD_SITE"
)

// ResolveOrder is the priority in which layers are hit-tested for the context menu.
var ResolveOrder = []string{LayerSite, LayerSector}

// Colours offered by the context menu.
const (
	ColorYellow = "#FFFF00"
	ColorWhite  = "#FFFFFF"
)

// SectorAttributes is the attribute bundle committed with every sector.
type SectorAttributes struct {
	SectorLabel      string  // SectorLabel is the displayed name ("New Sector", "Sector 1").
	DummyID          string  // DummyID is the operator supplied identifier.
	Azimuth          float64 // Azimuth in degrees.
	RadiusMeters     float64 // RadiusMeters is the coverage radius.
	BeamwidthDegrees float64 // BeamwidthDegrees is the angular width.
	CenterLat        float64 // CenterLat is the Y of the center in the working CRS.
	CenterLon        float64 // CenterLon is the X of the center in the working CRS.
	LineColor        string  // LineColor is a #RRGGBB stroke colour.
	LineWidthPx      int     // LineWidthPx is the stroke width in pixels.
	ShowLabel        bool    // ShowLabel toggles the label.
}

// Spec returns the wedge parameters described by the attributes.
func (a SectorAttributes) Spec() geometry.SectorSpec {
	return geometry.SectorSpec{
		Center:       geometry.Pt(a.CenterLon, a.CenterLat),
		Azimuth:      a.Azimuth,
		RadiusM:      a.RadiusMeters,
		BeamwidthDeg: a.BeamwidthDegrees,
	}
}

// AttributeDelta lists attribute changes; nil fields are left untouched.
type AttributeDelta struct {
	SectorLabel      *string
	Azimuth          *float64
	RadiusMeters     *float64
	BeamwidthDegrees *float64
	CenterLat        *float64
	CenterLon        *float64
	LineColor        *string
	ShowLabel        *bool
}

// Empty reports whether the delta changes nothing.
func (d AttributeDelta) Empty() bool {
	return d.SectorLabel == nil && d.Azimuth == nil && d.RadiusMeters == nil &&
		d.BeamwidthDegrees == nil && d.CenterLat == nil && d.CenterLon == nil &&
		d.LineColor == nil && d.ShowLabel == nil
}

// Apply returns a copy of attrs with the delta applied.
func (d AttributeDelta) Apply(attrs SectorAttributes) SectorAttributes {
	if d.SectorLabel != nil {
		attrs.SectorLabel = *d.SectorLabel
	}
	if d.Azimuth != nil {
		attrs.Azimuth = *d.Azimuth
	}
	if d.RadiusMeters != nil {
		attrs.RadiusMeters = *d.RadiusMeters
	}
	if d.BeamwidthDegrees != nil {
		attrs.BeamwidthDegrees = *d.BeamwidthDegrees
	}
	if d.CenterLat != nil {
		attrs.CenterLat = *d.CenterLat
	}
	if d.CenterLon != nil {
		attrs.CenterLon = *d.CenterLon
	}
	if d.LineColor != nil {
		attrs.LineColor = *d.LineColor
	}
	if d.ShowLabel != nil {
		attrs.ShowLabel = *d.ShowLabel
	}

	return attrs
}

// Feature is a persisted sector.
type Feature struct {
	ID         int64            // ID is assigned by the sink.
	Layer      string           // Layer is the owning layer name.
	Geometry   geometry.Ring    // Geometry is the wedge outline in the working CRS.
	Attributes SectorAttributes // Attributes is the committed bundle.
}

// Ptr returns a pointer to v, for building deltas.
func Ptr[T any](v T) *T {
	return &v
}
