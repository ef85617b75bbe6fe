package geometry

import (
	"fmt"
	"math"
)

// Local flat-earth scale. Valid for radii of a few kilometres; metersPerDegLon
// collapses to zero at the poles.
const metersPerDegLat = 111320.0

// Defaults used by the authoring tools.
const (
	DefaultSegments  = 72
	PreviewBeamwidth = 40.0
)

// SectorSpec fully determines a wedge polygon.
type SectorSpec struct {
	Center       Point   // Center is the antenna position in the working CRS.
	Azimuth      float64 // Azimuth is the boresight bearing in degrees.
	RadiusM      float64 // RadiusM is the coverage radius in meters.
	BeamwidthDeg float64 // BeamwidthDeg is the angular width in (0, 360].
}

// Engine builds wedge rings in a working CRS. The distance math always runs in
// WGS84 degrees; the transformer bridges the two.
type Engine struct {
	crs CRS
	tr  Transformer
}

// NewEngine creates an engine for the given working CRS.
func NewEngine(crs CRS, tr Transformer) *Engine {
	if tr == nil {
		tr = identity{}
	}

	return &Engine{crs: crs, tr: tr}
}

// CRS returns the working reference system.
func (e *Engine) CRS() CRS {
	return e.crs
}

// Transformer returns the transformer between the working CRS and WGS84.
func (e *Engine) Transformer() Transformer {
	return e.tr
}

// BuildWedge returns the closed ring [center, arc_0 .. arc_segments, center]
// in the working CRS. The ring always has segments+3 points.
//
// Radius <= 0 yields a degenerate ring; a 360 degree beamwidth yields a full fan.
// Inputs at latitude +-90 are not guarded.
func (e *Engine) BuildWedge(spec SectorSpec, segments int) (Ring, error) {
	if segments < 1 {
		segments = DefaultSegments
	}

	center := spec.Center
	if !e.crs.Geographic {
		geo, err := e.tr.ToGeographic(center)
		if err != nil {
			return nil, fmt.Errorf("failed to project sector center: %w", err)
		}
		center = geo
	}

	ring := wedge(center, spec.Azimuth, spec.RadiusM, spec.BeamwidthDeg, segments)

	if e.crs.Geographic {
		return ring, nil
	}

	out, err := e.tr.FromGeographic(ring)
	if err != nil {
		return nil, fmt.Errorf("failed to project wedge ring: %w", err)
	}
	// keep closure exact after floating point round trips
	out[len(out)-1] = out[0]

	return out, nil
}

// wedge samples the fan in geographic degrees.
func wedge(center Point, azimuth, radiusM, beamwidth float64, segments int) Ring {
	mPerLon := metersPerDegLat * math.Cos(radians(center.Y))
	start := azimuth - beamwidth/2

	ring := make(Ring, 0, segments+3)
	ring = append(ring, center)
	for i := 0; i <= segments; i++ {
		angle := start + beamwidth*float64(i)/float64(segments)
		theta := radians(90 - angle)
		ring = append(ring, Point{
			X: center.X + radiusM*math.Cos(theta)/mPerLon,
			Y: center.Y + radiusM*math.Sin(theta)/metersPerDegLat,
		})
	}

	return append(ring, center)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
