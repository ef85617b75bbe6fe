package geometry

import (
	"fmt"

	"github.com/paulmach/orb/geo"
)

// Measurer returns the ground distance in meters between two points of the working CRS.
type Measurer interface {
	Measure(p1, p2 Point) (float64, error)
}

// HaversineMeasurer measures great-circle distance on the WGS84 equatorial radius.
type HaversineMeasurer struct {
	tr  Transformer
	crs CRS
}

// NewHaversineMeasurer creates a measurer for the engine's working CRS.
func NewHaversineMeasurer(e *Engine) *HaversineMeasurer {
	return &HaversineMeasurer{tr: e.Transformer(), crs: e.CRS()}
}

// Measure implements Measurer.
func (m *HaversineMeasurer) Measure(p1, p2 Point) (float64, error) {
	if !m.crs.Geographic {
		var err error
		if p1, err = m.tr.ToGeographic(p1); err != nil {
			return 0, fmt.Errorf("failed to measure distance: %w", err)
		}
		if p2, err = m.tr.ToGeographic(p2); err != nil {
			return 0, fmt.Errorf("failed to measure distance: %w", err)
		}
	}

	return geo.DistanceHaversine(p1.Orb(), p2.Orb()), nil
}
