package geometry

import (
	"errors"
	"fmt"

	"github.com/ctessum/geom/proj"
	"github.com/paulmach/orb/project"
)

// CRS identifies a coordinate reference system.
type CRS struct {
	Code       string // Code is the authority id, e.g. "EPSG:4326".
	Geographic bool   // Geographic is true for lon/lat degree systems.
}

// Well-known reference systems.
var (
	WGS84       = CRS{Code: "EPSG:4326", Geographic: true}
	WebMercator = CRS{Code: "EPSG:3857", Geographic: false}
)

// wgs84Proj4 is the PROJ.4 definition used as the geographic end of custom transforms.
const wgs84Proj4 = "+proj=longlat +ellps=WGS84 +datum=WGS84 +no_defs"

// ErrMissingDefinition is returned when a custom CRS has no PROJ.4 definition.
var ErrMissingDefinition = errors.New("projected CRS requires a proj4 definition")

// Transformer moves coordinates between a working CRS and WGS84.
type Transformer interface {
	ToGeographic(p Point) (Point, error)
	FromGeographic(r Ring) (Ring, error)
}

// ParseCRS maps a code onto a CRS value. Unknown codes are treated as projected.
func ParseCRS(code string) CRS {
	switch code {
	case "", WGS84.Code, "WGS84":
		return WGS84
	case WebMercator.Code, "EPSG:900913":
		return WebMercator
	default:
		return CRS{Code: code}
	}
}

// NewTransformer returns the transformer for crs. proj4 is only read for
// systems other than WGS84 and Web Mercator.
func NewTransformer(crs CRS, proj4 string) (Transformer, error) {
	switch {
	case crs.Geographic:
		return identity{}, nil
	case crs == WebMercator:
		return mercator{}, nil
	case proj4 == "":
		return nil, fmt.Errorf("%w: %s", ErrMissingDefinition, crs.Code)
	default:
		tr, err := newProjTransformer(proj4)
		if err != nil {
			return nil, err
		}
		return tr, nil
	}
}

type identity struct{}

func (identity) ToGeographic(p Point) (Point, error) { return p, nil }
func (identity) FromGeographic(r Ring) (Ring, error) { return r, nil }

// mercator uses the spherical Web Mercator formulas from orb/project.
type mercator struct{}

func (mercator) ToGeographic(p Point) (Point, error) {
	return FromOrb(project.Point(p.Orb(), project.Mercator.ToWGS84)), nil
}

func (mercator) FromGeographic(r Ring) (Ring, error) {
	return RingFromOrb(project.Ring(r.Orb(), project.WGS84.ToMercator)), nil
}

// projTransformer handles arbitrary PROJ.4 definitions.
type projTransformer struct {
	toGeo   proj.Transformer
	fromGeo proj.Transformer
}

func newProjTransformer(def string) (*projTransformer, error) {
	src, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proj4 definition: %w", err)
	}
	geo, err := proj.Parse(wgs84Proj4)
	if err != nil {
		return nil, fmt.Errorf("failed to parse WGS84 definition: %w", err)
	}

	toGeo, err := src.NewTransform(geo)
	if err != nil {
		return nil, fmt.Errorf("failed to build transform to WGS84: %w", err)
	}
	fromGeo, err := geo.NewTransform(src)
	if err != nil {
		return nil, fmt.Errorf("failed to build transform from WGS84: %w", err)
	}

	return &projTransformer{toGeo: toGeo, fromGeo: fromGeo}, nil
}

func (t *projTransformer) ToGeographic(p Point) (Point, error) {
	x, y, err := t.toGeo(p.X, p.Y)
	if err != nil {
		return Point{}, fmt.Errorf("failed to transform point to WGS84: %w", err)
	}

	return Point{X: x, Y: y}, nil
}

func (t *projTransformer) FromGeographic(r Ring) (Ring, error) {
	out := make(Ring, len(r))
	for i, p := range r {
		x, y, err := t.fromGeo(p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to transform ring vertex %d: %w", i, err)
		}
		out[i] = Point{X: x, Y: y}
	}

	return out, nil
}
