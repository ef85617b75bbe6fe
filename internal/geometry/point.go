package geometry

import "github.com/paulmach/orb"

// Point is a coordinate pair in some CRS. X is longitude-like, Y is latitude-like.
type Point struct {
	X float64 // X is the easting or longitude.
	Y float64 // Y is the northing or latitude.
}

// Pt is a shorthand constructor for Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Orb converts the point into an orb.Point.
func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// FromOrb converts an orb.Point into a Point.
func FromOrb(p orb.Point) Point {
	return Point{X: p.X(), Y: p.Y()}
}

// Ring is a closed outline: the first and last points are identical.
type Ring []Point

// Closed reports whether the ring starts and ends on the same coordinate.
func (r Ring) Closed() bool {
	return len(r) > 0 && r[0] == r[len(r)-1]
}

// Orb converts the ring into an orb.Ring.
func (r Ring) Orb() orb.Ring {
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[i] = p.Orb()
	}
	return out
}

// RingFromOrb converts an orb.Ring into a Ring.
func RingFromOrb(r orb.Ring) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = FromOrb(p)
	}
	return out
}
