package models

// Coordinates is a WGS84 position resolved by a locator.
type Coordinates struct {
	Longitude float64 // Longitude in degrees.
	Latitude  float64 // Latitude in degrees.
}
