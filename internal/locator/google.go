package locator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/shooter/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleAPIClient is the part of maps.Client used here.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// Google locates addresses with the Google Maps Geocoding API.
type Google struct {
	client GoogleAPIClient
	log    *slog.Logger
}

func NewGoogle(client GoogleAPIClient, log *slog.Logger) *Google {
	return &Google{client: client, log: log}
}

// Locate implements Locator.
func (g *Google) Locate(ctx context.Context, address string) (*models.Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}
	g.log.DebugContext(ctx, "Locating with Google Maps", "address", address)

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
	}

	loc := results[0].Geometry.Location
	if err = validate(loc.Lng, loc.Lat); err != nil {
		return nil, err
	}

	return &models.Coordinates{Longitude: loc.Lng, Latitude: loc.Lat}, nil
}
