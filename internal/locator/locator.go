// Package locator turns a free-form address into geographic coordinates so a
// site or a sector center can be placed without clicking the map.
package locator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/shooter/internal/models"
	"googlemaps.github.io/maps"
)

// Locator geocodes an address into WGS84 coordinates.
type Locator interface {
	Locate(ctx context.Context, address string) (*models.Coordinates, error)
}

// Type names a locator backend.
type Type string

// Supported backends.
const (
	TypeGoogle    Type = "google"
	TypeNominatim Type = "nominatim"
	TypeVisicom   Type = "visicom"
)

var (
	ErrUnsupportedType = errors.New("unsupported locator type")
	ErrMissingKey      = errors.New("locator requires an API key")
	ErrEmptyAddress    = errors.New("address is empty")
	ErrNotFound        = errors.New("address not found")
	ErrInvalidCoords   = errors.New("locator returned invalid coordinates")
)

// Config selects and tunes a backend.
type Config struct {
	Type      Type
	APIKey    string  // google, visicom
	RateLimit float64 // requests per second, 0 picks the backend default
	Logger    *slog.Logger
}

// New builds the locator named by cfg.Type.
func New(cfg Config) (Locator, error) {
	switch cfg.Type {
	case TypeGoogle:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingKey, cfg.Type)
		}
		opts := []maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}
		if cfg.RateLimit > 0 {
			opts = append(opts, maps.WithRateLimit(int(cfg.RateLimit)))
		}
		client, err := maps.NewClient(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
		}
		return NewGoogle(client, cfg.Logger), nil
	case TypeNominatim:
		return NewNominatim(defaultHTTPClient(), cfg.RateLimit, cfg.Logger), nil
	case TypeVisicom:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingKey, cfg.Type)
		}
		return NewVisicom(defaultHTTPClient(), cfg.APIKey, cfg.RateLimit, cfg.Logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, cfg.Type)
	}
}

func validate(lon, lat float64) error {
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: lon=%f lat=%f", ErrInvalidCoords, lon, lat)
	}

	return nil
}
