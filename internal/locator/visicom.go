package locator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/UnknownOlympus/shooter/internal/models"
	"golang.org/x/time/rate"
)

const visicomURL = "https://api.visicom.ua/data-api/5.0/uk/geocode.json"

// ErrUnauthorized is returned when the API key is rejected.
var ErrUnauthorized = errors.New("locator API rejected the key")

type visicomResult struct {
	Centroid struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geo_centroid"`
}

// Visicom locates addresses with the Visicom data API.
type Visicom struct {
	client  HTTPClient
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	log     *slog.Logger
}

func NewVisicom(client HTTPClient, apiKey string, rps float64, log *slog.Logger) *Visicom {
	const defaultRPS = 5
	if rps <= 0 {
		rps = defaultRPS
	}

	return &Visicom{
		client:  client,
		baseURL: visicomURL,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)),
		log:     log,
	}
}

// Locate implements Locator.
func (v *Visicom) Locate(ctx context.Context, address string) (*models.Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}
	if err := v.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	reqURL, err := url.Parse(v.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	query := reqURL.Query()
	query.Set("text", address)
	query.Set("limit", "1")
	query.Set("key", v.apiKey)
	reqURL.RawQuery = query.Encode()

	var result visicomResult
	header := http.Header{"Accept": []string{"application/json"}}
	if err = getJSON(ctx, v.client, reqURL.String(), header, &result); err != nil {
		var status *StatusError
		if errors.As(err, &status) && (status.Code == http.StatusUnauthorized || status.Code == http.StatusForbidden) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	const lonLat = 2
	coords := result.Centroid.Coordinates
	switch len(coords) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
	case lonLat:
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidCoords, coords)
	}
	if err = validate(coords[0], coords[1]); err != nil {
		return nil, err
	}
	v.log.DebugContext(ctx, "Located with Visicom", "address", address, "lon", coords[0], "lat", coords[1])

	return &models.Coordinates{Longitude: coords[0], Latitude: coords[1]}, nil
}
