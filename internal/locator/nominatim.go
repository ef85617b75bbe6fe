package locator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/shooter/internal/models"
	"golang.org/x/time/rate"
)

const (
	nominatimURL       = "https://nominatim.openstreetmap.org/search"
	nominatimUserAgent = "Shooter-Sector-Authoring/1.0 (https://github.com/UnknownOlympus/shooter)"
)

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Nominatim locates addresses with the OpenStreetMap Nominatim search API.
// Requests are limited to one per second by default, as the public usage
// policy asks.
type Nominatim struct {
	client  HTTPClient
	baseURL string
	limiter *rate.Limiter
	log     *slog.Logger
}

func NewNominatim(client HTTPClient, rps float64, log *slog.Logger) *Nominatim {
	if rps <= 0 {
		rps = 1
	}

	return &Nominatim{
		client:  client,
		baseURL: nominatimURL,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:     log,
	}
}

// Locate implements Locator. When the full address is unknown it retries
// with trailing comma-separated parts dropped, down to the first part.
func (n *Nominatim) Locate(ctx context.Context, address string) (*models.Coordinates, error) {
	candidates := fallbacks(address)
	if len(candidates) == 0 {
		return nil, ErrEmptyAddress
	}

	for level, candidate := range candidates {
		coords, err := n.search(ctx, candidate)
		if err == nil {
			if level > 0 {
				n.log.InfoContext(ctx, "Located with a shorter address",
					"original", address, "fallback", candidate, "fallback_level", level)
			}
			return coords, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	n.log.WarnContext(ctx, "Address not found", "address", address, "variations_tried", len(candidates))

	return nil, fmt.Errorf("%w: %s", ErrNotFound, address)
}

func (n *Nominatim) search(ctx context.Context, address string) (*models.Coordinates, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	reqURL, err := url.Parse(n.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	reqURL.RawQuery = query.Encode()

	n.log.DebugContext(ctx, "Nominatim request", "url", reqURL.String())

	var results []nominatimResult
	header := http.Header{"User-Agent": []string{nominatimUserAgent}}
	if err = getJSON(ctx, n.client, reqURL.String(), header, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return nil, fmt.Errorf("%w: lat=%q lon=%q", ErrInvalidCoords, results[0].Lat, results[0].Lon)
	}
	if err = validate(lon, lat); err != nil {
		return nil, err
	}

	return &models.Coordinates{Longitude: lon, Latitude: lat}, nil
}

// fallbacks lists the address and its progressively shorter prefixes.
func fallbacks(address string) []string {
	var parts []string
	for _, p := range strings.Split(address, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	out := make([]string, 0, len(parts))
	for i := len(parts); i > 0; i-- {
		out = append(out, strings.Join(parts[:i], ", "))
	}

	return out
}
