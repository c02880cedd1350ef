package geocoding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"studiofinder_backend/internal/algorithms"
)

var (
	ErrNotFound      = errors.New("address not found")
	ErrNotConfigured = errors.New("geocoding is not configured")
)

// Result is a resolved address.
type Result struct {
	Point            algorithms.Point
	FormattedAddress string
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Result, error)
}

// New returns the Google geocoder when apiKey is set and a no-op otherwise.
func New(apiKey string) (Geocoder, error) {
	if apiKey == "" {
		return NoopGeocoder{}, nil
	}
	return NewGoogleGeocoder(apiKey)
}

type GoogleGeocoder struct {
	client *maps.Client
}

func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNotFound
	}

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}

	loc := results[0].Geometry.Location
	return &Result{
		Point:            algorithms.Point{Lat: loc.Lat, Lng: loc.Lng},
		FormattedAddress: results[0].FormattedAddress,
	}, nil
}

// NoopGeocoder is used when no API key is configured.
type NoopGeocoder struct{}

func (NoopGeocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	return nil, ErrNotConfigured
}
