package ingest

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"parkingpass/internal/types"
)

// GeocodingAPI is the subset of *maps.Client used by MapsGeocoder.
type GeocodingAPI interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// MapsGeocoder places registry addresses with the Google Geocoding API.
// Results outside the forecast domain are rejected.
type MapsGeocoder struct {
	api GeocodingAPI
}

// NewMapsGeocoder creates a geocoder from an API key.
func NewMapsGeocoder(apiKey string) (*MapsGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &MapsGeocoder{api: client}, nil
}

// NewMapsGeocoderWithAPI wraps an existing client.
func NewMapsGeocoderWithAPI(api GeocodingAPI) *MapsGeocoder {
	return &MapsGeocoder{api: api}
}

// Geocode implements Geocoder using the first result.
func (g *MapsGeocoder) Geocode(ctx context.Context, address string) (float64, float64, bool, error) {
	results, err := g.api.Geocode(ctx, &maps.GeocodingRequest{
		Address:  address,
		Region:   "kr",
		Language: "ko",
	})
	if err != nil {
		return 0, 0, false, err
	}
	if len(results) == 0 {
		return 0, 0, false, nil
	}

	loc := results[0].Geometry.Location
	if !types.IsKorea(loc.Lat, loc.Lng) {
		return 0, 0, false, nil
	}
	return loc.Lat, loc.Lng, true, nil
}
