package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type fakeGeocodingAPI struct {
	results []maps.GeocodingResult
	err     error
	last    *maps.GeocodingRequest
}

func (f *fakeGeocodingAPI) Geocode(_ context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	f.last = r
	return f.results, f.err
}

func result(lat, lng float64) maps.GeocodingResult {
	var r maps.GeocodingResult
	r.Geometry.Location = maps.LatLng{Lat: lat, Lng: lng}
	return r
}

func TestMapsGeocoder(t *testing.T) {
	api := &fakeGeocodingAPI{results: []maps.GeocodingResult{result(36.81, 127.15), result(0, 0)}}
	g := NewMapsGeocoderWithAPI(api)

	lat, lon, ok, err := g.Geocode(context.Background(), "충청남도 천안시 동남구 신부동 3")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 36.81, lat)
	assert.Equal(t, 127.15, lon)
	assert.Equal(t, "kr", api.last.Region)
	assert.Equal(t, "ko", api.last.Language)
}

func TestMapsGeocoder_NoResult(t *testing.T) {
	g := NewMapsGeocoderWithAPI(&fakeGeocodingAPI{})
	_, _, ok, err := g.Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMapsGeocoder_OutsideDomain(t *testing.T) {
	g := NewMapsGeocoderWithAPI(&fakeGeocodingAPI{results: []maps.GeocodingResult{result(51.5, -0.12)}})
	_, _, ok, err := g.Geocode(context.Background(), "London")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMapsGeocoder_Error(t *testing.T) {
	g := NewMapsGeocoderWithAPI(&fakeGeocodingAPI{err: errors.New("REQUEST_DENIED")})
	_, _, ok, err := g.Geocode(context.Background(), "x")
	assert.Error(t, err)
	assert.False(t, ok)
}
