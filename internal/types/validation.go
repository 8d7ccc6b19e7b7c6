package types

// Validation constraint constants.
const (
	MinLat = -90.0
	MaxLat = 90.0
	MinLon = -180.0
	MaxLon = 180.0

	// Bounding box of the forecast feed's domain (South Korea and
	// surrounding waters).
	KoreaMinLat = 33.0
	KoreaMaxLat = 38.7
	KoreaMinLon = 124.5
	KoreaMaxLon = 131.0

	MinHorizonHours = 1
)

// IsKorea returns true if the coordinates fall within the forecast grid's
// bounding box.
func IsKorea(lat, lon float64) bool {
	return lat >= KoreaMinLat && lat <= KoreaMaxLat && lon >= KoreaMinLon && lon <= KoreaMaxLon
}
