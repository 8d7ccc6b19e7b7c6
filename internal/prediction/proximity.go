package prediction

import (
	"math"

	"parkingpass/internal/types"
)

const (
	earthRadiusKm = 6371.0

	proximityMaxWeight = 1.3
	proximityNeutral   = 1.0
	proximityInnerKm   = 0.5
	proximityOuterKm   = 2.0
)

// Hotspot is a neighborhood with historically dense enforcement, pinned to a
// representative coordinate.
type Hotspot struct {
	Dong  string  `json:"dong"`
	Count int     `json:"count"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// CheonanHotspots is the compiled-in hotspot table. Counts are enforcement
// records from the 2024 municipal dataset.
var CheonanHotspots = []Hotspot{
	{Dong: "성정동", Count: 15186, Lat: 36.820, Lon: 127.139},
	{Dong: "불당동", Count: 14446, Lat: 36.811, Lon: 127.109},
	{Dong: "두정동", Count: 9993, Lat: 36.832, Lon: 127.139},
	{Dong: "백석동", Count: 7516, Lat: 36.835, Lon: 127.155},
	{Dong: "성성동", Count: 6315, Lat: 36.839, Lon: 127.117},
	{Dong: "신부동", Count: 4633, Lat: 36.818, Lon: 127.158},
	{Dong: "쌍용동", Count: 3410, Lat: 36.800, Lon: 127.123},
	{Dong: "차암동", Count: 3217, Lat: 36.810, Lon: 127.145},
	{Dong: "신방동", Count: 2697, Lat: 36.786, Lon: 127.122},
	{Dong: "직산읍", Count: 2210, Lat: 36.879, Lon: 127.150},
}

// ProximityScorer weights a point by its distance to the nearest hotspot.
type ProximityScorer struct {
	hotspots []Hotspot
}

// NewProximityScorer copies the table. Pass CheonanHotspots for the
// production table.
func NewProximityScorer(hotspots []Hotspot) *ProximityScorer {
	return &ProximityScorer{hotspots: append([]Hotspot(nil), hotspots...)}
}

// WithCounts returns a scorer whose hotspot counts are replaced by those in
// counts where present. Coordinates are unchanged.
func (s *ProximityScorer) WithCounts(counts map[string]types.DongCount) *ProximityScorer {
	out := NewProximityScorer(s.hotspots)
	for i, h := range out.hotspots {
		if c, ok := counts[h.Dong]; ok {
			out.hotspots[i].Count = c.Count
		}
	}
	return out
}

// Hotspots returns a copy of the table.
func (s *ProximityScorer) Hotspots() []Hotspot {
	return append([]Hotspot(nil), s.hotspots...)
}

// Nearest returns the closest hotspot and its distance in km. ok is false
// when the table is empty.
func (s *ProximityScorer) Nearest(lat, lon float64) (Hotspot, float64, bool) {
	var best Hotspot
	bestKm := math.Inf(1)
	for _, h := range s.hotspots {
		if d := Haversine(lat, lon, h.Lat, h.Lon); d < bestKm {
			best, bestKm = h, d
		}
	}
	return best, bestKm, len(s.hotspots) > 0
}

// Weight returns a factor in [1.0, 1.3]: 1.3 within 0.5 km of the nearest
// hotspot, falling linearly to 1.0 at 2 km and neutral beyond. Points with a
// zero coordinate are treated as unknown and get 1.0.
func (s *ProximityScorer) Weight(lat, lon float64) float64 {
	if lat == 0 || lon == 0 {
		return proximityNeutral
	}
	_, d, ok := s.Nearest(lat, lon)
	if !ok {
		return proximityNeutral
	}
	return DistanceWeight(d)
}

// DistanceWeight maps a distance in km to the proximity factor.
func DistanceWeight(km float64) float64 {
	switch {
	case km < proximityInnerKm:
		return proximityMaxWeight
	case km < proximityOuterKm:
		span := proximityOuterKm - proximityInnerKm
		return proximityMaxWeight - (proximityMaxWeight-proximityNeutral)*(km-proximityInnerKm)/span
	default:
		return proximityNeutral
	}
}

// Haversine returns the great-circle distance in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
