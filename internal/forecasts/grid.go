// Package forecasts implements the short-term weather and public-holiday
// snapshot providers used by the prediction engine, together with the grid
// projection and issuance-slot math the forecast feed requires.
package forecasts

import "math"

// Lambert conformal conic parameters of the KMA 5 km forecast grid.
const (
	earthRadiusKm = 6371.00877
	gridSpacingKm = 5.0
	standardLat1  = 30.0
	standardLat2  = 60.0
	originLon     = 126.0
	originLat     = 38.0
	originOffsetX = 210.0 / gridSpacingKm
	originOffsetY = 675.0 / gridSpacingKm
	degToRad      = math.Pi / 180.0
	quarterPi     = math.Pi * 0.25
	gridMaxX      = 149
	gridMaxY      = 253
)

// GridPoint is a cell of the forecast feed's native grid.
type GridPoint struct {
	NX int `json:"nx"`
	NY int `json:"ny"`
}

// InRange reports whether the cell is inside the feed's valid domain.
// ToGrid never clamps, so callers that care must check.
func (g GridPoint) InRange() bool {
	return g.NX >= 1 && g.NX <= gridMaxX && g.NY >= 1 && g.NY <= gridMaxY
}

// lccConstants are derived once from the projection parameters.
type lccConstants struct {
	re, sn, sf, ro float64
}

var projection = newLCC()

func newLCC() lccConstants {
	re := earthRadiusKm / gridSpacingKm
	slat1 := standardLat1 * degToRad
	slat2 := standardLat2 * degToRad
	olat := originLat * degToRad

	sn := math.Tan(quarterPi+slat2*0.5) / math.Tan(quarterPi+slat1*0.5)
	sn = math.Log(math.Cos(slat1)/math.Cos(slat2)) / math.Log(sn)

	sf := math.Tan(quarterPi + slat1*0.5)
	sf = math.Pow(sf, sn) * math.Cos(slat1) / sn

	ro := math.Tan(quarterPi + olat*0.5)
	ro = re * sf / math.Pow(ro, sn)

	return lccConstants{re: re, sn: sn, sf: sf, ro: ro}
}

// ToGrid projects a WGS84 coordinate onto the forecast grid.
//
// The final rounding is int(v + 1.5): the grid is 1-based and the feed's
// reference converter truncates toward zero. Results outside 1..149 x 1..253
// are returned unchanged.
func ToGrid(lat, lon float64) GridPoint {
	x, y := project(lat, lon)
	return GridPoint{
		NX: int(x + 1.5),
		NY: int(y + 1.5),
	}
}

// project returns the continuous 0-based grid coordinates.
func project(lat, lon float64) (float64, float64) {
	p := projection

	ra := math.Tan(quarterPi + lat*degToRad*0.5)
	ra = p.re * p.sf / math.Pow(ra, p.sn)

	theta := lon*degToRad - originLon*degToRad
	if theta > math.Pi {
		theta -= 2.0 * math.Pi
	}
	if theta < -math.Pi {
		theta += 2.0 * math.Pi
	}
	theta *= p.sn

	x := ra*math.Sin(theta) + originOffsetX
	y := p.ro - ra*math.Cos(theta) + originOffsetY
	return x, y
}
