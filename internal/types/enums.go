package types

import "strings"

// WeatherCondition is the coarse sky/precipitation tag derived from the
// forecast feed.
type WeatherCondition string

const (
	ConditionSunny  WeatherCondition = "sunny"
	ConditionCloudy WeatherCondition = "cloudy"
	ConditionRainy  WeatherCondition = "rainy"
	ConditionSnowy  WeatherCondition = "snowy"
)

// LotKind distinguishes publicly and privately operated facilities.
type LotKind string

const (
	LotPublic  LotKind = "public"
	LotPrivate LotKind = "private"
)

// FeeType is the registry's fee classification. Values are the Korean
// labels exported by the registry.
type FeeType string

const (
	FeeFree  FeeType = "무료"
	FeePaid  FeeType = "유료"
	FeeMixed FeeType = "혼합"
)

// IsFree reports whether the lot is unmetered. Only the 무료 label counts;
// a blank label scores as paid. A fee type missing from the JSON entirely is
// decoded as 무료 by ParkingLot.UnmarshalJSON.
func (f FeeType) IsFree() bool {
	return f == FeeFree
}

// Parking type labels used by the registry.
const (
	ParkingTypeOffStreet = "노외"
	ParkingTypeOnStreet  = "노상"
	ParkingTypeAttached  = "부설"
)

// IsIndoor reports whether the registry parking type denotes a structure
// attached to a building.
func IsIndoor(parkingType string) bool {
	return strings.Contains(parkingType, ParkingTypeAttached)
}
