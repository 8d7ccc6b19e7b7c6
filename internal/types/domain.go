package types

import (
	"encoding/json"
	"time"
)

// ParkingLot is a single facility from the reference registry. Values are
// loaded once at startup and never mutated afterwards.
type ParkingLot struct {
	ID             string   `json:"id" db:"id"`
	Name           string   `json:"name" db:"name"`
	Kind           LotKind  `json:"type" db:"kind"`
	ParkingType    string   `json:"parkingType" db:"parking_type"`
	Address        string   `json:"address" db:"address"`
	TotalSpaces    int      `json:"totalSpaces" db:"total_spaces"`
	OperatingHours string   `json:"operatingHours,omitempty" db:"operating_hours"`
	Fee            Fee      `json:"fee" db:"-"`
	FeeInfo        string   `json:"feeInfo,omitempty" db:"fee_info"`
	PaymentMethods string   `json:"paymentMethods,omitempty" db:"payment_methods"`
	Latitude       float64  `json:"latitude" db:"latitude"`
	Longitude      float64  `json:"longitude" db:"longitude"`
	HasDisabled    bool     `json:"hasDisabledParking" db:"has_disabled_parking"`
	Facilities     []string `json:"facilities,omitempty" db:"-"`
	ManagingOrg    string   `json:"managingOrg,omitempty" db:"managing_org"`
	Phone          string   `json:"phone,omitempty" db:"phone"`
	DataDate       string   `json:"dataDate,omitempty" db:"data_date"`
}

// UnmarshalJSON defaults the fee type to 무료 when the record carries no
// fee.type key. An explicit empty string is kept.
func (p *ParkingLot) UnmarshalJSON(data []byte) error {
	type plain ParkingLot
	v := plain{Fee: Fee{Type: FeeFree}}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = ParkingLot(v)
	return nil
}

// HasCoordinates reports whether the lot carries a usable position.
// The registry export writes 0,0 for rows whose geocoding failed.
func (p *ParkingLot) HasCoordinates() bool {
	return p.Latitude != 0 && p.Longitude != 0
}

// Fee is the fee schedule block of a ParkingLot. Amounts are in KRW and
// durations in minutes, as exported by the municipal registry.
type Fee struct {
	Type           FeeType `json:"type" db:"fee_type"`
	Basic          int     `json:"basic" db:"fee_basic"`
	BasicTime      int     `json:"basicTime" db:"fee_basic_time"`
	Additional     int     `json:"additional" db:"fee_additional"`
	AdditionalTime int     `json:"additionalTime" db:"fee_additional_time"`
	Daily          int     `json:"daily" db:"fee_daily"`
	Monthly        int     `json:"monthly" db:"fee_monthly"`
}

// WeatherSnapshot is the cached short-term forecast used for scoring. A
// snapshot is always replaced wholesale on refresh.
type WeatherSnapshot struct {
	Temperature              float64          `json:"temp"`
	Condition                WeatherCondition `json:"condition"`
	PrecipitationProbability int              `json:"precipitationProbability"`
	FetchedAt                time.Time        `json:"fetched_at"`
	// Fallback marks snapshots that came from the neutral default rather
	// than a successful feed response.
	Fallback bool `json:"fallback"`
}

// IsWet reports whether the condition is rain or snow.
func (w WeatherSnapshot) IsWet() bool {
	return w.Condition == ConditionRainy || w.Condition == ConditionSnowy
}

// PredictionResult is one scored hour for a facility.
type PredictionResult struct {
	Time          string             `json:"time"`
	Target        time.Time          `json:"target"`
	OccupancyRate float64            `json:"occupancy_rate"`
	Confidence    float64            `json:"confidence"`
	Factors       map[string]float64 `json:"factors"`
}

// DongCount pairs a neighborhood with its normalized enforcement weight.
type DongCount struct {
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}
