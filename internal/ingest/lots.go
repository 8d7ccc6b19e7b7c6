package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"parkingpass/internal/types"
)

// Facility registry CSV columns.
const (
	colLotName        = "주차장명"
	colLotManageNo    = "주차장관리번호"
	colLotCategory    = "주차장구분"
	colLotType        = "주차장유형"
	colLotRoadAddr    = "소재지도로명주소"
	colLotJibunAddr   = "소재지지번주소"
	colLotSpaces      = "주차구획수"
	colLotFeeInfo     = "요금정보"
	colLotBasicTime   = "주차기본시간"
	colLotBasicFee    = "주차기본요금"
	colLotAddTime     = "추가단위시간"
	colLotAddFee      = "추가단위요금"
	colLotDailyFee    = "1일주차권요금"
	colLotMonthlyFee  = "월정기권요금"
	colLotPayment     = "결제방법"
	colLotNotes       = "특기사항"
	colLotOrg         = "관리기관명"
	colLotPhone       = "전화번호"
	colLotLat         = "위도"
	colLotLon         = "경도"
	colLotDisabled    = "장애인전용주차구역보유여부"
	colLotDataDate    = "데이터기준일자"
	colWeekdayOpen    = "평일운영시작시각"
	colWeekdayClose   = "평일운영종료시각"
	colSaturdayOpen   = "토요일운영시작시각"
	colSaturdayClose  = "토요일운영종료시각"
	colHolidayOpen    = "공휴일운영시작시각"
	colHolidayClose   = "공휴일운영종료시각"
)

const (
	// Rows without a management number are numbered from here in output
	// order.
	fallbackIDBase    = 1000
	publicCategoryTag = "공영"
)

// Geocoder resolves an address to coordinates. ok is false when the address
// could not be placed.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lon float64, ok bool, err error)
}

// LotStats reports what ReadLots did with each row.
type LotStats struct {
	Rows     int
	Kept     int
	Geocoded int
	Skipped  int
	Encoding string
}

// LotOptions tunes ReadLots. A nil Geocoder keeps the default of dropping
// rows without coordinates.
type LotOptions struct {
	Geocoder Geocoder
	Logger   *slog.Logger
}

// ReadLots parses the facility registry CSV. Rows without a name are
// dropped, as are rows without coordinates that the geocoder (if any) cannot
// place.
func ReadLots(ctx context.Context, r io.Reader, opts LotOptions) ([]types.ParkingLot, LotStats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	data, enc, err := Decode(r)
	if err != nil {
		return nil, LotStats{}, err
	}
	t, err := readTable(data)
	if err != nil {
		return nil, LotStats{}, err
	}
	if !t.has(colLotName) {
		return nil, LotStats{}, fmt.Errorf("facility csv: missing column %q", colLotName)
	}

	stats := LotStats{Rows: len(t.rows), Encoding: enc}
	out := make([]types.ParkingLot, 0, len(t.rows))

	for _, row := range t.rows {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		lot := lotFromRow(t, row, len(out))
		if lot.Name == "" {
			stats.Skipped++
			continue
		}

		if !lot.HasCoordinates() {
			if opts.Geocoder == nil || lot.Address == "" {
				stats.Skipped++
				continue
			}
			lat, lon, ok, err := opts.Geocoder.Geocode(ctx, lot.Address)
			if err != nil {
				logger.Warn("geocoding failed", "id", lot.ID, "address", lot.Address, "error", err)
			}
			if err != nil || !ok {
				stats.Skipped++
				continue
			}
			lot.Latitude, lot.Longitude = lat, lon
			stats.Geocoded++
		}

		out = append(out, lot)
	}

	stats.Kept = len(out)
	logger.Info("facility registry read",
		"encoding", enc,
		"rows", stats.Rows,
		"kept", stats.Kept,
		"geocoded", stats.Geocoded,
		"skipped", stats.Skipped,
	)
	return out, stats, nil
}

// lotFromRow maps one CSV row. seq numbers rows without a management number.
func lotFromRow(t *table, row []string, seq int) types.ParkingLot {
	id := strings.ReplaceAll(t.get(row, colLotManageNo), "-", "")
	if id == "" {
		id = strconv.Itoa(fallbackIDBase + seq)
	}

	kind := types.LotPrivate
	if strings.Contains(t.get(row, colLotCategory), publicCategoryTag) {
		kind = types.LotPublic
	}

	address := t.get(row, colLotRoadAddr)
	if address == "" {
		address = t.get(row, colLotJibunAddr)
	}

	notes := t.get(row, colLotNotes)
	disabled := t.get(row, colLotDisabled) == "Y"

	return types.ParkingLot{
		ID:             "P" + id,
		Name:           t.get(row, colLotName),
		Kind:           kind,
		ParkingType:    t.get(row, colLotType),
		Address:        address,
		TotalSpaces:    parseInt(t.get(row, colLotSpaces)),
		OperatingHours: operatingHours(t, row),
		Fee: types.Fee{
			Type:           types.FeeType(t.get(row, colLotFeeInfo)),
			Basic:          parseInt(t.get(row, colLotBasicFee)),
			BasicTime:      parseInt(t.get(row, colLotBasicTime)),
			Additional:     parseInt(t.get(row, colLotAddFee)),
			AdditionalTime: parseInt(t.get(row, colLotAddTime)),
			Daily:          parseInt(t.get(row, colLotDailyFee)),
			Monthly:        parseInt(t.get(row, colLotMonthlyFee)),
		},
		FeeInfo:        notes,
		PaymentMethods: t.get(row, colLotPayment),
		Latitude:       parseFloat(t.get(row, colLotLat)),
		Longitude:      parseFloat(t.get(row, colLotLon)),
		HasDisabled:    disabled,
		Facilities:     facilities(disabled, notes),
		ManagingOrg:    t.get(row, colLotOrg),
		Phone:          t.get(row, colLotPhone),
		DataDate:       t.get(row, colLotDataDate),
	}
}

// facilityKeywords maps a label to the note keywords that imply it.
var facilityKeywords = []struct {
	label    string
	keywords []string
}{
	{"전기차 충전", []string{"전기차", "충전"}},
	{"경차 전용", []string{"경차"}},
	{"임산부 전용", []string{"임산부"}},
	{"화장실", []string{"화장실"}},
	{"엘리베이터", []string{"엘리베이터", "승강기"}},
}

func facilities(disabled bool, notes string) []string {
	var out []string
	if disabled {
		out = append(out, "장애인 주차")
	}
	for _, f := range facilityKeywords {
		for _, kw := range f.keywords {
			if strings.Contains(notes, kw) {
				out = append(out, f.label)
				break
			}
		}
	}
	return out
}

// operatingHours renders the weekday, Saturday and holiday windows as one
// line, e.g. "평일 09:00~18:00 / 토요일 휴무/정보없음 / 공휴일 휴무/정보없음".
func operatingHours(t *table, row []string) string {
	window := func(openCol, closeCol string) string {
		o, c := clockText(t.get(row, openCol)), clockText(t.get(row, closeCol))
		if o == "" || c == "" {
			return ""
		}
		return o + "~" + c
	}

	var parts []string
	if w := window(colWeekdayOpen, colWeekdayClose); w != "" {
		parts = append(parts, "평일 "+w)
	}
	if w := window(colSaturdayOpen, colSaturdayClose); w != "" {
		parts = append(parts, "토요일 "+w)
	} else {
		parts = append(parts, "토요일 휴무/정보없음")
	}
	if w := window(colHolidayOpen, colHolidayClose); w != "" {
		parts = append(parts, "공휴일 "+w)
	} else {
		parts = append(parts, "공휴일 휴무/정보없음")
	}
	return strings.Join(parts, " / ")
}

// clockText normalizes "900" or "0900" to "09:00". Values already holding a
// colon pass through; anything else is "".
func clockText(s string) string {
	if strings.Contains(s, ":") {
		return s
	}
	if s == "" || strings.Trim(s, "0123456789") != "" {
		return ""
	}
	if len(s) < 4 {
		s = strings.Repeat("0", 4-len(s)) + s
	}
	return s[:2] + ":" + s[2:]
}

// parseInt accepts integer or decimal text ("12.0") and yields 0 otherwise.
func parseInt(s string) int {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
