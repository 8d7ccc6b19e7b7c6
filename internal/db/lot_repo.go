package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"parkingpass/internal/types"
)

// Nullable text columns are coalesced so rows scan into plain strings.
const lotColumns = `id, name, COALESCE(kind, 'private'), COALESCE(parking_type, ''),
	COALESCE(address, ''), COALESCE(total_spaces, 0), COALESCE(operating_hours, ''),
	COALESCE(fee_type, '무료'), COALESCE(fee_basic, 0), COALESCE(fee_basic_time, 0),
	COALESCE(fee_additional, 0), COALESCE(fee_additional_time, 0),
	COALESCE(fee_daily, 0), COALESCE(fee_monthly, 0),
	COALESCE(fee_info, ''), COALESCE(payment_methods, ''),
	COALESCE(latitude, 0), COALESCE(longitude, 0),
	COALESCE(has_disabled_parking, false), COALESCE(facilities, '{}'),
	COALESCE(managing_org, ''), COALESCE(phone, ''), COALESCE(data_date, '')`

// LotRepository reads the parking_lots table.
type LotRepository struct {
	db DBTX
}

// NewLotRepository creates a repository over db.
func NewLotRepository(db DBTX) *LotRepository {
	return &LotRepository{db: db}
}

// LoadLots returns every facility ordered by ID.
func (r *LotRepository) LoadLots(ctx context.Context) ([]types.ParkingLot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+lotColumns+` FROM parking_lots ORDER BY id`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query parking lots", err)
	}
	defer rows.Close()

	var out []types.ParkingLot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan parking lot row", err)
		}
		out = append(out, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating parking lot rows", err)
	}
	return out, nil
}

const insertLot = `INSERT INTO parking_lots (
	id, name, kind, parking_type, address, total_spaces, operating_hours,
	fee_type, fee_basic, fee_basic_time, fee_additional, fee_additional_time,
	fee_daily, fee_monthly, fee_info, payment_methods, latitude, longitude,
	has_disabled_parking, facilities, managing_org, phone, data_date
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
	$17, $18, $19, $20, $21, $22, $23)`

// ReplaceAll swaps the table contents for list. Run it inside a transaction
// so readers never see a partial registry.
func (r *LotRepository) ReplaceAll(ctx context.Context, list []types.ParkingLot) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM parking_lots`); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to clear parking lots", err)
	}
	for _, lot := range list {
		facilities := lot.Facilities
		if facilities == nil {
			facilities = []string{}
		}
		_, err := r.db.Exec(ctx, insertLot,
			lot.ID, lot.Name, string(lot.Kind), lot.ParkingType, lot.Address,
			lot.TotalSpaces, lot.OperatingHours,
			string(lot.Fee.Type), lot.Fee.Basic, lot.Fee.BasicTime,
			lot.Fee.Additional, lot.Fee.AdditionalTime, lot.Fee.Daily, lot.Fee.Monthly,
			lot.FeeInfo, lot.PaymentMethods, lot.Latitude, lot.Longitude,
			lot.HasDisabled, facilities, lot.ManagingOrg, lot.Phone, lot.DataDate,
		)
		if err != nil {
			return types.NewAppErrorWithDetails(types.ErrCodeInternalDB, "failed to insert parking lot", err,
				map[string]any{"id": lot.ID})
		}
	}
	return nil
}

func scanLot(row pgx.Row) (types.ParkingLot, error) {
	var (
		lot     types.ParkingLot
		kind    string
		feeType string
	)
	err := row.Scan(
		&lot.ID,
		&lot.Name,
		&kind,
		&lot.ParkingType,
		&lot.Address,
		&lot.TotalSpaces,
		&lot.OperatingHours,
		&feeType,
		&lot.Fee.Basic,
		&lot.Fee.BasicTime,
		&lot.Fee.Additional,
		&lot.Fee.AdditionalTime,
		&lot.Fee.Daily,
		&lot.Fee.Monthly,
		&lot.FeeInfo,
		&lot.PaymentMethods,
		&lot.Latitude,
		&lot.Longitude,
		&lot.HasDisabled,
		&lot.Facilities,
		&lot.ManagingOrg,
		&lot.Phone,
		&lot.DataDate,
	)
	if err != nil {
		return types.ParkingLot{}, err
	}
	lot.Kind = types.LotKind(kind)
	lot.Fee.Type = types.FeeType(feeType)
	return lot, nil
}
