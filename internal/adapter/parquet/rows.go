package parquet

import (
	"github.com/hangarbay/registry-etl/internal/domain"
	pq "github.com/parquet-go/parquet-go"
)

// encodeRow converts row i of a cast table to Parquet values. Nullable
// columns carry definition level 1 when set and 0 when null.
func encodeRow(t *domain.Table, i int) pq.Row {
	row := make(pq.Row, len(t.Vectors))
	for j := range t.Vectors {
		row[j] = encodeValue(&t.Vectors[j], i).Level(0, definitionLevel(&t.Vectors[j], i), j)
	}
	return row
}

func encodeValue(v *domain.Vector, i int) pq.Value {
	switch v.Type {
	case domain.TypeNullableInt32:
		if n := v.Int32s[i]; n != nil {
			return pq.Int32Value(*n)
		}
		return pq.NullValue()
	case domain.TypeNullableDate:
		if d := v.Dates[i]; d != nil {
			return pq.Int32Value(d.EpochDays())
		}
		return pq.NullValue()
	case domain.TypeBool:
		return pq.BooleanValue(v.Bools[i])
	case domain.TypeUInt64:
		return pq.Int64Value(int64(v.UInt64s[i])) //nolint:gosec // stored bit-for-bit as UINT_64
	default:
		return pq.ByteArrayValue([]byte(v.Strings[i]))
	}
}

func definitionLevel(v *domain.Vector, i int) int {
	switch v.Type {
	case domain.TypeNullableInt32:
		if v.Int32s[i] != nil {
			return 1
		}
	case domain.TypeNullableDate:
		if v.Dates[i] != nil {
			return 1
		}
	}
	return 0
}

// record is one decoded Parquet row addressed by column name.
type record struct {
	row   pq.Row
	index map[string]int
}

func (r record) value(name string) pq.Value { return r.row[r.index[name]] }

func (r record) str(name string) string { return string(r.value(name).ByteArray()) }

func (r record) int32(name string) *int32 {
	v := r.value(name)
	if v.IsNull() {
		return nil
	}
	n := v.Int32()
	return &n
}

func (r record) date(name string) *domain.Date {
	v := r.value(name)
	if v.IsNull() {
		return nil
	}
	d := domain.DateFromEpochDays(v.Int32())
	return &d
}

func (r record) boolean(name string) bool { return r.value(name).Boolean() }

func (r record) uint64(name string) uint64 { return r.value(name).Uint64() }

func decodeAircraft(r record) domain.Aircraft {
	return domain.Aircraft{
		NNumber:            r.str("n_number"),
		SerialNo:           r.str("serial_no"),
		MfrMdlCode:         r.str("mfr_mdl_code"),
		EngineCode:         r.str("engine_code"),
		YearMfr:            r.int32("year_mfr"),
		AirworthinessClass: r.str("airworthiness_class"),
		Seats:              r.int32("seats"),
		Engines:            r.int32("engines"),
		RegStatus:          r.str("reg_status"),
		StatusDate:         r.date("status_date"),
		RegExpiration:      r.date("reg_expiration"),
		IsDeregistered:     r.boolean("is_deregistered"),
	}
}

func decodeRegistration(r record) domain.Registration {
	return domain.Registration{
		NNumber:       r.str("n_number"),
		RegType:       r.str("reg_type"),
		RegStatus:     r.str("reg_status"),
		StatusDate:    r.date("status_date"),
		RegExpiration: r.date("reg_expiration"),
	}
}

func decodeOwner(r record) domain.Owner {
	return domain.Owner{
		OwnerID:       r.uint64("owner_id"),
		NNumber:       r.str("n_number"),
		OwnerType:     r.str("owner_type"),
		OwnerNameRaw:  r.str("owner_name_raw"),
		Address1Raw:   r.str("address1_raw"),
		Address2Raw:   r.str("address2_raw"),
		CityRaw:       r.str("city_raw"),
		StateRaw:      r.str("state_raw"),
		ZipRaw:        r.str("zip_raw"),
		OwnerNameStd:  r.str("owner_name_std"),
		AddressAllStd: r.str("address_all_std"),
		CityStd:       r.str("city_std"),
		StateStd:      r.str("state_std"),
		Zip5:          r.str("zip5"),
	}
}

func decodeMakeModel(r record) domain.AircraftMakeModel {
	return domain.AircraftMakeModel{
		MfrMdlCode:   r.str("mfr_mdl_code"),
		Maker:        r.str("maker"),
		Model:        r.str("model"),
		Category:     r.str("category"),
		Type:         r.str("type"),
		EngineType:   r.str("engine_type"),
		SeatsDefault: r.int32("seats_default"),
	}
}

func decodeEngine(r record) domain.Engine {
	return domain.Engine{
		EngineCode:   r.str("engine_code"),
		Manufacturer: r.str("manufacturer"),
		Model:        r.str("model"),
		Type:         r.str("type"),
		Horsepower:   r.int32("horsepower"),
		Cylinders:    r.int32("cylinders"),
	}
}
