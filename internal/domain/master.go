package domain

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MASTER.txt column names.
const (
	colNNumber        = "N-NUMBER"
	colSerialNumber   = "SERIAL NUMBER"
	colMfrMdlCode     = "MFR MDL CODE"
	colEngMfrMdl      = "ENG MFR MDL"
	colYearMfr        = "YEAR MFR"
	colTypeRegistrant = "TYPE REGISTRANT"
	colName           = "NAME"
	colStreet         = "STREET"
	colStreet2        = "STREET2"
	colCity           = "CITY"
	colState          = "STATE"
	colZipCode        = "ZIP CODE"
	colLastActionDate = "LAST ACTION DATE"
	colCertification  = "CERTIFICATION"
	colTypeAircraft   = "TYPE AIRCRAFT"
	colStatusCode     = "STATUS CODE"
	colExpirationDate = "EXPIRATION DATE"
)

// MasterColumns are the MASTER.txt columns the parser requires.
var MasterColumns = []string{
	colNNumber, colSerialNumber, colMfrMdlCode, colEngMfrMdl, colYearMfr,
	colTypeAircraft, colTypeRegistrant, colName, colStreet, colStreet2,
	colCity, colState, colZipCode, colLastActionDate, colCertification,
	colStatusCode, colExpirationDate,
}

// ParseStats counts per-field degradations resolved to null, empty, or
// pass-through while parsing. They are reported in aggregate only.
type ParseStats struct {
	Records            int `json:"records"`
	BlankNNumbers      int `json:"blank_n_numbers"`
	InvalidDates       int `json:"invalid_dates"`
	InvalidYears       int `json:"invalid_years"`
	UnrecognizedStates int `json:"unrecognized_states"`
	InvalidZips        int `json:"invalid_zips"`
}

// Degraded returns the non-record counters keyed by kind.
func (s ParseStats) Degraded() map[string]int {
	return map[string]int{
		"blank_n_number":     s.BlankNNumbers,
		"invalid_date":       s.InvalidDates,
		"invalid_year":       s.InvalidYears,
		"unrecognized_state": s.UnrecognizedStates,
		"invalid_zip":        s.InvalidZips,
	}
}

// ParseMaster parses MASTER.txt into the aircraft, registrations, and
// owners relations. Every source record yields exactly one row in each.
//
// A missing expected column is fatal. Unparseable dates and years become
// nil, and unrecognized states or ZIPs degrade per StandardizeState and
// StandardizeZip; none of those abort the batch.
func ParseMaster(r io.Reader) (MasterRelations, ParseStats, error) {
	src, err := readSourceTable(r, MasterColumns)
	if err != nil {
		return MasterRelations{}, ParseStats{}, fmt.Errorf("parse MASTER: %w", err)
	}

	n := len(src.rows)
	out := MasterRelations{
		Aircraft:      make([]Aircraft, 0, n),
		Registrations: make([]Registration, 0, n),
		Owners:        make([]Owner, 0, n),
	}
	var stats ParseStats

	for _, row := range src.rows {
		stats.Records++
		get := func(col string) string { return src.cell(row, col) }

		nNumber := get(colNNumber)
		if nNumber == "" {
			stats.BlankNNumbers++
		}

		statusDate := parseDateCounted(get(colLastActionDate), &stats)
		expiration := parseDateCounted(get(colExpirationDate), &stats)
		regStatus := get(colStatusCode)

		yearRaw := get(colYearMfr)
		year := parseNullableInt32(yearRaw)
		if year == nil && yearRaw != "" {
			stats.InvalidYears++
		}

		out.Aircraft = append(out.Aircraft, Aircraft{
			NNumber:            nNumber,
			SerialNo:           get(colSerialNumber),
			MfrMdlCode:         get(colMfrMdlCode),
			EngineCode:         get(colEngMfrMdl),
			YearMfr:            year,
			AirworthinessClass: get(colTypeAircraft),
			RegStatus:          regStatus,
			StatusDate:         statusDate,
			RegExpiration:      expiration,
			IsDeregistered:     false,
		})

		out.Registrations = append(out.Registrations, Registration{
			NNumber:       nNumber,
			RegType:       get(colCertification),
			RegStatus:     regStatus,
			StatusDate:    copyDate(statusDate),
			RegExpiration: copyDate(expiration),
		})

		owner := buildOwner(nNumber, get)
		if owner.StateRaw != "" && !IsStateCode(owner.StateStd) {
			stats.UnrecognizedStates++
		}
		if owner.ZipRaw != "" && owner.Zip5 == "" {
			stats.InvalidZips++
		}
		out.Owners = append(out.Owners, owner)
	}

	return out, stats, nil
}

// buildOwner keeps the raw owner fields verbatim (trimmed), standardizes
// them, and derives the owner id. Blank owners still produce a row.
func buildOwner(nNumber string, get func(string) string) Owner {
	o := Owner{
		NNumber:      nNumber,
		OwnerType:    get(colTypeRegistrant),
		OwnerNameRaw: get(colName),
		Address1Raw:  get(colStreet),
		Address2Raw:  get(colStreet2),
		CityRaw:      get(colCity),
		StateRaw:     get(colState),
		ZipRaw:       get(colZipCode),
	}
	o.OwnerNameStd = StandardizeOwnerName(o.OwnerNameRaw)
	o.AddressAllStd = CombineAddress(o.Address1Raw, o.Address2Raw)
	o.CityStd = CleanText(o.CityRaw)
	o.StateStd = StandardizeState(o.StateRaw)
	o.Zip5 = StandardizeZip(o.ZipRaw)
	o.OwnerID = OwnerIDOf(o)
	return o
}

func parseDateCounted(s string, stats *ParseStats) *Date {
	d := ParseDate(s)
	if d == nil && s != "" {
		stats.InvalidDates++
	}
	return d
}

// parseNullableInt32 parses an integer cell. Integral decimals such as
// "1998.0" are accepted; anything else, including blanks, returns nil.
func parseNullableInt32(s string) *int32 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 32); err == nil {
		n := int32(v)
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int32(f)) {
		return nil
	}
	n := int32(f)
	return &n
}

func copyDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
