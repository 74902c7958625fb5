package domain

import (
	"fmt"
	"io"
)

// AircraftRefColumns are the ACFTREF.txt columns the parser requires.
var AircraftRefColumns = []string{"CODE", "MFR", "MODEL", "AC-CAT", "TYPE-ACFT", "TYPE-ENG", "NO-SEATS"}

// EngineRefColumns are the ENGINE.txt columns the parser requires.
var EngineRefColumns = []string{"CODE", "MFR", "MODEL", "TYPE", "HORSEPOWER"}

// ParseAircraftRef parses ACFTREF.txt into the aircraft_make_model relation.
// Rows are never dropped; a seat count that does not parse becomes nil.
func ParseAircraftRef(r io.Reader) ([]AircraftMakeModel, error) {
	src, err := readSourceTable(r, AircraftRefColumns)
	if err != nil {
		return nil, fmt.Errorf("parse ACFTREF: %w", err)
	}

	out := make([]AircraftMakeModel, 0, len(src.rows))
	for _, row := range src.rows {
		out = append(out, AircraftMakeModel{
			MfrMdlCode:   src.cell(row, "CODE"),
			Maker:        src.cell(row, "MFR"),
			Model:        src.cell(row, "MODEL"),
			Category:     src.cell(row, "AC-CAT"),
			Type:         src.cell(row, "TYPE-ACFT"),
			EngineType:   src.cell(row, "TYPE-ENG"),
			SeatsDefault: parseNullableInt32(src.cell(row, "NO-SEATS")),
		})
	}
	return out, nil
}

// ParseEngineRef parses ENGINE.txt into the engines relation. Cylinders are
// not part of the extract and are always nil.
func ParseEngineRef(r io.Reader) ([]Engine, error) {
	src, err := readSourceTable(r, EngineRefColumns)
	if err != nil {
		return nil, fmt.Errorf("parse ENGINE: %w", err)
	}

	out := make([]Engine, 0, len(src.rows))
	for _, row := range src.rows {
		out = append(out, Engine{
			EngineCode:   src.cell(row, "CODE"),
			Manufacturer: src.cell(row, "MFR"),
			Model:        src.cell(row, "MODEL"),
			Type:         src.cell(row, "TYPE"),
			Horsepower:   parseNullableInt32(src.cell(row, "HORSEPOWER")),
		})
	}
	return out, nil
}
