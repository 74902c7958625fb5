package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ColumnType is the semantic type of a contract column.
type ColumnType int

const (
	TypeString ColumnType = iota + 1
	TypeNullableInt32
	TypeNullableDate
	TypeBool
	TypeUInt64
)

func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNullableInt32:
		return "int32?"
	case TypeNullableDate:
		return "date?"
	case TypeBool:
		return "bool"
	case TypeUInt64:
		return "uint64"
	default:
		return "unknown"
	}
}

// Column is one named, typed column of a contract.
type Column struct {
	Name string
	Type ColumnType
}

// Contract is the fixed column list a relation must conform to before it
// leaves the normalize stage.
type Contract struct {
	Relation string
	Columns  []Column
}

// Names returns the column names in order.
func (c Contract) Names() []string {
	names := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		names[i] = col.Name
	}
	return names
}

var AircraftContract = Contract{
	Relation: RelationAircraft,
	Columns: []Column{
		{"n_number", TypeString},
		{"serial_no", TypeString},
		{"mfr_mdl_code", TypeString},
		{"engine_code", TypeString},
		{"year_mfr", TypeNullableInt32},
		{"airworthiness_class", TypeString},
		{"seats", TypeNullableInt32},
		{"engines", TypeNullableInt32},
		{"reg_status", TypeString},
		{"status_date", TypeNullableDate},
		{"reg_expiration", TypeNullableDate},
		{"is_deregistered", TypeBool},
	},
}

var RegistrationContract = Contract{
	Relation: RelationRegistrations,
	Columns: []Column{
		{"n_number", TypeString},
		{"reg_type", TypeString},
		{"reg_status", TypeString},
		{"status_date", TypeNullableDate},
		{"reg_expiration", TypeNullableDate},
	},
}

var OwnerContract = Contract{
	Relation: RelationOwners,
	Columns: []Column{
		{"owner_id", TypeUInt64},
		{"n_number", TypeString},
		{"owner_type", TypeString},
		{"owner_name_raw", TypeString},
		{"address1_raw", TypeString},
		{"address2_raw", TypeString},
		{"city_raw", TypeString},
		{"state_raw", TypeString},
		{"zip_raw", TypeString},
		{"owner_name_std", TypeString},
		{"address_all_std", TypeString},
		{"city_std", TypeString},
		{"state_std", TypeString},
		{"zip5", TypeString},
	},
}

var AircraftMakeModelContract = Contract{
	Relation: RelationAircraftMakeModel,
	Columns: []Column{
		{"mfr_mdl_code", TypeString},
		{"maker", TypeString},
		{"model", TypeString},
		{"category", TypeString},
		{"type", TypeString},
		{"engine_type", TypeString},
		{"seats_default", TypeNullableInt32},
	},
}

var EngineContract = Contract{
	Relation: RelationEngines,
	Columns: []Column{
		{"engine_code", TypeString},
		{"manufacturer", TypeString},
		{"model", TypeString},
		{"type", TypeString},
		{"horsepower", TypeNullableInt32},
		{"cylinders", TypeNullableInt32},
	},
}

// Contracts lists every relation contract in RelationNames order.
var Contracts = []Contract{
	AircraftContract,
	RegistrationContract,
	OwnerContract,
	AircraftMakeModelContract,
	EngineContract,
}

// ContractFor returns the contract of the named relation.
func ContractFor(relation string) (Contract, bool) {
	for _, c := range Contracts {
		if c.Relation == relation {
			return c, true
		}
	}
	return Contract{}, false
}

// Row is a relation row that can report its values in contract order.
type Row interface {
	Values() []any
}

// Vector is one typed column of a Table. Only the slice matching the
// column type is populated.
type Vector struct {
	Column
	Strings []string
	Int32s  []*int32
	Dates   []*Date
	Bools   []bool
	UInt64s []uint64
}

// Table is a relation cast to its contract, stored column-oriented.
type Table struct {
	Contract Contract
	Vectors  []Vector
	NumRows  int
}

// Vector returns the named column.
func (t *Table) Vector(name string) (*Vector, bool) {
	for i := range t.Vectors {
		if t.Vectors[i].Name == name {
			return &t.Vectors[i], true
		}
	}
	return nil, false
}

// Value returns row i of the vector as string, *int32, *Date, bool, or uint64.
func (v *Vector) Value(i int) any {
	switch v.Type {
	case TypeString:
		return v.Strings[i]
	case TypeNullableInt32:
		return v.Int32s[i]
	case TypeNullableDate:
		return v.Dates[i]
	case TypeBool:
		return v.Bools[i]
	case TypeUInt64:
		return v.UInt64s[i]
	default:
		return nil
	}
}

// Row returns row i of the table in contract column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Vectors))
	for j := range t.Vectors {
		row[j] = t.Vectors[j].Value(i)
	}
	return row
}

// Cast coerces rows to contract c. Any value that cannot be coerced to its
// column type, or a row of the wrong width, fails the whole relation with
// ErrSchemaCast.
func Cast[R Row](c Contract, rows []R) (*Table, error) {
	t := &Table{Contract: c, Vectors: make([]Vector, len(c.Columns))}
	for i, col := range c.Columns {
		t.Vectors[i] = newVector(col, len(rows))
	}

	for i, row := range rows {
		values := row.Values()
		if len(values) != len(c.Columns) {
			return nil, fmt.Errorf("%w: %s row %d has %d values, want %d",
				ErrSchemaCast, c.Relation, i, len(values), len(c.Columns))
		}
		for j, v := range values {
			if err := t.Vectors[j].append(v); err != nil {
				return nil, fmt.Errorf("%w: %s.%s row %d: %v",
					ErrSchemaCast, c.Relation, c.Columns[j].Name, i, err)
			}
		}
	}
	t.NumRows = len(rows)
	return t, nil
}

// CastAll casts every relation in r and returns the tables keyed by name.
func CastAll(r *Relations) (map[string]*Table, error) {
	tables := make(map[string]*Table, len(Contracts))
	add := func(t *Table, err error) error {
		if err != nil {
			return err
		}
		tables[t.Contract.Relation] = t
		return nil
	}

	if err := add(Cast(AircraftContract, r.Aircraft)); err != nil {
		return nil, err
	}
	if err := add(Cast(RegistrationContract, r.Registrations)); err != nil {
		return nil, err
	}
	if err := add(Cast(OwnerContract, r.Owners)); err != nil {
		return nil, err
	}
	if err := add(Cast(AircraftMakeModelContract, r.AircraftMakeModel)); err != nil {
		return nil, err
	}
	if err := add(Cast(EngineContract, r.Engines)); err != nil {
		return nil, err
	}
	return tables, nil
}

func newVector(col Column, n int) Vector {
	v := Vector{Column: col}
	switch col.Type {
	case TypeString:
		v.Strings = make([]string, 0, n)
	case TypeNullableInt32:
		v.Int32s = make([]*int32, 0, n)
	case TypeNullableDate:
		v.Dates = make([]*Date, 0, n)
	case TypeBool:
		v.Bools = make([]bool, 0, n)
	case TypeUInt64:
		v.UInt64s = make([]uint64, 0, n)
	}
	return v
}

func (v *Vector) append(val any) error {
	switch v.Type {
	case TypeString:
		s, err := castString(val)
		if err != nil {
			return err
		}
		v.Strings = append(v.Strings, s)
	case TypeNullableInt32:
		n, err := castNullableInt32(val)
		if err != nil {
			return err
		}
		v.Int32s = append(v.Int32s, n)
	case TypeNullableDate:
		d, err := castNullableDate(val)
		if err != nil {
			return err
		}
		v.Dates = append(v.Dates, d)
	case TypeBool:
		b, ok := val.(bool)
		if !ok {
			return fmt.Errorf("cannot cast %T to %s", val, v.Type)
		}
		v.Bools = append(v.Bools, b)
	case TypeUInt64:
		u, err := castUInt64(val)
		if err != nil {
			return err
		}
		v.UInt64s = append(v.UInt64s, u)
	default:
		return fmt.Errorf("unsupported column type %d", v.Type)
	}
	return nil
}

func castString(val any) (string, error) {
	switch x := val.(type) {
	case string:
		return x, nil
	case *string:
		if x == nil {
			return "", nil
		}
		return *x, nil
	default:
		return "", fmt.Errorf("cannot cast %T to %s", val, TypeString)
	}
}

func castNullableInt32(val any) (*int32, error) {
	fromInt64 := func(n int64) (*int32, error) {
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("value %d overflows int32", n)
		}
		v := int32(n)
		return &v, nil
	}

	switch x := val.(type) {
	case nil:
		return nil, nil
	case *int32:
		return x, nil
	case int32:
		return &x, nil
	case int:
		return fromInt64(int64(x))
	case int64:
		return fromInt64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to %s", x, TypeNullableInt32)
		}
		return fromInt64(n)
	default:
		return nil, fmt.Errorf("cannot cast %T to %s", val, TypeNullableInt32)
	}
}

func castNullableDate(val any) (*Date, error) {
	switch x := val.(type) {
	case nil:
		return nil, nil
	case *Date:
		return x, nil
	case Date:
		return &x, nil
	case time.Time:
		d := DateOf(x)
		return &d, nil
	case *time.Time:
		return DatePtr(x), nil
	default:
		return nil, fmt.Errorf("cannot cast %T to %s", val, TypeNullableDate)
	}
}

func castUInt64(val any) (uint64, error) {
	switch x := val.(type) {
	case uint64:
		return x, nil
	case int64:
		if x < 0 {
			return 0, fmt.Errorf("value %d is negative", x)
		}
		return uint64(x), nil
	default:
		return 0, fmt.Errorf("cannot cast %T to %s", val, TypeUInt64)
	}
}
