package domain

// Relation names. They double as the published file stems and table names.
const (
	RelationAircraft          = "aircraft"
	RelationRegistrations     = "registrations"
	RelationOwners            = "owners"
	RelationAircraftMakeModel = "aircraft_make_model"
	RelationEngines           = "engines"
)

// RelationNames lists every published relation in load order.
var RelationNames = []string{
	RelationAircraft,
	RelationRegistrations,
	RelationOwners,
	RelationAircraftMakeModel,
	RelationEngines,
}

// Aircraft is one row per registered N-number.
type Aircraft struct {
	NNumber            string
	SerialNo           string
	MfrMdlCode         string
	EngineCode         string
	YearMfr            *int32
	AirworthinessClass string
	Seats              *int32 // not in the extract; always nil
	Engines            *int32 // not in the extract; always nil
	RegStatus          string
	StatusDate         *Date
	RegExpiration      *Date
	IsDeregistered     bool
}

// Values returns the row in AircraftContract column order.
func (a Aircraft) Values() []any {
	return []any{
		a.NNumber, a.SerialNo, a.MfrMdlCode, a.EngineCode, a.YearMfr,
		a.AirworthinessClass, a.Seats, a.Engines, a.RegStatus,
		a.StatusDate, a.RegExpiration, a.IsDeregistered,
	}
}

// Registration is the current registration state of an N-number.
type Registration struct {
	NNumber       string
	RegType       string
	RegStatus     string
	StatusDate    *Date
	RegExpiration *Date
}

// Values returns the row in RegistrationContract column order.
func (r Registration) Values() []any {
	return []any{r.NNumber, r.RegType, r.RegStatus, r.StatusDate, r.RegExpiration}
}

// Owner holds the raw and standardized owner fields of one source record.
type Owner struct {
	OwnerID       uint64
	NNumber       string
	OwnerType     string
	OwnerNameRaw  string
	Address1Raw   string
	Address2Raw   string
	CityRaw       string
	StateRaw      string
	ZipRaw        string
	OwnerNameStd  string
	AddressAllStd string
	CityStd       string
	StateStd      string
	Zip5          string
}

// Values returns the row in OwnerContract column order.
func (o Owner) Values() []any {
	return []any{
		o.OwnerID, o.NNumber, o.OwnerType,
		o.OwnerNameRaw, o.Address1Raw, o.Address2Raw, o.CityRaw, o.StateRaw, o.ZipRaw,
		o.OwnerNameStd, o.AddressAllStd, o.CityStd, o.StateStd, o.Zip5,
	}
}

// AircraftMakeModel is a make/model reference row.
type AircraftMakeModel struct {
	MfrMdlCode   string
	Maker        string
	Model        string
	Category     string
	Type         string
	EngineType   string
	SeatsDefault *int32
}

// Values returns the row in AircraftMakeModelContract column order.
func (m AircraftMakeModel) Values() []any {
	return []any{m.MfrMdlCode, m.Maker, m.Model, m.Category, m.Type, m.EngineType, m.SeatsDefault}
}

// Engine is an engine reference row.
type Engine struct {
	EngineCode   string
	Manufacturer string
	Model        string
	Type         string
	Horsepower   *int32
	Cylinders    *int32 // not in the extract; always nil
}

// Values returns the row in EngineContract column order.
func (e Engine) Values() []any {
	return []any{e.EngineCode, e.Manufacturer, e.Model, e.Type, e.Horsepower, e.Cylinders}
}

// MasterRelations are the three relations derived from MASTER.txt.
type MasterRelations struct {
	Aircraft      []Aircraft
	Registrations []Registration
	Owners        []Owner
}

// Relations is the full set of normalized relations for one snapshot.
type Relations struct {
	MasterRelations
	AircraftMakeModel []AircraftMakeModel
	Engines           []Engine
}

// RowCounts returns the number of rows per relation name.
func (r *Relations) RowCounts() map[string]int {
	return map[string]int{
		RelationAircraft:          len(r.Aircraft),
		RelationRegistrations:     len(r.Registrations),
		RelationOwners:            len(r.Owners),
		RelationAircraftMakeModel: len(r.AircraftMakeModel),
		RelationEngines:           len(r.Engines),
	}
}
