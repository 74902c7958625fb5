package postgres

import (
	"fmt"
	"strings"

	"github.com/hangarbay/registry-etl/internal/domain"
)

func columnType(t domain.ColumnType) string {
	switch t {
	case domain.TypeString:
		return "TEXT NOT NULL"
	case domain.TypeNullableInt32:
		return "INTEGER"
	case domain.TypeNullableDate:
		return "DATE"
	case domain.TypeBool:
		return "BOOLEAN NOT NULL"
	case domain.TypeUInt64:
		// Postgres has no unsigned 64-bit type; ids are stored bit-for-bit.
		return "BIGINT NOT NULL"
	default:
		return "TEXT"
	}
}

func createTableSQL(c domain.Contract) string {
	cols := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		cols[i] = fmt.Sprintf("\t%s %s", col.Name, columnType(col.Type))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", c.Relation, strings.Join(cols, ",\n"))
}

const createCodeTableSQL = `CREATE TABLE IF NOT EXISTS %s (
	code        TEXT PRIMARY KEY,
	description TEXT NOT NULL
)`

// indexes cover the join and lookup columns of the decoded views.
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_aircraft_n_number ON aircraft(n_number)`,
	`CREATE INDEX IF NOT EXISTS idx_aircraft_mfr_mdl_code ON aircraft(mfr_mdl_code)`,
	`CREATE INDEX IF NOT EXISTS idx_aircraft_engine_code ON aircraft(engine_code)`,
	`CREATE INDEX IF NOT EXISTS idx_registrations_n_number ON registrations(n_number)`,
	`CREATE INDEX IF NOT EXISTS idx_owners_n_number ON owners(n_number)`,
	`CREATE INDEX IF NOT EXISTS idx_owners_owner_id ON owners(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_aircraft_make_model_code ON aircraft_make_model(mfr_mdl_code)`,
	`CREATE INDEX IF NOT EXISTS idx_engines_code ON engines(engine_code)`,
}

func ownersSummarySQL() string {
	return fmt.Sprintf(`CREATE MATERIALIZED VIEW IF NOT EXISTS owners_summary AS
SELECT
	n_number,
	COUNT(*) AS owner_count,
	STRING_AGG(owner_name_std, '; ') AS owner_names_concat,
	BOOL_OR(owner_type IN (%s)) AS any_trust_flag
FROM owners
GROUP BY n_number`, quoteList(domain.TrustOwnerTypes))
}

var views = []string{
	`CREATE OR REPLACE VIEW aircraft_decoded AS
SELECT
	a.n_number,
	a.serial_no,
	a.mfr_mdl_code,
	m.maker,
	m.model,
	a.engine_code,
	a.year_mfr,
	a.airworthiness_class AS airworthiness_code,
	ac.description AS airworthiness_class,
	a.seats,
	a.engines,
	a.reg_status AS status_code,
	sc.description AS reg_status,
	a.status_date,
	a.reg_expiration,
	a.is_deregistered
FROM aircraft a
LEFT JOIN aircraft_make_model m ON a.mfr_mdl_code = m.mfr_mdl_code
LEFT JOIN status_codes sc ON a.reg_status = sc.code
LEFT JOIN airworthiness_classes ac ON a.airworthiness_class = ac.code`,

	`CREATE OR REPLACE VIEW owners_clean AS
SELECT
	o.n_number,
	o.owner_type AS owner_type_code,
	ot.description AS owner_type,
	o.owner_name_std AS owner_name,
	o.address_all_std AS address,
	o.city_std AS city,
	o.state_std AS state,
	o.zip5 AS zip
FROM owners o
LEFT JOIN owner_types ot ON o.owner_type = ot.code`,
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return strings.Join(quoted, ", ")
}
