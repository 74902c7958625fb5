package clickhouse

import (
	"fmt"
	"strings"

	"github.com/hangarbay/registry-etl/internal/domain"
)

// sortingKeys are the MergeTree ORDER BY columns per relation.
var sortingKeys = map[string][]string{
	domain.RelationAircraft:          {"n_number"},
	domain.RelationRegistrations:     {"n_number"},
	domain.RelationOwners:            {"n_number", "owner_id"},
	domain.RelationAircraftMakeModel: {"mfr_mdl_code"},
	domain.RelationEngines:           {"engine_code"},
}

func columnType(t domain.ColumnType) string {
	switch t {
	case domain.TypeString:
		return "String"
	case domain.TypeNullableInt32:
		return "Nullable(Int32)"
	case domain.TypeNullableDate:
		return "Nullable(Date32)"
	case domain.TypeBool:
		return "Bool"
	case domain.TypeUInt64:
		return "UInt64"
	default:
		return "String"
	}
}

// createTableSQL renders a MergeTree table for contract c under name.
func createTableSQL(c domain.Contract, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", name)
	for i, col := range c.Columns {
		sep := ","
		if i == len(c.Columns)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "\t%s %s%s\n", col.Name, columnType(col.Type), sep)
	}
	b.WriteString(")\nENGINE = MergeTree()\n")

	keys, ok := sortingKeys[c.Relation]
	if !ok {
		keys = []string{c.Columns[0].Name}
	}
	fmt.Fprintf(&b, "ORDER BY (%s)", strings.Join(keys, ", "))
	return b.String()
}

func insertSQL(c domain.Contract, name string) string {
	return fmt.Sprintf("INSERT INTO %s (%s)", name, strings.Join(c.Names(), ", "))
}

const createCodeTableSQL = `CREATE TABLE %s (
	code String,
	description String
)
ENGINE = MergeTree()
ORDER BY code`

func ownersSummarySQL(name string) string {
	return fmt.Sprintf(`CREATE TABLE %s
ENGINE = MergeTree()
ORDER BY n_number
AS SELECT
	n_number,
	toUInt32(count()) AS owner_count,
	arrayStringConcat(groupArray(owner_name_std), '; ') AS owner_names_concat,
	max(owner_type IN (%s)) = 1 AS any_trust_flag
FROM owners
GROUP BY n_number`, name, quoteList(domain.TrustOwnerTypes))
}

var views = []string{
	`CREATE OR REPLACE VIEW aircraft_decoded AS
SELECT
	a.n_number AS n_number,
	a.serial_no AS serial_no,
	a.mfr_mdl_code AS mfr_mdl_code,
	m.maker AS maker,
	m.model AS model,
	a.engine_code AS engine_code,
	a.year_mfr AS year_mfr,
	a.airworthiness_class AS airworthiness_code,
	ac.description AS airworthiness_class,
	a.seats AS seats,
	a.engines AS engines,
	a.reg_status AS status_code,
	sc.description AS reg_status,
	a.status_date AS status_date,
	a.reg_expiration AS reg_expiration,
	a.is_deregistered AS is_deregistered
FROM aircraft AS a
LEFT JOIN aircraft_make_model AS m ON a.mfr_mdl_code = m.mfr_mdl_code
LEFT JOIN status_codes AS sc ON a.reg_status = sc.code
LEFT JOIN airworthiness_classes AS ac ON a.airworthiness_class = ac.code`,

	`CREATE OR REPLACE VIEW owners_clean AS
SELECT
	o.n_number AS n_number,
	o.owner_type AS owner_type_code,
	ot.description AS owner_type,
	o.owner_name_std AS owner_name,
	o.address_all_std AS address,
	o.city_std AS city,
	o.state_std AS state,
	o.zip5 AS zip
FROM owners AS o
LEFT JOIN owner_types AS ot ON o.owner_type = ot.code`,
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "\\'") + "'"
	}
	return strings.Join(quoted, ", ")
}
