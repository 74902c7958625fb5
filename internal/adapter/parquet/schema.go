package parquet

import (
	"reflect"

	"github.com/hangarbay/registry-etl/internal/domain"
	pq "github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/parquet-go/parquet-go/encoding"
)

// Schema returns the Parquet schema of a contract. Columns keep contract
// order; pq.Group would sort them by name.
func Schema(c domain.Contract) *pq.Schema {
	fields := make([]pq.Field, len(c.Columns))
	for i, col := range c.Columns {
		fields[i] = &field{Node: columnNode(col.Type), name: col.Name}
	}
	return pq.NewSchema(c.Relation, &group{fields: fields})
}

func columnNode(t domain.ColumnType) pq.Node {
	switch t {
	case domain.TypeNullableInt32:
		return pq.Optional(pq.Int(32))
	case domain.TypeNullableDate:
		return pq.Optional(pq.Date())
	case domain.TypeBool:
		return pq.Leaf(pq.BooleanType)
	case domain.TypeUInt64:
		return pq.Uint(64)
	default:
		return pq.String()
	}
}

// ColumnType describes a column node as its logical (or physical) type,
// prefixed with "optional " when nullable, e.g. "optional DATE".
func ColumnType(n pq.Node) string {
	if n.Optional() {
		return "optional " + n.Type().String()
	}
	return n.Type().String()
}

// ContractTypes returns the column types the writer emits for c, in
// contract order.
func ContractTypes(c domain.Contract) []string {
	types := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		types[i] = ColumnType(columnNode(col.Type))
	}
	return types
}

// group is a flat, ordered root node.
type group struct {
	fields []pq.Field
}

func (g *group) ID() int { return 0 }
func (g *group) String() string { return g.asGroup().String() }
func (g *group) Type() pq.Type { return pq.Group{}.Type() }
func (g *group) Optional() bool { return false }
func (g *group) Repeated() bool { return false }
func (g *group) Required() bool { return true }
func (g *group) Leaf() bool { return false }
func (g *group) Fields() []pq.Field { return g.fields }
func (g *group) Encoding() encoding.Encoding { return nil }
func (g *group) Compression() compress.Codec { return nil }
func (g *group) GoType() reflect.Type { return g.asGroup().GoType() }

func (g *group) asGroup() pq.Group {
	m := make(pq.Group, len(g.fields))
	for _, f := range g.fields {
		m[f.Name()] = f
	}
	return m
}

type field struct {
	pq.Node
	name string
}

func (f *field) Name() string { return f.name }

// Value looks the column up in a map row. Rows are written as pq.Row, so
// struct values never reach the schema.
func (f *field) Value(base reflect.Value) reflect.Value {
	if base.Kind() == reflect.Map {
		return base.MapIndex(reflect.ValueOf(f.name))
	}
	return reflect.Value{}
}
