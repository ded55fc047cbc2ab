package lineage

import "strings"

// SchemaProvider answers questions about real (non-derived) tables, used
// to expand wildcards against source tables and to validate qualified
// column references when Config.ValidateSchema is set.
type SchemaProvider interface {
	// ColumnsOf returns the known column names, in declared order, for a
	// table identified by (database, schema, table). Any of database or
	// schema may be empty if the provider doesn't distinguish them. ok is
	// false if the table is unknown to the provider.
	ColumnsOf(database, schema, table string) (columns []string, ok bool)
	// ColumnExists reports whether a specific column is known to exist on
	// a table. Providers that can't answer cheaper than via ColumnsOf may
	// implement this by delegating to it.
	ColumnExists(database, schema, table, column string) bool
}

// DictSchemaProvider is an in-memory SchemaProvider backed by a plain
// map, the form --schema FILE loads from JSON/YAML.
type DictSchemaProvider struct {
	tables map[string][]string
}

// NewDictSchemaProvider builds a provider from a map of
// "database.schema.table" (or any subset joined by ".") to its ordered
// column list. Keys are matched case-insensitively.
func NewDictSchemaProvider(tables map[string][]string) *DictSchemaProvider {
	norm := make(map[string][]string, len(tables))
	for k, v := range tables {
		norm[normalizeTableKey(k)] = v
	}
	return &DictSchemaProvider{tables: norm}
}

func normalizeTableKey(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, strings.ToLower(p))
		}
	}
	return strings.Join(nonEmpty, ".")
}

// ColumnsOf implements SchemaProvider.
func (d *DictSchemaProvider) ColumnsOf(database, schema, table string) ([]string, bool) {
	// Try fully qualified first, then progressively less qualified, so a
	// schema file that only names bare table names still matches
	// database/schema-qualified references in the script.
	candidates := []string{
		normalizeTableKey(database, schema, table),
		normalizeTableKey(schema, table),
		normalizeTableKey(table),
	}
	for _, c := range candidates {
		if cols, ok := d.tables[c]; ok {
			return cols, true
		}
	}
	return nil, false
}

// ColumnExists implements SchemaProvider.
func (d *DictSchemaProvider) ColumnExists(database, schema, table, column string) bool {
	cols, ok := d.ColumnsOf(database, schema, table)
	if !ok {
		return false
	}
	for _, c := range cols {
		if strings.EqualFold(c, column) {
			return true
		}
	}
	return false
}

// Put registers or replaces the column list for a table; used to build
// up a provider incrementally (e.g. while parsing a --schema file table
// by table).
func (d *DictSchemaProvider) Put(database, schema, table string, columns []string) {
	if d.tables == nil {
		d.tables = map[string][]string{}
	}
	d.tables[normalizeTableKey(database, schema, table)] = columns
}
