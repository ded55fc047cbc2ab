package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
	"golang.org/x/sync/singleflight"
)

// DuckDBProvider answers ColumnsOf/ColumnExists against a live DuckDB
// database via PRAGMA table_info.
type DuckDBProvider struct {
	db    *sql.DB
	group singleflight.Group
}

// OpenDuckDBProvider opens path (":memory:" for an in-memory catalog,
// otherwise a file path) and returns a provider backed by it. Callers
// are responsible for eventually calling Close.
func OpenDuckDBProvider(path string) (*DuckDBProvider, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb database %s: %w", path, err)
	}
	return &DuckDBProvider{db: db}, nil
}

// Close releases the underlying database handle.
func (p *DuckDBProvider) Close() error {
	return p.db.Close()
}

// ColumnsOf implements lineage.SchemaProvider. database is ignored (a
// DuckDB connection is already scoped to one database file); schema
// qualifies table when non-empty.
func (p *DuckDBProvider) ColumnsOf(_, schema, table string) ([]string, bool) {
	qualified := table
	if schema != "" {
		qualified = schema + "." + table
	}
	v, err, _ := p.group.Do(strings.ToLower(qualified), func() (any, error) {
		rows, err := p.db.QueryContext(context.Background(), fmt.Sprintf("PRAGMA table_info(%s)", qualified))
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var cols []string
		for rows.Next() {
			var cid int
			var name, colType string
			var notNull, pk int
			var dflt sql.NullString
			if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
				return nil, err
			}
			cols = append(cols, name)
		}
		return cols, rows.Err()
	})
	if err != nil {
		return nil, false
	}
	cols, _ := v.([]string)
	return cols, len(cols) > 0
}

// ColumnExists implements lineage.SchemaProvider by delegating to
// ColumnsOf.
func (p *DuckDBProvider) ColumnExists(database, schema, table, column string) bool {
	cols, ok := p.ColumnsOf(database, schema, table)
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
