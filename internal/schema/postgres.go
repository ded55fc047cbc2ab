package schema

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

const postgresColumnsQuery = `
	SELECT column_name
	FROM information_schema.columns
	WHERE table_schema = COALESCE(NULLIF($1, ''), 'public')
	AND table_name = $2
	ORDER BY ordinal_position
`

// PostgresProvider answers ColumnsOf/ColumnExists by querying
// information_schema.columns against a live Postgres connection, for
// callers embedding this analyzer as a library against a real catalog
// instead of a hand-maintained --schema file.
type PostgresProvider struct {
	pool  *pgxpool.Pool
	group singleflight.Group
}

// NewPostgresProvider wraps an already-established pool. Callers own
// the pool's lifetime (Close it themselves).
func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// ColumnsOf implements lineage.SchemaProvider. database is ignored;
// Postgres scopes information_schema to the connected database already.
// Concurrent lookups for the same (schema, table) collapse into one
// query via singleflight, since the core analyzer may resolve the same
// wildcard from several goroutines when embedded in a concurrent host.
func (p *PostgresProvider) ColumnsOf(_, schema, table string) ([]string, bool) {
	key := strings.ToLower(schema) + "." + strings.ToLower(table)
	v, err, _ := p.group.Do(key, func() (any, error) {
		rows, err := p.pool.Query(context.Background(), postgresColumnsQuery, schema, table)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var cols []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
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
// ColumnsOf; Postgres catalogs are small enough that this round-trip
// isn't worth a dedicated EXISTS query, and singleflight already
// collapses repeated lookups for the same table.
func (p *PostgresProvider) ColumnExists(database, schema, table, column string) bool {
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
