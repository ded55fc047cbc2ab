// Package ansi provides the base ANSI SQL dialect with standard clause sequences,
// handlers, and operator precedence.
//
// This dialect serves as the foundation for other SQL dialects: a dialect
// can extend ANSI and add/override specific behaviors through the
// dialect.Builder extension points.
package ansi

import (
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

func init() {
	dialect.Register(ANSI)
}

// ANSI is the base ANSI SQL dialect.
// It composes the standard clause, operator, and join toolboxes from
// pkg/dialect, plus the function classification the lineage analyzer
// consults for aggregate/window/generator calls.
var ANSI = dialect.NewDialect("ansi").
	Clauses(dialect.StandardSelectClauses...).
	Operators(dialect.ANSIOperators...).
	JoinTypes(dialect.ANSIJoinTypes...).
	// Function classification for lineage analysis
	Aggregates("SUM", "AVG", "MIN", "MAX", "COUNT").
	Windows("ROW_NUMBER", "RANK", "DENSE_RANK", "NTILE", "PERCENT_RANK",
		"CUME_DIST", "LAG", "LEAD", "FIRST_VALUE", "LAST_VALUE", "NTH_VALUE").
	Generators("CURRENT_DATE", "CURRENT_TIMESTAMP", "CURRENT_TIME").
	// Config
	Identifiers(`"`, `"`, `""`, dialect.NormLowercase).
	PlaceholderStyle(dialect.PlaceholderQuestion).
	Build()
