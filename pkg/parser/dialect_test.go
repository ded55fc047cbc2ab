package parser_test

import (
	"sort"
	"testing"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
	"github.com/leapstack-labs/sqllineage/pkg/dialects/ansi"
	"github.com/leapstack-labs/sqllineage/pkg/parser"
	"github.com/leapstack-labs/sqllineage/pkg/spi"
	"github.com/leapstack-labs/sqllineage/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// extended is a test dialect layered on ANSI with the optional grammar the
// dialect framework supports: the QUALIFY clause, the ILIKE operator, and
// the EXCLUDE/REPLACE/RENAME star modifiers. It exists to exercise the
// extension machinery end to end against a dialect that differs from the
// shipped ANSI baseline.
var extended = dialect.NewDialect("extended").
	Extends(ansi.ANSI).
	AddKeyword("qualify", parser.TOKEN_QUALIFY).
	AddKeyword("ilike", parser.TOKEN_ILIKE).
	AddKeyword("exclude", dialect.TokenExclude).
	AddKeyword("replace", dialect.TokenReplace).
	AddKeyword("rename", dialect.TokenRename).
	AddClauseAfter(token.HAVING, parser.TOKEN_QUALIFY, dialect.ParseQualify, spi.SlotQualify).
	AddInfix(parser.TOKEN_ILIKE, spi.PrecedenceComparison).
	StarModifier(dialect.TokenExclude, dialect.ParseExclude).
	StarModifier(dialect.TokenReplace, dialect.ParseReplace).
	StarModifier(dialect.TokenRename, dialect.ParseRename).
	Build()

// ---------- QUALIFY Clause Tests ----------

func TestANSIRejectsQualify(t *testing.T) {
	sql := `SELECT name, ROW_NUMBER() OVER (PARTITION BY dept ORDER BY salary DESC) as rn
		FROM employees
		QUALIFY rn = 1`

	_, err := parser.ParseWithDialect(sql, ansi.ANSI)
	require.Error(t, err, "ANSI should reject QUALIFY clause")
	assert.Contains(t, err.Error(), "QUALIFY")
}

func TestExtendedAcceptsQualify(t *testing.T) {
	sql := `SELECT name, ROW_NUMBER() OVER (PARTITION BY dept ORDER BY salary DESC) as rn
		FROM employees
		QUALIFY rn = 1`

	stmt, err := parser.ParseWithDialect(sql, extended)
	require.NoError(t, err)
	require.NotNil(t, stmt)
	require.NotNil(t, stmt.Body)
	require.NotNil(t, stmt.Body.Left)
	assert.NotNil(t, stmt.Body.Left.Qualify, "QUALIFY expression should be parsed")
}

func TestQualifyWithComplexExpression(t *testing.T) {
	sql := `SELECT
		customer_id,
		order_date,
		amount,
		SUM(amount) OVER (PARTITION BY customer_id ORDER BY order_date) as running_total
	FROM orders
	QUALIFY running_total > 1000 AND order_date >= '2024-01-01'`

	stmt, err := parser.ParseWithDialect(sql, extended)
	require.NoError(t, err)
	require.NotNil(t, stmt.Body.Left.Qualify)

	binaryExpr, ok := stmt.Body.Left.Qualify.(*core.BinaryExpr)
	require.True(t, ok, "QUALIFY should contain a binary expression")
	assert.Equal(t, token.AND, binaryExpr.Op)
}

// ---------- ILIKE Operator Tests ----------

func TestILIKEParsesAsLikeExpr(t *testing.T) {
	sql := `SELECT * FROM users WHERE name ILIKE '%john%'`

	stmt, err := parser.ParseWithDialect(sql, extended)
	require.NoError(t, err)
	require.NotNil(t, stmt.Body.Left.Where)

	like, ok := stmt.Body.Left.Where.(*core.LikeExpr)
	require.True(t, ok, "WHERE should contain a LIKE-shaped expression")
	assert.Equal(t, parser.TOKEN_ILIKE, like.Op)
	assert.False(t, like.Not)
}

func TestILIKEWithNOT(t *testing.T) {
	sql := `SELECT * FROM users WHERE name NOT ILIKE 'admin%'`

	stmt, err := parser.ParseWithDialect(sql, extended)
	require.NoError(t, err)

	like, ok := stmt.Body.Left.Where.(*core.LikeExpr)
	require.True(t, ok)
	assert.Equal(t, parser.TOKEN_ILIKE, like.Op)
	assert.True(t, like.Not)
}

func TestLIKEPrecedenceWithOR(t *testing.T) {
	sql := `SELECT * FROM t WHERE a LIKE 'x%' OR b LIKE 'y%'`

	stmt, err := parser.ParseWithDialect(sql, ansi.ANSI)
	require.NoError(t, err)

	or, ok := stmt.Body.Left.Where.(*core.BinaryExpr)
	require.True(t, ok, "top level should be OR")
	assert.Equal(t, token.OR, or.Op)
	_, leftIsLike := or.Left.(*core.LikeExpr)
	_, rightIsLike := or.Right.(*core.LikeExpr)
	assert.True(t, leftIsLike)
	assert.True(t, rightIsLike)
}

// ---------- Error Position Tests ----------

func TestErrorIncludesPosition(t *testing.T) {
	sql := "SELECT FROM t" // missing select list

	_, err := parser.ParseWithDialect(sql, ansi.ANSI)
	require.Error(t, err)
	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Pos.Line)
}

// ---------- Dialect Registry / Inheritance Tests ----------

func TestDialectRegistration(t *testing.T) {
	d, ok := dialect.Get("ansi")
	require.True(t, ok, "ANSI dialect should self-register via init")
	assert.Equal(t, "ansi", d.Name)

	_, ok = dialect.Get("no-such-dialect")
	assert.False(t, ok)
}

func TestDialectInheritance(t *testing.T) {
	// The extended dialect inherits ANSI's clause grammar...
	assert.True(t, extended.IsClauseToken(token.WHERE))
	assert.True(t, extended.IsClauseToken(token.GROUP))
	assert.True(t, extended.IsClauseToken(token.FETCH))
	// ...plus its own addition.
	assert.True(t, extended.IsClauseToken(parser.TOKEN_QUALIFY))

	// The parent is untouched.
	assert.False(t, ansi.ANSI.IsClauseToken(parser.TOKEN_QUALIFY),
		"ANSI must not gain QUALIFY from a child dialect")

	// Join definitions are inherited too.
	def, ok := extended.JoinTypeDef(token.LEFT)
	require.True(t, ok)
	assert.Equal(t, core.JoinType(core.JoinLeft), core.JoinType(def.Type))
}

func TestClauseDef(t *testing.T) {
	def, ok := extended.ClauseDef(parser.TOKEN_QUALIFY)
	require.True(t, ok)
	assert.Equal(t, spi.SlotQualify, def.Slot)

	def, ok = extended.ClauseDef(token.WHERE)
	require.True(t, ok)
	assert.Equal(t, spi.SlotWhere, def.Slot)
}

func TestAllClauseTokens(t *testing.T) {
	tokens := extended.AllClauseTokens()
	want := map[token.TokenType]bool{
		token.WHERE:          false,
		token.GROUP:          false,
		token.HAVING:         false,
		token.ORDER:          false,
		parser.TOKEN_QUALIFY: false,
	}
	for _, tok := range tokens {
		if _, tracked := want[tok]; tracked {
			want[tok] = true
		}
	}
	for tok, seen := range want {
		assert.True(t, seen, "expected clause token %s", tok)
	}
}

func TestGlobalClauseRegistry(t *testing.T) {
	known := core.AllKnownClauses()
	names := make([]string, 0, len(known))
	for _, name := range known {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Contains(t, known, token.WHERE)
	assert.Contains(t, known, parser.TOKEN_QUALIFY,
		"building the extended dialect should record QUALIFY globally")
}

// ---------- Function Classification Tests ----------

func TestANSIFunctionClassification(t *testing.T) {
	assert.True(t, ansi.ANSI.IsAggregate("sum"))
	assert.True(t, ansi.ANSI.IsAggregate("COUNT"))
	assert.True(t, ansi.ANSI.IsWindow("row_number"))
	assert.True(t, ansi.ANSI.IsGenerator("current_date"))
	assert.False(t, ansi.ANSI.IsAggregate("upper"))
}

// ---------- Star Modifier Tests ----------

func TestStarExclude(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected []string
	}{
		{
			name:     "single column",
			sql:      "SELECT * EXCLUDE (password) FROM users",
			expected: []string{"password"},
		},
		{
			name:     "multiple columns",
			sql:      "SELECT * EXCLUDE (password, ssn, internal_id) FROM users",
			expected: []string{"password", "ssn", "internal_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := parser.ParseWithDialect(tt.sql, extended)
			require.NoError(t, err)

			item := stmt.Body.Left.Columns[0]
			require.True(t, item.Star)
			require.Len(t, item.Modifiers, 1)

			exclude, ok := item.Modifiers[0].(*core.ExcludeModifier)
			require.True(t, ok)
			assert.Equal(t, tt.expected, exclude.Columns)
		})
	}
}

func TestStarReplace(t *testing.T) {
	sql := "SELECT * REPLACE (amount * 2 AS amount) FROM orders"

	stmt, err := parser.ParseWithDialect(sql, extended)
	require.NoError(t, err)

	item := stmt.Body.Left.Columns[0]
	require.Len(t, item.Modifiers, 1)

	replace, ok := item.Modifiers[0].(*core.ReplaceModifier)
	require.True(t, ok)
	require.Len(t, replace.Items, 1)
	assert.Equal(t, "amount", replace.Items[0].Alias)
	assert.NotNil(t, replace.Items[0].Expr)
}

func TestStarRename(t *testing.T) {
	sql := "SELECT * RENAME (user_id AS id, user_name AS name) FROM users"

	stmt, err := parser.ParseWithDialect(sql, extended)
	require.NoError(t, err)

	item := stmt.Body.Left.Columns[0]
	require.Len(t, item.Modifiers, 1)

	rename, ok := item.Modifiers[0].(*core.RenameModifier)
	require.True(t, ok)
	require.Len(t, rename.Items, 2)
	assert.Equal(t, "user_id", rename.Items[0].OldName)
	assert.Equal(t, "id", rename.Items[0].NewName)
}

func TestCombinedModifiers(t *testing.T) {
	sql := "SELECT * EXCLUDE (secret) RENAME (uid AS id) FROM t"

	stmt, err := parser.ParseWithDialect(sql, extended)
	require.NoError(t, err)

	item := stmt.Body.Left.Columns[0]
	require.Len(t, item.Modifiers, 2)
	_, isExclude := item.Modifiers[0].(*core.ExcludeModifier)
	_, isRename := item.Modifiers[1].(*core.RenameModifier)
	assert.True(t, isExclude)
	assert.True(t, isRename)
}

func TestTableStarWithModifiers(t *testing.T) {
	sql := "SELECT u.* EXCLUDE (password) FROM users u"

	stmt, err := parser.ParseWithDialect(sql, extended)
	require.NoError(t, err)

	item := stmt.Body.Left.Columns[0]
	assert.Equal(t, "u", item.TableStar)
	require.Len(t, item.Modifiers, 1)
	_, ok := item.Modifiers[0].(*core.ExcludeModifier)
	assert.True(t, ok)
}

func TestStarModifiersWithJoin(t *testing.T) {
	sql := `SELECT o.* EXCLUDE (internal_note), c.name
		FROM orders o
		JOIN customers c ON o.customer_id = c.id`

	stmt, err := parser.ParseWithDialect(sql, extended)
	require.NoError(t, err)

	require.Len(t, stmt.Body.Left.Columns, 2)
	first := stmt.Body.Left.Columns[0]
	assert.Equal(t, "o", first.TableStar)
	require.Len(t, first.Modifiers, 1)
	require.Len(t, stmt.Body.Left.From.Joins, 1)
}

// ---------- GROUP BY ALL / ORDER BY ALL Tests ----------

// allCapable layers the GROUP BY ALL / ORDER BY ALL clause variants over
// ANSI via the configurable clause factories.
var allCapable = dialect.NewDialect("all-capable").
	Extends(ansi.ANSI).
	Clauses(
		dialect.GroupBy(dialect.GroupByOpts{AllowAll: true}),
		dialect.OrderBy(dialect.OrderByOpts{AllowAll: true}),
	).
	Build()

func TestGroupByAll(t *testing.T) {
	sql := `SELECT dept, SUM(salary) AS total FROM employees GROUP BY ALL`

	stmt, err := parser.ParseWithDialect(sql, allCapable)
	require.NoError(t, err)
	assert.True(t, stmt.Body.Left.GroupByAll)
	assert.Empty(t, stmt.Body.Left.GroupBy)
}

func TestOrderByAllDesc(t *testing.T) {
	sql := `SELECT a, b FROM t ORDER BY ALL DESC`

	stmt, err := parser.ParseWithDialect(sql, allCapable)
	require.NoError(t, err)
	assert.True(t, stmt.Body.Left.OrderByAll)
	assert.True(t, stmt.Body.Left.OrderByAllDesc)
}

func TestGroupByExplicitListStillWorks(t *testing.T) {
	sql := `SELECT dept, SUM(salary) AS total FROM employees GROUP BY dept`

	stmt, err := parser.ParseWithDialect(sql, allCapable)
	require.NoError(t, err)
	assert.False(t, stmt.Body.Left.GroupByAll)
	require.Len(t, stmt.Body.Left.GroupBy, 1)
}

// ---------- UNION BY NAME Tests ----------

func TestUnionByName(t *testing.T) {
	sql := `SELECT a, b FROM t1 UNION ALL BY NAME SELECT b, a FROM t2`

	stmt, err := parser.ParseWithDialect(sql, ansi.ANSI)
	require.NoError(t, err)
	require.NotNil(t, stmt.Body.Right)
	assert.Equal(t, core.SetOpUnionAll, stmt.Body.Op)
	assert.True(t, stmt.Body.ByName, "BY NAME should set the ByName flag")
}

func TestChainedUnionByName(t *testing.T) {
	sql := `SELECT a FROM t1 UNION BY NAME SELECT a FROM t2 UNION BY NAME SELECT a FROM t3`

	stmt, err := parser.ParseWithDialect(sql, ansi.ANSI)
	require.NoError(t, err)

	assert.True(t, stmt.Body.ByName)
	require.NotNil(t, stmt.Body.Right)
	assert.True(t, stmt.Body.Right.ByName)
	require.NotNil(t, stmt.Body.Right.Right)
}

func TestMixedByNameAndPositional(t *testing.T) {
	sql := `SELECT a FROM t1 UNION BY NAME SELECT a FROM t2 UNION SELECT a FROM t3`

	stmt, err := parser.ParseWithDialect(sql, ansi.ANSI)
	require.NoError(t, err)

	assert.True(t, stmt.Body.ByName)
	require.NotNil(t, stmt.Body.Right)
	assert.False(t, stmt.Body.Right.ByName)
}

func TestSelectNameAsIdentifier(t *testing.T) {
	// NAME is a soft keyword: outside "BY NAME" it must keep working as an
	// ordinary column identifier.
	sql := `SELECT name FROM users`

	stmt, err := parser.ParseWithDialect(sql, ansi.ANSI)
	require.NoError(t, err)

	item := stmt.Body.Left.Columns[0]
	ref, ok := item.Expr.(*core.ColumnRef)
	require.True(t, ok)
	assert.Equal(t, "name", ref.Column)
}
