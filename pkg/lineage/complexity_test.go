package lineage

import (
	"testing"

	"github.com/leapstack-labs/sqllineage/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exprFromSQL(t *testing.T, sql string) *parser.SelectStmt {
	t.Helper()
	stmt, err := parser.ParseAnyStatement(sql)
	require.NoError(t, err)
	return stmt.(*parser.SelectStmt)
}

func TestMeasureComplexityCountsCaseBranches(t *testing.T) {
	sel := exprFromSQL(t, `SELECT CASE WHEN a > 1 THEN 'x' WHEN b > 2 THEN 'y' ELSE 'z' END FROM t`)
	expr := sel.Body.Left.Columns[0].Expr

	stats := measureComplexity(expr)
	assert.Equal(t, 2, stats.CaseBranches)
	assert.Greater(t, stats.Nodes, 4)
	assert.Greater(t, stats.Depth, 1)
}

func TestCheckComplexityFailPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OnComplexityExceeded = PolicyFail
	cfg.Complexity = ComplexityLimits{MaxNodes: 2, MaxDepth: 50, MaxCaseBranches: 100}
	bc := newResolverTestContext(cfg)

	sel := exprFromSQL(t, `SELECT a + b + c FROM t`)
	err := bc.CheckComplexity(sel.Body.Left.Columns[0].Expr, 0)
	require.Error(t, err)
	var lerr *LineageError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ErrComplexityExceeded, lerr.Kind)
}

func TestCheckComplexityWarnPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OnComplexityExceeded = PolicyWarn
	cfg.Complexity = ComplexityLimits{MaxNodes: 2, MaxDepth: 50, MaxCaseBranches: 100}
	bc := newResolverTestContext(cfg)

	sel := exprFromSQL(t, `SELECT a + b + c FROM t`)
	err := bc.CheckComplexity(sel.Body.Left.Columns[0].Expr, 0)
	require.NoError(t, err)
	assert.Positive(t, bc.Warnings.Count(SeverityWarning))
}

func TestCheckComplexityIgnorePolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OnComplexityExceeded = PolicyIgnore
	cfg.Complexity = ComplexityLimits{MaxNodes: 1, MaxDepth: 1, MaxCaseBranches: 1}
	bc := newResolverTestContext(cfg)

	sel := exprFromSQL(t, `SELECT a + b + c FROM t`)
	require.NoError(t, bc.CheckComplexity(sel.Body.Left.Columns[0].Expr, 0))
	assert.Zero(t, bc.Warnings.Count(""))
}

func TestCheckComplexityWithinLimits(t *testing.T) {
	bc := newResolverTestContext(DefaultConfig())
	sel := exprFromSQL(t, `SELECT a FROM t`)
	require.NoError(t, bc.CheckComplexity(sel.Body.Left.Columns[0].Expr, 0))
	assert.Zero(t, bc.Warnings.Count(""))
}
