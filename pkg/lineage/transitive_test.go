package lineage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainRegistry builds src -> mid.a -> out.b, with src external.
func chainRegistry(t *testing.T) *TableRegistry {
	t.Helper()
	reg := NewTableRegistry(NewWarningCollector())
	reg.RegisterSourceTable("", "", "src")

	mid := &TableDefinition{Name: "mid", Type: TableTypeTable, Columns: NewOrderedColumns()}
	a := NewColumnLineage("a")
	a.AddSource(NewColumnRef("src", "v"))
	a.Expression = "v"
	a.ExprKind = ExprDirect
	mid.Columns.Set("a", a)
	_, err := reg.RegisterTable(mid)
	require.NoError(t, err)

	out := &TableDefinition{Name: "out", Type: TableTypeTable, Columns: NewOrderedColumns()}
	b := NewColumnLineage("b")
	b.AddSource(NewColumnRef("mid", "a"))
	b.Expression = "a * 2"
	b.ExprKind = ExprComputed
	out.Columns.Set("b", b)
	_, err = reg.RegisterTable(out)
	require.NoError(t, err)

	return reg
}

func TestTraceToSourceWalksToExternalLeaf(t *testing.T) {
	reg := chainRegistry(t)
	resolver := NewTransitiveResolver(reg, 0)

	paths := resolver.TraceToSource(NewColumnRef("out", "b"))
	require.Len(t, paths, 1)
	require.Len(t, paths[0].Nodes, 3)
	assert.Equal(t, "out.b", paths[0].Nodes[0].Column.QualifiedName())
	assert.Equal(t, "src.v", paths[0].Nodes[2].Column.QualifiedName())
	assert.Equal(t, TableTypeExternal, paths[0].Nodes[2].TableType)
}

func TestTraceToSourceSurvivesCycles(t *testing.T) {
	reg := NewTableRegistry(NewWarningCollector())

	a := &TableDefinition{Name: "a", Type: TableTypeTable, Columns: NewOrderedColumns()}
	ax := NewColumnLineage("x")
	ax.AddSource(NewColumnRef("b", "y"))
	a.Columns.Set("x", ax)
	_, err := reg.RegisterTable(a)
	require.NoError(t, err)

	b := &TableDefinition{Name: "b", Type: TableTypeTable, Columns: NewOrderedColumns()}
	by := NewColumnLineage("y")
	by.AddSource(NewColumnRef("a", "x"))
	b.Columns.Set("y", by)
	_, err = reg.RegisterTable(b)
	require.NoError(t, err)

	resolver := NewTransitiveResolver(reg, 0)
	paths := resolver.TraceToSource(NewColumnRef("a", "x"))
	require.NotEmpty(t, paths, "a cyclic registry must terminate, not diverge")
	for _, p := range paths {
		assert.LessOrEqual(t, len(p.Nodes), 3)
	}
}

func TestTraceToSourceHonorsMaxDepth(t *testing.T) {
	reg := chainRegistry(t)
	resolver := NewTransitiveResolver(reg, 1)

	paths := resolver.TraceToSource(NewColumnRef("out", "b"))
	require.NotEmpty(t, paths)
	for _, p := range paths {
		assert.LessOrEqual(t, len(p.Nodes), 2, "depth bound of 1 allows a single hop")
	}
}

func TestImpactSetIsExactDownstreamClosure(t *testing.T) {
	reg := chainRegistry(t)
	resolver := NewTransitiveResolver(reg, 0)

	impacted := resolver.ImpactSet(NewColumnRef("src", "v"))
	got := map[string]bool{}
	for _, c := range impacted {
		got[c.QualifiedName()] = true
	}
	assert.Equal(t, map[string]bool{"mid.a": true, "out.b": true}, got)

	assert.Empty(t, resolver.ImpactSet(NewColumnRef("out", "b")),
		"the terminal column has no downstream consumers")
}

func TestExplainCalculationRendersDerivation(t *testing.T) {
	reg := chainRegistry(t)
	resolver := NewTransitiveResolver(reg, 0)

	exp, err := resolver.ExplainCalculation(NewColumnRef("out", "b"))
	require.NoError(t, err)
	assert.Equal(t, "a * 2", exp.Expression)
	assert.Equal(t, ExprComputed, exp.ExprKind)
	require.NotEmpty(t, exp.Paths)

	text := exp.Text()
	assert.True(t, strings.Contains(text, "out.b"))
	assert.True(t, strings.Contains(text, "src.v"))
	assert.True(t, strings.Contains(text, "(source)"), "external leaf must be marked as a source")
}

func TestExplainCalculationUnknownColumnFails(t *testing.T) {
	reg := chainRegistry(t)
	resolver := NewTransitiveResolver(reg, 0)

	_, err := resolver.ExplainCalculation(NewColumnRef("out", "nope"))
	require.Error(t, err)
	var lerr *LineageError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ErrUnresolvedReference, lerr.Kind)
}

func TestGetAllSourceTables(t *testing.T) {
	reg := chainRegistry(t)
	resolver := NewTransitiveResolver(reg, 0)

	sources := resolver.GetAllSourceTables()
	require.Len(t, sources, 1)
	assert.Equal(t, "src", sources[0].Name)
	assert.Equal(t, TableTypeExternal, sources[0].Type)
}
