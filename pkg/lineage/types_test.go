package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnRefQualifiedName(t *testing.T) {
	tests := []struct {
		name string
		ref  ColumnRef
		want string
	}{
		{"bare", NewColumnRef("orders", "id"), "orders.id"},
		{"qualified", NewQualifiedColumnRef("db", "public", "orders", "id"), "db.public.orders.id"},
		{"output sentinel", NewOutputRef("total"), "__OUTPUT__.total"},
		{"constant sentinel", NewConstantRef("flag"), "__CONSTANT__.flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.QualifiedName())
		})
	}
}

func TestColumnRefKeyIsCaseInsensitive(t *testing.T) {
	a := NewColumnRef("Orders", "ID")
	b := NewColumnRef("orders", "id")
	assert.Equal(t, a.Key(), b.Key())
}

func TestColumnLineageAddSourceDedups(t *testing.T) {
	cl := NewColumnLineage("total")
	cl.AddSource(NewColumnRef("orders", "amount"))
	cl.AddSource(NewColumnRef("Orders", "Amount"))
	cl.AddSource(NewColumnRef("orders", "tax"))
	assert.Len(t, cl.Sources, 2)
}

func TestColumnLineageMergeFrom(t *testing.T) {
	a := NewColumnLineage("status")
	a.Confidence = 1.0
	a.ExprKind = ExprDirect
	a.AddSource(NewColumnRef("orders", "status"))

	b := NewColumnLineage("status")
	b.Confidence = 0.8
	b.ExprKind = ExprCase
	b.Expression = "CASE WHEN x THEN 1 ELSE 0 END"
	b.AddSource(NewColumnRef("returns", "status"))

	require.NoError(t, a.MergeFrom(b))
	assert.Len(t, a.Sources, 2)
	assert.Equal(t, ExprCase, a.ExprKind, "case ranks above direct in UNION-merge precedence")
	assert.InDelta(t, 0.72, a.Confidence, 0.0001, "merged confidence is min(a, b*0.9)")
	assert.Contains(t, a.AlternativeExpressions, b.Expression)
}

func TestColumnLineageMergeFromRejectsDifferentNames(t *testing.T) {
	a := NewColumnLineage("status")
	b := NewColumnLineage("other")
	err := a.MergeFrom(b)
	require.Error(t, err)
}

func TestOrderedColumnsPreservesInsertionOrder(t *testing.T) {
	oc := NewOrderedColumns()
	oc.Set("b", NewColumnLineage("b"))
	oc.Set("a", NewColumnLineage("a"))
	oc.Set("b", NewColumnLineage("b")) // replace, shouldn't move position
	assert.Equal(t, []string{"b", "a"}, oc.Names())
	assert.Equal(t, 2, oc.Len())
}

func TestScopeLookupTableByAlias(t *testing.T) {
	s := NewScope(nil)
	s.AddTable(TableRef{Table: "orders", Alias: "o"})
	ref, ok := s.LookupTable("o")
	require.True(t, ok)
	assert.Equal(t, "orders", ref.Table)

	_, ok = s.LookupTable("orders")
	assert.False(t, ok, "aliased table isn't reachable by its bare name")
}
