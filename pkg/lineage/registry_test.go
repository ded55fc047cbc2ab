package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSourceTableIdempotent(t *testing.T) {
	reg := NewTableRegistry(NewWarningCollector())
	first := reg.RegisterSourceTable("", "", "orders")
	second := reg.RegisterSourceTable("", "", "ORDERS")
	assert.Same(t, first, second)
	assert.Len(t, reg.AllTables(), 1)
}

func TestRegisterTableRefusesToOverwriteSourceTable(t *testing.T) {
	wc := NewWarningCollector()
	reg := NewTableRegistry(wc)
	reg.RegisterSourceTable("", "", "orders")

	derived := &TableDefinition{Name: "orders", Type: TableTypeView, Columns: NewOrderedColumns()}
	got, err := reg.RegisterTable(derived)

	require.Nil(t, got)
	require.Error(t, err)
	var lerr *LineageError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ErrSourceRedefinition, lerr.Kind)
}

func TestRegisterTableWarnsOnRedefinitionExceptOutputSentinel(t *testing.T) {
	wc := NewWarningCollector()
	reg := NewTableRegistry(wc)

	first := &TableDefinition{Name: "stg_orders", Type: TableTypeTable, Columns: NewOrderedColumns()}
	reg.RegisterTable(first)
	second := &TableDefinition{Name: "stg_orders", Type: TableTypeTable, Columns: NewOrderedColumns()}
	reg.RegisterTable(second)
	assert.Equal(t, 1, wc.Count(SeverityWarning), "redefining a normal derived table warns")

	wc2 := NewWarningCollector()
	reg2 := NewTableRegistry(wc2)
	reg2.RegisterTable(&TableDefinition{Name: OutputTable, Type: TableTypeTable, Columns: NewOrderedColumns()})
	reg2.RegisterTable(&TableDefinition{Name: OutputTable, Type: TableTypeTable, Columns: NewOrderedColumns()})
	assert.Zero(t, wc2.Count(SeverityWarning), "repeated bare SELECTs overwriting __OUTPUT__ don't warn")
}

func TestMergeInsertColumns(t *testing.T) {
	reg := NewTableRegistry(NewWarningCollector())
	target := &TableDefinition{Name: "totals", Columns: NewOrderedColumns()}
	existing := NewColumnLineage("amount")
	existing.AddSource(NewColumnRef("orders", "amount"))
	target.Columns.Set("amount", existing)

	incoming := NewOrderedColumns()
	merged := NewColumnLineage("amount")
	merged.AddSource(NewColumnRef("returns", "amount"))
	incoming.Set("amount", merged)
	added := NewColumnLineage("tax")
	added.AddSource(NewColumnRef("orders", "tax"))
	incoming.Set("tax", added)

	require.NoError(t, reg.MergeInsertColumns(target, incoming))

	amount, ok := target.Columns.Get("amount")
	require.True(t, ok)
	assert.Len(t, amount.Sources, 2, "merge adds the new source alongside the existing one")

	tax, ok := target.Columns.Get("tax")
	require.True(t, ok)
	assert.Len(t, tax.Sources, 1)
}

func TestRemoveDropsFromOrderAndLookup(t *testing.T) {
	reg := NewTableRegistry(NewWarningCollector())
	reg.RegisterTable(&TableDefinition{Name: "cte1", Type: TableTypeCTE, Columns: NewOrderedColumns()})
	reg.Remove("", "", "cte1")
	assert.False(t, reg.Has("", "", "cte1"))
	assert.Empty(t, reg.AllTables())
}

func TestSourceAndDerivedTablesPartition(t *testing.T) {
	reg := NewTableRegistry(NewWarningCollector())
	reg.RegisterSourceTable("", "", "orders")
	reg.RegisterTable(&TableDefinition{Name: "stg_orders", Type: TableTypeView, Columns: NewOrderedColumns()})

	assert.Len(t, reg.SourceTables(), 1)
	assert.Len(t, reg.DerivedTables(), 1)
	assert.Len(t, reg.AllTables(), 2)
}
