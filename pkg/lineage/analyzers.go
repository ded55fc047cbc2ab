package lineage

import (
	"strconv"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// StatementOutcome records what a single statement's analysis produced:
// the table it affected (nil for statement kinds with no lineage) and
// any warnings already folded into the shared WarningCollector.
type StatementOutcome struct {
	Kind  StatementKind
	Table *TableDefinition
}

// analyzeCreateStatement handles CREATE [TEMPORARY] TABLE/VIEW, both the
// `AS SELECT` form (Query non-nil) and pure DDL (ColumnDefs only, no
// lineage to compute beyond recording the declared column names as
// direct-from-nothing placeholders).
func (bc *buildContext) analyzeCreateStatement(stmt *core.CreateStmt, stmtIdx int) (*StatementOutcome, error) {
	tableType := TableTypeTable
	switch {
	case stmt.Kind == core.CreateKindView:
		tableType = TableTypeView
	case stmt.Temporary:
		tableType = TableTypeTempTable
	}

	var cols *OrderedColumns
	if stmt.Query != nil {
		var err error
		cols, err = bc.analyzeSelectStmt(stmt.Query, nil, stmtIdx)
		if err != nil {
			return nil, err
		}
		if len(stmt.ColumnDefs) > 0 {
			cols = renameColumnsPositionally(cols, stmt.ColumnDefs)
		}
	} else {
		cols = NewOrderedColumns()
		for _, name := range stmt.ColumnDefs {
			cl := NewColumnLineage(name)
			cl.ExprKind = ExprDirect
			cl.Confidence = 1.0
			cols.Set(name, cl)
		}
	}

	td := &TableDefinition{
		Database: stmt.Target.Catalog,
		Schema:   stmt.Target.Schema,
		Name:     stmt.Target.Name,
		Type:     tableType,
		Columns:  cols,
	}
	registered, err := bc.Registry.RegisterTable(td)
	if err != nil {
		return nil, err
	}
	return &StatementOutcome{Kind: StmtCreateTableAs, Table: registered}, nil
}

// renameColumnsPositionally applies an explicit target column list
// (CREATE TABLE t (a, b) AS SELECT x, y) onto a query's positionally
// produced lineage, so the registry records the table's declared names
// rather than the query's own aliases.
func renameColumnsPositionally(cols *OrderedColumns, declared []string) *OrderedColumns {
	out := NewOrderedColumns()
	names := cols.Names()
	for i, declaredName := range declared {
		if i >= len(names) {
			break
		}
		cl, _ := cols.Get(names[i])
		renamed := cloneColumnLineage(cl)
		renamed.Name = declaredName
		out.Set(declaredName, renamed)
	}
	return out
}

// analyzeInsertStatement handles INSERT INTO target [(cols)] SELECT ...,
// merging the query's resulting lineage into whatever the registry
// already knows about target, merging column lineage where it overlaps.
// INSERT ... VALUES never reaches here; the classifier reports it as an
// unsupported statement kind. The target must already be known to the
// registry (from an earlier CREATE or from having been read elsewhere in
// the script); INSERT never vivifies a table the script has otherwise
// never mentioned.
func (bc *buildContext) analyzeInsertStatement(stmt *core.InsertStmt, stmtIdx int) (*StatementOutcome, error) {
	target, ok := bc.Registry.Get(stmt.Target.Catalog, stmt.Target.Schema, stmt.Target.Name)
	if !ok {
		return nil, NewError(ErrTargetMissing, "INSERT INTO target "+stmt.Target.Name+" is not a known table").
			WithStatement(stmtIdx).WithTable(stmt.Target.Name)
	}

	cols, err := bc.analyzeSelectStmt(stmt.Query, nil, stmtIdx)
	if err != nil {
		return nil, err
	}

	declaredCount := 0
	if target.Columns != nil {
		declaredCount = target.Columns.Len()
	}
	if len(stmt.Columns) > 0 {
		if len(stmt.Columns) != cols.Len() {
			return nil, NewError(ErrColumnCountMismatch,
				"INSERT column list names "+strconv.Itoa(len(stmt.Columns))+" column(s) but the SELECT list has "+strconv.Itoa(cols.Len())).
				WithStatement(stmtIdx).WithTable(target.QualifiedName())
		}
		for _, c := range stmt.Columns {
			if _, exists := target.Columns.Get(c); declaredCount > 0 && !exists {
				return nil, NewError(ErrColumnCountMismatch, "INSERT column "+c+" does not exist on target "+target.QualifiedName()).
					WithStatement(stmtIdx).WithTable(target.QualifiedName()).WithColumn(c)
			}
		}
		cols = renameColumnsPositionally(cols, stmt.Columns)
	} else if declaredCount > 0 {
		if declaredCount != cols.Len() {
			return nil, NewError(ErrColumnCountMismatch,
				"INSERT SELECT list has "+strconv.Itoa(cols.Len())+" column(s) but target "+target.QualifiedName()+" declares "+strconv.Itoa(declaredCount)).
				WithStatement(stmtIdx).WithTable(target.QualifiedName())
		}
		// Without a column list, the SELECT list maps positionally onto
		// the target's declared column order.
		cols = renameColumnsPositionally(cols, target.Columns.Names())
	}

	if target.IsSourceTable {
		// A declared source table being loaded by this script: its
		// existing (empty) column set is filled in rather than merged,
		// and it stops being External once the script writes to it.
		target.IsSourceTable = false
		target.Type = TableTypeTable
		bc.Registry.UpdateColumns(target, cols)
		return &StatementOutcome{Kind: StmtInsertIntoSelect, Table: target}, nil
	}

	if target.Columns == nil {
		target.Columns = NewOrderedColumns()
	}
	if err := bc.Registry.MergeInsertColumns(target, cols); err != nil {
		return nil, err
	}
	return &StatementOutcome{Kind: StmtInsertIntoSelect, Table: target}, nil
}

// analyzeBareSelect handles a standalone SELECT (no CREATE/INSERT
// target): there is no table to register, but the query is still fully
// analyzed so its warnings/complexity checks/schema validation run, and
// its projected columns are reported against the output sentinel table
// so --trace/--impact can still address "the script's final result".
func (bc *buildContext) analyzeBareSelect(stmt *core.SelectStmt, stmtIdx int) (*StatementOutcome, error) {
	cols, err := bc.analyzeSelectStmt(stmt, nil, stmtIdx)
	if err != nil {
		return nil, err
	}
	td := &TableDefinition{Name: OutputTable, Type: TableTypeTable, Columns: cols}
	registered, err := bc.Registry.RegisterTable(td)
	if err != nil {
		return nil, err
	}
	return &StatementOutcome{Kind: StmtSelect, Table: registered}, nil
}
