package lineage

import "github.com/leapstack-labs/sqllineage/pkg/core"

// buildContext carries the per-script state every analysis stage needs;
// threading one struct instead of five parameters keeps the recursive
// subquery/CTE call chains (scope builder -> extractor -> subquery
// analyzer -> scope builder again) manageable.
type buildContext struct {
	Registry *TableRegistry
	Warnings *WarningCollector
	Config   *Config
}

// BuildScope builds the alias/column resolution environment for a
// SelectCore's FROM clause, registering any source tables it references
// and recursively analyzing any derived-table subqueries (registering
// each under its alias as a TableTypeSubquery). parent is non-nil when
// this FROM clause belongs to a correlated subquery (LATERAL, or a
// WHERE/HAVING/scalar subquery analyzed via analyzeCorrelatedSelect
// below); derived-table subqueries are analyzed with a nil parent.
func (bc *buildContext) BuildScope(from *core.FromClause, parent *Scope, stmtIdx int) (*Scope, error) {
	scope := NewScope(parent)
	if from == nil {
		return scope, nil
	}
	prev, err := bc.addTableRefToScope(scope, from.Source, stmtIdx)
	if err != nil {
		return nil, err
	}
	for _, j := range from.Joins {
		right, err := bc.addTableRefToScope(scope, j.Right, stmtIdx)
		if err != nil {
			return nil, err
		}
		if len(j.Using) > 0 {
			bc.HandleUsing(scope, prev, right, j.Using)
		}
		prev = right
	}
	return scope, nil
}

func (bc *buildContext) addTableRefToScope(scope *Scope, ref core.TableRef, stmtIdx int) (TableRef, error) {
	switch t := ref.(type) {
	case *core.TableName:
		resolved := bc.resolveTableName(t)
		scope.AddTable(resolved)
		return resolved, nil
	case *core.DerivedTable:
		alias := t.Alias
		if alias == "" {
			return TableRef{}, NewError(ErrUnresolvedReference, "derived table in FROM clause requires an alias").WithStatement(stmtIdx)
		}
		cols, err := bc.analyzeDerivedTable(t.Select, alias, stmtIdx)
		if err != nil {
			return TableRef{}, err
		}
		td := &TableDefinition{Name: alias, Type: TableTypeSubquery, Columns: cols}
		if _, err := bc.Registry.RegisterTable(td); err != nil {
			return TableRef{}, err
		}
		ref := TableRef{Table: alias, Alias: alias, IsSubquery: true}
		scope.AddTable(ref)
		return ref, nil
	case *core.LateralTable:
		// LATERAL subqueries may correlate to tables already in scope;
		// thread scope as parent so the visitor can resolve outer refs.
		alias := t.Alias
		if alias == "" {
			return TableRef{}, NewError(ErrUnresolvedReference, "LATERAL subquery requires an alias").WithStatement(stmtIdx)
		}
		cols, err := bc.analyzeCorrelatedSelect(t.Select, scope, stmtIdx)
		if err != nil {
			return TableRef{}, err
		}
		td := &TableDefinition{Name: alias, Type: TableTypeSubquery, Columns: cols}
		if _, err := bc.Registry.RegisterTable(td); err != nil {
			return TableRef{}, err
		}
		ref := TableRef{Table: alias, Alias: alias, IsSubquery: true}
		scope.AddTable(ref)
		return ref, nil
	default:
		return TableRef{}, NewError(ErrInternal, "unsupported table reference node in FROM clause").WithStatement(stmtIdx)
	}
}

// resolveTableName maps a parsed table name onto a registry entry,
// registering it as a source table on first sight if it isn't already a
// known derived table (CTE/CTAS/view) from earlier in the script.
func (bc *buildContext) resolveTableName(t *core.TableName) TableRef {
	database, schema, name := t.Catalog, t.Schema, t.Name
	var td *TableDefinition
	var ok bool
	if database != "" || schema != "" {
		td, ok = bc.Registry.Get(database, schema, name)
	} else {
		td, ok = bc.Registry.Get("", "", name)
		if !ok {
			td, ok = bc.Registry.GetByName(name)
		}
	}
	if !ok {
		td = bc.Registry.RegisterSourceTable(database, schema, name)
	}
	alias := t.Alias
	if alias == "" {
		alias = name
	}
	return TableRef{Database: td.Database, Schema: td.Schema, Table: td.Name, Alias: alias}
}

// analyzeDerivedTable analyzes a non-correlated FROM-clause subquery
// (the derived-table mode of subquery analysis).
func (bc *buildContext) analyzeDerivedTable(sel *core.SelectStmt, alias string, stmtIdx int) (*OrderedColumns, error) {
	return bc.analyzeSelectStmt(sel, nil, stmtIdx)
}

// analyzeCorrelatedSelect analyzes a subquery whose expressions may
// reference columns from the enclosing scope (LATERAL, or a WHERE/
// HAVING correlated subquery handled directly by the extractor).
func (bc *buildContext) analyzeCorrelatedSelect(sel *core.SelectStmt, outer *Scope, stmtIdx int) (*OrderedColumns, error) {
	return bc.analyzeSelectStmt(sel, outer, stmtIdx)
}
