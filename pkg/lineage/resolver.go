package lineage

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// Confidence values the symbol resolver assigns, by how a reference was
// resolved.
const (
	confQualifiedKnown             = 1.0
	confQualifiedUnconfirmed       = 0.95
	confUsingColumn                = 1.0
	confUnqualifiedSchemaConfirmed = 1.0
	confUnqualifiedUnique          = 0.95
	confSchemaUnknown              = 0.8
	confAmbiguousGuess             = 0.6
	confUnresolved                 = 0.5
	confUnresolvedQualified        = 0.3
	confSingleTableContradiction   = 0.3
)

// ResolveColumnRef resolves a parsed *core.ColumnRef against scope into
// domain ColumnRefs (a bare reference to a JOIN ... USING column resolves
// to the left-hand table of that join, see HandleUsing) plus the confidence to attach to the resulting dependency/dependencies.
// A nil scope resolves nothing but a constant/output sentinel can't come
// from here; callers handle that case before calling ResolveColumnRef.
func (bc *buildContext) ResolveColumnRef(scope *Scope, ref *core.ColumnRef, stmtIdx int) ([]ColumnRef, float64, error) {
	if ref.Table != "" {
		return bc.resolveQualified(scope, ref.Table, ref.Column, stmtIdx)
	}
	return bc.resolveUnqualified(scope, ref.Column, stmtIdx)
}

func (bc *buildContext) resolveQualified(scope *Scope, tableAlias, column string, stmtIdx int) ([]ColumnRef, float64, error) {
	for s := scope; s != nil; s = s.Parent {
		t, ok := s.LookupTable(tableAlias)
		if !ok {
			continue
		}
		if bc.Config.ValidateSchema && bc.Config.Schema != nil && !t.IsSubquery {
			if !bc.Config.Schema.ColumnExists(t.Database, t.Schema, t.Table, column) {
				return nil, 0, NewError(ErrSchemaValidation, "column "+tableAlias+"."+column+" not found in schema for "+t.QualifiedName()).
					WithStatement(stmtIdx).WithTable(t.QualifiedName()).WithColumn(column)
			}
		}
		conf := confQualifiedUnconfirmed
		if bc.Config.Schema != nil && !t.IsSubquery && bc.Config.Schema.ColumnExists(t.Database, t.Schema, t.Table, column) {
			conf = confQualifiedKnown
		}
		return []ColumnRef{NewQualifiedColumnRef(t.Database, t.Schema, t.Table, column)}, conf, nil
	}
	// Table alias not found in any enclosing scope: treat the qualifier
	// literally as a table name so lineage degrades gracefully instead of
	// dropping the reference.
	msg := "unresolved table qualifier " + tableAlias + " for column " + column
	switch bc.Config.AmbiguityPolicy {
	case PolicyFail:
		return nil, 0, NewError(ErrUnresolvedReference, msg).WithStatement(stmtIdx).WithTable(tableAlias).WithColumn(column)
	case PolicyWarn:
		if bc.Warnings != nil {
			bc.Warnings.Addf(SeverityWarning, stmtIdx, msg)
		}
	}
	return []ColumnRef{NewColumnRef(tableAlias, column)}, confUnresolvedQualified, nil
}

func (bc *buildContext) resolveUnqualified(scope *Scope, column string, stmtIdx int) ([]ColumnRef, float64, error) {
	for s := scope; s != nil; s = s.Parent {
		if using, ok := s.Columns[strings.ToLower(column)]; ok {
			return using, confUsingColumn, nil
		}
		tables := s.OrderedTables()
		if len(tables) == 0 {
			continue
		}
		if bc.Config.RequireTablePrefix {
			return nil, 0, NewError(ErrAmbiguousColumn,
				"unqualified column "+column+" not allowed: require_table_prefix is set").
				WithStatement(stmtIdx).WithColumn(column)
		}
		// Exactly one table in scope resolves to it regardless of whether
		// the schema confirms the column; a schema that
		// contradicts only downgrades confidence or fails depending on
		// ValidateSchema, it is never treated as "no match" here.
		if len(tables) == 1 {
			return bc.resolveSingleTableColumn(tables[0], column, stmtIdx)
		}

		haveSchema := bc.Config.Schema != nil
		var matches []TableRef
		for _, t := range tables {
			if bc.tableMayHaveColumn(t, column) {
				matches = append(matches, t)
			}
		}
		switch {
		case haveSchema && len(matches) == 0:
			msg := "column " + column + " not found on any in-scope table"
			if bc.Config.ValidateSchema {
				return nil, 0, NewError(ErrSchemaValidation, msg).WithStatement(stmtIdx).WithColumn(column)
			}
			if bc.Warnings != nil {
				bc.Warnings.Addf(SeverityWarning, stmtIdx, msg)
			}
			t := tables[0]
			return []ColumnRef{NewQualifiedColumnRef(t.Database, t.Schema, t.Table, column)}, confUnresolvedQualified, nil
		case haveSchema && len(matches) == 1:
			t := matches[0]
			return []ColumnRef{NewQualifiedColumnRef(t.Database, t.Schema, t.Table, column)}, confQualifiedKnown, nil
		default:
			if !haveSchema {
				matches = tables
			}
			msg := "ambiguous column " + column + ": present on multiple tables in scope"
			switch bc.Config.AmbiguityPolicy {
			case PolicyFail:
				return nil, 0, NewError(ErrAmbiguousColumn, msg).WithStatement(stmtIdx).WithColumn(column)
			case PolicyWarn:
				if bc.Warnings != nil {
					bc.Warnings.Addf(SeverityWarning, stmtIdx, msg)
				}
				t := matches[0]
				return []ColumnRef{NewQualifiedColumnRef(t.Database, t.Schema, t.Table, column)}, confAmbiguousGuess, nil
			default: // PolicyIgnore
				t := matches[0]
				conf := confUnresolved
				if haveSchema {
					conf = confSchemaUnknown
				}
				return []ColumnRef{NewQualifiedColumnRef(t.Database, t.Schema, t.Table, column)}, conf, nil
			}
		}
	}
	msg := "unresolved column reference " + column
	switch bc.Config.AmbiguityPolicy {
	case PolicyFail:
		return nil, 0, NewError(ErrUnresolvedReference, msg).WithStatement(stmtIdx).WithColumn(column)
	case PolicyWarn:
		if bc.Warnings != nil {
			bc.Warnings.Addf(SeverityWarning, stmtIdx, msg)
		}
	}
	return []ColumnRef{NewOutputRef(column)}, confUnresolved, nil
}

// resolveSingleTableColumn handles the single-table case: the column
// resolves to the sole in-scope table regardless of what the
// schema says, with confidence reflecting whether a Schema Provider
// confirmed, was silent on, or contradicted the column — only a
// contradiction under ValidateSchema is fatal.
func (bc *buildContext) resolveSingleTableColumn(t TableRef, column string, stmtIdx int) ([]ColumnRef, float64, error) {
	ref := NewQualifiedColumnRef(t.Database, t.Schema, t.Table, column)
	if t.IsSubquery || bc.Config.Schema == nil {
		return []ColumnRef{ref}, confUnqualifiedUnique, nil
	}
	if bc.Config.Schema.ColumnExists(t.Database, t.Schema, t.Table, column) {
		return []ColumnRef{ref}, confUnqualifiedSchemaConfirmed, nil
	}
	if bc.Config.ValidateSchema {
		return nil, 0, NewError(ErrSchemaValidation, "column "+column+" not found in schema for "+t.QualifiedName()).
			WithStatement(stmtIdx).WithTable(t.QualifiedName()).WithColumn(column)
	}
	return []ColumnRef{ref}, confSingleTableContradiction, nil
}

// tableMayHaveColumn reports whether column could plausibly belong to t,
// used only to narrow the multi-table candidate set: true when no Schema
// Provider is available at all (can't rule it out), or when it's a
// subquery/derived table (columns come from the registry, checked
// separately), or when the schema provider confirms it.
func (bc *buildContext) tableMayHaveColumn(t TableRef, column string) bool {
	if t.IsSubquery {
		if td, ok := bc.Registry.Get(t.Database, t.Schema, t.Table); ok {
			_, has := td.Columns.Get(column)
			return has
		}
		return true
	}
	if bc.Config.Schema == nil {
		return true
	}
	return bc.Config.Schema.ColumnExists(t.Database, t.Schema, t.Table, column)
}

// HandleUsing registers the USING(col, ...) columns of a join onto
// scope. A bare reference to one of them resolves to the left (first)
// side of the join instead of triggering ambiguity handling: the
// joined column is one value, and the left relation is its canonical
// origin.
func (bc *buildContext) HandleUsing(scope *Scope, left, right TableRef, columns []string) {
	for _, col := range columns {
		refs := []ColumnRef{
			NewQualifiedColumnRef(left.Database, left.Schema, left.Table, col),
		}
		scope.Columns[strings.ToLower(col)] = refs
	}
}

// ResolveStar expands a SELECT * or t.* item into the column refs it
// stands for. tableQualifier is "" for a bare *.
func (bc *buildContext) ResolveStar(scope *Scope, tableQualifier string, stmtIdx int) ([]ColumnRef, error) {
	var tables []TableRef
	if tableQualifier != "" {
		t, ok := scope.LookupTable(tableQualifier)
		if !ok {
			return nil, NewError(ErrUnresolvedReference, "unresolved table qualifier "+tableQualifier+" for *").WithStatement(stmtIdx).WithTable(tableQualifier)
		}
		tables = []TableRef{t}
	} else {
		tables = scope.OrderedTables()
	}
	var out []ColumnRef
	for _, t := range tables {
		cols, ok := bc.columnsOfTableRef(t)
		if !ok {
			if !bc.Config.ExpandWildcards {
				continue
			}
			return nil, NewError(ErrSchemaValidation, "cannot expand * for "+t.QualifiedName()+": no schema information available").WithStatement(stmtIdx)
		}
		for _, c := range cols {
			out = append(out, NewQualifiedColumnRef(t.Database, t.Schema, t.Table, c))
		}
	}
	return out, nil
}

func (bc *buildContext) columnsOfTableRef(t TableRef) ([]string, bool) {
	if t.IsSubquery {
		if td, ok := bc.Registry.Get(t.Database, t.Schema, t.Table); ok {
			return td.Columns.Names(), true
		}
		return nil, false
	}
	if td, ok := bc.Registry.Get(t.Database, t.Schema, t.Table); ok && !td.IsSourceTable {
		return td.Columns.Names(), true
	}
	if bc.Config.Schema == nil {
		return nil, false
	}
	return bc.Config.Schema.ColumnsOf(t.Database, t.Schema, t.Table)
}
