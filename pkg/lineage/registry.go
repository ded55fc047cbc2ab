package lineage

import "strings"

// TableRegistry tracks every table a script touches: source tables
// (referenced but never defined by the script), and derived tables
// (CREATE TABLE AS / CREATE VIEW / CTE / INSERT INTO target). It is the
// shared state threaded through a single script's analysis.
type TableRegistry struct {
	tables     map[string]*TableDefinition
	order      []string
	statements int
	warnings   *WarningCollector
}

// NewTableRegistry returns an empty registry reporting into wc.
func NewTableRegistry(wc *WarningCollector) *TableRegistry {
	return &TableRegistry{tables: map[string]*TableDefinition{}, warnings: wc}
}

func registryKey(database, schema, name string) string {
	return normalizeTableKey(database, schema, name)
}

// BeginStatement advances the statement counter; CreatedAtStatement on
// newly registered tables records this value.
func (r *TableRegistry) BeginStatement() {
	r.statements++
}

// StatementIndex returns the 0-based index of the statement currently
// being analyzed.
func (r *TableRegistry) StatementIndex() int {
	if r.statements == 0 {
		return 0
	}
	return r.statements - 1
}

// RegisterSourceTable idempotently registers a table the script merely
// reads from (appears in a FROM/JOIN but is never the target of
// CREATE/INSERT). Re-registering an existing source table is a no-op.
func (r *TableRegistry) RegisterSourceTable(database, schema, name string) *TableDefinition {
	key := registryKey(database, schema, name)
	if existing, ok := r.tables[key]; ok {
		return existing
	}
	td := &TableDefinition{
		Database:      database,
		Schema:        schema,
		Name:          name,
		Type:          TableTypeExternal,
		Columns:       NewOrderedColumns(),
		IsSourceTable: true,
	}
	r.tables[key] = td
	r.order = append(r.order, key)
	return td
}

// RegisterTable registers a table the script defines (CREATE TABLE AS,
// CREATE VIEW, CTE):
//   - registering over an existing *source* (External) table fails:
//     source tables are immutable once first seen reading from them;
//   - registering over an existing *derived* table overwrites it and
//     emits a warning (the script redefines the same name twice).
func (r *TableRegistry) RegisterTable(td *TableDefinition) (*TableDefinition, error) {
	key := registryKey(td.Database, td.Schema, td.Name)
	td.CreatedAtStatement = r.StatementIndex()
	if existing, ok := r.tables[key]; ok {
		if existing.IsSourceTable {
			return nil, NewError(ErrSourceRedefinition,
				"cannot register over source table "+existing.QualifiedName()).
				WithStatement(r.StatementIndex()).WithTable(existing.QualifiedName())
		}
		// A script may contain more than one bare, non-assigned SELECT;
		// each one legitimately overwrites what __OUTPUT__ refers to, so
		// this isn't the same kind of accidental redefinition a repeated
		// CREATE/INSERT target name would be.
		if r.warnings != nil && !td.IsOutputSentinel() {
			r.warnings.Addf(SeverityWarning, r.StatementIndex(),
				"table "+existing.QualifiedName()+" redefined; replacing previous derivation")
		}
	} else {
		r.order = append(r.order, key)
	}
	r.tables[key] = td
	return td, nil
}

// MergeInsertColumns is the INSERT-merge semantics: when an
// INSERT INTO target SELECT ... targets a derived table the registry
// already knows (a source table being loaded goes through UpdateColumns
// instead), existing column lineage for
// columns the INSERT also targets is merged via ColumnLineage.MergeFrom;
// columns the INSERT doesn't touch are left untouched, and columns new
// to the target are added.
func (r *TableRegistry) MergeInsertColumns(target *TableDefinition, incoming *OrderedColumns) error {
	for _, name := range incoming.Names() {
		cl, _ := incoming.Get(name)
		if existing, ok := target.Columns.Get(name); ok {
			if err := existing.MergeFrom(cl); err != nil {
				return err
			}
			continue
		}
		target.Columns.Set(name, cl)
	}
	return nil
}

// UpdateColumns replaces or sets columns on an already-registered table
// (used by the recursive-CTE fixed point, which refreshes its CTE's
// column set each round, and by INSERT into a source table, which fills
// the source table's column set rather than merging).
func (r *TableRegistry) UpdateColumns(td *TableDefinition, cols *OrderedColumns) {
	td.Columns = cols
}

// Get looks up a table by qualified name parts, case-insensitively.
func (r *TableRegistry) Get(database, schema, name string) (*TableDefinition, bool) {
	td, ok := r.tables[registryKey(database, schema, name)]
	return td, ok
}

// GetByName looks up a table by bare name only, scanning every
// registered table for a Name match. Used when a reference in the
// script is unqualified and the registry must guess which catalog the
// name belongs to; returns false unless exactly one registered table
// carries the bare name (anything else is ambiguous).
func (r *TableRegistry) GetByName(name string) (*TableDefinition, bool) {
	lname := strings.ToLower(name)
	var matches []*TableDefinition
	for _, key := range r.order {
		td := r.tables[key]
		if strings.EqualFold(td.Name, lname) {
			matches = append(matches, td)
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return nil, false
}

// Has reports whether a table is registered.
func (r *TableRegistry) Has(database, schema, name string) bool {
	_, ok := r.Get(database, schema, name)
	return ok
}

// Remove deletes a table from the registry (used to remove a CTE from
// visibility once the statement that defines it finishes, the CTE
// lifecycle being register -> expand references -> remove).
func (r *TableRegistry) Remove(database, schema, name string) {
	key := registryKey(database, schema, name)
	delete(r.tables, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// SourceTables returns every registered table flagged as a source,
// insertion order.
func (r *TableRegistry) SourceTables() []*TableDefinition {
	var out []*TableDefinition
	for _, key := range r.order {
		if td := r.tables[key]; td.IsSourceTable {
			out = append(out, td)
		}
	}
	return out
}

// DerivedTables returns every registered table not flagged as a source,
// insertion order.
func (r *TableRegistry) DerivedTables() []*TableDefinition {
	var out []*TableDefinition
	for _, key := range r.order {
		if td := r.tables[key]; !td.IsSourceTable {
			out = append(out, td)
		}
	}
	return out
}

// AllTables returns every registered table, insertion order.
func (r *TableRegistry) AllTables() []*TableDefinition {
	out := make([]*TableDefinition, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.tables[key])
	}
	return out
}

// Reset clears the registry back to empty, preserving the WarningCollector.
func (r *TableRegistry) Reset() {
	r.tables = map[string]*TableDefinition{}
	r.order = nil
	r.statements = 0
}
