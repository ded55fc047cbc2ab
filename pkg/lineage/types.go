package lineage

import "strings"

// Sentinel table names used as the Table of a ColumnRef that does not
// originate from a real relation. Kept as exported constants (rather than
// only the Kind tag below) because the JSON export shape and CLI renderers
// need the literal strings.
const (
	OutputTable   = "__OUTPUT__"
	ConstantTable = "__CONSTANT__"
)

// RefKind distinguishes a ColumnRef that points at a real relation from
// the two sentinel kinds. Comparisons inside the package should prefer
// Kind over comparing Table against the sentinel strings directly, so a
// real table that happens to be named "__output__" can never be confused
// with the sentinel.
type RefKind int

// RefKind values.
const (
	RefReal RefKind = iota
	RefOutput
	RefConstant
)

// ColumnRef identifies a column, either on a real table/view/CTE or one
// of the two sentinel pseudo-tables. Identity for dedup/map-key purposes
// is (Database, Schema, Table, Column); Alias is display-only.
type ColumnRef struct {
	Database string
	Schema   string
	Table    string
	Column   string
	Alias    string
	Kind     RefKind
}

// NewColumnRef builds a reference to a real column.
func NewColumnRef(table, column string) ColumnRef {
	return ColumnRef{Table: table, Column: column, Kind: RefReal}
}

// NewQualifiedColumnRef builds a reference to a real column with a
// database/schema-qualified table.
func NewQualifiedColumnRef(database, schema, table, column string) ColumnRef {
	return ColumnRef{Database: database, Schema: schema, Table: table, Column: column, Kind: RefReal}
}

// NewOutputRef builds the sentinel reference used for a literal-only
// projection column that has no source at all (e.g. SELECT 1 AS x).
func NewOutputRef(column string) ColumnRef {
	return ColumnRef{Table: OutputTable, Column: column, Kind: RefOutput}
}

// NewConstantRef builds the sentinel reference recorded as the source of
// a column computed purely from a literal, tagged with the target column
// name it feeds: constants still get a source entry so trace/impact can
// report "derived from a constant" rather than "no sources".
func NewConstantRef(targetColumn string) ColumnRef {
	return ColumnRef{Table: ConstantTable, Column: targetColumn, Kind: RefConstant}
}

// QualifiedName renders the non-empty parts joined by ".", the form used
// throughout CLI output and --trace/--impact arguments.
func (c ColumnRef) QualifiedName() string {
	parts := make([]string, 0, 4)
	if c.Database != "" {
		parts = append(parts, c.Database)
	}
	if c.Schema != "" {
		parts = append(parts, c.Schema)
	}
	if c.Table != "" {
		parts = append(parts, c.Table)
	}
	if c.Column != "" {
		parts = append(parts, c.Column)
	}
	return strings.Join(parts, ".")
}

// TableQualifiedName renders just the table portion (Database.Schema.Table).
func (c ColumnRef) TableQualifiedName() string {
	parts := make([]string, 0, 3)
	if c.Database != "" {
		parts = append(parts, c.Database)
	}
	if c.Schema != "" {
		parts = append(parts, c.Schema)
	}
	if c.Table != "" {
		parts = append(parts, c.Table)
	}
	return strings.Join(parts, ".")
}

// Key returns the identity used for dedup and map keys: QualifiedName but
// with Alias and display fields stripped out (QualifiedName already
// excludes Alias, so Key is currently just a case-normalized wrapper).
func (c ColumnRef) Key() string {
	return strings.ToLower(c.QualifiedName())
}

// ExpressionKind classifies how a lineage target column's value was
// derived from its sources.
type ExpressionKind string

// ExpressionKind values, in the precedence order UNION-branch merging
// uses: Case > Function > Computed > Direct.
const (
	ExprDirect      ExpressionKind = "direct"
	ExprComputed    ExpressionKind = "computed"
	ExprFunction    ExpressionKind = "function"
	ExprCase        ExpressionKind = "case"
	ExprAggregation ExpressionKind = "aggregation"
	ExprWindow      ExpressionKind = "window"
)

// exprKindRank gives the UNION-merge precedence order; higher wins.
var exprKindRank = map[ExpressionKind]int{
	ExprDirect:      0,
	ExprComputed:    1,
	ExprFunction:    2,
	ExprAggregation: 2,
	ExprWindow:      2,
	ExprCase:        3,
}

// dominantExprKind returns whichever of a, b ranks higher under the
// UNION-branch merge precedence (Case > Function/Aggregation/Window >
// Computed > Direct). Ties keep a.
func dominantExprKind(a, b ExpressionKind) ExpressionKind {
	if exprKindRank[b] > exprKindRank[a] {
		return b
	}
	return a
}

// AggregateFunction enumerates the aggregate functions the Dependency
// Extractor recognizes for is_aggregate/aggregate_function tagging.
type AggregateFunction string

// Recognized aggregate functions.
const (
	AggSum   AggregateFunction = "SUM"
	AggAvg   AggregateFunction = "AVG"
	AggMin   AggregateFunction = "MIN"
	AggMax   AggregateFunction = "MAX"
	AggCount AggregateFunction = "COUNT"
)

// aggregateFunctions is the recognition set, keyed upper-case.
var aggregateFunctions = map[string]AggregateFunction{
	"SUM":   AggSum,
	"AVG":   AggAvg,
	"MIN":   AggMin,
	"MAX":   AggMax,
	"COUNT": AggCount,
}

// LookupAggregateFunction reports whether name (case-insensitive) is a
// recognized aggregate function.
func LookupAggregateFunction(name string) (AggregateFunction, bool) {
	fn, ok := aggregateFunctions[strings.ToUpper(name)]
	return fn, ok
}

// ColumnLineage is the Dependency Extractor's per-target-column record:
// every source column feeding it, the rendered expression text, and the
// derivation metadata (kind, confidence, aggregate tagging) for one
// target column produced by a statement's analysis, stored on the
// owning TableDefinition.
type ColumnLineage struct {
	Name                   string
	DataType               string
	Sources                []ColumnRef
	sourceIndex            map[string]int
	Expression             string
	AlternativeExpressions []string
	ExprKind               ExpressionKind
	Confidence             float64
	IsAggregate            bool
	AggregateFunction      *AggregateFunction
	IsGroupBy              bool
}

// NewColumnLineage starts a fresh lineage record for a target column.
func NewColumnLineage(name string) *ColumnLineage {
	return &ColumnLineage{Name: name, Confidence: 1.0, sourceIndex: map[string]int{}}
}

// AddSource appends src if no source with the same Key is already
// present (dedup by qualified name).
func (cl *ColumnLineage) AddSource(src ColumnRef) {
	if cl.sourceIndex == nil {
		cl.sourceIndex = map[string]int{}
		for i, s := range cl.Sources {
			cl.sourceIndex[s.Key()] = i
		}
	}
	if _, ok := cl.sourceIndex[src.Key()]; ok {
		return
	}
	cl.sourceIndex[src.Key()] = len(cl.Sources)
	cl.Sources = append(cl.Sources, src)
}

// MergeFrom combines another ColumnLineage for the same target name into
// cl, the UNION/recursive-CTE merge rule:
//   - sources are appended, deduplicated by qualified name
//   - other's expression (if different) is recorded as an alternative
//   - confidence becomes min(cl.Confidence, other.Confidence*0.9)
//   - IsAggregate/IsGroupBy become the OR of both sides
//   - ExprKind becomes whichever of the two ranks higher in the
//     Case > Function > Computed > Direct precedence order
func (cl *ColumnLineage) MergeFrom(other *ColumnLineage) error {
	if other == nil {
		return nil
	}
	if !strings.EqualFold(cl.Name, other.Name) {
		return &LineageError{Kind: ErrInternal, Message: "cannot merge lineage for differently named columns: " + cl.Name + " vs " + other.Name}
	}
	for _, s := range other.Sources {
		cl.AddSource(s)
	}
	if other.Expression != "" && other.Expression != cl.Expression {
		cl.AlternativeExpressions = append(cl.AlternativeExpressions, other.Expression)
	}
	cl.AlternativeExpressions = append(cl.AlternativeExpressions, other.AlternativeExpressions...)

	merged := other.Confidence * 0.9
	if cl.Confidence < merged {
		merged = cl.Confidence
	}
	cl.Confidence = merged

	cl.IsAggregate = cl.IsAggregate || other.IsAggregate
	cl.IsGroupBy = cl.IsGroupBy || other.IsGroupBy
	if cl.AggregateFunction == nil {
		cl.AggregateFunction = other.AggregateFunction
	}
	cl.ExprKind = dominantExprKind(cl.ExprKind, other.ExprKind)
	return nil
}

// TableType classifies a TableDefinition's origin.
type TableType string

// TableType values.
const (
	TableTypeTable     TableType = "table"
	TableTypeView      TableType = "view"
	TableTypeTempTable TableType = "temp_table"
	TableTypeCTE       TableType = "cte"
	TableTypeExternal  TableType = "external"
	TableTypeSubquery  TableType = "subquery"
)

// OrderedColumns preserves the insertion order of a table's columns,
// needed for positional matching in implicit-column-list INSERT and
// positional UNION-branch merges.
type OrderedColumns struct {
	order []string
	byKey map[string]*ColumnLineage
}

// NewOrderedColumns returns an empty OrderedColumns.
func NewOrderedColumns() *OrderedColumns {
	return &OrderedColumns{byKey: map[string]*ColumnLineage{}}
}

// Set inserts or replaces the lineage for a column name, preserving the
// original position on replace.
func (oc *OrderedColumns) Set(name string, cl *ColumnLineage) {
	key := strings.ToLower(name)
	if _, exists := oc.byKey[key]; !exists {
		oc.order = append(oc.order, name)
	}
	oc.byKey[key] = cl
}

// Get looks up a column's lineage, case-insensitively.
func (oc *OrderedColumns) Get(name string) (*ColumnLineage, bool) {
	cl, ok := oc.byKey[strings.ToLower(name)]
	return cl, ok
}

// Names returns column names in insertion order.
func (oc *OrderedColumns) Names() []string {
	return append([]string(nil), oc.order...)
}

// At returns the lineage at the i'th position, if any.
func (oc *OrderedColumns) At(i int) (*ColumnLineage, bool) {
	if i < 0 || i >= len(oc.order) {
		return nil, false
	}
	return oc.Get(oc.order[i])
}

// Len reports the number of columns.
func (oc *OrderedColumns) Len() int { return len(oc.order) }

// All returns every column's lineage in insertion order.
func (oc *OrderedColumns) All() []*ColumnLineage {
	out := make([]*ColumnLineage, 0, len(oc.order))
	for _, n := range oc.order {
		cl, _ := oc.Get(n)
		out = append(out, cl)
	}
	return out
}

// TableDefinition is a single entry of the Table Registry: a relation
// (real, temp, CTE, view, external, or subquery) and the column lineage
// recorded against it so far.
type TableDefinition struct {
	Database    string
	Schema      string
	Name        string
	Type        TableType
	Columns     *OrderedColumns
	CreatedBySQL string
	CreatedAtStatement int
	IsSourceTable bool
	IsRecursive   bool
}

// IsOutputSentinel reports whether this entry is the internal
// __OUTPUT__ pseudo-table a bare SELECT's projection is recorded
// against; it must never surface in user-visible table listings or
// exports.
func (t *TableDefinition) IsOutputSentinel() bool {
	return t.Database == "" && t.Schema == "" && strings.EqualFold(t.Name, OutputTable)
}

// QualifiedName renders Database.Schema.Name, omitting empty parts.
func (t *TableDefinition) QualifiedName() string {
	parts := make([]string, 0, 3)
	if t.Database != "" {
		parts = append(parts, t.Database)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	if t.Name != "" {
		parts = append(parts, t.Name)
	}
	return strings.Join(parts, ".")
}

// TableRef is the lineage-domain notion of "a table appearing in a FROM
// clause, resolved to what it refers to" — distinct from pkg/core's
// syntactic TableRef and pkg/parser's parse-time alias Scope.
type TableRef struct {
	Database   string
	Schema     string
	Table      string
	Alias      string
	IsSubquery bool
}

// QualifiedName renders Database.Schema.Table.
func (t TableRef) QualifiedName() string {
	parts := make([]string, 0, 3)
	if t.Database != "" {
		parts = append(parts, t.Database)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	if t.Table != "" {
		parts = append(parts, t.Table)
	}
	return strings.Join(parts, ".")
}

// EffectiveName is the Alias if set, else the bare table name; this is
// the key a column's unqualified or alias-qualified reference resolves
// against within a Scope.
func (t TableRef) EffectiveName() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Table
}

// Scope is the alias/column resolution environment for one query block
// (a SelectCore or subquery). Parent is non-nil for a correlated
// subquery's scope, letting the symbol resolver walk outward for names
// not found locally.
type Scope struct {
	Parent      *Scope
	Tables      map[string]TableRef    // keyed by EffectiveName(), lower-cased
	TableOrder  []string               // insertion order of the keys in Tables, for deterministic wildcard expansion
	Columns     map[string][]ColumnRef // keyed by lower-cased column name -> candidate owning tables' refs
}

// NewScope creates an empty scope, optionally chained to parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, Tables: map[string]TableRef{}, Columns: map[string][]ColumnRef{}}
}

// AddTable registers a FROM/JOIN member under its effective name.
func (s *Scope) AddTable(ref TableRef) {
	key := strings.ToLower(ref.EffectiveName())
	if _, exists := s.Tables[key]; !exists {
		s.TableOrder = append(s.TableOrder, key)
	}
	s.Tables[key] = ref
}

// OrderedTables returns every table registered on this scope (not its
// parents) in FROM/JOIN order.
func (s *Scope) OrderedTables() []TableRef {
	out := make([]TableRef, 0, len(s.TableOrder))
	for _, k := range s.TableOrder {
		out = append(out, s.Tables[k])
	}
	return out
}

// LookupTable resolves an alias or bare table name within this scope
// only (no parent walk; FROM-clause resolution is never correlated).
func (s *Scope) LookupTable(name string) (TableRef, bool) {
	t, ok := s.Tables[strings.ToLower(name)]
	return t, ok
}

// LineageNode is one hop of a trace/impact/explain path: a column and
// how it relates to the next node in the chain.
type LineageNode struct {
	Column      ColumnRef
	Expression  string
	ExprKind    ExpressionKind
	IsAggregate bool
	TableType   TableType
}

// LineagePath is a full chain returned by the Transitive Resolver, plus
// the confidence accumulated along it (product of per-hop confidences).
type LineagePath struct {
	Nodes      []LineageNode
	Confidence float64
}

// Target is the path's last node (trace's ultimate source, impact's
// terminal consumer).
func (p LineagePath) Target() (ColumnRef, bool) {
	if len(p.Nodes) == 0 {
		return ColumnRef{}, false
	}
	return p.Nodes[len(p.Nodes)-1].Column, true
}
