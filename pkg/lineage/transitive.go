package lineage

import (
	"fmt"
	"strings"
)

// TransitiveResolver answers trace/impact/explain questions against a
// fully analyzed script's TableRegistry.
type TransitiveResolver struct {
	Registry *TableRegistry
	MaxDepth int
}

// NewTransitiveResolver builds a resolver bounded to maxDepth hops (0
// means use the package default of 100).
func NewTransitiveResolver(reg *TableRegistry, maxDepth int) *TransitiveResolver {
	if maxDepth <= 0 {
		maxDepth = 100
	}
	return &TransitiveResolver{Registry: reg, MaxDepth: maxDepth}
}

func (r *TransitiveResolver) lookupColumn(ref ColumnRef) (*ColumnLineage, bool) {
	td, ok := r.Registry.Get(ref.Database, ref.Schema, ref.Table)
	if !ok || td.Columns == nil {
		return nil, false
	}
	return td.Columns.Get(ref.Column)
}

// filterRealRefs drops the __OUTPUT__/__CONSTANT__ sentinel refs from a
// source list: neither names a real table, so neither should ever be
// treated as a further hop to trace into or a key to index for impact.
func filterRealRefs(refs []ColumnRef) []ColumnRef {
	out := make([]ColumnRef, 0, len(refs))
	for _, r := range refs {
		if r.Kind == RefReal {
			out = append(out, r)
		}
	}
	return out
}

// lookupNode resolves ref to the TableDefinition and ColumnLineage it
// names, if any, for tagging a LineageNode with its table type and
// computing expression.
func (r *TransitiveResolver) lookupNode(ref ColumnRef) (*TableDefinition, *ColumnLineage, bool) {
	td, ok := r.Registry.Get(ref.Database, ref.Schema, ref.Table)
	if !ok || td.Columns == nil {
		return td, nil, false
	}
	cl, ok := td.Columns.Get(ref.Column)
	return td, cl, ok
}

// TraceToSource walks backward from target through its recorded sources
// until it reaches a source table (a leaf with no further lineage),
// returning every such root-to-leaf path found. Cycles (a derived table
// that transitively depends on itself, e.g. an unremoved recursive CTE
// reference) are broken per-branch: each branch carries its own copy of
// the visited set, so a diamond dependency is still explored down both
// legs, but a true cycle truncates just that one branch with a warning
// folded into the returned path's confidence rather than recursing
// forever.
func (r *TransitiveResolver) TraceToSource(target ColumnRef) []LineagePath {
	visited := map[string]bool{}
	return r.traceFrom(target, visited, 0)
}

func (r *TransitiveResolver) traceFrom(ref ColumnRef, visited map[string]bool, depth int) []LineagePath {
	node := LineageNode{Column: ref}
	if depth >= r.MaxDepth {
		return []LineagePath{{Nodes: []LineageNode{node}, Confidence: 1.0}}
	}
	key := ref.Key()
	if visited[key] {
		return []LineagePath{{Nodes: []LineageNode{node}, Confidence: 0.0}}
	}

	td, cl, ok := r.lookupNode(ref)
	if td != nil {
		node.TableType = td.Type
	}
	if !ok || ref.Kind != RefReal {
		return []LineagePath{{Nodes: []LineageNode{node}, Confidence: 1.0}}
	}

	node.Expression = cl.Expression
	node.ExprKind = cl.ExprKind
	node.IsAggregate = cl.IsAggregate

	// The __CONSTANT__/__OUTPUT__ sentinels exist only so a purely literal
	// or not-yet-materialized column still has a recorded source entry;
	// they name no real table and must never surface in user-visible
	// trace/impact/explain output, so a column whose only sources are
	// sentinels is treated as a leaf here, same as one with no sources
	// at all.
	realSources := filterRealRefs(cl.Sources)
	if len(realSources) == 0 {
		return []LineagePath{{Nodes: []LineageNode{node}, Confidence: cl.Confidence}}
	}

	branchVisited := make(map[string]bool, len(visited)+1)
	for k := range visited {
		branchVisited[k] = true
	}
	branchVisited[key] = true

	var out []LineagePath
	for _, src := range realSources {
		subPaths := r.traceFrom(src, branchVisited, depth+1)
		for _, sp := range subPaths {
			path := LineagePath{
				Nodes:      append([]LineageNode{node}, sp.Nodes...),
				Confidence: cl.Confidence * sp.Confidence,
			}
			out = append(out, path)
		}
	}
	if len(out) == 0 {
		out = []LineagePath{{Nodes: []LineageNode{node}, Confidence: cl.Confidence}}
	}
	return out
}

// FindImpact walks forward from source to every column transitively
// derived from it, using the same per-branch cycle protection as
// TraceToSource.
func (r *TransitiveResolver) FindImpact(source ColumnRef) []LineagePath {
	reverse := r.buildReverseIndex()
	visited := map[string]bool{}
	return r.impactFrom(source, reverse, visited, 0)
}

// buildReverseIndex scans every registered table's column lineage once,
// building source-key -> consumer-column-ref edges for FindImpact.
func (r *TransitiveResolver) buildReverseIndex() map[string][]ColumnRef {
	idx := map[string][]ColumnRef{}
	for _, td := range r.Registry.AllTables() {
		if td.Columns == nil {
			continue
		}
		for _, cl := range td.Columns.All() {
			consumer := NewQualifiedColumnRef(td.Database, td.Schema, td.Name, cl.Name)
			for _, src := range filterRealRefs(cl.Sources) {
				idx[src.Key()] = append(idx[src.Key()], consumer)
			}
		}
	}
	return idx
}

func (r *TransitiveResolver) impactFrom(ref ColumnRef, reverse map[string][]ColumnRef, visited map[string]bool, depth int) []LineagePath {
	node := LineageNode{Column: ref}
	if td, cl, ok := r.lookupNode(ref); td != nil {
		node.TableType = td.Type
		if ok {
			node.Expression = cl.Expression
			node.ExprKind = cl.ExprKind
			node.IsAggregate = cl.IsAggregate
		}
	}
	if depth >= r.MaxDepth {
		return []LineagePath{{Nodes: []LineageNode{node}, Confidence: 1.0}}
	}
	key := ref.Key()
	if visited[key] {
		return []LineagePath{{Nodes: []LineageNode{node}, Confidence: 0.0}}
	}
	consumers := reverse[key]
	if len(consumers) == 0 {
		return []LineagePath{{Nodes: []LineageNode{node}, Confidence: 1.0}}
	}

	branchVisited := make(map[string]bool, len(visited)+1)
	for k := range visited {
		branchVisited[k] = true
	}
	branchVisited[key] = true

	var out []LineagePath
	for _, consumer := range consumers {
		cl, _ := r.lookupColumn(consumer)
		conf := 1.0
		if cl != nil {
			conf = cl.Confidence
		}
		subPaths := r.impactFrom(consumer, reverse, branchVisited, depth+1)
		for _, sp := range subPaths {
			out = append(out, LineagePath{
				Nodes:      append([]LineageNode{node}, sp.Nodes...),
				Confidence: conf * sp.Confidence,
			})
		}
	}
	return out
}

// ImpactSet flattens FindImpact's paths into the set of downstream
// columns (everything reachable from source, excluding source itself),
// deduplicated, in first-encountered order. This is the shape --impact
// reports: which columns are affected, grouped by their table.
func (r *TransitiveResolver) ImpactSet(source ColumnRef) []ColumnRef {
	seen := map[string]bool{}
	var out []ColumnRef
	for _, p := range r.FindImpact(source) {
		for _, n := range p.Nodes[1:] {
			key := n.Column.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, n.Column)
		}
	}
	return out
}

// GetAllSourceTables returns the external tables the analyzed script
// reads from, in registration order.
func (r *TransitiveResolver) GetAllSourceTables() []*TableDefinition {
	return r.Registry.SourceTables()
}

// Explanation is the result of ExplainCalculation: the one-hop
// derivation of a column plus the full upstream trace, so a
// caller can render either the immediate calculation alone or the whole
// indented multi-line explanation via Text().
type Explanation struct {
	Target                 ColumnRef
	Expression             string
	ExprKind               ExpressionKind
	Sources                []ColumnRef
	Confidence             float64
	IsAggregate            bool
	AggregateFunction      *AggregateFunction
	AlternativeExpressions []string
	Paths                  []LineagePath
}

// ExplainCalculation reports how target's value is computed: its
// immediate expression/sources, plus every upstream
// path TraceToSource finds, for Text() to render as an indented
// human-readable explanation.
func (r *TransitiveResolver) ExplainCalculation(target ColumnRef) (*Explanation, error) {
	cl, ok := r.lookupColumn(target)
	if !ok {
		return nil, NewError(ErrUnresolvedReference, "no lineage recorded for "+target.QualifiedName()).
			WithTable(target.TableQualifiedName()).WithColumn(target.Column)
	}
	return &Explanation{
		Target:                 target,
		Expression:             cl.Expression,
		ExprKind:               cl.ExprKind,
		Sources:                cl.Sources,
		Confidence:             cl.Confidence,
		IsAggregate:            cl.IsAggregate,
		AggregateFunction:      cl.AggregateFunction,
		AlternativeExpressions: cl.AlternativeExpressions,
		Paths:                  r.TraceToSource(target),
	}, nil
}

// Text renders the full human-readable, multi-line calculation
// explanation: every upstream path, indented one level per hop,
// showing each hop's expression and expression kind when recorded, and
// marking the leaf of each path "(source)" when it terminates at an
// external table or "(direct)" when it terminates at a column with no
// further recorded sources.
func (e *Explanation) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", e.Target.QualifiedName())
	for _, p := range e.Paths {
		for depth, n := range p.Nodes {
			indent := strings.Repeat("  ", depth)
			prefix := "->"
			if depth == 0 {
				prefix = "  "
			}
			fmt.Fprintf(&b, "%s%s %s", indent, prefix, n.Column.QualifiedName())
			if n.Expression != "" {
				fmt.Fprintf(&b, "  [%s: %s]", n.ExprKind, n.Expression)
			}
			if depth == len(p.Nodes)-1 {
				marker := "(direct)"
				if n.TableType == TableTypeExternal {
					marker = "(source)"
				}
				fmt.Fprintf(&b, " %s", marker)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}
