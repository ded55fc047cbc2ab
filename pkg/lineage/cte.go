package lineage

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// registerCTEs implements the CTE Extractor (C9): each CTE is analyzed
// and registered as a TableTypeCTE table before the statement's main
// body is analyzed, so later CTEs and the main query can reference
// earlier ones. Returns the registered names so the caller can remove
// them once the statement finishes (the register -> expand -> remove
// lifecycle). Under WITH RECURSIVE, each CTE whose body references its
// own name goes through the fixed-point resolver; every other CTE gets a
// single pass.
func (bc *buildContext) registerCTEs(with *core.WithClause, stmtIdx int) ([]string, error) {
	names := make([]string, 0, len(with.CTEs))
	for _, cte := range with.CTEs {
		var cols *OrderedColumns
		var err error
		recursive := with.Recursive && cteIsSelfReferential(cte)
		if recursive {
			cols, err = bc.resolveRecursiveCTE(cte, stmtIdx)
		} else {
			cols, err = bc.analyzeSelectStmt(cte.Select, nil, stmtIdx)
		}
		if err != nil {
			// One broken CTE must not fail the whole statement; later
			// CTEs and the main query analyze against whatever did
			// resolve. A recursive CTE's seed may already be registered,
			// so it still needs the end-of-statement cleanup.
			if bc.Warnings != nil {
				bc.Warnings.Addf(SeverityError, stmtIdx, "skipping CTE "+cte.Name+": "+err.Error())
			}
			if recursive && bc.Registry.Has("", "", cte.Name) {
				names = append(names, cte.Name)
			}
			continue
		}
		td := &TableDefinition{
			Name:        cte.Name,
			Type:        TableTypeCTE,
			Columns:     cols,
			IsRecursive: recursive,
		}
		if _, err := bc.Registry.RegisterTable(td); err != nil {
			return names, err
		}
		names = append(names, cte.Name)
	}
	return names, nil
}

// expandCTELineage runs before a statement's CTEs are removed from the
// registry: every source in cols that names one of them
// is rewritten to that CTE column's own recorded sources, so the table
// cols is about to be materialized into never ends up pointing at a name
// the registry is about to delete. CTEs that themselves reference an
// earlier CTE (chaining) are handled by iterating to a fixed point: each
// round can turn a reference to the last CTE in the chain into a
// reference to an earlier one, which the next round then resolves in turn,
// bounded by one round per CTE so a chain of any registered depth fully
// unwinds.
func expandCTELineage(cols *OrderedColumns, cteNames []string, reg *TableRegistry) {
	if cols == nil || len(cteNames) == 0 {
		return
	}
	cteSet := make(map[string]bool, len(cteNames))
	for _, n := range cteNames {
		cteSet[strings.ToLower(n)] = true
	}
	for round := 0; round <= len(cteNames); round++ {
		progressed := false
		for _, name := range cols.Names() {
			cl, _ := cols.Get(name)
			if rewriteCTESources(cl, cteSet, reg) {
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
}

// rewriteCTESources replaces every source of cl whose table is in cteSet
// with that CTE column's own recorded sources (deduplicated by qualified
// name), leaving every other source untouched. Reports whether any
// replacement happened, so expandCTELineage knows whether another round
// might still make progress.
func rewriteCTESources(cl *ColumnLineage, cteSet map[string]bool, reg *TableRegistry) bool {
	if cl == nil || len(cl.Sources) == 0 {
		return false
	}
	var rebuilt []ColumnRef
	seen := map[string]bool{}
	changed := false
	for _, s := range cl.Sources {
		if s.Kind == RefReal && cteSet[strings.ToLower(s.Table)] {
			changed = true
			if cteTD, ok := reg.Get(s.Database, s.Schema, s.Table); ok && cteTD.Columns != nil {
				if srcCl, ok := cteTD.Columns.Get(s.Column); ok {
					for _, inner := range srcCl.Sources {
						key := inner.Key()
						if seen[key] {
							continue
						}
						seen[key] = true
						rebuilt = append(rebuilt, inner)
					}
				}
			}
			continue
		}
		key := s.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		rebuilt = append(rebuilt, s)
	}
	if !changed {
		return false
	}
	cl.Sources = rebuilt
	cl.sourceIndex = nil
	return true
}

// substituteSelfReference runs within one round of analyzing a recursive
// CTE's recursive arm: any source that names the
// CTE's own table is a self-reference and is replaced with the matching
// anchor column's already-resolved sources, keyed first by the target
// column's own name and falling back to the raw source's column name (the
// same fuzzy-by-name alignment analyzeRecursiveBranch uses for an
// unaliased `h.level + 1`).
func substituteSelfReference(cl *ColumnLineage, cteName string, anchor *OrderedColumns) {
	if cl == nil || len(cl.Sources) == 0 {
		return
	}
	var rebuilt []ColumnRef
	seen := map[string]bool{}
	changed := false
	for _, s := range cl.Sources {
		if s.Kind == RefReal && strings.EqualFold(s.Table, cteName) {
			changed = true
			anchorCl, ok := anchor.Get(cl.Name)
			if !ok {
				anchorCl, ok = anchor.Get(s.Column)
			}
			if ok {
				for _, inner := range anchorCl.Sources {
					key := inner.Key()
					if seen[key] {
						continue
					}
					seen[key] = true
					rebuilt = append(rebuilt, inner)
				}
			}
			continue
		}
		key := s.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		rebuilt = append(rebuilt, s)
	}
	if !changed {
		return
	}
	cl.Sources = rebuilt
	cl.sourceIndex = nil
}

// cteIsSelfReferential reports whether any branch of cte's body
// references the CTE's own name in a FROM/JOIN position.
func cteIsSelfReferential(cte *core.CTE) bool {
	for _, branch := range flattenBranches(cte.Select.Body) {
		if branch.From == nil {
			continue
		}
		if tableRefNamesMatch(branch.From.Source, cte.Name) {
			return true
		}
		for _, j := range branch.From.Joins {
			if tableRefNamesMatch(j.Right, cte.Name) {
				return true
			}
		}
	}
	return false
}

func tableRefNamesMatch(ref core.TableRef, name string) bool {
	t, ok := ref.(*core.TableName)
	if !ok {
		return false
	}
	return strings.EqualFold(t.Name, name) && t.Schema == "" && t.Catalog == ""
}

// flattenBranches walks a (possibly chained) SelectBody into its
// constituent SelectCore branches in source order.
func flattenBranches(body *core.SelectBody) []*core.SelectCore {
	var out []*core.SelectCore
	for body != nil {
		if body.Left != nil {
			out = append(out, body.Left)
		}
		if body.Right == nil {
			break
		}
		// body.Right is itself a *SelectBody; recurse by reassigning.
		next := body.Right
		body = next
	}
	return out
}

// resolveRecursiveCTE implements the recursive-CTE fixed-point pass:
// the anchor branch(es) seed the CTE's column set, then each
// recursive branch (which references the CTE itself) is re-analyzed
// against the current column set and merged in, repeating until a round
// adds nothing new or MaxRecursionFudge rounds are exhausted.
func (bc *buildContext) resolveRecursiveCTE(cte *core.CTE, stmtIdx int) (*OrderedColumns, error) {
	branches := flattenBranches(cte.Select.Body)
	var anchors, recursive []*core.SelectCore
	for _, b := range branches {
		if selfReferencesBranch(b, cte.Name) {
			recursive = append(recursive, b)
		} else {
			anchors = append(anchors, b)
		}
	}
	if len(anchors) == 0 {
		return nil, NewError(ErrUnresolvedReference, "recursive CTE "+cte.Name+" has no non-recursive anchor branch").WithStatement(stmtIdx)
	}

	// Seed the registry with an empty shell so a recursive branch's
	// self-reference resolves to *something* even before the anchor
	// pass below has filled in real columns.
	seed := &TableDefinition{Name: cte.Name, Type: TableTypeCTE, Columns: NewOrderedColumns(), IsRecursive: true}
	if _, err := bc.Registry.RegisterTable(seed); err != nil {
		return nil, err
	}

	acc := NewOrderedColumns()
	for _, b := range anchors {
		cols, err := bc.analyzeSelectCore(b, nil, stmtIdx)
		if err != nil {
			return nil, err
		}
		acc = mergeBranchesPositional(acc, cols, false)
		if acc.Len() == 0 {
			acc = cols
		}
	}
	bc.Registry.UpdateColumns(seed, acc)

	fudge := bc.Config.MaxRecursionFudge
	if fudge <= 0 {
		fudge = 100
	}
	for round := 0; round < fudge; round++ {
		progressed := false
		for _, b := range recursive {
			cols, err := bc.analyzeRecursiveBranch(b, acc, stmtIdx)
			if err != nil {
				return nil, err
			}
			for _, name := range cols.Names() {
				newCl, _ := cols.Get(name)
				substituteSelfReference(newCl, cte.Name, acc)
				existing, ok := acc.Get(name)
				if !ok {
					acc.Set(name, newCl)
					progressed = true
					continue
				}
				before := len(existing.Sources)
				_ = existing.MergeFrom(newCl)
				if len(existing.Sources) > before {
					progressed = true
				}
			}
		}
		bc.Registry.UpdateColumns(seed, acc)
		if !progressed {
			break
		}
		if round == fudge-1 && bc.Warnings != nil {
			bc.Warnings.Addf(SeverityWarning, stmtIdx, "recursive CTE "+cte.Name+" did not reach a fixed point within "+strconv.Itoa(fudge)+" rounds")
		}
	}
	return acc, nil
}

func selfReferencesBranch(b *core.SelectCore, name string) bool {
	if b.From == nil {
		return false
	}
	if tableRefNamesMatch(b.From.Source, name) {
		return true
	}
	for _, j := range b.From.Joins {
		if tableRefNamesMatch(j.Right, name) {
			return true
		}
	}
	return false
}

// analyzeRecursiveBranch analyzes one recursive branch of a recursive
// CTE, renaming unaliased projection items via fuzzy matching against
// the anchor's column names (stripping qualifiers and a trailing
// "+1"/"-1" arithmetic step, e.g. `n + 1` without an alias is understood
// to still feed the anchor's "n" column) before falling back to the
// ordinary positional generated name.
func (bc *buildContext) analyzeRecursiveBranch(b *core.SelectCore, anchor *OrderedColumns, stmtIdx int) (*OrderedColumns, error) {
	scope, err := bc.BuildScope(b.From, nil, stmtIdx)
	if err != nil {
		return nil, err
	}
	out := NewOrderedColumns()
	anchorNames := anchor.Names()
	position := 0
	for _, item := range b.Columns {
		position++
		if item.Star || item.TableStar != "" {
			continue // wildcard projections in a recursive arm are rare; anchor already names the columns.
		}
		targetName := item.Alias
		if targetName == "" {
			targetName = fuzzyColumnName(item.Expr)
		}
		if targetName == "" && position <= len(anchorNames) {
			targetName = anchorNames[position-1]
		}
		if targetName == "" {
			targetName = generatedColumnName(position)
		}
		res, err := bc.VisitExpr(scope, item.Expr, targetName, stmtIdx)
		if err != nil {
			return nil, err
		}
		cl := NewColumnLineage(targetName)
		for _, s := range res.Sources {
			cl.AddSource(s)
		}
		cl.Expression = res.Text
		cl.ExprKind = res.Kind
		cl.Confidence = res.Confidence * 0.9
		cl.IsAggregate = res.IsAggregate
		cl.AggregateFunction = res.AggregateFunction
		out.Set(targetName, cl)
	}
	return out, nil
}

// fuzzyColumnName derives a best-guess base column name from an
// unaliased recursive-arm projection expression: a bare column reference
// names itself; a simple `col +/- literal` arithmetic step is understood
// to still be deriving `col`.
func fuzzyColumnName(expr core.Expr) string {
	switch e := expr.(type) {
	case *core.ColumnRef:
		return e.Column
	case *core.ParenExpr:
		return fuzzyColumnName(e.Expr)
	case *core.BinaryExpr:
		if isAdditiveOp(e.Op) {
			if name := fuzzyColumnName(e.Left); name != "" {
				return name
			}
			return fuzzyColumnName(e.Right)
		}
	}
	return ""
}

func isAdditiveOp(op interface{ String() string }) bool {
	switch op.String() {
	case "+", "-":
		return true
	default:
		return false
	}
}
