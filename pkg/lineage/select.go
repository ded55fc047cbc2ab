package lineage

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// analyzeSelectStmt is the common entry point for analyzing any SELECT
// (top-level statement query, subquery, or CTE body): expand any WITH
// clause's CTEs first (cte.go), analyze the set-operation body, then
// remove the CTEs from the registry once the statement is fully
// resolved (register -> expand references -> remove).
func (bc *buildContext) analyzeSelectStmt(sel *core.SelectStmt, parent *Scope, stmtIdx int) (*OrderedColumns, error) {
	if sel == nil {
		return NewOrderedColumns(), nil
	}
	var cteNames []string
	var cteErr error
	if sel.With != nil {
		// registerCTEs reports the names it managed to register even when
		// it errors, so cleanup below still removes them; a failed
		// statement must not leave CTEs behind.
		cteNames, cteErr = bc.registerCTEs(sel.With, stmtIdx)
	}
	var cols *OrderedColumns
	err := cteErr
	if err == nil {
		cols, err = bc.analyzeSelectBody(sel.Body, parent, stmtIdx)
	}
	if err == nil {
		expandCTELineage(cols, cteNames, bc.Registry)
	}
	for _, name := range cteNames {
		bc.Registry.Remove("", "", name)
	}
	if err != nil {
		return nil, err
	}
	return cols, nil
}

// analyzeSelectBody walks a (possibly chained) UNION/INTERSECT/EXCEPT
// tree, merging each branch's output positionally (or by name for
// DuckDB's BY NAME).
func (bc *buildContext) analyzeSelectBody(body *core.SelectBody, parent *Scope, stmtIdx int) (*OrderedColumns, error) {
	if body == nil {
		return NewOrderedColumns(), nil
	}
	left, err := bc.analyzeSelectCore(body.Left, parent, stmtIdx)
	if err != nil {
		return nil, err
	}
	if body.Op == core.SetOpNone || body.Right == nil {
		return left, nil
	}
	right, err := bc.analyzeSelectBody(body.Right, parent, stmtIdx)
	if err != nil {
		return nil, err
	}
	return mergeBranchesPositional(left, right, body.ByName), nil
}

func mergeBranchesPositional(left, right *OrderedColumns, byName bool) *OrderedColumns {
	out := NewOrderedColumns()
	usedRight := map[string]bool{}
	names := left.Names()
	for i, name := range names {
		lcl, _ := left.Get(name)
		merged := cloneColumnLineage(lcl)
		var rcl *ColumnLineage
		var ok bool
		if byName {
			rcl, ok = right.Get(name)
		} else {
			rcl, ok = right.At(i)
		}
		if ok {
			usedRight[strings.ToLower(rcl.Name)] = true
			// The output column carries the first branch's name; the
			// matched branch column merges in under that name even when
			// its own projection was named differently.
			renamed := cloneColumnLineage(rcl)
			renamed.Name = merged.Name
			_ = merged.MergeFrom(renamed)
		}
		out.Set(name, merged)
	}
	// Columns only the right branch has (mismatched arity/BY NAME) are
	// still surfaced rather than silently dropped.
	for _, name := range right.Names() {
		if usedRight[strings.ToLower(name)] {
			continue
		}
		if _, ok := out.Get(name); !ok {
			if rcl, ok := right.Get(name); ok {
				out.Set(name, cloneColumnLineage(rcl))
			}
		}
	}
	return out
}

func cloneColumnLineage(cl *ColumnLineage) *ColumnLineage {
	cp := NewColumnLineage(cl.Name)
	cp.DataType = cl.DataType
	cp.Expression = cl.Expression
	cp.AlternativeExpressions = append([]string(nil), cl.AlternativeExpressions...)
	cp.ExprKind = cl.ExprKind
	cp.Confidence = cl.Confidence
	cp.IsAggregate = cl.IsAggregate
	cp.AggregateFunction = cl.AggregateFunction
	cp.IsGroupBy = cl.IsGroupBy
	for _, s := range cl.Sources {
		cp.AddSource(s)
	}
	return cp
}

// analyzeSelectCore is the main projection loop: build the FROM scope,
// then for each SELECT item either expand
// a wildcard or visit its expression to determine sources, expression
// kind, and aggregate/group-by tagging.
func (bc *buildContext) analyzeSelectCore(sc *core.SelectCore, parent *Scope, stmtIdx int) (*OrderedColumns, error) {
	if sc == nil {
		return NewOrderedColumns(), nil
	}
	scope, err := bc.BuildScope(sc.From, parent, stmtIdx)
	if err != nil {
		return nil, err
	}

	// WHERE/HAVING are visited for their side effects (correlated
	// subquery registration, warnings) even though predicates don't
	// themselves produce projected columns.
	if sc.Where != nil {
		if _, err := bc.visitExpr(scope, sc.Where, stmtIdx); err != nil {
			return nil, err
		}
	}
	if sc.Having != nil {
		if _, err := bc.visitExpr(scope, sc.Having, stmtIdx); err != nil {
			return nil, err
		}
	}

	out := NewOrderedColumns()
	position := 0
	for _, item := range sc.Columns {
		position++
		switch {
		case item.Star:
			refs, err := bc.ResolveStar(scope, "", stmtIdx)
			if err != nil {
				return nil, err
			}
			bc.appendStarColumns(out, refs, item.Modifiers)
		case item.TableStar != "":
			refs, err := bc.ResolveStar(scope, item.TableStar, stmtIdx)
			if err != nil {
				return nil, err
			}
			bc.appendStarColumns(out, refs, item.Modifiers)
		default:
			targetName := item.Alias
			if targetName == "" {
				if cr, ok := item.Expr.(*core.ColumnRef); ok {
					targetName = cr.Column
				} else {
					targetName = generatedColumnName(position)
					if bc.Warnings != nil {
						bc.Warnings.Addf(SeverityInfo, stmtIdx, "computed column at position "+generatedColumnName(position)+" has no alias; generated a name")
					}
				}
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
			cl.Confidence = res.Confidence
			cl.IsAggregate = res.IsAggregate
			cl.AggregateFunction = res.AggregateFunction
			cl.IsGroupBy = bc.isGroupByColumn(sc, item.Expr, res.IsAggregate)
			out.Set(targetName, cl)
		}
	}
	return out, nil
}

func (bc *buildContext) appendStarColumns(out *OrderedColumns, refs []ColumnRef, modifiers []core.StarModifier) {
	excluded := map[string]bool{}
	for _, m := range modifiers {
		if ex, ok := m.(*core.ExcludeModifier); ok {
			for _, c := range ex.Columns {
				excluded[normalizeTableKey(c)] = true
			}
		}
	}
	for _, ref := range refs {
		if excluded[normalizeTableKey(ref.Column)] {
			continue
		}
		cl := NewColumnLineage(ref.Column)
		cl.AddSource(ref)
		cl.ExprKind = ExprDirect
		cl.Confidence = 1.0
		out.Set(ref.Column, cl)
	}
}

func (bc *buildContext) isGroupByColumn(sc *core.SelectCore, expr core.Expr, isAggregate bool) bool {
	if isAggregate {
		return false
	}
	if sc.GroupByAll {
		return true
	}
	for _, g := range sc.GroupBy {
		if exprRefsEqual(g, expr) {
			return true
		}
	}
	return false
}

// exprRefsEqual compares two expressions for the narrow case the group-
// by/select-item matching needs: same bare column reference, ignoring
// case. Anything more elaborate (an expression repeated verbatim in both
// GROUP BY and SELECT) is intentionally not matched here; grouping by a
// computed expression is rare enough that missing the is_group_by tag
// on it is an acceptable simplification.
func exprRefsEqual(a, b core.Expr) bool {
	ac, aok := a.(*core.ColumnRef)
	bref, bok := b.(*core.ColumnRef)
	if !aok || !bok {
		return false
	}
	return strings.EqualFold(ac.Column, bref.Column) && strings.EqualFold(ac.Table, bref.Table)
}
