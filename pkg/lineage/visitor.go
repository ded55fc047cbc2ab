package lineage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

// exprResult is what visiting a single expression node produces: the
// columns it ultimately depends on, how to classify the expression, a
// confidence (the minimum confidence of any resolved reference folded
// into it), and a best-effort rendering of the expression text.
type exprResult struct {
	Sources           []ColumnRef
	Kind              ExpressionKind
	IsAggregate       bool
	AggregateFunction *AggregateFunction
	Confidence        float64
	Text              string
}

func newExprResult() exprResult {
	return exprResult{Confidence: 1.0}
}

func combine(results ...exprResult) (sources []ColumnRef, confidence float64) {
	confidence = 1.0
	lists := make([][]ColumnRef, 0, len(results))
	for _, r := range results {
		lists = append(lists, r.Sources)
		if r.Confidence < confidence {
			confidence = r.Confidence
		}
	}
	return mergeSources(lists...), confidence
}

// VisitExpr walks a parsed expression, resolving every column reference
// it contains against scope and classifying the overall expression.
// targetName names the constant sentinel used when the
// expression turns out to have no real source at all.
func (bc *buildContext) VisitExpr(scope *Scope, expr core.Expr, targetName string, stmtIdx int) (exprResult, error) {
	if err := bc.CheckComplexity(expr, stmtIdx); err != nil {
		return exprResult{}, err
	}
	res, err := bc.visitExpr(scope, expr, stmtIdx)
	if err != nil {
		return exprResult{}, err
	}
	if len(res.Sources) == 0 {
		res.Sources = []ColumnRef{NewConstantRef(targetName)}
	}
	return res, nil
}

func (bc *buildContext) visitExpr(scope *Scope, expr core.Expr, stmtIdx int) (exprResult, error) {
	switch e := expr.(type) {
	case *core.ColumnRef:
		refs, conf, err := bc.ResolveColumnRef(scope, e, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		text := e.Column
		if e.Table != "" {
			text = e.Table + "." + e.Column
		}
		return exprResult{Sources: refs, Kind: ExprDirect, Confidence: conf, Text: text}, nil

	case *core.Literal:
		return exprResult{Kind: ExprDirect, Confidence: 1.0, Text: literalText(e)}, nil

	case *core.BinaryExpr:
		l, err := bc.visitExpr(scope, e.Left, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		r, err := bc.visitExpr(scope, e.Right, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		sources, conf := combine(l, r)
		return exprResult{Sources: sources, Kind: ExprComputed, Confidence: conf, Text: l.Text + " " + e.Op.String() + " " + r.Text}, nil

	case *core.UnaryExpr:
		inner, err := bc.visitExpr(scope, e.Expr, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		return exprResult{Sources: inner.Sources, Kind: ExprComputed, Confidence: inner.Confidence, Text: e.Op.String() + inner.Text}, nil

	case *core.FuncCall:
		return bc.visitFuncCall(scope, e, stmtIdx)

	case *core.CaseExpr:
		parts := []exprResult{}
		var text []string
		text = append(text, "CASE")
		if e.Operand != nil {
			op, err := bc.visitExpr(scope, e.Operand, stmtIdx)
			if err != nil {
				return exprResult{}, err
			}
			parts = append(parts, op)
		}
		for _, w := range e.Whens {
			cond, err := bc.visitExpr(scope, w.Condition, stmtIdx)
			if err != nil {
				return exprResult{}, err
			}
			res, err := bc.visitExpr(scope, w.Result, stmtIdx)
			if err != nil {
				return exprResult{}, err
			}
			parts = append(parts, cond, res)
			text = append(text, fmt.Sprintf("WHEN %s THEN %s", cond.Text, res.Text))
		}
		if e.Else != nil {
			els, err := bc.visitExpr(scope, e.Else, stmtIdx)
			if err != nil {
				return exprResult{}, err
			}
			parts = append(parts, els)
			text = append(text, "ELSE "+els.Text)
		}
		text = append(text, "END")
		sources, conf := combine(parts...)
		return exprResult{Sources: sources, Kind: ExprCase, Confidence: conf, Text: strings.Join(text, " ")}, nil

	case *core.CastExpr:
		inner, err := bc.visitExpr(scope, e.Expr, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		kind := inner.Kind
		if kind == ExprDirect {
			kind = ExprComputed
		}
		return exprResult{Sources: inner.Sources, Kind: kind, Confidence: inner.Confidence, Text: fmt.Sprintf("CAST(%s AS %s)", inner.Text, e.TypeName)}, nil

	case *core.InExpr:
		operand, err := bc.visitExpr(scope, e.Expr, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		parts := []exprResult{operand}
		for _, v := range e.Values {
			vr, err := bc.visitExpr(scope, v, stmtIdx)
			if err != nil {
				return exprResult{}, err
			}
			parts = append(parts, vr)
		}
		if e.Query != nil {
			sub, err := bc.scalarSubqueryResult(scope, e.Query, stmtIdx)
			if err != nil {
				return exprResult{}, err
			}
			parts = append(parts, sub)
		}
		sources, conf := combine(parts...)
		return exprResult{Sources: sources, Kind: ExprComputed, Confidence: conf, Text: operand.Text + " IN (...)"}, nil

	case *core.BetweenExpr:
		operand, err := bc.visitExpr(scope, e.Expr, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		lo, err := bc.visitExpr(scope, e.Low, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		hi, err := bc.visitExpr(scope, e.High, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		sources, conf := combine(operand, lo, hi)
		return exprResult{Sources: sources, Kind: ExprComputed, Confidence: conf, Text: operand.Text + " BETWEEN " + lo.Text + " AND " + hi.Text}, nil

	case *core.IsNullExpr:
		operand, err := bc.visitExpr(scope, e.Expr, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		return exprResult{Sources: operand.Sources, Kind: ExprComputed, Confidence: operand.Confidence, Text: operand.Text + " IS NULL"}, nil

	case *core.IsBoolExpr:
		operand, err := bc.visitExpr(scope, e.Expr, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		return exprResult{Sources: operand.Sources, Kind: ExprComputed, Confidence: operand.Confidence, Text: operand.Text + " IS BOOL"}, nil

	case *core.LikeExpr:
		operand, err := bc.visitExpr(scope, e.Expr, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		pat, err := bc.visitExpr(scope, e.Pattern, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		sources, conf := combine(operand, pat)
		return exprResult{Sources: sources, Kind: ExprComputed, Confidence: conf, Text: operand.Text + " LIKE " + pat.Text}, nil

	case *core.ParenExpr:
		inner, err := bc.visitExpr(scope, e.Expr, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		inner.Text = "(" + inner.Text + ")"
		return inner, nil

	case *core.SubqueryExpr:
		res, err := bc.scalarSubqueryResult(scope, e.Select, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		// Subqueries are function-like sources for the enclosing
		// projection.
		res.Kind = ExprFunction
		res.Text = "(SELECT ...)"
		return res, nil

	case *core.ExistsExpr:
		res, err := bc.scalarSubqueryResult(scope, e.Select, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		res.Kind = ExprFunction
		res.Text = "EXISTS (SELECT ...)"
		return res, nil

	case *core.StarExpr:
		refs, err := bc.ResolveStar(scope, e.Table, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		text := "*"
		if e.Table != "" {
			text = e.Table + ".*"
		}
		return exprResult{Sources: refs, Kind: ExprDirect, Confidence: 1.0, Text: text}, nil

	default:
		return exprResult{}, NewError(ErrInternal, "unsupported expression node in visitor").WithStatement(stmtIdx)
	}
}

func (bc *buildContext) visitFuncCall(scope *Scope, f *core.FuncCall, stmtIdx int) (exprResult, error) {
	parts := []exprResult{}
	argTexts := make([]string, 0, len(f.Args))
	if f.Star {
		argTexts = append(argTexts, "*")
	}
	for _, a := range f.Args {
		r, err := bc.visitExpr(scope, a, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		parts = append(parts, r)
		argTexts = append(argTexts, r.Text)
	}
	if f.Window != nil {
		for _, p := range f.Window.PartitionBy {
			r, err := bc.visitExpr(scope, p, stmtIdx)
			if err != nil {
				return exprResult{}, err
			}
			parts = append(parts, r)
		}
		for _, o := range f.Window.OrderBy {
			r, err := bc.visitExpr(scope, o.Expr, stmtIdx)
			if err != nil {
				return exprResult{}, err
			}
			parts = append(parts, r)
		}
	}
	if f.Filter != nil {
		r, err := bc.visitExpr(scope, f.Filter, stmtIdx)
		if err != nil {
			return exprResult{}, err
		}
		parts = append(parts, r)
	}

	sources, conf := combine(parts...)
	text := f.Name + "(" + strings.Join(argTexts, ", ") + ")"
	res := exprResult{Sources: sources, Text: text, Confidence: conf, Kind: ExprFunction}

	if f.Window != nil {
		res.Kind = ExprWindow
		return res, nil
	}
	if fn, ok := LookupAggregateFunction(f.Name); ok {
		res.Kind = ExprAggregation
		res.IsAggregate = true
		fnCopy := fn
		res.AggregateFunction = &fnCopy
		if fn == AggCount && len(res.Sources) == 0 {
			if t, ok := firstScopeTable(scope); ok {
				res.Sources = []ColumnRef{NewQualifiedColumnRef(t.Database, t.Schema, t.Table, "*")}
			}
		}
	}
	return res, nil
}

// firstScopeTable returns the first table declared in the nearest
// enclosing scope that has any, the table a COUNT(*)/COUNT(1)
// placeholder source is anchored to.
func firstScopeTable(scope *Scope) (TableRef, bool) {
	for s := scope; s != nil; s = s.Parent {
		if tables := s.OrderedTables(); len(tables) > 0 {
			return tables[0], true
		}
	}
	return TableRef{}, false
}

// scalarSubqueryResult analyzes a subquery used in a scalar expression
// position (`(SELECT max(x) FROM t)`, the RHS of `col IN (SELECT ...)`,
// or an EXISTS/correlated predicate), returning the union of the
// subquery's projected columns' own sources and the minimum confidence
// among them — a scalar subquery's "value" is derived from whatever its
// projected column(s) derive from.
func (bc *buildContext) scalarSubqueryResult(outer *Scope, sel *core.SelectStmt, stmtIdx int) (exprResult, error) {
	cols, err := bc.analyzeCorrelatedSelect(sel, outer, stmtIdx)
	if err != nil {
		return exprResult{}, err
	}
	result := newExprResult()
	var parts []exprResult
	for _, cl := range cols.All() {
		parts = append(parts, exprResult{Sources: cl.Sources, Confidence: cl.Confidence})
	}
	if len(parts) == 0 {
		return result, nil
	}
	sources, conf := combine(parts...)
	result.Sources = sources
	result.Confidence = conf
	return result, nil
}

func mergeSources(lists ...[]ColumnRef) []ColumnRef {
	seen := map[string]bool{}
	var out []ColumnRef
	for _, l := range lists {
		for _, c := range l {
			k := c.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, c)
		}
	}
	return out
}

func literalText(l *core.Literal) string {
	switch l.Type {
	case core.LiteralString:
		return "'" + l.Value + "'"
	case core.LiteralNull:
		return "NULL"
	default:
		return l.Value
	}
}

// generatedColumnName names an unaliased computed SELECT item, position
// 1-based to match how --explain/--trace arguments read naturally.
func generatedColumnName(position int) string {
	return "col_" + strconv.Itoa(position)
}
