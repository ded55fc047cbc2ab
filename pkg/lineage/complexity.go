package lineage

import "github.com/leapstack-labs/sqllineage/pkg/core"

// complexityStats is the result of walking a single expression tree.
type complexityStats struct {
	Nodes        int
	Depth        int
	CaseBranches int
}

// measureComplexity walks expr counting nodes, maximum nesting depth,
// and CASE branches; every WHEN arm counts toward CaseBranches, nested
// CASEs included.
func measureComplexity(expr core.Expr) complexityStats {
	var s complexityStats
	walkComplexity(expr, 1, &s)
	return s
}

func walkComplexity(expr core.Expr, depth int, s *complexityStats) {
	if expr == nil {
		return
	}
	s.Nodes++
	if depth > s.Depth {
		s.Depth = depth
	}
	switch e := expr.(type) {
	case *core.BinaryExpr:
		walkComplexity(e.Left, depth+1, s)
		walkComplexity(e.Right, depth+1, s)
	case *core.UnaryExpr:
		walkComplexity(e.Expr, depth+1, s)
	case *core.FuncCall:
		for _, a := range e.Args {
			walkComplexity(a, depth+1, s)
		}
		if e.Window != nil {
			for _, p := range e.Window.PartitionBy {
				walkComplexity(p, depth+1, s)
			}
			for _, o := range e.Window.OrderBy {
				walkComplexity(o.Expr, depth+1, s)
			}
		}
		walkComplexity(e.Filter, depth+1, s)
	case *core.CaseExpr:
		walkComplexity(e.Operand, depth+1, s)
		for _, w := range e.Whens {
			s.CaseBranches++
			walkComplexity(w.Condition, depth+1, s)
			walkComplexity(w.Result, depth+1, s)
		}
		walkComplexity(e.Else, depth+1, s)
	case *core.CastExpr:
		walkComplexity(e.Expr, depth+1, s)
	case *core.InExpr:
		walkComplexity(e.Expr, depth+1, s)
		for _, v := range e.Values {
			walkComplexity(v, depth+1, s)
		}
	case *core.BetweenExpr:
		walkComplexity(e.Expr, depth+1, s)
		walkComplexity(e.Low, depth+1, s)
		walkComplexity(e.High, depth+1, s)
	case *core.IsNullExpr:
		walkComplexity(e.Expr, depth+1, s)
	case *core.IsBoolExpr:
		walkComplexity(e.Expr, depth+1, s)
	case *core.LikeExpr:
		walkComplexity(e.Expr, depth+1, s)
		walkComplexity(e.Pattern, depth+1, s)
	case *core.ParenExpr:
		walkComplexity(e.Expr, depth+1, s)
	case *core.ColumnRef, *core.Literal, *core.StarExpr:
		// leaves
	case *core.SubqueryExpr, *core.ExistsExpr:
		// Subquery bodies are measured independently by the statement
		// analyzer that recurses into them; counting them here again
		// would double-count them against the outer expression's limits.
	}
}

// CheckComplexity applies cfg's limits to expr, returning a LineageError
// when the policy is Fail and a limit is exceeded, or recording a
// warning when the policy is Warn. A nil error with no warning means
// either the expression was within limits or the policy is Ignore.
func (bc *buildContext) CheckComplexity(expr core.Expr, stmtIdx int) error {
	stats := measureComplexity(expr)
	lim := bc.Config.Complexity
	var violations []string
	if stats.Nodes > lim.MaxNodes {
		violations = append(violations, "expression node count exceeds limit")
	}
	if stats.Depth > lim.MaxDepth {
		violations = append(violations, "expression nesting depth exceeds limit")
	}
	if stats.CaseBranches > lim.MaxCaseBranches {
		violations = append(violations, "CASE branch count exceeds limit")
	}
	if len(violations) == 0 {
		return nil
	}
	switch bc.Config.OnComplexityExceeded {
	case PolicyFail:
		return NewError(ErrComplexityExceeded, violations[0]).WithStatement(stmtIdx)
	case PolicyWarn:
		if bc.Warnings != nil {
			for _, v := range violations {
				bc.Warnings.Addf(SeverityWarning, stmtIdx, v)
			}
		}
	}
	return nil
}
