// Package parser provides SQL parsing; column-level lineage extraction
// lives in pkg/lineage.
// This file provides backward-compatible AST type aliases: the AST itself
// lives in pkg/core so that pkg/dialect and the lineage analyzer can share
// it without importing the parser; these aliases keep parser.Parse's
// result types addressable as parser.* the way callers expect.
package parser

import "github.com/leapstack-labs/sqllineage/pkg/core"

// Statement-level nodes.
type (
	// SelectStmt is an alias for core.SelectStmt.
	SelectStmt = core.SelectStmt
	// SelectBody is an alias for core.SelectBody.
	SelectBody = core.SelectBody
	// SelectCore is an alias for core.SelectCore.
	SelectCore = core.SelectCore
	// SelectItem is an alias for core.SelectItem.
	SelectItem = core.SelectItem
	// WithClause is an alias for core.WithClause.
	WithClause = core.WithClause
	// CTE is an alias for core.CTE.
	CTE = core.CTE
	// FromClause is an alias for core.FromClause.
	FromClause = core.FromClause
	// Join is an alias for core.Join.
	Join = core.Join
	// JoinType is an alias for core.JoinType.
	JoinType = core.JoinType
	// TableName is an alias for core.TableName.
	TableName = core.TableName
	// DerivedTable is an alias for core.DerivedTable.
	DerivedTable = core.DerivedTable
	// LateralTable is an alias for core.LateralTable.
	LateralTable = core.LateralTable
	// OrderByItem is an alias for core.OrderByItem.
	OrderByItem = core.OrderByItem
	// FetchClause is an alias for core.FetchClause.
	FetchClause = core.FetchClause
)

// Expression nodes.
type (
	// Expr is an alias for core.Expr.
	Expr = core.Expr
	// ColumnRef is an alias for core.ColumnRef.
	ColumnRef = core.ColumnRef
	// Literal is an alias for core.Literal.
	Literal = core.Literal
	// LiteralType is an alias for core.LiteralType.
	LiteralType = core.LiteralType
	// BinaryExpr is an alias for core.BinaryExpr.
	BinaryExpr = core.BinaryExpr
	// UnaryExpr is an alias for core.UnaryExpr.
	UnaryExpr = core.UnaryExpr
	// FuncCall is an alias for core.FuncCall.
	FuncCall = core.FuncCall
	// WindowSpec is an alias for core.WindowSpec.
	WindowSpec = core.WindowSpec
	// CaseExpr is an alias for core.CaseExpr.
	CaseExpr = core.CaseExpr
	// WhenClause is an alias for core.WhenClause.
	WhenClause = core.WhenClause
	// CastExpr is an alias for core.CastExpr.
	CastExpr = core.CastExpr
	// InExpr is an alias for core.InExpr.
	InExpr = core.InExpr
	// BetweenExpr is an alias for core.BetweenExpr.
	BetweenExpr = core.BetweenExpr
	// IsNullExpr is an alias for core.IsNullExpr.
	IsNullExpr = core.IsNullExpr
	// LikeExpr is an alias for core.LikeExpr.
	LikeExpr = core.LikeExpr
	// ParenExpr is an alias for core.ParenExpr.
	ParenExpr = core.ParenExpr
	// StarExpr is an alias for core.StarExpr.
	StarExpr = core.StarExpr
	// SubqueryExpr is an alias for core.SubqueryExpr.
	SubqueryExpr = core.SubqueryExpr
	// ExistsExpr is an alias for core.ExistsExpr.
	ExistsExpr = core.ExistsExpr
)

// Literal types.
const (
	LiteralNumber = core.LiteralNumber
	LiteralString = core.LiteralString
	LiteralBool   = core.LiteralBool
	LiteralNull   = core.LiteralNull
)

// Standard join type values, typed for direct comparison against Join.Type.
const (
	JoinInner JoinType = core.JoinInner
	JoinLeft  JoinType = core.JoinLeft
	JoinRight JoinType = core.JoinRight
	JoinFull  JoinType = core.JoinFull
	JoinCross JoinType = core.JoinCross
	JoinComma          = core.JoinComma
)
