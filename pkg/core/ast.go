package core

import "github.com/leapstack-labs/sqllineage/pkg/token"

// Node is the base interface for all AST nodes.
// This provides type safety for parser extension points (spi.ClauseHandler, etc.)
// without requiring pkg/core to import pkg/spi.
type Node interface {
	// Pos returns the position of the first character of the node.
	Pos() token.Position
	// End returns the position of the character immediately after the node.
	End() token.Position
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode() // Marker method to distinguish expressions
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode() // Marker method to distinguish statements
}

// TableRef is a marker interface for table reference nodes (FROM/JOIN sources).
type TableRef interface {
	Node
	tableRefNode() // Marker method to distinguish table references
}

// NodeInfo carries the source span shared by every concrete AST node.
// Embedding it gives a node its Pos()/End() implementation for free; the
// node only has to forward to NodeInfo where Node requires it directly.
type NodeInfo struct {
	Span token.Span
}

// Pos implements Node.
func (n NodeInfo) Pos() token.Position { return n.Span.Start }

// End implements Node.
func (n NodeInfo) End() token.Position { return n.Span.End }
