package core

import "github.com/leapstack-labs/sqllineage/pkg/token"

// ---------- Table Reference Types ----------

// TableName represents a table name reference.
type TableName struct {
	NodeInfo
	Catalog string
	Schema  string
	Name    string
	Alias   string
}

func (*TableName) tableRefNode() {}

// Pos implements Node.
func (t *TableName) Pos() token.Position { return t.NodeInfo.Pos() }

// End implements Node.
func (t *TableName) End() token.Position { return t.NodeInfo.End() }

// DerivedTable represents a subquery in FROM clause.
type DerivedTable struct {
	NodeInfo
	Select *SelectStmt
	Alias  string
}

func (*DerivedTable) tableRefNode() {}

// Pos implements Node.
func (d *DerivedTable) Pos() token.Position { return d.NodeInfo.Pos() }

// End implements Node.
func (d *DerivedTable) End() token.Position { return d.NodeInfo.End() }

// LateralTable represents a LATERAL subquery.
type LateralTable struct {
	NodeInfo
	Select *SelectStmt
	Alias  string
}

func (*LateralTable) tableRefNode() {}

// Pos implements Node.
func (l *LateralTable) Pos() token.Position { return l.NodeInfo.Pos() }

// End implements Node.
func (l *LateralTable) End() token.Position { return l.NodeInfo.End() }

