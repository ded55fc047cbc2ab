package lineage

import "github.com/leapstack-labs/sqllineage/pkg/core"

// StatementKind classifies a parsed statement for dispatch; it is also
// recorded on each StatementReport.
type StatementKind string

// StatementKind values.
const (
	StmtSelect          StatementKind = "SELECT"
	StmtWithCTE         StatementKind = "WITH_CTE"
	StmtCreateTableAs   StatementKind = "CREATE_TABLE_AS"
	StmtCreateTempTable StatementKind = "CREATE_TEMP_TABLE"
	StmtCreateView      StatementKind = "CREATE_VIEW"
	StmtCreateTable     StatementKind = "CREATE_TABLE"
	StmtInsertIntoSelect StatementKind = "INSERT_INTO_SELECT"
	StmtDrop            StatementKind = "DROP"
	StmtUpdate          StatementKind = "UPDATE"
	StmtDelete          StatementKind = "DELETE"
	StmtUnsupported     StatementKind = "UNSUPPORTED"
	StmtUnknown         StatementKind = "UNKNOWN"
)

// Classify determines a parsed statement's StatementKind. The
// classification drives which per-statement analyzer runs; DROP/UPDATE/
// DELETE classify successfully but carry no lineage.
func Classify(stmt core.Stmt) StatementKind {
	switch s := stmt.(type) {
	case *core.SelectStmt:
		if s.With != nil {
			return StmtWithCTE
		}
		return StmtSelect
	case *core.CreateStmt:
		switch {
		case s.Kind == core.CreateKindView:
			return StmtCreateView
		case s.Query != nil && s.Temporary:
			return StmtCreateTempTable
		case s.Query != nil:
			return StmtCreateTableAs
		default:
			return StmtCreateTable
		}
	case *core.InsertStmt:
		if s.Query == nil {
			// INSERT ... VALUES carries no query to analyze.
			return StmtUnsupported
		}
		return StmtInsertIntoSelect
	case *core.DropStmt:
		return StmtDrop
	case *core.UpdateStmt:
		return StmtUpdate
	case *core.DeleteStmt:
		return StmtDelete
	default:
		return StmtUnknown
	}
}

// HasLineage reports whether a statement kind ever produces column
// lineage. The Script Analyzer's dispatch does not call it; it switches
// on the kinds directly.
func (k StatementKind) HasLineage() bool {
	switch k {
	case StmtDrop, StmtUpdate, StmtDelete, StmtUnsupported, StmtUnknown:
		return false
	default:
		return true
	}
}
