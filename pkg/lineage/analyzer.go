package lineage

import (
	"github.com/google/uuid"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/parser"
)

// StatementReport is the Script Analyzer's per-statement record: what it
// parsed to, how it classified, what table (if any) it affected, and
// any error that stopped that one statement's analysis. A statement whose
// analysis fails does not abort the rest of the script.
type StatementReport struct {
	Index int
	Text  string
	Kind  StatementKind
	Table *TableDefinition
	Err   error
}

// ScriptResult is the Script Analyzer's (C11) output: the fully
// populated Table Registry, every warning collected along the way, and
// a per-statement audit trail.
type ScriptResult struct {
	// RunID uniquely identifies this AnalyzeScript call, so a CLI
	// invocation's stdout/stderr, its --export JSON, and any warnings
	// logged elsewhere can be correlated back to the same run.
	RunID      string
	Registry   *TableRegistry
	Warnings   *WarningCollector
	Statements []StatementReport
}

// AnalyzeScript splits, parses, classifies, and analyzes every statement
// in script, building up a shared TableRegistry. A script with no
// statements at all is an EmptyScript error, and a statement that fails
// to parse is a ParseFailure error that stops the whole analysis. A
// statement that parses but fails analysis is recorded on its
// StatementReport and does not prevent the rest of the script from being
// analyzed.
func AnalyzeScript(script string, cfg *Config) (*ScriptResult, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	raws := SplitScript(script)
	if len(raws) == 0 {
		return nil, NewError(ErrEmptyScript, "script contains no statements")
	}

	wc := NewWarningCollector()
	reg := NewTableRegistry(wc)
	bc := &buildContext{Registry: reg, Warnings: wc, Config: cfg}
	result := &ScriptResult{RunID: uuid.NewString(), Registry: reg, Warnings: wc}

	for idx, raw := range raws {
		reg.BeginStatement()
		report := StatementReport{Index: idx, Text: raw.Text}
		stmt, perr := parser.ParseAnyStatement(raw.Text)
		if perr != nil {
			return nil, NewError(ErrParseFailure, perr.Error()).WithStatement(idx)
		}

		kind := Classify(stmt)
		report.Kind = kind
		outcome, aerr := bc.dispatch(stmt, kind, idx)
		if aerr != nil {
			report.Err = aerr
			wc.Addf(SeverityError, idx, aerr.Error())
		} else if outcome != nil {
			report.Table = outcome.Table
		}
		result.Statements = append(result.Statements, report)
	}

	return result, nil
}

func (bc *buildContext) dispatch(stmt core.Stmt, kind StatementKind, stmtIdx int) (*StatementOutcome, error) {
	switch kind {
	case StmtSelect, StmtWithCTE:
		return bc.analyzeBareSelect(stmt.(*core.SelectStmt), stmtIdx)
	case StmtCreateTableAs, StmtCreateTempTable, StmtCreateView, StmtCreateTable:
		return bc.analyzeCreateStatement(stmt.(*core.CreateStmt), stmtIdx)
	case StmtInsertIntoSelect:
		return bc.analyzeInsertStatement(stmt.(*core.InsertStmt), stmtIdx)
	case StmtDrop, StmtUpdate, StmtDelete, StmtUnsupported:
		// Recognized but lineage-free; recorded and skipped.
		if bc.Warnings != nil {
			bc.Warnings.Addf(SeverityInfo, stmtIdx, "statement kind "+string(kind)+" carries no lineage; skipped")
		}
		return &StatementOutcome{Kind: kind}, nil
	default:
		return nil, NewError(ErrIncorrectStatementType, "statement kind carries no lineage").WithStatement(stmtIdx)
	}
}
