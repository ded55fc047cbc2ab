package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/sqllineage/pkg/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		stmt core.Stmt
		want StatementKind
	}{
		{"plain select", &core.SelectStmt{}, StmtSelect},
		{"cte select", &core.SelectStmt{With: &core.WithClause{}}, StmtWithCTE},
		{"create table as", &core.CreateStmt{Kind: core.CreateKindTable, Query: &core.SelectStmt{}}, StmtCreateTableAs},
		{"create temp table", &core.CreateStmt{Kind: core.CreateKindTable, Temporary: true, Query: &core.SelectStmt{}}, StmtCreateTempTable},
		{"create view", &core.CreateStmt{Kind: core.CreateKindView, Query: &core.SelectStmt{}}, StmtCreateView},
		{"create table ddl only", &core.CreateStmt{Kind: core.CreateKindTable}, StmtCreateTable},
		{"insert into select", &core.InsertStmt{Query: &core.SelectStmt{}}, StmtInsertIntoSelect},
		{"insert values", &core.InsertStmt{HasValues: true}, StmtUnsupported},
		{"drop", &core.DropStmt{}, StmtDrop},
		{"update", &core.UpdateStmt{}, StmtUpdate},
		{"delete", &core.DeleteStmt{}, StmtDelete},
		{"nil statement", nil, StmtUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.stmt))
		})
	}
}

func TestStatementKindHasLineage(t *testing.T) {
	assert.True(t, StmtSelect.HasLineage())
	assert.True(t, StmtCreateTableAs.HasLineage())
	assert.False(t, StmtDrop.HasLineage())
	assert.False(t, StmtUpdate.HasLineage())
	assert.False(t, StmtDelete.HasLineage())
	assert.False(t, StmtUnsupported.HasLineage())
	assert.False(t, StmtUnknown.HasLineage())
}
