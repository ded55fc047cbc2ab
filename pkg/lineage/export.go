package lineage

// ExportedTable is the JSON shape of one table's entry in the export
// document: just enough for a consumer to enumerate what the script
// touched, without repeating the per-column lineage detail already
// carried in the "lineage" edge list below.
type ExportedTable struct {
	Type     string   `json:"type"`
	Columns  []string `json:"columns"`
	IsSource bool     `json:"is_source"`
}

// LineageEdge is one source-to-target dependency edge in the export
// document's "lineage" array.
type LineageEdge struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Expression string `json:"expression,omitempty"`
	Type       string `json:"type"`
}

// Export is the top-level JSON export shape --export FILE writes. RunID
// and Warnings are additive fields that let a consumer correlate an
// export file back to the run that produced it and to its diagnostics,
// without disturbing the core "tables"/"lineage" keys.
type Export struct {
	RunID    string                   `json:"run_id,omitempty"`
	Tables   map[string]ExportedTable `json:"tables"`
	Lineage  []LineageEdge            `json:"lineage"`
	Warnings []Warning                `json:"warnings,omitempty"`
}

// BuildExport renders a ScriptResult into the JSON export shape.
func BuildExport(result *ScriptResult) Export {
	exp := Export{
		RunID:    result.RunID,
		Tables:   map[string]ExportedTable{},
		Warnings: result.Warnings.All(),
	}
	for _, td := range result.Registry.AllTables() {
		if td.IsOutputSentinel() {
			continue
		}
		et := ExportedTable{Type: string(td.Type), IsSource: td.IsSourceTable}
		if td.Columns != nil {
			et.Columns = td.Columns.Names()
			for _, cl := range td.Columns.All() {
				to := td.QualifiedName() + "." + cl.Name
				for _, s := range filterRealRefs(cl.Sources) {
					exp.Lineage = append(exp.Lineage, LineageEdge{
						From:       s.QualifiedName(),
						To:         to,
						Expression: cl.Expression,
						Type:       string(cl.ExprKind),
					})
				}
			}
		}
		exp.Tables[td.QualifiedName()] = et
	}
	return exp
}
