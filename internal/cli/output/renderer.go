// Package output renders lineage analysis results to the CLI's
// pretty/table/json/graph formats: one Renderer, one method per result
// shape, go-pretty for the tabular modes.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/sqllineage/pkg/lineage"
)

// Mode selects how a Renderer formats its output.
type Mode string

// Mode values.
const (
	ModePretty Mode = "pretty"
	ModeJSON   Mode = "json"
	ModeTable  Mode = "table"
	ModeGraph  Mode = "graph"
)

// Renderer writes analysis results to Out in the configured Mode.
type Renderer struct {
	Out     io.Writer
	Mode    Mode
	NoColor bool
}

// NewRenderer builds a Renderer writing to w in mode.
func NewRenderer(w io.Writer, mode Mode) *Renderer {
	return &Renderer{Out: w, Mode: mode}
}

func (r *Renderer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.Out)
	if !r.NoColor {
		t.SetStyle(table.StyleLight)
	} else {
		t.SetStyle(table.StyleDefault)
	}
	return t
}

// RenderListTables prints every registered table (source and derived)
// with its column count, the --list-tables surface.
func (r *Renderer) RenderListTables(reg *lineage.TableRegistry) error {
	if r.Mode == ModeJSON {
		type tableRow struct {
			Name          string `json:"name"`
			Type          string `json:"type"`
			IsSourceTable bool   `json:"is_source_table"`
			ColumnCount   int    `json:"column_count"`
		}
		var rows []tableRow
		for _, td := range reg.AllTables() {
			if td.IsOutputSentinel() {
				continue
			}
			n := 0
			if td.Columns != nil {
				n = td.Columns.Len()
			}
			rows = append(rows, tableRow{Name: td.QualifiedName(), Type: string(td.Type), IsSourceTable: td.IsSourceTable, ColumnCount: n})
		}
		return r.writeJSON(rows)
	}

	t := r.newTable()
	t.AppendHeader(table.Row{"Table", "Type", "Source?", "Columns"})
	for _, td := range reg.AllTables() {
		if td.IsOutputSentinel() {
			continue
		}
		n := 0
		if td.Columns != nil {
			n = td.Columns.Len()
		}
		t.AppendRow(table.Row{td.QualifiedName(), string(td.Type), td.IsSourceTable, n})
	}
	t.Render()
	return nil
}

// RenderTrace prints every upstream path TraceToSource found for a
// target column.
func (r *Renderer) RenderTrace(target lineage.ColumnRef, paths []lineage.LineagePath) error {
	return r.renderPaths("Trace to source", target, paths)
}

// RenderImpact prints the downstream columns derived from a source
// column, grouped by table.
func (r *Renderer) RenderImpact(source lineage.ColumnRef, impacted []lineage.ColumnRef) error {
	byTable := map[string][]string{}
	var tableOrder []string
	for _, c := range impacted {
		tbl := c.TableQualifiedName()
		if _, seen := byTable[tbl]; !seen {
			tableOrder = append(tableOrder, tbl)
		}
		byTable[tbl] = append(byTable[tbl], c.Column)
	}

	if r.Mode == ModeJSON {
		return r.writeJSON(struct {
			Subject  string              `json:"subject"`
			Impacted map[string][]string `json:"impacted"`
		}{Subject: source.QualifiedName(), Impacted: byTable})
	}

	if r.Mode == ModeGraph {
		fmt.Fprintln(r.Out, "digraph impact {")
		fmt.Fprintln(r.Out, "  rankdir=LR;")
		for _, c := range impacted {
			fmt.Fprintf(r.Out, "  %q -> %q;\n", source.QualifiedName(), c.QualifiedName())
		}
		fmt.Fprintln(r.Out, "}")
		return nil
	}

	fmt.Fprintf(r.Out, "Impact analysis: %s\n\n", source.QualifiedName())
	for _, tbl := range tableOrder {
		fmt.Fprintf(r.Out, "  %s:\n", tbl)
		for _, col := range byTable[tbl] {
			fmt.Fprintf(r.Out, "    - %s\n", col)
		}
	}
	if len(impacted) == 0 {
		fmt.Fprintln(r.Out, "  (no downstream columns)")
	}
	return nil
}

func (r *Renderer) renderPaths(title string, subject lineage.ColumnRef, paths []lineage.LineagePath) error {
	if r.Mode == ModeJSON {
		type pathOut struct {
			Columns    []string `json:"columns"`
			Confidence float64  `json:"confidence"`
		}
		out := struct {
			Subject string    `json:"subject"`
			Paths   []pathOut `json:"paths"`
		}{Subject: subject.QualifiedName()}
		for _, p := range paths {
			var cols []string
			for _, n := range p.Nodes {
				cols = append(cols, n.Column.QualifiedName())
			}
			out.Paths = append(out.Paths, pathOut{Columns: cols, Confidence: p.Confidence})
		}
		return r.writeJSON(out)
	}

	if r.Mode == ModeGraph {
		return r.renderPathsGraph(subject, paths)
	}

	fmt.Fprintf(r.Out, "%s: %s\n\n", title, subject.QualifiedName())
	for i, p := range paths {
		names := make([]string, 0, len(p.Nodes))
		for _, n := range p.Nodes {
			names = append(names, n.Column.QualifiedName())
		}
		fmt.Fprintf(r.Out, "  %d. %s  (confidence %.2f)\n", i+1, strings.Join(names, " <- "), p.Confidence)
	}
	if len(paths) == 0 {
		fmt.Fprintln(r.Out, "  (no paths found)")
	}
	return nil
}

func (r *Renderer) renderPathsGraph(subject lineage.ColumnRef, paths []lineage.LineagePath) error {
	fmt.Fprintln(r.Out, "digraph lineage {")
	fmt.Fprintln(r.Out, "  rankdir=LR;")
	seen := map[string]bool{}
	for _, p := range paths {
		for i := 0; i+1 < len(p.Nodes); i++ {
			from := p.Nodes[i].Column.QualifiedName()
			to := p.Nodes[i+1].Column.QualifiedName()
			edge := from + "->" + to
			if seen[edge] {
				continue
			}
			seen[edge] = true
			fmt.Fprintf(r.Out, "  %q -> %q;\n", from, to)
		}
	}
	_ = subject
	fmt.Fprintln(r.Out, "}")
	return nil
}

// RenderExplain prints a column's calculation, the --explain surface.
func (r *Renderer) RenderExplain(exp *lineage.Explanation) error {
	if r.Mode == ModeJSON {
		type explainOut struct {
			Target     string   `json:"target"`
			Expression string   `json:"expression"`
			Kind       string   `json:"expression_kind"`
			Sources    []string `json:"sources"`
			Confidence float64  `json:"confidence"`
			Derivation string   `json:"derivation"`
		}
		out := explainOut{
			Target:     exp.Target.QualifiedName(),
			Expression: exp.Expression,
			Kind:       string(exp.ExprKind),
			Confidence: exp.Confidence,
			Derivation: exp.Text(),
		}
		for _, s := range exp.Sources {
			out.Sources = append(out.Sources, s.QualifiedName())
		}
		return r.writeJSON(out)
	}

	fmt.Fprintf(r.Out, "%s\n", exp.Target.QualifiedName())
	if exp.Expression != "" {
		fmt.Fprintf(r.Out, "  = %s\n", exp.Expression)
	}
	fmt.Fprintf(r.Out, "  kind:       %s\n", exp.ExprKind)
	fmt.Fprintf(r.Out, "  confidence: %.2f\n", exp.Confidence)
	if exp.IsAggregate && exp.AggregateFunction != nil {
		fmt.Fprintf(r.Out, "  aggregate:  %s\n", *exp.AggregateFunction)
	}
	fmt.Fprintln(r.Out, "  sources:")
	for _, s := range exp.Sources {
		fmt.Fprintf(r.Out, "    - %s\n", s.QualifiedName())
	}
	for _, alt := range exp.AlternativeExpressions {
		fmt.Fprintf(r.Out, "  alternative: %s\n", alt)
	}
	fmt.Fprintln(r.Out, "\n  derivation:")
	for _, line := range strings.Split(strings.TrimRight(exp.Text(), "\n"), "\n") {
		fmt.Fprintf(r.Out, "    %s\n", line)
	}
	return nil
}

// RenderWarnings prints the script's collected warnings and a one-line
// severity summary.
func (r *Renderer) RenderWarnings(wc *lineage.WarningCollector) error {
	if r.Mode == ModeJSON {
		return r.writeJSON(struct {
			Warnings []lineage.Warning        `json:"warnings"`
			Summary  map[lineage.Severity]int `json:"summary"`
		}{Warnings: wc.All(), Summary: wc.Summary()})
	}

	for _, w := range wc.All() {
		loc := ""
		if w.Statement >= 0 {
			loc = fmt.Sprintf(" (statement %d)", w.Statement+1)
		}
		fmt.Fprintf(r.Out, "[%s]%s %s\n", strings.ToUpper(string(w.Severity)), loc, w.Message)
	}
	summary := wc.Summary()
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d %s", summary[lineage.Severity(k)], k))
	}
	if len(parts) > 0 {
		fmt.Fprintln(r.Out, strings.Join(parts, ", "))
	}
	return nil
}

// RenderExport writes the full export document to w as indented JSON,
// the shape --export FILE produces regardless of --format.
func RenderExport(w io.Writer, exp lineage.Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exp)
}

func (r *Renderer) writeJSON(v any) error {
	enc := json.NewEncoder(r.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
