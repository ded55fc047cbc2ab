package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leapstack-labs/sqllineage/pkg/lineage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderImpactGroupsByTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, ModePretty)
	r.NoColor = true

	impacted := []lineage.ColumnRef{
		lineage.NewColumnRef("t1", "amount"),
		lineage.NewColumnRef("t1", "tax"),
		lineage.NewColumnRef("t2", "total"),
	}
	require.NoError(t, r.RenderImpact(lineage.NewColumnRef("orders", "amount"), impacted))

	out := buf.String()
	assert.Contains(t, out, "orders.amount")
	assert.Contains(t, out, "t1:")
	assert.Contains(t, out, "t2:")
	assert.Less(t, strings.Index(out, "t1:"), strings.Index(out, "t2:"), "tables keep first-seen order")
}

func TestRenderImpactJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, ModeJSON)

	impacted := []lineage.ColumnRef{lineage.NewColumnRef("t1", "amount")}
	require.NoError(t, r.RenderImpact(lineage.NewColumnRef("orders", "amount"), impacted))

	var doc struct {
		Subject  string              `json:"subject"`
		Impacted map[string][]string `json:"impacted"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "orders.amount", doc.Subject)
	assert.Equal(t, []string{"amount"}, doc.Impacted["t1"])
}

func TestRenderTracePrettyListsPaths(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, ModePretty)
	r.NoColor = true

	paths := []lineage.LineagePath{{
		Nodes: []lineage.LineageNode{
			{Column: lineage.NewColumnRef("t2", "total")},
			{Column: lineage.NewColumnRef("t1", "amount")},
		},
		Confidence: 0.95,
	}}
	require.NoError(t, r.RenderTrace(lineage.NewColumnRef("t2", "total"), paths))

	out := buf.String()
	assert.Contains(t, out, "t2.total <- t1.amount")
	assert.Contains(t, out, "0.95")
}

func TestRenderWarningsSummaryLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, ModePretty)
	r.NoColor = true

	wc := lineage.NewWarningCollector()
	wc.Addf(lineage.SeverityWarning, 0, "something ambiguous")
	wc.Addf(lineage.SeverityWarning, 1, "another thing")
	require.NoError(t, r.RenderWarnings(wc))

	out := buf.String()
	assert.Contains(t, out, "[WARNING]")
	assert.Contains(t, out, "2 warning")
}
