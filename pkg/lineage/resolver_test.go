package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolverTestContext(cfg *Config) *buildContext {
	wc := NewWarningCollector()
	reg := NewTableRegistry(wc)
	return &buildContext{Registry: reg, Warnings: wc, Config: cfg}
}

func TestResolveQualifiedFailsOnSchemaContradiction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ValidateSchema = true
	cfg.Schema = NewDictSchemaProvider(map[string][]string{"orders": {"id"}})
	bc := newResolverTestContext(cfg)

	scope := NewScope(nil)
	scope.AddTable(TableRef{Table: "orders", Alias: "o"})

	_, _, err := bc.resolveQualified(scope, "o", "missing", 0)
	require.Error(t, err)
	var lerr *LineageError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ErrSchemaValidation, lerr.Kind)
}

func TestResolveQualifiedSucceedsWhenSchemaConfirms(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ValidateSchema = true
	cfg.Schema = NewDictSchemaProvider(map[string][]string{"orders": {"id"}})
	bc := newResolverTestContext(cfg)

	scope := NewScope(nil)
	scope.AddTable(TableRef{Table: "orders", Alias: "o"})

	refs, conf, err := bc.resolveQualified(scope, "o", "id", 0)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "orders", refs[0].Table)
	assert.Equal(t, confQualifiedKnown, conf)
}

func TestResolveSingleTableColumnConfidenceTiers(t *testing.T) {
	t.Run("no schema provider", func(t *testing.T) {
		bc := newResolverTestContext(DefaultConfig())
		scope := NewScope(nil)
		scope.AddTable(TableRef{Table: "orders"})

		refs, conf, err := bc.resolveUnqualified(scope, "amount", 0)
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, "orders", refs[0].Table)
		assert.Equal(t, confUnqualifiedUnique, conf)
	})

	t.Run("schema confirms", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Schema = NewDictSchemaProvider(map[string][]string{"orders": {"amount"}})
		bc := newResolverTestContext(cfg)
		scope := NewScope(nil)
		scope.AddTable(TableRef{Table: "orders"})

		refs, conf, err := bc.resolveUnqualified(scope, "amount", 0)
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, confUnqualifiedSchemaConfirmed, conf)
	})

	t.Run("schema contradicts, validation soft", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ValidateSchema = false
		cfg.Schema = NewDictSchemaProvider(map[string][]string{"orders": {"id"}})
		bc := newResolverTestContext(cfg)
		scope := NewScope(nil)
		scope.AddTable(TableRef{Table: "orders"})

		refs, conf, err := bc.resolveUnqualified(scope, "amount", 0)
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, confSingleTableContradiction, conf)
	})

	t.Run("schema contradicts, validation on fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ValidateSchema = true
		cfg.Schema = NewDictSchemaProvider(map[string][]string{"orders": {"id"}})
		bc := newResolverTestContext(cfg)
		scope := NewScope(nil)
		scope.AddTable(TableRef{Table: "orders"})

		_, _, err := bc.resolveUnqualified(scope, "amount", 0)
		require.Error(t, err)
		var lerr *LineageError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, ErrSchemaValidation, lerr.Kind)
	})
}

func TestResolveUnqualifiedRequireTablePrefixFails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequireTablePrefix = true
	bc := newResolverTestContext(cfg)
	scope := NewScope(nil)
	scope.AddTable(TableRef{Table: "orders"})

	_, _, err := bc.resolveUnqualified(scope, "amount", 0)
	require.Error(t, err)
	var lerr *LineageError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ErrAmbiguousColumn, lerr.Kind)
}

func TestCountStarResolvesToFirstTablePlaceholder(t *testing.T) {
	script := `CREATE TABLE t AS SELECT COUNT(*) AS cnt FROM orders;`
	result, err := AnalyzeScript(script, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, result.Statements[0].Err)

	td, ok := result.Registry.Get("", "", "t")
	require.True(t, ok)
	cl, ok := td.Columns.Get("cnt")
	require.True(t, ok)

	require.Len(t, cl.Sources, 1)
	assert.Equal(t, RefReal, cl.Sources[0].Kind)
	assert.Equal(t, "orders", cl.Sources[0].Table)
	assert.Equal(t, "*", cl.Sources[0].Column)
}

func TestRegisterTableFailsOverSourceTable(t *testing.T) {
	script := `
CREATE TABLE orders AS SELECT amount FROM orders;
`
	result, err := AnalyzeScript(script, DefaultConfig())
	require.NoError(t, err)
	require.Error(t, result.Statements[0].Err)
	var lerr *LineageError
	require.ErrorAs(t, result.Statements[0].Err, &lerr)
	assert.Equal(t, ErrSourceRedefinition, lerr.Kind)
}
