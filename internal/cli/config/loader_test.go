package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/sqllineage/pkg/lineage"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultAmbiguityPolicy, cfg.AmbiguityPolicy)
	assert.Equal(t, DefaultMaxNodes, cfg.MaxNodes)
	assert.Equal(t, DefaultMaxExprDepth, cfg.MaxExprDepth)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, DefaultOutputFormat, cfg.OutputFormat)
	assert.False(t, cfg.Strict)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqllineage.yaml"),
		[]byte("ambiguity_policy: ignore\nmax_depth: 7\noutput_format: json\n"), 0o644))
	t.Chdir(dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "ignore", cfg.AmbiguityPolicy)
	assert.Equal(t, 7, cfg.MaxDepth)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, ConfigFileName, GetConfigFileUsed())
}

func TestFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqllineage.yaml"), []byte("output_format: json\n"), 0o644))
	t.Chdir(dir)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("format", "", "")
	flags.Bool("strict", false, "")
	require.NoError(t, flags.Parse([]string{"--format", "table", "--strict"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "table", cfg.OutputFormat, "a changed flag wins over the file value")
	assert.True(t, cfg.Strict)
	assert.Equal(t, "fail", cfg.AmbiguityPolicy, "--strict forces the fail policy")
}

func TestExplicitConfigFileMissingFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestToLineageConfig(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	cfg.AmbiguityPolicy = "fail"
	cfg.ValidateSchema = true

	provider := lineage.NewDictSchemaProvider(map[string][]string{"t": {"a"}})
	lcfg := cfg.ToLineageConfig(provider)

	assert.Equal(t, lineage.PolicyFail, lcfg.AmbiguityPolicy)
	assert.True(t, lcfg.ValidateSchema)
	assert.Equal(t, DefaultMaxExprDepth, lcfg.Complexity.MaxDepth)
	assert.Equal(t, DefaultMaxDepth, lcfg.MaxDepth)
	assert.NotNil(t, lcfg.Schema)
}

func TestToLineageConfigWithoutProviderLeavesValidationOff(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	lcfg := cfg.ToLineageConfig(nil)
	assert.False(t, lcfg.ValidateSchema, "providing no schema must not force validation on")
	assert.Nil(t, lcfg.Schema)
}
