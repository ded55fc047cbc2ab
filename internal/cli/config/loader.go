package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/leapstack-labs/sqllineage/pkg/lineage"
	"github.com/spf13/pflag"
)

// configFileUsed records the path LoadConfig resolved to, for --verbose
// to echo back to the user.
var configFileUsed string

// findConfigFile resolves the config file to load: an explicit path, or
// sqllineage.yaml/.yml in the current directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// LoadConfig builds a Config from defaults, an optional project config
// file, SQLLINEAGE_-prefixed environment variables, and CLI flags, in
// that increasing order of precedence.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"ambiguity_policy":       DefaultAmbiguityPolicy,
		"on_complexity_exceeded": DefaultOnComplexityExceeded,
		"max_nodes":              DefaultMaxNodes,
		"max_expr_depth":         DefaultMaxExprDepth,
		"max_case_branches":      DefaultMaxCaseBranches,
		"max_recursion_fudge":    DefaultMaxRecursionFudge,
		"max_depth":              DefaultMaxDepth,
		"output_format":          DefaultOutputFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load config defaults: %w", err)
	}

	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	if err := k.Load(env.Provider("SQLLINEAGE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "SQLLINEAGE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			switch f.Name {
			case "schema":
				return "schema_file", posflag.FlagVal(flags, f)
			case "format":
				return "output_format", posflag.FlagVal(flags, f)
			default:
				return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
			}
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ApplyDefaults()

	if cfg.SchemaFile != "" && !filepath.IsAbs(cfg.SchemaFile) {
		if abs, err := filepath.Abs(cfg.SchemaFile); err == nil {
			cfg.SchemaFile = abs
		}
	}

	if cfg.Strict {
		cfg.AmbiguityPolicy = "fail"
	}

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file LoadConfig
// resolved to, or "" if none was found.
func GetConfigFileUsed() string {
	return configFileUsed
}

func parsePolicy(s string) lineage.EnforcementPolicy {
	switch strings.ToLower(s) {
	case "fail":
		return lineage.PolicyFail
	case "ignore":
		return lineage.PolicyIgnore
	default:
		return lineage.PolicyWarn
	}
}

// ToLineageConfig translates the CLI-facing Config into the
// pkg/lineage.Config the analysis pipeline actually consumes.
func (c *Config) ToLineageConfig(schema lineage.SchemaProvider) *lineage.Config {
	return &lineage.Config{
		Schema:               schema,
		AmbiguityPolicy:      parsePolicy(c.AmbiguityPolicy),
		ValidateSchema:       c.ValidateSchema,
		ExpandWildcards:      c.ExpandWildcards,
		RequireTablePrefix:   c.RequireTablePrefix,
		OnComplexityExceeded: parsePolicy(c.OnComplexityExceeded),
		Complexity: lineage.ComplexityLimits{
			MaxNodes:        c.MaxNodes,
			MaxDepth:        c.MaxExprDepth,
			MaxCaseBranches: c.MaxCaseBranches,
		},
		MaxRecursionFudge: c.MaxRecursionFudge,
		MaxDepth:          c.MaxDepth,
	}
}
