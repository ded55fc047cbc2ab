// Package config loads the CLI's configuration: the ambiguity policy,
// complexity limits, default schema file, and output preferences that
// back a `sqllineage` invocation. Defaults, a project config file,
// environment variables, and CLI flags layer in that order.
package config

// Config is the fully resolved configuration for one CLI invocation,
// after defaults, an optional project config file, environment
// variables, and CLI flags have all been layered (flags > env > file >
// defaults).
type Config struct {
	// SchemaFile is the path to a JSON/YAML schema file loaded into a
	// DictSchemaProvider (--schema FILE). Empty means no schema provider.
	SchemaFile string `koanf:"schema_file"`

	// AmbiguityPolicy is "fail", "warn", or "ignore" (lineage.EnforcementPolicy).
	AmbiguityPolicy string `koanf:"ambiguity_policy"`
	// OnComplexityExceeded is "fail", "warn", or "ignore".
	OnComplexityExceeded string `koanf:"on_complexity_exceeded"`

	MaxNodes          int `koanf:"max_nodes"`
	MaxExprDepth      int `koanf:"max_expr_depth"`
	MaxCaseBranches   int `koanf:"max_case_branches"`
	MaxRecursionFudge int `koanf:"max_recursion_fudge"`
	// MaxDepth bounds trace/impact traversal (--max-depth), distinct from
	// MaxExprDepth's expression-nesting bound.
	MaxDepth int `koanf:"max_depth"`

	ValidateSchema     bool `koanf:"validate_schema"`
	ExpandWildcards    bool `koanf:"expand_wildcards"`
	RequireTablePrefix bool `koanf:"require_table_prefix"`

	// OutputFormat is one of "pretty", "json", "table", "graph".
	OutputFormat string `koanf:"output_format"`

	Strict     bool `koanf:"strict"`
	NoWarnings bool `koanf:"no_warnings"`
	NoColor    bool `koanf:"no_color"`
	Verbose    bool `koanf:"verbose"`
}
