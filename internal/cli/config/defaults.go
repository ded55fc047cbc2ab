package config

// Default configuration values, applied before any config file,
// environment variable, or CLI flag is layered on top.
const (
	DefaultAmbiguityPolicy      = "warn"
	DefaultOnComplexityExceeded = "warn"
	DefaultMaxNodes             = 1500
	DefaultMaxExprDepth         = 50
	DefaultMaxCaseBranches      = 100
	DefaultMaxRecursionFudge    = 100
	DefaultMaxDepth             = 100
	DefaultOutputFormat         = "pretty"
)

// ConfigFileName is the project config file's default name.
const ConfigFileName = "sqllineage.yaml"

// ConfigFileNameAlt is the alternate extension also searched for.
const ConfigFileNameAlt = "sqllineage.yml"

// ApplyDefaults fills in zero-valued fields of c with their defaults.
// Booleans have no "unset" value to detect here; callers that need a
// tri-state flag (e.g. strict) rely on koanf's normal override
// precedence instead of this pass.
func (c *Config) ApplyDefaults() {
	if c.AmbiguityPolicy == "" {
		c.AmbiguityPolicy = DefaultAmbiguityPolicy
	}
	if c.OnComplexityExceeded == "" {
		c.OnComplexityExceeded = DefaultOnComplexityExceeded
	}
	if c.MaxNodes == 0 {
		c.MaxNodes = DefaultMaxNodes
	}
	if c.MaxExprDepth == 0 {
		c.MaxExprDepth = DefaultMaxExprDepth
	}
	if c.MaxCaseBranches == 0 {
		c.MaxCaseBranches = DefaultMaxCaseBranches
	}
	if c.MaxRecursionFudge == 0 {
		c.MaxRecursionFudge = DefaultMaxRecursionFudge
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutputFormat
	}
}
