package lineage

// EnforcementPolicy controls how the analyzer reacts when a soft limit is
// crossed: ambiguous column resolution or a complexity-guard limit.
type EnforcementPolicy int

// EnforcementPolicy values.
const (
	PolicyFail EnforcementPolicy = iota
	PolicyWarn
	PolicyIgnore
)

func (p EnforcementPolicy) String() string {
	switch p {
	case PolicyFail:
		return "fail"
	case PolicyWarn:
		return "warn"
	case PolicyIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// ComplexityLimits bounds the work the Complexity Guard allows per
// expression it inspects.
type ComplexityLimits struct {
	MaxNodes        int
	MaxDepth        int
	MaxCaseBranches int
}

// DefaultComplexityLimits returns the default guard limits.
func DefaultComplexityLimits() ComplexityLimits {
	return ComplexityLimits{MaxNodes: 1500, MaxDepth: 50, MaxCaseBranches: 100}
}

// Config bundles every policy knob the analysis pipeline consults.
type Config struct {
	Schema SchemaProvider

	// AmbiguityPolicy governs unqualified column references that resolve
	// to more than one in-scope table.
	AmbiguityPolicy EnforcementPolicy
	// RequireTablePrefix forces every unqualified reference to fail,
	// regardless of AmbiguityPolicy (CLI --strict implies this is false but
	// AmbiguityPolicy=Fail; this flag is for a stricter "always qualify"
	// mode some callers want).
	RequireTablePrefix bool

	// ValidateSchema turns on Schema-Provider-backed existence checks for
	// qualified column references.
	ValidateSchema bool
	// ExpandWildcards controls SELECT * / t.* behavior when no schema
	// information is available at all: true fails with SchemaValidation,
	// false silently yields zero sources.
	ExpandWildcards bool

	OnComplexityExceeded EnforcementPolicy
	Complexity           ComplexityLimits

	// MaxRecursionFudge bounds the recursive-CTE fixed-point rounds;
	// default 100.
	MaxRecursionFudge int
	// MaxDepth bounds trace/impact DFS traversal; default 100.
	MaxDepth int
}

// DefaultConfig returns a permissive configuration: ambiguity and
// complexity violations warn rather than fail, wildcard expansion without
// schema information is allowed to proceed with zero sources.
func DefaultConfig() *Config {
	return &Config{
		AmbiguityPolicy:      PolicyWarn,
		ValidateSchema:       false,
		ExpandWildcards:      false,
		OnComplexityExceeded: PolicyWarn,
		Complexity:           DefaultComplexityLimits(),
		MaxRecursionFudge:    100,
		MaxDepth:             100,
	}
}

// Strict returns a copy of cfg with AmbiguityPolicy forced to Fail, the
// behavior CLI --strict requests.
func (cfg Config) Strict() *Config {
	cfg.AmbiguityPolicy = PolicyFail
	return &cfg
}
