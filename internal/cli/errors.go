package cli

import "github.com/leapstack-labs/sqllineage/internal/cli/commands"

// Exit codes, re-exported from internal/cli/commands for
// cmd/sqllineage/main.go.
const (
	ExitOK                 = 0
	ExitAnalysisFailure    = commands.ExitAnalysisFailure
	ExitScriptNotFound     = commands.ExitScriptNotFound
	ExitSchemaFileNotFound = commands.ExitSchemaFileNotFound
)

// ExitCode reports the process exit code an error returned from
// Execute should cause.
func ExitCode(err error) int {
	return commands.Code(err)
}
