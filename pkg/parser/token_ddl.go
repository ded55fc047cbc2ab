package parser

import "github.com/leapstack-labs/sqllineage/pkg/token"

// Statement-level keywords needed to drive a script through CREATE/INSERT/
// DROP/UPDATE/DELETE in addition to the bare [WITH] SELECT. Registered
// dynamically the same way dialects register QUALIFY/ILIKE, so no change
// to the builtin token range is needed.
//
//nolint:revive // TOKEN_* names match the existing convention in token.go
var (
	TOKEN_CREATE    = token.Register("create")
	TOKEN_TABLE     = token.Register("table")
	TOKEN_VIEW      = token.Register("view")
	TOKEN_TEMPORARY = token.Register("temporary")
	TOKEN_INSERT    = token.Register("insert")
	TOKEN_INTO      = token.Register("into")
	TOKEN_VALUES    = token.Register("values")
	TOKEN_DROP      = token.Register("drop")
	TOKEN_UPDATE    = token.Register("update")
	TOKEN_DELETE    = token.Register("delete")
	TOKEN_SET       = token.Register("set")
	TOKEN_IF        = token.Register("if")
	TOKEN_SEMICOLON = token.Register("semicolon")
)

// TOKEN_EXISTS is the builtin EXISTS token, aliased here next to the other
// statement keywords parser_primary.go/parser_special.go dispatch on.
//
//nolint:revive // TOKEN_* naming convention
const TOKEN_EXISTS = token.EXISTS

func init() {
	token.RegisterAlias("temp", TOKEN_TEMPORARY)
}
