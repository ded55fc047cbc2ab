package parser

import (
	"strings"

	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Soft keywords are identifiers that have special meaning in specific contexts.
// They are not reserved words and can be used as identifiers elsewhere.
// Example: "NAME" is a soft keyword in "UNION BY NAME" but can still be used
// as a column name in "SELECT name FROM users".
const (
	SoftKeywordName  = "NAME"
	SoftKeywordValue = "VALUE" // For future PIVOT/UNPIVOT support
)

// matchSoftKeyword consumes the current token if it is an identifier (or
// the dedicated keyword token) spelling the given soft keyword,
// case-insensitively.
func (p *Parser) matchSoftKeyword(kw string) bool {
	if p.check(TOKEN_IDENT) && strings.EqualFold(p.token.Literal, kw) {
		p.nextToken()
		return true
	}
	if kw == SoftKeywordName && p.check(token.NAME) {
		p.nextToken()
		return true
	}
	return false
}
