// Package dialect provides SQL dialect configuration and function classification.
//
// This file contains the star-modifier toolbox: EXCLUDE/REPLACE/RENAME
// handlers a dialect can attach to * and table.* projections via
// Builder.StarModifier.
package dialect

import (
	"fmt"

	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/spi"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Dialect-extension tokens (registered dynamically; dialects that use
// them must also AddKeyword the spelling so the lexer emits them).
var (
	// TokenQualify is the QUALIFY clause keyword (DuckDB, Databricks, etc.).
	TokenQualify = token.Register("QUALIFY")
	// TokenIlike is the case-insensitive LIKE operator keyword.
	TokenIlike = token.Register("ILIKE")
	// TokenExclude is the EXCLUDE star modifier keyword.
	TokenExclude = token.Register("EXCLUDE")
	// TokenReplace is the REPLACE star modifier keyword.
	TokenReplace = token.Register("REPLACE")
	// TokenRename is the RENAME star modifier keyword.
	TokenRename = token.Register("RENAME")
)

// ParseExclude handles * EXCLUDE (col1, col2, ...).
// The EXCLUDE keyword has already been consumed.
func ParseExclude(p spi.ParserOps) (spi.Node, error) {
	if err := p.Expect(token.LPAREN); err != nil {
		return nil, fmt.Errorf("EXCLUDE: %w", err)
	}

	var cols []string
	for {
		name, err := p.ParseIdentifier()
		if err != nil {
			return nil, fmt.Errorf("EXCLUDE: %w", err)
		}
		cols = append(cols, name)

		if !p.Match(token.COMMA) {
			break
		}
	}

	if err := p.Expect(token.RPAREN); err != nil {
		return nil, fmt.Errorf("EXCLUDE: %w", err)
	}

	return &core.ExcludeModifier{Columns: cols}, nil
}

// ParseReplace handles * REPLACE (expr AS col, ...).
// The REPLACE keyword has already been consumed.
func ParseReplace(p spi.ParserOps) (spi.Node, error) {
	if err := p.Expect(token.LPAREN); err != nil {
		return nil, fmt.Errorf("REPLACE: %w", err)
	}

	var items []core.ReplaceItem
	for {
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, fmt.Errorf("REPLACE: %w", err)
		}

		if err := p.Expect(token.AS); err != nil {
			return nil, fmt.Errorf("REPLACE: expected AS after expression: %w", err)
		}

		name, err := p.ParseIdentifier()
		if err != nil {
			return nil, fmt.Errorf("REPLACE: %w", err)
		}

		item := core.ReplaceItem{Alias: name}
		if e, ok := expr.(core.Expr); ok {
			item.Expr = e
		}
		items = append(items, item)

		if !p.Match(token.COMMA) {
			break
		}
	}

	if err := p.Expect(token.RPAREN); err != nil {
		return nil, fmt.Errorf("REPLACE: %w", err)
	}

	return &core.ReplaceModifier{Items: items}, nil
}

// ParseRename handles * RENAME (old AS new, ...).
// The RENAME keyword has already been consumed.
func ParseRename(p spi.ParserOps) (spi.Node, error) {
	if err := p.Expect(token.LPAREN); err != nil {
		return nil, fmt.Errorf("RENAME: %w", err)
	}

	var items []core.RenameItem
	for {
		oldName, err := p.ParseIdentifier()
		if err != nil {
			return nil, fmt.Errorf("RENAME: %w", err)
		}

		if err := p.Expect(token.AS); err != nil {
			return nil, fmt.Errorf("RENAME: expected AS after old column name: %w", err)
		}

		newName, err := p.ParseIdentifier()
		if err != nil {
			return nil, fmt.Errorf("RENAME: %w", err)
		}

		items = append(items, core.RenameItem{OldName: oldName, NewName: newName})

		if !p.Match(token.COMMA) {
			break
		}
	}

	if err := p.Expect(token.RPAREN); err != nil {
		return nil, fmt.Errorf("RENAME: %w", err)
	}

	return &core.RenameModifier{Items: items}, nil
}
