// Package dialect provides SQL dialect configuration and function classification.
//
// This file contains the parsing hooks that let a dialect extend the FROM
// clause and primary-expression grammar: join types, FROM-item transforms
// (PIVOT-style constructs), and prefix operators. They follow the same
// map-plus-parent-fallback pattern as the clause and infix handlers in
// dialect.go.
package dialect

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/spi"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// FromItemHandler parses a dialect-specific FROM-item suffix construct
// (e.g. PIVOT/UNPIVOT) that transforms an already-parsed table reference.
// Called AFTER the trigger keyword has been consumed.
type FromItemHandler func(p spi.ParserOps, source core.TableRef) (core.TableRef, error)

// JoinTypeDef returns the join definition triggered by t, if this dialect
// (or a parent) registers one.
func (d *Dialect) JoinTypeDef(t token.TokenType) (core.JoinTypeDef, bool) {
	if def, ok := d.joinTypes[t]; ok {
		return def, true
	}
	if d.parent != nil {
		return d.parent.JoinTypeDef(t)
	}
	return core.JoinTypeDef{}, false
}

// FromItemHandler returns the FROM-item transform handler for t, or nil.
func (d *Dialect) FromItemHandler(t token.TokenType) FromItemHandler {
	if h, ok := d.fromItems[t]; ok {
		return h
	}
	if d.parent != nil {
		return d.parent.FromItemHandler(t)
	}
	return nil
}

// PrefixHandler returns the custom prefix-expression handler for t, or nil.
func (d *Dialect) PrefixHandler(t token.TokenType) spi.PrefixHandler {
	if h, ok := d.prefixHandlers[t]; ok {
		return h
	}
	if d.parent != nil {
		return d.parent.PrefixHandler(t)
	}
	return nil
}

// JoinTypes registers join type definitions (toolbox entries like
// ANSIJoinTypes, or dialect-specific additions).
func (b *Builder) JoinTypes(defs ...core.JoinTypeDef) *Builder {
	if b.dialect.joinTypes == nil {
		b.dialect.joinTypes = make(map[token.TokenType]core.JoinTypeDef)
	}
	for _, def := range defs {
		b.dialect.joinTypes[def.Token] = def
	}
	return b
}

// FromItem registers a FROM-item transform handler for a trigger keyword.
func (b *Builder) FromItem(t token.TokenType, handler FromItemHandler) *Builder {
	if b.dialect.fromItems == nil {
		b.dialect.fromItems = make(map[token.TokenType]FromItemHandler)
	}
	b.dialect.fromItems[t] = handler
	return b
}

// AddPrefix registers a custom prefix-expression handler for a token.
func (b *Builder) AddPrefix(t token.TokenType, handler spi.PrefixHandler) *Builder {
	if b.dialect.prefixHandlers == nil {
		b.dialect.prefixHandlers = make(map[token.TokenType]spi.PrefixHandler)
	}
	b.dialect.prefixHandlers[t] = handler
	return b
}

// Clauses registers pre-built clause definitions (StandardSelectClauses,
// or a dialect's own composition) in sequence order.
func (b *Builder) Clauses(defs ...core.ClauseDef) *Builder {
	for _, def := range defs {
		handler, ok := def.Handler.(spi.ClauseHandler)
		if !ok {
			continue
		}
		// spi.ClauseSlot mirrors core.ClauseSlot value for value.
		b.dialect.clauseDefs[def.Token] = ClauseDef{
			Handler:  handler,
			Slot:     spi.ClauseSlot(def.Slot),
			Keywords: def.Keywords,
			Inline:   def.Inline,
		}
		b.dialect.clauseSequence = append(b.dialect.clauseSequence, def.Token)
		recordClause(def.Token, def.Token.String())
	}
	return b
}

// Operators registers operator definitions: precedence, an optional lexer
// symbol, and an optional custom infix handler.
func (b *Builder) Operators(defs ...core.OperatorDef) *Builder {
	for _, def := range defs {
		b.dialect.precedence[def.Token] = def.Precedence
		if def.Symbol != "" {
			b.dialect.symbols[def.Symbol] = def.Token
		}
		if h, ok := def.Handler.(spi.InfixHandler); ok && h != nil {
			b.dialect.infixHandlers[def.Token] = h
		}
	}
	return b
}
