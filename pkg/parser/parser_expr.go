package parser

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/token"
)

// Expression precedence parsing: OR, AND, NOT, comparisons, arithmetic operators.
//
// Precedence (lowest to highest):
//
//  1. OR
//  2. AND
//  3. NOT
//  4. Comparisons: =, !=, <, >, <=, >=, IS [NOT] NULL, IN, BETWEEN, LIKE, ILIKE
//  5. Addition: +, -, ||
//  6. Multiplication: *, /, %
//  7. Unary: -, +
//  8. Primary: literals, column refs, function calls, parenthesized expressions
//
// Grammar:
//
//	expression    → or_expr
//	or_expr       → and_expr (OR and_expr)*
//	and_expr      → not_expr (AND not_expr)*
//	not_expr      → NOT not_expr | comparison
//	comparison    → addition ([NOT] (IN | BETWEEN | LIKE | ILIKE) ... | IS [NOT] NULL | cmp_op addition)?
//	addition      → multiplication (("+"|"-"|"||") multiplication)*
//	multiplication→ unary (("*"|"/"|"%") unary)*
//	unary         → ("-"|"+") unary | primary

// parseExpression parses an expression.
func (p *Parser) parseExpression() core.Expr {
	return p.parseOrExpr()
}

// parseOrExpr parses OR expressions.
func (p *Parser) parseOrExpr() core.Expr {
	left := p.parseAndExpr()

	for p.match(TOKEN_OR) {
		right := p.parseAndExpr()
		left = &core.BinaryExpr{Left: left, Op: token.OR, Right: right}
	}

	return left
}

// parseAndExpr parses AND expressions.
func (p *Parser) parseAndExpr() core.Expr {
	left := p.parseNotExpr()

	for p.match(TOKEN_AND) {
		right := p.parseNotExpr()
		left = &core.BinaryExpr{Left: left, Op: token.AND, Right: right}
	}

	return left
}

// parseNotExpr parses NOT expressions.
func (p *Parser) parseNotExpr() core.Expr {
	if p.check(TOKEN_NOT) && !p.checkPeek(TOKEN_EXISTS) {
		p.nextToken()
		expr := p.parseNotExpr()
		return &core.UnaryExpr{Op: token.NOT, Expr: expr}
	}
	return p.parseComparison()
}

// parseComparison parses comparison expressions.
func (p *Parser) parseComparison() core.Expr {
	left := p.parseAddition()

	// Check for special comparison operators
	var not bool
	if p.match(TOKEN_NOT) {
		not = true
	}

	switch {
	case p.match(TOKEN_IN):
		return p.parseInExpr(left, not)

	case p.match(TOKEN_BETWEEN):
		return p.parseBetweenExpr(left, not)

	case p.match(TOKEN_LIKE):
		return p.parseLikeExpr(left, not, token.LIKE)

	case p.match(TOKEN_ILIKE):
		return p.parseLikeExpr(left, not, TOKEN_ILIKE)
	}

	// If we consumed NOT but didn't find IN/BETWEEN/LIKE, treat it as a
	// prefix NOT on the remaining comparison.
	if not {
		return &core.UnaryExpr{Op: token.NOT, Expr: left}
	}

	// IS NULL / IS NOT NULL / IS [NOT] TRUE|FALSE
	if p.match(TOKEN_IS) {
		isNot := p.match(TOKEN_NOT)
		switch {
		case p.match(TOKEN_NULL):
			return &core.IsNullExpr{Expr: left, Not: isNot}
		case p.match(TOKEN_TRUE):
			return &core.IsBoolExpr{Expr: left, Not: isNot, Value: true}
		case p.match(TOKEN_FALSE):
			return &core.IsBoolExpr{Expr: left, Not: isNot, Value: false}
		default:
			p.addError("expected NULL, TRUE, or FALSE after IS")
		}
	}

	// Standard comparison operators
	switch p.token.Type {
	case TOKEN_EQ, TOKEN_NE, TOKEN_LT, TOKEN_GT, TOKEN_LE, TOKEN_GE:
		op := p.token.Type
		p.nextToken()
		return &core.BinaryExpr{Left: left, Op: op, Right: p.parseAddition()}
	}

	return left
}

// parseInExpr parses an IN expression.
func (p *Parser) parseInExpr(left core.Expr, not bool) core.Expr {
	p.expect(TOKEN_LPAREN)
	in := &core.InExpr{Expr: left, Not: not}

	// Check if it's a subquery
	if p.check(TOKEN_SELECT) || p.check(TOKEN_WITH) {
		in.Query = p.parseStatement()
	} else {
		// List of values
		in.Values = p.parseExpressionList()
	}

	p.expect(TOKEN_RPAREN)
	return in
}

// parseBetweenExpr parses a BETWEEN expression.
func (p *Parser) parseBetweenExpr(left core.Expr, not bool) core.Expr {
	between := &core.BetweenExpr{Expr: left, Not: not}
	between.Low = p.parseAddition()
	p.expect(TOKEN_AND)
	between.High = p.parseAddition()
	return between
}

// parseLikeExpr parses a LIKE (or dialect ILIKE) expression.
func (p *Parser) parseLikeExpr(left core.Expr, not bool, op token.TokenType) core.Expr {
	like := &core.LikeExpr{Expr: left, Not: not, Op: op}
	like.Pattern = p.parseAddition()
	return like
}

// parseAddition parses addition/subtraction/concatenation expressions.
func (p *Parser) parseAddition() core.Expr {
	left := p.parseMultiplication()

	for {
		switch p.token.Type {
		case TOKEN_PLUS, TOKEN_MINUS, TOKEN_DPIPE:
			op := p.token.Type
			p.nextToken()
			left = &core.BinaryExpr{Left: left, Op: op, Right: p.parseMultiplication()}
		default:
			return left
		}
	}
}

// parseMultiplication parses multiplication/division/modulo expressions.
func (p *Parser) parseMultiplication() core.Expr {
	left := p.parseUnary()

	for {
		switch p.token.Type {
		case TOKEN_STAR, TOKEN_SLASH, TOKEN_MOD:
			op := p.token.Type
			p.nextToken()
			left = &core.BinaryExpr{Left: left, Op: op, Right: p.parseUnary()}
		default:
			return left
		}
	}
}

// parseUnary parses unary expressions.
func (p *Parser) parseUnary() core.Expr {
	switch p.token.Type {
	case TOKEN_MINUS, TOKEN_PLUS:
		op := p.token.Type
		p.nextToken()
		return &core.UnaryExpr{Op: op, Expr: p.parseUnary()}
	}
	return p.parsePrimary()
}
