package parser

import (
	"github.com/leapstack-labs/sqllineage/pkg/core"
	"github.com/leapstack-labs/sqllineage/pkg/dialect"
)

// Top-level statement dispatch: CREATE/INSERT/DROP/UPDATE/DELETE in addition
// to the [WITH] SELECT that was previously reachable from
// parseStatement. A script is a sequence of these, one per split statement
// from the Script Splitter (see pkg/lineage/splitter.go); each one is parsed
// independently by ParseAnyStatement.
//
// Grammar:
//
//	create_stmt → CREATE [TEMPORARY|TEMP] (TABLE|VIEW) [IF NOT EXISTS] table_name
//	              ( "(" ident ("," ident)* ")" | AS statement )
//	insert_stmt → INSERT INTO table_name ["(" ident ("," ident)* ")"]
//	              ( statement | VALUES "(" ... ")" ("," "(" ... ")")* )
//	drop_stmt   → DROP (TABLE|VIEW) [IF EXISTS] table_name
//	update_stmt → UPDATE table_name SET ... [WHERE expr]
//	delete_stmt → DELETE FROM table_name [WHERE expr]

// ParseAnyStatement parses a single statement of any supported kind and
// returns it as a core.Stmt. Unlike Parse/ParseWithDialect (which only ever
// produce a *core.SelectStmt), this is the entry point the lineage analyzer
// uses to parse each split statement of a script.
func ParseAnyStatement(sql string) (core.Stmt, error) {
	d, _ := dialect.Get("ansi")
	return ParseAnyStatementWithDialect(sql, d)
}

// ParseAnyStatementWithDialect is ParseAnyStatement with an explicit dialect.
func ParseAnyStatementWithDialect(sql string, d *dialect.Dialect) (core.Stmt, error) {
	var p *Parser
	if d != nil {
		p = NewParserWithDialect(sql, d)
	} else {
		p = NewParser(sql)
	}
	stmt := p.parseAnyStatement()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return stmt, nil
}

// parseAnyStatement dispatches on the leading keyword.
func (p *Parser) parseAnyStatement() core.Stmt {
	switch p.token.Type {
	case TOKEN_CREATE:
		return p.parseCreateStatement()
	case TOKEN_INSERT:
		return p.parseInsertStatement()
	case TOKEN_DROP:
		return p.parseDropStatement()
	case TOKEN_UPDATE:
		return p.parseUpdateStatement()
	case TOKEN_DELETE:
		return p.parseDeleteStatement()
	default:
		return p.parseStatement()
	}
}

func (p *Parser) parseCreateStatement() *core.CreateStmt {
	p.expect(TOKEN_CREATE)
	stmt := &core.CreateStmt{Kind: core.CreateKindTable}

	if p.match(TOKEN_TEMPORARY) {
		stmt.Temporary = true
	}

	switch {
	case p.match(TOKEN_VIEW):
		stmt.Kind = core.CreateKindView
	case p.match(TOKEN_TABLE):
		stmt.Kind = core.CreateKindTable
	default:
		p.addError("expected TABLE or VIEW after CREATE")
		return stmt
	}

	if p.match(TOKEN_IF) {
		p.expect(TOKEN_NOT)
		p.expect(TOKEN_EXISTS)
		stmt.IfNotExists = true
	}

	stmt.Target = p.parseTableNameNoAlias()

	if p.check(TOKEN_LPAREN) {
		stmt.ColumnDefs = p.parseCreateColumnDefs()
	}

	if p.match(TOKEN_AS) {
		stmt.Query = p.parseStatement()
	}

	return stmt
}

// parseCreateColumnDefs parses a pure-DDL "(col type, col type, ...)" list,
// a "(col, col, ...)" explicit column list for CREATE TABLE AS, or skips a
// parenthesized block it cannot make sense of. Only column names matter for
// lineage; type tokens are consumed and discarded.
func (p *Parser) parseCreateColumnDefs() []string {
	p.expect(TOKEN_LPAREN)
	var cols []string
	depth := 1
	expectCol := true
	for depth > 0 && !p.check(TOKEN_EOF) {
		switch {
		case p.check(TOKEN_LPAREN):
			depth++
		case p.check(TOKEN_RPAREN):
			depth--
		case depth == 1 && p.check(TOKEN_COMMA):
			expectCol = true
		case depth == 1 && expectCol && p.check(TOKEN_IDENT):
			// Only the first identifier of each entry is the column name;
			// anything after it (type name, constraints) is discarded.
			cols = append(cols, p.token.Literal)
			expectCol = false
		}
		p.nextToken()
	}
	return cols
}

func (p *Parser) parseInsertStatement() *core.InsertStmt {
	p.expect(TOKEN_INSERT)
	p.expect(TOKEN_INTO)
	stmt := &core.InsertStmt{}
	stmt.Target = p.parseTableNameNoAlias()

	if p.check(TOKEN_LPAREN) {
		stmt.Columns = p.parseCreateColumnDefs()
	}

	if p.check(TOKEN_VALUES) {
		stmt.HasValues = true
		p.skipValuesClause()
		return stmt
	}

	stmt.Query = p.parseStatement()
	return stmt
}

// skipValuesClause consumes VALUES (...), (...), ... without interpreting
// it; INSERT ... VALUES carries no lineage (Non-goal: row-level inserts).
func (p *Parser) skipValuesClause() {
	p.expect(TOKEN_VALUES)
	for {
		if !p.check(TOKEN_LPAREN) {
			break
		}
		depth := 0
		for {
			if p.check(TOKEN_LPAREN) {
				depth++
			} else if p.check(TOKEN_RPAREN) {
				depth--
			}
			if p.check(TOKEN_EOF) {
				break
			}
			done := depth == 0
			p.nextToken()
			if done {
				break
			}
		}
		if !p.match(TOKEN_COMMA) {
			break
		}
	}
}

func (p *Parser) parseDropStatement() *core.DropStmt {
	p.expect(TOKEN_DROP)
	stmt := &core.DropStmt{}
	if !p.match(TOKEN_TABLE) {
		p.match(TOKEN_VIEW)
	}
	if p.match(TOKEN_IF) {
		p.expect(TOKEN_EXISTS)
	}
	stmt.Target = p.parseTableNameNoAlias()
	p.skipToEndOfStatement()
	return stmt
}

func (p *Parser) parseUpdateStatement() *core.UpdateStmt {
	p.expect(TOKEN_UPDATE)
	stmt := &core.UpdateStmt{Target: p.parseTableNameNoAlias()}
	p.skipToEndOfStatement()
	return stmt
}

func (p *Parser) parseDeleteStatement() *core.DeleteStmt {
	p.expect(TOKEN_DELETE)
	p.expect(TOKEN_FROM)
	stmt := &core.DeleteStmt{Target: p.parseTableNameNoAlias()}
	p.skipToEndOfStatement()
	return stmt
}

// skipToEndOfStatement discards remaining tokens. Used after statement
// kinds with no lineage-bearing body (DROP/UPDATE/DELETE); the classifier
// only needs target_table from these, per the statement classifier's
// unsupported-kind handling.
func (p *Parser) skipToEndOfStatement() {
	for !p.check(TOKEN_EOF) {
		p.nextToken()
	}
}

// parseTableNameNoAlias parses a possibly-qualified table name without
// consuming a trailing bare-word alias (DDL table targets are never
// aliased the way FROM-clause table refs can be).
func (p *Parser) parseTableNameNoAlias() *core.TableName {
	table := &core.TableName{}
	if !p.check(TOKEN_IDENT) {
		p.addError("expected table name")
		return table
	}
	parts := []string{p.token.Literal}
	p.nextToken()
	for p.match(TOKEN_DOT) {
		if p.check(TOKEN_IDENT) {
			parts = append(parts, p.token.Literal)
			p.nextToken()
		}
	}
	switch len(parts) {
	case 1:
		table.Name = parts[0]
	case 2:
		table.Schema = parts[0]
		table.Name = parts[1]
	case 3:
		table.Catalog = parts[0]
		table.Schema = parts[1]
		table.Name = parts[2]
	}
	return table
}
