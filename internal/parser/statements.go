package parser

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/token"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Kind {
	case token.VAR, token.VAL:
		return p.parseVarDecl(false, false)
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.BREAK:
		t := p.advance()
		return &ast.BreakStatement{Base: ast.NewBase(t)}, nil
	case token.CONTINUE:
		t := p.advance()
		return &ast.ContinueStatement{Base: ast.NewBase(t)}, nil
	case token.PASS:
		t := p.advance()
		return &ast.PassStatement{Base: ast.NewBase(t)}, nil
	case token.RETURN:
		t := p.advance()
		if p.at(token.RBRACE) {
			return &ast.ReturnStatement{Base: ast.NewBase(t)}, nil
		}
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStatement{Base: ast.NewBase(t), Value: v}, nil
	default:
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Base: ast.NewBase(expr.GetToken()), Expr: expr}, nil
	}
}

func (p *Parser) parseIf() (ast.Statement, error) {
	kw := p.advance() // IF
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Base: ast.NewBase(kw), Branches: []ast.IfBranch{{Cond: cond, Body: body}}}
	for p.at(token.ELIF) {
		p.advance()
		c, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Branches = append(stmt.Branches, ast.IfBranch{Cond: c, Body: b})
	}
	if p.at(token.ELSE) {
		p.advance()
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = b
	}
	return stmt, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	kw := p.advance() // WHILE
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Base: ast.NewBase(kw), Cond: cond, Body: body}, nil
}
