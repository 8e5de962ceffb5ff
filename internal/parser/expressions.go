package parser

import (
	"github.com/avalon-lang/avalon/internal/ast"
	"github.com/avalon-lang/avalon/internal/token"
)

func (p *Parser) parseExpr() (ast.Expression, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expression, error) {
	left, err := p.parseMatch()
	if err != nil {
		return nil, err
	}
	if p.at(token.ASSIGN) {
		p.advance()
		right, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Base: ast.NewBase(left.GetToken()), Target: left, Value: right}, nil
	}
	return left, nil
}

func (p *Parser) parseMatch() (ast.Expression, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.at(token.MATCH_OP) {
		p.advance()
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		return &ast.Match{Base: ast.NewBase(left.GetToken()), Value: left, Pattern: pat}, nil
	}
	return left, nil
}

// binaryLevel parses a left-associative chain of operators, one
// precedence level, delegating to next for operands.
func (p *Parser) binaryLevel(next func() (ast.Expression, error), ops ...token.Kind) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, k := range ops {
			if p.at(k) {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
		opTok := p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Base: ast.NewBase(opTok), Op: string(opTok.Kind), Left: left, Right: right}
	}
}

func (p *Parser) parseLogicalOr() (ast.Expression, error) {
	return p.binaryLevel(p.parseLogicalAnd, token.OR)
}
func (p *Parser) parseLogicalAnd() (ast.Expression, error) {
	return p.binaryLevel(p.parseEquality, token.AND)
}
func (p *Parser) parseEquality() (ast.Expression, error) {
	return p.binaryLevel(p.parseRelational, token.EQ, token.NOT_EQ, token.IS, token.IS_NOT)
}
func (p *Parser) parseRelational() (ast.Expression, error) {
	return p.binaryLevel(p.parseBitOr, token.LT, token.GT, token.LTE, token.GTE)
}
func (p *Parser) parseBitOr() (ast.Expression, error) {
	return p.binaryLevel(p.parseBitXor, token.BOR)
}
func (p *Parser) parseBitXor() (ast.Expression, error) {
	return p.binaryLevel(p.parseBitAnd, token.BXOR)
}
func (p *Parser) parseBitAnd() (ast.Expression, error) {
	return p.binaryLevel(p.parseShift, token.BAND)
}
func (p *Parser) parseShift() (ast.Expression, error) {
	return p.binaryLevel(p.parseAdditive, token.SHL, token.SHR)
}
func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.binaryLevel(p.parseMultiplicative, token.PLUS, token.MINUS)
}
func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.binaryLevel(p.parseUnary, token.STAR, token.SLASH, token.PERCENT)
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.cur().Kind {
	case token.NOT, token.MINUS, token.BNOT:
		opTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Base: ast.NewBase(opTok), Op: string(opTok.Kind), Operand: operand}, nil
	case token.REF:
		kw := p.advance()
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Reference{Base: ast.NewBase(kw), Value: v}, nil
	case token.DREF:
		kw := p.advance()
		v, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Dereference{Base: ast.NewBase(kw), Value: v}, nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.DOT:
			p.advance()
			name, err := p.expect(token.IDENT_LOWER)
			if err != nil {
				return nil, err
			}
			left = &ast.Dot{Base: ast.NewBase(name), Left: left, Name: name.Lexeme}
		case token.LBRACKET:
			p.advance()
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			left = &ast.Subscript{Base: ast.NewBase(left.GetToken()), Container: left, Key: key}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	t := p.cur()
	switch t.Kind {
	case token.INT:
		p.advance()
		return &ast.Literal{Base: ast.NewBase(t), Category: ast.LitInt, Raw: t.Lexeme}, nil
	case token.FLOAT:
		p.advance()
		return &ast.Literal{Base: ast.NewBase(t), Category: ast.LitFloat, Raw: t.Lexeme}, nil
	case token.DECIMAL:
		p.advance()
		return &ast.Literal{Base: ast.NewBase(t), Category: ast.LitDecimal, Raw: t.Lexeme}, nil
	case token.STRING:
		p.advance()
		return &ast.Literal{Base: ast.NewBase(t), Category: ast.LitString, Raw: t.Lexeme}, nil
	case token.BITSTRING:
		p.advance()
		bits := bitsOf(t.Lexeme)
		return &ast.Literal{Base: ast.NewBase(t), Category: ast.LitBitString, Raw: t.Lexeme, Bits: bits, Width: len(bits)}, nil
	case token.QUBITSTRING:
		p.advance()
		bits := bitsOf(t.Lexeme)
		return &ast.Literal{Base: ast.NewBase(t), Category: ast.LitQubitString, Raw: t.Lexeme, Bits: bits, Width: len(bits)}, nil
	case token.UNDERSCORE:
		p.advance()
		return &ast.Underscore{Base: ast.NewBase(t)}, nil
	case token.IDENT_LOWER, token.IDENT_UPPER:
		p.advance()
		if p.at(token.LPAREN) {
			return p.parseCallArgs(t)
		}
		return &ast.Identifier{Base: ast.NewBase(t), Name: t.Lexeme}, nil
	case token.CAST:
		return p.parseCast(t)
	case token.LPAREN:
		return p.parseParenOrTuple(t)
	case token.LBRACKET:
		return p.parseListLit(t)
	case token.LBRACE:
		return p.parseMapLit(t)
	default:
		return nil, p.errorf("expected an expression, got %s %q", t.Kind, t.Lexeme)
	}
}

func bitsOf(raw string) []bool {
	bits := make([]bool, len(raw))
	for i, c := range raw {
		bits[i] = c == '1'
	}
	return bits
}

func (p *Parser) parseCallArgs(nameTok token.Token) (ast.Expression, error) {
	p.advance() // LPAREN
	call := &ast.Call{Base: ast.NewBase(nameTok), Name: nameTok.Lexeme}
	for !p.at(token.RPAREN) {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, ast.Arg{Value: v})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parseCast(kw token.Token) (ast.Expression, error) {
	p.advance() // CAST
	if _, err := p.expect(token.LT); err != nil {
		return nil, err
	}
	target, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.GT); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	v, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Cast{Base: ast.NewBase(kw), Target: target, Value: v}, nil
}

// parseParenOrTuple parses a grouped sub-expression or a tuple literal.
// A single element with no trailing comma is Grouped; anything else
// (including a single trailing-comma element) is a Tuple.
func (p *Parser) parseParenOrTuple(lp token.Token) (ast.Expression, error) {
	p.advance() // LPAREN
	var elems []ast.TupleElement
	sawComma := false
	for !p.at(token.RPAREN) {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, ast.TupleElement{Value: v})
		if p.at(token.COMMA) {
			sawComma = true
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if len(elems) == 1 && !sawComma {
		return &ast.Grouped{Base: ast.NewBase(lp), Inner: elems[0].Value}, nil
	}
	return &ast.Tuple{Base: ast.NewBase(lp), Elements: elems}, nil
}

func (p *Parser) parseListLit(lb token.Token) (ast.Expression, error) {
	p.advance() // LBRACKET
	lit := &ast.List{Base: ast.NewBase(lb)}
	for !p.at(token.RBRACKET) {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, v)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *Parser) parseMapLit(lb token.Token) (ast.Expression, error) {
	p.advance() // LBRACE
	lit := &ast.MapLit{Base: ast.NewBase(lb)}
	for !p.at(token.RBRACE) {
		k, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		lit.Entries = append(lit.Entries, ast.MapEntry{Key: k, Value: v})
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *Parser) parsePattern() (ast.Pattern, error) {
	t := p.cur()
	switch t.Kind {
	case token.UNDERSCORE:
		p.advance()
		return &ast.UnderscorePattern{Base: ast.NewBase(t)}, nil
	case token.INT:
		p.advance()
		return &ast.LiteralPattern{Base: ast.NewBase(t), Category: ast.LitInt, Raw: t.Lexeme}, nil
	case token.FLOAT:
		p.advance()
		return &ast.LiteralPattern{Base: ast.NewBase(t), Category: ast.LitFloat, Raw: t.Lexeme}, nil
	case token.DECIMAL:
		p.advance()
		return &ast.LiteralPattern{Base: ast.NewBase(t), Category: ast.LitDecimal, Raw: t.Lexeme}, nil
	case token.STRING:
		p.advance()
		return &ast.LiteralPattern{Base: ast.NewBase(t), Category: ast.LitString, Raw: t.Lexeme}, nil
	case token.IDENT_LOWER:
		p.advance()
		if p.at(token.LPAREN) {
			p.advance()
			pat := &ast.CallPattern{Base: ast.NewBase(t), Name: t.Lexeme}
			for !p.at(token.RPAREN) {
				sub, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				pat.Args = append(pat.Args, sub)
				if p.at(token.COMMA) {
					p.advance()
					continue
				}
				break
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			return pat, nil
		}
		return &ast.IdentifierPattern{Base: ast.NewBase(t), Name: t.Lexeme}, nil
	default:
		return nil, p.errorf("expected a pattern, got %s %q", t.Kind, t.Lexeme)
	}
}
