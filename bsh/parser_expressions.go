package bsh

import (
	"strconv"
	"unicode/utf8"
)

const (
	lowestPrec = iota
	precAssign
	precTernary
	precOr
	precAnd
	precEquality
	precComparison
	precSum
	precProduct
	precPrefix
	precPostfix
	precCall
)

var precedences = map[TokenType]int{
	tokenAssign:        precAssign,
	tokenPlusAssign:    precAssign,
	tokenMinusAssign:   precAssign,
	tokenStarAssign:    precAssign,
	tokenSlashAssign:   precAssign,
	tokenPercentAssign: precAssign,
	tokenQuestion:      precTernary,
	tokenOr:            precOr,
	tokenAnd:           precAnd,
	tokenEQ:            precEquality,
	tokenNotEQ:         precEquality,
	tokenLT:            precComparison,
	tokenLTE:           precComparison,
	tokenGT:            precComparison,
	tokenGTE:           precComparison,
	tokenInstanceof:    precComparison,
	tokenPlus:          precSum,
	tokenMinus:         precSum,
	tokenSlash:         precProduct,
	tokenAsterisk:      precProduct,
	tokenPercent:       precProduct,
	tokenIncrement:     precPostfix,
	tokenDecrement:     precPostfix,
	tokenLParen:        precCall,
	tokenDot:           precCall,
	tokenLBracket:      precCall,
}

// castTypes are the type names accepted in a parenthesized cast.
var castTypes = map[string]bool{
	"int": true, "long": true, "double": true, "float": true,
	"boolean": true, "char": true, "byte": true, "short": true,
	"String": true, "Object": true,
}

func isAssignable(expr Expression) bool {
	switch expr.(type) {
	case *Identifier, *MemberExpr, *IndexExpr:
		return true
	default:
		return false
	}
}

func (p *parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

func (p *parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

func (p *parser) parseExpression(precedence int) Expression {
	prefix := p.prefixFns[p.curToken.Type]
	if prefix == nil {
		p.errorUnexpected(p.curToken)
		return nil
	}

	left := prefix()
	if left == nil {
		return nil
	}

	for p.peekToken.Type != tokenEOF && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil {
			return nil
		}
	}

	return left
}

func (p *parser) parseIdentifier() Expression {
	return &Identifier{Name: p.curToken.Literal, position: p.curToken.Pos}
}

func (p *parser) parseIntegerLiteral() Expression {
	value, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.addParseError(p.curToken.Pos, "invalid integer literal")
		return nil
	}
	return &IntegerLiteral{Value: value, Long: p.curToken.Type == tokenLong, position: p.curToken.Pos}
}

func (p *parser) parseFloatLiteral() Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addParseError(p.curToken.Pos, "invalid floating point literal")
		return nil
	}
	return &FloatLiteral{Value: value, Single: p.curToken.Type == tokenFloat, position: p.curToken.Pos}
}

func (p *parser) parseStringLiteral() Expression {
	return &StringLiteral{Value: p.curToken.Literal, position: p.curToken.Pos}
}

func (p *parser) parseCharLiteral() Expression {
	r, _ := utf8.DecodeRuneInString(p.curToken.Literal)
	return &CharLiteral{Value: r, position: p.curToken.Pos}
}

func (p *parser) parseBooleanLiteral() Expression {
	return &BoolLiteral{Value: p.curToken.Type == tokenTrue, position: p.curToken.Pos}
}

func (p *parser) parseNullLiteral() Expression {
	return &NullLiteral{position: p.curToken.Pos}
}

func (p *parser) parseVoidLiteral() Expression {
	return &VoidLiteral{position: p.curToken.Pos}
}

func (p *parser) parseGroupedExpression() Expression {
	pos := p.curToken.Pos
	if cast := p.tryParseCast(pos); cast != nil {
		return cast
	}
	p.nextToken()
	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(tokenRParen) {
		return nil
	}
	return expr
}

// tryParseCast recognizes `(type) operand` for the built-in type names.
func (p *parser) tryParseCast(pos Position) Expression {
	n, ok := p.scanType(p.idx + 1)
	if !ok || !castTypes[p.peekToken.Literal] {
		return nil
	}
	if p.tokenAt(p.idx+1+n).Type != tokenRParen {
		return nil
	}
	next := p.tokenAt(p.idx + 2 + n).Type
	switch next {
	case tokenIdent, tokenInt, tokenLong, tokenDouble, tokenFloat, tokenString,
		tokenChar, tokenTrue, tokenFalse, tokenNull, tokenNew, tokenLParen, tokenBang:
	case tokenMinus, tokenPlus:
		if p.peekToken.Literal == "String" || p.peekToken.Literal == "Object" {
			return nil
		}
	default:
		return nil
	}
	p.nextToken()
	typ := p.parseType()
	p.nextToken()
	p.nextToken()
	value := p.parseExpression(precPrefix)
	if value == nil {
		return nil
	}
	return &CastExpr{Type: typ, Value: value, position: pos}
}

func (p *parser) parseArrayLiteral() Expression {
	pos := p.curToken.Pos
	elements := []Expression{}

	if p.peekToken.Type == tokenRBrace {
		p.nextToken()
		return &ArrayLiteral{Elements: elements, position: pos}
	}

	for {
		p.nextToken()
		el := p.parseExpression(precAssign)
		if el == nil {
			return nil
		}
		elements = append(elements, el)
		if p.peekToken.Type != tokenComma {
			break
		}
		p.nextToken()
		if p.peekToken.Type == tokenRBrace {
			break
		}
	}

	if !p.expectPeek(tokenRBrace) {
		return nil
	}
	return &ArrayLiteral{Elements: elements, position: pos}
}

func (p *parser) parsePrefixExpression() Expression {
	pos := p.curToken.Pos
	operator := p.curToken.Type
	p.nextToken()
	right := p.parseExpression(precPrefix)
	if right == nil {
		return nil
	}
	return &UnaryExpr{Operator: operator, Right: right, position: pos}
}

func (p *parser) parsePrefixIncDec() Expression {
	pos := p.curToken.Pos
	operator := p.curToken.Type
	p.nextToken()
	target := p.parseExpression(precPrefix)
	if target == nil {
		return nil
	}
	if !isAssignable(target) {
		p.addParseError(pos, "invalid operand for "+string(operator))
		return nil
	}
	return &IncDecExpr{Target: target, Operator: operator, Prefix: true, position: pos}
}

func (p *parser) parsePostfixIncDec(left Expression) Expression {
	if !isAssignable(left) {
		p.addParseError(p.curToken.Pos, "invalid operand for "+string(p.curToken.Type))
		return nil
	}
	return &IncDecExpr{Target: left, Operator: p.curToken.Type, position: left.Pos()}
}

func (p *parser) parseInfixExpression(left Expression) Expression {
	pos := p.curToken.Pos
	operator := p.curToken.Type
	prec := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	return &BinaryExpr{Left: left, Operator: operator, Right: right, position: pos}
}

func (p *parser) parseAssignExpression(left Expression) Expression {
	pos := p.curToken.Pos
	if !isAssignable(left) {
		p.addParseError(pos, "invalid assignment target")
		return nil
	}
	operator := p.curToken.Type
	p.nextToken()
	// right-associative: a = b = c
	value := p.parseExpression(precAssign - 1)
	if value == nil {
		return nil
	}
	return &AssignExpr{Target: left, Operator: operator, Value: value, position: left.Pos()}
}

func (p *parser) parseTernaryExpression(cond Expression) Expression {
	pos := p.curToken.Pos
	p.nextToken()
	then := p.parseExpression(lowestPrec)
	if then == nil {
		return nil
	}
	if !p.expectPeek(tokenColon) {
		return nil
	}
	p.nextToken()
	otherwise := p.parseExpression(precTernary - 1)
	if otherwise == nil {
		return nil
	}
	return &TernaryExpr{Condition: cond, Then: then, Else: otherwise, position: pos}
}

func (p *parser) parseInstanceofExpression(left Expression) Expression {
	pos := p.curToken.Pos
	p.nextToken()
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	return &InstanceofExpr{Left: left, Type: typ, position: pos}
}

func (p *parser) parseCallExpression(callee Expression) Expression {
	pos := p.curToken.Pos
	args := []Expression{}

	if p.peekToken.Type == tokenRParen {
		p.nextToken()
		return &CallExpr{Callee: callee, Args: args, position: pos}
	}

	for {
		p.nextToken()
		arg := p.parseExpression(lowestPrec)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if p.peekToken.Type != tokenComma {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(tokenRParen) {
		return nil
	}
	return &CallExpr{Callee: callee, Args: args, position: pos}
}

func (p *parser) parseMemberExpression(object Expression) Expression {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	return &MemberExpr{Object: object, Property: p.curToken.Literal, position: pos}
}

func (p *parser) parseIndexExpression(object Expression) Expression {
	pos := p.curToken.Pos
	p.nextToken()
	index := p.parseExpression(lowestPrec)
	if index == nil {
		return nil
	}
	if !p.expectPeek(tokenRBracket) {
		return nil
	}
	return &IndexExpr{Object: object, Index: index, position: pos}
}

func (p *parser) parseNewExpression() Expression {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent) {
		return nil
	}
	ref := &TypeRef{Name: p.curToken.Literal, position: p.curToken.Pos}
	for p.peekToken.Type == tokenDot && p.tokenAt(p.idx+2).Type == tokenIdent {
		p.nextToken()
		p.nextToken()
		ref.Name += "." + p.curToken.Literal
	}

	switch p.peekToken.Type {
	case tokenLParen:
		p.nextToken()
		call := p.parseCallExpression(nil)
		if call == nil {
			return nil
		}
		return &NewExpr{Type: ref, Args: call.(*CallExpr).Args, position: pos}
	case tokenLBracket:
	default:
		p.errorExpected(p.peekToken, "'(' or '['")
		return nil
	}

	expr := &NewExpr{Type: ref, position: pos}
	for p.peekToken.Type == tokenLBracket {
		p.nextToken()
		ref.Dims++
		if p.peekToken.Type == tokenRBracket {
			p.nextToken()
			continue
		}
		if len(expr.Sizes) < ref.Dims-1 {
			p.addParseError(p.curToken.Pos, "array dimension missing")
			return nil
		}
		p.nextToken()
		size := p.parseExpression(lowestPrec)
		if size == nil || !p.expectPeek(tokenRBracket) {
			return nil
		}
		expr.Sizes = append(expr.Sizes, size)
	}

	if len(expr.Sizes) > 0 {
		return expr
	}
	if !p.expectPeek(tokenLBrace) {
		return nil
	}
	init := p.parseArrayLiteral()
	if init == nil {
		return nil
	}
	expr.Init = init.(*ArrayLiteral)
	return expr
}
