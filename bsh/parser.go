package bsh

import (
	"github.com/hashicorp/go-multierror"
)

type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression
)

type parser struct {
	tokens []Token
	idx    int
	source string

	curToken  Token
	peekToken Token

	errors []error

	prefixFns map[TokenType]prefixParseFn
	infixFns  map[TokenType]infixParseFn
}

// Parse parses source into a Program. All syntax errors found are returned
// together as a *multierror.Error of *ParseError values.
func Parse(source string) (*Program, error) {
	p := newParser(source)
	program := p.ParseProgram()
	if len(p.errors) > 0 {
		var result *multierror.Error
		result = multierror.Append(result, p.errors...)
		result.ErrorFormat = formatParseErrors
		return nil, result
	}
	return program, nil
}

func newParser(input string) *parser {
	p := &parser{tokens: newLexer(input).tokenize(), source: input, idx: -1}

	p.prefixFns = make(map[TokenType]prefixParseFn)
	p.infixFns = make(map[TokenType]infixParseFn)

	p.registerPrefix(tokenIdent, p.parseIdentifier)
	p.registerPrefix(tokenInt, p.parseIntegerLiteral)
	p.registerPrefix(tokenLong, p.parseIntegerLiteral)
	p.registerPrefix(tokenDouble, p.parseFloatLiteral)
	p.registerPrefix(tokenFloat, p.parseFloatLiteral)
	p.registerPrefix(tokenString, p.parseStringLiteral)
	p.registerPrefix(tokenChar, p.parseCharLiteral)
	p.registerPrefix(tokenTrue, p.parseBooleanLiteral)
	p.registerPrefix(tokenFalse, p.parseBooleanLiteral)
	p.registerPrefix(tokenNull, p.parseNullLiteral)
	p.registerPrefix(tokenVoid, p.parseVoidLiteral)
	p.registerPrefix(tokenNew, p.parseNewExpression)
	p.registerPrefix(tokenLParen, p.parseGroupedExpression)
	p.registerPrefix(tokenLBrace, p.parseArrayLiteral)
	p.registerPrefix(tokenBang, p.parsePrefixExpression)
	p.registerPrefix(tokenMinus, p.parsePrefixExpression)
	p.registerPrefix(tokenPlus, p.parsePrefixExpression)
	p.registerPrefix(tokenIncrement, p.parsePrefixIncDec)
	p.registerPrefix(tokenDecrement, p.parsePrefixIncDec)

	for _, tt := range []TokenType{
		tokenPlus, tokenMinus, tokenAsterisk, tokenSlash, tokenPercent,
		tokenEQ, tokenNotEQ, tokenLT, tokenLTE, tokenGT, tokenGTE,
		tokenAnd, tokenOr,
	} {
		p.infixFns[tt] = p.parseInfixExpression
	}
	for _, tt := range []TokenType{
		tokenAssign, tokenPlusAssign, tokenMinusAssign,
		tokenStarAssign, tokenSlashAssign, tokenPercentAssign,
	} {
		p.infixFns[tt] = p.parseAssignExpression
	}
	p.infixFns[tokenQuestion] = p.parseTernaryExpression
	p.infixFns[tokenInstanceof] = p.parseInstanceofExpression
	p.infixFns[tokenIncrement] = p.parsePostfixIncDec
	p.infixFns[tokenDecrement] = p.parsePostfixIncDec
	p.infixFns[tokenLParen] = p.parseCallExpression
	p.infixFns[tokenDot] = p.parseMemberExpression
	p.infixFns[tokenLBracket] = p.parseIndexExpression

	p.nextToken()

	return p
}

func (p *parser) registerPrefix(tt TokenType, fn prefixParseFn) {
	p.prefixFns[tt] = fn
}

func (p *parser) tokenAt(i int) Token {
	if i < 0 {
		i = 0
	}
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *parser) nextToken() {
	if p.idx < len(p.tokens)-1 {
		p.idx++
	}
	p.curToken = p.tokenAt(p.idx)
	p.peekToken = p.tokenAt(p.idx + 1)
}

func (p *parser) ParseProgram() *Program {
	program := &Program{source: p.source}

	for p.curToken.Type != tokenEOF {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

// parseStatement leaves curToken on the last token of the statement.
func (p *parser) parseStatement() Statement {
	switch p.curToken.Type {
	case tokenLBrace:
		return p.parseBlock()
	case tokenSemicolon:
		return &EmptyStmt{position: p.curToken.Pos}
	case tokenIf:
		return p.parseIfStatement()
	case tokenWhile:
		return p.parseWhileStatement()
	case tokenDo:
		return p.parseDoWhileStatement()
	case tokenFor:
		return p.parseForStatement()
	case tokenReturn:
		return p.parseReturnStatement()
	case tokenBreak:
		stmt := &BreakStmt{position: p.curToken.Pos}
		p.expectSemicolon()
		return stmt
	case tokenContinue:
		stmt := &ContinueStmt{position: p.curToken.Pos}
		p.expectSemicolon()
		return stmt
	case tokenThrow:
		return p.parseThrowStatement()
	case tokenTry:
		return p.parseTryStatement()
	case tokenVoid:
		if p.peekToken.Type == tokenIdent && p.tokenAt(p.idx+2).Type == tokenLParen {
			return p.parseMethodDecl(true)
		}
		return p.parseExpressionStatement()
	case tokenIdent:
		if n, ok := p.scanType(p.idx); ok && p.tokenAt(p.idx+n).Type == tokenIdent {
			if p.tokenAt(p.idx+n+1).Type == tokenLParen {
				return p.parseMethodDecl(true)
			}
			return p.parseVarDeclStatement()
		}
		if p.isUntypedMethodDecl() {
			return p.parseMethodDecl(false)
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// scanType reports how many tokens starting at i form a type reference such as
// String, java.util.List or int[][].
func (p *parser) scanType(i int) (int, bool) {
	if p.tokenAt(i).Type != tokenIdent {
		return 0, false
	}
	j := i + 1
	for p.tokenAt(j).Type == tokenDot && p.tokenAt(j+1).Type == tokenIdent {
		j += 2
	}
	for p.tokenAt(j).Type == tokenLBracket && p.tokenAt(j+1).Type == tokenRBracket {
		j += 2
	}
	return j - i, true
}

func (p *parser) isUntypedMethodDecl() bool {
	if p.peekToken.Type != tokenLParen {
		return false
	}
	depth := 0
	for i := p.idx + 1; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case tokenLParen:
			depth++
		case tokenRParen:
			depth--
			if depth == 0 {
				return p.tokenAt(i+1).Type == tokenLBrace
			}
		case tokenEOF, tokenSemicolon:
			return false
		}
	}
	return false
}

// parseType consumes a type reference, leaving curToken on its last token.
func (p *parser) parseType() *TypeRef {
	if p.curToken.Type != tokenIdent {
		p.errorExpected(p.curToken, "type name")
		return nil
	}
	ref := &TypeRef{Name: p.curToken.Literal, position: p.curToken.Pos}
	for p.peekToken.Type == tokenDot && p.tokenAt(p.idx+2).Type == tokenIdent {
		p.nextToken()
		p.nextToken()
		ref.Name += "." + p.curToken.Literal
	}
	for p.peekToken.Type == tokenLBracket && p.tokenAt(p.idx+2).Type == tokenRBracket {
		p.nextToken()
		p.nextToken()
		ref.Dims++
	}
	return ref
}

func (p *parser) expectPeek(tt TokenType) bool {
	if p.peekToken.Type == tt {
		p.nextToken()
		return true
	}
	p.errorExpected(p.peekToken, expectedLabel(tt))
	return false
}

// expectSemicolon tolerates a missing terminator before end of input or a
// closing brace, so interactive input like `x + 1` still parses.
func (p *parser) expectSemicolon() bool {
	switch p.peekToken.Type {
	case tokenSemicolon:
		p.nextToken()
		return true
	case tokenEOF, tokenRBrace:
		return true
	default:
		p.errorExpected(p.peekToken, "';'")
		return false
	}
}

func (p *parser) parseBlock() *BlockStmt {
	block := &BlockStmt{position: p.curToken.Pos}
	p.nextToken()
	for p.curToken.Type != tokenRBrace && p.curToken.Type != tokenEOF {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}
	if p.curToken.Type != tokenRBrace {
		p.errorExpected(p.curToken, "'}'")
	}
	return block
}

func (p *parser) parseExpressionStatement() Statement {
	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}
	p.expectSemicolon()
	return &ExprStmt{Expr: expr, position: expr.Pos()}
}

func (p *parser) parseVarDeclStatement() Statement {
	stmt := p.parseVarDecl()
	if stmt == nil {
		return nil
	}
	p.expectSemicolon()
	return stmt
}

func (p *parser) parseVarDecl() *VarDeclStmt {
	pos := p.curToken.Pos
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	stmt := &VarDeclStmt{Type: typ, position: pos}
	for {
		if !p.expectPeek(tokenIdent) {
			return nil
		}
		decl := VarDeclarator{Name: p.curToken.Literal, position: p.curToken.Pos}
		if p.peekToken.Type == tokenAssign {
			p.nextToken()
			p.nextToken()
			decl.Init = p.parseExpression(precAssign)
			if decl.Init == nil {
				return nil
			}
		}
		stmt.Vars = append(stmt.Vars, decl)
		if p.peekToken.Type != tokenComma {
			return stmt
		}
		p.nextToken()
	}
}

func (p *parser) parseMethodDecl(typed bool) Statement {
	pos := p.curToken.Pos
	decl := &MethodDecl{position: pos}
	if typed {
		if p.curToken.Type == tokenVoid {
			decl.ReturnType = &TypeRef{Name: "void", position: pos}
		} else {
			decl.ReturnType = p.parseType()
		}
		p.nextToken()
	}
	decl.Name = p.curToken.Literal

	if !p.expectPeek(tokenLParen) {
		return nil
	}
	if p.peekToken.Type == tokenRParen {
		p.nextToken()
	} else {
		for {
			p.nextToken()
			param, ok := p.parseParam()
			if !ok {
				return nil
			}
			decl.Params = append(decl.Params, param)
			if p.peekToken.Type != tokenComma {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(tokenRParen) {
			return nil
		}
	}

	if !p.expectPeek(tokenLBrace) {
		return nil
	}
	decl.Body = p.parseBlock()
	return decl
}

// parseParam reads `Type name` or a bare `name`.
func (p *parser) parseParam() (Param, bool) {
	if n, ok := p.scanType(p.idx); ok && p.tokenAt(p.idx+n).Type == tokenIdent {
		typ := p.parseType()
		p.nextToken()
		return Param{Type: typ, Name: p.curToken.Literal}, true
	}
	if p.curToken.Type != tokenIdent {
		p.errorExpected(p.curToken, "parameter name")
		return Param{}, false
	}
	return Param{Name: p.curToken.Literal}, true
}

func (p *parser) parseCondition() Expression {
	if !p.expectPeek(tokenLParen) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(lowestPrec)
	if cond == nil {
		return nil
	}
	if !p.expectPeek(tokenRParen) {
		return nil
	}
	return cond
}

func (p *parser) parseIfStatement() Statement {
	pos := p.curToken.Pos
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}
	p.nextToken()
	stmt := &IfStmt{Condition: cond, Then: p.parseStatement(), position: pos}
	if p.peekToken.Type == tokenElse {
		p.nextToken()
		p.nextToken()
		stmt.Else = p.parseStatement()
	}
	return stmt
}

func (p *parser) parseWhileStatement() Statement {
	pos := p.curToken.Pos
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}
	p.nextToken()
	return &WhileStmt{Condition: cond, Body: p.parseStatement(), position: pos}
}

func (p *parser) parseDoWhileStatement() Statement {
	pos := p.curToken.Pos
	p.nextToken()
	body := p.parseStatement()
	if !p.expectPeek(tokenWhile) {
		return nil
	}
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}
	p.expectSemicolon()
	return &DoWhileStmt{Body: body, Condition: cond, position: pos}
}

func (p *parser) parseForStatement() Statement {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenLParen) {
		return nil
	}

	if n, ok := p.scanType(p.idx + 1); ok && p.tokenAt(p.idx+1+n).Type == tokenIdent && p.tokenAt(p.idx+2+n).Type == tokenColon {
		p.nextToken()
		typ := p.parseType()
		p.nextToken()
		return p.parseForEachRest(pos, typ)
	}
	if p.peekToken.Type == tokenIdent && p.tokenAt(p.idx+2).Type == tokenColon {
		p.nextToken()
		return p.parseForEachRest(pos, nil)
	}

	stmt := &ForStmt{position: pos}
	p.nextToken()
	if p.curToken.Type != tokenSemicolon {
		if n, ok := p.scanType(p.idx); ok && p.tokenAt(p.idx+n).Type == tokenIdent {
			decl := p.parseVarDecl()
			if decl == nil {
				return nil
			}
			stmt.Init = append(stmt.Init, decl)
		} else {
			for {
				expr := p.parseExpression(lowestPrec)
				if expr == nil {
					return nil
				}
				stmt.Init = append(stmt.Init, &ExprStmt{Expr: expr, position: expr.Pos()})
				if p.peekToken.Type != tokenComma {
					break
				}
				p.nextToken()
				p.nextToken()
			}
		}
		if !p.expectPeek(tokenSemicolon) {
			return nil
		}
	}

	p.nextToken()
	if p.curToken.Type != tokenSemicolon {
		stmt.Condition = p.parseExpression(lowestPrec)
		if stmt.Condition == nil {
			return nil
		}
		if !p.expectPeek(tokenSemicolon) {
			return nil
		}
	}

	p.nextToken()
	if p.curToken.Type != tokenRParen {
		for {
			expr := p.parseExpression(lowestPrec)
			if expr == nil {
				return nil
			}
			stmt.Update = append(stmt.Update, expr)
			if p.peekToken.Type != tokenComma {
				break
			}
			p.nextToken()
			p.nextToken()
		}
		if !p.expectPeek(tokenRParen) {
			return nil
		}
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

// parseForEachRest expects curToken on the loop variable name.
func (p *parser) parseForEachRest(pos Position, typ *TypeRef) Statement {
	name := p.curToken.Literal
	if !p.expectPeek(tokenColon) {
		return nil
	}
	p.nextToken()
	iterable := p.parseExpression(lowestPrec)
	if iterable == nil {
		return nil
	}
	if !p.expectPeek(tokenRParen) {
		return nil
	}
	p.nextToken()
	return &ForEachStmt{Type: typ, Name: name, Iterable: iterable, Body: p.parseStatement(), position: pos}
}

func (p *parser) parseReturnStatement() Statement {
	stmt := &ReturnStmt{position: p.curToken.Pos}
	switch p.peekToken.Type {
	case tokenSemicolon, tokenEOF, tokenRBrace:
		p.expectSemicolon()
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(lowestPrec)
	if stmt.Value == nil {
		return nil
	}
	p.expectSemicolon()
	return stmt
}

func (p *parser) parseThrowStatement() Statement {
	pos := p.curToken.Pos
	p.nextToken()
	value := p.parseExpression(lowestPrec)
	if value == nil {
		return nil
	}
	p.expectSemicolon()
	return &ThrowStmt{Value: value, position: pos}
}

func (p *parser) parseTryStatement() Statement {
	stmt := &TryStmt{position: p.curToken.Pos}
	if !p.expectPeek(tokenLBrace) {
		return nil
	}
	stmt.Body = p.parseBlock()

	for p.peekToken.Type == tokenCatch {
		p.nextToken()
		if !p.expectPeek(tokenLParen) {
			return nil
		}
		p.nextToken()
		param, ok := p.parseParam()
		if !ok {
			return nil
		}
		if !p.expectPeek(tokenRParen) || !p.expectPeek(tokenLBrace) {
			return nil
		}
		stmt.Catches = append(stmt.Catches, CatchClause{Type: param.Type, Name: param.Name, Body: p.parseBlock()})
	}

	if p.peekToken.Type == tokenFinally {
		p.nextToken()
		if !p.expectPeek(tokenLBrace) {
			return nil
		}
		stmt.Finally = p.parseBlock()
	}

	if len(stmt.Catches) == 0 && stmt.Finally == nil {
		p.addParseError(stmt.position, "try without catch or finally")
	}
	return stmt
}
