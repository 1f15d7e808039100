package bsh

import (
	"maps"
	"slices"
)

// TokenType identifies the lexical category of a token.
type TokenType string

const (
	tokenIllegal TokenType = "ILLEGAL"
	tokenEOF     TokenType = "EOF"

	tokenIdent  TokenType = "IDENT"
	tokenInt    TokenType = "INT"
	tokenLong   TokenType = "LONG"
	tokenDouble TokenType = "DOUBLE"
	tokenFloat  TokenType = "FLOAT"
	tokenString TokenType = "STRING"
	tokenChar   TokenType = "CHAR"

	tokenAssign        TokenType = "="
	tokenPlusAssign    TokenType = "+="
	tokenMinusAssign   TokenType = "-="
	tokenStarAssign    TokenType = "*="
	tokenSlashAssign   TokenType = "/="
	tokenPercentAssign TokenType = "%="
	tokenPlus          TokenType = "+"
	tokenMinus         TokenType = "-"
	tokenIncrement     TokenType = "++"
	tokenDecrement     TokenType = "--"
	tokenBang          TokenType = "!"
	tokenAsterisk      TokenType = "*"
	tokenSlash         TokenType = "/"
	tokenPercent       TokenType = "%"
	tokenLT            TokenType = "<"
	tokenGT            TokenType = ">"
	tokenLTE           TokenType = "<="
	tokenGTE           TokenType = ">="
	tokenEQ            TokenType = "=="
	tokenNotEQ         TokenType = "!="
	tokenAnd           TokenType = "&&"
	tokenOr            TokenType = "||"
	tokenQuestion      TokenType = "?"

	tokenComma     TokenType = ","
	tokenColon     TokenType = ":"
	tokenSemicolon TokenType = ";"
	tokenDot       TokenType = "."
	tokenLParen    TokenType = "("
	tokenRParen    TokenType = ")"
	tokenLBrace    TokenType = "{"
	tokenRBrace    TokenType = "}"
	tokenLBracket  TokenType = "["
	tokenRBracket  TokenType = "]"

	tokenIf         TokenType = "IF"
	tokenElse       TokenType = "ELSE"
	tokenWhile      TokenType = "WHILE"
	tokenDo         TokenType = "DO"
	tokenFor        TokenType = "FOR"
	tokenReturn     TokenType = "RETURN"
	tokenBreak      TokenType = "BREAK"
	tokenContinue   TokenType = "CONTINUE"
	tokenThrow      TokenType = "THROW"
	tokenTry        TokenType = "TRY"
	tokenCatch      TokenType = "CATCH"
	tokenFinally    TokenType = "FINALLY"
	tokenInstanceof TokenType = "INSTANCEOF"
	tokenTrue       TokenType = "TRUE"
	tokenFalse      TokenType = "FALSE"
	tokenNull       TokenType = "NULL"
	tokenVoid       TokenType = "VOID"
	tokenNew        TokenType = "NEW"
)

// Token captures lexical information for the parser.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position identifies a line and column in the source text.
type Position struct {
	Line   int
	Column int
}

var keywords = map[string]TokenType{
	"if":         tokenIf,
	"else":       tokenElse,
	"while":      tokenWhile,
	"do":         tokenDo,
	"for":        tokenFor,
	"return":     tokenReturn,
	"break":      tokenBreak,
	"continue":   tokenContinue,
	"throw":      tokenThrow,
	"try":        tokenTry,
	"catch":      tokenCatch,
	"finally":    tokenFinally,
	"instanceof": tokenInstanceof,
	"true":       tokenTrue,
	"false":      tokenFalse,
	"null":       tokenNull,
	"void":       tokenVoid,
	"new":        tokenNew,
}

func lookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return tokenIdent
}

// Keywords returns the reserved words of the language, for completion.
func Keywords() []string {
	return slices.Sorted(maps.Keys(keywords))
}
