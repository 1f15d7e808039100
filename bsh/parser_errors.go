package bsh

import (
	"fmt"
	"strings"
)

// ParseError reports a syntax error at a source position.
type ParseError struct {
	Pos    Position
	Msg    string
	source string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
	if frame := formatCodeFrame(e.source, e.Pos); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

func formatParseErrors(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d parse errors:\n%s", len(errs), strings.Join(parts, "\n"))
}

func (p *parser) errorExpected(tok Token, expected string) {
	p.addParseError(tok.Pos, fmt.Sprintf("expected %s, got %s", expected, tokenLabel(tok)))
}

func (p *parser) errorUnexpected(tok Token) {
	p.addParseError(tok.Pos, fmt.Sprintf("unexpected token %s", tokenLabel(tok)))
}

func (p *parser) addParseError(pos Position, msg string) {
	p.errors = append(p.errors, &ParseError{Pos: pos, Msg: msg, source: p.source})
}

func expectedLabel(tt TokenType) string {
	switch tt {
	case tokenIdent:
		return "identifier"
	case tokenEOF:
		return "end of input"
	}
	return fmt.Sprintf("'%s'", strings.ToLower(string(tt)))
}

func tokenLabel(tok Token) string {
	switch tok.Type {
	case tokenIllegal:
		return tok.Literal
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return fmt.Sprintf("identifier %q", tok.Literal)
	case tokenInt, tokenLong:
		return "integer"
	case tokenDouble, tokenFloat:
		return "number"
	case tokenString:
		return "string"
	case tokenChar:
		return "char"
	default:
		if tok.Literal != "" {
			return fmt.Sprintf("'%s'", tok.Literal)
		}
		return fmt.Sprintf("'%s'", strings.ToLower(string(tok.Type)))
	}
}
