package bsh

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	input string

	offset int
	width  int

	line   int
	column int

	ch rune
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1, column: 0}
	l.readRune()
	return l
}

func (l *lexer) readRune() {
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = 0
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w

	if l.ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}

	l.ch = r
}

func (l *lexer) peekRune() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

// tokenize scans the whole input. The parser needs unbounded lookahead to tell
// declarations from expressions.
func (l *lexer) tokenize() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == tokenEOF {
			return toks
		}
	}
}

func (l *lexer) NextToken() Token {
	if msg := l.skipWhitespaceAndComments(); msg != "" {
		return Token{Type: tokenIllegal, Literal: msg, Pos: Position{Line: l.line, Column: l.column}}
	}

	pos := Position{Line: l.line, Column: l.column}
	tok := Token{Pos: pos}

	switch l.ch {
	case 0:
		tok.Type = tokenEOF
	case '+':
		tok = l.operator(pos, tokenPlus, map[rune]TokenType{'+': tokenIncrement, '=': tokenPlusAssign})
	case '-':
		tok = l.operator(pos, tokenMinus, map[rune]TokenType{'-': tokenDecrement, '=': tokenMinusAssign})
	case '*':
		tok = l.operator(pos, tokenAsterisk, map[rune]TokenType{'=': tokenStarAssign})
	case '/':
		tok = l.operator(pos, tokenSlash, map[rune]TokenType{'=': tokenSlashAssign})
	case '%':
		tok = l.operator(pos, tokenPercent, map[rune]TokenType{'=': tokenPercentAssign})
	case '!':
		tok = l.operator(pos, tokenBang, map[rune]TokenType{'=': tokenNotEQ})
	case '=':
		tok = l.operator(pos, tokenAssign, map[rune]TokenType{'=': tokenEQ})
	case '<':
		tok = l.operator(pos, tokenLT, map[rune]TokenType{'=': tokenLTE})
	case '>':
		tok = l.operator(pos, tokenGT, map[rune]TokenType{'=': tokenGTE})
	case '&':
		tok = l.operator(pos, tokenIllegal, map[rune]TokenType{'&': tokenAnd})
	case '|':
		tok = l.operator(pos, tokenIllegal, map[rune]TokenType{'|': tokenOr})
	case '?', ':', ';', ',', '(', ')', '{', '}', '[', ']':
		tok = Token{Type: TokenType(string(l.ch)), Literal: string(l.ch), Pos: pos}
		l.readRune()
	case '.':
		if unicode.IsDigit(l.peekRune()) {
			return l.readNumber(pos)
		}
		tok = Token{Type: tokenDot, Literal: ".", Pos: pos}
		l.readRune()
	case '"':
		literal, msg := l.readQuoted('"')
		if msg != "" {
			return Token{Type: tokenIllegal, Literal: msg, Pos: pos}
		}
		return Token{Type: tokenString, Literal: literal, Pos: pos}
	case '\'':
		literal, msg := l.readQuoted('\'')
		if msg != "" {
			return Token{Type: tokenIllegal, Literal: msg, Pos: pos}
		}
		// 'abc' is a string in loose mode; a single rune is a char.
		if utf8.RuneCountInString(literal) == 1 {
			return Token{Type: tokenChar, Literal: literal, Pos: pos}
		}
		return Token{Type: tokenString, Literal: literal, Pos: pos}
	default:
		switch {
		case isIdentifierStart(l.ch):
			literal := l.readIdentifier()
			return Token{Type: lookupIdent(literal), Literal: literal, Pos: pos}
		case unicode.IsDigit(l.ch):
			return l.readNumber(pos)
		default:
			tok = Token{Type: tokenIllegal, Literal: string(l.ch), Pos: pos}
			l.readRune()
		}
	}

	return tok
}

// operator consumes the current rune and, when the next rune continues a
// two-character operator, that rune too.
func (l *lexer) operator(pos Position, single TokenType, doubles map[rune]TokenType) Token {
	first := l.ch
	if tt, ok := doubles[l.peekRune()]; ok {
		l.readRune()
		second := l.ch
		l.readRune()
		return Token{Type: tt, Literal: string(first) + string(second), Pos: pos}
	}
	l.readRune()
	return Token{Type: single, Literal: string(first), Pos: pos}
}

func (l *lexer) currentOffset() int {
	return l.offset - l.width
}

func (l *lexer) skipWhitespaceAndComments() string {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' || l.ch == '\f':
			l.readRune()
		case l.ch == '/' && l.peekRune() == '/':
			for l.ch != 0 && l.ch != '\n' {
				l.readRune()
			}
		case l.ch == '/' && l.peekRune() == '*':
			l.readRune()
			l.readRune()
			for !(l.ch == '*' && l.peekRune() == '/') {
				if l.ch == 0 {
					return "unterminated comment"
				}
				l.readRune()
			}
			l.readRune()
			l.readRune()
		default:
			return ""
		}
	}
}

func (l *lexer) readIdentifier() string {
	start := l.currentOffset()
	for isIdentifierRune(l.ch) {
		l.readRune()
	}
	return l.input[start:l.currentOffset()]
}

func (l *lexer) readNumber(pos Position) Token {
	var sb strings.Builder
	hasDot := false
	hasExp := false

	for {
		switch {
		case unicode.IsDigit(l.ch):
			sb.WriteRune(l.ch)
			l.readRune()
			continue
		case l.ch == '.' && !hasDot && !hasExp && unicode.IsDigit(l.peekRune()):
			hasDot = true
			sb.WriteRune('.')
			l.readRune()
			continue
		case (l.ch == 'e' || l.ch == 'E') && !hasExp:
			next := l.peekRune()
			if unicode.IsDigit(next) || next == '+' || next == '-' {
				hasExp = true
				sb.WriteRune('e')
				l.readRune()
				sb.WriteRune(l.ch)
				l.readRune()
				continue
			}
		}
		break
	}

	literal := sb.String()
	switch l.ch {
	case 'l', 'L':
		l.readRune()
		if hasDot || hasExp {
			return Token{Type: tokenIllegal, Literal: "invalid long literal " + literal, Pos: pos}
		}
		return Token{Type: tokenLong, Literal: literal, Pos: pos}
	case 'f', 'F':
		l.readRune()
		return Token{Type: tokenFloat, Literal: literal, Pos: pos}
	case 'd', 'D':
		l.readRune()
		return Token{Type: tokenDouble, Literal: literal, Pos: pos}
	}
	if hasDot || hasExp {
		return Token{Type: tokenDouble, Literal: literal, Pos: pos}
	}
	return Token{Type: tokenInt, Literal: literal, Pos: pos}
}

func (l *lexer) readQuoted(quote rune) (string, string) {
	var sb strings.Builder

	for {
		l.readRune()
		switch l.ch {
		case 0, '\n':
			return "", "unterminated literal"
		case quote:
			l.readRune()
			return sb.String(), ""
		case '\\':
			l.readRune()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case '0':
				sb.WriteByte(0)
			case 'u':
				hex := make([]rune, 0, 4)
				for len(hex) < 4 {
					l.readRune()
					hex = append(hex, l.ch)
				}
				code, err := strconv.ParseUint(string(hex), 16, 32)
				if err != nil {
					return "", "invalid unicode escape"
				}
				sb.WriteRune(rune(code))
			case 0:
				return "", "unterminated literal"
			default:
				sb.WriteRune(l.ch)
			}
		default:
			sb.WriteRune(l.ch)
		}
	}
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '$'
}

func isIdentifierRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}
