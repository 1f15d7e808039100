package bsh

import (
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
)

func TestParseDistinguishesDeclarations(t *testing.T) {
	program, err := Parse(`int x = 1, y;
java.util.List items;
int add(int a, int b) { return a + b; }
greet(name) { print(name); }
x = add(x, 2);
`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(program.Statements) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(program.Statements))
	}

	decl, ok := program.Statements[0].(*VarDeclStmt)
	if !ok || decl.Type.Name != "int" || len(decl.Vars) != 2 {
		t.Fatalf("unexpected declaration %#v", program.Statements[0])
	}
	if decl.Vars[1].Init != nil {
		t.Fatalf("expected y to have no initializer")
	}
	if list, ok := program.Statements[1].(*VarDeclStmt); !ok || list.Type.Name != "java.util.List" {
		t.Fatalf("expected dotted type declaration, got %#v", program.Statements[1])
	}
	typed, ok := program.Statements[2].(*MethodDecl)
	if !ok || typed.ReturnType == nil || typed.ReturnType.Name != "int" || len(typed.Params) != 2 {
		t.Fatalf("unexpected typed method %#v", program.Statements[2])
	}
	loose, ok := program.Statements[3].(*MethodDecl)
	if !ok || loose.ReturnType != nil || loose.Params[0].Type != nil {
		t.Fatalf("unexpected loose method %#v", program.Statements[3])
	}
	if _, ok := program.Statements[4].(*ExprStmt); !ok {
		t.Fatalf("expected expression statement, got %T", program.Statements[4])
	}
}

func TestParseCastAndGrouping(t *testing.T) {
	program, err := Parse(`(int) x; (x) + 1; (String) null;`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, ok := program.Statements[0].(*ExprStmt).Expr.(*CastExpr); !ok {
		t.Fatalf("expected cast, got %T", program.Statements[0].(*ExprStmt).Expr)
	}
	if _, ok := program.Statements[1].(*ExprStmt).Expr.(*BinaryExpr); !ok {
		t.Fatalf("expected binary expression, got %T", program.Statements[1].(*ExprStmt).Expr)
	}
	cast, ok := program.Statements[2].(*ExprStmt).Expr.(*CastExpr)
	if !ok || cast.Type.Name != "String" {
		t.Fatalf("expected String cast, got %#v", program.Statements[2].(*ExprStmt).Expr)
	}
}

func TestParseNewExpressions(t *testing.T) {
	program, err := Parse(`new Exception("x"); new int[3][]; new String[] {"a", "b"};`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	ex := program.Statements[0].(*ExprStmt).Expr.(*NewExpr)
	if ex.Type.Name != "Exception" || len(ex.Args) != 1 {
		t.Fatalf("unexpected constructor call %#v", ex)
	}
	arr := program.Statements[1].(*ExprStmt).Expr.(*NewExpr)
	if arr.Type.Dims != 2 || len(arr.Sizes) != 1 {
		t.Fatalf("unexpected array creation %#v", arr)
	}
	lit := program.Statements[2].(*ExprStmt).Expr.(*NewExpr)
	if lit.Init == nil || len(lit.Init.Elements) != 2 {
		t.Fatalf("unexpected array initializer %#v", lit)
	}
}

func TestParseErrorsAreAggregated(t *testing.T) {
	_, err := Parse("x = ;\ny = 1;\nz = ;")
	if err == nil {
		t.Fatalf("expected parse error")
	}
	merr, ok := err.(*multierror.Error)
	if !ok {
		t.Fatalf("expected *multierror.Error, got %T", err)
	}
	if len(merr.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(merr.Errors), err)
	}
	var parseErr *ParseError
	if !errors.As(merr.Errors[1], &parseErr) || parseErr.Pos.Line != 3 {
		t.Fatalf("expected second error on line 3, got %v", merr.Errors[1])
	}
	if !strings.Contains(err.Error(), "2 parse errors") || !strings.Contains(err.Error(), "unexpected token ';'") {
		t.Fatalf("unexpected message:\n%s", err.Error())
	}
}

func TestParseTryRequiresHandler(t *testing.T) {
	_, err := Parse(`try { x = 1; }`)
	if err == nil || !strings.Contains(err.Error(), "try without catch or finally") {
		t.Fatalf("expected try error, got %v", err)
	}
}

func TestLexerTokens(t *testing.T) {
	toks := newLexer(`int x = 10L + 'a' /* note */ + "b\n"; // end`).tokenize()
	want := []TokenType{
		tokenIdent, tokenIdent, tokenAssign, tokenLong, tokenPlus, tokenChar,
		tokenPlus, tokenString, tokenSemicolon, tokenEOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Fatalf("token %d: expected %s, got %s (%q)", i, tt, toks[i].Type, toks[i].Literal)
		}
	}
	if toks[7].Literal != "b\n" {
		t.Fatalf("expected escaped string, got %q", toks[7].Literal)
	}
	if toks[3].Pos.Column != 9 {
		t.Fatalf("expected long literal at column 9, got %d", toks[3].Pos.Column)
	}
}
