package bsh

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestVariableNamesKeepDeclarationOrder(t *testing.T) {
	ns := New(Config{}).NameSpace()
	for _, name := range []string{"b", "a", "c"} {
		if err := ns.SetVariable(name, 1, false); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	ns.UnsetVariable("a")
	if diff := cmp.Diff([]string{"b", "c"}, ns.VariableNames()); diff != "" {
		t.Fatalf("variable names mismatch (-want +got):\n%s", diff)
	}
}

func TestTypedVariableKeepsType(t *testing.T) {
	ns := New(Config{}).NameSpace()
	if err := ns.DeclareVariable("n", &TypeRef{Name: "int"}, 1); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	if err := ns.SetVariable("n", "text", false); err == nil {
		t.Fatalf("expected string to be rejected")
	}
	if err := ns.SetVariable("n", int64(5), false); err == nil {
		t.Fatalf("expected long to int narrowing to be rejected")
	}
	if err := ns.SetVariable("n", Char('x'), false); err != nil {
		t.Fatalf("char widening failed: %v", err)
	}
	val, err := ns.Get("n", nil)
	if err != nil || val != 120 {
		t.Fatalf("expected 120, got %#v (%v)", val, err)
	}
}

func TestGetterFailureIsAnError(t *testing.T) {
	interp := New(Config{})
	ns := interp.NameSpace()
	boom := errors.New("boom")
	if err := ns.SetVariable("g", GetterFunc(func(*Interpreter) (any, error) { return nil, boom }), false); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := ns.Get("g", interp); !errors.Is(err, boom) {
		t.Fatalf("expected getter error, got %v", err)
	}
	if diff := cmp.Diff([]string{"g"}, ns.VariableNames()); diff != "" {
		t.Fatalf("variable names mismatch (-want +got):\n%s", diff)
	}
}

func TestCompoundNameResolution(t *testing.T) {
	interp := New(Config{})
	ns := interp.NameSpace()
	cfg := map[string]any{"db": map[string]any{"host": "localhost"}}
	if err := ns.SetVariable("cfg", cfg, false); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, err := ns.Get("cfg.db.host", interp)
	if err != nil || val != "localhost" {
		t.Fatalf("expected localhost, got %#v (%v)", val, err)
	}
	if _, err := ns.Get("cfg.nope.host", interp); err == nil {
		t.Fatalf("expected error reading through a missing key")
	}
	val, err = ns.Get("missing.host", interp)
	if err != nil || val != nil {
		t.Fatalf("expected undefined root to yield nil, got %#v (%v)", val, err)
	}
}

func TestClearKeepsMethods(t *testing.T) {
	interp := New(Config{})
	if _, err := interp.Eval(context.Background(), `f() { return 1; } x = 2;`); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	interp.NameSpace().Clear()
	if names := interp.NameSpace().VariableNames(); len(names) != 0 {
		t.Fatalf("expected no variables, got %v", names)
	}
	val, err := interp.Eval(context.Background(), `f()`)
	if err != nil || val != 1 {
		t.Fatalf("expected method to survive clear, got %#v (%v)", val, err)
	}
	if diff := cmp.Diff([]string{"f"}, interp.NameSpace().MethodNames()); diff != "" {
		t.Fatalf("method names mismatch (-want +got):\n%s", diff)
	}
}

func TestStrictSetVariable(t *testing.T) {
	ns := New(Config{}).NameSpace()
	if err := ns.SetVariable("x", 1, true); err == nil {
		t.Fatalf("expected strict assignment of undeclared name to fail")
	}
	if err := ns.SetVariable("x", Void, false); err == nil {
		t.Fatalf("expected void assignment to fail")
	}
	if err := ns.SetVariable("x", nil, false); err != nil {
		t.Fatalf("nil assignment failed: %v", err)
	}
	if err := ns.SetVariable("x", 2, true); err != nil {
		t.Fatalf("strict assignment of declared name failed: %v", err)
	}
}
