package beanshell

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/scijava/scripting-beanshell/bsh"
	"github.com/scijava/scripting-beanshell/scripting"
)

func TestExtensions(t *testing.T) {
	lang := NewLanguage()
	exts := lang.Extensions()
	if diff := cmp.Diff([]string{"bsh", "bs"}, exts); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
	exts[0] = "changed"
	if lang.Extensions()[0] != "bsh" {
		t.Fatalf("extensions must be freshly allocated")
	}
}

func TestDecode(t *testing.T) {
	lang := NewLanguage()
	if lang.Decode(bsh.Void) != nil {
		t.Fatalf("expected void to decode to nil")
	}
	if lang.Decode(bsh.Null) != nil {
		t.Fatalf("expected null to decode to nil")
	}
	list := bsh.NewList(1)
	for _, v := range []any{42, "text", false, 0, list} {
		if got := lang.Decode(v); got != v {
			t.Fatalf("expected %#v unchanged, got %#v", v, got)
		}
	}
	if lang.Decode(nil) != nil {
		t.Fatalf("expected nil to stay nil")
	}
}

func TestMetadata(t *testing.T) {
	lang := NewLanguage()
	if lang.LanguageName() != "BeanShell" {
		t.Fatalf("unexpected name %q", lang.LanguageName())
	}
	if lang.EngineVersion() != bsh.Version || lang.LanguageVersion() != bsh.Version {
		t.Fatalf("expected versions %s", bsh.Version)
	}
	if got := lang.OutputStatement(`say "hi"`); got != `print("say \"hi\"");` {
		t.Fatalf("unexpected output statement %s", got)
	}
	if got := lang.MethodCallSyntax("list", "add", "1", "x"); got != "list.add(1, x)" {
		t.Fatalf("unexpected method call %s", got)
	}
	if got := lang.Program("a = 1", "b = 2;"); got != "a = 1;\nb = 2;" {
		t.Fatalf("unexpected program %q", got)
	}
}

func TestGeneratedProgramRuns(t *testing.T) {
	lang := NewLanguage()
	engine := lang.ScriptEngine()
	var out bytes.Buffer
	engine.Context().Writer = &out

	src := lang.Program(
		"greeting = \"hello\"",
		lang.OutputStatement("line one"),
		"print("+lang.MethodCallSyntax("greeting", "toUpperCase")+")",
	)
	if _, err := engine.Eval(context.Background(), src); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if out.String() != "line one\nHELLO\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestEnginesAreIndependent(t *testing.T) {
	lang := NewLanguage()
	first := lang.ScriptEngine()
	second := lang.ScriptEngine()

	first.Put("x", 1)
	if second.Get("x") != nil {
		t.Fatalf("expected second engine not to see x")
	}
	if _, err := second.Eval(context.Background(), `x = 2;`); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if first.Get("x") != 1 || second.Get("x") != 2 {
		t.Fatalf("expected independent values, got %#v and %#v", first.Get("x"), second.Get("x"))
	}
	if first.Language() != scripting.ScriptLanguage(lang) {
		t.Fatalf("expected engine to report its language")
	}
}

func TestEngineScopeIsLiveView(t *testing.T) {
	engine := NewLanguage().ScriptEngine()
	b := engine.Bindings(scripting.EngineScope)
	if _, ok := b.(*Bindings); !ok {
		t.Fatalf("expected *Bindings, got %T", b)
	}
	if _, err := engine.Eval(context.Background(), `total = 3 + 4;`); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if b.Get("total") != 7 {
		t.Fatalf("expected total 7, got %#v", b.Get("total"))
	}
}

func TestGlobalScopeIsVisibleToScripts(t *testing.T) {
	engine := NewLanguage().ScriptEngine()
	globals := scripting.NewSimpleBindings()
	globals.Put("site", "lab")
	if err := engine.Context().SetBindings(globals, scripting.GlobalScope); err != nil {
		t.Fatalf("set globals: %v", err)
	}

	val, err := engine.Eval(context.Background(), `site + "!"`)
	if err != nil || val != "lab!" {
		t.Fatalf("expected lab!, got %#v (%v)", val, err)
	}
	if engine.Bindings(scripting.EngineScope).ContainsKey("site") {
		t.Fatalf("global names must not leak into engine scope")
	}
	if engine.Bindings(scripting.GlobalScope) != scripting.Bindings(globals) {
		t.Fatalf("expected global scope bindings to be returned")
	}
}

func TestEvalErrors(t *testing.T) {
	engine := NewLanguage().ScriptEngine()
	engine.Context().FileName = "demo.bsh"

	_, err := engine.Eval(context.Background(), "x = 1;\ny = ;")
	var scriptErr *scripting.ScriptError
	if !errors.As(err, &scriptErr) || !errors.Is(err, scripting.ErrParse) {
		t.Fatalf("expected parse ScriptError, got %v", err)
	}
	if scriptErr.Line != 2 || scriptErr.FileName != "demo.bsh" {
		t.Fatalf("expected demo.bsh line 2, got %s line %d", scriptErr.FileName, scriptErr.Line)
	}
	var parseErr *bsh.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected the ParseError to be reachable")
	}

	_, err = engine.Eval(context.Background(), "\n  missing + 1;")
	if !errors.Is(err, scripting.ErrEval) {
		t.Fatalf("expected ErrEval, got %v", err)
	}
	if got := err.Error(); got != "demo.bsh:2:3: evaluation error: undefined variable: missing" {
		t.Fatalf("unexpected message %q", got)
	}
	var evalErr *bsh.EvalError
	if !errors.As(err, &evalErr) || !strings.Contains(evalErr.CodeFrame, "missing + 1") {
		t.Fatalf("expected EvalError with code frame, got %v", err)
	}

	_, err = engine.Eval(context.Background(), `throw new IllegalStateException("stuck");`)
	var exc *bsh.Exception
	if !errors.Is(err, scripting.ErrEval) || !errors.As(err, &exc) || exc.Message != "stuck" {
		t.Fatalf("expected thrown exception, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.Eval(ctx, `while (true) { }`); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestEvalReader(t *testing.T) {
	engine := NewLanguage().ScriptEngine()
	val, err := engine.EvalReader(context.Background(), strings.NewReader(`int a = 20; a + 22`))
	if err != nil || val != 42 {
		t.Fatalf("expected 42, got %#v (%v)", val, err)
	}
}

func TestRegisteredWithScripting(t *testing.T) {
	lookups := map[string]func() (scripting.ScriptLanguage, error){
		"name":      func() (scripting.ScriptLanguage, error) { return scripting.Lookup("BeanShell") },
		"alias":     func() (scripting.ScriptLanguage, error) { return scripting.Lookup("bsh") },
		"extension": func() (scripting.ScriptLanguage, error) { return scripting.ForExtension(".bs") },
		"file":      func() (scripting.ScriptLanguage, error) { return scripting.ForFile("foo.BSH") },
	}
	for label, lookup := range lookups {
		lang, err := lookup()
		if err != nil {
			t.Fatalf("%s: %v", label, err)
		}
		if lang.LanguageName() != Name {
			t.Fatalf("%s: expected BeanShell, got %s", label, lang.LanguageName())
		}
	}
}

func TestServiceRunDecodesVoid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "greet.bsh")
	script := "void greet(String who) { print(\"hi \" + who); }\ngreet(name);\n"
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}

	var out bytes.Buffer
	svc := scripting.NewService(scripting.WithOutput(&out, &out))
	result, err := svc.Run(context.Background(), path, maps.All(map[string]any{"name": "ada"}))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result != nil {
		t.Fatalf("expected void result to decode to nil, got %#v", result)
	}
	if out.String() != "hi ada\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestServiceRunReportsFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.bs")
	if err := os.WriteFile(path, []byte("a = 1;\nb = a / 0;\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	_, err := scripting.NewService().Run(context.Background(), path, nil)
	var scriptErr *scripting.ScriptError
	if !errors.As(err, &scriptErr) {
		t.Fatalf("expected ScriptError, got %v", err)
	}
	if scriptErr.FileName != path || scriptErr.Line != 2 {
		t.Fatalf("expected %s line 2, got %s line %d", path, scriptErr.FileName, scriptErr.Line)
	}
	if !strings.Contains(scriptErr.Message, "/ by zero") {
		t.Fatalf("unexpected message %q", scriptErr.Message)
	}
}

func TestServiceEvalReturnsValues(t *testing.T) {
	svc := scripting.NewService()
	val, err := svc.Eval(context.Background(), "beanshell", `n * 2`, maps.All(map[string]any{"n": 21}))
	if err != nil || val != 42 {
		t.Fatalf("expected 42, got %#v (%v)", val, err)
	}
	val, err = svc.Eval(context.Background(), "beanshell", `null`, nil)
	if err != nil || val != nil {
		t.Fatalf("expected null to decode to nil, got %#v (%v)", val, err)
	}
}
