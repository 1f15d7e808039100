package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/scijava/scripting-beanshell/beanshell"
	"github.com/scijava/scripting-beanshell/scripting"
)

func newTestREPL(t *testing.T) replModel {
	t.Helper()
	engine := beanshell.NewLanguage().ScriptEngine()
	return newREPLModel(context.Background(), engine, filepath.Join(t.TempDir(), "history"))
}

func TestUpdateQuitCommandReturnsQuit(t *testing.T) {
	m := newTestREPL(t)
	m.textInput.SetValue(":quit")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if !rm.quitting {
		t.Fatalf("quitting flag not set")
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input not cleared after quit command")
	}
	if cmd == nil {
		t.Fatalf("expected tea.Quit command")
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(tea.QuitMsg); !ok {
			t.Fatalf("expected QuitMsg, got %T", msg)
		}
	}
}

func TestUpdateNonQuitCommandDoesNotReturnCmd(t *testing.T) {
	m := newTestREPL(t)
	m.textInput.SetValue(":help")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if cmd != nil {
		t.Fatalf("expected no command for non-quit input")
	}
	if rm.quitting {
		t.Fatalf("quitting should remain false")
	}
	if !rm.showHelp {
		t.Fatalf("help toggle should be enabled")
	}
	if rm.textInput.Value() != "" {
		t.Fatalf("input not cleared after command")
	}
}

func TestEvaluateAssignmentStoresVariable(t *testing.T) {
	m := newTestREPL(t)

	output, isErr := m.evaluate("score = 42")
	if isErr {
		t.Fatalf("unexpected eval error: %s", output)
	}
	if output != "42" {
		t.Fatalf("expected 42, got %q", output)
	}
	if score := m.engine.Get("score"); score != 42 {
		t.Fatalf("expected score to be bound, got %#v", score)
	}
}

func TestEvaluateEqualityDoesNotOverwriteVariable(t *testing.T) {
	m := newTestREPL(t)
	m.engine.Put("a", 5)

	output, isErr := m.evaluate("a == 5")
	if isErr {
		t.Fatalf("unexpected eval error: %s", output)
	}
	if output != "true" {
		t.Fatalf("expected true, got %q", output)
	}
	if a := m.engine.Get("a"); a != 5 {
		t.Fatalf("variable a was clobbered by equality expression: %#v", a)
	}
}

func TestEvaluateShowsPrintedOutput(t *testing.T) {
	m := newTestREPL(t)

	output, isErr := m.evaluate(`print("hi")`)
	if isErr {
		t.Fatalf("unexpected eval error: %s", output)
	}
	if output != "hi" {
		t.Fatalf("expected printed output, got %q", output)
	}

	output, _ = m.evaluate("void f() {}")
	if output != "ok" {
		t.Fatalf("expected ok for a void result, got %q", output)
	}
}

func TestEvaluateReportsErrors(t *testing.T) {
	m := newTestREPL(t)

	output, isErr := m.evaluate("missing + 1")
	if !isErr {
		t.Fatalf("expected error, got %q", output)
	}
	if !strings.Contains(output, "undefined variable: missing") {
		t.Fatalf("unexpected error output: %q", output)
	}
}

func TestResetCommandClearsBindings(t *testing.T) {
	m := newTestREPL(t)
	m.engine.Put("x", 1)
	m.textInput.SetValue(":reset")

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm := model.(replModel)

	if n := rm.engine.Bindings(scripting.EngineScope).Size(); n != 0 {
		t.Fatalf("expected bindings to be cleared, got %d", n)
	}
	last := rm.history[len(rm.history)-1]
	if last.output != "Variables cleared" {
		t.Fatalf("unexpected reset output: %q", last.output)
	}
}

func TestAutocompleteSingleMatch(t *testing.T) {
	m := newTestREPL(t)
	m.engine.Put("counter", 1)
	m.textInput.SetValue("x = coun")

	m = m.handleAutocomplete()
	if got := m.textInput.Value(); got != "x = counter" {
		t.Fatalf("unexpected completion: %q", got)
	}
}

func TestAutocompleteListsMultipleMatches(t *testing.T) {
	m := newTestREPL(t)
	m.textInput.SetValue("pri")

	m = m.handleAutocomplete()
	if len(m.history) != 1 {
		t.Fatalf("expected a completions entry, got %d", len(m.history))
	}
	if got := m.history[0].output; got != "Completions: print, println" {
		t.Fatalf("unexpected completions: %q", got)
	}
}

func TestHistoryIsPersisted(t *testing.T) {
	m := newTestREPL(t)
	m.textInput.SetValue("a = 1")
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm := model.(replModel)
	rm.textInput.SetValue("b = a + 1")
	model, _ = rm.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm = model.(replModel)

	data, err := os.ReadFile(rm.historyPath)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if diff := cmp.Diff("a = 1\nb = a + 1\n", string(data)); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}

	engine := beanshell.NewLanguage().ScriptEngine()
	reloaded := newREPLModel(context.Background(), engine, rm.historyPath)
	if diff := cmp.Diff([]string{"a = 1", "b = a + 1"}, reloaded.cmdHistory); diff != "" {
		t.Fatalf("loaded history mismatch (-want +got):\n%s", diff)
	}
}

func TestViewListsVariables(t *testing.T) {
	m := newTestREPL(t)
	m.engine.Put("greeting", "hello")
	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	rm := model.(replModel)
	rm.showVars = true

	view := rm.View()
	if !strings.Contains(view, "BeanShell REPL") {
		t.Fatalf("expected header in view")
	}
	if !strings.Contains(view, "hello") {
		t.Fatalf("expected variable value in view: %q", view)
	}
}
