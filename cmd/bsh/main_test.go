package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRunCLIHelp(t *testing.T) {
	if err := runCLI([]string{"bsh", "help"}); err != nil {
		t.Fatalf("runCLI help failed: %v", err)
	}
}

func TestRunCLIInvalidCommand(t *testing.T) {
	err := runCLI([]string{"bsh", "unknown"})
	if err == nil {
		t.Fatalf("expected invalid command error")
	}
	if !strings.Contains(err.Error(), "invalid command") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandCheckOnly(t *testing.T) {
	scriptPath := writeScript(t, `int twice(int n) {
  return n * 2;
}`)

	if err := runCommand([]string{"--check", scriptPath}); err != nil {
		t.Fatalf("runCommand check failed: %v", err)
	}
}

func TestRunCommandCheckReportsParseErrors(t *testing.T) {
	scriptPath := writeScript(t, "x = ;\n")

	err := runCommand([]string{"--check", scriptPath})
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), scriptPath) {
		t.Fatalf("expected error to name the script, got %v", err)
	}
}

func TestRunCommandBindsSetsAndPrintsResult(t *testing.T) {
	configPath := writeConfig(t, "")
	scriptPath := writeScript(t, `print("hello " + name);
count * 2`)

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"--config", configPath, "--set", "name=ada", "--set", "count=21", scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "hello ada\n42" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestRunCommandBindsArgs(t *testing.T) {
	configPath := writeConfig(t, "")
	scriptPath := writeScript(t, `args.length + ":" + args[1]`)

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"--config", configPath, scriptPath, "a", "b"})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "2:b" {
		t.Fatalf("unexpected stdout: %q", got)
	}
}

func TestRunCommandVoidResultPrintsNothing(t *testing.T) {
	configPath := writeConfig(t, "")
	scriptPath := writeScript(t, `void noop() {}
noop();`)

	out, err := captureStdout(t, func() error {
		return runCommand([]string{"--config", configPath, scriptPath})
	})
	if err != nil {
		t.Fatalf("runCommand failed: %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}

func TestRunCommandReportsEvalFailure(t *testing.T) {
	configPath := writeConfig(t, "")
	scriptPath := writeScript(t, "a = 1;\nb = a / 0;\n")

	_, err := captureStdout(t, func() error {
		return runCommand([]string{"--config", configPath, scriptPath})
	})
	if err == nil {
		t.Fatalf("expected execution error")
	}
	if !strings.Contains(err.Error(), "execution failed") || !strings.Contains(err.Error(), "/ by zero") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandRequiresScriptPath(t *testing.T) {
	err := runCommand(nil)
	if err == nil {
		t.Fatalf("expected script path error")
	}
	if !strings.Contains(err.Error(), "script path required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunCommandUnknownLanguage(t *testing.T) {
	configPath := writeConfig(t, "")
	scriptPath := writeScript(t, "1")

	err := runCommand([]string{"--config", configPath, "--language", "cobol", scriptPath})
	if err == nil {
		t.Fatalf("expected unknown language error")
	}
	if !strings.Contains(err.Error(), "cobol") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLanguagesCommandListsBeanShell(t *testing.T) {
	configPath := writeConfig(t, "")

	out, err := captureStdout(t, func() error {
		return languagesCommand([]string{"--config", configPath})
	})
	if err != nil {
		t.Fatalf("languagesCommand failed: %v", err)
	}
	if !strings.Contains(out, "BeanShell (beanshell, bsh, java)") {
		t.Fatalf("unexpected languages output: %q", out)
	}
	if !strings.Contains(out, "extensions: bsh, bs") {
		t.Fatalf("expected extensions in output, got %q", out)
	}
}

func TestStdinCommandEvaluatesInput(t *testing.T) {
	var out bytes.Buffer
	if err := stdinCommand(strings.NewReader(`x = 4; print("x is " + x); x * x`), &out); err != nil {
		t.Fatalf("stdinCommand failed: %v", err)
	}
	if got := out.String(); got != "x is 4\n16\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestAnalyzeCommandNoIssues(t *testing.T) {
	scriptPath := writeScript(t, `int run() {
  value = 1;
  return value;
}`)

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("analyzeCommand failed: %v", err)
	}
	if !strings.Contains(out, "No issues found") {
		t.Fatalf("unexpected analyze output: %q", out)
	}
}

func TestAnalyzeCommandReportsUnreachableStatements(t *testing.T) {
	scriptPath := writeScript(t, `int run() {
  return 1;
  2;
}`)

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{scriptPath})
	})
	if err == nil {
		t.Fatalf("expected analyze command to report lint failures")
	}
	if !strings.Contains(err.Error(), "analysis found 1 issue(s)") {
		t.Fatalf("unexpected analyze error: %v", err)
	}
	if !strings.Contains(out, "unreachable statement (run)") {
		t.Fatalf("expected unreachable statement warning, got %q", out)
	}
}

func TestParseAssignments(t *testing.T) {
	got, err := parseAssignments([]string{"n=3", "ratio=0.5", "flag=true", "name=ada", "raw=inf", "empty="})
	if err != nil {
		t.Fatalf("parseAssignments failed: %v", err)
	}
	want := []binding{
		{name: "n", value: 3},
		{name: "ratio", value: 0.5},
		{name: "flag", value: true},
		{name: "name", value: "ada"},
		{name: "raw", value: "inf"},
		{name: "empty", value: ""},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(binding{})); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}

	if _, err := parseAssignments([]string{"=3"}); err == nil || !strings.Contains(err.Error(), "expected name=value") {
		t.Fatalf("expected assignment error, got %v", err)
	}
}

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.bsh")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func writeConfig(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()
	_ = w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	if _, copyErr := io.Copy(&buf, r); copyErr != nil {
		t.Fatalf("read stdout: %v", copyErr)
	}
	_ = r.Close()
	return buf.String(), runErr
}
