package bsh

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func evalScript(t *testing.T, source string) any {
	t.Helper()
	interp := New(Config{Stdout: io.Discard})
	val, err := interp.Eval(context.Background(), source)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	return val
}

type point struct {
	X, Y int
}

func (p *point) Sum() int { return p.X + p.Y }

func (p *point) Scale(k int) error {
	if k == 0 {
		return errors.New("zero scale")
	}
	p.X *= k
	p.Y *= k
	return nil
}

func TestTypedMethodCall(t *testing.T) {
	val := evalScript(t, `int add(int a, int b) { return a + b; }
add(2, 3);`)
	if val != 5 {
		t.Fatalf("expected 5, got %#v", val)
	}
}

func TestNumericPromotion(t *testing.T) {
	cases := []struct {
		source string
		want   any
	}{
		{"1 + 2L", int64(3)},
		{"1 + 2.5", 3.5},
		{"7 / 2", 3},
		{"7 % 4", 3},
		{"1.5f + 1", float32(2.5)},
		{"'a' + 1", 98},
		{`"a" + 1 + 2`, "a12"},
		{`1 + 2 + "a"`, "3a"},
		{`"v" + 1.0`, "v1.0"},
		{"-3 * 2", -6},
		{"(int) 3.9", 3},
		{"(char) 65", Char('A')},
		{"(long) 4", int64(4)},
		{"1 == 1.0", true},
		{"2 > 1 && 1 >= 1", true},
		{"!(3 < 2) || false", true},
		{"true ? 1 : 2", 1},
	}
	for _, tc := range cases {
		got := evalScript(t, tc.source)
		if got != tc.want {
			t.Fatalf("%s: expected %#v, got %#v", tc.source, tc.want, got)
		}
	}
}

func TestTypedVariableRejectsIncompatibleValue(t *testing.T) {
	interp := New(Config{})
	_, err := interp.Eval(context.Background(), `int x = 1;
x = "text";`)
	if err == nil {
		t.Fatalf("expected type error")
	}
	var evalErr *EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvalError, got %T", err)
	}
	if !strings.Contains(err.Error(), "cannot assign String to int") {
		t.Fatalf("unexpected error: %v", err)
	}
	if evalErr.Pos.Line != 2 {
		t.Fatalf("expected error on line 2, got %d", evalErr.Pos.Line)
	}
	val, _ := interp.Get("x")
	if val != 1 {
		t.Fatalf("expected x to keep 1, got %#v", val)
	}
}

func TestCompoundAssignmentNarrows(t *testing.T) {
	val := evalScript(t, `int x = 10;
x += 2.7;
x;`)
	if val != 12 {
		t.Fatalf("expected 12, got %#v", val)
	}
}

func TestLoops(t *testing.T) {
	interp := New(Config{})
	val, err := interp.Eval(context.Background(), `sum = 0;
for (int i = 0; i < 5; i++) {
  if (i == 3) continue;
  sum += i;
}
sum;`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if val != 7 {
		t.Fatalf("expected 7, got %#v", val)
	}
	if leaked, _ := interp.Get("i"); leaked != nil {
		t.Fatalf("loop variable leaked: %#v", leaked)
	}

	val = evalScript(t, `n = 0;
do { n++; } while (n < 3);
while (true) { if (n > 10) break; n += 4; }
n;`)
	if val != 11 {
		t.Fatalf("expected 11, got %#v", val)
	}
}

func TestEnhancedFor(t *testing.T) {
	val := evalScript(t, `total = 0;
for (x : new int[] {1, 2, 3}) total += x;
int[] more = {10, 20};
for (int y : more) { total += y; }
total + more.length;`)
	if val != 38 {
		t.Fatalf("expected 38, got %#v", val)
	}
}

func TestUntypedRecursion(t *testing.T) {
	val := evalScript(t, `fact(n) {
  if (n <= 1) return 1;
  return n * fact(n - 1);
}
fact(10);`)
	if val != 3628800 {
		t.Fatalf("expected 3628800, got %#v", val)
	}
}

func TestRecursionLimit(t *testing.T) {
	interp := New(Config{RecursionLimit: 10})
	_, err := interp.Eval(context.Background(), `loop(n) { return loop(n + 1); }
loop(0);`)
	if !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("expected recursion limit error, got %v", err)
	}
}

func TestStepQuota(t *testing.T) {
	interp := New(Config{StepQuota: 100})
	_, err := interp.Eval(context.Background(), `while (true) { }`)
	if !errors.Is(err, ErrStepQuotaExceeded) {
		t.Fatalf("expected step quota error, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	interp := New(Config{})
	_, err := interp.Eval(ctx, `x = 1;`)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSentinelResults(t *testing.T) {
	if val := evalScript(t, `void f() { } f();`); val != Void {
		t.Fatalf("expected Void, got %#v", val)
	}
	if val := evalScript(t, `null;`); val != Null {
		t.Fatalf("expected Null, got %#v", val)
	}
	if val := evalScript(t, `g() { x = 1; } g();`); val != Void {
		t.Fatalf("expected Void from method without return, got %#v", val)
	}
	if val := evalScript(t, `int y;`); val != 0 {
		t.Fatalf("expected default 0, got %#v", val)
	}
	if val := evalScript(t, `String s;`); val != Null {
		t.Fatalf("expected default Null, got %#v", val)
	}
}

func TestTryCatchFinally(t *testing.T) {
	val := evalScript(t, `result = "";
try {
  x = 1 / 0;
} catch (ArithmeticException e) {
  result = "caught " + e.getMessage();
} finally {
  result += "!";
}
result;`)
	if val != "caught / by zero!" {
		t.Fatalf("unexpected result %#v", val)
	}

	val = evalScript(t, `msg = "none";
try {
  throw new IllegalStateException("bad");
} catch (RuntimeException e) {
  msg = "runtime";
} catch (Exception e) {
  msg = e.getMessage();
}
msg;`)
	if val != "bad" {
		t.Fatalf("expected catch by Exception, got %#v", val)
	}
}

func TestUncaughtThrow(t *testing.T) {
	interp := New(Config{})
	_, err := interp.Eval(context.Background(), `throw new Exception("boom");`)
	var target *TargetError
	if !errors.As(err, &target) {
		t.Fatalf("expected TargetError, got %T: %v", err, err)
	}
	ex, ok := target.Value.(*Exception)
	if !ok || ex.Message != "boom" || ex.Type != "Exception" {
		t.Fatalf("unexpected thrown value %#v", target.Value)
	}
}

func TestUndefinedVariableHasCodeFrame(t *testing.T) {
	interp := New(Config{FileName: "demo.bsh"})
	_, err := interp.Eval(context.Background(), `y = missing + 1;`)
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"demo.bsh: undefined variable: missing", "--> line 1, column 5", "at <script>"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in error:\n%s", want, msg)
		}
	}
}

func TestHostReflection(t *testing.T) {
	interp := New(Config{})
	p := &point{X: 1, Y: 2}
	if err := interp.Set("p", p); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, err := interp.Eval(context.Background(), `p.x + p.sum()`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if val != 4 {
		t.Fatalf("expected 4, got %#v", val)
	}

	if _, err := interp.Eval(context.Background(), `p.x = 5; p.scale(2);`); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if p.X != 10 || p.Y != 4 {
		t.Fatalf("unexpected point %+v", *p)
	}

	val, err = interp.Eval(context.Background(), `msg = "";
try { p.scale(0); } catch (Exception e) { msg = "caught: " + e; }
msg;`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if val != "caught: zero scale" {
		t.Fatalf("unexpected message %#v", val)
	}
}

func TestHostFunctionVariable(t *testing.T) {
	interp := New(Config{})
	if err := interp.Set("double", func(n int) int { return n * 2 }); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, err := interp.Eval(context.Background(), `double(21)`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if val != 42 {
		t.Fatalf("expected 42, got %#v", val)
	}
}

func TestStringMethods(t *testing.T) {
	val := evalScript(t, `"Hello".toUpperCase() + "abc".charAt(1) + "abc".length()`)
	if val != "HELLOb3" {
		t.Fatalf("unexpected %#v", val)
	}
	val = evalScript(t, `s = "  a,b,c  ".trim();
s.split(",").length + s.indexOf("b") + s.substring(2, 3).length();`)
	if val != 6 {
		t.Fatalf("expected 6, got %#v", val)
	}
	if val := evalScript(t, `"abc".startsWith("ab") && "abc".equals("abc")`); val != true {
		t.Fatalf("expected true, got %#v", val)
	}
}

func TestCollections(t *testing.T) {
	val := evalScript(t, `m = new HashMap();
m.put("a", 1);
m["b"] = 2;
m.get("a") + m.size() + m.b;`)
	if val != 5 {
		t.Fatalf("expected 5, got %#v", val)
	}

	val = evalScript(t, `l = new ArrayList();
l.add(1);
l.add(2);
sum = 0;
for (x : l) sum += x;
sum * 10 + l.size();`)
	if val != 32 {
		t.Fatalf("expected 32, got %#v", val)
	}

	val = evalScript(t, `l = new ArrayList();
caught = false;
try { l.get(5); } catch (ArrayIndexOutOfBoundsException e) { caught = true; }
caught;`)
	if val != true {
		t.Fatalf("expected out of bounds to be catchable, got %#v", val)
	}
}

func TestInstanceof(t *testing.T) {
	cases := map[string]bool{
		`"s" instanceof String`:           true,
		`1 instanceof Number`:             true,
		`1 instanceof String`:             false,
		`null instanceof Object`:          false,
		`new ArrayList() instanceof List`: true,
		`new int[2] instanceof Object`:    true,
	}
	for source, want := range cases {
		if got := evalScript(t, source); got != want {
			t.Fatalf("%s: expected %v, got %#v", source, want, got)
		}
	}
}

func TestPrintWritesToOutput(t *testing.T) {
	var out bytes.Buffer
	interp := New(Config{Stdout: &out})
	if _, err := interp.Eval(context.Background(), `print("hi"); println(1.0); print(typeof(2L));`); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if out.String() != "hi\n1.0\nlong\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestEvalBuiltinSharesNamespace(t *testing.T) {
	val := evalScript(t, `eval("z = 40 + 2"); z;`)
	if val != 42 {
		t.Fatalf("expected 42, got %#v", val)
	}
}

func TestStrictJavaRejectsUndeclared(t *testing.T) {
	interp := New(Config{StrictJava: true})
	_, err := interp.Eval(context.Background(), `undeclared = 1;`)
	if err == nil || !strings.Contains(err.Error(), "undeclared variable: undeclared") {
		t.Fatalf("expected undeclared variable error, got %v", err)
	}
	if _, err := interp.Eval(context.Background(), `int ok = 1; ok = 2;`); err != nil {
		t.Fatalf("declared assignment failed: %v", err)
	}
}

func TestResolverSuppliesMissingNames(t *testing.T) {
	interp := New(Config{})
	interp.SetResolver(ResolverFunc(func(name string) (any, bool) {
		if name == "answer" {
			return 41, true
		}
		return nil, false
	}))
	val, err := interp.Eval(context.Background(), `answer + 1`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if val != 42 {
		t.Fatalf("expected 42, got %#v", val)
	}
}

func TestBlockScoping(t *testing.T) {
	interp := New(Config{})
	if _, err := interp.Eval(context.Background(), `{ int local = 1; leaked = 2; }`); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if val, _ := interp.Get("local"); val != nil {
		t.Fatalf("typed block variable escaped: %#v", val)
	}
	if val, _ := interp.Get("leaked"); val != 2 {
		t.Fatalf("expected loose assignment to reach global scope, got %#v", val)
	}
}
