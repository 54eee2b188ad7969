package vm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/blockrun/blockrun/pkg/compiler"
)

// runSource compiles and executes source, returning the VM and captured
// output.
func runSource(t *testing.T, source string) (*VM, string, error) {
	t.Helper()
	program, err := compiler.Compile(source)
	if err != nil {
		t.Fatalf("compile failed for %q: %v", source, err)
	}
	var buf strings.Builder
	machine := New(WithOutput(&buf))
	runErr := machine.Run(program)
	return machine, buf.String(), runErr
}

// mustRun fails the test on any runtime error.
func mustRun(t *testing.T, source string) (*VM, string) {
	t.Helper()
	machine, output, err := runSource(t, source)
	if err != nil {
		t.Fatalf("run failed for %q: %v", source, err)
	}
	return machine, output
}

func getVar(t *testing.T, machine *VM, name string) any {
	t.Helper()
	value, ok := machine.GlobalScope().Get(name)
	if !ok {
		t.Fatalf("variable %q not bound", name)
	}
	return value
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want any
	}{
		{"2 + 3", int64(5)},
		{"2 - 5", int64(-3)},
		{"4 * 3", int64(12)},
		{"1 + 2.5", float64(3.5)},
		{"7 / 2", float64(3.5)},
		{"6 / 3", float64(2)}, // true division always yields a float
		{"7 // 2", int64(3)},
		{"-7 // 2", int64(-4)},
		{"7 // -2", int64(-4)},
		{"7.0 // 2", float64(3)},
		{"7 % 3", int64(1)},
		{"-7 % 3", int64(2)},
		{"7 % -3", int64(-2)},
		{"2 ** 10", int64(1024)},
		{"2 ** -1", float64(0.5)},
		{"2 ** 3 ** 2", int64(512)},
		{"-3 ** 2", int64(-9)},
		{"(-3) ** 2", int64(9)},
	}

	for _, tt := range tests {
		machine, _ := mustRun(t, "result = "+tt.expr+"\n")
		got := getVar(t, machine, "result")
		if got != tt.want {
			t.Errorf("%s: expected %v (%T), got %v (%T)", tt.expr, tt.want, tt.want, got, got)
		}
	}
}

func TestStringOperations(t *testing.T) {
	tests := []struct {
		expr string
		want any
	}{
		{`"ab" + "cd"`, "abcd"},
		{`"ab" * 3`, "ababab"},
		{`3 * "ab"`, "ababab"},
		{`"ab" * 0`, ""},
		{`"ab" * -1`, ""},
		{`"abc"[0]`, "a"},
		{`"abc"[-1]`, "c"},
		{`"a" < "b"`, true},
		{`"abc" == "abc"`, true},
	}

	for _, tt := range tests {
		machine, _ := mustRun(t, "result = "+tt.expr+"\n")
		got := getVar(t, machine, "result")
		if got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.expr, tt.want, got)
		}
	}
}

func TestShortCircuit(t *testing.T) {
	// and/or yield operand values, and the right side must not be evaluated
	// when the left side decides.
	tests := []struct {
		expr string
		want any
	}{
		{"0 and boom()", int64(0)},
		{"1 or boom()", int64(1)},
		{`"" or "fallback"`, "fallback"},
		{"5 and 7", int64(7)},
		{"False or None", nil},
	}

	for _, tt := range tests {
		machine, _ := mustRun(t, "result = "+tt.expr+"\n")
		got := getVar(t, machine, "result")
		if got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.expr, tt.want, got)
		}
	}
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{"0", false},
		{"0.0", false},
		{`""`, false},
		{"[]", false},
		{"None", false},
		{"False", false},
		{"range(0)", false},
		{"1", true},
		{"-1", true},
		{`"x"`, true},
		{"[0]", true},
		{"range(1)", true},
	}

	for _, tt := range tests {
		machine, _ := mustRun(t, "result = not not ("+tt.expr+")\n")
		got := getVar(t, machine, "result")
		if got != tt.want {
			t.Errorf("%s: expected truthiness %v, got %v", tt.expr, tt.want, got)
		}
	}
}

func TestIfElifElse(t *testing.T) {
	source := `x = 0
if x > 0:
    sign = "positive"
elif x == 0:
    sign = "zero"
else:
    sign = "negative"
`
	machine, _ := mustRun(t, source)
	if got := getVar(t, machine, "sign"); got != "zero" {
		t.Errorf("expected sign=zero, got %v", got)
	}
}

func TestWhileLoop(t *testing.T) {
	source := `total = 0
n = 5
while n > 0:
    total += n
    n -= 1
`
	machine, _ := mustRun(t, source)
	if got := getVar(t, machine, "total"); got != int64(15) {
		t.Errorf("expected total=15, got %v", got)
	}
}

func TestBreakContinue(t *testing.T) {
	source := `found = []
for i in range(10):
    if i % 2 == 0:
        continue
    if i > 6:
        break
    found.append(i)
`
	machine, _ := mustRun(t, source)
	list := getVar(t, machine, "found").(*List)
	want := []int64{1, 3, 5}
	if len(list.Elements) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(list.Elements))
	}
	for i, w := range want {
		if list.Elements[i] != w {
			t.Errorf("found[%d]: expected %d, got %v", i, w, list.Elements[i])
		}
	}
}

func TestForOverString(t *testing.T) {
	_, output := mustRun(t, "for ch in \"abc\":\n    print(ch)\n")
	if output != "a\nb\nc\n" {
		t.Errorf("unexpected output: %q", output)
	}
}

func TestForLoopVariableLeaks(t *testing.T) {
	machine, _ := mustRun(t, "for i in range(3):\n    pass\n")
	if got := getVar(t, machine, "i"); got != int64(2) {
		t.Errorf("expected i=2 after loop, got %v", got)
	}
}

func TestNestedLoops(t *testing.T) {
	source := `pairs = 0
for i in range(3):
    for j in range(3):
        if j == 2:
            break
        pairs += 1
`
	machine, _ := mustRun(t, source)
	if got := getVar(t, machine, "pairs"); got != int64(6) {
		t.Errorf("expected pairs=6, got %v", got)
	}
}

func TestListAliasing(t *testing.T) {
	source := `a = [1, 2]
b = a
b.append(3)
n = len(a)
`
	machine, _ := mustRun(t, source)
	if got := getVar(t, machine, "n"); got != int64(3) {
		t.Errorf("expected aliased append to be visible, len=%v", got)
	}
}

func TestListIndexAssignment(t *testing.T) {
	source := `xs = [1, 2, 3]
xs[1] = 20
xs[-1] += 7
`
	machine, _ := mustRun(t, source)
	list := getVar(t, machine, "xs").(*List)
	if list.Elements[1] != int64(20) || list.Elements[2] != int64(10) {
		t.Errorf("unexpected list contents: %v", list.Elements)
	}
}

func TestFString(t *testing.T) {
	source := `name = "world"
n = 2
msg = f"hello {name} {n + 1}"
`
	machine, _ := mustRun(t, source)
	if got := getVar(t, machine, "msg"); got != "hello world 3" {
		t.Errorf("unexpected f-string result: %v", got)
	}
}

func TestMutationDuringIteration(t *testing.T) {
	// Iteration is indexed against the live list, so a bounded number of
	// appends inside the loop is observed.
	source := `xs = [1, 2]
for x in xs:
    if len(xs) < 4:
        xs.append(x)
n = len(xs)
`
	machine, _ := mustRun(t, source)
	if got := getVar(t, machine, "n"); got != int64(4) {
		t.Errorf("expected n=4, got %v", got)
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		source   string
		wantType ErrorType
		wantMsg  string
	}{
		{"print(missing)\n", ErrorUndefinedName, "name 'missing' is not defined"},
		{"x = 1 / 0\n", ErrorDivisionByZero, "division by zero"},
		{"x = 1 // 0\n", ErrorDivisionByZero, "integer division or modulo by zero"},
		{"x = 1 % 0\n", ErrorDivisionByZero, "integer division or modulo by zero"},
		{"x = 1.5 % 0\n", ErrorDivisionByZero, "float modulo"},
		{"x = [1][5]\n", ErrorIndexOutOfRange, "list index out of range"},
		{"x = \"ab\"[9]\n", ErrorIndexOutOfRange, "string index out of range"},
		{"x = 1 + \"a\"\n", ErrorTypeMismatch, "unsupported operand type(s) for +"},
		{"x = \"a\" + 1\n", ErrorTypeMismatch, "can only concatenate str"},
		{"x = -\"a\"\n", ErrorTypeMismatch, "bad operand type for unary -"},
		{"x = 1 < \"a\"\n", ErrorTypeMismatch, "'<' not supported between instances of 'int' and 'str'"},
		{"x = 5\nx[0] = 1\n", ErrorTypeMismatch, "does not support item assignment"},
		{"x = 5\ny = x[0]\n", ErrorTypeMismatch, "'int' object is not subscriptable"},
		{"for x in 5:\n    pass\n", ErrorTypeMismatch, "'int' object is not iterable"},
		{"x = 5\nx(1)\n", ErrorTypeMismatch, "'int' object is not callable"},
		{"xs = [1]\nxs.remove(9)\n", ErrorValue, "list.remove(x): x not in list"},
		{"xs = [1]\nxs.sort()\n", ErrorAttribute, "'list' object has no attribute 'sort'"},
		{"y += 1\n", ErrorUndefinedName, "name 'y' is not defined"},
	}

	for _, tt := range tests {
		_, _, err := runSource(t, tt.source)
		if err == nil {
			t.Errorf("%q: expected a runtime error", tt.source)
			continue
		}
		rerr, ok := err.(*RuntimeError)
		if !ok {
			t.Errorf("%q: expected *RuntimeError, got %T", tt.source, err)
			continue
		}
		if rerr.Type != tt.wantType {
			t.Errorf("%q: expected error type %s, got %s", tt.source, tt.wantType, rerr.Type)
		}
		if !strings.Contains(rerr.Message, tt.wantMsg) {
			t.Errorf("%q: expected message containing %q, got %q", tt.source, tt.wantMsg, rerr.Message)
		}
	}
}

func TestErrorCarriesLine(t *testing.T) {
	_, _, err := runSource(t, "x = 1\ny = 2\nz = missing\n")
	rerr, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
	if rerr.Line != 3 {
		t.Errorf("expected line 3, got %d", rerr.Line)
	}
	if !strings.HasPrefix(rerr.Error(), "line 3:") {
		t.Errorf("expected line prefix in message, got %q", rerr.Error())
	}
}

func TestStepLimit(t *testing.T) {
	program, err := compiler.Compile("while True:\n    pass\n")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	machine := New(WithStepLimit(1000))
	runErr := machine.Run(program)
	rerr, ok := runErr.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %v", runErr)
	}
	if rerr.Type != ErrorStepLimit {
		t.Errorf("expected STEP_LIMIT, got %s", rerr.Type)
	}
}

func TestContextCancellation(t *testing.T) {
	program, err := compiler.Compile("while True:\n    x = 1\n")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	machine := New(WithContext(ctx), WithStepLimit(0))
	runErr := machine.Run(program)
	rerr, ok := runErr.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %v", runErr)
	}
	if rerr.Type != ErrorDeadline {
		t.Errorf("expected DEADLINE, got %s", rerr.Type)
	}
}

func TestBindingsSurviveFault(t *testing.T) {
	machine, _, err := runSource(t, "x = 10\ny = x / 0\n")
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	if got := getVar(t, machine, "x"); got != int64(10) {
		t.Errorf("expected pre-fault binding x=10 to survive, got %v", got)
	}
	if _, ok := machine.GlobalScope().Get("y"); ok {
		t.Error("y must not be bound after the faulting assignment")
	}
}

func TestBuiltinShadowing(t *testing.T) {
	// A user binding shadows the capability of the same name.
	source := `len = 5
x = len + 1
`
	machine, _ := mustRun(t, source)
	if got := getVar(t, machine, "x"); got != int64(6) {
		t.Errorf("expected x=6, got %v", got)
	}

	_, _, err := runSource(t, "len = 5\nlen(\"abc\")\n")
	rerr, ok := err.(*RuntimeError)
	if !ok || rerr.Type != ErrorTypeMismatch {
		t.Errorf("expected TYPE_ERROR calling a shadowed builtin, got %v", err)
	}
}

func TestBuiltinReference(t *testing.T) {
	// A capability can be bound to a new name and called through it.
	source := `p = print
p("hi")
`
	_, output := mustRun(t, source)
	if output != "hi\n" {
		t.Errorf("unexpected output: %q", output)
	}
}

func TestRepeatGuard(t *testing.T) {
	_, _, err := runSource(t, "x = \"a\" * 100000000\n")
	rerr, ok := err.(*RuntimeError)
	if !ok || rerr.Type != ErrorValue {
		t.Errorf("expected VALUE_ERROR for oversized repeat, got %v", err)
	}
}
