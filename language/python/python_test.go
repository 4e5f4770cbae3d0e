package python

import (
	"context"
	"strings"
	"testing"

	"github.com/caffeineduck/termite/executor"
	"github.com/caffeineduck/termite/hostfunc"
	"github.com/caffeineduck/termite/term"
)

func newExecutor(t *testing.T) *executor.Executor {
	t.Helper()
	exec, err := executor.New(hostfunc.NewRegistry())
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}
	t.Cleanup(func() { exec.Close() })
	return exec
}

func TestPythonBasicExecution(t *testing.T) {
	exec := newExecutor(t)

	result := exec.Run(context.Background(), New(), `print("hello")`, nil)
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if strings.TrimSpace(result.Output) != "hello" {
		t.Errorf("expected 'hello', got %q", result.Output)
	}
}

func TestPythonRelaxations(t *testing.T) {
	exec := newExecutor(t)

	result := exec.Run(context.Background(), New(), `
total = 0
i = 0
while i < 5:
    i += 1
    total += i
for x in [10, 20]:
    total += x
def fact(n):
    return 1 if n <= 1 else n * fact(n - 1)
seen = set([1, 1, 2])
total + fact(5) + len(seen)
`, nil)
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if want := term.MakeInt(15 + 30 + 120 + 2); !term.Equal(result.Value, want) {
		t.Errorf("expected %s, got %s", want, result.Value)
	}
}

func TestPythonPredeclaredModules(t *testing.T) {
	exec := newExecutor(t)

	result := exec.Run(context.Background(), New(), `json.encode({"root": math.sqrt(16)})`, nil)
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if !term.Equal(result.Value, term.Bytes(`{"root":4.0}`)) {
		t.Errorf("unexpected value %s", result.Value)
	}
}

func TestPythonLoadBindsGlobally(t *testing.T) {
	exec := newExecutor(t)

	result := exec.Run(context.Background(), New(), `
load("math", "floor")
floor(2.7)
`, nil)
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if !term.Equal(result.Value, term.MakeInt(2)) {
		t.Errorf("expected 2, got %s", result.Value)
	}
}

func TestPythonAtomBuiltin(t *testing.T) {
	exec := newExecutor(t)

	result := exec.Run(context.Background(), New(), `atom("ok")`, nil)
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if !term.Equal(result.Value, term.OKSymbol()) {
		t.Errorf("expected :ok, got %s", result.Value)
	}
}

func TestPythonPredeclaredFrozen(t *testing.T) {
	lang := New()
	if _, ok := lang.Predeclared()["handler"]; !ok {
		t.Error("handler builtin not predeclared")
	}
	if lang.Packages() == nil {
		t.Error("expected a package catalog")
	}
}
