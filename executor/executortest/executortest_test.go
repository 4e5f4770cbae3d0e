package executortest

import (
	"context"
	"testing"

	"github.com/caffeineduck/termite/language/python"
	"github.com/caffeineduck/termite/term"
)

func TestNew(t *testing.T) {
	exec := New(t)

	result := exec.Run(context.Background(), python.New(), `
host.kv_set(key = "k", value = 1)
[host.kv_get(key = "k"), type(host.time_now())]`, nil)
	if result.Error != nil {
		t.Fatalf("run failed: %v", result.Error)
	}
	want := term.Sequence{term.MakeInt(1), term.Bytes("float")}
	if !term.Equal(result.Value, want) {
		t.Errorf("expected %s, got %s", want, result.Value)
	}
}
