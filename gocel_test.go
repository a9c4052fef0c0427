package gocel

import (
	"context"
	"testing"
	"time"

	"github.com/sandrolain/gocel/pkg/cache"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/stdlib"
	"github.com/sandrolain/gocel/pkg/value"
)

func TestVersionIsNonEmpty(t *testing.T) {
	if Version() == "" {
		t.Fatal("expected a non-empty version string")
	}
}

func TestCompileAndExecuteLiteral(t *testing.T) {
	prog, err := Compile("1 + 2")
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	cctx := NewStandardContext(stdlib.AllFeatures())
	got, err := Execute(context.Background(), prog, cctx)
	if err != nil {
		t.Fatalf("unexpected execute error: %v", err)
	}
	if got.AsInt() != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
}

func TestCompileInvalidExpressionErrors(t *testing.T) {
	if _, err := Compile("1 +"); err == nil {
		t.Fatal("expected a compile error for a truncated expression")
	}
}

func TestMustCompilePanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustCompile to panic on a bad expression")
		}
	}()
	MustCompile("1 +")
}

func TestEvalWithVariable(t *testing.T) {
	cctx := NewStandardContext(stdlib.AllFeatures())
	cctx.AddVariable("x", value.Int(10))

	got, err := Eval(context.Background(), "x * 2", cctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsInt() != 20 {
		t.Fatalf("expected 20, got %v", got)
	}
}

func TestEvalWithCacheReusesCompiledProgram(t *testing.T) {
	c := cache.New(4)
	cctx := NewStandardContext(stdlib.AllFeatures())

	if _, err := Eval(context.Background(), "1 + 1", cctx, WithCache(c)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected the expression to be cached, got %d entries", c.Len())
	}
	if _, err := Eval(context.Background(), "1 + 1", cctx, WithCache(c)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected the second call to reuse the cached program, got %d entries", c.Len())
	}
}

func TestEvalWithTimeoutExceeded(t *testing.T) {
	cctx := NewStandardContext(stdlib.AllFeatures())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Eval(ctx, "1 + 1", cctx, WithTimeout(time.Nanosecond))
	if err == nil {
		t.Fatal("expected an error when the context is already cancelled")
	}
}

func TestEvalOptionalNamespacedCallEndToEnd(t *testing.T) {
	cctx := NewStandardContext(stdlib.AllFeatures())

	got, err := Eval(context.Background(), `optional.of(42).hasValue()`, cctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.AsBool() {
		t.Fatalf("expected optional.of(42).hasValue() to be true, got %v", got)
	}

	got, err = Eval(context.Background(), `optional.ofNonZeroValue(0).hasValue()`, cctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsBool() {
		t.Fatalf("expected optional.ofNonZeroValue(0).hasValue() to be false, got %v", got)
	}
}

func TestEvalMatchesWithRegexFeatureOffIsNoSuchOverload(t *testing.T) {
	cctx := NewStandardContext(stdlib.Features{Regex: false})

	_, err := Eval(context.Background(), `matches("hello123", "\\d+")`, cctx)
	if err == nil {
		t.Fatal("expected an error when Regex feature is off")
	}
	cerr, ok := err.(*cerrors.Error)
	if !ok || cerr.Kind != cerrors.NoSuchOverload {
		t.Fatalf("expected NoSuchOverload through Compile/Execute, got %v", err)
	}
}

func TestEvalPropagatesCompileError(t *testing.T) {
	cctx := NewStandardContext(stdlib.AllFeatures())
	if _, err := Eval(context.Background(), "1 +", cctx); err == nil {
		t.Fatal("expected Eval to surface a compile error")
	}
}

func TestEvalToJSONWithJSONFeatureOffIsNoSuchOverload(t *testing.T) {
	cctx := NewStandardContext(stdlib.Features{JSON: false})

	_, err := Eval(context.Background(), `toJSON([1, 2, 3])`, cctx)
	if err == nil {
		t.Fatal("expected an error when JSON feature is off")
	}
	cerr, ok := err.(*cerrors.Error)
	if !ok || cerr.Kind != cerrors.NoSuchOverload {
		t.Fatalf("expected NoSuchOverload through Compile/Execute, got %v", err)
	}
}

func TestEvalToJSONEndToEnd(t *testing.T) {
	cctx := NewStandardContext(stdlib.AllFeatures())

	got, err := Eval(context.Background(), `toJSON([1, 2, 3])`, cctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsString() != "[1,2,3]" {
		t.Fatalf(`expected "[1,2,3]", got %v`, got)
	}
}
