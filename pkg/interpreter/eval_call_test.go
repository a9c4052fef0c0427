package interpreter

import (
	"context"
	"errors"
	"testing"

	"github.com/sandrolain/gocel/pkg/ast"
	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

func TestCallResolvesOverloadByArgKind(t *testing.T) {
	a := ast.NewArena()
	cctx := celctx.New()
	cctx.AddFunction("add", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindInt, value.KindInt},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Int(args[0].AsInt() + args[1].AsInt()), nil
		},
	})
	cctx.AddFunction("add", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindString, value.KindString},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.String(args[0].AsString() + args[1].AsString()), nil
		},
	})

	call := a.Alloc(ast.KindCall)
	call.Function = "add"
	call.Args = []*ast.Node{lit(a, value.Int(2)), lit(a, value.Int(3))}
	v, err := run(t, call, cctx)
	if err != nil || v.AsInt() != 5 {
		t.Fatalf("add(2,3): got %v, %v", v, err)
	}

	strCall := a.Alloc(ast.KindCall)
	strCall.Function = "add"
	strCall.Args = []*ast.Node{lit(a, value.String("foo")), lit(a, value.String("bar"))}
	v, err = run(t, strCall, cctx)
	if err != nil || v.AsString() != "foobar" {
		t.Fatalf("add(foo,bar): got %v, %v", v, err)
	}
}

func TestCallNoMatchingOverload(t *testing.T) {
	a := ast.NewArena()
	cctx := celctx.New()
	cctx.AddFunction("add", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindInt, value.KindInt},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Int(args[0].AsInt() + args[1].AsInt()), nil
		},
	})
	call := a.Alloc(ast.KindCall)
	call.Function = "add"
	call.Args = []*ast.Node{lit(a, value.Bool(true)), lit(a, value.Bool(false))}
	_, err := run(t, call, cctx)
	cerr, ok := err.(*cerrors.Error)
	if !ok || cerr.Kind != cerrors.NoSuchOverload {
		t.Fatalf("expected NoSuchOverload, got %v", err)
	}
}

func TestCallReceiverStyleDispatch(t *testing.T) {
	a := ast.NewArena()
	cctx := celctx.New()
	cctx.AddFunction("size", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindString},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Int(int64(len(args[0].AsString()))), nil
		},
	})
	call := a.Alloc(ast.KindCall)
	call.Function = "size"
	call.Target = lit(a, value.String("hello"))
	v, err := run(t, call, cctx)
	if err != nil || v.AsInt() != 5 {
		t.Fatalf("\"hello\".size(): got %v, %v", v, err)
	}
}

func TestCallWrapsHostError(t *testing.T) {
	a := ast.NewArena()
	cctx := celctx.New()
	boom := errors.New("boom")
	cctx.AddFunction("fail", &celctx.Overload{
		ArgTypes: nil,
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Value{}, boom
		},
	})
	call := a.Alloc(ast.KindCall)
	call.Function = "fail"
	_, err := run(t, call, cctx)
	cerr, ok := err.(*cerrors.Error)
	if !ok || cerr.Kind != cerrors.HostFunctionError {
		t.Fatalf("expected HostFunctionError, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped cause to unwrap to boom, got %v", cerr.Unwrap())
	}
}

func TestLazyOverloadSkipsUnneededArgument(t *testing.T) {
	a := ast.NewArena()
	cctx := celctx.New()
	evaluated := map[int]bool{}
	// firstNonNull(a, b) only evaluates b when a turns out to be null,
	// exercising the lazy-arg bridge's selective evaluation the way
	// short-circuiting || / && use it internally.
	cctx.AddFunction("firstNonNull", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindDynamic, value.KindDynamic},
		Lazy: func(ctx context.Context, args []*ast.Node, cctx *celctx.Context, eval celctx.Evaluator) (value.Value, error) {
			first, err := eval.Eval(ctx, args[0], cctx)
			evaluated[0] = true
			if err != nil {
				return value.Value{}, err
			}
			if first.Kind() != value.KindNull {
				return first, nil
			}
			second, err := eval.Eval(ctx, args[1], cctx)
			evaluated[1] = true
			return second, err
		},
	})

	failing := a.Alloc(ast.KindCall)
	failing.Function = "fail-if-evaluated"
	cctx.AddFunction("fail-if-evaluated", &celctx.Overload{
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			t.Fatal("second argument should never have been evaluated")
			return value.Value{}, nil
		},
	})

	call := a.Alloc(ast.KindCall)
	call.Function = "firstNonNull"
	call.Args = []*ast.Node{lit(a, value.Int(7)), failing}
	v, err := run(t, call, cctx)
	if err != nil || v.AsInt() != 7 {
		t.Fatalf("firstNonNull(7, <unevaluated>): got %v, %v", v, err)
	}
	if !evaluated[0] || evaluated[1] {
		t.Fatalf("expected only the first argument evaluated, got %v", evaluated)
	}
}

func TestLazyOverloadReceiverArgOrder(t *testing.T) {
	a := ast.NewArena()
	cctx := celctx.New()
	cctx.AddFunction("orElse", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindDynamic, value.KindDynamic},
		Lazy: func(ctx context.Context, args []*ast.Node, cctx *celctx.Context, eval celctx.Evaluator) (value.Value, error) {
			recv, err := eval.Eval(ctx, args[0], cctx)
			if err != nil {
				return value.Value{}, err
			}
			if recv.Kind() != value.KindNull {
				return recv, nil
			}
			return eval.Eval(ctx, args[1], cctx)
		},
	})
	call := a.Alloc(ast.KindCall)
	call.Function = "orElse"
	call.Target = lit(a, value.Null)
	call.Args = []*ast.Node{lit(a, value.String("fallback"))}
	v, err := run(t, call, cctx)
	if err != nil || v.AsString() != "fallback" {
		t.Fatalf("null.orElse(\"fallback\"): got %v, %v", v, err)
	}
}

func TestVariadicOverloadInCall(t *testing.T) {
	a := ast.NewArena()
	cctx := celctx.New()
	cctx.AddFunction("concat", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindString},
		Variadic: true,
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			out := ""
			for _, arg := range args {
				out += arg.AsString()
			}
			return value.String(out), nil
		},
	})
	call := a.Alloc(ast.KindCall)
	call.Function = "concat"
	call.Args = []*ast.Node{
		lit(a, value.String("a")),
		lit(a, value.String("b")),
		lit(a, value.String("c")),
	}
	v, err := run(t, call, cctx)
	if err != nil || v.AsString() != "abc" {
		t.Fatalf("concat(a,b,c): got %v, %v", v, err)
	}
}
