package interpreter

import (
	"context"
	"testing"

	"github.com/sandrolain/gocel/pkg/ast"
	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

func lit(a *ast.Arena, v value.Value) *ast.Node {
	n := a.Alloc(ast.KindLiteral)
	n.Literal = v
	return n
}

func ident(a *ast.Arena, name string) *ast.Node {
	n := a.Alloc(ast.KindIdent)
	n.Name = name
	return n
}

func run(t *testing.T, root *ast.Node, cctx *celctx.Context) (value.Value, error) {
	t.Helper()
	if cctx == nil {
		cctx = celctx.New()
	}
	prog := ast.NewProgram(root, "<test>", ast.NewArena())
	return New().Execute(context.Background(), prog, cctx)
}

func TestLiteralAndIdent(t *testing.T) {
	a := ast.NewArena()
	cctx := celctx.New()
	cctx.AddVariable("x", value.Int(42))

	v, err := run(t, ident(a, "x"), cctx)
	if err != nil || v.AsInt() != 42 {
		t.Fatalf("got %v, %v", v, err)
	}

	_, err = run(t, ident(a, "missing"), cctx)
	cerr, ok := err.(*cerrors.Error)
	if !ok || cerr.Kind != cerrors.NoSuchVariable {
		t.Fatalf("expected NoSuchVariable, got %v", err)
	}
}

// erroringNode is a KindIdent referring to an unbound name, used to
// construct deliberately-erroring subexpressions for short-circuit tests.
func erroringNode(a *ast.Arena) *ast.Node {
	return ident(a, "__unbound__")
}

func logical(a *ast.Arena, op ast.LogicalOp, l, r *ast.Node) *ast.Node {
	n := a.Alloc(ast.KindLogical)
	n.LogicalOp = op
	n.LHS = l
	n.RHS = r
	return n
}

func TestShortCircuitAbsorption(t *testing.T) {
	a := ast.NewArena()

	// E || true == true
	v, err := run(t, logical(a, ast.LogicalOr, erroringNode(a), lit(a, value.Bool(true))), nil)
	if err != nil || !v.AsBool() {
		t.Errorf("E || true: got %v, %v", v, err)
	}
	// true || E == true
	v, err = run(t, logical(a, ast.LogicalOr, lit(a, value.Bool(true)), erroringNode(a)), nil)
	if err != nil || !v.AsBool() {
		t.Errorf("true || E: got %v, %v", v, err)
	}
	// E && false == false
	v, err = run(t, logical(a, ast.LogicalAnd, erroringNode(a), lit(a, value.Bool(false))), nil)
	if err != nil || v.AsBool() {
		t.Errorf("E && false: got %v, %v", v, err)
	}
	// false && E == false
	v, err = run(t, logical(a, ast.LogicalAnd, lit(a, value.Bool(false)), erroringNode(a)), nil)
	if err != nil || v.AsBool() {
		t.Errorf("false && E: got %v, %v", v, err)
	}
	// true && E propagates E's error
	_, err = run(t, logical(a, ast.LogicalAnd, lit(a, value.Bool(true)), erroringNode(a)), nil)
	if err == nil {
		t.Error("true && E should propagate E's error")
	}
}

func TestConditionalDoesNotEvaluateOtherBranch(t *testing.T) {
	a := ast.NewArena()
	n := a.Alloc(ast.KindConditional)
	n.Test = lit(a, value.Bool(true))
	n.Then = lit(a, value.Int(1))
	n.Else = erroringNode(a)

	v, err := run(t, n, nil)
	if err != nil || v.AsInt() != 1 {
		t.Fatalf("got %v, %v", v, err)
	}
}

func TestSelectMapAndHas(t *testing.T) {
	a := ast.NewArena()
	mm, err := value.NewMap([]value.Value{value.String("a")}, []value.Value{value.Int(1)})
	if err != nil {
		t.Fatalf("NewMap: unexpected error: %v", err)
	}
	m := value.NewMapValue(mm)

	sel := a.Alloc(ast.KindSelect)
	sel.Operand = lit(a, m)
	sel.Field = "a"
	v, err := run(t, sel, nil)
	if err != nil || v.AsInt() != 1 {
		t.Fatalf("select a: got %v, %v", v, err)
	}

	hasA := a.Alloc(ast.KindSelect)
	hasA.Operand = lit(a, m)
	hasA.Field = "a"
	hasA.IsHasMacro = true
	v, err = run(t, hasA, nil)
	if err != nil || !v.AsBool() {
		t.Fatalf("has(a): got %v, %v", v, err)
	}

	hasB := a.Alloc(ast.KindSelect)
	hasB.Operand = lit(a, m)
	hasB.Field = "b"
	hasB.IsHasMacro = true
	v, err = run(t, hasB, nil)
	if err != nil || v.AsBool() {
		t.Fatalf("has(b): got %v, %v", v, err)
	}
}

func TestOptionalSelectPropagation(t *testing.T) {
	a := ast.NewArena()
	mm, err := value.NewMap([]value.Value{value.String("a")}, []value.Value{value.Int(1)})
	if err != nil {
		t.Fatalf("NewMap: unexpected error: %v", err)
	}
	m := value.NewMapValue(mm)

	sel := a.Alloc(ast.KindSelect)
	sel.Operand = lit(a, m)
	sel.Field = "missing"
	sel.Optional = true

	v, err := run(t, sel, nil)
	if err != nil {
		t.Fatalf("optional select must not error: %v", err)
	}
	if v.Kind() != value.KindOptional || v.IsOptionalPresent() {
		t.Errorf("expected Optional.none, got %v", v)
	}
}

func TestIndexOutOfBounds(t *testing.T) {
	a := ast.NewArena()
	l := value.List([]value.Value{value.Int(1), value.Int(2)})
	idx := a.Alloc(ast.KindIndex)
	idx.Operand = lit(a, l)
	idx.Key = lit(a, value.Int(5))

	_, err := run(t, idx, nil)
	cerr, ok := err.(*cerrors.Error)
	if !ok || cerr.Kind != cerrors.IndexOutOfBounds {
		t.Fatalf("expected IndexOutOfBounds, got %v", err)
	}
}

func TestComprehensionAllEmptyRange(t *testing.T) {
	a := ast.NewArena()
	n := a.Alloc(ast.KindComprehension)
	n.Style = ast.StyleAll
	n.IterRange = lit(a, value.List(nil))
	n.IterVar = "@it"
	n.AccumVar = "@ac"
	n.Init = lit(a, value.Bool(true))
	n.LoopCond = ident(a, "@ac")
	n.LoopStep = ident(a, "@ac")
	n.Result = ident(a, "@ac")

	v, err := run(t, n, nil)
	if err != nil || !v.AsBool() {
		t.Fatalf("[].all(...) should be true, got %v, %v", v, err)
	}
}

func TestComprehensionExistsEmptyRange(t *testing.T) {
	a := ast.NewArena()
	n := a.Alloc(ast.KindComprehension)
	n.Style = ast.StyleExists
	n.IterRange = lit(a, value.List(nil))
	n.IterVar = "@it"
	n.AccumVar = "@ac"
	n.Init = lit(a, value.Bool(false))
	n.LoopCond = unaryNot(a, ident(a, "@ac"))
	n.LoopStep = ident(a, "@ac")
	n.Result = ident(a, "@ac")

	v, err := run(t, n, nil)
	if err != nil || v.AsBool() {
		t.Fatalf("[].exists(...) should be false, got %v, %v", v, err)
	}
}

func unaryNot(a *ast.Arena, operand *ast.Node) *ast.Node {
	n := a.Alloc(ast.KindUnary)
	n.UnaryOp = ast.UnaryNot
	n.Operand = operand
	return n
}

// TestComprehensionFilter builds [1,2,3].filter(x, x > 1) by hand using a
// Call node ("_>_") resolved against a host-registered overload, mirroring
// how the parser would desugar the predicate.
func TestComprehensionFilterBuildsExpectedList(t *testing.T) {
	a := ast.NewArena()
	cctx := celctx.New()
	cctx.AddFunction("_>_", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindInt, value.KindInt},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Bool(args[0].AsInt() > args[1].AsInt()), nil
		},
	})
	cctx.AddFunction("_+_", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindList, value.KindList},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			out := append([]value.Value{}, args[0].AsListItems()...)
			out = append(out, args[1].AsListItems()...)
			return value.List(out), nil
		},
	})

	gt := a.Alloc(ast.KindCall)
	gt.Function = "_>_"
	gt.Args = []*ast.Node{ident(a, "@it"), lit(a, value.Int(1))}

	appendOne := a.Alloc(ast.KindCall)
	appendOne.Function = "_+_"
	appendOne.Args = []*ast.Node{ident(a, "@ac"), listOf(a, ident(a, "@it"))}

	cond := a.Alloc(ast.KindConditional)
	cond.Test = gt
	cond.Then = appendOne
	cond.Else = ident(a, "@ac")

	n := a.Alloc(ast.KindComprehension)
	n.Style = ast.StyleFilter
	n.IterRange = lit(a, value.List([]value.Value{value.Int(1), value.Int(2), value.Int(3)}))
	n.IterVar = "@it"
	n.AccumVar = "@ac"
	n.Init = lit(a, value.List(nil))
	n.LoopCond = lit(a, value.Bool(true))
	n.LoopStep = cond
	n.Result = ident(a, "@ac")

	v, err := run(t, n, cctx)
	if err != nil {
		t.Fatal(err)
	}
	items := v.AsListItems()
	if len(items) != 2 || items[0].AsInt() != 2 || items[1].AsInt() != 3 {
		t.Errorf("filter(x, x>1) on [1,2,3]: got %v", items)
	}
}

func listOf(a *ast.Arena, elems ...*ast.Node) *ast.Node {
	n := a.Alloc(ast.KindList)
	n.Elements = elems
	return n
}

func TestCallUndeclaredFunctionIsNoSuchOverload(t *testing.T) {
	a := ast.NewArena()
	call := a.Alloc(ast.KindCall)
	call.Function = "undeclared"
	_, err := run(t, call, nil)
	cerr, ok := err.(*cerrors.Error)
	if !ok || cerr.Kind != cerrors.NoSuchOverload {
		t.Fatalf("expected NoSuchOverload, got %v", err)
	}
}

func TestMaxRecursionDepth(t *testing.T) {
	a := ast.NewArena()
	cctx := celctx.New()
	cctx.SetMaxRecursionDepth(3)

	// Nest unary-not three deep so the 4th Enter() (the value literal under
	// it) trips the limit.
	n := unaryNot(a, unaryNot(a, unaryNot(a, lit(a, value.Bool(true)))))
	_, err := run(t, n, cctx)
	cerr, ok := err.(*cerrors.Error)
	if !ok || cerr.Kind != cerrors.MaxRecursionDepth {
		t.Fatalf("expected MaxRecursionDepth, got %v", err)
	}
}
