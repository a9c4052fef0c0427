package stdlib

import (
	"context"
	"testing"
	"time"

	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

func newCtx(t *testing.T, f Features) *celctx.Context {
	t.Helper()
	c := celctx.New()
	Register(c, f)
	return c
}

func call(t *testing.T, c *celctx.Context, name string, args ...value.Value) (value.Value, error) {
	t.Helper()
	set, ok := c.ResolveFunction(name)
	if !ok {
		t.Fatalf("function %q not registered", name)
	}
	overload, err := set.Resolve(args)
	if err != nil {
		return value.Value{}, err
	}
	return overload.Impl(context.Background(), args)
}

func TestArithmeticOperators(t *testing.T) {
	c := newCtx(t, Features{})

	v, err := call(t, c, "_+_", value.Int(2), value.Int(3))
	if err != nil || v.AsInt() != 5 {
		t.Fatalf("2+3: got %v, %v", v, err)
	}

	v, err = call(t, c, "_+_", value.String("foo"), value.String("bar"))
	if err != nil || v.AsString() != "foobar" {
		t.Fatalf("foo+bar: got %v, %v", v, err)
	}

	_, err = call(t, c, "_/_", value.Int(1), value.Int(0))
	cerr, ok := err.(*cerrors.Error)
	if !ok || cerr.Kind != cerrors.DivideByZero {
		t.Fatalf("1/0: expected DivideByZero, got %v", err)
	}
}

func TestComparisonAndEqualityOperators(t *testing.T) {
	c := newCtx(t, Features{})

	v, err := call(t, c, "_<_", value.Int(1), value.Double(2.5))
	if err != nil || !v.AsBool() {
		t.Fatalf("1 < 2.5: got %v, %v", v, err)
	}

	v, err = call(t, c, "_==_", value.Int(1), value.UInt(1))
	if err != nil || !v.AsBool() {
		t.Fatalf("1 == 1u: got %v, %v", v, err)
	}

	v, err = call(t, c, "_!=_", value.String("a"), value.Int(1))
	if err != nil || !v.AsBool() {
		t.Fatalf("\"a\" != 1: got %v, %v", v, err)
	}
}

func TestInOperator(t *testing.T) {
	c := newCtx(t, Features{})
	list := value.List([]value.Value{value.Int(1), value.Int(2), value.Int(3)})

	v, err := call(t, c, "_in_", value.Int(2), list)
	if err != nil || !v.AsBool() {
		t.Fatalf("2 in [1,2,3]: got %v, %v", v, err)
	}
	v, err = call(t, c, "_in_", value.Int(9), list)
	if err != nil || v.AsBool() {
		t.Fatalf("9 in [1,2,3]: got %v, %v", v, err)
	}
}

func TestConversions(t *testing.T) {
	c := newCtx(t, Features{})

	v, err := call(t, c, "int", value.String("42"))
	if err != nil || v.AsInt() != 42 {
		t.Fatalf("int(\"42\"): got %v, %v", v, err)
	}

	_, err = call(t, c, "int", value.String("not-a-number"))
	cerr, ok := err.(*cerrors.Error)
	if !ok || cerr.Kind != cerrors.ConversionError {
		t.Fatalf("int(\"not-a-number\"): expected ConversionError, got %v", err)
	}

	v, err = call(t, c, "type", value.Bool(true))
	if err != nil || v.AsString() != "bool" {
		t.Fatalf("type(true): got %v, %v", v, err)
	}
}

func TestStringBuiltins(t *testing.T) {
	c := newCtx(t, Features{})

	v, err := call(t, c, "size", value.String("héllo"))
	if err != nil || v.AsInt() != 5 {
		t.Fatalf("size(\"héllo\"): got %v, %v", v, err)
	}

	v, err = call(t, c, "contains", value.String("hello world"), value.String("wor"))
	if err != nil || !v.AsBool() {
		t.Fatalf("contains: got %v, %v", v, err)
	}

	v, err = call(t, c, "startsWith", value.String("hello"), value.String("he"))
	if err != nil || !v.AsBool() {
		t.Fatalf("startsWith: got %v, %v", v, err)
	}

	v, err = call(t, c, "endsWith", value.String("hello"), value.String("lo"))
	if err != nil || !v.AsBool() {
		t.Fatalf("endsWith: got %v, %v", v, err)
	}
}

func TestMatchesRequiresRegexFeature(t *testing.T) {
	c := newCtx(t, Features{Regex: false})
	if _, ok := c.ResolveFunction("matches"); ok {
		t.Fatal("matches should not be registered when Regex feature is off")
	}

	c = newCtx(t, Features{Regex: true})
	v, err := call(t, c, "matches", value.String("hello123"), value.String(`\d+`))
	if err != nil || !v.AsBool() {
		t.Fatalf("matches: got %v, %v", v, err)
	}
}

func TestMaxMin(t *testing.T) {
	c := newCtx(t, Features{})

	v, err := call(t, c, "max", value.Int(3), value.Int(7), value.Int(1))
	if err != nil || v.AsInt() != 7 {
		t.Fatalf("max(3,7,1): got %v, %v", v, err)
	}
	v, err = call(t, c, "min", value.Int(3), value.Int(7), value.Int(1))
	if err != nil || v.AsInt() != 1 {
		t.Fatalf("min(3,7,1): got %v, %v", v, err)
	}
	v, err = call(t, c, "max", value.List([]value.Value{value.Int(5), value.Int(2)}))
	if err != nil || v.AsInt() != 5 {
		t.Fatalf("max([5,2]): got %v, %v", v, err)
	}
}

func TestOptionalBuiltins(t *testing.T) {
	c := newCtx(t, Features{})

	v, err := call(t, c, "optional.of", value.Int(42))
	if err != nil || v.Kind() != value.KindOptional || !v.IsOptionalPresent() {
		t.Fatalf("optional.of(42): got %v, %v", v, err)
	}

	hv, err := call(t, c, "hasValue", v)
	if err != nil || !hv.AsBool() {
		t.Fatalf("hasValue: got %v, %v", hv, err)
	}

	none := value.OptionalOfNonZeroValue(value.Int(0))
	orResult, err := call(t, c, "orValue", none, value.Int(99))
	if err != nil || orResult.AsInt() != 99 {
		t.Fatalf("orValue default: got %v, %v", orResult, err)
	}

	orResult, err = call(t, c, "or", none, value.OptionalOf(value.Int(7)))
	if err != nil || !orResult.IsOptionalPresent() || orResult.OptionalValue().AsInt() != 7 {
		t.Fatalf("or fallback: got %v, %v", orResult, err)
	}

	_, err = call(t, c, "value", none)
	cerr, ok := err.(*cerrors.Error)
	if !ok || cerr.Kind != cerrors.InvalidArgument {
		t.Fatalf("value() on none: expected InvalidArgument, got %v", err)
	}
}

func TestDatetimeAccessorsGatedByTimeFeature(t *testing.T) {
	c := newCtx(t, Features{Time: false})
	if _, ok := c.ResolveFunction("getHours"); ok {
		t.Fatal("getHours should not be registered when Time feature is off")
	}

	c = newCtx(t, Features{Time: true})
	dur := value.Duration(90 * time.Minute)
	v, err := call(t, c, "getHours", dur)
	if err != nil || v.AsInt() != 1 {
		t.Fatalf("duration(90m).getHours(): got %v, %v", v, err)
	}

	ts := value.Timestamp(time.Date(2024, time.March, 15, 13, 30, 0, 0, time.UTC))
	v, err = call(t, c, "getMonth", ts)
	if err != nil || v.AsInt() != 2 {
		t.Fatalf("timestamp.getMonth() (0-based March): got %v, %v", v, err)
	}
	v, err = call(t, c, "getHours", ts)
	if err != nil || v.AsInt() != 13 {
		t.Fatalf("timestamp.getHours(): got %v, %v", v, err)
	}
}

func TestToJSONGatedByJSONFeature(t *testing.T) {
	c := newCtx(t, Features{JSON: false})
	if _, ok := c.ResolveFunction("toJSON"); ok {
		t.Fatal("toJSON should not be registered when JSON feature is off")
	}

	c = newCtx(t, Features{JSON: true})
	v, err := call(t, c, "toJSON", value.String("hi"))
	if err != nil || v.AsString() != `"hi"` {
		t.Fatalf(`toJSON("hi"): got %v, %v`, v, err)
	}
}

func TestToJSONProjectsCompositeValues(t *testing.T) {
	c := newCtx(t, Features{JSON: true})

	v, err := call(t, c, "toJSON", value.Int(42))
	if err != nil || v.AsString() != "42" {
		t.Fatalf("toJSON(42): got %v, %v", v, err)
	}

	list := value.List([]value.Value{value.Int(1), value.Int(2), value.Int(3)})
	v, err = call(t, c, "toJSON", list)
	if err != nil || v.AsString() != "[1,2,3]" {
		t.Fatalf("toJSON([1,2,3]): got %v, %v", v, err)
	}

	m, mErr := value.NewMap([]value.Value{value.String("a")}, []value.Value{value.Int(1)})
	if mErr != nil {
		t.Fatalf("NewMap: unexpected error: %v", mErr)
	}
	v, err = call(t, c, "toJSON", value.NewMapValue(m))
	if err != nil || v.AsString() != `{"a":1}` {
		t.Fatalf(`toJSON({"a":1}): got %v, %v`, v, err)
	}
}
