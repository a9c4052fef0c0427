package stdlib

import (
	"context"
	"regexp"
	"strings"

	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// registerStringBuiltins wires size/contains/startsWith/endsWith and,
// when enabled, matches (spec §4.7, §6.3). Grounded on the teacher's
// fn_string.go receiver-style string built-ins (fnContains, etc.), which
// likewise take the receiver as args[0] of a FunctionDef.
func registerStringBuiltins(cctx *celctx.Context, features Features) {
	cctx.AddFunction("size", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindDynamic},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Size(args[0])
		},
	})

	cctx.AddFunction("contains", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindString, value.KindString},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Bool(strings.Contains(args[0].AsString(), args[1].AsString())), nil
		},
	})

	cctx.AddFunction("startsWith", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindString, value.KindString},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Bool(strings.HasPrefix(args[0].AsString(), args[1].AsString())), nil
		},
	})

	cctx.AddFunction("endsWith", &celctx.Overload{
		ArgTypes: []value.Kind{value.KindString, value.KindString},
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			return value.Bool(strings.HasSuffix(args[0].AsString(), args[1].AsString())), nil
		},
	})

	if features.Regex {
		cctx.AddFunction("matches", &celctx.Overload{
			ArgTypes: []value.Kind{value.KindString, value.KindString},
			Impl:     matchesImpl,
		})
	}
}

// matchesImpl implements `matches(regex)` (spec §4.7), compiling the
// pattern fresh on every call. gocel does not cache compiled patterns here;
// a host evaluating the same pattern in a hot loop is expected to hoist the
// regex into its own Opaque-wrapped host function instead.
func matchesImpl(ctx context.Context, args []value.Value) (value.Value, error) {
	re, err := regexp.Compile(args[1].AsString())
	if err != nil {
		return value.Value{}, cerrors.Newf(cerrors.InvalidArgument, "invalid regex %q: %v", args[1].AsString(), err)
	}
	return value.Bool(re.MatchString(args[0].AsString())), nil
}
