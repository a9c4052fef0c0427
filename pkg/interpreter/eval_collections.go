package interpreter

import (
	"context"

	"github.com/sandrolain/gocel/pkg/ast"
	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// evalList evaluates a list literal, eliding any element marked optional
// that evaluates to Optional.none and unwrapping one that is present (spec
// §4.4.5 "List literals... support optional-element syntax").
func (in *Interpreter) evalList(ctx context.Context, n *ast.Node, cctx *celctx.Context) (value.Value, error) {
	items := make([]value.Value, 0, len(n.Elements))
	for i, el := range n.Elements {
		v, err := in.eval(ctx, el, cctx)
		if err != nil {
			return value.Value{}, err
		}
		if i < len(n.ElementOpts) && n.ElementOpts[i] {
			if v.Kind() != value.KindOptional {
				return value.Value{}, attachNode(optionalElementError(v), n.ID)
			}
			if !v.IsOptionalPresent() {
				continue
			}
			v = v.OptionalValue()
		}
		items = append(items, v)
	}
	return value.List(items), nil
}

// evalMap evaluates a map literal, eliding any entry whose key or value is
// marked optional and evaluates to Optional.none (spec §4.4.5).
func (in *Interpreter) evalMap(ctx context.Context, n *ast.Node, cctx *celctx.Context) (value.Value, error) {
	keys := make([]value.Value, 0, len(n.Entries))
	vals := make([]value.Value, 0, len(n.Entries))

	for _, entry := range n.Entries {
		k, err := in.eval(ctx, entry.Key, cctx)
		if err != nil {
			return value.Value{}, err
		}
		v, err := in.eval(ctx, entry.Value, cctx)
		if err != nil {
			return value.Value{}, err
		}
		if entry.Optional {
			elided := false
			if k.Kind() == value.KindOptional {
				if !k.IsOptionalPresent() {
					elided = true
				} else {
					k = k.OptionalValue()
				}
			}
			if v.Kind() == value.KindOptional {
				if !v.IsOptionalPresent() {
					elided = true
				} else {
					v = v.OptionalValue()
				}
			}
			if elided {
				continue
			}
		}
		keys = append(keys, k)
		vals = append(vals, v)
	}

	m, err := value.NewMap(keys, vals)
	if err != nil {
		return value.Value{}, attachNode(err, n.ID)
	}
	return value.NewMapValue(m), nil
}

func optionalElementError(v value.Value) error {
	return cerrors.Newf(cerrors.InvalidArgument, "optional-marked element did not evaluate to an optional, got %s", v.Kind())
}
