package interpreter

import (
	"context"

	"github.com/sandrolain/gocel/pkg/ast"
	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// evalSelect implements field selection, optional chaining, and the has()
// macro (spec §4.4.1, §4.4.3, §4.4.4). It is grounded on the teacher's
// eval_path.go evalPath, stripped of JSONata's array-auto-map/flatten rules
// (CEL has no implicit path-over-array broadcasting; `.` selects a single
// named field off a Map/Dynamic/Opaque receiver, full stop).
func (in *Interpreter) evalSelect(ctx context.Context, n *ast.Node, cctx *celctx.Context) (value.Value, error) {
	operand, err := in.eval(ctx, n.Operand, cctx)

	if n.IsHasMacro {
		return evalHas(operand, err, n.Field)
	}

	if err != nil {
		if n.Optional {
			return value.OptionalNone, nil
		}
		return value.Value{}, err
	}

	if n.Optional && operand.Kind() == value.KindOptional {
		if !operand.IsOptionalPresent() {
			return value.OptionalNone, nil
		}
		operand = operand.OptionalValue()
	}

	v, ferr := selectField(operand, n.Field)
	if ferr != nil {
		if n.Optional {
			return value.OptionalNone, nil
		}
		return value.Value{}, attachNode(ferr, n.ID)
	}
	if n.Optional {
		return value.OptionalOf(v), nil
	}
	return v, nil
}

// selectField implements the non-optional Select(e, field) contract of
// spec §4.4.1.
func selectField(operand value.Value, field string) (value.Value, error) {
	switch operand.Kind() {
	case value.KindMap:
		v, found, mismatch := operand.AsMap().Get(value.String(field))
		if mismatch || !found {
			return value.Value{}, cerrors.Newf(cerrors.NoSuchKey, "no such key: %s", field)
		}
		return v, nil
	case value.KindDynamic:
		v, ok := operand.AsDynamic().Field(field)
		if !ok {
			return value.Value{}, cerrors.Newf(cerrors.NoSuchField, "no such field: %s", field)
		}
		return v, nil
	case value.KindOpaque:
		o := operand.AsOpaque()
		if o.FieldFn == nil {
			return value.Value{}, cerrors.Newf(cerrors.NoSuchField, "opaque type %s exposes no fields", o.TypeName)
		}
		v, ok := o.FieldFn(field)
		if !ok {
			return value.Value{}, cerrors.Newf(cerrors.NoSuchField, "no such field: %s", field)
		}
		return v, nil
	default:
		return value.Value{}, cerrors.Newf(cerrors.NoSuchField, "select has no overload for %s", operand.Kind())
	}
}

// evalHas implements the has(e.f) macro (spec §4.4.4): a non-container
// scalar reports false rather than NoSuchField, and an error evaluating e
// itself still propagates.
func evalHas(operand value.Value, operandErr error, field string) (value.Value, error) {
	if operandErr != nil {
		return value.Value{}, operandErr
	}
	switch operand.Kind() {
	case value.KindMap:
		_, found, mismatch := operand.AsMap().Get(value.String(field))
		return value.Bool(found && !mismatch), nil
	case value.KindDynamic:
		_, ok := operand.AsDynamic().Field(field)
		return value.Bool(ok), nil
	case value.KindOpaque:
		o := operand.AsOpaque()
		if o.FieldFn == nil {
			return value.Bool(false), nil
		}
		_, ok := o.FieldFn(field)
		return value.Bool(ok), nil
	default:
		return value.Bool(false), nil
	}
}

// evalIndex implements Index(e, k) (spec §4.4.2) plus optional-index
// chaining (spec §4.4.3).
func (in *Interpreter) evalIndex(ctx context.Context, n *ast.Node, cctx *celctx.Context) (value.Value, error) {
	operand, err := in.eval(ctx, n.Operand, cctx)
	if err != nil {
		if n.Optional {
			return value.OptionalNone, nil
		}
		return value.Value{}, err
	}

	if n.Optional && operand.Kind() == value.KindOptional {
		if !operand.IsOptionalPresent() {
			return value.OptionalNone, nil
		}
		operand = operand.OptionalValue()
	}

	key, err := in.eval(ctx, n.Key, cctx)
	if err != nil {
		return value.Value{}, err
	}

	var v value.Value
	switch operand.Kind() {
	case value.KindList:
		v, err = value.IndexList(operand, key)
	case value.KindMap:
		v, err = value.IndexMap(operand, key)
	case value.KindString:
		err = cerrors.Newf(cerrors.NoSuchOverload, "string is not indexable")
	default:
		err = cerrors.Newf(cerrors.NoSuchOverload, "index has no overload for %s", operand.Kind())
	}

	if err != nil {
		if n.Optional {
			return value.OptionalNone, nil
		}
		return value.Value{}, attachNode(err, n.ID)
	}
	if n.Optional {
		return value.OptionalOf(v), nil
	}
	return v, nil
}
