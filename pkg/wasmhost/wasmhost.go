// Package wasmhost registers CEL host functions (spec §4.6 "host
// callables") whose implementation is a compiled WASM module run through
// wazero rather than native Go. The teacher's go.mod declares a dependency
// on wazero but never imports it; no in-pack file shows how the teacher
// intended to use it, so this package is wired directly against wazero's
// own public runtime/api surface.
//
// This is deliberately not a CEL-to-WASM JIT: gocel's interpreter keeps
// tree-walking the AST exactly as it does for any other overload. wazero
// only supplies the implementation body of individual host functions,
// chosen by the embedder when registering them.
package wasmhost

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/cerrors"
	"github.com/sandrolain/gocel/pkg/value"
)

// Host owns one wazero Runtime and the WASM modules instantiated against
// it. A Host outlives any single evaluation and should be closed once,
// typically at program shutdown.
type Host struct {
	runtime wazero.Runtime
}

// NewHost creates a Host with a fresh wazero Runtime.
func NewHost(ctx context.Context) *Host {
	return &Host{runtime: wazero.NewRuntime(ctx)}
}

// Close releases the underlying wazero Runtime and every module
// instantiated through it.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

// supportedMarshalKind reports the CEL value kinds this adapter knows how to
// marshal to/from wazero's raw uint64 call convention (spec §4.6 scopes
// host functions to whatever the embedder's runtime can represent; gocel's
// WASM adapter covers the numeric kinds WASM's own value types cover
// directly, i64 and f64, rather than attempting a general marshaling
// scheme for composite values).
func supportedMarshalKind(k value.Kind) bool {
	return k == value.KindInt || k == value.KindUInt || k == value.KindDouble
}

// RegisterFunction compiles and instantiates wasmBytes, then registers
// celName as a CEL host function overload backed by the module's
// wasmExport function. argKinds and resultKind declare the CEL Kind of
// each parameter and of the return value; only KindInt, KindUInt and
// KindDouble are supported, matching WASM's i64/f64 value types.
func (h *Host) RegisterFunction(ctx context.Context, cctx *celctx.Context, celName string, wasmBytes []byte, wasmExport string, argKinds []value.Kind, resultKind value.Kind) error {
	for _, k := range argKinds {
		if !supportedMarshalKind(k) {
			return fmt.Errorf("wasmhost: %s: unsupported argument kind %s", celName, k)
		}
	}
	if !supportedMarshalKind(resultKind) {
		return fmt.Errorf("wasmhost: %s: unsupported result kind %s", celName, resultKind)
	}

	compiled, err := h.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return fmt.Errorf("wasmhost: compile module for %s: %w", celName, err)
	}
	mod, err := h.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		return fmt.Errorf("wasmhost: instantiate module for %s: %w", celName, err)
	}
	fn := mod.ExportedFunction(wasmExport)
	if fn == nil {
		return fmt.Errorf("wasmhost: module has no exported function %q", wasmExport)
	}

	argTypes := append([]value.Kind(nil), argKinds...)
	cctx.AddFunction(celName, &celctx.Overload{
		ArgTypes: argTypes,
		Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
			params, err := marshalArgs(args, argKinds)
			if err != nil {
				return value.Value{}, err
			}
			results, err := fn.Call(ctx, params...)
			if err != nil {
				return value.Value{}, cerrors.Newf(cerrors.HostFunctionError, "wasm call %s failed: %v", celName, err)
			}
			return unmarshalResult(results, resultKind, celName)
		},
	})
	return nil
}

func marshalArgs(args []value.Value, kinds []value.Kind) ([]uint64, error) {
	out := make([]uint64, len(args))
	for i, a := range args {
		switch kinds[i] {
		case value.KindInt:
			out[i] = api.EncodeI64(a.AsInt())
		case value.KindUInt:
			out[i] = a.AsUInt()
		case value.KindDouble:
			out[i] = api.EncodeF64(a.AsDouble())
		}
	}
	return out, nil
}

func unmarshalResult(results []uint64, kind value.Kind, celName string) (value.Value, error) {
	if len(results) == 0 {
		return value.Value{}, cerrors.Newf(cerrors.HostFunctionError, "wasm function %s returned no results", celName)
	}
	switch kind {
	case value.KindInt:
		return value.Int(int64(results[0])), nil
	case value.KindUInt:
		return value.UInt(results[0]), nil
	case value.KindDouble:
		return value.Double(api.DecodeF64(results[0])), nil
	default:
		return value.Value{}, cerrors.Newf(cerrors.HostFunctionError, "wasmhost: unsupported result kind %s", kind)
	}
}
