// Package cerrors defines the structured error taxonomy shared by the
// parser, the value universe, and the interpreter (spec §7). It is a leaf
// package so that pkg/value, pkg/ast, and pkg/parser can all depend on it
// without creating import cycles with pkg/interpreter.
package cerrors

import "fmt"

// Kind is one error kind from the core taxonomy of spec §7.
type Kind string

const (
	Parse                   Kind = "Parse"
	NoSuchVariable          Kind = "NoSuchVariable"
	NoSuchFunction          Kind = "NoSuchFunction"
	NoSuchOverload          Kind = "NoSuchOverload"
	NoSuchKey               Kind = "NoSuchKey"
	NoSuchField             Kind = "NoSuchField"
	IndexOutOfBounds        Kind = "IndexOutOfBounds"
	DivideByZero            Kind = "DivideByZero"
	Overflow                Kind = "Overflow"
	ConversionError         Kind = "ConversionError"
	UnsupportedBinaryOp     Kind = "UnsupportedBinaryOperator"
	MaxRecursionDepth       Kind = "MaxRecursionDepth"
	InvalidArgument         Kind = "InvalidArgument"
	HostFunctionError       Kind = "HostFunctionError"
)

// Error is the single error type returned from every fallible operation in
// the core. It names the kind and (where known) the offending AST node id,
// matching the "exactly one ExecutionError naming the kind and the
// offending AST node id" contract of spec §7.
type Error struct {
	Kind    Kind
	Message string
	NodeID  int // -1 when not yet attached to a node
	Cause   error
}

// New creates an Error with no node id attached yet (NodeID is filled in by
// the interpreter as the error propagates back up through eval, mirroring
// how the teacher's *types.Error carries a Position set at the call site
// closest to the failure).
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, NodeID: -1}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// WithNode returns a copy of e with NodeID set, unless it is already set
// (the innermost failure keeps its own node id as it propagates).
func (e *Error) WithNode(id int) *Error {
	if e.NodeID >= 0 {
		return e
	}
	cp := *e
	cp.NodeID = id
	return &cp
}

// WithCause wraps an underlying error, used for HostFunctionError.
func (e *Error) WithCause(err error) *Error {
	cp := *e
	cp.Cause = err
	return &cp
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.NodeID >= 0 {
		return fmt.Sprintf("%s(node %d): %s", e.Kind, e.NodeID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, cerrors.NoSuchOverload) work against a bare Kind
// sentinel by comparing kinds rather than pointer identity.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinel returns a bare *Error of the given kind, suitable for use with
// errors.Is(err, cerrors.Sentinel(cerrors.Overflow)).
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind, NodeID: -1}
}
