// Package stdlib registers the built-in function overloads of spec §4.7
// into a celctx.Context: arithmetic and comparison operators (exposed to
// the interpreter as ordinary KindCall nodes targeting internal names like
// "_+_"), size/contains/startsWith/endsWith/matches, the type conversions,
// duration/timestamp accessors, max/min, the optional.* family, and (under
// the json feature) toJSON.
//
// It is grounded on the teacher's pkg/evaluator/functions.go registry
// (initBuiltinFunctions building one map[string]*FunctionDef behind a
// sync.Once), generalized into per-name celctx.OverloadSet registration so
// that a single function name can carry more than one argument-kind
// signature, which JSONata's single-implementation-per-name registry never
// needed.
package stdlib

import "github.com/sandrolain/gocel/pkg/celctx"

// Features selects which optional standard-library surface is registered
// (spec §6.3). A feature left false is not merely no-op: the corresponding
// built-in is never added to the Context, so a call to it resolves to
// NoSuchOverload exactly as if it had never existed — the dispatcher at
// evalCall cannot tell an off-feature name apart from a genuinely
// undeclared one, so both raise the same error kind.
type Features struct {
	// Regex enables the `matches(regex)` string built-in.
	Regex bool
	// Time enables Duration/Timestamp arithmetic accessors (getHours,
	// getMinutes, ...). Core Duration/Timestamp +/- arithmetic and
	// comparisons are always available; Time only gates the accessor
	// built-ins, matching spec §6.3's "enables Duration/Timestamp
	// arithmetic and accessors" read narrowly to the calendar-accessor
	// surface that a host might reasonably want to strip for a sandboxed
	// subset.
	Time bool
	// JSON enables the `toJSON(x)` built-in, which projects x (including
	// Opaque/Dynamic host types) through `pkg/value`'s ToJSON machinery and
	// marshals the result to a JSON-text String.
	JSON bool
}

// AllFeatures enables every optional standard-library surface.
func AllFeatures() Features {
	return Features{Regex: true, Time: true, JSON: true}
}

// Register installs the standard library into cctx according to features.
// Call it once on a root Context before any inner scopes are derived from
// it (spec §4.2): function overload sets registered on a scope are visible
// to every descendant scope via Context.ResolveFunction's parent walk.
func Register(cctx *celctx.Context, features Features) {
	registerOperators(cctx)
	registerStringBuiltins(cctx, features)
	registerConversions(cctx)
	registerAggregateBuiltins(cctx)
	registerOptionalBuiltins(cctx)
	if features.Time {
		registerDatetimeAccessors(cctx)
	}
	if features.JSON {
		registerJSONBuiltins(cctx)
	}
}
