package stdlib

import (
	"context"

	"github.com/sandrolain/gocel/pkg/celctx"
	"github.com/sandrolain/gocel/pkg/value"
)

// registerDatetimeAccessors wires the Duration/Timestamp calendar accessors
// of spec §4.7, gated by the `time` feature (§6.3). Timestamps are always
// interpreted in UTC; gocel does not implement the IANA-timezone-string
// overload CEL's own standard library accepts, since no timezone database
// dependency appears anywhere in the example corpus to ground one on.
func registerDatetimeAccessors(cctx *celctx.Context) {
	durAccessor := func(name string, fn func(value.Value) int64) {
		cctx.AddFunction(name, &celctx.Overload{
			ArgTypes: []value.Kind{value.KindDuration},
			Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
				return value.Int(fn(args[0])), nil
			},
		})
	}
	tsAccessor := func(name string, fn func(value.Value) int64) {
		cctx.AddFunction(name, &celctx.Overload{
			ArgTypes: []value.Kind{value.KindTimestamp},
			Impl: func(ctx context.Context, args []value.Value) (value.Value, error) {
				return value.Int(fn(args[0])), nil
			},
		})
	}

	durAccessor("getHours", func(v value.Value) int64 { return int64(v.AsDuration().Hours()) })
	durAccessor("getMinutes", func(v value.Value) int64 { return int64(v.AsDuration().Minutes()) })
	durAccessor("getSeconds", func(v value.Value) int64 { return int64(v.AsDuration().Seconds()) })
	durAccessor("getMilliseconds", func(v value.Value) int64 { return v.AsDuration().Milliseconds() })

	tsAccessor("getFullYear", func(v value.Value) int64 { return int64(v.AsTimestamp().Year()) })
	tsAccessor("getMonth", func(v value.Value) int64 { return int64(v.AsTimestamp().Month()) - 1 }) // 0-based, per CEL
	tsAccessor("getDate", func(v value.Value) int64 { return int64(v.AsTimestamp().Day()) })
	tsAccessor("getDayOfMonth", func(v value.Value) int64 { return int64(v.AsTimestamp().Day()) - 1 }) // 0-based
	tsAccessor("getDayOfWeek", func(v value.Value) int64 { return int64(v.AsTimestamp().Weekday()) })
	tsAccessor("getDayOfYear", func(v value.Value) int64 { return int64(v.AsTimestamp().YearDay()) - 1 })
	tsAccessor("getHours", func(v value.Value) int64 { return int64(v.AsTimestamp().Hour()) })
	tsAccessor("getMinutes", func(v value.Value) int64 { return int64(v.AsTimestamp().Minute()) })
	tsAccessor("getSeconds", func(v value.Value) int64 { return int64(v.AsTimestamp().Second()) })
	tsAccessor("getMilliseconds", func(v value.Value) int64 { return int64(v.AsTimestamp().Nanosecond() / 1_000_000) })
}
