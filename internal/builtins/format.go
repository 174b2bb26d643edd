// Human-readable formatting builtins over github.com/dustin/go-humanize,
// wired per SPEC_FULL.md's DOMAIN STACK table.
package builtins

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Schneewolf-Labs/hemlock/internal/env"
	"github.com/Schneewolf-Labs/hemlock/internal/runtime"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

func installFormat(rt *runtime.Runtime, globalEnv *env.Environment) {
	reg(rt, globalEnv, "humanize_bytes", 1, false, func(args []value.Value) (value.Value, error) {
		if !args[0].Kind.IsNumeric() {
			return value.Null, &value.TypeError{Msg: "humanize_bytes expects a number"}
		}
		return wrap(value.NewString(humanize.Bytes(uint64(asSeconds(args[0]))))), nil
	})

	reg(rt, globalEnv, "humanize_time", 1, false, func(args []value.Value) (value.Value, error) {
		if !args[0].Kind.IsNumeric() {
			return value.Null, &value.TypeError{Msg: "humanize_time expects unix seconds"}
		}
		t := time.Unix(int64(asSeconds(args[0])), 0)
		return wrap(value.NewString(humanize.Time(t))), nil
	})

	reg(rt, globalEnv, "humanize_ordinal", 1, false, func(args []value.Value) (value.Value, error) {
		if !args[0].Kind.IsNumeric() {
			return value.Null, &value.TypeError{Msg: "humanize_ordinal expects a number"}
		}
		return wrap(value.NewString(humanize.Ordinal(int(asSeconds(args[0]))))), nil
	})
}
