// strftime-style time formatting over github.com/ncruces/go-strftime,
// wired per SPEC_FULL.md's DOMAIN STACK table. clock/sleep themselves
// live in builtins.go (installCore); this file is formatting only.
package builtins

import (
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/Schneewolf-Labs/hemlock/internal/env"
	"github.com/Schneewolf-Labs/hemlock/internal/runtime"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

func installTime(rt *runtime.Runtime, globalEnv *env.Environment) {
	reg(rt, globalEnv, "strftime", 2, false, func(args []value.Value) (value.Value, error) {
		if args[0].Kind != value.KindString {
			return value.Null, &value.TypeError{Msg: "strftime expects a format string"}
		}
		if !args[1].Kind.IsNumeric() {
			return value.Null, &value.TypeError{Msg: "strftime expects unix seconds"}
		}
		layout := args[0].Heap().(*value.StringObj).String()
		t := time.Unix(int64(asSeconds(args[1])), 0).UTC()
		out, err := strftime.Format(layout, t)
		if err != nil {
			return value.Null, err
		}
		return wrap(value.NewString(out)), nil
	})
}
