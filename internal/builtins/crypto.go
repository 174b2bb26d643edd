// Password hashing builtins over golang.org/x/crypto/bcrypt, wired per
// SPEC_FULL.md's DOMAIN STACK table.
package builtins

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/Schneewolf-Labs/hemlock/internal/env"
	"github.com/Schneewolf-Labs/hemlock/internal/runtime"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

func installCrypto(rt *runtime.Runtime, globalEnv *env.Environment) {
	reg(rt, globalEnv, "hash_password", 1, false, func(args []value.Value) (value.Value, error) {
		if args[0].Kind != value.KindString {
			return value.Null, &value.TypeError{Msg: "hash_password expects a string"}
		}
		plain := args[0].Heap().(*value.StringObj).String()
		hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err != nil {
			return value.Null, err
		}
		return wrap(value.NewString(string(hashed))), nil
	})

	reg(rt, globalEnv, "check_password", 2, false, func(args []value.Value) (value.Value, error) {
		if args[0].Kind != value.KindString || args[1].Kind != value.KindString {
			return value.Null, &value.TypeError{Msg: "check_password expects (hash, plaintext)"}
		}
		hashed := args[0].Heap().(*value.StringObj).String()
		plain := args[1].Heap().(*value.StringObj).String()
		err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
		return value.Bool(err == nil), nil
	})
}
