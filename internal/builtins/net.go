// Minimal WebSocket transport builtins over github.com/gorilla/websocket,
// wired per SPEC_FULL.md's DOMAIN STACK table. spec.md §1 names HTTP/
// WebSocket wrappers as an out-of-scope standard-library concern; this is
// the one concrete entry point that exercises the dependency so the
// builtin-registration interface (§6) has a real transport collaborator
// rather than a declared-but-unused one.
package builtins

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Schneewolf-Labs/hemlock/internal/env"
	"github.com/Schneewolf-Labs/hemlock/internal/runtime"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

// installNet registers ws_send_text(url, message): it dials url, sends
// message as one text frame, returns the first reply as a string and
// closes the connection. No connection object is exposed to scripts
// (spec.md §1: "standard-library modules... are not part of it").
func installNet(rt *runtime.Runtime, globalEnv *env.Environment) {
	dialer := websocket.DefaultDialer

	reg(rt, globalEnv, "ws_send_text", 2, false, func(args []value.Value) (value.Value, error) {
		if args[0].Kind != value.KindString || args[1].Kind != value.KindString {
			return value.Null, &value.TypeError{Msg: "ws_send_text expects (url, message)"}
		}
		url := args[0].Heap().(*value.StringObj).String()
		msg := args[1].Heap().(*value.StringObj).String()
		conn, _, err := dialer.Dial(url, http.Header{})
		if err != nil {
			return value.Null, err
		}
		defer conn.Close()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			return value.Null, err
		}
		_, reply, err := conn.ReadMessage()
		if err != nil {
			return value.Null, err
		}
		return wrap(value.NewStringBytes(reply)), nil
	})
}
