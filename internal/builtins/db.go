// SQL database builtins over database/sql, wired per SPEC_FULL.md's
// DOMAIN STACK table against the MySQL, PostgreSQL, and pure-Go SQLite
// drivers the teacher's go.mod already carries (mssql and the cgo sqlite
// driver are dropped as redundant — see DESIGN.md).
//
// Grounded on the teacher's internal/database/db_manager.go (a
// DBManager holding named *sql.DB connections behind a mutex-protected
// map); adapted here to a handle-table keyed by an opaque integer the
// script holds, since Hemlock has no native database Value kind and the
// core's Value union (spec §3) is deliberately closed to non-core
// collaborators' own object types.
package builtins

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Schneewolf-Labs/hemlock/internal/env"
	"github.com/Schneewolf-Labs/hemlock/internal/runtime"
	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

type dbHandles struct {
	mu   sync.Mutex
	next int64
	open map[int64]*sql.DB
}

func newDBHandles() *dbHandles { return &dbHandles{open: make(map[int64]*sql.DB)} }

func (h *dbHandles) put(db *sql.DB) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	h.open[h.next] = db
	return h.next
}

func (h *dbHandles) get(id int64) (*sql.DB, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	db, ok := h.open[id]
	return db, ok
}

func (h *dbHandles) drop(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.open, id)
}

func installDB(rt *runtime.Runtime, globalEnv *env.Environment) {
	handles := newDBHandles()

	reg(rt, globalEnv, "db_open", 2, false, func(args []value.Value) (value.Value, error) {
		driver, err := argStr0(args, 0)
		if err != nil {
			return value.Null, err
		}
		dsn, err := argStr0(args, 1)
		if err != nil {
			return value.Null, err
		}
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return value.Null, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return value.Null, err
		}
		return value.I64(handles.put(db)), nil
	})

	reg(rt, globalEnv, "db_close", 1, false, func(args []value.Value) (value.Value, error) {
		db, ok := handles.get(args[0].Int())
		if !ok {
			return value.Null, fmt.Errorf("db_close: unknown handle")
		}
		handles.drop(args[0].Int())
		return value.Null, db.Close()
	})

	reg(rt, globalEnv, "db_exec", 2, true, func(args []value.Value) (value.Value, error) {
		db, ok := handles.get(args[0].Int())
		if !ok {
			return value.Null, fmt.Errorf("db_exec: unknown handle")
		}
		query, err := argStr0(args, 1)
		if err != nil {
			return value.Null, err
		}
		params, err := sqlParams(args[2:])
		if err != nil {
			return value.Null, err
		}
		result, err := db.Exec(query, params...)
		if err != nil {
			return value.Null, err
		}
		affected, _ := result.RowsAffected()
		return value.I64(affected), nil
	})

	reg(rt, globalEnv, "db_query", 2, true, func(args []value.Value) (value.Value, error) {
		db, ok := handles.get(args[0].Int())
		if !ok {
			return value.Null, fmt.Errorf("db_query: unknown handle")
		}
		query, err := argStr0(args, 1)
		if err != nil {
			return value.Null, err
		}
		params, err := sqlParams(args[2:])
		if err != nil {
			return value.Null, err
		}
		rows, err := db.Query(query, params...)
		if err != nil {
			return value.Null, err
		}
		defer rows.Close()
		cols, err := rows.Columns()
		if err != nil {
			return value.Null, err
		}
		result := value.NewArray(rt.Reg)
		for rows.Next() {
			scanTargets := make([]interface{}, len(cols))
			scanVals := make([]interface{}, len(cols))
			for i := range scanTargets {
				scanTargets[i] = &scanVals[i]
			}
			if err := rows.Scan(scanTargets...); err != nil {
				return value.Null, err
			}
			obj := value.NewObject(rt.Reg, "")
			for i, col := range cols {
				cv := sqlValueToHemlock(scanVals[i])
				obj.Set(col, cv)
				value.Release(rt.Reg, cv)
			}
			rowVal := value.FromHeap(value.KindObject, obj)
			value.Retain(rowVal)
			result.Push(rowVal)
			value.Release(rt.Reg, rowVal)
		}
		out := value.FromHeap(value.KindArray, result)
		value.Retain(out)
		return out, nil
	})
}

func argStr0(args []value.Value, idx int) (string, error) {
	if idx >= len(args) || args[idx].Kind != value.KindString {
		return "", &value.TypeError{Msg: "expected a string argument"}
	}
	return args[idx].Heap().(*value.StringObj).String(), nil
}

func sqlParams(args []value.Value) ([]interface{}, error) {
	out := make([]interface{}, len(args))
	for i, a := range args {
		switch {
		case a.Kind == value.KindString:
			out[i] = a.Heap().(*value.StringObj).String()
		case a.Kind.IsInteger():
			out[i] = a.Int()
		case a.Kind.IsFloat():
			out[i] = a.Float()
		case a.Kind == value.KindBool:
			out[i] = a.Bool()
		case a.Kind == value.KindNull:
			out[i] = nil
		default:
			return nil, &value.TypeError{Msg: "unsupported SQL parameter type " + a.Kind.String()}
		}
	}
	return out, nil
}

func sqlValueToHemlock(raw interface{}) value.Value {
	switch v := raw.(type) {
	case nil:
		return value.Null
	case []byte:
		s := value.NewString(string(v))
		val := value.FromHeap(value.KindString, s)
		value.Retain(val)
		return val
	case string:
		s := value.NewString(v)
		val := value.FromHeap(value.KindString, s)
		value.Retain(val)
		return val
	case int64:
		return value.I64(v)
	case float64:
		return value.F64(v)
	case bool:
		return value.Bool(v)
	default:
		s := value.NewString(fmt.Sprintf("%v", v))
		val := value.FromHeap(value.KindString, s)
		value.Retain(val)
		return val
	}
}
