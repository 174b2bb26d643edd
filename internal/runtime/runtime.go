// Package runtime bundles the process-wide singletons spec §9 says must
// exist but be threaded explicitly rather than left as package-level
// statics: the manually-freed-pointer registry and the builtin
// registration table. A Runtime is created once at startup (by the CLI
// collaborator or by tests) and passed into the evaluator.
package runtime

import (
	"io"
	"os"
	"sync"

	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

// Builtin is the registration shape of spec §6: name, arity, a variadic
// flag, and the implementation. Arity is the minimum required argument
// count; Variadic permits more.
type Builtin struct {
	Name     string
	Arity    int
	Variadic bool
	Impl     func(rt *Runtime, args []value.Value) (value.Value, error)
}

// Registry is the mutex-protected, process-wide builtin table (spec §9).
// Grounded on the teacher's ModuleLoader.stdlib map guarded implicitly by
// single-threaded load order (sentra/internal/module/module.go); Hemlock
// tasks run concurrently, so lookups and registration here are
// RWMutex-guarded.
type Registry struct {
	mu    sync.RWMutex
	table map[string]*Builtin
}

func NewRegistry() *Registry {
	return &Registry{table: make(map[string]*Builtin)}
}

func (r *Registry) Register(b *Builtin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[b.Name] = b
}

func (r *Registry) Lookup(name string) (*Builtin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.table[name]
	return b, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.table))
	for n := range r.table {
		names = append(names, n)
	}
	return names
}

// Runtime is the single value threaded through the evaluator in place of
// true package-level statics (spec §9).
type Runtime struct {
	Reg      *value.FreedRegistry
	Builtins *Registry
	Stdout   io.Writer
	Stderr   io.Writer
}

func New() *Runtime {
	return &Runtime{
		Reg:      value.NewFreedRegistry(),
		Builtins: NewRegistry(),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}
