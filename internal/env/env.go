// Package env implements Hemlock's lexical environment: a linked stack of
// scopes mapping names to (value, const-flag) pairs (spec §4.3).
package env

import (
	"fmt"

	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

type binding struct {
	name  string
	value value.Value
	isConst bool
}

// Environment is one scope frame. Grounded on the teacher's ScopeFrame
// (sentra/internal/vm/vm.go: locals map[string]Value, parent *ScopeFrame),
// adapted from a map to an ordered slice so the resolver's (depth, slot)
// fast path (spec §4.3, §9) can index directly instead of hashing, and
// carrying the const flag and a FreedRegistry for release-on-pop.
type Environment struct {
	bindings []binding
	parent   *Environment
	reg      *value.FreedRegistry
}

// New creates a root environment (no parent), e.g. for a task's fresh
// top-level scope or the program's global scope.
func New(reg *value.FreedRegistry) *Environment {
	return &Environment{reg: reg}
}

// Child creates a new scope whose parent is e. Used for block entry,
// function calls, catch clauses, and task startup.
func (e *Environment) Child() *Environment {
	return &Environment{parent: e, reg: e.reg}
}

func (e *Environment) Parent() *Environment { return e.parent }

// UndefinedError signals lookup of an unknown identifier (spec §7).
type UndefinedError struct{ Name string }

func (err *UndefinedError) Error() string {
	return fmt.Sprintf("undefined variable '%s'", err.Name)
}

// ConstError signals assignment to a const binding, or a duplicate define
// in the same scope (spec §4.3, §7).
type ConstError struct{ Msg string }

func (err *ConstError) Error() string { return err.Msg }

// Define rejects duplicates in the innermost scope (invariant T2/T3): a
// name may be (re)defined only once per scope.
func (e *Environment) Define(name string, v value.Value, isConst bool) error {
	for _, b := range e.bindings {
		if b.name == name {
			return &ConstError{Msg: fmt.Sprintf("'%s' is already defined in this scope", name)}
		}
	}
	value.Retain(v)
	e.bindings = append(e.bindings, binding{name: name, value: v, isConst: isConst})
	return nil
}

// lookupLocal returns the index of name in this scope only, or -1.
func (e *Environment) lookupLocal(name string) int {
	for i, b := range e.bindings {
		if b.name == name {
			return i
		}
	}
	return -1
}

// Assign walks the parent chain looking for an existing binding. It
// rejects writes to const bindings. If no binding is found anywhere, it
// creates a new mutable binding in the innermost (calling) scope — the
// "implicit define" rule spec §4.3 requires for loop/async compatibility.
func (e *Environment) Assign(name string, v value.Value) error {
	for scope := e; scope != nil; scope = scope.parent {
		if i := scope.lookupLocal(name); i >= 0 {
			if scope.bindings[i].isConst {
				return &ConstError{Msg: fmt.Sprintf("cannot assign to const '%s'", name)}
			}
			old := scope.bindings[i].value
			value.Retain(v)
			scope.bindings[i].value = v
			value.Release(scope.reg, old)
			return nil
		}
	}
	value.Retain(v)
	e.bindings = append(e.bindings, binding{name: name, value: v, isConst: false})
	return nil
}

// Lookup walks parent links only (invariant T3) and fails if name is
// bound nowhere in the chain.
func (e *Environment) Lookup(name string) (value.Value, error) {
	for scope := e; scope != nil; scope = scope.parent {
		if i := scope.lookupLocal(name); i >= 0 {
			return scope.bindings[i].value, nil
		}
	}
	return value.Null, &UndefinedError{Name: name}
}

// IsConst reports whether name (found via the parent chain) is const.
func (e *Environment) IsConst(name string) (bool, error) {
	for scope := e; scope != nil; scope = scope.parent {
		if i := scope.lookupLocal(name); i >= 0 {
			return scope.bindings[i].isConst, nil
		}
	}
	return false, &UndefinedError{Name: name}
}

// AtSlot is the resolver-assisted fast path (spec §4.3, §9): walk depth
// parent links, then index bindings[slot] directly, skipping the name
// hash/compare. Both this and Lookup must agree on the same value for a
// correctly resolved identifier — exercised by eval's resolver-equivalence
// tests.
func (e *Environment) AtSlot(depth, slot int) (value.Value, error) {
	scope := e
	for i := 0; i < depth; i++ {
		if scope == nil {
			return value.Null, fmt.Errorf("env: resolver depth %d exceeds scope chain", depth)
		}
		scope = scope.parent
	}
	if scope == nil || slot < 0 || slot >= len(scope.bindings) {
		return value.Null, fmt.Errorf("env: resolver slot %d out of range at depth %d", slot, depth)
	}
	return scope.bindings[slot].value, nil
}

// AssignSlot is the fast-path counterpart to AtSlot, used for resolved
// simple assignment targets.
func (e *Environment) AssignSlot(depth, slot int, v value.Value) error {
	scope := e
	for i := 0; i < depth; i++ {
		if scope == nil {
			return fmt.Errorf("env: resolver depth %d exceeds scope chain", depth)
		}
		scope = scope.parent
	}
	if scope == nil || slot < 0 || slot >= len(scope.bindings) {
		return fmt.Errorf("env: resolver slot %d out of range at depth %d", slot, depth)
	}
	if scope.bindings[slot].isConst {
		return &ConstError{Msg: fmt.Sprintf("cannot assign to const '%s'", scope.bindings[slot].name)}
	}
	old := scope.bindings[slot].value
	value.Retain(v)
	scope.bindings[slot].value = v
	value.Release(scope.reg, old)
	return nil
}

// Pop releases every binding owned by this scope. Call at block/function
// exit (spec §3 "Scopes pop at block exit and release every binding").
func (e *Environment) Pop() {
	for _, b := range e.bindings {
		value.Release(e.reg, b.value)
	}
	e.bindings = nil
}
