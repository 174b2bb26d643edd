package value

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// FreedRegistry is the process-wide, mutex-protected set of addresses that
// were destructed by an explicit free() (§4.2, §9). release() consults it
// to avoid double-destruction when a manual free raced with (or preceded)
// the natural refcount decay to zero.
//
// Grounded on the mutex-guarded map pattern used throughout the teacher's
// concurrency module (sentra/internal/concurrency/concurrency.go, e.g.
// ConcurrencyModule.mu guarding WorkerPools/Semaphores).
type FreedRegistry struct {
	mu   sync.Mutex
	seen map[uintptr]bool
}

func NewFreedRegistry() *FreedRegistry {
	return &FreedRegistry{seen: make(map[uintptr]bool)}
}

func (r *FreedRegistry) mark(addr uintptr) {
	r.mu.Lock()
	r.seen[addr] = true
	r.mu.Unlock()
}

func (r *FreedRegistry) Contains(addr uintptr) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[addr]
}

// Retain is a no-op for primitives and increments the refcount for heap
// handles (invariant R2: atomic, safe across tasks).
func Retain(v Value) {
	if !v.Kind.isHeap() || v.obj == nil {
		return
	}
	atomic.AddInt32(&v.obj.header().refcount, 1)
}

// Release decrements the refcount and destructs at zero, unless the
// object's address is already present in the freed registry (it was
// destroyed early by an explicit free and this release is redundant).
func Release(reg *FreedRegistry, v Value) {
	if !v.Kind.isHeap() || v.obj == nil {
		return
	}
	obj := v.obj
	h := obj.header()
	if reg.Contains(h.addr) {
		return
	}
	if atomic.AddInt32(&h.refcount, -1) <= 0 {
		if markFreed(obj) {
			obj.Destroy()
		}
	}
}

// MemoryError reports a manual-free violation or other allocation failure.
type MemoryError struct{ Msg string }

func (e *MemoryError) Error() string { return e.Msg }

// Free implements manual free() for Buffer/Array/Object handles: permitted
// only when the argument is the single live reference (refcount <= 1).
// On success the object is destructed immediately and its address recorded
// in the registry so later Release calls on aliases become no-ops instead
// of double-destroying it.
//
// This supersedes the source's unconditional free(); see spec §4.2 and the
// open question in §9: a shared free is rejected with a memory error
// rather than silently zeroing a shared refcount.
func Free(reg *FreedRegistry, v Value) error {
	if !v.Kind.isHeap() || v.obj == nil {
		return &MemoryError{Msg: fmt.Sprintf("free: cannot free a %s value", v.Kind)}
	}
	obj := v.obj
	h := obj.header()
	if reg.Contains(h.addr) {
		return &MemoryError{Msg: "free: double free"}
	}
	if atomic.LoadInt32(&h.refcount) > 1 {
		return &MemoryError{Msg: fmt.Sprintf("free: cannot free a shared %s handle (refcount=%d)", v.Kind, h.refcount)}
	}
	if markFreed(obj) {
		obj.Destroy()
	}
	reg.mark(h.addr)
	return nil
}

// FreePtr frees a raw Ptr value (manual allocation, no refcounting). The
// caller's allocator is responsible for the actual deallocation; this just
// records the address so that accidental reuse can be diagnosed elsewhere.
func FreePtr(reg *FreedRegistry, v Value) error {
	if v.Kind != KindPtr {
		return &MemoryError{Msg: fmt.Sprintf("free: cannot free a %s value as a pointer", v.Kind)}
	}
	reg.mark(v.ptr.Addr)
	return nil
}
