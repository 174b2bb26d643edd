package value

import "sync/atomic"

// HeapObject is implemented by every reference-counted heap variant.
// Grounded on the Object header pattern in the teacher's NaN-boxing value
// representation (sentra/internal/vmregister/value.go), adapted from a
// GC-marked header to an atomic refcount + manual-free header since Hemlock
// has no collector: memory is reclaimed by refcounting plus explicit free.
type HeapObject interface {
	// header returns the header embedded by every concrete heap object.
	header() *Header
	// Destroy releases this object's owned sub-values and any native
	// resource (open file descriptor, etc). Called exactly once, either
	// when the refcount drops to zero or by an explicit free.
	Destroy()
}

// Header is embedded in every heap object. Addr is a stable identity used
// as the key into the manually-freed-pointer registry (§4.2); Go heap
// objects don't have addresses stable enough for that purpose across a
// moving GC, so Addr is a monotonic counter assigned at construction, not
// a real pointer value. Exported so concurrency's TaskObj/ChannelObj (which
// live in a different package to avoid an import cycle on goroutine
// plumbing) can embed it.
type Header struct {
	refcount int32
	freed    int32 // 0 or 1, set atomically
	addr     uintptr
}

func NewHeader() Header {
	return Header{addr: nextAddr()}
}

func (h *Header) header() *Header { return h }

var addrCounter uint64

func nextAddr() uintptr {
	return uintptr(atomic.AddUint64(&addrCounter, 1))
}

// Refcount returns the current live reference count.
func Refcount(obj HeapObject) int32 {
	return atomic.LoadInt32(&obj.header().refcount)
}

// Addr returns the object's manually-freed-pointer-registry identity.
func Addr(obj HeapObject) uintptr {
	return obj.header().addr
}

func IsFreed(obj HeapObject) bool {
	return atomic.LoadInt32(&obj.header().freed) == 1
}

func markFreed(obj HeapObject) bool {
	return atomic.CompareAndSwapInt32(&obj.header().freed, 0, 1)
}
