package concurrency

import (
	"sync"
	"time"

	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

// ChannelObj is a bounded ring-buffer queue of Values with blocking
// send/receive (spec §4.7). Capacity 0 is a rendezvous channel: a send
// stores into the single-slot buffer, then blocks again until a receiver
// has actually drained it, rather than returning once room was merely
// found. Both waits share the notFull cond var, so every wakeup on it
// must be a Broadcast, not a Signal: a Signal could wake a sender still
// waiting for room instead of the one whose value was just drained.
type ChannelObj struct {
	value.Header

	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	buf      []value.Value
	capacity int
	head     int
	count    int
	closed   bool
	reg      *value.FreedRegistry
}

func NewChannel(reg *value.FreedRegistry, capacity int) *ChannelObj {
	c := &ChannelObj{Header: value.NewHeader(), capacity: capacity, reg: reg}
	if capacity > 0 {
		c.buf = make([]value.Value, capacity)
	} else {
		c.buf = make([]value.Value, 1) // rendezvous slot
	}
	c.notEmpty = sync.NewCond(&c.mu)
	c.notFull = sync.NewCond(&c.mu)
	return c
}

// Destroy releases any values still buffered when the channel is
// collected, preserving invariant C1 (retain-on-send, release-on-recv;
// an undrained value's retain is balanced here instead).
func (c *ChannelObj) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i < c.count; i++ {
		value.Release(c.reg, c.buf[(c.head+i)%len(c.buf)])
	}
	c.count = 0
}

func (c *ChannelObj) slotCapacity() int {
	if c.capacity > 0 {
		return c.capacity
	}
	return 1
}

// Send retains v, waits for room, stores it, and wakes a waiting
// receiver (spec §4.7). Fails immediately if the channel is closed.
func (c *ChannelObj) Send(v value.Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return &ConcurrencyError{Msg: "cannot send to closed channel"}
	}
	for c.count >= c.slotCapacity() && !c.closed {
		c.notFull.Wait()
	}
	if c.closed {
		return &ConcurrencyError{Msg: "cannot send to closed channel"}
	}
	value.Retain(v)
	tail := (c.head + c.count) % len(c.buf)
	c.buf[tail] = v
	c.count++
	c.notEmpty.Signal()
	if c.capacity == 0 {
		// Rendezvous: block until a receiver actually drains the slot
		// instead of merely finding room for it.
		for c.count > 0 && !c.closed {
			c.notFull.Wait()
		}
	}
	return nil
}

// Recv waits for an available item or a close, then takes ownership of
// the head item (transferring its retained reference to the caller).
// Returns Null when the channel is closed and drained.
func (c *ChannelObj) Recv() (value.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.count == 0 && !c.closed {
		c.notEmpty.Wait()
	}
	if c.count == 0 && c.closed {
		return value.Null, nil
	}
	v := c.buf[c.head]
	c.buf[c.head] = value.Null
	c.head = (c.head + 1) % len(c.buf)
	c.count--
	// Broadcast, not Signal: notFull is shared by two distinct waiters on
	// a rendezvous (capacity-0) channel — a sender waiting for room and a
	// sender waiting for its already-stored value to be drained. Signal
	// can wake the wrong one and park the other forever.
	c.notFull.Broadcast()
	return v, nil
}

// RecvTimeout is Recv with an optional timeout, returning Null on expiry
// (spec §5 "recv supports an optional timeout argument").
func (c *ChannelObj) RecvTimeout(d time.Duration) (value.Value, bool, error) {
	done := make(chan struct{})
	var v value.Value
	var err error
	go func() {
		v, err = c.Recv()
		close(done)
	}()
	select {
	case <-done:
		return v, true, err
	case <-time.After(d):
		return value.Null, false, nil
	}
}

// TrySend is the non-blocking variant: returns ok=false instead of
// waiting when the channel is full.
func (c *ChannelObj) TrySend(v value.Value) (ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, &ConcurrencyError{Msg: "cannot send to closed channel"}
	}
	if c.count >= c.slotCapacity() {
		return false, nil
	}
	value.Retain(v)
	tail := (c.head + c.count) % len(c.buf)
	c.buf[tail] = v
	c.count++
	c.notEmpty.Signal()
	return true, nil
}

// TryRecv is the non-blocking variant: returns ok=false instead of
// waiting when the channel is empty and open.
func (c *ChannelObj) TryRecv() (v value.Value, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count == 0 {
		if c.closed {
			return value.Null, true, nil
		}
		return value.Null, false, nil
	}
	v = c.buf[c.head]
	c.buf[c.head] = value.Null
	c.head = (c.head + 1) % len(c.buf)
	c.count--
	c.notFull.Broadcast()
	return v, true, nil
}

// Close is idempotent and wakes every waiter.
func (c *ChannelObj) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.notEmpty.Broadcast()
	c.notFull.Broadcast()
}

func (c *ChannelObj) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *ChannelObj) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

func (c *ChannelObj) Cap() int { return c.capacity }
