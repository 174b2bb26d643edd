package concurrency

import (
	"testing"
	"time"

	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

func TestChannelBufferedSendRecv(t *testing.T) {
	ch := NewChannel(value.NewFreedRegistry(), 2)
	if err := ch.Send(value.I64(1)); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if err := ch.Send(value.I64(2)); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if got := ch.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}
	v, err := ch.Recv()
	if err != nil || v.Int() != 1 {
		t.Fatalf("Recv() = %v, %v; want 1, nil", v, err)
	}
}

func TestChannelSendToClosedErrors(t *testing.T) {
	ch := NewChannel(value.NewFreedRegistry(), 1)
	ch.Close()
	if err := ch.Send(value.I64(1)); err == nil {
		t.Fatal("Send to a closed channel should error, got nil")
	}
}

func TestChannelRecvAfterCloseDrainsThenReturnsNull(t *testing.T) {
	ch := NewChannel(value.NewFreedRegistry(), 2)
	_ = ch.Send(value.I64(1))
	ch.Close()

	v, err := ch.Recv()
	if err != nil || v.Int() != 1 {
		t.Fatalf("Recv() buffered item = %v, %v; want 1, nil", v, err)
	}
	v, err = ch.Recv()
	if err != nil || !v.IsNull() {
		t.Fatalf("Recv() on drained closed channel = %v, %v; want Null, nil", v, err)
	}
}

func TestChannelTrySendFullReturnsFalse(t *testing.T) {
	ch := NewChannel(value.NewFreedRegistry(), 1)
	ok, err := ch.TrySend(value.I64(1))
	if err != nil || !ok {
		t.Fatalf("first TrySend = %v, %v; want true, nil", ok, err)
	}
	ok, err = ch.TrySend(value.I64(2))
	if err != nil || ok {
		t.Fatalf("TrySend on a full channel = %v, %v; want false, nil", ok, err)
	}
}

func TestChannelTryRecvEmptyReturnsFalse(t *testing.T) {
	ch := NewChannel(value.NewFreedRegistry(), 1)
	_, ok, err := ch.TryRecv()
	if err != nil || ok {
		t.Fatalf("TryRecv on an empty channel = %v, %v; want false, nil", ok, err)
	}
}

func TestChannelRendezvousSendBlocksUntilRecv(t *testing.T) {
	ch := NewChannel(value.NewFreedRegistry(), 0)
	done := make(chan struct{})
	go func() {
		_ = ch.Send(value.I64(7))
		close(done)
	}()

	// Give the sender a moment to reach the wait; it must not have
	// "completed" its send until a receiver actually drains the slot.
	select {
	case <-done:
		t.Fatal("rendezvous Send returned before any Recv happened")
	case <-time.After(20 * time.Millisecond):
	}

	v, err := ch.Recv()
	if err != nil || v.Int() != 7 {
		t.Fatalf("Recv() = %v, %v; want 7, nil", v, err)
	}
	<-done
}

// Regression: two concurrent senders on a rendezvous channel must both
// eventually return once each has a matching Recv, even though they both
// park on the same notFull cond var for two different reasons (waiting
// for room vs. waiting for their stored value to be drained).
func TestChannelRendezvousTwoSendersBothComplete(t *testing.T) {
	ch := NewChannel(value.NewFreedRegistry(), 0)
	done := make(chan struct{}, 2)
	go func() {
		_ = ch.Send(value.I64(1))
		done <- struct{}{}
	}()
	go func() {
		_ = ch.Send(value.I64(2))
		done <- struct{}{}
	}()

	seen := map[int64]bool{}
	for i := 0; i < 2; i++ {
		v, err := ch.Recv()
		if err != nil {
			t.Fatalf("Recv() error: %v", err)
		}
		seen[v.Int()] = true
	}
	if !seen[1] || !seen[2] {
		t.Fatalf("seen = %v, want both 1 and 2 received", seen)
	}

	timeout := time.After(2 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-timeout:
			t.Fatal("a sender never returned after its value was received")
		}
	}
}
