package concurrency

import (
	"errors"
	"testing"

	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

func TestTaskJoinReturnsResult(t *testing.T) {
	task := NewTask(value.NewFreedRegistry(), func() (value.Value, error) {
		return value.I64(42), nil
	})
	v, err := task.Join()
	if err != nil {
		t.Fatalf("Join error: %v", err)
	}
	if v.Int() != 42 {
		t.Errorf("Join() = %d, want 42", v.Int())
	}
}

func TestTaskJoinPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	task := NewTask(value.NewFreedRegistry(), func() (value.Value, error) {
		return value.Null, boom
	})
	if _, err := task.Join(); err != boom {
		t.Fatalf("Join error = %v, want %v", err, boom)
	}
}

func TestTaskSecondJoinErrors(t *testing.T) {
	task := NewTask(value.NewFreedRegistry(), func() (value.Value, error) {
		return value.I64(1), nil
	})
	if _, err := task.Join(); err != nil {
		t.Fatalf("first Join error: %v", err)
	}
	if _, err := task.Join(); err == nil {
		t.Fatal("second Join should error, got nil")
	}
}

func TestTaskDetachThenJoinErrors(t *testing.T) {
	task := NewTask(value.NewFreedRegistry(), func() (value.Value, error) {
		return value.I64(1), nil
	})
	task.Detach()
	if _, err := task.Join(); err == nil {
		t.Fatal("Join on a detached task should error, got nil")
	}
}

func TestJoinAllCollectsResultsInOrder(t *testing.T) {
	reg := value.NewFreedRegistry()
	tasks := []*TaskObj{
		NewTask(reg, func() (value.Value, error) { return value.I64(1), nil }),
		NewTask(reg, func() (value.Value, error) { return value.I64(2), nil }),
		NewTask(reg, func() (value.Value, error) { return value.I64(3), nil }),
	}
	results, err := JoinAll(tasks)
	if err != nil {
		t.Fatalf("JoinAll error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, want := range []int64{1, 2, 3} {
		if results[i].Int() != want {
			t.Errorf("results[%d] = %d, want %d", i, results[i].Int(), want)
		}
	}
}

func TestJoinAllPropagatesFirstError(t *testing.T) {
	reg := value.NewFreedRegistry()
	boom := errors.New("task failed")
	tasks := []*TaskObj{
		NewTask(reg, func() (value.Value, error) { return value.I64(1), nil }),
		NewTask(reg, func() (value.Value, error) { return value.Null, boom }),
	}
	if _, err := JoinAll(tasks); err == nil {
		t.Fatal("JoinAll should propagate the failing task's error, got nil")
	}
}
