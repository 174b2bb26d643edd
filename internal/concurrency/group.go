package concurrency

import (
	"golang.org/x/sync/errgroup"

	"github.com/Schneewolf-Labs/hemlock/internal/value"
)

// JoinAll joins every task concurrently and returns their results in the
// same order, or the first error encountered (the other tasks are still
// allowed to finish; their results are simply not returned). This is an
// implementation detail behind the join_all builtin convenience (not part
// of spec §4.6's required surface, which only names single-task
// join/detach); grounded on golang.org/x/sync/errgroup for the
// fan-out-then-collect pattern instead of a hand-rolled WaitGroup plus
// mutex-guarded error slot.
func JoinAll(tasks []*TaskObj) ([]value.Value, error) {
	results := make([]value.Value, len(tasks))
	var g errgroup.Group
	for idx, t := range tasks {
		idx, t := idx, t
		g.Go(func() error {
			v, err := t.Join()
			if err != nil {
				return err
			}
			results[idx] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
