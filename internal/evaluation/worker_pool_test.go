package evaluation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	count *atomic.Int32
	err   error
}

func (j countingJob) Execute(context.Context) error {
	j.count.Add(1)
	return j.err
}

func TestWorkerPool(t *testing.T) {
	t.Run("Should execute submitted jobs", func(t *testing.T) {
		pool := NewWorkerPool(context.Background(), 2)
		defer pool.Close()

		var count atomic.Int32
		for i := 0; i < 10; i++ {
			var err error
			if i%2 == 0 {
				err = errors.New("boom")
			}
			require.NoError(t, pool.Submit(countingJob{count: &count, err: err}))
		}

		assert.Eventually(t, func() bool { return count.Load() == 10 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, 2, pool.Size())
	})

	t.Run("Should size from CPU count when unset", func(t *testing.T) {
		pool := NewWorkerPool(context.Background(), 0)
		defer pool.Close()
		assert.GreaterOrEqual(t, pool.Size(), 1)
	})

	t.Run("Should refuse jobs after close", func(t *testing.T) {
		pool := NewWorkerPool(context.Background(), 1)
		pool.Close()
		pool.Close()

		var count atomic.Int32
		assert.ErrorIs(t, pool.Submit(countingJob{count: &count}), context.Canceled)
	})
}
