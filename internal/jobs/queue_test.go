package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	t.Parallel()

	t.Run("enqueue and receive", func(t *testing.T) {
		t.Parallel()

		q := NewQueue(2, testLogger())
		job := newFuncJob(nil)
		require.NoError(t, q.Enqueue(job))

		got := <-q.Channel()
		assert.Equal(t, job.ID(), got.ID())
	})

	t.Run("full queue", func(t *testing.T) {
		t.Parallel()

		q := NewQueue(1, testLogger())
		require.NoError(t, q.Enqueue(newFuncJob(nil)))

		err := q.Enqueue(newFuncJob(nil))
		assert.ErrorIs(t, err, ErrQueueFull)
		assert.Contains(t, err.Error(), "capacity 1")
	})

	t.Run("closed queue", func(t *testing.T) {
		t.Parallel()

		q := NewQueue(1, nil)
		q.Close()
		q.Close()

		assert.ErrorIs(t, q.Enqueue(newFuncJob(nil)), ErrQueueClosed)
		_, ok := <-q.Channel()
		assert.False(t, ok)
	})

	t.Run("non-positive size", func(t *testing.T) {
		t.Parallel()

		q := NewQueue(0, testLogger())
		assert.NoError(t, q.Enqueue(newFuncJob(nil)))
	})
}
