package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFIFO(t *testing.T) {
	ctx := context.Background()
	q := NewMemory(4)

	require.NoError(t, q.Enqueue(ctx, NewTask(KindProcessVideo, 1)))
	require.NoError(t, q.Enqueue(ctx, NewTask(KindProcessVideo, 2)))

	first, err := q.Dequeue(ctx)
	require.NoError(t, err)
	second, err := q.Dequeue(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint(1), first.LessonID)
	assert.Equal(t, uint(2), second.LessonID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestMemoryFull(t *testing.T) {
	ctx := context.Background()
	q := NewMemory(1)

	require.NoError(t, q.Enqueue(ctx, NewTask(KindProcessVideo, 1)))
	assert.ErrorIs(t, q.Enqueue(ctx, NewTask(KindProcessVideo, 2)), ErrFull)
}

func TestMemoryDequeueHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewMemory(1).Dequeue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
