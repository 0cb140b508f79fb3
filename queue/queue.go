package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const KindProcessVideo = "process_video"

var ErrFull = errors.New("queue full")

type Task struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	LessonID   uint      `json:"lesson_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func NewTask(kind string, lessonID uint) Task {
	return Task{
		ID:         uuid.NewString(),
		Kind:       kind,
		LessonID:   lessonID,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Queue is a fire-and-forget task queue. Dequeue blocks until a task arrives or ctx ends.
type Queue interface {
	Enqueue(ctx context.Context, t Task) error
	Dequeue(ctx context.Context) (Task, error)
}

type Memory struct {
	ch chan Task
}

func NewMemory(size int) *Memory {
	if size <= 0 {
		size = 64
	}
	return &Memory{ch: make(chan Task, size)}
}

func (m *Memory) Enqueue(ctx context.Context, t Task) error {
	select {
	case m.ch <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrFull
	}
}

func (m *Memory) Dequeue(ctx context.Context) (Task, error) {
	select {
	case t := <-m.ch:
		return t, nil
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}
