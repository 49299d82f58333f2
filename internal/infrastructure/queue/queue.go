package queue

import (
	"context"
	"time"
)

// Task represents a queued title generation job.
type Task struct {
	ID       uint
	ChatID   string
	UserID   string
	Prompt   string
	Attempts int
	QueuedAt time.Time
}

// TaskQueue defines the interface for title task queue operations.
type TaskQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(ctx context.Context, chatID, userID, prompt string) error

	// Dequeue claims the next available task using SELECT FOR UPDATE SKIP
	// LOCKED; a claimed task is already marked in_progress
	Dequeue(ctx context.Context) (*Task, error)

	// MarkCompleted updates task status to completed
	MarkCompleted(ctx context.Context, taskID uint) error

	// MarkFailed updates task status to failed
	MarkFailed(ctx context.Context, taskID uint, err error) error

	// GetQueueDepth returns the number of queued tasks
	GetQueueDepth(ctx context.Context) (int64, error)
}
