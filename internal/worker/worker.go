package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"chat-server/internal/domain/chat"
	"chat-server/internal/domain/retry"
	"chat-server/internal/infrastructure/metrics"
	"chat-server/internal/infrastructure/observability"
	"chat-server/internal/infrastructure/queue"
)

// Worker processes title generation tasks from the queue.
type Worker struct {
	id          int
	queue       queue.TaskQueue
	titles      *chat.TitleGenerator
	retrier     *retry.Executor
	taskTimeout time.Duration
	log         zerolog.Logger
	stopChan    chan struct{}
}

// NewWorker creates a new background worker.
func NewWorker(
	id int,
	queue queue.TaskQueue,
	titles *chat.TitleGenerator,
	taskTimeout time.Duration,
	log zerolog.Logger,
) *Worker {
	return &Worker{
		id:          id,
		queue:       queue,
		titles:      titles,
		retrier:     retry.NewExecutor(retry.DefaultPolicy()),
		taskTimeout: taskTimeout,
		log:         log.With().Int("worker_id", id).Str("component", "worker").Logger(),
		stopChan:    make(chan struct{}),
	}
}

// Start begins processing tasks from the queue.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Msg("worker started")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker stopped by context")
			return
		case <-w.stopChan:
			w.log.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			w.processNextTask(ctx)
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
}

func (w *Worker) processNextTask(ctx context.Context) {
	task, err := w.queue.Dequeue(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to dequeue task")
		return
	}

	if task == nil {
		return
	}

	w.log.Info().
		Uint("task_id", task.ID).
		Str("chat_id", task.ChatID).
		Int("attempts", task.Attempts).
		Msg("processing title task")

	taskCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	defer cancel()

	taskCtx, span := observability.StartTitleSpan(taskCtx, task.ChatID, task.ID)
	defer span.End()

	err = w.retrier.Execute(taskCtx, func(ctx context.Context, attempt int) error {
		if attempt > 0 {
			observability.AddRetryEvent(span, attempt, "title generation retry")
		}
		return w.titles.Generate(ctx, task.ChatID, task.Prompt)
	})
	if err != nil {
		observability.RecordError(span, err)
		metrics.RecordBackgroundJob("title", "failed")
		w.log.Error().Err(err).Uint("task_id", task.ID).Msg("title generation failed")
		if markErr := w.queue.MarkFailed(ctx, task.ID, err); markErr != nil {
			w.log.Error().Err(markErr).Uint("task_id", task.ID).Msg("failed to mark task as failed")
		}
		return
	}

	if err := w.queue.MarkCompleted(ctx, task.ID); err != nil {
		w.log.Error().Err(err).Uint("task_id", task.ID).Msg("failed to mark task as completed")
		return
	}

	metrics.RecordBackgroundJob("title", "completed")
	w.log.Info().Uint("task_id", task.ID).Msg("title task completed")
}
