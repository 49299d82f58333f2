package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"chat-server/internal/infrastructure/database/entities"
)

// PostgresQueue implements TaskQueue on the title_tasks table.
type PostgresQueue struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewPostgresQueue creates a new PostgreSQL-backed task queue.
func NewPostgresQueue(db *gorm.DB, log zerolog.Logger) *PostgresQueue {
	return &PostgresQueue{
		db:  db,
		log: log.With().Str("component", "postgres-queue").Logger(),
	}
}

// Enqueue inserts a queued title task for the given chat.
func (q *PostgresQueue) Enqueue(ctx context.Context, chatID, userID, prompt string) error {
	entity := entities.TitleTask{
		ChatID:   chatID,
		UserID:   userID,
		Prompt:   prompt,
		Status:   entities.TitleTaskQueued,
		QueuedAt: time.Now(),
	}

	if err := q.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return fmt.Errorf("enqueue title task: %w", err)
	}

	return nil
}

// EnqueueTitleTask satisfies chat.TitleEnqueuer.
func (q *PostgresQueue) EnqueueTitleTask(ctx context.Context, chatID, userID, prompt string) error {
	return q.Enqueue(ctx, chatID, userID, prompt)
}

// Dequeue claims the next queued task. The SKIP LOCKED select and the
// in_progress update run in one transaction so the row lock is held until the
// claim is recorded; a second worker skips the row instead of re-claiming it.
func (q *PostgresQueue) Dequeue(ctx context.Context) (*Task, error) {
	var entity entities.TitleTask

	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Raw("SELECT * FROM title_tasks WHERE status = ? ORDER BY queued_at ASC LIMIT 1 FOR UPDATE SKIP LOCKED", entities.TitleTaskQueued).
			Scan(&entity).Error; err != nil {
			return err
		}

		// Scan leaves the entity zeroed when no row matched.
		if entity.ID == 0 {
			return nil
		}

		now := time.Now()
		return tx.Model(&entities.TitleTask{}).
			Where("id = ?", entity.ID).
			Updates(map[string]interface{}{
				"status":     entities.TitleTaskInProgress,
				"attempts":   gorm.Expr("attempts + 1"),
				"started_at": now,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("dequeue task: %w", err)
	}

	if entity.ID == 0 {
		return nil, nil // No tasks available
	}

	task := &Task{
		ID:       entity.ID,
		ChatID:   entity.ChatID,
		UserID:   entity.UserID,
		Prompt:   entity.Prompt,
		Attempts: entity.Attempts + 1,
		QueuedAt: entity.QueuedAt,
	}

	return task, nil
}

// MarkCompleted updates the task status to completed.
func (q *PostgresQueue) MarkCompleted(ctx context.Context, taskID uint) error {
	now := time.Now()
	result := q.db.WithContext(ctx).
		Model(&entities.TitleTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":      entities.TitleTaskCompleted,
			"finished_at": now,
			"updated_at":  now,
		})

	if result.Error != nil {
		return fmt.Errorf("mark completed: %w", result.Error)
	}

	return nil
}

// MarkFailed updates the task status to failed and records the error.
func (q *PostgresQueue) MarkFailed(ctx context.Context, taskID uint, taskErr error) error {
	now := time.Now()
	message := taskErr.Error()

	result := q.db.WithContext(ctx).
		Model(&entities.TitleTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":      entities.TitleTaskFailed,
			"last_error":  message,
			"finished_at": now,
			"updated_at":  now,
		})

	if result.Error != nil {
		return fmt.Errorf("mark failed: %w", result.Error)
	}

	return nil
}

// GetQueueDepth returns the number of queued tasks.
func (q *PostgresQueue) GetQueueDepth(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&entities.TitleTask{}).
		Where("status = ?", entities.TitleTaskQueued).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("get queue depth: %w", err)
	}

	return count, nil
}
