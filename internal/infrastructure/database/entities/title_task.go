package entities

import "time"

// Title task statuses.
const (
	TitleTaskQueued     = "queued"
	TitleTaskInProgress = "in_progress"
	TitleTaskCompleted  = "completed"
	TitleTaskFailed     = "failed"
)

// TitleTask represents the database schema for background title generation
// tasks. Workers claim rows with FOR UPDATE SKIP LOCKED.
type TitleTask struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	ChatID     string     `gorm:"type:uuid;index;not null"`
	UserID     string     `gorm:"type:varchar(64);not null"`
	Prompt     string     `gorm:"type:text;not null"`
	Status     string     `gorm:"type:varchar(20);index;not null;default:'queued'"`
	Attempts   int        `gorm:"not null;default:0"`
	LastError  *string    `gorm:"type:text"`
	QueuedAt   time.Time  `gorm:"index;not null"`
	StartedAt  *time.Time `gorm:"type:timestamp"`
	FinishedAt *time.Time `gorm:"type:timestamp"`
}

// TableName specifies the table name for TitleTask.
func (TitleTask) TableName() string {
	return "title_tasks"
}
