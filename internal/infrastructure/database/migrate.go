package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"chat-server/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for the chat domain.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Chat{},
		&entities.Message{},
		&entities.Stream{},
		&entities.Vote{},
		&entities.Document{},
		&entities.Suggestion{},
		&entities.Project{},
		&entities.ProjectFile{},
		&entities.TitleTask{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
