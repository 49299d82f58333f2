package streamregistry

import (
	"context"

	"github.com/rs/zerolog"

	"chat-server/internal/config"
	"chat-server/internal/domain/stream"
)

// Resolve turns configuration into a tagged registry handle. No redis URL, or
// an unreachable redis, yields the unavailable state: turns stream directly
// and resume answers no-content.
func Resolve(ctx context.Context, cfg *config.Config, log zerolog.Logger) stream.Handle {
	if cfg.RedisURL == "" {
		log.Info().Msg("no redis configured, streams are not resumable")
		return stream.Unavailable()
	}

	registry, err := NewRedisRegistry(ctx, cfg.RedisURL, 2*cfg.TurnTimeout, log)
	if err != nil {
		log.Warn().Err(err).Msg("redis unreachable, streams are not resumable")
		return stream.Unavailable()
	}

	log.Info().Msg("resumable stream registry enabled")
	return stream.Available(registry)
}
