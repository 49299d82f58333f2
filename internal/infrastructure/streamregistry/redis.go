// Package streamregistry implements the resumable stream registry on redis
// pub/sub, so a client can reattach to an in-flight turn through any server
// instance.
package streamregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"chat-server/internal/domain/stream"
)

// concludedMarker is the control message that tells subscribers the producer
// finished; it never collides with event payloads, which are JSON objects.
const concludedMarker = "__concluded__"

// subscriberBuffer bounds the per-subscriber event channel.
const subscriberBuffer = 256

// RedisRegistry is a stream.Registry backed by redis pub/sub. A liveness key
// marks a stream as in flight; events fan out over a channel per stream.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisRegistry connects to redis and verifies connectivity.
func NewRedisRegistry(ctx context.Context, redisURL string, ttl time.Duration, log zerolog.Logger) (*RedisRegistry, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisRegistry{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "stream-registry").Logger(),
	}, nil
}

// Close releases the redis connection.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}

func livenessKey(streamID string) string {
	return "stream:" + streamID + ":live"
}

func eventsChannel(streamID string) string {
	return "stream:" + streamID + ":events"
}

// NewProducer marks the stream live and returns its publisher. The liveness
// key carries a TTL so a crashed producer cannot leave a stream live forever.
func (r *RedisRegistry) NewProducer(ctx context.Context, streamID string) (stream.Producer, error) {
	if err := r.client.Set(ctx, livenessKey(streamID), "1", r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("mark stream live: %w", err)
	}
	return &redisProducer{registry: r, streamID: streamID}, nil
}

// Attach subscribes to a live stream; (nil, nil) when the stream is unknown
// or already concluded.
func (r *RedisRegistry) Attach(ctx context.Context, streamID string) (stream.Subscription, error) {
	live, err := r.client.Exists(ctx, livenessKey(streamID)).Result()
	if err != nil {
		return nil, fmt.Errorf("check stream liveness: %w", err)
	}
	if live == 0 {
		return nil, nil
	}

	pubsub := r.client.Subscribe(ctx, eventsChannel(streamID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to stream: %w", err)
	}

	// The producer may have concluded between the liveness check and the
	// subscribe; re-check so the subscriber does not wait forever.
	live, err = r.client.Exists(ctx, livenessKey(streamID)).Result()
	if err != nil || live == 0 {
		pubsub.Close()
		if err != nil {
			return nil, fmt.Errorf("recheck stream liveness: %w", err)
		}
		return nil, nil
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan stream.Event, subscriberBuffer),
		done:   make(chan struct{}),
	}
	go sub.pump(r.log, streamID)
	return sub, nil
}

type redisProducer struct {
	registry *RedisRegistry
	streamID string
}

func (p *redisProducer) Send(event stream.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.registry.log.Error().Err(err).Str("stream_id", p.streamID).Msg("marshal stream event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.registry.client.Publish(ctx, eventsChannel(p.streamID), payload).Err(); err != nil {
		p.registry.log.Warn().Err(err).Str("stream_id", p.streamID).Msg("publish stream event")
	}
}

func (p *redisProducer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Order matters: drop liveness first so new attaches fall through to
	// backfill, then wake existing subscribers.
	if err := p.registry.client.Del(ctx, livenessKey(p.streamID)).Err(); err != nil {
		p.registry.log.Warn().Err(err).Str("stream_id", p.streamID).Msg("clear stream liveness")
	}
	if err := p.registry.client.Publish(ctx, eventsChannel(p.streamID), concludedMarker).Err(); err != nil {
		p.registry.log.Warn().Err(err).Str("stream_id", p.streamID).Msg("publish conclude marker")
	}
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan stream.Event
	done   chan struct{}
	once   sync.Once
}

func (s *redisSubscription) pump(log zerolog.Logger, streamID string) {
	defer close(s.events)

	ch := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload == concludedMarker {
				return
			}

			var event stream.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("stream_id", streamID).Msg("drop malformed stream event")
				continue
			}

			select {
			case s.events <- event:
			case <-s.done:
				return
			default:
				// Slow subscriber; drop rather than stall the pump.
			}
		}
	}
}

func (s *redisSubscription) Events() <-chan stream.Event {
	return s.events
}

func (s *redisSubscription) Close() {
	s.once.Do(func() {
		close(s.done)
		if s.pubsub != nil {
			s.pubsub.Close()
		}
	})
}

var _ stream.Registry = (*RedisRegistry)(nil)
