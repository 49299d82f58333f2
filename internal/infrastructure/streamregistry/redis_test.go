package streamregistry

import (
	"sync"
	"testing"

	"chat-server/internal/domain/stream"
)

func TestRedisSubscriptionCloseIsIdempotent(t *testing.T) {
	sub := &redisSubscription{
		events: make(chan stream.Event, 1),
		done:   make(chan struct{}),
	}

	// Concurrent closers must not race into a double close of done.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub.Close()
		}()
	}
	wg.Wait()

	select {
	case <-sub.done:
	default:
		t.Error("done channel should be closed")
	}

	// A late Close after the subscription ended stays a no-op.
	sub.Close()
}
