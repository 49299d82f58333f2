package stream

import (
	"context"
	"sync"
)

// MemoryRegistry is a single-process Registry. It backs tests and deployments
// without a shared transport; cross-instance resumption needs the Redis
// registry instead.
type MemoryRegistry struct {
	mu      sync.Mutex
	streams map[string]*memoryStream
}

// NewMemoryRegistry builds an empty in-process registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		streams: make(map[string]*memoryStream),
	}
}

type memoryStream struct {
	mu          sync.Mutex
	subscribers map[*memorySubscription]struct{}
	concluded   bool
}

// NewProducer registers streamID as live.
func (r *MemoryRegistry) NewProducer(_ context.Context, streamID string) (Producer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &memoryStream{subscribers: make(map[*memorySubscription]struct{})}
	r.streams[streamID] = s
	return &memoryProducer{registry: r, streamID: streamID, stream: s}, nil
}

// Attach taps a live stream; (nil, nil) when the stream is unknown or concluded.
func (r *MemoryRegistry) Attach(_ context.Context, streamID string) (Subscription, error) {
	r.mu.Lock()
	s, ok := r.streams[streamID]
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.concluded {
		return nil, nil
	}

	sub := &memorySubscription{
		stream: s,
		events: make(chan Event, subscriberBuffer),
	}
	s.subscribers[sub] = struct{}{}
	return sub, nil
}

const subscriberBuffer = 256

type memoryProducer struct {
	registry *MemoryRegistry
	streamID string
	stream   *memoryStream
	closed   bool
}

func (p *memoryProducer) Send(event Event) {
	p.stream.mu.Lock()
	defer p.stream.mu.Unlock()
	if p.stream.concluded {
		return
	}
	for sub := range p.stream.subscribers {
		select {
		case sub.events <- event:
		default:
			// Subscriber stopped draining; dropping beats stalling the turn.
		}
	}
}

func (p *memoryProducer) Close() {
	p.stream.mu.Lock()
	if p.closed {
		p.stream.mu.Unlock()
		return
	}
	p.closed = true
	p.stream.concluded = true
	for sub := range p.stream.subscribers {
		close(sub.events)
	}
	p.stream.subscribers = make(map[*memorySubscription]struct{})
	p.stream.mu.Unlock()

	p.registry.mu.Lock()
	delete(p.registry.streams, p.streamID)
	p.registry.mu.Unlock()
}

type memorySubscription struct {
	stream *memoryStream
	events chan Event
	once   sync.Once
}

func (s *memorySubscription) Events() <-chan Event {
	return s.events
}

func (s *memorySubscription) Close() {
	s.once.Do(func() {
		s.stream.mu.Lock()
		if _, ok := s.stream.subscribers[s]; ok {
			delete(s.stream.subscribers, s)
			close(s.events)
		}
		s.stream.mu.Unlock()
	})
}
