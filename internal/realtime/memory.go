package realtime

import (
	"context"
	"sync"
	"time"
)

// MemoryFeed delivers events inside one process. Handlers run on the
// publishing goroutine, so they must not block.
type MemoryFeed struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]Handler
	closed bool
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[string]map[uint64]Handler)}
}

func (f *MemoryFeed) Publish(ctx context.Context, subject string, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	f.mu.RLock()
	if f.closed {
		f.mu.RUnlock()
		return nil
	}
	handlers := make([]Handler, 0, len(f.subs[subject]))
	for _, h := range f.subs[subject] {
		handlers = append(handlers, h)
	}
	f.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
	return nil
}

func (f *MemoryFeed) Subscribe(subject string, h Handler) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	if f.subs[subject] == nil {
		f.subs[subject] = make(map[uint64]Handler)
	}
	f.subs[subject][id] = h

	return &memorySubscription{feed: f, subject: subject, id: id}, nil
}

func (f *MemoryFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.subs = make(map[string]map[uint64]Handler)
}

// SubscriberCount reports the live handlers on subject.
func (f *MemoryFeed) SubscriberCount(subject string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[subject])
}

type memorySubscription struct {
	feed    *MemoryFeed
	subject string
	id      uint64
	once    sync.Once
}

func (s *memorySubscription) Unsubscribe() error {
	s.once.Do(func() {
		s.feed.mu.Lock()
		defer s.feed.mu.Unlock()
		delete(s.feed.subs[s.subject], s.id)
		if len(s.feed.subs[s.subject]) == 0 {
			delete(s.feed.subs, s.subject)
		}
	})
	return nil
}
