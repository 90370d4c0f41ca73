package session

import (
    "context"
    "sync"
    "time"
)

// MemoryStore is an in-process TTL store used when no Redis is configured.
// A janitor goroutine evicts expired entries.
type MemoryStore struct {
    ttl    time.Duration
    mu     sync.RWMutex
    items  map[string]memoryItem
    stop   chan struct{}
    once   sync.Once
    now    func() time.Time
}

type memoryItem struct {
    sess    Session
    expires time.Time
}

// NewMemoryStore creates a store whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
    s := &MemoryStore{
        ttl:   ttl,
        items: make(map[string]memoryItem),
        stop:  make(chan struct{}),
        now:   time.Now,
    }
    go s.janitor()
    return s
}

func (s *MemoryStore) janitor() {
    interval := s.ttl / 4
    if interval < time.Second {
        interval = time.Second
    }
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-s.stop:
            return
        case <-ticker.C:
            now := s.now()
            s.mu.Lock()
            for id, it := range s.items {
                if now.After(it.expires) {
                    delete(s.items, id)
                }
            }
            s.mu.Unlock()
        }
    }
}

func (s *MemoryStore) Set(_ context.Context, sess Session) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.items[sess.ID] = memoryItem{sess: sess, expires: s.now().Add(s.ttl)}
    return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Session, bool, error) {
    s.mu.RLock()
    it, ok := s.items[id]
    s.mu.RUnlock()
    if !ok || s.now().After(it.expires) {
        return Session{}, false, nil
    }
    return it.sess, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    delete(s.items, id)
    return nil
}

func (s *MemoryStore) Close() error {
    s.once.Do(func() { close(s.stop) })
    return nil
}
