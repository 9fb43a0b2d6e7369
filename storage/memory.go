package storage

import (
	"context"
	"sync"
)

// MemoryStorage keeps the entries in memory. It does not survive a
// restart, and is meant for tests and short-lived processes.
type MemoryStorage struct {
	mu             sync.RWMutex
	entries        map[string]string
	listeners      map[int]func(key string)
	nextListenerID int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries:   map[string]string{},
		listeners: map[int]func(key string){},
	}
}

func (s *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := checkContextStatus(ctx); err != nil {
		return "", false, err
	}
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *MemoryStorage) Set(ctx context.Context, key, value string) error {
	if err := checkContextStatus(ctx); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[key] = value
	listeners := s.currentListeners()
	s.mu.Unlock()

	notify(listeners, key)
	return nil
}

func (s *MemoryStorage) Remove(ctx context.Context, key string) error {
	if err := checkContextStatus(ctx); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	_, existed := s.entries[key]
	delete(s.entries, key)
	listeners := s.currentListeners()
	s.mu.Unlock()

	if existed {
		notify(listeners, key)
	}
	return nil
}

// Watch registers the callback until the context is cancelled.
func (s *MemoryStorage) Watch(ctx context.Context, callbackFn func(key string)) error {
	if err := checkContextStatus(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = callbackFn
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}()
	return nil
}

// Keys returns the keys currently stored.
func (s *MemoryStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

func (s *MemoryStorage) Close() error {
	return nil
}

func (s *MemoryStorage) currentListeners() []func(string) {
	listeners := make([]func(string), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	return listeners
}

func notify(listeners []func(string), key string) {
	for _, l := range listeners {
		l(key)
	}
}
