package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

type memoryStore struct {
	c *cache.Cache
}

// NewMemoryStore keeps everything in process memory. Useful for tests and
// throwaway demo instances.
func NewMemoryStore() Store {
	return &memoryStore{c: cache.New(cache.NoExpiration, 0)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, found := s.c.Get(key)
	if !found {
		return nil, ErrNotFound
	}
	return clone(v.([]byte)), nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte) error {
	s.c.Set(key, clone(value), cache.NoExpiration)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

type cachedStore struct {
	inner Store
	c     *cache.Cache
	ttl   time.Duration
}

// NewCachedStore puts a read-through, write-through cache in front of inner.
// Absent keys are not cached.
func NewCachedStore(inner Store, ttl time.Duration) Store {
	return &cachedStore{
		inner: inner,
		c:     cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (s *cachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if v, found := s.c.Get(key); found {
		return clone(v.([]byte)), nil
	}
	raw, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.c.Set(key, clone(raw), s.ttl)
	return raw, nil
}

func (s *cachedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.inner.Set(ctx, key, value); err != nil {
		s.c.Delete(key)
		return err
	}
	s.c.Set(key, clone(value), s.ttl)
	return nil
}

func (s *cachedStore) Delete(ctx context.Context, key string) error {
	s.c.Delete(key)
	return s.inner.Delete(ctx, key)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
