package store

import (
	"context"

	"restaurant-pos-backend/internal/events"
)

type observedStore struct {
	Store
	pub events.Publisher
}

// NewObservedStore publishes a StoreChanged event after every successful
// write or delete on inner.
func NewObservedStore(inner Store, pub events.Publisher) Store {
	return &observedStore{Store: inner, pub: pub}
}

func (s *observedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.Store.Set(ctx, key, value); err != nil {
		return err
	}
	s.pub.Publish(ctx, events.Event{Type: events.StoreChanged, Key: key})
	return nil
}

func (s *observedStore) Delete(ctx context.Context, key string) error {
	if err := s.Store.Delete(ctx, key); err != nil {
		return err
	}
	s.pub.Publish(ctx, events.Event{Type: events.StoreChanged, Key: key})
	return nil
}
