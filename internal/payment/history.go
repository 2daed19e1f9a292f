// Package payment settles table bills and keeps the payment history that
// reporting reads.
package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

// History is the append-only list of completed payments.
type History struct {
	store store.Store
	mu    sync.Mutex
}

// NewHistory creates a History over s.
func NewHistory(s store.Store) *History {
	return &History{store: s}
}

// Append adds rec to the end of the history.
func (h *History) Append(ctx context.Context, rec model.PaymentRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, err := store.LoadList[model.PaymentRecord](ctx, h.store, store.KeyPaymentHistory)
	if err != nil {
		return err
	}
	if err := store.SaveList(ctx, h.store, store.KeyPaymentHistory, append(records, rec)); err != nil {
		return fmt.Errorf("failed to append payment: %w", err)
	}
	return nil
}

// List returns every payment in the order it was taken.
func (h *History) List(ctx context.Context) ([]model.PaymentRecord, error) {
	return store.LoadList[model.PaymentRecord](ctx, h.store, store.KeyPaymentHistory)
}

// InRange returns payments with from <= timestamp < to. A zero bound is open.
func (h *History) InRange(ctx context.Context, from, to time.Time) ([]model.PaymentRecord, error) {
	records, err := h.List(ctx)
	if err != nil {
		return nil, err
	}
	return Window(records, from, to), nil
}

// Window filters records to the half-open range [from, to).
func Window(records []model.PaymentRecord, from, to time.Time) []model.PaymentRecord {
	out := make([]model.PaymentRecord, 0, len(records))
	for _, r := range records {
		if !from.IsZero() && r.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && !r.Timestamp.Before(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}
