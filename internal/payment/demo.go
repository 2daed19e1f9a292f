package payment

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

//go:embed demo_history.json
var demoHistory []byte

// EnsureDemo seeds a few past payments when no history has been stored yet.
// It reports whether anything was written.
func (h *History) EnsureDemo(ctx context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ok, err := store.Exists(ctx, h.store, store.KeyPaymentHistory)
	if err != nil || ok {
		return false, err
	}
	var records []model.PaymentRecord
	if err := json.Unmarshal(demoHistory, &records); err != nil {
		return false, fmt.Errorf("failed to decode demo payments: %w", err)
	}
	if err := store.SaveList(ctx, h.store, store.KeyPaymentHistory, records); err != nil {
		return false, err
	}
	return true, nil
}
