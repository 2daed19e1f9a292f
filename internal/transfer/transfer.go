package transfer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

// Validate checks that a party can move from source to target. The checks
// run in a fixed order and the first failure is reported.
func Validate(source, target model.Table, reason string) error {
	if source.Status != model.StatusReserved && source.Status != model.StatusServing {
		return model.Violation(model.CodeTransferSourceStatus,
			"table %s is %s; only reserved or serving tables can be transferred", source.Code, source.Status)
	}
	if target.Status != model.StatusEmptyClean {
		return model.Violation(model.CodeTransferTargetStatus,
			"table %s is %s; the target must be empty and clean", target.Code, target.Status)
	}
	if !target.Active() {
		return model.Violation(model.CodeTransferInactive, "table %s is not in use", target.Code)
	}
	if target.Seats < source.Seats {
		return model.Violation(model.CodeTransferSeats,
			"table %s has %d seats, %d are needed", target.Code, target.Seats, source.Seats)
	}
	if source.ID == target.ID {
		return model.Violation(model.CodeTransferSameTable, "cannot transfer table %s to itself", source.Code)
	}
	if strings.TrimSpace(reason) == "" {
		return model.Invalid("reason", "transfer reason is required")
	}
	return nil
}

// EligibleTargets filters tables down to valid destinations for source,
// smallest fitting table first.
func EligibleTargets(source model.Table, tables []model.Table) []model.Table {
	out := make([]model.Table, 0)
	for _, t := range tables {
		if t.ID == source.ID || !t.Active() {
			continue
		}
		if t.Status == model.StatusEmptyClean && t.Seats >= source.Seats {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Seats != out[j].Seats {
			return out[i].Seats < out[j].Seats
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Log is the append-only record of table transfers.
type Log struct {
	store store.Store
	pub   events.Publisher
	log   logrus.FieldLogger
	now   func() time.Time

	mu sync.Mutex
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// NewLog creates a Log over s.
func NewLog(s store.Store, pub events.Publisher, log logrus.FieldLogger, opts ...Option) *Log {
	l := &Log{
		store: s,
		pub:   pub,
		log:   log.WithField("component", "transfer"),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends t, assigning an id and timestamp when missing.
func (l *Log) Record(ctx context.Context, t model.TableTransfer) (model.TableTransfer, error) {
	if strings.TrimSpace(t.Reason) == "" {
		return model.TableTransfer{}, model.Invalid("reason", "transfer reason is required")
	}
	if t.ID == "" {
		t.ID = model.NewID("transfer")
	}
	if t.TransferredAt.IsZero() {
		t.TransferredAt = l.now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	transfers, err := store.LoadList[model.TableTransfer](ctx, l.store, store.KeyTableTransfers)
	if err != nil {
		return model.TableTransfer{}, err
	}
	transfers = append(transfers, t)
	if err := store.SaveList(ctx, l.store, store.KeyTableTransfers, transfers); err != nil {
		return model.TableTransfer{}, fmt.Errorf("failed to record transfer: %w", err)
	}

	l.log.WithFields(logrus.Fields{
		"transfer_id": t.ID,
		"source":      t.SourceTableCode,
		"target":      t.TargetTableCode,
	}).Info("table transfer recorded")
	l.pub.Publish(ctx, events.Event{
		Type:     events.TableTransferred,
		EntityID: t.ID,
		Status:   string(t.SourceTableStatus),
		Reason:   t.Reason,
		Actor:    t.TransferredBy,
	})
	return t, nil
}

// Filter narrows a transfer listing. Zero fields are ignored; the time window
// is half-open [From, To).
type Filter struct {
	From    time.Time
	To      time.Time
	FloorID string
	TableID string
}

func (f Filter) match(t model.TableTransfer) bool {
	if !f.From.IsZero() && t.TransferredAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !t.TransferredAt.Before(f.To) {
		return false
	}
	if f.FloorID != "" && t.SourceFloorID != f.FloorID && t.TargetFloorID != f.FloorID {
		return false
	}
	if f.TableID != "" && t.SourceTableID != f.TableID && t.TargetTableID != f.TableID {
		return false
	}
	return true
}

// List returns matching transfers, newest first.
func (l *Log) List(ctx context.Context, f Filter) ([]model.TableTransfer, error) {
	transfers, err := store.LoadList[model.TableTransfer](ctx, l.store, store.KeyTableTransfers)
	if err != nil {
		return nil, err
	}
	out := make([]model.TableTransfer, 0, len(transfers))
	for _, t := range transfers {
		if f.match(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TransferredAt.After(out[j].TransferredAt) })
	return out, nil
}

// Get returns one transfer.
func (l *Log) Get(ctx context.Context, id string) (model.TableTransfer, error) {
	transfers, err := store.LoadList[model.TableTransfer](ctx, l.store, store.KeyTableTransfers)
	if err != nil {
		return model.TableTransfer{}, err
	}
	for _, t := range transfers {
		if t.ID == id {
			return t, nil
		}
	}
	return model.TableTransfer{}, fmt.Errorf("transfer %q: %w", id, model.ErrNotFound)
}

// Delete removes a transfer record. This is an administrative correction and
// does not touch the tables involved.
func (l *Log) Delete(ctx context.Context, id, actor string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	transfers, err := store.LoadList[model.TableTransfer](ctx, l.store, store.KeyTableTransfers)
	if err != nil {
		return err
	}
	kept := transfers[:0]
	found := false
	for _, t := range transfers {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return fmt.Errorf("transfer %q: %w", id, model.ErrNotFound)
	}
	if err := store.SaveList(ctx, l.store, store.KeyTableTransfers, kept); err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{"transfer_id": id, "actor": actor}).Warn("transfer record deleted")
	return nil
}

// Prune drops transfers older than the given number of days and reports how
// many were removed.
func (l *Log) Prune(ctx context.Context, days int) (int, error) {
	if days < 1 {
		return 0, model.Invalid("days", "days must be at least 1")
	}
	cutoff := l.now().AddDate(0, 0, -days)

	l.mu.Lock()
	defer l.mu.Unlock()

	transfers, err := store.LoadList[model.TableTransfer](ctx, l.store, store.KeyTableTransfers)
	if err != nil {
		return 0, err
	}
	kept := make([]model.TableTransfer, 0, len(transfers))
	for _, t := range transfers {
		if !t.TransferredAt.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	removed := len(transfers) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := store.SaveList(ctx, l.store, store.KeyTableTransfers, kept); err != nil {
		return 0, err
	}
	l.log.WithField("removed", removed).Info("pruned old transfers")
	return removed, nil
}
