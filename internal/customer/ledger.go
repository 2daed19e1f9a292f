// Package customer keeps the customer list and the orders settled for each
// customer. Aggregates on a customer only change when an order is recorded.
package customer

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

// Ledger owns the customers and customer-orders collections. Both are
// written under mu.
type Ledger struct {
	store store.Store
	pub   events.Publisher
	log   logrus.FieldLogger
	now   func() time.Time

	mu sync.Mutex
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a Ledger over s.
func NewLedger(s store.Store, pub events.Publisher, log logrus.FieldLogger, opts ...Option) *Ledger {
	l := &Ledger{
		store: s,
		pub:   pub,
		log:   log.WithField("component", "customer"),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) customers(ctx context.Context) ([]model.Customer, error) {
	return store.LoadList[model.Customer](ctx, l.store, store.KeyCustomers)
}

func (l *Ledger) orders(ctx context.Context) ([]model.CustomerOrder, error) {
	return store.LoadList[model.CustomerOrder](ctx, l.store, store.KeyCustomerOrders)
}

func customerIndex(customers []model.Customer, id string) int {
	for i, c := range customers {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return fmt.Errorf("customer %q: %w", id, model.ErrNotFound)
}

// customerCode is "KH" followed by the last six digits of the millisecond
// clock and three random digits.
func customerCode(now time.Time) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return fmt.Sprintf("KH%s%03d", ms, rand.Intn(1000))
}

// Input identifies a customer.
type Input struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Patch carries the customer fields that may be edited.
type Patch struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// CreateCustomer returns the customer with in.Phone, creating one with zeroed
// aggregates when none exists.
func (l *Ledger) CreateCustomer(ctx context.Context, in Input, actor string) (model.Customer, error) {
	errs := &model.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		errs.Add("name", "name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		errs.Add("phone", "phone is required")
	}
	if err := errs.OrNil(); err != nil {
		return model.Customer{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	c, _, err := l.findOrCreate(ctx, in, actor)
	return c, err
}

func (l *Ledger) findOrCreate(ctx context.Context, in Input, actor string) (model.Customer, bool, error) {
	customers, err := l.customers(ctx)
	if err != nil {
		return model.Customer{}, false, err
	}
	phone := strings.TrimSpace(in.Phone)
	for _, c := range customers {
		if c.Phone == phone {
			return c, false, nil
		}
	}

	now := l.now()
	c := model.Customer{
		ID:           model.NewID("customer"),
		Name:         strings.TrimSpace(in.Name),
		Phone:        phone,
		Email:        in.Email,
		CustomerCode: customerCode(now),
		FirstVisit:   now,
		LastVisit:    now,
	}
	c.Stamp(now, actor)
	if err := store.SaveList(ctx, l.store, store.KeyCustomers, append(customers, c)); err != nil {
		return model.Customer{}, false, fmt.Errorf("failed to save customer: %w", err)
	}

	l.log.WithFields(logrus.Fields{"customer_id": c.ID, "code": c.CustomerCode}).Info("customer created")
	l.pub.Publish(ctx, events.Event{Type: events.CustomerChanged, Key: store.KeyCustomers, EntityID: c.ID, Reason: "create", Actor: actor})
	return c, true, nil
}

// Get returns a customer by id.
func (l *Ledger) Get(ctx context.Context, id string) (model.Customer, error) {
	customers, err := l.customers(ctx)
	if err != nil {
		return model.Customer{}, err
	}
	if i := customerIndex(customers, id); i >= 0 {
		return customers[i], nil
	}
	return model.Customer{}, notFound(id)
}

// GetByPhone returns the customer with an exact phone match.
func (l *Ledger) GetByPhone(ctx context.Context, phone string) (model.Customer, error) {
	customers, err := l.customers(ctx)
	if err != nil {
		return model.Customer{}, err
	}
	for _, c := range customers {
		if c.Phone == phone {
			return c, nil
		}
	}
	return model.Customer{}, fmt.Errorf("customer with phone %q: %w", phone, model.ErrNotFound)
}

// List returns all customers, most recent visit first.
func (l *Ledger) List(ctx context.Context) ([]model.Customer, error) {
	customers, err := l.customers(ctx)
	if err != nil {
		return nil, err
	}
	sortByLastVisit(customers)
	return customers, nil
}

func sortByLastVisit(customers []model.Customer) {
	sort.SliceStable(customers, func(i, j int) bool {
		return customers[i].LastVisit.After(customers[j].LastVisit)
	})
}

// Update edits name and email. Phone, code and aggregates are not editable.
func (l *Ledger) Update(ctx context.Context, id string, p Patch, actor string) (model.Customer, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return model.Customer{}, model.Invalid("name", "name is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	customers, err := l.customers(ctx)
	if err != nil {
		return model.Customer{}, err
	}
	i := customerIndex(customers, id)
	if i < 0 {
		return model.Customer{}, notFound(id)
	}
	c := customers[i]
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	c.Touch(l.now(), actor)
	customers[i] = c
	if err := store.SaveList(ctx, l.store, store.KeyCustomers, customers); err != nil {
		return model.Customer{}, err
	}
	l.pub.Publish(ctx, events.Event{Type: events.CustomerChanged, Key: store.KeyCustomers, EntityID: id, Reason: "update", Actor: actor})
	return c, nil
}
