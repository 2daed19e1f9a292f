package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"restaurant-pos-backend/internal/customer"
	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/model"
)

// AnonymousName is recorded for walk-in guests without a booking.
const AnonymousName = "Khách lẻ"

// Tables is the part of the table registry checkout needs.
type Tables interface {
	Get(ctx context.Context, id string) (model.Table, error)
	SettlePayment(ctx context.Context, id string, billed []model.OrderItem, actor string) (model.Table, error)
}

// Customers is the part of the customer ledger checkout needs.
type Customers interface {
	CreateCustomer(ctx context.Context, in customer.Input, actor string) (model.Customer, error)
	CreateOrder(ctx context.Context, in customer.OrderInput, actor string) (model.CustomerOrder, error)
}

// Service runs checkout. Checkouts are serialized.
type Service struct {
	tables    Tables
	customers Customers
	history   *History
	pub       events.Publisher
	log       logrus.FieldLogger
	now       func() time.Time
	taxRate   float64
	loc       *time.Location

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTaxRate sets the VAT rate applied to the subtotal.
func WithTaxRate(rate float64) Option {
	return func(s *Service) { s.taxRate = rate }
}

// WithLocation sets the zone reservation times are written in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// NewService wires checkout.
func NewService(tables Tables, customers Customers, history *History, pub events.Publisher, log logrus.FieldLogger, opts ...Option) *Service {
	s := &Service{
		tables:    tables,
		customers: customers,
		history:   history,
		pub:       pub,
		log:       log.WithField("component", "payment"),
		now:       func() time.Time { return time.Now().UTC() },
		taxRate:   0.1,
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bill is the amount due for a table.
type Bill struct {
	TableID  string            `json:"tableId"`
	Subtotal float64           `json:"subtotal"`
	Tax      float64           `json:"tax"`
	Total    float64           `json:"total"`
	Items    []model.OrderItem `json:"orderItems"`
}

// Receipt is the outcome of a completed checkout.
type Receipt struct {
	Payment  model.PaymentRecord `json:"payment"`
	Customer model.Customer      `json:"customer"`
	Order    model.CustomerOrder `json:"order"`
	Table    model.Table         `json:"table"`
}

func (s *Service) bill(t model.Table) Bill {
	subtotal := t.OrderTotal()
	tax := model.RoundCurrency(subtotal * s.taxRate)
	return Bill{
		TableID:  t.ID,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
		Items:    t.OrderItems,
	}
}

// Quote returns what the table would be charged now.
func (s *Service) Quote(ctx context.Context, tableID string) (Bill, error) {
	t, err := s.payable(ctx, tableID)
	if err != nil {
		return Bill{}, err
	}
	return s.bill(t), nil
}

func (s *Service) payable(ctx context.Context, tableID string) (model.Table, error) {
	t, err := s.tables.Get(ctx, tableID)
	if err != nil {
		return model.Table{}, err
	}
	if t.Status != model.StatusServing {
		return model.Table{}, model.Violation(model.CodeNothingToPay, "table %s is %s; only serving tables can pay", t.Code, t.Status)
	}
	if t.OrderTotal() <= 0 {
		return model.Table{}, model.Violation(model.CodeNothingToPay, "table %s has nothing to pay", t.Code)
	}
	return t, nil
}

// Checkout charges a Serving table. The steps are separate writes with no
// rollback: payment history, customer, customer order, then the table is
// settled to Dirty. A failing step is logged and returned.
func (s *Service) Checkout(ctx context.Context, tableID string, method model.PaymentMethod, actor string) (Receipt, error) {
	if !method.Valid() {
		return Receipt{}, model.Invalid("paymentMethod", "payment method must be cash, card or qr")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.payable(ctx, tableID)
	if err != nil {
		return Receipt{}, err
	}
	b := s.bill(t)
	now := s.now()

	rec := model.PaymentRecord{
		Subtotal:      b.Subtotal,
		Tax:           b.Tax,
		Total:         b.Total,
		PaymentMethod: method,
		PaymentStatus: model.PaymentStatusCompleted,
		Timestamp:     now,
		TableCode:     t.Code,
		OrderItems:    append([]model.OrderItem(nil), t.OrderItems...),
		EndTime:       &now,
	}
	if t.Booking != nil {
		booking := *t.Booking
		rec.BookingInfo = &booking
		rec.StartTime = s.reservationStart(booking.ReservationTime)
	}

	log := s.log.WithFields(logrus.Fields{"table_id": t.ID, "code": t.Code, "total": b.Total})
	fail := func(step string, err error) (Receipt, error) {
		log.WithError(err).WithField("step", step).Error("checkout failed")
		return Receipt{}, fmt.Errorf("checkout %s: %s: %w", t.Code, step, err)
	}

	if err := s.history.Append(ctx, rec); err != nil {
		return fail("payment history", err)
	}

	in := customer.Input{Name: AnonymousName, Phone: fmt.Sprintf("anonymous-%d", now.UnixMilli())}
	if bk := t.Booking; bk != nil && strings.TrimSpace(bk.CustomerName) != "" && strings.TrimSpace(bk.PhoneNumber) != "" {
		in = customer.Input{Name: bk.CustomerName, Phone: bk.PhoneNumber}
	}
	cust, err := s.customers.CreateCustomer(ctx, in, actor)
	if err != nil {
		return fail("customer", err)
	}

	notes := ""
	if t.Booking != nil {
		notes = t.Booking.SpecialNotes
	}
	order, err := s.customers.CreateOrder(ctx, customer.OrderInput{
		CustomerID:    cust.ID,
		TableID:       t.ID,
		TableCode:     t.Code,
		Items:         t.OrderItems,
		TotalAmount:   b.Total,
		PaymentMethod: method,
		Notes:         notes,
	}, actor)
	if err != nil {
		return fail("customer order", err)
	}

	settled, err := s.tables.SettlePayment(ctx, t.ID, rec.OrderItems, actor)
	if err != nil {
		return fail("settle table", err)
	}

	log.WithField("method", method).Info("payment completed")
	s.pub.Publish(ctx, events.Event{
		Type:     events.PaymentCompleted,
		EntityID: t.ID,
		Status:   model.PaymentStatusCompleted,
		Reason:   string(method),
		Actor:    actor,
	})
	return Receipt{Payment: rec, Customer: cust, Order: order, Table: settled}, nil
}

var reservationLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04"}

// reservationStart reads a booking's reservation time as the start of the
// meal. Unparseable values give nil.
func (s *Service) reservationStart(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range reservationLayouts {
		if t, err := time.ParseInLocation(layout, raw, s.loc); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
