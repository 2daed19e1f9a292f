package customer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

// OrderInput records a settled bill against a customer.
type OrderInput struct {
	CustomerID    string              `json:"customerId"`
	TableID       string              `json:"tableId"`
	TableCode     string              `json:"tableCode"`
	Items         []model.OrderItem   `json:"orderItems"`
	TotalAmount   float64             `json:"totalAmount"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Notes         string              `json:"notes"`
}

// CreateOrder appends a completed order and folds it into the customer's
// totalSpent, visitCount and lastVisit.
func (l *Ledger) CreateOrder(ctx context.Context, in OrderInput, actor string) (model.CustomerOrder, error) {
	errs := &model.ValidationError{}
	if in.CustomerID == "" {
		errs.Add("customerId", "customer is required")
	}
	if !in.PaymentMethod.Valid() {
		errs.Add("paymentMethod", "payment method must be cash, card or qr")
	}
	if in.TotalAmount < 0 {
		errs.Add("totalAmount", "total cannot be negative")
	}
	if err := errs.OrNil(); err != nil {
		return model.CustomerOrder{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	customers, err := l.customers(ctx)
	if err != nil {
		return model.CustomerOrder{}, err
	}
	ci := customerIndex(customers, in.CustomerID)
	if ci < 0 {
		return model.CustomerOrder{}, notFound(in.CustomerID)
	}
	orders, err := l.orders(ctx)
	if err != nil {
		return model.CustomerOrder{}, err
	}

	now := l.now()
	id := model.NewID("order")
	order := model.CustomerOrder{
		ID:            id,
		CustomerID:    in.CustomerID,
		TableID:       in.TableID,
		TableCode:     in.TableCode,
		OrderDate:     now,
		TotalAmount:   in.TotalAmount,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: model.PaymentStatusCompleted,
		OrderItems:    make([]model.CustomerOrderItem, 0, len(in.Items)),
		Notes:         in.Notes,
	}
	for i, item := range in.Items {
		order.OrderItems = append(order.OrderItems, model.CustomerOrderItem{
			ID:         fmt.Sprintf("%s-item-%d", id, i),
			OrderID:    id,
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.Price,
			TotalPrice: item.LineTotal(),
			Category:   item.Category,
			Images:     item.Images,
			Notes:      item.Notes,
		})
	}
	order.Stamp(now, actor)

	if err := store.SaveList(ctx, l.store, store.KeyCustomerOrders, append(orders, order)); err != nil {
		return model.CustomerOrder{}, fmt.Errorf("failed to save customer order: %w", err)
	}

	c := customers[ci]
	c.TotalSpent += in.TotalAmount
	c.VisitCount++
	c.LastVisit = now
	c.Touch(now, actor)
	customers[ci] = c
	if err := store.SaveList(ctx, l.store, store.KeyCustomers, customers); err != nil {
		return model.CustomerOrder{}, fmt.Errorf("order %s saved but customer totals not updated: %w", id, err)
	}

	l.log.WithFields(logrus.Fields{
		"order_id":    id,
		"customer_id": c.ID,
		"total":       in.TotalAmount,
	}).Info("customer order recorded")
	l.pub.Publish(ctx, events.Event{Type: events.CustomerOrderCreated, Key: store.KeyCustomerOrders, EntityID: id, Actor: actor})
	return order, nil
}

// Orders returns a customer's orders newest first, limited to [from, to]
// when either bound is set.
func (l *Ledger) Orders(ctx context.Context, customerID string, from, to time.Time) ([]model.CustomerOrder, error) {
	orders, err := l.orders(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.CustomerOrder, 0)
	for _, o := range orders {
		if o.CustomerID != customerID {
			continue
		}
		if !from.IsZero() && o.OrderDate.Before(from) {
			continue
		}
		if !to.IsZero() && o.OrderDate.After(to) {
			continue
		}
		out = append(out, o)
	}
	sortOrdersNewestFirst(out)
	return out, nil
}

func sortOrdersNewestFirst(orders []model.CustomerOrder) {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].OrderDate.After(orders[j].OrderDate) })
}

// GetOrder returns one order.
func (l *Ledger) GetOrder(ctx context.Context, id string) (model.CustomerOrder, error) {
	orders, err := l.orders(ctx)
	if err != nil {
		return model.CustomerOrder{}, err
	}
	for _, o := range orders {
		if o.ID == id {
			return o, nil
		}
	}
	return model.CustomerOrder{}, fmt.Errorf("order %q: %w", id, model.ErrNotFound)
}

// SearchFilters narrows Search. Zero values are ignored. The visit window is
// inclusive on both ends.
type SearchFilters struct {
	Term          string              `form:"q"`
	From          time.Time           `form:"from" time_format:"2006-01-02"`
	To            time.Time           `form:"to" time_format:"2006-01-02"`
	PaymentMethod model.PaymentMethod `form:"paymentMethod"`
	MinAmount     *float64            `form:"minAmount"`
	MaxAmount     *float64            `form:"maxAmount"`
}

// Search matches the term against name, phone, code and email, then applies
// the visit window, spend range and payment method.
func (l *Ledger) Search(ctx context.Context, f SearchFilters) ([]model.Customer, error) {
	customers, err := l.customers(ctx)
	if err != nil {
		return nil, err
	}

	var paidWith map[string]bool
	if f.PaymentMethod != "" && f.PaymentMethod != "all" {
		orders, err := l.orders(ctx)
		if err != nil {
			return nil, err
		}
		paidWith = make(map[string]bool)
		for _, o := range orders {
			if o.PaymentMethod == f.PaymentMethod {
				paidWith[o.CustomerID] = true
			}
		}
	}

	term := strings.ToLower(strings.TrimSpace(f.Term))
	out := make([]model.Customer, 0)
	for _, c := range customers {
		if term != "" &&
			!strings.Contains(strings.ToLower(c.Name), term) &&
			!strings.Contains(c.Phone, term) &&
			!strings.Contains(strings.ToLower(c.CustomerCode), term) &&
			!strings.Contains(strings.ToLower(c.Email), term) {
			continue
		}
		if !f.From.IsZero() && c.LastVisit.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && c.LastVisit.After(f.To) {
			continue
		}
		if f.MinAmount != nil && c.TotalSpent < *f.MinAmount {
			continue
		}
		if f.MaxAmount != nil && c.TotalSpent > *f.MaxAmount {
			continue
		}
		if paidWith != nil && !paidWith[c.ID] {
			continue
		}
		out = append(out, c)
	}
	sortByLastVisit(out)
	return out, nil
}

// Statistics summarises the ledger.
type Statistics struct {
	TotalCustomers    int                   `json:"totalCustomers"`
	TotalRevenue      float64               `json:"totalRevenue"`
	AverageOrderValue float64               `json:"averageOrderValue"`
	TopCustomers      []model.Customer      `json:"topCustomers"`
	RecentOrders      []model.CustomerOrder `json:"recentOrders"`
}

// Statistics returns the top five spenders, the ten latest orders and the
// average spend per customer.
func (l *Ledger) Statistics(ctx context.Context) (Statistics, error) {
	customers, err := l.customers(ctx)
	if err != nil {
		return Statistics{}, err
	}
	orders, err := l.orders(ctx)
	if err != nil {
		return Statistics{}, err
	}

	st := Statistics{TotalCustomers: len(customers)}
	for _, c := range customers {
		st.TotalRevenue += c.TotalSpent
	}
	if st.TotalCustomers > 0 {
		st.AverageOrderValue = st.TotalRevenue / float64(st.TotalCustomers)
	}

	top := append([]model.Customer(nil), customers...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].TotalSpent > top[j].TotalSpent })
	if len(top) > 5 {
		top = top[:5]
	}
	st.TopCustomers = top

	sortOrdersNewestFirst(orders)
	if len(orders) > 10 {
		orders = orders[:10]
	}
	st.RecentOrders = orders
	return st, nil
}

// Snapshot is the backup form of the ledger.
type Snapshot struct {
	Customers []model.Customer      `json:"customers"`
	Orders    []model.CustomerOrder `json:"orders"`
}

// Export returns both collections.
func (l *Ledger) Export(ctx context.Context) (Snapshot, error) {
	customers, err := l.customers(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	orders, err := l.orders(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Customers: customers, Orders: orders}, nil
}

// Import replaces both collections with snap.
func (l *Ledger) Import(ctx context.Context, snap Snapshot, actor string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := store.SaveList(ctx, l.store, store.KeyCustomers, snap.Customers); err != nil {
		return err
	}
	if err := store.SaveList(ctx, l.store, store.KeyCustomerOrders, snap.Orders); err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{
		"customers": len(snap.Customers),
		"orders":    len(snap.Orders),
		"actor":     actor,
	}).Warn("customer ledger replaced from import")
	l.pub.Publish(ctx, events.Event{Type: events.CustomerChanged, Key: store.KeyCustomers, Reason: "import", Actor: actor})
	return nil
}

// MigrateFromBookings creates customers for bookings that carry a name and
// phone number and reports how many were new.
func (l *Ledger) MigrateFromBookings(ctx context.Context, bookings []model.Booking, actor string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	created := 0
	for _, b := range bookings {
		if strings.TrimSpace(b.CustomerName) == "" || strings.TrimSpace(b.PhoneNumber) == "" {
			continue
		}
		_, isNew, err := l.findOrCreate(ctx, Input{Name: b.CustomerName, Phone: b.PhoneNumber}, actor)
		if err != nil {
			return created, err
		}
		if isNew {
			created++
		}
	}
	return created, nil
}
