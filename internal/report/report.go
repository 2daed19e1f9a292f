// Package report builds read-only analytics over the payment history and
// the transfer log.
package report

import (
	"context"
	"sort"
	"time"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/parse"
	"restaurant-pos-backend/internal/payment"
	"restaurant-pos-backend/internal/transfer"
)

// PaymentSource supplies the payment history.
type PaymentSource interface {
	List(ctx context.Context) ([]model.PaymentRecord, error)
}

// TransferSource supplies the transfer log.
type TransferSource interface {
	List(ctx context.Context, f transfer.Filter) ([]model.TableTransfer, error)
}

// FloorNamer resolves a floor id to its display name.
type FloorNamer interface {
	FloorName(ctx context.Context, id string) string
}

// Window is the half-open period [Start, End). Zero bounds are open.
type Window struct {
	Start time.Time
	End   time.Time
}

// Aggregator computes report projections.
type Aggregator struct {
	payments  PaymentSource
	transfers TransferSource
	floors    FloorNamer
	costRatio float64
	loc       *time.Location
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCostRatio sets the share of revenue counted as cost in Profit.
func WithCostRatio(r float64) Option {
	return func(a *Aggregator) { a.costRatio = r }
}

// WithLocation sets the zone used for day and hour buckets.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) { a.loc = loc }
}

// NewAggregator creates an Aggregator. floors may be nil, in which case zones
// are named from the table code alone.
func NewAggregator(payments PaymentSource, transfers TransferSource, floors FloorNamer, opts ...Option) *Aggregator {
	a := &Aggregator{
		payments:  payments,
		transfers: transfers,
		floors:    floors,
		costRatio: 0.6,
		loc:       time.UTC,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) records(ctx context.Context, w Window) ([]model.PaymentRecord, error) {
	all, err := a.payments.List(ctx)
	if err != nil {
		return nil, err
	}
	return payment.Window(all, w.Start, w.End), nil
}

func (a *Aggregator) day(t time.Time) string {
	return t.In(a.loc).Format("2006-01-02")
}

func (a *Aggregator) hour(t time.Time) int {
	return t.In(a.loc).Hour()
}

const otherZone = "Khác"

// zoneOf names the floor of a table code, e.g. "T3-02" on "Tầng 3 - VIP".
func (a *Aggregator) zoneOf(ctx context.Context, code string) string {
	tc, err := parse.ParseTableCode(code)
	if err != nil {
		return otherZone
	}
	if a.floors != nil {
		if name := a.floors.FloorName(ctx, parse.DefaultFloorID("", code)); name != "" {
			return name
		}
	}
	return defaultZoneName(tc.Floor)
}

func defaultZoneName(floor int) string {
	switch floor {
	case 1:
		return "Tầng 1"
	case 2:
		return "Tầng 2"
	case 3:
		return "Tầng 3 - VIP"
	}
	return otherZone
}

// MethodLabel is the display name of a payment method.
func MethodLabel(m model.PaymentMethod) string {
	switch m {
	case model.PaymentCash:
		return "Tiền mặt"
	case model.PaymentCard:
		return "Thẻ"
	case model.PaymentQR:
		return "QR Code"
	}
	return "Khác"
}

// DishStat aggregates one dish across payments.
type DishStat struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
	Category string  `json:"category"`
}

// dishStats groups order lines by dish name in first-seen order.
func dishStats(records []model.PaymentRecord) []DishStat {
	index := make(map[string]int)
	var out []DishStat
	for _, r := range records {
		for _, item := range r.OrderItems {
			i, ok := index[item.Name]
			if !ok {
				i = len(out)
				index[item.Name] = i
				out = append(out, DishStat{Name: item.Name})
			}
			out[i].Quantity += item.Quantity
			out[i].Revenue += item.LineTotal()
			out[i].Category = item.Category
		}
	}
	return out
}

func top[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func revenue(records []model.PaymentRecord) float64 {
	var sum float64
	for _, r := range records {
		sum += r.Total
	}
	return sum
}

// dailyBucket accumulates per-day figures, keyed by "2006-01-02".
type dailyBucket struct {
	keys   []string
	orders map[string]int
	guests map[string]int
	rev    map[string]float64
}

func (a *Aggregator) byDay(records []model.PaymentRecord) dailyBucket {
	b := dailyBucket{
		orders: make(map[string]int),
		guests: make(map[string]int),
		rev:    make(map[string]float64),
	}
	for _, r := range records {
		d := a.day(r.Timestamp)
		if _, ok := b.orders[d]; !ok {
			b.keys = append(b.keys, d)
		}
		b.orders[d]++
		b.rev[d] += r.Total
		guests := 1
		if r.BookingInfo != nil && r.BookingInfo.NumberOfGuests > 0 {
			guests = r.BookingInfo.NumberOfGuests
		}
		b.guests[d] += guests
	}
	sort.Strings(b.keys)
	return b
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
