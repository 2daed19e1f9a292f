package report

import (
	"context"
	"sort"

	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/transfer"
)

// HourCount is the number of payments taken in one hour of the day.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Overview is the dashboard summary.
type Overview struct {
	TotalCustomers    int         `json:"totalCustomers"`
	AverageDiningTime float64     `json:"averageDiningTime"`
	OverbookingRate   float64     `json:"overbookingRate"`
	PopularDishes     []DishStat  `json:"popularDishes"`
	PeakHours         []HourCount `json:"peakHours"`
}

// Overview counts guests, the mean minutes between reservation and payment,
// the share of overlapping seatings, the ten most ordered dishes and payment
// counts per hour, busiest first.
func (a *Aggregator) Overview(ctx context.Context, w Window) (Overview, error) {
	records, err := a.records(ctx, w)
	if err != nil {
		return Overview{}, err
	}

	var ov Overview
	var minutes float64
	timed := 0
	bookings := 0
	for _, r := range records {
		if r.BookingInfo != nil {
			ov.TotalCustomers += r.BookingInfo.NumberOfGuests
			bookings++
		}
		if r.StartTime != nil && r.EndTime != nil {
			minutes += r.EndTime.Sub(*r.StartTime).Minutes()
			timed++
		}
	}
	if timed > 0 {
		ov.AverageDiningTime = minutes / float64(timed)
	}
	if bookings > 0 {
		ov.OverbookingRate = float64(overlaps(records)) / float64(bookings)
	}

	dishes := dishStats(records)
	sort.SliceStable(dishes, func(i, j int) bool { return dishes[i].Quantity > dishes[j].Quantity })
	ov.PopularDishes = top(dishes, 10)

	counts := make([]HourCount, 24)
	for h := range counts {
		counts[h].Hour = h
	}
	for _, r := range records {
		counts[a.hour(r.Timestamp)].Count++
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	ov.PeakHours = counts
	return ov, nil
}

// overlaps counts pairs of timed seatings whose intervals intersect.
func overlaps(records []model.PaymentRecord) int {
	type span struct{ start, end int64 }
	var spans []span
	for _, r := range records {
		if r.StartTime != nil && r.EndTime != nil {
			spans = append(spans, span{r.StartTime.UnixNano(), r.EndTime.UnixNano()})
		}
	}
	n := 0
	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			if spans[i].start <= spans[j].end && spans[i].end >= spans[j].start {
				n++
			}
		}
	}
	return n
}

// PopularDishes lists up to fifteen dishes by revenue.
type PopularDishes struct {
	Dishes       []DishStat `json:"dishes"`
	TotalRevenue float64    `json:"totalRevenue"`
	TotalOrders  int        `json:"totalOrders"`
}

func (a *Aggregator) PopularDishes(ctx context.Context, w Window) (PopularDishes, error) {
	records, err := a.records(ctx, w)
	if err != nil {
		return PopularDishes{}, err
	}
	dishes := dishStats(records)
	sort.SliceStable(dishes, func(i, j int) bool { return dishes[i].Revenue > dishes[j].Revenue })
	dishes = top(dishes, 15)

	out := PopularDishes{Dishes: dishes, TotalOrders: len(records)}
	for _, d := range dishes {
		out.TotalRevenue += d.Revenue
	}
	return out, nil
}

// DailyCustomers is the guest count and revenue of one day.
type DailyCustomers struct {
	Date    string  `json:"date"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// Customers reports guests per day. A payment without a booking counts as
// one guest.
type Customers struct {
	DailyCustomers         []DailyCustomers `json:"dailyCustomers"`
	TotalCustomers         int              `json:"totalCustomers"`
	AverageCustomersPerDay float64          `json:"averageCustomersPerDay"`
}

func (a *Aggregator) Customers(ctx context.Context, w Window) (Customers, error) {
	records, err := a.records(ctx, w)
	if err != nil {
		return Customers{}, err
	}
	b := a.byDay(records)
	out := Customers{DailyCustomers: make([]DailyCustomers, 0, len(b.keys))}
	for _, d := range b.keys {
		out.DailyCustomers = append(out.DailyCustomers, DailyCustomers{Date: d, Count: b.guests[d], Revenue: b.rev[d]})
		out.TotalCustomers += b.guests[d]
	}
	if len(b.keys) > 0 {
		out.AverageCustomersPerDay = float64(out.TotalCustomers) / float64(len(b.keys))
	}
	return out, nil
}

// MethodStat is the share of one payment method.
type MethodStat struct {
	Method     string  `json:"method"`
	Count      int     `json:"count"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

type PaymentMethods struct {
	Methods      []MethodStat `json:"methods"`
	TotalRevenue float64      `json:"totalRevenue"`
}

// PaymentMethods splits revenue by payment method, largest first.
func (a *Aggregator) PaymentMethods(ctx context.Context, w Window) (PaymentMethods, error) {
	records, err := a.records(ctx, w)
	if err != nil {
		return PaymentMethods{}, err
	}
	total := revenue(records)
	index := make(map[string]int)
	var methods []MethodStat
	for _, r := range records {
		label := MethodLabel(r.PaymentMethod)
		i, ok := index[label]
		if !ok {
			i = len(methods)
			index[label] = i
			methods = append(methods, MethodStat{Method: label})
		}
		methods[i].Count++
		methods[i].Revenue += r.Total
	}
	for i := range methods {
		methods[i].Percentage = percent(methods[i].Revenue, total)
	}
	sort.SliceStable(methods, func(i, j int) bool { return methods[i].Revenue > methods[j].Revenue })
	return PaymentMethods{Methods: methods, TotalRevenue: total}, nil
}

// HourRevenue is revenue in one hour of the day.
type HourRevenue struct {
	Hour    int     `json:"hour"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// DayRevenue is revenue on one day.
type DayRevenue struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type RevenueByTime struct {
	HourlyRevenue []HourRevenue `json:"hourlyRevenue"`
	DailyRevenue  []DayRevenue  `json:"dailyRevenue"`
	PeakHour      int           `json:"peakHour"`
	PeakRevenue   float64       `json:"peakRevenue"`
}

// RevenueByTime buckets revenue by hour of day and by day. The peak hour is
// the earliest hour with the highest revenue.
func (a *Aggregator) RevenueByTime(ctx context.Context, w Window) (RevenueByTime, error) {
	records, err := a.records(ctx, w)
	if err != nil {
		return RevenueByTime{}, err
	}
	hourly := make([]HourRevenue, 24)
	for h := range hourly {
		hourly[h].Hour = h
	}
	for _, r := range records {
		h := a.hour(r.Timestamp)
		hourly[h].Revenue += r.Total
		hourly[h].Orders++
	}
	out := RevenueByTime{HourlyRevenue: hourly}
	for _, h := range hourly {
		if h.Revenue > out.PeakRevenue {
			out.PeakHour, out.PeakRevenue = h.Hour, h.Revenue
		}
	}

	b := a.byDay(records)
	out.DailyRevenue = make([]DayRevenue, 0, len(b.keys))
	for _, d := range b.keys {
		out.DailyRevenue = append(out.DailyRevenue, DayRevenue{Date: d, Revenue: b.rev[d], Orders: b.orders[d]})
	}
	return out, nil
}

// DayOrders is the order volume of one day.
type DayOrders struct {
	Date              string  `json:"date"`
	Orders            int     `json:"orders"`
	Revenue           float64 `json:"revenue"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

type Orders struct {
	DailyOrders       []DayOrders `json:"dailyOrders"`
	TotalOrders       int         `json:"totalOrders"`
	AverageOrderValue float64     `json:"averageOrderValue"`
}

func (a *Aggregator) Orders(ctx context.Context, w Window) (Orders, error) {
	records, err := a.records(ctx, w)
	if err != nil {
		return Orders{}, err
	}
	b := a.byDay(records)
	out := Orders{DailyOrders: make([]DayOrders, 0, len(b.keys)), TotalOrders: len(records)}
	for _, d := range b.keys {
		out.DailyOrders = append(out.DailyOrders, DayOrders{
			Date:              d,
			Orders:            b.orders[d],
			Revenue:           b.rev[d],
			AverageOrderValue: b.rev[d] / float64(b.orders[d]),
		})
	}
	if len(records) > 0 {
		out.AverageOrderValue = revenue(records) / float64(len(records))
	}
	return out, nil
}

// DayProfit is the estimated profit of one day.
type DayProfit struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Costs   float64 `json:"costs"`
	Profit  float64 `json:"profit"`
}

// Profit is an estimate: costs are a fixed share of revenue, not real
// ingredient or labour costs.
type Profit struct {
	Revenue      float64     `json:"revenue"`
	Costs        float64     `json:"costs"`
	Profit       float64     `json:"profit"`
	ProfitMargin float64     `json:"profitMargin"`
	CostRatio    float64     `json:"costRatio"`
	DailyProfit  []DayProfit `json:"dailyProfit"`
}

func (a *Aggregator) Profit(ctx context.Context, w Window) (Profit, error) {
	records, err := a.records(ctx, w)
	if err != nil {
		return Profit{}, err
	}
	rev := revenue(records)
	out := Profit{Revenue: rev, Costs: rev * a.costRatio, CostRatio: a.costRatio}
	out.Profit = out.Revenue - out.Costs
	out.ProfitMargin = percent(out.Profit, out.Revenue)

	b := a.byDay(records)
	out.DailyProfit = make([]DayProfit, 0, len(b.keys))
	for _, d := range b.keys {
		costs := b.rev[d] * a.costRatio
		out.DailyProfit = append(out.DailyProfit, DayProfit{Date: d, Revenue: b.rev[d], Costs: costs, Profit: b.rev[d] - costs})
	}
	return out, nil
}

// ZoneStat is the revenue of one floor.
type ZoneStat struct {
	Zone              string  `json:"zone"`
	Revenue           float64 `json:"revenue"`
	Orders            int     `json:"orders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

type Zones struct {
	Zones        []ZoneStat `json:"zones"`
	TotalRevenue float64    `json:"totalRevenue"`
}

// Zones groups revenue by the floor encoded in each table code.
func (a *Aggregator) Zones(ctx context.Context, w Window) (Zones, error) {
	records, err := a.records(ctx, w)
	if err != nil {
		return Zones{}, err
	}
	index := make(map[string]int)
	var zones []ZoneStat
	for _, r := range records {
		z := a.zoneOf(ctx, r.TableCode)
		i, ok := index[z]
		if !ok {
			i = len(zones)
			index[z] = i
			zones = append(zones, ZoneStat{Zone: z})
		}
		zones[i].Revenue += r.Total
		zones[i].Orders++
	}
	out := Zones{Zones: zones}
	for i := range zones {
		zones[i].AverageOrderValue = zones[i].Revenue / float64(zones[i].Orders)
		out.TotalRevenue += zones[i].Revenue
	}
	sort.SliceStable(zones, func(i, j int) bool { return zones[i].Revenue > zones[j].Revenue })
	return out, nil
}

// CategoryStat is item revenue under one category label.
type CategoryStat struct {
	Category   string  `json:"category"`
	Quantity   int     `json:"quantity"`
	Revenue    float64 `json:"revenue"`
	Percentage float64 `json:"percentage"`
}

type Categories struct {
	Categories   []CategoryStat `json:"categories"`
	TotalRevenue float64        `json:"totalRevenue"`
}

// Categories sums line revenue (before tax) by the category label the line
// was ordered under.
func (a *Aggregator) Categories(ctx context.Context, w Window) (Categories, error) {
	records, err := a.records(ctx, w)
	if err != nil {
		return Categories{}, err
	}
	index := make(map[string]int)
	var cats []CategoryStat
	var total float64
	for _, r := range records {
		for _, item := range r.OrderItems {
			label := item.Category
			if label == "" {
				label = otherZone
			}
			i, ok := index[label]
			if !ok {
				i = len(cats)
				index[label] = i
				cats = append(cats, CategoryStat{Category: label})
			}
			cats[i].Quantity += item.Quantity
			cats[i].Revenue += item.LineTotal()
			total += item.LineTotal()
		}
	}
	for i := range cats {
		cats[i].Percentage = percent(cats[i].Revenue, total)
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Revenue > cats[j].Revenue })
	return Categories{Categories: cats, TotalRevenue: total}, nil
}

// Count is a labelled tally.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Transfers struct {
	TotalTransfers int     `json:"totalTransfers"`
	ByFloor        []Count `json:"byFloor"`
	ByReason       []Count `json:"byReason"`
}

// Transfers tallies transfers by source floor and by reason, most frequent
// first.
func (a *Aggregator) Transfers(ctx context.Context, w Window) (Transfers, error) {
	list, err := a.transfers.List(ctx, transfer.Filter{From: w.Start, To: w.End})
	if err != nil {
		return Transfers{}, err
	}
	byFloor := newTally()
	byReason := newTally()
	for _, t := range list {
		floor := t.SourceFloorName
		if floor == "" {
			floor = a.zoneOf(ctx, t.SourceTableCode)
		}
		byFloor.add(floor)
		byReason.add(t.Reason)
	}
	return Transfers{TotalTransfers: len(list), ByFloor: byFloor.sorted(), ByReason: byReason.sorted()}, nil
}

type tally struct {
	index  map[string]int
	counts []Count
}

func newTally() *tally { return &tally{index: make(map[string]int)} }

func (t *tally) add(label string) {
	i, ok := t.index[label]
	if !ok {
		i = len(t.counts)
		t.index[label] = i
		t.counts = append(t.counts, Count{Label: label})
	}
	t.counts[i].Count++
}

func (t *tally) sorted() []Count {
	out := append([]Count{}, t.counts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
