package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/payment"
	"restaurant-pos-backend/internal/store"
	"restaurant-pos-backend/internal/transfer"
)

func day(d, h, m int) time.Time {
	return time.Date(2024, 3, d, h, m, 0, 0, time.UTC)
}

// newAggregator serves the five demo payments from 20 and 21 March 2024.
func newAggregator(t *testing.T, opts ...Option) (*Aggregator, *transfer.Log) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	s := store.NewMemoryStore()
	history := payment.NewHistory(s)
	seeded, err := history.EnsureDemo(context.Background())
	require.NoError(t, err)
	require.True(t, seeded)

	transfers := transfer.NewLog(s, events.Discard, log)
	return NewAggregator(history, transfers, nil, opts...), transfers
}

func TestOverview(t *testing.T) {
	a, _ := newAggregator(t)

	ov, err := a.Overview(context.Background(), Window{})
	require.NoError(t, err)

	assert.Equal(t, 24, ov.TotalCustomers)
	// 30, 75, 90, 30 and 45 minutes.
	assert.InDelta(t, 54.0, ov.AverageDiningTime, 1e-9)
	// T1-02 overlaps T2-02, and T2-02 overlaps T3-02.
	assert.InDelta(t, 0.4, ov.OverbookingRate, 1e-9)

	require.Len(t, ov.PopularDishes, 10)
	assert.Equal(t, DishStat{Name: "Bia", Quantity: 7, Revenue: 140000, Category: "Đồ uống"}, ov.PopularDishes[0])
	assert.Equal(t, "Bún bò", ov.PopularDishes[1].Name)
	assert.Equal(t, "Phở bò", ov.PopularDishes[2].Name, "ties keep first-seen order")
	for _, d := range ov.PopularDishes {
		assert.NotEqual(t, "Gà nướng", d.Name)
	}

	require.Len(t, ov.PeakHours, 24)
	assert.Equal(t, HourCount{Hour: 19, Count: 2}, ov.PeakHours[0])
}

func TestOverview_Empty(t *testing.T) {
	a := NewAggregator(payment.NewHistory(store.NewMemoryStore()), nil, nil)

	ov, err := a.Overview(context.Background(), Window{})
	require.NoError(t, err)
	assert.Zero(t, ov.TotalCustomers)
	assert.Zero(t, ov.AverageDiningTime)
	assert.Zero(t, ov.OverbookingRate)
	assert.Empty(t, ov.PopularDishes)
	assert.Len(t, ov.PeakHours, 24)
}

func TestPopularDishes(t *testing.T) {
	a, _ := newAggregator(t)

	got, err := a.PopularDishes(context.Background(), Window{})
	require.NoError(t, err)
	require.Len(t, got.Dishes, 11)
	assert.Equal(t, "Rượu vang", got.Dishes[0].Name)
	assert.Equal(t, "Lẩu thái", got.Dishes[1].Name)
	assert.Equal(t, 1690000.0, got.TotalRevenue)
	assert.Equal(t, 5, got.TotalOrders)
}

func TestCustomers(t *testing.T) {
	a, _ := newAggregator(t)

	got, err := a.Customers(context.Background(), Window{})
	require.NoError(t, err)
	assert.Equal(t, []DailyCustomers{
		{Date: "2024-03-20", Count: 17, Revenue: 1314500},
		{Date: "2024-03-21", Count: 7, Revenue: 550000},
	}, got.DailyCustomers)
	assert.Equal(t, 24, got.TotalCustomers)
	assert.Equal(t, 12.0, got.AverageCustomersPerDay)
}

func TestCustomers_WalkInCountsAsOne(t *testing.T) {
	s := store.NewMemoryStore()
	h := payment.NewHistory(s)
	require.NoError(t, h.Append(context.Background(), model.PaymentRecord{Total: 50000, Timestamp: day(22, 11, 0)}))

	got, err := NewAggregator(h, nil, nil).Customers(context.Background(), Window{})
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalCustomers)
}

func TestPaymentMethods(t *testing.T) {
	a, _ := newAggregator(t)

	got, err := a.PaymentMethods(context.Background(), Window{})
	require.NoError(t, err)
	assert.Equal(t, 1864500.0, got.TotalRevenue)
	require.Len(t, got.Methods, 3)

	assert.Equal(t, "Thẻ", got.Methods[0].Method)
	assert.Equal(t, 2, got.Methods[0].Count)
	assert.Equal(t, 1171500.0, got.Methods[0].Revenue)
	assert.InDelta(t, 62.83, got.Methods[0].Percentage, 0.01)

	assert.Equal(t, "QR Code", got.Methods[1].Method)
	assert.Equal(t, "Tiền mặt", got.Methods[2].Method)
	assert.Equal(t, 341000.0, got.Methods[2].Revenue)
}

func TestRevenueByTime(t *testing.T) {
	a, _ := newAggregator(t)

	got, err := a.RevenueByTime(context.Background(), Window{})
	require.NoError(t, err)
	require.Len(t, got.HourlyRevenue, 24)
	assert.Equal(t, HourRevenue{Hour: 19, Revenue: 588500, Orders: 2}, got.HourlyRevenue[19])
	assert.Equal(t, 20, got.PeakHour)
	assert.Equal(t, 935000.0, got.PeakRevenue)
	assert.Equal(t, []DayRevenue{
		{Date: "2024-03-20", Revenue: 1314500, Orders: 3},
		{Date: "2024-03-21", Revenue: 550000, Orders: 2},
	}, got.DailyRevenue)
}

func TestOrders(t *testing.T) {
	a, _ := newAggregator(t)

	got, err := a.Orders(context.Background(), Window{})
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalOrders)
	assert.InDelta(t, 372900.0, got.AverageOrderValue, 1e-6)
	require.Len(t, got.DailyOrders, 2)
	assert.InDelta(t, 275000.0, got.DailyOrders[1].AverageOrderValue, 1e-6)
}

func TestProfit(t *testing.T) {
	testCases := []struct {
		name   string
		opts   []Option
		costs  float64
		margin float64
	}{
		{name: "default ratio", costs: 1118700, margin: 40},
		{name: "custom ratio", opts: []Option{WithCostRatio(0.5)}, costs: 932250, margin: 50},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, _ := newAggregator(t, tc.opts...)
			got, err := a.Profit(context.Background(), Window{})
			require.NoError(t, err)
			assert.Equal(t, 1864500.0, got.Revenue)
			assert.InDelta(t, tc.costs, got.Costs, 1e-6)
			assert.InDelta(t, 1864500-tc.costs, got.Profit, 1e-6)
			assert.InDelta(t, tc.margin, got.ProfitMargin, 1e-9)
			assert.Len(t, got.DailyProfit, 2)
		})
	}
}

type floorNames map[string]string

func (f floorNames) FloorName(_ context.Context, id string) string { return f[id] }

func TestZones(t *testing.T) {
	a, _ := newAggregator(t)

	got, err := a.Zones(context.Background(), Window{})
	require.NoError(t, err)
	require.Len(t, got.Zones, 3)
	assert.Equal(t, "Tầng 3 - VIP", got.Zones[0].Zone)
	assert.Equal(t, "Tầng 2", got.Zones[1].Zone)
	assert.Equal(t, 588500.0, got.Zones[1].Revenue)
	assert.Equal(t, 294250.0, got.Zones[1].AverageOrderValue)
	assert.Equal(t, "Tầng 1", got.Zones[2].Zone)
	assert.Equal(t, 1864500.0, got.TotalRevenue)

	// Configured floor names win over the built-in labels.
	a.floors = floorNames{"floor-3": "Sân thượng"}
	got, err = a.Zones(context.Background(), Window{})
	require.NoError(t, err)
	assert.Equal(t, "Sân thượng", got.Zones[0].Zone)
	assert.Equal(t, "Tầng 2", got.Zones[1].Zone)
}

func TestZones_UnknownCode(t *testing.T) {
	h := payment.NewHistory(store.NewMemoryStore())
	ctx := context.Background()
	require.NoError(t, h.Append(ctx, model.PaymentRecord{TableCode: "T9-01", Total: 10, Timestamp: day(22, 10, 0)}))
	require.NoError(t, h.Append(ctx, model.PaymentRecord{TableCode: "bar", Total: 20, Timestamp: day(22, 11, 0)}))

	got, err := NewAggregator(h, nil, nil).Zones(ctx, Window{})
	require.NoError(t, err)
	require.Len(t, got.Zones, 1)
	assert.Equal(t, "Khác", got.Zones[0].Zone)
	assert.Equal(t, 2, got.Zones[0].Orders)
}

func TestCategories(t *testing.T) {
	a, _ := newAggregator(t)

	got, err := a.Categories(context.Background(), Window{})
	require.NoError(t, err)
	require.Len(t, got.Categories, 2)
	assert.Equal(t, "Món chính", got.Categories[0].Category)
	assert.Equal(t, 970000.0, got.Categories[0].Revenue)
	assert.Equal(t, "Đồ uống", got.Categories[1].Category)
	assert.Equal(t, 720000.0, got.Categories[1].Revenue)
	assert.Equal(t, 1690000.0, got.TotalRevenue)
}

func TestWindow(t *testing.T) {
	a, _ := newAggregator(t)
	ctx := context.Background()

	got, err := a.Orders(ctx, Window{Start: day(21, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalOrders)

	// The end bound is exclusive: the 19:15 payment is left out.
	got, err = a.Orders(ctx, Window{End: day(20, 19, 15)})
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalOrders)
}

func TestLocationShiftsBuckets(t *testing.T) {
	a, _ := newAggregator(t, WithLocation(time.FixedZone("ICT", 7*3600)))

	got, err := a.RevenueByTime(context.Background(), Window{})
	require.NoError(t, err)
	require.Len(t, got.DailyRevenue, 2)
	assert.Equal(t, "2024-03-21", got.DailyRevenue[0].Date)
	assert.Equal(t, 4, got.DailyRevenue[0].Orders)
	assert.Equal(t, "2024-03-22", got.DailyRevenue[1].Date)
	// 20:30 UTC is 03:30 local.
	assert.Equal(t, 3, got.PeakHour)
}

func TestTransfers(t *testing.T) {
	a, log := newAggregator(t)
	ctx := context.Background()

	for _, tr := range []model.TableTransfer{
		{SourceTableCode: "T1-02", SourceFloorName: "Tầng 1", Reason: "Gần cửa sổ", TransferredAt: day(20, 18, 0)},
		{SourceTableCode: "T1-03", SourceFloorName: "Tầng 1", Reason: "Thêm khách", TransferredAt: day(20, 19, 0)},
		{SourceTableCode: "T2-02", Reason: "Gần cửa sổ", TransferredAt: day(20, 20, 0)},
		{SourceTableCode: "T3-01", SourceFloorName: "Tầng 3 - VIP", Reason: "Gần cửa sổ", TransferredAt: day(22, 9, 0)},
	} {
		_, err := log.Record(ctx, tr)
		require.NoError(t, err)
	}

	got, err := a.Transfers(ctx, Window{Start: day(20, 0, 0), End: day(21, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalTransfers)
	assert.Equal(t, []Count{{Label: "Tầng 1", Count: 2}, {Label: "Tầng 2", Count: 1}}, got.ByFloor)
	assert.Equal(t, []Count{{Label: "Gần cửa sổ", Count: 2}, {Label: "Thêm khách", Count: 1}}, got.ByReason)
}

func TestExportCSV(t *testing.T) {
	a, _ := newAggregator(t)

	var buf bytes.Buffer
	require.NoError(t, a.ExportCSV(context.Background(), &buf, Window{Start: day(20, 0, 0)}))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 30)
	assert.Equal(t, "Báo cáo doanh thu nhà hàng", lines[0])
	assert.Equal(t, "Từ ngày:,20/03/2024", lines[1])
	assert.Equal(t, "Đến ngày:,Tất cả", lines[2])
	assert.Equal(t, "Tổng số khách:,24", lines[5])
	assert.Equal(t, "Thời gian trung bình/bàn:,54 phút", lines[6])
	assert.Equal(t, "Tỷ lệ overbooking:,40.0%", lines[7])
	assert.Equal(t, "2024-03-20 18:30:00,T1-02,4,Phở bò x2; Nước ngọt x2,130000,13000,143000,Tiền mặt", lines[11])
	assert.True(t, strings.HasSuffix(lines[15], ",QR Code"))
	assert.Equal(t, "Top món ăn được yêu thích", lines[17])
	assert.Equal(t, "Bia,7,140000", lines[19])

	r := csv.NewReader(strings.NewReader(buf.String()))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 26, "blank separator lines are skipped by readers")
}
