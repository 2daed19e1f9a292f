package customer

import (
	"context"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/store"
)

func newTestLedger(t *testing.T) (*Ledger, *time.Time) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	l := NewLedger(store.NewMemoryStore(), events.NewBus(), log, WithClock(func() time.Time { return now }))
	return l, &now
}

func TestCreateCustomer_IdempotentByPhone(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	first, err := l.CreateCustomer(ctx, Input{Name: "Nguyễn Văn A", Phone: "0123456789"}, "staff")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^KH\d{9}$`), first.CustomerCode)
	assert.Zero(t, first.TotalSpent)
	assert.Zero(t, first.VisitCount)

	again, err := l.CreateCustomer(ctx, Input{Name: "Someone Else", Phone: "0123456789", Email: "x@example.com"}, "staff")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	all, err := l.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = l.CreateCustomer(ctx, Input{Name: " ", Phone: ""}, "staff")
	var ve *model.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "phone")
}

func TestCreateOrder_UpdatesAggregates(t *testing.T) {
	l, now := newTestLedger(t)
	ctx := context.Background()

	c, err := l.CreateCustomer(ctx, Input{Name: "Lê Văn C", Phone: "0909123456"}, "staff")
	require.NoError(t, err)

	items := []model.OrderItem{
		{ID: "mc1", Name: "Bún bò", Price: 45000, Quantity: 3, Category: "Món chính"},
		{ID: "du4", Name: "Bia", Price: 20000, Quantity: 4, Category: "Đồ uống"},
	}
	*now = now.Add(2 * time.Hour)
	order, err := l.CreateOrder(ctx, OrderInput{
		CustomerID: c.ID, TableID: "202", TableCode: "T2-02",
		Items: items, TotalAmount: 236500, PaymentMethod: model.PaymentCard,
	}, "cashier")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, order.PaymentStatus)
	require.Len(t, order.OrderItems, 2)
	assert.Equal(t, 135000.0, order.OrderItems[0].TotalPrice)
	assert.Equal(t, order.ID+"-item-1", order.OrderItems[1].ID)
	assert.Equal(t, "du4", order.OrderItems[1].MenuItemID)

	got, err := l.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 236500.0, got.TotalSpent)
	assert.Equal(t, 1, got.VisitCount)
	assert.Equal(t, *now, got.LastVisit)
	assert.Equal(t, c.FirstVisit, got.FirstVisit)

	_, err = l.CreateOrder(ctx, OrderInput{CustomerID: "customer-missing", TotalAmount: 1, PaymentMethod: model.PaymentCash}, "cashier")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = l.CreateOrder(ctx, OrderInput{CustomerID: c.ID, TotalAmount: 1, PaymentMethod: "crypto"}, "cashier")
	assert.ErrorIs(t, err, model.ErrValidation)

	// Rejected orders leave the aggregates alone.
	got, err = l.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.VisitCount)

	loaded, err := l.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalAmount, loaded.TotalAmount)
}

func TestUpdate_OnlyNameAndEmail(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	c, err := l.CreateCustomer(ctx, Input{Name: "Trần Thị B", Phone: "0987654321"}, "staff")
	require.NoError(t, err)

	name, email := "Trần Thị Bích", "bich@example.com"
	updated, err := l.Update(ctx, c.ID, Patch{Name: &name, Email: &email}, "staff")
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, email, updated.Email)
	assert.Equal(t, c.Phone, updated.Phone)
	assert.Equal(t, c.CustomerCode, updated.CustomerCode)

	blank := ""
	_, err = l.Update(ctx, c.ID, Patch{Name: &blank}, "staff")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = l.Update(ctx, "customer-x", Patch{}, "staff")
	assert.ErrorIs(t, err, model.ErrNotFound)

	byPhone, err := l.GetByPhone(ctx, "0987654321")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byPhone.ID)
}

func TestSearchAndOrders(t *testing.T) {
	l, now := newTestLedger(t)
	ctx := context.Background()

	a, err := l.CreateCustomer(ctx, Input{Name: "Hoàng Văn E", Phone: "0977888999", Email: "e@vip.vn"}, "staff")
	require.NoError(t, err)
	_, err = l.CreateOrder(ctx, OrderInput{CustomerID: a.ID, TotalAmount: 935000, PaymentMethod: model.PaymentQR}, "cashier")
	require.NoError(t, err)

	*now = now.AddDate(0, 0, 3)
	b, err := l.CreateCustomer(ctx, Input{Name: "Đỗ Thị F", Phone: "0866777888"}, "staff")
	require.NoError(t, err)
	_, err = l.CreateOrder(ctx, OrderInput{CustomerID: b.ID, TotalAmount: 120000, PaymentMethod: model.PaymentCash}, "cashier")
	require.NoError(t, err)
	_, err = l.CreateOrder(ctx, OrderInput{CustomerID: a.ID, TotalAmount: 50000, PaymentMethod: model.PaymentCash}, "cashier")
	require.NoError(t, err)

	minSpend := 500000.0
	testCases := []struct {
		name    string
		filters SearchFilters
		want    []string
	}{
		{name: "all", filters: SearchFilters{}, want: []string{a.ID, b.ID}},
		{name: "term on email", filters: SearchFilters{Term: "VIP"}, want: []string{a.ID}},
		{name: "term on phone", filters: SearchFilters{Term: "0866"}, want: []string{b.ID}},
		{name: "min spend", filters: SearchFilters{MinAmount: &minSpend}, want: []string{a.ID}},
		{name: "paid by qr", filters: SearchFilters{PaymentMethod: model.PaymentQR}, want: []string{a.ID}},
		{name: "visit window", filters: SearchFilters{To: now.AddDate(0, 0, -1)}, want: []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := l.Search(ctx, tc.filters)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.ElementsMatch(t, tc.want, ids)
		})
	}

	orders, err := l.Orders(ctx, a.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 50000.0, orders[0].TotalAmount, "newest first")

	early, err := l.Orders(ctx, a.ID, time.Time{}, now.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, early, 1)
	assert.Equal(t, 935000.0, early[0].TotalAmount)

	st, err := l.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalCustomers)
	assert.Equal(t, 1105000.0, st.TotalRevenue)
	assert.Equal(t, 552500.0, st.AverageOrderValue)
	assert.Equal(t, a.ID, st.TopCustomers[0].ID)
	assert.Len(t, st.RecentOrders, 3)
}

func TestExportImportAndMigrate(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	created, err := l.MigrateFromBookings(ctx, []model.Booking{
		{CustomerName: "Nguyễn Văn A", PhoneNumber: "0123456789"},
		{CustomerName: "Nguyễn Văn A", PhoneNumber: "0123456789"},
		{CustomerName: "Trần Thị B", PhoneNumber: "0987654321"},
		{CustomerName: "", PhoneNumber: "0900000000"},
	}, "system")
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	snap, err := l.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Customers, 2)
	assert.Empty(t, snap.Orders)

	other, _ := newTestLedger(t)
	require.NoError(t, other.Import(ctx, snap, "manager"))
	imported, err := other.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, snap.Customers, imported)
}
