package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

const allDates = "Tất cả"

// ExportCSV writes the overview, every transaction in the window and the top
// dishes as a single CSV document.
func (a *Aggregator) ExportCSV(ctx context.Context, out io.Writer, w Window) error {
	records, err := a.records(ctx, w)
	if err != nil {
		return err
	}
	ov, err := a.Overview(ctx, w)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(out)
	rows := [][]string{
		{"Báo cáo doanh thu nhà hàng"},
		{"Từ ngày:", a.dateLabel(w.Start)},
		{"Đến ngày:", a.dateLabel(w.End)},
		{""},
		{"Thống kê tổng quan"},
		{"Tổng số khách:", strconv.Itoa(ov.TotalCustomers)},
		{"Thời gian trung bình/bàn:", fmt.Sprintf("%d phút", int(math.Round(ov.AverageDiningTime)))},
		{"Tỷ lệ overbooking:", fmt.Sprintf("%.1f%%", ov.OverbookingRate*100)},
		{""},
		{"Chi tiết giao dịch"},
		{"Thời gian", "Mã bàn", "Số khách", "Món ăn", "Tạm tính", "VAT", "Tổng cộng", "Thanh toán"},
	}
	for _, r := range records {
		guests := ""
		if r.BookingInfo != nil && r.BookingInfo.NumberOfGuests > 0 {
			guests = strconv.Itoa(r.BookingInfo.NumberOfGuests)
		}
		items := make([]string, 0, len(r.OrderItems))
		for _, item := range r.OrderItems {
			items = append(items, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
		}
		rows = append(rows, []string{
			r.Timestamp.In(a.loc).Format("2006-01-02 15:04:05"),
			r.TableCode,
			guests,
			strings.Join(items, "; "),
			money(r.Subtotal),
			money(r.Tax),
			money(r.Total),
			MethodLabel(r.PaymentMethod),
		})
	}
	rows = append(rows,
		[]string{""},
		[]string{"Top món ăn được yêu thích"},
		[]string{"Tên món", "Số lượng", "Doanh thu"},
	)
	for _, d := range ov.PopularDishes {
		rows = append(rows, []string{d.Name, strconv.Itoa(d.Quantity), money(d.Revenue)})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (a *Aggregator) dateLabel(t time.Time) string {
	if t.IsZero() {
		return allDates
	}
	return t.In(a.loc).Format("02/01/2006")
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
