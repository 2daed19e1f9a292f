package tables

import (
	"context"

	"github.com/sirupsen/logrus"

	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/model"
)

// ChangeStatus moves a table along the lifecycle. Entering Reserved needs a
// valid booking, which is checked before anything is written.
func (s *Service) ChangeStatus(ctx context.Context, id string, to model.Status, booking *model.Booking, actor string) (model.Table, error) {
	if !to.Valid() {
		return model.Table{}, model.Invalid("status", "unknown table status")
	}
	if to == model.StatusReserved || booking != nil {
		if err := model.ValidateBooking(booking); err != nil {
			return model.Table{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := s.load(ctx)
	if err != nil {
		return model.Table{}, err
	}
	i := indexOf(tables, id)
	if i < 0 {
		return model.Table{}, notFound(id)
	}
	table := tables[i]
	if err := CheckTransition(table, to); err != nil {
		return model.Table{}, err
	}

	prev := table.Status
	if len(table.OrderItems) > 0 && !to.AllowsOrders() {
		s.log.WithFields(logrus.Fields{
			"table_id": id,
			"status":   to,
			"items":    len(table.OrderItems),
		}).Warn("discarding order items on status change")
	}
	table = applyStatus(table, to, booking)
	table.Touch(s.now(), actor)
	tables[i] = table
	if err := s.save(ctx, tables); err != nil {
		return model.Table{}, err
	}

	s.log.WithFields(logrus.Fields{"table_id": id, "from": prev, "to": to}).Info("table status changed")
	s.publish(ctx, events.TableStatusChanged, table, prev, actor)
	return table, nil
}

// Book reserves an Empty-Clean table.
func (s *Service) Book(ctx context.Context, id string, booking model.Booking, actor string) (model.Table, error) {
	return s.ChangeStatus(ctx, id, model.StatusReserved, &booking, actor)
}

// UpdateOrder replaces the table's order items. A Reserved table is promoted
// to Serving; any status other than Reserved or Serving is refused.
func (s *Service) UpdateOrder(ctx context.Context, id string, items []model.OrderItem, actor string) (model.Table, error) {
	kept, err := model.ValidateOrderItems(items)
	if err != nil {
		return model.Table{}, err
	}
	return s.editOrder(ctx, id, actor, func([]model.OrderItem) ([]model.OrderItem, error) {
		return kept, nil
	})
}

// AddItem appends line to the table's order, topping up an existing line
// with the same item, notes and price instead of repeating it.
func (s *Service) AddItem(ctx context.Context, id string, line model.OrderItem, actor string) (model.Table, error) {
	return s.editOrder(ctx, id, actor, func(current []model.OrderItem) ([]model.OrderItem, error) {
		return model.ValidateOrderItems(mergeLine(current, line))
	})
}

func mergeLine(items []model.OrderItem, line model.OrderItem) []model.OrderItem {
	out := append([]model.OrderItem(nil), items...)
	for i := range out {
		if out[i].ID == line.ID && out[i].Notes == line.Notes && out[i].Price == line.Price {
			out[i].Quantity += line.Quantity
			return out
		}
	}
	return append(out, line)
}

func (s *Service) editOrder(ctx context.Context, id, actor string, edit func([]model.OrderItem) ([]model.OrderItem, error)) (model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := s.load(ctx)
	if err != nil {
		return model.Table{}, err
	}
	i := indexOf(tables, id)
	if i < 0 {
		return model.Table{}, notFound(id)
	}
	table := tables[i]
	prev := table.Status

	switch table.Status {
	case model.StatusServing:
	case model.StatusReserved:
		if err := CheckTransition(table, model.StatusServing); err != nil {
			return model.Table{}, err
		}
		table = applyStatus(table, model.StatusServing, nil)
	default:
		return model.Table{}, model.Violation(model.CodeOrderNotAllowed,
			"table %s is %s; orders can only be taken for reserved or serving tables", table.Code, table.Status)
	}

	items, err := edit(table.OrderItems)
	if err != nil {
		return model.Table{}, err
	}
	table.OrderItems = items
	table.Touch(s.now(), actor)
	tables[i] = table
	if err := s.save(ctx, tables); err != nil {
		return model.Table{}, err
	}

	s.publish(ctx, events.TableOrderUpdated, table, prev, actor)
	if prev != table.Status {
		s.publish(ctx, events.TableStatusChanged, table, prev, actor)
	}
	return table, nil
}

// SettlePayment clears a paid Serving table and marks it Dirty through the
// regular transition policy. billed is the order the payment covered; when
// the table's order has changed since, nothing is written and the unpaid
// lines stay on the table.
func (s *Service) SettlePayment(ctx context.Context, id string, billed []model.OrderItem, actor string) (model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := s.load(ctx)
	if err != nil {
		return model.Table{}, err
	}
	i := indexOf(tables, id)
	if i < 0 {
		return model.Table{}, notFound(id)
	}
	table := tables[i]
	if table.Status != model.StatusServing {
		return model.Table{}, model.Violation(model.CodeInvalidTransition,
			"table %s is %s; only serving tables can be settled", table.Code, table.Status)
	}
	if !sameItems(table.OrderItems, billed) {
		return model.Table{}, model.Violation(model.CodeUnpaidItems,
			"table %s order changed after billing; %.0f is on the table, %.0f was paid",
			table.Code, table.OrderTotal(), model.Subtotal(billed))
	}

	table.OrderItems = nil
	if err := CheckTransition(table, model.StatusDirty); err != nil {
		return model.Table{}, err
	}
	table = applyStatus(table, model.StatusDirty, nil)
	table.Touch(s.now(), actor)
	tables[i] = table
	if err := s.save(ctx, tables); err != nil {
		return model.Table{}, err
	}

	s.publish(ctx, events.TableStatusChanged, table, model.StatusServing, actor)
	return table, nil
}

func sameItems(a, b []model.OrderItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Quantity != b[i].Quantity || a[i].Price != b[i].Price || a[i].Notes != b[i].Notes {
			return false
		}
	}
	return true
}
