package tables

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/transfer"
)

// TransferRequest asks to move the party at SourceID to TargetID.
type TransferRequest struct {
	SourceID      string `json:"sourceTableId"`
	TargetID      string `json:"targetTableId"`
	Reason        string `json:"reason"`
	TransferredBy string `json:"transferredBy"`
}

// TransferTargets lists the tables the party at sourceID could move to.
func (s *Service) TransferTargets(ctx context.Context, sourceID string) ([]model.Table, error) {
	tables, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(tables, sourceID)
	if i < 0 {
		return nil, notFound(sourceID)
	}
	return transfer.EligibleTargets(tables[i], tables), nil
}

// Transfer moves status, booking and order items from the source to the
// target table and leaves the source Dirty. Both tables are written in one
// snapshot; the log entry is a separate write.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (model.TableTransfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := s.load(ctx)
	if err != nil {
		return model.TableTransfer{}, err
	}
	si := indexOf(tables, req.SourceID)
	if si < 0 {
		return model.TableTransfer{}, notFound(req.SourceID)
	}
	ti := indexOf(tables, req.TargetID)
	if ti < 0 {
		return model.TableTransfer{}, notFound(req.TargetID)
	}
	source, target := tables[si], tables[ti]
	if err := transfer.Validate(source, target, req.Reason); err != nil {
		return model.TableTransfer{}, err
	}

	now := s.now()
	record := model.TableTransfer{
		SourceTableID:     source.ID,
		SourceTableCode:   source.Code,
		TargetTableID:     target.ID,
		TargetTableCode:   target.Code,
		Reason:            req.Reason,
		TransferredBy:     req.TransferredBy,
		TransferredAt:     now,
		SourceTableStatus: source.Status,
		TargetTableStatus: target.Status,
		SourceFloorID:     source.FloorID,
		SourceFloorName:   s.placement.FloorName(ctx, source.FloorID),
		TargetFloorID:     target.FloorID,
		TargetFloorName:   s.placement.FloorName(ctx, target.FloorID),
		OrderItems:        append([]model.OrderItem(nil), source.OrderItems...),
	}
	if source.Booking != nil {
		b := *source.Booking
		record.Booking = &b
		record.CustomerName = b.CustomerName
		record.NumberOfGuests = b.NumberOfGuests
	}

	target.Status = source.Status
	target.Booking = source.Booking
	target.OrderItems = source.OrderItems
	target.Touch(now, req.TransferredBy)

	source = applyStatus(source, model.StatusDirty, nil)
	source.Touch(now, req.TransferredBy)

	tables[si], tables[ti] = source, target
	if err := s.save(ctx, tables); err != nil {
		return model.TableTransfer{}, err
	}

	logged, err := s.transfers.Record(ctx, record)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"source": source.Code,
			"target": target.Code,
		}).Error("tables moved but the transfer log write failed")
		return model.TableTransfer{}, fmt.Errorf("transfer %s -> %s applied but not logged: %w", source.Code, target.Code, err)
	}

	s.publish(ctx, events.TableStatusChanged, source, record.SourceTableStatus, req.TransferredBy)
	s.publish(ctx, events.TableStatusChanged, target, record.TargetTableStatus, req.TransferredBy)
	return logged, nil
}
