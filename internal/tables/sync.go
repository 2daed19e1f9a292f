package tables

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"restaurant-pos-backend/internal/floorplan"
	"restaurant-pos-backend/internal/model"
	"restaurant-pos-backend/internal/parse"
	"restaurant-pos-backend/internal/store"
)

//go:embed demo_tables.json
var demoTablesJSON []byte

// SyncConfigs backfills floor, category and audit fields on stored tables and
// gives every active table without a config one on its floor. Tables that do
// not fit are logged and skipped. It returns the number of configs created.
func (s *Service) SyncConfigs(ctx context.Context, actor string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	changed := false
	for i := range tables {
		t := &tables[i]
		if t.FloorID == "" {
			t.FloorID = parse.DefaultFloorID(t.Zone, t.Code)
			changed = true
		}
		if t.CategoryID == "" {
			t.CategoryID = parse.DefaultCategoryID(t.Zone)
			changed = true
		}
		if t.IsActive == nil {
			t.IsActive = model.Bool(true)
			changed = true
		}
		if t.CreatedAt.IsZero() {
			t.Stamp(now, actor)
			changed = true
		}
	}
	if changed {
		if err := s.save(ctx, tables); err != nil {
			return 0, err
		}
	}

	created := 0
	for _, t := range tables {
		if !t.Active() {
			continue
		}
		_, err := s.placement.ConfigForTable(ctx, t.ID)
		if err == nil {
			continue
		}
		if !isNotFound(err) {
			return created, err
		}
		_, err = s.placement.CreateTableConfig(ctx, floorplan.TableConfigInput{
			TableID:    t.ID,
			FloorID:    t.FloorID,
			CategoryID: t.CategoryID,
		}, actor)
		var rule *model.RuleError
		var invalid *model.ValidationError
		switch {
		case err == nil:
			created++
		case errors.As(err, &rule), errors.As(err, &invalid):
			s.log.WithError(err).WithFields(logrus.Fields{
				"table_id": t.ID,
				"floor_id": t.FloorID,
			}).Warn("table left without a config")
		default:
			return created, err
		}
	}
	if created > 0 {
		s.log.WithField("created", created).Info("table configs synced")
	}
	return created, nil
}

// EnsureDemoTables stores the bundled demo floor when no tables exist yet and
// syncs their configs.
func (s *Service) EnsureDemoTables(ctx context.Context, actor string) error {
	exists, err := store.Exists(ctx, s.store, store.KeyTables)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	var demo []model.Table
	if err := json.Unmarshal(demoTablesJSON, &demo); err != nil {
		return fmt.Errorf("failed to decode demo tables: %w", err)
	}
	s.mu.Lock()
	err = s.save(ctx, demo)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.log.WithField("tables", len(demo)).Info("seeded demo tables")
	_, err = s.SyncConfigs(ctx, actor)
	return err
}
