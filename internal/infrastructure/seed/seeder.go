// Package seed loads demo requisitions into an empty store so a fresh
// development environment has data to browse. Seeding is config-gated and
// never touches a store that already holds requisitions.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/skc/procurement/internal/domain/reference"
	"github.com/skc/procurement/internal/domain/requisition"
)

// Seeder writes the demo data set.
type Seeder struct {
	repo    requisition.Repository
	catalog reference.Catalog
	logger  *zap.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(repo requisition.Repository, catalog reference.Catalog, logger *zap.Logger) *Seeder {
	return &Seeder{repo: repo, catalog: catalog, logger: logger.Named("seed")}
}

type demoItem struct {
	nomenclatureCode string
	quantity         int64
	price            string
	leadDays         int
	comment          string
}

type demoRequisition struct {
	organizerID string
	items       []demoItem
	transitions []requisition.Status
}

// Run seeds demo requisitions if the store is empty.
func (s *Seeder) Run(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing data: %w", err)
	}
	if count > 0 {
		s.logger.Info("store not empty, skipping demo seed", zap.Int64("requisitions", count))
		return nil
	}

	demos := []demoRequisition{
		{
			organizerID: "demo-organizer-1",
			items: []demoItem{
				{"TRU-001", 10, "1200.00", 14, "Quarterly office restock"},
				{"TRU-002", 50, "85.50", 14, ""},
			},
		},
		{
			organizerID: "demo-organizer-1",
			items: []demoItem{
				{"TRU-004", 4, "18500.00", 21, "Replacement cartridges for the print room"},
			},
			transitions: []requisition.Status{requisition.StatusSubmitted, requisition.StatusApproved},
		},
		{
			organizerID: "demo-organizer-2",
			items: []demoItem{
				{"TRU-008", 5, "4200.00", 30, ""},
				{"TRU-007", 12, "950.00", 30, ""},
			},
			transitions: []requisition.Status{
				requisition.StatusSubmitted,
				requisition.StatusApproved,
				requisition.StatusInProcurement,
				requisition.StatusClosed,
			},
		},
		{
			organizerID: "demo-organizer-2",
			items: []demoItem{
				{"TRU-010", 6, "7400.00", 14, "Order superseded by facilities request"},
			},
			transitions: []requisition.Status{requisition.StatusCancelled},
		},
	}

	now := time.Now()
	year := now.Year()
	for i, demo := range demos {
		number := requisition.FormatNumber(year, int64(i+1))
		if err := s.createDemo(ctx, number, demo, now); err != nil {
			return fmt.Errorf("failed to seed %s: %w", number, err)
		}
	}

	s.logger.Info("demo data seeded", zap.Int("requisitions", len(demos)))
	return nil
}

func (s *Seeder) createDemo(ctx context.Context, number string, demo demoRequisition, now time.Time) error {
	r, err := requisition.NewRequisition(number, demo.organizerID)
	if err != nil {
		return err
	}

	for _, di := range demo.items {
		n, ok := s.catalog.FindNomenclature(di.nomenclatureCode)
		if !ok {
			return fmt.Errorf("unknown demo nomenclature %s", di.nomenclatureCode)
		}
		price, err := decimal.NewFromString(di.price)
		if err != nil {
			return err
		}
		item, err := requisition.NewItem(
			n.Code,
			n.Name,
			decimal.NewFromInt(di.quantity),
			n.AllowedUnitCodes[0],
			price,
			now.AddDate(0, 0, di.leadDays),
			di.comment,
		)
		if err != nil {
			return err
		}
		if err := r.AddItem(item, now); err != nil {
			return err
		}
	}

	for _, target := range demo.transitions {
		if err := r.TransitionTo(target); err != nil {
			return err
		}
	}

	return s.repo.Save(ctx, r)
}
