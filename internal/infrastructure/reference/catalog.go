// Package reference provides the in-memory reference catalog. The unit and
// nomenclature sets are fixed at startup and shared read-only across
// requests, so lookups need no locking.
package reference

import (
	"go.uber.org/zap"

	"github.com/skc/procurement/internal/domain/reference"
)

// InMemoryCatalog implements reference.Catalog over static data.
type InMemoryCatalog struct {
	units             []reference.Unit
	nomenclatures     []reference.Nomenclature
	unitIndex         map[string]reference.Unit
	nomenclatureIndex map[string]reference.Nomenclature
}

// NewInMemoryCatalog builds the catalog with the standard unit and
// nomenclature sets and logs what was loaded.
func NewInMemoryCatalog(logger *zap.Logger) *InMemoryCatalog {
	c := newCatalog(defaultUnits(), defaultNomenclatures())
	logger.Info("reference catalog loaded",
		zap.Int("units", len(c.units)),
		zap.Int("nomenclatures", len(c.nomenclatures)),
	)
	return c
}

// NewCatalogWithData builds a catalog from caller-supplied data. Used in
// tests that need a smaller or differently shaped reference set.
func NewCatalogWithData(units []reference.Unit, nomenclatures []reference.Nomenclature) *InMemoryCatalog {
	return newCatalog(units, nomenclatures)
}

func newCatalog(units []reference.Unit, nomenclatures []reference.Nomenclature) *InMemoryCatalog {
	c := &InMemoryCatalog{
		units:             units,
		nomenclatures:     nomenclatures,
		unitIndex:         make(map[string]reference.Unit, len(units)),
		nomenclatureIndex: make(map[string]reference.Nomenclature, len(nomenclatures)),
	}
	for _, u := range units {
		c.unitIndex[u.Code] = u
	}
	for _, n := range nomenclatures {
		c.nomenclatureIndex[n.Code] = n
	}
	return c
}

// FindNomenclature looks up a nomenclature by code.
func (c *InMemoryCatalog) FindNomenclature(code string) (reference.Nomenclature, bool) {
	n, ok := c.nomenclatureIndex[code]
	return n, ok
}

// FindUnit looks up a unit by code.
func (c *InMemoryCatalog) FindUnit(code string) (reference.Unit, bool) {
	u, ok := c.unitIndex[code]
	return u, ok
}

// Nomenclatures returns all nomenclatures in catalog order.
func (c *InMemoryCatalog) Nomenclatures() []reference.Nomenclature {
	out := make([]reference.Nomenclature, len(c.nomenclatures))
	copy(out, c.nomenclatures)
	return out
}

// Units returns all units in catalog order.
func (c *InMemoryCatalog) Units() []reference.Unit {
	out := make([]reference.Unit, len(c.units))
	copy(out, c.units)
	return out
}

func defaultUnits() []reference.Unit {
	return []reference.Unit{
		{Code: "PIECE", Name: "Piece"},
		{Code: "PACK", Name: "Pack"},
		{Code: "BOX", Name: "Box"},
		{Code: "KG", Name: "Kilogram"},
		{Code: "LITER", Name: "Liter"},
		{Code: "METER", Name: "Meter"},
		{Code: "SET", Name: "Set"},
	}
}

func defaultNomenclatures() []reference.Nomenclature {
	return []reference.Nomenclature{
		{Code: "TRU-001", Name: "Office paper A4", AllowedUnitCodes: []string{"PACK", "BOX"}},
		{Code: "TRU-002", Name: "Ballpoint pen", AllowedUnitCodes: []string{"PIECE", "PACK"}},
		{Code: "TRU-003", Name: "Stapler", AllowedUnitCodes: []string{"PIECE"}},
		{Code: "TRU-004", Name: "Printer toner cartridge", AllowedUnitCodes: []string{"PIECE"}},
		{Code: "TRU-005", Name: "Whiteboard marker", AllowedUnitCodes: []string{"PIECE", "PACK"}},
		{Code: "TRU-006", Name: "Copier paper A3", AllowedUnitCodes: []string{"PACK", "BOX"}},
		{Code: "TRU-007", Name: "Cleaning detergent", AllowedUnitCodes: []string{"LITER"}},
		{Code: "TRU-008", Name: "Coffee beans", AllowedUnitCodes: []string{"KG"}},
		{Code: "TRU-009", Name: "Network cable Cat6", AllowedUnitCodes: []string{"METER", "BOX"}},
		{Code: "TRU-010", Name: "Desk lamp", AllowedUnitCodes: []string{"PIECE"}},
		{Code: "TRU-011", Name: "First aid kit", AllowedUnitCodes: []string{"SET"}},
		{Code: "TRU-012", Name: "Archive folder", AllowedUnitCodes: []string{"PIECE", "PACK", "BOX"}},
	}
}

// Interface compliance check
var _ reference.Catalog = (*InMemoryCatalog)(nil)
