// Package reference defines the read-only reference data the requisition
// engine validates against: units of measure and procurement nomenclatures.
package reference

// Unit is a unit of measure.
type Unit struct {
	Code string
	Name string
}

// Nomenclature is a catalog entry for goods, works or services, carrying the
// canonical display name and the set of units it may be ordered in.
type Nomenclature struct {
	Code             string
	Name             string
	AllowedUnitCodes []string
}

// AllowsUnit reports whether the unit code is in the allowed set.
func (n Nomenclature) AllowsUnit(unitCode string) bool {
	for _, code := range n.AllowedUnitCodes {
		if code == unitCode {
			return true
		}
	}
	return false
}

// Catalog is the lookup port. Implementations are immutable for the process
// lifetime, so no staleness handling is required by callers.
type Catalog interface {
	FindNomenclature(code string) (Nomenclature, bool)
	FindUnit(code string) (Unit, bool)
	Nomenclatures() []Nomenclature
	Units() []Unit
}
