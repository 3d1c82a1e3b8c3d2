package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/skc/procurement/internal/domain/reference"
)

// ReferenceHandler serves the read-only reference catalog.
type ReferenceHandler struct {
	BaseHandler
	catalog reference.Catalog
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(catalog reference.Catalog) *ReferenceHandler {
	return &ReferenceHandler{catalog: catalog}
}

// RegisterRoutes registers reference catalog routes
func (h *ReferenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/reference")
	{
		g.GET("/units", h.Units)
		g.GET("/nomenclatures", h.Nomenclatures)
	}
}

// UnitResponse represents a unit of measure on the wire.
type UnitResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// NomenclatureResponse represents a catalog entry on the wire.
type NomenclatureResponse struct {
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	AllowedUnitCodes []string `json:"allowedUnitCodes"`
}

// Units returns all units of measure.
// GET /api/v1/reference/units
func (h *ReferenceHandler) Units(c *gin.Context) {
	units := h.catalog.Units()
	out := make([]UnitResponse, len(units))
	for i, u := range units {
		out[i] = UnitResponse{Code: u.Code, Name: u.Name}
	}
	h.SuccessList(c, out, int64(len(out)))
}

// Nomenclatures returns the full nomenclature catalog.
// GET /api/v1/reference/nomenclatures
func (h *ReferenceHandler) Nomenclatures(c *gin.Context) {
	noms := h.catalog.Nomenclatures()
	out := make([]NomenclatureResponse, len(noms))
	for i, n := range noms {
		out[i] = NomenclatureResponse{
			Code:             n.Code,
			Name:             n.Name,
			AllowedUnitCodes: n.AllowedUnitCodes,
		}
	}
	h.SuccessList(c, out, int64(len(out)))
}
