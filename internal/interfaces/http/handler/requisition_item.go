package handler

import (
	"github.com/gin-gonic/gin"

	app "github.com/skc/procurement/internal/application/requisition"
	"github.com/skc/procurement/internal/interfaces/http/middleware"
)

// RequisitionItemHandler handles item endpoints nested under a requisition,
// plus the summary and reactivation endpoints.
type RequisitionItemHandler struct {
	BaseHandler
	items *app.ItemService
}

// NewRequisitionItemHandler creates a new RequisitionItemHandler
func NewRequisitionItemHandler(items *app.ItemService) *RequisitionItemHandler {
	return &RequisitionItemHandler{items: items}
}

// RegisterRoutes registers item, summary and reactivation routes
func (h *RequisitionItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/requisitions/:id")
	{
		g.POST("/items", h.CreateItem)
		g.PATCH("/items/:itemId", h.PatchItem)
		g.DELETE("/items/:itemId", h.DeleteItem)
		g.GET("/summary", h.Summary)
		g.POST("/reactivate", h.Reactivate)
	}
}

// CreateItem appends a line to a DRAFT requisition.
// POST /api/v1/requisitions/:id/items
func (h *RequisitionItemHandler) CreateItem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req app.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	out, err := h.items.CreateItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, out)
}

// PatchItem applies a version-checked update to a line.
// PATCH /api/v1/requisitions/:id/items/:itemId
func (h *RequisitionItemHandler) PatchItem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req app.PatchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	out, err := h.items.PatchItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// DeleteItem removes a line from a DRAFT requisition.
// DELETE /api/v1/requisitions/:id/items/:itemId
func (h *RequisitionItemHandler) DeleteItem(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	itemID, err := pathID(c, "itemId")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.items.DeleteItem(c.Request.Context(), id, itemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Summary returns aggregates over the requisition's items.
// GET /api/v1/requisitions/:id/summary
func (h *RequisitionItemHandler) Summary(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out, err := h.items.GetSummary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// Reactivate reopens a CANCELLED requisition back to DRAFT.
// POST /api/v1/requisitions/:id/reactivate
func (h *RequisitionItemHandler) Reactivate(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out, err := h.items.Reactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}
