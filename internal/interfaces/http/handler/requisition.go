package handler

import (
	"github.com/gin-gonic/gin"

	app "github.com/skc/procurement/internal/application/requisition"
	"github.com/skc/procurement/internal/interfaces/http/middleware"
)

// RequisitionHandler handles requisition lifecycle endpoints.
type RequisitionHandler struct {
	BaseHandler
	service *app.Service
}

// NewRequisitionHandler creates a new RequisitionHandler
func NewRequisitionHandler(service *app.Service) *RequisitionHandler {
	return &RequisitionHandler{service: service}
}

// RegisterRoutes registers requisition lifecycle routes
func (h *RequisitionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/requisitions")
	{
		g.GET("", h.List)
		g.POST("", h.Create)
		g.GET("/:id", h.Get)
		g.PATCH("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
		g.POST("/:id/transition", h.Transition)
	}
}

// List returns all requisitions.
// GET /api/v1/requisitions
func (h *RequisitionHandler) List(c *gin.Context) {
	out, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, out, int64(len(out)))
}

// Create creates an empty DRAFT requisition.
// POST /api/v1/requisitions
func (h *RequisitionHandler) Create(c *gin.Context) {
	var req app.CreateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	out, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, out)
}

// Get returns one requisition with its items.
// GET /api/v1/requisitions/:id
func (h *RequisitionHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// Update patches the header of a DRAFT requisition.
// PATCH /api/v1/requisitions/:id
func (h *RequisitionHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req app.UpdateRequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	out, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}

// Delete removes a DRAFT requisition.
// DELETE /api/v1/requisitions/:id
func (h *RequisitionHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Transition moves a requisition along the lifecycle.
// POST /api/v1/requisitions/:id/transition
func (h *RequisitionHandler) Transition(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req app.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(c, err)
		return
	}

	out, err := h.service.Transition(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, out)
}
