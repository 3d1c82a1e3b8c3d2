package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skc/procurement/internal/infrastructure/auth"
	"github.com/skc/procurement/internal/interfaces/http/dto"
)

// AuthHandler exposes the authenticated principal.
type AuthHandler struct {
	BaseHandler
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/me", h.Me)
}

// MeResponse describes the authenticated user.
type MeResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Me returns the current principal.
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized,
			dto.NewErrorResponse(dto.ErrCodeUnauthorized, "authentication required"))
		return
	}
	h.Success(c, MeResponse{Username: user.Username, Role: user.Role})
}
