package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-api/internal/repository"
)

// UserHandler mantiene dependencias para endpoints de usuarios.
type UserHandler struct {
	logger *zap.Logger
	users  repository.UserRepository
}

// NewUserHandler crea una instancia de UserHandler con dependencias necesarias.
func NewUserHandler(logger *zap.Logger, users repository.UserRepository) *UserHandler {
	return &UserHandler{
		logger: logger,
		users:  users,
	}
}

// GetUser maneja GET /user y devuelve los claims autenticados.
func (h *UserHandler) GetUser(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "You must be authenticated")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "User Details",
		"user": gin.H{
			"id":    claims.UserID,
			"name":  claims.Name,
			"email": claims.Email,
			"role":  claims.Role,
		},
	})
}

// ListUsers maneja GET /user/all (solo admin).
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
