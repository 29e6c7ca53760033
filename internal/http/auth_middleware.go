package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-api/internal/service"
)

const (
	authClaimsKey     = "auth_claims"
	refreshCookieName = "refreshToken"
)

// SessionMiddleware valida el access token y, si expiró, intenta renovarlo
// una única vez con el refresh token de la cookie. El token renovado se
// expone al cliente en el header Authorization de la respuesta.
func SessionMiddleware(logger *zap.Logger, tokenSvc *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenSvc == nil {
			abortWithError(c, http.StatusInternalServerError, "Token service is not configured")
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			abortWithError(c, http.StatusUnauthorized, "Authentication token is required")
			return
		}
		if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			abortWithError(c, http.StatusUnauthorized, "Invalid token format. Token must start with 'Bearer '")
			return
		}
		token := strings.TrimSpace(header[len("Bearer "):])
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "Token is missing")
			return
		}

		claims, err := tokenSvc.VerifyAccessToken(token)
		switch {
		case err == nil:
			c.Set(authClaimsKey, claims)
			c.Next()
		case errors.Is(err, service.ErrTokenExpired):
			renewSession(c, logger, tokenSvc)
		case errors.Is(err, service.ErrTokenInvalid):
			abortWithError(c, http.StatusUnauthorized, "Invalid token")
		default:
			logger.Error("access token verification failed", zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, "Internal server error during authentication")
		}
	}
}

// renewSession es el único intento de renovación por request, nunca recursivo.
func renewSession(c *gin.Context, logger *zap.Logger, tokenSvc *service.TokenService) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || strings.TrimSpace(refreshToken) == "" {
		abortWithError(c, http.StatusUnauthorized, "Session expired. Login again")
		return
	}

	claims, err := tokenSvc.VerifyRefreshToken(refreshToken)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrTokenExpired):
		abortWithError(c, http.StatusUnauthorized, "Refresh token expired. Login again")
		return
	case errors.Is(err, service.ErrTokenInvalid):
		abortWithError(c, http.StatusUnauthorized, "Invalid token")
		return
	default:
		logger.Error("refresh token verification failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Internal server error during authentication")
		return
	}

	newAccessToken, err := tokenSvc.IssueAccessTokenFromClaims(claims)
	if err != nil {
		logger.Error("access token renewal failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Internal server error during authentication")
		return
	}

	c.Header("Authorization", "Bearer "+newAccessToken)
	c.Set(authClaimsKey, claims)
	c.Next()
}

// RequireRole exige un rol exacto; sin claims previos nunca autoriza.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok || claims.Role != role {
			abortWithError(c, http.StatusForbidden, "Access denied. You are not authorized to access this resource.")
			return
		}
		c.Next()
	}
}

// GetAuthClaims obtiene los claims autenticados desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
