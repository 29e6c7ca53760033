package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-api/internal/domain"
	"auth-api/internal/service"
)

func protectedRouter(tokenSvc *service.TokenService) *gin.Engine {
	r := gin.New()
	r.GET("/protected", SessionMiddleware(zap.NewNop(), tokenSvc), func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.JSON(http.StatusOK, gin.H{"uid": claims.UserID})
	})
	return r
}

func middlewareUser() domain.User {
	return domain.User{
		ID:        "u1",
		FirstName: "Gaurav",
		Email:     "user@example.com",
		Role:      domain.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
}

func TestSessionMiddleware_AllowsValidAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokenSvc := service.NewTokenService("access-secret", "refresh-secret", 5*time.Minute, 7*24*time.Hour)
	access, err := tokenSvc.IssueAccessToken(middlewareUser())
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	protectedRouter(tokenSvc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Authorization") != "" {
		t.Fatalf("no renewal must happen for a valid token")
	}
}

func TestSessionMiddleware_RejectsMissingAndMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokenSvc := service.NewTokenService("access-secret", "refresh-secret", 5*time.Minute, 7*24*time.Hour)
	r := protectedRouter(tokenSvc)

	cases := map[string]string{
		"missing":   "",
		"no bearer": "Token abc",
		"empty":     "Bearer   ",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestSessionMiddleware_RejectsInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokenSvc := service.NewTokenService("access-secret", "refresh-secret", 5*time.Minute, 7*24*time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	protectedRouter(tokenSvc).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid token") {
		t.Fatalf("expected invalid token message, got %s", rec.Body.String())
	}
}

// expiredAccessToken firma con los mismos secretos pero con vigencia de 1ms,
// para producir tokens ya vencidos sin esperar la vigencia real.
func expiredAccessToken(t *testing.T, user domain.User) string {
	t.Helper()
	shortSvc := service.NewTokenService("access-secret", "refresh-secret", time.Millisecond, time.Millisecond)
	access, err := shortSvc.IssueAccessToken(user)
	if err != nil {
		t.Fatalf("issue short-lived access: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	return access
}

func TestSessionMiddleware_RenewsExpiredAccessWithRefreshCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokenSvc := service.NewTokenService("access-secret", "refresh-secret", 5*time.Minute, 7*24*time.Hour)

	user := middlewareUser()
	refresh, err := tokenSvc.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	access := expiredAccessToken(t, user)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh})
	rec := httptest.NewRecorder()
	protectedRouter(tokenSvc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected silent renewal, got %d: %s", rec.Code, rec.Body.String())
	}
	renewed := rec.Header().Get("Authorization")
	if !strings.HasPrefix(renewed, "Bearer ") {
		t.Fatalf("expected renewed token in Authorization header, got %q", renewed)
	}
	claims, err := tokenSvc.VerifyAccessToken(strings.TrimPrefix(renewed, "Bearer "))
	if err != nil {
		t.Fatalf("renewed token must verify: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("renewed claims mismatch: %+v", claims)
	}
}

func TestSessionMiddleware_ExpiredAccessWithoutCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokenSvc := service.NewTokenService("access-secret", "refresh-secret", 5*time.Minute, 7*24*time.Hour)

	access := expiredAccessToken(t, middlewareUser())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	protectedRouter(tokenSvc).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Session expired") {
		t.Fatalf("expected session expired message, got %s", rec.Body.String())
	}
}

func TestSessionMiddleware_ExpiredRefreshRequiresLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokenSvc := service.NewTokenService("access-secret", "refresh-secret", 5*time.Minute, 7*24*time.Hour)

	user := middlewareUser()
	shortSvc := service.NewTokenService("access-secret", "refresh-secret", time.Millisecond, time.Millisecond)
	refresh, err := shortSvc.IssueRefreshToken(user)
	if err != nil {
		t.Fatalf("issue short-lived refresh: %v", err)
	}
	access := expiredAccessToken(t, user)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh})
	rec := httptest.NewRecorder()
	protectedRouter(tokenSvc).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Refresh token expired") {
		t.Fatalf("expected refresh expired message, got %s", rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokenSvc := service.NewTokenService("access-secret", "refresh-secret", 5*time.Minute, 7*24*time.Hour)

	r := gin.New()
	r.GET("/admin", SessionMiddleware(zap.NewNop(), tokenSvc), RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve := func(user domain.User) int {
		access, err := tokenSvc.IssueAccessToken(user)
		if err != nil {
			t.Fatalf("issue access: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	regular := middlewareUser()
	if code := serve(regular); code != http.StatusForbidden {
		t.Fatalf("role user on admin route: expected 403, got %d", code)
	}

	admin := regular
	admin.Role = domain.RoleAdmin
	if code := serve(admin); code != http.StatusOK {
		t.Fatalf("role admin on admin route: expected 200, got %d", code)
	}
}

func TestRequireRole_WithoutClaimsNeverAuthorizes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/admin", RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without identity context, got %d", rec.Code)
	}
}
