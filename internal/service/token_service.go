package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"auth-api/internal/domain"
)

// TokenService emite y valida los JWT de acceso y de refresco.
// Cada tipo de token se firma con un secreto y una vigencia independientes.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

// Claims es el payload de identidad embebido en ambos tokens.
type Claims struct {
	UserID string `json:"uid"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid  = errors.New("token invalid")
	ErrTokenExpired  = errors.New("token expired")
	ErrSecretMissing = errors.New("signing secret not configured")
)

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 5 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        "auth-api",
	}
}

// AccessTTL devuelve la vigencia configurada para tokens de acceso.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL devuelve la vigencia configurada para tokens de refresco.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *TokenService) IssueAccessToken(user domain.User) (string, error) {
	return s.signToken(user, s.accessSecret, s.accessTTL)
}

func (s *TokenService) IssueRefreshToken(user domain.User) (string, error) {
	return s.signToken(user, s.refreshSecret, s.refreshTTL)
}

// IssueAccessTokenFromClaims reemite un token de acceso a partir de los claims
// de un token de refresco válido.
func (s *TokenService) IssueAccessTokenFromClaims(claims Claims) (string, error) {
	return s.signToken(domain.User{
		ID:        claims.UserID,
		FirstName: claims.Name,
		Email:     claims.Email,
		Role:      claims.Role,
	}, s.accessSecret, s.accessTTL)
}

func (s *TokenService) VerifyAccessToken(token string) (Claims, error) {
	return s.verify(token, s.accessSecret)
}

func (s *TokenService) VerifyRefreshToken(token string) (Claims, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) signToken(user domain.User, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrSecretMissing
	}
	now := time.Now().UTC()
	claims := Claims{
		UserID: user.ID,
		Name:   user.FirstName,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// verify distingue expiración de firma inválida: la primera es recuperable
// vía renovación, la segunda nunca.
func (s *TokenService) verify(tokenString string, secret []byte) (Claims, error) {
	if len(secret) == 0 {
		return Claims{}, ErrSecretMissing
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrTokenInvalid
	}
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
