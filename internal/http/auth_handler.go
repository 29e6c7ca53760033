package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-api/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticación.
type AuthHandler struct {
	logger       *zap.Logger
	authServ     *service.AuthService
	tokenServ    *service.TokenService
	cookieSecure bool
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, tokenServ *service.TokenService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		authServ:     authServ,
		tokenServ:    tokenServ,
		cookieSecure: cookieSecure,
	}
}

// Signup maneja POST /auth/signup (multipart con imagen de perfil opcional).
func (h *AuthHandler) Signup(c *gin.Context) {
	input := service.SignupInput{
		FirstName: c.PostForm("firstName"),
		LastName:  c.PostForm("lastName"),
		Email:     c.PostForm("email"),
		Gender:    c.PostForm("gender"),
		Password:  c.PostForm("password"),
	}

	if fileHeader, err := c.FormFile("profileImage"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			h.logger.Warn("open profile image failed", zap.Error(err))
		} else {
			defer file.Close()
			input.ProfileImage = file
			input.ProfileImageName = fileHeader.Filename
		}
	}

	user, err := h.authServ.Signup(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			abortWithError(c, http.StatusBadRequest, "firstName, email and password are required")
		case errors.Is(err, service.ErrEmailTaken):
			abortWithError(c, http.StatusConflict, "A user with this email already exists")
		default:
			h.logger.Error("signup failed", zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, "Failed to signup the user")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login maneja POST /auth/login. El refresh token viaja solo por cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.authServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, "No user found with this email")
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidInput):
			abortWithError(c, http.StatusBadRequest, "Invalid credentials")
		default:
			h.logger.Error("login failed", zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, "Failed to login the user")
		}
		return
	}

	accessToken, err := h.tokenServ.IssueAccessToken(user)
	if err != nil {
		h.logger.Error("issue access token failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to login the user")
		return
	}
	refreshToken, err := h.tokenServ.IssueRefreshToken(user)
	if err != nil {
		h.logger.Error("issue refresh token failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to login the user")
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, refreshToken, int(h.tokenServ.RefreshTTL().Seconds()), "/", "", h.cookieSecure, true)

	c.JSON(http.StatusOK, gin.H{"user": user, "accessToken": accessToken})
}

// ForgotPassword maneja POST /auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.authServ.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			abortWithError(c, http.StatusBadRequest, "email is required")
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, "No user found with this email to send OTP")
		case errors.Is(err, service.ErrEmailSendFailure):
			abortWithError(c, http.StatusInternalServerError, "Failed to send email")
		default:
			h.logger.Error("forgot password failed", zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, "Failed to request the password reset")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to your email. It will expire in 5 minutes."})
}

// ResetPassword maneja POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		OTP         string `json:"otp" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "email, otp and newPassword are required")
		return
	}

	if err := h.authServ.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			abortWithError(c, http.StatusBadRequest, "email, otp and newPassword are required")
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, "No user found with this email")
		case errors.Is(err, service.ErrOTPInvalid):
			abortWithError(c, http.StatusBadRequest, "Invalid OTP")
		case errors.Is(err, service.ErrOTPExpired):
			abortWithError(c, http.StatusBadRequest, "OTP has expired. Request a new one")
		case errors.Is(err, service.ErrNothingUpdated):
			abortWithError(c, http.StatusInternalServerError, "Failed to update the password")
		default:
			h.logger.Error("reset password failed", zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, "Failed to reset the password")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
