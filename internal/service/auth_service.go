package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"auth-api/internal/domain"
	"auth-api/internal/email"
	"auth-api/internal/repository"
	"auth-api/internal/storage"
)

// AuthService coordina registro, login y el flujo de restablecimiento por OTP.
type AuthService struct {
	logger       *zap.Logger
	users        repository.UserRepository
	resets       repository.PasswordResetRepository
	hasher       Hasher
	emailSender  email.Sender
	uploader     storage.Uploader
	otpTTL       time.Duration
	emailTimeout time.Duration
}

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrOTPExpired         = errors.New("otp expired")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrNothingUpdated     = errors.New("password update affected no rows")
)

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	resets repository.PasswordResetRepository,
	hasher Hasher,
	emailSender email.Sender,
	uploader storage.Uploader,
	otpTTL time.Duration,
	emailTimeout time.Duration,
) *AuthService {
	if otpTTL <= 0 {
		otpTTL = 5 * time.Minute
	}
	if emailTimeout <= 0 {
		emailTimeout = 10 * time.Second
	}
	return &AuthService{
		logger:       logger,
		users:        users,
		resets:       resets,
		hasher:       hasher,
		emailSender:  emailSender,
		uploader:     uploader,
		otpTTL:       otpTTL,
		emailTimeout: emailTimeout,
	}
}

type SignupInput struct {
	FirstName        string
	LastName         string
	Email            string
	Gender           string
	Password         string
	ProfileImage     io.Reader
	ProfileImageName string
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (domain.User, error) {
	firstName := strings.TrimSpace(input.FirstName)
	emailAddr := normalizeEmail(input.Email)
	password := strings.TrimSpace(input.Password)
	if firstName == "" || emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidInput
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	var imageURL string
	if input.ProfileImage != nil && s.uploader != nil {
		imageURL, err = s.uploader.Upload(ctx, input.ProfileImage, input.ProfileImageName, "profile-images")
		if err != nil {
			s.logger.Warn("profile image upload failed", zap.Error(err), zap.String("email", emailAddr))
		}
	}

	user := domain.User{
		ID:              uuid.NewString(),
		FirstName:       firstName,
		LastName:        strings.TrimSpace(input.LastName),
		Email:           emailAddr,
		Gender:          strings.ToLower(strings.TrimSpace(input.Gender)),
		Role:            domain.RoleUser,
		PasswordHash:    passwordHash,
		ProfileImageURL: imageURL,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidInput
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" || !s.hasher.Compare(password, user.PasswordHash) {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// RequestPasswordReset genera un OTP, lo guarda hasheado y lo envía por correo.
// El registro queda escrito aunque falle el envío; el fallo se reporta igual.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	otpHash, err := s.hasher.Hash(code)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.otpTTL)
	reset := domain.PasswordReset{
		UserID:    user.ID,
		OTPHash:   otpHash,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.resets.Insert(ctx, reset); err != nil {
		return err
	}

	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	sendCtx, cancel := context.WithTimeout(ctx, s.emailTimeout)
	defer cancel()
	if err := s.emailSender.SendPasswordResetOTP(sendCtx, emailAddr, code, expiresAt); err != nil {
		s.logger.Warn("send reset otp failed", zap.Error(err), zap.String("email", emailAddr))
		return ErrEmailSendFailure
	}
	return nil
}

// ResetPassword valida el OTP vigente más reciente y aplica la nueva contraseña.
// El registro OTP se elimina solo cuando la actualización realmente persiste.
func (s *AuthService) ResetPassword(ctx context.Context, emailAddr, otp, newPassword string) error {
	emailAddr = normalizeEmail(emailAddr)
	otp = strings.TrimSpace(otp)
	newPassword = strings.TrimSpace(newPassword)
	if emailAddr == "" || otp == "" || newPassword == "" {
		return ErrInvalidInput
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	reset, err := s.resets.LatestByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOTPInvalid
		}
		return err
	}
	if !s.hasher.Compare(otp, reset.OTPHash) {
		return ErrOTPInvalid
	}
	// Un OTP vencido no se consume; el registro queda inerte hasta su purga.
	if time.Now().UTC().After(reset.ExpiresAt) {
		return ErrOTPExpired
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	affected, err := s.users.UpdatePassword(ctx, user.ID, passwordHash)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNothingUpdated
	}

	if err := s.resets.DeleteByUserID(ctx, user.ID); err != nil {
		s.logger.Warn("delete consumed otp failed", zap.Error(err), zap.String("user_id", user.ID))
	}
	return nil
}

// generateOTP devuelve un código de 6 dígitos en [100000, 999999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
