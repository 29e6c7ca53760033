package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"auth-api/internal/domain"
)

// PasswordResetRepository define el contrato de persistencia para registros OTP.
type PasswordResetRepository interface {
	Insert(ctx context.Context, reset domain.PasswordReset) error
	LatestByUserID(ctx context.Context, userID string) (domain.PasswordReset, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// PgPasswordResetRepository implementa PasswordResetRepository usando pgxpool.
type PgPasswordResetRepository struct {
	pool *pgxpool.Pool
}

func NewPgPasswordResetRepository(pool *pgxpool.Pool) *PgPasswordResetRepository {
	return &PgPasswordResetRepository{pool: pool}
}

func (r *PgPasswordResetRepository) Insert(ctx context.Context, reset domain.PasswordReset) error {
	const query = `
		INSERT INTO password_resets (user_id, otp_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		reset.UserID,
		reset.OTPHash,
		reset.ExpiresAt,
		reset.CreatedAt,
	)
	return err
}

func (r *PgPasswordResetRepository) LatestByUserID(ctx context.Context, userID string) (domain.PasswordReset, error) {
	const query = `
		SELECT user_id, otp_hash, expires_at, created_at
		FROM password_resets
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var p domain.PasswordReset
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.OTPHash,
		&p.ExpiresAt,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PasswordReset{}, err
	}
	return p, err
}

func (r *PgPasswordResetRepository) DeleteByUserID(ctx context.Context, userID string) error {
	const query = `
		DELETE FROM password_resets
		WHERE user_id = $1
	`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}
