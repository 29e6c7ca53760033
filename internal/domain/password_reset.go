package domain

import "time"

// PasswordReset guarda el hash de un OTP emitido para restablecer contraseña.
// Puede haber más de un registro vivo por usuario; el más reciente es el válido.
type PasswordReset struct {
	UserID    string    `json:"user_id"`
	OTPHash   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
