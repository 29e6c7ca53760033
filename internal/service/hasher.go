package service

import "golang.org/x/crypto/bcrypt"

// Hasher abstrae el hash unidireccional de contraseñas y códigos OTP.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) bool
}

// BcryptHasher implementa Hasher con bcrypt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

func (h *BcryptHasher) Compare(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
