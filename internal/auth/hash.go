package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// В базе refresh-токены хранятся только хэшами: утечка таблицы не дает
// рабочих токенов.

// HashRefreshToken возвращает SHA-256 хэш токена в hex-представлении.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifyRefreshToken сравнивает хэш с токеном в константное время.
func VerifyRefreshToken(hash, token string) bool {
	computed := HashRefreshToken(token)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(computed)) == 1
}
