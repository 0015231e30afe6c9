package helpers

import (
	"crypto/rand"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// OTP helpers

// KeyEmailOTP is the Redis key for the live verification code of an email
func KeyEmailOTP(email string) string {
	return "auth:otp:" + NormalizeEmail(email)
}

// KeyRevokedSession is the Redis key marking a session token id as revoked
func KeyRevokedSession(jti string) string {
	return "auth:revoked:" + jti
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GenOTPCode generates a secure random 6-digit OTP code as a zero-padded string
func GenOTPCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// 6 digits: map random bytes to 000000-999999
	n := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	code := n % 1000000
	return fmt.Sprintf("%06d", code), nil
}

// HashCode hashes a verification code with bcrypt so stored codes are not readable
func HashCode(code string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareCode reports whether code matches the bcrypt hash
func CompareCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
