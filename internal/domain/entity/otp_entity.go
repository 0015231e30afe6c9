package entity

import "time"

// OneTimeCode is the single live verification code for an email. CodeHash is a
// bcrypt hash; the plain code only ever exists in the outgoing mail.
type OneTimeCode struct {
	Email    string
	CodeHash string
	IssuedAt time.Time
}

// Expired reports whether the code is older than ttl at now.
func (o OneTimeCode) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(o.IssuedAt) > ttl
}
