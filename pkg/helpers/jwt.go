package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// JWTManager signs and verifies session tokens. A token is bound to one identity
// and carries a unique id (jti) so it can be revoked before it expires.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	// Now defaults to time.Now; tests override it.
	Now func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration, issuer string) *JWTManager {
	return &JWTManager{
		Secret: []byte(secret),
		TTL:    ttl,
		Issuer: issuer,
		Now:    time.Now,
	}
}

type Claims struct {
	IdentityID string `json:"uid"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// Expiry is the zero time when the token carries no expiry.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func (m *JWTManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Issue returns a signed token for identityID and its expiry.
func (m *JWTManager) Issue(identityID, role string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.TTL)
	claims := &Claims{
		IdentityID: identityID,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.Issuer,
			Subject:   identityID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Parse verifies signature and expiry. It returns ErrTokenExpired for a well-formed,
// correctly signed token past its expiry and ErrTokenInvalid for everything else.
func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Join(ErrTokenInvalid, err)
	}
	if !tkn.Valid || claims.IdentityID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
