package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edugrant/internal/application"
	"github.com/oksasatya/edugrant/internal/domain/apperror"
	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/pkg/helpers"
	"github.com/oksasatya/edugrant/pkg/response"
)

const (
	CtxUserIDKey   = "userID"
	CtxIdentityKey = "identity"
	CtxClaimsKey   = "sessionClaims"
)

// Auth resolves the session token from the cookie (or bearer header) and loads
// its identity. It sets userID, identity and sessionClaims in the Gin context.
func Auth(auth *application.AuthService, cookies *helpers.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, claims, err := auth.ResolveSession(c.Request.Context(), cookies.Token(c))
		if err != nil {
			response.Fail(c, err)
			return
		}
		c.Set(CtxUserIDKey, identity.ID)
		c.Set(CtxIdentityKey, identity)
		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects identities of any other role with FORBIDDEN.
func RequireRole(role entity.Role, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := CurrentIdentity(c); id == nil || id.Role != role {
			response.Fail(c, apperror.Forbidden(message))
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity resolved by Auth, or nil.
func CurrentIdentity(c *gin.Context) *entity.Identity {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*entity.Identity)
	return id
}

func CurrentClaims(c *gin.Context) *helpers.Claims {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*helpers.Claims)
	return claims
}
