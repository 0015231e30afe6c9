package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edugrant/internal/container"
	handlers "github.com/oksasatya/edugrant/internal/interface/http"
	"github.com/oksasatya/edugrant/internal/interface/middleware"
)

// AuthModule wires the passwordless sign-in flow.
// Public: POST /api/auth/code, POST /api/auth/verify, POST /api/auth/register
// Protected: GET|PUT /api/auth/me, PUT /api/auth/me/avatar, POST /api/auth/logout
type AuthModule struct {
	Handler *handlers.AuthHandler
	Auth    gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, auth gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Auth: auth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	codeLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/code", codeLimiter, m.Handler.RequestCode)
	rg.POST("/auth/verify", verifyLimiter, m.Handler.VerifyCode)
	rg.POST("/auth/register", registerLimiter, m.Handler.Register)

	auth := rg.Group("/auth")
	auth.Use(m.Auth)
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/me", m.Handler.Me)
		auth.PUT("/me", m.Handler.UpdateMe)
		auth.PUT("/me/avatar", middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByUserID(), nil), m.Handler.UploadAvatar)
		auth.POST("/logout", m.Handler.Logout)
	}
}
