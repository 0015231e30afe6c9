package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edugrant/internal/container"
	handlers "github.com/oksasatya/edugrant/internal/interface/http"
	"github.com/oksasatya/edugrant/internal/interface/middleware"
)

// AssistantModule is public; each call is a paid upstream request, so it is limited per IP.
type AssistantModule struct {
	Handler *handlers.AssistantHandler
}

func NewAssistantModule(h *handlers.AssistantHandler) *AssistantModule {
	return &AssistantModule{Handler: h}
}

func (m *AssistantModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 20, time.Minute, middleware.KeyByIP(), nil)
	rg.POST("/assistant/message", rl, m.Handler.Message)
}
