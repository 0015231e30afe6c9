package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/edugrant/internal/interface/http"
)

type NotificationModule struct {
	Handler *handlers.NotificationHandler
	Auth    gin.HandlerFunc
}

func NewNotificationModule(h *handlers.NotificationHandler, auth gin.HandlerFunc) *NotificationModule {
	return &NotificationModule{Handler: h, Auth: auth}
}

func (m *NotificationModule) Register(rg *gin.RouterGroup) {
	n := rg.Group("/notifications")
	n.Use(m.Auth)
	{
		n.GET("", m.Handler.List)
		n.PUT("/read-all", m.Handler.ReadAll)
		n.DELETE("/:id", m.Handler.Delete)
		n.DELETE("", m.Handler.Clear)
	}
}
