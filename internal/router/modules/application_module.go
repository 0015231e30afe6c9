package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	handlers "github.com/oksasatya/edugrant/internal/interface/http"
	"github.com/oksasatya/edugrant/internal/interface/middleware"
)

type ApplicationModule struct {
	Handler *handlers.ApplicationHandler
	Auth    gin.HandlerFunc
}

func NewApplicationModule(h *handlers.ApplicationHandler, auth gin.HandlerFunc) *ApplicationModule {
	return &ApplicationModule{Handler: h, Auth: auth}
}

func (m *ApplicationModule) Register(rg *gin.RouterGroup) {
	apps := rg.Group("/applications")
	apps.Use(m.Auth)
	{
		apps.GET("/mine", m.Handler.Mine)
		apps.GET("/for-admin", middleware.RequireRole(entity.RoleAdmin, "Admin access required"), m.Handler.ForAdmin)
		apps.PATCH("/:id", middleware.RequireRole(entity.RoleAdmin, "Only admins can update application status"), m.Handler.UpdateStatus)
	}
}
