package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edugrant/internal/container"
	"github.com/oksasatya/edugrant/internal/domain/entity"
	handlers "github.com/oksasatya/edugrant/internal/interface/http"
	"github.com/oksasatya/edugrant/internal/interface/middleware"
)

type ScholarshipModule struct {
	Handler *handlers.ScholarshipHandler
	Auth    gin.HandlerFunc
}

func NewScholarshipModule(h *handlers.ScholarshipHandler, auth gin.HandlerFunc) *ScholarshipModule {
	return &ScholarshipModule{Handler: h, Auth: auth}
}

func (m *ScholarshipModule) Register(rg *gin.RouterGroup) {
	browse := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/scholarships", browse, m.Handler.List)
	rg.GET("/scholarships/search", browse, m.Handler.Search)
	rg.GET("/scholarships/:id", browse, m.Handler.Get)

	admin := rg.Group("/scholarships")
	admin.Use(m.Auth, middleware.RequireRole(entity.RoleAdmin, "Only admins can manage scholarships"))
	{
		admin.POST("", m.Handler.Create)
		admin.DELETE("/:id", m.Handler.Delete)
	}

	student := rg.Group("/scholarships")
	student.Use(m.Auth, middleware.RequireRole(entity.RoleStudent, "Only students can apply"))
	student.Use(middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil))
	{
		student.POST("/:id/apply", m.Handler.Apply)
	}
}
