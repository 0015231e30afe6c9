package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

// NewRegistry mounts every module under prefix (usually /api).
func NewRegistry(engine *gin.Engine, prefix string) *Registry {
	api := engine.Group(prefix)
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mods ...Module) {
	r.modules = append(r.modules, mods...)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}

// LogRoutes prints the mounted routes once at startup.
func (r *Registry) LogRoutes(logger *logrus.Logger) {
	if logger == nil {
		return
	}
	for _, rt := range r.Engine.Routes() {
		logger.WithFields(logrus.Fields{"method": rt.Method, "path": rt.Path}).Debug("route mounted")
	}
}
