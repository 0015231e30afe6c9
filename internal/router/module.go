package router

import "github.com/gin-gonic/gin"

// Module is a feature slice (auth, scholarships, ...) that mounts its routes on the API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
