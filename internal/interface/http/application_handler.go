package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edugrant/internal/application"
	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/interface/middleware"
	"github.com/oksasatya/edugrant/pkg/response"
)

type ApplicationHandler struct {
	Svc *application.ApplicationService
}

func NewApplicationHandler(svc *application.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Svc: svc}
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Mine GET /api/applications/mine
func (h *ApplicationHandler) Mine(c *gin.Context) {
	list, err := h.Svc.ListMine(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toStudentApplications(list), "my applications", gin.H{"count": len(list)})
}

// ForAdmin GET /api/applications/for-admin (admin)
func (h *ApplicationHandler) ForAdmin(c *gin.Context) {
	list, err := h.Svc.ListForAdmin(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toAdminApplications(list), "received applications", gin.H{"count": len(list)})
}

// UpdateStatus PATCH /api/applications/:id {status}
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	app, err := h.Svc.UpdateStatus(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), entity.ApplicationStatus(req.Status))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toApplication(app), "status updated", nil)
}
