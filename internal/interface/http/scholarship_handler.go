package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edugrant/internal/application"
	"github.com/oksasatya/edugrant/internal/interface/middleware"
	"github.com/oksasatya/edugrant/pkg/response"
)

type ScholarshipHandler struct {
	Svc          *application.ScholarshipService
	Applications *application.ApplicationService
}

func NewScholarshipHandler(svc *application.ScholarshipService, applications *application.ApplicationService) *ScholarshipHandler {
	return &ScholarshipHandler{Svc: svc, Applications: applications}
}

type createScholarshipRequest struct {
	Name           string   `json:"name"`
	Provider       string   `json:"provider"`
	Amount         Number   `json:"amount"`
	Deadline       string   `json:"deadline"`
	Category       string   `json:"category"`
	GPARequirement Number   `json:"gpaRequirement"`
	DegreeLevel    string   `json:"degreeLevel"`
	Description    string   `json:"description"`
	Eligibility    []string `json:"eligibility"`
	OfficialURL    string   `json:"officialUrl" binding:"omitempty,url"`
}

// List GET /api/scholarships?ownerAdminId=
func (h *ScholarshipHandler) List(c *gin.Context) {
	owner := c.Query("ownerAdminId")
	if owner == "" {
		owner = c.Query("adminId")
	}
	list, err := h.Svc.List(c.Request.Context(), owner)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toScholarships(list), "scholarships", gin.H{"count": len(list)})
}

// Search GET /api/scholarships/search?q=&size=
func (h *ScholarshipHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	list, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toScholarships(list), "search results", gin.H{"count": len(list)})
}

// Get GET /api/scholarships/:id
func (h *ScholarshipHandler) Get(c *gin.Context) {
	sc, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toScholarship(sc), "scholarship", nil)
}

// Create POST /api/scholarships (admin)
func (h *ScholarshipHandler) Create(c *gin.Context) {
	var req createScholarshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	sc, err := h.Svc.Create(c.Request.Context(), middleware.CurrentIdentity(c), application.CreateScholarshipInput{
		Name:           req.Name,
		Provider:       req.Provider,
		Amount:         float64(req.Amount),
		Deadline:       req.Deadline,
		Category:       req.Category,
		GPARequirement: float64(req.GPARequirement),
		DegreeLevel:    req.DegreeLevel,
		Description:    req.Description,
		Eligibility:    req.Eligibility,
		OfficialURL:    req.OfficialURL,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toScholarship(sc), "scholarship created", nil)
}

// Delete DELETE /api/scholarships/:id (owner admin)
func (h *ScholarshipHandler) Delete(c *gin.Context) {
	removed, err := h.Svc.Delete(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true, "applicationsRemoved": removed},
		"scholarship and all associated applications deleted", nil)
}

// Apply POST /api/scholarships/:id/apply (student)
func (h *ScholarshipHandler) Apply(c *gin.Context) {
	res, err := h.Applications.Apply(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusCreated, gin.H{
		"application":           toApplication(res.Application),
		"appliedScholarshipIds": res.AppliedScholarshipIDs,
	}, "applied successfully", nil)
}
