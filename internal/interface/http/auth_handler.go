package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edugrant/internal/application"
	"github.com/oksasatya/edugrant/internal/domain/apperror"
	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/interface/middleware"
	"github.com/oksasatya/edugrant/pkg/helpers"
	"github.com/oksasatya/edugrant/pkg/response"
	"github.com/oksasatya/edugrant/pkg/validation"
)

const maxAvatarBytes = 5 << 20

type AuthHandler struct {
	Svc     *application.AuthService
	Cookies *helpers.Manager
	Logger  *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, cookies *helpers.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cookies: cookies, Logger: logger}
}

type requestCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,otp"`
}

type registerRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required,max=120"`
	Role  string `json:"role" binding:"required,role"`
	profileFields
}

type updateProfileRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=120"`
	profileFields
}

func invalidPayload(c *gin.Context, err error) {
	response.Fail(c, apperror.Validation("Invalid payload", validation.ToDetails(err)))
}

// RequestCode POST /api/auth/code {email}
func (h *AuthHandler) RequestCode(c *gin.Context) {
	var req requestCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	if err := h.Svc.RequestCode(c.Request.Context(), req.Email); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "verification code sent", nil)
}

// VerifyCode POST /api/auth/verify {email, code}
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	res, err := h.Svc.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if !res.IsRegistered {
		response.Success[any](c, http.StatusOK, gin.H{"isRegistered": false}, "code verified, please complete your profile", nil)
		return
	}
	h.Cookies.SetSession(c, res.Session.Token, res.Session.ExpiresAt)
	response.Success[any](c, http.StatusOK, gin.H{
		"isRegistered": true,
		"user":         toIdentity(res.Identity),
		"token":        res.Session.Token,
	}, "login successful", gin.H{"expires_at": res.Session.ExpiresAt})
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	in := application.RegisterInput{Email: req.Email, Name: req.Name, Role: entity.Role(req.Role)}
	switch in.Role {
	case entity.RoleStudent:
		in.Student = req.student()
	case entity.RoleAdmin:
		in.Admin = req.admin()
	}
	identity, sess, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	response.Success[any](c, http.StatusCreated, gin.H{
		"user":  toIdentity(identity),
		"token": sess.Token,
	}, "registered", gin.H{"expires_at": sess.ExpiresAt})
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	response.Success(c, http.StatusOK, toIdentity(identity), "profile", nil)
}

// UpdateMe PUT /api/auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindBodyWithJSON(&raw); err != nil {
		invalidPayload(c, err)
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindBodyWithJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	identity := middleware.CurrentIdentity(c)
	upd := application.ProfileUpdate{Name: req.Name}
	if hasAny(raw, "college", "cgpa", "class12Marks", "highestDegree", "currentDegree", "fieldOfStudy") {
		if identity.IsStudent() {
			upd.Student = mergeStudent(*identity.Student, req.profileFields, raw)
		} else {
			upd.Student = req.student()
		}
	}
	if hasAny(raw, "organization", "department", "designation", "employeeId") {
		if identity.IsAdmin() {
			upd.Admin = mergeAdmin(*identity.Admin, req.profileFields, raw)
		} else {
			upd.Admin = req.admin()
		}
	}
	updated, err := h.Svc.UpdateProfile(c.Request.Context(), identity.ID, upd)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toIdentity(updated), "profile updated", nil)
}

// UploadAvatar PUT /api/auth/me/avatar (multipart "file")
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, apperror.Validation("Avatar file is required", map[string]string{"file": "is required (max 5MB)"}))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, apperror.Validation("Avatar file is unreadable", map[string]string{"file": "could not be read"}))
		return
	}
	defer func() { _ = f.Close() }()

	identity := middleware.CurrentIdentity(c)
	updated, err := h.Svc.UploadAvatar(c.Request.Context(), identity.ID, fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, toIdentity(updated), "avatar updated", nil)
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), middleware.CurrentClaims(c)); err != nil && h.Logger != nil {
		h.Logger.WithError(err).Warn("session revoke failed")
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

func hasAny(raw map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := raw[k]; ok {
			return true
		}
	}
	return false
}

// mergeStudent applies only the student fields present in the body.
func mergeStudent(cur entity.StudentProfile, p profileFields, raw map[string]any) *entity.StudentProfile {
	set := func(key string, dst *string, v string) {
		if _, ok := raw[key]; ok {
			*dst = strings.TrimSpace(v)
		}
	}
	set("college", &cur.College, p.College)
	set("highestDegree", &cur.HighestDegree, p.HighestDegree)
	set("currentDegree", &cur.CurrentDegree, p.CurrentDegree)
	set("fieldOfStudy", &cur.FieldOfStudy, p.FieldOfStudy)
	if _, ok := raw["cgpa"]; ok {
		cur.CGPA = float64(p.CGPA)
	}
	if _, ok := raw["class12Marks"]; ok {
		cur.Class12Marks = float64(p.Class12Marks)
	}
	return &cur
}

func mergeAdmin(cur entity.AdminProfile, p profileFields, raw map[string]any) *entity.AdminProfile {
	set := func(key string, dst *string, v string) {
		if _, ok := raw[key]; ok {
			*dst = strings.TrimSpace(v)
		}
	}
	set("organization", &cur.Organization, p.Organization)
	set("department", &cur.Department, p.Department)
	set("designation", &cur.Designation, p.Designation)
	set("employeeId", &cur.EmployeeID, p.EmployeeID)
	return &cur
}
