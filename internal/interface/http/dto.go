package handlers

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/oksasatya/edugrant/internal/domain/entity"
)

// Number accepts a JSON number or a numeric string; "" and null decode to 0.
// NaN and infinities are rejected.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return &json.UnmarshalTypeError{Value: "string " + strconv.Quote(s), Type: reflect.TypeOf(float64(0))}
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

type identityResponse struct {
	ID                    string    `json:"id"`
	Email                 string    `json:"email"`
	Name                  string    `json:"name"`
	Role                  string    `json:"role"`
	AvatarURL             string    `json:"avatarUrl,omitempty"`
	AppliedScholarshipIDs []string  `json:"appliedScholarshipIds"`
	College               *string   `json:"college,omitempty"`
	CGPA                  *float64  `json:"cgpa,omitempty"`
	Class12Marks          *float64  `json:"class12Marks,omitempty"`
	HighestDegree         *string   `json:"highestDegree,omitempty"`
	CurrentDegree         *string   `json:"currentDegree,omitempty"`
	FieldOfStudy          *string   `json:"fieldOfStudy,omitempty"`
	Organization          *string   `json:"organization,omitempty"`
	Department            *string   `json:"department,omitempty"`
	Designation           *string   `json:"designation,omitempty"`
	EmployeeID            *string   `json:"employeeId,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// toIdentity flattens the profile variant of the identity's role into the response.
func toIdentity(i *entity.Identity) identityResponse {
	out := identityResponse{
		ID:                    i.ID,
		Email:                 i.Email,
		Name:                  i.Name,
		Role:                  string(i.Role),
		AvatarURL:             i.AvatarURL,
		AppliedScholarshipIDs: i.AppliedScholarshipIDs,
		CreatedAt:             i.CreatedAt,
		UpdatedAt:             i.UpdatedAt,
	}
	if out.AppliedScholarshipIDs == nil {
		out.AppliedScholarshipIDs = []string{}
	}
	if p := i.Student; p != nil {
		out.College, out.CGPA, out.Class12Marks = &p.College, &p.CGPA, &p.Class12Marks
		out.HighestDegree, out.CurrentDegree, out.FieldOfStudy = &p.HighestDegree, &p.CurrentDegree, &p.FieldOfStudy
	}
	if p := i.Admin; p != nil {
		out.Organization, out.Department = &p.Organization, &p.Department
		out.Designation, out.EmployeeID = &p.Designation, &p.EmployeeID
	}
	return out
}

// profileFields are the role-specific registration and profile fields.
type profileFields struct {
	College       string `json:"college"`
	CGPA          Number `json:"cgpa"`
	Class12Marks  Number `json:"class12Marks"`
	HighestDegree string `json:"highestDegree"`
	CurrentDegree string `json:"currentDegree"`
	FieldOfStudy  string `json:"fieldOfStudy"`
	Organization  string `json:"organization"`
	Department    string `json:"department"`
	Designation   string `json:"designation"`
	EmployeeID    string `json:"employeeId"`
}

func (p profileFields) student() *entity.StudentProfile {
	return &entity.StudentProfile{
		College:       strings.TrimSpace(p.College),
		CGPA:          float64(p.CGPA),
		Class12Marks:  float64(p.Class12Marks),
		HighestDegree: strings.TrimSpace(p.HighestDegree),
		CurrentDegree: strings.TrimSpace(p.CurrentDegree),
		FieldOfStudy:  strings.TrimSpace(p.FieldOfStudy),
	}
}

func (p profileFields) admin() *entity.AdminProfile {
	return &entity.AdminProfile{
		Organization: strings.TrimSpace(p.Organization),
		Department:   strings.TrimSpace(p.Department),
		Designation:  strings.TrimSpace(p.Designation),
		EmployeeID:   strings.TrimSpace(p.EmployeeID),
	}
}

type scholarshipResponse struct {
	ID             string    `json:"id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	Provider       string    `json:"provider"`
	Amount         float64   `json:"amount"`
	Deadline       string    `json:"deadline"`
	Category       string    `json:"category"`
	GPARequirement float64   `json:"gpaRequirement"`
	DegreeLevel    string    `json:"degreeLevel"`
	Description    string    `json:"description"`
	Eligibility    []string  `json:"eligibility"`
	OfficialURL    string    `json:"officialUrl,omitempty"`
	OwnerAdminID   string    `json:"ownerAdminId"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toScholarship(s *entity.Scholarship) scholarshipResponse {
	elig := s.Eligibility
	if elig == nil {
		elig = []string{}
	}
	return scholarshipResponse{
		ID:             s.ID,
		Slug:           s.Slug,
		Name:           s.Name,
		Provider:       s.Provider,
		Amount:         s.Amount,
		Deadline:       s.Deadline.Format(entity.DateLayout),
		Category:       s.Category,
		GPARequirement: s.GPARequirement,
		DegreeLevel:    s.DegreeLevel,
		Description:    s.Description,
		Eligibility:    elig,
		OfficialURL:    s.OfficialURL,
		OwnerAdminID:   s.OwnerAdminID,
		CreatedAt:      s.CreatedAt,
	}
}

func toScholarships(list []entity.Scholarship) []scholarshipResponse {
	out := make([]scholarshipResponse, 0, len(list))
	for i := range list {
		out = append(out, toScholarship(&list[i]))
	}
	return out
}

type applicationResponse struct {
	ID            string    `json:"id"`
	ScholarshipID string    `json:"scholarshipId"`
	StudentID     string    `json:"studentId"`
	AdminID       string    `json:"adminId"`
	Status        string    `json:"status"`
	AppliedAt     time.Time `json:"appliedAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toApplication(a *entity.Application) applicationResponse {
	return applicationResponse{
		ID:            a.ID,
		ScholarshipID: a.ScholarshipID,
		StudentID:     a.StudentID,
		AdminID:       a.AdminID,
		Status:        string(a.Status),
		AppliedAt:     a.AppliedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

type scholarshipSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Provider string  `json:"provider"`
	Amount   float64 `json:"amount"`
}

type studentApplicationResponse struct {
	applicationResponse
	Scholarship scholarshipSummary `json:"scholarship"`
}

type applicantSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	CurrentDegree string  `json:"currentDegree"`
	HighestDegree string  `json:"highestDegree"`
	College       string  `json:"college"`
	CGPA          float64 `json:"cgpa"`
	Class12Marks  float64 `json:"class12Marks"`
}

type adminApplicationResponse struct {
	applicationResponse
	Applicant       applicantSummary `json:"applicant"`
	ScholarshipName string           `json:"scholarshipName"`
}

func toStudentApplications(list []entity.StudentApplication) []studentApplicationResponse {
	out := make([]studentApplicationResponse, 0, len(list))
	for i := range list {
		sc := list[i].Scholarship
		out = append(out, studentApplicationResponse{
			applicationResponse: toApplication(&list[i].Application),
			Scholarship:         scholarshipSummary{ID: sc.ID, Name: sc.Name, Provider: sc.Provider, Amount: sc.Amount},
		})
	}
	return out
}

func toAdminApplications(list []entity.AdminApplication) []adminApplicationResponse {
	out := make([]adminApplicationResponse, 0, len(list))
	for i := range list {
		a := list[i].Applicant
		out = append(out, adminApplicationResponse{
			applicationResponse: toApplication(&list[i].Application),
			Applicant: applicantSummary{
				ID: a.ID, Name: a.Name, CurrentDegree: a.CurrentDegree, HighestDegree: a.HighestDegree,
				College: a.College, CGPA: a.CGPA, Class12Marks: a.Class12Marks,
			},
			ScholarshipName: list[i].ScholarshipName,
		})
	}
	return out
}

type notificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

func toNotifications(list []entity.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, notificationResponse{
			ID: n.ID, Title: n.Title, Message: n.Message, Type: string(n.Type), IsRead: n.IsRead, CreatedAt: n.CreatedAt,
		})
	}
	return out
}
