package entity

import (
	"slices"
	"time"
)

// Role is fixed when the identity is created.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// StudentProfile holds the fields a student fills in at registration.
type StudentProfile struct {
	College       string
	CGPA          float64
	Class12Marks  float64
	HighestDegree string
	CurrentDegree string
	FieldOfStudy  string
}

// AdminProfile holds the fields an institutional administrator fills in at registration.
type AdminProfile struct {
	Organization string
	Department   string
	Designation  string
	EmployeeID   string
}

// Identity is a registered user. Exactly one of Student or Admin is set and it
// always matches Role; use NewStudent / NewAdmin to build one.
type Identity struct {
	ID                    string
	Email                 string
	Name                  string
	Role                  Role
	Student               *StudentProfile
	Admin                 *AdminProfile
	AvatarURL             string
	AppliedScholarshipIDs []string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func NewStudent(email, name string, p StudentProfile) *Identity {
	if p.FieldOfStudy == "" {
		p.FieldOfStudy = "General"
	}
	return &Identity{Email: email, Name: name, Role: RoleStudent, Student: &p, AppliedScholarshipIDs: []string{}}
}

func NewAdmin(email, name string, p AdminProfile) *Identity {
	return &Identity{Email: email, Name: name, Role: RoleAdmin, Admin: &p, AppliedScholarshipIDs: []string{}}
}

func (i *Identity) IsStudent() bool { return i != nil && i.Role == RoleStudent }
func (i *Identity) IsAdmin() bool   { return i != nil && i.Role == RoleAdmin }

// CurrentDegree is the value scholarship matching compares against; empty for admins.
func (i *Identity) CurrentDegree() string {
	if i.Student == nil {
		return ""
	}
	return i.Student.CurrentDegree
}

// HasApplied reports whether scholarshipID is in the applied set.
func (i *Identity) HasApplied(scholarshipID string) bool {
	return slices.Contains(i.AppliedScholarshipIDs, scholarshipID)
}

// AddApplied adds scholarshipID to the applied set if it is not already present.
func (i *Identity) AddApplied(scholarshipID string) {
	if !i.HasApplied(scholarshipID) {
		i.AppliedScholarshipIDs = append(i.AppliedScholarshipIDs, scholarshipID)
	}
}
