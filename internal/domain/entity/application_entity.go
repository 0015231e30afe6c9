package entity

import "time"

type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "Applied"
	StatusUnderReview ApplicationStatus = "Under Review"
	StatusAccepted    ApplicationStatus = "Accepted"
	StatusRejected    ApplicationStatus = "Rejected"
)

// ApplicationStatuses lists every status; any of them may follow any other.
var ApplicationStatuses = []ApplicationStatus{StatusApplied, StatusUnderReview, StatusAccepted, StatusRejected}

func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Application is a student's claim against one scholarship. There is at most one
// per (ScholarshipID, StudentID). AdminID is copied from the scholarship owner.
type Application struct {
	ID            string
	ScholarshipID string
	StudentID     string
	AdminID       string
	Status        ApplicationStatus
	AppliedAt     time.Time
	UpdatedAt     time.Time
}

// ScholarshipSummary is the scholarship projection shown next to a student's applications.
type ScholarshipSummary struct {
	ID       string
	Name     string
	Provider string
	Amount   float64
}

// ApplicantSummary is the applicant projection shown to the owning admin.
type ApplicantSummary struct {
	ID            string
	Name          string
	CurrentDegree string
	HighestDegree string
	College       string
	CGPA          float64
	Class12Marks  float64
}

type StudentApplication struct {
	Application
	Scholarship ScholarshipSummary
}

type AdminApplication struct {
	Application
	Applicant       ApplicantSummary
	ScholarshipName string
}
