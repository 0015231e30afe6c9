package entity

import "time"

// DateLayout is the wire format of scholarship deadlines.
const DateLayout = "2006-01-02"

// Scholarship is a funding opportunity posted by an admin. OwnerAdminID never changes.
type Scholarship struct {
	ID             string
	Slug           string
	Name           string
	Provider       string
	Amount         float64
	Deadline       time.Time // calendar date, midnight UTC
	Category       string
	GPARequirement float64
	DegreeLevel    string
	Description    string
	Eligibility    []string
	OfficialURL    string
	OwnerAdminID   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DefaultCategory applies when an admin leaves the category blank.
const DefaultCategory = "Merit"

// DateOf truncates t to its calendar date in loc and returns that date at midnight UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
