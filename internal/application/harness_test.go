package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/infrastructure/memory"
	"github.com/oksasatya/edugrant/pkg/helpers"
)

type fakeSender struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (f *fakeSender) SendCode(_ context.Context, email, code string, _ time.Time, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codes == nil {
		f.codes = map[string]string{}
	}
	f.codes[email] = code
	return f.err
}

func (f *fakeSender) last(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[email]
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type harness struct {
	store         *memory.Store
	clock         *clock
	sender        *fakeSender
	auth          *AuthService
	notifications *NotificationService
	scholarships  *ScholarshipService
	applications  *ApplicationService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clk := &clock{now: time.Date(2030, time.March, 10, 9, 30, 0, 0, time.UTC)}
	store := memory.New()
	store.Now = clk.Now

	jwt := helpers.NewJWTManager("test-secret", 7*24*time.Hour, "edugrant-test")
	jwt.Now = clk.Now

	sender := &fakeSender{}
	logger := helpers.NewNopLogger()

	auth := NewAuthService(store.Identities(), store.Codes(), store.Denylist(), sender, jwt, nil, 5*time.Minute, logger)
	auth.Now = clk.Now

	notes := NewNotificationService(store.Notifications(), store.Identities(), store.Scholarships(), time.UTC, 2, logger)
	notes.Now = clk.Now

	return &harness{
		store:         store,
		clock:         clk,
		sender:        sender,
		auth:          auth,
		notifications: notes,
		scholarships:  NewScholarshipService(store.Scholarships(), notes, nil, time.UTC, logger),
		applications:  NewApplicationService(store.Applications(), store.Scholarships(), notes, logger),
	}
}

func (h *harness) student(t *testing.T, email, degree string) *entity.Identity {
	t.Helper()
	id, _, err := h.auth.Register(context.Background(), RegisterInput{
		Email: email, Name: "Student " + email, Role: entity.RoleStudent,
		Student: &entity.StudentProfile{College: "State College", CGPA: 8.5, Class12Marks: 91, HighestDegree: "High School", CurrentDegree: degree},
	})
	require.NoError(t, err)
	return id
}

func (h *harness) admin(t *testing.T, email string) *entity.Identity {
	t.Helper()
	id, _, err := h.auth.Register(context.Background(), RegisterInput{
		Email: email, Name: "Admin " + email, Role: entity.RoleAdmin,
		Admin: &entity.AdminProfile{Organization: "Foundation", Designation: "Officer"},
	})
	require.NoError(t, err)
	return id
}

func (h *harness) scholarship(t *testing.T, owner *entity.Identity, name, degree, deadline string) *entity.Scholarship {
	t.Helper()
	sc, err := h.scholarships.Create(context.Background(), owner, CreateScholarshipInput{
		Name: name, Provider: "Foundation", Amount: 5000, Deadline: deadline,
		GPARequirement: 8.0, DegreeLevel: degree, Description: "Support for " + degree + " students",
	})
	require.NoError(t, err)
	return sc
}
