//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/domain/repository"
)

// Run with: EDUGRANT_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/infrastructure/postgres/
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("EDUGRANT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("EDUGRANT_TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	require.NoError(t, err)
	dir, err := filepath.Abs(filepath.Join("..", "..", "..", "db", "migrations"))
	require.NoError(t, err)
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err)
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, dsn, 8, 1, time.Minute)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = pool.Exec(ctx, `TRUNCATE notifications, applications, scholarships, identities`)
	require.NoError(t, err)
	return pool
}

type fixture struct {
	identities    *IdentityRepository
	scholarships  *ScholarshipRepository
	applications  *ApplicationRepository
	notifications *NotificationRepository
	admin         *entity.Identity
	student       *entity.Identity
	scholarship   *entity.Scholarship
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool := testPool(t)
	ctx := context.Background()
	f := &fixture{
		identities:    NewIdentityRepository(pool),
		scholarships:  NewScholarshipRepository(pool),
		applications:  NewApplicationRepository(pool),
		notifications: NewNotificationRepository(pool),
	}
	f.admin = entity.NewAdmin("admin@uni.edu", "Admin", entity.AdminProfile{Organization: "Uni"})
	require.NoError(t, f.identities.Create(ctx, f.admin))
	f.student = entity.NewStudent("s@uni.edu", "Student", entity.StudentProfile{
		College: "City College", CGPA: 8.7, Class12Marks: 91, HighestDegree: "High School", CurrentDegree: "Undergraduate",
	})
	require.NoError(t, f.identities.Create(ctx, f.student))
	f.scholarship = f.newScholarship(t, "Merit Award")
	return f
}

func (f *fixture) newScholarship(t *testing.T, name string) *entity.Scholarship {
	t.Helper()
	sc := &entity.Scholarship{
		Slug: name, Name: name, Provider: "Uni", Amount: 1000, Category: entity.DefaultCategory,
		Deadline: time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC), DegreeLevel: "Undergraduate",
		OwnerAdminID: f.admin.ID,
	}
	require.NoError(t, f.scholarships.Create(context.Background(), sc))
	return sc
}

func (f *fixture) apply(ctx context.Context, sc *entity.Scholarship) ([]string, error) {
	return f.applications.Create(ctx, &entity.Application{
		ScholarshipID: sc.ID, StudentID: f.student.ID, AdminID: f.admin.ID, Status: entity.StatusApplied,
	})
}

func TestIdentityDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	err := f.identities.Create(context.Background(), entity.NewStudent("admin@uni.edu", "Other", entity.StudentProfile{}))
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestIdentityProfileRoundTrip(t *testing.T) {
	f := newFixture(t)
	got, err := f.identities.GetByEmail(context.Background(), "s@uni.edu")
	require.NoError(t, err)
	require.NotNil(t, got.Student)
	assert.Nil(t, got.Admin)
	assert.Equal(t, *f.student.Student, *got.Student)

	_, err = f.identities.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestApplyDuplicateIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	applied, err := f.apply(ctx, f.scholarship)
	require.NoError(t, err)
	assert.Equal(t, []string{f.scholarship.ID}, applied)

	_, err = f.apply(ctx, f.scholarship)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := f.identities.GetByID(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.scholarship.ID}, got.AppliedScholarshipIDs)
}

func TestConcurrentApplyLeavesOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.apply(ctx, f.scholarship)
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	}
	assert.Equal(t, 1, ok)

	mine, err := f.applications.ListByStudent(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestListByAdminProjectsApplicant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.apply(ctx, f.scholarship)
	require.NoError(t, err)

	got, err := f.applications.ListByAdmin(ctx, f.admin.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Merit Award", got[0].ScholarshipName)
	assert.Equal(t, entity.ApplicantSummary{
		ID: f.student.ID, Name: "Student", CurrentDegree: "Undergraduate", HighestDegree: "High School",
		College: "City College", CGPA: 8.7, Class12Marks: 91,
	}, got[0].Applicant)
}

func TestDeleteCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.newScholarship(t, "Arts Bursary")
	_, err := f.apply(ctx, f.scholarship)
	require.NoError(t, err)
	_, err = f.apply(ctx, other)
	require.NoError(t, err)

	removed, err := f.scholarships.DeleteCascade(ctx, f.scholarship.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = f.scholarships.GetByID(ctx, f.scholarship.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	mine, err := f.applications.ListByStudent(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, other.ID, mine[0].ScholarshipID)

	got, err := f.identities.GetByID(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{other.ID}, got.AppliedScholarshipIDs)

	_, err = f.scholarships.DeleteCascade(ctx, f.scholarship.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateManyIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	batch := []entity.Notification{
		{RecipientID: f.student.ID, Title: "one", Message: "m", Type: entity.NotificationMatch},
		{RecipientID: f.student.ID, Title: "two", Message: "m", Type: entity.NotificationDeadline},
	}
	require.NoError(t, f.notifications.CreateMany(ctx, batch))
	assert.NotEmpty(t, batch[0].ID)
	assert.NotEmpty(t, batch[1].ID)

	bad := []entity.Notification{
		{RecipientID: f.student.ID, Title: "three", Message: "m", Type: entity.NotificationSystem},
		{RecipientID: f.student.ID, Title: "four", Message: "m", Type: "BOGUS"},
	}
	assert.Error(t, f.notifications.CreateMany(ctx, bad))

	got, err := f.notifications.ListByRecipient(ctx, f.student.ID, 20)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
