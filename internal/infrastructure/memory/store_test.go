package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/domain/repository"
)

func seed(t *testing.T, s *Store) (*entity.Identity, *entity.Identity, *entity.Scholarship) {
	t.Helper()
	ctx := context.Background()
	admin := entity.NewAdmin("admin@uni.edu", "Admin", entity.AdminProfile{Organization: "Uni"})
	require.NoError(t, s.Identities().Create(ctx, admin))
	student := entity.NewStudent("s@uni.edu", "Student", entity.StudentProfile{CurrentDegree: "Undergraduate"})
	require.NoError(t, s.Identities().Create(ctx, student))
	sc := &entity.Scholarship{Name: "Merit Award", Provider: "Uni", Amount: 1000, DegreeLevel: "Undergraduate", OwnerAdminID: admin.ID}
	require.NoError(t, s.Scholarships().Create(ctx, sc))
	return admin, student, sc
}

func TestIdentityEmailIsUnique(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Identities().Create(ctx, entity.NewStudent("a@x.io", "A", entity.StudentProfile{})))
	err := s.Identities().Create(ctx, entity.NewAdmin("a@x.io", "B", entity.AdminProfile{}))
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestConcurrentApplyLeavesOneApplication(t *testing.T) {
	s := New()
	admin, student, sc := seed(t, s)

	var ok, dup int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Applications().Create(context.Background(), &entity.Application{
				ScholarshipID: sc.ID, StudentID: student.ID, AdminID: admin.ID, Status: entity.StatusApplied,
			})
			switch err {
			case nil:
				atomic.AddInt32(&ok, 1)
			case repository.ErrDuplicate:
				atomic.AddInt32(&dup, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok)
	assert.EqualValues(t, 9, dup)
	got, err := s.Identities().GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{sc.ID}, got.AppliedScholarshipIDs)
}

func TestDeleteCascadeRemovesApplicationsAndAppliedIDs(t *testing.T) {
	s := New()
	ctx := context.Background()
	admin, student, sc := seed(t, s)
	_, err := s.Applications().Create(ctx, &entity.Application{ScholarshipID: sc.ID, StudentID: student.ID, AdminID: admin.ID, Status: entity.StatusApplied})
	require.NoError(t, err)

	n, err := s.Scholarships().DeleteCascade(ctx, sc.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	apps, err := s.Applications().ListByStudent(ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, apps)
	got, err := s.Identities().GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AppliedScholarshipIDs)

	_, err = s.Scholarships().DeleteCascade(ctx, sc.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListByDeadlineIsHalfOpen(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2030, 1, d, 0, 0, 0, 0, time.UTC) }
	for _, d := range []int{1, 2, 3} {
		require.NoError(t, s.Scholarships().Create(ctx, &entity.Scholarship{Name: "S", Deadline: day(d)}))
	}
	got, err := s.Scholarships().ListByDeadline(ctx, day(2), day(3))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, day(2), got[0].Deadline)
}

func TestCodeStoreHonoursTTL(t *testing.T) {
	s := New()
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Codes().Save(ctx, entity.OneTimeCode{Email: "a@x.io", CodeHash: "h", IssuedAt: now}, time.Minute))
	_, err := s.Codes().Get(ctx, "a@x.io")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = s.Codes().Get(ctx, "a@x.io")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCodeConsumeIsSingleUse(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Codes().Save(ctx, entity.OneTimeCode{Email: "a@x.io", CodeHash: "h1"}, time.Minute))

	ok, err := s.Codes().Consume(ctx, "a@x.io", "other")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Codes().Consume(ctx, "a@x.io", "h1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Codes().Consume(ctx, "a@x.io", "h1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDenylistPrunesExpiredEntries(t *testing.T) {
	s := New()
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Denylist().Revoke(ctx, "old", time.Minute))
	now = now.Add(2 * time.Minute)
	require.NoError(t, s.Denylist().Revoke(ctx, "new", time.Hour))

	s.mu.RLock()
	_, kept := s.revoked["old"]
	size := len(s.revoked)
	s.mu.RUnlock()
	assert.False(t, kept)
	assert.Equal(t, 1, size)

	revoked, err := s.Denylist().IsRevoked(ctx, "new")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestNotificationsNewestFirstWithLimit(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, title := range []string{"one", "two", "three"} {
		require.NoError(t, s.Notifications().CreateMany(ctx, []entity.Notification{{RecipientID: "r", Title: title, Type: entity.NotificationSystem}}))
	}
	got, err := s.Notifications().ListByRecipient(ctx, "r", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "three", got[0].Title)
	assert.Equal(t, "two", got[1].Title)
}
