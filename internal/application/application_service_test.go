package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/edugrant/internal/domain/apperror"
	"github.com/oksasatya/edugrant/internal/domain/entity"
)

func TestRegistrationToApplication(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.auth.RequestCode(ctx, "a@x.com"))
	res, err := h.auth.VerifyCode(ctx, "a@x.com", h.sender.last("a@x.com"))
	require.NoError(t, err)
	require.False(t, res.IsRegistered)

	student, sess, err := h.auth.Register(ctx, RegisterInput{
		Email: "a@x.com", Name: "Asha", Role: entity.RoleStudent,
		Student: &entity.StudentProfile{CGPA: 8.5, CurrentDegree: "Undergraduate"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)

	admin := h.admin(t, "admin@x.com")
	sc := h.scholarship(t, admin, "STEM Merit", "Undergraduate", "2030-06-01")

	out, err := h.applications.Apply(ctx, student, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApplied, out.Application.Status)
	assert.Equal(t, admin.ID, out.Application.AdminID)
	assert.Contains(t, out.AppliedScholarshipIDs, sc.ID)

	mine, err := h.applications.ListMine(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "STEM Merit", mine[0].Scholarship.Name)
	assert.Equal(t, 5000.0, mine[0].Scholarship.Amount)
}

func TestDuplicateApply(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	student := h.student(t, "s@x.com", "Undergraduate")
	sc := h.scholarship(t, h.admin(t, "admin@x.com"), "Merit", "Undergraduate", "2030-06-01")

	_, err := h.applications.Apply(ctx, student, sc.ID)
	require.NoError(t, err)
	_, err = h.applications.Apply(ctx, student, sc.ID)
	assert.Equal(t, apperror.KindAlreadyApplied, apperror.KindOf(err))

	mine, err := h.applications.ListMine(ctx, student)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestConcurrentApplyYieldsOneApplication(t *testing.T) {
	h := newHarness(t)
	student := h.student(t, "s@x.com", "Undergraduate")
	sc := h.scholarship(t, h.admin(t, "admin@x.com"), "Merit", "Undergraduate", "2030-06-01")

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = h.applications.Apply(context.Background(), student, sc.ID)
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, apperror.KindAlreadyApplied, apperror.KindOf(err))
	}
	assert.Equal(t, 1, ok)
}

func TestApplyChecks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t, "admin@x.com")

	_, err := h.applications.Apply(ctx, h.student(t, "s@x.com", "Undergraduate"), "missing")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	sc := h.scholarship(t, admin, "Merit", "Undergraduate", "2030-06-01")
	_, err = h.applications.Apply(ctx, admin, sc.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestUpdateStatusOwnershipAndFreedom(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.admin(t, "owner@x.com")
	other := h.admin(t, "other@x.com")
	student := h.student(t, "s@x.com", "Undergraduate")
	sc := h.scholarship(t, owner, "Merit", "Undergraduate", "2030-06-01")
	applied, err := h.applications.Apply(ctx, student, sc.ID)
	require.NoError(t, err)
	id := applied.Application.ID

	_, err = h.applications.UpdateStatus(ctx, other, id, entity.StatusAccepted)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = h.applications.UpdateStatus(ctx, owner, "missing", entity.StatusAccepted)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = h.applications.UpdateStatus(ctx, owner, id, entity.ApplicationStatus("Pending"))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	for _, from := range entity.ApplicationStatuses {
		for _, to := range entity.ApplicationStatuses {
			_, err := h.applications.UpdateStatus(ctx, owner, id, from)
			require.NoError(t, err)
			got, err := h.applications.UpdateStatus(ctx, owner, id, to)
			require.NoError(t, err)
			assert.Equal(t, to, got.Status)
		}
	}
}

func TestUpdateStatusNotifiesApplicant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.admin(t, "owner@x.com")
	student := h.student(t, "s@x.com", "Masters")
	sc := h.scholarship(t, owner, "Merit", "PhD", "2030-06-01")
	applied, err := h.applications.Apply(ctx, student, sc.ID)
	require.NoError(t, err)

	_, err = h.applications.UpdateStatus(ctx, owner, applied.Application.ID, entity.StatusUnderReview)
	require.NoError(t, err)

	ns, err := h.notifications.ListMine(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, entity.NotificationSystem, ns[0].Type)
	assert.Equal(t, `Your application for "Merit" is now Under Review.`, ns[0].Message)
}

func TestListForAdminShowsApplicants(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.admin(t, "owner@x.com")
	other := h.admin(t, "other@x.com")
	s1 := h.student(t, "s1@x.com", "Undergraduate")
	s2 := h.student(t, "s2@x.com", "Undergraduate")
	sc := h.scholarship(t, owner, "Merit", "Undergraduate", "2030-06-01")
	h.scholarship(t, other, "Other", "Undergraduate", "2030-06-01")

	_, err := h.applications.Apply(ctx, s1, sc.ID)
	require.NoError(t, err)
	_, err = h.applications.Apply(ctx, s2, sc.ID)
	require.NoError(t, err)

	list, err := h.applications.ListForAdmin(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, s2.ID, list[0].Applicant.ID, "newest first")
	assert.Equal(t, "Merit", list[0].ScholarshipName)
	assert.Equal(t, 8.5, list[0].Applicant.CGPA)
	assert.Equal(t, "State College", list[0].Applicant.College)

	none, err := h.applications.ListForAdmin(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = h.applications.ListForAdmin(ctx, s1)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}
