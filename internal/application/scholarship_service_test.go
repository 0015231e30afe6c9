package application

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/edugrant/internal/domain/apperror"
	"github.com/oksasatya/edugrant/internal/domain/entity"
)

func TestCreateScholarship(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.admin(t, "admin@x.com")

	sc, err := h.scholarships.Create(ctx, admin, CreateScholarshipInput{
		Name: "Women in STEM", Provider: "Tech Fund", Amount: 2500, Deadline: "2030-05-31",
		GPARequirement: 3.2, DegreeLevel: "Undergraduate", Description: "For STEM majors",
		Eligibility: []string{" Female ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, sc.OwnerAdminID)
	assert.Equal(t, entity.DefaultCategory, sc.Category)
	assert.Equal(t, time.Date(2030, 5, 31, 0, 0, 0, 0, time.UTC), sc.Deadline)
	assert.Equal(t, []string{"Female"}, sc.Eligibility)
	assert.Regexp(t, `^women-in-stem-[0-9a-f]{8}$`, sc.Slug)
}

func TestCreateScholarshipRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	_, err := h.scholarships.Create(context.Background(), h.student(t, "s@x.com", "Undergraduate"), CreateScholarshipInput{Name: "X"})
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestCreateScholarshipValidation(t *testing.T) {
	h := newHarness(t)
	_, err := h.scholarships.Create(context.Background(), h.admin(t, "admin@x.com"), CreateScholarshipInput{
		Name: "X", Amount: -1, GPARequirement: -2, Deadline: "next week",
	})
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	fields := apperror.FieldsOf(err)
	for _, k := range []string{"provider", "degreeLevel", "description", "amount", "gpaRequirement", "deadline"} {
		assert.Contains(t, fields, k)
	}
	assert.NotContains(t, fields, "name")

	_, err = h.scholarships.Create(context.Background(), h.admin(t, "admin2@x.com"), CreateScholarshipInput{
		Name: "X", Provider: "Uni", DegreeLevel: "Undergraduate", Description: "d", Deadline: "2030-06-01",
		Amount: math.NaN(), GPARequirement: math.Inf(1),
	})
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	fields = apperror.FieldsOf(err)
	assert.Contains(t, fields, "amount")
	assert.Contains(t, fields, "gpaRequirement")
}

func TestParseDeadlineUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	got, err := ParseDeadline("2030-05-31T20:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestCreateSendsMatchNotices(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ug1 := h.student(t, "ug1@x.com", "Undergraduate")
	ug2 := h.student(t, "ug2@x.com", "Undergraduate")
	pg := h.student(t, "pg@x.com", "Postgraduate")

	h.scholarship(t, h.admin(t, "admin@x.com"), "Merit", "Undergraduate", "2030-06-01")

	for _, st := range []*entity.Identity{ug1, ug2} {
		ns, err := h.notifications.ListMine(ctx, st.ID)
		require.NoError(t, err)
		require.Len(t, ns, 1)
		assert.Equal(t, entity.NotificationMatch, ns[0].Type)
		assert.Equal(t, "New Match Found!", ns[0].Title)
		assert.Equal(t, `A new scholarship "Merit" matches your profile.`, ns[0].Message)
	}
	ns, err := h.notifications.ListMine(ctx, pg.ID)
	require.NoError(t, err)
	assert.Empty(t, ns)
}

func TestCreateSurvivesFanoutFailure(t *testing.T) {
	h := newHarness(t)
	h.student(t, "ug@x.com", "Undergraduate")
	h.store.NotificationErr = errors.New("insert failed")

	sc, err := h.scholarships.Create(context.Background(), h.admin(t, "admin@x.com"), CreateScholarshipInput{
		Name: "Merit", Provider: "P", Deadline: "2030-06-01", DegreeLevel: "Undergraduate", Description: "D",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sc.ID)
}

func TestListScholarships(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.admin(t, "a@x.com")
	b := h.admin(t, "b@x.com")
	h.scholarship(t, a, "First", "Undergraduate", "2030-06-01")
	h.scholarship(t, b, "Second", "Undergraduate", "2030-06-01")
	h.scholarship(t, a, "Third", "Undergraduate", "2030-06-01")

	all, err := h.scholarships.List(ctx, "undefined")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Third", all[0].Name)
	assert.Equal(t, "First", all[2].Name)

	mine, err := h.scholarships.List(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, sc := range mine {
		assert.Equal(t, a.ID, sc.OwnerAdminID)
	}
}

func TestSearchFallsBackToScan(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.admin(t, "a@x.com")
	h.scholarship(t, a, "Women in STEM", "Undergraduate", "2030-06-01")
	h.scholarship(t, a, "Arts Grant", "Undergraduate", "2030-06-01")

	got, err := h.scholarships.Search(ctx, "stem", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Women in STEM", got[0].Name)

	_, err = h.scholarships.Search(ctx, "  ", 0)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

type stubIndex struct {
	ids     []string
	err     error
	deleted []string
}

func (s *stubIndex) Index(context.Context, *entity.Scholarship) error { return nil }
func (s *stubIndex) Delete(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}
func (s *stubIndex) Search(context.Context, string, int) ([]string, error) { return s.ids, s.err }

func TestSearchUsesIndexOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.admin(t, "a@x.com")
	first := h.scholarship(t, a, "First", "Undergraduate", "2030-06-01")
	second := h.scholarship(t, a, "Second", "Undergraduate", "2030-06-01")

	idx := &stubIndex{ids: []string{second.ID, "stale", first.ID}}
	h.scholarships.Index = idx
	got, err := h.scholarships.Search(ctx, "anything", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)

	idx.err = errors.New("es down")
	got, err = h.scholarships.Search(ctx, "first", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)
}

func TestDeleteScholarshipCascades(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.admin(t, "owner@x.com")
	other := h.admin(t, "other@x.com")
	student := h.student(t, "s@x.com", "Undergraduate")
	doomed := h.scholarship(t, owner, "Doomed", "Undergraduate", "2030-06-01")
	kept := h.scholarship(t, owner, "Kept", "Undergraduate", "2030-06-01")
	idx := &stubIndex{}
	h.scholarships.Index = idx

	_, err := h.applications.Apply(ctx, student, doomed.ID)
	require.NoError(t, err)
	_, err = h.applications.Apply(ctx, student, kept.ID)
	require.NoError(t, err)

	_, err = h.scholarships.Delete(ctx, other, doomed.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	removed, err := h.scholarships.Delete(ctx, owner, doomed.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
	assert.Equal(t, []string{doomed.ID}, idx.deleted)

	mine, err := h.applications.ListMine(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, kept.ID, mine[0].ScholarshipID)

	_, err = h.scholarships.Get(ctx, doomed.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	_, err = h.scholarships.Delete(ctx, owner, doomed.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
