package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edugrant/internal/domain/apperror"
	"github.com/oksasatya/edugrant/internal/domain/entity"
	repo "github.com/oksasatya/edugrant/internal/domain/repository"
)

const (
	defaultSearchSize    = 10
	maxSearchSize        = 50
	defaultFanoutTimeout = 10 * time.Second
)

// unsetOwnerFilters are placeholder values clients send for "no owner filter".
var unsetOwnerFilters = map[string]bool{"": true, "undefined": true, "null": true}

type ScholarshipService struct {
	Scholarships repo.ScholarshipRepository
	Notifier     *NotificationService
	// Index is optional; without it search scans the stored listings.
	Index         ScholarshipIndex
	Location      *time.Location
	FanoutTimeout time.Duration
	Logger        *logrus.Logger
}

func NewScholarshipService(scholarships repo.ScholarshipRepository, notifier *NotificationService, index ScholarshipIndex,
	loc *time.Location, logger *logrus.Logger) *ScholarshipService {
	if loc == nil {
		loc = time.UTC
	}
	return &ScholarshipService{
		Scholarships:  scholarships,
		Notifier:      notifier,
		Index:         index,
		Location:      loc,
		FanoutTimeout: defaultFanoutTimeout,
		Logger:        logger,
	}
}

type CreateScholarshipInput struct {
	Name           string
	Provider       string
	Amount         float64
	Deadline       string
	Category       string
	GPARequirement float64
	DegreeLevel    string
	Description    string
	Eligibility    []string
	OfficialURL    string
}

// ParseDeadline accepts a calendar date or an RFC 3339 timestamp and returns the
// calendar date it falls on in loc.
func ParseDeadline(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(entity.DateLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return entity.DateOf(t, loc), nil
}

func (in CreateScholarshipInput) validate(loc *time.Location) (time.Time, error) {
	fields := map[string]string{}
	required := map[string]string{
		"name":        in.Name,
		"provider":    in.Provider,
		"degreeLevel": in.DegreeLevel,
		"description": in.Description,
		"deadline":    in.Deadline,
	}
	for k, v := range required {
		if strings.TrimSpace(v) == "" {
			fields[k] = "is required"
		}
	}
	if !nonNegative(in.Amount) {
		fields["amount"] = "must be greater than or equal to 0"
	}
	if !nonNegative(in.GPARequirement) {
		fields["gpaRequirement"] = "must be greater than or equal to 0"
	}
	var deadline time.Time
	if _, missing := fields["deadline"]; !missing {
		d, err := ParseDeadline(in.Deadline, loc)
		if err != nil {
			fields["deadline"] = "must be a date (YYYY-MM-DD)"
		}
		deadline = d
	}
	if len(fields) > 0 {
		return time.Time{}, apperror.Validation("Validation failed", fields)
	}
	return deadline, nil
}

// Create stores a scholarship owned by actor and fans out MATCH notices. Indexing
// and fan-out failures are logged, never returned.
func (s *ScholarshipService) Create(ctx context.Context, actor *entity.Identity, in CreateScholarshipInput) (*entity.Scholarship, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Forbidden("Only admins can create scholarships")
	}
	deadline, err := in.validate(s.Location)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = entity.DefaultCategory
	}
	eligibility := make([]string, 0, len(in.Eligibility))
	for _, e := range in.Eligibility {
		if e = strings.TrimSpace(e); e != "" {
			eligibility = append(eligibility, e)
		}
	}

	sc := &entity.Scholarship{
		Slug:           slug.Make(in.Name) + "-" + uuid.NewString()[:8],
		Name:           strings.TrimSpace(in.Name),
		Provider:       strings.TrimSpace(in.Provider),
		Amount:         in.Amount,
		Deadline:       deadline,
		Category:       category,
		GPARequirement: in.GPARequirement,
		DegreeLevel:    strings.TrimSpace(in.DegreeLevel),
		Description:    strings.TrimSpace(in.Description),
		Eligibility:    eligibility,
		OfficialURL:    strings.TrimSpace(in.OfficialURL),
		OwnerAdminID:   actor.ID,
	}
	if err := s.Scholarships.Create(ctx, sc); err != nil {
		return nil, storeErr(err, "Scholarship not found")
	}

	// the request may be cancelled once the response is written
	bg := context.WithoutCancel(ctx)
	if s.Index != nil {
		if err := s.Index.Index(bg, sc); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("scholarship_id", sc.ID).Warn("es index failed")
		}
	}
	if s.Notifier != nil {
		fctx, cancel := context.WithTimeout(bg, s.FanoutTimeout)
		n, err := s.Notifier.OnScholarshipCreated(fctx, sc)
		cancel()
		if s.Logger != nil {
			if err != nil {
				s.Logger.WithError(err).WithField("scholarship_id", sc.ID).Error("match fan-out failed")
			} else {
				s.Logger.WithFields(logrus.Fields{"scholarship_id": sc.ID, "matched": n}).Info("match fan-out done")
			}
		}
	}
	return sc, nil
}

// List returns every scholarship, or only ownerAdminID's, newest first.
func (s *ScholarshipService) List(ctx context.Context, ownerAdminID string) ([]entity.Scholarship, error) {
	f := repo.ScholarshipFilter{}
	if owner := strings.TrimSpace(ownerAdminID); !unsetOwnerFilters[owner] {
		f.OwnerAdminID = owner
	}
	list, err := s.Scholarships.List(ctx, f)
	if err != nil {
		return nil, storeErr(err, "Scholarship not found")
	}
	if list == nil {
		list = []entity.Scholarship{}
	}
	return list, nil
}

func (s *ScholarshipService) Get(ctx context.Context, id string) (*entity.Scholarship, error) {
	sc, err := s.Scholarships.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Scholarship not found")
	}
	return sc, nil
}

// Search queries the index and falls back to a substring scan when it is absent or failing.
func (s *ScholarshipService) Search(ctx context.Context, q string, size int) ([]entity.Scholarship, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("Search query is required", map[string]string{"q": "is required"})
	}
	if size <= 0 {
		size = defaultSearchSize
	}
	size = min(size, maxSearchSize)

	if s.Index != nil {
		ids, err := s.Index.Search(ctx, q, size)
		if err == nil {
			return s.loadAll(ctx, ids)
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("es search failed, scanning listings")
		}
	}
	return s.scan(ctx, q, size)
}

func (s *ScholarshipService) loadAll(ctx context.Context, ids []string) ([]entity.Scholarship, error) {
	out := make([]entity.Scholarship, 0, len(ids))
	for _, id := range ids {
		sc, err := s.Scholarships.GetByID(ctx, id)
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeErr(err, "Scholarship not found")
		}
		out = append(out, *sc)
	}
	return out, nil
}

func (s *ScholarshipService) scan(ctx context.Context, q string, size int) ([]entity.Scholarship, error) {
	all, err := s.Scholarships.List(ctx, repo.ScholarshipFilter{})
	if err != nil {
		return nil, storeErr(err, "Scholarship not found")
	}
	needle := strings.ToLower(q)
	out := make([]entity.Scholarship, 0, size)
	for _, sc := range all {
		hay := strings.ToLower(strings.Join([]string{sc.Name, sc.Provider, sc.Category, sc.DegreeLevel, sc.Description}, " "))
		if strings.Contains(hay, needle) {
			out = append(out, sc)
			if len(out) == size {
				break
			}
		}
	}
	return out, nil
}

// Delete removes a scholarship owned by actor together with its applications.
func (s *ScholarshipService) Delete(ctx context.Context, actor *entity.Identity, id string) (int64, error) {
	sc, err := s.Scholarships.GetByID(ctx, id)
	if err != nil {
		return 0, storeErr(err, "Scholarship not found")
	}
	if sc.OwnerAdminID != actor.ID {
		return 0, apperror.Forbidden("Not authorized to delete this scholarship")
	}
	removed, err := s.Scholarships.DeleteCascade(ctx, id)
	if err != nil {
		return 0, storeErr(err, "Scholarship not found")
	}
	if s.Index != nil {
		if err := s.Index.Delete(context.WithoutCancel(ctx), id); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("scholarship_id", id).Warn("es delete failed")
		}
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"scholarship_id": id, "applications_removed": removed}).Info("scholarship deleted")
	}
	return removed, nil
}
