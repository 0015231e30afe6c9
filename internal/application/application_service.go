package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edugrant/internal/domain/apperror"
	"github.com/oksasatya/edugrant/internal/domain/entity"
	repo "github.com/oksasatya/edugrant/internal/domain/repository"
)

type ApplicationService struct {
	Applications repo.ApplicationRepository
	Scholarships repo.ScholarshipRepository
	Notifier     *NotificationService
	Logger       *logrus.Logger
}

func NewApplicationService(applications repo.ApplicationRepository, scholarships repo.ScholarshipRepository,
	notifier *NotificationService, logger *logrus.Logger) *ApplicationService {
	return &ApplicationService{
		Applications: applications,
		Scholarships: scholarships,
		Notifier:     notifier,
		Logger:       logger,
	}
}

type ApplyResult struct {
	Application           *entity.Application
	AppliedScholarshipIDs []string
}

var errAlreadyApplied = apperror.New(apperror.KindAlreadyApplied, "You have already applied for this scholarship")

// Apply records actor's application to scholarshipID. The store's unique
// (scholarship, student) constraint decides concurrent attempts.
func (s *ApplicationService) Apply(ctx context.Context, actor *entity.Identity, scholarshipID string) (*ApplyResult, error) {
	if !actor.IsStudent() {
		return nil, apperror.Forbidden("Only students can apply for scholarships")
	}
	sc, err := s.Scholarships.GetByID(ctx, scholarshipID)
	if err != nil {
		return nil, storeErr(err, "Scholarship not found")
	}
	exists, err := s.Applications.Exists(ctx, sc.ID, actor.ID)
	if err != nil {
		return nil, storeErr(err, "Application not found")
	}
	if exists {
		return nil, errAlreadyApplied
	}

	app := &entity.Application{
		ScholarshipID: sc.ID,
		StudentID:     actor.ID,
		AdminID:       sc.OwnerAdminID,
		Status:        entity.StatusApplied,
	}
	applied, err := s.Applications.Create(ctx, app)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, errAlreadyApplied
	}
	if err != nil {
		return nil, storeErr(err, "Scholarship not found")
	}
	return &ApplyResult{Application: app, AppliedScholarshipIDs: applied}, nil
}

func (s *ApplicationService) ListMine(ctx context.Context, actor *entity.Identity) ([]entity.StudentApplication, error) {
	list, err := s.Applications.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err, "Application not found")
	}
	if list == nil {
		list = []entity.StudentApplication{}
	}
	return list, nil
}

func (s *ApplicationService) ListForAdmin(ctx context.Context, actor *entity.Identity) ([]entity.AdminApplication, error) {
	if !actor.IsAdmin() {
		return nil, apperror.Forbidden("Only admins can view received applications")
	}
	list, err := s.Applications.ListByAdmin(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err, "Application not found")
	}
	if list == nil {
		list = []entity.AdminApplication{}
	}
	return list, nil
}

// UpdateStatus moves an application owned by actor to status. Any status may follow any other.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor *entity.Identity, applicationID string, status entity.ApplicationStatus) (*entity.Application, error) {
	if !status.Valid() {
		return nil, apperror.Validation("Invalid status", map[string]string{"status": "must be one of: Applied, Under Review, Accepted, Rejected"})
	}
	app, err := s.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, storeErr(err, "Application not found")
	}
	if app.AdminID != actor.ID {
		return nil, apperror.Forbidden("Not authorized to update this application")
	}
	updated, err := s.Applications.UpdateStatus(ctx, applicationID, status)
	if err != nil {
		return nil, storeErr(err, "Application not found")
	}

	if s.Notifier != nil {
		name := ""
		if sc, err := s.Scholarships.GetByID(ctx, updated.ScholarshipID); err == nil {
			name = sc.Name
		}
		if err := s.Notifier.NotifyStatusChange(context.WithoutCancel(ctx), updated, name); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("application_id", updated.ID).Warn("status notification failed")
		}
	}
	return updated, nil
}
