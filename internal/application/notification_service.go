package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edugrant/internal/domain/apperror"
	"github.com/oksasatya/edugrant/internal/domain/entity"
	repo "github.com/oksasatya/edugrant/internal/domain/repository"
)

const (
	DefaultNotificationLimit = 20
	DefaultDeadlineLeadDays  = 2
)

type NotificationService struct {
	Notifications repo.NotificationRepository
	Identities    repo.IdentityRepository
	Scholarships  repo.ScholarshipRepository
	Logger        *logrus.Logger
	// Location decides which calendar day "today" is for the deadline sweep.
	Location  *time.Location
	LeadDays  int
	ListLimit int
	Now       func() time.Time
}

func NewNotificationService(notifications repo.NotificationRepository, identities repo.IdentityRepository,
	scholarships repo.ScholarshipRepository, loc *time.Location, leadDays int, logger *logrus.Logger) *NotificationService {
	if loc == nil {
		loc = time.UTC
	}
	if leadDays <= 0 {
		leadDays = DefaultDeadlineLeadDays
	}
	return &NotificationService{
		Notifications: notifications,
		Identities:    identities,
		Scholarships:  scholarships,
		Logger:        logger,
		Location:      loc,
		LeadDays:      leadDays,
		ListLimit:     DefaultNotificationLimit,
		Now:           time.Now,
	}
}

// SweepReport summarises one deadline sweep.
type SweepReport struct {
	Window        [2]time.Time
	Scholarships  int
	Notifications int
	Failed        int
}

// OnScholarshipCreated sends a MATCH notice to every student whose current degree
// equals the scholarship's degree level. It returns how many were created.
func (s *NotificationService) OnScholarshipCreated(ctx context.Context, sc *entity.Scholarship) (int, error) {
	if sc.DegreeLevel == "" {
		return 0, nil
	}
	students, err := s.Identities.ListStudents(ctx, sc.DegreeLevel)
	if err != nil {
		return 0, storeErr(err, "students not found")
	}
	if len(students) == 0 {
		return 0, nil
	}
	ns := make([]entity.Notification, 0, len(students))
	for _, st := range students {
		ns = append(ns, entity.Notification{
			RecipientID: st.ID,
			Title:       "New Match Found!",
			Message:     fmt.Sprintf(`A new scholarship "%s" matches your profile.`, sc.Name),
			Type:        entity.NotificationMatch,
		})
	}
	if err := s.Notifications.CreateMany(ctx, ns); err != nil {
		return 0, storeErr(err, "notification not found")
	}
	return len(ns), nil
}

// DeadlineWindow is the calendar day LeadDays after today in Location, as [start, end).
func (s *NotificationService) DeadlineWindow() (time.Time, time.Time) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	start := entity.DateOf(now(), s.Location).AddDate(0, 0, s.LeadDays)
	return start, start.AddDate(0, 0, 1)
}

// RunDeadlineSweep broadcasts a DEADLINE notice to every student for each scholarship
// closing at the end of the lead window. A failed fan-out for one scholarship is
// logged and the rest still run.
func (s *NotificationService) RunDeadlineSweep(ctx context.Context) (SweepReport, error) {
	from, to := s.DeadlineWindow()
	report := SweepReport{Window: [2]time.Time{from, to}}

	closing, err := s.Scholarships.ListByDeadline(ctx, from, to)
	if err != nil {
		return report, storeErr(err, "scholarships not found")
	}
	report.Scholarships = len(closing)
	if len(closing) == 0 {
		return report, nil
	}
	students, err := s.Identities.ListStudents(ctx, "")
	if err != nil {
		return report, storeErr(err, "students not found")
	}
	if len(students) == 0 {
		return report, nil
	}

	for _, sc := range closing {
		ns := make([]entity.Notification, 0, len(students))
		for _, st := range students {
			ns = append(ns, entity.Notification{
				RecipientID: st.ID,
				Title:       "Deadline Approaching!",
				Message:     fmt.Sprintf(`The scholarship "%s" expires in %d days. Don't miss out!`, sc.Name, s.LeadDays),
				Type:        entity.NotificationDeadline,
			})
		}
		if err := s.Notifications.CreateMany(ctx, ns); err != nil {
			report.Failed++
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("scholarship_id", sc.ID).Error("deadline fan-out failed")
			}
			continue
		}
		report.Notifications += len(ns)
	}
	return report, nil
}

// NotifyStatusChange tells the applicant their application moved to a new status.
func (s *NotificationService) NotifyStatusChange(ctx context.Context, app *entity.Application, scholarshipName string) error {
	n := entity.Notification{
		RecipientID: app.StudentID,
		Title:       "Application Status Updated",
		Message:     fmt.Sprintf(`Your application for "%s" is now %s.`, scholarshipName, app.Status),
		Type:        entity.NotificationSystem,
	}
	if err := s.Notifications.CreateMany(ctx, []entity.Notification{n}); err != nil {
		return storeErr(err, "notification not found")
	}
	return nil
}

func (s *NotificationService) ListMine(ctx context.Context, recipientID string) ([]entity.Notification, error) {
	limit := s.ListLimit
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	ns, err := s.Notifications.ListByRecipient(ctx, recipientID, limit)
	if err != nil {
		return nil, storeErr(err, "notifications not found")
	}
	if ns == nil {
		ns = []entity.Notification{}
	}
	return ns, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	n, err := s.Notifications.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, storeErr(err, "notifications not found")
	}
	return n, nil
}

// DeleteOne removes a notification that belongs to recipientID.
func (s *NotificationService) DeleteOne(ctx context.Context, recipientID, id string) error {
	n, err := s.Notifications.GetByID(ctx, id)
	if err != nil {
		return storeErr(err, "Notification not found")
	}
	if n.RecipientID != recipientID {
		return apperror.Forbidden("Not authorized to delete this notification")
	}
	if err := s.Notifications.Delete(ctx, id); err != nil {
		return storeErr(err, "Notification not found")
	}
	return nil
}

func (s *NotificationService) ClearAll(ctx context.Context, recipientID string) (int64, error) {
	n, err := s.Notifications.DeleteAll(ctx, recipientID)
	if err != nil {
		return 0, storeErr(err, "notifications not found")
	}
	return n, nil
}
