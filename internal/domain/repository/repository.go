package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/edugrant/internal/domain/entity"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// IdentityRepository stores registered users. Email is unique.
type IdentityRepository interface {
	// Create returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, i *entity.Identity) error
	GetByID(ctx context.Context, id string) (*entity.Identity, error)
	GetByEmail(ctx context.Context, email string) (*entity.Identity, error)
	// Update persists name, profile and avatar. Role and email are never changed.
	Update(ctx context.Context, i *entity.Identity) error
	// ListStudents returns every student, or only those whose current degree equals degree when it is non-empty.
	ListStudents(ctx context.Context, degree string) ([]entity.Identity, error)
}

// OneTimeCodeStore keeps one live code per email; Save overwrites.
type OneTimeCodeStore interface {
	Save(ctx context.Context, code entity.OneTimeCode, ttl time.Duration) error
	Get(ctx context.Context, email string) (*entity.OneTimeCode, error)
	Delete(ctx context.Context, email string) error
	// Consume deletes the code for email only if it still carries codeHash.
	// Of several concurrent callers at most one sees true.
	Consume(ctx context.Context, email, codeHash string) (bool, error)
}

// SessionDenylist records revoked session token ids until they would have expired anyway.
type SessionDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type ScholarshipFilter struct {
	OwnerAdminID string
	Limit        int
}

type ScholarshipRepository interface {
	Create(ctx context.Context, s *entity.Scholarship) error
	GetByID(ctx context.Context, id string) (*entity.Scholarship, error)
	// List returns scholarships newest first.
	List(ctx context.Context, f ScholarshipFilter) ([]entity.Scholarship, error)
	// ListByDeadline returns scholarships whose deadline is in [from, to).
	ListByDeadline(ctx context.Context, from, to time.Time) ([]entity.Scholarship, error)
	// DeleteCascade removes the scholarship together with every application that
	// references it and returns how many applications were removed.
	DeleteCascade(ctx context.Context, id string) (int64, error)
}

type ApplicationRepository interface {
	Exists(ctx context.Context, scholarshipID, studentID string) (bool, error)
	// Create inserts the application and adds the scholarship to the student's
	// applied set in one atomic step. A second application for the same
	// (scholarship, student) pair fails with ErrDuplicate. It returns the
	// student's applied set after the insert.
	Create(ctx context.Context, a *entity.Application) ([]string, error)
	GetByID(ctx context.Context, id string) (*entity.Application, error)
	UpdateStatus(ctx context.Context, id string, status entity.ApplicationStatus) (*entity.Application, error)
	ListByStudent(ctx context.Context, studentID string) ([]entity.StudentApplication, error)
	// ListByAdmin returns applications owned by adminID, newest first.
	ListByAdmin(ctx context.Context, adminID string) ([]entity.AdminApplication, error)
}

type NotificationRepository interface {
	// CreateMany inserts all notifications or none.
	CreateMany(ctx context.Context, ns []entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	// ListByRecipient returns at most limit notifications, newest first.
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]entity.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context, recipientID string) (int64, error)
}
