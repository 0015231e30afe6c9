package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/domain/repository"
)

const constraintApplicationPair = "uq_applications_scholarship_student"

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

func (r *ApplicationRepository) Exists(ctx context.Context, scholarshipID, studentID string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM applications WHERE scholarship_id = $1 AND student_id = $2)
	`, scholarshipID, studentID).Scan(&ok)
	if err != nil {
		return false, notFound(err)
	}
	return ok, nil
}

// Create relies on the unique (scholarship_id, student_id) constraint, so two
// concurrent applications for the same pair leave exactly one row behind.
func (r *ApplicationRepository) Create(ctx context.Context, a *entity.Application) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO applications (scholarship_id, student_id, admin_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, applied_at, updated_at
	`, a.ScholarshipID, a.StudentID, a.AdminID, string(a.Status)).Scan(&a.ID, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		if isDuplicateConstraintError(err, constraintApplicationPair) {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("insert application: %w", err)
	}

	var applied []string
	err = tx.QueryRow(ctx, `
		UPDATE identities
		SET applied_scholarship_ids = CASE
				WHEN $1::text = ANY(applied_scholarship_ids) THEN applied_scholarship_ids
				ELSE array_append(applied_scholarship_ids, $1::text)
			END,
			updated_at = now()
		WHERE id = $2
		RETURNING applied_scholarship_ids
	`, a.ScholarshipID, a.StudentID).Scan(&applied)
	if err != nil {
		return nil, fmt.Errorf("record applied scholarship: %w", notFound(err))
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return applied, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*entity.Application, error) {
	var (
		a      entity.Application
		status string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, scholarship_id, student_id, admin_id, status, applied_at, updated_at
		FROM applications
		WHERE id = $1
	`, id).Scan(&a.ID, &a.ScholarshipID, &a.StudentID, &a.AdminID, &status, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	a.Status = entity.ApplicationStatus(status)
	return &a, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status entity.ApplicationStatus) (*entity.Application, error) {
	var (
		a   entity.Application
		st  string
		now = time.Now().UTC()
	)
	err := r.pool.QueryRow(ctx, `
		UPDATE applications
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING id, scholarship_id, student_id, admin_id, status, applied_at, updated_at
	`, string(status), now, id).Scan(&a.ID, &a.ScholarshipID, &a.StudentID, &a.AdminID, &st, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	a.Status = entity.ApplicationStatus(st)
	return &a, nil
}

func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID string) ([]entity.StudentApplication, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.scholarship_id, a.student_id, a.admin_id, a.status, a.applied_at, a.updated_at,
			s.id, s.name, s.provider, s.amount
		FROM applications a
		JOIN scholarships s ON s.id = a.scholarship_id
		WHERE a.student_id = $1
		ORDER BY a.applied_at DESC, a.id DESC
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student applications: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.StudentApplication, error) {
		var (
			sa     entity.StudentApplication
			status string
		)
		err := row.Scan(&sa.ID, &sa.ScholarshipID, &sa.StudentID, &sa.AdminID, &status, &sa.AppliedAt, &sa.UpdatedAt,
			&sa.Scholarship.ID, &sa.Scholarship.Name, &sa.Scholarship.Provider, &sa.Scholarship.Amount)
		sa.Status = entity.ApplicationStatus(status)
		return sa, err
	})
}

func (r *ApplicationRepository) ListByAdmin(ctx context.Context, adminID string) ([]entity.AdminApplication, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.scholarship_id, a.student_id, a.admin_id, a.status, a.applied_at, a.updated_at,
			i.id, i.name,
			COALESCE(i.profile ->> 'currentDegree', ''),
			COALESCE(i.profile ->> 'highestDegree', ''),
			COALESCE(i.profile ->> 'college', ''),
			COALESCE((i.profile ->> 'cgpa')::double precision, 0),
			COALESCE((i.profile ->> 'class12Marks')::double precision, 0),
			s.name
		FROM applications a
		JOIN identities i ON i.id = a.student_id
		JOIN scholarships s ON s.id = a.scholarship_id
		WHERE a.admin_id = $1
		ORDER BY a.applied_at DESC, a.id DESC
	`, adminID)
	if err != nil {
		return nil, fmt.Errorf("list admin applications: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.AdminApplication, error) {
		var (
			aa     entity.AdminApplication
			status string
		)
		p := &aa.Applicant
		err := row.Scan(&aa.ID, &aa.ScholarshipID, &aa.StudentID, &aa.AdminID, &status, &aa.AppliedAt, &aa.UpdatedAt,
			&p.ID, &p.Name, &p.CurrentDegree, &p.HighestDegree, &p.College, &p.CGPA, &p.Class12Marks,
			&aa.ScholarshipName)
		aa.Status = entity.ApplicationStatus(status)
		return aa, err
	})
}

var _ repository.ApplicationRepository = (*ApplicationRepository)(nil)
