package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/domain/repository"
)

const scholarshipColumns = `id, slug, name, provider, amount, deadline, category, gpa_requirement,
	degree_level, description, eligibility, official_url, owner_admin_id, created_at, updated_at`

func scanScholarship(row pgx.Row) (*entity.Scholarship, error) {
	var s entity.Scholarship
	if err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.Provider, &s.Amount, &s.Deadline, &s.Category,
		&s.GPARequirement, &s.DegreeLevel, &s.Description, &s.Eligibility, &s.OfficialURL,
		&s.OwnerAdminID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if s.Eligibility == nil {
		s.Eligibility = []string{}
	}
	return &s, nil
}

type ScholarshipRepository struct {
	pool *pgxpool.Pool
}

func NewScholarshipRepository(pool *pgxpool.Pool) *ScholarshipRepository {
	return &ScholarshipRepository{pool: pool}
}

func (r *ScholarshipRepository) Create(ctx context.Context, s *entity.Scholarship) error {
	if s.Eligibility == nil {
		s.Eligibility = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO scholarships (slug, name, provider, amount, deadline, category, gpa_requirement,
			degree_level, description, eligibility, official_url, owner_admin_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, s.Slug, s.Name, s.Provider, s.Amount, s.Deadline, s.Category, s.GPARequirement,
		s.DegreeLevel, s.Description, s.Eligibility, s.OfficialURL, s.OwnerAdminID)
	if err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("insert scholarship: %w", err)
	}
	return nil
}

func (r *ScholarshipRepository) GetByID(ctx context.Context, id string) (*entity.Scholarship, error) {
	s, err := scanScholarship(r.pool.QueryRow(ctx, `SELECT `+scholarshipColumns+` FROM scholarships WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *ScholarshipRepository) List(ctx context.Context, f repository.ScholarshipFilter) ([]entity.Scholarship, error) {
	q := psql.Select(scholarshipColumns).
		From("scholarships").
		OrderBy("created_at DESC", "id DESC")
	if f.OwnerAdminID != "" {
		q = q.Where(squirrel.Eq{"owner_admin_id": f.OwnerAdminID})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	return r.query(ctx, q)
}

func (r *ScholarshipRepository) ListByDeadline(ctx context.Context, from, to time.Time) ([]entity.Scholarship, error) {
	q := psql.Select(scholarshipColumns).
		From("scholarships").
		Where(squirrel.GtOrEq{"deadline": from}).
		Where(squirrel.Lt{"deadline": to}).
		OrderBy("deadline ASC", "created_at ASC")
	return r.query(ctx, q)
}

func (r *ScholarshipRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]entity.Scholarship, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scholarship query: %w", err)
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		// an owner filter that is not a uuid matches nothing
		if errors.Is(notFound(err), repository.ErrNotFound) {
			return []entity.Scholarship{}, nil
		}
		return nil, fmt.Errorf("query scholarships: %w", err)
	}
	defer rows.Close()

	out := []entity.Scholarship{}
	for rows.Next() {
		s, err := scanScholarship(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scholarship: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// DeleteCascade removes the scholarship, its applications and its id from every
// applied set in one transaction.
func (r *ScholarshipRepository) DeleteCascade(ctx context.Context, id string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	apps, err := tx.Exec(ctx, `DELETE FROM applications WHERE scholarship_id = $1`, id)
	if err != nil {
		return 0, notFound(err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE identities
		SET applied_scholarship_ids = array_remove(applied_scholarship_ids, $1::text)
		WHERE $1::text = ANY(applied_scholarship_ids)
	`, id); err != nil {
		return 0, fmt.Errorf("strip applied sets: %w", err)
	}
	res, err := tx.Exec(ctx, `DELETE FROM scholarships WHERE id = $1`, id)
	if err != nil {
		return 0, notFound(err)
	}
	if res.RowsAffected() == 0 {
		return 0, repository.ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return apps.RowsAffected(), nil
}

var _ repository.ScholarshipRepository = (*ScholarshipRepository)(nil)
