package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/domain/repository"
)

const constraintIdentityEmail = "uq_identities_email"

// profileDoc is the JSONB shape of identities.profile. Only the fields of the
// identity's role are set.
type profileDoc struct {
	College       string  `json:"college,omitempty"`
	CGPA          float64 `json:"cgpa,omitempty"`
	Class12Marks  float64 `json:"class12Marks,omitempty"`
	HighestDegree string  `json:"highestDegree,omitempty"`
	CurrentDegree string  `json:"currentDegree,omitempty"`
	FieldOfStudy  string  `json:"fieldOfStudy,omitempty"`

	Organization string `json:"organization,omitempty"`
	Department   string `json:"department,omitempty"`
	Designation  string `json:"designation,omitempty"`
	EmployeeID   string `json:"employeeId,omitempty"`
}

func encodeProfile(i *entity.Identity) ([]byte, error) {
	var d profileDoc
	switch {
	case i.Student != nil:
		p := i.Student
		d = profileDoc{College: p.College, CGPA: p.CGPA, Class12Marks: p.Class12Marks,
			HighestDegree: p.HighestDegree, CurrentDegree: p.CurrentDegree, FieldOfStudy: p.FieldOfStudy}
	case i.Admin != nil:
		p := i.Admin
		d = profileDoc{Organization: p.Organization, Department: p.Department,
			Designation: p.Designation, EmployeeID: p.EmployeeID}
	}
	return json.Marshal(d)
}

func decodeProfile(i *entity.Identity, raw []byte) error {
	var d profileDoc
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("decode profile of %s: %w", i.ID, err)
		}
	}
	switch i.Role {
	case entity.RoleStudent:
		i.Student = &entity.StudentProfile{College: d.College, CGPA: d.CGPA, Class12Marks: d.Class12Marks,
			HighestDegree: d.HighestDegree, CurrentDegree: d.CurrentDegree, FieldOfStudy: d.FieldOfStudy}
	case entity.RoleAdmin:
		i.Admin = &entity.AdminProfile{Organization: d.Organization, Department: d.Department,
			Designation: d.Designation, EmployeeID: d.EmployeeID}
	}
	return nil
}

const identityColumns = `id, email, name, role, profile, avatar_url, applied_scholarship_ids, created_at, updated_at`

func scanIdentity(row pgx.Row) (*entity.Identity, error) {
	var (
		i    entity.Identity
		role string
		raw  []byte
	)
	if err := row.Scan(&i.ID, &i.Email, &i.Name, &role, &raw, &i.AvatarURL,
		&i.AppliedScholarshipIDs, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, err
	}
	i.Role = entity.Role(role)
	if i.AppliedScholarshipIDs == nil {
		i.AppliedScholarshipIDs = []string{}
	}
	if err := decodeProfile(&i, raw); err != nil {
		return nil, err
	}
	return &i, nil
}

type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func (r *IdentityRepository) Create(ctx context.Context, i *entity.Identity) error {
	profile, err := encodeProfile(i)
	if err != nil {
		return err
	}
	if i.AppliedScholarshipIDs == nil {
		i.AppliedScholarshipIDs = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO identities (email, name, role, profile, avatar_url, applied_scholarship_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, i.Email, i.Name, string(i.Role), profile, i.AvatarURL, i.AppliedScholarshipIDs)
	if err := row.Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt); err != nil {
		if isDuplicateConstraintError(err, constraintIdentityEmail) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*entity.Identity, error) {
	i, err := scanIdentity(r.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return i, nil
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	i, err := scanIdentity(r.pool.QueryRow(ctx, `SELECT `+identityColumns+` FROM identities WHERE email = $1`, email))
	if err != nil {
		return nil, notFound(err)
	}
	return i, nil
}

func (r *IdentityRepository) Update(ctx context.Context, i *entity.Identity) error {
	profile, err := encodeProfile(i)
	if err != nil {
		return err
	}
	i.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET name = $1, profile = $2, avatar_url = $3, updated_at = $4
		WHERE id = $5
	`, i.Name, profile, i.AvatarURL, i.UpdatedAt, i.ID)
	if err != nil {
		return notFound(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *IdentityRepository) ListStudents(ctx context.Context, degree string) ([]entity.Identity, error) {
	q := psql.Select(identityColumns).
		From("identities").
		Where(squirrel.Eq{"role": string(entity.RoleStudent)}).
		OrderBy("created_at ASC")
	if degree != "" {
		q = q.Where(squirrel.Expr("profile ->> 'currentDegree' = ?", degree))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list students query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	out := []entity.Identity{}
	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)
