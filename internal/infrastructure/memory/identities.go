package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/domain/repository"
)

type IdentityRepository struct{ s *Store }

func cloneIdentity(i entity.Identity) entity.Identity {
	if i.Student != nil {
		p := *i.Student
		i.Student = &p
	}
	if i.Admin != nil {
		p := *i.Admin
		i.Admin = &p
	}
	i.AppliedScholarshipIDs = append([]string{}, i.AppliedScholarshipIDs...)
	return i
}

func (r *IdentityRepository) Create(_ context.Context, i *entity.Identity) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[i.Email]; taken {
		return repository.ErrDuplicate
	}
	now := s.Now()
	i.ID = newID()
	i.CreatedAt, i.UpdatedAt = now, now
	if i.AppliedScholarshipIDs == nil {
		i.AppliedScholarshipIDs = []string{}
	}
	s.identities[i.ID] = row[entity.Identity]{val: cloneIdentity(*i), seq: s.nextSeqLocked()}
	s.emails[i.Email] = i.ID
	return nil
}

func (r *IdentityRepository) GetByID(_ context.Context, id string) (*entity.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rw, ok := r.s.identities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	i := cloneIdentity(rw.val)
	return &i, nil
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*entity.Identity, error) {
	r.s.mu.RLock()
	id, ok := r.s.emails[email]
	r.s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *IdentityRepository) Update(_ context.Context, i *entity.Identity) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rw, ok := s.identities[i.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur := rw.val
	cur.Name = i.Name
	cur.AvatarURL = i.AvatarURL
	if cur.Role == entity.RoleStudent && i.Student != nil {
		p := *i.Student
		cur.Student = &p
	}
	if cur.Role == entity.RoleAdmin && i.Admin != nil {
		p := *i.Admin
		cur.Admin = &p
	}
	cur.UpdatedAt = s.Now()
	i.UpdatedAt = cur.UpdatedAt
	rw.val = cur
	s.identities[i.ID] = rw
	return nil
}

func (r *IdentityRepository) ListStudents(_ context.Context, degree string) ([]entity.Identity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := make([]row[entity.Identity], 0)
	for _, rw := range r.s.identities {
		if rw.val.Role != entity.RoleStudent {
			continue
		}
		if degree != "" && rw.val.CurrentDegree() != degree {
			continue
		}
		rows = append(rows, row[entity.Identity]{val: cloneIdentity(rw.val), seq: rw.seq})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]entity.Identity, len(rows))
	for i, rw := range rows {
		out[i] = rw.val
	}
	return out, nil
}

// removeAppliedLocked strips scholarshipID from every applied set.
func (s *Store) removeAppliedLocked(scholarshipID string) {
	for id, rw := range s.identities {
		if !slices.Contains(rw.val.AppliedScholarshipIDs, scholarshipID) {
			continue
		}
		rw.val.AppliedScholarshipIDs = slices.DeleteFunc(append([]string{}, rw.val.AppliedScholarshipIDs...),
			func(v string) bool { return v == scholarshipID })
		s.identities[id] = rw
	}
}

var _ repository.IdentityRepository = (*IdentityRepository)(nil)
