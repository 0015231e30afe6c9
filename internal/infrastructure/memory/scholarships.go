package memory

import (
	"context"
	"time"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/domain/repository"
)

type ScholarshipRepository struct{ s *Store }

func cloneScholarship(sc entity.Scholarship) entity.Scholarship {
	sc.Eligibility = append([]string{}, sc.Eligibility...)
	return sc
}

func (r *ScholarshipRepository) Create(_ context.Context, sc *entity.Scholarship) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	sc.ID = newID()
	sc.CreatedAt, sc.UpdatedAt = now, now
	if sc.Eligibility == nil {
		sc.Eligibility = []string{}
	}
	s.scholarships[sc.ID] = row[entity.Scholarship]{val: cloneScholarship(*sc), seq: s.nextSeqLocked()}
	return nil
}

func (r *ScholarshipRepository) GetByID(_ context.Context, id string) (*entity.Scholarship, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rw, ok := r.s.scholarships[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	sc := cloneScholarship(rw.val)
	return &sc, nil
}

func (r *ScholarshipRepository) List(_ context.Context, f repository.ScholarshipFilter) ([]entity.Scholarship, error) {
	r.s.mu.RLock()
	rows := make([]row[entity.Scholarship], 0, len(r.s.scholarships))
	for _, rw := range r.s.scholarships {
		if f.OwnerAdminID != "" && rw.val.OwnerAdminID != f.OwnerAdminID {
			continue
		}
		rows = append(rows, row[entity.Scholarship]{val: cloneScholarship(rw.val), seq: rw.seq})
	}
	r.s.mu.RUnlock()

	out := sortedDesc(rows)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *ScholarshipRepository) ListByDeadline(_ context.Context, from, to time.Time) ([]entity.Scholarship, error) {
	r.s.mu.RLock()
	rows := make([]row[entity.Scholarship], 0)
	for _, rw := range r.s.scholarships {
		d := rw.val.Deadline
		if d.Before(from) || !d.Before(to) {
			continue
		}
		rows = append(rows, row[entity.Scholarship]{val: cloneScholarship(rw.val), seq: -rw.seq})
	}
	r.s.mu.RUnlock()
	// negated seq turns newest-first into oldest-first
	return sortedDesc(rows), nil
}

func (r *ScholarshipRepository) DeleteCascade(_ context.Context, id string) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scholarships[id]; !ok {
		return 0, repository.ErrNotFound
	}
	var removed int64
	for appID, rw := range s.applications {
		if rw.val.ScholarshipID != id {
			continue
		}
		delete(s.applications, appID)
		delete(s.pairs, pairKey(id, rw.val.StudentID))
		removed++
	}
	s.removeAppliedLocked(id)
	delete(s.scholarships, id)
	return removed, nil
}

var _ repository.ScholarshipRepository = (*ScholarshipRepository)(nil)
