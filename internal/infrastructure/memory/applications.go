package memory

import (
	"context"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/domain/repository"
)

type ApplicationRepository struct{ s *Store }

func (r *ApplicationRepository) Exists(_ context.Context, scholarshipID, studentID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.pairs[pairKey(scholarshipID, studentID)]
	return ok, nil
}

// Create checks the pair and records the application under one lock.
func (r *ApplicationRepository) Create(_ context.Context, a *entity.Application) ([]string, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(a.ScholarshipID, a.StudentID)
	if _, dup := s.pairs[key]; dup {
		return nil, repository.ErrDuplicate
	}
	student, ok := s.identities[a.StudentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if _, ok := s.scholarships[a.ScholarshipID]; !ok {
		return nil, repository.ErrNotFound
	}

	now := s.Now()
	a.ID = newID()
	a.AppliedAt, a.UpdatedAt = now, now
	s.applications[a.ID] = row[entity.Application]{val: *a, seq: s.nextSeqLocked()}
	s.pairs[key] = a.ID

	student.val.AddApplied(a.ScholarshipID)
	student.val.UpdatedAt = now
	s.identities[a.StudentID] = student
	return append([]string{}, student.val.AppliedScholarshipIDs...), nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, id string) (*entity.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rw, ok := r.s.applications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a := rw.val
	return &a, nil
}

func (r *ApplicationRepository) UpdateStatus(_ context.Context, id string, status entity.ApplicationStatus) (*entity.Application, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	rw, ok := s.applications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rw.val.Status = status
	rw.val.UpdatedAt = s.Now()
	s.applications[id] = rw
	a := rw.val
	return &a, nil
}

func (r *ApplicationRepository) ListByStudent(_ context.Context, studentID string) ([]entity.StudentApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := make([]row[entity.StudentApplication], 0)
	for _, rw := range r.s.applications {
		if rw.val.StudentID != studentID {
			continue
		}
		sa := entity.StudentApplication{Application: rw.val}
		if sc, ok := r.s.scholarships[rw.val.ScholarshipID]; ok {
			sa.Scholarship = entity.ScholarshipSummary{ID: sc.val.ID, Name: sc.val.Name, Provider: sc.val.Provider, Amount: sc.val.Amount}
		}
		rows = append(rows, row[entity.StudentApplication]{val: sa, seq: rw.seq})
	}
	return sortedDesc(rows), nil
}

func (r *ApplicationRepository) ListByAdmin(_ context.Context, adminID string) ([]entity.AdminApplication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := make([]row[entity.AdminApplication], 0)
	for _, rw := range r.s.applications {
		if rw.val.AdminID != adminID {
			continue
		}
		aa := entity.AdminApplication{Application: rw.val}
		if st, ok := r.s.identities[rw.val.StudentID]; ok {
			aa.Applicant = entity.ApplicantSummary{ID: st.val.ID, Name: st.val.Name}
			if p := st.val.Student; p != nil {
				aa.Applicant.CurrentDegree = p.CurrentDegree
				aa.Applicant.HighestDegree = p.HighestDegree
				aa.Applicant.College = p.College
				aa.Applicant.CGPA = p.CGPA
				aa.Applicant.Class12Marks = p.Class12Marks
			}
		}
		if sc, ok := r.s.scholarships[rw.val.ScholarshipID]; ok {
			aa.ScholarshipName = sc.val.Name
		}
		rows = append(rows, row[entity.AdminApplication]{val: aa, seq: rw.seq})
	}
	return sortedDesc(rows), nil
}

var _ repository.ApplicationRepository = (*ApplicationRepository)(nil)
