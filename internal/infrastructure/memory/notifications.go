package memory

import (
	"context"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/domain/repository"
)

type NotificationRepository struct{ s *Store }

func (r *NotificationRepository) CreateMany(_ context.Context, ns []entity.Notification) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.NotificationErr != nil {
		return s.NotificationErr
	}
	now := s.Now()
	for i := range ns {
		ns[i].ID = newID()
		ns[i].CreatedAt = now
		s.notifications[ns[i].ID] = row[entity.Notification]{val: ns[i], seq: s.nextSeqLocked()}
	}
	return nil
}

func (r *NotificationRepository) GetByID(_ context.Context, id string) (*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rw, ok := r.s.notifications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	n := rw.val
	return &n, nil
}

func (r *NotificationRepository) ListByRecipient(_ context.Context, recipientID string, limit int) ([]entity.Notification, error) {
	r.s.mu.RLock()
	rows := make([]row[entity.Notification], 0)
	for _, rw := range r.s.notifications {
		if rw.val.RecipientID == recipientID {
			rows = append(rows, rw)
		}
	}
	r.s.mu.RUnlock()
	out := sortedDesc(rows)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, recipientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, rw := range r.s.notifications {
		if rw.val.RecipientID == recipientID && !rw.val.IsRead {
			rw.val.IsRead = true
			r.s.notifications[id] = rw
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.notifications[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.notifications, id)
	return nil
}

func (r *NotificationRepository) DeleteAll(_ context.Context, recipientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, rw := range r.s.notifications {
		if rw.val.RecipientID == recipientID {
			delete(r.s.notifications, id)
			n++
		}
	}
	return n, nil
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)
