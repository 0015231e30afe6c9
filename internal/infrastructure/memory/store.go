// Package memory holds in-memory implementations of the repository interfaces.
// It backs STORAGE_DRIVER=memory and the service and handler tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/edugrant/internal/domain/entity"
)

type row[T any] struct {
	val T
	seq int64
}

// Store is the shared state behind every repository in this package. All
// repositories obtained from one Store see the same data.
type Store struct {
	mu  sync.RWMutex
	seq int64
	// Now stamps created and updated times; tests may replace it.
	Now func() time.Time

	identities    map[string]row[entity.Identity]
	emails        map[string]string
	codes         map[string]codeRow
	revoked       map[string]time.Time
	scholarships  map[string]row[entity.Scholarship]
	applications  map[string]row[entity.Application]
	pairs         map[string]string
	notifications map[string]row[entity.Notification]

	// NotificationErr, when set, makes every CreateMany call fail with it.
	NotificationErr error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		Now:           func() time.Time { return time.Now().UTC() },
		identities:    make(map[string]row[entity.Identity]),
		emails:        make(map[string]string),
		codes:         make(map[string]codeRow),
		revoked:       make(map[string]time.Time),
		scholarships:  make(map[string]row[entity.Scholarship]),
		applications:  make(map[string]row[entity.Application]),
		pairs:         make(map[string]string),
		notifications: make(map[string]row[entity.Notification]),
	}
}

func (s *Store) Identities() *IdentityRepository        { return &IdentityRepository{s} }
func (s *Store) Codes() *CodeStore                      { return &CodeStore{s} }
func (s *Store) Denylist() *Denylist                    { return &Denylist{s} }
func (s *Store) Scholarships() *ScholarshipRepository   { return &ScholarshipRepository{s} }
func (s *Store) Applications() *ApplicationRepository   { return &ApplicationRepository{s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s} }

func (s *Store) nextSeqLocked() int64 {
	s.seq++
	return s.seq
}

func newID() string { return uuid.NewString() }

// sortedDesc returns the values of rows newest first.
func sortedDesc[T any](rows []row[T]) []T {
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.val
	}
	return out
}

func pairKey(scholarshipID, studentID string) string {
	return scholarshipID + "|" + studentID
}
