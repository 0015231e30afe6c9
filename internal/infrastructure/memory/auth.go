package memory

import (
	"context"
	"time"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/domain/repository"
)

type codeRow struct {
	code    entity.OneTimeCode
	expires time.Time
}

func (r codeRow) live(now time.Time) bool {
	return r.expires.IsZero() || now.Before(r.expires)
}

// CodeStore keeps one code per email and honours the TTL given to Save.
type CodeStore struct{ s *Store }

func (c *CodeStore) Save(_ context.Context, code entity.OneTimeCode, ttl time.Duration) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = c.s.Now().Add(ttl)
	}
	c.s.codes[code.Email] = codeRow{code: code, expires: exp}
	return nil
}

func (c *CodeStore) Get(_ context.Context, email string) (*entity.OneTimeCode, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	rw, ok := c.s.codes[email]
	if !ok || !rw.live(c.s.Now()) {
		return nil, repository.ErrNotFound
	}
	code := rw.code
	return &code, nil
}

func (c *CodeStore) Delete(_ context.Context, email string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	delete(c.s.codes, email)
	return nil
}

func (c *CodeStore) Consume(_ context.Context, email, codeHash string) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	rw, ok := c.s.codes[email]
	if !ok || rw.code.CodeHash != codeHash {
		return false, nil
	}
	delete(c.s.codes, email)
	return rw.live(c.s.Now()), nil
}

// Denylist remembers revoked token ids until their TTL runs out.
type Denylist struct{ s *Store }

func (d *Denylist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	now := d.s.Now()
	for id, exp := range d.s.revoked {
		if !now.Before(exp) {
			delete(d.s.revoked, id)
		}
	}
	d.s.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	exp, ok := d.s.revoked[tokenID]
	return ok && d.s.Now().Before(exp), nil
}

var (
	_ repository.OneTimeCodeStore = (*CodeStore)(nil)
	_ repository.SessionDenylist  = (*Denylist)(nil)
)
