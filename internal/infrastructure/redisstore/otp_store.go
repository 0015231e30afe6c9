package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/internal/domain/repository"
	"github.com/oksasatya/edugrant/pkg/helpers"
)

type otpPayload struct {
	Email    string    `json:"email"`
	CodeHash string    `json:"code_hash"`
	IssuedAt time.Time `json:"issued_at"`
}

// CodeStore keeps verification codes under auth:otp:<email> with a TTL.
type CodeStore struct {
	rdb *redis.Client
}

func NewCodeStore(rdb *redis.Client) *CodeStore {
	return &CodeStore{rdb: rdb}
}

func (s *CodeStore) Save(ctx context.Context, code entity.OneTimeCode, ttl time.Duration) error {
	p := otpPayload{Email: code.Email, CodeHash: code.CodeHash, IssuedAt: code.IssuedAt}
	return helpers.RedisSetJSON(ctx, s.rdb, helpers.KeyEmailOTP(code.Email), p, ttl)
}

func (s *CodeStore) Get(ctx context.Context, email string) (*entity.OneTimeCode, error) {
	var p otpPayload
	found, err := helpers.RedisGetJSON(ctx, s.rdb, helpers.KeyEmailOTP(email), &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, repository.ErrNotFound
	}
	return &entity.OneTimeCode{Email: p.Email, CodeHash: p.CodeHash, IssuedAt: p.IssuedAt}, nil
}

func (s *CodeStore) Delete(ctx context.Context, email string) error {
	return helpers.RedisDel(ctx, s.rdb, helpers.KeyEmailOTP(email))
}

// consumeScript deletes the code record only while it still holds the expected hash.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then return 0 end
if cjson.decode(v)['code_hash'] ~= ARGV[1] then return 0 end
return redis.call('DEL', KEYS[1])
`)

func (s *CodeStore) Consume(ctx context.Context, email, codeHash string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.rdb, []string{helpers.KeyEmailOTP(email)}, codeHash).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

var _ repository.OneTimeCodeStore = (*CodeStore)(nil)
