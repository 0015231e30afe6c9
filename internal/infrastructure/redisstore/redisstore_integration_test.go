//go:build integration

package redisstore

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/edugrant/internal/domain/entity"
	"github.com/oksasatya/edugrant/pkg/helpers"
)

// Run with: EDUGRANT_TEST_REDIS_ADDR=localhost:6379 go test -tags integration ./internal/infrastructure/redisstore/
func testCodes(t *testing.T) *CodeStore {
	t.Helper()
	addr := os.Getenv("EDUGRANT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EDUGRANT_TEST_REDIS_ADDR not set")
	}
	rdb := helpers.NewRedisClient(addr, "", 0)
	require.NoError(t, helpers.PingRedis(context.Background(), rdb))
	t.Cleanup(func() { _ = rdb.Close() })
	return NewCodeStore(rdb)
}

func TestConsumeMatchesHashOnce(t *testing.T) {
	codes := testCodes(t)
	ctx := context.Background()
	email := "consume-" + time.Now().Format("150405.000000") + "@x.io"
	require.NoError(t, codes.Save(ctx, entity.OneTimeCode{Email: email, CodeHash: "h1", IssuedAt: time.Now()}, time.Minute))

	ok, err := codes.Consume(ctx, email, "stale")
	require.NoError(t, err)
	assert.False(t, ok)

	var won int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := codes.Consume(ctx, email, "h1")
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&won, 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, won)

	_, err = codes.Get(ctx, email)
	assert.Error(t, err)
}
