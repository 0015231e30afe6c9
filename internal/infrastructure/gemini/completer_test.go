package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oksasatya/edugrant/internal/domain/apperror"
)

func TestClassify(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
		want apperror.Kind
	}{
		{"http 429", &googleapi.Error{Code: http.StatusTooManyRequests}, apperror.KindRateLimited},
		{"grpc exhausted", status.Error(codes.ResourceExhausted, "quota"), apperror.KindRateLimited},
		{"deadline", context.DeadlineExceeded, apperror.KindUpstreamTimeout},
		{"server error", &googleapi.Error{Code: http.StatusInternalServerError}, apperror.KindUpstream},
		{"other", errors.New("boom"), apperror.KindUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperror.KindOf(classify(ctx, tt.err)))
		})
	}
}

func TestClassifyExpiredContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	assert.Equal(t, apperror.KindUpstreamTimeout, apperror.KindOf(classify(ctx, errors.New("transport closed"))))
}
