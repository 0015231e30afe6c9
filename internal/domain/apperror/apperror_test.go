package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_WalksTheChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("apply: %w", Wrap(KindUpstream, "search unavailable", cause))

	assert.Equal(t, KindUpstream, KindOf(err))
	assert.True(t, Is(err, KindUpstream))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, KindInternal))
}

func TestValidation_CarriesFields(t *testing.T) {
	err := Validation("Validation failed", map[string]string{"name": "is required"})
	assert.Equal(t, map[string]string{"name": "is required"}, FieldsOf(err))
	assert.Nil(t, FieldsOf(NotFound("missing")))
	assert.Nil(t, FieldsOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:      http.StatusBadRequest,
		KindInvalidCode:     http.StatusBadRequest,
		KindNotFound:        http.StatusNotFound,
		KindForbidden:       http.StatusForbidden,
		KindDuplicateEmail:  http.StatusConflict,
		KindAlreadyApplied:  http.StatusConflict,
		KindInvalidSession:  http.StatusUnauthorized,
		KindSessionExpired:  http.StatusUnauthorized,
		KindRateLimited:     http.StatusTooManyRequests,
		KindUpstream:        http.StatusBadGateway,
		KindUpstreamTimeout: http.StatusGatewayTimeout,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), kind)
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus("SOMETHING_NEW"))
}
