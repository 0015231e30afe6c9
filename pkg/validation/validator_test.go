package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,role"`
	Code  string `json:"code" binding:"omitempty,otp"`
	Date  string `json:"date" binding:"omitempty,isodate"`
	Turns []turn `json:"turns" binding:"omitempty,dive"`
}

type turn struct {
	Role string `json:"role" binding:"required,chatrole"`
}

func validate(t *testing.T, body string) map[string]string {
	t.Helper()
	Init()
	var s sample
	err := json.NewDecoder(strings.NewReader(body)).Decode(&s)
	if err == nil {
		err = binding.Validator.ValidateStruct(&s)
	}
	return ToDetails(err)
}

func TestAliases(t *testing.T) {
	assert.Nil(t, validate(t, `{"email":"a@b.io","role":"student","code":"012345","date":"2030-01-31","turns":[{"role":"model"}]}`))

	got := validate(t, `{"email":"nope","role":"teacher","code":"12a","date":"31/01/2030","turns":[{"role":"system"}]}`)
	assert.Equal(t, "must be a valid email", got["email"])
	assert.Equal(t, "must be one of: student, admin", got["role"])
	assert.Equal(t, "must be a 6 digit code", got["code"])
	assert.Equal(t, "must be a date in YYYY-MM-DD format", got["date"])
	assert.Equal(t, "must be one of: user, model", got["turns[0].role"])
}

func TestToDetails_DecodeErrors(t *testing.T) {
	var s sample
	err := json.Unmarshal([]byte(`{"email":1}`), &s)
	require.Error(t, err)
	assert.Equal(t, map[string]string{"email": "must be of type string"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{`), &s)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	assert.Nil(t, ToDetails(nil))
}
