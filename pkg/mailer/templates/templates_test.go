package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_VerificationCode(t *testing.T) {
	issued := time.Date(2030, time.March, 10, 9, 0, 0, 0, time.UTC)
	data := NewVerificationCodeData(Brand{AppName: "EduGrant", CompanyName: "EduGrant Inc"}, "a@b.io", "042917",
		WithExpiresIn(issued, 5*time.Minute))

	subject, text, html, err := Render(VerificationCode, data)
	require.NoError(t, err)
	assert.Equal(t, "Your EduGrant verification code", subject)
	assert.Contains(t, text, "042917")
	assert.Contains(t, text, "expires in 5 minutes")
	assert.Contains(t, text, "10 March 2030, 09:05")
	assert.Contains(t, html, "042917")
}

func TestRender_DefaultsBrand(t *testing.T) {
	subject, _, _, err := Render(VerificationCode, NewVerificationCodeData(Brand{}, "a@b.io", "111111"))
	require.NoError(t, err)
	assert.Equal(t, "Your EduGrant verification code", subject)
}

func TestRender_UnknownTemplate(t *testing.T) {
	assert.True(t, Known(VerificationCode))
	assert.False(t, Known("password_reset"))
	_, _, _, err := Render("password_reset", nil)
	require.Error(t, err)
}
