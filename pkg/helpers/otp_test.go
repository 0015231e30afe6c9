package helpers

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenOTPCode_SixDigits(t *testing.T) {
	re := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := GenOTPCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
	}
}

func TestHashAndCompareCode(t *testing.T) {
	hash, err := HashCode("123456")
	require.NoError(t, err)
	assert.NotContains(t, hash, "123456")
	assert.True(t, CompareCode(hash, "123456"))
	assert.False(t, CompareCode(hash, "654321"))
	assert.False(t, CompareCode("not-a-hash", "123456"))
}

func TestNormalizeEmailAndKeys(t *testing.T) {
	assert.Equal(t, "ana@uni.edu", NormalizeEmail("  Ana@Uni.EDU "))
	assert.NotEqual(t, KeyEmailOTP("a@b.io"), KeyRevokedSession("a@b.io"))
}
