package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVerificationEmail(t *testing.T) {
	body, err := renderVerificationEmail("Alice", "https://app.example.com/verify-email?token=abc&code=123456", "123456")
	require.NoError(t, err)

	assert.Contains(t, body, "Hello, Alice")
	assert.Contains(t, body, "<strong>123456</strong>")
	assert.Contains(t, body, "https://app.example.com/verify-email?token=abc")
}

func TestRenderVerificationEmail_EscapesName(t *testing.T) {
	body, err := renderVerificationEmail("<script>alert(1)</script>", "https://app.example.com/verify", "123456")
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
}

func TestRenderPasswordResetEmail(t *testing.T) {
	body, err := renderPasswordResetEmail("Alice", "https://app.example.com/reset-password?token=abc")
	require.NoError(t, err)

	assert.Contains(t, body, "Hello, Alice")
	assert.Contains(t, body, "https://app.example.com/reset-password?token=abc")
	assert.Contains(t, body, "Reset Your Password")
}
