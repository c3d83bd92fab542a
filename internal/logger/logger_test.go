package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", "abc", "password", "hunter2", "jwt_token", "x.y.z", "user_email", "a@b.c"})

	assert.Equal(t, []interface{}{
		"user_id", "abc",
		"password", "[REDACTED]",
		"jwt_token", "[REDACTED]",
		"user_email", "[REDACTED]",
	}, out)
}

func TestSanitizeKVs_OddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"path", "/health", "dangling"})
	assert.Equal(t, []interface{}{"path", "/health", "dangling"}, out)
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		log, err := New(mode)
		require.NoError(t, err)
		assert.NotNil(t, log.SugaredLogger)
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.With("component", "test").Info("hello", "key", "value")
	})
}
