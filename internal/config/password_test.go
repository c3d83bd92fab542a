package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name       string
		bcryptCost string
		pepper     string
		wantCost   int
		wantErr    bool
	}{
		{name: "default cost", wantCost: 12},
		{name: "valid cost", bcryptCost: "11", wantCost: 11},
		{name: "boundary low", bcryptCost: "10", wantCost: 10},
		{name: "boundary high", bcryptCost: "14", wantCost: 14},
		{name: "cost too low", bcryptCost: "9", wantErr: true},
		{name: "cost too high", bcryptCost: "15", wantErr: true},
		{name: "non-numeric cost", bcryptCost: "twelve", wantErr: true},
		{name: "with pepper", bcryptCost: "10", pepper: "pepper", wantCost: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.bcryptCost)
			t.Setenv("PASSWORD_PEPPER", tt.pepper)

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.pepper, cfg.Pepper)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 4, Pepper: "pepper"}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))

	unpeppered := &PasswordConfig{BcryptCost: 4}
	assert.False(t, unpeppered.VerifyPassword("correct horse", hash), "pepper must be part of the hash input")
}

func TestPasswordConfig_HashRejectsOverlongInput(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 4}

	_, err := cfg.HashPassword(strings.Repeat("a", 80))
	assert.Error(t, err)
	assert.False(t, cfg.VerifyPassword(strings.Repeat("a", 80), "$2a$04$invalid"))
}
