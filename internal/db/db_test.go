package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSchema_DefinesTables(t *testing.T) {
	schema := Schema()

	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS users")
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS portfolios")
	assert.Contains(t, schema, "document   JSONB NOT NULL")
	assert.Contains(t, schema, "users_email_lower_idx")
}

func TestUser_Public(t *testing.T) {
	u := &User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com", PasswordHash: "secret-hash"}

	public := u.Public()
	assert.Equal(t, u.ID, public.ID)
	assert.Equal(t, "jane@example.com", public.Email)

	var nilUser *User
	assert.Nil(t, nilUser.Public())
}
