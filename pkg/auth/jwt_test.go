package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/telehealth-api/internal/model"
)

func testUser() *model.User {
	u := &model.User{Email: "jane@example.com", Role: model.RoleDoctor}
	u.ID = uuid.New()
	return u
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService("secret", "telehealth-api", time.Hour)
	user := testUser()

	token, expiresAt, err := svc.GenerateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, model.RoleDoctor, claims.Role)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	token, _, err := NewJWTService("other", "telehealth-api", time.Hour).GenerateToken(testUser())
	require.NoError(t, err)

	_, err = NewJWTService("secret", "telehealth-api", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", "telehealth-api", time.Hour).(*jwtService)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := svc.GenerateToken(testUser())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := NewJWTService("secret", "telehealth-api", time.Hour).ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
