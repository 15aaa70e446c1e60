// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adotepet/adotepet-backend/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig(), nil)

	auth, err := svc.Register(&RegisterRequest{
		Name:     "Maria Souza",
		Email:    "maria@example.com",
		Password: "StrongPass1!",
		CEP:      "01001-000",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, auth.AccessToken)
	assert.NotEmpty(t, auth.RefreshToken)
	assert.Equal(t, "Bearer", auth.TokenType)
	// Registration never grants elevated roles.
	assert.Equal(t, models.UserTypeAdopter, auth.User.UserType)

	login, err := svc.Login(&LoginRequest{Email: "maria@example.com", Password: "StrongPass1!"})
	require.NoError(t, err)
	assert.NotNil(t, login.User.LastLoginAt)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig(), nil)

	req := &RegisterRequest{
		Name:     "Maria Souza",
		Email:    "maria@example.com",
		Password: "StrongPass1!",
	}
	_, err := svc.Register(req)
	require.NoError(t, err)

	_, err = svc.Register(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig(), nil)

	_, err := svc.Register(&RegisterRequest{
		Name:     "Maria Souza",
		Email:    "maria@example.com",
		Password: "StrongPass1!",
	})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Email: "maria@example.com", Password: "WrongPass1!"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestLoginSuspendedAccount(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig(), nil)

	auth, err := svc.Register(&RegisterRequest{
		Name:     "Maria Souza",
		Email:    "maria@example.com",
		Password: "StrongPass1!",
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(auth.User).Update("status", models.UserStatusSuspended).Error)

	_, err = svc.Login(&LoginRequest{Email: "maria@example.com", Password: "StrongPass1!"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suspended")
}

func TestRefreshToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, testConfig(), nil)

	auth, err := svc.Register(&RegisterRequest{
		Name:     "Maria Souza",
		Email:    "maria@example.com",
		Password: "StrongPass1!",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(auth.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, auth.User.ID, refreshed.User.ID)

	_, err = svc.RefreshToken("not-a-token")
	assert.Error(t, err)
}
