package services_test

import (
	"testing"
	"time"

	"todo-app/backend/internal/models"
	"todo-app/backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Token{}))
	return db
}

func newAuthService() *services.AuthServiceImpl {
	return services.NewAuthService(15*time.Minute, 7*24*time.Hour, bcrypt.MinCost)
}

func registration() services.RegistrationRequest {
	return services.RegistrationRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct-horse",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupAuthDB(t)
	svc := newAuthService()

	user, err := svc.RegisterUser(db, registration())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "correct-horse", user.Password, "password must be hashed")

	logged, err := svc.LoginUser(db, "alice", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = svc.LoginUser(db, "alice", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.LoginUser(db, "nobody", "correct-horse")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	db := setupAuthDB(t)
	svc := newAuthService()

	_, err := svc.RegisterUser(db, registration())
	require.NoError(t, err)

	dup := registration()
	dup.Username = "alice2"
	_, err = svc.RegisterUser(db, dup)
	assert.ErrorIs(t, err, services.ErrDuplicateEmail)

	dup = registration()
	dup.Email = "alice2@example.com"
	_, err = svc.RegisterUser(db, dup)
	assert.ErrorIs(t, err, services.ErrDuplicateUsername)
}

func TestGenerateAndRefreshToken(t *testing.T) {
	db := setupAuthDB(t)
	svc := newAuthService()

	user, err := svc.RegisterUser(db, registration())
	require.NoError(t, err)

	access, refresh, err := svc.GenerateToken(db, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	newAccess, newRefresh, expiresIn, err := svc.RefreshToken(db, refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEqual(t, refresh, newRefresh, "refresh tokens rotate")
	assert.Equal(t, int64((15 * time.Minute).Seconds()), expiresIn)

	// The consumed refresh token is single-use.
	_, _, _, err = svc.RefreshToken(db, refresh)
	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	db := setupAuthDB(t)
	svc := newAuthService()

	user, err := svc.RegisterUser(db, registration())
	require.NoError(t, err)

	_, refresh, err := svc.GenerateToken(db, user.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(db, refresh))

	_, _, _, err = svc.RefreshToken(db, refresh)
	assert.Error(t, err, "revoked token must not refresh")
}
