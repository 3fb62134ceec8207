package auth

import (
	"circle/config"
	"circle/db"
	"circle/models"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
)

const testPassword = "Secret#123"

func setupDB(t *testing.T) {
	t.Helper()
	config.BCRYPT_COST = bcrypt.MinCost
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared&_foreign_keys=on"
	require.NoError(t, db.InitWith(sqlite.Open(dsn)))
	models.Init()
	t.Cleanup(func() {
		if sqlDB, err := db.Instance.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

func withTime(t *testing.T, at time.Time) {
	t.Helper()
	previous := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = previous })
}

func registerUser(t *testing.T, username string) models.User {
	t.Helper()
	user, err := Register(username, username+"@example.com", testPassword, "Test "+username, ClientInfo{IP: "127.0.0.1"})
	require.NoError(t, err)
	return user
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  string
	}{
		{"Ab1!", "at least 8 characters"},
		{"abcdefg1!", "uppercase"},
		{"ABCDEFG1!", "lowercase"},
		{"Abcdefgh!", "digit"},
		{"Abcdefgh1", "special character"},
		{"Abcdefg1-", ""},
		{testPassword, ""},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"ab", false},
		{"abc", true},
		{"1abc", false},
		{"_abc", false},
		{"nan-smith_2", true},
		{"nan smith", false},
		{strings.Repeat("a", 49), true},
		{strings.Repeat("a", 50), false},
	}
	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateUsername(tt.username) == nil)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("grandma.smith+circle@example.co.uk"))
	assert.Error(t, ValidateEmail("grandma@example"))
	assert.Error(t, ValidateEmail("not an email"))
}

func TestRegister(t *testing.T) {
	setupDB(t)
	user := registerUser(t, "nancy")
	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, testPassword, user.PasswordHash)

	_, err := Register("nancy", "other@example.com", testPassword, "", ClientInfo{})
	assert.EqualError(t, err, "Username already exists")
	_, err = Register("nancy2", "nancy@example.com", testPassword, "", ClientInfo{})
	assert.EqualError(t, err, "Email already exists")
	_, err = Register("nancy3", "nancy3@example.com", "weak", "", ClientInfo{})
	var validationErr ValidationError
	assert.ErrorAs(t, err, &validationErr)

	var count int64
	require.NoError(t, db.Instance.Model(&models.AuditLog{}).Where("action = ?", eventRegistered).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTokens(t *testing.T) {
	setupDB(t)
	user := registerUser(t, "arthur")

	access, err := GenerateAccessToken(&user)
	require.NoError(t, err)
	claims, err := VerifyToken(access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "arthur", claims.Username)
	assert.Equal(t, models.RoleUser, claims.Role)

	_, err = VerifyToken(access, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = VerifyToken(access[:len(access)-4]+"abcd", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = VerifyToken("not-a-token", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	previousSecret := config.JWT_SECRET_KEY
	config.JWT_SECRET_KEY = "another-secret"
	_, err = VerifyToken(access, TokenTypeAccess)
	config.JWT_SECRET_KEY = previousSecret
	assert.ErrorIs(t, err, ErrInvalidToken)

	verified, err := VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
}

func TestTokenExpiry(t *testing.T) {
	setupDB(t)
	user := registerUser(t, "edith")

	withTime(t, time.Now().Add(-time.Duration(config.ACCESS_TOKEN_HOURS+1)*time.Hour))
	access, err := GenerateAccessToken(&user)
	require.NoError(t, err)
	now = time.Now

	_, err = VerifyToken(access, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestLoginLockout(t *testing.T) {
	setupDB(t)
	registerUser(t, "walter")
	start := time.Now()
	withTime(t, start)

	for i := 1; i < config.MAX_LOGIN_ATTEMPTS; i++ {
		_, err := Login("walter", "Wrong#123", ClientInfo{})
		require.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i)
	}
	_, err := Login("walter", "Wrong#123", ClientInfo{})
	require.ErrorIs(t, err, ErrAccountLocked)

	// Even the right password is refused while locked
	_, err = Login("walter", testPassword, ClientInfo{})
	require.ErrorIs(t, err, ErrAccountLocked)

	now = func() time.Time { return start.Add(time.Duration(config.LOCKOUT_MINUTES+1) * time.Minute) }
	result, err := Login("walter", testPassword, ClientInfo{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "walter", result.User.Username)

	user, err := models.UserByUsername("walter")
	require.NoError(t, err)
	assert.Zero(t, user.FailedLoginAttempts)
	assert.Nil(t, user.AccountLockedUntil)
	assert.NotNil(t, user.LastLogin)
}

func TestConcurrentFailedLoginsLock(t *testing.T) {
	setupDB(t)
	registerUser(t, "gladys")

	attempts := config.MAX_LOGIN_ATTEMPTS * 3
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Login("gladys", "Wrong#123", ClientInfo{})
			assert.Error(t, err)
		}()
	}
	wg.Wait()

	user, err := models.UserByUsername("gladys")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, user.FailedLoginAttempts, config.MAX_LOGIN_ATTEMPTS)
	require.NotNil(t, user.AccountLockedUntil)
	assert.True(t, user.IsLocked(time.Now()))

	_, err = Login("gladys", testPassword, ClientInfo{})
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestLoginByEmailAndUnknownUser(t *testing.T) {
	setupDB(t)
	registerUser(t, "mabel")

	_, err := Login("mabel@example.com", testPassword, ClientInfo{})
	assert.NoError(t, err)
	_, err = Login("nobody", testPassword, ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactive(t *testing.T) {
	setupDB(t)
	user := registerUser(t, "harold")
	require.NoError(t, db.Instance.Model(&user).Update("is_active", false).Error)

	_, err := Login("harold", testPassword, ClientInfo{})
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestRefreshRotation(t *testing.T) {
	setupDB(t)
	registerUser(t, "doris")
	result, err := Login("doris", testPassword, ClientInfo{})
	require.NoError(t, err)

	pair, err := Refresh(result.RefreshToken, ClientInfo{})
	require.NoError(t, err)
	assert.NotEqual(t, result.RefreshToken, pair.RefreshToken)

	// The old token was revoked by the rotation
	_, err = Refresh(result.RefreshToken, ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Access tokens can't be used for refreshing
	_, err = Refresh(pair.AccessToken, ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Refresh(pair.RefreshToken, ClientInfo{})
	assert.NoError(t, err)
}

func TestConcurrentRefreshUsesTokenOnce(t *testing.T) {
	setupDB(t)
	registerUser(t, "cyril")
	result, err := Login("cyril", testPassword, ClientInfo{})
	require.NoError(t, err)

	var succeeded atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Refresh(result.RefreshToken, ClientInfo{}); err == nil {
				succeeded.Add(1)
			} else {
				assert.ErrorIs(t, err, ErrInvalidToken)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), succeeded.Load())
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	setupDB(t)
	user := registerUser(t, "frank")
	result, err := Login("frank", testPassword, ClientInfo{})
	require.NoError(t, err)

	require.NoError(t, Logout(&user, result.RefreshToken, ClientInfo{}))
	_, err = Refresh(result.RefreshToken, ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	setupDB(t)
	user := registerUser(t, "olive")
	result, err := Login("olive", testPassword, ClientInfo{})
	require.NoError(t, err)

	err = ChangePassword(&user, "Wrong#123", "NewSecret#456", ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = ChangePassword(&user, testPassword, "short", ClientInfo{})
	var validationErr ValidationError
	assert.ErrorAs(t, err, &validationErr)

	require.NoError(t, ChangePassword(&user, testPassword, "NewSecret#456", ClientInfo{}))
	_, err = Login("olive", testPassword, ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = Login("olive", "NewSecret#456", ClientInfo{})
	assert.NoError(t, err)

	_, err = Refresh(result.RefreshToken, ClientInfo{})
	assert.ErrorIs(t, err, ErrInvalidToken)
}
