package auth

import (
	"circle/config"
	"circle/models"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account is locked")
	ErrAccountInactive    = fmt.Errorf("%w: account is inactive", ErrAccountLocked)
)

type ClientInfo struct {
	IP        string
	UserAgent string
}

func ClientFrom(c *gin.Context) ClientInfo {
	return ClientInfo{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

type LoginResult struct {
	TokenPair
	User models.UserInfo `json:"user"`
}

func Register(username, email, password, fullName string, client ClientInfo) (user models.User, err error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if err = ValidateUsername(username); err != nil {
		return
	}
	if err = ValidateEmail(email); err != nil {
		return
	}
	if err = ValidatePassword(password); err != nil {
		return
	}
	if _, err = models.UserByUsername(username); err == nil {
		return user, ValidationError("Username already exists")
	} else if !errors.Is(err, models.ErrNotFound) {
		return
	}
	if _, err = models.UserByEmail(email); err == nil {
		return user, ValidationError("Email already exists")
	} else if !errors.Is(err, models.ErrNotFound) {
		return
	}
	if user, err = models.UserCreate(username, email, password, fullName); err != nil {
		return user, fmt.Errorf("create user: %w", err)
	}
	audit(eventRegistered, &user, client, "")
	return user, nil
}

// Login accepts the username or the email address
func Login(login, password string, client ClientInfo) (result LoginResult, err error) {
	login = strings.TrimSpace(login)
	var user models.User
	if strings.Contains(login, "@") {
		user, err = models.UserByEmail(login)
	} else {
		user, err = models.UserByUsername(login)
	}
	if errors.Is(err, models.ErrNotFound) {
		auditAnonymous(eventLoginFailed, login, client, "unknown user")
		return result, ErrInvalidCredentials
	} else if err != nil {
		return result, err
	}
	if !user.IsActive {
		audit(eventLoginFailed, &user, client, "account inactive")
		return result, ErrAccountInactive
	}
	current := now()
	if user.IsLocked(current) {
		audit(eventLoginFailed, &user, client, "account locked")
		until := time.Unix(*user.AccountLockedUntil, 0).UTC().Format("2006-01-02 15:04:05")
		return result, fmt.Errorf("%w until %s UTC", ErrAccountLocked, until)
	}
	if user.AccountLockedUntil != nil {
		// Lock period has passed
		if err = user.Unlock(); err != nil {
			return result, err
		}
	}
	if !user.CheckPassword(password) {
		locked, err := user.RegisterFailedLogin(current)
		if err != nil {
			return result, err
		}
		if locked {
			audit(eventAccountLocked, &user, client, "too many failed login attempts ("+strconv.Itoa(user.FailedLoginAttempts)+")")
			return result, fmt.Errorf("%w due to too many failed login attempts, try again after %d minutes", ErrAccountLocked, config.LOCKOUT_MINUTES)
		}
		audit(eventLoginFailed, &user, client, "invalid password (attempt "+strconv.Itoa(user.FailedLoginAttempts)+")")
		return result, ErrInvalidCredentials
	}
	if err = user.ClearFailedLogins(current); err != nil {
		return result, err
	}
	if result.TokenPair, err = generateTokenPair(&user); err != nil {
		return result, err
	}
	result.User = user.Info()
	audit(eventLogin, &user, client, "")
	return result, nil
}

// Logout revokes the supplied refresh token (if any)
func Logout(user *models.User, refreshToken string, client ClientInfo) error {
	audit(eventLogout, user, client, "")
	if refreshToken == "" {
		return nil
	}
	return models.RevokeRefreshToken(user.ID, refreshToken)
}

// Refresh rotates the refresh token: the old one is revoked and a new pair is issued.
// A token can be used once, concurrent refreshes with the same token get one new pair.
func Refresh(refreshToken string, client ClientInfo) (pair TokenPair, err error) {
	claims, err := VerifyToken(refreshToken, TokenTypeRefresh)
	if err != nil {
		auditAnonymous(eventInvalidToken, "", client, "refresh: "+err.Error())
		return pair, err
	}
	user, err := models.UserByID(claims.UserID)
	if err != nil || !user.IsActive {
		return pair, fmt.Errorf("%w: user not found or inactive", ErrInvalidCredentials)
	}
	if err = models.ConsumeRefreshToken(user.ID, refreshToken); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			auditAnonymous(eventInvalidToken, claims.Username, client, "refresh token revoked")
			return pair, fmt.Errorf("%w: refresh token has been revoked", ErrInvalidToken)
		}
		return pair, err
	}
	if pair, err = generateTokenPair(&user); err != nil {
		return pair, err
	}
	audit(eventTokenRefresh, &user, client, "")
	return pair, nil
}

// ChangePassword also revokes all refresh tokens of the user
func ChangePassword(user *models.User, oldPassword, newPassword string, client ClientInfo) error {
	if !user.CheckPassword(oldPassword) {
		audit(eventPasswordChangeFailed, user, client, "current password is incorrect")
		return fmt.Errorf("%w: current password is incorrect", ErrInvalidCredentials)
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	if err := user.SavePassword(); err != nil {
		return err
	}
	if err := models.RevokeRefreshToken(user.ID, ""); err != nil {
		return err
	}
	audit(eventPasswordChanged, user, client, "")
	return nil
}

// VerifyAccess resolves an access token to an active user
func VerifyAccess(token string) (user models.User, err error) {
	claims, err := VerifyToken(token, TokenTypeAccess)
	if err != nil {
		return
	}
	if user, err = models.UserByID(claims.UserID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			err = ErrInvalidToken
		}
		return
	}
	if !user.IsActive {
		return models.User{}, ErrAccountInactive
	}
	return
}
