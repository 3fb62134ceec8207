package models

import (
	"circle/config"
	"circle/db"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID                  uint64 `gorm:"primaryKey"`
	CreatedAt           int64
	UpdatedAt           int64
	Username            string `gorm:"type:varchar(50);index:uniq_username,unique;not null"`
	Email               string `gorm:"type:varchar(150);index:uniq_email,unique;not null"`
	PasswordHash        string `gorm:"type:varchar(100);not null"`
	FullName            string `gorm:"type:varchar(200)"`
	Role                Role   `gorm:"type:varchar(20);not null;default:user"`
	IsActive            bool   `gorm:"not null;default:true"`
	FailedLoginAttempts int    `gorm:"not null;default:0"`
	AccountLockedUntil  *int64 // UNIX timestamp
	LastLogin           *int64 // UNIX timestamp
}

type UserInfo struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      Role   `json:"role"`
	IsActive  bool   `json:"is_active"`
	LastLogin *int64 `json:"last_login"`
	CreatedAt int64  `json:"created_at"`
}

func UserCreate(username, email, plainTextPassword, fullName string) (u User, err error) {
	u.Username = username
	u.Email = email
	u.FullName = fullName
	u.Role = RoleUser
	u.IsActive = true
	if err = u.SetPassword(plainTextPassword); err != nil {
		return User{}, err
	}
	return u, db.Instance.Create(&u).Error
}

func UserByID(id uint64) (u User, err error) {
	return userBy("id = ?", id)
}

func UserByUsername(username string) (u User, err error) {
	return userBy("username = ?", username)
}

func UserByEmail(email string) (u User, err error) {
	return userBy("email = ?", email)
}

func userBy(query string, arg any) (u User, err error) {
	err = db.Instance.Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return
}

func (u *User) SetPassword(plainTextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), config.BCRYPT_COST)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) SavePassword() error {
	return db.Instance.Model(u).Update("password_hash", u.PasswordHash).Error
}

func (u *User) CheckPassword(plainTextPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plainTextPassword)) == nil
}

// IsLocked reports whether the lock is still in effect at the given time
func (u *User) IsLocked(now time.Time) bool {
	return u.AccountLockedUntil != nil && *u.AccountLockedUntil > now.Unix()
}

// RegisterFailedLogin increments the counter in the database and locks the
// account when the limit is reached. Concurrent failures are all counted.
func (u *User) RegisterFailedLogin(now time.Time) (locked bool, err error) {
	err = db.Instance.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&User{}).Where("id = ?", u.ID).
			UpdateColumn("failed_login_attempts", gorm.Expr("failed_login_attempts + ?", 1)).Error
		if err != nil {
			return err
		}
		attempts := []int{}
		if err = tx.Model(&User{}).Where("id = ?", u.ID).Pluck("failed_login_attempts", &attempts).Error; err != nil {
			return err
		}
		if len(attempts) == 0 {
			return ErrNotFound
		}
		u.FailedLoginAttempts = attempts[0]
		if u.FailedLoginAttempts < config.MAX_LOGIN_ATTEMPTS {
			return nil
		}
		until := now.Add(time.Duration(config.LOCKOUT_MINUTES) * time.Minute).Unix()
		if err = tx.Model(&User{}).Where("id = ?", u.ID).UpdateColumn("account_locked_until", until).Error; err != nil {
			return err
		}
		u.AccountLockedUntil = &until
		locked = true
		return nil
	})
	return
}

// ClearFailedLogins resets the counter, removes any lock and records the login time
func (u *User) ClearFailedLogins(now time.Time) error {
	loginAt := now.Unix()
	u.FailedLoginAttempts = 0
	u.AccountLockedUntil = nil
	u.LastLogin = &loginAt
	return db.Instance.Model(u).Updates(map[string]any{
		"failed_login_attempts": 0,
		"account_locked_until":  nil,
		"last_login":            loginAt,
	}).Error
}

// Unlock clears an expired lock
func (u *User) Unlock() error {
	u.FailedLoginAttempts = 0
	u.AccountLockedUntil = nil
	return db.Instance.Model(u).Updates(map[string]any{
		"failed_login_attempts": 0,
		"account_locked_until":  nil,
	}).Error
}

func (u *User) HasRole(required Role) bool {
	return u.Role == RoleAdmin || u.Role == required
}

func (u *User) Info() UserInfo {
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

// ImportOwner is who gets the files found in storage without a DB record:
// the first admin, or the first user when there is no admin
func ImportOwner() (u User, err error) {
	err = db.Instance.Where("role = ?", RoleAdmin).Order("id").First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Instance.Order("id").First(&u).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return
}
