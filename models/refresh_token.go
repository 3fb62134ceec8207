package models

import (
	"circle/db"
	"circle/utils"
	"time"
)

type RefreshToken struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt int64
	UserID    uint64 `gorm:"not null;index"`
	User      User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TokenHash string `gorm:"type:varchar(128);index:uniq_refresh_token,unique;not null"` // SHA-512 of the JWT
	ExpiresAt int64  `gorm:"not null"`
	Revoked   bool   `gorm:"not null;default:false"`
}

func RefreshTokenCreate(userID uint64, token string, expiresAt time.Time) error {
	return db.Instance.Create(&RefreshToken{
		UserID:    userID,
		TokenHash: utils.Sha512String(token),
		ExpiresAt: expiresAt.Unix(),
	}).Error
}

// ConsumeRefreshToken revokes a stored, active token. Only one caller can
// consume a token, the others get ErrNotFound.
func ConsumeRefreshToken(userID uint64, token string) error {
	result := db.Instance.Model(&RefreshToken{}).
		Where("user_id = ? AND token_hash = ? AND revoked = ?", userID, utils.Sha512String(token), false).
		Update("revoked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return ErrNotFound
	}
	return nil
}

// RevokeRefreshToken revokes the given token for the user, or all of the user's tokens when empty
func RevokeRefreshToken(userID uint64, token string) error {
	query := db.Instance.Model(&RefreshToken{}).Where("user_id = ?", userID)
	if token != "" {
		query = query.Where("token_hash = ?", utils.Sha512String(token))
	}
	return query.Update("revoked", true).Error
}
