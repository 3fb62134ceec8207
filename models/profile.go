package models

import (
	"circle/db"
	"errors"

	"gorm.io/gorm"
)

type Profile struct {
	UserID     uint64 `gorm:"primaryKey"`
	User       User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt  int64  `json:"-"`
	UpdatedAt  int64  `json:"-"`
	Name       string `gorm:"type:varchar(200)" json:"name"`
	BirthDate  string `gorm:"type:varchar(100)" json:"birth_date"`
	FamilyRole string `gorm:"type:varchar(100)" json:"family_role"`
	BirthPlace string `gorm:"type:varchar(200)" json:"birth_place"`
}

// ProfileSave replaces the user's profile
func ProfileSave(p *Profile) error {
	return db.Instance.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", p.UserID).Delete(&Profile{}).Error; err != nil {
			return err
		}
		return tx.Create(p).Error
	})
}

func ProfileFor(userID uint64) (p Profile, err error) {
	err = db.Instance.Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return
}
