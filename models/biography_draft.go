package models

import (
	"circle/db"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

type Chapter struct {
	Title     string `json:"title"`
	Narrative string `json:"narrative"`
}

type BiographyDraft struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;index"`
	User      User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt int64
	UpdatedAt int64
	Model     string `gorm:"type:varchar(50)"`
	Chapters  string `gorm:"type:mediumtext"` // JSON encoded []Chapter
	Edited    bool
}

func (d *BiographyDraft) GetChapters() ([]Chapter, error) {
	result := []Chapter{}
	if d.Chapters == "" {
		return result, nil
	}
	err := json.Unmarshal([]byte(d.Chapters), &result)
	return result, err
}

func BiographyDraftCreate(userID uint64, model string, chapters []Chapter, edited bool) (d BiographyDraft, err error) {
	data, err := json.Marshal(chapters)
	if err != nil {
		return d, err
	}
	d = BiographyDraft{
		UserID:   userID,
		Model:    model,
		Chapters: string(data),
		Edited:   edited,
	}
	return d, db.Instance.Create(&d).Error
}

func BiographyDraftFor(userID, draftID uint64) (d BiographyDraft, err error) {
	err = db.Instance.Where("id = ? AND user_id = ?", draftID, userID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return
}

func LatestBiographyDraft(userID uint64) (d BiographyDraft, err error) {
	err = db.Instance.Where("user_id = ?", userID).Order("id DESC").First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return
}
