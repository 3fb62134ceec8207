package models

import (
	"circle/db"
	"circle/storage"
	"errors"

	"gorm.io/gorm"
)

type AudioTranscription struct {
	ID                uint64 `gorm:"primaryKey"`
	UserID            uint64 `gorm:"not null;index"`
	User              User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt         int64
	BucketID          uint64
	AudioFilename     string `gorm:"type:varchar(300);index:uniq_audio_filename,unique;not null"`
	TranscriptionText string `gorm:"type:text"`
}

func AudioPath(filename string) string {
	return storage.StorageLocationAudio + "/" + filename
}

func AudioTranscriptionCreate(t *AudioTranscription) error {
	return db.Instance.Create(t).Error
}

func AudioTranscriptionFor(userID uint64, filename string) (t AudioTranscription, err error) {
	err = db.Instance.Where("user_id = ? AND audio_filename = ?", userID, filename).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return
}

// SetTranscriptionText stores the text recognised in the browser
func SetTranscriptionText(userID uint64, filename, text string) error {
	return db.Instance.Model(&AudioTranscription{}).
		Where("user_id = ? AND audio_filename = ?", userID, filename).
		Update("transcription_text", text).Error
}

func DeleteAudioTranscription(userID uint64, filename string) error {
	return db.Instance.Where("user_id = ? AND audio_filename = ?", userID, filename).Delete(&AudioTranscription{}).Error
}
