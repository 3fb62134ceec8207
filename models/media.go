package models

import (
	"circle/db"
	"circle/storage"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	FileTypeImage    = "image"
	FileTypeAudio    = "audio"
	FileTypeVideo    = "video"
	FileTypeDocument = "document"
	FileTypeOther    = "other"

	UploadedByAutoImport = "auto_import"
)

type Media struct {
	ID               uint64 `gorm:"primaryKey"`
	UserID           uint64 `gorm:"not null;index:user_media_created,priority:1"`
	User             User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt        int64  `gorm:"index:user_media_created,priority:2"`
	UpdatedAt        int64
	BucketID         uint64
	Bucket           storage.Bucket `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Filename         string         `gorm:"type:varchar(300);index:uniq_filename,unique;not null"`
	OriginalFilename string         `gorm:"type:varchar(300)"`
	FileType         string         `gorm:"type:varchar(20);not null"`
	MimeType         string         `gorm:"type:varchar(100)"`
	FileSize         int64
	ThumbSize        int64
	Width            uint16
	Height           uint16
	Title            string  `gorm:"type:varchar(300)"`
	Description      string  `gorm:"type:text"`
	MemoryDate       *string `gorm:"type:varchar(100)"`
	Year             *int
	People           string `gorm:"type:varchar(1000)"`
	UploadedBy       string `gorm:"type:varchar(100)"`
}

func (Media) TableName() string {
	return "media"
}

type MediaInfo struct {
	ID               uint64  `json:"id"`
	Filename         string  `json:"filename"`
	OriginalFilename string  `json:"original_filename"`
	FileType         string  `json:"file_type"`
	MimeType         string  `json:"mime_type"`
	FileSize         int64   `json:"file_size"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	MemoryDate       *string `json:"memory_date"`
	Year             *int    `json:"year"`
	People           string  `json:"people"`
	UploadedBy       string  `json:"uploaded_by"`
	Width            uint16  `json:"width,omitempty"`
	Height           uint16  `json:"height,omitempty"`
	URL              string  `json:"url"`
	ThumbURL         string  `json:"thumb_url"`
	CreatedAt        string  `json:"created_at"`
	DisplayOrder     *int    `json:"display_order,omitempty"`
}

func (m *Media) Info() MediaInfo {
	return MediaInfo{
		ID:               m.ID,
		Filename:         m.Filename,
		OriginalFilename: m.OriginalFilename,
		FileType:         m.FileType,
		MimeType:         m.MimeType,
		FileSize:         m.FileSize,
		Title:            m.DisplayTitle(),
		Description:      m.Description,
		MemoryDate:       m.MemoryDate,
		Year:             m.Year,
		People:           m.People,
		UploadedBy:       m.UploadedBy,
		Width:            m.Width,
		Height:           m.Height,
		URL:              "/uploads/" + m.Filename,
		ThumbURL:         "/api/media/preview/" + m.Filename,
		CreatedAt:        FormatTimestamp(m.CreatedAt),
	}
}

// DisplayTitle falls back to the original file name
func (m *Media) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.OriginalFilename
}

func (m *Media) IsImage() bool {
	return m.FileType == FileTypeImage
}

// GetPath returns the storage path, e.g. media/20240101_120000_ab12cd34_photo.jpg
func (m *Media) GetPath() string {
	return storage.StorageLocationMedia + "/" + m.Filename
}

// GetThumbPath - thumbs are always JPEG
func (m *Media) GetThumbPath() string {
	return storage.StorageLocationThumbs + "/" + m.Filename + ".jpg"
}

func (m *Media) Storage() storage.StorageAPI {
	if s := storage.StorageByID(m.BucketID); s != nil {
		return s
	}
	return storage.GetDefaultStorage()
}

func MediaCreate(m *Media) error {
	return db.Instance.Create(m).Error
}

func MediaFor(userID, mediaID uint64) (m Media, err error) {
	return mediaFor(db.Instance, userID, mediaID)
}

func mediaFor(tx *gorm.DB, userID, mediaID uint64) (m Media, err error) {
	err = tx.Where("id = ? AND user_id = ?", mediaID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return
}

func MediaByFilename(userID uint64, filename string) (m Media, err error) {
	err = db.Instance.Where("filename = ? AND user_id = ?", filename, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return
}

// MediaForUser returns all media, newest first
func MediaForUser(userID uint64) (result []Media, err error) {
	err = db.Instance.Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&result).Error
	return
}

// MediaAvailable returns all media ordered by year (newest first, undated last)
func MediaAvailable(userID uint64) (result []Media, err error) {
	err = db.Instance.Where("user_id = ?", userID).
		Order("CASE WHEN year IS NULL THEN 1 ELSE 0 END").
		Order("year DESC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&result).Error
	return
}

// ImagesNotLinkedTo returns the user's images that aren't linked to the memory yet
func ImagesNotLinkedTo(userID, memoryID uint64) (result []Media, err error) {
	err = db.Instance.
		Where("user_id = ? AND file_type = ?", userID, FileTypeImage).
		Where("id NOT IN (?)", db.Instance.Model(&MemoryMedia{}).Select("media_id").Where("memory_id = ?", memoryID)).
		Order("CASE WHEN year IS NULL THEN 1 ELSE 0 END").
		Order("year DESC").
		Order("created_at DESC").
		Find(&result).Error
	return
}

// KnownFilenames returns all file names in the DB for the bucket (all users)
func KnownFilenames(bucketID uint64) (map[string]bool, error) {
	names := []string{}
	if err := db.Instance.Model(&Media{}).Where("bucket_id = ?", bucketID).Pluck("filename", &names).Error; err != nil {
		return nil, err
	}
	result := make(map[string]bool, len(names))
	for _, n := range names {
		result[n] = true
	}
	return result, nil
}

// UpdateDetails changes only the given fields
func (m *Media) UpdateDetails(fields map[string]any) error {
	return db.Instance.Model(m).Updates(fields).Error
}

func (m *Media) Delete() error {
	return db.Instance.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("media_id = ?", m.ID).Delete(&MemoryMedia{}).Error; err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
}

// SearchText is used for matching against memory text
func (m *Media) SearchText() string {
	return strings.TrimSpace(strings.ToLower(m.Title + " " + m.Description))
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
