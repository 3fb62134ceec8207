package models

import (
	"circle/db"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type Memory struct {
	ID            uint64 `gorm:"primaryKey"`
	UserID        uint64 `gorm:"not null;index:user_memory_year,priority:1"`
	User          User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt     int64  `gorm:"index:user_memory_year,priority:3"`
	UpdatedAt     int64
	Text          string  `gorm:"type:text;not null"`
	Category      string  `gorm:"type:varchar(50)"`
	MemoryDate    *string `gorm:"type:varchar(100)"` // Fuzzy date, e.g. "June 1975"
	Year          *int    `gorm:"index:user_memory_year,priority:2"`
	AudioFilename *string `gorm:"type:varchar(300)"`
	People        string  `gorm:"type:varchar(1000)"` // Comma separated
	Places        string  `gorm:"type:varchar(1000)"` // Comma separated
}

type MemoryInfo struct {
	ID            uint64  `json:"id"`
	Text          string  `json:"text"`
	Category      string  `json:"category"`
	MemoryDate    *string `json:"memory_date"`
	Year          *int    `json:"year"`
	AudioFilename *string `json:"audio_filename"`
	HasAudio      bool    `json:"has_audio"`
	People        string  `json:"people,omitempty"`
	Places        string  `json:"places,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

func (m *Memory) Info() MemoryInfo {
	return MemoryInfo{
		ID:            m.ID,
		Text:          m.Text,
		Category:      m.Category,
		MemoryDate:    m.MemoryDate,
		Year:          m.Year,
		AudioFilename: m.AudioFilename,
		HasAudio:      m.HasAudio(),
		People:        m.People,
		Places:        m.Places,
		CreatedAt:     FormatTimestamp(m.CreatedAt),
	}
}

func (m *Memory) HasAudio() bool {
	return m.AudioFilename != nil && *m.AudioFilename != ""
}

// PeopleList splits the comma separated people names
func (m *Memory) PeopleList() []string {
	result := []string{}
	for _, p := range strings.Split(m.People, ",") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// DisplayDate returns the fuzzy date, falling back to the year
func (m *Memory) DisplayDate() string {
	if m.MemoryDate != nil && *m.MemoryDate != "" {
		return *m.MemoryDate
	}
	if m.Year != nil {
		return itoa(*m.Year)
	}
	return ""
}

// MemoriesForUser returns the memories in timeline order (undated ones last)
func MemoriesForUser(userID uint64) (result []Memory, err error) {
	err = timelineOrder(db.Instance.Where("user_id = ?", userID)).Find(&result).Error
	return
}

func MemoriesByCategory(userID uint64, category string) (result []Memory, err error) {
	err = timelineOrder(db.Instance.Where("user_id = ? AND category = ?", userID, category)).Find(&result).Error
	return
}

func timelineOrder(query *gorm.DB) *gorm.DB {
	return query.Order("COALESCE(year, 9999) ASC").Order("created_at ASC").Order("id ASC")
}

// MemoryFor returns the memory only when it belongs to the user
func MemoryFor(userID, memoryID uint64) (m Memory, err error) {
	return memoryFor(db.Instance, userID, memoryID)
}

func memoryFor(tx *gorm.DB, userID, memoryID uint64) (m Memory, err error) {
	err = tx.Where("id = ? AND user_id = ?", memoryID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return
}

func MemoryCreate(m *Memory) error {
	return db.Instance.Create(m).Error
}

func (m *Memory) Update() error {
	return db.Instance.Model(m).Select("text", "category", "memory_date", "year", "people", "places").Updates(m).Error
}

// Delete removes the memory, links go with it (cascade)
func (m *Memory) Delete() error {
	return db.Instance.Transaction(func(tx *gorm.DB) error {
		// Explicit for databases with foreign keys disabled
		if err := tx.Where("memory_id = ?", m.ID).Delete(&MemoryMedia{}).Error; err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
}

func FormatTimestamp(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).Format(time.RFC3339)
}
