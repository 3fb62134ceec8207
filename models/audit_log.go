package models

import "circle/db"

type AuditLog struct {
	ID        uint64  `gorm:"primaryKey"`
	CreatedAt int64   `gorm:"index"`
	UserID    *uint64 `gorm:"index"`
	User      *User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Action    string  `gorm:"type:varchar(50);not null"`
	IP        string  `gorm:"type:varchar(50)"`
	UserAgent string  `gorm:"type:varchar(300)"`
	Details   string  `gorm:"type:text"`
}

func AuditLogCreate(entry *AuditLog) error {
	return db.Instance.Create(entry).Error
}
