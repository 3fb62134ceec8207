package models

import (
	"circle/db"
	"errors"

	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("not found")
)

func Init() {
	err := db.Instance.AutoMigrate(
		&User{},
		&RefreshToken{},
		&AuditLog{},
		&Profile{},
		&Memory{},
		&Media{},
		&MemoryMedia{},
		&AudioTranscription{},
		&BiographyDraft{},
	)
	if err != nil {
		zap.S().Errorf("Auto-migrate error: %v", err)
		panic(err)
	}
}
