package processing

import (
	"circle/models"
	"circle/storage"
	"circle/utils"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var importedTypes = map[string]bool{
	models.FileTypeImage:    true,
	models.FileTypeVideo:    true,
	models.FileTypeDocument: true,
}

// ScanUploads registers files that exist in the default bucket's media
// folder but have no DB record. They are given to the first admin (or the
// first user) and picked up by the processing loop afterwards.
func ScanUploads() (int, error) {
	s := storage.GetDefaultStorage()
	if s == nil {
		return 0, errors.New("no storage bucket configured")
	}
	owner, err := models.ImportOwner()
	if errors.Is(err, models.ErrNotFound) {
		zap.S().Info("Upload scan skipped, there are no users yet")
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	bucket := s.GetBucket()
	known, err := models.KnownFilenames(bucket.ID)
	if err != nil {
		return 0, err
	}
	names, err := s.List(storage.StorageLocationMedia)
	if err != nil {
		return 0, err
	}
	imported := 0
	for _, name := range names {
		if known[name] || strings.HasPrefix(name, ".") {
			continue
		}
		fileType := utils.FileType(name)
		if !importedTypes[fileType] {
			continue
		}
		media := models.Media{
			UserID:           owner.ID,
			BucketID:         bucket.ID,
			Filename:         name,
			OriginalFilename: name,
			FileType:         fileType,
			Title:            strings.TrimSuffix(name, filepath.Ext(name)),
			UploadedBy:       models.UploadedByAutoImport,
		}
		if size := s.GetSize(media.GetPath()); size > 0 {
			media.FileSize = size
		}
		if err = models.MediaCreate(&media); err != nil {
			zap.S().Errorf("Upload scan, creating %s: %v", name, err)
			continue
		}
		imported++
	}
	if imported > 0 {
		zap.S().Infof("Upload scan imported %d files for %s", imported, owner.Username)
	}
	return imported, nil
}
