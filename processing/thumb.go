package processing

import (
	"bytes"
	"circle/config"
	"circle/models"
	"circle/storage"
	"circle/utils"
	"os"

	"go.uber.org/zap"
)

// thumb creates the JPEG preview used by the gallery and the PDF renderer
type thumb struct{}

func (thumb) getName() string {
	return "thumb"
}

func (thumb) shouldHandle(media *models.Media) bool {
	return media.IsImage() && media.ThumbSize == 0
}

func (thumb) process(media *models.Media, s storage.StorageAPI) int {
	file, err := os.Open(s.GetFullPath(media.GetPath()))
	if err != nil {
		zap.S().Errorf("thumb open %s: %v", media.Filename, err)
		return Failed
	}
	defer file.Close()

	var buf bytes.Buffer
	converted, err := utils.CreateThumb(uint(config.THUMB_SIZE), file, &buf)
	if err != nil {
		zap.S().Warnf("thumb create %s: %v", media.Filename, err)
		return Failed
	}
	if _, err = storage.Put(s, media.GetThumbPath(), "image/jpeg", &buf); err != nil {
		zap.S().Errorf("thumb save %s: %v", media.Filename, err)
		return FailedStorage
	}
	media.ThumbSize = converted.ThumbSize
	media.Width = converted.OldX
	media.Height = converted.OldY
	err = media.UpdateDetails(map[string]any{
		"thumb_size": media.ThumbSize,
		"width":      media.Width,
		"height":     media.Height,
	})
	if err != nil {
		zap.S().Errorf("thumb update %d: %v", media.ID, err)
		return Failed
	}
	return Done
}
