package pdf

import (
	"bytes"
	"circle/config"
	"circle/models"
	"circle/utils"
	"errors"
)

// StorageImages loads the processed thumbnail from the media's bucket,
// converting the original when there is none yet
func StorageImages(m *models.Media) ([]byte, error) {
	if !m.IsImage() {
		return nil, errors.New("not an image")
	}
	s := m.Storage()
	if s == nil {
		return nil, errors.New("no storage for bucket")
	}
	var result bytes.Buffer
	if m.ThumbSize > 0 {
		if _, err := s.Load(m.GetThumbPath(), &result); err == nil {
			return result.Bytes(), nil
		}
		result.Reset()
	}
	var original bytes.Buffer
	if _, err := s.Load(m.GetPath(), &original); err != nil {
		return nil, err
	}
	if _, err := utils.CreateThumb(uint(config.THUMB_SIZE), &original, &result); err != nil {
		return nil, err
	}
	return result.Bytes(), nil
}
