package processing

import (
	"circle/models"
	"circle/storage"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// mimeSniff fills in the MIME type for media uploaded without one
// (or found in storage by the scanner) by looking at the content
type mimeSniff struct{}

func (mimeSniff) getName() string {
	return "mime"
}

func (mimeSniff) shouldHandle(media *models.Media) bool {
	return media.MimeType == "" || media.MimeType == "application/octet-stream"
}

func (mimeSniff) process(media *models.Media, s storage.StorageAPI) int {
	mime, err := mimetype.DetectFile(s.GetFullPath(media.GetPath()))
	if err != nil {
		zap.S().Errorf("mime detect %s: %v", media.Filename, err)
		return Failed
	}
	media.MimeType, _, _ = strings.Cut(mime.String(), ";")
	fields := map[string]any{"mime_type": media.MimeType}
	if media.FileType == models.FileTypeOther {
		if fileType := fileTypeFromMime(media.MimeType); fileType != models.FileTypeOther {
			media.FileType = fileType
			fields["file_type"] = fileType
		}
	}
	if err = media.UpdateDetails(fields); err != nil {
		zap.S().Errorf("mime update %d: %v", media.ID, err)
		return Failed
	}
	return Done
}

func fileTypeFromMime(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return models.FileTypeImage
	case strings.HasPrefix(mime, "audio/"):
		return models.FileTypeAudio
	case strings.HasPrefix(mime, "video/"):
		return models.FileTypeVideo
	case mime == "application/pdf":
		return models.FileTypeDocument
	}
	return models.FileTypeOther
}
