package handlers

import (
	"circle/config"
	"circle/models"
	"circle/storage"
	"circle/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const audioMimeType = "audio/webm"

func audioFilename(now time.Time) string {
	return "voice_recording_" + now.Format("20060102_150405") + "_" + utils.ShortID() + ".webm"
}

// AudioSave stores a browser recording, the text is attached when the memory is saved
func AudioSave(c *gin.Context, user *models.User) {
	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("No audio file"))
		return
	}
	if file.Filename == "" {
		c.JSON(http.StatusBadRequest, errorResponse("No file selected"))
		return
	}
	if file.Size > int64(config.MAX_UPLOAD_MB)<<20 {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse(errFileTooLarge.Error()))
		return
	}
	s := storage.GetDefaultStorage()
	if s == nil {
		c.JSON(http.StatusInternalServerError, NoStorageResponse)
		return
	}
	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Failed to read audio"))
		return
	}
	defer reader.Close()

	transcription := models.AudioTranscription{
		UserID:        user.ID,
		BucketID:      s.GetBucket().ID,
		AudioFilename: audioFilename(time.Now()),
	}
	size, err := storage.Put(s, models.AudioPath(transcription.AudioFilename), audioMimeType, reader)
	if err != nil {
		zap.S().Errorf("Error saving audio: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to save audio"))
		return
	}
	if err = models.AudioTranscriptionCreate(&transcription); err != nil {
		_ = storage.Remove(s, models.AudioPath(transcription.AudioFilename))
		dbError(c, err, NotFoundResponse)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   statusSuccess,
		"filename": transcription.AudioFilename,
		"audio_id": transcription.ID,
		"size":     size,
	})
}

func AudioServe(c *gin.Context, user *models.User) {
	filename := utils.SecureFilename(c.Param("filename"))
	transcription, err := models.AudioTranscriptionFor(user.ID, filename)
	if err != nil {
		dbError(c, err, errorResponse("Audio file not found"))
		return
	}
	s := audioStorage(&transcription)
	if s == nil {
		c.JSON(http.StatusInternalServerError, NoStorageResponse)
		return
	}
	path := models.AudioPath(filename)
	if s.GetBucket().StorageType == storage.StorageTypeFile && s.GetSize(path) < 0 {
		c.JSON(http.StatusNotFound, errorResponse("Audio file not found"))
		return
	}
	c.Header("Content-Type", audioMimeType)
	utils.SetCache(c, mediaCacheSeconds)
	s.Serve(path, c.Request, c.Writer)
}
