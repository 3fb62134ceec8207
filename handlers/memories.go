package handlers

import (
	"circle/categorize"
	"circle/events"
	"circle/models"
	"circle/storage"
	"circle/utils"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

type MemorySaveRequest struct {
	Text          string `json:"text"`
	MemoryDate    string `json:"memory_date"`
	AudioFilename string `json:"audio_filename"`
	People        string `json:"people"`
	Places        string `json:"places"`
}

type MemoryUpdateRequest struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

type MemoryUpdated struct {
	ID       uint64  `json:"id"`
	Text     string  `json:"text"`
	Category string  `json:"category"`
	Year     *int    `json:"year"`
	Date     *string `json:"date"`
}

func MemorySave(c *gin.Context, user *models.User) {
	req := MemorySaveRequest{}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, BadRequestResponse)
		return
	}
	memory := models.Memory{
		UserID: user.ID,
		Text:   strings.TrimSpace(req.Text),
		People: strings.TrimSpace(req.People),
		Places: strings.TrimSpace(req.Places),
	}
	if memory.Text == "" {
		c.JSON(http.StatusBadRequest, TextRequired)
		return
	}
	memory.MemoryDate, memory.Year = utils.ParseDateInput(req.MemoryDate)
	audioFilename := strings.TrimSpace(req.AudioFilename)
	if audioFilename != "" {
		if _, err := models.AudioTranscriptionFor(user.ID, audioFilename); err != nil {
			dbError(c, err, errorResponse("Audio recording not found"))
			return
		}
		memory.AudioFilename = &audioFilename
	}
	memory.Category = categorize.Categorize(c.Request.Context(), memory.Text, memory.Year)
	if err := models.MemoryCreate(&memory); err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	if audioFilename != "" {
		// The text was recognised in the browser while recording
		if err := models.SetTranscriptionText(user.ID, audioFilename, memory.Text); err != nil {
			zap.S().Errorf("Transcription update for %s: %v", audioFilename, err)
		}
	}
	publish(user, events.TypeMemory, events.ActionCreated, memory.ID, 0)
	c.JSON(http.StatusOK, gin.H{
		"status":    statusSuccess,
		"memory_id": memory.ID,
		"category":  memory.Category,
		"has_audio": memory.HasAudio(),
	})
}

func MemoriesGet(c *gin.Context, user *models.User) {
	memories, err := models.MemoriesForUser(user.ID)
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	result := make([]models.MemoryInfo, len(memories))
	for i := range memories {
		result[i] = memories[i].Info()
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "memories": result})
}

func MemoryGet(c *gin.Context, user *models.User) {
	memoryID, ok := idParam(c, "id")
	if !ok {
		return
	}
	memory, err := models.MemoryFor(user.ID, memoryID)
	if err != nil {
		dbError(c, err, MemoryNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "memory": memory.Info()})
}

func MemoryUpdate(c *gin.Context, user *models.User) {
	memoryID, ok := idParam(c, "id")
	if !ok {
		return
	}
	req := MemoryUpdateRequest{}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, BadRequestResponse)
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, TextRequired)
		return
	}
	memory, err := models.MemoryFor(user.ID, memoryID)
	if err != nil {
		dbError(c, err, MemoryNotFound)
		return
	}
	memory.Text = text
	// An empty date keeps what the memory already has
	if strings.TrimSpace(req.Date) != "" {
		memory.MemoryDate, memory.Year = utils.ParseDateInput(req.Date)
	}
	memory.Category = categorize.Categorize(c.Request.Context(), memory.Text, memory.Year)
	if err = memory.Update(); err != nil {
		dbError(c, err, MemoryNotFound)
		return
	}
	publish(user, events.TypeMemory, events.ActionUpdated, memory.ID, 0)
	c.JSON(http.StatusOK, gin.H{
		"status":  statusSuccess,
		"message": "Memory updated successfully",
		"memory": MemoryUpdated{
			ID:       memory.ID,
			Text:     memory.Text,
			Category: memory.Category,
			Year:     memory.Year,
			Date:     memory.MemoryDate,
		},
	})
}

func MemoryDelete(c *gin.Context, user *models.User) {
	memoryID, ok := idParam(c, "id")
	if !ok {
		return
	}
	memory, err := models.MemoryFor(user.ID, memoryID)
	if err != nil {
		dbError(c, err, MemoryNotFound)
		return
	}
	if err = memory.Delete(); err != nil {
		dbError(c, err, MemoryNotFound)
		return
	}
	if memory.HasAudio() {
		removeAudio(user, *memory.AudioFilename)
	}
	publish(user, events.TypeMemory, events.ActionDeleted, memory.ID, 0)
	c.JSON(http.StatusOK, gin.H{
		"status":        statusSuccess,
		"message":       "Memory deleted successfully",
		"deleted_audio": memory.HasAudio(),
	})
}

// removeAudio deletes the recording and its transcription, failures are only logged
func removeAudio(user *models.User, filename string) {
	transcription, err := models.AudioTranscriptionFor(user.ID, filename)
	if errors.Is(err, models.ErrNotFound) {
		return
	} else if err != nil {
		zap.S().Errorf("Audio lookup %s: %v", filename, err)
		return
	}
	if s := audioStorage(&transcription); s != nil {
		if err = storage.Remove(s, models.AudioPath(filename)); err != nil {
			zap.S().Warnf("Could not delete audio %s: %v", filename, err)
		}
	}
	if err = models.DeleteAudioTranscription(user.ID, filename); err != nil {
		zap.S().Errorf("Transcription delete %s: %v", filename, err)
	}
}

func audioStorage(t *models.AudioTranscription) storage.StorageAPI {
	if s := storage.StorageByID(t.BucketID); s != nil {
		return s
	}
	return storage.GetDefaultStorage()
}
