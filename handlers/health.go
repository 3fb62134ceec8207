package handlers

import (
	"circle/ai"
	"circle/storage"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type StorageStatus struct {
	Bucket     string `json:"bucket"`
	FreeBytes  uint64 `json:"free_bytes"`
	TotalBytes uint64 `json:"total_bytes"`
}

type HealthResponse struct {
	Status   string         `json:"status"`
	Time     string         `json:"time"`
	AISearch bool           `json:"ai_search"`
	Storage  *StorageStatus `json:"storage"`
}

func Health(c *gin.Context) {
	result := HealthResponse{
		Status:   "healthy",
		Time:     time.Now().Format(time.RFC3339),
		AISearch: ai.DeepSeek != nil,
	}
	if s := storage.GetDefaultStorage(); s != nil {
		s.UpdateSpace()
		result.Storage = &StorageStatus{
			Bucket:     s.GetBucket().Name,
			FreeBytes:  s.GetFreeSpace(),
			TotalBytes: s.GetTotalSpace(),
		}
	}
	c.JSON(http.StatusOK, result)
}

func DisallowRobots(c *gin.Context) {
	c.String(http.StatusOK, "User-agent: *\nDisallow: /\n")
}
