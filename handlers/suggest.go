package handlers

import (
	"circle/events"
	"circle/models"
	"circle/suggest"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type AcceptSuggestionRequest struct {
	PhotoID uint64 `json:"photo_id"`
}

type SuggestAllRequest struct {
	Threshold *int `json:"threshold"`
}

func suggestionsFor(user *models.User, memory *models.Memory, threshold int) ([]suggest.Suggestion, error) {
	photos, err := models.ImagesNotLinkedTo(user.ID, memory.ID)
	if err != nil {
		return nil, err
	}
	return suggest.ForMemory(memory, photos, threshold), nil
}

func SuggestPhotos(c *gin.Context, user *models.User) {
	memoryID, ok := idParam(c, "id")
	if !ok {
		return
	}
	threshold := suggest.DefaultThreshold
	if value, err := strconv.Atoi(c.Query("threshold")); err == nil {
		threshold = value
	}
	memory, err := models.MemoryFor(user.ID, memoryID)
	if err != nil {
		dbError(c, err, MemoryNotFound)
		return
	}
	suggestions, err := suggestionsFor(user, &memory, threshold)
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      statusSuccess,
		"memory_id":   memory.ID,
		"suggestions": suggestions,
		"threshold":   threshold,
	})
}

func AcceptSuggestion(c *gin.Context, user *models.User) {
	memoryID, ok := idParam(c, "id")
	if !ok {
		return
	}
	req := AcceptSuggestionRequest{}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil || req.PhotoID == 0 {
		c.JSON(http.StatusBadRequest, errorResponse("photo_id required"))
		return
	}
	created, err := models.LinkMedia(user.ID, memoryID, req.PhotoID)
	if err != nil {
		dbError(c, err, errorResponse("Memory or photo not found"))
		return
	}
	if created {
		publish(user, events.TypeLink, events.ActionLinked, req.PhotoID, memoryID)
	}
	c.JSON(http.StatusOK, successResponse("Photo "+strconv.FormatUint(req.PhotoID, 10)+" linked to memory "+strconv.FormatUint(memoryID, 10)))
}

// SuggestAll returns suggestions for every memory that has at least one
func SuggestAll(c *gin.Context, user *models.User) {
	req := SuggestAllRequest{}
	_ = c.ShouldBindWith(&req, binding.JSON) // The body is optional
	threshold := suggest.DefaultAllThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	memories, err := models.MemoriesForUser(user.ID)
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	result := map[uint64][]suggest.Suggestion{}
	total := 0
	for i := range memories {
		suggestions, err := suggestionsFor(user, &memories[i], threshold)
		if err != nil {
			dbError(c, err, NotFoundResponse)
			return
		}
		if len(suggestions) > 0 {
			result[memories[i].ID] = suggestions
			total += len(suggestions)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      statusSuccess,
		"suggestions": result,
		"summary": gin.H{
			"memories_with_suggestions": len(result),
			"total_suggestions":         total,
			"threshold":                 threshold,
		},
	})
}
