package handlers

import (
	"circle/events"
	"circle/models"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type MediaIDsRequest struct {
	MediaIDs []uint64 `json:"media_ids"`
}

type BrowsePhoto struct {
	ID          uint64 `json:"id"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        any    `json:"year"` // The year or "Unknown"
	ThumbURL    string `json:"thumb_url"`
}

func memoryAndMedia(c *gin.Context) (memoryID, mediaID uint64, ok bool) {
	if memoryID, ok = idParam(c, "id"); !ok {
		return
	}
	mediaID, ok = idParam(c, "media_id")
	return
}

func MemoryMediaList(c *gin.Context, user *models.User) {
	memoryID, ok := idParam(c, "id")
	if !ok {
		return
	}
	media, err := models.LinkedMedia(user.ID, memoryID)
	if err != nil {
		dbError(c, err, MemoryNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "media": media})
}

func MemoryMediaLink(c *gin.Context, user *models.User) {
	memoryID, mediaID, ok := memoryAndMedia(c)
	if !ok {
		return
	}
	created, err := models.LinkMedia(user.ID, memoryID, mediaID)
	if err != nil {
		dbError(c, err, errorResponse("Memory or media not found"))
		return
	}
	if created {
		publish(user, events.TypeLink, events.ActionLinked, mediaID, memoryID)
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "created": created})
}

func MemoryMediaUnlink(c *gin.Context, user *models.User) {
	memoryID, mediaID, ok := memoryAndMedia(c)
	if !ok {
		return
	}
	removed, err := models.UnlinkMedia(user.ID, memoryID, mediaID)
	if err != nil {
		dbError(c, err, MemoryNotFound)
		return
	}
	if removed {
		publish(user, events.TypeLink, events.ActionUnlinked, mediaID, memoryID)
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "removed": removed})
}

func MemoryMediaReplace(c *gin.Context, user *models.User) {
	memoryID, ok := idParam(c, "id")
	if !ok {
		return
	}
	req := MediaIDsRequest{}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, BadRequestResponse)
		return
	}
	linked, err := models.ReplaceLinks(user.ID, memoryID, req.MediaIDs)
	if err != nil {
		dbError(c, err, errorResponse("Memory or media not found"))
		return
	}
	publish(user, events.TypeLink, events.ActionReordered, 0, memoryID)
	c.JSON(http.StatusOK, successResponse("Linked "+strconv.Itoa(linked)+" media items to memory"))
}

func MemoryMediaOrder(c *gin.Context, user *models.User) {
	memoryID, ok := idParam(c, "id")
	if !ok {
		return
	}
	req := MediaIDsRequest{}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, BadRequestResponse)
		return
	}
	if err := models.ReorderLinks(user.ID, memoryID, req.MediaIDs); err != nil {
		dbError(c, err, MemoryNotFound)
		return
	}
	publish(user, events.TypeLink, events.ActionReordered, 0, memoryID)
	c.JSON(http.StatusOK, OKResponse)
}

func MemoryBrowsePhotos(c *gin.Context, user *models.User) {
	memoryID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := models.MemoryFor(user.ID, memoryID); err != nil {
		dbError(c, err, MemoryNotFound)
		return
	}
	photos, err := models.ImagesNotLinkedTo(user.ID, memoryID)
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	result := make([]BrowsePhoto, len(photos))
	for i := range photos {
		p := &photos[i]
		result[i] = BrowsePhoto{
			ID:          p.ID,
			Filename:    p.Filename,
			Title:       p.Title,
			Description: p.Description,
			Year:        "Unknown",
			ThumbURL:    p.Info().ThumbURL,
		}
		if result[i].Title == "" {
			result[i].Title = p.Filename
		}
		if p.Year != nil {
			result[i].Year = *p.Year
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    statusSuccess,
		"memory_id": memoryID,
		"photos":    result,
		"count":     len(result),
	})
}
