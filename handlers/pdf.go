package handlers

import (
	"bytes"
	"circle/categorize"
	"circle/models"
	"circle/pdf"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	pdfTypeAll   = "all"
	pdfTypeAlbum = "album"
)

func stories(memories []models.Memory) ([]pdf.Story, error) {
	result := make([]pdf.Story, len(memories))
	for i := range memories {
		photos, err := models.LinkedImages(memories[i].ID)
		if err != nil {
			return nil, err
		}
		result[i] = pdf.Story{Memory: memories[i], Photos: photos}
	}
	return result, nil
}

// PDFGenerate renders the memory book ("all" or a single category) or the album
func PDFGenerate(c *gin.Context, user *models.User) {
	pdfType := c.Param("type")
	if pdfType != pdfTypeAll && pdfType != pdfTypeAlbum && !slices.Contains(categorize.AllCategories(), pdfType) {
		c.JSON(http.StatusBadRequest, errorResponse("Unknown PDF type: "+pdfType))
		return
	}
	var (
		memories []models.Memory
		err      error
	)
	if pdfType == pdfTypeAll || pdfType == pdfTypeAlbum {
		memories, err = models.MemoriesForUser(user.ID)
	} else {
		memories, err = models.MemoriesByCategory(user.ID, pdfType)
	}
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	list, err := stories(memories)
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}

	var buf bytes.Buffer
	timestamp := time.Now().Format("20060102_150405")
	filename := ""
	switch pdfType {
	case pdfTypeAlbum:
		var media []models.Media
		if media, err = models.MediaForUser(user.ID); err != nil {
			dbError(c, err, NotFoundResponse)
			return
		}
		filename = "family_album_" + timestamp + ".pdf"
		err = pdf.Album(&buf, list, images(media), pdf.StorageImages)
	case pdfTypeAll:
		filename = "family_memories_" + timestamp + ".pdf"
		err = pdf.MemoryBook(&buf, "Family Memories", list, pdf.StorageImages)
	default:
		filename = "family_memories_" + pdfType + "_" + timestamp + ".pdf"
		err = pdf.MemoryBook(&buf, pdf.CategoryTitle(pdfType)+" Memories", list, pdf.StorageImages)
	}
	if err != nil {
		zap.S().Errorf("PDF generation error (%s): %v", pdfType, err)
		c.JSON(http.StatusInternalServerError, PDFFailedResponse)
		return
	}
	sendPDF(c, filename, buf.Bytes())
}
