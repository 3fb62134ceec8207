package handlers

import (
	"bytes"
	"circle/auth"
	"circle/biography"
	"circle/models"
	"circle/pdf"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

type BiographyGenerateRequest struct {
	Model string `json:"model"`
}

type BiographySaveRequest struct {
	Chapters []models.Chapter `json:"chapters"`
	Model    string           `json:"model"`
}

type BiographyPDFRequest struct {
	Chapters      []models.Chapter `json:"chapters"`
	Title         string           `json:"title"`
	Subtitle      string           `json:"subtitle"`
	IncludePhotos *bool            `json:"include_photos"`
}

type DraftInfo struct {
	ID       uint64           `json:"id"`
	Model    string           `json:"model"`
	Edited   bool             `json:"edited"`
	Chapters []models.Chapter `json:"chapters"`
	SavedAt  string           `json:"saved_at"`
}

func BiographyGenerate(c *gin.Context, user *models.User) {
	req := BiographyGenerateRequest{}
	_ = c.ShouldBindWith(&req, binding.JSON) // Defaults to both models
	names, err := biography.Models(strings.ToLower(strings.TrimSpace(req.Model)))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	memories, err := models.MemoriesForUser(user.ID)
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	results, err := biography.GenerateAll(c.Request.Context(), names, memories)
	if errors.Is(err, biography.ErrNoMemories) {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	} else if err != nil {
		zap.S().Errorf("Biography generation error: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to generate biography"))
		return
	}
	response := gin.H{
		"status":       statusSuccess,
		"memory_count": len(memories),
	}
	for name, result := range results {
		response[name] = result
	}
	c.JSON(http.StatusOK, response)
}

func BiographySaveEdits(c *gin.Context, user *models.User) {
	req := BiographySaveRequest{}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, BadChaptersResponse)
		return
	}
	chapters := biography.ValidChapters(req.Chapters)
	if len(chapters) == 0 {
		c.JSON(http.StatusBadRequest, BadChaptersResponse)
		return
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = "unknown"
	}
	draft, err := models.BiographyDraftCreate(user.ID, model, chapters, true)
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	if err = auth.LoadSession(c).SetDraftID(draft.ID); err != nil {
		zap.S().Warnf("Session save error: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        statusSuccess,
		"message":       "Biography draft saved",
		"chapter_count": len(chapters),
		"draft_id":      draft.ID,
	})
}

// currentDraft prefers the draft saved in this session, then the latest one
func currentDraft(c *gin.Context, user *models.User) (models.BiographyDraft, error) {
	if id := auth.LoadSession(c).DraftID(); id != 0 {
		draft, err := models.BiographyDraftFor(user.ID, id)
		if !errors.Is(err, models.ErrNotFound) {
			return draft, err
		}
	}
	return models.LatestBiographyDraft(user.ID)
}

func BiographyDraft(c *gin.Context, user *models.User) {
	draft, err := currentDraft(c, user)
	if err != nil {
		dbError(c, err, errorResponse("No saved biography draft"))
		return
	}
	chapters, err := draft.GetChapters()
	if err != nil {
		zap.S().Errorf("Draft %d has invalid chapters: %v", draft.ID, err)
		c.JSON(http.StatusInternalServerError, BadChaptersResponse)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": statusSuccess,
		"draft": DraftInfo{
			ID:       draft.ID,
			Model:    draft.Model,
			Edited:   draft.Edited,
			Chapters: chapters,
			SavedAt:  models.FormatTimestamp(draft.UpdatedAt),
		},
	})
}

// familyNames collects the people mentioned on memories and media plus the profile name
func familyNames(user *models.User, memories []models.Memory, media []models.Media) []string {
	seen := map[string]bool{}
	result := []string{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if len(name) < 3 || seen[key] {
			return
		}
		seen[key] = true
		result = append(result, name)
	}
	if profile, err := models.ProfileFor(user.ID); err == nil {
		for _, part := range strings.Fields(profile.Name) {
			add(part)
		}
	}
	for i := range memories {
		for _, name := range memories[i].PeopleList() {
			add(name)
		}
	}
	for i := range media {
		for _, name := range strings.Split(media[i].People, ",") {
			add(name)
		}
	}
	return result
}

func images(media []models.Media) []models.Media {
	result := []models.Media{}
	for _, m := range media {
		if m.IsImage() {
			result = append(result, m)
		}
	}
	return result
}

func BiographyPDF(c *gin.Context, user *models.User) {
	req := BiographyPDFRequest{}
	_ = c.ShouldBindWith(&req, binding.JSON) // Everything is optional
	chapters := req.Chapters
	if len(chapters) == 0 {
		draft, err := currentDraft(c, user)
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusBadRequest, NoChaptersResponse)
			return
		} else if err != nil {
			dbError(c, err, NoChaptersResponse)
			return
		}
		if chapters, err = draft.GetChapters(); err != nil {
			c.JSON(http.StatusBadRequest, BadChaptersResponse)
			return
		}
	}
	opts := pdf.BiographyOptions{
		Title:    strings.TrimSpace(req.Title),
		Subtitle: strings.TrimSpace(req.Subtitle),
		Chapters: biography.ValidChapters(chapters),
	}
	if len(opts.Chapters) == 0 {
		c.JSON(http.StatusBadRequest, BadChaptersResponse)
		return
	}
	if opts.Title == "" {
		opts.Title = biography.DefaultTitle
	}
	if opts.Subtitle == "" {
		opts.Subtitle = biography.DefaultSubtitle
	}
	if req.IncludePhotos == nil || *req.IncludePhotos {
		media, err := models.MediaForUser(user.ID)
		if err != nil {
			dbError(c, err, NotFoundResponse)
			return
		}
		memories, err := models.MemoriesForUser(user.ID)
		if err != nil {
			dbError(c, err, NotFoundResponse)
			return
		}
		opts.Photos = images(media)
		opts.FamilyNames = familyNames(user, memories, media)
	}
	var buf bytes.Buffer
	if err := pdf.Biography(&buf, opts, pdf.StorageImages); err != nil {
		zap.S().Errorf("Biography PDF error: %v", err)
		c.JSON(http.StatusInternalServerError, PDFFailedResponse)
		return
	}
	sendPDF(c, pdf.FileName("family_biography", opts.Title), buf.Bytes())
}

func sendPDF(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
