package handlers

import (
	"bytes"
	"circle/config"
	"circle/db"
	"circle/events"
	"circle/models"
	"circle/storage"
	"circle/utils"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const (
	mediaCacheSeconds   = 31536000 // Stored names are unique, content never changes
	previewMaxSize      = 2048
	allowedExtensionMsg = "png, jpg, jpeg, gif, webp, pdf, mp3, wav, webm, mp4, mov, avi"
)

var errFileTooLarge = errors.New("file is too large")

type mediaForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	MemoryDate  string `form:"memory_date"`
	Year        string `form:"year"`
	People      string `form:"people"`
}

// fill sets the user supplied details, an explicit year wins over the one in the date
func (f *mediaForm) fill(m *models.Media) {
	m.Title = strings.TrimSpace(f.Title)
	m.Description = strings.TrimSpace(f.Description)
	m.People = strings.TrimSpace(f.People)
	if date := strings.TrimSpace(f.MemoryDate); date != "" {
		m.MemoryDate = &date
		_, m.Year = utils.ParseDateInput(date)
	}
	if year, err := strconv.Atoi(strings.TrimSpace(f.Year)); err == nil && year > 0 {
		m.Year = &year
	}
}

func storeUpload(s storage.StorageAPI, user *models.User, file *multipart.FileHeader, form *mediaForm) (media models.Media, err error) {
	if !utils.AllowedFile(file.Filename) {
		return media, fmt.Errorf("file type .%s not allowed. Allowed: %s", utils.Extension(file.Filename), allowedExtensionMsg)
	}
	if file.Size > int64(config.MAX_UPLOAD_MB)<<20 {
		return media, errFileTooLarge
	}
	media = models.Media{
		UserID:           user.ID,
		BucketID:         s.GetBucket().ID,
		Filename:         utils.UniqueFilename(file.Filename, time.Now()),
		OriginalFilename: utils.SecureFilename(file.Filename),
		FileType:         utils.FileType(file.Filename),
		MimeType:         file.Header.Get("Content-Type"),
		UploadedBy:       user.Username,
	}
	form.fill(&media)
	reader, err := file.Open()
	if err != nil {
		return media, err
	}
	defer reader.Close()
	if media.FileSize, err = storage.Put(s, media.GetPath(), media.MimeType, reader); err != nil {
		zap.S().Errorf("Saving %s: %v", media.Filename, err)
		return media, errors.New("failed to store file")
	}
	if err = models.MediaCreate(&media); err != nil {
		zap.S().Errorf("Media create %s: %v", media.Filename, err)
		_ = storage.Remove(s, media.GetPath())
		return media, errors.New("failed to save file details")
	}
	return media, nil
}

// MediaUpload stores one or more files sent in the "media" field
func MediaUpload(c *gin.Context, user *models.User) {
	multipartForm, err := c.MultipartForm()
	if err != nil || len(multipartForm.File["media"]) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse("No file provided"))
		return
	}
	files := multipartForm.File["media"]
	form := mediaForm{}
	_ = c.ShouldBindWith(&form, binding.FormMultipart)
	s := storage.GetDefaultStorage()
	if s == nil {
		c.JSON(http.StatusInternalServerError, NoStorageResponse)
		return
	}

	result := MultiResponse{Status: statusSuccess, Uploaded: []models.MediaInfo{}, Failed: []FailedFile{}}
	for _, file := range files {
		if file.Filename == "" {
			result.Failed = append(result.Failed, FailedFile{Error: "No file selected"})
			continue
		}
		media, err := storeUpload(s, user, file, &form)
		if err != nil {
			result.Failed = append(result.Failed, FailedFile{Filename: file.Filename, Error: err.Error()})
			continue
		}
		publish(user, events.TypeMedia, events.ActionCreated, media.ID, 0)
		result.Uploaded = append(result.Uploaded, media.Info())
	}

	if len(files) == 1 {
		if len(result.Failed) > 0 {
			c.JSON(http.StatusBadRequest, errorResponse(result.Failed[0].Error))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  statusSuccess,
			"message": "File uploaded successfully",
			"data":    result.Uploaded[0],
		})
		return
	}
	result.Message = fmt.Sprintf("%d uploaded, %d failed", len(result.Uploaded), len(result.Failed))
	if len(result.Uploaded) == 0 {
		result.Status = statusError
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func mediaInfos(media []models.Media) []models.MediaInfo {
	result := make([]models.MediaInfo, len(media))
	for i := range media {
		result[i] = media[i].Info()
	}
	return result
}

func MediaAll(c *gin.Context, user *models.User) {
	media, err := models.MediaForUser(user.ID)
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	c.JSON(http.StatusOK, mediaInfos(media))
}

func MediaAvailable(c *gin.Context, user *models.User) {
	media, err := models.MediaAvailable(user.ID)
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "media": mediaInfos(media)})
}

func MediaUpdate(c *gin.Context, user *models.User) {
	mediaID, ok := idParam(c, "id")
	if !ok {
		return
	}
	data := map[string]any{}
	if err := c.ShouldBindWith(&data, binding.JSON); err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse("No data provided"))
		return
	}
	fields := map[string]any{}
	if value, ok := data["title"]; ok {
		title, _ := value.(string)
		if title = strings.TrimSpace(title); title == "" {
			c.JSON(http.StatusBadRequest, errorResponse("Title cannot be empty"))
			return
		}
		fields["title"] = title
	}
	for _, name := range []string{"description", "people"} {
		if value, ok := data[name]; ok {
			text, _ := value.(string)
			fields[name] = strings.TrimSpace(text)
		}
	}
	if value, ok := data["memory_date"]; ok {
		text, _ := value.(string)
		date, year := utils.ParseDateInput(text)
		if date == nil && year != nil {
			// "1975" keeps the text as the date too
			text = strings.TrimSpace(text)
			date = &text
		}
		fields["memory_date"] = date
		fields["year"] = year
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse("Nothing to update"))
		return
	}
	media, err := models.MediaFor(user.ID, mediaID)
	if err != nil {
		dbError(c, err, MediaNotFound)
		return
	}
	if err = media.UpdateDetails(fields); err != nil {
		dbError(c, err, MediaNotFound)
		return
	}
	publish(user, events.TypeMedia, events.ActionUpdated, media.ID, 0)
	c.JSON(http.StatusOK, gin.H{
		"status":  statusSuccess,
		"message": "Media updated successfully",
		"updates": fields,
	})
}

func MediaDelete(c *gin.Context, user *models.User) {
	mediaID, ok := idParam(c, "id")
	if !ok {
		return
	}
	media, err := models.MediaFor(user.ID, mediaID)
	if err != nil {
		dbError(c, err, MediaNotFound)
		return
	}
	if err = media.Delete(); err != nil {
		dbError(c, err, MediaNotFound)
		return
	}
	// The record is gone, leftover files are only logged
	if s := media.Storage(); s != nil {
		if err = storage.Remove(s, media.GetPath()); err != nil {
			zap.S().Warnf("Could not delete file %s: %v", media.GetPath(), err)
		}
		if media.ThumbSize > 0 {
			if err = storage.Remove(s, media.GetThumbPath()); err != nil {
				zap.S().Warnf("Could not delete thumb %s: %v", media.GetThumbPath(), err)
			}
		}
	}
	publish(user, events.TypeMedia, events.ActionDeleted, media.ID, 0)
	c.JSON(http.StatusOK, successResponse("Media deleted successfully"))
}

func mediaByFilename(c *gin.Context, user *models.User) (media models.Media, s storage.StorageAPI, ok bool) {
	filename := utils.SecureFilename(c.Param("filename"))
	media, err := models.MediaByFilename(user.ID, filename)
	if err != nil {
		dbError(c, err, FileNotFound)
		return
	}
	if s = media.Storage(); s == nil {
		c.JSON(http.StatusInternalServerError, NoStorageResponse)
		return
	}
	return media, s, true
}

// MediaServe returns the original file
func MediaServe(c *gin.Context, user *models.User) {
	media, s, ok := mediaByFilename(c, user)
	if !ok {
		return
	}
	if s.GetBucket().StorageType == storage.StorageTypeFile && s.GetSize(media.GetPath()) < 0 {
		c.JSON(http.StatusNotFound, FileNotFound)
		return
	}
	utils.SetCache(c, mediaCacheSeconds)
	if media.MimeType != "" {
		c.Header("Content-Type", media.MimeType)
	}
	s.Serve(media.GetPath(), c.Request, c.Writer)
}

// MediaPreview returns the thumbnail when there is one, or a resized copy with ?size=N
func MediaPreview(c *gin.Context, user *models.User) {
	media, s, ok := mediaByFilename(c, user)
	if !ok {
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	if size <= 0 || !media.IsImage() {
		path := media.GetPath()
		if media.ThumbSize > 0 {
			path = media.GetThumbPath()
			c.Header("Content-Type", "image/jpeg")
		}
		utils.SetCache(c, mediaCacheSeconds)
		s.Serve(path, c.Request, c.Writer)
		return
	}
	if size > previewMaxSize {
		size = previewMaxSize
	}
	source := media.GetPath()
	if media.ThumbSize > 0 && size <= config.THUMB_SIZE {
		source = media.GetThumbPath()
	}
	var original, resized bytes.Buffer
	if _, err := s.Load(source, &original); err != nil {
		zap.S().Warnf("Preview load %s: %v", source, err)
		c.JSON(http.StatusNotFound, FileNotFound)
		return
	}
	if _, err := utils.CreateThumb(uint(size), &original, &resized); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse("Failed to create preview"))
		return
	}
	utils.SetCache(c, mediaCacheSeconds)
	c.Data(http.StatusOK, "image/jpeg", resized.Bytes())
}

type debugFile struct {
	ID               uint64 `json:"id"`
	UserID           uint64 `json:"user_id"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
}

// MediaDebug compares the database with the default bucket's content
func MediaDebug(c *gin.Context, user *models.User) {
	dbFiles := []debugFile{}
	err := db.Instance.Model(&models.Media{}).Select("id, user_id, filename, original_filename").Order("id").Scan(&dbFiles).Error
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	s := storage.GetDefaultStorage()
	if s == nil {
		c.JSON(http.StatusInternalServerError, NoStorageResponse)
		return
	}
	storedFiles, err := s.List(storage.StorageLocationMedia)
	if err != nil {
		zap.S().Errorf("Storage list: %v", err)
		c.JSON(http.StatusInternalServerError, StorageErrResponse)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"database_files": dbFiles,
		"storage_files":  storedFiles,
		"bucket":         s.GetBucket().Name,
		"bucket_path":    s.GetBucket().Path,
	})
}
