package handlers

import (
	"circle/db"
	"circle/models"
	"circle/storage"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

type BucketSaveRequest struct {
	ID            uint64              `json:"id"`
	Name          string              `json:"name"`
	StorageType   storage.StorageType `json:"storage_type"`
	Path          string              `json:"path"`
	Endpoint      string              `json:"endpoint"`
	Region        string              `json:"region"`
	S3Key         string              `json:"s3_key"`
	S3Secret      string              `json:"s3_secret"`
	SSEEncryption string              `json:"sse_encryption"`
	Default       bool                `json:"default"`
}

// hasWriteAccess round-trips a small file through the bucket
func hasWriteAccess(bucket *storage.Bucket) error {
	s, err := storage.New(bucket)
	if err != nil {
		return err
	}
	testPath := "tmp/write-check"
	if _, err = s.Save(testPath, strings.NewReader("some-content")); err != nil {
		zap.S().Warnf("Cannot save to bucket %s: %v", bucket.Name, err)
		return err
	}
	if err = s.UpdateFile(testPath, "text/plain"); err != nil {
		zap.S().Warnf("Cannot update bucket %s: %v", bucket.Name, err)
		return err
	}
	if err = storage.Remove(s, testPath); err != nil {
		zap.S().Warnf("Cannot delete from bucket %s: %v", bucket.Name, err)
		return err
	}
	return nil
}

func cleanupPath(in *storage.Bucket) {
	for strings.Contains(in.Path, "..") {
		in.Path = strings.ReplaceAll(in.Path, "..", "")
	}
	for strings.Contains(in.Path, "//") {
		in.Path = strings.ReplaceAll(in.Path, "//", "/")
	}
}

func BucketSave(c *gin.Context, user *models.User) {
	req := BucketSaveRequest{}
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	bucket := storage.Bucket{
		ID:            req.ID,
		Name:          strings.TrimSpace(req.Name),
		StorageType:   req.StorageType,
		Path:          strings.TrimSpace(req.Path),
		Endpoint:      req.Endpoint,
		Region:        req.Region,
		SSEEncryption: req.SSEEncryption,
		Default:       req.Default,
	}
	cleanupPath(&bucket)
	if bucket.Name == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Empty bucket name"))
		return
	}
	switch bucket.StorageType {
	case storage.StorageTypeFile:
		if bucket.Path == "" || bucket.Path[0] != '/' {
			c.JSON(http.StatusBadRequest, errorResponse("Path must be absolute and start with / (slash)"))
			return
		}
	case storage.StorageTypeS3:
		if req.S3Key == "" || req.S3Secret == "" {
			c.JSON(http.StatusBadRequest, errorResponse("'S3 Key' and 'S3 Secret' must be provided"))
			return
		}
		bucket.AuthDetails = req.S3Key + ":" + req.S3Secret
		if bucket.Region == "" {
			bucket.Region = "us-east-1"
		}
	default:
		c.JSON(http.StatusBadRequest, errorResponse("'storage_type' must be 0 (disk) or 1 (S3)"))
		return
	}
	if err := hasWriteAccess(&bucket); err != nil {
		c.JSON(http.StatusForbidden, errorResponse("No write access to bucket: "+err.Error()))
		return
	}
	var err error
	if bucket.ID == 0 {
		err = bucket.Create()
	} else {
		err = db.Instance.Save(&bucket).Error
	}
	if err == nil && bucket.Default {
		// Only one default bucket
		err = db.Instance.Model(&storage.Bucket{}).Where("id <> ?", bucket.ID).Update("default", false).Error
	}
	if err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	if err = storage.Reload(); err != nil {
		zap.S().Errorf("Storage reload: %v", err)
		c.JSON(http.StatusInternalServerError, StorageErrResponse)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "bucket": bucket})
}

func BucketList(c *gin.Context, user *models.User) {
	buckets := []storage.Bucket{}
	if err := db.Instance.Order("id").Find(&buckets).Error; err != nil {
		dbError(c, err, NotFoundResponse)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "buckets": buckets})
}
