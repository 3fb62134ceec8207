package storage

import (
	"circle/db"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type StorageType uint8

const (
	StorageTypeFile StorageType = 0
	StorageTypeS3   StorageType = 1
)

const (
	StorageLocationMedia  = "media"
	StorageLocationThumbs = "thumbs"
	StorageLocationAudio  = "audio"
)

type Bucket struct {
	ID            uint64      `gorm:"primaryKey" json:"id"`
	CreatedAt     int64       `json:"created_at"`
	UpdatedAt     int64       `json:"updated_at"`
	Name          string      `gorm:"type:varchar(200)" json:"name"` // S3 bucket name for S3 storage
	StorageType   StorageType `json:"storage_type"`
	Path          string      `gorm:"type:varchar(500)" json:"path"`     // Path on a drive or a prefix in a S3 bucket
	Endpoint      string      `gorm:"type:varchar(500)" json:"endpoint"` // S3 compatible endpoint, empty for AWS
	Region        string      `gorm:"type:varchar(50)" json:"region"`
	AuthDetails   string      `gorm:"type:varchar(500)" json:"-"` // In case of S3 bucket - "key:secret"
	SSEEncryption string      `gorm:"type:varchar(20)" json:"sse_encryption"`
	Default       bool        `gorm:"not null;default:false" json:"default"`
}

func (b *Bucket) Create() error {
	if err := db.Instance.Create(b).Error; err != nil {
		return err
	}
	if b.StorageType == StorageTypeFile {
		// Pre-create locations on disk
		for _, location := range []string{StorageLocationMedia, StorageLocationThumbs, StorageLocationAudio} {
			if err := os.MkdirAll(b.Path+"/"+location, 0777); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetRemotePath prefixes the path with the bucket prefix (S3 only)
func (b *Bucket) GetRemotePath(path string) string {
	prefix := strings.Trim(b.Path, "/")
	if prefix == "" {
		return path
	}
	return prefix + "/" + path
}

func (b *Bucket) CreateSVC() *s3.S3 {
	cfg := aws.NewConfig()
	if b.Region != "" {
		cfg = cfg.WithRegion(b.Region)
	}
	if b.Endpoint != "" {
		cfg = cfg.WithEndpoint(b.Endpoint).WithS3ForcePathStyle(true)
	}
	if key, secret, found := strings.Cut(b.AuthDetails, ":"); found {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(key, secret, ""))
	}
	sess := session.Must(session.NewSession(cfg))
	return s3.New(sess)
}
