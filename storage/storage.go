package storage

import (
	"circle/config"
	"circle/db"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

type StorageSpecificAPI interface {
	GetFullPath(path string) string
	EnsureDirExists(dir string) error
	EnsureLocalFile(path string) error
	ReleaseLocalFile(path string)
	DeleteRemoteFile(path string) error
	UpdateFile(path, mimeType string) error
	Serve(path string, request *http.Request, writer http.ResponseWriter)
	List(prefix string) ([]string, error)
	UpdateSpace()
}

type StorageAPI interface {
	StorageSpecificAPI

	GetSize(path string) int64
	Save(path string, reader io.Reader) (int64, error)
	Load(path string, writer io.Writer) (int64, error)
	Delete(path string) error
	GetTotalSpace() uint64
	GetFreeSpace() uint64
	GetBucket() *Bucket
}

type Storage struct {
	specifics  StorageSpecificAPI
	TotalSpace uint64
	FreeSpace  uint64
	Bucket     Bucket
}

var (
	cachedStorage      []StorageAPI
	cachedStorageMutex sync.RWMutex
)

func Init() {
	if err := db.Instance.AutoMigrate(&Bucket{}); err != nil {
		panic(err)
	}
	var count int64
	if err := db.Instance.Model(&Bucket{}).Count(&count).Error; err != nil {
		panic(err)
	}
	if count == 0 && config.UPLOAD_DIR != "" {
		if err := createDefaultBucket(); err != nil {
			panic(err)
		}
	}
	if err := Reload(); err != nil {
		panic(err)
	}
}

func createDefaultBucket() error {
	path, err := filepath.Abs(config.UPLOAD_DIR)
	if err != nil {
		return err
	}
	bucket := Bucket{
		Name:        "local",
		StorageType: StorageTypeFile,
		Path:        path,
		Default:     true,
	}
	zap.S().Infof("Creating default disk bucket at %s", path)
	return bucket.Create()
}

// Reload re-reads all buckets from the DB
func Reload() error {
	var buckets []Bucket
	if err := db.Instance.Find(&buckets).Error; err != nil {
		return err
	}
	zap.S().Infof("Storage Buckets found: %d", len(buckets))
	result := []StorageAPI{}
	for i := range buckets {
		bucket := &buckets[i]
		storage, err := New(bucket)
		if err != nil {
			return err
		}
		storage.UpdateSpace()
		result = append(result, storage)
	}
	cachedStorageMutex.Lock()
	cachedStorage = result
	cachedStorageMutex.Unlock()
	return nil
}

// New creates the storage for a bucket without caching it
func New(bucket *Bucket) (StorageAPI, error) {
	switch bucket.StorageType {
	case StorageTypeFile:
		return NewDiskStorage(bucket), nil
	case StorageTypeS3:
		return NewS3Storage(bucket), nil
	}
	return nil, fmt.Errorf("storage type unavailable for bucket %d", bucket.ID)
}

func StorageByID(id uint64) StorageAPI {
	cachedStorageMutex.RLock()
	defer cachedStorageMutex.RUnlock()
	for _, s := range cachedStorage {
		if s.GetBucket().ID == id {
			return s
		}
	}
	return nil
}

// GetDefaultStorage returns the bucket marked as default, falling back to the first disk bucket
func GetDefaultStorage() StorageAPI {
	cachedStorageMutex.RLock()
	defer cachedStorageMutex.RUnlock()
	if len(cachedStorage) == 0 {
		return nil
	}
	for _, s := range cachedStorage {
		if s.GetBucket().Default {
			return s
		}
	}
	for _, s := range cachedStorage {
		if s.GetBucket().StorageType == StorageTypeFile {
			return s
		}
	}
	return cachedStorage[0]
}

// Put saves the content and uploads it to the remote location (if any)
func Put(s StorageAPI, path, mimeType string, reader io.Reader) (int64, error) {
	size, err := s.Save(path, reader)
	if err != nil {
		return 0, err
	}
	defer s.ReleaseLocalFile(path)
	if err = s.UpdateFile(path, mimeType); err != nil {
		return 0, err
	}
	return size, nil
}

// Remove deletes both the remote object and the local copy
func Remove(s StorageAPI, path string) error {
	err := s.DeleteRemoteFile(path)
	if localErr := s.Delete(path); localErr != nil && !errors.Is(localErr, fs.ErrNotExist) && err == nil {
		err = localErr
	}
	return err
}

func (s *Storage) GetTotalSpace() uint64 {
	return s.TotalSpace
}

func (s *Storage) GetFreeSpace() uint64 {
	return s.FreeSpace
}

func (s *Storage) GetBucket() *Bucket {
	return &s.Bucket
}

//
// NOTE: All the functions below work on a local file
//

func (s *Storage) GetSize(path string) int64 {
	fi, err := os.Stat(s.GetFullPath(path))
	if err != nil {
		return -1
	}
	return fi.Size()
}

func (s *Storage) Save(path string, reader io.Reader) (int64, error) {
	fileName := s.GetFullPath(path)
	if err := s.EnsureDirExists(filepath.Dir(fileName)); err != nil {
		return 0, err
	}
	file, err := os.Create(fileName)
	if err != nil {
		return 0, err
	}
	result, err := io.Copy(file, reader)
	file.Close()
	return result, err
}

func (s *Storage) Load(path string, writer io.Writer) (int64, error) {
	file, err := os.Open(s.GetFullPath(path))
	if err != nil {
		return 0, err
	}
	result, err := io.Copy(writer, file)
	file.Close()
	return result, err
}

func (s *Storage) Delete(path string) error {
	return os.Remove(s.GetFullPath(path))
}

//
// Proxy methods
//

func (s *Storage) GetFullPath(path string) string {
	return s.specifics.GetFullPath(path)
}
func (s *Storage) EnsureDirExists(dir string) error {
	return s.specifics.EnsureDirExists(dir)
}
func (s *Storage) EnsureLocalFile(path string) error {
	return s.specifics.EnsureLocalFile(path)
}
func (s *Storage) ReleaseLocalFile(path string) {
	s.specifics.ReleaseLocalFile(path)
}
func (s *Storage) DeleteRemoteFile(path string) error {
	return s.specifics.DeleteRemoteFile(path)
}
func (s *Storage) UpdateFile(path, mimeType string) error {
	return s.specifics.UpdateFile(path, mimeType)
}
