package storage

import (
	"net/http"
	"os"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

type DiskStorage struct {
	Storage
	// BasePath is a directory (usually mount point of a disk) that is writable by the current process
	BasePath  string
	dirs      map[string]bool
	dirsMutex sync.Mutex
}

func NewDiskStorage(bucket *Bucket) StorageAPI {
	result := &DiskStorage{
		BasePath: bucket.Path,
		Storage: Storage{
			Bucket: *bucket,
		},
		dirs: make(map[string]bool, 10),
	}
	result.specifics = result
	return result
}

func (s *DiskStorage) GetFullPath(path string) string {
	return s.BasePath + "/" + path
}

func (s *DiskStorage) EnsureDirExists(dir string) error {
	s.dirsMutex.Lock()
	defer s.dirsMutex.Unlock()

	if ok := s.dirs[dir]; ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}
	s.dirs[dir] = true
	return nil
}

// Files on disk are always local
func (s *DiskStorage) EnsureLocalFile(path string) error {
	_, err := os.Stat(s.GetFullPath(path))
	return err
}

func (s *DiskStorage) ReleaseLocalFile(path string) {}

func (s *DiskStorage) DeleteRemoteFile(path string) error {
	return nil
}

func (s *DiskStorage) UpdateFile(path, mimeType string) error {
	return nil
}

func (s *DiskStorage) Serve(path string, request *http.Request, writer http.ResponseWriter) {
	http.ServeFile(writer, request, s.GetFullPath(path))
}

// List returns the names of the regular files directly under prefix
func (s *DiskStorage) List(prefix string) ([]string, error) {
	entries, err := os.ReadDir(s.GetFullPath(prefix))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			result = append(result, entry.Name())
		}
	}
	return result, nil
}

func (s *DiskStorage) UpdateSpace() {
	var stat unix.Statfs_t
	if err := unix.Statfs(s.BasePath, &stat); err != nil {
		zap.S().Warnf("Statfs failed for %s: %v", s.BasePath, err)
		return
	}
	s.TotalSpace = stat.Blocks * uint64(stat.Bsize)
	s.FreeSpace = stat.Bavail * uint64(stat.Bsize)
}
