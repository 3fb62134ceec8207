package storage

import (
	"bytes"
	"circle/config"
	"circle/db"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func setup(t *testing.T) {
	t.Helper()
	config.UPLOAD_DIR = t.TempDir()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared&_foreign_keys=on"
	require.NoError(t, db.InitWith(sqlite.Open(dsn)))
	Init()
	t.Cleanup(func() {
		if sqlDB, err := db.Instance.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

func TestDefaultBucket(t *testing.T) {
	setup(t)
	s := GetDefaultStorage()
	require.NotNil(t, s)
	bucket := s.GetBucket()
	assert.Equal(t, config.UPLOAD_DIR, bucket.Path)
	assert.Equal(t, StorageTypeFile, bucket.StorageType)
	assert.True(t, bucket.Default)
	assert.Same(t, s, StorageByID(bucket.ID))
	assert.Nil(t, StorageByID(bucket.ID+1))
	for _, location := range []string{StorageLocationMedia, StorageLocationThumbs, StorageLocationAudio} {
		info, err := os.Stat(config.UPLOAD_DIR + "/" + location)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// A second run doesn't add another bucket
	Init()
	var count int64
	require.NoError(t, db.Instance.Model(&Bucket{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDefaultFallsBackToDisk(t *testing.T) {
	setup(t)
	second := Bucket{Name: "archive", StorageType: StorageTypeFile, Path: t.TempDir()}
	require.NoError(t, second.Create())
	require.NoError(t, db.Instance.Model(&Bucket{}).Where("id <> ?", second.ID).Update("default", false).Error)
	require.NoError(t, Reload())

	s := GetDefaultStorage()
	require.NotNil(t, s)
	assert.Equal(t, StorageTypeFile, s.GetBucket().StorageType)
	assert.False(t, s.GetBucket().Default)

	require.NoError(t, db.Instance.Model(&Bucket{}).Where("id = ?", second.ID).Update("default", true).Error)
	require.NoError(t, Reload())
	assert.Equal(t, second.ID, GetDefaultStorage().GetBucket().ID)
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(&Bucket{ID: 7, StorageType: 9})
	assert.EqualError(t, err, "storage type unavailable for bucket 7")
}

func TestDiskStorage(t *testing.T) {
	setup(t)
	s := GetDefaultStorage()
	path := StorageLocationAudio + "/note.webm"

	size, err := Put(s, path, "audio/webm", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
	assert.Equal(t, int64(5), s.GetSize(path))
	assert.NoError(t, s.EnsureLocalFile(path))

	var buf bytes.Buffer
	n, err := s.Load(path, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "hello", buf.String())

	// Nested directories are created on save
	_, err = Put(s, "media/2024/01/a.jpg", "image/jpeg", strings.NewReader("jpg"))
	require.NoError(t, err)
	names, err := s.List(StorageLocationAudio)
	require.NoError(t, err)
	assert.Equal(t, []string{"note.webm"}, names)
	names, err = s.List(StorageLocationMedia)
	require.NoError(t, err)
	assert.Empty(t, names)
	names, err = s.List("missing")
	require.NoError(t, err)
	assert.Empty(t, names)

	w := httptest.NewRecorder()
	s.Serve(path, httptest.NewRequest(http.MethodGet, "/", nil), w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())

	require.NoError(t, Remove(s, path))
	assert.Equal(t, int64(-1), s.GetSize(path))
	assert.Error(t, s.EnsureLocalFile(path))
	// Removing twice is fine
	assert.NoError(t, Remove(s, path))
	_, err = s.Load(path, &buf)
	assert.Error(t, err)
}
