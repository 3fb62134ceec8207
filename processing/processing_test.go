package processing

import (
	"bytes"
	"circle/config"
	"circle/db"
	"circle/models"
	"circle/storage"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
)

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	config.UPLOAD_DIR = dir
	config.BCRYPT_COST = bcrypt.MinCost
	config.THUMB_SIZE = 100
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared&_foreign_keys=on"
	require.NoError(t, db.InitWith(sqlite.Open(dsn)))
	storage.Init()
	models.Init()
	Init()
	previous := settleTime
	settleTime = 0
	t.Cleanup(func() {
		settleTime = previous
		if sqlDB, err := db.Instance.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return dir
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		for y := 0; y < 200; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func taskStatus(t *testing.T, mediaID uint64) string {
	t.Helper()
	task := ProcessingTask{}
	require.NoError(t, db.Instance.First(&task, "media_id = ?", mediaID).Error)
	return task.Status
}

func TestStatusMap(t *testing.T) {
	pt := ProcessingTask{Status: "thumb:3,broken,mime:2"}
	statusMap := pt.statusToMap()
	assert.Equal(t, map[string]int{"mime": Done, "thumb": Failed}, statusMap)

	statusMap["thumb"] = Done
	pt.updateWith(statusMap)
	assert.Equal(t, "mime:2,thumb:2", pt.Status)

	assert.Empty(t, (&ProcessingTask{}).statusToMap())
}

func TestScanAndProcess(t *testing.T) {
	dir := setup(t)

	// Nobody to give the files to yet
	writePNG(t, filepath.Join(dir, "media", "grandpa_1962.png"))
	imported, err := ScanUploads()
	require.NoError(t, err)
	assert.Zero(t, imported)

	user, err := models.UserCreate("nancy", "nancy@example.com", "Secret#123", "Nancy")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "notes.txt"), []byte("notes"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", ".hidden.jpg"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "broken.jpg"), []byte("this is not really an image"), 0644))

	imported, err = ScanUploads()
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	// Known files are not imported twice
	imported, err = ScanUploads()
	require.NoError(t, err)
	assert.Zero(t, imported)

	photo, err := models.MediaByFilename(user.ID, "grandpa_1962.png")
	require.NoError(t, err)
	assert.Equal(t, "grandpa_1962", photo.Title)
	assert.Equal(t, models.FileTypeImage, photo.FileType)
	assert.Equal(t, models.UploadedByAutoImport, photo.UploadedBy)
	assert.Positive(t, photo.FileSize)
	assert.Empty(t, photo.MimeType)

	assert.Equal(t, 2, ProcessPending())
	assert.Zero(t, ProcessPending())

	photo, err = models.MediaByFilename(user.ID, "grandpa_1962.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", photo.MimeType)
	assert.Positive(t, photo.ThumbSize)
	assert.Equal(t, uint16(400), photo.Width)
	assert.Equal(t, uint16(200), photo.Height)
	assert.FileExists(t, filepath.Join(dir, "thumbs", "grandpa_1962.png.jpg"))
	assert.Equal(t, "mime:2,thumb:2", taskStatus(t, photo.ID))

	broken, err := models.MediaByFilename(user.ID, "broken.jpg")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", broken.MimeType)
	assert.Zero(t, broken.ThumbSize)
	assert.Equal(t, "mime:2,thumb:3", taskStatus(t, broken.ID))
}

func TestProcessSkipsKnownTypes(t *testing.T) {
	dir := setup(t)
	user, err := models.UserCreate("arthur", "arthur@example.com", "Secret#123", "")
	require.NoError(t, err)
	bucket := storage.GetDefaultStorage().GetBucket()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "letter.pdf"), []byte("%PDF-1.4\n"), 0644))
	media := models.Media{
		UserID:   user.ID,
		BucketID: bucket.ID,
		Filename: "letter.pdf",
		FileType: models.FileTypeDocument,
		MimeType: "application/pdf",
	}
	require.NoError(t, models.MediaCreate(&media))

	assert.Equal(t, 1, ProcessPending())
	assert.Equal(t, "mime:0,thumb:0", taskStatus(t, media.ID))
}
