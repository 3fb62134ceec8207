package models

import (
	"circle/config"
	"circle/db"
	"circle/storage"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
)

func setup(t *testing.T) {
	t.Helper()
	config.UPLOAD_DIR = t.TempDir()
	config.BCRYPT_COST = bcrypt.MinCost
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared&_foreign_keys=on"
	require.NoError(t, db.InitWith(sqlite.Open(dsn)))
	storage.Init()
	Init()
	t.Cleanup(func() {
		if sqlDB, err := db.Instance.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

func createUser(t *testing.T, username string) User {
	t.Helper()
	u, err := UserCreate(username, username+"@example.com", "Secret#123", "")
	require.NoError(t, err)
	return u
}

func createMemory(t *testing.T, user User, text string, year *int) Memory {
	t.Helper()
	m := Memory{UserID: user.ID, Text: text, Year: year}
	require.NoError(t, MemoryCreate(&m))
	return m
}

func createMedia(t *testing.T, user User, n int) []Media {
	t.Helper()
	bucketID := storage.GetDefaultStorage().GetBucket().ID
	result := make([]Media, n)
	for i := range result {
		result[i] = Media{
			UserID:   user.ID,
			BucketID: bucketID,
			Filename: fmt.Sprintf("%s_%d.jpg", user.Username, i),
			FileType: FileTypeImage,
		}
		require.NoError(t, MediaCreate(&result[i]))
	}
	return result
}

func linkedIDs(t *testing.T, user User, memory Memory) []uint64 {
	t.Helper()
	media, err := LinkedMedia(user.ID, memory.ID)
	require.NoError(t, err)
	ids := make([]uint64, len(media))
	for i, m := range media {
		ids[i] = m.ID
		require.NotNil(t, m.DisplayOrder)
		assert.Equal(t, i, *m.DisplayOrder)
	}
	return ids
}

func TestLinkAndUnlink(t *testing.T) {
	setup(t)
	user := createUser(t, "nancy")
	memory := createMemory(t, user, "Picnic by the river", nil)
	media := createMedia(t, user, 3)

	for _, m := range []Media{media[2], media[0], media[1]} {
		created, err := LinkMedia(user.ID, memory.ID, m.ID)
		require.NoError(t, err)
		assert.True(t, created)
	}
	created, err := LinkMedia(user.ID, memory.ID, media[0].ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, []uint64{media[2].ID, media[0].ID, media[1].ID}, linkedIDs(t, user, memory))

	removed, err := UnlinkMedia(user.ID, memory.ID, media[0].ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = UnlinkMedia(user.ID, memory.ID, media[0].ID)
	require.NoError(t, err)
	assert.False(t, removed)

	// Appending continues after the highest position
	_, err = LinkMedia(user.ID, memory.ID, media[0].ID)
	require.NoError(t, err)
	list, err := LinkedMedia(user.ID, memory.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, media[0].ID, list[2].ID)
	assert.Equal(t, 3, *list[2].DisplayOrder)
}

func TestLinkOwnership(t *testing.T) {
	setup(t)
	owner := createUser(t, "arthur")
	other := createUser(t, "edith")
	memory := createMemory(t, owner, "First car", nil)
	mine := createMedia(t, owner, 1)
	theirs := createMedia(t, other, 1)

	_, err := LinkMedia(owner.ID, memory.ID, theirs[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = LinkMedia(other.ID, memory.ID, mine[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = LinkedMedia(other.ID, memory.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ReplaceLinks(owner.ID, memory.ID, []uint64{mine[0].ID, theirs[0].ID})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, linkedIDs(t, owner, memory))
}

func TestReplaceLinks(t *testing.T) {
	setup(t)
	user := createUser(t, "doris")
	memory := createMemory(t, user, "Holidays in Cornwall", nil)
	media := createMedia(t, user, 3)

	_, err := LinkMedia(user.ID, memory.ID, media[0].ID)
	require.NoError(t, err)

	linked, err := ReplaceLinks(user.ID, memory.ID, []uint64{media[2].ID, media[1].ID, media[2].ID})
	require.NoError(t, err)
	assert.Equal(t, 2, linked)
	assert.Equal(t, []uint64{media[2].ID, media[1].ID}, linkedIDs(t, user, memory))

	linked, err = ReplaceLinks(user.ID, memory.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, linked)
	assert.Empty(t, linkedIDs(t, user, memory))
}

func TestReorderLinks(t *testing.T) {
	setup(t)
	user := createUser(t, "walter")
	memory := createMemory(t, user, "Building the shed", nil)
	media := createMedia(t, user, 4)
	_, err := ReplaceLinks(user.ID, memory.ID, []uint64{media[0].ID, media[1].ID, media[2].ID, media[3].ID})
	require.NoError(t, err)

	// 999 isn't linked, media[1] is repeated
	require.NoError(t, ReorderLinks(user.ID, memory.ID, []uint64{media[2].ID, 999, media[1].ID, media[2].ID}))
	assert.Equal(t, []uint64{media[2].ID, media[1].ID, media[0].ID, media[3].ID}, linkedIDs(t, user, memory))
}

func TestDeletesCascade(t *testing.T) {
	setup(t)
	user := createUser(t, "mabel")
	memory := createMemory(t, user, "Moving house", nil)
	media := createMedia(t, user, 2)
	_, err := ReplaceLinks(user.ID, memory.ID, []uint64{media[0].ID, media[1].ID})
	require.NoError(t, err)

	require.NoError(t, media[0].Delete())
	list, err := LinkedMedia(user.ID, memory.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, media[1].ID, list[0].ID)

	require.NoError(t, memory.Delete())
	var count int64
	require.NoError(t, db.Instance.Model(&MemoryMedia{}).Count(&count).Error)
	assert.Zero(t, count)
	_, err = MediaFor(user.ID, media[1].ID)
	assert.NoError(t, err)
}

func TestTimelineOrder(t *testing.T) {
	setup(t)
	user := createUser(t, "harold")
	y1990, y1960 := 1990, 1960
	undated := createMemory(t, user, "Undated", nil)
	late := createMemory(t, user, "Late", &y1990)
	early := createMemory(t, user, "Early", &y1960)

	memories, err := MemoriesForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, memories, 3)
	assert.Equal(t, []uint64{early.ID, late.ID, undated.ID}, []uint64{memories[0].ID, memories[1].ID, memories[2].ID})
}

func TestImportOwner(t *testing.T) {
	setup(t)
	_, err := ImportOwner()
	assert.ErrorIs(t, err, ErrNotFound)

	first := createUser(t, "olive")
	admin := createUser(t, "frank")
	owner, err := ImportOwner()
	require.NoError(t, err)
	assert.Equal(t, first.ID, owner.ID)

	require.NoError(t, db.Instance.Model(&admin).Update("role", RoleAdmin).Error)
	owner, err = ImportOwner()
	require.NoError(t, err)
	assert.Equal(t, admin.ID, owner.ID)
}
