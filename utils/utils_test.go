package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantDate string
		wantYear int
	}{
		{name: "empty", input: "   "},
		{name: "year only", input: "1975", wantYear: 1975},
		{name: "year with spaces", input: "  1975 ", wantYear: 1975},
		{name: "month and year", input: "June 1975", wantDate: "June 1975", wantYear: 1975},
		{name: "month and year extra spaces", input: "june   1980", wantDate: "june 1980", wantYear: 1980},
		{name: "free text with year", input: "Summer of 1969", wantDate: "Summer of 1969", wantYear: 1969},
		{name: "free text without year", input: "when I was small", wantDate: "when I was small"},
		{name: "not a 19xx/20xx year", input: "about 1850ish", wantDate: "about 1850ish"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, year := ParseDateInput(tt.input)
			if tt.wantDate == "" {
				assert.Nil(t, date)
			} else {
				require.NotNil(t, date)
				assert.Equal(t, tt.wantDate, *date)
			}
			if tt.wantYear == 0 {
				assert.Nil(t, year)
			} else {
				require.NotNil(t, year)
				assert.Equal(t, tt.wantYear, *year)
			}
		})
	}
}

func TestFileType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		allowed  bool
	}{
		{"photo.JPG", "image", true},
		{"scan.pdf", "document", true},
		{"voice.webm", "audio", true},
		{"clip.mov", "video", true},
		{"notes.txt", "other", false},
		{"noextension", "other", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, FileType(tt.filename))
			assert.Equal(t, tt.allowed, AllowedFile(tt.filename))
		})
	}
}

func TestSecureFilename(t *testing.T) {
	assert.Equal(t, "passwd", SecureFilename("../../etc/passwd"))
	assert.Equal(t, "my_holiday_photo.jpg", SecureFilename("my holiday photo.jpg"))
	assert.Equal(t, "Caf.png", SecureFilename("Café.png"))
	assert.Equal(t, "hidden", SecureFilename(".hidden"))
	assert.Equal(t, "file", SecureFilename("..."))
}

func TestUniqueFilename(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	name := UniqueFilename("Grandma at the beach.jpg", now)
	assert.Regexp(t, regexp.MustCompile(`^20240305_140709_[0-9a-f-]{8}_Grandma_at_the_beach\.jpg$`), name)
	assert.NotEqual(t, name, UniqueFilename("Grandma at the beach.jpg", now))
}

func TestGetYearsString(t *testing.T) {
	assert.Equal(t, "", GetYearsString(0, 1970))
	assert.Equal(t, "1970", GetYearsString(1970, 1970))
	assert.Equal(t, "1962 - 1975", GetYearsString(1962, 1975))
}

func TestCreateThumb(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for x := 0; x < 400; x++ {
		for y := 0; y < 200; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var src bytes.Buffer
	require.NoError(t, png.Encode(&src, img))

	var dst bytes.Buffer
	result, err := CreateThumb(100, &src, &dst)
	require.NoError(t, err)
	assert.Equal(t, uint16(400), result.OldX)
	assert.Equal(t, uint16(200), result.OldY)
	assert.Equal(t, uint16(100), result.NewX)
	assert.Equal(t, uint16(50), result.NewY)
	assert.Equal(t, int64(dst.Len()), result.ThumbSize)

	_, format, err := image.Decode(&dst)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}
