package utils

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	allowedExtensions = map[string]string{
		"png":  "image",
		"jpg":  "image",
		"jpeg": "image",
		"gif":  "image",
		"webp": "image",
		"pdf":  "document",
		"mp3":  "audio",
		"wav":  "audio",
		"webm": "audio",
		"mp4":  "video",
		"mov":  "video",
		"avi":  "video",
	}
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

// Extension returns the lower-cased extension without the dot
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

func AllowedFile(filename string) bool {
	_, ok := allowedExtensions[Extension(filename)]
	return ok
}

// FileType maps the extension to image, audio, video, document or other
func FileType(filename string) string {
	if t, ok := allowedExtensions[Extension(filename)]; ok {
		return t
	}
	return "other"
}

// SecureFilename keeps only ASCII letters, digits, '_', '-' and '.', without leading dots
func SecureFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	filename = strings.Join(strings.Fields(filename), "_")
	filename = unsafeFilenameChars.ReplaceAllString(filename, "")
	filename = strings.TrimLeft(filename, "._")
	if filename == "" {
		return "file"
	}
	return filename
}

// UniqueFilename builds YYYYMMDD_HHMMSS_<8 random chars>_<secure name>
func UniqueFilename(original string, now time.Time) string {
	return now.Format("20060102_150405") + "_" + ShortID() + "_" + SecureFilename(original)
}
