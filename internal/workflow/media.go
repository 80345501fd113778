package workflow

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// MediaExtensions are the file types accepted for transcription.
var MediaExtensions = []string{
	".mp3", ".wav", ".m4a", ".aac", ".flac", ".ogg", ".opus", ".webm",
	".mp4", ".mov", ".mkv", ".avi", ".m4v",
}

// Media is a staged upload.
type Media struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// MediaFromFile validates path and stages it for upload.
func MediaFromFile(path string) (Media, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return Media{}, validationf("File '%s' does not exist.", path)
	}
	if err != nil {
		return Media{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Media{}, validationf("'%s' is a directory, not a media file.", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(MediaExtensions, ext) {
		return Media{}, validationf("File '%s' is not a supported audio or video file.", path)
	}
	if info.Size() == 0 {
		return Media{}, validationf("File '%s' is empty.", path)
	}

	return Media{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// MediaFromBytes stages in-memory content, mainly for tests.
func MediaFromBytes(name string, data []byte) Media {
	return Media{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(string(data))), nil
		},
	}
}
