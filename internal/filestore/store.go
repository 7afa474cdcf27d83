// Package filestore keeps the documents attached to a property, one folder per property.
package filestore

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/tidwall/match"
)

var (
	ErrFolderNotFound  = errors.New("folder not found")
	ErrInvalidFileName = errors.New("invalid file name")
)

type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MimeType   string    `json:"mime_type"`
	ViewLink   string    `json:"view_link"`
	Thumbnail  string    `json:"thumbnail"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Store is a folder-based document store.
type Store interface {
	CreateFolder(ctx context.Context, name string) (string, error)
	ListFiles(ctx context.Context, folderID string) ([]File, error)
	Upload(ctx context.Context, folderID, name, mimeType string, r io.Reader) (File, error)
	// DeleteFolder removes a folder and everything in it.
	DeleteFolder(ctx context.Context, folderID string) error
}

// FilterByName keeps files whose name matches pattern ("*" any run, "?" one character).
// An empty pattern keeps everything.
func FilterByName(files []File, pattern string) []File {
	if pattern == "" {
		return files
	}
	out := make([]File, 0, len(files))
	for _, f := range files {
		if match.Match(f.Name, pattern) {
			out = append(out, f)
		}
	}
	return out
}
