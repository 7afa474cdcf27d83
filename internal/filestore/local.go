package filestore

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const folderNameFile = ".folder"

// Local stores folders as directories named by uuid under Root.
type Local struct {
	Root string
	// LinkPrefix is prepended to "<folder>/<file>" to build view links.
	LinkPrefix string
}

func NewLocal(root, linkPrefix string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Local{Root: root, LinkPrefix: strings.TrimSuffix(linkPrefix, "/")}, nil
}

func (l *Local) CreateFolder(_ context.Context, name string) (string, error) {
	id := uuid.NewString()
	dir := filepath.Join(l.Root, id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, folderNameFile), []byte(name), 0o644); err != nil {
		return "", fmt.Errorf("write folder name: %w", err)
	}
	return id, nil
}

func (l *Local) ListFiles(_ context.Context, folderID string) ([]File, error) {
	dir, err := l.folderPath(folderID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFolderNotFound
		}
		return nil, fmt.Errorf("read folder: %w", err)
	}

	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, l.file(folderID, e.Name(), info.ModTime()))
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ModifiedAt.After(files[j].ModifiedAt) })
	return files, nil
}

func (l *Local) Upload(_ context.Context, folderID, name, _ string, r io.Reader) (File, error) {
	dir, err := l.folderPath(folderID)
	if err != nil {
		return File{}, err
	}
	if _, err := os.Stat(dir); err != nil {
		return File{}, ErrFolderNotFound
	}
	name, err = cleanFileName(name)
	if err != nil {
		return File{}, err
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return File{}, fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return File{}, fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return File{}, fmt.Errorf("close file: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat file: %w", err)
	}
	return l.file(folderID, name, info.ModTime()), nil
}

func (l *Local) DeleteFolder(_ context.Context, folderID string) error {
	dir, err := l.folderPath(folderID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		return ErrFolderNotFound
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return nil
}

// Path resolves a file inside a folder for download.
func (l *Local) Path(folderID, name string) (string, error) {
	dir, err := l.folderPath(folderID)
	if err != nil {
		return "", err
	}
	name, err = cleanFileName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (l *Local) folderPath(folderID string) (string, error) {
	if _, err := uuid.Parse(folderID); err != nil {
		return "", ErrFolderNotFound
	}
	return filepath.Join(l.Root, folderID), nil
}

func (l *Local) file(folderID, name string, modTime time.Time) File {
	return File{
		ID:         folderID + "/" + name,
		Name:       name,
		MimeType:   mimeType(name),
		ViewLink:   l.LinkPrefix + "/" + folderID + "/" + url.PathEscape(name),
		ModifiedAt: modTime,
	}
}

func cleanFileName(name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == "" || strings.HasPrefix(base, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return base, nil
}

func mimeType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
