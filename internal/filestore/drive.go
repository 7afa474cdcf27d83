package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	fileFields     = "id,name,mimeType,webViewLink,thumbnailLink,modifiedTime"
)

// Drive keeps property folders in Google Drive under ParentID.
type Drive struct {
	svc      *drive.Service
	ParentID string
}

// NewDrive authenticates with a service account credentials file.
func NewDrive(ctx context.Context, credentialsFile, parentID string) (*Drive, error) {
	svc, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsFile), option.WithScopes(drive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return &Drive{svc: svc, ParentID: parentID}, nil
}

func (d *Drive) CreateFolder(ctx context.Context, name string) (string, error) {
	folder := &drive.File{Name: name, MimeType: folderMimeType}
	if d.ParentID != "" {
		folder.Parents = []string{d.ParentID}
	}
	created, err := d.svc.Files.Create(folder).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create drive folder: %w", err)
	}
	return created.Id, nil
}

func (d *Drive) ListFiles(ctx context.Context, folderID string) ([]File, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", folderID)
	var files []File
	pageToken := ""
	for {
		call := d.svc.Files.List().
			Q(q).
			Fields(googleapi.Field("nextPageToken,files(" + fileFields + ")")).
			OrderBy("modifiedTime desc").
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			if isNotFound(err) {
				return nil, ErrFolderNotFound
			}
			return nil, fmt.Errorf("list drive files: %w", err)
		}
		for _, f := range res.Files {
			files = append(files, fromDrive(f))
		}
		if res.NextPageToken == "" {
			return files, nil
		}
		pageToken = res.NextPageToken
	}
}

func (d *Drive) Upload(ctx context.Context, folderID, name, mimeType string, r io.Reader) (File, error) {
	created, err := d.svc.Files.Create(&drive.File{Name: name, MimeType: mimeType, Parents: []string{folderID}}).
		Media(r).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		if isNotFound(err) {
			return File{}, ErrFolderNotFound
		}
		return File{}, fmt.Errorf("upload drive file: %w", err)
	}
	return fromDrive(created), nil
}

func (d *Drive) DeleteFolder(ctx context.Context, folderID string) error {
	err := d.svc.Files.Delete(folderID).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return ErrFolderNotFound
		}
		return fmt.Errorf("delete drive folder: %w", err)
	}
	return nil
}

func fromDrive(f *drive.File) File {
	modified, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	return File{
		ID:         f.Id,
		Name:       f.Name,
		MimeType:   f.MimeType,
		ViewLink:   f.WebViewLink,
		Thumbnail:  f.ThumbnailLink,
		ModifiedAt: modified,
	}
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
