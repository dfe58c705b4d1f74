package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"yt-mp3-service/domain/distribution"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const fileFields = "id, name, mimeType, size, createdTime, webViewLink, webContentLink"

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error)
	GetFile(ctx context.Context, fileID string, fields string) (*drive.File, error)
	DeleteFile(ctx context.Context, fileID string) error
	UploadFile(ctx context.Context, fileName, mimeType, folderID string, content io.Reader) (*drive.File, error)
	CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// ListFiles lists files matching the query
func (s *GoogleDriveService) ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error) {
	r, err := s.service.Files.List().
		Q(query).
		Fields(googleapi.Field("files(" + fields + ")")).
		OrderBy(orderBy).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return r.Files, nil
}

// GetFile returns the requested fields of one file
func (s *GoogleDriveService) GetFile(ctx context.Context, fileID string, fields string) (*drive.File, error) {
	return s.service.Files.Get(fileID).
		Fields(googleapi.Field(fields)).
		Context(ctx).
		Do()
}

// DeleteFile permanently deletes a file (bypasses trash)
func (s *GoogleDriveService) DeleteFile(ctx context.Context, fileID string) error {
	return s.service.Files.Delete(fileID).Context(ctx).Do()
}

// UploadFile creates a file in folderID with the given content
func (s *GoogleDriveService) UploadFile(ctx context.Context, fileName, mimeType, folderID string, content io.Reader) (*drive.File, error) {
	meta := &drive.File{
		Name:     fileName,
		MimeType: mimeType,
		Parents:  []string{folderID},
	}
	return s.service.Files.Create(meta).
		Media(content, googleapi.ContentType(mimeType)).
		Fields(googleapi.Field(fileFields)).
		Context(ctx).
		Do()
}

// CreatePermission adds a permission to a file
func (s *GoogleDriveService) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	_, err := s.service.Permissions.Create(fileID, permission).Context(ctx).Do()
	return err
}

// Store implements distribution.ObjectStore using a Google Drive folder
type Store struct {
	driveService DriveService
	folderID     string
}

// StoreOption is a functional option for configuring Store
type StoreOption func(*Store)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) StoreOption {
	return func(s *Store) {
		s.driveService = svc
	}
}

// NewStore creates a new Google Drive store authenticated with a service account.
// If no drive service option is provided, it initializes a real Google Drive service.
func NewStore(ctx context.Context, credentialsPath, folderID string, opts ...StoreOption) (*Store, error) {
	s := &Store{folderID: folderID}

	for _, opt := range opts {
		opt(s)
	}

	if s.driveService == nil {
		svc, err := newGoogleDriveService(ctx, credentialsPath)
		if err != nil {
			return nil, err
		}
		s.driveService = svc
	}

	return s, nil
}

// newGoogleDriveService creates a production Google Drive service
func newGoogleDriveService(ctx context.Context, credentialsPath string) (*GoogleDriveService, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client := config.Client(ctx)
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &GoogleDriveService{service: srv}, nil
}

// FindFileByName returns the file named fileName in the store folder, or nil if there is none
func (s *Store) FindFileByName(ctx context.Context, fileName string) (*distribution.FileInfo, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", escapeQuery(fileName), s.folderID)
	files, err := s.driveService.ListFiles(ctx, query, "id, name, mimeType, size, createdTime", "createdTime")
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	if len(files) == 0 {
		return nil, nil
	}

	f := files[0]
	return &distribution.FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		CreatedTime: parseTime(f.CreatedTime),
	}, nil
}

// Upload implements distribution.ObjectStore.
// An existing file with the same name is replaced, and the new file is shared
// with "anyone with the link".
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (*distribution.ObjectHandle, error) {
	existing, err := s.FindFileByName(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing file: %w", err)
	}
	if existing != nil {
		if err := s.driveService.DeleteFile(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to delete existing file %s: %w", existing.Name, err)
		}
	}

	file, err := s.driveService.UploadFile(ctx, key, contentType, s.folderID, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	permission := &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}
	if err := s.driveService.CreatePermission(ctx, file.Id, permission); err != nil {
		return nil, fmt.Errorf("failed to set public sharing for %s: %w", key, err)
	}

	return &distribution.ObjectHandle{
		Backend: distribution.BackendDrive,
		Bucket:  s.folderID,
		Key:     key,
		ID:      file.Id,
	}, nil
}

// PublicURL implements distribution.ObjectStore.
// The direct download link is preferred over the viewer link.
func (s *Store) PublicURL(ctx context.Context, handle *distribution.ObjectHandle) (string, error) {
	if handle == nil || handle.ID == "" {
		return "", fmt.Errorf("drive file ID is required")
	}

	f, err := s.driveService.GetFile(ctx, handle.ID, "webContentLink, webViewLink")
	if err != nil {
		return "", fmt.Errorf("failed to get file links: %w", err)
	}

	switch {
	case f.WebContentLink != "":
		return f.WebContentLink, nil
	case f.WebViewLink != "":
		return f.WebViewLink, nil
	default:
		return fmt.Sprintf("https://drive.google.com/uc?id=%s&export=download", handle.ID), nil
	}
}

// escapeQuery escapes a value for use inside a quoted Drive query string
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// parseTime parses a Google Drive timestamp string
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Ensure Store implements distribution.ObjectStore
var _ distribution.ObjectStore = (*Store)(nil)
