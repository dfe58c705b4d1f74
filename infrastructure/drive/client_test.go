package drive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"yt-mp3-service/domain/distribution"

	"google.golang.org/api/drive/v3"
)

// mockDriveService is a mock implementation for testing
type mockDriveService struct {
	files          []*drive.File
	queries        []string
	uploaded       map[string][]byte
	permissions    map[string]*drive.Permission
	deletedFileIDs []string
	listErr        error
	deleteErr      error
	uploadErr      error
	permissionErr  error
	getErr         error
	links          *drive.File
}

func newMockDriveService() *mockDriveService {
	return &mockDriveService{
		uploaded:    make(map[string][]byte),
		permissions: make(map[string]*drive.Permission),
	}
}

func (m *mockDriveService) ListFiles(ctx context.Context, query string, fields string, orderBy string) ([]*drive.File, error) {
	m.queries = append(m.queries, query)
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.files, nil
}

func (m *mockDriveService) GetFile(ctx context.Context, fileID string, fields string) (*drive.File, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.links != nil {
		return m.links, nil
	}
	return &drive.File{
		Id:             fileID,
		WebViewLink:    fmt.Sprintf("https://drive.google.com/file/d/%s/view", fileID),
		WebContentLink: fmt.Sprintf("https://drive.google.com/uc?id=%s&export=download", fileID),
	}, nil
}

func (m *mockDriveService) DeleteFile(ctx context.Context, fileID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedFileIDs = append(m.deletedFileIDs, fileID)
	return nil
}

func (m *mockDriveService) UploadFile(ctx context.Context, fileName, mimeType, folderID string, content io.Reader) (*drive.File, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	m.uploaded[fileName] = data
	return &drive.File{
		Id:       "uploaded-file-id",
		Name:     fileName,
		MimeType: mimeType,
		Size:     int64(len(data)),
	}, nil
}

func (m *mockDriveService) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	if m.permissionErr != nil {
		return m.permissionErr
	}
	m.permissions[fileID] = permission
	return nil
}

func newTestStore(t *testing.T, mock *mockDriveService) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), "", "test-folder-id", WithDriveService(mock))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestStore_Upload(t *testing.T) {
	mock := newMockDriveService()
	store := newTestStore(t, mock)

	handle, err := store.Upload(context.Background(), "My_ Song_Test.mp3", []byte("mp3 data"), distribution.MimeTypeMP3)
	if err != nil {
		t.Fatalf("Upload() unexpected error: %v", err)
	}

	if handle.Backend != distribution.BackendDrive {
		t.Errorf("Backend = %q, want %q", handle.Backend, distribution.BackendDrive)
	}
	if handle.ID != "uploaded-file-id" || handle.Key != "My_ Song_Test.mp3" || handle.Bucket != "test-folder-id" {
		t.Errorf("unexpected handle: %+v", handle)
	}
	if string(mock.uploaded["My_ Song_Test.mp3"]) != "mp3 data" {
		t.Errorf("uploaded content = %q, want %q", mock.uploaded["My_ Song_Test.mp3"], "mp3 data")
	}

	perm, ok := mock.permissions["uploaded-file-id"]
	if !ok {
		t.Fatal("expected a sharing permission to be created")
	}
	if perm.Type != "anyone" || perm.Role != "reader" {
		t.Errorf("permission = %s/%s, want anyone/reader", perm.Type, perm.Role)
	}
	if len(mock.deletedFileIDs) != 0 {
		t.Errorf("expected no deletions, got %v", mock.deletedFileIDs)
	}
}

func TestStore_Upload_ReplacesExistingFile(t *testing.T) {
	mock := newMockDriveService()
	mock.files = []*drive.File{{Id: "old-file-id", Name: "song.mp3", Size: 2048}}
	store := newTestStore(t, mock)

	if _, err := store.Upload(context.Background(), "song.mp3", []byte("new"), distribution.MimeTypeMP3); err != nil {
		t.Fatalf("Upload() unexpected error: %v", err)
	}

	if len(mock.deletedFileIDs) != 1 || mock.deletedFileIDs[0] != "old-file-id" {
		t.Errorf("deleted = %v, want [old-file-id]", mock.deletedFileIDs)
	}
}

func TestStore_Upload_Errors(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(m *mockDriveService)
		errMsg string
	}{
		{
			name:   "lookup fails",
			setup:  func(m *mockDriveService) { m.listErr = fmt.Errorf("googleapi: Error 403") },
			errMsg: "failed to check for existing file",
		},
		{
			name: "delete of existing fails",
			setup: func(m *mockDriveService) {
				m.files = []*drive.File{{Id: "old", Name: "song.mp3"}}
				m.deleteErr = fmt.Errorf("googleapi: Error 404")
			},
			errMsg: "failed to delete existing file",
		},
		{
			name:   "upload fails",
			setup:  func(m *mockDriveService) { m.uploadErr = fmt.Errorf("googleapi: Error 507: storage quota exceeded") },
			errMsg: "failed to upload song.mp3",
		},
		{
			name:   "permission fails",
			setup:  func(m *mockDriveService) { m.permissionErr = fmt.Errorf("permission API error") },
			errMsg: "failed to set public sharing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDriveService()
			tt.setup(mock)
			store := newTestStore(t, mock)

			_, err := store.Upload(context.Background(), "song.mp3", []byte("x"), distribution.MimeTypeMP3)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestStore_FindFileByName_EscapesQuery(t *testing.T) {
	mock := newMockDriveService()
	store := newTestStore(t, mock)

	found, err := store.FindFileByName(context.Background(), "Don't Stop.mp3")
	if err != nil {
		t.Fatalf("FindFileByName() unexpected error: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for missing file, got %+v", found)
	}

	want := `name = 'Don\'t Stop.mp3' and 'test-folder-id' in parents and trashed = false`
	if len(mock.queries) != 1 || mock.queries[0] != want {
		t.Errorf("query = %v, want %q", mock.queries, want)
	}
}

func TestStore_PublicURL(t *testing.T) {
	tests := []struct {
		name    string
		links   *drive.File
		getErr  error
		handle  *distribution.ObjectHandle
		want    string
		wantErr bool
	}{
		{
			name:   "prefers content link",
			handle: &distribution.ObjectHandle{ID: "file-1"},
			want:   "https://drive.google.com/uc?id=file-1&export=download",
		},
		{
			name:   "falls back to view link",
			links:  &drive.File{WebViewLink: "https://drive.google.com/file/d/file-1/view"},
			handle: &distribution.ObjectHandle{ID: "file-1"},
			want:   "https://drive.google.com/file/d/file-1/view",
		},
		{
			name:   "builds link when none returned",
			links:  &drive.File{},
			handle: &distribution.ObjectHandle{ID: "file-1"},
			want:   "https://drive.google.com/uc?id=file-1&export=download",
		},
		{
			name:    "missing file id",
			handle:  &distribution.ObjectHandle{},
			wantErr: true,
		},
		{
			name:    "api error",
			getErr:  fmt.Errorf("googleapi: Error 500"),
			handle:  &distribution.ObjectHandle{ID: "file-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDriveService()
			mock.links = tt.links
			mock.getErr = tt.getErr
			store := newTestStore(t, mock)

			got, err := store.PublicURL(context.Background(), tt.handle)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("PublicURL() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PublicURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantZero bool
	}{
		{name: "valid RFC3339 time", input: "2025-12-28T10:00:00Z", wantZero: false},
		{name: "invalid time format", input: "invalid", wantZero: true},
		{name: "empty string", input: "", wantZero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseTime(tt.input)
			if tt.wantZero && !result.IsZero() {
				t.Error("expected zero time, got non-zero")
			}
			if !tt.wantZero && result.IsZero() {
				t.Error("expected non-zero time, got zero")
			}
		})
	}
}
