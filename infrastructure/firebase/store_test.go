package firebase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"yt-mp3-service/domain/distribution"
)

// mockBucketService is an in-memory bucket for testing
type mockBucketService struct {
	objects      map[string][]byte
	contentTypes map[string]string
	metadata     map[string]map[string]string
	writeErr     error
	metadataErr  error
}

func newMockBucketService() *mockBucketService {
	return &mockBucketService{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
		metadata:     make(map[string]map[string]string),
	}
}

func (m *mockBucketService) Write(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.objects[key] = data
	m.contentTypes[key] = contentType
	m.metadata[key] = metadata
	return nil
}

func (m *mockBucketService) Metadata(ctx context.Context, key string) (map[string]string, error) {
	if m.metadataErr != nil {
		return nil, m.metadataErr
	}
	md, ok := m.metadata[key]
	if !ok {
		return nil, errors.New("storage: object doesn't exist")
	}
	return md, nil
}

func newTestStore(t *testing.T, bucket *mockBucketService) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), "test-app.appspot.com", "",
		WithBucketService(bucket),
		WithTokenGenerator(func() string { return "token-123" }),
	)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestStore_UploadAndPublicURL(t *testing.T) {
	bucket := newMockBucketService()
	store := newTestStore(t, bucket)

	handle, err := store.Upload(context.Background(), "My_ Song_Test.mp3", []byte("mp3"), distribution.MimeTypeMP3)
	if err != nil {
		t.Fatalf("Upload() unexpected error: %v", err)
	}
	if handle.Backend != distribution.BackendFirebase || handle.Key != "My_ Song_Test.mp3" || handle.Bucket != "test-app.appspot.com" {
		t.Errorf("unexpected handle: %+v", handle)
	}
	if bucket.contentTypes["My_ Song_Test.mp3"] != "audio/mpeg" {
		t.Errorf("content type = %q, want audio/mpeg", bucket.contentTypes["My_ Song_Test.mp3"])
	}
	if bucket.metadata["My_ Song_Test.mp3"][DownloadTokensKey] != "token-123" {
		t.Errorf("download token metadata = %v", bucket.metadata["My_ Song_Test.mp3"])
	}

	got, err := store.PublicURL(context.Background(), handle)
	if err != nil {
		t.Fatalf("PublicURL() unexpected error: %v", err)
	}
	want := "https://firebasestorage.googleapis.com/v0/b/test-app.appspot.com/o/My_%20Song_Test.mp3?alt=media&token=token-123"
	if got != want {
		t.Errorf("PublicURL() = %q, want %q", got, want)
	}
}

func TestDownloadURL(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{
			name: "plain key",
			key:  "song.mp3",
			want: "https://firebasestorage.googleapis.com/v0/b/b/o/song.mp3?alt=media&token=t",
		},
		{
			name: "nested key escapes slash",
			key:  "audio/song.mp3",
			want: "https://firebasestorage.googleapis.com/v0/b/b/o/audio%2Fsong.mp3?alt=media&token=t",
		},
		{
			name: "question mark escaped",
			key:  "why?.mp3",
			want: "https://firebasestorage.googleapis.com/v0/b/b/o/why%3F.mp3?alt=media&token=t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DownloadURL("b", tt.key, "t"); got != tt.want {
				t.Errorf("DownloadURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStore_PublicURL_Errors(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(b *mockBucketService)
		handle *distribution.ObjectHandle
		errMsg string
	}{
		{
			name:   "missing key",
			setup:  func(b *mockBucketService) {},
			handle: &distribution.ObjectHandle{},
			errMsg: "object key is required",
		},
		{
			name:   "metadata error",
			setup:  func(b *mockBucketService) { b.metadataErr = errors.New("googleapi: Error 403") },
			handle: &distribution.ObjectHandle{Key: "song.mp3"},
			errMsg: "failed to read metadata",
		},
		{
			name: "no token",
			setup: func(b *mockBucketService) {
				b.metadata["song.mp3"] = map[string]string{}
			},
			handle: &distribution.ObjectHandle{Key: "song.mp3"},
			errMsg: "has no download token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket := newMockBucketService()
			tt.setup(bucket)
			store := newTestStore(t, bucket)

			_, err := store.PublicURL(context.Background(), tt.handle)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestStore_PublicURL_UsesFirstToken(t *testing.T) {
	bucket := newMockBucketService()
	bucket.metadata["song.mp3"] = map[string]string{DownloadTokensKey: "first, second"}
	store := newTestStore(t, bucket)

	got, err := store.PublicURL(context.Background(), &distribution.ObjectHandle{Key: "song.mp3"})
	if err != nil {
		t.Fatalf("PublicURL() unexpected error: %v", err)
	}
	if !strings.HasSuffix(got, "token=first") {
		t.Errorf("PublicURL() = %q, want first token", got)
	}
}

func TestStore_UploadError(t *testing.T) {
	bucket := newMockBucketService()
	bucket.writeErr = errors.New("googleapi: Error 401")
	store := newTestStore(t, bucket)

	_, err := store.Upload(context.Background(), "song.mp3", []byte("x"), distribution.MimeTypeMP3)
	if err == nil || !strings.Contains(err.Error(), "failed to upload song.mp3") {
		t.Errorf("Upload() error = %v, want upload failure", err)
	}
}

func TestNewStore_RequiresBucket(t *testing.T) {
	if _, err := NewStore(context.Background(), "", "", WithBucketService(newMockBucketService())); err == nil {
		t.Error("expected error for empty bucket name")
	}
}

func TestNewStore_DefaultTokenIsUUID(t *testing.T) {
	store, err := NewStore(context.Background(), "b", "", WithBucketService(newMockBucketService()))
	if err != nil {
		t.Fatalf("NewStore() unexpected error: %v", err)
	}
	if tok := store.newToken(); len(tok) != 36 {
		t.Errorf("token = %q, want a UUID string", tok)
	}
}
