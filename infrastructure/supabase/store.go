package supabase

import (
	"bytes"
	"context"
	"fmt"

	"yt-mp3-service/domain/distribution"

	storage_go "github.com/supabase-community/storage-go"
	supabasego "github.com/supabase-community/supabase-go"
)

// StorageService defines the Supabase Storage operations used by Store
// This allows mocking the Supabase API in tests
type StorageService interface {
	Upload(bucket, path string, data []byte, contentType string) error
	PublicURL(bucket, path string) string
}

// SDKStorageService is the production implementation using supabase-go
type SDKStorageService struct {
	client *storage_go.Client
}

// Upload stores data at path, replacing any existing object
func (s *SDKStorageService) Upload(bucket, path string, data []byte, contentType string) error {
	upsert := true
	_, err := s.client.UploadFile(bucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	return err
}

// PublicURL returns the public URL of an object in a public bucket
func (s *SDKStorageService) PublicURL(bucket, path string) string {
	return s.client.GetPublicUrl(bucket, path).SignedURL
}

// Config holds the Supabase Storage settings
type Config struct {
	URL    string // Project URL, e.g. https://<ref>.supabase.co
	Key    string // Service role key
	Bucket string // Public bucket name
}

// Store implements distribution.ObjectStore using a Supabase Storage bucket
type Store struct {
	storage StorageService
	bucket  string
}

// StoreOption is a functional option for configuring Store
type StoreOption func(*Store)

// WithStorageService sets a custom storage service (for testing)
func WithStorageService(svc StorageService) StoreOption {
	return func(s *Store) {
		s.storage = svc
	}
}

// NewStore creates a new Supabase Storage store
func NewStore(cfg Config, opts ...StoreOption) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("supabase bucket is required")
	}

	s := &Store{bucket: cfg.Bucket}

	for _, opt := range opts {
		opt(s)
	}

	if s.storage == nil {
		if cfg.URL == "" || cfg.Key == "" {
			return nil, fmt.Errorf("supabase url and key are required")
		}
		client, err := supabasego.NewClient(cfg.URL, cfg.Key, nil)
		if err != nil {
			return nil, fmt.Errorf("initialize supabase SDK: %w", err)
		}
		s.storage = &SDKStorageService{client: client.Storage}
	}

	return s, nil
}

// Upload implements distribution.ObjectStore
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (*distribution.ObjectHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.storage.Upload(s.bucket, key, data, contentType); err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &distribution.ObjectHandle{
		Backend: distribution.BackendSupabase,
		Bucket:  s.bucket,
		Key:     key,
	}, nil
}

// PublicURL implements distribution.ObjectStore
func (s *Store) PublicURL(ctx context.Context, handle *distribution.ObjectHandle) (string, error) {
	if handle == nil || handle.Key == "" {
		return "", fmt.Errorf("object key is required")
	}

	u := s.storage.PublicURL(s.bucket, handle.Key)
	if u == "" {
		return "", fmt.Errorf("no public url for %s", handle.Key)
	}
	return u, nil
}

// Ensure Store implements distribution.ObjectStore
var _ distribution.ObjectStore = (*Store)(nil)
