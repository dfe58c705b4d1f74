package firebase

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"yt-mp3-service/domain/distribution"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// DownloadTokensKey is the object metadata key Firebase reads download tokens from
const DownloadTokensKey = "firebaseStorageDownloadTokens"

// DownloadHost serves Firebase Storage download URLs
const DownloadHost = "https://firebasestorage.googleapis.com"

// BucketService defines the bucket operations used by Store
// This allows mocking Cloud Storage in tests
type BucketService interface {
	Write(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error
	Metadata(ctx context.Context, key string) (map[string]string, error)
}

// GCSBucketService is the production implementation using Cloud Storage
type GCSBucketService struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// Write stores data as a single object
func (s *GCSBucketService) Write(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Metadata returns the custom metadata of an object
func (s *GCSBucketService) Metadata(ctx context.Context, key string) (map[string]string, error) {
	attrs, err := s.bucket.Object(key).Attrs(ctx)
	if err != nil {
		return nil, err
	}
	return attrs.Metadata, nil
}

// Close releases the underlying client
func (s *GCSBucketService) Close() error {
	return s.client.Close()
}

// Store implements distribution.ObjectStore using a Firebase Storage bucket
type Store struct {
	bucketName string
	bucket     BucketService
	newToken   func() string
}

// StoreOption is a functional option for configuring Store
type StoreOption func(*Store)

// WithBucketService sets a custom bucket service (for testing)
func WithBucketService(svc BucketService) StoreOption {
	return func(s *Store) {
		s.bucket = svc
	}
}

// WithTokenGenerator sets the download token generator (for testing)
func WithTokenGenerator(gen func() string) StoreOption {
	return func(s *Store) {
		s.newToken = gen
	}
}

// NewStore creates a new Firebase Storage store.
// An empty credentialsPath uses Application Default Credentials.
func NewStore(ctx context.Context, bucketName, credentialsPath string, opts ...StoreOption) (*Store, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("firebase bucket is required")
	}

	s := &Store{
		bucketName: bucketName,
		newToken:   uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.bucket == nil {
		var clientOpts []option.ClientOption
		if credentialsPath != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsPath))
		}
		client, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("unable to create storage client: %w", err)
		}
		s.bucket = &GCSBucketService{client: client, bucket: client.Bucket(bucketName)}
	}

	return s, nil
}

// Upload implements distribution.ObjectStore.
// Uploading to an existing key overwrites the object.
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (*distribution.ObjectHandle, error) {
	metadata := map[string]string{
		DownloadTokensKey: s.newToken(),
	}

	if err := s.bucket.Write(ctx, key, data, contentType, metadata); err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &distribution.ObjectHandle{
		Backend: distribution.BackendFirebase,
		Bucket:  s.bucketName,
		Key:     key,
	}, nil
}

// PublicURL implements distribution.ObjectStore
func (s *Store) PublicURL(ctx context.Context, handle *distribution.ObjectHandle) (string, error) {
	if handle == nil || handle.Key == "" {
		return "", fmt.Errorf("object key is required")
	}

	metadata, err := s.bucket.Metadata(ctx, handle.Key)
	if err != nil {
		return "", fmt.Errorf("failed to read metadata of %s: %w", handle.Key, err)
	}

	token := firstToken(metadata[DownloadTokensKey])
	if token == "" {
		return "", fmt.Errorf("object %s has no download token", handle.Key)
	}

	return DownloadURL(s.bucketName, handle.Key, token), nil
}

// DownloadURL builds a Firebase Storage download URL
func DownloadURL(bucket, key, token string) string {
	return fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media&token=%s",
		DownloadHost, bucket, url.PathEscape(key), url.QueryEscape(token))
}

// firstToken picks the first entry of a comma separated token list
func firstToken(tokens string) string {
	first, _, _ := strings.Cut(tokens, ",")
	return strings.TrimSpace(first)
}

// Close releases the storage client if the store owns one
func (s *Store) Close() error {
	if c, ok := s.bucket.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Ensure Store implements distribution.ObjectStore
var _ distribution.ObjectStore = (*Store)(nil)
