package distribution

import "context"

// Backend names accepted by the storage configuration
const (
	BackendFirebase = "firebase"
	BackendDrive    = "drive"
	BackendSupabase = "supabase"
)

// ObjectStore defines the interface for cloud object storage operations
// This is a port that can be implemented by different infrastructure adapters
type ObjectStore interface {
	// Upload stores data as a single object under key
	Upload(ctx context.Context, key string, data []byte, contentType string) (*ObjectHandle, error)

	// PublicURL resolves the public download URL of an uploaded object
	PublicURL(ctx context.Context, handle *ObjectHandle) (string, error)
}
