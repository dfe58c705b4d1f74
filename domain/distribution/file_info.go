package distribution

import "time"

// FileInfo represents metadata about a file held by a storage backend
type FileInfo struct {
	ID          string
	Name        string
	MimeType    string
	Size        int64
	CreatedTime time.Time
}
