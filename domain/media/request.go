package media

import (
	"errors"
	"path/filepath"
	"strings"
)

// Errors reported before any side effect takes place
var (
	ErrInvalidURL    = errors.New("invalid YouTube URL provided")
	ErrNoAudioFormat = errors.New("no suitable audio format found")
)

// OutputExtension is appended to the sanitized title to form the scratch filename
const OutputExtension = ".mp3"

// supportedURLPatterns are the substrings a request URL must contain.
// This is a containment check, not URL parsing.
var supportedURLPatterns = []string{
	"youtu.be/",
	"youtube.com/watch?v=",
}

// Request represents a request to convert the audio of a video into an MP3
type Request struct {
	URL string `json:"url"`
}

// NewRequest creates a new Request with validation
func NewRequest(rawURL string) (*Request, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	return &Request{URL: rawURL}, nil
}

// ValidateURL returns ErrInvalidURL unless url references a supported host pattern
func ValidateURL(url string) error {
	if url == "" {
		return ErrInvalidURL
	}
	for _, pattern := range supportedURLPatterns {
		if strings.Contains(url, pattern) {
			return nil
		}
	}
	return ErrInvalidURL
}

// OutputFilename returns the scratch/object filename for a stream title
func OutputFilename(title string) string {
	return SanitizeFilename(title) + OutputExtension
}

// OutputPath returns the full scratch path for a stream title
func OutputPath(scratchDir, title string) string {
	return filepath.Join(scratchDir, OutputFilename(title))
}
