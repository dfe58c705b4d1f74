package media

import "context"

// StreamResolver defines the interface for fetching video metadata and stream formats
// This is a port that can be implemented by different infrastructure adapters
type StreamResolver interface {
	// GetInfo returns the title and available formats for the video at url
	GetInfo(ctx context.Context, url string) (*StreamInfo, error)
}

// TranscodeRequest describes one transcoding job
type TranscodeRequest struct {
	SourceURL    string
	InputFormat  string // Container of the source, e.g. "webm"
	AudioCodec   string // Encoder, e.g. "libmp3lame"
	OutputFormat string // Container of the output, e.g. "mp3"
	OutputPath   string
}

// EventKind identifies a transcoder event
type EventKind int

const (
	EventEnd EventKind = iota + 1
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventEnd:
		return "end"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// TranscodeEvent is delivered by a Transcoder; Err is set for EventError
type TranscodeEvent struct {
	Kind EventKind
	Err  error
}

// Transcoder defines the interface for transcoding a remote stream into a local file
type Transcoder interface {
	// Transcode starts the job and returns a channel that delivers exactly one
	// terminal event (EventEnd or EventError) before it is closed.
	Transcode(ctx context.Context, req TranscodeRequest) <-chan TranscodeEvent
}

// Filesystem defines the file operations used around the scratch directory
type Filesystem interface {
	Exists(path string) bool
	MkdirAll(path string) error
	ReadFile(path string) ([]byte, error)
	Remove(path string) error
	RemoveAll(path string) error
}
