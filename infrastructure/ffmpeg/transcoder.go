package ffmpeg

import (
	"context"
	"fmt"

	"yt-mp3-service/domain/media"
)

// Transcoder implements media.Transcoder using ffmpeg
type Transcoder struct {
	ffmpegPath string
	runner     CommandRunner
}

// TranscoderOption is a functional option for configuring Transcoder
type TranscoderOption func(*Transcoder)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) TranscoderOption {
	return func(t *Transcoder) {
		if path != "" {
			t.ffmpegPath = path
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) TranscoderOption {
	return func(t *Transcoder) {
		t.runner = runner
	}
}

// NewTranscoder creates a new FFmpeg-based transcoder
func NewTranscoder(opts ...TranscoderOption) *Transcoder {
	t := &Transcoder{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Args returns the ffmpeg arguments for a transcode request
func Args(req media.TranscodeRequest) []string {
	var args []string
	if req.InputFormat != "" {
		args = append(args, "-f", req.InputFormat)
	}
	args = append(args,
		"-i", req.SourceURL,
		"-vn", // No video
	)
	if req.AudioCodec != "" {
		args = append(args, "-acodec", req.AudioCodec)
	}
	if req.OutputFormat != "" {
		args = append(args, "-f", req.OutputFormat)
	}
	args = append(args,
		"-y", // Overwrite output file if it exists
		req.OutputPath,
	)
	return args
}

// Transcode implements media.Transcoder.
// ffmpeg runs in its own goroutine; the returned channel receives one terminal event.
func (t *Transcoder) Transcode(ctx context.Context, req media.TranscodeRequest) <-chan media.TranscodeEvent {
	events := make(chan media.TranscodeEvent, 1)

	go func() {
		defer close(events)

		if err := t.runner.Run(ctx, t.ffmpegPath, Args(req)...); err != nil {
			events <- media.TranscodeEvent{
				Kind: media.EventError,
				Err:  fmt.Errorf("ffmpeg transcode failed: %w", err),
			}
			return
		}

		events <- media.TranscodeEvent{Kind: media.EventEnd}
	}()

	return events
}

// VerifyInstalled checks that ffmpeg is available
func (t *Transcoder) VerifyInstalled(ctx context.Context) error {
	_, err := t.runner.Output(ctx, t.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Transcoder implements media.Transcoder
var _ media.Transcoder = (*Transcoder)(nil)
