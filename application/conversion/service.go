package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"yt-mp3-service/domain/distribution"
	"yt-mp3-service/domain/media"
)

// Default transcoder hints
const (
	DefaultInputFormat  = "webm"
	DefaultAudioCodec   = "libmp3lame"
	DefaultOutputFormat = "mp3"
)

// Options configures a Service
type Options struct {
	ScratchDir   string
	InputFormat  string
	AudioCodec   string
	OutputFormat string
}

// Result contains the result of a successful conversion
type Result struct {
	Title     string
	Key       string
	PublicURL string
	Size      int64
}

// Service converts the audio of a video into an MP3 and publishes it to an object store
type Service struct {
	resolver   media.StreamResolver
	transcoder media.Transcoder
	store      distribution.ObjectStore
	fs         media.Filesystem
	opts       Options
	logger     *slog.Logger
}

// NewService creates a new conversion service
func NewService(
	resolver media.StreamResolver,
	transcoder media.Transcoder,
	store distribution.ObjectStore,
	fs media.Filesystem,
	opts Options,
	logger *slog.Logger,
) *Service {
	if opts.ScratchDir == "" {
		opts.ScratchDir = "temp"
	}
	if opts.InputFormat == "" {
		opts.InputFormat = DefaultInputFormat
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = DefaultAudioCodec
	}
	if opts.OutputFormat == "" {
		opts.OutputFormat = DefaultOutputFormat
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		resolver:   resolver,
		transcoder: transcoder,
		store:      store,
		fs:         fs,
		opts:       opts,
		logger:     logger,
	}
}

// Convert runs the full pipeline for one URL.
//
// Validation and missing-audio failures return media.ErrInvalidURL and
// media.ErrNoAudioFormat. Later failures return a *StageError. The scratch file
// is only removed once the upload succeeded.
func (s *Service) Convert(ctx context.Context, rawURL string) (*Result, error) {
	req, err := media.NewRequest(rawURL)
	if err != nil {
		return nil, err
	}

	info, err := s.resolver.GetInfo(ctx, req.URL)
	if err != nil {
		return nil, stageErr(StageResolve, err)
	}

	format, ok := media.ChooseFormat(info.Formats, media.ChooseOptions{
		Quality: media.HighestAudio,
		Filter:  media.AudioOnly,
	})
	if !ok {
		return nil, media.ErrNoAudioFormat
	}

	fileName := media.OutputFilename(info.Title)
	scratchPath := media.OutputPath(s.opts.ScratchDir, info.Title)

	if !s.fs.Exists(s.opts.ScratchDir) {
		if err := s.fs.MkdirAll(s.opts.ScratchDir); err != nil {
			return nil, stageErr(StageTranscode, fmt.Errorf("failed to create scratch directory: %w", err))
		}
	}

	s.logger.Info("transcoding audio stream",
		"title", info.Title,
		"itag", format.Itag,
		"audio_bitrate", format.AudioBitrate,
		"output", scratchPath,
	)

	if err := s.transcode(ctx, format.URL, scratchPath); err != nil {
		return nil, stageErr(StageTranscode, err)
	}
	s.logger.Info("conversion finished", "output", scratchPath)

	data, err := s.fs.ReadFile(scratchPath)
	if err != nil {
		return nil, stageErr(StageRead, err)
	}

	handle, err := s.store.Upload(ctx, fileName, data, distribution.MimeTypeMP3)
	if err != nil {
		return nil, stageErr(StageUpload, err)
	}
	s.logger.Info("uploaded file", "key", handle.Key, "backend", handle.Backend, "size", len(data))

	s.cleanup(scratchPath)

	publicURL, err := s.store.PublicURL(ctx, handle)
	if err != nil {
		return nil, stageErr(StagePublish, err)
	}

	return &Result{
		Title:     info.Title,
		Key:       handle.Key,
		PublicURL: publicURL,
		Size:      int64(len(data)),
	}, nil
}

// transcode waits for the terminal event of one transcoder job
func (s *Service) transcode(ctx context.Context, sourceURL, outputPath string) error {
	events := s.transcoder.Transcode(ctx, media.TranscodeRequest{
		SourceURL:    sourceURL,
		InputFormat:  s.opts.InputFormat,
		AudioCodec:   s.opts.AudioCodec,
		OutputFormat: s.opts.OutputFormat,
		OutputPath:   outputPath,
	})

	for ev := range events {
		switch ev.Kind {
		case media.EventEnd:
			return nil
		case media.EventError:
			if ev.Err == nil {
				return errors.New("transcoder reported an error")
			}
			return ev.Err
		}
	}

	return errors.New("transcoder stopped without a terminal event")
}

// cleanup removes the scratch file and the whole scratch directory.
// The directory is shared, so concurrent requests may lose their files.
func (s *Service) cleanup(scratchPath string) {
	if err := s.fs.Remove(scratchPath); err != nil {
		s.logger.Warn("failed to remove scratch file", "path", scratchPath, "err", err)
	}
	if err := s.fs.RemoveAll(s.opts.ScratchDir); err != nil {
		s.logger.Warn("failed to remove scratch directory", "path", s.opts.ScratchDir, "err", err)
	}
}
