package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"yt-mp3-service/application/conversion"
	"yt-mp3-service/domain/distribution"
	"yt-mp3-service/infrastructure/config"
	"yt-mp3-service/infrastructure/drive"
	"yt-mp3-service/infrastructure/ffmpeg"
	"yt-mp3-service/infrastructure/filesystem"
	"yt-mp3-service/infrastructure/firebase"
	"yt-mp3-service/infrastructure/logging"
	"yt-mp3-service/infrastructure/supabase"
	"yt-mp3-service/infrastructure/youtube"
)

// Dependencies holds the production collaborators built from configuration
type Dependencies struct {
	Service    *conversion.Service
	Transcoder *ffmpeg.Transcoder
	Logger     *slog.Logger
	closers    []func() error
}

// Close releases clients opened by BuildDependencies
func (d *Dependencies) Close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildDependencies wires the conversion service for cfg
func BuildDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	store, closer, err := NewObjectStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	transcoder := ffmpeg.NewTranscoder(ffmpeg.WithFFmpegPath(cfg.FFmpeg.Path))

	service := conversion.NewService(
		youtube.NewResolver(youtube.WithLogger(logger)),
		transcoder,
		store,
		filesystem.NewLocal(),
		conversion.Options{
			ScratchDir:   cfg.Paths.ScratchDirectory,
			InputFormat:  cfg.FFmpeg.InputFormat,
			AudioCodec:   cfg.FFmpeg.AudioCodec,
			OutputFormat: cfg.FFmpeg.OutputFormat,
		},
		logger,
	)

	deps := &Dependencies{
		Service:    service,
		Transcoder: transcoder,
		Logger:     logger,
	}
	if closer != nil {
		deps.closers = append(deps.closers, closer)
	}
	return deps, nil
}

// NewObjectStore creates the object store selected by storage.backend.
// The returned closer may be nil.
func NewObjectStore(ctx context.Context, cfg *config.Config) (distribution.ObjectStore, func() error, error) {
	switch cfg.Storage.Backend {
	case config.BackendFirebase:
		store, err := firebase.NewStore(ctx, cfg.Firebase.Bucket, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create firebase store: %w", err)
		}
		return store, store.Close, nil

	case config.BackendDrive:
		if cfg.Google.TokenFile != "" {
			store, err := drive.NewStoreWithOAuth(ctx, drive.OAuthConfig{
				CredentialsFile: cfg.Google.CredentialsFile,
				TokenFile:       cfg.Google.TokenFile,
			}, cfg.Google.FolderID)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create drive store: %w", err)
			}
			return store, nil, nil
		}
		store, err := drive.NewStore(ctx, cfg.Google.CredentialsFile, cfg.Google.FolderID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create drive store: %w", err)
		}
		return store, nil, nil

	case config.BackendSupabase:
		store, err := supabase.NewStore(supabase.Config{
			URL:    cfg.Supabase.URL,
			Key:    cfg.Supabase.Key,
			Bucket: cfg.Supabase.Bucket,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create supabase store: %w", err)
		}
		return store, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
