package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yt-mp3-service/domain/media"
	"yt-mp3-service/infrastructure/httpserver"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion service",
	Long: `Start the HTTP service.

POST {"url": "<video url>"} to the configured route (default /api/mp3).
The response body is the public URL of the uploaded MP3.
GET /health reports liveness.

The server stops gracefully on SIGINT or SIGTERM.

Example:
  yt-mp3-service serve
  yt-mp3-service serve --addr :9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}

// ServerRunner runs until ctx is cancelled
type ServerRunner interface {
	Run(ctx context.Context) error
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := BuildDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	server := httpserver.New(httpserver.Config{
		Addr:              cfg.Server.Addr,
		Route:             cfg.Server.Route,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, deps.Service, deps.Logger)

	return RunServeWithDependencies(ctx, deps.Transcoder, server, deps.Logger)
}

// RunServeWithDependencies checks ffmpeg and runs server until ctx is cancelled
func RunServeWithDependencies(
	ctx context.Context,
	transcoder media.Transcoder,
	server ServerRunner,
	logger *slog.Logger,
) error {
	if err := verifyTranscoder(ctx, transcoder); err != nil {
		return err
	}

	if err := server.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

// verifyTranscoder checks ffmpeg is available if the transcoder supports it
func verifyTranscoder(ctx context.Context, transcoder media.Transcoder) error {
	verifiable, ok := transcoder.(interface{ VerifyInstalled(context.Context) error })
	if !ok {
		return nil
	}
	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
		return fmt.Errorf("ffmpeg verification failed: %w", err)
	}
	return nil
}
