package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"yt-mp3-service/domain/media"

	"github.com/kkdai/youtube/v2"
)

// VideoClient defines the subset of the YouTube client used by the resolver
// This allows mocking the YouTube API in tests
type VideoClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error)
}

// muxedAudioBitrates holds the audio bitrate of progressive formats whose
// reported bitrate also covers the video track
var muxedAudioBitrates = map[int]int{
	18: 96000,
	22: 192000,
}

// Resolver implements media.StreamResolver using github.com/kkdai/youtube/v2
type Resolver struct {
	client VideoClient
	logger *slog.Logger
}

// ResolverOption is a functional option for configuring Resolver
type ResolverOption func(*Resolver)

// WithVideoClient sets a custom video client (for testing)
func WithVideoClient(client VideoClient) ResolverOption {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithLogger sets the logger used to report skipped formats
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a new YouTube stream resolver
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{}

	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		r.client = &youtube.Client{HTTPClient: newHTTPClient()}
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}

	return r
}

// newHTTPClient bounds connection setup and response headers; there is no
// overall request timeout
func newHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: tr}
}

// GetInfo implements media.StreamResolver
func (r *Resolver) GetInfo(ctx context.Context, url string) (*media.StreamInfo, error) {
	video, err := r.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}

	info := &media.StreamInfo{
		ID:     video.ID,
		Title:  video.Title,
		Author: video.Author,
	}

	var audioFormats int
	var streamErrs []error

	for i := range video.Formats {
		f := &video.Formats[i]
		format := toStreamFormat(f)

		// Stream URLs of audio formats may be ciphered; only those can be selected.
		// A format that cannot be deciphered is kept but no longer selectable.
		if format.AudioOnly {
			audioFormats++
			streamURL, err := r.client.GetStreamURLContext(ctx, video, f)
			if err != nil {
				err = fmt.Errorf("failed to resolve stream url for itag %d: %w", f.ItagNo, err)
				r.logger.Warn("skipping audio format", "video", video.ID, "itag", f.ItagNo, "err", err)
				streamErrs = append(streamErrs, err)
				format.AudioOnly = false
			} else {
				format.URL = streamURL
			}
		}

		info.Formats = append(info.Formats, format)
	}

	if audioFormats > 0 && len(streamErrs) == audioFormats {
		return nil, fmt.Errorf("no audio stream url could be resolved: %w", errors.Join(streamErrs...))
	}

	return info, nil
}

func toStreamFormat(f *youtube.Format) media.StreamFormat {
	audioOnly := isAudioOnly(f)

	label := f.QualityLabel
	if label == "" {
		label = f.AudioQuality
	}

	return media.StreamFormat{
		Itag:         f.ItagNo,
		URL:          f.URL,
		MimeType:     f.MimeType,
		QualityLabel: label,
		AudioOnly:    audioOnly,
		AudioBitrate: audioBitrate(f, audioOnly),
	}
}

func isAudioOnly(f *youtube.Format) bool {
	return strings.HasPrefix(f.MimeType, "audio/") && f.AudioChannels > 0
}

func audioBitrate(f *youtube.Format, audioOnly bool) int {
	if !audioOnly {
		return muxedAudioBitrates[f.ItagNo]
	}
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	return f.AverageBitrate
}

// Ensure Resolver implements media.StreamResolver
var _ media.StreamResolver = (*Resolver)(nil)
