package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"yt-mp3-service/application/conversion"
	"yt-mp3-service/domain/media"
)

// Client-facing messages for rejected requests
const (
	MsgInvalidURL    = "Invalid YouTube URL provided."
	MsgNoAudioFormat = "No suitable audio format found."
)

// maxBodyBytes bounds the JSON request body
const maxBodyBytes = 1 << 20

// Converter runs the conversion pipeline for one URL
type Converter interface {
	Convert(ctx context.Context, rawURL string) (*conversion.Result, error)
}

// ConvertHandler serves the conversion endpoint
type ConvertHandler struct {
	converter Converter
	logger    *slog.Logger
}

// NewConvertHandler creates a new conversion endpoint handler
func NewConvertHandler(converter Converter, logger *slog.Logger) *ConvertHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ConvertHandler{converter: converter, logger: logger}
}

// ServeHTTP decodes {"url": "..."} and replies with the public URL as plain text
func (h *ConvertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req media.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		// An unreadable body carries no URL and fails validation below
		h.logger.Debug("failed to decode request body", "err", err)
		req = media.Request{}
	}

	result, err := h.converter.Convert(r.Context(), req.URL)
	if err != nil {
		h.writeError(w, req.URL, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.PublicURL))
}

func (h *ConvertHandler) writeError(w http.ResponseWriter, url string, err error) {
	switch {
	case errors.Is(err, media.ErrInvalidURL):
		http.Error(w, MsgInvalidURL, http.StatusBadRequest)
	case errors.Is(err, media.ErrNoAudioFormat):
		http.Error(w, MsgNoAudioFormat, http.StatusBadRequest)
	default:
		attrs := []any{"url", url, "err", err}
		var stageErr *conversion.StageError
		if errors.As(err, &stageErr) {
			attrs = append(attrs, "stage", string(stageErr.Stage))
		}
		h.logger.Error("conversion failed", attrs...)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// HealthHandler reports liveness
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
