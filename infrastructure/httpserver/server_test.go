package httpserver

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yt-mp3-service/application/conversion"
)

func testConfig() Config {
	return Config{
		Addr:              "127.0.0.1:0",
		Route:             "/api/mp3",
		ShutdownTimeout:   time.Second,
		ReadHeaderTimeout: time.Second,
		IdleTimeout:       time.Second,
	}
}

func TestServer_Routes(t *testing.T) {
	conv := &mockConverter{result: &conversion.Result{PublicURL: "https://cdn.example.com/a.mp3"}}
	srv := New(testConfig(), conv, nil)
	h := srv.Handler()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "convert", method: http.MethodPost, path: "/api/mp3", body: `{"url":"https://youtu.be/a"}`, wantStatus: http.StatusOK},
		{name: "convert wrong method", method: http.MethodGet, path: "/api/mp3", wantStatus: http.StatusMethodNotAllowed},
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "unknown path", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_CustomRoute(t *testing.T) {
	cfg := testConfig()
	cfg.Route = "/convert"
	conv := &mockConverter{result: &conversion.Result{PublicURL: "u"}}
	h := New(cfg, conv, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(`{"url":"https://youtu.be/a"}`)))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !conv.called {
		t.Error("expected converter to be called on custom route")
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	srv := New(testConfig(), &mockConverter{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "OK" {
		t.Errorf("health = %d %q, want 200 OK", resp.StatusCode, body)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() returned error after shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_RunListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()

	cfg := testConfig()
	cfg.Addr = ln.Addr().String()

	err = New(cfg, &mockConverter{}, nil).Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "failed to listen") {
		t.Errorf("Run() error = %v, want listen failure", err)
	}
}
