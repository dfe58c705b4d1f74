//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yt-mp3-service/application/conversion"
	"yt-mp3-service/domain/media"
	"yt-mp3-service/infrastructure/ffmpeg"
	"yt-mp3-service/infrastructure/filesystem"
	"yt-mp3-service/infrastructure/firebase"
	"yt-mp3-service/infrastructure/httpserver"

	"github.com/cucumber/godog"
)

const testBucket = "test-bucket.appspot.com"

// fakeResolver returns a fixed video for any URL
type fakeResolver struct {
	info  *media.StreamInfo
	calls int
}

func (r *fakeResolver) GetInfo(ctx context.Context, url string) (*media.StreamInfo, error) {
	r.calls++
	if r.info == nil {
		return nil, errors.New("video unavailable")
	}
	return r.info, nil
}

// fakeFFmpeg stands in for the ffmpeg binary by writing the output file
type fakeFFmpeg struct {
	fail  bool
	calls int
}

func (f *fakeFFmpeg) Run(ctx context.Context, name string, args ...string) error {
	f.calls++
	out := args[len(args)-1]
	if f.fail {
		_ = os.WriteFile(out, []byte("partial"), 0644)
		return errors.New("exit status 1: Invalid data found when processing input")
	}
	return os.WriteFile(out, []byte("ID3 fake mp3 payload"), 0644)
}

func (f *fakeFFmpeg) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return []byte("ffmpeg version 6.1"), nil
}

// memoryBucket is an in-memory Firebase Storage bucket
type memoryBucket struct {
	objects  map[string][]byte
	metadata map[string]map[string]string
	failErr  error
}

func (b *memoryBucket) Write(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error {
	if b.failErr != nil {
		return b.failErr
	}
	b.objects[key] = data
	b.metadata[key] = metadata
	return nil
}

func (b *memoryBucket) Metadata(ctx context.Context, key string) (map[string]string, error) {
	md, ok := b.metadata[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return md, nil
}

type convertContext struct {
	tempDir    string
	scratchDir string
	resolver   *fakeResolver
	ffmpeg     *fakeFFmpeg
	bucket     *memoryBucket
	response   *httptest.ResponseRecorder
}

var SharedConvertContext = &convertContext{}

func InitializeConvertScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConvertContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "convert-test-*")
		if err != nil {
			return c, err
		}
		*testCtx = convertContext{
			tempDir:    tempDir,
			scratchDir: filepath.Join(tempDir, "temp"),
			resolver:   &fakeResolver{},
			ffmpeg:     &fakeFFmpeg{},
			bucket: &memoryBucket{
				objects:  make(map[string][]byte),
				metadata: make(map[string]map[string]string),
			},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a video titled "([^"]*)" with an audio-only stream$`, testCtx.aVideoWithAudioOnlyStream)
	ctx.Step(`^a video titled "([^"]*)" with no audio-only stream$`, testCtx.aVideoWithNoAudioOnlyStream)
	ctx.Step(`^the video cannot be resolved$`, testCtx.theVideoCannotBeResolved)
	ctx.Step(`^ffmpeg fails to transcode$`, testCtx.ffmpegFailsToTranscode)
	ctx.Step(`^the object store rejects uploads$`, testCtx.theObjectStoreRejectsUploads)
	ctx.Step(`^I request an MP3 for "([^"]*)"$`, testCtx.iRequestAnMP3For)
	ctx.Step(`^I send the body "([^"]*)"$`, testCtx.iSendTheBody)
	ctx.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	ctx.Step(`^the response body should be "([^"]*)"$`, testCtx.theResponseBodyShouldBe)
	ctx.Step(`^the response body should be a download URL for "([^"]*)"$`, testCtx.theResponseBodyShouldBeADownloadURLFor)
	ctx.Step(`^the object store should contain "([^"]*)"$`, testCtx.theObjectStoreShouldContain)
	ctx.Step(`^the object store should be empty$`, testCtx.theObjectStoreShouldBeEmpty)
	ctx.Step(`^the scratch directory should not exist$`, testCtx.theScratchDirectoryShouldNotExist)
	ctx.Step(`^the scratch file "([^"]*)" should exist$`, testCtx.theScratchFileShouldExist)
	ctx.Step(`^ffmpeg should not have been run$`, testCtx.ffmpegShouldNotHaveBeenRun)
	ctx.Step(`^the video should not have been resolved$`, testCtx.theVideoShouldNotHaveBeenResolved)
}

func (c *convertContext) aVideoWithAudioOnlyStream(title string) error {
	c.resolver.info = &media.StreamInfo{
		ID:    "dQw4w9WgXcQ",
		Title: title,
		Formats: []media.StreamFormat{
			{Itag: 18, URL: "https://media.example.com/18", MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, AudioBitrate: 96},
			{Itag: 140, URL: "https://media.example.com/140", MimeType: `audio/mp4; codecs="mp4a.40.2"`, AudioOnly: true, AudioBitrate: 128},
			{Itag: 251, URL: "https://media.example.com/251", MimeType: `audio/webm; codecs="opus"`, AudioOnly: true, AudioBitrate: 160},
		},
	}
	return nil
}

func (c *convertContext) aVideoWithNoAudioOnlyStream(title string) error {
	c.resolver.info = &media.StreamInfo{
		ID:    "dQw4w9WgXcQ",
		Title: title,
		Formats: []media.StreamFormat{
			{Itag: 18, URL: "https://media.example.com/18", MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, AudioBitrate: 96},
		},
	}
	return nil
}

func (c *convertContext) theVideoCannotBeResolved() error {
	c.resolver.info = nil
	return nil
}

func (c *convertContext) ffmpegFailsToTranscode() error {
	c.ffmpeg.fail = true
	return nil
}

func (c *convertContext) theObjectStoreRejectsUploads() error {
	c.bucket.failErr = errors.New("storage: permission denied")
	return nil
}

func (c *convertContext) handler() (http.Handler, error) {
	store, err := firebase.NewStore(context.Background(), testBucket, "",
		firebase.WithBucketService(c.bucket),
		firebase.WithTokenGenerator(func() string { return "test-token" }),
	)
	if err != nil {
		return nil, err
	}

	service := conversion.NewService(
		c.resolver,
		ffmpeg.NewTranscoder(ffmpeg.WithCommandRunner(c.ffmpeg)),
		store,
		filesystem.NewLocal(),
		conversion.Options{ScratchDir: c.scratchDir},
		nil,
	)

	server := httpserver.New(httpserver.Config{
		Route:             "/api/mp3",
		ShutdownTimeout:   time.Second,
		ReadHeaderTimeout: time.Second,
		IdleTimeout:       time.Second,
	}, service, nil)
	return server.Handler(), nil
}

func (c *convertContext) iRequestAnMP3For(url string) error {
	return c.iSendTheBody(fmt.Sprintf(`{"url":%q}`, url))
}

func (c *convertContext) iSendTheBody(body string) error {
	h, err := c.handler()
	if err != nil {
		return err
	}
	req := httptest.NewRequest(http.MethodPost, "/api/mp3", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.response = httptest.NewRecorder()
	h.ServeHTTP(c.response, req)
	return nil
}

func (c *convertContext) theResponseStatusShouldBe(status int) error {
	if c.response == nil {
		return fmt.Errorf("no request was sent")
	}
	if c.response.Code != status {
		return fmt.Errorf("expected status %d, got %d (body %q)", status, c.response.Code, c.response.Body.String())
	}
	return nil
}

func (c *convertContext) theResponseBodyShouldBe(expected string) error {
	got := strings.TrimSpace(c.response.Body.String())
	if got != expected {
		return fmt.Errorf("expected body %q, got %q", expected, got)
	}
	return nil
}

func (c *convertContext) theResponseBodyShouldBeADownloadURLFor(key string) error {
	want := firebase.DownloadURL(testBucket, key, "test-token")
	if got := c.response.Body.String(); got != want {
		return fmt.Errorf("expected body %q, got %q", want, got)
	}
	return nil
}

func (c *convertContext) theObjectStoreShouldContain(key string) error {
	if _, ok := c.bucket.objects[key]; !ok {
		keys := make([]string, 0, len(c.bucket.objects))
		for k := range c.bucket.objects {
			keys = append(keys, k)
		}
		return fmt.Errorf("object %q not found, have %v", key, keys)
	}
	return nil
}

func (c *convertContext) theObjectStoreShouldBeEmpty() error {
	if len(c.bucket.objects) != 0 {
		return fmt.Errorf("expected no objects, found %d", len(c.bucket.objects))
	}
	return nil
}

func (c *convertContext) theScratchDirectoryShouldNotExist() error {
	if _, err := os.Stat(c.scratchDir); !os.IsNotExist(err) {
		return fmt.Errorf("expected scratch directory %s to be removed", c.scratchDir)
	}
	return nil
}

func (c *convertContext) theScratchFileShouldExist(name string) error {
	path := filepath.Join(c.scratchDir, name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("expected scratch file %s: %w", path, err)
	}
	return nil
}

func (c *convertContext) ffmpegShouldNotHaveBeenRun() error {
	if c.ffmpeg.calls != 0 {
		return fmt.Errorf("expected ffmpeg not to run, ran %d times", c.ffmpeg.calls)
	}
	return nil
}

func (c *convertContext) theVideoShouldNotHaveBeenResolved() error {
	if c.resolver.calls != 0 {
		return fmt.Errorf("expected no resolution, got %d calls", c.resolver.calls)
	}
	return nil
}
