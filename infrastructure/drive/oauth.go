package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// ErrNoToken is returned when no usable OAuth token is stored yet
var ErrNoToken = errors.New("no OAuth token found; run the auth command first")

// DefaultCallbackAddr is where the local OAuth callback server listens
const DefaultCallbackAddr = "localhost:8085"

// OAuthConfig holds the configuration for OAuth 2.0 authentication
type OAuthConfig struct {
	CredentialsFile string // Path to OAuth client credentials JSON
	TokenFile       string // Path to store/load token
}

func (c OAuthConfig) oauth2Config() (*oauth2.Config, error) {
	b, err := os.ReadFile(c.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read OAuth credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse OAuth credentials: %w", err)
	}
	return config, nil
}

// NewStoreWithOAuth creates a Drive store using a previously authorized OAuth token.
// The token is refreshed and saved back when it changes.
func NewStoreWithOAuth(ctx context.Context, cfg OAuthConfig, folderID string, opts ...StoreOption) (*Store, error) {
	s := &Store{folderID: folderID}

	for _, opt := range opts {
		opt(s)
	}

	if s.driveService == nil {
		svc, err := newOAuthDriveService(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.driveService = svc
	}

	return s, nil
}

// newOAuthDriveService creates a Drive service using OAuth 2.0 user authentication
func newOAuthDriveService(ctx context.Context, cfg OAuthConfig) (*GoogleDriveService, error) {
	config, err := cfg.oauth2Config()
	if err != nil {
		return nil, err
	}

	token, err := loadToken(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoToken, err)
	}

	newToken, err := refreshToken(config.TokenSource(ctx, token), token, cfg.TokenFile)
	if err != nil {
		return nil, err
	}

	client := config.Client(ctx, newToken)
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &GoogleDriveService{service: srv}, nil
}

// Authorize runs the interactive OAuth flow in the browser and saves the token
func Authorize(ctx context.Context, cfg OAuthConfig, out io.Writer) error {
	config, err := cfg.oauth2Config()
	if err != nil {
		return err
	}
	config.RedirectURL = "http://" + DefaultCallbackAddr + "/callback"

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no code in callback")
			fmt.Fprintf(w, "Error: No authorization code received")
			return
		}
		codeChan <- code
		fmt.Fprintf(w, "<html><body><h1>Authorization successful!</h1><p>You can close this window and return to the terminal.</p></body></html>")
	})

	ln, err := net.Listen("tcp", DefaultCallbackAddr)
	if err != nil {
		return fmt.Errorf("unable to start callback server: %w", err)
	}
	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	fmt.Fprintln(out, "Opening browser for Google authentication...")
	fmt.Fprintln(out, "If the browser doesn't open, please visit this URL:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, authURL)
	fmt.Fprintln(out)

	openBrowser(authURL)

	var authCode string
	select {
	case authCode = <-codeChan:
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}

	token, err := config.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("unable to exchange auth code: %w", err)
	}

	if err := saveToken(cfg.TokenFile, token); err != nil {
		return fmt.Errorf("unable to save token: %w", err)
	}

	fmt.Fprintf(out, "Authentication successful! Token saved to %s\n", cfg.TokenFile)
	return nil
}

// refreshToken fetches a valid token from ts and writes it back to file when it changed
func refreshToken(ts oauth2.TokenSource, old *oauth2.Token, file string) (*oauth2.Token, error) {
	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("unable to refresh OAuth token: %w", err)
	}
	if token.AccessToken != old.AccessToken {
		if err := saveToken(file, token); err != nil {
			return nil, fmt.Errorf("unable to save refreshed token to %s: %w", file, err)
		}
	}
	return token, nil
}

// loadToken loads a token from a file
func loadToken(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

// saveToken saves a token to a file readable only by the owner
func saveToken(file string, token *oauth2.Token) error {
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}

// openBrowser opens a URL in the default browser
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err == nil {
			cmd = exec.Command("xdg-open", url)
		} else if _, err := exec.LookPath("wslview"); err == nil {
			cmd = exec.Command("wslview", url)
		}
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}

	if cmd != nil {
		_ = cmd.Start()
	}
}
