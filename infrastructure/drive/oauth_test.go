package drive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
)

const testOAuthCredentials = `{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`

func writeOAuthCredentials(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(path, []byte(testOAuthCredentials), 0600); err != nil {
		t.Fatalf("failed to write credentials: %v", err)
	}
	return path
}

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := saveToken(path, token); err != nil {
		t.Fatalf("saveToken() unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token file missing: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file permissions = %o, want 600", perm)
	}

	loaded, err := loadToken(path)
	if err != nil {
		t.Fatalf("loadToken() unexpected error: %v", err)
	}
	if loaded.AccessToken != "access" || loaded.RefreshToken != "refresh" {
		t.Errorf("loaded token = %+v", loaded)
	}
	if !loaded.Expiry.Equal(token.Expiry) {
		t.Errorf("Expiry = %v, want %v", loaded.Expiry, token.Expiry)
	}
}

func TestNewStoreWithOAuth_MissingCredentials(t *testing.T) {
	_, err := NewStoreWithOAuth(context.Background(), OAuthConfig{
		CredentialsFile: filepath.Join(t.TempDir(), "missing.json"),
		TokenFile:       filepath.Join(t.TempDir(), "token.json"),
	}, "folder")
	if err == nil {
		t.Fatal("expected error for missing credentials file")
	}
}

func TestNewStoreWithOAuth_MissingToken(t *testing.T) {
	dir := t.TempDir()
	creds := writeOAuthCredentials(t, dir)

	_, err := NewStoreWithOAuth(context.Background(), OAuthConfig{
		CredentialsFile: creds,
		TokenFile:       filepath.Join(dir, "token.json"),
	}, "folder")
	if !errors.Is(err, ErrNoToken) {
		t.Errorf("NewStoreWithOAuth() error = %v, want ErrNoToken", err)
	}
}

func TestNewStoreWithOAuth_InjectedService(t *testing.T) {
	store, err := NewStoreWithOAuth(context.Background(), OAuthConfig{}, "folder", WithDriveService(newMockDriveService()))
	if err != nil {
		t.Fatalf("NewStoreWithOAuth() unexpected error: %v", err)
	}
	if store.folderID != "folder" {
		t.Errorf("folderID = %q, want %q", store.folderID, "folder")
	}
}

func TestOAuthConfig_RequestsFullDriveScope(t *testing.T) {
	creds := writeOAuthCredentials(t, t.TempDir())

	config, err := OAuthConfig{CredentialsFile: creds}.oauth2Config()
	if err != nil {
		t.Fatalf("oauth2Config() unexpected error: %v", err)
	}
	// Uploading into an existing user folder needs more than drive.file
	if len(config.Scopes) != 1 || config.Scopes[0] != drive.DriveScope {
		t.Errorf("Scopes = %v, want [%s]", config.Scopes, drive.DriveScope)
	}
}

func TestNewStoreWithOAuth_CorruptToken(t *testing.T) {
	dir := t.TempDir()
	creds := writeOAuthCredentials(t, dir)
	tokenFile := filepath.Join(dir, "token.json")
	if err := os.WriteFile(tokenFile, []byte("{not json"), 0600); err != nil {
		t.Fatalf("failed to write token: %v", err)
	}

	_, err := NewStoreWithOAuth(context.Background(), OAuthConfig{
		CredentialsFile: creds,
		TokenFile:       tokenFile,
	}, "folder")
	if !errors.Is(err, ErrNoToken) {
		t.Fatalf("NewStoreWithOAuth() error = %v, want ErrNoToken", err)
	}
	if !strings.Contains(err.Error(), "invalid character") {
		t.Errorf("expected decode cause in error, got %q", err.Error())
	}
}

func TestRefreshToken(t *testing.T) {
	old := &oauth2.Token{AccessToken: "old", RefreshToken: "refresh"}
	fresh := &oauth2.Token{AccessToken: "new", RefreshToken: "refresh"}

	t.Run("saves changed token", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "token.json")

		got, err := refreshToken(oauth2.StaticTokenSource(fresh), old, file)
		if err != nil {
			t.Fatalf("refreshToken() unexpected error: %v", err)
		}
		if got.AccessToken != "new" {
			t.Errorf("AccessToken = %q, want %q", got.AccessToken, "new")
		}
		saved, err := loadToken(file)
		if err != nil {
			t.Fatalf("expected refreshed token on disk: %v", err)
		}
		if saved.AccessToken != "new" {
			t.Errorf("saved AccessToken = %q, want %q", saved.AccessToken, "new")
		}
	})

	t.Run("unchanged token is not written", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "token.json")

		if _, err := refreshToken(oauth2.StaticTokenSource(old), old, file); err != nil {
			t.Fatalf("refreshToken() unexpected error: %v", err)
		}
		if _, err := os.Stat(file); !os.IsNotExist(err) {
			t.Error("expected no token file for an unchanged token")
		}
	})

	t.Run("save failure is reported", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "missing-dir", "token.json")

		_, err := refreshToken(oauth2.StaticTokenSource(fresh), old, file)
		if err == nil || !strings.Contains(err.Error(), "unable to save refreshed token") {
			t.Errorf("refreshToken() error = %v, want save failure", err)
		}
	})
}
