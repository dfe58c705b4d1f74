package config

import (
	"fmt"
	"os"
	"time"

	"yt-mp3-service/domain/distribution"

	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendFirebase = distribution.BackendFirebase
	BackendDrive    = distribution.BackendDrive
	BackendSupabase = distribution.BackendSupabase
)

// Defaults applied by ApplyDefaults
const (
	DefaultAddr              = ":8080"
	DefaultRoute             = "/api/mp3"
	DefaultShutdownTimeout   = 25 * time.Second
	DefaultReadHeaderTimeout = 15 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultScratchDirectory  = "temp"
	DefaultFFmpegPath        = "ffmpeg"
	DefaultInputFormat       = "webm"
	DefaultAudioCodec        = "libmp3lame"
	DefaultOutputFormat      = "mp3"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Paths    PathsConfig    `yaml:"paths"`
	FFmpeg   FFmpegConfig   `yaml:"ffmpeg"`
	Storage  StorageConfig  `yaml:"storage"`
	Firebase FirebaseConfig `yaml:"firebase,omitempty"`
	Google   GoogleConfig   `yaml:"google,omitempty"`
	Supabase SupabaseConfig `yaml:"supabase,omitempty"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	Route             string        `yaml:"route"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
}

// PathsConfig contains local directories
type PathsConfig struct {
	ScratchDirectory string `yaml:"scratch_directory"`
}

// FFmpegConfig contains transcoding settings
type FFmpegConfig struct {
	Path         string `yaml:"path"`
	InputFormat  string `yaml:"input_format"`
	AudioCodec   string `yaml:"audio_codec"`
	OutputFormat string `yaml:"output_format"`
}

// StorageConfig selects the object store backend
type StorageConfig struct {
	Backend string `yaml:"backend"`
}

// FirebaseConfig contains Firebase Storage settings
type FirebaseConfig struct {
	Bucket          string `yaml:"bucket,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty"`
}

// GoogleConfig contains Google Drive settings.
// When TokenFile is set, CredentialsFile holds OAuth client credentials;
// otherwise it is a service account key.
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file,omitempty"`
	TokenFile       string `yaml:"token_file,omitempty"`
	FolderID        string `yaml:"folder_id,omitempty"`
}

// SupabaseConfig contains Supabase Storage settings
type SupabaseConfig struct {
	URL    string `yaml:"url,omitempty"`
	Key    string `yaml:"key,omitempty"`
	Bucket string `yaml:"bucket,omitempty"`
}

// LogConfig contains logger settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyDefaults fills every empty field with its default value
func (c *Config) ApplyDefaults() {
	setDefault(&c.Server.Addr, DefaultAddr)
	setDefault(&c.Server.Route, DefaultRoute)
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		c.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = DefaultIdleTimeout
	}

	setDefault(&c.Paths.ScratchDirectory, DefaultScratchDirectory)

	setDefault(&c.FFmpeg.Path, DefaultFFmpegPath)
	setDefault(&c.FFmpeg.InputFormat, DefaultInputFormat)
	setDefault(&c.FFmpeg.AudioCodec, DefaultAudioCodec)
	setDefault(&c.FFmpeg.OutputFormat, DefaultOutputFormat)

	setDefault(&c.Storage.Backend, BackendFirebase)

	setDefault(&c.Log.Level, DefaultLogLevel)
	setDefault(&c.Log.Format, DefaultLogFormat)
}

// Validate checks the fields the selected storage backend needs
func (c *Config) Validate() error {
	if c.Server.Route == "" || c.Server.Route[0] != '/' {
		return fmt.Errorf("server route must start with '/': %q", c.Server.Route)
	}

	switch c.Storage.Backend {
	case BackendFirebase:
		if c.Firebase.Bucket == "" {
			return fmt.Errorf("firebase.bucket is required for the %s backend", BackendFirebase)
		}
	case BackendDrive:
		if c.Google.CredentialsFile == "" {
			return fmt.Errorf("google.credentials_file is required for the %s backend", BackendDrive)
		}
		if c.Google.FolderID == "" {
			return fmt.Errorf("google.folder_id is required for the %s backend", BackendDrive)
		}
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.Key == "" || c.Supabase.Bucket == "" {
			return fmt.Errorf("supabase.url, supabase.key and supabase.bucket are required for the %s backend", BackendSupabase)
		}
	default:
		return fmt.Errorf("unknown storage backend %q. Use %s, %s, or %s", c.Storage.Backend, BackendFirebase, BackendDrive, BackendSupabase)
	}

	return nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
