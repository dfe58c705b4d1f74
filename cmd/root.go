package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"yt-mp3-service/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "yt-mp3-service",
	Short: "Convert video links to hosted MP3 files",
	Long: `yt-mp3-service turns a video link into a downloadable MP3:

  - Resolve the best audio-only stream of the video
  - Transcode it to MP3 with ffmpeg
  - Upload the file to Firebase Storage, Google Drive, or Supabase Storage
  - Return the public download URL

Example:
  yt-mp3-service serve
  curl -X POST localhost:8080/api/mp3 -d '{"url":"https://youtu.be/dQw4w9WgXcQ"}'`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	cfg, cfgErr = config.Load(cfgFile)
	if cfgErr != nil {
		// Config file is optional for some commands (like help)
		// Commands that need config will check and error appropriately
		cfg = nil
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// requireConfig returns the loaded configuration or explains why there is none
func requireConfig() (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	if cfgErr != nil && !errors.Is(cfgErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("configuration %s is invalid: %w", cfgFile, cfgErr)
	}
	return nil, fmt.Errorf("config file not found. Run 'yt-mp3-service setup' first")
}
