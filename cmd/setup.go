package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"yt-mp3-service/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through choosing a storage backend and entering
its credentials, the scratch directory, and the listen address.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to yt-mp3-service setup!")
	fmt.Println()

	cfg := config.Default()

	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	if err := promptStorage(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	if cfg.Storage.Backend == config.BackendDrive && cfg.Google.TokenFile != "" {
		fmt.Println("Run 'yt-mp3-service auth' to authorize Google Drive access.")
	}
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	addr, err := prompter.Input("HTTP listen address?", config.DefaultAddr)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	scratch, err := prompter.Input("Scratch directory for transcoding?", config.DefaultScratchDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if scratch != "" {
		cfg.Paths.ScratchDirectory = scratch
	}

	return nil
}

func promptStorage(prompter Prompter, cfg *config.Config) error {
	backends := []string{config.BackendFirebase, config.BackendDrive, config.BackendSupabase}
	backend, err := prompter.Select("Where should MP3 files be uploaded?", backends, config.BackendFirebase)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Storage.Backend = backend

	switch backend {
	case config.BackendFirebase:
		return promptFirebase(prompter, cfg)
	case config.BackendDrive:
		return promptDrive(prompter, cfg)
	case config.BackendSupabase:
		return promptSupabase(prompter, cfg)
	default:
		return fmt.Errorf("unknown storage backend %q", backend)
	}
}

func promptFirebase(prompter Prompter, cfg *config.Config) error {
	bucket, err := prompter.Input("Firebase Storage bucket (e.g. my-app.appspot.com)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	cfg.Firebase.Bucket = bucket

	// Empty means application default credentials
	credentials, err := prompter.Input("Path to service account key (blank for default credentials)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Firebase.CredentialsFile = credentials
	return nil
}

func promptDrive(prompter Prompter, cfg *config.Config) error {
	credentials, err := prompter.Input("Path to Google credentials file?", "credentials.json")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if credentials == "" {
		credentials = "credentials.json"
	}
	cfg.Google.CredentialsFile = credentials

	folder, err := prompter.Input("Google Drive folder ID for uploads?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if folder == "" {
		return fmt.Errorf("folder ID is required")
	}
	cfg.Google.FolderID = folder

	useOAuth, err := prompter.Confirm("Authorize as a user with OAuth instead of a service account?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !useOAuth {
		return nil
	}

	token, err := prompter.Input("Where should the OAuth token be stored?", "token.json")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if token == "" {
		token = "token.json"
	}
	cfg.Google.TokenFile = token
	return nil
}

func promptSupabase(prompter Prompter, cfg *config.Config) error {
	url, err := prompter.Input("Supabase project URL?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if url == "" {
		return fmt.Errorf("supabase URL is required")
	}
	cfg.Supabase.URL = url

	key, err := prompter.Input("Supabase service role key?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if key == "" {
		return fmt.Errorf("supabase key is required")
	}
	cfg.Supabase.Key = key

	bucket, err := prompter.Input("Supabase Storage bucket (public)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	cfg.Supabase.Bucket = bucket
	return nil
}
