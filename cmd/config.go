package cmd

import (
	"fmt"

	"yt-mp3-service/infrastructure/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const maskedValue = "********"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
	Long: `Inspect the effective configuration, defaults included.

Examples:
  yt-mp3-service config show
  yt-mp3-service config validate`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigShowWithDependencies(cfg, DefaultOutput)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for the selected storage backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigValidateWithDependencies(cfg, cfgFile, DefaultOutput)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

// RunConfigShowWithDependencies prints cfg as YAML
func RunConfigShowWithDependencies(cfg *config.Config, out OutputWriter) error {
	masked := *cfg
	if masked.Supabase.Key != "" {
		masked.Supabase.Key = maskedValue
	}

	data, err := yaml.Marshal(&masked)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// RunConfigValidateWithDependencies reports whether cfg is usable
func RunConfigValidateWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", configPath, err)
	}
	fmt.Fprintf(out, "%s is valid (storage backend: %s)\n", configPath, cfg.Storage.Backend)
	return nil
}
