package cmd

import (
	"context"
	"fmt"

	"yt-mp3-service/application/conversion"
	"yt-mp3-service/domain/media"

	"github.com/spf13/cobra"
)

var convertURL string

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a single video link and print the MP3 URL",
	Long: `Run one conversion without starting the HTTP service.

The audio stream is transcoded to MP3 in the scratch directory, uploaded to
the configured object store, and the public URL is printed.

Example:
  yt-mp3-service convert --url "https://www.youtube.com/watch?v=dQw4w9WgXcQ"`,
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertURL, "url", "", "Video URL (required)")
	convertCmd.MarkFlagRequired("url")
}

// Converter runs the conversion pipeline for one URL
type Converter interface {
	Convert(ctx context.Context, rawURL string) (*conversion.Result, error)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	deps, err := BuildDependencies(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	return RunConvertWithDependencies(cmd.Context(), deps.Transcoder, deps.Service, convertURL, DefaultOutput)
}

// RunConvertWithDependencies runs the convert command with injected dependencies (for testing)
func RunConvertWithDependencies(
	ctx context.Context,
	transcoder media.Transcoder,
	converter Converter,
	url string,
	output OutputWriter,
) error {
	if err := verifyTranscoder(ctx, transcoder); err != nil {
		return err
	}

	fmt.Fprintf(output, "Converting %s...\n", url)

	result, err := converter.Convert(ctx, url)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Uploaded %s (%d bytes)\n", result.Key, result.Size)
	fmt.Fprintln(output, result.PublicURL)
	return nil
}
