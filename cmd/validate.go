package cmd

import (
	"github.com/voxlog/voxlog/internal/utils"
	"github.com/voxlog/voxlog/internal/validator"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that external dependencies are available",
	Long: `Check that ffmpeg and ffprobe are installed, whether the local
faster-whisper environment works, and whether the OpenAI API fallback is
configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validator.ValidateExternalTools(); err != nil {
			return err
		}
		utils.LogSuccess("Required tools are installed")

		if err := validator.ValidateLocalTranscription(); err != nil {
			utils.LogWarning("Local transcription unavailable: %v", err)
		} else {
			utils.LogSuccess("Local faster-whisper environment works")
		}

		if err := validator.ValidateAPIKey(); err != nil {
			utils.LogWarning("Remote fallback not configured: %v", err)
		} else {
			utils.LogSuccess("OpenAI API fallback is configured")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
