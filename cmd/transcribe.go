package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/voxlog/voxlog/internal/chunker"
	"github.com/voxlog/voxlog/internal/config"
	"github.com/voxlog/voxlog/internal/services/openai"
	"github.com/voxlog/voxlog/internal/transcriber"
	"github.com/voxlog/voxlog/internal/utils"
	"github.com/voxlog/voxlog/internal/validator"
	"github.com/voxlog/voxlog/internal/worker"

	"github.com/spf13/cobra"
)

var (
	transcribeInput        string
	transcribeOutput       string
	transcribeModel        string
	transcribeLanguage     string
	transcribeFormat       string
	transcribeSummarize    bool
	transcribeOnChunkError string
	transcribeSettingsPath string
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe an audio recording",
	Long: `Transcribe a voice log recording to text, SRT or JSON.

Large recordings are split into chunks and processed by a bounded pool of
faster-whisper worker processes. If local transcription fails and
OPENAI_API_KEY is set, the request is retried once against the OpenAI
audio API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validator.ValidateExternalTools(); err != nil {
			return fmt.Errorf("dependency validation failed: %w", err)
		}

		settings, err := config.Load(transcribeSettingsPath)
		if err != nil {
			return err
		}
		applySettingsDefaults(&settings)

		if err := utils.ValidateAudioFile(transcribeInput); err != nil {
			return err
		}
		if err := utils.ValidateOutputPath(transcribeOutput); err != nil {
			return err
		}

		opts := transcriber.Options{
			Model:        settings.Model,
			Language:     settings.Language,
			Temperature:  settings.Temperature,
			BeamSize:     settings.BeamSize,
			ComputeType:  settings.ComputeType,
			Summarize:    settings.Summarize,
			OnChunkError: transcriber.ChunkErrorPolicy(settings.OnChunkError),
		}

		service := buildService()
		result := service.TranscribeAudio(cmd.Context(), transcribeInput, opts)
		if !result.Success {
			utils.LogError("%s", transcriber.UserMessage(result.Category))
			return fmt.Errorf("transcription failed (%s): %w", result.Category, result.Err)
		}

		outputFile, err := writeResult(result, settings.Format)
		if err != nil {
			return err
		}

		utils.LogSuccess("Transcript written to %s", outputFile)
		if result.Summary != "" {
			fmt.Println(result.Summary)
		}
		return nil
	},
}

// applySettingsDefaults folds command-line flags over the settings file:
// flags always win.
func applySettingsDefaults(settings *config.Settings) {
	if transcribeModel != "" {
		settings.Model = transcribeModel
	}
	if transcribeLanguage != "" {
		settings.Language = transcribeLanguage
	}
	if transcribeFormat != "" {
		settings.Format = transcribeFormat
	}
	if transcribeOnChunkError != "" {
		settings.OnChunkError = transcribeOnChunkError
	}
	if transcribeSummarize {
		settings.Summarize = true
	}
}

// buildService wires the orchestrator, the remote fallback and the
// summarizer into the abstraction layer.
func buildService() *transcriber.Service {
	engine := worker.NewEngine()
	engine.OnProgress = func(percent int) {
		utils.LogVerbose("Transcribing: %d%%", percent)
	}
	orchestrator := transcriber.NewOrchestrator(chunker.New(), engine)

	serviceOpts := []transcriber.ServiceOption{
		transcriber.WithProgress(func(stage transcriber.Stage, message string) {
			utils.LogInfo("[%s] %s", stage, message)
		}),
	}
	if openai.IsAPIKeySet() {
		if client, err := openai.NewClient(); err == nil {
			serviceOpts = append(serviceOpts,
				transcriber.WithRemoteEngine(client),
				transcriber.WithSummarizer(client))
		}
	}

	return transcriber.NewService(orchestrator, serviceOpts...)
}

// writeResult renders the transcript in the requested format next to the
// output directory and returns the file path.
func writeResult(result transcriber.Result, format string) (string, error) {
	base := filepath.Base(transcribeInput)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	outputFile := filepath.Join(transcribeOutput, base+"."+format)

	var content string
	switch format {
	case "srt":
		content = result.Data.SRTData
	case "json":
		data, err := json.MarshalIndent(result.Data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode result: %w", err)
		}
		content = string(data)
	default:
		content = result.Data.Text + "\n"
	}

	if err := utils.WriteTextFile(outputFile, content); err != nil {
		return "", err
	}
	return outputFile, nil
}

func init() {
	transcribeCmd.Flags().StringVarP(&transcribeInput, "input", "i", "", "Path to the audio file to transcribe (required)")
	transcribeCmd.Flags().StringVarP(&transcribeOutput, "output", "o", ".", "Output directory for the transcript")
	transcribeCmd.Flags().StringVarP(&transcribeModel, "model", "m", "", "Whisper model preset (see 'voxlog models')")
	transcribeCmd.Flags().StringVar(&transcribeLanguage, "language", "", "Spoken language, or 'auto' to detect")
	transcribeCmd.Flags().StringVarP(&transcribeFormat, "format", "f", "", "Output format: txt, srt or json")
	transcribeCmd.Flags().BoolVar(&transcribeSummarize, "summarize", false, "Generate a summary of the transcript")
	transcribeCmd.Flags().StringVar(&transcribeOnChunkError, "on-chunk-error", "", "Chunk failure policy: degrade or fail")
	transcribeCmd.Flags().StringVarP(&transcribeSettingsPath, "settings", "s", "", "Path to the settings YAML file")
	_ = transcribeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(transcribeCmd)
}
