package cmd

import (
	"fmt"

	"github.com/voxlog/voxlog/internal/model"
	"github.com/voxlog/voxlog/internal/utils"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the available whisper model presets",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%-10s %10s %10s %10s %12s %10s\n",
			"MODEL", "SIZE (MB)", "THREADS", "BATCH", "CONCURRENCY", "TIMEOUT")
		for _, cfg := range model.List() {
			name := cfg.ID
			if cfg.ID == model.DefaultModelID {
				name = utils.Highlight(cfg.ID + "*")
			}
			fmt.Printf("%-10s %10d %10d %10d %12d %10s\n",
				name,
				cfg.FileSizeMB,
				cfg.Performance.ThreadsRecommended,
				cfg.Performance.BatchSize,
				cfg.MaxConcurrency(),
				cfg.ProcessTimeout())
		}
		fmt.Println("\n* default model")
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
