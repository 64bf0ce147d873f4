package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/derm-scout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "derm-scout",
	Short: "Dermatologist discovery and contact enrichment pipeline",
	Long:  "Finds dermatologists on YouTube, identifies the physician behind each channel, verifies them against the NPI registry and resolves contact details through a waterfall of providers.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
