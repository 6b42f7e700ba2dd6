package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bwdc-kwk",
	Short: "Load Yelp business search results",
	Long:  "Pages Yelp Fusion business search results for a list of cities, splitting large cities by postal code, and appends them to a table.",
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
