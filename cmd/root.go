package cmd

import (
	"fmt"
	"os"

	"asset-registry/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// configDir is where config.yaml and .env are looked up.
	configDir string
	// yesConfirm auto-confirms destructive actions.
	yesConfirm bool
	// dryRun reports what a destructive action would change.
	dryRun bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "asset-registry",
	Short: "Asset Registry Tooling",
	Long: `Asset Registry maintains label-partitioned integer ids for catalog assets.
It loads, edits, imports, repairs and audits registry records kept in a database or S3 storage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with debug level gives ISO8601 timestamps for CLI output
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding config.yaml and .env")
}
