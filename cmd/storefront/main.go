package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teecraft/storefront/internal/app"
	"github.com/teecraft/storefront/internal/platform/envutil"
	"github.com/teecraft/storefront/internal/platform/logger"
)

var (
	configPath string
	logMode    string

	log *logger.Logger
	cfg app.Config
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "TeeCraft storefront backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mode := logMode
		if mode == "" {
			mode = envutil.String("LOG_MODE", "development", nil)
		}
		l, err := logger.New(mode)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l

		log.Info("Loading configuration...")
		c, err := app.LoadConfig(log, configPath)
		if err != nil {
			return err
		}
		if logMode != "" {
			c.LogMode = logMode
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (default: $STOREFRONT_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "Log mode: development or production (default: $LOG_MODE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
