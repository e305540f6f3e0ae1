// Package cli provides the command-line interface for olicloud.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hydrolabs/olicloud-go/internal/config"
	"github.com/hydrolabs/olicloud-go/internal/credentials"
	"github.com/hydrolabs/olicloud-go/internal/metrics"
	"github.com/hydrolabs/olicloud-go/internal/oli"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	configPath string
	noInput    bool
	verbose    bool

	// Global config and client, built in PersistentPreRunE.
	cfg       config.Config
	logger    *slog.Logger
	logClose  func() error
	oliClient *oli.Client
	collector *metrics.Collector
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "olicloud",
	Short: "OLI Cloud chemistry API client",
	Long: `olicloud submits flash calculations to the OLI Cloud chemistry service:
upload or generate chemistry (DBS) files, run batches of flash requests
concurrently, and collect the polled results in input order.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip client setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if configPath != "" {
			if err := config.ApplyFile(&cfg, configPath); err != nil {
				return err
			}
		}
		if noInput {
			cfg.Interactive = false
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, logClose = config.SetupLogger(cfg.LogFile, cfg.LogLevel)

		credCfg := credentials.Config{
			APIRoot:  cfg.APIRoot,
			AuthRoot: cfg.AuthRoot,
			Username: cfg.Username,
			Password: cfg.Password,
		}
		if cfg.Interactive {
			if err := credentials.PromptLogin(&credCfg); err != nil {
				return err
			}
		}

		creds, err := credentials.NewCloudManager(credCfg)
		if err != nil {
			return fmt.Errorf("create credential manager: %w", err)
		}
		if err := creds.Login(cmd.Context()); err != nil {
			return fmt.Errorf("login: %w", err)
		}

		collector = metrics.NewCollector()
		oliClient = oli.NewClient(creds, oli.Config{
			Interactive:  cfg.Interactive,
			PollInterval: cfg.PollInterval,
			MaxPolls:     cfg.MaxPolls,
		}, logger, collector)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logClose != nil {
			if err := logClose(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&noInput, "no-input", false, "disable interactive prompts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(flashCmd)
	rootCmd.AddCommand(filesCmd)
}
