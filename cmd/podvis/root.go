package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/auto-dns/podvis/internal/config"
	"github.com/auto-dns/podvis/internal/logger"
)

type contextKey string

const configKey = contextKey("config")

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "podvis",
	Short: "Forward Kubernetes pod events to a live status page",
	Long:  "Classifies pod lifecycle events into per-container states and streams them to browsers.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		if err := config.InitConfig(v, configFile); err != nil {
			return err
		}
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "INFO", "set log level (e.g. INFO, DEBUG, WARN)")
	_ = v.BindPFlag("log.log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(forwarderCmd, listenerCmd)
}

func configFrom(cmd *cobra.Command) *config.Config {
	return cmd.Context().Value(configKey).(*config.Config)
}

// runApplication builds an application and runs it until SIGINT or SIGTERM.
func runApplication(cmd *cobra.Command, component string, build func(*config.Config, zerolog.Logger) (application, error)) error {
	cfg := configFrom(cmd)

	// Set up logger.
	logInstance := logger.SetupLogger(&cfg.Logging, component)

	application, err := build(cfg, logInstance)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", component, err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logInstance.Error().Err(err).Msg("Closing application")
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run the application. When context is canceled, Run returns.
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("%s run error: %w", component, err)
	}
	logInstance.Info().Msg("Shut down cleanly")
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		os.Exit(1)
	}
}
