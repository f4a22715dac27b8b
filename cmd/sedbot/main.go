package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dalnet/sedbot/internal/bot"
	"github.com/dalnet/sedbot/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version information - set at build time via ldflags
var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func main() {
	var configPath string
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "sedbot",
		Short: "IRC bot that applies s/old/new/ corrections to recent chat lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(configPath, debug)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "./config.yaml", "path to configuration file")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sedbot version %s\n", version)
			fmt.Printf("Built: %s\n", buildDate)
			fmt.Printf("Commit: %s\n", gitCommit)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string, debug bool) error {
	logger, err := newLogger(debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Set version info in bot package
	bot.Version = version
	bot.BuildDate = buildDate
	bot.GitCommit = gitCommit

	// Make config path absolute
	if !filepath.IsAbs(configPath) {
		wd, _ := os.Getwd()
		configPath = filepath.Join(wd, configPath)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	client, err := bot.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create IRC client: %w", err)
	}

	if cfg.MetricsAddr != "" {
		logger.Info("exposing metrics", zap.String("addr", cfg.MetricsAddr))
		bot.ServeMetrics(cfg.MetricsAddr, logger)
	}

	// Signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("shutting down", zap.String("signal", sig.String()))
		client.Quit()
		os.Exit(0)
	}()

	logger.Info("connecting",
		zap.String("server", cfg.Server),
		zap.Int("port", cfg.Port))
	if err := client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	client.Loop()
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
