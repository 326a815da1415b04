package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/spool/internal/cmd/client"
	logpkg "github.com/rzbill/spool/pkg/log"
)

func main() {
	// Respect SPOOL_LOG_LEVEL / SPOOL_LOG_FORMAT for all CLI output.
	logger, err := logpkg.ApplyConfig(&logpkg.Config{
		Level:  os.Getenv("SPOOL_LOG_LEVEL"),
		Format: os.Getenv("SPOOL_LOG_FORMAT"),
	})
	if err != nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.InfoLevel), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Route standard library logs through our logger.
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "spool",
		Short: "spool durable job queue CLI",
		Long:  "Spool is a filesystem-backed durable job queue. This CLI pushes, pulls, and works queues under a shared root directory.",
	}
	rootCmd.PersistentFlags().String("config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().String("root-dir", "", "Queue root directory (overrides config)")

	rootCmd.AddCommand(
		clientcmd.NewPushCommand(logger),
		clientcmd.NewPullCommand(logger),
		clientcmd.NewWorkCommand(logger),
		clientcmd.NewStatsCommand(logger),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
