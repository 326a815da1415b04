package client

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/rzbill/spool/internal/config"
	"github.com/rzbill/spool/internal/runtime"
	logpkg "github.com/rzbill/spool/pkg/log"
)

// openRuntime builds a Runtime from the command's persistent flags and
// the SPOOL_* environment.
func openRuntime(cmd *cobra.Command, logger logpkg.Logger) (*runtime.Runtime, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	rootDir, _ := cmd.Flags().GetString("root-dir")

	cfg, err := cfgpkg.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfgpkg.FromEnv(&cfg)
	if rootDir != "" {
		cfg.RootDir = rootDir
	}

	return runtime.Open(runtime.Options{Config: cfg, Logger: logger})
}

// queueFlag reads the required --queue flag.
func queueFlag(cmd *cobra.Command) (string, error) {
	name, _ := cmd.Flags().GetString("queue")
	if name == "" {
		return "", fmt.Errorf("--queue is required")
	}
	return name, nil
}
