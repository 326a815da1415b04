package client

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/rzbill/spool/internal/worker"
	logpkg "github.com/rzbill/spool/pkg/log"
)

// NewWorkCommand constructs the `work` subcommand: a worker pool that
// pipes each payload to a shell command. Exit status zero acknowledges
// the message; anything else fails it with an error flag, and the
// worker timeout kills commands that run too long.
func NewWorkCommand(logger logpkg.Logger) *cobra.Command {
	workCmd := &cobra.Command{
		Use:   "work",
		Short: "Run a worker pool piping payloads to a command",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := queueFlag(cmd)
			if err != nil {
				return err
			}
			command, _ := cmd.Flags().GetString("exec")
			if command == "" {
				return fmt.Errorf("--exec is required")
			}
			count, _ := cmd.Flags().GetInt("workers")

			rt, err := openRuntime(cmd, logger)
			if err != nil {
				return err
			}
			q, err := rt.OpenQueue(name)
			if err != nil {
				return err
			}

			logger.Info("starting workers",
				logpkg.Str("queue", name),
				logpkg.Str("exec", command),
				logpkg.Int("workers", count))
			return rt.StartWorkers(cmd.Context(), q, execHandler(command), count)
		},
	}
	workCmd.Flags().StringP("queue", "q", "", "Queue name")
	workCmd.Flags().String("exec", "", "Shell command run per message; payload on stdin")
	workCmd.Flags().Int("workers", 0, "Worker count (default from config)")
	return workCmd
}

// execHandler adapts a shell command into a worker.Handler.
func execHandler(command string) worker.Handler {
	return func(ctx context.Context, payload []byte) error {
		c := exec.CommandContext(ctx, "/bin/sh", "-c", command)
		c.Stdin = bytes.NewReader(payload)
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	}
}
