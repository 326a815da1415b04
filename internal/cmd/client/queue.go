package client

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rzbill/spool/internal/queue"
	logpkg "github.com/rzbill/spool/pkg/log"
)

// NewPushCommand constructs the `push` subcommand.
func NewPushCommand(logger logpkg.Logger) *cobra.Command {
	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Push a payload onto a queue",
		Long:  "Push reads the payload from --data, or from stdin when --data is not given.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := queueFlag(cmd)
			if err != nil {
				return err
			}
			data, _ := cmd.Flags().GetString("data")
			payload := []byte(data)
			if data == "" {
				if payload, err = io.ReadAll(os.Stdin); err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}

			rt, err := openRuntime(cmd, logger)
			if err != nil {
				return err
			}
			q, err := rt.OpenQueue(name)
			if err != nil {
				return err
			}
			if err := rt.Push(q, payload); err != nil {
				if errors.Is(err, queue.ErrQueueFull) || errors.Is(err, queue.ErrMessageTooLarge) {
					return fmt.Errorf("push rejected: %w", err)
				}
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", "OK")
			return nil
		},
	}
	pushCmd.Flags().StringP("queue", "q", "", "Queue name")
	pushCmd.Flags().String("data", "", "Payload (defaults to stdin)")
	return pushCmd
}

// NewPullCommand constructs the `pull` subcommand. The pulled payload
// is written to stdout and the message acknowledged; --fail requeues
// it with the given flag instead.
func NewPullCommand(logger logpkg.Logger) *cobra.Command {
	pullCmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull one message and print its payload",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := queueFlag(cmd)
			if err != nil {
				return err
			}
			failFlag, _ := cmd.Flags().GetString("fail")

			rt, err := openRuntime(cmd, logger)
			if err != nil {
				return err
			}
			q, err := rt.OpenQueue(name)
			if err != nil {
				return err
			}
			msg, err := q.Pull()
			if err != nil {
				return err
			}
			if msg == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "status:", "EMPTY")
				return nil
			}
			if _, err := cmd.OutOrStdout().Write(msg.Payload); err != nil {
				_ = q.Fail(msg, queue.FlagError)
				return err
			}
			if failFlag != "" {
				return q.Fail(msg, failFlag)
			}
			return q.Acknowledge(msg)
		},
	}
	pullCmd.Flags().StringP("queue", "q", "", "Queue name")
	pullCmd.Flags().String("fail", "", "Requeue with this flag instead of acknowledging")
	return pullCmd
}

// NewStatsCommand constructs the `stats` subcommand.
func NewStatsCommand(logger logpkg.Logger) *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show queue state counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := queueFlag(cmd)
			if err != nil {
				return err
			}
			rt, err := openRuntime(cmd, logger)
			if err != nil {
				return err
			}
			q, err := rt.OpenQueue(name)
			if err != nil {
				return err
			}
			stats, err := q.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "queued:  %d\n", stats.Queued)
			_, _ = fmt.Fprintf(out, "pulled:  %d\n", stats.Pulled)
			if q.DeadLetters() != nil {
				_, _ = fmt.Fprintf(out, "dead:    %d\n", stats.DeadLetterQueued)
			}
			return nil
		},
	}
	statsCmd.Flags().StringP("queue", "q", "", "Queue name")
	return statsCmd
}
