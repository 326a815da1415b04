package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/rzbill/spool/internal/queue"
	logpkg "github.com/rzbill/spool/pkg/log"
)

// Handler processes one message payload. A nil return acknowledges the
// message; an error (or a panic) fails it with an error flag. The
// context is cancelled when the job's kill timer fires.
type Handler func(ctx context.Context, payload []byte) error

// Backend is the queue surface a worker drives.
type Backend interface {
	Pull() (*queue.Message, error)
	Acknowledge(*queue.Message) error
	Fail(*queue.Message, string) error
}

// Options configures a Worker.
type Options struct {
	Backend  Backend
	Handler  Handler
	Registry *Registry
	// Group is the dispatch group joined at start.
	Group string
	// Timeout is the hard wall-clock ceiling per handler invocation.
	Timeout time.Duration
	// PollInterval is the idle wake-up period; it bounds end-to-end
	// latency after a missed broadcast.
	PollInterval time.Duration
	Logger       logpkg.Logger
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeError
	outcomeKilled
)

// completion is the notification a job task sends when it finishes.
type completion struct {
	taskID  string
	outcome outcome
	err     error
}

// Worker is a long-lived consumer holding at most one in-flight
// message.
type Worker struct {
	id     string
	opts   Options
	logger logpkg.Logger

	wake        <-chan struct{}
	completions chan completion
}

// New creates a Worker and joins its dispatch group.
func New(opts Options) *Worker {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel))
	}
	w := &Worker{
		id:          uuid.NewString(),
		opts:        opts,
		completions: make(chan completion, 1),
	}
	w.logger = opts.Logger.With(logpkg.Str("worker", w.id))
	if opts.Registry != nil {
		w.wake = opts.Registry.Join(opts.Group, w.id)
	} else {
		w.wake = make(chan struct{})
	}
	return w
}

// ID returns the worker's identity within its dispatch group.
func (w *Worker) ID() string { return w.id }

// Run executes the worker loop until ctx is cancelled. An in-flight
// message at shutdown stays in pulled/ and is requeued by crash
// recovery on the next open.
func (w *Worker) Run(ctx context.Context) error {
	defer func() {
		if w.opts.Registry != nil {
			w.opts.Registry.Leave(w.opts.Group, w.id)
		}
	}()

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	var cur *queue.Message
	var curTask string

	for {
		if cur == nil {
			if ctx.Err() != nil {
				return nil
			}
			msg, err := w.opts.Backend.Pull()
			if err != nil {
				w.logger.Error("pull failed", logpkg.Err(err))
			}
			if msg != nil {
				cur = msg
				curTask = w.launch(ctx, msg)
				continue
			}
			select {
			case <-ctx.Done():
				return nil
			case <-w.wake:
			case <-ticker.C:
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case c := <-w.completions:
			if c.taskID != curTask {
				// Stale notification from an abandoned task.
				continue
			}
			w.settle(cur, c)
			cur, curTask = nil, ""
		case <-w.wake:
			// Already working; ignore.
		case <-ticker.C:
		}
	}
}

// settle translates a job outcome into a queue transition.
func (w *Worker) settle(msg *queue.Message, c completion) {
	switch c.outcome {
	case outcomeOK:
		if err := w.opts.Backend.Acknowledge(msg); err != nil {
			w.logger.Error("acknowledge failed", logpkg.Err(err))
		}
	case outcomeError:
		w.logger.Debug("job failed", logpkg.Err(c.err))
		if err := w.opts.Backend.Fail(msg, queue.FlagError); err != nil {
			w.logger.Error("fail transition failed", logpkg.Err(err))
		}
	case outcomeKilled:
		w.logger.Warn("job timed out", logpkg.Dur("timeout", w.opts.Timeout))
		if err := w.opts.Backend.Fail(msg, queue.FlagTimeout); err != nil {
			w.logger.Error("fail transition failed", logpkg.Err(err))
		}
	}
}

// launch runs the handler in an isolated task guarded by a kill timer
// and returns the task's identity. The handler goroutine cannot take
// the worker down: panics are captured and reported as error outcomes,
// and a timed-out handler is abandoned with its context cancelled.
func (w *Worker) launch(ctx context.Context, msg *queue.Message) string {
	taskID := uuid.NewString()
	jobCtx, cancel := context.WithCancel(ctx)

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error("handler panicked",
					logpkg.Any("panic", r),
					logpkg.Str("stack", string(debug.Stack())))
				done <- fmt.Errorf("handler panic: %v", r)
			}
		}()
		done <- w.opts.Handler(jobCtx, msg.Payload)
	}()

	go func() {
		defer cancel()
		timer := time.NewTimer(w.opts.Timeout)
		defer timer.Stop()

		var c completion
		select {
		case err := <-done:
			if err != nil {
				c = completion{taskID: taskID, outcome: outcomeError, err: err}
			} else {
				c = completion{taskID: taskID, outcome: outcomeOK}
			}
		case <-timer.C:
			cancel()
			c = completion{taskID: taskID, outcome: outcomeKilled}
		}
		select {
		case w.completions <- c:
		case <-ctx.Done():
		}
	}()

	return taskID
}
