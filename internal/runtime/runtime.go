package runtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	cfgpkg "github.com/rzbill/spool/internal/config"
	"github.com/rzbill/spool/internal/queue"
	"github.com/rzbill/spool/internal/telemetry"
	"github.com/rzbill/spool/internal/worker"
	logpkg "github.com/rzbill/spool/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	// DataDir overrides Config.RootDir when set.
	DataDir string
	Config  cfgpkg.Config
	Logger  logpkg.Logger
	// Sinks receive telemetry events from every queue.
	Sinks []telemetry.Sink
}

// Runtime owns the shared pieces of an embedding process: one dispatch
// registry, one telemetry emitter, and the open queues.
type Runtime struct {
	rootDir  string
	config   cfgpkg.Config
	logger   logpkg.Logger
	registry *worker.Registry
	emitter  *telemetry.Emitter

	mu     sync.Mutex
	queues map[string]*queue.Queue
}

// Open builds a Runtime. No queues are opened yet.
func Open(opts Options) (*Runtime, error) {
	root := opts.DataDir
	if root == "" {
		root = opts.Config.RootDir
	}
	if root == "" {
		root = cfgpkg.DefaultDataDir()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &Runtime{
		rootDir:  root,
		config:   opts.Config,
		logger:   logger,
		registry: worker.NewRegistry(),
		emitter:  telemetry.NewEmitter(opts.Sinks...),
		queues:   make(map[string]*queue.Queue),
	}, nil
}

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// RootDir returns the resolved queue root directory.
func (r *Runtime) RootDir() string { return r.rootDir }

// Registry exposes the shared dispatch registry.
func (r *Runtime) Registry() *worker.Registry { return r.registry }

// OpenQueue opens (or returns the already-open) queue with the given
// name, applying config defaults: retries, capacity, size bound, TTL,
// and a sibling dead-letter queue when a suffix is configured.
func (r *Runtime) OpenQueue(name string) (*queue.Queue, error) {
	if name == "" {
		return nil, errors.New("queue name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if q, ok := r.queues[name]; ok {
		return q, nil
	}

	d := r.config.QueueDefaults
	opts := queue.Options{
		RootDir:           r.rootDir,
		Name:              name,
		MaxRetries:        d.MaxRetries,
		MaxQueuedMessages: d.MaxQueuedMessages,
		MaxMessageBytes:   d.MaxMessageBytes,
		MessageTTLSeconds: d.MessageTTLSeconds,
	}
	if d.DeadLetterSuffix != "" {
		opts.DeadLetters = &queue.Options{
			RootDir:    r.rootDir,
			Name:       name + d.DeadLetterSuffix,
			MaxRetries: queue.RetriesUnlimited,
		}
	}

	q, err := queue.Open(opts, r.emitter, r.logger.WithComponent("queue"))
	if err != nil {
		return nil, err
	}
	r.queues[name] = q
	return q, nil
}

// dispatchGroup names the broadcast group for a queue: the configured
// worker group scoped by queue name, so pools serving different queues
// never share wake-ups while distinct groups (e.g. per deployment
// role) stay isolated from each other.
func (r *Runtime) dispatchGroup(queueName string) string {
	return r.config.WorkerDefaults.Group + "/" + queueName
}

// Push enqueues a payload and wakes the queue's dispatch group.
func (r *Runtime) Push(q *queue.Queue, payload []byte) error {
	if err := q.Push(payload); err != nil {
		return err
	}
	r.registry.Broadcast(r.dispatchGroup(q.Name()))
	return nil
}

// StartWorkers runs count workers against the queue until ctx is
// cancelled; the pool joins the queue's dispatch group (see
// dispatchGroup). It blocks; run it from a goroutine when the caller
// has other work to do.
func (r *Runtime) StartWorkers(ctx context.Context, q *queue.Queue, handler worker.Handler, count int) error {
	wd := r.config.WorkerDefaults
	if count <= 0 {
		count = wd.Count
	}
	if count <= 0 {
		count = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		w := worker.New(worker.Options{
			Backend:      q,
			Handler:      handler,
			Registry:     r.registry,
			Group:        r.dispatchGroup(q.Name()),
			Timeout:      time.Duration(wd.TimeoutMs) * time.Millisecond,
			PollInterval: time.Duration(wd.PollIntervalMs) * time.Millisecond,
			Logger:       r.logger.WithComponent("worker"),
		})
		g.Go(func() error { return w.Run(gctx) })
	}
	r.logger.Info("worker pool started",
		logpkg.Str("queue", q.Name()),
		logpkg.Str("group", r.dispatchGroup(q.Name())),
		logpkg.Int("count", count))
	return g.Wait()
}
