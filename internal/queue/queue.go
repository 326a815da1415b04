package queue

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rzbill/spool/internal/storage/fsdir"
	"github.com/rzbill/spool/internal/telemetry"
	"github.com/rzbill/spool/pkg/id"
	logpkg "github.com/rzbill/spool/pkg/log"
)

// ErrQueueFull reports a push against a queue at capacity.
var ErrQueueFull = errors.New("queue full")

const (
	queuedDirName = "queued"
	pulledDirName = "pulled"
	tmpDirName    = "tmp"
)

// Options configures a queue. The zero value of each limit disables
// it, except MaxRetries where RetriesUnlimited (-1) disables the cap
// and zero dead-letters on the first failure.
type Options struct {
	// RootDir is the parent directory containing all queues.
	RootDir string
	// Name is the queue's directory name, unique under RootDir.
	Name string
	// MaxRetries caps failed attempts before dead-lettering/discard.
	MaxRetries int
	// MaxQueuedMessages rejects pushes at capacity. <= 0 disables.
	MaxQueuedMessages int
	// MaxMessageBytes rejects oversized payloads. <= 0 disables.
	MaxMessageBytes int
	// MessageTTLSeconds routes older messages as dead at pull time.
	// <= 0 disables.
	MessageTTLSeconds int
	// DeadLetters optionally configures a sibling dead-letter queue.
	// It may itself carry a DeadLetters config (nested DLQ).
	DeadLetters *Options
}

// RetriesUnlimited disables the retry cap.
const RetriesUnlimited = -1

// Queue is a named, durable directory pair plus policy configuration.
// All methods are safe for concurrent use from multiple goroutines and
// processes sharing the same root directory.
type Queue struct {
	opts   Options
	queued fsdir.Dir
	pulled fsdir.Dir
	tmp    fsdir.Dir

	deadLetters *Queue
	clock       *id.Clock
	emitter     *telemetry.Emitter
	logger      logpkg.Logger
}

// Open initializes the queue: directories are created idempotently,
// the dead-letter queue (if configured) is built first, and unfinished
// messages left in pulled/ by a prior crash are requeued with a
// timeout flag before the queue accepts work.
func Open(opts Options, emitter *telemetry.Emitter, logger logpkg.Logger) (*Queue, error) {
	if opts.RootDir == "" {
		return nil, fmt.Errorf("queue %q: RootDir is required", opts.Name)
	}
	if opts.Name == "" {
		return nil, fmt.Errorf("queue: Name is required")
	}
	if logger == nil {
		logger = logpkg.NewLogger(logpkg.WithLevel(logpkg.ErrorLevel))
	}

	q := &Queue{
		opts:    opts,
		clock:   id.NewClock(),
		emitter: emitter,
		logger:  logger.With(logpkg.Str("queue", opts.Name)),
	}

	// Dead-letter queue first, so it exists before its parent routes
	// anything into it.
	if opts.DeadLetters != nil {
		dlq, err := Open(*opts.DeadLetters, emitter, logger)
		if err != nil {
			return nil, fmt.Errorf("open dead letters for %s: %w", opts.Name, err)
		}
		q.deadLetters = dlq
	}

	var err error
	if q.queued, err = fsdir.Ensure(opts.RootDir, opts.Name, queuedDirName); err != nil {
		return nil, err
	}
	if q.pulled, err = fsdir.Ensure(opts.RootDir, opts.Name, pulledDirName); err != nil {
		return nil, err
	}
	// Staging area outside any queue directory, on the same filesystem
	// so the final rename stays atomic.
	if q.tmp, err = fsdir.Ensure(opts.RootDir, tmpDirName); err != nil {
		return nil, err
	}

	if err := q.requeueUnfinished(); err != nil {
		return nil, err
	}
	return q, nil
}

// Name returns the queue's name.
func (q *Queue) Name() string { return q.opts.Name }

// DeadLetters returns the dead-letter queue, or nil.
func (q *Queue) DeadLetters() *Queue { return q.deadLetters }

// Push makes payload durable in queued/. It returns ErrQueueFull at
// capacity and ErrMessageTooLarge for oversized payloads. The count
// check is advisory: transient overshoot under concurrent producers is
// bounded by the number of racers.
func (q *Queue) Push(payload []byte) error {
	count, err := q.queued.FileCount()
	if err != nil {
		return fmt.Errorf("push %s: %w", q.opts.Name, err)
	}
	q.emitter.Length(q.opts.Name, count)

	if q.opts.MaxQueuedMessages > 0 && count >= q.opts.MaxQueuedMessages {
		return ErrQueueFull
	}

	tmpPath, destName, err := writeTemp(q.tmp, payload, q.clock.NextMs(), q.opts.MaxMessageBytes)
	if err != nil {
		return err
	}
	if _, err := q.queued.MoveFile(tmpPath, destName); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("push %s: %w", q.opts.Name, err)
	}

	q.emitter.Push(q.opts.Name)
	q.logger.Debug("message pushed", logpkg.Str("name", destName), logpkg.Int("bytes", len(payload)))
	return nil
}

// Pull transfers ownership of the oldest available message from
// queued/ to pulled/ and returns it, or nil when nothing is available.
// Losing the rename race to another worker returns nil. Messages older
// than the queue TTL are failed as dead and the pull moves on to the
// next candidate.
func (q *Queue) Pull() (*Message, error) {
	return q.pull(id.NowMs())
}

// pull takes the observation time explicitly so TTL behavior is
// testable without sleeping.
func (q *Queue) pull(nowMs int64) (*Message, error) {
	for {
		head, err := q.queued.FirstFile()
		if err != nil {
			return nil, fmt.Errorf("pull %s: %w", q.opts.Name, err)
		}
		if head == "" {
			return nil, nil
		}

		pulledPath, err := q.pulled.MoveFile(head, "")
		if err != nil {
			// Another worker won the rename race.
			q.logger.Debug("lost pull race", logpkg.Str("name", filepath.Base(head)))
			return nil, nil
		}

		msg, err := messageAt(pulledPath)
		if err != nil {
			// Unparseable name: the file cannot be expressed as a
			// message. Leave it in pulled/ for the operator.
			q.logger.Warn("unparseable message in pulled", logpkg.Str("path", pulledPath), logpkg.Err(err))
			return nil, nil
		}

		if msg.Payload, err = readPayload(pulledPath); err != nil {
			// The file stays in pulled/; the next restart requeues it
			// with a timeout flag and it ages out through the retry
			// bound.
			q.logger.Error("payload read failed", logpkg.Str("path", pulledPath), logpkg.Err(err))
			return nil, nil
		}

		if ttl := int64(q.opts.MessageTTLSeconds); ttl > 0 && nowMs-msg.TimestampMs > ttl*1000 {
			q.logger.Debug("message expired", logpkg.Str("name", filepath.Base(pulledPath)))
			if err := q.Fail(msg, FlagDead); err != nil {
				return nil, err
			}
			continue
		}

		q.emitter.Pull(q.opts.Name, msg.TimestampMs)
		return msg, nil
	}
}

// Acknowledge terminally succeeds the message: its file is removed.
func (q *Queue) Acknowledge(m *Message) error {
	if err := os.Remove(m.Path); err != nil {
		return fmt.Errorf("acknowledge %s: %w", q.opts.Name, err)
	}
	q.logger.Debug("message acknowledged", logpkg.Str("name", filepath.Base(m.Path)))
	return nil
}

// Fail records a failed attempt. Dead messages route to the
// dead-letter queue (or are deleted without one); messages at the
// retry cap are failed as dead; everything else is renamed back into
// queued/ with flag appended to its attempt history.
func (q *Queue) Fail(m *Message, flag string) error {
	if flag == "" {
		flag = FlagError
	}
	if err := validFlag(flag); err != nil {
		return fmt.Errorf("fail %s: %w", q.opts.Name, err)
	}

	switch {
	case flag == FlagDead && q.deadLetters != nil:
		if _, err := q.deadLetters.queued.MoveFile(m.Path, m.NameWithFlag(FlagDead)); err != nil {
			return fmt.Errorf("fail %s: %w", q.opts.Name, err)
		}
		q.logger.Debug("message dead-lettered", logpkg.Str("name", filepath.Base(m.Path)))
		return nil

	case flag == FlagDead:
		if err := os.Remove(m.Path); err != nil {
			return fmt.Errorf("fail %s: %w", q.opts.Name, err)
		}
		q.logger.Debug("dead message discarded", logpkg.Str("name", filepath.Base(m.Path)))
		return nil

	case q.opts.MaxRetries != RetriesUnlimited && len(m.Attempts) >= q.opts.MaxRetries:
		return q.Fail(m, FlagDead)

	default:
		if _, err := q.queued.MoveFile(m.Path, m.NameWithFlag(flag)); err != nil {
			return fmt.Errorf("fail %s: %w", q.opts.Name, err)
		}
		q.logger.Debug("message requeued", logpkg.Str("name", filepath.Base(m.Path)), logpkg.Str("flag", flag))
		return nil
	}
}

// Length returns a snapshot count of queued/.
func (q *Queue) Length() (int, error) {
	return q.queued.FileCount()
}

// Stats is a point-in-time view of the queue's directories.
type Stats struct {
	Queued           int
	Pulled           int
	DeadLetterQueued int
}

// Stats snapshots the queue state for operators.
func (q *Queue) Stats() (Stats, error) {
	var s Stats
	var err error
	if s.Queued, err = q.queued.FileCount(); err != nil {
		return Stats{}, err
	}
	if s.Pulled, err = q.pulled.FileCount(); err != nil {
		return Stats{}, err
	}
	if q.deadLetters != nil {
		if s.DeadLetterQueued, err = q.deadLetters.queued.FileCount(); err != nil {
			return Stats{}, err
		}
	}
	return s, nil
}

// requeueUnfinished sweeps pulled/ once at open time, failing every
// orphan with a timeout flag. Only the filename is needed, so a file
// with an unreadable payload still moves; a file whose name does not
// parse is left for the operator.
func (q *Queue) requeueUnfinished() error {
	files, err := q.pulled.AllFiles()
	if err != nil {
		return fmt.Errorf("recover %s: %w", q.opts.Name, err)
	}
	recovered := 0
	for _, path := range files {
		msg, err := messageAt(path)
		if err != nil {
			q.logger.Warn("skipping unparseable file during recovery", logpkg.Str("path", path), logpkg.Err(err))
			continue
		}
		if err := q.Fail(msg, FlagTimeout); err != nil {
			return fmt.Errorf("recover %s: %w", q.opts.Name, err)
		}
		recovered++
	}
	if recovered > 0 {
		q.logger.Info("requeued unfinished messages", logpkg.Int("count", recovered))
	}
	return nil
}
