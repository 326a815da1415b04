package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rzbill/spool/internal/queue"
)

func openTestQueue(t *testing.T) *queue.Queue {
	t.Helper()
	q, err := queue.Open(queue.Options{
		RootDir:    t.TempDir(),
		Name:       "jobs",
		MaxRetries: 5,
	}, nil, nil)
	if err != nil {
		t.Fatalf("open queue: %v", err)
	}
	return q
}

func startWorker(t *testing.T, q *queue.Queue, handler Handler, timeout time.Duration) (*Registry, context.CancelFunc) {
	t.Helper()
	reg := NewRegistry()
	w := New(Options{
		Backend:      q,
		Handler:      handler,
		Registry:     reg,
		Group:        "jobs",
		Timeout:      timeout,
		PollInterval: 10 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Run(ctx) }()
	t.Cleanup(cancel)
	return reg, cancel
}

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached within %v", d)
}

func TestWorkerAcknowledgesSuccess(t *testing.T) {
	q := openTestQueue(t)
	got := make(chan []byte, 1)
	startWorker(t, q, func(_ context.Context, payload []byte) error {
		got <- payload
		return nil
	}, time.Second)

	if err := q.Push([]byte("hello")); err != nil {
		t.Fatalf("push: %v", err)
	}

	select {
	case payload := <-got:
		if string(payload) != "hello" {
			t.Fatalf("payload: %q", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("handler never ran")
	}
	waitFor(t, 2*time.Second, func() bool {
		s, err := q.Stats()
		return err == nil && s.Queued == 0 && s.Pulled == 0
	})
}

func TestWorkerFailsHandlerError(t *testing.T) {
	q := openTestQueue(t)
	calls := make(chan struct{}, 16)
	startWorker(t, q, func(_ context.Context, _ []byte) error {
		calls <- struct{}{}
		return errors.New("boom")
	}, time.Second)

	if err := q.Push([]byte("p")); err != nil {
		t.Fatalf("push: %v", err)
	}

	<-calls
	// The message must come back with an error flag and be retried.
	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatalf("failed message never retried")
	}
}

func TestWorkerFailsHandlerPanic(t *testing.T) {
	q := openTestQueue(t)
	calls := make(chan int, 16)
	n := 0
	startWorker(t, q, func(_ context.Context, _ []byte) error {
		n++
		calls <- n
		if n == 1 {
			panic("handler exploded")
		}
		return nil
	}, time.Second)

	if err := q.Push([]byte("p")); err != nil {
		t.Fatalf("push: %v", err)
	}

	<-calls
	// The panic is converted into an error outcome; the retried
	// attempt succeeds and drains the queue.
	waitFor(t, 2*time.Second, func() bool {
		s, err := q.Stats()
		return err == nil && s.Queued == 0 && s.Pulled == 0
	})
}

func TestWorkerTimesOutStuckHandler(t *testing.T) {
	q := openTestQueue(t)
	started := make(chan struct{}, 16)
	release := make(chan struct{})
	var timedOut atomic.Bool
	startWorker(t, q, func(ctx context.Context, payload []byte) error {
		started <- struct{}{}
		if timedOut.CompareAndSwap(false, true) {
			select {
			case <-release: // never fires; stand in for an infinite loop
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}, 50*time.Millisecond)

	if err := q.Push([]byte("slow")); err != nil {
		t.Fatalf("push: %v", err)
	}

	<-started
	// After the kill timer fires, the message re-enters queued/ with a
	// timeout flag and the worker resumes within one idle cycle.
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not resume after timeout")
	}
	waitFor(t, 2*time.Second, func() bool {
		s, err := q.Stats()
		return err == nil && s.Queued == 0 && s.Pulled == 0
	})
}

// recordingBackend hands out one message and records the transition
// the worker applies to it.
type recordingBackend struct {
	mu     sync.Mutex
	msg    *queue.Message
	acked  bool
	failed []string
}

func (b *recordingBackend) Pull() (*queue.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.msg
	b.msg = nil
	return m, nil
}

func (b *recordingBackend) Acknowledge(*queue.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.acked = true
	return nil
}

func (b *recordingBackend) Fail(_ *queue.Message, flag string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failed = append(b.failed, flag)
	return nil
}

func (b *recordingBackend) flags() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.failed...)
}

func TestTimeoutFlagRecorded(t *testing.T) {
	backend := &recordingBackend{msg: &queue.Message{Path: "/x/1000", TimestampMs: 1000}}
	w := New(Options{
		Backend:      backend,
		Handler:      func(ctx context.Context, _ []byte) error { <-ctx.Done(); return ctx.Err() },
		Timeout:      30 * time.Millisecond,
		PollInterval: 10 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	waitFor(t, 2*time.Second, func() bool {
		flags := backend.flags()
		return len(flags) == 1 && flags[0] == queue.FlagTimeout
	})
	if backend.acked {
		t.Fatalf("timed-out job must not be acknowledged")
	}
}

func TestBroadcastWakesIdleWorker(t *testing.T) {
	q := openTestQueue(t)
	got := make(chan struct{}, 1)
	// A poll interval far longer than the test: delivery relies on the
	// wake-up alone.
	reg := NewRegistry()
	w := New(Options{
		Backend:      q,
		Handler:      func(context.Context, []byte) error { got <- struct{}{}; return nil },
		Registry:     reg,
		Group:        "jobs",
		Timeout:      time.Second,
		PollInterval: time.Hour,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	waitFor(t, time.Second, func() bool { return reg.Members("jobs") == 1 })
	// Give the worker time to finish its first empty pull and block.
	time.Sleep(50 * time.Millisecond)

	if err := q.Push([]byte("p")); err != nil {
		t.Fatalf("push: %v", err)
	}
	reg.Broadcast("jobs")

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatalf("broadcast did not wake the worker")
	}
}

func TestWorkerSurvivesManyJobs(t *testing.T) {
	q := openTestQueue(t)
	done := make(chan string, 64)
	startWorker(t, q, func(_ context.Context, payload []byte) error {
		if strings.HasPrefix(string(payload), "bad") {
			return errors.New("rejected")
		}
		done <- string(payload)
		return nil
	}, time.Second)

	for _, p := range []string{"a", "bad-1", "b", "c"} {
		if err := q.Push([]byte(p)); err != nil {
			t.Fatalf("push %s: %v", p, err)
		}
	}

	seen := map[string]bool{}
	for len(seen) < 3 {
		select {
		case p := <-done:
			seen[p] = true
		case <-time.After(3 * time.Second):
			t.Fatalf("only saw %v", seen)
		}
	}
}
