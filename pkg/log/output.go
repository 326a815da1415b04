package log

import (
	"io"
	"os"
	"sync"
)

// ConsoleOutput writes formatted entries to standard output, routing
// Error and Fatal entries to standard error.
type ConsoleOutput struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

// NewConsoleOutput returns a ConsoleOutput bound to the process streams.
func NewConsoleOutput() *ConsoleOutput {
	return &ConsoleOutput{stdout: os.Stdout, stderr: os.Stderr}
}

func (o *ConsoleOutput) Write(entry *Entry, formattedEntry []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	w := o.stdout
	if entry.Level >= ErrorLevel {
		w = o.stderr
	}
	_, err := w.Write(formattedEntry)
	return err
}

func (o *ConsoleOutput) Close() error { return nil }

// WriterOutput adapts any io.Writer into an Output. Useful in tests.
type WriterOutput struct {
	mu sync.Mutex
	W  io.Writer
}

func (o *WriterOutput) Write(_ *Entry, formattedEntry []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.W.Write(formattedEntry)
	return err
}

func (o *WriterOutput) Close() error { return nil }
