package queue

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Flags recorded in filenames after each failed attempt.
const (
	FlagTimeout = "timeout"
	FlagError   = "error"
	FlagDead    = "dead"
)

// Message is a single unit of work. Its identity is the file path that
// currently holds it; moving the file moves the message between
// states.
type Message struct {
	// Path is the file currently holding the message.
	Path string
	// Payload is the opaque bytes supplied at push. Nil until read.
	Payload []byte
	// TimestampMs is the push time encoded in the filename.
	TimestampMs int64
	// Attempts records the flag of each prior failure, oldest first.
	Attempts []string
}

// EncodeName renders the filename for a timestamp and attempt history:
// <timestamp_ms>(.<flag>)*.
func EncodeName(timestampMs int64, attempts []string) string {
	name := strconv.FormatInt(timestampMs, 10)
	if len(attempts) == 0 {
		return name
	}
	return name + "." + strings.Join(attempts, ".")
}

// ParseName recovers the timestamp and attempt history from a message
// filename.
func ParseName(name string) (int64, []string, error) {
	parts := strings.Split(name, ".")
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || ts < 0 {
		return 0, nil, fmt.Errorf("bad message name %q: no timestamp", name)
	}
	var attempts []string
	for _, flag := range parts[1:] {
		if flag == "" {
			return 0, nil, fmt.Errorf("bad message name %q: empty flag", name)
		}
		attempts = append(attempts, flag)
	}
	return ts, attempts, nil
}

// messageAt builds a Message from a file path using only the filename;
// the payload stays unread.
func messageAt(path string) (*Message, error) {
	ts, attempts, err := ParseName(filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return &Message{Path: path, TimestampMs: ts, Attempts: attempts}, nil
}

// NameWithFlag returns the filename the message would have after
// appending flag to its attempt history.
func (m *Message) NameWithFlag(flag string) string {
	attempts := make([]string, 0, len(m.Attempts)+1)
	attempts = append(attempts, m.Attempts...)
	attempts = append(attempts, flag)
	return EncodeName(m.TimestampMs, attempts)
}

// validFlag rejects flags that would corrupt the filename grammar.
func validFlag(flag string) error {
	if flag == "" {
		return fmt.Errorf("empty flag")
	}
	if strings.ContainsAny(flag, "./"+string(filepath.Separator)) {
		return fmt.Errorf("invalid flag %q", flag)
	}
	return nil
}
