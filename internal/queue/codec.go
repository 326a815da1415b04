package queue

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/rzbill/spool/internal/storage/fsdir"
)

// ErrMessageTooLarge reports a payload exceeding the queue's size
// bound.
var ErrMessageTooLarge = errors.New("message too large")

// writeTemp writes payload to a freshly created exclusive file in
// tmpDir and returns its path together with the destination name a
// later rename into queued/ should use. The temp name starts with the
// message timestamp so listings of the staging directory stay sortable
// too; the uuid keeps concurrent producers from colliding.
func writeTemp(tmpDir fsdir.Dir, payload []byte, timestampMs int64, maxBytes int) (tmpPath, destName string, err error) {
	if maxBytes > 0 && len(payload) > maxBytes {
		return "", "", fmt.Errorf("%w: %d bytes over limit %d", ErrMessageTooLarge, len(payload), maxBytes)
	}
	destName = strconv.FormatInt(timestampMs, 10)
	tmpPath = tmpDir.Join(destName + "." + uuid.NewString() + ".tmp")

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("write temp file: %w", err)
	}
	// Push promises durability once it returns ok.
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("close temp file: %w", err)
	}
	return tmpPath, destName, nil
}

// readPayload reads a message's payload back from its current path.
func readPayload(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload %s: %w", path, err)
	}
	return b, nil
}
