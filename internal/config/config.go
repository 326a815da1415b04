package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// RetriesUnlimited disables the retry cap for a queue.
const RetriesUnlimited = -1

// Config is the top-level configuration loaded from file/env.
type Config struct {
	RootDir        string         `json:"rootDir"`
	QueueDefaults  QueueDefaults  `json:"queueDefaults"`
	WorkerDefaults WorkerDefaults `json:"workerDefaults"`
}

// QueueDefaults captures per-queue baseline policy. Individual queues
// may override any of these at open time.
type QueueDefaults struct {
	// MaxRetries is the number of failed attempts allowed before a
	// message is dead-lettered or discarded. RetriesUnlimited disables
	// the cap.
	MaxRetries int `json:"maxRetries"`
	// MaxQueuedMessages rejects pushes once queued/ holds this many
	// files. Zero or negative disables the cap.
	MaxQueuedMessages int `json:"maxQueuedMessages"`
	// MaxMessageBytes rejects payloads larger than this.
	MaxMessageBytes int `json:"maxMessageBytes"`
	// MessageTTLSeconds routes messages older than this as dead at
	// pull time. Zero or negative disables expiry.
	MessageTTLSeconds int `json:"messageTtlSeconds"`
	// DeadLetterSuffix names the sibling dead-letter queue as
	// <queue><suffix>. Empty disables dead-lettering by default.
	DeadLetterSuffix string `json:"deadLetterSuffix"`
}

// WorkerDefaults captures baseline worker-pool settings.
type WorkerDefaults struct {
	Count          int    `json:"count"`
	TimeoutMs      int    `json:"timeoutMs"`
	PollIntervalMs int    `json:"pollIntervalMs"`
	Group          string `json:"group"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		QueueDefaults: QueueDefaults{
			MaxRetries:        5,
			MaxQueuedMessages: 10_000,
			MaxMessageBytes:   1 << 20,
			MessageTTLSeconds: 0,
			DeadLetterSuffix:  "-dead-letter",
		},
		WorkerDefaults: WorkerDefaults{
			Count:          4,
			TimeoutMs:      30_000,
			PollIntervalMs: 1_000,
			Group:          "default",
		},
	}
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, errors.New("yaml config not supported; use JSON")
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
