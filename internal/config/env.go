package config

import (
	"os"
	"strconv"
)

// FromEnv overlays SPOOL_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("SPOOL_ROOT_DIR"); v != "" {
		cfg.RootDir = v
	}
	if v := os.Getenv("SPOOL_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueDefaults.MaxRetries = n
		}
	}
	if v := os.Getenv("SPOOL_MAX_QUEUED_MESSAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueDefaults.MaxQueuedMessages = n
		}
	}
	if v := os.Getenv("SPOOL_MAX_MESSAGE_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueDefaults.MaxMessageBytes = n
		}
	}
	if v := os.Getenv("SPOOL_MESSAGE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueDefaults.MessageTTLSeconds = n
		}
	}
	if v := os.Getenv("SPOOL_DEAD_LETTER_SUFFIX"); v != "" {
		cfg.QueueDefaults.DeadLetterSuffix = v
	}
	if v := os.Getenv("SPOOL_WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkerDefaults.Count = n
		}
	}
	if v := os.Getenv("SPOOL_WORKER_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkerDefaults.TimeoutMs = n
		}
	}
	if v := os.Getenv("SPOOL_WORKER_POLL_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkerDefaults.PollIntervalMs = n
		}
	}
	if v := os.Getenv("SPOOL_WORKER_GROUP"); v != "" {
		cfg.WorkerDefaults.Group = v
	}
}
