package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.QueueDefaults.MaxRetries != 5 {
		t.Fatalf("max retries default")
	}
	if cfg.QueueDefaults.MaxMessageBytes != 1<<20 {
		t.Fatalf("max message bytes default")
	}
	if cfg.WorkerDefaults.PollIntervalMs != 1000 {
		t.Fatalf("poll interval default")
	}
	if cfg.QueueDefaults.DeadLetterSuffix != "-dead-letter" {
		t.Fatalf("dead letter suffix default")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "spool.json")
	data := []byte(`{"rootDir":"/srv/spool","queueDefaults":{"maxRetries":2,"maxQueuedMessages":100,"maxMessageBytes":2048,"messageTtlSeconds":60},"workerDefaults":{"count":8,"timeoutMs":5000}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RootDir != "/srv/spool" {
		t.Fatalf("expected /srv/spool")
	}
	if cfg.QueueDefaults.MaxRetries != 2 {
		t.Fatalf("expected 2 retries")
	}
	if cfg.QueueDefaults.MessageTTLSeconds != 60 {
		t.Fatalf("expected ttl 60")
	}
	if cfg.WorkerDefaults.Count != 8 {
		t.Fatalf("expected 8 workers")
	}
	// untouched keys keep defaults
	if cfg.WorkerDefaults.PollIntervalMs != 1000 {
		t.Fatalf("expected default poll interval")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("SPOOL_ROOT_DIR", "/tmp/spool-env")
	os.Setenv("SPOOL_MAX_RETRIES", "9")
	os.Setenv("SPOOL_WORKER_TIMEOUT_MS", "1234")
	t.Cleanup(func() {
		os.Unsetenv("SPOOL_ROOT_DIR")
		os.Unsetenv("SPOOL_MAX_RETRIES")
		os.Unsetenv("SPOOL_WORKER_TIMEOUT_MS")
	})
	FromEnv(&cfg)
	if cfg.RootDir != "/tmp/spool-env" {
		t.Fatalf("env override root dir")
	}
	if cfg.QueueDefaults.MaxRetries != 9 {
		t.Fatalf("env override retries")
	}
	if cfg.WorkerDefaults.TimeoutMs != 1234 {
		t.Fatalf("env override timeout")
	}
}
