package queue

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rzbill/spool/internal/storage/fsdir"
)

func tmpFsdir(t *testing.T) fsdir.Dir {
	t.Helper()
	d, err := fsdir.Ensure(t.TempDir(), "tmp")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	return d
}

func TestWriteTempAndReadBack(t *testing.T) {
	dir := tmpFsdir(t)
	tmpPath, destName, err := writeTemp(dir, []byte("payload"), 1700000000001, 1024)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if destName != "1700000000001" {
		t.Fatalf("dest name: %s", destName)
	}
	base := filepath.Base(tmpPath)
	if !strings.HasPrefix(base, "1700000000001.") || !strings.HasSuffix(base, ".tmp") {
		t.Fatalf("temp name not sortable/tagged: %s", base)
	}
	got, err := readPayload(tmpPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("round trip: %q", got)
	}
}

func TestWriteTempSizeBound(t *testing.T) {
	dir := tmpFsdir(t)
	_, _, err := writeTemp(dir, make([]byte, 100), 1700000000001, 99)
	if !errors.Is(err, ErrMessageTooLarge) {
		t.Fatalf("want ErrMessageTooLarge, got %v", err)
	}
	// nothing left behind
	entries, _ := os.ReadDir(dir.Path())
	if len(entries) != 0 {
		t.Fatalf("oversized write left files: %v", entries)
	}
	// exactly at the bound passes
	if _, _, err := writeTemp(dir, make([]byte, 99), 1700000000002, 99); err != nil {
		t.Fatalf("at-bound write: %v", err)
	}
}

func TestWriteTempNoBound(t *testing.T) {
	dir := tmpFsdir(t)
	if _, _, err := writeTemp(dir, make([]byte, 1<<16), 1700000000001, 0); err != nil {
		t.Fatalf("unbounded write: %v", err)
	}
}
