package queue

import (
	"testing"
)

func TestEncodeName(t *testing.T) {
	if got := EncodeName(1700000000001, nil); got != "1700000000001" {
		t.Fatalf("bare timestamp: %s", got)
	}
	got := EncodeName(1700000000001, []string{"error", "timeout"})
	if got != "1700000000001.error.timeout" {
		t.Fatalf("with attempts: %s", got)
	}
}

func TestParseName(t *testing.T) {
	ts, attempts, err := ParseName("1700000000001.timeout.error.dead")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ts != 1700000000001 {
		t.Fatalf("timestamp: %d", ts)
	}
	if len(attempts) != 3 || attempts[0] != "timeout" || attempts[1] != "error" || attempts[2] != "dead" {
		t.Fatalf("attempts: %v", attempts)
	}
}

func TestParseNameRejectsGarbage(t *testing.T) {
	for _, name := range []string{"", "abc", "-5", "1700000000001..error", "x.timeout"} {
		if _, _, err := ParseName(name); err == nil {
			t.Fatalf("expected error for %q", name)
		}
	}
}

func TestNameWithFlagRoundTrip(t *testing.T) {
	m := &Message{TimestampMs: 1700000000001, Attempts: []string{"error"}}
	name := m.NameWithFlag("timeout")
	ts, attempts, err := ParseName(name)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ts != m.TimestampMs {
		t.Fatalf("timestamp not preserved: %d", ts)
	}
	if len(attempts) != 2 || attempts[0] != "error" || attempts[1] != "timeout" {
		t.Fatalf("attempts not extended: %v", attempts)
	}
	// the original message is untouched
	if len(m.Attempts) != 1 {
		t.Fatalf("NameWithFlag mutated the message: %v", m.Attempts)
	}
}

func TestValidFlag(t *testing.T) {
	if err := validFlag("requeue"); err != nil {
		t.Fatalf("plain token should pass: %v", err)
	}
	for _, flag := range []string{"", "a.b", "a/b"} {
		if err := validFlag(flag); err == nil {
			t.Fatalf("expected rejection for %q", flag)
		}
	}
}
