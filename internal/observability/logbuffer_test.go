package observability

import (
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func entry(msg string) zapcore.Entry {
	return zapcore.Entry{Time: time.Now(), Level: zapcore.InfoLevel, Message: msg}
}

func TestLogBufferKeepsOrder(t *testing.T) {
	b := NewLogBuffer(4)
	b.Record(entry("one"))
	b.Record(entry("two"))

	got := b.Entries()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Message != "one" || got[1].Message != "two" {
		t.Errorf("unexpected order: %v", got)
	}
	if got[0].Level != "info" {
		t.Errorf("expected info level, got %s", got[0].Level)
	}
}

func TestLogBufferEvictsOldest(t *testing.T) {
	b := NewLogBuffer(3)
	for i := 0; i < 5; i++ {
		b.Record(entry(fmt.Sprintf("msg-%d", i)))
	}

	got := b.Entries()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	want := []string{"msg-2", "msg-3", "msg-4"}
	for i, msg := range want {
		if got[i].Message != msg {
			t.Errorf("entry %d: expected %s, got %s", i, msg, got[i].Message)
		}
	}
	if b.Len() != 3 {
		t.Errorf("expected len 3, got %d", b.Len())
	}
}
