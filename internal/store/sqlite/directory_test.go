package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Artemis43/telegram-support-bot/internal/store"
)

func openTestDirectory(t *testing.T) *Directory {
	t.Helper()
	dir, err := Open(filepath.Join(t.TempDir(), "bridge.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { dir.Close() })
	return dir
}

func TestCreateAndLookup(t *testing.T) {
	dir := openTestDirectory(t)
	ctx := context.Background()

	m := store.Mapping{ChatID: 100, DisplayName: "alice", ThreadID: 42}
	if err := dir.Create(ctx, m); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	threadID, ok, err := dir.ThreadByChat(ctx, 100)
	if err != nil || !ok || threadID != 42 {
		t.Errorf("ThreadByChat(100) = (%d, %t, %v), want (42, true, nil)", threadID, ok, err)
	}

	chatID, ok, err := dir.ChatByThread(ctx, 42)
	if err != nil || !ok || chatID != 100 {
		t.Errorf("ChatByThread(42) = (%d, %t, %v), want (100, true, nil)", chatID, ok, err)
	}
}

func TestLookupMiss(t *testing.T) {
	dir := openTestDirectory(t)
	ctx := context.Background()

	if _, ok, err := dir.ThreadByChat(ctx, 999); ok || err != nil {
		t.Errorf("ThreadByChat(999) ok=%t err=%v, want a clean miss", ok, err)
	}
	if _, ok, err := dir.ChatByThread(ctx, 999); ok || err != nil {
		t.Errorf("ChatByThread(999) ok=%t err=%v, want a clean miss", ok, err)
	}
}

func TestCreateDuplicates(t *testing.T) {
	dir := openTestDirectory(t)
	ctx := context.Background()

	if err := dir.Create(ctx, store.Mapping{ChatID: 100, DisplayName: "alice", ThreadID: 42}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name string
		m    store.Mapping
	}{
		{"same chat", store.Mapping{ChatID: 100, DisplayName: "alice", ThreadID: 43}},
		{"same thread", store.Mapping{ChatID: 200, DisplayName: "bob", ThreadID: 42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dir.Create(ctx, tt.m)
			if !errors.Is(err, store.ErrDuplicate) {
				t.Errorf("Create(%+v) error = %v, want ErrDuplicate", tt.m, err)
			}
		})
	}

	// The original row is untouched by the failed inserts.
	threadID, ok, err := dir.ThreadByChat(ctx, 100)
	if err != nil || !ok || threadID != 42 {
		t.Errorf("ThreadByChat(100) = (%d, %t, %v), want (42, true, nil)", threadID, ok, err)
	}
}

// Round trip holds for every persisted mapping: ChatByThread(ThreadByChat(c)) == c.
func TestRoundTrip(t *testing.T) {
	dir := openTestDirectory(t)
	ctx := context.Background()

	mappings := []store.Mapping{
		{ChatID: 100, DisplayName: "alice", ThreadID: 42},
		{ChatID: 200, DisplayName: "bob", ThreadID: 43},
		{ChatID: 300, DisplayName: "carol", ThreadID: 44},
	}
	for _, m := range mappings {
		if err := dir.Create(ctx, m); err != nil {
			t.Fatalf("Create(%+v) error = %v", m, err)
		}
	}

	for _, m := range mappings {
		threadID, ok, err := dir.ThreadByChat(ctx, m.ChatID)
		if err != nil || !ok {
			t.Fatalf("ThreadByChat(%d) miss: %v", m.ChatID, err)
		}
		chatID, ok, err := dir.ChatByThread(ctx, threadID)
		if err != nil || !ok || chatID != m.ChatID {
			t.Errorf("round trip for chat %d came back as %d", m.ChatID, chatID)
		}
	}
}
