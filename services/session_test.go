package services

import (
	"fmt"
	"testing"
	"time"
)

func TestSessionStore_CreateAndClear(t *testing.T) {
	ss := NewSessionStore(5)

	id := ss.Create()
	if id == "" {
		t.Fatalf("expected non-empty session id")
	}
	if ss.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", ss.Len())
	}

	ss.Clear(id)
	if ss.Len() != 0 {
		t.Fatalf("expected 0 sessions after clear, got %d", ss.Len())
	}

	// Clearing twice must not panic.
	ss.Clear(id)
}

func TestSessionStore_CreatedOnFirstContact(t *testing.T) {
	ss := NewSessionStore(5)

	if h := ss.History("unknown"); len(h) != 0 {
		t.Fatalf("unknown session should have empty history")
	}

	ss.AppendExchange("fresh", "hello", "hi there")
	h := ss.History("fresh")
	if len(h) != 2 {
		t.Fatalf("expected 2 turns after one exchange, got %d", len(h))
	}
	if h[0].Role != "user" || h[0].Content != "hello" {
		t.Fatalf("unexpected first turn: %+v", h[0])
	}
	if h[1].Role != "assistant" || h[1].Content != "hi there" {
		t.Fatalf("unexpected second turn: %+v", h[1])
	}
}

func TestSessionStore_TrimsToRetentionWindow(t *testing.T) {
	ss := NewSessionStore(5)

	for i := 0; i < 8; i++ {
		ss.AppendExchange("s", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	h := ss.History("s")
	if len(h) != 10 {
		t.Fatalf("expected 10 retained turns (5 pairs), got %d", len(h))
	}
	if h[0].Content != "q3" {
		t.Fatalf("expected oldest retained turn q3, got %q", h[0].Content)
	}
	if h[9].Content != "a7" {
		t.Fatalf("expected newest retained turn a7, got %q", h[9].Content)
	}
}

func TestSessionStore_HistoryIsACopy(t *testing.T) {
	ss := NewSessionStore(5)
	ss.AppendExchange("s", "q", "a")

	h := ss.History("s")
	h[0].Content = "mutated"

	if ss.History("s")[0].Content != "q" {
		t.Fatalf("mutating the returned history must not affect the store")
	}
}

func TestSessionStore_SessionsAreIndependent(t *testing.T) {
	ss := NewSessionStore(5)
	ss.AppendExchange("a", "question a", "answer a")
	ss.AppendExchange("b", "question b", "answer b")

	if got := ss.History("a")[0].Content; got != "question a" {
		t.Fatalf("session a history polluted: %q", got)
	}
	if len(ss.History("b")) != 2 {
		t.Fatalf("session b should have exactly its own turns")
	}
}

func TestSessionStore_EvictIdle(t *testing.T) {
	ss := NewSessionStore(5)
	ss.AppendExchange("old", "q", "a")

	// Backdate the session by reaching through the public API: an eviction
	// with a zero TTL removes everything not touched "now".
	time.Sleep(10 * time.Millisecond)
	evicted := ss.EvictIdle(time.Millisecond)
	if evicted != 1 {
		t.Fatalf("expected 1 evicted session, got %d", evicted)
	}
	if ss.Len() != 0 {
		t.Fatalf("expected no sessions after eviction, got %d", ss.Len())
	}

	ss.AppendExchange("fresh", "q", "a")
	if evicted := ss.EvictIdle(time.Hour); evicted != 0 {
		t.Fatalf("active session must survive eviction, evicted %d", evicted)
	}
}
