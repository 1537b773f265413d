package memory

import "testing"

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	session := store.GetOrCreate("session-1")
	if session == nil {
		t.Fatalf("expected session")
	}
	if again := store.GetOrCreate("session-1"); again != session {
		t.Fatalf("expected the same session for the same id")
	}
	if _, ok := store.Get("session-1"); !ok {
		t.Fatalf("expected session present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected one live session, got %d", store.Len())
	}

	store.Delete("session-1")
	if _, ok := store.Get("session-1"); ok {
		t.Fatalf("expected session removed")
	}
	store.Delete("session-1")
}

func TestSessionStoreKeepsSessionsIndependent(t *testing.T) {
	store := NewSessionStore()
	a := store.GetOrCreate("a")
	b := store.GetOrCreate("b")
	if a == b {
		t.Fatalf("expected distinct sessions")
	}
	if a.ID() != "a" || b.ID() != "b" {
		t.Fatalf("unexpected ids %q %q", a.ID(), b.ID())
	}
}
