package memory

import (
	"fmt"
	"sync"
	"testing"
)

func TestGetOrCreateRegistersEmptyTranscript(t *testing.T) {
	s := NewStore()
	if turns := s.GetOrCreate("s1"); len(turns) != 0 {
		t.Fatalf("new session should start empty, got %d turns", len(turns))
	}
	s.Append("s1", "user", "hello")
	if turns := s.GetOrCreate("s1"); len(turns) != 1 {
		t.Fatalf("expected 1 turn after append, got %d", len(turns))
	}
}

func TestGetOrCreateReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Append("s1", "user", "hello")
	turns := s.GetOrCreate("s1")
	turns[0].Content = "mutated"
	if got := s.GetOrCreate("s1")[0].Content; got != "hello" {
		t.Fatalf("caller mutation leaked into the store: %q", got)
	}
}

func TestAppendKeepsOrder(t *testing.T) {
	s := NewStore()
	s.Append("s1", "user", "first")
	s.Append("s1", "assistant", "second")
	s.Append("s1", "user", "third")

	turns := s.GetOrCreate("s1")
	want := []Turn{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
		{Role: "user", Content: "third"},
	}
	if len(turns) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(turns))
	}
	for i := range want {
		if turns[i] != want[i] {
			t.Fatalf("turn %d = %+v, want %+v", i, turns[i], want[i])
		}
	}
}

func TestClearIsIdempotent(t *testing.T) {
	s := NewStore()
	s.Append("s1", "user", "hello")
	s.Clear("s1")
	s.Clear("s1")
	s.Clear("never-existed")
	if turns := s.GetOrCreate("s1"); len(turns) != 0 {
		t.Fatalf("cleared session should be empty, got %d turns", len(turns))
	}
}

func TestClearDoesNotTouchOtherSessions(t *testing.T) {
	s := NewStore()
	s.Append("s1", "user", "hello")
	s.Append("s2", "user", "hi")
	s.Clear("s1")
	if turns := s.GetOrCreate("s2"); len(turns) != 1 {
		t.Fatalf("unrelated session lost turns: %d", len(turns))
	}
}

func TestClearAll(t *testing.T) {
	s := NewStore()
	s.Append("s1", "user", "hello")
	s.Append("s2", "user", "hi")
	s.ClearAll()
	if len(s.GetOrCreate("s1")) != 0 || len(s.GetOrCreate("s2")) != 0 {
		t.Fatal("ClearAll left transcripts behind")
	}
}

func TestConcurrentAppends(t *testing.T) {
	s := NewStore()
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append("s1", "user", fmt.Sprintf("turn %d", i))
		}(i)
	}
	wg.Wait()
	if got := len(s.GetOrCreate("s1")); got != n {
		t.Fatalf("expected %d turns, got %d", n, got)
	}
}
