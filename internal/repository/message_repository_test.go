package repository

import (
	"testing"
	"time"

	"docquery/internal/model"
)

// The newest-window query reads rows newest-first; the reversal restores
// ascending timestamp order for callers.
func TestReverseMessagesRestoresAscendingOrder(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	newestFirst := []model.Message{
		{Content: "fourth", Timestamp: base.Add(3 * time.Millisecond)},
		{Content: "third", Timestamp: base.Add(2 * time.Millisecond)},
		{Content: "second", Timestamp: base.Add(1 * time.Millisecond)},
		{Content: "first", Timestamp: base},
	}

	reverseMessages(newestFirst)

	want := []string{"first", "second", "third", "fourth"}
	for i, w := range want {
		if newestFirst[i].Content != w {
			t.Fatalf("position %d = %q, want %q", i, newestFirst[i].Content, w)
		}
	}
	for i := 1; i < len(newestFirst); i++ {
		if newestFirst[i].Timestamp.Before(newestFirst[i-1].Timestamp) {
			t.Fatalf("timestamps not ascending at %d", i)
		}
	}
}

func TestReverseMessagesHandlesShortSlices(t *testing.T) {
	reverseMessages(nil)

	one := []model.Message{{Content: "only"}}
	reverseMessages(one)
	if one[0].Content != "only" {
		t.Fatalf("single element altered: %q", one[0].Content)
	}
}
